package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/harrylevesque/stillwater/internal/models"
)

// Duration is a time.Duration written as "4s" or "30m" in YAML.
type Duration time.Duration

func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*d = Duration(v)
	return nil
}

// Config holds all stillwater configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Auth      AuthConfig      `yaml:"auth"`
	Breathing BreathingConfig `yaml:"breathing"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type ServerConfig struct {
	Addr            string   `yaml:"addr"`
	ReadTimeout     Duration `yaml:"read_timeout"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout"`
	TLSCertFile     string   `yaml:"tls_cert_file"`
	TLSKeyFile      string   `yaml:"tls_key_file"`
	// AllowedOrigins limits websocket upgrades. Empty means same origin only.
	AllowedOrigins []string `yaml:"allowed_origins,omitempty"`
}

type AuthConfig struct {
	MasterKeyFile string   `yaml:"master_key_file"`
	TokenTTL      Duration `yaml:"token_ttl"`
	LoginPath     string   `yaml:"login_path"`
	CookieName    string   `yaml:"cookie_name"`
}

type BreathingConfig struct {
	TickInterval       Duration `yaml:"tick_interval"`
	TransitionDuration Duration `yaml:"transition_duration"`
	IdleTimeout        Duration `yaml:"idle_timeout"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json or console
	File   string `yaml:"file"`   // optional, in addition to stderr
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     Duration(15 * time.Second),
			ShutdownTimeout: Duration(10 * time.Second),
		},
		Auth: AuthConfig{
			MasterKeyFile: "master.key",
			TokenTTL:      Duration(24 * time.Hour),
			LoginPath:     "/login",
			CookieName:    "stillwater_session",
		},
		Breathing: BreathingConfig{
			TickInterval:       Duration(models.TickInterval),
			TransitionDuration: Duration(models.TransitionDuration),
			IdleTimeout:        Duration(30 * time.Minute),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads path over the defaults, applies environment overrides and
// validates the result. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}
	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg to path as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("STILLWATER_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("STILLWATER_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("STILLWATER_MASTER_KEY_FILE"); v != "" {
		c.Auth.MasterKeyFile = v
	}
}

// Validate checks the configuration for values the service cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if (c.Server.TLSCertFile == "") != (c.Server.TLSKeyFile == "") {
		errs = append(errs, errors.New("server.tls_cert_file and server.tls_key_file must be set together"))
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, errors.New("auth.token_ttl must be positive"))
	}
	if !strings.HasPrefix(c.Auth.LoginPath, "/") {
		errs = append(errs, errors.New("auth.login_path must start with /"))
	}
	if c.Breathing.TickInterval <= 0 {
		errs = append(errs, errors.New("breathing.tick_interval must be positive"))
	} else if c.Breathing.TransitionDuration != 2*c.Breathing.TickInterval {
		errs = append(errs, fmt.Errorf("breathing.transition_duration must be twice tick_interval (%s), got %s",
			(2 * c.Breathing.TickInterval).Std(), c.Breathing.TransitionDuration.Std()))
	}
	if c.Breathing.IdleTimeout <= 0 {
		errs = append(errs, errors.New("breathing.idle_timeout must be positive"))
	}
	if _, err := ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, err)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format))
	}
	return errors.Join(errs...)
}
