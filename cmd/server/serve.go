package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/harrylevesque/stillwater/internal/api"
	"github.com/harrylevesque/stillwater/internal/auth"
	"github.com/harrylevesque/stillwater/internal/breathing"
	"github.com/harrylevesque/stillwater/internal/certs"
	"github.com/harrylevesque/stillwater/internal/config"
	"github.com/harrylevesque/stillwater/internal/files"
	"github.com/harrylevesque/stillwater/internal/utils"
)

const certExpiryWarning = 14 * 24 * time.Hour

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}
}

func serve(parent context.Context) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger, err := utils.NewLogger(cfg.Logging, verbose)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Close()

	masterKey, err := files.ReadMasterKey(cfg.Auth.MasterKeyFile)
	if err != nil {
		return fmt.Errorf("master key: %w", err)
	}
	tokens, err := auth.NewTokenService(masterKey)
	if err != nil {
		return err
	}

	registry := breathing.NewRegistry(breathing.RegistryConfig{
		TickInterval: cfg.Breathing.TickInterval.Std(),
		IdleTimeout:  cfg.Breathing.IdleTimeout.Std(),
		Logger:       logger.Named("breathing"),
	})

	router := api.NewRouter(api.Options{
		Auth: &auth.Middleware{
			Provider:   tokens,
			LoginPath:  cfg.Auth.LoginPath,
			CookieName: cfg.Auth.CookieName,
			Logger:     logger.Named("auth"),
		},
		Registry:           registry,
		Logger:             logger.Named("http"),
		TickInterval:       cfg.Breathing.TickInterval.Std(),
		TransitionDuration: cfg.Breathing.TransitionDuration.Std(),
		AllowedOrigins:     cfg.Server.AllowedOrigins,
		KeepAlive:          min(api.DefaultKeepAlive, cfg.Breathing.IdleTimeout.Std()/3),
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.Server.ReadTimeout.Std(),
	}
	useTLS := cfg.Server.TLSCertFile != ""
	if useTLS {
		cm := certs.NewCertManager(cfg.Server.TLSCertFile, cfg.Server.TLSKeyFile)
		tlsCfg, leaf, err := cm.TLSConfig()
		if err != nil {
			return err
		}
		if cm.ExpiresWithin(leaf, certExpiryWarning) {
			logger.Warn("TLS certificate expires soon", zap.Time("not_after", leaf.NotAfter))
		}
		srv.TLSConfig = tlsCfg
	}

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("stillwater listening",
			zap.String("addr", cfg.Server.Addr),
			zap.Bool("tls", useTLS),
			zap.Stringer("log_level", logger.Level()),
			zap.Duration("tick_interval", cfg.Breathing.TickInterval.Std()))
		var err error
		if useTLS {
			err = srv.ListenAndServeTLS("", "")
		} else {
			err = srv.ListenAndServe()
		}
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Std())
		defer cancel()
		logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		return registry.Run(gctx)
	})
	if files.FileExists(configPath) {
		g.Go(func() error {
			return config.Watch(gctx, configPath, logger.Named("config"), func(next *config.Config) {
				if verbose {
					return
				}
				if err := logger.SetLevel(next.Logging.Level); err != nil {
					logger.Warn("ignoring log level", zap.Error(err))
				}
			})
		})
	}

	return g.Wait()
}
