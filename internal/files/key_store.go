package files

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/harrylevesque/stillwater/internal/crypto"
)

// MasterKeyEnv overrides the master key file when set.
const MasterKeyEnv = "MASTER_KEY_HEX"

// ErrMasterKeyExists is returned by WriteMasterKey when the file exists.
var ErrMasterKeyExists = errors.New("master key file already exists")

// ReadMasterKey returns the master key from MASTER_KEY_HEX, or from path when
// the variable is unset. The key is hex encoded, 32 bytes.
func ReadMasterKey(path string) ([]byte, error) {
	h := os.Getenv(MasterKeyEnv)
	if h == "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%s not set and master key file unreadable: %w", MasterKeyEnv, err)
		}
		h = string(data)
	}
	return decodeMasterKey(h)
}

// WriteMasterKey generates a new master key and writes it to path with 0600
// permissions. It refuses to overwrite an existing file.
func WriteMasterKey(path string) error {
	if FileExists(path) {
		return fmt.Errorf("%s: %w", path, ErrMasterKeyExists)
	}
	key := crypto.MustRandom(crypto.KeySize)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("%s: %w", path, ErrMasterKeyExists)
		}
		return err
	}
	if _, err := f.WriteString(hex.EncodeToString(key) + "\n"); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func decodeMasterKey(h string) ([]byte, error) {
	b, err := hex.DecodeString(strings.TrimSpace(h))
	if err != nil {
		return nil, fmt.Errorf("master key hex decode error: %w", err)
	}
	if len(b) != crypto.KeySize {
		return nil, fmt.Errorf("master key length must be 32 bytes (hex 64 chars): %w", crypto.ErrInvalidKeyLength)
	}
	return b, nil
}

// FileExists checks if the given file exists.
func FileExists(filePath string) bool {
	_, err := os.Stat(filePath)
	return !os.IsNotExist(err)
}
