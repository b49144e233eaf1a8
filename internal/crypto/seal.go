package crypto

import (
	"crypto/rand"
	"errors"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
)

var (
	// ErrInvalidKeyLength is returned when the provided key length is invalid.
	ErrInvalidKeyLength = errors.New("invalid key length")
	// ErrCiphertextTooShort is returned when a sealed blob cannot hold a nonce.
	ErrCiphertextTooShort = errors.New("ciphertext too short")
)

// Seal encrypts plaintext with XChaCha20-Poly1305 and returns nonce||ciphertext.
// ad is authenticated but not encrypted.
func Seal(key, plaintext, ad []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, ErrInvalidKeyLength
	}
	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plaintext)+aead.Overhead())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return aead.Seal(nonce, nonce, plaintext, ad), nil
}

// Open reverses Seal.
func Open(key, blob, ad []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, ErrInvalidKeyLength
	}
	ns := aead.NonceSize()
	if len(blob) < ns+aead.Overhead() {
		return nil, ErrCiphertextTooShort
	}
	return aead.Open(nil, blob[:ns], blob[ns:], ad)
}
