package certs

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePair(t *testing.T, notAfter time.Time) (string, string) {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "localhost"},
		NotBefore:    notAfter.Add(-48 * time.Hour),
		NotAfter:     notAfter,
		DNSNames:     []string{"localhost"},
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)
	keyDER, err := x509.MarshalECPrivateKey(key)
	require.NoError(t, err)

	dir := t.TempDir()
	certFile := filepath.Join(dir, "server.crt")
	keyFile := filepath.Join(dir, "server.key")
	require.NoError(t, os.WriteFile(certFile, pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}), 0600))
	require.NoError(t, os.WriteFile(keyFile, pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER}), 0600))
	return certFile, keyFile
}

func TestTLSConfig(t *testing.T) {
	certFile, keyFile := writePair(t, time.Now().Add(10*24*time.Hour))
	cm := NewCertManager(certFile, keyFile)

	cfg, leaf, err := cm.TLSConfig()
	require.NoError(t, err)
	require.Len(t, cfg.Certificates, 1)
	assert.Equal(t, "localhost", leaf.Subject.CommonName)
	assert.False(t, cm.IsExpired(leaf))
	assert.True(t, cm.ExpiresWithin(leaf, 30*24*time.Hour))
	assert.False(t, cm.ExpiresWithin(leaf, 24*time.Hour))
}

func TestTLSConfigExpired(t *testing.T) {
	certFile, keyFile := writePair(t, time.Now().Add(-time.Hour))
	_, _, err := NewCertManager(certFile, keyFile).TLSConfig()
	assert.ErrorIs(t, err, ErrCertificateExpired)
}

func TestTLSConfigMissing(t *testing.T) {
	_, _, err := NewCertManager("nope.crt", "nope.key").TLSConfig()
	assert.Error(t, err)
}
