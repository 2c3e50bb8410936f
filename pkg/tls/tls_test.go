// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package tls

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

// writeTestCert generates a self-signed certificate and writes the PEM
// pair into dir, returning the cert and key paths.
func writeTestCert(t *testing.T, dir string) (string, string) {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	tmpl := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: "pushq-test"},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(time.Hour),
		IsCA:                  true,
		BasicConstraintsValid: true,
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)

	certPath := filepath.Join(dir, "cert.pem")
	certOut, err := os.Create(certPath)
	require.NoError(t, err)
	require.NoError(t, pem.Encode(certOut, &pem.Block{Type: "CERTIFICATE", Bytes: der}))
	require.NoError(t, certOut.Close())

	keyDER, err := x509.MarshalECPrivateKey(key)
	require.NoError(t, err)
	keyPath := filepath.Join(dir, "key.pem")
	keyOut, err := os.Create(keyPath)
	require.NoError(t, err)
	require.NoError(t, pem.Encode(keyOut, &pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER}))
	require.NoError(t, keyOut.Close())

	return certPath, keyPath
}

func TestLoadTLSConfigEmpty(t *testing.T) {
	cfg, err := LoadTLSConfig(nil)
	require.NoError(t, err)
	assert.Nil(t, cfg)

	cfg, err = LoadTLSConfig(&Config{})
	require.NoError(t, err)
	assert.Nil(t, cfg)
}

func TestLoadTLSConfigClientCert(t *testing.T) {
	certPath, keyPath := writeTestCert(t, t.TempDir())

	cfg, err := LoadTLSConfig(&Config{CertFile: certPath, KeyFile: keyPath})
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Len(t, cfg.Certificates, 1)
	assert.Nil(t, cfg.RootCAs)
}

func TestLoadTLSConfigRootCA(t *testing.T) {
	certPath, _ := writeTestCert(t, t.TempDir())

	cfg, err := LoadTLSConfig(&Config{CAFile: certPath})
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.NotNil(t, cfg.RootCAs)
	assert.Empty(t, cfg.Certificates)
}

func TestLoadTLSConfigMissingFiles(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadTLSConfig(&Config{
		CertFile: filepath.Join(dir, "absent.crt"),
		KeyFile:  filepath.Join(dir, "absent.key"),
	})
	assert.Error(t, err)

	_, err = LoadTLSConfig(&Config{CAFile: filepath.Join(dir, "absent-ca.crt")})
	assert.Error(t, err)
}

func TestLoadTLSConfigBadCA(t *testing.T) {
	dir := t.TempDir()
	caPath := filepath.Join(dir, "ca.pem")
	require.NoError(t, os.WriteFile(caPath, []byte("not a certificate"), 0o600))

	_, err := LoadTLSConfig(&Config{CAFile: caPath})
	assert.ErrorIs(t, err, errAppendCA)
}

func TestSecurityStatus(t *testing.T) {
	assert.Equal(t, "no TLS", SecurityStatus(nil))

	certPath, keyPath := writeTestCert(t, t.TempDir())
	cfg, err := LoadTLSConfig(&Config{CertFile: certPath, KeyFile: keyPath, CAFile: certPath})
	require.NoError(t, err)
	assert.Equal(t, "TLS with client certificate and private root CA", SecurityStatus(cfg))
}
