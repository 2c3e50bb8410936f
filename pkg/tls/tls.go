// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package tls loads client-side TLS material for talking to self-hosted
// push servers: a private root CA and, for mutual TLS, a client
// certificate.
package tls

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"os"
)

var (
	errLoadCerts  = errors.New("failed to load certificates")
	errLoadRootCA = errors.New("failed to load root CA")
	errAppendCA   = errors.New("failed to append root ca tls.Config")
)

// Config describes where to find the client's TLS material.
type Config struct {
	CertFile           string `yaml:"cert_file"`
	KeyFile            string `yaml:"key_file"`
	CAFile             string `yaml:"ca_file"`
	InsecureSkipVerify bool   `yaml:"insecure_skip_verify"`
}

// LoadTLSConfig builds a *tls.Config from the configured files. With no
// files and no verification override it returns nil, meaning system
// defaults.
func LoadTLSConfig(c *Config) (*tls.Config, error) {
	if c == nil || (c.CertFile == "" && c.KeyFile == "" && c.CAFile == "" && !c.InsecureSkipVerify) {
		return nil, nil
	}

	config := &tls.Config{
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: c.InsecureSkipVerify,
	}

	if c.CertFile != "" || c.KeyFile != "" {
		certificate, err := tls.LoadX509KeyPair(c.CertFile, c.KeyFile)
		if err != nil {
			return nil, errors.Join(errLoadCerts, err)
		}
		config.Certificates = []tls.Certificate{certificate}
	}

	rootCA, err := loadCertFile(c.CAFile)
	if err != nil {
		return nil, errors.Join(errLoadRootCA, err)
	}
	if len(rootCA) > 0 {
		config.RootCAs = x509.NewCertPool()
		if !config.RootCAs.AppendCertsFromPEM(rootCA) {
			return nil, errAppendCA
		}
	}

	return config, nil
}

// SecurityStatus returns log message from TLS config.
func SecurityStatus(c *tls.Config) string {
	if c == nil {
		return "no TLS"
	}
	ret := "TLS"
	if len(c.Certificates) > 0 {
		ret += " with client certificate"
	}
	if c.RootCAs != nil {
		ret += " and private root CA"
	}
	if c.InsecureSkipVerify {
		ret += " (verification disabled)"
	}
	return ret
}

func loadCertFile(certFile string) ([]byte, error) {
	if certFile != "" {
		return os.ReadFile(certFile)
	}
	return []byte{}, nil
}
