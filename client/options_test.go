// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"crypto/tls"
	"testing"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/absmach/pushq/auth"
)

func TestOptionsChaining(t *testing.T) {
	tlsCfg := &tls.Config{MinVersion: tls.VersionTLS12}
	opts := NewOptions("https://push.example.com").
		SetDefaultTopic("orders").
		SetCredentials(auth.Bearer("tk_secret")).
		SetLogger(testLogger()).
		SetTLSConfig(tlsCfg).
		SetBreaker(gobreaker.Settings{Name: "publish"}).
		SetPublishRate(10, 5)

	assert.Equal(t, "https://push.example.com", opts.BaseURL)
	assert.Equal(t, "orders", opts.DefaultTopic)
	assert.Same(t, tlsCfg, opts.TLSConfig)
	require.NotNil(t, opts.Breaker)
	assert.Equal(t, "publish", opts.Breaker.Name)
	assert.Equal(t, 10.0, opts.PublishRate)
	assert.Equal(t, 5, opts.PublishBurst)
	require.NoError(t, opts.Validate())
}

func TestOptionsValidate(t *testing.T) {
	var nilOpts *Options
	assert.ErrorIs(t, nilOpts.Validate(), ErrNilOptions)
	assert.ErrorIs(t, NewOptions("").Validate(), ErrNoBaseURL)
	assert.NoError(t, NewOptions("http://localhost").Validate())
}

func TestOptionsWSDialerTLS(t *testing.T) {
	tlsCfg := &tls.Config{InsecureSkipVerify: true}
	opts := NewOptions("https://push.example.com").SetTLSConfig(tlsCfg)

	d := opts.wsDialer()
	require.NotNil(t, d)
	assert.Same(t, tlsCfg, d.TLSClientConfig)
}
