// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"crypto/tls"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sony/gobreaker"

	"github.com/absmach/pushq/auth"
)

// Default values.
const (
	DefaultHandshakeTimeout = 10 * time.Second
)

// Options configures the push client.
type Options struct {
	// BaseURL is the root URL of the push server.
	BaseURL string

	// DefaultTopic is the fallback topic used when neither the message
	// nor the call site provides one.
	DefaultTopic string

	// Credentials authenticate every request. The zero value disables
	// authentication.
	Credentials auth.Credentials

	// Logger receives structured events. Nil means slog.Default().
	Logger *slog.Logger

	// TLSConfig applies to both HTTP requests and WebSocket dials,
	// for self-hosted servers with private CAs.
	TLSConfig *tls.Config

	// Dialer overrides the WebSocket dialer used by subscriptions.
	Dialer *websocket.Dialer

	// Breaker, when set, wraps publish requests in a circuit breaker.
	Breaker *gobreaker.Settings

	// PublishRate limits publishes per topic (messages per second, with
	// PublishBurst allowance). Zero disables limiting.
	PublishRate  float64
	PublishBurst int

	// HandshakeTimeout bounds the WebSocket handshake.
	HandshakeTimeout time.Duration
}

// NewOptions creates options with default values.
func NewOptions(baseURL string) *Options {
	return &Options{
		BaseURL:          baseURL,
		HandshakeTimeout: DefaultHandshakeTimeout,
	}
}

// SetDefaultTopic sets the fallback topic.
func (o *Options) SetDefaultTopic(topic string) *Options {
	o.DefaultTopic = topic
	return o
}

// SetCredentials sets the access credentials.
func (o *Options) SetCredentials(c auth.Credentials) *Options {
	o.Credentials = c
	return o
}

// SetLogger sets the structured logger.
func (o *Options) SetLogger(l *slog.Logger) *Options {
	o.Logger = l
	return o
}

// SetTLSConfig sets the TLS configuration.
func (o *Options) SetTLSConfig(c *tls.Config) *Options {
	o.TLSConfig = c
	return o
}

// SetBreaker enables a publish circuit breaker with the given settings.
func (o *Options) SetBreaker(s gobreaker.Settings) *Options {
	o.Breaker = &s
	return o
}

// SetPublishRate enables per-topic publish rate limiting.
func (o *Options) SetPublishRate(perSecond float64, burst int) *Options {
	o.PublishRate = perSecond
	o.PublishBurst = burst
	return o
}

// Validate checks the options for correctness.
func (o *Options) Validate() error {
	if o == nil {
		return ErrNilOptions
	}
	if o.BaseURL == "" {
		return ErrNoBaseURL
	}
	return nil
}

// httpTransport builds the transport for HTTP requests, honoring the TLS
// configuration when present.
func (o *Options) httpTransport() http.RoundTripper {
	if o.TLSConfig == nil {
		return http.DefaultTransport
	}
	return &http.Transport{TLSClientConfig: o.TLSConfig}
}

// wsDialer returns the dialer for subscription connections.
func (o *Options) wsDialer() *websocket.Dialer {
	if o.Dialer != nil {
		return o.Dialer
	}
	return &websocket.Dialer{
		HandshakeTimeout: o.HandshakeTimeout,
		TLSClientConfig:  o.TLSConfig,
	}
}
