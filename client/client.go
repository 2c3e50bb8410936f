// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package client implements a client for ntfy-compatible push servers:
// synchronous publishing over HTTP, long-polling, and live WebSocket
// subscriptions feeding a bounded message queue.
package client

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"iter"
	"log/slog"
	"net/http"
	"sync"

	"github.com/sony/gobreaker"

	"github.com/absmach/pushq/endpoint"
	"github.com/absmach/pushq/ratelimit"
	"github.com/absmach/pushq/wire"
)

// maxErrorBody bounds how much of an error response body is read for
// detail parsing.
const maxErrorBody = 64 * 1024

// Client publishes messages and creates subscriptions against one push
// server. It is safe for concurrent use.
type Client struct {
	opts       *Options
	url        endpoint.Endpoint
	authHeader map[string]string
	logger     *slog.Logger

	// Pooled HTTP client; nil until Connect. Requests fall back to a
	// one-shot client, which produces identical results.
	httpMu sync.RWMutex
	http   *http.Client

	breaker *gobreaker.CircuitBreaker
	limiter *ratelimit.TopicRateLimiter
}

// New creates a new push client with the given options.
func New(opts *Options) (*Client, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	u, err := endpoint.Parse(opts.BaseURL)
	if err != nil {
		return nil, err
	}

	authHeader, err := opts.Credentials.HeaderMap()
	if err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	c := &Client{
		opts:       opts,
		url:        u,
		authHeader: authHeader,
		logger:     logger,
	}
	if opts.Breaker != nil {
		c.breaker = gobreaker.NewCircuitBreaker(*opts.Breaker)
	}
	if opts.PublishRate > 0 {
		c.limiter = ratelimit.NewTopicRateLimiter(opts.PublishRate, opts.PublishBurst)
	}
	return c, nil
}

// Connect installs a shared HTTP client used by subsequent requests. A
// nil argument creates one honoring the client's TLS configuration.
// Without Connect, each request uses a one-shot client.
func (c *Client) Connect(hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Transport: c.opts.httpTransport()}
	}
	c.httpMu.Lock()
	c.http = hc
	c.httpMu.Unlock()
	return c
}

// Close releases the shared HTTP client, if any. Idempotent.
func (c *Client) Close() {
	c.httpMu.Lock()
	if c.http != nil {
		c.http.CloseIdleConnections()
		c.http = nil
	}
	c.httpMu.Unlock()
}

func (c *Client) httpClient() *http.Client {
	c.httpMu.RLock()
	hc := c.http
	c.httpMu.RUnlock()
	if hc != nil {
		return hc
	}
	return &http.Client{Transport: c.opts.httpTransport()}
}

// do executes a request, wrapped in the circuit breaker when one is
// configured.
func (c *Client) do(req *http.Request) (*http.Response, error) {
	hc := c.httpClient()
	if c.breaker == nil {
		return hc.Do(req)
	}
	resp, err := c.breaker.Execute(func() (any, error) {
		return hc.Do(req)
	})
	if err != nil {
		return nil, err
	}
	return resp.(*http.Response), nil
}

// resolveTopic applies the topic precedence: the message's own topic
// wins, unless an argument topic is given with override; an argument
// topic fills in a missing message topic; the default topic is the last
// resort.
func (c *Client) resolveTopic(msgTopic, topic string, override bool) (string, error) {
	resolved := msgTopic
	if resolved != "" {
		if topic != "" && override {
			resolved = topic
		}
	} else if topic != "" {
		resolved = topic
	} else {
		resolved = c.opts.DefaultTopic
	}
	if resolved == "" {
		return "", ErrNoTopic
	}
	return resolved, nil
}

// Publish posts a message, resolving its topic against the client's
// default topic. The caller owns the response body on success.
func (c *Client) Publish(ctx context.Context, msg *wire.Message) (*http.Response, error) {
	return c.PublishTo(ctx, msg, "", false)
}

// PublishTo posts a message to the given topic. With override set, the
// topic argument wins even when the message carries its own.
func (c *Client) PublishTo(ctx context.Context, msg *wire.Message, topic string, override bool) (*http.Response, error) {
	resolved, err := c.resolveTopic(msg.Topic, topic, override)
	if err != nil {
		return nil, err
	}

	headers, err := msg.Headers()
	if err != nil {
		return nil, err
	}
	body, err := msg.Body()
	if err != nil {
		return nil, err
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, resolved); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url.WithTopic(resolved).String(), body)
	if err != nil {
		return nil, err
	}
	c.applyAuth(req.Header)
	for _, h := range headers {
		req.Header.Set(h.Name, h.Value)
	}

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	c.logger.Debug("message_published",
		slog.String("topic", resolved),
		slog.Int("status", resp.StatusCode))
	return resp, nil
}

// PublishJSON posts a raw JSON message document to the server root,
// where the topic travels in the document itself.
func (c *Client) PublishJSON(ctx context.Context, raw any) (*http.Response, error) {
	buf, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url.String(), bytes.NewReader(buf))
	if err != nil {
		return nil, err
	}
	c.applyAuth(req.Header)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	if err := checkStatus(resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// Poll opens a long-poll stream for the topic and returns a lazy
// sequence of the messages it yields. Each call opens a fresh stream;
// the stream is released when the sequence ends or the caller stops
// early. Malformed lines are logged and skipped.
func (c *Client) Poll(ctx context.Context, topic string, filter *wire.Filter) (iter.Seq[*wire.ReceivedMessage], error) {
	if topic == "" {
		topic = c.opts.DefaultTopic
	}
	if topic == "" {
		return nil, ErrNoTopic
	}

	filterHeaders, err := filter.Headers()
	if err != nil {
		return nil, err
	}

	url := c.url.WithTopic(topic).WithEndpoint("json").String()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Poll", "1")
	c.applyAuth(req.Header)
	for _, h := range filterHeaders {
		req.Header.Set(h.Name, h.Value)
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, err
	}
	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	return func(yield func(*wire.ReceivedMessage) bool) {
		defer resp.Body.Close()
		sc := bufio.NewScanner(resp.Body)
		sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for sc.Scan() {
			line := bytes.TrimSpace(sc.Bytes())
			if len(line) == 0 {
				continue
			}
			m, err := wire.ParseMessage(line)
			if err != nil {
				c.logger.Warn("poll_message_parse_failed",
					slog.String("topic", topic),
					slog.String("error", err.Error()))
				continue
			}
			if !yield(m) {
				return
			}
		}
		if err := sc.Err(); err != nil {
			c.logger.Warn("poll_stream_read_failed",
				slog.String("topic", topic),
				slog.String("error", err.Error()))
		}
	}, nil
}

// Subscribe creates a not-yet-connected subscription sharing this
// client's server URL and credentials. With no topics, the client's
// default topic is used.
func (c *Client) Subscribe(topics []string, filter *wire.Filter, maxQueueSize int) (*Subscription, error) {
	if len(topics) == 0 {
		if c.opts.DefaultTopic == "" {
			return nil, ErrNoTopic
		}
		topics = []string{c.opts.DefaultTopic}
	}
	return newSubscription(c.url, topics, c.authHeader, filter, maxQueueSize, c.opts.wsDialer(), c.logger), nil
}

func (c *Client) applyAuth(h http.Header) {
	for k, v := range c.authHeader {
		h.Set(k, v)
	}
}

// checkStatus converts a non-2xx response into an APIError, consuming
// and closing the body.
func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return newAPIError(resp.StatusCode, body)
}
