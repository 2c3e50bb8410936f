// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/absmach/pushq/endpoint"
	"github.com/absmach/pushq/wire"
)

// wsSchemes rewrites the server URL scheme for WebSocket dialing.
var wsSchemes = endpoint.SchemePair{Insecure: "ws", Secure: "wss"}

// Conn is the WebSocket read surface a subscription consumes. It is
// satisfied by *websocket.Conn.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	Close() error
}

// Subscription is a live feed of one or more topics. Incoming frames
// are parsed on a background goroutine and buffered in a bounded queue;
// when the queue is full, new messages are dropped silently.
type Subscription struct {
	id         string
	url        endpoint.Endpoint
	topics     []string
	authHeader map[string]string
	filter     *wire.Filter
	dialer     *websocket.Dialer
	logger     *slog.Logger

	queue *Queue
	state *stateManager

	connMu sync.RWMutex
	conn   Conn
	done   chan struct{}
}

func newSubscription(url endpoint.Endpoint, topics []string, authHeader map[string]string, filter *wire.Filter, maxQueueSize int, dialer *websocket.Dialer, logger *slog.Logger) *Subscription {
	return &Subscription{
		id:         uuid.NewString(),
		url:        url,
		topics:     topics,
		authHeader: authHeader,
		filter:     filter,
		dialer:     dialer,
		logger:     logger,
		queue:      newQueue(maxQueueSize),
		state:      newStateManager(),
	}
}

// ID returns the subscription's unique identifier.
func (s *Subscription) ID() string { return s.id }

// Topics returns the subscribed topics.
func (s *Subscription) Topics() []string { return s.topics }

// Messages returns the queue incoming messages are delivered to.
func (s *Subscription) Messages() *Queue { return s.queue }

// State reports the subscription's connection state.
func (s *Subscription) State() State { return s.state.get() }

// Connect dials the server's WebSocket endpoint for the subscribed
// topics and starts the receive loop. It returns the subscription for
// chaining. Connecting an already-connected subscription fails with
// ErrAlreadyConnected; a closed subscription may be connected again.
func (s *Subscription) Connect(ctx context.Context) (*Subscription, error) {
	if !s.state.transitionFrom(StateConnected, StateIdle, StateClosed) {
		return nil, ErrAlreadyConnected
	}

	header := http.Header{}
	for k, v := range s.authHeader {
		header.Set(k, v)
	}
	filterHeaders, err := s.filter.Headers()
	if err != nil {
		s.state.set(StateIdle)
		return nil, err
	}
	for _, h := range filterHeaders {
		header.Set(h.Name, h.Value)
	}

	url := s.url.WithTopic(strings.Join(s.topics, ",")).WithEndpoint("ws").StringWithScheme(wsSchemes)
	conn, resp, err := s.dialer.DialContext(ctx, url, header)
	if err != nil {
		s.state.set(StateIdle)
		if resp != nil {
			resp.Body.Close()
		}
		return nil, err
	}
	if resp != nil {
		resp.Body.Close()
	}

	s.start(conn)
	s.logger.Info("subscription_connected",
		slog.String("id", s.id),
		slog.String("topics", strings.Join(s.topics, ",")))
	return s, nil
}

// ConnectWith starts the receive loop over an existing connection
// instead of dialing. The subscription takes ownership of the
// connection.
func (s *Subscription) ConnectWith(conn Conn) (*Subscription, error) {
	if !s.state.transitionFrom(StateConnected, StateIdle, StateClosed) {
		return nil, ErrAlreadyConnected
	}
	s.start(conn)
	return s, nil
}

func (s *Subscription) start(conn Conn) {
	s.connMu.Lock()
	s.conn = conn
	s.connMu.Unlock()

	// A fresh connection starts with an empty queue; pending task
	// accounting from a previous session is discarded.
	s.queue.reset()

	done := make(chan struct{})
	s.done = done
	go s.receiveLoop(done)
}

// receiveLoop reads frames until the connection fails, is closed, or is
// detached. Frames that do not parse are logged and skipped.
func (s *Subscription) receiveLoop(done chan struct{}) {
	defer close(done)
	for {
		s.connMu.RLock()
		conn := s.conn
		s.connMu.RUnlock()
		if conn == nil {
			return
		}

		_, raw, err := conn.ReadMessage()
		if err != nil {
			s.logger.Debug("subscription_read_ended",
				slog.String("id", s.id),
				slog.String("reason", err.Error()))
			return
		}

		m, err := wire.ParseMessage(raw)
		if err != nil {
			s.logger.Warn("message_parse_failed",
				slog.String("id", s.id),
				slog.String("error", err.Error()))
			continue
		}

		// Drops on a full queue are silent: the newest message loses.
		s.queue.put(m)
	}
}

// Close shuts the connection down and waits for the receive loop to
// exit. Closing an unconnected or already-closed subscription is a
// no-op.
func (s *Subscription) Close() error {
	if !s.state.transition(StateConnected, StateClosed) {
		return nil
	}

	s.connMu.Lock()
	conn := s.conn
	s.conn = nil
	s.connMu.Unlock()

	var err error
	if conn != nil {
		err = conn.Close()
	}
	if s.done != nil {
		<-s.done
	}

	s.logger.Info("subscription_closed", slog.String("id", s.id))
	return err
}

// detach clears the connection reference without closing it, letting
// the receive loop observe the nil and exit on its next pass.
func (s *Subscription) detach() {
	s.connMu.Lock()
	s.conn = nil
	s.connMu.Unlock()
}
