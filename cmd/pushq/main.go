// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sony/gobreaker"

	"github.com/absmach/pushq/auth"
	"github.com/absmach/pushq/client"
	"github.com/absmach/pushq/config"
	pushqtls "github.com/absmach/pushq/pkg/tls"
	"github.com/absmach/pushq/wire"
)

const usage = `Usage: pushq [flags] <command> [command flags]

Commands:
  publish    Publish a message to a topic
  poll       Fetch cached messages from a topic
  subscribe  Stream messages from one or more topics

Flags:
  -config string   Path to configuration file
  -server string   Push server URL (overrides config)
  -topic string    Default topic (overrides config)
  -user string     Basic auth user
  -password string Basic auth password
  -token string    Bearer token
`

func main() {
	fs := flag.NewFlagSet("pushq", flag.ExitOnError)
	fs.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	configFile := fs.String("config", "", "Path to configuration file")
	server := fs.String("server", "", "Push server URL")
	topic := fs.String("topic", "", "Default topic")
	user := fs.String("user", "", "Basic auth user")
	password := fs.String("password", "", "Basic auth password")
	token := fs.String("token", "", "Bearer token")
	_ = fs.Parse(os.Args[1:])

	cfg, err := config.Load(*configFile)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if *server != "" {
		cfg.Server.URL = *server
	}
	if *topic != "" {
		cfg.Server.DefaultTopic = *topic
	}
	if *user != "" {
		cfg.Auth.User = *user
	}
	if *password != "" {
		cfg.Auth.Password = *password
	}
	if *token != "" {
		cfg.Auth.Token = *token
	}

	logger := newLogger(cfg.Log)
	slog.SetDefault(logger)

	c, err := newClient(cfg, logger)
	if err != nil {
		slog.Error("Failed to create client", "error", err)
		os.Exit(1)
	}
	defer c.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	args := fs.Args()
	if len(args) == 0 {
		fs.Usage()
		os.Exit(2)
	}

	switch args[0] {
	case "publish":
		err = runPublish(ctx, c, args[1:])
	case "poll":
		err = runPoll(ctx, c, args[1:])
	case "subscribe":
		err = runSubscribe(ctx, c, cfg, args[1:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", args[0])
		fs.Usage()
		os.Exit(2)
	}
	if err != nil {
		slog.Error("Command failed", "command", args[0], "error", err)
		os.Exit(1)
	}
}

func newLogger(cfg config.LogConfig) *slog.Logger {
	logLevel := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})
	} else {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})
	}
	return slog.New(handler)
}

func newClient(cfg *config.Config, logger *slog.Logger) (*client.Client, error) {
	opts := client.NewOptions(cfg.Server.URL).
		SetDefaultTopic(cfg.Server.DefaultTopic).
		SetLogger(logger)
	if cfg.Server.HandshakeTimeout > 0 {
		opts.HandshakeTimeout = cfg.Server.HandshakeTimeout
	}

	switch {
	case cfg.Auth.Token != "":
		opts.SetCredentials(auth.Bearer(cfg.Auth.Token))
	case cfg.Auth.User != "":
		opts.SetCredentials(auth.Basic(cfg.Auth.User, cfg.Auth.Password))
	}

	tlsCfg, err := pushqtls.LoadTLSConfig(&pushqtls.Config{
		CertFile:           cfg.TLS.CertFile,
		KeyFile:            cfg.TLS.KeyFile,
		CAFile:             cfg.TLS.CAFile,
		InsecureSkipVerify: cfg.TLS.InsecureSkipVerify,
	})
	if err != nil {
		return nil, err
	}
	if tlsCfg != nil {
		opts.SetTLSConfig(tlsCfg)
		logger.Info("TLS configured", "status", pushqtls.SecurityStatus(tlsCfg))
	}

	if cfg.Publish.Rate > 0 {
		opts.SetPublishRate(cfg.Publish.Rate, cfg.Publish.Burst)
	}
	if cfg.Publish.Breaker.Enabled {
		threshold := cfg.Publish.Breaker.FailureThreshold
		opts.SetBreaker(gobreaker.Settings{
			Name:    "publish",
			Timeout: cfg.Publish.Breaker.ResetTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= threshold
			},
		})
	}

	c, err := client.New(opts)
	if err != nil {
		return nil, err
	}
	return c.Connect(nil), nil
}

func runPublish(ctx context.Context, c *client.Client, args []string) error {
	fs := flag.NewFlagSet("publish", flag.ExitOnError)
	topic := fs.String("topic", "", "Topic to publish to")
	title := fs.String("title", "", "Message title")
	priority := fs.Int("priority", 0, "Priority 1 (min) to 5 (max)")
	tags := fs.String("tags", "", "Comma-separated tags")
	delay := fs.String("delay", "", "Delivery delay, e.g. 30m or a unix timestamp")
	click := fs.String("click", "", "URL opened when the notification is clicked")
	markdown := fs.Bool("markdown", false, "Render the message as Markdown")
	_ = fs.Parse(args)

	msg := &wire.Message{Topic: *topic}
	if text := strings.Join(fs.Args(), " "); text != "" {
		msg.Message = wire.String(text)
	}
	if *title != "" {
		msg.Title = wire.String(*title)
	}
	if *priority != 0 {
		p := wire.Priority(*priority)
		if !p.Valid() {
			return fmt.Errorf("priority must be between 1 and 5, got %d", *priority)
		}
		msg.Priority = &p
	}
	if *tags != "" {
		msg.Tags = strings.Split(*tags, ",")
	}
	if *delay != "" {
		msg.Delay = *delay
	}
	if *click != "" {
		msg.Click = wire.String(*click)
	}
	if *markdown {
		msg.Markdown = wire.Bool(true)
	}

	resp, err := c.Publish(ctx, msg)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var echoed wire.ReceivedMessage
	if err := json.NewDecoder(resp.Body).Decode(&echoed); err == nil {
		slog.Info("Message published", "id", echoed.ID, "topic", echoed.Topic)
	}
	return nil
}

func runPoll(ctx context.Context, c *client.Client, args []string) error {
	fs := flag.NewFlagSet("poll", flag.ExitOnError)
	topic := fs.String("topic", "", "Topic to poll")
	since := fs.String("since", "", "Return cached messages since a timestamp, duration or message ID")
	scheduled := fs.Bool("scheduled", false, "Include scheduled messages")
	_ = fs.Parse(args)

	var filter *wire.Filter
	if *since != "" || *scheduled {
		filter = &wire.Filter{}
		if *since != "" {
			filter.Since = *since
		}
		if *scheduled {
			filter.Scheduled = wire.Bool(true)
		}
	}

	seq, err := c.Poll(ctx, *topic, filter)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	for m := range seq {
		if err := enc.Encode(m); err != nil {
			return err
		}
	}
	return nil
}

func runSubscribe(ctx context.Context, c *client.Client, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("subscribe", flag.ExitOnError)
	topics := fs.String("topics", "", "Comma-separated topics to subscribe to")
	_ = fs.Parse(args)

	var topicList []string
	if *topics != "" {
		topicList = strings.Split(*topics, ",")
	}

	sub, err := c.Subscribe(topicList, nil, cfg.Subscribe.MaxQueueSize)
	if err != nil {
		return err
	}
	if _, err := sub.Connect(ctx); err != nil {
		return err
	}
	defer sub.Close()

	slog.Info("Subscribed", "topics", strings.Join(sub.Topics(), ","))

	enc := json.NewEncoder(os.Stdout)
	for {
		m, ok := nextMessage(ctx, sub)
		if !ok {
			return nil
		}
		if m.Event != wire.EventMessage {
			continue
		}
		if err := enc.Encode(m); err != nil {
			return err
		}
		if err := sub.Messages().TaskDone(); err != nil {
			return err
		}
	}
}

// nextMessage waits for the next queued message, giving up when the
// context is canceled.
func nextMessage(ctx context.Context, sub *client.Subscription) (*wire.ReceivedMessage, bool) {
	for {
		if m, ok := sub.Messages().TryGet(); ok {
			return m, true
		}
		select {
		case <-ctx.Done():
			return nil, false
		case <-time.After(100 * time.Millisecond):
		}
	}
}
