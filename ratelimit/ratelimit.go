// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package ratelimit paces outbound publishes per topic.
package ratelimit

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// TopicRateLimiter manages publish pacing per topic, so one chatty topic
// cannot starve the server-side quota of the others.
type TopicRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rate     rate.Limit
	burst    int
}

// NewTopicRateLimiter creates a new topic-based rate limiter. r is
// publishes per second, burst is the burst allowance.
func NewTopicRateLimiter(r float64, burst int) *TopicRateLimiter {
	return &TopicRateLimiter{
		limiters: make(map[string]*rate.Limiter),
		rate:     rate.Limit(r),
		burst:    burst,
	}
}

func (l *TopicRateLimiter) limiter(topic string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	limiter, exists := l.limiters[topic]
	if !exists {
		limiter = rate.NewLimiter(l.rate, l.burst)
		l.limiters[topic] = limiter
	}
	return limiter
}

// Allow reports whether a publish to the given topic may proceed now.
func (l *TopicRateLimiter) Allow(topic string) bool {
	return l.limiter(topic).Allow()
}

// Wait blocks until a publish to the given topic may proceed, or the
// context is done.
func (l *TopicRateLimiter) Wait(ctx context.Context, topic string) error {
	return l.limiter(topic).Wait(ctx)
}

// RemoveTopic drops the limiter state for a topic.
func (l *TopicRateLimiter) RemoveTopic(topic string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.limiters, topic)
}
