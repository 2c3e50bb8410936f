// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"sync"

	"github.com/absmach/pushq/wire"
)

// Queue is a bounded FIFO of received messages shared between a
// subscription's consumer goroutine (sole producer) and any number of
// caller goroutines. A full queue drops the newest incoming item rather
// than blocking the producer; TaskDone/Join provide work-completion
// accounting in the style of a task queue.
type Queue struct {
	mu         sync.Mutex
	notEmpty   *sync.Cond
	allDone    *sync.Cond
	items      []*wire.ReceivedMessage
	maxSize    int
	unfinished int
}

// newQueue creates a queue with the given capacity. A capacity <= 0 means
// unbounded.
func newQueue(maxSize int) *Queue {
	q := &Queue{maxSize: maxSize}
	q.notEmpty = sync.NewCond(&q.mu)
	q.allDone = sync.NewCond(&q.mu)
	return q
}

// put appends an item without blocking. When the queue is at capacity the
// item is discarded and put reports false.
func (q *Queue) put(m *wire.ReceivedMessage) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.maxSize > 0 && len(q.items) >= q.maxSize {
		return false
	}
	q.items = append(q.items, m)
	q.unfinished++
	q.notEmpty.Signal()
	return true
}

// Get blocks until an item is available and removes it. Every item taken
// must eventually be balanced by a TaskDone call for Join to return.
func (q *Queue) Get() *wire.ReceivedMessage {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.items) == 0 {
		q.notEmpty.Wait()
	}
	return q.pop()
}

// TryGet removes and returns the head item, or reports false when the
// queue is empty.
func (q *Queue) TryGet() (*wire.ReceivedMessage, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return nil, false
	}
	return q.pop(), true
}

func (q *Queue) pop() *wire.ReceivedMessage {
	m := q.items[0]
	q.items = q.items[1:]
	return m
}

// TaskDone marks one previously taken item as processed. Signaling more
// completions than items were taken returns ErrTaskCount.
func (q *Queue) TaskDone() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.unfinished == 0 {
		return ErrTaskCount
	}
	q.unfinished--
	if q.unfinished == 0 {
		q.allDone.Broadcast()
	}
	return nil
}

// Join blocks until every item ever enqueued has been taken and marked
// done.
func (q *Queue) Join() {
	q.mu.Lock()
	defer q.mu.Unlock()
	for q.unfinished > 0 {
		q.allDone.Wait()
	}
}

// Clear discards all remaining items and recomputes the in-flight count
// so that items taken but not yet marked done stay accounted for. A
// negative count indicates TaskDone misuse and returns ErrTaskCount.
func (q *Queue) Clear() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	unfinished := q.unfinished - len(q.items)
	if unfinished < 0 {
		return ErrTaskCount
	}
	if unfinished == 0 {
		q.allDone.Broadcast()
	}
	q.unfinished = unfinished
	q.items = nil
	return nil
}

// reset unconditionally empties the queue and zeroes the accounting.
// Used on (re)connect, where stale accounting must not fail a fresh
// subscription.
func (q *Queue) reset() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = nil
	q.unfinished = 0
	q.allDone.Broadcast()
}

// Len returns the number of queued items.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
