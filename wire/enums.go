// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package wire

import (
	"encoding/json"
	"fmt"
)

// Priority is a message priority level (1=min, 3=default, 5=max).
type Priority int

// Message priorities.
const (
	PriorityMin     Priority = 1
	PriorityLow     Priority = 2
	PriorityDefault Priority = 3
	PriorityHigh    Priority = 4
	PriorityMax     Priority = 5
)

// Valid reports whether p is a known priority level.
func (p Priority) Valid() bool {
	return p >= PriorityMin && p <= PriorityMax
}

// String returns the priority name.
func (p Priority) String() string {
	switch p {
	case PriorityMin:
		return "min"
	case PriorityLow:
		return "low"
	case PriorityDefault:
		return "default"
	case PriorityHigh:
		return "high"
	case PriorityMax:
		return "max"
	default:
		return "unknown"
	}
}

// UnmarshalJSON decodes and validates a priority level.
func (p *Priority) UnmarshalJSON(data []byte) error {
	var v int
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if !Priority(v).Valid() {
		return fmt.Errorf("%w: priority %d", ErrInvalidEnum, v)
	}
	*p = Priority(v)
	return nil
}

// Event is the type of a received server event.
type Event string

// Server event types.
const (
	EventOpen        Event = "open"
	EventMessage     Event = "message"
	EventKeepalive   Event = "keepalive"
	EventPollRequest Event = "poll_request"
)

// Valid reports whether e is a known event type.
func (e Event) Valid() bool {
	switch e {
	case EventOpen, EventMessage, EventKeepalive, EventPollRequest:
		return true
	default:
		return false
	}
}

// UnmarshalJSON decodes and validates an event type.
func (e *Event) UnmarshalJSON(data []byte) error {
	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if !Event(v).Valid() {
		return fmt.Errorf("%w: event %q", ErrInvalidEnum, v)
	}
	*e = Event(v)
	return nil
}

// HTTPMethod is the method of a received HTTP action.
type HTTPMethod string

// HTTP methods accepted in actions.
const (
	MethodGet    HTTPMethod = "GET"
	MethodPost   HTTPMethod = "POST"
	MethodPut    HTTPMethod = "PUT"
	MethodPatch  HTTPMethod = "PATCH"
	MethodDelete HTTPMethod = "DELETE"
)

// Tag is a message tag. Tags matching emoji short codes are rendered as
// emojis by clients; anything else is displayed verbatim.
type Tag string

// A few commonly used emoji short codes.
const (
	TagWarning       Tag = "warning"
	TagRotatingLight Tag = "rotating_light"
	TagTada          Tag = "tada"
	TagSkull         Tag = "skull"
	TagHeavyCheck    Tag = "heavy_check_mark"
	TagThumbsUp      Tag = "+1"
	TagThumbsDown    Tag = "-1"
)
