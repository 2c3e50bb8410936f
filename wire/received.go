// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package wire

import (
	"encoding/json"
	"fmt"
)

// ReceivedAttachment describes an attachment on a received message.
// Type, Size and Expires are only present for server-hosted uploads.
type ReceivedAttachment struct {
	Name    string `json:"name"`
	URL     string `json:"url"`
	Type    string `json:"type,omitempty"`
	Size    int64  `json:"size,omitempty"`
	Expires int64  `json:"expires,omitempty"`
}

// ReceivedAction is a notification action parsed from a received message.
// The closed set of variants is ReceivedViewAction, ReceivedBroadcastAction
// and ReceivedHTTPAction, selected by the "action" discriminator.
type ReceivedAction interface {
	// ActionID returns the server-assigned action ID.
	ActionID() string
}

// ReceivedViewAction is a received "view" action.
type ReceivedViewAction struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	URL   string `json:"url"`
	Clear bool   `json:"clear"`
}

// ActionID implements ReceivedAction.
func (a ReceivedViewAction) ActionID() string { return a.ID }

// ReceivedBroadcastAction is a received "broadcast" action.
type ReceivedBroadcastAction struct {
	ID     string            `json:"id"`
	Label  string            `json:"label"`
	Clear  bool              `json:"clear"`
	Intent string            `json:"intent,omitempty"`
	Extras map[string]string `json:"extras,omitempty"`
}

// ActionID implements ReceivedAction.
func (a ReceivedBroadcastAction) ActionID() string { return a.ID }

// ReceivedHTTPAction is a received "http" action.
type ReceivedHTTPAction struct {
	ID      string            `json:"id"`
	Label   string            `json:"label"`
	URL     string            `json:"url"`
	Clear   bool              `json:"clear"`
	Method  HTTPMethod        `json:"method,omitempty"`
	Headers map[string]string `json:"headers,omitempty"`
	Body    string            `json:"body,omitempty"`
}

// ActionID implements ReceivedAction.
func (a ReceivedHTTPAction) ActionID() string { return a.ID }

// receivedActionParsers dispatches raw action objects by their "action"
// discriminator to the matching variant parser.
var receivedActionParsers = map[string]func(json.RawMessage) (ReceivedAction, error){
	"view": func(raw json.RawMessage) (ReceivedAction, error) {
		var a ReceivedViewAction
		err := json.Unmarshal(raw, &a)
		return a, err
	},
	"broadcast": func(raw json.RawMessage) (ReceivedAction, error) {
		var a ReceivedBroadcastAction
		err := json.Unmarshal(raw, &a)
		return a, err
	},
	"http": func(raw json.RawMessage) (ReceivedAction, error) {
		var a ReceivedHTTPAction
		err := json.Unmarshal(raw, &a)
		return a, err
	},
}

// ReceivedActions is a list of received actions with discriminator-based
// JSON decoding.
type ReceivedActions []ReceivedAction

// UnmarshalJSON implements json.Unmarshaler.
func (ra *ReceivedActions) UnmarshalJSON(data []byte) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return err
	}
	out := make(ReceivedActions, 0, len(raws))
	for _, raw := range raws {
		var disc struct {
			Action string `json:"action"`
		}
		if err := json.Unmarshal(raw, &disc); err != nil {
			return err
		}
		parse, ok := receivedActionParsers[disc.Action]
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownAction, disc.Action)
		}
		a, err := parse(raw)
		if err != nil {
			return err
		}
		out = append(out, a)
	}
	*ra = out
	return nil
}

// ReceivedMessage is a message received from the server, over either a
// poll stream or a live subscription. Optional fields are nil/zero when
// absent from the frame.
type ReceivedMessage struct {
	ID          string              `json:"id"`
	Time        int64               `json:"time"`
	Event       Event               `json:"event"`
	Topic       string              `json:"topic"`
	Message     *string             `json:"message"`
	Expires     *int64              `json:"expires"`
	Title       *string             `json:"title"`
	Tags        []Tag               `json:"tags"`
	Priority    *Priority           `json:"priority"`
	Click       *string             `json:"click"`
	Actions     ReceivedActions     `json:"actions"`
	Attachment  *ReceivedAttachment `json:"attachment"`
	Icon        *string             `json:"icon"`
	ContentType *string             `json:"content_type"`
}

// ParseMessage decodes one received JSON frame into a ReceivedMessage.
func ParseMessage(data []byte) (*ReceivedMessage, error) {
	var m ReceivedMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}
