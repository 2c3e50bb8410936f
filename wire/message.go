// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package wire

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Message is an outbound notification. Optional fields left at their zero
// pointer value are skipped on the wire; pointer helpers (String, Int,
// Bool) distinguish "unset" from false/0/"".
//
// Topic routes the message and becomes part of the request URL rather
// than a header; Data becomes the request body.
type Message struct {
	Topic    string
	Message  *string
	Title    *string
	Priority *Priority
	Tags     []string
	Markdown *bool

	// Delay schedules the message: a unix timestamp (int) or a
	// natural-language offset (string).
	Delay any

	// Templating interprets Data as JSON template context for the
	// message and title. Mutually exclusive with Filename.
	Templating *bool

	Actions    []Action
	Click      *string
	Attachment *string

	// Filename names the uploaded attachment carried in Data. Mutually
	// exclusive with Templating.
	Filename *string

	Icon        *string
	Email       *string
	Call        *string
	Cache       *bool
	Firebase    *bool
	UnifiedPush *bool

	// Data is the request body: raw bytes, an io.Reader, or (with
	// Templating) any JSON-marshalable value.
	Data any
}

var messageFields = []fieldDesc[Message]{
	{wireKey: "X-Message", value: func(m *Message) any { return optStr(m.Message) }, encode: encodeHeaderValue},
	{wireKey: "X-Title", value: func(m *Message) any { return optStr(m.Title) }, encode: encodeHeaderValue},
	{wireKey: "X-Priority", value: func(m *Message) any {
		if m.Priority == nil {
			return nil
		}
		return *m.Priority
	}, encode: encodeHeaderValue},
	{wireKey: "X-Tags", value: func(m *Message) any {
		if m.Tags == nil {
			return nil
		}
		return m.Tags
	}, encode: encodeStringList},
	{wireKey: "X-Markdown", value: func(m *Message) any { return optBool(m.Markdown) }, encode: encodeHeaderValue},
	{wireKey: "X-Delay", value: func(m *Message) any { return m.Delay }, encode: encodeHeaderValue},
	{wireKey: "X-Template", value: func(m *Message) any { return optBool(m.Templating) }, encode: encodeHeaderValue},
	{wireKey: "X-Actions", value: func(m *Message) any {
		if m.Actions == nil {
			return nil
		}
		return m.Actions
	}, encode: encodeActionList},
	{wireKey: "X-Click", value: func(m *Message) any { return optStr(m.Click) }, encode: encodeHeaderValue},
	{wireKey: "X-Attach", value: func(m *Message) any { return optStr(m.Attachment) }, encode: encodeHeaderValue},
	{wireKey: "X-Filename", value: func(m *Message) any { return optStr(m.Filename) }, encode: encodeHeaderValue},
	{wireKey: "X-Icon", value: func(m *Message) any { return optStr(m.Icon) }, encode: encodeHeaderValue},
	{wireKey: "X-Email", value: func(m *Message) any { return optStr(m.Email) }, encode: encodeHeaderValue},
	{wireKey: "X-Call", value: func(m *Message) any { return optStr(m.Call) }, encode: encodeHeaderValue},
	{wireKey: "X-Cache", value: func(m *Message) any { return optBool(m.Cache) }, encode: encodeHeaderValue},
	{wireKey: "X-Firebase", value: func(m *Message) any { return optBool(m.Firebase) }, encode: encodeHeaderValue},
	{wireKey: "X-UnifiedPush", value: func(m *Message) any { return optBool(m.UnifiedPush) }, encode: encodeHeaderValue},
}

func encodeActionList(_ string, v any) (string, error) {
	return SerializeActions(v.([]Action))
}

// Validate checks construction invariants before any I/O.
func (m *Message) Validate() error {
	if m.Templating != nil && m.Filename != nil {
		return ErrMutuallyExclusive
	}
	return nil
}

// Headers serializes every set header-mapped field in declaration order.
// The topic and body are not headers; see Topic and Body.
func (m *Message) Headers() ([]Header, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return serializeHeaders(m, messageFields)
}

// Body extracts the request body. With templating enabled, Data is
// JSON-encoded; otherwise raw bytes, strings and readers pass through.
// A nil Data yields a nil reader.
func (m *Message) Body() (io.Reader, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if m.Data == nil {
		return nil, nil
	}
	if m.Templating != nil && *m.Templating {
		buf, err := json.Marshal(m.Data)
		if err != nil {
			return nil, err
		}
		return bytes.NewReader(buf), nil
	}
	switch d := m.Data.(type) {
	case []byte:
		return bytes.NewReader(d), nil
	case string:
		return strings.NewReader(d), nil
	case io.Reader:
		return d, nil
	default:
		return nil, fmt.Errorf("%w: message data %T", ErrUnsupportedValue, m.Data)
	}
}
