// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package wire

import "strings"

// Action is an outbound notification action attached to a message. The
// closed set of variants is ViewAction, BroadcastAction and HTTPAction.
type Action interface {
	// Serialize renders the action as a single X-Actions segment.
	Serialize() (string, error)
}

// ViewAction opens a website or app when activated.
type ViewAction struct {
	Label string
	URL   string
	Clear *bool
}

// BroadcastAction sends an Android broadcast intent when activated.
type BroadcastAction struct {
	Label  string
	Intent *string
	Extras map[string]string
	Clear  *bool
}

// HTTPAction sends an HTTP request when activated.
type HTTPAction struct {
	Label   string
	URL     string
	Method  string
	Headers map[string]string
	Body    *string
	Clear   *bool
}

var viewFields = []fieldDesc[ViewAction]{
	{wireKey: "label", positional: true, value: func(a *ViewAction) any { return a.Label }, encode: encodeActionValue},
	{wireKey: "url", positional: true, value: func(a *ViewAction) any { return a.URL }, encode: encodeActionValue},
	{wireKey: "clear", value: func(a *ViewAction) any { return optBool(a.Clear) }, encode: encodeActionValue},
}

var broadcastFields = []fieldDesc[BroadcastAction]{
	{wireKey: "label", positional: true, value: func(a *BroadcastAction) any { return a.Label }, encode: encodeActionValue},
	{wireKey: "intent", value: func(a *BroadcastAction) any { return optStr(a.Intent) }, encode: encodeActionValue},
	{wireKey: "extras", positional: true, value: func(a *BroadcastAction) any {
		if a.Extras == nil {
			return nil
		}
		return a.Extras
	}, encode: encodeActionValue},
	{wireKey: "clear", value: func(a *BroadcastAction) any { return optBool(a.Clear) }, encode: encodeActionValue},
}

var httpFields = []fieldDesc[HTTPAction]{
	{wireKey: "label", positional: true, value: func(a *HTTPAction) any { return a.Label }, encode: encodeActionValue},
	{wireKey: "url", positional: true, value: func(a *HTTPAction) any { return a.URL }, encode: encodeActionValue},
	{wireKey: "method", value: func(a *HTTPAction) any {
		if a.Method == "" {
			return nil
		}
		return a.Method
	}, encode: encodeActionValue},
	{wireKey: "headers", positional: true, value: func(a *HTTPAction) any {
		if a.Headers == nil {
			return nil
		}
		return a.Headers
	}, encode: encodeActionValue},
	{wireKey: "body", value: func(a *HTTPAction) any { return optStr(a.Body) }, encode: encodeActionValue},
	{wireKey: "clear", value: func(a *HTTPAction) any { return optBool(a.Clear) }, encode: encodeActionValue},
}

// Serialize implements Action.
func (a ViewAction) Serialize() (string, error) {
	return serializeAction("view", &a, viewFields)
}

// Serialize implements Action.
func (a BroadcastAction) Serialize() (string, error) {
	return serializeAction("broadcast", &a, broadcastFields)
}

// Serialize implements Action.
func (a HTTPAction) Serialize() (string, error) {
	return serializeAction("http", &a, httpFields)
}

// serializeAction yields the action tag, then one segment per set field:
// the bare encoded value for positional fields, "<key>=<value>" otherwise.
// Segments are joined with ",".
func serializeAction[T any](tag string, a *T, fields []fieldDesc[T]) (string, error) {
	segments := []string{tag}
	for _, f := range fields {
		v := f.value(a)
		if v == nil {
			continue
		}
		enc, err := f.encode(f.wireKey, v)
		if err != nil {
			return "", err
		}
		if f.positional {
			segments = append(segments, enc)
			continue
		}
		segments = append(segments, f.wireKey+"="+enc)
	}
	return strings.Join(segments, ","), nil
}

// SerializeActions joins the serialization of each action with ";", the
// X-Actions header value format.
func SerializeActions(actions []Action) (string, error) {
	parts := make([]string, 0, len(actions))
	for _, a := range actions {
		s, err := a.Serialize()
		if err != nil {
			return "", err
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, ";"), nil
}
