// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMessage(t *testing.T) {
	raw := `{
		"id": "sPs71M8A2T",
		"time": 1700000000,
		"expires": 1700043200,
		"event": "message",
		"topic": "alerts",
		"title": "storage",
		"message": "disk almost full",
		"priority": 4,
		"tags": ["warning", "cd"],
		"click": "https://example.com/status",
		"icon": "https://example.com/icon.png",
		"content_type": "text/plain"
	}`

	m, err := ParseMessage([]byte(raw))
	require.NoError(t, err)

	assert.Equal(t, "sPs71M8A2T", m.ID)
	assert.Equal(t, int64(1700000000), m.Time)
	assert.Equal(t, EventMessage, m.Event)
	assert.Equal(t, "alerts", m.Topic)
	assert.Equal(t, "storage", *m.Title)
	assert.Equal(t, "disk almost full", *m.Message)
	assert.Equal(t, PriorityHigh, *m.Priority)
	assert.Equal(t, []Tag{"warning", "cd"}, m.Tags)
	assert.Equal(t, "https://example.com/status", *m.Click)
	assert.Equal(t, int64(1700043200), *m.Expires)
	assert.Equal(t, "text/plain", *m.ContentType)
	assert.Nil(t, m.Actions)
	assert.Nil(t, m.Attachment)
}

func TestParseMessageMinimal(t *testing.T) {
	m, err := ParseMessage([]byte(`{"id":"x","time":1,"event":"keepalive","topic":"t"}`))
	require.NoError(t, err)
	assert.Equal(t, EventKeepalive, m.Event)
	assert.Nil(t, m.Message)
	assert.Nil(t, m.Priority)
	assert.Nil(t, m.Tags)
}

func TestParseMessageAttachment(t *testing.T) {
	raw := `{
		"id": "x", "time": 1, "event": "message", "topic": "t",
		"attachment": {
			"name": "flower.jpg",
			"url": "https://push.example.com/file/y.jpg",
			"type": "image/jpeg",
			"size": 12345,
			"expires": 1700100000
		}
	}`
	m, err := ParseMessage([]byte(raw))
	require.NoError(t, err)
	require.NotNil(t, m.Attachment)
	assert.Equal(t, ReceivedAttachment{
		Name:    "flower.jpg",
		URL:     "https://push.example.com/file/y.jpg",
		Type:    "image/jpeg",
		Size:    12345,
		Expires: 1700100000,
	}, *m.Attachment)
}

func TestParseMessageActions(t *testing.T) {
	raw := `{
		"id": "x", "time": 1, "event": "message", "topic": "t",
		"actions": [
			{"action": "view", "id": "a1", "label": "Open", "url": "https://x", "clear": true},
			{"action": "broadcast", "id": "a2", "label": "Ping", "intent": "io.example.PING",
			 "extras": {"cmd": "ping"}},
			{"action": "http", "id": "a3", "label": "Close", "url": "https://y",
			 "method": "PUT", "headers": {"X-Token": "t"}, "body": "{}"}
		]
	}`
	m, err := ParseMessage([]byte(raw))
	require.NoError(t, err)
	require.Len(t, m.Actions, 3)

	view, ok := m.Actions[0].(ReceivedViewAction)
	require.True(t, ok)
	assert.Equal(t, ReceivedViewAction{ID: "a1", Label: "Open", URL: "https://x", Clear: true}, view)

	bc, ok := m.Actions[1].(ReceivedBroadcastAction)
	require.True(t, ok)
	assert.Equal(t, "io.example.PING", bc.Intent)
	assert.Equal(t, map[string]string{"cmd": "ping"}, bc.Extras)
	assert.False(t, bc.Clear)

	ha, ok := m.Actions[2].(ReceivedHTTPAction)
	require.True(t, ok)
	assert.Equal(t, MethodPut, ha.Method)
	assert.Equal(t, map[string]string{"X-Token": "t"}, ha.Headers)
	assert.Equal(t, "{}", ha.Body)

	for i, want := range []string{"a1", "a2", "a3"} {
		assert.Equal(t, want, m.Actions[i].ActionID())
	}
}

func TestParseMessageUnknownAction(t *testing.T) {
	raw := `{
		"id": "x", "time": 1, "event": "message", "topic": "t",
		"actions": [{"action": "teleport", "id": "a1", "label": "??"}]
	}`
	_, err := ParseMessage([]byte(raw))
	assert.ErrorIs(t, err, ErrUnknownAction)
}

func TestParseMessageInvalidPriority(t *testing.T) {
	_, err := ParseMessage([]byte(`{"id":"x","time":1,"event":"message","topic":"t","priority":9}`))
	assert.ErrorIs(t, err, ErrInvalidEnum)
}

func TestParseMessageInvalidEvent(t *testing.T) {
	_, err := ParseMessage([]byte(`{"id":"x","time":1,"event":"explode","topic":"t"}`))
	assert.ErrorIs(t, err, ErrInvalidEnum)
}

func TestParseMessageMalformedJSON(t *testing.T) {
	_, err := ParseMessage([]byte(`{not json`))
	assert.Error(t, err)
}
