// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package wire

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageHeaders(t *testing.T) {
	p := PriorityHigh
	m := &Message{
		Topic:    "alerts",
		Message:  String("disk almost full"),
		Title:    String("storage"),
		Priority: &p,
		Tags:     []string{"warning", "cd"},
		Markdown: Bool(true),
	}
	hs, err := m.Headers()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"X-Message":  "disk almost full",
		"X-Title":    "storage",
		"X-Priority": "4",
		"X-Tags":     "warning,cd",
		"X-Markdown": "1",
	}, headerMap(t, hs))
}

func TestMessageHeadersSkipUnset(t *testing.T) {
	m := &Message{Title: String("only title")}
	hs, err := m.Headers()
	require.NoError(t, err)
	assert.Equal(t, []Header{{Name: "X-Title", Value: "only title"}}, hs)
}

func TestMessageHeadersZeroValuesAreSerialized(t *testing.T) {
	m := &Message{
		Message:  String(""),
		Markdown: Bool(false),
		Cache:    Bool(false),
	}
	hs, err := m.Headers()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"X-Message":  "",
		"X-Markdown": "0",
		"X-Cache":    "0",
	}, headerMap(t, hs))
}

func TestMessageHeaderNewlineEscaping(t *testing.T) {
	m := &Message{Message: String("line1\nline2\rline3\fline4")}
	hs, err := m.Headers()
	require.NoError(t, err)
	assert.Equal(t, `line1\nline2\rline3\fline4`, hs[0].Value)
}

func TestMessageDelay(t *testing.T) {
	tests := []struct {
		name  string
		delay any
		want  string
	}{
		{name: "string", delay: "30min", want: "30min"},
		{name: "timestamp", delay: 1700000000, want: "1700000000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Message{Delay: tt.delay}
			hs, err := m.Headers()
			require.NoError(t, err)
			assert.Equal(t, []Header{{Name: "X-Delay", Value: tt.want}}, hs)
		})
	}
}

func TestMessageDelayUnsupportedType(t *testing.T) {
	m := &Message{Delay: 1.5}
	_, err := m.Headers()
	assert.ErrorIs(t, err, ErrUnsupportedValue)
}

func TestMessageActionsHeader(t *testing.T) {
	m := &Message{
		Actions: []Action{
			ViewAction{Label: "open", URL: "https://x"},
			BroadcastAction{Label: "ping"},
		},
	}
	hs, err := m.Headers()
	require.NoError(t, err)
	assert.Equal(t, []Header{{
		Name:  "X-Actions",
		Value: "view,open,https://x;broadcast,ping",
	}}, hs)
}

func TestMessageMutualExclusivity(t *testing.T) {
	m := &Message{
		Templating: Bool(true),
		Filename:   String("report.pdf"),
	}
	assert.ErrorIs(t, m.Validate(), ErrMutuallyExclusive)

	_, err := m.Headers()
	assert.ErrorIs(t, err, ErrMutuallyExclusive)

	_, err = m.Body()
	assert.ErrorIs(t, err, ErrMutuallyExclusive)

	// either alone is fine
	assert.NoError(t, (&Message{Templating: Bool(true)}).Validate())
	assert.NoError(t, (&Message{Filename: String("a.txt")}).Validate())
}

func TestMessageBody(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		r, err := (&Message{}).Body()
		require.NoError(t, err)
		assert.Nil(t, r)
	})

	t.Run("bytes", func(t *testing.T) {
		r, err := (&Message{Data: []byte("raw")}).Body()
		require.NoError(t, err)
		got, _ := io.ReadAll(r)
		assert.Equal(t, "raw", string(got))
	})

	t.Run("string", func(t *testing.T) {
		r, err := (&Message{Data: "text"}).Body()
		require.NoError(t, err)
		got, _ := io.ReadAll(r)
		assert.Equal(t, "text", string(got))
	})

	t.Run("templating marshals json", func(t *testing.T) {
		m := &Message{
			Templating: Bool(true),
			Data:       map[string]any{"name": "world"},
		}
		r, err := m.Body()
		require.NoError(t, err)
		got, _ := io.ReadAll(r)
		assert.JSONEq(t, `{"name":"world"}`, string(got))
	})

	t.Run("unsupported", func(t *testing.T) {
		_, err := (&Message{Data: 42}).Body()
		assert.ErrorIs(t, err, ErrUnsupportedValue)
	})
}
