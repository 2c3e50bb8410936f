// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaderMap(t *testing.T) {
	tests := []struct {
		name  string
		creds Credentials
		want  map[string]string
	}{
		{
			name:  "none",
			creds: Credentials{},
			want:  map[string]string{},
		},
		{
			name:  "bearer",
			creds: Bearer("tk_abc"),
			want:  map[string]string{"Authorization": "Bearer tk_abc"},
		},
		{
			name:  "basic pair",
			creds: Basic("u", "p"),
			want:  map[string]string{"Authorization": "Basic dTpw"},
		},
		{
			name:  "basic pre-encoded",
			creds: BasicToken("dTpw"),
			want:  map[string]string{"Authorization": "Basic dTpw"},
		},
		{
			name:  "bearer wins over basic",
			creds: Credentials{basic: []string{"u", "p"}, bearer: "tk"},
			want:  map[string]string{"Authorization": "Bearer tk"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.creds.HeaderMap()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHeaderMapInvalidShape(t *testing.T) {
	_, err := BasicFrom("a", "b", "c").HeaderMap()
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// an empty shape is simply "no credentials"
	got, err := BasicFrom().HeaderMap()
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestIsZero(t *testing.T) {
	assert.True(t, Credentials{}.IsZero())
	assert.False(t, Basic("u", "p").IsZero())
	assert.False(t, Bearer("t").IsZero())
}
