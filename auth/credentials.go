// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package auth resolves push server access credentials into HTTP headers.
package auth

import (
	"encoding/base64"
	"errors"
	"strings"
)

// ErrInvalidCredentials is returned when basic credentials do not have a
// valid shape (a pre-encoded token or a username/password pair).
var ErrInvalidCredentials = errors.New("invalid basic credentials")

// Credentials stores access credentials. The zero value means no
// authentication. If both basic and bearer credentials are set, bearer
// wins.
type Credentials struct {
	basic  []string
	bearer string
}

// Basic returns credentials for a username/password pair.
func Basic(username, password string) Credentials {
	return Credentials{basic: []string{username, password}}
}

// BasicToken returns credentials from an already base64-encoded
// "user:pass" token.
func BasicToken(token string) Credentials {
	return Credentials{basic: []string{token}}
}

// BasicFrom returns basic credentials from raw parts: a single part is
// treated as a pre-encoded token, two parts as a username/password pair.
// Any other shape fails resolution with ErrInvalidCredentials.
func BasicFrom(parts ...string) Credentials {
	return Credentials{basic: parts}
}

// Bearer returns credentials for a bearer token.
func Bearer(token string) Credentials {
	return Credentials{bearer: token}
}

// IsZero reports whether no credentials are set.
func (c Credentials) IsZero() bool {
	return c.bearer == "" && c.basic == nil
}

// HeaderMap resolves the credentials into an Authorization header map.
// The result may be empty.
func (c Credentials) HeaderMap() (map[string]string, error) {
	switch {
	case c.bearer != "":
		return map[string]string{"Authorization": "Bearer " + c.bearer}, nil
	case len(c.basic) == 1:
		return map[string]string{"Authorization": "Basic " + c.basic[0]}, nil
	case len(c.basic) == 2:
		token := base64.StdEncoding.EncodeToString([]byte(strings.Join(c.basic, ":")))
		return map[string]string{"Authorization": "Basic " + token}, nil
	case c.basic != nil:
		return nil, ErrInvalidCredentials
	default:
		return map[string]string{}, nil
	}
}
