// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Client errors.
var (
	// Configuration errors.
	ErrNilOptions = errors.New("options cannot be nil")
	ErrNoBaseURL  = errors.New("base URL cannot be empty")
	ErrNoTopic    = errors.New("no topic could be resolved")

	// Subscription errors.
	ErrAlreadyConnected = errors.New("subscription already connected")

	// Queue misuse.
	ErrTaskCount = errors.New("task done signaled more times than items were taken")
)

// APIError is a non-2xx response from the push server, carrying whatever
// detail fields the error body provided.
type APIError struct {
	StatusCode int

	HTTP   int    `json:"http"`
	Code   int    `json:"code"`
	Detail string `json:"error"`
	Link   string `json:"link"`
}

// newAPIError builds an APIError from a response status and body. The
// body is parsed best-effort; an unparsable body leaves only the status.
func newAPIError(status int, body []byte) *APIError {
	e := &APIError{StatusCode: status}
	_ = json.Unmarshal(body, e)
	return e
}

// Error implements the error interface.
func (e *APIError) Error() string {
	var parts []string
	if e.HTTP != 0 {
		parts = append(parts, fmt.Sprintf("http=%d", e.HTTP))
	}
	if e.Code != 0 {
		parts = append(parts, fmt.Sprintf("code=%d", e.Code))
	}
	if e.Detail != "" {
		parts = append(parts, fmt.Sprintf("error=%q", e.Detail))
	}
	if e.Link != "" {
		parts = append(parts, fmt.Sprintf("link=%s", e.Link))
	}
	if len(parts) == 0 {
		return fmt.Sprintf("error interacting with the API (http: %d)", e.StatusCode)
	}
	return fmt.Sprintf("error interacting with the API (%s)", strings.Join(parts, "; "))
}
