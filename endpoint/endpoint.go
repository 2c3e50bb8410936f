// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package endpoint builds and rewrites push server URLs from a base URL,
// topics, and API endpoint suffixes.
package endpoint

import (
	"net/url"
	"strings"
)

// secureSchemes is the set of schemes considered secure when substituting
// a scheme pair in String.
var secureSchemes = map[string]bool{
	"https": true,
	"wss":   true,
	"sftp":  true,
	"aaas":  true,
	"msrps": true,
	"sips":  true,
}

// SchemePair holds an insecure/secure scheme pair used to rewrite the
// scheme of an Endpoint, e.g. {"ws", "wss"} for WebSocket upgrades.
type SchemePair struct {
	Insecure string
	Secure   string
}

// Endpoint is an immutable, decomposed server URL. The path never carries
// a trailing slash. Topic and endpoint suffixes produce new values rather
// than mutating the receiver.
type Endpoint struct {
	Scheme   string
	Host     string
	Path     string
	Query    string
	Fragment string
}

// Parse splits a URL string into an Endpoint, stripping any trailing slash
// from the path. Optional topics are appended to the path.
func Parse(rawURL string, topics ...string) (Endpoint, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return Endpoint{}, err
	}
	e := Endpoint{
		Scheme:   u.Scheme,
		Host:     u.Host,
		Path:     strings.TrimRight(u.Path, "/"),
		Query:    u.RawQuery,
		Fragment: u.Fragment,
	}
	for _, t := range topics {
		e = e.WithTopic(t)
	}
	return e, nil
}

// WithTopic returns a new Endpoint with the topic appended to the path.
func (e Endpoint) WithTopic(topic string) Endpoint {
	return e.withSuffix(topic)
}

// WithEndpoint returns a new Endpoint with the API endpoint suffix (e.g.
// "json", "ws") appended to the path.
func (e Endpoint) WithEndpoint(suffix string) Endpoint {
	return e.withSuffix(suffix)
}

func (e Endpoint) withSuffix(s string) Endpoint {
	e.Path = e.Path + "/" + strings.TrimLeft(s, "/")
	return e
}

// String reconstructs the full URL.
func (e Endpoint) String() string {
	return e.unparse(e.Scheme)
}

// StringWithScheme reconstructs the full URL with the scheme replaced by
// one half of the given pair. The secure variant is picked iff the current
// scheme is itself secure.
func (e Endpoint) StringWithScheme(pair SchemePair) string {
	scheme := pair.Insecure
	if secureSchemes[e.Scheme] {
		scheme = pair.Secure
	}
	return e.unparse(scheme)
}

func (e Endpoint) unparse(scheme string) string {
	u := url.URL{
		Scheme:   scheme,
		Host:     e.Host,
		Path:     e.Path,
		RawQuery: e.Query,
		Fragment: e.Fragment,
	}
	return u.String()
}
