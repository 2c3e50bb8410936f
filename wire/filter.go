// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package wire

import "strings"

// Filter stores filtering preferences applied when polling and
// subscribing. Unset fields are skipped entirely.
type Filter struct {
	// Since returns cached messages since a timestamp, duration or
	// message ID. Accepts a string or an int.
	Since any

	// Scheduled includes scheduled/delayed messages in the response.
	Scheduled *bool

	// ID matches an exact message ID.
	ID *string

	// Message matches an exact message body.
	Message *string

	// Title matches an exact title.
	Title *string

	// Priority matches any of the listed priorities.
	Priority []Priority

	// Tags matches messages carrying all listed tags.
	Tags []string
}

var filterFields = []fieldDesc[Filter]{
	{wireKey: "X-Since", value: func(f *Filter) any { return f.Since }, encode: encodeHeaderValue},
	{wireKey: "X-Scheduled", value: func(f *Filter) any { return optBool(f.Scheduled) }, encode: encodeHeaderValue},
	{wireKey: "X-ID", value: func(f *Filter) any { return optStr(f.ID) }, encode: encodeHeaderValue},
	{wireKey: "X-Message", value: func(f *Filter) any { return optStr(f.Message) }, encode: encodeHeaderValue},
	{wireKey: "X-Title", value: func(f *Filter) any { return optStr(f.Title) }, encode: encodeHeaderValue},
	{wireKey: "X-Priority", value: func(f *Filter) any {
		if f.Priority == nil {
			return nil
		}
		return f.Priority
	}, encode: encodePriorityList},
	{wireKey: "X-Tags", value: func(f *Filter) any {
		if f.Tags == nil {
			return nil
		}
		return f.Tags
	}, encode: encodeStringList},
}

func encodePriorityList(key string, v any) (string, error) {
	ps := v.([]Priority)
	parts := make([]string, 0, len(ps))
	for _, p := range ps {
		enc, err := encodeHeaderValue(key, p)
		if err != nil {
			return "", err
		}
		parts = append(parts, enc)
	}
	return strings.Join(parts, ","), nil
}

func encodeStringList(key string, v any) (string, error) {
	ss := v.([]string)
	parts := make([]string, 0, len(ss))
	for _, s := range ss {
		enc, err := encodeHeaderValue(key, s)
		if err != nil {
			return "", err
		}
		parts = append(parts, enc)
	}
	return strings.Join(parts, ","), nil
}

// Headers serializes the filter into request headers, one per set field,
// in declaration order.
func (f *Filter) Headers() ([]Header, error) {
	if f == nil {
		return nil, nil
	}
	return serializeHeaders(f, filterFields)
}
