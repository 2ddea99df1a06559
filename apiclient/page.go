package apiclient

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Page is the one shape list endpoints are normalized into. The API
// answers either a bare array or a {results, count} envelope.
type Page[T any] struct {
	Results  []T    `json:"results"`
	Count    int    `json:"count"`
	Next     string `json:"next,omitempty"`
	Previous string `json:"previous,omitempty"`
}

// DecodePage accepts both list shapes.
func DecodePage[T any](data []byte) (Page[T], error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return Page[T]{Results: []T{}}, nil
	}
	switch data[0] {
	case '[':
		var items []T
		if err := json.Unmarshal(data, &items); err != nil {
			return Page[T]{}, fmt.Errorf("decode list: %w", err)
		}
		return Page[T]{Results: items, Count: len(items)}, nil
	case '{':
		var envelope struct {
			Results  []T     `json:"results"`
			Count    *int    `json:"count"`
			Next     *string `json:"next"`
			Previous *string `json:"previous"`
		}
		if err := json.Unmarshal(data, &envelope); err != nil {
			return Page[T]{}, fmt.Errorf("decode page: %w", err)
		}
		page := Page[T]{Results: envelope.Results}
		if page.Results == nil {
			page.Results = []T{}
		}
		page.Count = len(page.Results)
		if envelope.Count != nil {
			page.Count = *envelope.Count
		}
		if envelope.Next != nil {
			page.Next = *envelope.Next
		}
		if envelope.Previous != nil {
			page.Previous = *envelope.Previous
		}
		return page, nil
	}
	return Page[T]{}, fmt.Errorf("decode list: unexpected payload %q", truncate(data, 32))
}

func truncate(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}
	return b[:n]
}
