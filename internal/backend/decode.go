package backend

import (
	"encoding/json"
	"fmt"
)

// listOf decodes either a bare JSON array or an object holding the array
// under key. The backend is not consistent between endpoints.
func listOf[T any](raw json.RawMessage, key string) ([]T, error) {
	var items []T
	if err := json.Unmarshal(raw, &items); err == nil {
		return items, nil
	}

	var wrapped map[string]json.RawMessage
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	inner, ok := wrapped[key]
	if !ok {
		inner, ok = wrapped["data"]
	}
	if !ok || string(inner) == "null" {
		return []T{}, nil
	}
	if err := json.Unmarshal(inner, &items); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return items, nil
}

// oneOf decodes an object either bare or wrapped under key.
func oneOf[T any](raw json.RawMessage, key string) (*T, error) {
	var wrapped map[string]json.RawMessage
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}

	inner, ok := wrapped[key]
	if !ok {
		inner = raw
	}
	if string(inner) == "null" {
		return nil, nil
	}

	var v T
	if err := json.Unmarshal(inner, &v); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return &v, nil
}
