package domain

import (
	"encoding/json"
	"fmt"
)

// Resource names. They double as the list key of paginated responses.
const (
	ResourceLicenses    = "licenses"
	ResourceVehicles    = "vehicles"
	ResourceViolations  = "violations"
	ResourceAuthorities = "authorities"
	ResourceNews        = "news"
)

// Envelope wraps single-object responses.
type Envelope[T any] struct {
	Success bool   `json:"success"`
	Data    *T     `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

// Page is one page of a paginated listing. On the wire the items sit under a
// resource-specific key such as "licenses".
type Page[T any] struct {
	TotalCount int    `json:"total_count"`
	TotalPages int    `json:"total_pages"`
	Page       int    `json:"page"`
	Size       int    `json:"size"`
	HasMore    bool   `json:"has_more"`
	Items      []T    `json:"-"`
	ListKey    string `json:"-"`
}

type pageMeta struct {
	TotalCount int  `json:"total_count"`
	TotalPages int  `json:"total_pages"`
	Page       int  `json:"page"`
	Size       int  `json:"size"`
	HasMore    bool `json:"has_more"`
}

// MarshalJSON writes the page with its items under ListKey, or "items" when
// ListKey is empty.
func (p Page[T]) MarshalJSON() ([]byte, error) {
	out := map[string]any{
		"total_count": p.TotalCount,
		"total_pages": p.TotalPages,
		"page":        p.Page,
		"size":        p.Size,
		"has_more":    p.HasMore,
	}
	key := p.ListKey
	if key == "" {
		key = "items"
	}
	items := p.Items
	if items == nil {
		items = []T{}
	}
	out[key] = items
	return json.Marshal(out)
}

// DecodePage decodes a paginated envelope whose items sit under listKey.
func DecodePage[T any](data []byte, listKey string) (Page[T], error) {
	var meta pageMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return Page[T]{}, err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return Page[T]{}, err
	}
	p := Page[T]{
		TotalCount: meta.TotalCount,
		TotalPages: meta.TotalPages,
		Page:       meta.Page,
		Size:       meta.Size,
		HasMore:    meta.HasMore,
		ListKey:    listKey,
	}
	items, ok := raw[listKey]
	if !ok {
		items, ok = raw["items"]
	}
	if !ok {
		return p, fmt.Errorf("paginated response has no %q list", listKey)
	}
	if err := json.Unmarshal(items, &p.Items); err != nil {
		return p, err
	}
	return p, nil
}
