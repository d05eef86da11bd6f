package domain

import "net/url"

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

func put(v url.Values, key, value string) {
	if value != "" {
		v.Set(key, value)
	}
}

// Ptr returns a pointer to v. It is a convenience for building patches.
func Ptr[T any](v T) *T {
	return &v
}
