package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/getmockd/regdesk/pkg/domain"
)

// Filter is a listing filter that knows its query encoding.
type Filter interface {
	Values() url.Values
}

// PageQuery selects one page of a listing.
type PageQuery struct {
	Page  int
	Size  int
	Sort  string
	Order string
}

func (q PageQuery) apply(v url.Values) {
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Size > 0 {
		v.Set("size", strconv.Itoa(q.Size))
	}
	if q.Sort != "" {
		v.Set("sort", q.Sort)
	}
	if q.Order != "" {
		v.Set("order", q.Order)
	}
}

// maxListPages bounds the pages List follows for one call.
const maxListPages = 1000

// Resource is the typed CRUD client for one resource path. It satisfies the
// service layer's repository contract, so services run unchanged against a
// live backend.
type Resource[T any, P any, F Filter] struct {
	c    *Client
	name string
}

// NewResource returns a client for the named resource.
func NewResource[T any, P any, F Filter](c *Client, name string) *Resource[T, P, F] {
	return &Resource[T, P, F]{c: c, name: name}
}

// Name returns the resource name.
func (r *Resource[T, P, F]) Name() string {
	return r.name
}

// List returns every record matching filter. The backend may answer with a
// bare array or with a paginated envelope; in the latter case List follows
// the remaining pages.
func (r *Resource[T, P, F]) List(ctx context.Context, filter F) ([]T, error) {
	query := filter.Values()
	data, err := r.c.call(ctx, http.MethodGet, CollectionPath(r.name), query, nil)
	if err != nil {
		return nil, err
	}
	if data, err = unwrap(data); err != nil {
		return nil, err
	}
	if items, ok, err := decodeArray[T](data); ok || err != nil {
		return items, err
	}

	page, err := domain.DecodePage[T](data, r.name)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s list: %w", r.name, err)
	}
	items := page.Items
	for n := 1; page.HasMore && n < maxListPages; n++ {
		page, err = r.Page(ctx, filter, PageQuery{Page: page.Page + 1, Size: page.Size})
		if err != nil {
			return nil, err
		}
		items = append(items, page.Items...)
	}
	return items, nil
}

// Page fetches a single page.
func (r *Resource[T, P, F]) Page(ctx context.Context, filter F, q PageQuery) (domain.Page[T], error) {
	query := filter.Values()
	q.apply(query)
	data, err := r.c.call(ctx, http.MethodGet, CollectionPath(r.name), query, nil)
	if err != nil {
		return domain.Page[T]{}, err
	}
	if data, err = unwrap(data); err != nil {
		return domain.Page[T]{}, err
	}
	if items, ok, err := decodeArray[T](data); ok || err != nil {
		return domain.Page[T]{
			TotalCount: len(items),
			TotalPages: 1,
			Page:       1,
			Size:       len(items),
			Items:      items,
			ListKey:    r.name,
		}, err
	}
	page, err := domain.DecodePage[T](data, r.name)
	if err != nil {
		return page, fmt.Errorf("failed to decode %s page: %w", r.name, err)
	}
	return page, nil
}

// Get returns one record.
func (r *Resource[T, P, F]) Get(ctx context.Context, id string) (T, error) {
	data, err := r.c.call(ctx, http.MethodGet, ItemPath(r.name, id), nil, nil)
	if err != nil {
		var zero T
		return zero, err
	}
	return decodeOne[T](data)
}

// Create stores a new record and returns it with the backend's defaults.
func (r *Resource[T, P, F]) Create(ctx context.Context, row T) (T, error) {
	data, err := r.c.call(ctx, http.MethodPost, CollectionPath(r.name), nil, row)
	if err != nil {
		var zero T
		return zero, err
	}
	return decodeOne[T](data)
}

// Update sends a partial update.
func (r *Resource[T, P, F]) Update(ctx context.Context, id string, patch P) (T, error) {
	data, err := r.c.call(ctx, http.MethodPatch, ItemPath(r.name, id), nil, patch)
	if err != nil {
		var zero T
		return zero, err
	}
	return decodeOne[T](data)
}

// Delete removes a record.
func (r *Resource[T, P, F]) Delete(ctx context.Context, id string) error {
	_, err := r.c.call(ctx, http.MethodDelete, ItemPath(r.name, id), nil, nil)
	return err
}

// Action runs a status action such as "renew" on a record.
func (r *Resource[T, P, F]) Action(ctx context.Context, id, action string) (T, error) {
	data, err := r.c.call(ctx, http.MethodPost, ActionPath(r.name, id, action), nil, nil)
	if err != nil {
		var zero T
		return zero, err
	}
	return decodeOne[T](data)
}

// Stats decodes the resource statistics into out.
func (r *Resource[T, P, F]) Stats(ctx context.Context, out any) error {
	data, err := r.c.call(ctx, http.MethodGet, StatsPath(r.name), nil, nil)
	if err != nil {
		return err
	}
	v, err := decodeOne[json.RawMessage](data)
	if err != nil {
		return err
	}
	return json.Unmarshal(v, out)
}

// decodeArray decodes data when it is a bare JSON array. ok is false for
// any other shape.
func decodeArray[T any](data []byte) (items []T, ok bool, err error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, false, nil
	}
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, true, fmt.Errorf("failed to decode list: %w", err)
	}
	if items == nil {
		items = []T{}
	}
	return items, true, nil
}
