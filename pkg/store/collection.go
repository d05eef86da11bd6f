package store

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/getmockd/regdesk/pkg/apperr"
	"github.com/getmockd/regdesk/pkg/logging"
)

// Descriptor tells a Collection how to handle one record type.
type Descriptor[T, P, F any] struct {
	// Resource is the plural resource name used in errors and logs.
	Resource string
	// ID returns the record's identifier.
	ID func(T) string
	// Prepare fills defaults on a record about to be created: a generated ID
	// when none is set, timestamps and any derived dates.
	Prepare func(row T, now time.Time) T
	// Apply merges patch over row and stamps the update time.
	Apply func(row T, patch P, now time.Time) T
	// Match reports whether row satisfies filter.
	Match func(row T, filter F) bool
}

// Collection is an in-memory, insertion-ordered record list guarded by a
// mutex. It is the mock-mode repository for one resource.
type Collection[T, P, F any] struct {
	mu    sync.RWMutex
	desc  Descriptor[T, P, F]
	items []T
	seed  []T
	now   func() time.Time
	log   *slog.Logger
}

// Option configures a Collection.
type Option func(*options)

type options struct {
	now func() time.Time
	log *slog.Logger
}

// WithClock sets the time source used for generated timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(o *options) { o.log = log }
}

// NewCollection returns a collection holding a copy of seed.
func NewCollection[T, P, F any](desc Descriptor[T, P, F], seed []T, opts ...Option) *Collection[T, P, F] {
	o := options{now: time.Now, log: logging.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	c := &Collection[T, P, F]{
		desc: desc,
		seed: slices.Clone(seed),
		now:  o.now,
		log:  o.log.With("resource", desc.Resource),
	}
	c.items = slices.Clone(seed)
	return c
}

// Resource returns the resource name.
func (c *Collection[T, P, F]) Resource() string {
	return c.desc.Resource
}

// Len returns the number of records.
func (c *Collection[T, P, F]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// List returns the records matching filter in insertion order. The result
// is a fresh slice.
func (c *Collection[T, P, F]) List(_ context.Context, filter F) ([]T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]T, 0, len(c.items))
	for _, item := range c.items {
		if c.desc.Match == nil || c.desc.Match(item, filter) {
			out = append(out, item)
		}
	}
	return out, nil
}

// Get returns the record with the given id.
func (c *Collection[T, P, F]) Get(_ context.Context, id string) (T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if i := c.indexOf(id); i >= 0 {
		return c.items[i], nil
	}
	var zero T
	return zero, &apperr.NotFoundError{Resource: c.desc.Resource, ID: id}
}

// Create fills defaults on row and appends it.
func (c *Collection[T, P, F]) Create(_ context.Context, row T) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.desc.Prepare != nil {
		row = c.desc.Prepare(row, c.now())
	}
	id := c.desc.ID(row)
	if c.indexOf(id) >= 0 {
		var zero T
		return zero, &apperr.ConflictError{Resource: c.desc.Resource, ID: id}
	}
	c.items = append(c.items, row)
	c.log.Debug("record created", "id", id)
	return row, nil
}

// Update merges patch into the record with the given id, keeping its
// position.
func (c *Collection[T, P, F]) Update(_ context.Context, id string, patch P) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(id)
	if i < 0 {
		var zero T
		return zero, &apperr.NotFoundError{Resource: c.desc.Resource, ID: id}
	}
	c.items[i] = c.desc.Apply(c.items[i], patch, c.now())
	c.log.Debug("record updated", "id", id)
	return c.items[i], nil
}

// Delete removes the record with the given id. Deleting a missing record
// is not an error.
func (c *Collection[T, P, F]) Delete(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if i := c.indexOf(id); i >= 0 {
		c.items = slices.Delete(c.items, i, i+1)
		c.log.Debug("record deleted", "id", id)
	}
	return nil
}

// Reset restores the seed records.
func (c *Collection[T, P, F]) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = slices.Clone(c.seed)
}

// Replace swaps the seed and current records for rows.
func (c *Collection[T, P, F]) Replace(rows []T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seed = slices.Clone(rows)
	c.items = slices.Clone(rows)
}

func (c *Collection[T, P, F]) indexOf(id string) int {
	for i, item := range c.items {
		if c.desc.ID(item) == id {
			return i
		}
	}
	return -1
}
