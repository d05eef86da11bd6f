package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/getmockd/regdesk/pkg/logging"
)

// Repository is the storage contract shared by the mock store and the HTTP
// client. T is the record type, P its patch type and F its filter type.
type Repository[T, P, F any] interface {
	List(ctx context.Context, filter F) ([]T, error)
	Get(ctx context.Context, id string) (T, error)
	Create(ctx context.Context, row T) (T, error)
	Update(ctx context.Context, id string, patch P) (T, error)
	Delete(ctx context.Context, id string) error
}

// Actioner is implemented by repositories that run status actions
// themselves, such as the HTTP client whose backend owns the rules. Services
// hand actions to it instead of applying them locally.
type Actioner[T any] interface {
	Action(ctx context.Context, id, action string) (T, error)
}

// Validator checks a record before it is created or written back after an
// update.
type Validator[T any] func(T) error

// Merger is implemented by patch types that can be merged over a record.
type Merger[T any] interface {
	Apply(row T) T
}

// Option configures a service.
type Option func(*options)

type options struct {
	log *slog.Logger
	now func() time.Time
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(o *options) { o.log = log }
}

// WithClock sets the time source used by status actions and statistics.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func buildOptions(opts []Option) options {
	o := options{log: logging.Nop(), now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Resource is the generic CRUD service over a repository.
type Resource[T, P, F any] struct {
	name     string
	repo     Repository[T, P, F]
	validate Validator[T]
	remote   Actioner[T]
	log      *slog.Logger
	now      func() time.Time
}

// NewResource returns a CRUD service. validate may be nil.
func NewResource[T, P, F any](name string, repo Repository[T, P, F], validate Validator[T], opts ...Option) *Resource[T, P, F] {
	o := buildOptions(opts)
	r := &Resource[T, P, F]{
		name:     name,
		repo:     repo,
		validate: validate,
		log:      o.log.With("resource", name),
		now:      o.now,
	}
	if a, ok := repo.(Actioner[T]); ok {
		r.remote = a
	}
	return r
}

// Name returns the resource name.
func (r *Resource[T, P, F]) Name() string {
	return r.name
}

// GetAll returns the records matching filter.
func (r *Resource[T, P, F]) GetAll(ctx context.Context, filter F) ([]T, error) {
	return r.repo.List(ctx, filter)
}

// GetByID returns one record.
func (r *Resource[T, P, F]) GetByID(ctx context.Context, id string) (T, error) {
	return r.repo.Get(ctx, id)
}

// Create validates row and stores it. The returned record carries the
// generated fields.
func (r *Resource[T, P, F]) Create(ctx context.Context, row T) (T, error) {
	if r.validate != nil {
		if err := r.validate(row); err != nil {
			var zero T
			return zero, err
		}
	}
	created, err := r.repo.Create(ctx, row)
	if err != nil {
		return created, err
	}
	r.log.Info("record created")
	return created, nil
}

// Update merges patch into the record. The merged record must pass the same
// validation as Create. The status field is not checked against the
// transition rules; use the dedicated actions for that.
func (r *Resource[T, P, F]) Update(ctx context.Context, id string, patch P) (T, error) {
	if err := r.checkPatch(ctx, id, patch); err != nil {
		var zero T
		return zero, err
	}
	updated, err := r.repo.Update(ctx, id, patch)
	if err != nil {
		return updated, err
	}
	r.log.Info("record updated", "id", id)
	return updated, nil
}

// checkPatch validates patch merged over the stored record. Repositories
// that run actions remotely leave validation to their backend.
func (r *Resource[T, P, F]) checkPatch(ctx context.Context, id string, patch P) error {
	if r.validate == nil || r.remote != nil {
		return nil
	}
	m, ok := any(patch).(Merger[T])
	if !ok {
		return nil
	}
	current, err := r.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	return r.validate(m.Apply(current))
}

// Delete removes the record. Deleting a missing record succeeds.
func (r *Resource[T, P, F]) Delete(ctx context.Context, id string) error {
	if err := r.repo.Delete(ctx, id); err != nil {
		return err
	}
	r.log.Info("record deleted", "id", id)
	return nil
}
