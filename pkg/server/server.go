// Package server implements the mock REST backend. It serves the in-memory
// registry under /api/v1 with the same routes and bodies the HTTP client
// expects from the real backend, so the console can run against it in live
// mode.
package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/getmockd/regdesk/internal/id"
	"github.com/getmockd/regdesk/pkg/apperr"
	"github.com/getmockd/regdesk/pkg/audit"
	"github.com/getmockd/regdesk/pkg/auth"
	"github.com/getmockd/regdesk/pkg/domain"
	"github.com/getmockd/regdesk/pkg/httputil"
	"github.com/getmockd/regdesk/pkg/logging"
	"github.com/getmockd/regdesk/pkg/metrics"
	"github.com/getmockd/regdesk/pkg/ratelimit"
	"github.com/getmockd/regdesk/pkg/service"
	"github.com/getmockd/regdesk/pkg/views"
)

// BasePath prefixes every API route.
const BasePath = "/api/v1"

// DefaultAddr is the listen address of `regdesk serve`.
const DefaultAddr = "127.0.0.1:8080"

const shutdownTimeout = 5 * time.Second

// Deps are the services the server exposes.
type Deps struct {
	Licenses    *service.LicenseService
	Vehicles    *service.VehicleService
	Violations  *service.ViolationService
	Authorities *service.AuthorityService
	News        *service.NewsService
	Auth        *auth.Authenticator
}

func (d Deps) check() error {
	switch {
	case d.Licenses == nil, d.Vehicles == nil, d.Violations == nil,
		d.Authorities == nil, d.News == nil:
		return errors.New("server: every resource service is required")
	case d.Auth == nil:
		return errors.New("server: authenticator is required")
	}
	return nil
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Server) { s.log = log }
}

// WithMaxBodySize limits request bodies.
func WithMaxBodySize(n int64) Option {
	return func(s *Server) { s.maxBody = n }
}

// WithClock sets the time source for notification timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// WithAuthRateLimit limits sign-in requests per client IP to rps with the
// given burst. A zero rps turns the limit off.
func WithAuthRateLimit(rps float64, burst int) Option {
	return func(s *Server) {
		if rps <= 0 {
			s.authLimit = nil
			return
		}
		s.authLimit = ratelimit.New(ratelimit.Config{Rate: rps, Burst: burst})
	}
}

// WithAuditLog records mutations and sign-ins to l.
func WithAuditLog(l audit.Logger) Option {
	return func(s *Server) { s.audit = l }
}

// Server is the mock backend.
type Server struct {
	deps      Deps
	mux       *http.ServeMux
	hub       *Hub
	schemas   *Schemas
	metrics   *metrics.Metrics
	authLimit *ratelimit.Limiter
	audit     audit.Logger
	log       *slog.Logger
	maxBody   int64
	now       func() time.Time
}

// New builds a server over deps.
func New(deps Deps, opts ...Option) (*Server, error) {
	if err := deps.check(); err != nil {
		return nil, err
	}
	schemas, err := LoadSchemas()
	if err != nil {
		return nil, err
	}
	s := &Server{
		deps:      deps,
		mux:       http.NewServeMux(),
		schemas:   schemas,
		metrics:   metrics.New(),
		authLimit: ratelimit.New(ratelimit.Config{}),
		audit:     audit.Nop{},
		log:       logging.Nop(),
		maxBody:   httputil.DefaultMaxBody,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.hub = NewHub(s.log)
	s.metrics.TrackSubscribers(s.hub.Len)
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET "+BasePath+"/health", s.handleHealth)
	s.mux.Handle("GET /metrics", s.metrics.Handler())

	limit := ratelimit.Middleware(s.authLimit, s.refuse)
	s.mux.Handle("POST "+BasePath+"/auth/login", limit(http.HandlerFunc(s.handleLogin)))
	s.mux.HandleFunc("POST "+BasePath+"/auth/logout", s.handleLogout)
	s.mux.HandleFunc("GET "+BasePath+"/auth/me", s.handleMe)
	s.mux.Handle("POST "+BasePath+"/auth/wallet/nonce", limit(http.HandlerFunc(s.handleWalletNonce)))
	s.mux.Handle("POST "+BasePath+"/auth/wallet/login", limit(http.HandlerFunc(s.handleWalletLogin)))

	s.mux.HandleFunc("GET "+BasePath+"/events", s.handleEvents)

	d := s.deps
	(&resource[domain.License, domain.LicensePatch, domain.LicenseFilter]{
		srv:    s,
		name:   domain.ResourceLicenses,
		label:  "license",
		svc:    d.Licenses.Resource,
		view:   views.Licenses,
		filter: domain.LicenseFilterFromValues,
		id:     func(l domain.License) string { return l.ID },
		actions: map[string]func(context.Context, string) (domain.License, error){
			domain.ActionApprove:    d.Licenses.Approve,
			domain.ActionRenew:      d.Licenses.Renew,
			domain.ActionSuspend:    d.Licenses.Suspend,
			domain.ActionReactivate: d.Licenses.Reactivate,
			domain.ActionRevoke:     d.Licenses.Revoke,
		},
		stats: func(ctx context.Context) (any, error) { return d.Licenses.Stats(ctx) },
	}).register(s.mux)
	s.mux.HandleFunc("GET "+BasePath+"/licenses/expiring", s.handleExpiring)

	(&resource[domain.Vehicle, domain.VehiclePatch, domain.VehicleFilter]{
		srv:    s,
		name:   domain.ResourceVehicles,
		label:  "vehicle",
		svc:    d.Vehicles.Resource,
		view:   views.Vehicles,
		filter: domain.VehicleFilterFromValues,
		id:     func(v domain.Vehicle) string { return v.ID },
		actions: map[string]func(context.Context, string) (domain.Vehicle, error){
			domain.ActionActivate:   d.Vehicles.Activate,
			domain.ActionSuspend:    d.Vehicles.Suspend,
			domain.ActionDeregister: d.Vehicles.Deregister,
		},
		stats: func(ctx context.Context) (any, error) { return d.Vehicles.Stats(ctx) },
	}).register(s.mux)

	(&resource[domain.Violation, domain.ViolationPatch, domain.ViolationFilter]{
		srv:    s,
		name:   domain.ResourceViolations,
		label:  "violation",
		svc:    d.Violations.Resource,
		view:   views.Violations,
		filter: domain.ViolationFilterFromValues,
		id:     func(v domain.Violation) string { return v.ID },
		actions: map[string]func(context.Context, string) (domain.Violation, error){
			domain.ActionPay:    d.Violations.Pay,
			domain.ActionCancel: d.Violations.Cancel,
		},
		stats: func(ctx context.Context) (any, error) { return d.Violations.Stats(ctx) },
	}).register(s.mux)
	s.mux.HandleFunc("POST "+BasePath+"/violations/mark-overdue", s.requireWrite(s.handleMarkOverdue))

	(&resource[domain.Authority, domain.AuthorityPatch, domain.AuthorityFilter]{
		srv:    s,
		name:   domain.ResourceAuthorities,
		label:  "authority",
		svc:    d.Authorities.Resource,
		view:   views.Authorities,
		filter: domain.AuthorityFilterFromValues,
		id:     func(a domain.Authority) string { return a.ID },
	}).register(s.mux)

	(&resource[domain.News, domain.NewsPatch, domain.NewsFilter]{
		srv:    s,
		name:   domain.ResourceNews,
		label:  "news",
		svc:    d.News.Resource,
		view:   views.News,
		filter: domain.NewsFilterFromValues,
		id:     func(n domain.News) string { return n.ID },
		actions: map[string]func(context.Context, string) (domain.News, error){
			domain.ActionPublish: d.News.Publish,
			domain.ActionArchive: d.News.Archive,
		},
	}).register(s.mux)
}

// Handler returns the root handler with request logging and metrics.
func (s *Server) Handler() http.Handler {
	return s.logRequests(s.mux)
}

// Metrics returns the server's collectors.
func (s *Server) Metrics() *metrics.Metrics {
	return s.metrics
}

// Hub returns the notification hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Serve accepts connections on ln until ctx is cancelled, then closes the
// event streams and shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	s.log.Info("mock backend listening", "addr", ln.Addr().String(), "base", BasePath)

	select {
	case err := <-errCh:
		s.hub.Close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.hub.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.log.Info("mock backend stopped")
	return nil
}

// ListenAndServe listens on addr and calls Serve.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"time":   s.now().UTC(),
	})
}

func (s *Server) handleExpiring(w http.ResponseWriter, r *http.Request) {
	rows, err := s.deps.Licenses.Expiring(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if rows == nil {
		rows = []domain.License{}
	}
	httputil.WriteJSON(w, http.StatusOK, rows)
}

func (s *Server) handleMarkOverdue(w http.ResponseWriter, r *http.Request) {
	marked, err := s.deps.Violations.MarkOverdue(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	for _, v := range marked {
		s.notify(r, domain.NotifyAction, domain.ResourceViolations, "violation", v.ID, "marked overdue")
	}
	if marked == nil {
		marked = []domain.Violation{}
	}
	httputil.WriteData(w, http.StatusOK, marked)
}

// decodeBody reads the body, checks it against the named schema and decodes
// it into v.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, schema string, v any) error {
	data, err := httputil.ReadBody(w, r, s.maxBody)
	if err != nil {
		return err
	}
	if err := s.schemas.Validate(schema, data); err != nil {
		return err
	}
	return httputil.DecodeJSON(data, v)
}

// writeError writes the error body. Internal failures are logged here since
// their text never reaches the client.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	resp := httputil.WriteError(w, err)
	if resp.StatusCode >= http.StatusInternalServerError {
		s.log.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		return
	}
	s.log.Debug("request rejected", "method", r.Method, "path", r.URL.Path, "kind", resp.Error, "error", err)
}

// refuse answers a throttled sign-in request.
func (s *Server) refuse(w http.ResponseWriter, r *http.Request, retryAfter time.Duration) {
	s.metrics.RecordRateLimited(r.Pattern)
	s.log.Warn("sign-in throttled", "client", ratelimit.ClientIP(r), "path", r.URL.Path)
	httputil.WriteError(w, &apperr.ServerError{
		Status:  http.StatusTooManyRequests,
		Message: fmt.Sprintf("too many sign-in attempts; retry in %ds", ratelimit.RetrySeconds(retryAfter)),
	})
}

// notify publishes a change notification attributed to the request's user.
func (s *Server) notify(r *http.Request, kind, resource, label, recordID, verb string) {
	actor := "someone"
	entry := audit.Entry{Event: audit.EventFor(kind), Resource: resource, ID: recordID, Action: verb}
	if u, ok := userFrom(r.Context()); ok {
		actor = u.Username
		entry.Actor, entry.Role = u.Username, u.Role
	}
	s.record(r, entry)
	s.metrics.RecordChange(resource, kind)
	s.hub.Publish(domain.Notification{
		ID:         id.UUID(),
		Type:       kind,
		Title:      cases.Title(language.English).String(label) + " " + verb,
		Message:    fmt.Sprintf("%s %s %s by %s", label, recordID, verb, actor),
		Resource:   resource,
		ResourceID: recordID,
		CreatedAt:  s.now().UTC(),
	})
}

// record writes an audit entry stamped with the request's method and
// client address.
func (s *Server) record(r *http.Request, e audit.Entry) {
	e.Time = s.now().UTC()
	e.Method = r.Method
	e.Client = ratelimit.ClientIP(r)
	if err := s.audit.Log(e); err != nil {
		s.log.Warn("failed to write audit entry", "event", e.Event, "error", err)
	}
}

// statusRecorder captures the response status for request logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Hijack lets the event stream take over the connection.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		done := s.metrics.Begin()
		defer done()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		elapsed := time.Since(start)
		s.metrics.ObserveRequest(r.Method, r.Pattern, rec.status, elapsed)
		s.log.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", elapsed,
		)
	})
}
