// Package app wires the console together. It decides once, from
// configuration, whether records come from the in-memory mock store or from
// the live backend, and hands the same service types to every caller.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/getmockd/regdesk/pkg/api"
	"github.com/getmockd/regdesk/pkg/apperr"
	"github.com/getmockd/regdesk/pkg/auth"
	"github.com/getmockd/regdesk/pkg/config"
	"github.com/getmockd/regdesk/pkg/domain"
	"github.com/getmockd/regdesk/pkg/logging"
	"github.com/getmockd/regdesk/pkg/seed"
	"github.com/getmockd/regdesk/pkg/service"
	"github.com/getmockd/regdesk/pkg/session"
	"github.com/getmockd/regdesk/pkg/store"
	"github.com/getmockd/regdesk/pkg/wallet"
)

// ErrMockMode is returned for features that need the live backend.
var ErrMockMode = errors.New("not available with mock data; set USE_MOCK_DATA=false and point API_BASE_URL at a backend")

// Auth is the authentication surface shared by both modes.
type Auth interface {
	Login(ctx context.Context, username, password string) (domain.LoginResponse, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (domain.User, error)
	wallet.Backend
}

// App holds the services of one console session.
type App struct {
	Config  *config.Config
	Mode    config.Mode
	Log     *slog.Logger
	Session session.Store

	Licenses    *service.LicenseService
	Vehicles    *service.VehicleService
	Violations  *service.ViolationService
	Authorities *service.AuthorityService
	News        *service.NewsService
	Auth        Auth

	// Mock mode only.
	Seed          *seed.Set
	Authenticator *auth.Authenticator

	// Live mode only.
	API *api.Modules
}

// Option configures New.
type Option func(*options)

type options struct {
	log        *slog.Logger
	session    session.Store
	now        func() time.Time
	httpClient *http.Client
	bcryptCost int
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(o *options) { o.log = log }
}

// WithSession sets the session store instead of the session file.
func WithSession(s session.Store) Option {
	return func(o *options) { o.session = s }
}

// WithClock sets the time source of the mock store and services.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithHTTPClient sets the HTTP client used in live mode.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) { o.httpClient = hc }
}

// WithBcryptCost sets the cost used to hash seeded passwords in mock mode.
func WithBcryptCost(cost int) Option {
	return func(o *options) { o.bcryptCost = cost }
}

// New builds the console for cfg.
func New(cfg *config.Config, opts ...Option) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := options{log: logging.Nop(), now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	sess := o.session
	if sess == nil {
		path := cfg.SessionFile
		if path == "" {
			path = session.DefaultPath()
		}
		f, err := session.OpenFile(path)
		if err != nil {
			return nil, err
		}
		sess = f
	}

	a := &App{
		Config:  cfg,
		Mode:    cfg.Mode(),
		Log:     o.log.With("mode", string(cfg.Mode())),
		Session: sess,
	}

	var err error
	switch a.Mode {
	case config.ModeLive:
		err = a.wireLive(o)
	default:
		err = a.wireMock(o)
	}
	if err != nil {
		return nil, err
	}
	a.Log.Debug("console ready")
	return a, nil
}

func (a *App) wireMock(o options) error {
	set, err := seed.Default()
	if err != nil {
		return fmt.Errorf("failed to load seed data: %w", err)
	}
	dir := a.Config.SeedDir
	if dir == "" {
		dir = store.DefaultSeedDir()
	}
	if err := set.LoadDir(dir); err != nil {
		return err
	}
	set.Normalize()
	a.Seed = set

	storeOpts := []store.Option{store.WithClock(o.now), store.WithLogger(a.Log)}
	a.wireServices(o,
		store.NewLicenses(set.Licenses, storeOpts...),
		store.NewVehicles(set.Vehicles, storeOpts...),
		store.NewViolations(set.Violations, storeOpts...),
		store.NewAuthorities(set.Authorities, storeOpts...),
		store.NewNews(set.News, storeOpts...),
	)

	authOpts := []auth.Option{
		auth.WithTokenTTL(a.Config.TokenTTL),
		auth.WithWalletRole(domain.Role(a.Config.WalletRole)),
		auth.WithClock(o.now),
		auth.WithLogger(a.Log),
	}
	if a.Config.JWTSecret != "" {
		authOpts = append(authOpts, auth.WithSecret([]byte(a.Config.JWTSecret)))
	}
	if o.bcryptCost > 0 {
		authOpts = append(authOpts, auth.WithBcryptCost(o.bcryptCost))
	}
	authn, err := auth.New(set.Users, authOpts...)
	if err != nil {
		return err
	}
	a.Authenticator = authn
	a.Auth = &localAuth{authn: authn, session: a.Session, verify: a.Config.JWTSecret != ""}
	return nil
}

func (a *App) wireLive(o options) error {
	clientOpts := []api.Option{
		api.WithTimeout(a.Config.Timeout),
		api.WithSession(a.Session),
		api.WithLogger(a.Log),
		api.OnUnauthorized(func() {
			a.Log.Warn("session expired or was rejected; log in again")
		}),
	}
	if o.httpClient != nil {
		clientOpts = append(clientOpts, api.WithHTTPClient(o.httpClient))
	}
	mods := api.NewModules(api.New(a.Config.APIBaseURL, clientOpts...))
	a.API = mods
	a.Auth = mods.Auth
	a.wireServices(o, mods.Licenses, mods.Vehicles, mods.Violations, mods.Authorities, mods.News)
	return nil
}

func (a *App) wireServices(o options,
	licenses service.LicenseRepository,
	vehicles service.VehicleRepository,
	violations service.ViolationRepository,
	authorities service.AuthorityRepository,
	news service.NewsRepository,
) {
	opts := []service.Option{service.WithLogger(a.Log), service.WithClock(o.now)}
	a.Licenses = service.NewLicenseService(licenses, opts...)
	a.Vehicles = service.NewVehicleService(vehicles, opts...)
	a.Violations = service.NewViolationService(violations, opts...)
	a.Authorities = service.NewAuthorityService(authorities, opts...)
	a.News = service.NewNewsService(news, opts...)
}

// Events returns the change stream of the live backend.
func (a *App) Events() (*api.Events, error) {
	if a.API == nil {
		return nil, ErrMockMode
	}
	return a.API.Events, nil
}

// Flow returns a wallet login flow against the active backend.
func (a *App) Flow(opts ...wallet.Option) *wallet.Flow {
	opts = append([]wallet.Option{wallet.WithLogger(a.Log)}, opts...)
	return wallet.NewFlow(a.Auth, a.Session, opts...)
}

// localAuth serves authentication from the in-process authenticator and
// keeps the session store in step, the way the HTTP client does in live
// mode.
type localAuth struct {
	authn   *auth.Authenticator
	session session.Store
	// verify is false when the signing secret is random per process, in
	// which case tokens saved by an earlier run cannot be checked.
	verify bool
}

func (l *localAuth) Login(ctx context.Context, username, password string) (domain.LoginResponse, error) {
	resp, err := l.authn.Login(ctx, username, password)
	if err != nil {
		return resp, err
	}
	if err := session.SaveLogin(l.session, resp); err != nil {
		return resp, err
	}
	return resp, nil
}

func (l *localAuth) Logout(context.Context) error {
	return session.Clear(l.session)
}

func (l *localAuth) Me(ctx context.Context) (domain.User, error) {
	token := session.Token(l.session)
	if token == "" {
		return domain.User{}, &apperr.UnauthorizedError{Message: "not logged in"}
	}
	if l.verify {
		return l.authn.Me(ctx, token)
	}
	u, ok := session.User(l.session)
	if !ok {
		return domain.User{}, &apperr.UnauthorizedError{Message: "session has no user"}
	}
	return u, nil
}

func (l *localAuth) WalletNonce(ctx context.Context, address string) (domain.NonceResponse, error) {
	return l.authn.WalletNonce(ctx, address)
}

func (l *localAuth) WalletLogin(ctx context.Context, req domain.WalletLoginRequest) (domain.LoginResponse, error) {
	resp, err := l.authn.WalletLogin(ctx, req)
	if err != nil {
		return resp, err
	}
	if err := session.SaveLogin(l.session, resp); err != nil {
		return resp, err
	}
	return resp, nil
}
