package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/getmockd/regdesk/pkg/api"
	"github.com/getmockd/regdesk/pkg/apperr"
	"github.com/getmockd/regdesk/pkg/audit"
	"github.com/getmockd/regdesk/pkg/auth"
	"github.com/getmockd/regdesk/pkg/domain"
	"github.com/getmockd/regdesk/pkg/seed"
	"github.com/getmockd/regdesk/pkg/service"
	"github.com/getmockd/regdesk/pkg/session"
	"github.com/getmockd/regdesk/pkg/store"
	"github.com/getmockd/regdesk/pkg/wallet"
)

var now = time.Date(2025, 5, 20, 9, 0, 0, 0, time.UTC)

func clock() time.Time { return now }

type fixture struct {
	srv *Server
	ts  *httptest.Server
	set *seed.Set
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	set := seed.MustDefault()
	storeOpt := store.WithClock(clock)
	svcOpt := service.WithClock(clock)

	authn, err := auth.New(set.Users,
		auth.WithSecret([]byte("server-test-secret")),
		auth.WithBcryptCost(bcrypt.MinCost),
		auth.WithClock(clock),
	)
	require.NoError(t, err)

	srv, err := New(Deps{
		Licenses:    service.NewLicenseService(store.NewLicenses(set.Licenses, storeOpt), svcOpt),
		Vehicles:    service.NewVehicleService(store.NewVehicles(set.Vehicles, storeOpt), svcOpt),
		Violations:  service.NewViolationService(store.NewViolations(set.Violations, storeOpt), svcOpt),
		Authorities: service.NewAuthorityService(store.NewAuthorities(set.Authorities, storeOpt), svcOpt),
		News:        service.NewNewsService(store.NewNews(set.News, storeOpt), svcOpt),
		Auth:        authn,
	}, append([]Option{WithClock(clock)}, opts...)...)
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		srv.Hub().Close()
		ts.Close()
	})
	return &fixture{srv: srv, ts: ts, set: set}
}

// modules returns API modules logged in as username, or anonymous when
// username is empty.
func (f *fixture) modules(t *testing.T, username string) *api.Modules {
	t.Helper()
	m := api.NewModules(api.New(f.ts.URL+BasePath, api.WithSession(session.NewMemory())))
	if username != "" {
		_, err := m.Auth.Login(context.Background(), username, username+"123")
		require.NoError(t, err)
	}
	return m
}

func (f *fixture) do(t *testing.T, method, path, token, body string) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, f.ts.URL+BasePath+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func errorBody(t *testing.T, data []byte) apperr.Response {
	t.Helper()
	var body apperr.Response
	require.NoError(t, json.Unmarshal(data, &body))
	return body
}

func TestNew_RequiresDeps(t *testing.T) {
	_, err := New(Deps{})
	require.Error(t, err)
}

func TestHealth(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.modules(t, "").Client.Health(context.Background()))

	resp, data := f.do(t, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(data), `"status":"ok"`)
}

func TestList(t *testing.T) {
	f := newFixture(t)

	t.Run("bare array without paging params", func(t *testing.T) {
		resp, data := f.do(t, http.MethodGet, "/licenses", "", "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var rows []domain.License
		require.NoError(t, json.Unmarshal(data, &rows))
		assert.Len(t, rows, len(f.set.Licenses))
	})

	t.Run("page object with paging params", func(t *testing.T) {
		resp, data := f.do(t, http.MethodGet, "/licenses?page=2&size=3", "", "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		page, err := domain.DecodePage[domain.License](data, domain.ResourceLicenses)
		require.NoError(t, err)
		assert.Equal(t, len(f.set.Licenses), page.TotalCount)
		assert.Equal(t, 2, page.Page)
		assert.Equal(t, 3, page.Size)
		assert.Len(t, page.Items, 3)
		assert.True(t, page.HasMore)
	})

	t.Run("filter, where and sort", func(t *testing.T) {
		q := url.Values{}
		q.Set("where", "points < 12")
		q.Set("sort", "points")
		q.Set("order", "asc")
		_, data := f.do(t, http.MethodGet, "/licenses?"+q.Encode(), "", "")
		var rows []domain.License
		require.NoError(t, json.Unmarshal(data, &rows))
		require.Len(t, rows, 4)
		assert.Equal(t, "lic-005", rows[0].ID)
		assert.Equal(t, 0, rows[0].Points)

		q = url.Values{}
		q.Set("city", "Hà Nội")
		_, data = f.do(t, http.MethodGet, "/licenses?"+q.Encode(), "", "")
		rows = nil
		require.NoError(t, json.Unmarshal(data, &rows))
		assert.Len(t, rows, 3)
	})

	t.Run("client follows pages", func(t *testing.T) {
		rows, err := f.modules(t, "").Licenses.List(context.Background(), domain.LicenseFilter{Status: "active"})
		require.NoError(t, err)
		assert.Len(t, rows, 4)
	})

	tests := []struct {
		query string
		field string
	}{
		{"size=0", "size"},
		{"size=1000", "size"},
		{"page=abc", "page"},
		{"sort=bogus", "sort"},
		{"where=" + url.QueryEscape("points <"), "where"},
	}
	for _, tt := range tests {
		t.Run("rejects "+tt.query, func(t *testing.T) {
			resp, data := f.do(t, http.MethodGet, "/licenses?"+tt.query, "", "")
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			body := errorBody(t, data)
			assert.Equal(t, "validation", body.Error)
			assert.Equal(t, tt.field, body.Field)
		})
	}
}

func TestGet(t *testing.T) {
	f := newFixture(t)
	m := f.modules(t, "")

	l, err := m.Licenses.Get(context.Background(), "lic-001")
	require.NoError(t, err)
	assert.Equal(t, "lic-001", l.ID)

	_, err = m.Licenses.Get(context.Background(), "lic-404")
	var nf *apperr.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "lic-404", nf.ID)
}

func TestMutations_RequireWriteRole(t *testing.T) {
	f := newFixture(t)
	body := `{"holder_name":"Trần Thị Mai","holder_id_card":"079203004567","license_type":"B2"}`

	resp, data := f.do(t, http.MethodPost, "/licenses", "", body)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "unauthorized", errorBody(t, data).Error)

	resp, _ = f.do(t, http.MethodPost, "/licenses", "not-a-token", body)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	viewer := f.modules(t, "viewer")
	resp, data = f.do(t, http.MethodPost, "/licenses", session.Token(viewer.Client.Session()), body)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "forbidden", errorBody(t, data).Error)

	officer := f.modules(t, "officer")
	resp, data = f.do(t, http.MethodPost, "/licenses", session.Token(officer.Client.Session()), body)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(data))
	var env domain.Envelope[domain.License]
	require.NoError(t, json.Unmarshal(data, &env))
	require.NotNil(t, env.Data)
	assert.NotEmpty(t, env.Data.ID)
	assert.Equal(t, domain.LicensePending, env.Data.Status)
}

func TestCreate_SchemaValidation(t *testing.T) {
	f := newFixture(t)
	token := session.Token(f.modules(t, "admin").Client.Session())

	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"missing holder", `{"holder_id_card":"079203004567","license_type":"B2"}`, "holder_name"},
		{"unknown class", `{"holder_name":"A","holder_id_card":"079203004567","license_type":"Z9"}`, "license_type"},
		{"bad id card", `{"holder_name":"A","holder_id_card":"12","license_type":"B2"}`, "holder_id_card"},
		{"bad date", `{"holder_name":"A","holder_id_card":"079203004567","license_type":"B2","expiry_date":"tomorrow"}`, "expiry_date"},
		{"points out of range", `{"holder_name":"A","holder_id_card":"079203004567","license_type":"B2","points":20}`, "points"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, data := f.do(t, http.MethodPost, "/licenses", token, tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			body := errorBody(t, data)
			assert.Equal(t, "validation", body.Error)
			assert.Equal(t, tt.field, body.Field)
		})
	}

	resp, data := f.do(t, http.MethodPost, "/licenses", token, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "request body is required", errorBody(t, data).Message)

	resp, _ = f.do(t, http.MethodPatch, "/licenses/lic-001", token, `{"license_number":"X"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "number is not patchable")
}

func TestCRUDThroughClient(t *testing.T) {
	f := newFixture(t)
	m := f.modules(t, "officer")
	ctx := context.Background()

	created, err := m.Vehicles.Create(ctx, domain.Vehicle{
		PlateNumber: "30K-999.99",
		OwnerName:   "Lê Văn Hùng",
		VehicleType: "car",
		Brand:       "VinFast",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	updated, err := m.Vehicles.Update(ctx, created.ID, domain.VehiclePatch{Color: domain.Ptr("Đỏ")})
	require.NoError(t, err)
	assert.Equal(t, "Đỏ", updated.Color)

	require.NoError(t, m.Vehicles.Delete(ctx, created.ID))
	require.NoError(t, m.Vehicles.Delete(ctx, created.ID))

	_, err = m.Vehicles.Get(ctx, created.ID)
	assert.True(t, apperr.IsNotFound(err))
}

func TestActions(t *testing.T) {
	f := newFixture(t)
	m := f.modules(t, "admin")
	ctx := context.Background()

	l, err := m.Licenses.Action(ctx, "lic-006", domain.ActionApprove)
	require.NoError(t, err)
	assert.Equal(t, domain.LicenseActive, l.Status)

	l, err = m.Licenses.Action(ctx, "lic-006", domain.ActionRevoke)
	require.NoError(t, err)
	assert.Equal(t, domain.LicenseRevoked, l.Status)

	_, err = m.Licenses.Action(ctx, "lic-006", domain.ActionApprove)
	var te *apperr.InvalidTransitionError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "revoke", te.From)
	assert.Equal(t, "active", te.To)

	_, err = m.Licenses.Action(ctx, "lic-001", "teleport")
	assert.True(t, apperr.IsNotFound(err))

	_, err = m.Authorities.Action(ctx, "auth-001", domain.ActionApprove)
	assert.Error(t, err, "authorities have no actions")
}

func TestLiveServicesDelegateActions(t *testing.T) {
	f := newFixture(t)
	m := f.modules(t, "admin")
	svc := service.NewViolationService(m.Violations)

	var pending domain.Violation
	rows, err := svc.GetAll(context.Background(), domain.ViolationFilter{Status: string(domain.ViolationPending)})
	require.NoError(t, err)
	require.NotEmpty(t, rows)
	pending = rows[0]

	paid, err := svc.Pay(context.Background(), pending.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ViolationPaid, paid.Status)
	assert.NotNil(t, paid.PaidAt)
}

func TestStats(t *testing.T) {
	f := newFixture(t)
	m := f.modules(t, "")

	var st service.ViolationStats
	require.NoError(t, m.Violations.Stats(context.Background(), &st))
	assert.Equal(t, len(f.set.Violations), st.Total)
	assert.Equal(t, int64(5_000_000), st.Collected)

	resp, _ := f.do(t, http.MethodGet, "/news/stats", "", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAuthRoutes(t *testing.T) {
	f := newFixture(t)
	m := f.modules(t, "")
	ctx := context.Background()

	_, err := m.Auth.Login(ctx, "admin", "wrong")
	assert.True(t, apperr.IsUnauthorized(err))

	_, err = m.Auth.Me(ctx)
	assert.True(t, apperr.IsUnauthorized(err))

	resp, err := m.Auth.Login(ctx, "admin", "admin123")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, resp.User.Role)

	me, err := m.Auth.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "admin", me.Username)

	require.NoError(t, m.Auth.Logout(ctx))
	assert.False(t, session.LoggedIn(m.Client.Session()))
}

func TestWalletLoginOverHTTP(t *testing.T) {
	f := newFixture(t)
	m := f.modules(t, "")
	key, err := wallet.GenerateKey()
	require.NoError(t, err)

	flow := wallet.NewFlow(m.Auth, m.Client.Session())
	resp, err := flow.Connect(context.Background(), wallet.NewKeyConnector(key))
	require.NoError(t, err)
	assert.Equal(t, wallet.Signed, flow.State())
	assert.True(t, wallet.SameAddress(key.Address(), resp.User.WalletAddress))

	w, ok := session.LoadWallet(m.Client.Session())
	require.True(t, ok)
	assert.True(t, wallet.SameAddress(key.Address(), w.Address))

	resp2, data := f.do(t, http.MethodPost, "/auth/wallet/nonce", "", `{"address":"0x123"}`)
	assert.Equal(t, http.StatusBadRequest, resp2.StatusCode)
	assert.Equal(t, "address", errorBody(t, data).Field)
}

func TestEvents(t *testing.T) {
	f := newFixture(t)
	watcher := f.modules(t, "")
	writer := f.modules(t, "officer")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan domain.Notification, 4)
	done := make(chan error, 1)
	go func() {
		done <- watcher.Events.Watch(ctx, func(n domain.Notification) { got <- n })
	}()
	require.Eventually(t, func() bool { return f.srv.Hub().Len() == 1 }, 2*time.Second, 10*time.Millisecond)

	_, err := writer.News.Action(context.Background(), "news-003", domain.ActionPublish)
	require.NoError(t, err)

	select {
	case n := <-got:
		assert.Equal(t, domain.NotifyAction, n.Type)
		assert.Equal(t, domain.ResourceNews, n.Resource)
		assert.Equal(t, "news-003", n.ResourceID)
		assert.Equal(t, "News published", n.Title)
		assert.Contains(t, n.Message, "by officer")
		assert.Regexp(t, `^[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`, n.ID)
	case <-time.After(2 * time.Second):
		t.Fatal("no notification received")
	}

	f.srv.Hub().Close()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not return after the hub closed")
	}
}

func TestAuthRateLimit(t *testing.T) {
	f := newFixture(t, WithAuthRateLimit(0.01, 2))
	body := `{"username":"admin","password":"wrong"}`

	for range 2 {
		resp, _ := f.do(t, http.MethodPost, "/auth/login", "", body)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}
	resp, data := f.do(t, http.MethodPost, "/auth/login", "", body)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("Retry-After"))
	assert.Contains(t, errorBody(t, data).Message, "too many sign-in attempts")

	_, err := f.modules(t, "").Auth.Login(context.Background(), "admin", "admin123")
	var serverErr *apperr.ServerError
	require.ErrorAs(t, err, &serverErr)

	resp, _ = f.do(t, http.MethodGet, "/licenses", "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode, "only sign-in routes are limited")

	t.Run("disabled", func(t *testing.T) {
		f := newFixture(t, WithAuthRateLimit(0, 0))
		for range 15 {
			resp, _ := f.do(t, http.MethodPost, "/auth/login", "", body)
			require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		}
	})
}

func TestAuditLog(t *testing.T) {
	var buf bytes.Buffer
	f := newFixture(t, WithAuditLog(audit.NewWriter(&buf)))
	ctx := context.Background()

	anon := f.modules(t, "")
	_, err := anon.Auth.Login(ctx, "officer", "nope")
	require.Error(t, err)

	writer := f.modules(t, "officer")
	_, err = writer.Licenses.Action(ctx, "lic-006", domain.ActionApprove)
	require.NoError(t, err)
	require.NoError(t, writer.Auth.Logout(ctx))

	var entries []audit.Entry
	dec := json.NewDecoder(&buf)
	for dec.More() {
		var e audit.Entry
		require.NoError(t, dec.Decode(&e))
		entries = append(entries, e)
	}
	require.Len(t, entries, 4)

	assert.Equal(t, audit.EventSignInFailed, entries[0].Event)
	assert.Equal(t, "officer", entries[0].Actor)
	assert.Equal(t, audit.EventSignIn, entries[1].Event)

	approve := entries[2]
	assert.Equal(t, audit.EventAction, approve.Event)
	assert.Equal(t, "officer", approve.Actor)
	assert.Equal(t, domain.RoleOfficer, approve.Role)
	assert.Equal(t, "lic-006", approve.ID)
	assert.Equal(t, "approved", approve.Action)
	assert.Equal(t, http.MethodPost, approve.Method)
	assert.Equal(t, "127.0.0.1", approve.Client)
	assert.Equal(t, now, approve.Time)

	assert.Equal(t, audit.EventSignOut, entries[3].Event)
	assert.Equal(t, int64(4), entries[3].Sequence)
}

func TestMetrics(t *testing.T) {
	f := newFixture(t)
	writer := f.modules(t, "officer")
	_, err := writer.News.Action(context.Background(), "news-003", domain.ActionPublish)
	require.NoError(t, err)
	f.do(t, http.MethodGet, "/nothing-here", "", "")

	resp, err := http.Get(f.ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	text := string(data)

	assert.Contains(t, text, `regdesk_http_requests_total{method="POST",route="POST /api/v1/auth/login",status="200"} 1`)
	assert.Contains(t, text, `route="POST /api/v1/news/{id}/{action}"`)
	assert.Contains(t, text, `route="unmatched",status="404"`)
	assert.Contains(t, text, `regdesk_record_changes_total{resource="news",type="action"} 1`)
	assert.Contains(t, text, "regdesk_event_subscribers 0")
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	f := newFixture(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.srv.Serve(ctx, ln) }()

	client := api.New("http://" + ln.Addr().String() + BasePath)
	require.Eventually(t, func() bool { return client.Health(context.Background()) == nil }, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return")
	}
}
