package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/regdesk/pkg/apperr"
	"github.com/getmockd/regdesk/pkg/domain"
	"github.com/getmockd/regdesk/pkg/seed"
	"github.com/getmockd/regdesk/pkg/store"
)

var now = time.Date(2025, 5, 20, 9, 0, 0, 0, time.UTC)

func clock() time.Time { return now }

func newLicenseService(t *testing.T) *LicenseService {
	t.Helper()
	repo := store.NewLicenses(seed.MustDefault().Licenses, store.WithClock(clock))
	return NewLicenseService(repo, WithClock(clock))
}

func validLicense() domain.License {
	return domain.License{
		HolderName:   "Ngô Thị Mai",
		HolderIDCard: "001199012345",
		LicenseType:  "B2",
		City:         "Hà Nội",
	}
}

func TestResource_CreateGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc := newLicenseService(t)

	created, err := svc.Create(ctx, validLicense())
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	got, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)
	assert.Equal(t, domain.StartOfDay(now).AddDate(domain.LicenseValidityYears, 0, 0), got.ExpiryDate)
}

func TestResource_CreateValidation(t *testing.T) {
	ctx := context.Background()
	svc := newLicenseService(t)

	tests := []struct {
		name  string
		edit  func(*domain.License)
		field string
	}{
		{"missing holder", func(l *domain.License) { l.HolderName = " " }, "holder_name"},
		{"missing id card", func(l *domain.License) { l.HolderIDCard = "" }, "holder_id_card"},
		{"bad id card", func(l *domain.License) { l.HolderIDCard = "12AB" }, "holder_id_card"},
		{"bad class", func(l *domain.License) { l.LicenseType = "Z9" }, "license_type"},
		{"bad status", func(l *domain.License) { l.Status = "lost" }, "status"},
		{"points", func(l *domain.License) { l.Points = 15 }, "points"},
		{"expiry before issue", func(l *domain.License) {
			l.IssueDate = now
			l.ExpiryDate = now.AddDate(0, 0, -1)
		}, "expiry_date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := validLicense()
			tt.edit(&l)
			_, err := svc.Create(ctx, l)

			var verr *apperr.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestResource_DeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc := newLicenseService(t)

	before, err := svc.GetAll(ctx, domain.LicenseFilter{})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, "does-not-exist"))

	after, err := svc.GetAll(ctx, domain.LicenseFilter{})
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestResource_UpdateDoesNotCheckTransitions(t *testing.T) {
	ctx := context.Background()
	svc := newLicenseService(t)

	active := domain.LicenseActive
	got, err := svc.Update(ctx, "lic-005", domain.LicensePatch{Status: &active})
	require.NoError(t, err)
	assert.Equal(t, domain.LicenseActive, got.Status, "raw update may revive a revoked license")

	_, err = svc.Update(ctx, "missing", domain.LicensePatch{})
	assert.True(t, apperr.IsNotFound(err))
}

func TestResource_UpdateValidation(t *testing.T) {
	ctx := context.Background()
	svc := newLicenseService(t)

	before, err := svc.GetByID(ctx, "lic-001")
	require.NoError(t, err)

	bogus := domain.LicenseStatus("bogus")
	tests := []struct {
		name  string
		patch domain.LicensePatch
		field string
	}{
		{"empty holder", domain.LicensePatch{HolderName: domain.Ptr("")}, "holder_name"},
		{"malformed id card", domain.LicensePatch{HolderIDCard: domain.Ptr("abc")}, "holder_id_card"},
		{"unknown status", domain.LicensePatch{Status: &bogus}, "status"},
		{"points out of range", domain.LicensePatch{Points: domain.Ptr(99)}, "points"},
		{"negative points", domain.LicensePatch{Points: domain.Ptr(-1)}, "points"},
		{"unknown type", domain.LicensePatch{LicenseType: domain.Ptr("Z")}, "license_type"},
		{"expiry before issue", domain.LicensePatch{ExpiryDate: domain.Ptr(time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC))}, "expiry_date"},
		{"several bad fields", domain.LicensePatch{HolderName: domain.Ptr(""), Status: &bogus, Points: domain.Ptr(99), HolderIDCard: domain.Ptr("abc")}, "holder_name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Update(ctx, "lic-001", tt.patch)
			var verr *apperr.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}

	after, err := svc.GetByID(ctx, "lic-001")
	require.NoError(t, err)
	assert.Equal(t, before, after, "rejected updates leave the record untouched")

	got, err := svc.Update(ctx, "lic-001", domain.LicensePatch{Points: domain.Ptr(0), City: domain.Ptr("Huế")})
	require.NoError(t, err)
	assert.Equal(t, 0, got.Points)
	assert.Equal(t, "Huế", got.City)
}

func TestLicenseService_Transitions(t *testing.T) {
	ctx := context.Background()
	svc := newLicenseService(t)

	l, err := svc.Approve(ctx, "lic-006")
	require.NoError(t, err)
	assert.Equal(t, domain.LicenseActive, l.Status)

	l, err = svc.Suspend(ctx, "lic-006")
	require.NoError(t, err)
	assert.Equal(t, domain.LicensePaused, l.Status)

	l, err = svc.Reactivate(ctx, "lic-006")
	require.NoError(t, err)
	assert.Equal(t, domain.LicenseActive, l.Status)

	l, err = svc.Revoke(ctx, "lic-006")
	require.NoError(t, err)
	assert.Equal(t, domain.LicenseRevoked, l.Status)
	assert.Equal(t, 0, l.Points)

	_, err = svc.Approve(ctx, "lic-006")
	var terr *apperr.InvalidTransitionError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, "revoke", terr.From)
	assert.Equal(t, "active", terr.To)

	_, err = svc.Reactivate(ctx, "lic-001")
	assert.ErrorAs(t, err, &terr)

	_, err = svc.Suspend(ctx, "missing")
	assert.True(t, apperr.IsNotFound(err))
}

func TestLicenseService_Renew(t *testing.T) {
	ctx := context.Background()
	svc := newLicenseService(t)
	wantExpiry := domain.StartOfDay(now).AddDate(10, 0, 0)

	// lic-002 is stored as expired.
	l, err := svc.Renew(ctx, "lic-002")
	require.NoError(t, err)
	assert.Equal(t, domain.LicenseActive, l.Status)
	assert.Equal(t, wantExpiry, l.ExpiryDate)
	assert.Equal(t, domain.StartOfDay(now), l.IssueDate)

	// lic-001 is active and valid: renewed early, status unchanged.
	l, err = svc.Renew(ctx, "lic-001")
	require.NoError(t, err)
	assert.Equal(t, domain.LicenseActive, l.Status)
	assert.Equal(t, wantExpiry, l.ExpiryDate)

	// lic-003 is paused.
	_, err = svc.Renew(ctx, "lic-003")
	assert.Equal(t, apperr.KindTransition, apperr.Classify(err))
}

func TestLicenseService_RenewActivePastExpiry(t *testing.T) {
	ctx := context.Background()
	repo := store.NewLicenses([]domain.License{{
		ID: "x", Status: domain.LicenseActive, ExpiryDate: now.AddDate(0, 0, -1),
	}}, store.WithClock(clock))
	svc := NewLicenseService(repo, WithClock(clock))

	l, err := svc.Renew(ctx, "x")
	require.NoError(t, err)
	assert.False(t, domain.IsExpired(l, now))
}

func TestLicenseService_StatsAndExpiring(t *testing.T) {
	ctx := context.Background()
	repo := store.NewLicenses([]domain.License{
		{ID: "a", LicenseType: "B2", Status: domain.LicenseActive, ExpiryDate: now.AddDate(0, 0, 29)},
		{ID: "b", LicenseType: "B2", Status: domain.LicenseActive, ExpiryDate: now.AddDate(0, 0, -1)},
		{ID: "c", LicenseType: "A1", Status: domain.LicensePending, ExpiryDate: now.AddDate(5, 0, 0)},
	})
	svc := NewLicenseService(repo, WithClock(clock))

	st, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, st.Total)
	assert.Equal(t, 1, st.ByStatus[domain.LicenseActive])
	assert.Equal(t, 1, st.ByStatus[domain.LicenseExpired])
	assert.Equal(t, 1, st.ByStatus[domain.LicensePending])
	assert.Equal(t, 2, st.ByType["B2"])
	assert.Equal(t, 1, st.ExpiringSoon)

	expiring, err := svc.Expiring(ctx)
	require.NoError(t, err)
	require.Len(t, expiring, 1)
	assert.Equal(t, "a", expiring[0].ID)
}

func TestVehicleService(t *testing.T) {
	ctx := context.Background()
	repo := store.NewVehicles(seed.MustDefault().Vehicles, store.WithClock(clock))
	svc := NewVehicleService(repo, WithClock(clock))

	_, err := svc.Create(ctx, domain.Vehicle{PlateNumber: "30A", OwnerName: "A", VehicleType: "car"})
	var verr *apperr.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "plate_number", verr.Field)

	v, err := svc.Create(ctx, domain.Vehicle{PlateNumber: "30H-555.66", OwnerName: "Đinh Công Tráng", VehicleType: "car"})
	require.NoError(t, err)
	assert.Equal(t, domain.VehiclePending, v.Status)

	v, err = svc.Activate(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.VehicleActive, v.Status)

	v, err = svc.Suspend(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.VehicleSuspended, v.Status)

	v, err = svc.Deregister(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.VehicleDeregistered, v.Status)

	_, err = svc.Activate(ctx, v.ID)
	assert.Equal(t, apperr.KindTransition, apperr.Classify(err))

	st, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7, st.Total)
	assert.Equal(t, 2, st.ByStatus[domain.VehicleDeregistered])
}

func TestViolationService(t *testing.T) {
	ctx := context.Background()
	repo := store.NewViolations([]domain.Violation{
		{ID: "p1", Status: domain.ViolationPending, FineAmount: 800_000, DueDate: now.AddDate(0, 0, -2)},
		{ID: "p2", Status: domain.ViolationPending, FineAmount: 600_000, DueDate: now.AddDate(0, 0, 5)},
		{ID: "paid", Status: domain.ViolationPaid, FineAmount: 5_000_000},
	}, store.WithClock(clock))
	svc := NewViolationService(repo, WithClock(clock))

	changed, err := svc.MarkOverdue(ctx)
	require.NoError(t, err)
	require.Len(t, changed, 1)
	assert.Equal(t, "p1", changed[0].ID)
	assert.Equal(t, domain.ViolationOverdue, changed[0].Status)

	st, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1_400_000), st.Outstanding)
	assert.Equal(t, int64(5_000_000), st.Collected)
	assert.Equal(t, 1, st.Overdue)

	v, err := svc.Pay(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, domain.ViolationPaid, v.Status)
	require.NotNil(t, v.PaidAt)
	assert.Equal(t, now, *v.PaidAt)

	_, err = svc.Pay(ctx, "p1")
	assert.Equal(t, apperr.KindTransition, apperr.Classify(err))

	v, err = svc.Cancel(ctx, "p2")
	require.NoError(t, err)
	assert.Equal(t, domain.ViolationCancelled, v.Status)

	_, err = svc.Create(ctx, domain.Violation{PlateNumber: "30A-123.45", ViolatorName: "x", ViolationType: "y", Location: "z"})
	var verr *apperr.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "fine_amount", verr.Field)
}

func TestNewsService(t *testing.T) {
	ctx := context.Background()
	repo := store.NewNews(seed.MustDefault().News, store.WithClock(clock))
	svc := NewNewsService(repo, WithClock(clock))

	n, err := svc.Publish(ctx, "news-003")
	require.NoError(t, err)
	assert.Equal(t, domain.NewsPublished, n.Status)
	require.NotNil(t, n.PublishedAt)

	_, err = svc.Publish(ctx, "news-003")
	assert.Equal(t, apperr.KindTransition, apperr.Classify(err))

	n, err = svc.Archive(ctx, "news-003")
	require.NoError(t, err)
	assert.Equal(t, domain.NewsArchived, n.Status)

	_, err = svc.Archive(ctx, "news-003")
	assert.Error(t, err)

	_, err = svc.Create(ctx, domain.News{Title: "t", Content: "c"})
	var verr *apperr.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "category", verr.Field)
}

func TestAuthorityService(t *testing.T) {
	ctx := context.Background()
	svc := NewAuthorityService(store.NewAuthorities(nil))

	_, err := svc.Create(ctx, domain.Authority{Code: "X", Name: "Y", Level: "galactic"})
	var verr *apperr.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "level", verr.Field)

	a, err := svc.Create(ctx, domain.Authority{Code: "CSGT-HP", Name: "Phòng CSGT Hải Phòng", Level: domain.LevelProvincial})
	require.NoError(t, err)
	assert.Equal(t, domain.AuthorityActive, a.Status)
}

// failingRepo stands in for a backend that answers every call with the same
// error.
type failingRepo struct{ err error }

func (f failingRepo) List(context.Context, domain.LicenseFilter) ([]domain.License, error) {
	return nil, f.err
}

func (f failingRepo) Get(context.Context, string) (domain.License, error) {
	return domain.License{}, f.err
}

func (f failingRepo) Create(context.Context, domain.License) (domain.License, error) {
	return domain.License{}, f.err
}

func (f failingRepo) Update(context.Context, string, domain.LicensePatch) (domain.License, error) {
	return domain.License{}, f.err
}

func (f failingRepo) Delete(context.Context, string) error { return f.err }

func TestResource_PropagatesRepositoryErrors(t *testing.T) {
	ctx := context.Background()
	want := &apperr.ServerError{Status: 503}
	svc := NewLicenseService(failingRepo{err: want})

	_, err := svc.GetAll(ctx, domain.LicenseFilter{})
	assert.Same(t, want, err)
	_, err = svc.Create(ctx, validLicense())
	assert.Same(t, want, err)
	assert.Same(t, want, svc.Delete(ctx, "x"))
	_, err = svc.Renew(ctx, "x")
	assert.Same(t, want, err)
}

// remoteRepo runs actions itself, like the HTTP client does.
type remoteRepo struct {
	failingRepo
	calls []string
}

func (r *remoteRepo) Action(_ context.Context, id, action string) (domain.License, error) {
	r.calls = append(r.calls, id+":"+action)
	return domain.License{ID: id, Status: domain.LicenseActive}, nil
}

func TestLicenseService_DelegatesActionsToRemote(t *testing.T) {
	ctx := context.Background()
	repo := &remoteRepo{failingRepo: failingRepo{err: &apperr.ServerError{Status: 500}}}
	svc := NewLicenseService(repo)

	_, err := svc.Renew(ctx, "lic-1")
	require.NoError(t, err)
	_, err = svc.Revoke(ctx, "lic-2")
	require.NoError(t, err)

	assert.Equal(t, []string{"lic-1:renew", "lic-2:revoke"}, repo.calls)
}
