package domain

import (
	"net/url"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 3, 15, 10, 30, 0, 0, time.UTC)

func TestIsExpired(t *testing.T) {
	yesterday := License{ExpiryDate: now.AddDate(0, 0, -1)}
	assert.True(t, IsExpired(yesterday, now))
	assert.False(t, IsExpiringSoon(yesterday, now))

	soon := License{ExpiryDate: now.AddDate(0, 0, 29)}
	assert.False(t, IsExpired(soon, now))
	assert.True(t, IsExpiringSoon(soon, now))

	earlierToday := License{ExpiryDate: StartOfDay(now).Add(time.Hour)}
	assert.False(t, IsExpired(earlierToday, now), "expiry later today is not yet expired")

	far := License{ExpiryDate: now.AddDate(1, 0, 0)}
	assert.False(t, IsExpired(far, now))
	assert.False(t, IsExpiringSoon(far, now))

	assert.False(t, IsExpired(License{}, now))
}

func TestDaysUntil(t *testing.T) {
	assert.Equal(t, 0, DaysUntil(now.Add(10*time.Hour), now))
	assert.Equal(t, 1, DaysUntil(now.Add(14*time.Hour), now))
	assert.Equal(t, -1, DaysUntil(now.AddDate(0, 0, -1), now))
	assert.Equal(t, 30, DaysUntil(now.AddDate(0, 0, 30), now))

	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	// 2025-03-09 is 23 hours long in New York.
	before := time.Date(2025, 3, 8, 12, 0, 0, 0, ny)
	assert.Equal(t, 2, DaysUntil(time.Date(2025, 3, 10, 9, 0, 0, 0, ny), before))
	assert.Equal(t, -2, DaysUntil(before, time.Date(2025, 3, 10, 9, 0, 0, 0, ny)))
	// 2025-11-02 is 25 hours long.
	fall := time.Date(2025, 11, 1, 12, 0, 0, 0, ny)
	assert.Equal(t, 2, DaysUntil(time.Date(2025, 11, 3, 0, 0, 0, 0, ny), fall))
}

func TestIsInspectionDue(t *testing.T) {
	assert.True(t, IsInspectionDue(Vehicle{InspectionExpiry: now.AddDate(0, 0, -3)}, now))
	assert.True(t, IsInspectionDue(Vehicle{InspectionExpiry: now.AddDate(0, 0, 10)}, now))
	assert.False(t, IsInspectionDue(Vehicle{InspectionExpiry: now.AddDate(0, 3, 0)}, now))
}

func TestIsOverdue(t *testing.T) {
	tests := []struct {
		name string
		v    Violation
		want bool
	}{
		{"pending past due", Violation{Status: ViolationPending, DueDate: now.AddDate(0, 0, -1)}, true},
		{"pending not due", Violation{Status: ViolationPending, DueDate: now.AddDate(0, 0, 1)}, false},
		{"paid past due", Violation{Status: ViolationPaid, DueDate: now.AddDate(0, 0, -1)}, false},
		{"overdue stays overdue", Violation{Status: ViolationOverdue, DueDate: now.AddDate(0, 0, -9)}, true},
		{"no due date", Violation{Status: ViolationPending}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsOverdue(tt.v, now))
		})
	}
}

func TestSeverityOf(t *testing.T) {
	assert.Equal(t, SeverityLow, SeverityOf(Violation{FineAmount: 300_000}))
	assert.Equal(t, SeverityMedium, SeverityOf(Violation{FineAmount: 1_000_000}))
	assert.Equal(t, SeverityMedium, SeverityOf(Violation{FineAmount: 100_000, PointsDeducted: 2}))
	assert.Equal(t, SeverityHigh, SeverityOf(Violation{FineAmount: 6_000_000}))
	assert.Equal(t, SeverityCritical, SeverityOf(Violation{FineAmount: 500_000, PointsDeducted: 12}))
}

func TestEffectiveStatus(t *testing.T) {
	l := License{Status: LicenseActive, ExpiryDate: now.AddDate(0, 0, -2)}
	assert.Equal(t, LicenseExpired, EffectiveStatus(l, now))

	l.Status = LicensePaused
	assert.Equal(t, LicensePaused, EffectiveStatus(l, now))
}

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(LicensePending, LicenseActive))
	assert.True(t, CanTransition(LicenseActive, LicensePaused))
	assert.True(t, CanTransition(LicensePaused, LicenseRevoked))
	assert.True(t, CanTransition(LicenseExpired, LicenseActive))
	assert.False(t, CanTransition(LicenseRevoked, LicenseActive))
	assert.False(t, CanTransition(LicensePending, LicenseRevoked))

	assert.True(t, CanTransitionVehicle(VehicleActive, VehicleSuspended))
	assert.False(t, CanTransitionVehicle(VehicleDeregistered, VehicleActive))
}

func TestPatchApply(t *testing.T) {
	l := License{ID: "l1", HolderName: "Nguyễn Văn A", City: "Hà Nội", Points: 12}
	got := LicensePatch{City: Ptr("Đà Nẵng"), Points: Ptr(0)}.Apply(l)

	assert.Equal(t, "l1", got.ID)
	assert.Equal(t, "Nguyễn Văn A", got.HolderName)
	assert.Equal(t, "Đà Nẵng", got.City)
	assert.Equal(t, 0, got.Points)
	assert.Equal(t, "Hà Nội", l.City, "original record must not change")
}

func TestFilterValuesRoundTrip(t *testing.T) {
	f := LicenseFilter{Query: "văn", Status: "active", City: "Hà Nội"}
	v := f.Values()
	assert.Equal(t, "", v.Get("license_type"))
	assert.Equal(t, f, LicenseFilterFromValues(v))

	q, err := url.ParseQuery(v.Encode())
	require.NoError(t, err)
	assert.Equal(t, f, LicenseFilterFromValues(q))
}

func TestPageJSON(t *testing.T) {
	p := Page[License]{TotalCount: 1, TotalPages: 1, Page: 1, Size: 10, ListKey: ResourceLicenses,
		Items: []License{{ID: "l1"}}}
	data, err := p.MarshalJSON()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"licenses":[`)

	back, err := DecodePage[License](data, ResourceLicenses)
	require.NoError(t, err)
	require.Len(t, back.Items, 1)
	assert.Equal(t, "l1", back.Items[0].ID)
	assert.Equal(t, 1, back.TotalCount)

	_, err = DecodePage[License]([]byte(`{"total_count":0}`), ResourceLicenses)
	assert.Error(t, err)
}
