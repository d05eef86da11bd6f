package domain

import "time"

// ExpiringSoonDays is the window in which an active record is flagged as
// approaching its expiry.
const ExpiringSoonDays = 30

// Severity grades a violation.
type Severity string

// Severity levels.
const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// StartOfDay truncates t to midnight in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DaysUntil returns the number of calendar days from now to t. Past dates
// are negative.
func DaysUntil(t, now time.Time) int {
	return int(civilDate(t.In(now.Location())).Sub(civilDate(now)) / (24 * time.Hour))
}

// civilDate maps the calendar date of t to midnight UTC, where every day is
// 24 hours long.
func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// IsExpired reports whether the license expired before today.
func IsExpired(l License, now time.Time) bool {
	if l.ExpiryDate.IsZero() {
		return false
	}
	return l.ExpiryDate.Before(StartOfDay(now))
}

// IsExpiringSoon reports whether a license that is still valid expires within
// ExpiringSoonDays.
func IsExpiringSoon(l License, now time.Time) bool {
	if l.ExpiryDate.IsZero() || IsExpired(l, now) {
		return false
	}
	return DaysUntil(l.ExpiryDate, now) <= ExpiringSoonDays
}

// IsInspectionDue reports whether the vehicle inspection has lapsed or
// lapses within ExpiringSoonDays.
func IsInspectionDue(v Vehicle, now time.Time) bool {
	if v.InspectionExpiry.IsZero() {
		return false
	}
	return DaysUntil(v.InspectionExpiry, now) <= ExpiringSoonDays
}

// IsOverdue reports whether an unpaid violation is past its due date.
func IsOverdue(v Violation, now time.Time) bool {
	if v.Status != ViolationPending && v.Status != ViolationOverdue {
		return false
	}
	if v.DueDate.IsZero() {
		return false
	}
	return v.DueDate.Before(StartOfDay(now))
}

// SeverityOf grades a violation by its fine and deducted points. Whichever
// measure is worse decides.
func SeverityOf(v Violation) Severity {
	switch {
	case v.FineAmount >= 10_000_000 || v.PointsDeducted >= 10:
		return SeverityCritical
	case v.FineAmount >= 4_000_000 || v.PointsDeducted >= 6:
		return SeverityHigh
	case v.FineAmount >= 1_000_000 || v.PointsDeducted >= 2:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// EffectiveStatus is the status a license should display: an active license
// past its expiry shows as expired.
func EffectiveStatus(l License, now time.Time) LicenseStatus {
	if l.Status == LicenseActive && IsExpired(l, now) {
		return LicenseExpired
	}
	return l.Status
}

var licenseTransitions = map[LicenseStatus][]LicenseStatus{
	LicensePending: {LicenseActive},
	LicenseActive:  {LicenseExpired, LicensePaused, LicenseRevoked},
	LicensePaused:  {LicenseActive, LicenseRevoked},
	LicenseExpired: {LicenseActive},
}

// CanTransition reports whether a license may move from one status to another.
// Revoked is terminal.
func CanTransition(from, to LicenseStatus) bool {
	for _, s := range licenseTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

var vehicleTransitions = map[VehicleStatus][]VehicleStatus{
	VehiclePending:   {VehicleActive, VehicleDeregistered},
	VehicleActive:    {VehicleSuspended, VehicleDeregistered},
	VehicleSuspended: {VehicleActive, VehicleDeregistered},
}

// CanTransitionVehicle reports whether a vehicle may move between statuses.
func CanTransitionVehicle(from, to VehicleStatus) bool {
	for _, s := range vehicleTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// RenewalExpiry returns the expiry granted by a renewal on now.
func RenewalExpiry(now time.Time) time.Time {
	return StartOfDay(now).AddDate(LicenseValidityYears, 0, 0)
}
