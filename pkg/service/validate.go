package service

import (
	"regexp"
	"slices"
	"strings"

	"github.com/getmockd/regdesk/pkg/apperr"
	"github.com/getmockd/regdesk/pkg/domain"
)

var (
	idCardPattern = regexp.MustCompile(`^[0-9]{9}([0-9]{3})?$`)
	platePattern  = regexp.MustCompile(`^[0-9]{2}[A-Z][A-Z0-9]?-[0-9]{3}\.?[0-9]{2}$`)
)

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return &apperr.ValidationError{Field: field, Message: "is required"}
	}
	return nil
}

func oneOf[S ~string](field string, value S, allowed []S) error {
	if value == "" || slices.Contains(allowed, value) {
		return nil
	}
	return &apperr.ValidationError{Field: field, Message: "must be one of " + join(allowed)}
}

func join[S ~string](values []S) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}

func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// ValidateLicense checks a license before creation.
func ValidateLicense(l domain.License) error {
	if err := firstError(
		required("holder_name", l.HolderName),
		required("holder_id_card", l.HolderIDCard),
		required("license_type", l.LicenseType),
	); err != nil {
		return err
	}
	if !idCardPattern.MatchString(l.HolderIDCard) {
		return &apperr.ValidationError{Field: "holder_id_card", Message: "must be 9 or 12 digits"}
	}
	if !l.ExpiryDate.IsZero() && !l.IssueDate.IsZero() && !l.ExpiryDate.After(l.IssueDate) {
		return &apperr.ValidationError{Field: "expiry_date", Message: "must be after issue_date"}
	}
	if l.Points < 0 || l.Points > domain.LicenseFullPoints {
		return &apperr.ValidationError{Field: "points", Message: "must be between 0 and 12"}
	}
	return firstError(
		oneOf("license_type", l.LicenseType, domain.LicenseTypes),
		oneOf("status", l.Status, domain.LicenseStatuses),
	)
}

// ValidateVehicle checks a vehicle before creation.
func ValidateVehicle(v domain.Vehicle) error {
	if err := firstError(
		required("plate_number", v.PlateNumber),
		required("owner_name", v.OwnerName),
		required("vehicle_type", v.VehicleType),
	); err != nil {
		return err
	}
	if !platePattern.MatchString(strings.ToUpper(v.PlateNumber)) {
		return &apperr.ValidationError{Field: "plate_number", Message: "must look like 30A-123.45"}
	}
	return firstError(
		oneOf("vehicle_type", v.VehicleType, domain.VehicleTypes),
		oneOf("status", v.Status, domain.VehicleStatuses),
	)
}

// ValidateViolation checks a violation before creation.
func ValidateViolation(v domain.Violation) error {
	if err := firstError(
		required("plate_number", v.PlateNumber),
		required("violator_name", v.ViolatorName),
		required("violation_type", v.ViolationType),
		required("location", v.Location),
	); err != nil {
		return err
	}
	if v.FineAmount <= 0 {
		return &apperr.ValidationError{Field: "fine_amount", Message: "must be positive"}
	}
	if v.PointsDeducted < 0 || v.PointsDeducted > 12 {
		return &apperr.ValidationError{Field: "points_deducted", Message: "must be between 0 and 12"}
	}
	return oneOf("status", v.Status, domain.ViolationStatuses)
}

// ValidateAuthority checks an authority before creation.
func ValidateAuthority(a domain.Authority) error {
	return firstError(
		required("code", a.Code),
		required("name", a.Name),
		required("level", string(a.Level)),
		oneOf("level", a.Level, []domain.AuthorityLevel{domain.LevelCentral, domain.LevelProvincial, domain.LevelDistrict}),
	)
}

// ValidateNews checks a news article before creation.
func ValidateNews(n domain.News) error {
	return firstError(
		required("title", n.Title),
		required("content", n.Content),
		required("category", n.Category),
		oneOf("status", n.Status, []domain.NewsStatus{domain.NewsDraft, domain.NewsPublished, domain.NewsArchived}),
	)
}
