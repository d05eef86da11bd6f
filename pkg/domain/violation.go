package domain

import (
	"net/url"
	"time"
)

// ViolationStatus is the payment state of a traffic violation.
type ViolationStatus string

// Violation statuses.
const (
	ViolationPending   ViolationStatus = "pending"
	ViolationPaid      ViolationStatus = "paid"
	ViolationOverdue   ViolationStatus = "overdue"
	ViolationCancelled ViolationStatus = "cancelled"
)

// ViolationStatuses lists every violation status in display order.
var ViolationStatuses = []ViolationStatus{ViolationPending, ViolationPaid, ViolationOverdue, ViolationCancelled}

// PaymentWindowDays is the default time a violator has to pay a fine.
const PaymentWindowDays = 30

// Violation is a recorded traffic violation.
type Violation struct {
	ID             string          `json:"id" yaml:"id"`
	PlateNumber    string          `json:"plate_number" yaml:"plate_number"`
	LicenseNumber  string          `json:"license_number,omitempty" yaml:"license_number"`
	ViolatorName   string          `json:"violator_name" yaml:"violator_name"`
	ViolationType  string          `json:"violation_type" yaml:"violation_type"`
	Description    string          `json:"description,omitempty" yaml:"description"`
	Location       string          `json:"location" yaml:"location"`
	City           string          `json:"city" yaml:"city"`
	ViolationDate  time.Time       `json:"violation_date" yaml:"violation_date"`
	DueDate        time.Time       `json:"due_date" yaml:"due_date"`
	FineAmount     int64           `json:"fine_amount" yaml:"fine_amount"`
	PointsDeducted int             `json:"points_deducted" yaml:"points_deducted"`
	Status         ViolationStatus `json:"status" yaml:"status"`
	PaidAt         *time.Time      `json:"paid_at,omitempty" yaml:"paid_at"`
	BlockchainTx   string          `json:"blockchain_tx,omitempty" yaml:"blockchain_tx"`
	CreatedAt      time.Time       `json:"created_at" yaml:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at" yaml:"updated_at"`
}

// ViolationPatch is a partial violation update.
type ViolationPatch struct {
	ViolatorName   *string          `json:"violator_name,omitempty"`
	LicenseNumber  *string          `json:"license_number,omitempty"`
	ViolationType  *string          `json:"violation_type,omitempty"`
	Description    *string          `json:"description,omitempty"`
	Location       *string          `json:"location,omitempty"`
	City           *string          `json:"city,omitempty"`
	DueDate        *time.Time       `json:"due_date,omitempty"`
	FineAmount     *int64           `json:"fine_amount,omitempty"`
	PointsDeducted *int             `json:"points_deducted,omitempty"`
	Status         *ViolationStatus `json:"status,omitempty"`
	PaidAt         *time.Time       `json:"paid_at,omitempty"`
	BlockchainTx   *string          `json:"blockchain_tx,omitempty"`
}

// Apply merges the patch over v and returns the result.
func (p ViolationPatch) Apply(v Violation) Violation {
	set(&v.ViolatorName, p.ViolatorName)
	set(&v.LicenseNumber, p.LicenseNumber)
	set(&v.ViolationType, p.ViolationType)
	set(&v.Description, p.Description)
	set(&v.Location, p.Location)
	set(&v.City, p.City)
	set(&v.DueDate, p.DueDate)
	set(&v.FineAmount, p.FineAmount)
	set(&v.PointsDeducted, p.PointsDeducted)
	set(&v.Status, p.Status)
	set(&v.BlockchainTx, p.BlockchainTx)
	if p.PaidAt != nil {
		paid := *p.PaidAt
		v.PaidAt = &paid
	}
	return v
}

// ViolationFilter narrows a violation listing.
type ViolationFilter struct {
	Query         string
	Status        string
	ViolationType string
	City          string
	PlateNumber   string
}

// Values encodes the filter as query parameters.
func (f ViolationFilter) Values() url.Values {
	v := url.Values{}
	put(v, "q", f.Query)
	put(v, "status", f.Status)
	put(v, "violation_type", f.ViolationType)
	put(v, "city", f.City)
	put(v, "plate_number", f.PlateNumber)
	return v
}

// ViolationFilterFromValues decodes a filter from query parameters.
func ViolationFilterFromValues(v url.Values) ViolationFilter {
	return ViolationFilter{
		Query:         v.Get("q"),
		Status:        v.Get("status"),
		ViolationType: v.Get("violation_type"),
		City:          v.Get("city"),
		PlateNumber:   v.Get("plate_number"),
	}
}
