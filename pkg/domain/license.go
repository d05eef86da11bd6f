package domain

import (
	"net/url"
	"time"
)

// LicenseStatus is the lifecycle state of a driver license.
type LicenseStatus string

// License statuses.
const (
	LicensePending LicenseStatus = "pending"
	LicenseActive  LicenseStatus = "active"
	LicenseExpired LicenseStatus = "expired"
	LicensePaused  LicenseStatus = "pause"
	LicenseRevoked LicenseStatus = "revoke"
)

// LicenseStatuses lists every license status in display order.
var LicenseStatuses = []LicenseStatus{LicensePending, LicenseActive, LicenseExpired, LicensePaused, LicenseRevoked}

// LicenseTypes lists the license classes issued by the registry.
var LicenseTypes = []string{"A1", "A2", "A3", "B1", "B2", "C", "D", "E", "F"}

// LicenseValidityYears is the fixed validity period applied when a license is
// issued or renewed without an explicit expiry date.
const LicenseValidityYears = 10

// LicenseFullPoints is the point balance of a license with no deductions.
const LicenseFullPoints = 12

// License is a driver license record. Points is the remaining point balance;
// on create, 0 stands for an omitted value and becomes LicenseFullPoints, so a
// zero balance is set with an update.
type License struct {
	ID            string        `json:"id" yaml:"id"`
	LicenseNumber string        `json:"license_number" yaml:"license_number"`
	HolderName    string        `json:"holder_name" yaml:"holder_name"`
	HolderIDCard  string        `json:"holder_id_card" yaml:"holder_id_card"`
	DateOfBirth   time.Time     `json:"date_of_birth" yaml:"date_of_birth"`
	LicenseType   string        `json:"license_type" yaml:"license_type"`
	IssueDate     time.Time     `json:"issue_date" yaml:"issue_date"`
	ExpiryDate    time.Time     `json:"expiry_date" yaml:"expiry_date"`
	AuthorityID   string        `json:"authority_id,omitempty" yaml:"authority_id"`
	City          string        `json:"city" yaml:"city"`
	Address       string        `json:"address,omitempty" yaml:"address"`
	Status        LicenseStatus `json:"status" yaml:"status"`
	Points        int           `json:"points" yaml:"points"`
	BlockchainTx  string        `json:"blockchain_tx,omitempty" yaml:"blockchain_tx"`
	CreatedAt     time.Time     `json:"created_at" yaml:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at" yaml:"updated_at"`
}

// LicensePatch is a partial license update. Nil fields are left unchanged.
type LicensePatch struct {
	HolderName   *string        `json:"holder_name,omitempty"`
	HolderIDCard *string        `json:"holder_id_card,omitempty"`
	DateOfBirth  *time.Time     `json:"date_of_birth,omitempty"`
	LicenseType  *string        `json:"license_type,omitempty"`
	IssueDate    *time.Time     `json:"issue_date,omitempty"`
	ExpiryDate   *time.Time     `json:"expiry_date,omitempty"`
	AuthorityID  *string        `json:"authority_id,omitempty"`
	City         *string        `json:"city,omitempty"`
	Address      *string        `json:"address,omitempty"`
	Status       *LicenseStatus `json:"status,omitempty"`
	Points       *int           `json:"points,omitempty"`
	BlockchainTx *string        `json:"blockchain_tx,omitempty"`
}

// Apply merges the patch over l and returns the result.
func (p LicensePatch) Apply(l License) License {
	set(&l.HolderName, p.HolderName)
	set(&l.HolderIDCard, p.HolderIDCard)
	set(&l.DateOfBirth, p.DateOfBirth)
	set(&l.LicenseType, p.LicenseType)
	set(&l.IssueDate, p.IssueDate)
	set(&l.ExpiryDate, p.ExpiryDate)
	set(&l.AuthorityID, p.AuthorityID)
	set(&l.City, p.City)
	set(&l.Address, p.Address)
	set(&l.Status, p.Status)
	set(&l.Points, p.Points)
	set(&l.BlockchainTx, p.BlockchainTx)
	return l
}

// LicenseFilter narrows a license listing. Query is a free-text match over
// number, holder name and ID card; the other fields are exact matches.
type LicenseFilter struct {
	Query       string
	Status      string
	LicenseType string
	City        string
	AuthorityID string
}

// Values encodes the filter as query parameters.
func (f LicenseFilter) Values() url.Values {
	v := url.Values{}
	put(v, "q", f.Query)
	put(v, "status", f.Status)
	put(v, "license_type", f.LicenseType)
	put(v, "city", f.City)
	put(v, "authority_id", f.AuthorityID)
	return v
}

// LicenseFilterFromValues decodes a filter from query parameters.
func LicenseFilterFromValues(v url.Values) LicenseFilter {
	return LicenseFilter{
		Query:       v.Get("q"),
		Status:      v.Get("status"),
		LicenseType: v.Get("license_type"),
		City:        v.Get("city"),
		AuthorityID: v.Get("authority_id"),
	}
}
