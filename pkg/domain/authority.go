package domain

import (
	"net/url"
	"time"
)

// AuthorityLevel is the administrative tier of a regulatory authority.
type AuthorityLevel string

// Authority levels.
const (
	LevelCentral    AuthorityLevel = "central"
	LevelProvincial AuthorityLevel = "provincial"
	LevelDistrict   AuthorityLevel = "district"
)

// Authority statuses.
const (
	AuthorityActive   = "active"
	AuthorityInactive = "inactive"
)

// Authority is a regulatory body that issues licenses and records violations.
type Authority struct {
	ID        string         `json:"id" yaml:"id"`
	Code      string         `json:"code" yaml:"code"`
	Name      string         `json:"name" yaml:"name"`
	Level     AuthorityLevel `json:"level" yaml:"level"`
	City      string         `json:"city" yaml:"city"`
	Address   string         `json:"address,omitempty" yaml:"address"`
	Phone     string         `json:"phone,omitempty" yaml:"phone"`
	Email     string         `json:"email,omitempty" yaml:"email"`
	Head      string         `json:"head,omitempty" yaml:"head"`
	Status    string         `json:"status" yaml:"status"`
	CreatedAt time.Time      `json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time      `json:"updated_at" yaml:"updated_at"`
}

// AuthorityPatch is a partial authority update.
type AuthorityPatch struct {
	Name    *string         `json:"name,omitempty"`
	Level   *AuthorityLevel `json:"level,omitempty"`
	City    *string         `json:"city,omitempty"`
	Address *string         `json:"address,omitempty"`
	Phone   *string         `json:"phone,omitempty"`
	Email   *string         `json:"email,omitempty"`
	Head    *string         `json:"head,omitempty"`
	Status  *string         `json:"status,omitempty"`
}

// Apply merges the patch over a and returns the result.
func (p AuthorityPatch) Apply(a Authority) Authority {
	set(&a.Name, p.Name)
	set(&a.Level, p.Level)
	set(&a.City, p.City)
	set(&a.Address, p.Address)
	set(&a.Phone, p.Phone)
	set(&a.Email, p.Email)
	set(&a.Head, p.Head)
	set(&a.Status, p.Status)
	return a
}

// AuthorityFilter narrows an authority listing.
type AuthorityFilter struct {
	Query  string
	Level  string
	City   string
	Status string
}

// Values encodes the filter as query parameters.
func (f AuthorityFilter) Values() url.Values {
	v := url.Values{}
	put(v, "q", f.Query)
	put(v, "level", f.Level)
	put(v, "city", f.City)
	put(v, "status", f.Status)
	return v
}

// AuthorityFilterFromValues decodes a filter from query parameters.
func AuthorityFilterFromValues(v url.Values) AuthorityFilter {
	return AuthorityFilter{
		Query:  v.Get("q"),
		Level:  v.Get("level"),
		City:   v.Get("city"),
		Status: v.Get("status"),
	}
}
