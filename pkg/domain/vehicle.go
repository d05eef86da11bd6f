package domain

import (
	"net/url"
	"time"
)

// VehicleStatus is the registration state of a vehicle.
type VehicleStatus string

// Vehicle statuses.
const (
	VehiclePending      VehicleStatus = "pending"
	VehicleActive       VehicleStatus = "active"
	VehicleSuspended    VehicleStatus = "suspended"
	VehicleDeregistered VehicleStatus = "deregistered"
)

// VehicleStatuses lists every vehicle status in display order.
var VehicleStatuses = []VehicleStatus{VehiclePending, VehicleActive, VehicleSuspended, VehicleDeregistered}

// VehicleTypes lists the vehicle categories the registry accepts.
var VehicleTypes = []string{"car", "motorcycle", "truck", "bus"}

// InspectionValidityMonths is the inspection period granted to a newly
// registered vehicle when none is supplied.
const InspectionValidityMonths = 24

// Vehicle is a registered vehicle.
type Vehicle struct {
	ID               string        `json:"id" yaml:"id"`
	PlateNumber      string        `json:"plate_number" yaml:"plate_number"`
	OwnerName        string        `json:"owner_name" yaml:"owner_name"`
	OwnerIDCard      string        `json:"owner_id_card" yaml:"owner_id_card"`
	Brand            string        `json:"brand" yaml:"brand"`
	Model            string        `json:"model" yaml:"model"`
	Color            string        `json:"color,omitempty" yaml:"color"`
	VehicleType      string        `json:"vehicle_type" yaml:"vehicle_type"`
	ChassisNumber    string        `json:"chassis_number,omitempty" yaml:"chassis_number"`
	EngineNumber     string        `json:"engine_number,omitempty" yaml:"engine_number"`
	RegistrationDate time.Time     `json:"registration_date" yaml:"registration_date"`
	InspectionExpiry time.Time     `json:"inspection_expiry" yaml:"inspection_expiry"`
	City             string        `json:"city" yaml:"city"`
	Status           VehicleStatus `json:"status" yaml:"status"`
	BlockchainTx     string        `json:"blockchain_tx,omitempty" yaml:"blockchain_tx"`
	CreatedAt        time.Time     `json:"created_at" yaml:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at" yaml:"updated_at"`
}

// VehiclePatch is a partial vehicle update.
type VehiclePatch struct {
	OwnerName        *string        `json:"owner_name,omitempty"`
	OwnerIDCard      *string        `json:"owner_id_card,omitempty"`
	Brand            *string        `json:"brand,omitempty"`
	Model            *string        `json:"model,omitempty"`
	Color            *string        `json:"color,omitempty"`
	VehicleType      *string        `json:"vehicle_type,omitempty"`
	ChassisNumber    *string        `json:"chassis_number,omitempty"`
	EngineNumber     *string        `json:"engine_number,omitempty"`
	InspectionExpiry *time.Time     `json:"inspection_expiry,omitempty"`
	City             *string        `json:"city,omitempty"`
	Status           *VehicleStatus `json:"status,omitempty"`
	BlockchainTx     *string        `json:"blockchain_tx,omitempty"`
}

// Apply merges the patch over v and returns the result.
func (p VehiclePatch) Apply(v Vehicle) Vehicle {
	set(&v.OwnerName, p.OwnerName)
	set(&v.OwnerIDCard, p.OwnerIDCard)
	set(&v.Brand, p.Brand)
	set(&v.Model, p.Model)
	set(&v.Color, p.Color)
	set(&v.VehicleType, p.VehicleType)
	set(&v.ChassisNumber, p.ChassisNumber)
	set(&v.EngineNumber, p.EngineNumber)
	set(&v.InspectionExpiry, p.InspectionExpiry)
	set(&v.City, p.City)
	set(&v.Status, p.Status)
	set(&v.BlockchainTx, p.BlockchainTx)
	return v
}

// VehicleFilter narrows a vehicle listing.
type VehicleFilter struct {
	Query       string
	Status      string
	VehicleType string
	City        string
	Brand       string
}

// Values encodes the filter as query parameters.
func (f VehicleFilter) Values() url.Values {
	v := url.Values{}
	put(v, "q", f.Query)
	put(v, "status", f.Status)
	put(v, "vehicle_type", f.VehicleType)
	put(v, "city", f.City)
	put(v, "brand", f.Brand)
	return v
}

// VehicleFilterFromValues decodes a filter from query parameters.
func VehicleFilterFromValues(v url.Values) VehicleFilter {
	return VehicleFilter{
		Query:       v.Get("q"),
		Status:      v.Get("status"),
		VehicleType: v.Get("vehicle_type"),
		City:        v.Get("city"),
		Brand:       v.Get("brand"),
	}
}
