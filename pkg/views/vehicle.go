package views

import (
	"github.com/getmockd/regdesk/pkg/domain"
	"github.com/getmockd/regdesk/pkg/table"
)

// VehicleFields are the queryable fields of a vehicle.
var VehicleFields = table.Fields[domain.Vehicle]{
	table.StringField("id", func(v domain.Vehicle) string { return v.ID }),
	table.StringField("plate_number", func(v domain.Vehicle) string { return v.PlateNumber }),
	table.StringField("owner_name", func(v domain.Vehicle) string { return v.OwnerName }),
	table.StringField("owner_id_card", func(v domain.Vehicle) string { return v.OwnerIDCard }),
	table.StringField("brand", func(v domain.Vehicle) string { return v.Brand }),
	table.StringField("model", func(v domain.Vehicle) string { return v.Model }),
	table.StringField("vehicle_type", func(v domain.Vehicle) string { return v.VehicleType }),
	table.StringField("city", func(v domain.Vehicle) string { return v.City }),
	table.StringField("status", func(v domain.Vehicle) string { return string(v.Status) }),
	{Key: "registration_date", Kind: table.KindTime, Get: func(v domain.Vehicle) table.Value { return table.Time(v.RegistrationDate) }},
	{Key: "inspection_expiry", Kind: table.KindTime, Get: func(v domain.Vehicle) table.Value { return table.Time(v.InspectionExpiry) }},
	{Key: "created_at", Kind: table.KindTime, Get: func(v domain.Vehicle) table.Value { return table.Time(v.CreatedAt) }},
	table.BoolField("inspection_due", func(v domain.Vehicle) bool { return domain.IsInspectionDue(v, Clock()) }),
}

// Vehicles is the vehicle list screen.
var Vehicles = View[domain.Vehicle]{
	Resource: domain.ResourceVehicles,
	Fields:   VehicleFields,
	Columns: []table.Column[domain.Vehicle]{
		{Key: "index", Header: "#", Width: "4", Render: rowNumber[domain.Vehicle]},
		{Key: "plate_number", Header: "PLATE", Sortable: true, Render: func(v domain.Vehicle, _ int) string { return v.PlateNumber }},
		{Key: "owner_name", Header: "OWNER", Sortable: true, Render: func(v domain.Vehicle, _ int) string { return v.OwnerName }},
		{Key: "brand", Header: "VEHICLE", Sortable: true, Render: func(v domain.Vehicle, _ int) string { return v.Brand + " " + v.Model }},
		{Key: "vehicle_type", Header: "TYPE", Sortable: true, Render: func(v domain.Vehicle, _ int) string { return v.VehicleType }},
		{Key: "city", Header: "CITY", Sortable: true, Render: func(v domain.Vehicle, _ int) string { return v.City }},
		{Key: "inspection_expiry", Header: "INSPECTION", Sortable: true, Render: func(v domain.Vehicle, _ int) string {
			if domain.IsInspectionDue(v, Clock()) {
				return date(v.InspectionExpiry) + " (due)"
			}
			return date(v.InspectionExpiry)
		}},
		{Key: "status", Header: "STATUS", Sortable: true, Render: func(v domain.Vehicle, _ int) string { return string(v.Status) }},
	},
	Filters: []table.Filter{
		table.NewFilter("status", "Status", table.Options(domain.VehicleStatuses...)...),
		table.NewFilter("vehicle_type", "Type", table.Options(domain.VehicleTypes...)...),
		table.NewFilter("city", "City", table.Options(Cities...)...),
	},
	SearchKeys:  []string{"plate_number", "owner_name", "owner_id_card", "brand", "model"},
	DefaultSort: table.SortState{Field: "created_at", Direction: table.Desc},
}
