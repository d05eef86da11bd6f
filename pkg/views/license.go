package views

import (
	"strconv"

	"github.com/getmockd/regdesk/pkg/domain"
	"github.com/getmockd/regdesk/pkg/table"
)

// LicenseFields are the queryable fields of a license.
var LicenseFields = table.Fields[domain.License]{
	table.StringField("id", func(l domain.License) string { return l.ID }),
	table.StringField("license_number", func(l domain.License) string { return l.LicenseNumber }),
	table.StringField("holder_name", func(l domain.License) string { return l.HolderName }),
	table.StringField("holder_id_card", func(l domain.License) string { return l.HolderIDCard }),
	table.StringField("license_type", func(l domain.License) string { return l.LicenseType }),
	table.StringField("city", func(l domain.License) string { return l.City }),
	table.StringField("authority_id", func(l domain.License) string { return l.AuthorityID }),
	table.StringField("status", func(l domain.License) string { return string(l.Status) }),
	table.IntField("points", func(l domain.License) int { return l.Points }),
	{Key: "issue_date", Kind: table.KindTime, Get: func(l domain.License) table.Value { return table.Time(l.IssueDate) }},
	{Key: "expiry_date", Kind: table.KindTime, Get: func(l domain.License) table.Value { return table.Time(l.ExpiryDate) }},
	{Key: "date_of_birth", Kind: table.KindTime, Get: func(l domain.License) table.Value { return table.Time(l.DateOfBirth) }},
	{Key: "created_at", Kind: table.KindTime, Get: func(l domain.License) table.Value { return table.Time(l.CreatedAt) }},
	table.BoolField("expired", func(l domain.License) bool { return domain.IsExpired(l, Clock()) }),
	table.BoolField("expiring_soon", func(l domain.License) bool { return domain.IsExpiringSoon(l, Clock()) }),
}

// Licenses is the license list screen.
var Licenses = View[domain.License]{
	Resource: domain.ResourceLicenses,
	Fields:   LicenseFields,
	Columns: []table.Column[domain.License]{
		{Key: "index", Header: "#", Width: "4", Render: rowNumber[domain.License]},
		{Key: "license_number", Header: "NUMBER", Sortable: true, Render: func(l domain.License, _ int) string { return l.LicenseNumber }},
		{Key: "holder_name", Header: "HOLDER", Sortable: true, Render: func(l domain.License, _ int) string { return l.HolderName }},
		{Key: "license_type", Header: "CLASS", Width: "6", Sortable: true, Render: func(l domain.License, _ int) string { return l.LicenseType }},
		{Key: "city", Header: "CITY", Sortable: true, Render: func(l domain.License, _ int) string { return l.City }},
		{Key: "expiry_date", Header: "EXPIRES", Sortable: true, Render: renderExpiry},
		{Key: "points", Header: "POINTS", Width: "6", Sortable: true, Render: func(l domain.License, _ int) string { return strconv.Itoa(l.Points) }},
		{Key: "status", Header: "STATUS", Sortable: true, Render: func(l domain.License, _ int) string {
			return string(domain.EffectiveStatus(l, Clock()))
		}},
	},
	Filters: []table.Filter{
		table.NewFilter("status", "Status", table.Options(domain.LicenseStatuses...)...),
		table.NewFilter("license_type", "Class", table.Options(domain.LicenseTypes...)...),
		table.NewFilter("city", "City", table.Options(Cities...)...),
	},
	SearchKeys:  []string{"license_number", "holder_name", "holder_id_card"},
	DefaultSort: table.SortState{Field: "created_at", Direction: table.Desc},
}

func renderExpiry(l domain.License, _ int) string {
	now := Clock()
	switch {
	case domain.IsExpired(l, now):
		return date(l.ExpiryDate) + " (expired)"
	case domain.IsExpiringSoon(l, now):
		return date(l.ExpiryDate) + " (" + strconv.Itoa(domain.DaysUntil(l.ExpiryDate, now)) + "d)"
	}
	return date(l.ExpiryDate)
}

// Cities lists the cities offered by city filters.
var Cities = []string{"Hà Nội", "Hồ Chí Minh", "Đà Nẵng", "Hải Phòng", "Cần Thơ", "Huế", "Nha Trang"}
