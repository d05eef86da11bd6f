package views

import (
	"strconv"

	"github.com/getmockd/regdesk/pkg/domain"
	"github.com/getmockd/regdesk/pkg/table"
)

// ViolationFields are the queryable fields of a violation.
var ViolationFields = table.Fields[domain.Violation]{
	table.StringField("id", func(v domain.Violation) string { return v.ID }),
	table.StringField("plate_number", func(v domain.Violation) string { return v.PlateNumber }),
	table.StringField("license_number", func(v domain.Violation) string { return v.LicenseNumber }),
	table.StringField("violator_name", func(v domain.Violation) string { return v.ViolatorName }),
	table.StringField("violation_type", func(v domain.Violation) string { return v.ViolationType }),
	table.StringField("location", func(v domain.Violation) string { return v.Location }),
	table.StringField("city", func(v domain.Violation) string { return v.City }),
	table.StringField("status", func(v domain.Violation) string { return string(v.Status) }),
	table.StringField("severity", func(v domain.Violation) string { return string(domain.SeverityOf(v)) }),
	table.IntField("fine_amount", func(v domain.Violation) int64 { return v.FineAmount }),
	table.IntField("points_deducted", func(v domain.Violation) int { return v.PointsDeducted }),
	{Key: "violation_date", Kind: table.KindTime, Get: func(v domain.Violation) table.Value { return table.Time(v.ViolationDate) }},
	{Key: "due_date", Kind: table.KindTime, Get: func(v domain.Violation) table.Value { return table.Time(v.DueDate) }},
	{Key: "paid_at", Kind: table.KindTime, Get: func(v domain.Violation) table.Value { return table.TimePtr(v.PaidAt) }},
	{Key: "created_at", Kind: table.KindTime, Get: func(v domain.Violation) table.Value { return table.Time(v.CreatedAt) }},
	table.BoolField("overdue", func(v domain.Violation) bool { return domain.IsOverdue(v, Clock()) }),
}

// Violations is the violation list screen.
var Violations = View[domain.Violation]{
	Resource: domain.ResourceViolations,
	Fields:   ViolationFields,
	Columns: []table.Column[domain.Violation]{
		{Key: "index", Header: "#", Width: "4", Render: rowNumber[domain.Violation]},
		{Key: "plate_number", Header: "PLATE", Sortable: true, Render: func(v domain.Violation, _ int) string { return v.PlateNumber }},
		{Key: "violator_name", Header: "VIOLATOR", Sortable: true, Render: func(v domain.Violation, _ int) string { return v.ViolatorName }},
		{Key: "violation_type", Header: "TYPE", Sortable: true, Render: func(v domain.Violation, _ int) string { return v.ViolationType }},
		{Key: "violation_date", Header: "DATE", Sortable: true, Render: func(v domain.Violation, _ int) string { return date(v.ViolationDate) }},
		{Key: "fine_amount", Header: "FINE", Sortable: true, Render: func(v domain.Violation, _ int) string { return VND(v.FineAmount) }},
		{Key: "points_deducted", Header: "PTS", Width: "4", Sortable: true, Render: func(v domain.Violation, _ int) string { return strconv.Itoa(v.PointsDeducted) }},
		{Key: "severity", Header: "SEVERITY", Sortable: true, Render: func(v domain.Violation, _ int) string { return string(domain.SeverityOf(v)) }},
		{Key: "status", Header: "STATUS", Sortable: true, Render: func(v domain.Violation, _ int) string {
			if v.Status == domain.ViolationPending && domain.IsOverdue(v, Clock()) {
				return string(v.Status) + " (overdue)"
			}
			return string(v.Status)
		}},
	},
	Filters: []table.Filter{
		table.NewFilter("status", "Status", table.Options(domain.ViolationStatuses...)...),
		table.NewFilter("severity", "Severity", table.Options(
			domain.SeverityLow, domain.SeverityMedium, domain.SeverityHigh, domain.SeverityCritical)...),
		table.NewFilter("city", "City", table.Options(Cities...)...),
	},
	SearchKeys:  []string{"plate_number", "license_number", "violator_name", "violation_type", "location"},
	DefaultSort: table.SortState{Field: "violation_date", Direction: table.Desc},
}
