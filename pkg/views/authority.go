package views

import (
	"github.com/getmockd/regdesk/pkg/domain"
	"github.com/getmockd/regdesk/pkg/table"
)

// AuthorityFields are the queryable fields of an authority.
var AuthorityFields = table.Fields[domain.Authority]{
	table.StringField("id", func(a domain.Authority) string { return a.ID }),
	table.StringField("code", func(a domain.Authority) string { return a.Code }),
	table.StringField("name", func(a domain.Authority) string { return a.Name }),
	table.StringField("level", func(a domain.Authority) string { return string(a.Level) }),
	table.StringField("city", func(a domain.Authority) string { return a.City }),
	table.StringField("head", func(a domain.Authority) string { return a.Head }),
	table.StringField("status", func(a domain.Authority) string { return a.Status }),
	{Key: "created_at", Kind: table.KindTime, Get: func(a domain.Authority) table.Value { return table.Time(a.CreatedAt) }},
}

// Authorities is the authority list screen.
var Authorities = View[domain.Authority]{
	Resource: domain.ResourceAuthorities,
	Fields:   AuthorityFields,
	Columns: []table.Column[domain.Authority]{
		{Key: "index", Header: "#", Width: "4", Render: rowNumber[domain.Authority]},
		{Key: "code", Header: "CODE", Sortable: true, Render: func(a domain.Authority, _ int) string { return a.Code }},
		{Key: "name", Header: "NAME", Sortable: true, Render: func(a domain.Authority, _ int) string { return a.Name }},
		{Key: "level", Header: "LEVEL", Sortable: true, Render: func(a domain.Authority, _ int) string { return string(a.Level) }},
		{Key: "city", Header: "CITY", Sortable: true, Render: func(a domain.Authority, _ int) string { return a.City }},
		{Key: "head", Header: "HEAD", Render: func(a domain.Authority, _ int) string { return orDash(a.Head) }},
		{Key: "status", Header: "STATUS", Sortable: true, Render: func(a domain.Authority, _ int) string { return a.Status }},
	},
	Filters: []table.Filter{
		table.NewFilter("level", "Level", table.Options(domain.LevelCentral, domain.LevelProvincial, domain.LevelDistrict)...),
		table.NewFilter("status", "Status", table.Options(domain.AuthorityActive, domain.AuthorityInactive)...),
		table.NewFilter("city", "City", table.Options(Cities...)...),
	},
	SearchKeys:  []string{"code", "name", "city", "head"},
	DefaultSort: table.SortState{Field: "code", Direction: table.Asc},
}
