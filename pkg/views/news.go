package views

import (
	"github.com/getmockd/regdesk/pkg/domain"
	"github.com/getmockd/regdesk/pkg/table"
)

// NewsCategories lists the news categories offered by the category filter.
var NewsCategories = []string{"announcement", "regulation", "guide", "event"}

// NewsFields are the queryable fields of a news article.
var NewsFields = table.Fields[domain.News]{
	table.StringField("id", func(n domain.News) string { return n.ID }),
	table.StringField("title", func(n domain.News) string { return n.Title }),
	table.StringField("summary", func(n domain.News) string { return n.Summary }),
	table.StringField("category", func(n domain.News) string { return n.Category }),
	table.StringField("author", func(n domain.News) string { return n.Author }),
	table.StringField("status", func(n domain.News) string { return string(n.Status) }),
	{Key: "published_at", Kind: table.KindTime, Get: func(n domain.News) table.Value { return table.TimePtr(n.PublishedAt) }},
	{Key: "created_at", Kind: table.KindTime, Get: func(n domain.News) table.Value { return table.Time(n.CreatedAt) }},
}

// News is the news list screen.
var News = View[domain.News]{
	Resource: domain.ResourceNews,
	Fields:   NewsFields,
	Columns: []table.Column[domain.News]{
		{Key: "index", Header: "#", Width: "4", Render: rowNumber[domain.News]},
		{Key: "title", Header: "TITLE", Sortable: true, Render: func(n domain.News, _ int) string { return n.Title }},
		{Key: "category", Header: "CATEGORY", Sortable: true, Render: func(n domain.News, _ int) string { return n.Category }},
		{Key: "author", Header: "AUTHOR", Render: func(n domain.News, _ int) string { return orDash(n.Author) }},
		{Key: "published_at", Header: "PUBLISHED", Sortable: true, Render: func(n domain.News, _ int) string {
			if n.PublishedAt == nil {
				return "-"
			}
			return date(*n.PublishedAt)
		}},
		{Key: "status", Header: "STATUS", Sortable: true, Render: func(n domain.News, _ int) string { return string(n.Status) }},
	},
	Filters: []table.Filter{
		table.NewFilter("category", "Category", table.Options(NewsCategories...)...),
		table.NewFilter("status", "Status", table.Options(domain.NewsDraft, domain.NewsPublished, domain.NewsArchived)...),
	},
	SearchKeys:  []string{"title", "summary", "author"},
	DefaultSort: table.SortState{Field: "created_at", Direction: table.Desc},
}
