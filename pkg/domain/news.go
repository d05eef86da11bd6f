package domain

import (
	"net/url"
	"time"
)

// NewsStatus is the publication state of a news article.
type NewsStatus string

// News statuses.
const (
	NewsDraft     NewsStatus = "draft"
	NewsPublished NewsStatus = "published"
	NewsArchived  NewsStatus = "archived"
)

// News is an announcement published on the registry portal.
type News struct {
	ID          string     `json:"id" yaml:"id"`
	Title       string     `json:"title" yaml:"title"`
	Summary     string     `json:"summary,omitempty" yaml:"summary"`
	Content     string     `json:"content" yaml:"content"`
	Category    string     `json:"category" yaml:"category"`
	Author      string     `json:"author,omitempty" yaml:"author"`
	Status      NewsStatus `json:"status" yaml:"status"`
	PublishedAt *time.Time `json:"published_at,omitempty" yaml:"published_at"`
	CreatedAt   time.Time  `json:"created_at" yaml:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" yaml:"updated_at"`
}

// NewsPatch is a partial news update.
type NewsPatch struct {
	Title       *string     `json:"title,omitempty"`
	Summary     *string     `json:"summary,omitempty"`
	Content     *string     `json:"content,omitempty"`
	Category    *string     `json:"category,omitempty"`
	Author      *string     `json:"author,omitempty"`
	Status      *NewsStatus `json:"status,omitempty"`
	PublishedAt *time.Time  `json:"published_at,omitempty"`
}

// Apply merges the patch over n and returns the result.
func (p NewsPatch) Apply(n News) News {
	set(&n.Title, p.Title)
	set(&n.Summary, p.Summary)
	set(&n.Content, p.Content)
	set(&n.Category, p.Category)
	set(&n.Author, p.Author)
	set(&n.Status, p.Status)
	if p.PublishedAt != nil {
		at := *p.PublishedAt
		n.PublishedAt = &at
	}
	return n
}

// NewsFilter narrows a news listing.
type NewsFilter struct {
	Query    string
	Category string
	Status   string
}

// Values encodes the filter as query parameters.
func (f NewsFilter) Values() url.Values {
	v := url.Values{}
	put(v, "q", f.Query)
	put(v, "category", f.Category)
	put(v, "status", f.Status)
	return v
}

// NewsFilterFromValues decodes a filter from query parameters.
func NewsFilterFromValues(v url.Values) NewsFilter {
	return NewsFilter{
		Query:    v.Get("q"),
		Category: v.Get("category"),
		Status:   v.Get("status"),
	}
}
