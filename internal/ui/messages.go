// Package ui provides the Bubble Tea TUI with Trending and Stars tabs.
package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kyleking/gh-star-scout/internal/search"
	"github.com/kyleking/gh-star-scout/internal/trending"
	"github.com/kyleking/gh-star-scout/internal/types"
	"github.com/kyleking/gh-star-scout/internal/view"
)

// TrendingLoaded is sent when a trending fetch finishes.
type TrendingLoaded struct {
	Ticket view.Ticket
	Result trending.Result
}

// StarsProgress is sent once per fetched page of stars.
type StarsProgress struct {
	Ticket view.Ticket
	Total  int
	next   <-chan tea.Msg
}

// StarsLoaded is sent when a star fetch finishes or fails.
type StarsLoaded struct {
	Ticket   view.Ticket
	Username string
	Repos    []types.Repo
	Err      error
}

// SearchDone is sent when a semantic search finishes.
type SearchDone struct {
	Ticket  view.Ticket
	Query   string
	Outcome search.Outcome
}

// InsightDone is sent when an insight was generated for one record.
type InsightDone struct {
	ID   string
	Text string
}
