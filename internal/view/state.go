package view

import (
	"github.com/kyleking/gh-star-scout/internal/types"
)

// State is one view's data. Methods never modify the receiver; each returns
// the next State. Page always lies in [1, PageCount()].
type State struct {
	FullList    []types.Repo
	DisplayList []types.Repo
	Sort        types.SortOrder
	Page        int
	// Query is the active search, empty when DisplayList is the full list
	Query string

	positions map[string]int
	pageSize  int
}

// Summary is the display totals for a State
type Summary struct {
	Total     int
	Shown     int
	Page      int
	PageCount int
	Sort      types.SortOrder
	Query     string
}

// NewState returns an empty state; pageSize <= 0 means DefaultPageSize
func NewState(pageSize int) State {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	return State{
		FullList:    []types.Repo{},
		DisplayList: []types.Repo{},
		Sort:        types.SortStarsDesc,
		Page:        1,
		positions:   map[string]int{},
		pageSize:    pageSize,
	}
}

// PageSize returns the number of records per display page
func (s State) PageSize() int {
	if s.pageSize <= 0 {
		return DefaultPageSize
	}

	return s.pageSize
}

// PageCount returns the number of display pages for DisplayList
func (s State) PageCount() int {
	return PageCount(len(s.DisplayList), s.PageSize())
}

// WithFullList replaces the full list, rebuilds the position map and clears any search
func (s State) WithFullList(list []types.Repo) State {
	if list == nil {
		list = []types.Repo{}
	}

	s.FullList = list
	s.DisplayList = list
	s.positions = Positions(list)
	s.Query = ""
	s.Page = 1

	return s
}

// WithDisplayList replaces the displayed subset for query and returns to page 1
func (s State) WithDisplayList(query string, list []types.Repo) State {
	if list == nil {
		list = []types.Repo{}
	}

	s.DisplayList = list
	s.Query = query
	s.Page = 1

	return s
}

// ClearSearch shows the full list again from page 1
func (s State) ClearSearch() State {
	s.DisplayList = s.FullList
	s.Query = ""
	s.Page = 1

	return s
}

// WithSort changes the sort order, keeping the current page
func (s State) WithSort(order types.SortOrder) State {
	s.Sort = order
	s.Page = min(max(s.Page, 1), s.PageCount())

	return s
}

// GoToPage moves to page n; pages outside [1, PageCount()] leave the state unchanged
func (s State) GoToPage(n int) State {
	if n < 1 || n > s.PageCount() {
		return s
	}

	s.Page = n

	return s
}

// NextPage advances one page if there is one
func (s State) NextPage() State {
	return s.GoToPage(s.Page + 1)
}

// PrevPage goes back one page if there is one
func (s State) PrevPage() State {
	return s.GoToPage(s.Page - 1)
}

// Sorted returns DisplayList in the current sort order
func (s State) Sorted() []types.Repo {
	return SortRepos(s.DisplayList, s.Sort, s.positions)
}

// Visible returns the records on the current page of the sorted display list
func (s State) Visible() []types.Repo {
	return PageSlice(s.Sorted(), s.Page, s.PageSize())
}

// WithInsight attaches text to every copy of the record with id that has no
// insight yet. Lists are copied before writing.
func (s State) WithInsight(id, text string) State {
	s.FullList = setInsight(s.FullList, id, text)
	s.DisplayList = setInsight(s.DisplayList, id, text)

	return s
}

func setInsight(list []types.Repo, id, text string) []types.Repo {
	for i := range list {
		if list[i].ID != id || list[i].HasInsight() {
			continue
		}

		out := make([]types.Repo, len(list))
		copy(out, list)

		for j := i; j < len(out); j++ {
			if out[j].ID == id {
				out[j].SetInsight(text)
			}
		}

		return out
	}

	return list
}

// Find returns the record with id from the full list
func (s State) Find(id string) (types.Repo, bool) {
	for _, r := range s.FullList {
		if r.ID == id {
			return r, true
		}
	}

	return types.Repo{}, false
}

// Summary returns display totals
func (s State) Summary() Summary {
	return Summary{
		Total:     len(s.FullList),
		Shown:     len(s.DisplayList),
		Page:      s.Page,
		PageCount: s.PageCount(),
		Sort:      s.Sort,
		Query:     s.Query,
	}
}
