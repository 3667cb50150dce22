// Package view holds the star list view state and the pure transforms that
// derive what is displayed from it: sorting, pagination and search results.
package view

import (
	"sort"

	"github.com/kyleking/gh-star-scout/internal/types"
)

// DefaultPageSize is the number of records shown per display page
const DefaultPageSize = 12

// Positions maps each record id to its index in list
func Positions(list []types.Repo) map[string]int {
	positions := make(map[string]int, len(list))
	for i, r := range list {
		if _, seen := positions[r.ID]; !seen {
			positions[r.ID] = i
		}
	}

	return positions
}

// SortRepos returns a sorted copy of list. The sort is stable, so equal keys
// keep their input order. SortRecent orders by positions; ids missing from
// positions sort as position 0.
func SortRepos(list []types.Repo, order types.SortOrder, positions map[string]int) []types.Repo {
	sorted := make([]types.Repo, len(list))
	copy(sorted, list)

	var less func(a, b types.Repo) bool

	switch order {
	case types.SortStarsAsc:
		less = func(a, b types.Repo) bool { return a.Stars < b.Stars }
	case types.SortRecent:
		less = func(a, b types.Repo) bool { return positions[a.ID] < positions[b.ID] }
	default:
		less = func(a, b types.Repo) bool { return a.Stars > b.Stars }
	}

	sort.SliceStable(sorted, func(i, j int) bool { return less(sorted[i], sorted[j]) })

	return sorted
}

// PageCount is the number of display pages needed for n records, at least 1
func PageCount(n, pageSize int) int {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	if n <= 0 {
		return 1
	}

	return (n + pageSize - 1) / pageSize
}

// PageSlice returns the records on the 1-based page, or nil when page is out of range
func PageSlice(list []types.Repo, page, pageSize int) []types.Repo {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	start := (page - 1) * pageSize
	if page < 1 || start >= len(list) {
		return nil
	}

	end := min(start+pageSize, len(list))

	return list[start:end]
}
