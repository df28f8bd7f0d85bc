// Package pagination slices the owner-grouped catalog index into pages.
// Pages hold groups, not individual endpoints.
package pagination

import (
	"github.com/studiowebux/apiconsole/internal/catalog"
)

// View is one page of groups plus the page metadata
type View struct {
	Groups      []catalog.Group
	CurrentPage int
	TotalPages  int
	TotalItems  int // endpoints across all filtered groups
}

// TotalPages returns max(1, ceil(groups/perPage))
func TotalPages(groups, perPage int) int {
	if perPage < 1 {
		perPage = 1
	}
	if groups <= 0 {
		return 1
	}
	return (groups + perPage - 1) / perPage
}

// Clamp forces page into [1, totalPages]
func Clamp(page, totalPages int) int {
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		return 1
	}
	if page > totalPages {
		return totalPages
	}
	return page
}

// Paginate returns the groups on page. Out-of-range pages are clamped.
func Paginate(index catalog.Index, page, perPage int) View {
	if perPage < 1 {
		perPage = 1
	}
	total := TotalPages(len(index), perPage)
	page = Clamp(page, total)

	start := (page - 1) * perPage
	end := start + perPage
	if end > len(index) {
		end = len(index)
	}

	groups := []catalog.Group{}
	if start < end {
		groups = index[start:end]
	}

	return View{
		Groups:      groups,
		CurrentPage: page,
		TotalPages:  total,
		TotalItems:  index.EndpointCount(),
	}
}

// State is the mutable page position
type State struct {
	CurrentPage  int
	ItemsPerPage int
}

// NewState starts on page 1
func NewState(perPage int) State {
	if perPage < 1 {
		perPage = 1
	}
	return State{CurrentPage: 1, ItemsPerPage: perPage}
}

// Move shifts the page by delta and reports whether it changed.
// Moving past either end is a no-op.
func (s *State) Move(delta, totalPages int) bool {
	next := s.CurrentPage + delta
	if next < 1 || next > totalPages || delta == 0 {
		return false
	}
	s.CurrentPage = next
	return true
}

// Clamp keeps CurrentPage valid after the group count changed
func (s *State) Clamp(groups int) {
	s.CurrentPage = Clamp(s.CurrentPage, TotalPages(groups, s.ItemsPerPage))
}

// SetPerPage changes the page size and clamps the current page
func (s *State) SetPerPage(perPage, groups int) {
	if perPage < 1 {
		perPage = 1
	}
	s.ItemsPerPage = perPage
	s.Clamp(groups)
}
