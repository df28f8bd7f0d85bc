// Package session owns the catalog browsing state of one console and
// applies typed commands to it.
package session

import (
	"context"
	"sync"

	"github.com/studiowebux/apiconsole/internal/catalog"
	"github.com/studiowebux/apiconsole/internal/pagination"
	"github.com/studiowebux/apiconsole/internal/types"
)

// Dispatcher executes a resolved test request
type Dispatcher interface {
	Execute(ctx context.Context, spec types.TestRequestSpec) types.TestOutcome
}

// Command is a UI action addressed to the session
type Command interface {
	command()
}

// FilterCommand replaces the filter criteria and returns to page 1
type FilterCommand struct {
	Criteria catalog.Criteria
}

// PaginateCommand moves the page by Delta; no-op past either end
type PaginateCommand struct {
	Delta int
}

// SetPageCommand jumps to Page, clamped
type SetPageCommand struct {
	Page int
}

// SetPageSizeCommand changes how many groups a page holds and returns to page 1
type SetPageSizeCommand struct {
	Size int
}

// RunTestCommand dispatches Spec
type RunTestCommand struct {
	Spec types.TestRequestSpec
}

// ReloadCommand fetches the catalog again from Source
type ReloadCommand struct {
	Source catalog.Source
}

func (FilterCommand) command()      {}
func (PaginateCommand) command()    {}
func (SetPageCommand) command()     {}
func (SetPageSizeCommand) command() {}
func (RunTestCommand) command()     {}
func (ReloadCommand) command()      {}

// Result is the session state after a command
type Result struct {
	View    pagination.View
	Changed bool
	Outcome *types.TestOutcome
	Err     error
}

// CatalogSession couples a catalog with its page position
type CatalogSession struct {
	mu         sync.Mutex
	catalog    *catalog.Catalog
	page       pagination.State
	dispatcher Dispatcher
}

// New creates a session over cat. dispatcher may be nil when the caller
// never sends RunTestCommand.
func New(cat *catalog.Catalog, pageSize int, dispatcher Dispatcher) *CatalogSession {
	return &CatalogSession{
		catalog:    cat,
		page:       pagination.NewState(pageSize),
		dispatcher: dispatcher,
	}
}

// Catalog returns the underlying catalog
func (s *CatalogSession) Catalog() *catalog.Catalog {
	return s.catalog
}

// View returns the current page
func (s *CatalogSession) View() pagination.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

// Page returns the current page position
func (s *CatalogSession) Page() pagination.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.page
}

// Handle applies cmd. RunTestCommand and ReloadCommand block on the network
// and are executed without holding the session lock.
func (s *CatalogSession) Handle(ctx context.Context, cmd Command) Result {
	switch c := cmd.(type) {
	case RunTestCommand:
		return s.runTest(ctx, c.Spec)
	case ReloadCommand:
		err := s.catalog.Load(ctx, c.Source)
		s.mu.Lock()
		defer s.mu.Unlock()
		if err == nil {
			s.page.Clamp(s.catalog.GroupCount())
		}
		return Result{View: s.viewLocked(), Changed: err == nil, Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	changed := false
	switch c := cmd.(type) {
	case FilterCommand:
		s.catalog.ApplyFilter(c.Criteria)
		s.page.CurrentPage = 1
		changed = true
	case PaginateCommand:
		total := pagination.TotalPages(s.catalog.GroupCount(), s.page.ItemsPerPage)
		changed = s.page.Move(c.Delta, total)
	case SetPageCommand:
		before := s.page.CurrentPage
		total := pagination.TotalPages(s.catalog.GroupCount(), s.page.ItemsPerPage)
		s.page.CurrentPage = pagination.Clamp(c.Page, total)
		changed = before != s.page.CurrentPage
	case SetPageSizeCommand:
		s.page.SetPerPage(c.Size, s.catalog.GroupCount())
		s.page.CurrentPage = 1
		changed = true
	}
	return Result{View: s.viewLocked(), Changed: changed}
}

func (s *CatalogSession) runTest(ctx context.Context, spec types.TestRequestSpec) Result {
	if s.dispatcher == nil {
		return Result{View: s.View(), Err: &types.ValidationError{Message: "no dispatcher configured"}}
	}
	outcome := s.dispatcher.Execute(ctx, spec)
	return Result{View: s.View(), Outcome: &outcome}
}

func (s *CatalogSession) viewLocked() pagination.View {
	s.page.Clamp(s.catalog.GroupCount())
	return pagination.Paginate(s.catalog.Index(), s.page.CurrentPage, s.page.ItemsPerPage)
}
