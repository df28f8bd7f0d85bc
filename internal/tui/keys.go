package tui

import (
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/studiowebux/apiconsole/internal/catalog"
	"github.com/studiowebux/apiconsole/internal/executor"
	"github.com/studiowebux/apiconsole/internal/modal"
	"github.com/studiowebux/apiconsole/internal/session"
	"github.com/studiowebux/apiconsole/internal/types"
)

// pageSizes are the choices "[" and "]" step through
var pageSizes = []int{5, 10, 20, 50}

// handleKeyPress routes keys to the modal first, then to the active tab
func (m *Model) handleKeyPress(msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "ctrl+c" {
		return tea.Quit
	}

	if m.modal.State() == modal.Visible {
		return m.handleModalKeys(msg)
	}

	switch msg.String() {
	case "f1":
		m.switchTab(TabCatalog)
		return nil
	case "f2":
		m.switchTab(TabTest)
		return nil
	case "f3":
		return m.switchTab(TabMonitor)
	}

	switch m.tab {
	case TabTest:
		return m.handleTestKeys(msg)
	case TabMonitor:
		return m.handleMonitorKeys(msg)
	default:
		if m.mode == ModeSearch {
			return m.handleSearchKeys(msg)
		}
		return m.handleCatalogKeys(msg)
	}
}

func (m *Model) handleModalKeys(msg tea.KeyMsg) tea.Cmd {
	req, _ := m.modal.Active()

	switch msg.String() {
	case "esc":
		m.modal.Dismiss()
		return nil
	case "enter":
		m.modal.ActivateFocused()
		return nil
	case "tab":
		m.modal.MoveFocus(1)
		return nil
	case "shift+tab":
		m.modal.MoveFocus(-1)
		return nil
	}

	if req.Input {
		var cmd tea.Cmd
		m.modalInput, cmd = m.modalInput.Update(msg)
		m.modal.SetInput(m.modalInput.Value())
		return cmd
	}

	switch msg.String() {
	case "left", "h":
		m.modal.MoveFocus(-1)
	case "right", "l":
		m.modal.MoveFocus(1)
	case "q":
		m.modal.Dismiss()
	}
	return nil
}

// switchTab changes the visible tab. Opening the monitor refreshes it.
func (m *Model) switchTab(t Tab) tea.Cmd {
	m.tab = t
	m.mode = ModeNormal
	m.searchInput.Blur()
	m.applyFocus()
	if t == TabMonitor {
		return m.refreshTelemetry()
	}
	return nil
}

func (m *Model) handleCatalogKeys(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q":
		return tea.Quit
	case "2":
		m.switchTab(TabTest)
	case "3":
		return m.switchTab(TabMonitor)

	case "/":
		m.mode = ModeSearch
		m.searchInput.SetValue(m.session.Catalog().Criteria().SearchTerm)
		m.searchInput.CursorEnd()
		return m.searchInput.Focus()

	case "m":
		m.methodFilter = (m.methodFilter + 1) % len(methodCycle)
		m.applyFilter(m.session.Catalog().Criteria().SearchTerm)

	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
	case "down", "j":
		if m.selected < len(m.pageEndpoints())-1 {
			m.selected++
		}

	case "right", "l", "n", "pgdown":
		if m.session.Handle(m.ctx, session.PaginateCommand{Delta: 1}).Changed {
			m.selected = 0
		}
	case "left", "h", "p", "pgup":
		if m.session.Handle(m.ctx, session.PaginateCommand{Delta: -1}).Changed {
			m.selected = 0
		}

	case "[", "]":
		m.stepPageSize(msg.String() == "]")

	case "g":
		return m.prompt(purposePage, "Go to page", "Page number:", "1")
	case "o":
		return m.prompt(purposeOwner, "Jump to owner", "Owner name (fuzzy):", "")

	case "enter":
		if e, ok := m.selectedEndpoint(); ok {
			m.loadEndpoint(e)
		}
	case "s":
		if e, ok := m.selectedEndpoint(); ok {
			return m.runServerTest(e)
		}

	case "r":
		m.setStatus("Reloading catalog")
		return m.loadCatalog()
	case "d":
		return m.prompt(purposeDocs, "Download documentation", "Format (markdown, html or json):", "markdown")
	case "H":
		m.showHistory()
	case "t":
		return m.listTemplates(purposeTemplateLoad)
	}
	return nil
}

// handleSearchKeys filters live while typing; esc clears the search
func (m *Model) handleSearchKeys(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.mode = ModeNormal
		m.searchInput.Blur()
		m.searchInput.SetValue("")
		m.applyFilter("")
		return nil
	case "enter":
		m.mode = ModeNormal
		m.searchInput.Blur()
		return nil
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	m.applyFilter(m.searchInput.Value())
	return cmd
}

func (m *Model) applyFilter(term string) {
	criteria := catalog.Criteria{SearchTerm: term}
	if method := methodCycle[m.methodFilter]; method != "" {
		criteria.Method = &method
	}
	res := m.session.Handle(m.ctx, session.FilterCommand{Criteria: criteria})
	m.selected = 0
	m.setStatus(filterSummary(res.View.TotalItems, m.session.Catalog().GroupCount()))
}

func (m *Model) stepPageSize(up bool) {
	current := m.session.Page().ItemsPerPage
	next := current
	for i, size := range pageSizes {
		if size == current {
			if up && i < len(pageSizes)-1 {
				next = pageSizes[i+1]
			} else if !up && i > 0 {
				next = pageSizes[i-1]
			}
			break
		}
		if size > current {
			next = size
			break
		}
	}
	m.session.Handle(m.ctx, session.SetPageSizeCommand{Size: next})
	m.selected = 0
	m.setStatus("Showing " + strconv.Itoa(next) + " groups per page")
}

func (m *Model) handleTestKeys(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.switchTab(TabCatalog)
		return nil
	case "tab":
		m.focusField = (m.focusField + 1) % fieldCount
		m.applyFocus()
		return nil
	case "shift+tab":
		m.focusField = (m.focusField - 1 + fieldCount) % fieldCount
		m.applyFocus()
		return nil
	case "ctrl+r":
		return m.sendRequest()
	case "ctrl+s":
		return m.saveTemplate()
	case "ctrl+o":
		return m.listTemplates(purposeTemplateLoad)
	case "ctrl+d":
		return m.listTemplates(purposeTemplateDelete)
	case "ctrl+y":
		return m.copyCurl()
	case "ctrl+b":
		return m.copyResponse()
	case "ctrl+f":
		return m.prompt(purposeQuery, "Query response", "JMESPath expression (empty shows the full body):", m.responseQuery)
	case "ctrl+e":
		m.showHistory()
		return nil
	case "pgup":
		m.responseView.HalfViewUp()
		return nil
	case "pgdown":
		m.responseView.HalfViewDown()
		return nil
	}

	var cmd tea.Cmd
	if m.focusField == fieldBody {
		m.bodyInput, cmd = m.bodyInput.Update(msg)
	} else {
		m.fields[m.focusField], cmd = m.fields[m.focusField].Update(msg)
	}
	return cmd
}

// applyFocus focuses the active form field when the test tab is visible
func (m *Model) applyFocus() {
	for i := range m.fields {
		if m.tab == TabTest && i == m.focusField {
			m.fields[i].Focus()
		} else {
			m.fields[i].Blur()
		}
	}
	if m.tab == TabTest && m.focusField == fieldBody {
		m.bodyInput.Focus()
	} else {
		m.bodyInput.Blur()
	}
}

func (m *Model) handleMonitorKeys(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q":
		return tea.Quit
	case "1", "esc":
		m.switchTab(TabCatalog)
	case "2":
		m.switchTab(TabTest)
	case "r":
		return m.refreshTelemetry()
	case "c":
		return m.confirm(purposeCacheClear, "Clear cache", "Remove every entry from the backend cache?")
	case "t":
		return m.testCache()
	}
	return nil
}

// pageEndpoints flattens the groups of the current page
func (m *Model) pageEndpoints() []types.EndpointDescriptor {
	var out []types.EndpointDescriptor
	for _, g := range m.session.View().Groups {
		out = append(out, g.Endpoints...)
	}
	return out
}

func (m *Model) selectedEndpoint() (types.EndpointDescriptor, bool) {
	eps := m.pageEndpoints()
	if m.selected < 0 || m.selected >= len(eps) {
		return types.EndpointDescriptor{}, false
	}
	return eps[m.selected], true
}

func (m *Model) clampSelection() {
	n := len(m.pageEndpoints())
	if m.selected >= n {
		m.selected = n - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
}

// showHistory opens the recent requests table
func (m *Model) showHistory() {
	entries := m.history.Entries()
	rows := make([]map[string]any, len(entries))
	for i := range entries {
		e := entries[len(entries)-1-i]
		rows[i] = map[string]any{
			"time":     e.Timestamp.Format(time.TimeOnly),
			"method":   string(e.Method),
			"url":      e.URL,
			"status":   e.Status,
			"duration": executor.FormatDuration(e.ResponseTime),
		}
	}
	m.modal.Table("Request history", []modal.Column{
		{Key: "time", Title: "Time"},
		{Key: "method", Title: "Method"},
		{Key: "url", Title: "URL"},
		{Key: "status", Title: "Status", Render: renderStatusCell},
		{Key: "duration", Title: "Duration"},
	}, rows)
}

func renderStatusCell(v any) string {
	s, ok := v.(types.Status)
	if !ok {
		return ""
	}
	return statusStyle(s).Render(s.String())
}
