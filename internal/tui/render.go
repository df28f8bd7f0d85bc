package tui

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/studiowebux/apiconsole/internal/executor"
	"github.com/studiowebux/apiconsole/internal/filter"
	"github.com/studiowebux/apiconsole/internal/highlight"
	"github.com/studiowebux/apiconsole/internal/pagination"
	"github.com/studiowebux/apiconsole/internal/telemetry"
	"github.com/studiowebux/apiconsole/internal/types"
)

// Adaptive color definitions for light/dark terminal support
var (
	colorGreen  = lipgloss.AdaptiveColor{Light: "#006400", Dark: "#00ff00"}
	colorRed    = lipgloss.AdaptiveColor{Light: "#8b0000", Dark: "#ff0000"}
	colorYellow = lipgloss.AdaptiveColor{Light: "#b8860b", Dark: "#ffff00"}
	colorBlue   = lipgloss.AdaptiveColor{Light: "#00008b", Dark: "#5f87ff"}
	colorGray   = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#888888"}
	colorCyan   = lipgloss.AdaptiveColor{Light: "#008b8b", Dark: "#00ffff"}
)

// Style definitions
var (
	styleTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorCyan)

	styleSelected = lipgloss.NewStyle().
			Background(lipgloss.AdaptiveColor{Light: "#d3d3d3", Dark: "#3a3a3a"}).
			Foreground(lipgloss.AdaptiveColor{Light: "#000000", Dark: "#ffffff"})

	styleSuccess = lipgloss.NewStyle().
			Foreground(colorGreen)

	styleError = lipgloss.NewStyle().
			Foreground(colorRed)

	styleWarning = lipgloss.NewStyle().
			Foreground(colorYellow)

	styleSubtle = lipgloss.NewStyle().
			Foreground(colorGray)

	styleTabActive = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorCyan).
			Underline(true).
			Padding(0, 1)

	styleTab = lipgloss.NewStyle().
			Foreground(colorGray).
			Padding(0, 1)

	styleBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorGray).
			Padding(0, 1)
)

var methodColors = map[types.HTTPMethod]lipgloss.AdaptiveColor{
	types.MethodGet:    colorGreen,
	types.MethodPost:   colorBlue,
	types.MethodPut:    colorYellow,
	types.MethodPatch:  colorCyan,
	types.MethodDelete: colorRed,
}

func methodStyle(m types.HTTPMethod) lipgloss.Style {
	c, ok := methodColors[m]
	if !ok {
		c = colorGray
	}
	return lipgloss.NewStyle().Foreground(c).Bold(true).Width(8)
}

// statusStyle colours a status: FAILED red, >= 400 yellow, otherwise green
func statusStyle(s types.Status) lipgloss.Style {
	switch executor.StatusClass(s) {
	case "failed":
		return styleError
	case "warning":
		return styleWarning
	default:
		return styleSuccess
	}
}

func levelStyle(l telemetry.Level) lipgloss.Style {
	switch l {
	case telemetry.LevelGood:
		return styleSuccess
	case telemetry.LevelWarn:
		return styleWarning
	case telemetry.LevelBad:
		return styleError
	default:
		return styleSubtle
	}
}

// renderMain renders the tab bar, the active tab and the status bar
func (m *Model) renderMain() string {
	var body string
	height := m.height - 3
	switch m.tab {
	case TabTest:
		body = m.renderTest(m.width, height)
	case TabMonitor:
		body = m.renderMonitor(m.width, height)
	default:
		body = m.renderCatalog(m.width, height)
	}

	body = lipgloss.NewStyle().Height(height).MaxHeight(height).Render(body)
	return lipgloss.JoinVertical(lipgloss.Left, m.renderTabs(), body, m.renderStatusBar())
}

func (m *Model) renderTabs() string {
	tabs := []Tab{TabCatalog, TabTest, TabMonitor}
	parts := make([]string, 0, len(tabs)+1)
	parts = append(parts, styleTitle.Render("API Console")+"  ")
	for i, t := range tabs {
		label := fmt.Sprintf("F%d %s", i+1, t)
		if t == m.tab {
			parts = append(parts, styleTabActive.Render(label))
		} else {
			parts = append(parts, styleTab.Render(label))
		}
	}
	line := lipgloss.JoinHorizontal(lipgloss.Top, parts...)
	return line + "\n" + styleSubtle.Render(strings.Repeat("─", max(0, m.width)))
}

func (m *Model) renderStatusBar() string {
	var left string
	switch {
	case m.errorMsg != "":
		left = styleError.Render(m.errorMsg)
	case m.statusMsg != "":
		left = m.statusMsg
	}
	if m.inFlight > 0 || m.monitoring {
		left = m.spinner.View() + " " + left
	}

	var hint string
	switch m.tab {
	case TabTest:
		hint = "tab field  ctrl+r send  ctrl+s save  ctrl+o load  ctrl+y curl  ctrl+f query  ctrl+e history  esc back"
	case TabMonitor:
		hint = "r refresh  c clear cache  t test cache  esc back"
	default:
		if m.mode == ModeSearch {
			hint = "enter keep  esc clear"
		} else {
			hint = "/ search  m method  n/p page  g goto  o owner  enter test  s server test  d docs  t templates  H history  q quit"
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", styleSubtle.Render(hint))
}

func filterSummary(endpoints, groups int) string {
	return fmt.Sprintf("%d endpoints in %d groups", endpoints, groups)
}

func (m *Model) renderCatalog(width, height int) string {
	var sb strings.Builder

	criteria := m.session.Catalog().Criteria()
	method := "ALL"
	if criteria.Method != nil {
		method = string(*criteria.Method)
	}
	if m.mode == ModeSearch {
		sb.WriteString(m.searchInput.View())
	} else if criteria.SearchTerm != "" {
		sb.WriteString("Search: " + criteria.SearchTerm)
	} else {
		sb.WriteString(styleSubtle.Render("Search: (press /)"))
	}
	sb.WriteString("   Method: " + method + "\n\n")

	if !m.catalogReady {
		sb.WriteString(m.spinner.View() + " Loading catalog...")
		return sb.String()
	}

	view := m.session.View()
	if len(view.Groups) == 0 {
		sb.WriteString(styleSubtle.Render("No endpoints match the current filter."))
		return sb.String()
	}

	listWidth := width * 3 / 5
	list := m.renderGroups(view, listWidth)
	detail := ""
	if e, ok := m.selectedEndpoint(); ok {
		detail = styleBox.Width(max(20, width-listWidth-4)).Render(renderEndpointDetail(e))
	}
	sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, list, " ", detail))
	sb.WriteString("\n\n")
	sb.WriteString(renderPager(view, m.session.Page().ItemsPerPage))
	return sb.String()
}

func (m *Model) renderGroups(view pagination.View, width int) string {
	var sb strings.Builder
	i := 0
	for _, g := range view.Groups {
		sb.WriteString(styleTitle.Render(g.Owner))
		sb.WriteString(styleSubtle.Render(fmt.Sprintf(" (%d)", len(g.Endpoints))))
		sb.WriteString("\n")
		for _, e := range g.Endpoints {
			path := truncate(e.PrimaryPath(), max(10, width-24))
			line := "  " + methodStyle(e.Method).Render(string(e.Method)) + path
			if e.Deprecated {
				line += styleWarning.Render(" deprecated")
			}
			if i == m.selected {
				line = styleSelected.Render(line)
			}
			sb.WriteString(line + "\n")
			i++
		}
	}
	return lipgloss.NewStyle().Width(width).Render(sb.String())
}

func renderEndpointDetail(e types.EndpointDescriptor) string {
	var sb strings.Builder
	sb.WriteString(styleTitle.Render(e.OperationName) + "\n")
	sb.WriteString(methodStyle(e.Method).Render(string(e.Method)) + strings.Join(e.Paths, ", ") + "\n")
	if e.Summary != "" {
		sb.WriteString("\n" + e.Summary + "\n")
	}
	if e.Description != "" && e.Description != e.Summary {
		sb.WriteString("\n" + styleSubtle.Render(e.Description) + "\n")
	}

	if len(e.Parameters) > 0 {
		sb.WriteString("\nParameters:\n")
		names := make([]string, 0, len(e.Parameters))
		for name := range e.Parameters {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			p := e.Parameters[name]
			line := fmt.Sprintf("  %s %s", name, styleSubtle.Render(p.Type))
			if p.Required {
				line += styleError.Render(" *")
			}
			if p.DefaultValue != "" {
				line += styleSubtle.Render(" = " + p.DefaultValue)
			}
			sb.WriteString(line + "\n")
		}
	}

	if e.Body != nil {
		sb.WriteString("\nBody: " + e.Body.Type + "\n")
		for _, f := range e.Body.Fields {
			sb.WriteString("  " + f + "\n")
		}
	}
	if len(e.Tags) > 0 {
		sb.WriteString("\n" + styleSubtle.Render("tags: "+strings.Join(e.Tags, ", ")))
	}
	return sb.String()
}

func renderPager(view pagination.View, perPage int) string {
	prev, next := "‹ prev", "next ›"
	if view.CurrentPage <= 1 {
		prev = styleSubtle.Render(prev)
	}
	if view.CurrentPage >= view.TotalPages {
		next = styleSubtle.Render(next)
	}
	return fmt.Sprintf("%s  Page %d of %d  %s   %s   %d groups/page",
		prev, view.CurrentPage, view.TotalPages, next,
		styleSubtle.Render(fmt.Sprintf("%d endpoints", view.TotalItems)), perPage)
}

var fieldLabels = []string{"Method", "URL", "Environment", "Token", "Timeout (s)", "Headers (JSON)", "Body"}

func (m *Model) renderTest(width, height int) string {
	formWidth := width / 2
	if width < 100 {
		formWidth = width
	}

	var form strings.Builder
	for i := 0; i < fieldCount; i++ {
		label := fieldLabels[i]
		if i == fieldToken && m.security.TokenRequired() {
			label += styleError.Render(" (required)")
		}
		if i == fieldEnvironment {
			label += styleSubtle.Render(" " + m.environmentHint())
		}
		if i == m.focusField {
			label = styleTitle.Render("› ") + label
		} else {
			label = "  " + label
		}
		form.WriteString(label + "\n")

		if i == fieldBody {
			m.bodyInput.SetWidth(max(20, formWidth-4))
			form.WriteString(m.bodyInput.View() + "\n")
		} else {
			m.fields[i].Width = max(20, formWidth-6)
			form.WriteString("  " + m.fields[i].View() + "\n")
		}
	}

	response := styleBox.Width(max(20, width-formWidth-4)).Render(m.renderResponseHeader() + "\n" + m.responseView.View())
	if width < 100 {
		return lipgloss.JoinVertical(lipgloss.Left, form.String(), response)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, form.String(), response)
}

func (m *Model) environmentHint() string {
	envs := m.envConfig.Environments
	if len(envs) == 0 {
		return "(built-in: local, dev, prod)"
	}
	names := make([]string, 0, len(envs))
	for name := range envs {
		names = append(names, name)
	}
	sort.Strings(names)
	return "(" + strings.Join(names, ", ") + ")"
}

func (m *Model) renderResponseHeader() string {
	o := m.lastOutcome
	if o == nil {
		return styleSubtle.Render("No response yet. Press ctrl+r to send.")
	}
	line := statusStyle(o.Status).Render(o.Status.String()) +
		fmt.Sprintf("  %s  %s", executor.FormatDuration(o.ResponseTime), executor.FormatSize(int64(o.ResponseSize)))
	if m.responseQuery != "" {
		line += styleSubtle.Render("  query: " + m.responseQuery)
	}
	return line
}

// updateResponseView re-renders the response body into the viewport
func (m *Model) updateResponseView() {
	o := m.lastOutcome
	if o == nil {
		m.responseView.SetContent("")
		return
	}
	if o.Failed() {
		kind := "Network error"
		if o.ErrorKind == types.ErrorKindTimeout {
			kind = "Timeout"
		}
		m.responseView.SetContent(styleError.Render(kind) + "\n\n" + o.ErrorDetail)
		return
	}

	body := o.Body
	contentType := o.Headers["Content-Type"]
	if m.responseQuery != "" {
		queried, err := filter.Apply(o.Body, m.responseQuery)
		if err != nil {
			m.setError("Query failed: " + err.Error())
		} else {
			body = queried
			contentType = "application/json"
		}
	}

	var sb strings.Builder
	keys := make([]string, 0, len(o.Headers))
	for k := range o.Headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		sb.WriteString(styleSubtle.Render(k+": ") + o.Headers[k] + "\n")
	}
	sb.WriteString("\n")
	sb.WriteString(m.highlighter.Render(body, highlight.Language(contentType, body)))

	m.responseView.SetContent(sb.String())
	m.responseView.GotoTop()
}

// updateViewport resizes viewports after a window change
func (m *Model) updateViewport() {
	w := m.width / 2
	if m.width < 100 {
		w = m.width
	}
	m.responseView.Width = max(20, w-6)
	m.responseView.Height = max(5, m.height-10)
	if m.width < 100 {
		m.responseView.Height = max(5, m.height/2-6)
	}
}

func (m *Model) renderMonitor(width, height int) string {
	snap := m.telemetry
	boxWidth := max(24, (width-8)/4)

	health := m.monitorBox("Health", telemetry.SectionHealth, boxWidth, func() string {
		h := snap.Health
		if !h.Available {
			return levelStyle(h.Level).Render(h.Status)
		}
		return fmt.Sprintf("%s\nScore: %.1f\nAlerts: %d",
			levelStyle(h.Level).Render(h.Status), h.Score, h.AlertsTotal)
	})

	perf := m.monitorBox("Performance", telemetry.SectionPerformance, boxWidth, func() string {
		p := snap.Performance
		if !p.Available {
			return styleSubtle.Render("no data")
		}
		s := fmt.Sprintf("Requests: %d\nSucceeded: %d\nErrors: %d\nAvg: %s\nConnections: %d",
			p.TotalRequests, p.SuccessfulRequests, p.ErrorRequests, p.AverageResponse, p.ActiveConnections)
		if p.HasSystem {
			s += fmt.Sprintf("\nHeap: %s (%s)\nLoad: %s\nThreads: %s", p.HeapUsage, p.HeapDetails, p.SystemLoad, p.Threads)
		}
		return s
	})

	cache := m.monitorBox("Cache", telemetry.SectionCache, boxWidth, func() string {
		c := snap.Cache
		if !c.Available {
			return styleSubtle.Render("no data")
		}
		return fmt.Sprintf("Usage: %s\nEntries: %s\nTTL: %s", c.Usage, c.Details, c.TTL)
	})

	alerts := m.monitorBox("Alerts", telemetry.SectionAlerts, boxWidth, func() string {
		a := snap.Alerts
		if !a.Available {
			return styleSubtle.Render("no data")
		}
		s := fmt.Sprintf("Total: %d\n%s\n%s", a.Total,
			styleError.Render(fmt.Sprintf("Critical: %d", a.Critical)),
			styleWarning.Render(fmt.Sprintf("Warning: %d", a.Warning)))
		for _, st := range a.Statuses {
			s += fmt.Sprintf("\n%s: %d", st.Status, st.Count)
		}
		return s
	})

	top := lipgloss.JoinHorizontal(lipgloss.Top, health, perf, cache, alerts)

	updated := styleSubtle.Render("never refreshed")
	if !snap.UpdatedAt.IsZero() {
		updated = styleSubtle.Render("updated " + snap.UpdatedAt.Format("15:04:05"))
	}
	return lipgloss.JoinVertical(lipgloss.Left, top, updated, "", renderEndpointMetrics(snap.Performance.Endpoints, width-2))
}

// monitorBox renders one section, marking it when the last refresh failed
func (m *Model) monitorBox(title, section string, width int, content func() string) string {
	header := styleTitle.Render(title)
	if err, ok := m.telemetry.Errors[section]; ok {
		header += styleError.Render(" !")
		return styleBox.Width(width).Render(header + "\n" + content() + "\n" + styleError.Render(truncate(err.Error(), width*2)))
	}
	return styleBox.Width(width).Render(header + "\n" + content())
}

func renderEndpointMetrics(rows []telemetry.EndpointRow, width int) string {
	if len(rows) == 0 {
		return styleSubtle.Render("No per-endpoint metrics.")
	}

	cells := make([][]string, len(rows))
	for i, r := range rows {
		cells[i] = []string{
			r.Path,
			fmt.Sprintf("%d", r.Requests),
			levelStyle(r.ErrorLevel).Render(fmt.Sprintf("%.1f%%", r.ErrorRate)),
			levelStyle(r.TimeLevel).Render(fmt.Sprintf("%.0fms", r.AvgTime)),
			fmt.Sprintf("%dms", r.MinTime),
			fmt.Sprintf("%dms", r.MaxTime),
		}
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(styleSubtle).
		Headers("Endpoint", "Requests", "Error rate", "Avg", "Min", "Max").
		Rows(cells...).
		Width(width).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return lipgloss.NewStyle().Bold(true).Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
	return t.String()
}

func headersJSON(h map[string]string) string {
	if len(h) == 0 {
		return ""
	}
	data, err := json.Marshal(h)
	if err != nil {
		return ""
	}
	return string(data)
}
