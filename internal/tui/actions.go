package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/studiowebux/apiconsole/internal/backend"
	"github.com/studiowebux/apiconsole/internal/executor"
	"github.com/studiowebux/apiconsole/internal/modal"
	"github.com/studiowebux/apiconsole/internal/request"
	"github.com/studiowebux/apiconsole/internal/session"
	"github.com/studiowebux/apiconsole/internal/types"
)

// Prompt and confirm purposes
const (
	purposePage           = "page"
	purposeOwner          = "owner"
	purposeDocs           = "docs"
	purposeQuery          = "query"
	purposeTemplateLoad   = "template-load"
	purposeTemplateDelete = "template-delete"
	purposeCacheClear     = "cache-clear"
)

func (m *Model) loadCatalog() tea.Cmd {
	ctx, sess, src := m.ctx, m.session, m.backend
	return func() tea.Msg {
		return catalogLoadedMsg{result: sess.Handle(ctx, session.ReloadCommand{Source: src})}
	}
}

func (m *Model) loadEnvironments() tea.Cmd {
	ctx, b := m.ctx, m.backend
	return func() tea.Msg {
		cfg, err := b.Environments(ctx)
		return environmentsLoadedMsg{config: cfg, err: err}
	}
}

func (m *Model) loadSecurity() tea.Cmd {
	ctx, b := m.ctx, m.backend
	return func() tea.Msg {
		status, err := b.SecurityStatus(ctx)
		return securityLoadedMsg{status: status, err: err}
	}
}

func (m *Model) refreshTelemetry() tea.Cmd {
	if m.monitoring {
		return nil
	}
	m.monitoring = true
	ctx, p := m.ctx, m.poller
	return func() tea.Msg {
		return telemetryLoadedMsg{snapshot: p.Refresh(ctx)}
	}
}

// formInput collects the test form into builder input
func (m *Model) formInput() request.Input {
	defaults := make(map[string]string, len(m.envConfig.DefaultHeaders)+len(m.cfg.Headers))
	for k, v := range m.envConfig.DefaultHeaders {
		defaults[k] = v
	}
	for k, v := range m.cfg.Headers {
		defaults[k] = v
	}

	timeout, _ := strconv.ParseFloat(strings.TrimSpace(m.fields[fieldTimeout].Value()), 64)

	return request.Input{
		Method:         m.fields[fieldMethod].Value(),
		URL:            m.fields[fieldURL].Value(),
		Environment:    strings.TrimSpace(m.fields[fieldEnvironment].Value()),
		DefaultHeaders: request.HeaderSource{Name: "default headers", Values: defaults},
		CustomHeaders:  request.HeaderSource{Name: "custom headers", Raw: m.fields[fieldHeaders].Value()},
		AccessToken:    m.fields[fieldToken].Value(),
		Body:           m.bodyInput.Value(),
		TimeoutSeconds: timeout,
	}
}

// buildSpec builds the current form or shows why it cannot be sent
func (m *Model) buildSpec() (types.TestRequestSpec, bool) {
	spec, err := m.builder.Build(m.formInput())
	if err != nil {
		m.modal.Error("Invalid request", err.Error())
		return types.TestRequestSpec{}, false
	}
	return spec, true
}

// sendRequest dispatches the form. Concurrent sends are allowed; the last
// one to finish owns the response panel.
func (m *Model) sendRequest() tea.Cmd {
	spec, ok := m.buildSpec()
	if !ok {
		return nil
	}
	if m.security.TokenRequired() && spec.AccessToken == "" {
		m.setError("Backend expects an access token; sending without one")
	} else {
		m.setStatus(fmt.Sprintf("Sending %s %s", spec.Method, spec.URL))
	}

	m.inFlight++
	ctx, sess := m.ctx, m.session
	return func() tea.Msg {
		res := sess.Handle(ctx, session.RunTestCommand{Spec: spec})
		if res.Outcome == nil {
			return errorMsg(fmt.Sprintf("dispatch failed: %v", res.Err))
		}
		return testCompletedMsg{outcome: *res.Outcome}
	}
}

// loadEndpoint prefills the test form from a catalog entry
func (m *Model) loadEndpoint(e types.EndpointDescriptor) {
	in := request.FromEndpoint(e)
	m.fields[fieldMethod].SetValue(in.Method)
	m.fields[fieldURL].SetValue(in.URL)
	m.bodyInput.SetValue(in.Body)
	m.switchTab(TabTest)
	m.focusField = fieldURL
	m.applyFocus()
	m.setStatus(fmt.Sprintf("Loaded %s.%s", e.Owner, e.OperationName))
}

func (m *Model) runServerTest(e types.EndpointDescriptor) tea.Cmd {
	params := make(map[string]any)
	for name, p := range e.Parameters {
		if p.DefaultValue != "" {
			params[name] = p.DefaultValue
		}
	}
	req := backend.ServerTestRequest{
		Endpoint:   e.PrimaryPath(),
		Method:     string(e.Method),
		Parameters: params,
	}

	m.modal.Loading(fmt.Sprintf("Server-side test of %s %s", e.Method, e.PrimaryPath()))
	ctx, b := m.ctx, m.backend
	return func() tea.Msg {
		res, err := b.RunServerTest(ctx, req)
		return serverTestMsg{endpoint: e, result: res, err: err}
	}
}

func (m *Model) showServerTest(msg serverTestMsg) {
	title := fmt.Sprintf("Server test: %s %s", msg.endpoint.Method, msg.endpoint.PrimaryPath())
	if msg.err != nil && msg.result.StatusCode == 0 {
		m.modal.Error(title, msg.err.Error())
		return
	}

	r := msg.result
	rows := []map[string]any{
		{"field": "Success", "value": r.Success},
		{"field": "Status", "value": r.StatusCode},
		{"field": "Duration", "value": executor.FormatDuration(r.Duration)},
	}
	if r.ErrorMessage != "" {
		rows = append(rows, map[string]any{"field": "Error", "value": r.ErrorMessage})
	}
	if r.ResponseBody != "" {
		rows = append(rows, map[string]any{"field": "Response", "value": truncate(r.ResponseBody, 400)})
	}
	m.modal.Table(title, []modal.Column{
		{Key: "field", Title: "Field"},
		{Key: "value", Title: "Value"},
	}, rows)
}

func (m *Model) downloadDocs(format string) tea.Cmd {
	m.modal.Loading("Downloading " + format + " documentation")
	ctx, b, dir := m.ctx, m.backend, m.docsDir
	return func() tea.Msg {
		doc, err := b.DownloadDocs(ctx, format)
		if err != nil {
			return docsDownloadedMsg{err: err}
		}
		path, err := backend.SaveDocument(doc, dir)
		return docsDownloadedMsg{doc: doc, path: path, err: err}
	}
}

func docsSummary(doc types.Document, path string) string {
	s := "Saved to " + path
	if doc.Title != "" {
		s += fmt.Sprintf("\n\n%s %s, %d operations", doc.Title, doc.Version, doc.Operations)
	}
	return s
}

func (m *Model) clearCache() tea.Cmd {
	m.modal.Loading("Clearing cache")
	ctx, b := m.ctx, m.backend
	return func() tea.Msg {
		return cacheClearedMsg{err: b.ClearCache(ctx)}
	}
}

func (m *Model) testCache() tea.Cmd {
	ctx, b := m.ctx, m.backend
	return func() tea.Msg {
		res, err := b.TestCache(ctx)
		return cacheTestedMsg{result: res, err: err}
	}
}

func (m *Model) saveTemplate() tea.Cmd {
	if m.templates == nil {
		m.setError("Template storage unavailable")
		return nil
	}
	draft, err := request.Template(m.formInput())
	if err != nil {
		m.modal.Error("Invalid request", err.Error())
		return nil
	}
	store := m.templates
	return func() tea.Msg {
		t, err := store.Save(draft)
		return templateSavedMsg{template: t, err: err}
	}
}

func (m *Model) listTemplates(purpose string) tea.Cmd {
	if m.templates == nil {
		m.setError("Template storage unavailable")
		return nil
	}
	store := m.templates
	return func() tea.Msg {
		list, err := store.List()
		return templatesListedMsg{purpose: purpose, templates: list, err: err}
	}
}

func (m *Model) handleTemplatesListed(msg templatesListedMsg) tea.Cmd {
	if msg.err != nil {
		m.setError("Failed to load templates: " + msg.err.Error())
		return nil
	}
	if len(msg.templates) == 0 {
		m.modal.Info("Templates", "No saved templates yet. Press ctrl+s on the Test tab to save one.")
		return nil
	}

	var sb strings.Builder
	for i, t := range msg.templates {
		fmt.Fprintf(&sb, "%2d) %s  %s\n", i+1, t.Name, styleSubtle.Render(t.Timestamp.Format("2006-01-02 15:04")))
	}
	sb.WriteString("\nTemplate number:")

	title := "Load template"
	if msg.purpose == purposeTemplateDelete {
		title = "Delete template"
	}
	m.pendingTemplates = msg.templates
	return m.prompt(msg.purpose, title, sb.String(), "1")
}

// pickTemplate resolves a 1-based choice against the last listing
func (m *Model) pickTemplate(choice string) (types.RequestTemplate, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(choice))
	if err != nil || n < 1 || n > len(m.pendingTemplates) {
		m.setError("No template " + choice)
		return types.RequestTemplate{}, false
	}
	return m.pendingTemplates[n-1], true
}

func (m *Model) applyTemplate(t types.RequestTemplate) {
	m.fields[fieldMethod].SetValue(string(t.Method))
	m.fields[fieldURL].SetValue(t.URL)
	if t.Environment != "" {
		m.fields[fieldEnvironment].SetValue(t.Environment)
	}
	m.fields[fieldHeaders].SetValue(headersJSON(t.Headers))
	m.bodyInput.SetValue(t.Body)
	m.switchTab(TabTest)
	m.setStatus("Loaded template " + t.Name)
}

func (m *Model) deleteTemplate(t types.RequestTemplate) tea.Cmd {
	store := m.templates
	return func() tea.Msg {
		return templateDeletedMsg{name: t.Name, err: store.Delete(t.ID)}
	}
}

func (m *Model) copyCurl() tea.Cmd {
	spec, ok := m.buildSpec()
	if !ok {
		return nil
	}
	return copyText("curl command", request.Curl(spec))
}

func (m *Model) copyResponse() tea.Cmd {
	if m.lastOutcome == nil {
		m.setError("No response to copy")
		return nil
	}
	return copyText("response body", m.lastOutcome.Body)
}

func copyText(what, text string) tea.Cmd {
	return func() tea.Msg {
		return clipboardMsg{what: what, err: clipboard.WriteAll(text)}
	}
}

// prompt shows a prompt dialog and returns a command that waits for it
func (m *Model) prompt(purpose, title, message, defaultValue string) tea.Cmd {
	f := m.modal.Prompt(title, message, defaultValue)
	m.modalInput.SetValue(defaultValue)
	m.modalInput.CursorEnd()
	m.modalInput.Focus()

	ctx := m.ctx
	return func() tea.Msg {
		res, err := f.Wait(ctx)
		if err != nil {
			return nil
		}
		return promptResultMsg{purpose: purpose, result: res}
	}
}

// confirm shows a confirm dialog and returns a command that waits for it
func (m *Model) confirm(purpose, title, message string) tea.Cmd {
	f := m.modal.Confirm(title, message)
	ctx := m.ctx
	return func() tea.Msg {
		ok, err := f.Wait(ctx)
		if err != nil {
			return nil
		}
		return confirmResultMsg{purpose: purpose, ok: ok}
	}
}

func (m *Model) handlePromptResult(msg promptResultMsg) tea.Cmd {
	m.modalInput.Blur()
	if !msg.result.OK {
		return nil
	}
	value := strings.TrimSpace(msg.result.Value)

	switch msg.purpose {
	case purposePage:
		page, err := strconv.Atoi(value)
		if err != nil {
			m.setError("Not a page number: " + value)
			return nil
		}
		m.session.Handle(m.ctx, session.SetPageCommand{Page: page})
		m.selected = 0

	case purposeOwner:
		m.jumpToOwner(value)

	case purposeDocs:
		return m.downloadDocs(value)

	case purposeQuery:
		m.responseQuery = value
		m.updateResponseView()

	case purposeTemplateLoad:
		if t, ok := m.pickTemplate(value); ok {
			m.applyTemplate(t)
		}

	case purposeTemplateDelete:
		if t, ok := m.pickTemplate(value); ok {
			return m.deleteTemplate(t)
		}
	}
	return nil
}

func (m *Model) handleConfirmResult(msg confirmResultMsg) tea.Cmd {
	if !msg.ok {
		m.setStatus("Cancelled")
		return nil
	}
	switch msg.purpose {
	case purposeCacheClear:
		return m.clearCache()
	}
	return nil
}

// jumpToOwner moves to the page holding the best fuzzy match for query
func (m *Model) jumpToOwner(query string) {
	cat := m.session.Catalog()
	idx, ok := cat.FindOwner(query)
	if !ok {
		m.setError("No owner matches " + query)
		return
	}
	index := cat.Index()
	if idx >= len(index) {
		return
	}
	owner := index[idx].Owner

	perPage := m.session.Page().ItemsPerPage
	res := m.session.Handle(m.ctx, session.SetPageCommand{Page: idx/perPage + 1})

	m.selected = 0
	for _, g := range res.View.Groups {
		if g.Owner == owner {
			break
		}
		m.selected += len(g.Endpoints)
	}
	m.setStatus("Jumped to " + owner)
}
