package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/studiowebux/apiconsole/internal/backend"
	"github.com/studiowebux/apiconsole/internal/catalog"
	"github.com/studiowebux/apiconsole/internal/config"
	"github.com/studiowebux/apiconsole/internal/executor"
	"github.com/studiowebux/apiconsole/internal/highlight"
	"github.com/studiowebux/apiconsole/internal/history"
	"github.com/studiowebux/apiconsole/internal/modal"
	"github.com/studiowebux/apiconsole/internal/request"
	"github.com/studiowebux/apiconsole/internal/session"
	"github.com/studiowebux/apiconsole/internal/telemetry"
	"github.com/studiowebux/apiconsole/internal/templates"
	"github.com/studiowebux/apiconsole/internal/types"
)

// Tab is the visible top-level screen
type Tab int

const (
	TabCatalog Tab = iota
	TabTest
	TabMonitor
)

func (t Tab) String() string {
	switch t {
	case TabTest:
		return "Test"
	case TabMonitor:
		return "Monitor"
	default:
		return "Catalog"
	}
}

// Mode represents the current input mode of the catalog tab
type Mode int

const (
	ModeNormal Mode = iota
	ModeSearch
)

// Backend is everything the console reads from the service under test
type Backend interface {
	catalog.Source
	telemetry.Source
	Environments(ctx context.Context) (types.EnvironmentConfig, error)
	SecurityStatus(ctx context.Context) (types.SecurityStatus, error)
	RunServerTest(ctx context.Context, req backend.ServerTestRequest) (types.ServerTestResult, error)
	DownloadDocs(ctx context.Context, format string) (types.Document, error)
	ClearCache(ctx context.Context) error
	TestCache(ctx context.Context) (types.CacheTestResult, error)
}

// Options wires the model to its collaborators
type Options struct {
	Config    *config.Config
	Backend   Backend
	Templates *templates.Store // nil disables templates
	DocsDir   string
}

// Test form fields, in tab order
const (
	fieldMethod = iota
	fieldURL
	fieldEnvironment
	fieldToken
	fieldTimeout
	fieldHeaders
	fieldBody
	fieldCount
)

// Model represents the TUI state
type Model struct {
	ctx context.Context

	cfg         *config.Config
	backend     Backend
	session     *session.CatalogSession
	history     *history.History
	poller      *telemetry.Poller
	templates   *templates.Store
	modal       *modal.Controller
	highlighter *highlight.Highlighter
	docsDir     string

	tab    Tab
	mode   Mode
	width  int
	height int

	spinner     spinner.Model
	searchInput textinput.Model
	modalInput  textinput.Model

	// Catalog state
	selected     int // index into the flattened endpoints of the current page
	methodFilter int // index into methodCycle
	catalogReady bool

	// Test state
	fields        []textinput.Model // fieldMethod..fieldHeaders
	bodyInput     textarea.Model
	focusField    int
	responseView  viewport.Model
	envConfig     types.EnvironmentConfig
	builder       *request.Builder
	security      types.SecurityStatus
	lastOutcome   *types.TestOutcome
	responseQuery string
	inFlight      int

	// Templates from the last listing, for numbered selection
	pendingTemplates []types.RequestTemplate

	// Monitor state
	telemetry  telemetry.Snapshot
	monitoring bool

	statusMsg string
	errorMsg  string
}

// methodCycle is the order the method filter steps through; "" is all methods
var methodCycle = append([]types.HTTPMethod{""}, types.Methods...)

// New creates a new TUI model
func New(opts Options) (*Model, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	if opts.Backend == nil {
		return nil, fmt.Errorf("backend is required")
	}

	hl, err := highlight.New(highlight.DefaultCacheSize, highlight.DefaultStyle)
	if err != nil {
		return nil, fmt.Errorf("failed to create highlighter: %w", err)
	}

	hist := history.New(history.DefaultCapacity)
	dispatcher := executor.NewDispatcher(executor.WithRecorder(hist))

	m := &Model{
		ctx:         context.Background(),
		cfg:         cfg,
		backend:     opts.Backend,
		session:     session.New(catalog.New(), cfg.PageSize, dispatcher),
		history:     hist,
		poller:      telemetry.NewPoller(opts.Backend),
		templates:   opts.Templates,
		modal:       modal.NewController(),
		highlighter: hl,
		docsDir:     opts.DocsDir,
		builder:     request.NewBuilder(nil),
		spinner:     spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
	m.responseView = viewport.New(80, 20)
	m.telemetry = m.poller.Last()

	m.searchInput = textinput.New()
	m.searchInput.Prompt = "/ "
	m.searchInput.Placeholder = "operation, owner or path"

	m.modalInput = textinput.New()
	m.modalInput.Prompt = ""

	m.initForm()
	return m, nil
}

func (m *Model) initForm() {
	m.fields = make([]textinput.Model, fieldHeaders+1)
	placeholders := []string{"GET", "/users/1 or https://host/path", "local", "bearer token", "30", `{"X-Trace": "1"}`}
	for i := range m.fields {
		ti := textinput.New()
		ti.Prompt = ""
		ti.Placeholder = placeholders[i]
		ti.CharLimit = 0
		m.fields[i] = ti
	}
	m.fields[fieldMethod].SetValue(string(types.MethodGet))
	m.fields[fieldEnvironment].SetValue(m.cfg.Environment)
	m.fields[fieldToken].SetValue(m.cfg.AccessToken)
	m.fields[fieldToken].EchoMode = textinput.EchoPassword
	m.fields[fieldTimeout].SetValue(formatSeconds(m.cfg.TimeoutSeconds))

	m.bodyInput = textarea.New()
	m.bodyInput.Placeholder = `{"name": "value"}`
	m.bodyInput.ShowLineNumbers = false
	m.bodyInput.SetHeight(6)

	m.focusField = fieldURL
	m.applyFocus()
}

// Init loads the catalog, environments and security status
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.loadCatalog(),
		m.loadEnvironments(),
		m.loadSecurity(),
	)
}

// Update handles messages and updates the model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		cmd = m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateViewport()

	case spinner.TickMsg:
		m.spinner, cmd = m.spinner.Update(msg)

	case catalogLoadedMsg:
		if msg.result.Err != nil {
			m.setError(msg.result.Err.Error())
			m.modal.Error("Catalog unavailable", msg.result.Err.Error()+"\n\nPress r to retry.")
			break
		}
		m.catalogReady = true
		m.clampSelection()
		m.setStatus(fmt.Sprintf("Loaded %d endpoints", msg.result.View.TotalItems))

	case environmentsLoadedMsg:
		if msg.err != nil {
			m.builder = request.NewBuilder(nil)
			m.setError("Environments unavailable, using built-in defaults")
			break
		}
		m.envConfig = msg.config
		m.builder = request.NewBuilder(msg.config.Environments)
		if secs := msg.config.TimeoutSeconds(); secs > 0 && m.fields[fieldTimeout].Value() == formatSeconds(m.cfg.TimeoutSeconds) {
			m.fields[fieldTimeout].SetValue(formatSeconds(secs))
		}

	case securityLoadedMsg:
		if msg.err != nil {
			break
		}
		m.security = msg.status
		if msg.status.ShowNotice() {
			m.modal.Warning("Access control enabled", securityNotice(msg.status))
		}

	case testCompletedMsg:
		m.inFlight--
		outcome := msg.outcome
		m.lastOutcome = &outcome
		m.updateResponseView()
		if outcome.Failed() {
			m.setError(outcome.ErrorDetail)
		} else {
			m.setStatus(fmt.Sprintf("%s %s -> %s in %s", outcome.Method, outcome.URL, outcome.Status, executor.FormatDuration(outcome.ResponseTime)))
		}

	case telemetryLoadedMsg:
		m.monitoring = false
		m.telemetry = msg.snapshot
		if n := len(msg.snapshot.Errors); n > 0 {
			m.setError(fmt.Sprintf("%d of 4 telemetry sections unavailable", n))
		} else {
			m.setStatus("Telemetry updated " + msg.snapshot.UpdatedAt.Format(time.TimeOnly))
		}

	case serverTestMsg:
		m.showServerTest(msg)

	case docsDownloadedMsg:
		if msg.err != nil {
			m.modal.Error("Download failed", msg.err.Error())
			break
		}
		m.modal.Success("Documentation saved", docsSummary(msg.doc, msg.path))

	case cacheClearedMsg:
		if msg.err != nil {
			m.modal.Error("Cache clear failed", msg.err.Error())
			break
		}
		m.modal.Success("Cache cleared", "The backend cache was emptied.")
		cmd = m.refreshTelemetry()

	case cacheTestedMsg:
		if msg.err != nil {
			m.modal.Error("Cache test failed", msg.err.Error())
			break
		}
		m.modal.Info("Cache test", fmt.Sprintf("Cache hit: %v\nStored: %v\nRetrieved: %v",
			msg.result.CacheHit, msg.result.TestValue, msg.result.RetrievedValue))

	case templateSavedMsg:
		if msg.err != nil {
			m.setError("Failed to save template: " + msg.err.Error())
			break
		}
		m.setStatus("Saved template " + msg.template.Name)

	case templatesListedMsg:
		cmd = m.handleTemplatesListed(msg)

	case templateDeletedMsg:
		if msg.err != nil {
			m.setError("Failed to delete template: " + msg.err.Error())
			break
		}
		m.setStatus("Deleted template " + msg.name)

	case promptResultMsg:
		cmd = m.handlePromptResult(msg)

	case confirmResultMsg:
		cmd = m.handleConfirmResult(msg)

	case clipboardMsg:
		if msg.err != nil {
			m.setError("Clipboard unavailable: " + msg.err.Error())
			break
		}
		m.setStatus("Copied " + msg.what + " to clipboard")

	case errorMsg:
		m.setError(string(msg))
	}

	return m, cmd
}

// View renders the TUI
func (m *Model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	if m.modal.State() == modal.Visible {
		return m.modal.Render(modal.RenderOptions{
			Width:     m.width,
			Height:    m.height,
			Spinner:   m.spinner.View(),
			InputView: m.modalInput.View(),
		})
	}

	return m.renderMain()
}

// Custom message types
type catalogLoadedMsg struct {
	result session.Result
}

type environmentsLoadedMsg struct {
	config types.EnvironmentConfig
	err    error
}

type securityLoadedMsg struct {
	status types.SecurityStatus
	err    error
}

type testCompletedMsg struct {
	outcome types.TestOutcome
}

type telemetryLoadedMsg struct {
	snapshot telemetry.Snapshot
}

type serverTestMsg struct {
	endpoint types.EndpointDescriptor
	result   types.ServerTestResult
	err      error
}

type docsDownloadedMsg struct {
	doc  types.Document
	path string
	err  error
}

type cacheClearedMsg struct {
	err error
}

type cacheTestedMsg struct {
	result types.CacheTestResult
	err    error
}

type templateSavedMsg struct {
	template types.RequestTemplate
	err      error
}

type templatesListedMsg struct {
	purpose   string
	templates []types.RequestTemplate
	err       error
}

type templateDeletedMsg struct {
	name string
	err  error
}

type promptResultMsg struct {
	purpose string
	result  modal.PromptResult
}

type confirmResultMsg struct {
	purpose string
	ok      bool
}

type clipboardMsg struct {
	what string
	err  error
}

type errorMsg string

// setStatus shows msg in the footer and clears any error
func (m *Model) setStatus(msg string) {
	m.statusMsg = truncate(msg, 100)
	m.errorMsg = ""
}

func (m *Model) setError(msg string) {
	m.errorMsg = truncate(msg, 100)
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n-3] + "..."
	}
	return s
}

func formatSeconds(s float64) string {
	if s == float64(int64(s)) {
		return fmt.Sprintf("%d", int64(s))
	}
	return fmt.Sprintf("%g", s)
}

func securityNotice(s types.SecurityStatus) string {
	msg := fmt.Sprintf("The backend restricts test endpoints (mode: %s).", s.Mode)
	if s.TokenRequired() {
		msg += "\n\nRequests need an access token. Fill the Token field on the Test tab."
	}
	return msg
}
