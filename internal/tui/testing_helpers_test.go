package tui

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/studiowebux/apiconsole/internal/backend"
	"github.com/studiowebux/apiconsole/internal/config"
	"github.com/studiowebux/apiconsole/internal/templates"
	"github.com/studiowebux/apiconsole/internal/types"
)

// fakeBackend serves canned responses and counts mutating calls
type fakeBackend struct {
	mu sync.Mutex

	endpoints  []types.EndpointDescriptor
	catalogErr error
	envs       types.EnvironmentConfig
	security   types.SecurityStatus
	perfErr    error

	cleared     int
	serverTests []backend.ServerTestRequest
}

func (f *fakeBackend) Catalog(context.Context) ([]types.EndpointDescriptor, error) {
	return f.endpoints, f.catalogErr
}

func (f *fakeBackend) Environments(context.Context) (types.EnvironmentConfig, error) {
	return f.envs, nil
}

func (f *fakeBackend) SecurityStatus(context.Context) (types.SecurityStatus, error) {
	return f.security, nil
}

func (f *fakeBackend) Performance(context.Context) (types.PerformanceSnapshot, error) {
	if f.perfErr != nil {
		return types.PerformanceSnapshot{}, f.perfErr
	}
	return types.PerformanceSnapshot{TotalRequests: 10, SuccessfulRequests: 9, ErrorRequests: 1}, nil
}

func (f *fakeBackend) CacheStats(context.Context) (types.CacheSnapshot, error) {
	return types.CacheSnapshot{CurrentSize: 5, MaxSize: 100, TTLSeconds: 60, UsagePercentage: 5}, nil
}

func (f *fakeBackend) Health(context.Context) (types.HealthSnapshot, error) {
	return types.HealthSnapshot{HealthScore: 91, Status: types.HealthHealthy}, nil
}

func (f *fakeBackend) AlertStats(context.Context) (types.AlertSnapshot, error) {
	return types.AlertSnapshot{TotalAlerts: 2, WarningAlerts: 2}, nil
}

func (f *fakeBackend) RunServerTest(_ context.Context, req backend.ServerTestRequest) (types.ServerTestResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.serverTests = append(f.serverTests, req)
	return types.ServerTestResult{Success: true, StatusCode: 200, Duration: 4, ResponseBody: `{"ok":true}`}, nil
}

func (f *fakeBackend) DownloadDocs(_ context.Context, format string) (types.Document, error) {
	if format != "markdown" {
		return types.Document{}, errors.New("unsupported")
	}
	return types.Document{Format: format, Filename: "api-docs.md", Content: []byte("# API")}, nil
}

func (f *fakeBackend) ClearCache(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cleared++
	return nil
}

func (f *fakeBackend) TestCache(context.Context) (types.CacheTestResult, error) {
	return types.CacheTestResult{CacheHit: true, TestValue: "x", RetrievedValue: "x"}, nil
}

// sampleEndpoints builds n owners with one GET endpoint each
func sampleEndpoints(n int) []types.EndpointDescriptor {
	out := make([]types.EndpointDescriptor, n)
	for i := range out {
		out[i] = types.EndpointDescriptor{
			Owner:         fmt.Sprintf("Owner%02d", i),
			OperationName: fmt.Sprintf("op%02d", i),
			Method:        types.MethodGet,
			Paths:         []string{fmt.Sprintf("/r%02d", i)},
		}
	}
	return out
}

// CreateTestModel creates a loaded Model backed by fb
func CreateTestModel(t *testing.T, fb *fakeBackend, pageSize int) *Model {
	t.Helper()

	cfg := config.Default()
	cfg.PageSize = pageSize

	store, err := templates.NewStore(":memory:")
	if err != nil {
		t.Fatalf("Failed to create template store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	m, err := New(Options{Config: cfg, Backend: fb, Templates: store, DocsDir: t.TempDir()})
	if err != nil {
		t.Fatalf("Failed to create test model: %v", err)
	}
	m.Update(tea.WindowSizeMsg{Width: 140, Height: 40})
	m.Update(m.loadCatalog()())
	return m
}

// press sends a key to the model and returns the resulting command
func press(m *Model, key string) tea.Cmd {
	var msg tea.KeyMsg
	switch key {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		msg = tea.KeyMsg{Type: tea.KeyTab}
	case "backspace":
		msg = tea.KeyMsg{Type: tea.KeyBackspace}
	case "ctrl+r":
		msg = tea.KeyMsg{Type: tea.KeyCtrlR}
	case "ctrl+s":
		msg = tea.KeyMsg{Type: tea.KeyCtrlS}
	case "ctrl+o":
		msg = tea.KeyMsg{Type: tea.KeyCtrlO}
	case "ctrl+e":
		msg = tea.KeyMsg{Type: tea.KeyCtrlE}
	case "f2":
		msg = tea.KeyMsg{Type: tea.KeyF2}
	case "f3":
		msg = tea.KeyMsg{Type: tea.KeyF3}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	_, cmd := m.Update(msg)
	return cmd
}

// run executes cmd and feeds its message back into the model
func run(m *Model, cmd tea.Cmd) tea.Cmd {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if msg == nil {
		return nil
	}
	_, next := m.Update(msg)
	return next
}

// AssertModelField is a generic helper for checking model field values
func AssertModelField[T comparable](t *testing.T, fieldName string, got, want T) {
	t.Helper()
	if got != want {
		t.Errorf("%s = %v, want %v", fieldName, got, want)
	}
}
