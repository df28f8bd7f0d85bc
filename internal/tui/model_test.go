package tui

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/studiowebux/apiconsole/internal/modal"
	"github.com/studiowebux/apiconsole/internal/telemetry"
	"github.com/studiowebux/apiconsole/internal/types"
)

func TestCatalogLoadAndPaging(t *testing.T) {
	fb := &fakeBackend{endpoints: sampleEndpoints(12)}
	m := CreateTestModel(t, fb, 5)

	AssertModelField(t, "catalogReady", m.catalogReady, true)
	view := m.session.View()
	AssertModelField(t, "TotalPages", view.TotalPages, 3)
	AssertModelField(t, "TotalItems", view.TotalItems, 12)

	tests := []struct {
		key  string
		page int
	}{
		{"n", 2},
		{"n", 3},
		{"n", 3},
		{"p", 2},
		{"h", 1},
		{"h", 1},
	}
	for _, tt := range tests {
		press(m, tt.key)
		if got := m.session.View().CurrentPage; got != tt.page {
			t.Errorf("after %q page = %d, want %d", tt.key, got, tt.page)
		}
	}
}

func TestCatalogLoadFailureShowsError(t *testing.T) {
	fb := &fakeBackend{catalogErr: errors.New("connection refused")}
	m := CreateTestModel(t, fb, 5)

	if m.catalogReady {
		t.Error("catalogReady should be false after a failed load")
	}
	req, ok := m.modal.Active()
	if !ok || req.Kind != modal.KindError {
		t.Fatalf("expected error modal, got %+v (visible=%v)", req, ok)
	}
}

func TestLiveSearch(t *testing.T) {
	fb := &fakeBackend{endpoints: sampleEndpoints(12)}
	m := CreateTestModel(t, fb, 5)

	press(m, "/")
	AssertModelField(t, "mode", m.mode, ModeSearch)

	for _, r := range "owner03" {
		press(m, string(r))
	}
	AssertModelField(t, "TotalItems while searching", m.session.View().TotalItems, 1)

	press(m, "esc")
	AssertModelField(t, "mode", m.mode, ModeNormal)
	AssertModelField(t, "TotalItems after esc", m.session.View().TotalItems, 12)
}

func TestSearchResetsPage(t *testing.T) {
	fb := &fakeBackend{endpoints: sampleEndpoints(12)}
	m := CreateTestModel(t, fb, 5)

	press(m, "n")
	press(m, "/")
	press(m, "o")
	AssertModelField(t, "CurrentPage", m.session.View().CurrentPage, 1)
}

func TestMethodFilterCycles(t *testing.T) {
	eps := sampleEndpoints(4)
	eps[0].Method = types.MethodPost
	fb := &fakeBackend{endpoints: eps}
	m := CreateTestModel(t, fb, 5)

	press(m, "m")
	AssertModelField(t, "GET only", m.session.View().TotalItems, 3)
	press(m, "m")
	AssertModelField(t, "POST only", m.session.View().TotalItems, 1)

	for i := 2; i < len(methodCycle); i++ {
		press(m, "m")
	}
	AssertModelField(t, "wrapped to all", m.session.View().TotalItems, 4)
}

func TestEnterPrefillsForm(t *testing.T) {
	fb := &fakeBackend{endpoints: []types.EndpointDescriptor{{
		Owner:         "UserController",
		OperationName: "getUser",
		Method:        types.MethodGet,
		Paths:         []string{"/users/{id}"},
		Parameters: map[string]types.Parameter{
			"id": {Name: "id", Type: "Long", Required: true, DefaultValue: "7"},
		},
	}}}
	m := CreateTestModel(t, fb, 5)

	press(m, "enter")
	AssertModelField(t, "tab", m.tab, TabTest)
	AssertModelField(t, "url", m.fields[fieldURL].Value(), "/users/7")
	AssertModelField(t, "method", m.fields[fieldMethod].Value(), "GET")
}

func TestSendRequestRecordsHistory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":1}`))
	}))
	defer srv.Close()

	m := CreateTestModel(t, &fakeBackend{}, 5)
	press(m, "f2")
	m.fields[fieldMethod].SetValue("POST")
	m.fields[fieldURL].SetValue(srv.URL + "/users")
	m.bodyInput.SetValue(`{"name":"a"}`)

	cmd := press(m, "ctrl+r")
	if cmd == nil {
		t.Fatal("expected a dispatch command")
	}
	AssertModelField(t, "inFlight", m.inFlight, 1)
	run(m, cmd)

	AssertModelField(t, "inFlight", m.inFlight, 0)
	AssertModelField(t, "history length", m.history.Len(), 1)
	if m.lastOutcome == nil {
		t.Fatal("lastOutcome not set")
	}
	AssertModelField(t, "status", m.lastOutcome.Status.String(), "201")
	if !strings.Contains(m.statusMsg, "201") {
		t.Errorf("statusMsg = %q, want it to mention 201", m.statusMsg)
	}
}

func TestSendRequestValidation(t *testing.T) {
	m := CreateTestModel(t, &fakeBackend{}, 5)
	press(m, "f2")
	m.fields[fieldURL].SetValue("")

	if cmd := press(m, "ctrl+r"); cmd != nil {
		t.Error("expected no command for an invalid request")
	}
	req, ok := m.modal.Active()
	if !ok || req.Kind != modal.KindError {
		t.Fatalf("expected error modal, got %+v", req)
	}
	AssertModelField(t, "history length", m.history.Len(), 0)
}

func TestCacheClearConfirm(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		cleared int
	}{
		{"confirmed", "enter", 1},
		{"cancelled", "esc", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fb := &fakeBackend{}
			m := CreateTestModel(t, fb, 5)
			run(m, press(m, "f3"))

			waitCmd := press(m, "c")
			if waitCmd == nil {
				t.Fatal("expected a confirm command")
			}
			press(m, tt.key)

			next := run(m, waitCmd)
			if tt.cleared > 0 {
				if next == nil {
					t.Fatal("expected a clear command after confirming")
				}
				run(m, next)
			}
			AssertModelField(t, "cleared", fb.cleared, tt.cleared)
		})
	}
}

func TestGotoPagePrompt(t *testing.T) {
	fb := &fakeBackend{endpoints: sampleEndpoints(12)}
	m := CreateTestModel(t, fb, 5)

	waitCmd := press(m, "g")
	if waitCmd == nil {
		t.Fatal("expected a prompt command")
	}
	press(m, "backspace")
	press(m, "3")
	press(m, "enter")
	run(m, waitCmd)

	AssertModelField(t, "CurrentPage", m.session.View().CurrentPage, 3)
	if m.modal.State() == modal.Visible {
		t.Error("prompt should be closed")
	}
}

func TestGotoPageCancelled(t *testing.T) {
	fb := &fakeBackend{endpoints: sampleEndpoints(12)}
	m := CreateTestModel(t, fb, 5)

	waitCmd := press(m, "g")
	press(m, "esc")
	run(m, waitCmd)
	AssertModelField(t, "CurrentPage", m.session.View().CurrentPage, 1)
}

func TestSecurityNotice(t *testing.T) {
	tests := []struct {
		name    string
		status  types.SecurityStatus
		visible bool
	}{
		{"token mode", types.SecurityStatus{Enabled: true, Mode: types.SecurityModeToken}, true},
		{"ip mode", types.SecurityStatus{Enabled: true, Mode: types.SecurityModeIP}, false},
		{"disabled", types.SecurityStatus{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := CreateTestModel(t, &fakeBackend{security: tt.status}, 5)
			run(m, m.loadSecurity())
			AssertModelField(t, "modal visible", m.modal.State() == modal.Visible, tt.visible)
		})
	}
}

func TestEnvironmentTimeoutApplied(t *testing.T) {
	fb := &fakeBackend{envs: types.EnvironmentConfig{
		Environments: map[string]types.Environment{"local": {BaseURL: "http://backend:9000"}},
		ReadTimeout:  45_000_000_000,
	}}
	m := CreateTestModel(t, fb, 5)
	run(m, m.loadEnvironments())

	AssertModelField(t, "timeout", m.fields[fieldTimeout].Value(), "45")
	m.fields[fieldURL].SetValue("/ping")
	spec, ok := m.buildSpec()
	if !ok {
		t.Fatal("buildSpec failed")
	}
	AssertModelField(t, "url", spec.URL, "http://backend:9000/ping")
}

func TestTelemetryPartialFailure(t *testing.T) {
	fb := &fakeBackend{perfErr: errors.New("boom")}
	m := CreateTestModel(t, fb, 5)

	cmd := press(m, "f3")
	if cmd == nil {
		t.Fatal("expected a telemetry refresh")
	}
	run(m, cmd)

	if _, ok := m.telemetry.Errors[telemetry.SectionPerformance]; !ok {
		t.Error("performance error not recorded")
	}
	AssertModelField(t, "errors", len(m.telemetry.Errors), 1)
	AssertModelField(t, "cache usage", m.telemetry.Cache.Usage, "5.0%")
	if !strings.Contains(m.errorMsg, "1 of 4") {
		t.Errorf("errorMsg = %q", m.errorMsg)
	}
}

func TestViewRendering(t *testing.T) {
	m := CreateTestModel(t, &fakeBackend{endpoints: sampleEndpoints(3)}, 5)

	out := m.View()
	if !strings.Contains(out, "API Console") {
		t.Error("View should contain the title")
	}
	if !strings.Contains(out, "Owner01") {
		t.Error("View should list owners")
	}

	m.width = 0
	AssertModelField(t, "uninitialized view", m.View(), "Initializing...")
}

func TestHistoryTable(t *testing.T) {
	m := CreateTestModel(t, &fakeBackend{}, 5)
	m.history.Append(types.TestOutcome{Method: types.MethodGet, URL: "http://a/1", Status: types.StatusCode(200)})
	m.history.Append(types.TestOutcome{Method: types.MethodGet, URL: "http://a/2", Status: types.StatusFailed})

	press(m, "H")
	req, ok := m.modal.Active()
	if !ok || req.Table == nil {
		t.Fatal("expected history table")
	}
	if len(req.Table.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(req.Table.Rows))
	}
	AssertModelField(t, "newest first", req.Table.Rows[0]["url"].(string), "http://a/2")
}

func TestTemplateSaveAndLoad(t *testing.T) {
	m := CreateTestModel(t, &fakeBackend{}, 5)
	press(m, "f2")
	m.fields[fieldMethod].SetValue("PUT")
	m.fields[fieldURL].SetValue("http://host/items/1")
	m.bodyInput.SetValue(`{"a":1}`)

	run(m, press(m, "ctrl+s"))
	if !strings.HasPrefix(m.statusMsg, "Saved template") {
		t.Fatalf("statusMsg = %q", m.statusMsg)
	}

	m.fields[fieldMethod].SetValue("GET")
	m.fields[fieldURL].SetValue("/other")
	m.bodyInput.SetValue("")

	waitCmd := run(m, press(m, "ctrl+o"))
	if waitCmd == nil {
		t.Fatal("expected template prompt")
	}
	press(m, "enter")
	run(m, waitCmd)

	AssertModelField(t, "method", m.fields[fieldMethod].Value(), "PUT")
	AssertModelField(t, "url", m.fields[fieldURL].Value(), "http://host/items/1")
	AssertModelField(t, "body", m.bodyInput.Value(), `{"a":1}`)
}

func TestTemplateSaveKeepsTokenOut(t *testing.T) {
	m := CreateTestModel(t, &fakeBackend{}, 5)
	m.cfg.Headers = map[string]string{"X-Default": "d"}
	press(m, "f2")
	m.fields[fieldMethod].SetValue("POST")
	m.fields[fieldURL].SetValue("/items/1")
	m.fields[fieldEnvironment].SetValue("dev")
	m.fields[fieldHeaders].SetValue(`{"X-Trace":"1"}`)
	m.fields[fieldToken].SetValue("s3cr3t")

	run(m, press(m, "ctrl+s"))
	if !strings.HasPrefix(m.statusMsg, "Saved template") {
		t.Fatalf("statusMsg = %q", m.statusMsg)
	}

	list, err := m.templates.List()
	if err != nil || len(list) != 1 {
		t.Fatalf("List() = %v, %v", list, err)
	}
	saved := list[0]
	AssertModelField(t, "saved url", saved.URL, "/items/1")
	AssertModelField(t, "saved environment", saved.Environment, "dev")
	if len(saved.Headers) != 1 || saved.Headers["X-Trace"] != "1" {
		t.Errorf("saved headers = %v, want only X-Trace", saved.Headers)
	}

	m.fields[fieldHeaders].SetValue("")
	waitCmd := run(m, press(m, "ctrl+o"))
	if waitCmd == nil {
		t.Fatal("expected template prompt")
	}
	press(m, "enter")
	run(m, waitCmd)

	headers := m.fields[fieldHeaders].Value()
	for _, leaked := range []string{"s3cr3t", "Authorization", "X-Default", "Content-Type"} {
		if strings.Contains(headers, leaked) {
			t.Errorf("headers field contains %q: %s", leaked, headers)
		}
	}
	AssertModelField(t, "url", m.fields[fieldURL].Value(), "/items/1")
}

func TestServerTest(t *testing.T) {
	eps := sampleEndpoints(1)
	eps[0].Parameters = map[string]types.Parameter{"limit": {Name: "limit", DefaultValue: "5"}}
	fb := &fakeBackend{endpoints: eps}
	m := CreateTestModel(t, fb, 5)

	run(m, press(m, "s"))
	if len(fb.serverTests) != 1 {
		t.Fatalf("server tests = %d, want 1", len(fb.serverTests))
	}
	AssertModelField(t, "endpoint", fb.serverTests[0].Endpoint, "/r00")
	AssertModelField(t, "limit", fb.serverTests[0].Parameters["limit"].(string), "5")

	req, ok := m.modal.Active()
	if !ok || req.Table == nil {
		t.Fatal("expected result table")
	}
}
