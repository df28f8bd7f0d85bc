package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/studiowebux/apiconsole/internal/types"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(WithBaseURL(srv.URL), WithPrefix("/test/api"))
}

func TestCatalogDecodesEntries(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/test/api/catalog" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Write([]byte(`[
			{"className":"UserController","methodName":"getUser","methodType":"get",
			 "paths":["/users/{id}"],
			 "parameters":{"id":"Long","id_required":true,"id_defaultValue":7}},
			{"className":"UserController","methodName":"createUser","methodType":"POST",
			 "paths":["/users"],
			 "parameters":{"body":"UserDto","bodyFields":["name","email"]}}
		]`))
	})

	got, err := c.Catalog(context.Background())
	if err != nil {
		t.Fatalf("Catalog() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}

	get := got[0]
	if get.Method != types.MethodGet || get.Owner != "UserController" || get.OperationName != "getUser" {
		t.Errorf("first = %+v", get)
	}
	id := get.Parameters["id"]
	if id.Type != "Long" || !id.Required || id.DefaultValue != "7" {
		t.Errorf("id param = %+v", id)
	}
	if len(get.Parameters) != 1 {
		t.Errorf("params = %v, want only id", get.Parameters)
	}

	post := got[1]
	if post.Body == nil || post.Body.Type != "UserDto" || len(post.Body.Fields) != 2 {
		t.Errorf("body = %+v", post.Body)
	}
	if len(post.Parameters) != 0 {
		t.Errorf("params = %v, want none", post.Parameters)
	}
}

func TestCatalogErrorStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error":"warming up"}`))
	})

	_, err := c.Catalog(context.Background())
	var fetchErr *types.FetchError
	if !errors.As(err, &fetchErr) || fetchErr.Resource != "catalog" {
		t.Fatalf("error = %v, want FetchError for catalog", err)
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want wrapped APIError", err)
	}
	if apiErr.StatusCode != 503 || apiErr.Message != "warming up" {
		t.Errorf("APIError = %+v", apiErr)
	}
}

func TestCatalogTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := New(WithBaseURL(url)).Catalog(context.Background())
	var fetchErr *types.FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("error = %v, want FetchError", err)
	}
}

func TestSearchQuery(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("query") != "user" || q.Get("method") != "GET" || q.Has("controller") {
			t.Errorf("query = %v", q)
		}
		w.Write([]byte(`[]`))
	})
	got, err := c.Search(context.Background(), SearchOptions{Query: "user", Method: "GET"})
	if err != nil || len(got) != 0 {
		t.Errorf("Search() = %v, %v", got, err)
	}
}

func TestEnvironments(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"environments":{"dev":{"baseUrl":"https://dev.example.com","description":"Dev"}},
			"defaultHeaders":{"Accept":"application/json"},
			"timeout":{"connect":5000,"read":15000}
		}`))
	})
	got, err := c.Environments(context.Background())
	if err != nil {
		t.Fatalf("Environments() error = %v", err)
	}
	if got.Environments["dev"].BaseURL != "https://dev.example.com" {
		t.Errorf("environments = %v", got.Environments)
	}
	if got.ReadTimeout != 15*time.Second || got.TimeoutSeconds() != 15 {
		t.Errorf("ReadTimeout = %v", got.ReadTimeout)
	}
	if got.DefaultHeaders["Accept"] != "application/json" {
		t.Errorf("defaultHeaders = %v", got.DefaultHeaders)
	}
}

func TestTelemetryWrappers(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/test/api/performance":
			w.Write([]byte(`{"performance":{"totalRequests":12,"endpointMetrics":{"/a":{"requestCount":3}}}}`))
		case "/test/api/cache/stats":
			w.Write([]byte(`{"cache":{"currentSize":4,"maxSize":100}}`))
		case "/test/api/health":
			w.Write([]byte(`{"healthScore":72.5,"status":"WARNING","alerts":{"criticalAlerts":1,"warningAlerts":2}}`))
		case "/test/api/alerts/stats":
			w.Write([]byte(`{"alerts":{"totalAlerts":3,"alertStatuses":{"OPEN":2}}}`))
		default:
			http.NotFound(w, r)
		}
	})
	ctx := context.Background()

	perf, err := c.Performance(ctx)
	if err != nil || perf.TotalRequests != 12 || perf.EndpointMetrics["/a"].RequestCount != 3 {
		t.Errorf("Performance() = %+v, %v", perf, err)
	}
	cache, err := c.CacheStats(ctx)
	if err != nil || cache.MaxSize != 100 {
		t.Errorf("CacheStats() = %+v, %v", cache, err)
	}
	health, err := c.Health(ctx)
	if err != nil || health.Status != "WARNING" || health.CriticalAlerts != 1 || health.WarningAlerts != 2 {
		t.Errorf("Health() = %+v, %v", health, err)
	}
	alerts, err := c.AlertStats(ctx)
	if err != nil || alerts.TotalAlerts != 3 || alerts.AlertStatuses["OPEN"] != 2 {
		t.Errorf("AlertStats() = %+v, %v", alerts, err)
	}
}

func TestRunServerTest(t *testing.T) {
	tests := []struct {
		name    string
		reply   string
		wantErr bool
	}{
		{"success", `{"success":true,"testResult":{"success":true,"statusCode":200,"duration":12}}`, false},
		{"failure", `{"success":false,"error":"no such endpoint"}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				var req ServerTestRequest
				data, _ := io.ReadAll(r.Body)
				if err := json.Unmarshal(data, &req); err != nil || req.Endpoint != "/users" || req.Parameters == nil {
					t.Errorf("request body = %s", data)
				}
				w.Write([]byte(tt.reply))
			})
			res, err := c.RunServerTest(context.Background(), ServerTestRequest{Endpoint: "/users", Method: "GET"})
			if (err != nil) != tt.wantErr {
				t.Fatalf("RunServerTest() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && res.StatusCode != 200 {
				t.Errorf("result = %+v", res)
			}
		})
	}
}

func TestDownloadDocs(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/test/api/docs/download/markdown":
			w.Header().Set("Content-Disposition", `attachment; filename="catalog.md"`)
			w.Write([]byte("# API"))
		case "/test/api/docs/download/json":
			w.Write([]byte(`{"openapi":"3.0.0","info":{"title":"Demo","version":"1.2"},
				"paths":{"/users":{"get":{"responses":{"200":{"description":"ok"}}},
				"post":{"responses":{"201":{"description":"created"}}}}}}`))
		default:
			http.NotFound(w, r)
		}
	})
	ctx := context.Background()

	md, err := c.DownloadDocs(ctx, FormatMarkdown)
	if err != nil {
		t.Fatalf("DownloadDocs(markdown) error = %v", err)
	}
	if md.Filename != "catalog.md" || string(md.Content) != "# API" {
		t.Errorf("markdown doc = %+v", md)
	}

	js, err := c.DownloadDocs(ctx, FormatJSON)
	if err != nil {
		t.Fatalf("DownloadDocs(json) error = %v", err)
	}
	if js.Filename != "api-docs.json" {
		t.Errorf("Filename = %q, want fallback", js.Filename)
	}
	if js.Title != "Demo" || js.Version != "1.2" || js.Operations != 2 {
		t.Errorf("openapi summary = %q %q %d", js.Title, js.Version, js.Operations)
	}

	_, err = c.DownloadDocs(ctx, "pdf")
	var valErr *types.ValidationError
	if !errors.As(err, &valErr) {
		t.Errorf("DownloadDocs(pdf) error = %v, want ValidationError", err)
	}
}

func TestFilenameFrom(t *testing.T) {
	tests := []struct {
		disposition string
		want        string
	}{
		{"", "fallback"},
		{`attachment; filename="docs.html"`, "docs.html"},
		{`attachment; filename="../../etc/passwd"`, "passwd"},
		{"garbage;;", "fallback"},
		{"attachment", "fallback"},
	}
	for _, tt := range tests {
		if got := filenameFrom(tt.disposition, "fallback"); got != tt.want {
			t.Errorf("filenameFrom(%q) = %q, want %q", tt.disposition, got, tt.want)
		}
	}
}

func TestSaveDocument(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	path, err := SaveDocument(types.Document{Filename: "api-docs.md", Content: []byte("x")}, dir)
	if err != nil {
		t.Fatalf("SaveDocument() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "x" {
		t.Errorf("saved = %q, %v", data, err)
	}
}

func TestClearCache(t *testing.T) {
	called := false
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/test/api/cache/clear" {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		called = true
		w.Write([]byte(`{"message":"cleared"}`))
	})
	if err := c.ClearCache(context.Background()); err != nil || !called {
		t.Errorf("ClearCache() = %v, called=%v", err, called)
	}
}
