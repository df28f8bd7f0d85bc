package request

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/studiowebux/apiconsole/internal/types"
)

func TestMergeHeadersPrecedence(t *testing.T) {
	headers := MergeHeaders(
		HeaderSource{Values: map[string]string{"A": "1"}},
		HeaderSource{Values: map[string]string{"A": "2", "B": "3"}},
		"secret",
	)

	if headers["A"] != "2" {
		t.Errorf("A = %q, want 2", headers["A"])
	}
	if headers["B"] != "3" {
		t.Errorf("B = %q, want 3", headers["B"])
	}
	if headers["Authorization"] != "Bearer secret" {
		t.Errorf("Authorization = %q", headers["Authorization"])
	}
	if headers["Content-Type"] != "application/json" {
		t.Errorf("Content-Type = %q", headers["Content-Type"])
	}
}

func TestMergeHeadersTokenOverridesCustomAuthorization(t *testing.T) {
	headers := MergeHeaders(
		HeaderSource{},
		HeaderSource{Values: map[string]string{"authorization": "Basic abc"}},
		"tok",
	)
	if headers["Authorization"] != "Bearer tok" {
		t.Errorf("Authorization = %q, want Bearer tok", headers["Authorization"])
	}
	if len(headers) != 2 {
		t.Errorf("expected Authorization and Content-Type only, got %v", headers)
	}

	noToken := MergeHeaders(HeaderSource{}, HeaderSource{Values: map[string]string{"Authorization": "Basic abc"}}, "  ")
	if noToken["Authorization"] != "Basic abc" {
		t.Errorf("without token custom Authorization should stay, got %q", noToken["Authorization"])
	}
}

func TestMergeHeadersContentTypeNotOverridden(t *testing.T) {
	headers := MergeHeaders(HeaderSource{}, HeaderSource{Raw: `{"content-type": "text/plain"}`}, "")
	if headers["Content-Type"] != "text/plain" {
		t.Errorf("Content-Type = %q, want text/plain", headers["Content-Type"])
	}
}

func TestMergeHeadersSkipsMalformedSource(t *testing.T) {
	headers := MergeHeaders(
		HeaderSource{Name: "default headers", Raw: `{"X-Default": "yes"}`},
		HeaderSource{Name: "custom headers", Values: map[string]string{"X-Lost": "1"}, Raw: `{not json`},
		"",
	)
	if headers["X-Default"] != "yes" {
		t.Errorf("X-Default = %q", headers["X-Default"])
	}
	if _, ok := headers["X-Lost"]; ok {
		t.Error("malformed source should be skipped entirely")
	}
}

func TestHeaderSourceLenientJSON(t *testing.T) {
	values, err := HeaderSource{Raw: `{
		// request id
		"X-Request-Id": "abc",
		"X-Retries": 3,
	}`}.resolve()
	if err != nil {
		t.Fatalf("resolve() error = %v", err)
	}
	if values["X-Request-Id"] != "abc" || values["X-Retries"] != "3" {
		t.Errorf("values = %v", values)
	}

	_, err = HeaderSource{Name: "custom headers", Raw: "[1,2"}.resolve()
	var perr *types.ParseError
	if !errors.As(err, &perr) || perr.Source != "custom headers" {
		t.Errorf("expected ParseError from custom headers, got %v", err)
	}
}

func TestPrepareBody(t *testing.T) {
	tests := []struct {
		name   string
		method types.HTTPMethod
		body   string
		want   string
	}{
		{"raw text fallback", types.MethodPost, "not-json", "not-json"},
		{"json compacted", types.MethodPut, "{\n  \"a\": 1\n}", `{"a":1}`},
		{"trailing comma tolerated", types.MethodPatch, `{"a": [1, 2,],}`, `{"a":[1,2]}`},
		{"get drops body", types.MethodGet, `{"a":1}`, ""},
		{"blank body", types.MethodPost, "   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PrepareBody(tt.method, tt.body); got != tt.want {
				t.Errorf("PrepareBody() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuild(t *testing.T) {
	b := NewBuilder(nil)

	spec, err := b.Build(Input{
		Method:        "post",
		URL:           "/api/users",
		Environment:   "dev",
		CustomHeaders: HeaderSource{Raw: `{"X-Trace":"1"}`},
		AccessToken:   "tok",
		Body:          "not-json",
	})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if spec.Method != types.MethodPost {
		t.Errorf("Method = %q", spec.Method)
	}
	if spec.URL != "https://dev-api.example.com/api/users" {
		t.Errorf("URL = %q", spec.URL)
	}
	if spec.Body != "not-json" {
		t.Errorf("Body = %q", spec.Body)
	}
	if spec.TimeoutSeconds != DefaultTimeoutSeconds {
		t.Errorf("TimeoutSeconds = %v", spec.TimeoutSeconds)
	}
	if spec.Headers["X-Trace"] != "1" || spec.Headers["Authorization"] != "Bearer tok" {
		t.Errorf("Headers = %v", spec.Headers)
	}
}

func TestBuildValidation(t *testing.T) {
	b := NewBuilder(nil)

	_, err := b.Build(Input{Method: "GET", URL: "  "})
	var verr *types.ValidationError
	if !errors.As(err, &verr) || verr.Field != "url" {
		t.Errorf("expected url ValidationError, got %v", err)
	}

	_, err = b.Build(Input{Method: "BREW", URL: "/coffee"})
	if !errors.As(err, &verr) || verr.Field != "method" {
		t.Errorf("expected method ValidationError, got %v", err)
	}
}

func TestBuildTimeout(t *testing.T) {
	b := NewBuilder(nil)

	tests := []struct {
		name    string
		seconds float64
		want    float64
		wantErr bool
	}{
		{name: "zero uses default", seconds: 0, want: DefaultTimeoutSeconds},
		{name: "fractional", seconds: 0.5, want: 0.5},
		{name: "large but representable", seconds: 86400, want: 86400},
		{name: "negative", seconds: -1, wantErr: true},
		{name: "nan", seconds: math.NaN(), wantErr: true},
		{name: "positive infinity", seconds: math.Inf(1), wantErr: true},
		{name: "negative infinity", seconds: math.Inf(-1), wantErr: true},
		{name: "overflows duration", seconds: 1e300, wantErr: true},
		{name: "at duration limit", seconds: math.MaxInt64 / float64(time.Second), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, err := b.Build(Input{Method: "GET", URL: "/ping", TimeoutSeconds: tt.seconds})
			if tt.wantErr {
				var verr *types.ValidationError
				if !errors.As(err, &verr) || verr.Field != "timeout" {
					t.Fatalf("expected timeout ValidationError, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Build() error = %v", err)
			}
			if spec.TimeoutSeconds != tt.want {
				t.Errorf("TimeoutSeconds = %v, want %v", spec.TimeoutSeconds, tt.want)
			}
			if spec.Timeout() <= 0 {
				t.Errorf("Timeout() = %v, want positive", spec.Timeout())
			}
		})
	}
}

func TestResolveURL(t *testing.T) {
	registry := map[string]types.Environment{
		"local":   {BaseURL: "http://127.0.0.1:9000/"},
		"staging": {BaseURL: "https://staging.internal"},
	}

	tests := []struct {
		name     string
		raw      string
		env      string
		registry map[string]types.Environment
		want     string
	}{
		{"absolute verbatim", "https://other.host/x", "staging", registry, "https://other.host/x"},
		{"uppercase scheme verbatim", "HTTP://other.host", "local", registry, "HTTP://other.host"},
		{"known environment", "/users", "staging", registry, "https://staging.internal/users"},
		{"unknown falls back to local", "users", "qa", registry, "http://127.0.0.1:9000/users"},
		{"no registry uses defaults", "/users", "prod", nil, "https://api.example.com/users"},
		{"no registry unknown env", "/users", "qa", nil, "http://localhost:8080/users"},
		{"registry without local", "/users", "qa", map[string]types.Environment{"x": {BaseURL: "http://x"}}, "http://localhost:8080/users"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveURL(tt.raw, tt.env, tt.registry); got != tt.want {
				t.Errorf("ResolveURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFromEndpoint(t *testing.T) {
	e := types.EndpointDescriptor{
		Owner:         "UserController",
		OperationName: "updateUser",
		Method:        types.MethodPut,
		Paths:         []string{"/users/{id}", "/people/{id}"},
		Parameters: map[string]types.Parameter{
			"id":   {Name: "id", Type: "Long", Required: true, DefaultValue: "42"},
			"body": {Name: "body", Type: "UserDto"},
		},
		Body: &types.BodyDescriptor{Type: "UserDto", Fields: []string{"name"}},
	}

	in := FromEndpoint(e)
	if in.URL != "/users/42" {
		t.Errorf("URL = %q", in.URL)
	}
	if in.Method != "PUT" {
		t.Errorf("Method = %q", in.Method)
	}
	if !strings.Contains(in.Body, `"name": ""`) {
		t.Errorf("Body = %q", in.Body)
	}
}

func TestCurl(t *testing.T) {
	out := Curl(types.TestRequestSpec{
		Method:  types.MethodPost,
		URL:     "http://localhost:8080/users",
		Headers: map[string]string{"Content-Type": "application/json", "Authorization": "Bearer t"},
		Body:    `{"name":"O'Brien"}`,
	})

	want := "curl -X POST 'http://localhost:8080/users' \\\n" +
		"  -H 'Authorization: Bearer t' \\\n" +
		"  -H 'Content-Type: application/json' \\\n" +
		`  -d '{"name":"O'\''Brien"}'`
	if out != want {
		t.Errorf("Curl() =\n%s\nwant\n%s", out, want)
	}
}
