// Package request turns operator input into a dispatchable TestRequestSpec.
package request

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/jsonc"

	"github.com/studiowebux/apiconsole/internal/types"
)

// DefaultTimeoutSeconds applies when the input carries a zero timeout
const DefaultTimeoutSeconds = 30

// HeaderSource is one layer of headers. Values and Raw JSON text may both
// be set; Raw entries win. Malformed Raw text disables the whole source.
type HeaderSource struct {
	Name   string
	Values map[string]string
	Raw    string
}

// Input is everything the operator supplied for one test
type Input struct {
	Method         string
	URL            string
	Environment    string
	DefaultHeaders HeaderSource
	CustomHeaders  HeaderSource
	AccessToken    string
	Body           string
	TimeoutSeconds float64
}

// Builder resolves inputs against the backend's environment registry
type Builder struct {
	environments map[string]types.Environment
}

// NewBuilder creates a builder. A nil or empty registry selects
// DefaultEnvironments.
func NewBuilder(environments map[string]types.Environment) *Builder {
	return &Builder{environments: environments}
}

// Build applies header precedence, body handling and URL resolution.
// Only ValidationError is returned; parse problems are logged and skipped.
func (b *Builder) Build(in Input) (types.TestRequestSpec, error) {
	if strings.TrimSpace(in.URL) == "" {
		return types.TestRequestSpec{}, &types.ValidationError{Field: "url", Message: "Please enter a URL"}
	}

	method, ok := types.ParseMethod(in.Method)
	if !ok {
		return types.TestRequestSpec{}, &types.ValidationError{Field: "method", Message: fmt.Sprintf("unsupported method %q", in.Method)}
	}

	timeout, err := checkTimeout(in.TimeoutSeconds)
	if err != nil {
		return types.TestRequestSpec{}, err
	}

	return types.TestRequestSpec{
		Method:         method,
		URL:            ResolveURL(in.URL, in.Environment, b.environments),
		Headers:        MergeHeaders(in.DefaultHeaders, in.CustomHeaders, in.AccessToken),
		Body:           PrepareBody(method, in.Body),
		Environment:    in.Environment,
		AccessToken:    in.AccessToken,
		TimeoutSeconds: timeout,
	}, nil
}

// checkTimeout maps zero to DefaultTimeoutSeconds and rejects values that
// cannot be expressed as a positive time.Duration.
func checkTimeout(seconds float64) (float64, error) {
	if seconds == 0 {
		return DefaultTimeoutSeconds, nil
	}
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		return 0, &types.ValidationError{Field: "timeout", Message: fmt.Sprintf("invalid timeout %v", seconds)}
	}
	if seconds*float64(time.Second) >= math.MaxInt64 {
		return 0, &types.ValidationError{Field: "timeout", Message: fmt.Sprintf("timeout %v is too large", seconds)}
	}
	return seconds, nil
}

// MergeHeaders layers defaults, then custom headers, then the bearer token,
// and finally a JSON Content-Type if none was set. Keys are canonicalized so
// later layers replace earlier ones regardless of case.
func MergeHeaders(defaults, custom HeaderSource, token string) map[string]string {
	headers := make(map[string]string)

	for _, src := range []HeaderSource{defaults, custom} {
		values, err := src.resolve()
		if err != nil {
			slog.Warn("skipping header source", slog.String("error", err.Error()))
			continue
		}
		for k, v := range values {
			headers[http.CanonicalHeaderKey(k)] = v
		}
	}

	if token = strings.TrimSpace(token); token != "" {
		headers["Authorization"] = "Bearer " + token
	}

	if _, ok := headers["Content-Type"]; !ok {
		headers["Content-Type"] = "application/json"
	}

	return headers
}

func (s HeaderSource) resolve() (map[string]string, error) {
	out := make(map[string]string, len(s.Values))
	for k, v := range s.Values {
		out[k] = v
	}

	if strings.TrimSpace(s.Raw) == "" {
		return out, nil
	}

	var parsed map[string]any
	if err := json.Unmarshal(jsonc.ToJSON([]byte(s.Raw)), &parsed); err != nil {
		return nil, &types.ParseError{Source: s.label(), Err: err}
	}
	for k, v := range parsed {
		switch val := v.(type) {
		case string:
			out[k] = val
		case nil:
			out[k] = ""
		default:
			encoded, _ := json.Marshal(val)
			out[k] = string(encoded)
		}
	}
	return out, nil
}

func (s HeaderSource) label() string {
	if s.Name == "" {
		return "headers"
	}
	return s.Name
}

// PrepareBody returns the body to send. Only POST, PUT and PATCH carry one.
// Valid JSON (comments and trailing commas tolerated) is sent compacted;
// anything else is sent verbatim.
func PrepareBody(method types.HTTPMethod, body string) string {
	if !method.HasBody() || strings.TrimSpace(body) == "" {
		return ""
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, jsonc.ToJSON([]byte(body))); err != nil {
		slog.Debug("body is not JSON, sending raw text",
			slog.String("error", (&types.ParseError{Source: "body", Err: err}).Error()),
		)
		return body
	}
	return buf.String()
}
