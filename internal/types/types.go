package types

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// HTTPMethod is one of the request methods the backend can advertise
type HTTPMethod string

const (
	MethodGet     HTTPMethod = "GET"
	MethodPost    HTTPMethod = "POST"
	MethodPut     HTTPMethod = "PUT"
	MethodPatch   HTTPMethod = "PATCH"
	MethodDelete  HTTPMethod = "DELETE"
	MethodHead    HTTPMethod = "HEAD"
	MethodOptions HTTPMethod = "OPTIONS"
	MethodTrace   HTTPMethod = "TRACE"
)

// Methods lists every accepted method in display order
var Methods = []HTTPMethod{
	MethodGet, MethodPost, MethodPut, MethodPatch, MethodDelete,
	MethodHead, MethodOptions, MethodTrace,
}

// ParseMethod normalizes s and reports whether it is a known method
func ParseMethod(s string) (HTTPMethod, bool) {
	m := HTTPMethod(strings.ToUpper(strings.TrimSpace(s)))
	return m, m.Valid()
}

// Valid reports whether m is in the enumerated set
func (m HTTPMethod) Valid() bool {
	for _, known := range Methods {
		if m == known {
			return true
		}
	}
	return false
}

// HasBody reports whether requests with this method carry a JSON body
func (m HTTPMethod) HasBody() bool {
	return m == MethodPost || m == MethodPut || m == MethodPatch
}

func (m HTTPMethod) String() string { return string(m) }

// Parameter describes a single declared endpoint parameter
type Parameter struct {
	Name         string `json:"name" yaml:"name"`
	Type         string `json:"type" yaml:"type"`
	Required     bool   `json:"required" yaml:"required"`
	DefaultValue string `json:"defaultValue,omitempty" yaml:"defaultValue,omitempty"`
}

// BodyDescriptor describes the request body schema of an endpoint
type BodyDescriptor struct {
	Type   string   `json:"type" yaml:"type"`
	Fields []string `json:"fields,omitempty" yaml:"fields,omitempty"`
}

// EndpointDescriptor is one catalogued backend operation.
// Descriptors are never mutated once loaded; a refresh replaces the set.
type EndpointDescriptor struct {
	Owner         string               `json:"owner" yaml:"owner"`
	OperationName string               `json:"operationName" yaml:"operationName"`
	Method        HTTPMethod           `json:"method" yaml:"method"`
	Paths         []string             `json:"paths" yaml:"paths"`
	Parameters    map[string]Parameter `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	Body          *BodyDescriptor      `json:"body,omitempty" yaml:"body,omitempty"`
	Description   string               `json:"description,omitempty" yaml:"description,omitempty"`
	Summary       string               `json:"summary,omitempty" yaml:"summary,omitempty"`
	Tags          []string             `json:"tags,omitempty" yaml:"tags,omitempty"`
	Deprecated    bool                 `json:"deprecated,omitempty" yaml:"deprecated,omitempty"`
}

// Validate checks the descriptor invariants
func (e EndpointDescriptor) Validate() error {
	if !e.Method.Valid() {
		return fmt.Errorf("invalid method %q for %s.%s", e.Method, e.Owner, e.OperationName)
	}
	if len(e.Paths) == 0 {
		return fmt.Errorf("no paths for %s.%s", e.Owner, e.OperationName)
	}
	return nil
}

// PrimaryPath returns the first declared path
func (e EndpointDescriptor) PrimaryPath() string {
	if len(e.Paths) == 0 {
		return ""
	}
	return e.Paths[0]
}

// TestRequestSpec is the fully resolved request handed to the dispatcher
type TestRequestSpec struct {
	Method         HTTPMethod        `json:"method" yaml:"method"`
	URL            string            `json:"url" yaml:"url"`
	Headers        map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Body           string            `json:"body,omitempty" yaml:"body,omitempty"`
	Environment    string            `json:"environment,omitempty" yaml:"environment,omitempty"`
	AccessToken    string            `json:"-" yaml:"-"`
	TimeoutSeconds float64           `json:"timeoutSeconds" yaml:"timeoutSeconds"`
}

// Timeout converts TimeoutSeconds into a duration
func (s TestRequestSpec) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds * float64(time.Second))
}

// Status is either a received HTTP status code or the FAILED marker
type Status struct {
	Code   int
	Failed bool
}

// StatusFailed marks an outcome where no response was received
var StatusFailed = Status{Failed: true}

// StatusCode wraps a received HTTP status code
func StatusCode(code int) Status {
	return Status{Code: code}
}

func (s Status) String() string {
	if s.Failed {
		return "FAILED"
	}
	return strconv.Itoa(s.Code)
}

// MarshalJSON encodes FAILED as a string and codes as numbers
func (s Status) MarshalJSON() ([]byte, error) {
	if s.Failed {
		return []byte(`"FAILED"`), nil
	}
	return []byte(strconv.Itoa(s.Code)), nil
}

func (s *Status) UnmarshalJSON(data []byte) error {
	var code int
	if err := json.Unmarshal(data, &code); err == nil {
		*s = StatusCode(code)
		return nil
	}
	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		return fmt.Errorf("invalid status: %s", data)
	}
	if text != "FAILED" {
		return fmt.Errorf("invalid status: %q", text)
	}
	*s = StatusFailed
	return nil
}

// MarshalYAML mirrors MarshalJSON
func (s Status) MarshalYAML() (interface{}, error) {
	if s.Failed {
		return "FAILED", nil
	}
	return s.Code, nil
}

// ErrorKind classifies a failed dispatch
type ErrorKind string

const (
	ErrorKindNone    ErrorKind = ""
	ErrorKindTimeout ErrorKind = "timeout"
	ErrorKindNetwork ErrorKind = "network"
)

// TestOutcome is the classified result of one dispatch
type TestOutcome struct {
	Method       HTTPMethod        `json:"method" yaml:"method"`
	URL          string            `json:"url" yaml:"url"`
	Status       Status            `json:"status" yaml:"status"`
	ResponseTime int64             `json:"responseTime" yaml:"responseTime"` // milliseconds
	Timestamp    time.Time         `json:"timestamp" yaml:"timestamp"`
	ErrorKind    ErrorKind         `json:"errorKind,omitempty" yaml:"errorKind,omitempty"`
	ErrorDetail  string            `json:"errorDetail,omitempty" yaml:"errorDetail,omitempty"`
	Headers      map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Body         string            `json:"body,omitempty" yaml:"body,omitempty"`
	ResponseSize int               `json:"responseSize" yaml:"responseSize"`
}

// Failed reports whether no response was received
func (o TestOutcome) Failed() bool {
	return o.Status.Failed
}

// Environment is a named target the harness can send requests to
type Environment struct {
	BaseURL     string `json:"baseUrl" yaml:"baseUrl"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// EnvironmentConfig is the backend-provided request configuration
type EnvironmentConfig struct {
	Environments   map[string]Environment `json:"environments" yaml:"environments"`
	DefaultHeaders map[string]string      `json:"defaultHeaders,omitempty" yaml:"defaultHeaders,omitempty"`
	ReadTimeout    time.Duration          `json:"readTimeout,omitempty" yaml:"readTimeout,omitempty"`
}

// TimeoutSeconds is ReadTimeout rounded to whole seconds, or 0 when unset
func (c EnvironmentConfig) TimeoutSeconds() float64 {
	return math.Round(c.ReadTimeout.Seconds())
}

// Security modes reported by the backend
const (
	SecurityModeIP    = "ip"
	SecurityModeToken = "token"
	SecurityModeBoth  = "both"
)

// SecurityStatus reports how the backend protects its endpoints
type SecurityStatus struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Mode    string `json:"mode" yaml:"mode"`
}

// ShowNotice reports whether the operator should be told about access control
func (s SecurityStatus) ShowNotice() bool {
	return s.Enabled && s.Mode != SecurityModeIP
}

// TokenRequired reports whether requests need an access token
func (s SecurityStatus) TokenRequired() bool {
	return s.Enabled && (s.Mode == SecurityModeToken || s.Mode == SecurityModeBoth)
}

// ServerTestResult is the backend's answer to a server-side endpoint test
type ServerTestResult struct {
	Success      bool           `json:"success" yaml:"success"`
	StatusCode   int            `json:"statusCode" yaml:"statusCode"`
	Duration     int64          `json:"duration" yaml:"duration"`
	Parameters   map[string]any `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	ResponseBody string         `json:"responseBody,omitempty" yaml:"responseBody,omitempty"`
	ErrorMessage string         `json:"errorMessage,omitempty" yaml:"errorMessage,omitempty"`
}

// Document is a downloaded rendering of the API documentation
type Document struct {
	Format      string
	Filename    string
	ContentType string
	Content     []byte

	// Filled for OpenAPI (json) documents that parsed
	Title      string
	Version    string
	Operations int
}

// RequestTemplate is a saved test request
type RequestTemplate struct {
	ID          string            `json:"id" yaml:"id"`
	Name        string            `json:"name" yaml:"name"`
	Method      HTTPMethod        `json:"method" yaml:"method"`
	URL         string            `json:"url" yaml:"url"`
	Headers     map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Body        string            `json:"body,omitempty" yaml:"body,omitempty"`
	Environment string            `json:"environment,omitempty" yaml:"environment,omitempty"`
	Timestamp   time.Time         `json:"timestamp" yaml:"timestamp"`
}
