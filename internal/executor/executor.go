package executor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/studiowebux/apiconsole/internal/types"
)

// DefaultTimeout applies when a spec has no positive timeout
const DefaultTimeout = 30 * time.Second

// Recorder receives every classified outcome
type Recorder interface {
	Append(types.TestOutcome)
}

// Dispatcher executes test requests. Execute is safe to call concurrently;
// concurrent outcomes reach the recorder in completion order.
type Dispatcher struct {
	client   *http.Client
	recorder Recorder
}

// Option configures a Dispatcher
type Option func(*Dispatcher)

// WithHTTPClient sets the client used for dispatch
func WithHTTPClient(c *http.Client) Option {
	return func(d *Dispatcher) {
		d.client = c
	}
}

// WithRecorder sets where outcomes are recorded
func WithRecorder(r Recorder) Option {
	return func(d *Dispatcher) {
		d.recorder = r
	}
}

// NewDispatcher creates a dispatcher
func NewDispatcher(opts ...Option) *Dispatcher {
	d := &Dispatcher{
		client: &http.Client{},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Execute performs the request under its timeout and classifies the result.
// It never fails: every error path is folded into the returned outcome.
func (d *Dispatcher) Execute(ctx context.Context, spec types.TestRequestSpec) types.TestOutcome {
	outcome := d.execute(ctx, spec)

	if d.recorder != nil {
		d.recorder.Append(outcome)
	}

	slog.Info("test request completed",
		slog.String("method", string(spec.Method)),
		slog.String("url", spec.URL),
		slog.String("status", outcome.Status.String()),
		slog.Int64("duration_ms", outcome.ResponseTime),
	)
	return outcome
}

func (d *Dispatcher) execute(ctx context.Context, spec types.TestRequestSpec) types.TestOutcome {
	startTime := time.Now()
	outcome := types.TestOutcome{
		Method:    spec.Method,
		URL:       spec.URL,
		Timestamp: startTime,
	}

	timeout := spec.Timeout()
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var bodyReader io.Reader
	if spec.Body != "" {
		bodyReader = strings.NewReader(spec.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, string(spec.Method), spec.URL, bodyReader)
	if err != nil {
		return failed(outcome, startTime, &types.NetworkError{Hint: Hint(err), Err: err})
	}
	for key, value := range spec.Headers {
		httpReq.Header.Set(key, value)
	}

	resp, err := d.client.Do(httpReq)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return failed(outcome, startTime, &types.TimeoutError{Timeout: timeout})
		}
		return failed(outcome, startTime, &types.NetworkError{Hint: Hint(err), Err: err})
	}
	defer resp.Body.Close()

	outcome.Status = types.StatusCode(resp.StatusCode)
	outcome.Headers = flattenHeaders(resp.Header)

	bodyBytes, err := io.ReadAll(resp.Body)
	outcome.ResponseTime = time.Since(startTime).Milliseconds()
	if err != nil {
		outcome.ErrorDetail = fmt.Sprintf("failed to read response body: %v", err)
	}
	outcome.ResponseSize = len(bodyBytes)
	outcome.Body = PrettyBody(bodyBytes)

	return outcome
}

func failed(outcome types.TestOutcome, startTime time.Time, err error) types.TestOutcome {
	outcome.Status = types.StatusFailed
	outcome.ResponseTime = time.Since(startTime).Milliseconds()
	outcome.ErrorDetail = err.Error()

	var te *types.TimeoutError
	if errors.As(err, &te) {
		outcome.ErrorKind = types.ErrorKindTimeout
	} else {
		outcome.ErrorKind = types.ErrorKindNetwork
	}
	return outcome
}

func flattenHeaders(h http.Header) map[string]string {
	headers := make(map[string]string, len(h))
	for key, values := range h {
		headers[key] = strings.Join(values, ", ")
	}
	return headers
}

// PrettyBody indents JSON bodies and returns anything else as text
func PrettyBody(body []byte) string {
	if len(bytes.TrimSpace(body)) == 0 {
		return string(body)
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, body, "", "  "); err != nil {
		return string(body)
	}
	return buf.String()
}

// FormatDuration formats duration in milliseconds to human-readable string
func FormatDuration(ms int64) string {
	if ms < 1000 {
		return fmt.Sprintf("%dms", ms)
	}
	seconds := float64(ms) / 1000.0
	return fmt.Sprintf("%.2fs", seconds)
}

// FormatSize formats byte size to human-readable string
func FormatSize(bytes int64) string {
	if bytes < 1024 {
		return fmt.Sprintf("%dB", bytes)
	}
	if bytes < 1024*1024 {
		return fmt.Sprintf("%.2fKB", float64(bytes)/1024.0)
	}
	if bytes < 1024*1024*1024 {
		return fmt.Sprintf("%.2fMB", float64(bytes)/(1024.0*1024.0))
	}
	return fmt.Sprintf("%.2fGB", float64(bytes)/(1024.0*1024.0*1024.0))
}

// StatusClass buckets an outcome for display: failed, warning (>= 400) or ok
func StatusClass(s types.Status) string {
	switch {
	case s.Failed:
		return "failed"
	case s.Code >= 400:
		return "warning"
	default:
		return "ok"
	}
}
