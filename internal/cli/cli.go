// Package cli implements the non-interactive commands: one-shot tests,
// catalog listings, telemetry and template management.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sort"
	"strings"

	"github.com/studiowebux/apiconsole/internal/backend"
	"github.com/studiowebux/apiconsole/internal/config"
	"github.com/studiowebux/apiconsole/internal/executor"
	"github.com/studiowebux/apiconsole/internal/request"
	"github.com/studiowebux/apiconsole/internal/types"
)

// ErrRequestFailed is returned when a test got no response or a status >= 400.
// Output has already been written; callers only set the exit code.
var ErrRequestFailed = errors.New("request failed")

// EnvironmentSource is the part of the backend client a test needs
type EnvironmentSource interface {
	Environments(ctx context.Context) (types.EnvironmentConfig, error)
}

// TestOptions contains options for running a request in CLI mode
type TestOptions struct {
	Method      string
	URL         string
	Environment string   // empty prompts when interactive, else uses the configured default
	Headers     []string // "Key: value" or key=value pairs from -H
	HeadersJSON string   // raw JSON object, overrides Headers
	Body        string
	Token       string
	Timeout     float64
	ShowFull    bool
	SavePath    string
}

// parseHeaderFlags turns -H values into a map. Entries without a separator
// are skipped with a warning.
func parseHeaderFlags(values []string) map[string]string {
	out := make(map[string]string, len(values))
	for _, v := range values {
		sep := strings.IndexAny(v, ":=")
		if sep <= 0 {
			fmt.Fprintf(os.Stderr, "Warning: ignoring header %q (expected Key: value)\n", v)
			continue
		}
		out[strings.TrimSpace(v[:sep])] = strings.TrimSpace(v[sep+1:])
	}
	return out
}

// BuildSpec resolves opts against the backend environments and settings
func BuildSpec(ctx context.Context, cfg *config.Config, envs EnvironmentSource, opts TestOptions) (types.TestRequestSpec, error) {
	envCfg, err := envs.Environments(ctx)
	if err != nil {
		slog.Warn("environments unavailable, using defaults", slog.String("error", err.Error()))
		envCfg = types.EnvironmentConfig{}
	}

	envName := opts.Environment
	if envName == "" && !request.HasScheme(opts.URL) && len(envCfg.Environments) > 1 && isInteractive() {
		envName, err = selectEnvironment(envCfg.Environments, cfg.Environment)
		if err != nil {
			return types.TestRequestSpec{}, err
		}
	}
	if envName == "" {
		envName = cfg.Environment
	}

	defaults := make(map[string]string, len(envCfg.DefaultHeaders)+len(cfg.Headers))
	for k, v := range envCfg.DefaultHeaders {
		defaults[k] = v
	}
	for k, v := range cfg.Headers {
		defaults[k] = v
	}

	token := opts.Token
	if token == "" {
		token = cfg.AccessToken
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = envCfg.TimeoutSeconds()
	}
	if timeout <= 0 {
		timeout = cfg.TimeoutSeconds
	}

	method := opts.Method
	if method == "" {
		method = string(types.MethodGet)
	}

	return request.NewBuilder(envCfg.Environments).Build(request.Input{
		Method:         method,
		URL:            opts.URL,
		Environment:    envName,
		DefaultHeaders: request.HeaderSource{Name: "default headers", Values: defaults},
		CustomHeaders: request.HeaderSource{
			Name:   "custom headers",
			Values: parseHeaderFlags(opts.Headers),
			Raw:    opts.HeadersJSON,
		},
		AccessToken:    token,
		Body:           opts.Body,
		TimeoutSeconds: timeout,
	})
}

// TemplateDraft captures opts as a template without resolving the URL or
// applying default headers and the token
func TemplateDraft(opts TestOptions) (types.RequestTemplate, error) {
	method := opts.Method
	if method == "" {
		method = string(types.MethodGet)
	}
	return request.Template(request.Input{
		Method:      method,
		URL:         opts.URL,
		Environment: opts.Environment,
		CustomHeaders: request.HeaderSource{
			Name:   "custom headers",
			Values: parseHeaderFlags(opts.Headers),
			Raw:    opts.HeadersJSON,
		},
		Body: opts.Body,
	})
}

// TemplateOptions turns a saved template back into test options
func TemplateOptions(t types.RequestTemplate) TestOptions {
	in := request.FromTemplate(t)
	headers := make([]string, 0, len(t.Headers))
	for k, v := range in.CustomHeaders.Values {
		headers = append(headers, k+": "+v)
	}
	sort.Strings(headers)
	return TestOptions{
		Method:      in.Method,
		URL:         in.URL,
		Environment: in.Environment,
		Headers:     headers,
		Body:        in.Body,
	}
}

// RunTest dispatches one request and prints the outcome
func RunTest(ctx context.Context, cfg *config.Config, envs EnvironmentSource, opts TestOptions, p Printer) error {
	spec, err := BuildSpec(ctx, cfg, envs, opts)
	if err != nil {
		return err
	}
	return Dispatch(ctx, spec, opts.ShowFull, opts.SavePath, p)
}

// Dispatch sends spec and prints the outcome, optionally saving the body
func Dispatch(ctx context.Context, spec types.TestRequestSpec, showFull bool, savePath string, p Printer) error {
	outcome := executor.NewDispatcher().Execute(ctx, spec)

	if savePath != "" && !outcome.Failed() {
		if err := os.WriteFile(savePath, []byte(outcome.Body), config.FilePermissions); err != nil {
			return fmt.Errorf("failed to save response: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Response saved to %s\n", savePath)
	}

	if err := p.Outcome(outcome, showFull); err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}

	if outcome.Failed() || outcome.Status.Code >= 400 {
		return ErrRequestFailed
	}
	return nil
}

// RunServerTest asks the backend to exercise path itself
func RunServerTest(ctx context.Context, client *backend.Client, method, path string, params map[string]any, p Printer) error {
	res, err := client.RunServerTest(ctx, backend.ServerTestRequest{
		Endpoint:   path,
		Method:     strings.ToUpper(method),
		Parameters: params,
	})
	// A delivered result with success=false arrives as an APIError carrying 200
	var apiErr *backend.APIError
	if err != nil && !(errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusOK) {
		return err
	}
	if res.ErrorMessage == "" && apiErr != nil {
		res.ErrorMessage = apiErr.Message
	}
	if perr := p.ServerTest(res); perr != nil {
		return perr
	}
	if !res.Success {
		return ErrRequestFailed
	}
	return nil
}

// ParseParams turns key=value pairs into server test parameters
func ParseParams(values []string) (map[string]any, error) {
	params := make(map[string]any, len(values))
	for _, v := range values {
		key, value, ok := strings.Cut(v, "=")
		if !ok || key == "" {
			return nil, &types.ValidationError{Field: "param", Message: fmt.Sprintf("expected key=value, got %q", v)}
		}
		params[key] = value
	}
	return params, nil
}

// isInteractive checks if stdin is a terminal (not piped)
func isInteractive() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) != 0
}
