package request

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/studiowebux/apiconsole/internal/types"
)

// Template captures the operator's input as a reusable template. The URL
// stays unresolved and only custom headers are kept, so the environment,
// default headers and token apply again when the template is sent.
// ID, Name and Timestamp are left for the store to assign.
func Template(in Input) (types.RequestTemplate, error) {
	url := strings.TrimSpace(in.URL)
	if url == "" {
		return types.RequestTemplate{}, &types.ValidationError{Field: "url", Message: "Please enter a URL"}
	}

	method, ok := types.ParseMethod(in.Method)
	if !ok {
		return types.RequestTemplate{}, &types.ValidationError{Field: "method", Message: fmt.Sprintf("unsupported method %q", in.Method)}
	}

	values, err := in.CustomHeaders.resolve()
	if err != nil {
		slog.Warn("skipping header source", slog.String("error", err.Error()))
		values = nil
	}

	return types.RequestTemplate{
		Method:      method,
		URL:         url,
		Headers:     StripCredentials(values),
		Body:        in.Body,
		Environment: strings.TrimSpace(in.Environment),
	}, nil
}

// StripCredentials returns a canonicalized copy of headers without the
// Authorization entry. Nil is returned when nothing is left.
func StripCredentials(headers map[string]string) map[string]string {
	out := make(map[string]string, len(headers))
	for k, v := range headers {
		key := http.CanonicalHeaderKey(strings.TrimSpace(k))
		if key == "" || key == "Authorization" {
			continue
		}
		out[key] = v
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// FromTemplate turns a saved template back into input. Callers add the
// default headers, token and timeout that apply at send time.
func FromTemplate(t types.RequestTemplate) Input {
	return Input{
		Method:        string(t.Method),
		URL:           t.URL,
		Environment:   t.Environment,
		CustomHeaders: HeaderSource{Name: "template headers", Values: t.Headers},
		Body:          t.Body,
	}
}
