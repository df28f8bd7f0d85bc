package request

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/studiowebux/apiconsole/internal/types"
)

// FromEndpoint prefills an Input for a catalog entry. Path placeholders are
// replaced with declared default values; a JSON skeleton is generated from
// the body field list.
func FromEndpoint(e types.EndpointDescriptor) Input {
	in := Input{
		Method: string(e.Method),
		URL:    SubstitutePath(e.PrimaryPath(), e.Parameters),
	}
	if e.Method.HasBody() && e.Body != nil && len(e.Body.Fields) > 0 {
		in.Body = bodySkeleton(e.Body.Fields)
	}
	return in
}

// SubstitutePath fills {name} placeholders that have a default value
func SubstitutePath(path string, params map[string]types.Parameter) string {
	for name, p := range params {
		if p.DefaultValue == "" {
			continue
		}
		path = strings.ReplaceAll(path, "{"+name+"}", p.DefaultValue)
	}
	return path
}

func bodySkeleton(fields []string) string {
	obj := make(map[string]string, len(fields))
	for _, f := range fields {
		obj[f] = ""
	}
	data, err := json.MarshalIndent(obj, "", "  ")
	if err != nil {
		return ""
	}
	return string(data)
}

// Curl renders spec as a curl command line
func Curl(spec types.TestRequestSpec) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "curl -X %s %s", spec.Method, shellQuote(spec.URL))

	keys := make([]string, 0, len(spec.Headers))
	for k := range spec.Headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&sb, " \\\n  -H %s", shellQuote(k+": "+spec.Headers[k]))
	}

	if spec.Body != "" {
		fmt.Fprintf(&sb, " \\\n  -d %s", shellQuote(spec.Body))
	}
	return sb.String()
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
