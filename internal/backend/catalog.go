package backend

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/studiowebux/apiconsole/internal/types"
)

const (
	requiredSuffix = "_required"
	defaultSuffix  = "_defaultValue"
	bodyKey        = "body"
	bodyFieldsKey  = "bodyFields"
)

// catalogEntry is the wire shape of one catalog item
type catalogEntry struct {
	ClassName   string         `json:"className"`
	MethodName  string         `json:"methodName"`
	MethodType  string         `json:"methodType"`
	Paths       []string       `json:"paths"`
	Parameters  map[string]any `json:"parameters"`
	Description string         `json:"description"`
	Summary     string         `json:"summary"`
	Tags        []string       `json:"tags"`
	Deprecated  bool           `json:"deprecated"`
}

// descriptor converts the wire entry. Validation is left to the catalog.
func (e catalogEntry) descriptor() types.EndpointDescriptor {
	method, _ := types.ParseMethod(e.MethodType)
	params, body := decodeParameters(e.Parameters)
	return types.EndpointDescriptor{
		Owner:         e.ClassName,
		OperationName: e.MethodName,
		Method:        method,
		Paths:         e.Paths,
		Parameters:    params,
		Body:          body,
		Description:   e.Description,
		Summary:       e.Summary,
		Tags:          e.Tags,
		Deprecated:    e.Deprecated,
	}
}

// decodeParameters splits the flat parameter map. Plain keys carry the
// declared type; "<name>_required" and "<name>_defaultValue" siblings carry
// metadata; "body"/"bodyFields" describe the request body.
func decodeParameters(raw map[string]any) (map[string]types.Parameter, *types.BodyDescriptor) {
	params := make(map[string]types.Parameter)
	var body *types.BodyDescriptor

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := raw[key]
		switch {
		case key == bodyKey:
			if body == nil {
				body = &types.BodyDescriptor{}
			}
			body.Type = stringify(value)
		case key == bodyFieldsKey:
			if body == nil {
				body = &types.BodyDescriptor{}
			}
			if list, ok := value.([]any); ok {
				for _, f := range list {
					body.Fields = append(body.Fields, stringify(f))
				}
			}
		case strings.HasSuffix(key, requiredSuffix):
			name := strings.TrimSuffix(key, requiredSuffix)
			p := params[name]
			p.Name = name
			p.Required = truthy(value)
			params[name] = p
		case strings.HasSuffix(key, defaultSuffix):
			name := strings.TrimSuffix(key, defaultSuffix)
			p := params[name]
			p.Name = name
			p.DefaultValue = stringify(value)
			params[name] = p
		default:
			p := params[key]
			p.Name = key
			p.Type = stringify(value)
			params[key] = p
		}
	}
	return params, body
}

func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%g", val)
	default:
		return fmt.Sprint(val)
	}
}

func truthy(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		return strings.EqualFold(val, "true")
	default:
		return false
	}
}

// Catalog fetches the full endpoint list
func (c *Client) Catalog(ctx context.Context) ([]types.EndpointDescriptor, error) {
	var entries []catalogEntry
	if err := c.get(ctx, "catalog", "/catalog", nil, &entries); err != nil {
		return nil, err
	}
	return toDescriptors(entries), nil
}

// SearchOptions narrows a server-side search
type SearchOptions struct {
	Query      string
	Method     string
	Controller string
}

// Search runs the backend's own endpoint search
func (c *Client) Search(ctx context.Context, opts SearchOptions) ([]types.EndpointDescriptor, error) {
	q := url.Values{}
	if opts.Query != "" {
		q.Set("query", opts.Query)
	}
	if opts.Method != "" {
		q.Set("method", opts.Method)
	}
	if opts.Controller != "" {
		q.Set("controller", opts.Controller)
	}

	var entries []catalogEntry
	if err := c.get(ctx, "search", "/search", q, &entries); err != nil {
		return nil, err
	}
	return toDescriptors(entries), nil
}

func toDescriptors(entries []catalogEntry) []types.EndpointDescriptor {
	out := make([]types.EndpointDescriptor, len(entries))
	for i, e := range entries {
		out[i] = e.descriptor()
	}
	return out
}
