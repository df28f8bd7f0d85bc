package request

import (
	"strings"

	"github.com/studiowebux/apiconsole/internal/types"
)

// LocalEnvironment is the fallback environment name
const LocalEnvironment = "local"

// DefaultEnvironments is used when the backend registry is unavailable
var DefaultEnvironments = map[string]types.Environment{
	"local": {BaseURL: "http://localhost:8080", Description: "Local development"},
	"dev":   {BaseURL: "https://dev-api.example.com", Description: "Development"},
	"prod":  {BaseURL: "https://api.example.com", Description: "Production"},
}

// HasScheme reports whether raw is already an absolute http(s) URL
func HasScheme(raw string) bool {
	lower := strings.ToLower(strings.TrimSpace(raw))
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// ResolveURL returns raw unchanged when it has a scheme, otherwise joins it
// to the base URL of the named environment
func ResolveURL(raw, envName string, registry map[string]types.Environment) string {
	raw = strings.TrimSpace(raw)
	if HasScheme(raw) {
		return raw
	}
	return joinURL(BaseURL(envName, registry), raw)
}

// BaseURL looks envName up in registry, then "local" in registry, then the
// same two in DefaultEnvironments
func BaseURL(envName string, registry map[string]types.Environment) string {
	for _, reg := range []map[string]types.Environment{registry, DefaultEnvironments} {
		if env, ok := reg[envName]; ok && env.BaseURL != "" {
			return env.BaseURL
		}
		if env, ok := reg[LocalEnvironment]; ok && env.BaseURL != "" {
			return env.BaseURL
		}
	}
	return DefaultEnvironments[LocalEnvironment].BaseURL
}

func joinURL(base, path string) string {
	if path == "" {
		return base
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}
