/*
Package types defines the data shared across the console.

# Catalog

EndpointDescriptor is one backend operation: its owner (the controller it
belongs to), operation name, HTTP method, path templates and declared
parameters. Descriptors are validated on load; a descriptor with no paths or
an unknown method never enters the catalog.

# Requests and outcomes

TestRequestSpec is a fully resolved request ready for dispatch.
TestOutcome is what the dispatcher reports back: a numeric status when any
response arrived, or StatusFailed when none did, plus timing and the
response itself.

Status marshals as a JSON number or the string "FAILED":

	{"status": 404, "responseTime": 12}
	{"status": "FAILED", "errorKind": "timeout", "errorDetail": "timeout (5 seconds)"}

# Backend configuration

EnvironmentConfig and SecurityStatus mirror the backend's /environments and
/security/status responses. The telemetry snapshots mirror /performance,
/cache/stats, /health and /alerts/stats.

# Errors

FetchError, ParseError, TimeoutError, NetworkError and ValidationError form
the error taxonomy. Use errors.As to tell them apart.
*/
package types
