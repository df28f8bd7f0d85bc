package types

import (
	"fmt"
	"time"
)

// FetchError means a catalog, telemetry or config load could not complete
type FetchError struct {
	Resource string
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch %s: %v", e.Resource, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError means user-supplied header or body text was not valid JSON
type ParseError struct {
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid JSON in %s: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// TimeoutError means a dispatch ran past its deadline
type TimeoutError struct {
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timeout (%s seconds)", formatSeconds(e.Timeout))
}

// NetworkError means no response was received for a transport reason
type NetworkError struct {
	Hint string
	Err  error
}

func (e *NetworkError) Error() string {
	if e.Hint == "" {
		return e.Err.Error()
	}
	return e.Hint
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ValidationError blocks a dispatch before any network call
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func formatSeconds(d time.Duration) string {
	s := d.Seconds()
	if s == float64(int64(s)) {
		return fmt.Sprintf("%d", int64(s))
	}
	return fmt.Sprintf("%.1f", s)
}
