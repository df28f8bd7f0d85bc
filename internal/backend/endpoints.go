package backend

import (
	"context"
	"time"

	"github.com/studiowebux/apiconsole/internal/types"
)

type environmentsResponse struct {
	Environments   map[string]types.Environment `json:"environments"`
	DefaultHeaders map[string]string            `json:"defaultHeaders"`
	Timeout        struct {
		Connect int64 `json:"connect"`
		Read    int64 `json:"read"`
	} `json:"timeout"`
}

// Environments fetches the environment registry and request defaults
func (c *Client) Environments(ctx context.Context) (types.EnvironmentConfig, error) {
	var resp environmentsResponse
	if err := c.get(ctx, "environments", "/environments", nil, &resp); err != nil {
		return types.EnvironmentConfig{}, err
	}
	return types.EnvironmentConfig{
		Environments:   resp.Environments,
		DefaultHeaders: resp.DefaultHeaders,
		ReadTimeout:    time.Duration(resp.Timeout.Read) * time.Millisecond,
	}, nil
}

// SecurityStatus fetches the backend access-control mode
func (c *Client) SecurityStatus(ctx context.Context) (types.SecurityStatus, error) {
	var status types.SecurityStatus
	if err := c.get(ctx, "security status", "/security/status", nil, &status); err != nil {
		return types.SecurityStatus{}, err
	}
	return status, nil
}

// Performance fetches the performance snapshot
func (c *Client) Performance(ctx context.Context) (types.PerformanceSnapshot, error) {
	var resp struct {
		Performance types.PerformanceSnapshot `json:"performance"`
	}
	if err := c.get(ctx, "performance", "/performance", nil, &resp); err != nil {
		return types.PerformanceSnapshot{}, err
	}
	return resp.Performance, nil
}

// CacheStats fetches the cache snapshot
func (c *Client) CacheStats(ctx context.Context) (types.CacheSnapshot, error) {
	var resp struct {
		Cache types.CacheSnapshot `json:"cache"`
	}
	if err := c.get(ctx, "cache stats", "/cache/stats", nil, &resp); err != nil {
		return types.CacheSnapshot{}, err
	}
	return resp.Cache, nil
}

// Health fetches the health snapshot
func (c *Client) Health(ctx context.Context) (types.HealthSnapshot, error) {
	var resp struct {
		HealthScore float64 `json:"healthScore"`
		Status      string  `json:"status"`
		Alerts      struct {
			CriticalAlerts int `json:"criticalAlerts"`
			WarningAlerts  int `json:"warningAlerts"`
		} `json:"alerts"`
	}
	if err := c.get(ctx, "health", "/health", nil, &resp); err != nil {
		return types.HealthSnapshot{}, err
	}
	return types.HealthSnapshot{
		HealthScore:    resp.HealthScore,
		Status:         resp.Status,
		CriticalAlerts: resp.Alerts.CriticalAlerts,
		WarningAlerts:  resp.Alerts.WarningAlerts,
	}, nil
}

// AlertStats fetches the alert snapshot
func (c *Client) AlertStats(ctx context.Context) (types.AlertSnapshot, error) {
	var resp struct {
		Alerts types.AlertSnapshot `json:"alerts"`
	}
	if err := c.get(ctx, "alert stats", "/alerts/stats", nil, &resp); err != nil {
		return types.AlertSnapshot{}, err
	}
	return resp.Alerts, nil
}

// TestCache asks the backend to round-trip a value through its cache
func (c *Client) TestCache(ctx context.Context) (types.CacheTestResult, error) {
	var result types.CacheTestResult
	if err := c.post(ctx, "cache test", "/cache/test", nil, &result); err != nil {
		return types.CacheTestResult{}, err
	}
	return result, nil
}

// ClearCache empties the backend cache
func (c *Client) ClearCache(ctx context.Context) error {
	return c.post(ctx, "cache clear", "/cache/clear", nil, nil)
}

// ServerTestRequest is the body of POST /test
type ServerTestRequest struct {
	Endpoint   string         `json:"endpoint"`
	Method     string         `json:"method"`
	Parameters map[string]any `json:"parameters"`
}

// RunServerTest has the backend invoke an endpoint itself. A response with
// success=false is reported as an APIError.
func (c *Client) RunServerTest(ctx context.Context, req ServerTestRequest) (types.ServerTestResult, error) {
	if req.Parameters == nil {
		req.Parameters = map[string]any{}
	}
	var resp struct {
		Success    bool                   `json:"success"`
		TestResult types.ServerTestResult `json:"testResult"`
		Error      string                 `json:"error"`
	}
	if err := c.post(ctx, "server test", "/test", req, &resp); err != nil {
		return types.ServerTestResult{}, err
	}
	if !resp.Success {
		msg := resp.Error
		if msg == "" {
			msg = resp.TestResult.ErrorMessage
		}
		return resp.TestResult, &types.FetchError{Resource: "server test", Err: &APIError{StatusCode: 200, Message: msg}}
	}
	return resp.TestResult, nil
}
