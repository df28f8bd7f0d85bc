package types

// EndpointMetrics are per-path request statistics
type EndpointMetrics struct {
	RequestCount        int64   `json:"requestCount" yaml:"requestCount"`
	ErrorCount          int64   `json:"errorCount" yaml:"errorCount"`
	TotalResponseTime   int64   `json:"totalResponseTime" yaml:"totalResponseTime"`
	MinResponseTime     int64   `json:"minResponseTime" yaml:"minResponseTime"`
	MaxResponseTime     int64   `json:"maxResponseTime" yaml:"maxResponseTime"`
	AverageResponseTime float64 `json:"averageResponseTime" yaml:"averageResponseTime"`
	ErrorRate           float64 `json:"errorRate" yaml:"errorRate"`
}

// SystemMetrics describe the backend process
type SystemMetrics struct {
	HeapUsed        int64   `json:"heapUsed" yaml:"heapUsed"`
	HeapMax         int64   `json:"heapMax" yaml:"heapMax"`
	HeapUsage       float64 `json:"heapUsage" yaml:"heapUsage"`
	SystemLoad      float64 `json:"systemLoad" yaml:"systemLoad"`
	ThreadCount     int     `json:"threadCount" yaml:"threadCount"`
	PeakThreadCount int     `json:"peakThreadCount" yaml:"peakThreadCount"`
}

// PerformanceSnapshot is the body of GET /performance
type PerformanceSnapshot struct {
	TotalRequests       int64                      `json:"totalRequests" yaml:"totalRequests"`
	SuccessfulRequests  int64                      `json:"successfulRequests" yaml:"successfulRequests"`
	ErrorRequests       int64                      `json:"errorRequests" yaml:"errorRequests"`
	AverageResponseTime float64                    `json:"averageResponseTime" yaml:"averageResponseTime"`
	ActiveConnections   int64                      `json:"activeConnections" yaml:"activeConnections"`
	SystemMetrics       *SystemMetrics             `json:"systemMetrics,omitempty" yaml:"systemMetrics,omitempty"`
	EndpointMetrics     map[string]EndpointMetrics `json:"endpointMetrics,omitempty" yaml:"endpointMetrics,omitempty"`
}

// CacheSnapshot is the body of GET /cache/stats
type CacheSnapshot struct {
	CurrentSize     int64   `json:"currentSize" yaml:"currentSize"`
	MaxSize         int64   `json:"maxSize" yaml:"maxSize"`
	TTLSeconds      int64   `json:"ttlSeconds" yaml:"ttlSeconds"`
	UsagePercentage float64 `json:"usagePercentage" yaml:"usagePercentage"`
}

// Health statuses reported by GET /health
const (
	HealthHealthy  = "HEALTHY"
	HealthWarning  = "WARNING"
	HealthCritical = "CRITICAL"
)

// HealthSnapshot is the body of GET /health
type HealthSnapshot struct {
	HealthScore    float64 `json:"healthScore" yaml:"healthScore"`
	Status         string  `json:"status" yaml:"status"`
	CriticalAlerts int     `json:"criticalAlerts" yaml:"criticalAlerts"`
	WarningAlerts  int     `json:"warningAlerts" yaml:"warningAlerts"`
}

// AlertSnapshot is the body of GET /alerts/stats
type AlertSnapshot struct {
	TotalAlerts    int            `json:"totalAlerts" yaml:"totalAlerts"`
	CriticalAlerts int            `json:"criticalAlerts" yaml:"criticalAlerts"`
	WarningAlerts  int            `json:"warningAlerts" yaml:"warningAlerts"`
	AlertStatuses  map[string]int `json:"alertStatuses,omitempty" yaml:"alertStatuses,omitempty"`
}

// CacheTestResult is the body of POST /cache/test
type CacheTestResult struct {
	CacheHit       bool `json:"cacheHit" yaml:"cacheHit"`
	TestValue      any  `json:"testValue" yaml:"testValue"`
	RetrievedValue any  `json:"retrievedValue" yaml:"retrievedValue"`
}
