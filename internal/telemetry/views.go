package telemetry

import (
	"fmt"
	"sort"

	"github.com/studiowebux/apiconsole/internal/types"
)

// Level is the display severity of a figure
type Level string

const (
	LevelGood    Level = "good"
	LevelWarn    Level = "warn"
	LevelBad     Level = "bad"
	LevelUnknown Level = "unknown"
)

// PerformanceView is the display model of /performance
type PerformanceView struct {
	Available          bool
	TotalRequests      int64
	SuccessfulRequests int64
	ErrorRequests      int64
	AverageResponse    string
	ActiveConnections  int64

	HasSystem   bool
	HeapUsage   string // "45.2%"
	HeapDetails string // "120MB / 512MB"
	SystemLoad  string
	Threads     string // "current / peak"

	Endpoints []EndpointRow
}

// EndpointRow is one line of the per-endpoint metrics table
type EndpointRow struct {
	Path       string
	Requests   int64
	ErrorRate  float64
	ErrorLevel Level
	AvgTime    float64
	TimeLevel  Level
	MinTime    int64
	MaxTime    int64
}

// CacheView is the display model of /cache/stats
type CacheView struct {
	Available bool
	Usage     string
	Details   string
	TTL       string
}

// HealthView is the display model of /health
type HealthView struct {
	Available   bool
	Score       float64
	Status      string
	Level       Level
	AlertsTotal int
}

// AlertView is the display model of /alerts/stats
type AlertView struct {
	Available bool
	Total     int
	Critical  int
	Warning   int
	Statuses  []StatusCount
}

// StatusCount is one entry of the alert status breakdown
type StatusCount struct {
	Status string
	Count  int
}

// ErrorRateLevel grades an endpoint error rate in percent
func ErrorRateLevel(rate float64) Level {
	switch {
	case rate < 5:
		return LevelGood
	case rate < 20:
		return LevelWarn
	default:
		return LevelBad
	}
}

// ResponseTimeLevel grades an average response time in milliseconds
func ResponseTimeLevel(ms float64) Level {
	switch {
	case ms < 100:
		return LevelGood
	case ms < 500:
		return LevelWarn
	default:
		return LevelBad
	}
}

// HealthLevel maps a backend health status
func HealthLevel(status string) Level {
	switch status {
	case types.HealthHealthy:
		return LevelGood
	case types.HealthWarning:
		return LevelWarn
	case types.HealthCritical:
		return LevelBad
	default:
		return LevelUnknown
	}
}

// MapPerformance builds the performance view
func MapPerformance(p types.PerformanceSnapshot) PerformanceView {
	v := PerformanceView{
		Available:          true,
		TotalRequests:      p.TotalRequests,
		SuccessfulRequests: p.SuccessfulRequests,
		ErrorRequests:      p.ErrorRequests,
		AverageResponse:    fmt.Sprintf("%.0fms", p.AverageResponseTime),
		ActiveConnections:  p.ActiveConnections,
	}

	if sys := p.SystemMetrics; sys != nil {
		v.HasSystem = true
		v.HeapUsage = fmt.Sprintf("%.1f%%", sys.HeapUsage)
		v.HeapDetails = fmt.Sprintf("%dMB / %dMB", roundMB(sys.HeapUsed), roundMB(sys.HeapMax))
		v.SystemLoad = fmt.Sprintf("%.2f", sys.SystemLoad)
		v.Threads = fmt.Sprintf("%d / %d", sys.ThreadCount, sys.PeakThreadCount)
	}

	paths := make([]string, 0, len(p.EndpointMetrics))
	for path := range p.EndpointMetrics {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		m := p.EndpointMetrics[path]
		v.Endpoints = append(v.Endpoints, EndpointRow{
			Path:       path,
			Requests:   m.RequestCount,
			ErrorRate:  m.ErrorRate,
			ErrorLevel: ErrorRateLevel(m.ErrorRate),
			AvgTime:    m.AverageResponseTime,
			TimeLevel:  ResponseTimeLevel(m.AverageResponseTime),
			MinTime:    m.MinResponseTime,
			MaxTime:    m.MaxResponseTime,
		})
	}
	return v
}

func roundMB(b int64) int64 {
	return (b + 512*1024) / (1024 * 1024)
}

// MapCache builds the cache view
func MapCache(c types.CacheSnapshot) CacheView {
	return CacheView{
		Available: true,
		Usage:     fmt.Sprintf("%.1f%%", c.UsagePercentage),
		Details:   fmt.Sprintf("%d / %d", c.CurrentSize, c.MaxSize),
		TTL:       fmt.Sprintf("%ds", c.TTLSeconds),
	}
}

// MapHealth builds the health view; an empty status reads UNKNOWN
func MapHealth(h types.HealthSnapshot) HealthView {
	status := h.Status
	if status == "" {
		status = "UNKNOWN"
	}
	return HealthView{
		Available:   true,
		Score:       h.HealthScore,
		Status:      status,
		Level:       HealthLevel(status),
		AlertsTotal: h.CriticalAlerts + h.WarningAlerts,
	}
}

// MapAlerts builds the alert view with statuses sorted by name
func MapAlerts(a types.AlertSnapshot) AlertView {
	v := AlertView{
		Available: true,
		Total:     a.TotalAlerts,
		Critical:  a.CriticalAlerts,
		Warning:   a.WarningAlerts,
	}
	for status, count := range a.AlertStatuses {
		v.Statuses = append(v.Statuses, StatusCount{Status: status, Count: count})
	}
	sort.Slice(v.Statuses, func(i, j int) bool {
		return v.Statuses[i].Status < v.Statuses[j].Status
	})
	return v
}
