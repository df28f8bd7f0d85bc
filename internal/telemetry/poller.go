// Package telemetry pulls backend performance, cache, health and alert
// snapshots and maps each into a display model.
package telemetry

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/studiowebux/apiconsole/internal/types"
)

// Section names used as keys in Snapshot.Errors
const (
	SectionPerformance = "performance"
	SectionCache       = "cache"
	SectionHealth      = "health"
	SectionAlerts      = "alerts"
)

// Source provides the four independent telemetry reads
type Source interface {
	Performance(ctx context.Context) (types.PerformanceSnapshot, error)
	CacheStats(ctx context.Context) (types.CacheSnapshot, error)
	Health(ctx context.Context) (types.HealthSnapshot, error)
	AlertStats(ctx context.Context) (types.AlertSnapshot, error)
}

// Snapshot is the combined display state. Sections that failed on the last
// refresh keep their previous value and appear in Errors.
type Snapshot struct {
	Performance PerformanceView
	Cache       CacheView
	Health      HealthView
	Alerts      AlertView
	Errors      map[string]error
	UpdatedAt   time.Time
}

// Poller refreshes telemetry on demand
type Poller struct {
	src Source

	mu   sync.RWMutex
	last Snapshot
}

func NewPoller(src Source) *Poller {
	return &Poller{
		src: src,
		last: Snapshot{
			Health: HealthView{Status: "UNKNOWN", Level: LevelUnknown},
		},
	}
}

// Refresh fetches all four sections concurrently. A failing section never
// blocks the others.
func (p *Poller) Refresh(ctx context.Context) Snapshot {
	p.mu.RLock()
	next := p.last
	p.mu.RUnlock()
	next.Errors = map[string]error{}

	var errMu sync.Mutex
	record := func(section string, err error) {
		slog.Warn("telemetry section unavailable",
			slog.String("section", section),
			slog.String("error", err.Error()),
		)
		errMu.Lock()
		next.Errors[section] = err
		errMu.Unlock()
	}

	var g errgroup.Group
	g.Go(func() error {
		perf, err := p.src.Performance(ctx)
		if err != nil {
			record(SectionPerformance, err)
			return nil
		}
		next.Performance = MapPerformance(perf)
		return nil
	})
	g.Go(func() error {
		cache, err := p.src.CacheStats(ctx)
		if err != nil {
			record(SectionCache, err)
			return nil
		}
		next.Cache = MapCache(cache)
		return nil
	})
	g.Go(func() error {
		health, err := p.src.Health(ctx)
		if err != nil {
			record(SectionHealth, err)
			return nil
		}
		next.Health = MapHealth(health)
		return nil
	})
	g.Go(func() error {
		alerts, err := p.src.AlertStats(ctx)
		if err != nil {
			record(SectionAlerts, err)
			return nil
		}
		next.Alerts = MapAlerts(alerts)
		return nil
	})
	_ = g.Wait()

	next.UpdatedAt = time.Now()

	p.mu.Lock()
	p.last = next
	p.mu.Unlock()

	return next
}

// Last returns the most recent snapshot without fetching
func (p *Poller) Last() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.last
}
