package monitor

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ExporterOptions configures an Exporter.
type ExporterOptions struct {
	// Interval between periodic syncs in Run.
	Interval time.Duration

	// Registerer receives the gauges. Defaults to the global registry.
	Registerer prometheus.Registerer

	// CacheStats, when set, is polled for memory cache hit/miss counters.
	CacheStats func() (hits, misses uint64)
}

// Exporter publishes Monitor snapshots as Prometheus gauges. Create one per
// process; gauge registration is not idempotent.
type Exporter struct {
	monitor    *Monitor
	cacheStats func() (uint64, uint64)
	interval   time.Duration

	uptime            prometheus.Gauge
	meanResponseTime  prometheus.Gauge
	p95ResponseTime   prometheus.Gauge
	conversionRate    prometheus.Gauge
	errorRate         prometheus.Gauge
	requestsPerMinute prometheus.Gauge
	degradedTurns     prometheus.Gauge
	storeWriteLosses  prometheus.Gauge
	cacheHits         prometheus.Gauge
	cacheMisses       prometheus.Gauge
}

// NewExporter registers the salesflow gauges and binds them to m.
func NewExporter(m *Monitor, optFns ...func(o *ExporterOptions)) *Exporter {
	opts := ExporterOptions{
		Interval:   15 * time.Second,
		Registerer: prometheus.DefaultRegisterer,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	factory := promauto.With(opts.Registerer)
	e := &Exporter{
		monitor:    m,
		cacheStats: opts.CacheStats,
		interval:   opts.Interval,
		uptime: factory.NewGauge(prometheus.GaugeOpts{
			Name: "salesflow_uptime_seconds",
			Help: "Time since the monitor was created.",
		}),
		meanResponseTime: factory.NewGauge(prometheus.GaugeOpts{
			Name: "salesflow_response_time_mean_seconds",
			Help: "Mean turn latency over the sample window.",
		}),
		p95ResponseTime: factory.NewGauge(prometheus.GaugeOpts{
			Name: "salesflow_response_time_p95_seconds",
			Help: "95th percentile turn latency over the sample window.",
		}),
		conversionRate: factory.NewGauge(prometheus.GaugeOpts{
			Name: "salesflow_conversion_rate",
			Help: "Fraction of recorded turns that reached the closing stage.",
		}),
		errorRate: factory.NewGauge(prometheus.GaugeOpts{
			Name: "salesflow_error_rate",
			Help: "Errors over responses plus errors, within the windows.",
		}),
		requestsPerMinute: factory.NewGauge(prometheus.GaugeOpts{
			Name: "salesflow_requests_per_minute",
			Help: "Windowed sample count divided by uptime in minutes.",
		}),
		degradedTurns: factory.NewGauge(prometheus.GaugeOpts{
			Name: "salesflow_degraded_turns_total",
			Help: "Turns answered by a stage fallback without the model.",
		}),
		storeWriteLosses: factory.NewGauge(prometheus.GaugeOpts{
			Name: "salesflow_store_write_losses_total",
			Help: "Durable writes that failed after the turn responded.",
		}),
		cacheHits: factory.NewGauge(prometheus.GaugeOpts{
			Name: "salesflow_memory_cache_hits_total",
			Help: "Memory cache lookups served without the backing store.",
		}),
		cacheMisses: factory.NewGauge(prometheus.GaugeOpts{
			Name: "salesflow_memory_cache_misses_total",
			Help: "Memory cache lookups that fell through to the store.",
		}),
	}
	e.Sync()
	return e
}

// Sync publishes one snapshot to the gauges.
func (e *Exporter) Sync() {
	snap := e.monitor.Snapshot()
	e.uptime.Set(snap.Uptime.Seconds())
	e.meanResponseTime.Set(snap.MeanResponseTime)
	e.p95ResponseTime.Set(snap.P95ResponseTime)
	e.conversionRate.Set(snap.ConversionRate)
	e.errorRate.Set(snap.ErrorRate)
	e.requestsPerMinute.Set(snap.RequestsPerMinute)
	e.degradedTurns.Set(float64(snap.DegradedTurns))
	e.storeWriteLosses.Set(float64(snap.StoreWriteLosses))
	if e.cacheStats != nil {
		hits, misses := e.cacheStats()
		e.cacheHits.Set(float64(hits))
		e.cacheMisses.Set(float64(misses))
	}
}

// Run syncs on a fixed interval until ctx is cancelled.
func (e *Exporter) Run(ctx context.Context) {
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.Sync()
		}
	}
}
