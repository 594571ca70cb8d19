package monitor

import (
	"math"
	"sort"
	"sync"
	"time"
)

// DefaultCapacity bounds each sample window when no explicit capacity is
// configured.
const DefaultCapacity = 1000

// Metrics is a point-in-time aggregate over the monitor's sample windows.
// HasSamples reports whether any response time has been recorded; when it is
// false the latency fields are zero and must not be interpreted as "fast".
type Metrics struct {
	Uptime            time.Duration `json:"uptime"`
	HasSamples        bool          `json:"hasSamples"`
	MeanResponseTime  float64       `json:"meanResponseTime"`
	P95ResponseTime   float64       `json:"p95ResponseTime"`
	ConversionRate    float64       `json:"conversionRate"`
	ErrorRate         float64       `json:"errorRate"`
	RequestsPerMinute float64       `json:"requestsPerMinute"`
	SampleCount       int           `json:"sampleCount"`
	ErrorCount        int           `json:"errorCount"`
	DegradedTurns     uint64        `json:"degradedTurns"`
	StoreWriteLosses  uint64        `json:"storeWriteLosses"`
}

// Options configures a Monitor.
type Options struct {
	// Capacity is the maximum number of samples retained per window.
	Capacity int

	// now is swapped in tests to control uptime.
	now func() time.Time
}

// Monitor collects turn-level performance samples in bounded windows and
// derives aggregate metrics on demand. All methods are safe for concurrent
// use.
type Monitor struct {
	mu            sync.Mutex
	start         time.Time
	now           func() time.Time
	responseTimes *window
	conversions   *window
	errors        *window

	degradedTurns    uint64
	storeWriteLosses uint64
}

// New creates a Monitor. Uptime starts now.
func New(optFns ...func(o *Options)) *Monitor {
	opts := Options{
		Capacity: DefaultCapacity,
		now:      time.Now,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Capacity <= 0 {
		opts.Capacity = DefaultCapacity
	}
	return &Monitor{
		start:         opts.now(),
		now:           opts.now,
		responseTimes: newWindow(opts.Capacity),
		conversions:   newWindow(opts.Capacity),
		errors:        newWindow(opts.Capacity),
	}
}

// RecordResponseTime appends a turn latency sample, in seconds.
func (m *Monitor) RecordResponseTime(seconds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responseTimes.push(seconds)
}

// RecordConversion appends a conversion outcome: true when the turn reached
// the closing stage.
func (m *Monitor) RecordConversion(converted bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v := 0.0
	if converted {
		v = 1.0
	}
	m.conversions.push(v)
}

// RecordError appends an error sample for a failed turn.
func (m *Monitor) RecordError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors.push(1.0)
}

// RecordDegraded counts a turn answered by a stage fallback because the
// language model was unavailable or timed out.
func (m *Monitor) RecordDegraded() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.degradedTurns++
}

// RecordStoreLoss counts a durable write that failed after the turn already
// produced its response.
func (m *Monitor) RecordStoreLoss() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.storeWriteLosses++
}

// Snapshot computes the current aggregate metrics. The error rate is
// errors/(responses+errors); p95 is the 1-indexed ceil-free rank
// floor(0.95*n) over the ascending-sorted window, clamped to a valid index.
func (m *Monitor) Snapshot() Metrics {
	m.mu.Lock()
	defer m.mu.Unlock()

	uptime := m.now().Sub(m.start)
	out := Metrics{
		Uptime:           uptime,
		SampleCount:      m.responseTimes.len(),
		ErrorCount:       m.errors.len(),
		DegradedTurns:    m.degradedTurns,
		StoreWriteLosses: m.storeWriteLosses,
	}

	if n := m.responseTimes.len(); n > 0 {
		out.HasSamples = true
		out.MeanResponseTime = m.responseTimes.sum() / float64(n)
		out.P95ResponseTime = percentile95(m.responseTimes.values())
		if mins := uptime.Minutes(); mins > 0 {
			out.RequestsPerMinute = float64(n) / mins
		}
	}

	if n := m.conversions.len(); n > 0 {
		out.ConversionRate = m.conversions.sum() / float64(n)
	}

	if total := m.responseTimes.len() + m.errors.len(); total > 0 {
		out.ErrorRate = float64(m.errors.len()) / float64(total)
	}

	return out
}

func percentile95(samples []float64) float64 {
	sort.Float64s(samples)
	rank := int(math.Floor(0.95 * float64(len(samples))))
	if rank < 1 {
		rank = 1
	}
	if rank > len(samples) {
		rank = len(samples)
	}
	return samples[rank-1]
}
