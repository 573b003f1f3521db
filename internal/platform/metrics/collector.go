// Package metrics collects in-process request metrics for the chat service.
// The collector keeps a bounded window of response time samples so memory
// stays flat no matter how long the process runs.
package metrics

import (
	"sort"
	"sync"
	"time"
)

// sampleWindow is the number of response time samples retained for
// percentile calculations.
const sampleWindow = 1000

// ResponseTimeStats summarizes the retained response time samples in
// milliseconds.
type ResponseTimeStats struct {
	Average float64 `json:"average"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	P50     float64 `json:"p50"`
	P95     float64 `json:"p95"`
	P99     float64 `json:"p99"`
}

// RequestStats is the request-counter section of the summary.
type RequestStats struct {
	Total         int64   `json:"total"`
	Successful    int64   `json:"successful"`
	Failed        int64   `json:"failed"`
	Active        int64   `json:"active"`
	RatePerSecond float64 `json:"rate_per_second"`
	SuccessRate   float64 `json:"success_rate"`
}

// Summary is the full metrics snapshot served by the metrics endpoint.
type Summary struct {
	Service       string            `json:"service"`
	Version       string            `json:"version"`
	UptimeSeconds float64           `json:"uptime_seconds"`
	Timestamp     string            `json:"timestamp"`
	Requests      RequestStats      `json:"requests"`
	ResponseTimes ResponseTimeStats `json:"response_times_ms"`
	Endpoints     map[string]int64  `json:"endpoints"`
	Languages     map[string]int64  `json:"languages"`
	Errors        map[string]int64  `json:"errors"`
	RateLimits    RateLimitStats    `json:"rate_limits"`
}

// RateLimitStats counts requests rejected by the rate limiter.
type RateLimitStats struct {
	Hits int64 `json:"hits"`
}

// Health is the condensed snapshot used by the health endpoint.
type Health struct {
	Status            string  `json:"status"`
	UptimeSeconds     float64 `json:"uptime_seconds"`
	ActiveRequests    int64   `json:"active_requests"`
	ResponseTimeP95MS float64 `json:"response_time_p95_ms"`
	SuccessRate       float64 `json:"success_rate"`
}

// Collector tracks request counters, response times, and error counts.
// All methods are safe for concurrent use.
type Collector struct {
	mu sync.Mutex

	service string
	version string

	totalRequests      int64
	successfulRequests int64
	failedRequests     int64
	activeRequests     int64
	rateLimitHits      int64

	// Circular buffer of response times in milliseconds.
	samples [sampleWindow]float64
	nextIdx int
	filled  int

	endpointCounts map[string]int64
	languageCounts map[string]int64
	errorCounts    map[string]int64

	startTime time.Time
	now       func() time.Time
}

// NewCollector returns a collector stamped with the given service identity.
func NewCollector(service, version string) *Collector {
	c := &Collector{
		service:        service,
		version:        version,
		endpointCounts: make(map[string]int64),
		languageCounts: map[string]int64{"en": 0, "es": 0, "other": 0},
		errorCounts:    make(map[string]int64),
		now:            time.Now,
	}
	c.startTime = c.now()
	return c
}

// RecordRequestStart marks a request as in flight and returns its start time.
func (c *Collector) RecordRequestStart() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.activeRequests++
	return c.now()
}

// RecordRequestEnd records the completion of a request. Unknown languages
// count under "other"; an empty language is not counted.
func (c *Collector) RecordRequestEnd(start time.Time, endpoint string, statusCode int, language string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elapsed := float64(c.now().Sub(start)) / float64(time.Millisecond)
	c.samples[c.nextIdx] = elapsed
	c.nextIdx = (c.nextIdx + 1) % sampleWindow
	if c.filled < sampleWindow {
		c.filled++
	}

	c.totalRequests++
	if c.activeRequests > 0 {
		c.activeRequests--
	}

	if statusCode >= 200 && statusCode < 300 {
		c.successfulRequests++
	} else {
		c.failedRequests++
	}

	c.endpointCounts[endpoint]++

	if language != "" {
		if _, ok := c.languageCounts[language]; ok {
			c.languageCounts[language]++
		} else {
			c.languageCounts["other"]++
		}
	}
}

// RecordError counts an error occurrence by type.
func (c *Collector) RecordError(errorType string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errorCounts[errorType]++
}

// RecordRateLimitHit counts a request rejected by the rate limiter.
func (c *Collector) RecordRateLimitHit() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rateLimitHits++
}

// UptimeSeconds returns the seconds since the collector was created.
func (c *Collector) UptimeSeconds() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.uptimeLocked()
}

func (c *Collector) uptimeLocked() float64 {
	return c.now().Sub(c.startTime).Seconds()
}

// responseStatsLocked computes percentile stats over the retained samples.
// With fewer than 20 samples p95 falls back to the max, and with fewer than
// 100 p99 does the same; small windows make tail percentiles meaningless.
func (c *Collector) responseStatsLocked() ResponseTimeStats {
	if c.filled == 0 {
		return ResponseTimeStats{}
	}

	sorted := make([]float64, c.filled)
	copy(sorted, c.samples[:c.filled])
	sort.Float64s(sorted)

	count := len(sorted)
	var sum float64
	for _, v := range sorted {
		sum += v
	}

	stats := ResponseTimeStats{
		Average: round2(sum / float64(count)),
		Min:     round2(sorted[0]),
		Max:     round2(sorted[count-1]),
		P50:     round2(sorted[count/2]),
		P95:     round2(sorted[count-1]),
		P99:     round2(sorted[count-1]),
	}
	if count > 20 {
		stats.P95 = round2(sorted[count*95/100])
	}
	if count > 100 {
		stats.P99 = round2(sorted[count*99/100])
	}
	return stats
}

// Snapshot returns the full metrics summary.
func (c *Collector) Snapshot() Summary {
	c.mu.Lock()
	defer c.mu.Unlock()

	uptime := c.uptimeLocked()
	stats := c.responseStatsLocked()

	var perSecond float64
	if uptime > 0 {
		perSecond = float64(c.totalRequests) / uptime
	}
	successRate := 100.0
	if c.totalRequests > 0 {
		successRate = float64(c.successfulRequests) / float64(c.totalRequests) * 100
	}

	return Summary{
		Service:       c.service,
		Version:       c.version,
		UptimeSeconds: round2(uptime),
		Timestamp:     c.now().UTC().Format(time.RFC3339),
		Requests: RequestStats{
			Total:         c.totalRequests,
			Successful:    c.successfulRequests,
			Failed:        c.failedRequests,
			Active:        c.activeRequests,
			RatePerSecond: round2(perSecond),
			SuccessRate:   round2(successRate),
		},
		ResponseTimes: stats,
		Endpoints:     copyCounts(c.endpointCounts),
		Languages:     copyCounts(c.languageCounts),
		Errors:        copyCounts(c.errorCounts),
		RateLimits:    RateLimitStats{Hits: c.rateLimitHits},
	}
}

// HealthSnapshot derives a health status from the current metrics. The
// service is degraded under heavy concurrency or slow tail latency, and
// unhealthy when failures outnumber successes.
func (c *Collector) HealthSnapshot() Health {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := c.responseStatsLocked()

	status := "healthy"
	switch {
	case c.activeRequests > 100:
		status = "degraded"
	case stats.P95 > 5000:
		status = "degraded"
	case c.failedRequests > c.successfulRequests:
		status = "unhealthy"
	}

	successRate := 100.0
	if c.totalRequests > 0 {
		successRate = float64(c.successfulRequests) / float64(c.totalRequests) * 100
	}

	return Health{
		Status:            status,
		UptimeSeconds:     round2(c.uptimeLocked()),
		ActiveRequests:    c.activeRequests,
		ResponseTimeP95MS: stats.P95,
		SuccessRate:       round2(successRate),
	}
}

func copyCounts(src map[string]int64) map[string]int64 {
	dst := make(map[string]int64, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func round2(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}
