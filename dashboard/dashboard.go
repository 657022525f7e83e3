// Package dashboard streams breaker statistics in the legacy Hystrix
// dashboard format.
//
// The exporter is a pure consumer: it iterates a registry of live
// breakers on a fixed interval and writes one JSON document per
// breaker to an io.Writer, framed as server-sent events. It holds no
// state of its own and the core has no reference back to it.
package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/bjaus/fuse"
)

// DefaultInterval is the reporting cadence used when none is given.
const DefaultInterval = time.Second

// Exporter periodically writes dashboard-format snapshots for every
// live breaker in a registry.
type Exporter struct {
	registry *fuse.Registry
	w        io.Writer
	interval time.Duration
}

// New creates an Exporter reporting registry's breakers to w every
// interval. A non-positive interval falls back to DefaultInterval.
func New(registry *fuse.Registry, w io.Writer, interval time.Duration) *Exporter {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Exporter{
		registry: registry,
		w:        w,
		interval: interval,
	}
}

// Run streams snapshots until ctx is cancelled.
func (e *Exporter) Run(ctx context.Context) error {
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := e.Flush(); err != nil {
				return err
			}
		}
	}
}

// Flush writes one snapshot document per live breaker.
func (e *Exporter) Flush() error {
	for _, b := range e.registry.All() {
		data, err := json.Marshal(newDocument(b))
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(e.w, "data: %s\n\n", data); err != nil {
			return err
		}
	}
	return nil
}

// document is the dashboard wire format. Field names follow the legacy
// dashboard's expectations.
type document struct {
	Type                 string `json:"type"`
	Name                 string `json:"name"`
	Group                string `json:"group"`
	CurrentTime          int64  `json:"currentTime"`
	IsCircuitBreakerOpen bool   `json:"isCircuitBreakerOpen"`

	ErrorPercentage float64 `json:"errorPercentage"`
	ErrorCount      int64   `json:"errorCount"`
	RequestCount    int64   `json:"requestCount"`

	RollingCountFailure            int64 `json:"rollingCountFailure"`
	RollingCountSuccess            int64 `json:"rollingCountSuccess"`
	RollingCountTimeout            int64 `json:"rollingCountTimeout"`
	RollingCountShortCircuited     int64 `json:"rollingCountShortCircuited"`
	RollingCountSemaphoreRejected  int64 `json:"rollingCountSemaphoreRejected"`
	RollingCountFallbackSuccess    int64 `json:"rollingCountFallbackSuccess"`
	RollingCountResponsesFromCache int64 `json:"rollingCountResponsesFromCache"`

	LatencyExecuteMean int64            `json:"latencyExecute_mean"`
	LatencyExecute     map[string]int64 `json:"latencyExecute,omitempty"`

	VolumeThreshold int64 `json:"propertyValue_circuitBreakerRequestVolumeThreshold"`
	ReportingHosts  int   `json:"reportingHosts"`
}

func newDocument(b *fuse.Breaker) document {
	stats := b.Stats()

	doc := document{
		Type:                 "HystrixCommand",
		Name:                 b.Name(),
		Group:                b.Group(),
		CurrentTime:          time.Now().UnixMilli(),
		IsCircuitBreakerOpen: b.Opened(),

		ErrorPercentage: stats.ErrorRate(),
		ErrorCount:      stats.Failures,
		RequestCount:    stats.Fires,

		RollingCountFailure:            stats.Failures,
		RollingCountSuccess:            stats.Successes,
		RollingCountTimeout:            stats.Timeouts,
		RollingCountShortCircuited:     stats.Rejects,
		RollingCountSemaphoreRejected:  stats.SemaphoreRejections,
		RollingCountFallbackSuccess:    stats.Fallbacks,
		RollingCountResponsesFromCache: stats.CacheHits,

		VolumeThreshold: b.VolumeThreshold(),
		ReportingHosts:  1,
	}

	if stats.LatencyMean == fuse.LatencyUnavailable {
		doc.LatencyExecuteMean = -1
		return doc
	}

	doc.LatencyExecuteMean = stats.LatencyMean.Milliseconds()
	doc.LatencyExecute = make(map[string]int64, len(stats.Percentiles))
	for p, d := range stats.Percentiles {
		doc.LatencyExecute[strconv.FormatFloat(p, 'f', -1, 64)] = d.Milliseconds()
	}
	return doc
}
