// SPDX-License-Identifier: GPL-3.0-or-later

package monitoring

import (
	"time"

	"github.com/souqline/souqline/go/telemetry/pkg/prometheus"
)

const bytesInMiB = 1024 * 1024

// SeriesPoint describes the interval ending at Timestamp.
type SeriesPoint struct {
	Timestamp      time.Time `json:"timestamp"`
	RequestsPerMin NullFloat `json:"requests_per_min"`
	ErrorRatePct   NullFloat `json:"error_rate_pct"`
	LatencyP50Ms   NullFloat `json:"latency_p50_ms"`
	LatencyP95Ms   NullFloat `json:"latency_p95_ms"`
	CPUPct         NullFloat `json:"cpu_pct"`
	MemoryMB       NullFloat `json:"memory_mb"`
	UptimeSeconds  NullFloat `json:"uptime_seconds"`
	MessagesPerMin NullFloat `json:"messages_per_min"`
}

// BuildSeries derives one point per pair of adjacent snapshots captured within
// window of the newest snapshot. A window <= 0 keeps the whole history.
func BuildSeries(history []Snapshot, window time.Duration) []SeriesPoint {
	if len(history) < 2 {
		return nil
	}

	from := 0
	if window > 0 {
		cutoff := history[len(history)-1].CapturedAt.Add(-window)
		for from < len(history) && history[from].CapturedAt.Before(cutoff) {
			from++
		}
	}
	history = history[from:]

	points := make([]SeriesPoint, 0, max(len(history)-1, 0))
	for i := 1; i < len(history); i++ {
		if p, ok := buildPoint(history[i-1], history[i]); ok {
			points = append(points, p)
		}
	}
	return points
}

func buildPoint(prev, cur Snapshot) (SeriesPoint, bool) {
	elapsed := cur.CapturedAt.Sub(prev.CapturedAt).Seconds()
	if elapsed <= 0 {
		return SeriesPoint{}, false
	}

	perMin := func(d NullFloat) NullFloat {
		return d.Map(func(v float64) float64 { return v * 60 / elapsed })
	}

	reqs := counterDelta(prev.APIRequestsTotal, cur.APIRequestsTotal)
	errs := counterDelta(prev.APIErrorsTotal, cur.APIErrorsTotal)
	cpu := sub(cur.CPUSeconds(), prev.CPUSeconds())
	if cpu.Valid && cpu.Float64 < 0 {
		cpu = Null
	}

	latency := histogramDelta(prev.LatencyBuckets, cur.LatencyBuckets)
	toMs := func(v float64) float64 { return v * 1000 }

	return SeriesPoint{
		Timestamp:      cur.CapturedAt,
		RequestsPerMin: perMin(reqs),
		ErrorRatePct:   errorRate(reqs, errs),
		LatencyP50Ms:   Quantile(latency, 0.5).Map(toMs),
		LatencyP95Ms:   Quantile(latency, 0.95).Map(toMs),
		CPUPct:         cpu.Map(func(v float64) float64 { return v / elapsed * 100 }),
		MemoryMB:       cur.ResidentMemoryBytes.Map(func(v float64) float64 { return v / bytesInMiB }),
		UptimeSeconds:  cur.UptimeSeconds,
		MessagesPerMin: perMin(counterDelta(prev.MessagesTotal, cur.MessagesTotal)),
	}, true
}

// counterDelta is Null when the counter went backwards (process restart).
func counterDelta(prev, cur float64) NullFloat {
	if cur < prev {
		return Null
	}
	return Some(cur - prev)
}

func errorRate(reqs, errs NullFloat) NullFloat {
	if !reqs.Valid {
		return Null
	}
	if reqs.Float64 <= 0 {
		return Some(0)
	}
	if !errs.Valid {
		return Null
	}
	return Some(errs.Float64 / reqs.Float64 * 100)
}

// histogramDelta returns the per-bucket increase, or cur itself when the
// layouts differ or any bucket went backwards.
func histogramDelta(prev, cur []prometheus.Bucket) []prometheus.Bucket {
	if len(prev) != len(cur) {
		return cur
	}
	delta := make([]prometheus.Bucket, len(cur))
	for i := range cur {
		d := cur[i].Count - prev[i].Count
		if cur[i].UpperBound != prev[i].UpperBound || d < 0 {
			return cur
		}
		delta[i] = prometheus.Bucket{UpperBound: cur[i].UpperBound, Count: d}
	}
	return delta
}
