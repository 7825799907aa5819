// SPDX-License-Identifier: GPL-3.0-or-later

// Package monitoring turns scraped exposition text into a bounded snapshot
// history, derives per-interval rates and latencies from it, and narrates
// trends, peaks and error rates as insights.
package monitoring

import (
	"time"

	"github.com/google/uuid"

	"github.com/souqline/souqline/go/telemetry/logger"
	"github.com/souqline/souqline/go/telemetry/pkg/prometheus"
)

type (
	Analyzer struct {
		*logger.Logger

		cfg     Config
		history *History
	}

	Report struct {
		ID          string        `json:"id"`
		GeneratedAt time.Time     `json:"generated_at"`
		Window      string        `json:"window"`
		Snapshots   int           `json:"snapshots"`
		Summary     ReportSummary `json:"summary"`
		Series      []SeriesPoint `json:"series"`
		Insights    []Insight     `json:"insights"`
	}

	ReportSummary struct {
		Requests TrendDelta `json:"requests_per_min"`
		Errors   TrendDelta `json:"error_rate_pct"`
		Latency  TrendDelta `json:"latency_p95_ms"`
		CPU      TrendDelta `json:"cpu_pct"`
		Memory   TrendDelta `json:"memory_mb"`
	}
)

func NewAnalyzer(cfg Config) *Analyzer {
	return &Analyzer{
		Logger:  logger.New().With("component", "monitoring"),
		cfg:     cfg,
		history: NewHistory(cfg.accumulatePolicy()),
	}
}

func (a *Analyzer) Config() Config {
	return a.cfg
}

func (a *Analyzer) History() *History {
	return a.history
}

// Ingest parses one scrape captured at the given time and offers it to the
// history. It reports whether the snapshot was kept.
func (a *Analyzer) Ingest(raw []byte, overrides *SummaryOverrides, capturedAt time.Time) bool {
	res := prometheus.ParseText(raw)
	if res.Stats.Skipped > 0 {
		a.Debugf("scrape at %s: skipped %d of %d lines", capturedAt.Format(time.RFC3339), res.Stats.Skipped, res.Stats.Lines)
	}
	if res.Stats.Samples == 0 {
		a.Warningf("scrape at %s has no samples", capturedAt.Format(time.RFC3339))
	}

	if name := a.cfg.Schema.APIDuration; !histogramTyped(res.Metadata, name) {
		a.Warningf("scrape at %s: '%s' is declared as %s, not a histogram, latency ignored",
			capturedAt.Format(time.RFC3339), name, res.Metadata.Type(name))
	}

	snap := newSnapshot(res, overrides, capturedAt, a.cfg.Schema)
	if !a.history.Append(snap) {
		a.Debugf("scrape at %s: duplicate or unchanged, not added to history", capturedAt.Format(time.RFC3339))
		return false
	}
	return true
}

// Report builds the series over the configured window, ending at the newest
// snapshot, and the insights derived from it.
func (a *Analyzer) Report(now time.Time) Report {
	snaps := a.history.Snapshots()
	series := BuildSeries(snaps, a.cfg.SeriesWindow.Duration())

	trend := func(get func(SeriesPoint) NullFloat) TrendDelta {
		return Trend(column(series, get), a.cfg.Trend)
	}

	if series == nil {
		series = []SeriesPoint{}
	}
	return Report{
		ID:          uuid.NewString(),
		GeneratedAt: now,
		Window:      a.cfg.SeriesWindow.String(),
		Snapshots:   len(snaps),
		Summary: ReportSummary{
			Requests: trend(func(p SeriesPoint) NullFloat { return p.RequestsPerMin }),
			Errors:   trend(func(p SeriesPoint) NullFloat { return p.ErrorRatePct }),
			Latency:  trend(func(p SeriesPoint) NullFloat { return p.LatencyP95Ms }),
			CPU:      trend(func(p SeriesPoint) NullFloat { return p.CPUPct }),
			Memory:   trend(func(p SeriesPoint) NullFloat { return p.MemoryMB }),
		},
		Series:   series,
		Insights: BuildInsights(series, a.cfg),
	}
}
