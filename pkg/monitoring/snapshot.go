// SPDX-License-Identifier: GPL-3.0-or-later

package monitoring

import (
	"sort"
	"time"

	"github.com/prometheus/common/model"

	"github.com/souqline/souqline/go/telemetry/pkg/prometheus"
)

// Snapshot is one parsed scrape. Counters are summed across label sets.
type Snapshot struct {
	CapturedAt time.Time

	APIRequestsTotal float64
	APIErrorsTotal   float64
	MessagesTotal    float64
	ScrapesTotal     float64

	UptimeSeconds       NullFloat
	ResidentMemoryBytes NullFloat
	CPUUserSeconds      NullFloat
	CPUSystemSeconds    NullFloat

	// LatencyBuckets is the request duration histogram, +Inf last.
	LatencyBuckets []prometheus.Bucket
}

// SummaryOverrides replace headline totals parsed from the text, e.g. when the
// server also reports them through a cheaper summary endpoint.
type SummaryOverrides struct {
	APIRequestsTotal NullFloat
	APIErrorsTotal   NullFloat
	MessagesTotal    NullFloat
}

// CreateSnapshot parses raw exposition text into a Snapshot. Missing metrics
// read as zero counters and absent gauges.
func CreateSnapshot(raw []byte, overrides *SummaryOverrides, capturedAt time.Time, schema Schema) Snapshot {
	return newSnapshot(prometheus.ParseText(raw), overrides, capturedAt, schema)
}

func newSnapshot(res prometheus.Result, overrides *SummaryOverrides, capturedAt time.Time, schema Schema) Snapshot {
	series := res.Series
	if !sort.IsSorted(series) {
		series.Sort()
	}

	counter := func(name string) float64 {
		v, _ := series.Sum(name)
		return v
	}
	gauge := func(name string) NullFloat {
		if v, ok := series.Sum(name); ok {
			return Some(v)
		}
		return Null
	}

	snap := Snapshot{
		CapturedAt:          capturedAt,
		APIRequestsTotal:    counter(schema.APIRequests),
		APIErrorsTotal:      counter(schema.APIErrors),
		MessagesTotal:       counter(schema.Messages),
		ScrapesTotal:        counter(schema.Scrapes),
		UptimeSeconds:       gauge(schema.Uptime),
		ResidentMemoryBytes: gauge(schema.ResidentMemory),
		CPUUserSeconds:      gauge(schema.CPUUser),
		CPUSystemSeconds:    gauge(schema.CPUSystem),
	}
	if histogramTyped(res.Metadata, schema.APIDuration) {
		snap.LatencyBuckets = series.Histogram(schema.APIDuration)
	}

	if overrides != nil {
		if v, ok := overrides.APIRequestsTotal.Get(); ok {
			snap.APIRequestsTotal = v
		}
		if v, ok := overrides.APIErrorsTotal.Get(); ok {
			snap.APIErrorsTotal = v
		}
		if v, ok := overrides.MessagesTotal.Get(); ok {
			snap.MessagesTotal = v
		}
	}

	return snap
}

// CPUSeconds is user plus system CPU time, absent unless both are known.
func (s Snapshot) CPUSeconds() NullFloat {
	return add(s.CPUUserSeconds, s.CPUSystemSeconds)
}

// histogramTyped reports whether the family may be read as a histogram: it is
// declared as one or not declared at all.
func histogramTyped(md prometheus.Metadata, name string) bool {
	switch md.Type(name) {
	case model.MetricTypeHistogram, model.MetricTypeUnknown:
		return true
	}
	return false
}

func (s Snapshot) sameTotals(other Snapshot) bool {
	return s.APIRequestsTotal == other.APIRequestsTotal &&
		s.APIErrorsTotal == other.APIErrorsTotal &&
		s.MessagesTotal == other.MessagesTotal
}
