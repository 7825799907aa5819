// SPDX-License-Identifier: GPL-3.0-or-later

package monitoring

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

type Tone string

const (
	TonePositive Tone = "positive"
	ToneNeutral  Tone = "neutral"
	ToneWarning  Tone = "warning"
)

type Insight struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Tone        Tone   `json:"tone"`
}

// BuildInsights runs the traffic trend, traffic peak, latency trend and
// error rate checks in that order and keeps the first cfg.Insights.Max
// findings.
func BuildInsights(series []SeriesPoint, cfg Config) []Insight {
	checks := []func([]SeriesPoint, Config) (Insight, bool){
		trafficTrendInsight,
		trafficPeakInsight,
		latencyTrendInsight,
		errorRateInsight,
	}

	var insights []Insight
	for _, check := range checks {
		if len(insights) >= max(cfg.Insights.Max, 1) {
			break
		}
		if in, ok := check(series, cfg); ok {
			insights = append(insights, in)
		}
	}
	return insights
}

func trafficTrendInsight(series []SeriesPoint, cfg Config) (Insight, bool) {
	trend := Trend(column(series, func(p SeriesPoint) NullFloat { return p.RequestsPerMin }), cfg.Trend)

	if !trend.Sufficient() {
		return Insight{
			ID:    "collecting",
			Title: "Collecting data",
			Description: sprintf("Trends need at least %d intervals with traffic data, %d collected so far.",
				max(cfg.Trend.MinSamples, 2), trend.Samples),
			Tone: ToneNeutral,
		}, true
	}

	prev, cur := trend.PreviousAvg.Float64, trend.CurrentAvg.Float64
	switch trend.Direction {
	case TrendUp:
		return Insight{
			ID:          "traffic-up",
			Title:       "Traffic is growing",
			Description: sprintf("Requests rose %s, from %.1f to %.1f per minute.", formatPct(trend.Percentage), prev, cur),
			Tone:        TonePositive,
		}, true
	case TrendDown:
		return Insight{
			ID:          "traffic-down",
			Title:       "Traffic is declining",
			Description: sprintf("Requests fell %s, from %.1f to %.1f per minute.", formatPct(trend.Percentage), prev, cur),
			Tone:        ToneNeutral,
		}, true
	default:
		return Insight{
			ID:          "traffic-steady",
			Title:       "Traffic is steady",
			Description: sprintf("Requests hold at about %.1f per minute.", cur),
			Tone:        ToneNeutral,
		}, true
	}
}

func trafficPeakInsight(series []SeriesPoint, cfg Config) (Insight, bool) {
	points := make([]TimedValue, 0, len(series))
	for _, p := range series {
		points = append(points, TimedValue{Timestamp: p.Timestamp, Value: p.RequestsPerMin})
	}

	peaks := Peaks(points, cfg.Peaks)
	if len(peaks) == 0 {
		return Insight{}, false
	}

	parts := make([]string, 0, len(peaks))
	for _, p := range peaks {
		parts = append(parts, sprintf("%.0f/min at %s", p.Value, p.Timestamp.UTC().Format("15:04")))
	}

	title := "Traffic peak detected"
	if len(peaks) > 1 {
		title = fmt.Sprintf("%d traffic peaks detected", len(peaks))
	}
	return Insight{
		ID:          "traffic-peaks",
		Title:       title,
		Description: "Busiest intervals: " + strings.Join(parts, ", ") + " (UTC).",
		Tone:        ToneNeutral,
	}, true
}

func latencyTrendInsight(series []SeriesPoint, cfg Config) (Insight, bool) {
	trend := Trend(column(series, func(p SeriesPoint) NullFloat { return p.LatencyP95Ms }), cfg.Trend)
	if !trend.Sufficient() {
		return Insight{}, false
	}

	prev, cur := trend.PreviousAvg.Float64, trend.CurrentAvg.Float64
	switch trend.Direction {
	case TrendUp:
		return Insight{
			ID:          "latency-up",
			Title:       "Latency is rising",
			Description: sprintf("p95 latency rose %s, from %.0fms to %.0fms.", formatPct(trend.Percentage), prev, cur),
			Tone:        ToneWarning,
		}, true
	case TrendDown:
		return Insight{
			ID:          "latency-down",
			Title:       "Latency is improving",
			Description: sprintf("p95 latency fell %s, from %.0fms to %.0fms.", formatPct(trend.Percentage), prev, cur),
			Tone:        TonePositive,
		}, true
	default:
		return Insight{
			ID:          "latency-steady",
			Title:       "Latency is stable",
			Description: sprintf("p95 latency holds at about %.0fms.", cur),
			Tone:        TonePositive,
		}, true
	}
}

func errorRateInsight(series []SeriesPoint, cfg Config) (Insight, bool) {
	values := presentValues(column(series, func(p SeriesPoint) NullFloat { return p.ErrorRatePct }))
	if len(values) == 0 {
		return Insight{}, false
	}

	avg := mean(values)
	if avg >= cfg.Insights.ErrorRateWarningPct {
		return Insight{
			ID:          "error-rate-high",
			Title:       "Elevated error rate",
			Description: sprintf("%.2f%% of requests failed on average, at or above the %.2f%% threshold.", avg, cfg.Insights.ErrorRateWarningPct),
			Tone:        ToneWarning,
		}, true
	}
	return Insight{
		ID:          "error-rate-low",
		Title:       "Error rate is low",
		Description: sprintf("%.2f%% of requests failed on average.", avg),
		Tone:        TonePositive,
	}, true
}

func column(series []SeriesPoint, get func(SeriesPoint) NullFloat) []NullFloat {
	values := make([]NullFloat, 0, len(series))
	for _, p := range series {
		values = append(values, get(p))
	}
	return values
}

func formatPct(v NullFloat) string {
	if !v.Valid {
		return "from zero"
	}
	return sprintf("%.1f%%", math.Abs(v.Float64))
}

// sprintf formats numbers with English digit grouping.
func sprintf(format string, a ...any) string {
	return message.NewPrinter(language.English).Sprintf(format, a...)
}
