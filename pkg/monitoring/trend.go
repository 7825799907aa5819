// SPDX-License-Identifier: GPL-3.0-or-later

package monitoring

import (
	"cmp"
	"math"
	"slices"
	"time"
)

type TrendDirection string

const (
	TrendUp   TrendDirection = "up"
	TrendDown TrendDirection = "down"
	TrendFlat TrendDirection = "flat"
)

// TrendDelta compares the average of the older half of a sample list with
// the newer half.
type TrendDelta struct {
	Direction   TrendDirection `json:"direction"`
	Percentage  NullFloat      `json:"percentage"`
	PreviousAvg NullFloat      `json:"previous_avg"`
	CurrentAvg  NullFloat      `json:"current_avg"`
	Samples     int            `json:"samples"`
}

// Sufficient reports whether there were enough samples to compare.
func (t TrendDelta) Sufficient() bool {
	return t.CurrentAvg.Valid
}

// Trend classifies samples, ignoring absent ones. With fewer than
// opts.MinSamples present values it is flat with no averages. An odd count
// gives the newer half the extra sample.
func Trend(samples []NullFloat, opts TrendOptions) TrendDelta {
	values := presentValues(samples)
	delta := TrendDelta{Direction: TrendFlat, Samples: len(values)}
	if len(values) < max(opts.MinSamples, 2) {
		return delta
	}

	mid := len(values) / 2
	prev, cur := mean(values[:mid]), mean(values[mid:])
	delta.PreviousAvg, delta.CurrentAvg = Some(prev), Some(cur)

	diff := cur - prev
	switch {
	case math.Abs(diff) <= max(math.Abs(prev), 1)*opts.NoiseFloor:
	case diff > 0:
		delta.Direction = TrendUp
	default:
		delta.Direction = TrendDown
	}
	if prev != 0 {
		delta.Percentage = Some(diff / math.Abs(prev) * 100)
	}

	return delta
}

// TimedValue is one sample of a series.
type TimedValue struct {
	Timestamp time.Time
	Value     NullFloat
}

type Peak struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// Peaks finds local maxima (not lower than either present neighbour) that
// exceed max(average*opts.Factor, opts.MinValue). If none does, the global
// maximum is used when it clears the same threshold. At most opts.Max peaks
// are returned, the highest ones, in chronological order.
func Peaks(points []TimedValue, opts PeakOptions) []Peak {
	var present []Peak
	for _, p := range points {
		if v, ok := p.Value.Get(); ok {
			present = append(present, Peak{Timestamp: p.Timestamp, Value: v})
		}
	}
	if len(present) == 0 {
		return nil
	}

	var sum float64
	for _, p := range present {
		sum += p.Value
	}
	threshold := max(sum/float64(len(present))*opts.Factor, opts.MinValue)

	var peaks []Peak
	for i, p := range present {
		if p.Value <= threshold {
			continue
		}
		if i > 0 && present[i-1].Value > p.Value {
			continue
		}
		if i < len(present)-1 && present[i+1].Value > p.Value {
			continue
		}
		peaks = append(peaks, p)
	}

	if len(peaks) == 0 {
		top := slices.MaxFunc(present, func(a, b Peak) int { return cmp.Compare(a.Value, b.Value) })
		if top.Value <= threshold {
			return nil
		}
		return []Peak{top}
	}

	if limit := max(opts.Max, 1); len(peaks) > limit {
		slices.SortStableFunc(peaks, func(a, b Peak) int { return cmp.Compare(b.Value, a.Value) })
		peaks = peaks[:limit]
	}
	slices.SortStableFunc(peaks, func(a, b Peak) int { return a.Timestamp.Compare(b.Timestamp) })

	return peaks
}

func presentValues(samples []NullFloat) []float64 {
	values := make([]float64, 0, len(samples))
	for _, s := range samples {
		if v, ok := s.Get(); ok {
			values = append(values, v)
		}
	}
	return values
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
