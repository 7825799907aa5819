// SPDX-License-Identifier: GPL-3.0-or-later

package metrix

import (
	"slices"
	"sync"
)

// Bucket is one cumulative histogram bucket.
type Bucket struct {
	UpperBound      float64
	CumulativeCount uint64
}

// HistogramValue is a point-in-time copy of one histogram series.
// Buckets hold the finite bounds only; the +Inf bucket equals Count.
type HistogramValue struct {
	Count   uint64
	Sum     float64
	Buckets []Bucket
}

type histogramState struct {
	mu         sync.Mutex
	count      uint64
	sum        float64
	cumulative []uint64 // aligned 1:1 with the definition's bounds
}

func newHistogramState(n int) *histogramState {
	return &histogramState{cumulative: make([]uint64, n)}
}

func (h *histogramState) observe(bounds []float64, v float64) {
	idx := findHistogramBucket(bounds, v)

	h.mu.Lock()
	defer h.mu.Unlock()

	for i := idx; i < len(h.cumulative); i++ {
		h.cumulative[i]++
	}
	h.count++
	h.sum += v
}

func (h *histogramState) load(bounds []float64) HistogramValue {
	h.mu.Lock()
	defer h.mu.Unlock()

	hv := HistogramValue{Count: h.count, Sum: h.sum, Buckets: make([]Bucket, len(bounds))}
	for i, ub := range bounds {
		hv.Buckets[i] = Bucket{UpperBound: ub, CumulativeCount: h.cumulative[i]}
	}
	return hv
}

// findHistogramBucket returns the index of the first bound >= value, or
// len(bounds) when only +Inf holds it.
func findHistogramBucket(bounds []float64, value float64) int {
	n := len(bounds)
	if n == 0 || value <= bounds[0] {
		return 0
	}
	if value > bounds[n-1] {
		return n
	}
	if n < 35 {
		for i, b := range bounds {
			if value <= b {
				return i
			}
		}
		return n
	}
	idx, _ := slices.BinarySearch(bounds, value)
	return idx
}
