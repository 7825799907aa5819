// SPDX-License-Identifier: GPL-3.0-or-later

package metrix

import (
	"math"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
)

// stripeCount spreads series creation across independent locks.
const stripeCount = 16

type family struct {
	def    Definition
	schema labelSchema

	stripes [stripeCount]stripe
}

type stripe struct {
	mu     sync.RWMutex // write-locked only to create a series
	series map[string]*series
}

// series is one label set of a family. Counters and gauges keep their value
// in bits; histograms use hist.
type series struct {
	key    string
	labels []Label

	bits atomic.Uint64
	hist *histogramState
}

func newFamily(def Definition) *family {
	f := &family{def: def, schema: newLabelSchema(def.LabelNames)}
	for i := range f.stripes {
		f.stripes[i].series = make(map[string]*series)
	}
	return f
}

// getOrCreate returns the series for labels, creating it on first use.
func (f *family) getOrCreate(labels Labels) *series {
	values, key := f.schema.normalize(labels)
	st := &f.stripes[xxhash.Sum64String(key)%stripeCount]

	st.mu.RLock()
	s, ok := st.series[key]
	st.mu.RUnlock()
	if ok {
		return s
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	if s, ok = st.series[key]; ok {
		return s
	}
	s = &series{key: key, labels: f.schema.labels(values)}
	if f.def.Kind == KindHistogram {
		s.hist = newHistogramState(len(f.def.Buckets))
	}
	st.series[key] = s

	return s
}

func (f *family) lookup(labels Labels) (*series, bool) {
	_, key := f.schema.normalize(labels)
	st := &f.stripes[xxhash.Sum64String(key)%stripeCount]

	st.mu.RLock()
	defer st.mu.RUnlock()

	s, ok := st.series[key]
	return s, ok
}

// snapshotSeries returns the family's series ordered by canonical key.
func (f *family) snapshotSeries() []*series {
	var out []*series
	for i := range f.stripes {
		st := &f.stripes[i]
		st.mu.RLock()
		for _, s := range st.series {
			out = append(out, s)
		}
		st.mu.RUnlock()
	}
	slices.SortFunc(out, func(a, b *series) int {
		switch {
		case a.key < b.key:
			return -1
		case a.key > b.key:
			return 1
		}
		return 0
	})
	return out
}

func (s *series) add(v float64) {
	for {
		old := s.bits.Load()
		next := math.Float64bits(math.Float64frombits(old) + v)
		if s.bits.CompareAndSwap(old, next) {
			return
		}
	}
}

func (s *series) raise(v float64) {
	for {
		old := s.bits.Load()
		if math.Float64frombits(old) >= v {
			return
		}
		if s.bits.CompareAndSwap(old, math.Float64bits(v)) {
			return
		}
	}
}

func (s *series) set(v float64) {
	s.bits.Store(math.Float64bits(v))
}

func (s *series) value() float64 {
	return math.Float64frombits(s.bits.Load())
}
