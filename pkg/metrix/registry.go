// SPDX-License-Identifier: GPL-3.0-or-later

package metrix

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"sync"
	"sync/atomic"
)

// Registry holds the live counter, gauge and histogram series of one process.
//
// A process owns exactly one Registry, created by its composition root and
// handed to instrumented code. All write methods are safe for concurrent use,
// never block on I/O and silently ignore invalid input. A nil *Registry is a
// valid no-op handle for code running outside the serving process.
type Registry struct {
	mu            sync.RWMutex // serializes registration, guards collectors
	families      atomic.Pointer[familyMap]
	collectors    []Collector
	scrapeCounter string
}

// familyMap is never modified once published; Register swaps in a copy.
type familyMap map[string]*family

// Collector refreshes externally sourced values right before the registry renders.
type Collector interface {
	Collect(Setter)
}

// Setter is the write surface handed to collectors.
type Setter interface {
	// Set overwrites a gauge.
	Set(name string, labels Labels, value float64)
	// SetTotal moves a counter forward to an externally tracked total.
	SetTotal(name string, labels Labels, total float64)
}

type CollectorFunc func(Setter)

func (f CollectorFunc) Collect(s Setter) { f(s) }

func NewRegistry(opts ...Option) *Registry {
	r := &Registry{}
	r.families.Store(&familyMap{})
	for _, opt := range opts {
		opt.apply(r)
	}
	return r
}

// Register adds a metric definition. Names are unique per registry.
func (r *Registry) Register(def Definition) error {
	if r == nil {
		return nil
	}
	if err := def.validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	cur := *r.families.Load()
	if _, ok := cur[def.Name]; ok {
		return fmt.Errorf("%w: '%s'", errDuplicateMetric, def.Name)
	}
	next := maps.Clone(cur)
	next[def.Name] = newFamily(def.clone())
	r.families.Store(&next)

	return nil
}

func (r *Registry) MustRegister(defs ...Definition) {
	for _, def := range defs {
		if err := r.Register(def); err != nil {
			panic(err)
		}
	}
}

// AddCollector registers c to run at the start of every render.
func (r *Registry) AddCollector(c Collector) {
	if r == nil || c == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.collectors = append(r.collectors, c)
}

// Definitions returns the registered definitions ordered by name.
func (r *Registry) Definitions() []Definition {
	if r == nil {
		return nil
	}
	families := *r.families.Load()

	defs := make([]Definition, 0, len(families))
	for _, f := range families {
		defs = append(defs, f.def.clone())
	}
	slices.SortFunc(defs, func(a, b Definition) int {
		switch {
		case a.Name < b.Name:
			return -1
		case a.Name > b.Name:
			return 1
		}
		return 0
	})
	return defs
}

// Add increases a counter. Non-finite and non-positive amounts are ignored.
func (r *Registry) Add(name string, labels Labels, amount float64) {
	if !(amount > 0) || math.IsInf(amount, 0) {
		return
	}
	if f := r.family(name, KindCounter); f != nil {
		f.getOrCreate(labels).add(amount)
	}
}

// Inc increases a counter by one.
func (r *Registry) Inc(name string, labels Labels) {
	r.Add(name, labels, 1)
}

// Observe records one histogram sample. Non-finite and negative values are ignored.
func (r *Registry) Observe(name string, labels Labels, value float64) {
	if !(value >= 0) || math.IsInf(value, 0) {
		return
	}
	if f := r.family(name, KindHistogram); f != nil {
		f.getOrCreate(labels).hist.observe(f.def.Buckets, value)
	}
}

// Set overwrites a gauge. Non-finite values are ignored.
func (r *Registry) Set(name string, labels Labels, value float64) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return
	}
	if f := r.family(name, KindGauge); f != nil {
		f.getOrCreate(labels).set(value)
	}
}

// SetTotal raises a counter to total. Totals below the current value are
// ignored so the counter stays monotonic.
func (r *Registry) SetTotal(name string, labels Labels, total float64) {
	if math.IsNaN(total) || math.IsInf(total, 0) || total < 0 {
		return
	}
	if f := r.family(name, KindCounter); f != nil {
		f.getOrCreate(labels).raise(total)
	}
}

// Value returns the current value of a counter or gauge series.
func (r *Registry) Value(name string, labels Labels) (float64, bool) {
	f := r.family(name, 0)
	if f == nil || f.def.Kind == KindHistogram {
		return 0, false
	}
	s, ok := f.lookup(labels)
	if !ok {
		return 0, false
	}
	return s.value(), true
}

// Histogram returns a copy of a histogram series.
func (r *Registry) Histogram(name string, labels Labels) (HistogramValue, bool) {
	f := r.family(name, KindHistogram)
	if f == nil {
		return HistogramValue{}, false
	}
	s, ok := f.lookup(labels)
	if !ok {
		return HistogramValue{}, false
	}
	return s.hist.load(f.def.Buckets), true
}

// family looks a family up by name; kind 0 matches any kind.
func (r *Registry) family(name string, kind Kind) *family {
	if r == nil {
		return nil
	}
	f := (*r.families.Load())[name]

	if f == nil || (kind != 0 && f.def.Kind != kind) {
		return nil
	}
	return f
}

func (r *Registry) collect() {
	r.mu.RLock()
	collectors := slices.Clone(r.collectors)
	r.mu.RUnlock()

	for _, c := range collectors {
		c.Collect(r)
	}
}
