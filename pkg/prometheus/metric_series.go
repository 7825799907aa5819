// SPDX-License-Identifier: GPL-3.0-or-later

package prometheus

import (
	"math"
	"sort"

	"github.com/prometheus/prometheus/model/labels"
)

type (
	// SeriesSample is a pair of label set and value
	SeriesSample struct {
		Labels labels.Labels
		Value  float64
	}

	// Series is a list of SeriesSample
	Series []SeriesSample
)

// Name the __name__ label value
func (s SeriesSample) Name() string {
	return s.Labels.Get(labels.MetricName)
}

// Add appends a metric.
func (s *Series) Add(kv SeriesSample) {
	*s = append(*s, kv)
}

// Sort sorts data by name, keeping the input order of samples sharing a name.
func (s Series) Sort() {
	sort.Stable(s)
}

// Len returns metric length.
func (s Series) Len() int {
	return len(s)
}

// Less reports whether the element with
// index i should sort before the element with index j.
func (s Series) Less(i, j int) bool {
	return s[i].Name() < s[j].Name()
}

// Swap swaps the elements with indexes i and j.
func (s Series) Swap(i, j int) {
	s[i], s[j] = s[j], s[i]
}

// FindByName finds metrics where it's __name__ label matches given name.
// It expects the metrics is sorted.
// Complexity: O(log(N))
func (s Series) FindByName(name string) Series {
	from := sort.Search(len(s), func(i int) bool {
		return s[i].Name() >= name
	})
	if from == len(s) || s[from].Name() != name { // not found
		return Series{}
	}
	until := from + 1
	for until < len(s) && s[until].Name() == name {
		until++
	}
	return s[from:until]
}

// Sum adds up the values of all samples named name, across every label set.
// NaN samples are skipped. The second result is false when there is no such
// sample. It expects the metrics is sorted.
func (s Series) Sum(name string) (float64, bool) {
	found := s.FindByName(name)
	if len(found) == 0 {
		return 0, false
	}
	var sum float64
	for _, kv := range found {
		if !math.IsNaN(kv.Value) {
			sum += kv.Value
		}
	}
	return sum, true
}
