// SPDX-License-Identifier: GPL-3.0-or-later

package prometheus

import (
	"math"
	"slices"
	"strconv"

	"github.com/prometheus/common/model"
)

// Bucket is one cumulative histogram bucket.
type Bucket struct {
	UpperBound float64
	Count      float64
}

// Histogram folds the <name>_bucket samples of every label set into a single
// cumulative bucket list. Samples are grouped by their le bound and summed,
// buckets are sorted by bound with +Inf last, and counts are made
// non-decreasing with a running max. When the text carries no +Inf bucket it
// is synthesized from <name>_count (or the last finite bucket).
// It expects the metrics is sorted. Returns nil when there are no buckets.
func (s Series) Histogram(name string) []Bucket {
	byBound := make(map[float64]float64)
	for _, kv := range s.FindByName(name + "_bucket") {
		le := kv.Labels.Get(model.BucketLabel)
		if le == "" {
			continue
		}
		bound, err := strconv.ParseFloat(le, 64)
		if err != nil || math.IsNaN(bound) || math.IsNaN(kv.Value) {
			continue
		}
		byBound[bound] += kv.Value
	}
	if len(byBound) == 0 {
		return nil
	}

	buckets := make([]Bucket, 0, len(byBound)+1)
	for bound, count := range byBound {
		buckets = append(buckets, Bucket{UpperBound: bound, Count: count})
	}
	slices.SortFunc(buckets, func(a, b Bucket) int {
		switch {
		case a.UpperBound < b.UpperBound:
			return -1
		case a.UpperBound > b.UpperBound:
			return 1
		}
		return 0
	})

	if last := buckets[len(buckets)-1]; !math.IsInf(last.UpperBound, 1) {
		total, ok := s.Sum(name + "_count")
		if !ok {
			total = last.Count
		}
		buckets = append(buckets, Bucket{UpperBound: math.Inf(1), Count: total})
	}

	for i := 1; i < len(buckets); i++ {
		buckets[i].Count = max(buckets[i].Count, buckets[i-1].Count)
	}

	return buckets
}
