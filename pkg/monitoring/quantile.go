// SPDX-License-Identifier: GPL-3.0-or-later

package monitoring

import (
	"math"

	"github.com/souqline/souqline/go/telemetry/pkg/prometheus"
)

// Quantile estimates the q-quantile (0 <= q <= 1) from cumulative buckets
// sorted by bound and ending with +Inf, interpolating linearly inside the
// containing bucket. The lower edge of the first bucket is 0. A quantile
// landing in the +Inf bucket returns the highest finite bound.
// It returns Null when there are no observations.
func Quantile(buckets []prometheus.Bucket, q float64) NullFloat {
	if len(buckets) == 0 || math.IsNaN(q) {
		return Null
	}
	total := buckets[len(buckets)-1].Count
	if !(total > 0) {
		return Null
	}

	q = min(max(q, 0), 1)
	target := q * total

	var prevBound, prevCount float64
	for _, b := range buckets {
		if b.Count >= target {
			if math.IsInf(b.UpperBound, 1) {
				return Some(prevBound)
			}
			var frac float64
			if span := b.Count - prevCount; span > 0 {
				frac = min(max((target-prevCount)/span, 0), 1)
			}
			return Some(prevBound + (b.UpperBound-prevBound)*frac)
		}
		prevBound, prevCount = b.UpperBound, b.Count
	}

	return Some(prevBound)
}
