// SPDX-License-Identifier: GPL-3.0-or-later

package metrix

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/prometheus/common/model"
)

// Kind is the metric type of a Definition.
type Kind uint8

const (
	KindCounter Kind = iota + 1
	KindGauge
	KindHistogram
)

func (k Kind) String() string {
	switch k {
	case KindCounter:
		return "counter"
	case KindGauge:
		return "gauge"
	case KindHistogram:
		return "histogram"
	default:
		return "unknown"
	}
}

// DefBuckets are the default request latency buckets in seconds, 5ms to 10s.
var DefBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}

// Definition describes one metric family. It is immutable once registered.
type Definition struct {
	Name       string
	Help       string
	Kind       Kind
	LabelNames []string
	// Buckets are the ascending finite upper bounds of a histogram. The +Inf
	// bucket is implicit.
	Buckets []float64
}

func CounterDef(name, help string, labelNames ...string) Definition {
	return Definition{Name: name, Help: help, Kind: KindCounter, LabelNames: labelNames}
}

func GaugeDef(name, help string, labelNames ...string) Definition {
	return Definition{Name: name, Help: help, Kind: KindGauge, LabelNames: labelNames}
}

// HistogramDef declares a histogram; nil buckets select DefBuckets.
func HistogramDef(name, help string, buckets []float64, labelNames ...string) Definition {
	if buckets == nil {
		buckets = DefBuckets
	}
	return Definition{Name: name, Help: help, Kind: KindHistogram, LabelNames: labelNames, Buckets: buckets}
}

func (d Definition) validate() error {
	if !model.IsValidLegacyMetricName(d.Name) {
		return fmt.Errorf("%w: '%s'", errInvalidMetricName, d.Name)
	}

	switch d.Kind {
	case KindCounter, KindGauge, KindHistogram:
	default:
		return fmt.Errorf("%w: %d (metric '%s')", errInvalidKind, d.Kind, d.Name)
	}

	seen := make(map[string]bool, len(d.LabelNames))
	for _, name := range d.LabelNames {
		if !model.LabelName(name).IsValidLegacy() {
			return fmt.Errorf("%w: '%s' (metric '%s')", errInvalidLabelName, name, d.Name)
		}
		if strings.HasPrefix(name, "__") || (d.Kind == KindHistogram && name == model.BucketLabel) {
			return fmt.Errorf("%w: '%s' (metric '%s')", errReservedLabelName, name, d.Name)
		}
		if seen[name] {
			return fmt.Errorf("%w: '%s' (metric '%s')", errDuplicateLabelName, name, d.Name)
		}
		seen[name] = true
	}

	if d.Kind == KindHistogram {
		if len(d.Buckets) == 0 {
			return fmt.Errorf("%w: no buckets (metric '%s')", errHistogramBuckets, d.Name)
		}
		for i, b := range d.Buckets {
			if math.IsNaN(b) || math.IsInf(b, 0) {
				return fmt.Errorf("%w: bound %v (metric '%s')", errHistogramBuckets, b, d.Name)
			}
			if i > 0 && b <= d.Buckets[i-1] {
				return fmt.Errorf("%w: bound %v after %v (metric '%s')", errHistogramBuckets, b, d.Buckets[i-1], d.Name)
			}
		}
	}

	return nil
}

// clone detaches the definition from caller-owned slices.
func (d Definition) clone() Definition {
	d.LabelNames = slices.Clone(d.LabelNames)
	d.Buckets = slices.Clone(d.Buckets)
	return d
}
