// SPDX-License-Identifier: GPL-3.0-or-later

package metrix

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"google.golang.org/protobuf/proto"
)

var helpEscaper = strings.NewReplacer(`\`, `\\`, "\n", `\n`)

// Render writes every registered family in the text exposition format.
// Families are ordered by name, series by canonical label key. Families
// without series only contribute their HELP and TYPE lines.
//
// Each call first bumps the scrape counter (if configured) and runs the
// gauge collectors. Series are read one at a time, so different series may
// reflect slightly different instants.
func (r *Registry) Render(w io.Writer) error {
	if r == nil {
		return nil
	}
	if r.scrapeCounter != "" {
		r.Inc(r.scrapeCounter, nil)
	}
	r.collect()

	bw := bufio.NewWriter(w)
	for _, mf := range r.gather() {
		if len(mf.Metric) == 0 {
			if _, err := fmt.Fprintf(bw, "# HELP %s %s\n# TYPE %s %s\n",
				mf.GetName(), helpEscaper.Replace(mf.GetHelp()), mf.GetName(), strings.ToLower(mf.GetType().String())); err != nil {
				return err
			}
			continue
		}
		if _, err := expfmt.MetricFamilyToText(bw, mf); err != nil {
			return fmt.Errorf("metrix: render '%s': %w", mf.GetName(), err)
		}
	}
	return bw.Flush()
}

// Text is Render into a string.
func (r *Registry) Text() string {
	var buf bytes.Buffer
	_ = r.Render(&buf)
	return buf.String()
}

// Gather returns the families that have at least one series, in render order.
func (r *Registry) Gather() []*dto.MetricFamily {
	if r == nil {
		return nil
	}
	var out []*dto.MetricFamily
	for _, mf := range r.gather() {
		if len(mf.Metric) > 0 {
			out = append(out, mf)
		}
	}
	return out
}

func (r *Registry) gather() []*dto.MetricFamily {
	defs := r.Definitions()
	out := make([]*dto.MetricFamily, 0, len(defs))

	for _, def := range defs {
		f := r.family(def.Name, def.Kind)
		if f == nil {
			continue
		}
		mf := &dto.MetricFamily{
			Name: proto.String(def.Name),
			Help: proto.String(def.Help),
			Type: metricType(def.Kind).Enum(),
		}
		for _, s := range f.snapshotSeries() {
			mf.Metric = append(mf.Metric, f.toMetric(s))
		}
		out = append(out, mf)
	}
	return out
}

func (f *family) toMetric(s *series) *dto.Metric {
	m := &dto.Metric{Label: make([]*dto.LabelPair, 0, len(s.labels))}
	for _, l := range s.labels {
		m.Label = append(m.Label, &dto.LabelPair{Name: proto.String(l.Name), Value: proto.String(l.Value)})
	}

	switch f.def.Kind {
	case KindCounter:
		m.Counter = &dto.Counter{Value: proto.Float64(s.value())}
	case KindGauge:
		m.Gauge = &dto.Gauge{Value: proto.Float64(s.value())}
	case KindHistogram:
		hv := s.hist.load(f.def.Buckets)
		h := &dto.Histogram{
			SampleCount: proto.Uint64(hv.Count),
			SampleSum:   proto.Float64(hv.Sum),
			Bucket:      make([]*dto.Bucket, 0, len(hv.Buckets)),
		}
		for _, b := range hv.Buckets {
			h.Bucket = append(h.Bucket, &dto.Bucket{
				UpperBound:      proto.Float64(b.UpperBound),
				CumulativeCount: proto.Uint64(b.CumulativeCount),
			})
		}
		m.Histogram = h
	}
	return m
}

func metricType(k Kind) dto.MetricType {
	switch k {
	case KindCounter:
		return dto.MetricType_COUNTER
	case KindGauge:
		return dto.MetricType_GAUGE
	case KindHistogram:
		return dto.MetricType_HISTOGRAM
	default:
		return dto.MetricType_UNTYPED
	}
}
