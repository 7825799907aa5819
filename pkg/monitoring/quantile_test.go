// SPDX-License-Identifier: GPL-3.0-or-later

package monitoring

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/souqline/souqline/go/telemetry/pkg/metrix"
	"github.com/souqline/souqline/go/telemetry/pkg/prometheus"
)

var inf = math.Inf(1)

func TestQuantile(t *testing.T) {
	buckets := []prometheus.Bucket{{UpperBound: 0.1, Count: 2}, {UpperBound: 0.5, Count: 6}, {UpperBound: 1, Count: 8}, {UpperBound: inf, Count: 10}}

	tests := map[string]struct {
		buckets []prometheus.Bucket
		q       float64
		want    NullFloat
	}{
		"zero quantile":              {buckets: buckets, q: 0, want: Some(0)},
		"inside first bucket":        {buckets: buckets, q: 0.1, want: Some(0.05)},
		"median":                     {buckets: buckets, q: 0.5, want: Some(0.4)},
		"upper bucket interpolation": {buckets: buckets, q: 0.7, want: Some(0.75)},
		"lands in inf bucket":        {buckets: buckets, q: 0.95, want: Some(1)},
		"q above one is clamped":     {buckets: buckets, q: 2, want: Some(1)},
		"no buckets":                 {q: 0.5, want: Null},
		"no observations":            {buckets: []prometheus.Bucket{{UpperBound: 0.1, Count: 0}, {UpperBound: inf, Count: 0}}, q: 0.5, want: Null},
		"nan quantile":               {buckets: buckets, q: math.NaN(), want: Null},
		"only inf bucket":            {buckets: []prometheus.Bucket{{UpperBound: inf, Count: 3}}, q: 0.5, want: Some(0)},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			got := Quantile(test.buckets, test.q)

			assert.Equal(t, test.want.Valid, got.Valid)
			assert.InDelta(t, test.want.Float64, got.Float64, 1e-9)
		})
	}
}

func TestQuantile_Monotonic(t *testing.T) {
	buckets := []prometheus.Bucket{{UpperBound: 0.005, Count: 0}, {UpperBound: 0.01, Count: 1}, {UpperBound: 0.05, Count: 1}, {UpperBound: 0.1, Count: 7}, {UpperBound: 0.5, Count: 7}, {UpperBound: 1, Count: 9}, {UpperBound: inf, Count: 12}}

	prev := -1.0
	for q := 0.0; q <= 1.0; q += 0.01 {
		v, ok := Quantile(buckets, q).Get()
		require.True(t, ok)
		assert.GreaterOrEqual(t, v, prev, "q=%v", q)
		prev = v
	}
}

func TestQuantile_FromRenderedHistogram(t *testing.T) {
	reg := metrix.NewRegistry(metrix.WithDefinitions(
		metrix.HistogramDef("app_api_request_duration_seconds", "Latency.", nil, "route"),
	))
	for _, v := range []float64{0.010, 0.050, 0.050, 0.800} {
		reg.Observe("app_api_request_duration_seconds", metrix.Labels{"route": "/x"}, v)
	}
	buckets := prometheus.Parse([]byte(reg.Text())).Histogram("app_api_request_duration_seconds")
	require.NotEmpty(t, buckets)
	assert.Equal(t, 4.0, buckets[len(buckets)-1].Count)

	p50, ok := Quantile(buckets, 0.5).Get()
	require.True(t, ok)
	assert.InDelta(t, 0.0375, p50, 1e-9)
	assert.Greater(t, p50, 0.025)
	assert.LessOrEqual(t, p50, 0.05)

	p95, ok := Quantile(buckets, 0.95).Get()
	require.True(t, ok)
	assert.InDelta(t, 0.9, p95, 1e-9)
	assert.GreaterOrEqual(t, p95, 0.5)

	lo, _ := Quantile(buckets, 0).Get()
	hi, _ := Quantile(buckets, 1).Get()
	assert.LessOrEqual(t, lo, p50)
	assert.LessOrEqual(t, p50, hi)
}
