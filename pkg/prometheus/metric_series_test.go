// SPDX-License-Identifier: GPL-3.0-or-later

package prometheus

import (
	"math"
	"testing"

	"github.com/prometheus/prometheus/model/labels"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSample(value float64, kv ...string) SeriesSample {
	return SeriesSample{Labels: labels.FromStrings(kv...), Value: value}
}

func TestSeries_FindByName(t *testing.T) {
	s := Series{
		newSample(1, labels.MetricName, "b_total"),
		newSample(2, labels.MetricName, "a_total", "x", "1"),
		newSample(3, labels.MetricName, "c_total"),
		newSample(4, labels.MetricName, "a_total", "x", "2"),
	}
	s.Sort()

	tests := map[string]struct {
		name string
		want []float64
	}{
		"keeps input order": {name: "a_total", want: []float64{2, 4}},
		"first name":        {name: "b_total", want: []float64{1}},
		"last name":         {name: "c_total", want: []float64{3}},
		"missing name":      {name: "z_total"},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			var got []float64
			for _, kv := range s.FindByName(test.name) {
				got = append(got, kv.Value)
			}
			assert.Equal(t, test.want, got)
		})
	}
}

func TestSeries_Sum(t *testing.T) {
	s := Parse([]byte(`
app_requests_total{status="200"} 100
app_requests_total{status="500"} 1
app_requests_total{status="503"} NaN
app_uptime_seconds 10
`))

	sum, ok := s.Sum("app_requests_total")
	require.True(t, ok)
	assert.Equal(t, 101.0, sum)

	_, ok = s.Sum("app_missing_total")
	assert.False(t, ok)

	sum, ok = s.Sum("app_uptime_seconds")
	require.True(t, ok)
	assert.Equal(t, 10.0, sum)
}

func TestSeries_Histogram(t *testing.T) {
	tests := map[string]struct {
		input string
		want  []Bucket
	}{
		"sums across label sets": {
			input: `
lat_bucket{route="/a",le="0.1"} 1
lat_bucket{route="/a",le="1"} 2
lat_bucket{route="/a",le="+Inf"} 3
lat_bucket{route="/b",le="0.1"} 4
lat_bucket{route="/b",le="1"} 4
lat_bucket{route="/b",le="+Inf"} 5
`,
			want: []Bucket{{0.1, 5}, {1, 6}, {math.Inf(1), 8}},
		},
		"unordered input and running max": {
			input: `
lat_bucket{le="+Inf"} 5
lat_bucket{le="1"} 2
lat_bucket{le="0.5"} 3
`,
			want: []Bucket{{0.5, 3}, {1, 3}, {math.Inf(1), 5}},
		},
		"inf synthesized from count": {
			input: `
lat_bucket{le="0.1"} 1
lat_bucket{le="1"} 2
lat_count 4
`,
			want: []Bucket{{0.1, 1}, {1, 2}, {math.Inf(1), 4}},
		},
		"inf synthesized from last bucket": {
			input: `
lat_bucket{le="0.1"} 1
lat_bucket{le="1"} 2
`,
			want: []Bucket{{0.1, 1}, {1, 2}, {math.Inf(1), 2}},
		},
		"bad le ignored": {
			input: `
lat_bucket{le="fast"} 9
lat_bucket 9
lat_bucket{le="1"} 2
lat_bucket{le="+Inf"} 2
`,
			want: []Bucket{{1, 2}, {math.Inf(1), 2}},
		},
		"no buckets": {
			input: "lat_count 3\n",
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			got := Parse([]byte(test.input)).Histogram("lat")

			assert.Equal(t, test.want, got)
			for i := 1; i < len(got); i++ {
				assert.LessOrEqual(t, got[i-1].Count, got[i].Count)
			}
		})
	}
}
