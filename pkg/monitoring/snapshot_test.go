// SPDX-License-Identifier: GPL-3.0-or-later

package monitoring

import (
	"math"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/souqline/souqline/go/telemetry/pkg/prometheus"
)

var (
	dataScrape, _ = os.ReadFile("testdata/scrape.txt")

	testEpoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
)

func Test_testDataIsValid(t *testing.T) {
	for name, data := range map[string][]byte{
		"dataScrape": dataScrape,
	} {
		require.NotNilf(t, data, name)
	}
}

func TestCreateSnapshot(t *testing.T) {
	snap := CreateSnapshot(dataScrape, nil, testEpoch, DefaultSchema())

	assert.Equal(t, testEpoch, snap.CapturedAt)
	assert.Equal(t, 300.0, snap.APIRequestsTotal)
	assert.Equal(t, 10.0, snap.APIErrorsTotal)
	assert.Equal(t, 138.0, snap.MessagesTotal)
	assert.Equal(t, 12.0, snap.ScrapesTotal)
	assert.Equal(t, Some(720), snap.UptimeSeconds)
	assert.Equal(t, Some(104857600), snap.ResidentMemoryBytes)
	assert.Equal(t, Some(15), snap.CPUSeconds())
	assert.Equal(t, []prometheus.Bucket{
		{UpperBound: 0.1, Count: 210},
		{UpperBound: 1, Count: 285},
		{UpperBound: math.Inf(1), Count: 300},
	}, snap.LatencyBuckets)
}

func TestCreateSnapshot_Overrides(t *testing.T) {
	overrides := &SummaryOverrides{
		APIRequestsTotal: Some(1000),
		MessagesTotal:    Some(0),
	}

	snap := CreateSnapshot(dataScrape, overrides, testEpoch, DefaultSchema())

	assert.Equal(t, 1000.0, snap.APIRequestsTotal)
	assert.Equal(t, 10.0, snap.APIErrorsTotal)
	assert.Equal(t, 0.0, snap.MessagesTotal)
}

func TestCreateSnapshot_MissingMetrics(t *testing.T) {
	snap := CreateSnapshot([]byte("garbage\n"), nil, testEpoch, DefaultSchema())

	assert.Zero(t, snap.APIRequestsTotal)
	assert.False(t, snap.UptimeSeconds.Valid)
	assert.False(t, snap.CPUSeconds().Valid)
	assert.Nil(t, snap.LatencyBuckets)
}

func TestSnapshot_CPUSeconds(t *testing.T) {
	tests := map[string]struct {
		user, system NullFloat
		want         NullFloat
	}{
		"both known":     {user: Some(12.5), system: Some(2.5), want: Some(15)},
		"system missing": {user: Some(12.5), system: Null, want: Null},
		"user missing":   {user: Null, system: Some(2.5), want: Null},
		"none":           {want: Null},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			snap := Snapshot{CPUUserSeconds: test.user, CPUSystemSeconds: test.system}

			assert.Equal(t, test.want, snap.CPUSeconds())
		})
	}
}

func TestCreateSnapshot_LatencyFamilyType(t *testing.T) {
	const buckets = `app_api_request_duration_seconds_bucket{le="0.1"} 1
app_api_request_duration_seconds_bucket{le="+Inf"} 2
app_api_request_duration_seconds_count 2
`
	tests := map[string]struct {
		typeLine    string
		wantBuckets bool
	}{
		"declared histogram": {typeLine: "# TYPE app_api_request_duration_seconds histogram\n", wantBuckets: true},
		"not declared":       {wantBuckets: true},
		"declared gauge":     {typeLine: "# TYPE app_api_request_duration_seconds gauge\n"},
		"declared summary":   {typeLine: "# TYPE app_api_request_duration_seconds summary\n"},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			snap := CreateSnapshot([]byte(test.typeLine+buckets), nil, testEpoch, DefaultSchema())

			if test.wantBuckets {
				assert.Len(t, snap.LatencyBuckets, 2)
			} else {
				assert.Nil(t, snap.LatencyBuckets)
			}
		})
	}
}
