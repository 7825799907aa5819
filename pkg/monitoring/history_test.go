// SPDX-License-Identifier: GPL-3.0-or-later

package monitoring

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapAt(offset time.Duration, requests float64) Snapshot {
	return Snapshot{CapturedAt: testEpoch.Add(offset), APIRequestsTotal: requests}
}

func capturedOffsets(history []Snapshot) []time.Duration {
	var offsets []time.Duration
	for _, s := range history {
		offsets = append(offsets, s.CapturedAt.Sub(testEpoch))
	}
	return offsets
}

func TestAppendSnapshot(t *testing.T) {
	policy := AccumulatePolicy{Capacity: 3, DebounceWindow: 30 * time.Second}
	base := []Snapshot{snapAt(0, 10), snapAt(time.Minute, 20)}

	tests := map[string]struct {
		history     []Snapshot
		snap        Snapshot
		wantAdded   bool
		wantOffsets []time.Duration
	}{
		"first snapshot": {
			snap:        snapAt(0, 10),
			wantAdded:   true,
			wantOffsets: []time.Duration{0},
		},
		"same timestamp as last": {
			history:     base,
			snap:        snapAt(time.Minute, 99),
			wantOffsets: []time.Duration{0, time.Minute},
		},
		"within debounce and unchanged": {
			history:     base,
			snap:        snapAt(time.Minute+10*time.Second, 20),
			wantOffsets: []time.Duration{0, time.Minute},
		},
		"within debounce but changed": {
			history:     base,
			snap:        snapAt(time.Minute+10*time.Second, 21),
			wantAdded:   true,
			wantOffsets: []time.Duration{0, time.Minute, time.Minute + 10*time.Second},
		},
		"after debounce and unchanged": {
			history:     base,
			snap:        snapAt(2*time.Minute, 20),
			wantAdded:   true,
			wantOffsets: []time.Duration{0, time.Minute, 2 * time.Minute},
		},
		"out of order is inserted sorted": {
			history:     base,
			snap:        snapAt(30*time.Second, 15),
			wantAdded:   true,
			wantOffsets: []time.Duration{0, 30 * time.Second, time.Minute},
		},
		"out of order duplicate": {
			history:     []Snapshot{snapAt(0, 10), snapAt(time.Minute, 20), snapAt(2*time.Minute, 30)},
			snap:        snapAt(0, 11),
			wantOffsets: []time.Duration{0, time.Minute, 2 * time.Minute},
		},
		"cap drops oldest": {
			history:     []Snapshot{snapAt(0, 10), snapAt(time.Minute, 20), snapAt(2*time.Minute, 30)},
			snap:        snapAt(3*time.Minute, 40),
			wantAdded:   true,
			wantOffsets: []time.Duration{time.Minute, 2 * time.Minute, 3 * time.Minute},
		},
		"older than a full history": {
			history:     []Snapshot{snapAt(time.Minute, 10), snapAt(2*time.Minute, 20), snapAt(3*time.Minute, 30)},
			snap:        snapAt(0, 5),
			wantOffsets: []time.Duration{time.Minute, 2 * time.Minute, 3 * time.Minute},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			before := capturedOffsets(test.history)

			got, added := AppendSnapshot(test.history, test.snap, policy)

			assert.Equal(t, test.wantAdded, added)
			assert.Equal(t, test.wantOffsets, capturedOffsets(got))
			assert.Equal(t, before, capturedOffsets(test.history), "input must not change")
		})
	}
}

func TestHistory_ConcurrentReaders(t *testing.T) {
	h := NewHistory(AccumulatePolicy{Capacity: 50})

	const appends = 200
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < appends; i++ {
			h.Append(snapAt(time.Duration(i)*time.Minute, float64(i)))
		}
	}()
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < appends; i++ {
				snaps := h.Snapshots()
				for j := 1; j < len(snaps); j++ {
					assert.True(t, snaps[j-1].CapturedAt.Before(snaps[j].CapturedAt))
				}
				_ = BuildSeries(snaps, 0)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 50, h.Len())
	snaps := h.Snapshots()
	assert.Equal(t, 150*time.Minute, snaps[0].CapturedAt.Sub(testEpoch))
	assert.Equal(t, 199*time.Minute, snaps[len(snaps)-1].CapturedAt.Sub(testEpoch))
}
