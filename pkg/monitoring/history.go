// SPDX-License-Identifier: GPL-3.0-or-later

package monitoring

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// AccumulatePolicy decides which snapshots enter a history.
type AccumulatePolicy struct {
	// Capacity caps the history, oldest entries are dropped first.
	Capacity int
	// DebounceWindow rejects a snapshot captured this close to the last one
	// when its headline totals did not change.
	DebounceWindow time.Duration
}

// AppendSnapshot returns history with snap added in capture order, and
// whether it was added. The input slice is never modified.
func AppendSnapshot(history []Snapshot, snap Snapshot, policy AccumulatePolicy) ([]Snapshot, bool) {
	if n := len(history); n > 0 {
		last := history[n-1]
		if snap.CapturedAt.Equal(last.CapturedAt) {
			return history, false
		}
		if d := absDuration(snap.CapturedAt.Sub(last.CapturedAt)); d < policy.DebounceWindow && snap.sameTotals(last) {
			return history, false
		}
	}

	idx := sort.Search(len(history), func(i int) bool {
		return !history[i].CapturedAt.Before(snap.CapturedAt)
	})
	if idx < len(history) && history[idx].CapturedAt.Equal(snap.CapturedAt) {
		return history, false
	}
	// older than everything in a full history
	if idx == 0 && policy.Capacity > 0 && len(history) >= policy.Capacity {
		return history, false
	}

	out := make([]Snapshot, 0, len(history)+1)
	out = append(out, history[:idx]...)
	out = append(out, snap)
	out = append(out, history[idx:]...)

	if policy.Capacity > 0 && len(out) > policy.Capacity {
		out = out[len(out)-policy.Capacity:]
	}
	return out, true
}

// History is a capped, time-ordered snapshot list. Readers get an immutable
// view that later appends never change.
type History struct {
	policy AccumulatePolicy

	mu    sync.Mutex // serializes writers
	snaps atomic.Pointer[[]Snapshot]
}

func NewHistory(policy AccumulatePolicy) *History {
	return &History{policy: policy}
}

func (h *History) Append(snap Snapshot) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	next, ok := AppendSnapshot(h.Snapshots(), snap, h.policy)
	if ok {
		h.snaps.Store(&next)
	}
	return ok
}

// Snapshots returns the current view. It must not be modified.
func (h *History) Snapshots() []Snapshot {
	if p := h.snaps.Load(); p != nil {
		return *p
	}
	return nil
}

func (h *History) Len() int {
	return len(h.Snapshots())
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
