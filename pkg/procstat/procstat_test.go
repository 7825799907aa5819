// SPDX-License-Identifier: GPL-3.0-or-later

package procstat

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/souqline/souqline/go/telemetry/pkg/metrix"
)

const fixtureStat = "26231 (vim) R 5392 7446 5392 34835 7446 4218880 32533 309516 26 82 1677 44 158 99 20 0 1 0 82375 56274944 1981 18446744073709551615 4194304 6294284 140736914091744 140736914087944 139965136429984 0 0 12288 1870679807 0 0 0 17 0 0 0 31 0 0 8391624 8481048 16420864 140736914093252 140736914093279 140736914093279 140736914096107 0\n"

func newFixtureCollector(t *testing.T) *Collector {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "26231"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "26231", "stat"), []byte(fixtureStat), 0o644))

	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := New(Config{ProcRoot: root, PID: 26231, StartTime: start})
	c.now = func() time.Time { return start.Add(90 * time.Second) }
	c.Mute()
	return c
}

func TestCollector_Collect(t *testing.T) {
	c := newFixtureCollector(t)
	r := metrix.NewRegistry(metrix.WithDefinitions(Definitions()...), metrix.WithCollector(c))

	_ = r.Text()

	tests := map[string]float64{
		MetricUptime:         90,
		MetricResidentMemory: float64(1981 * os.Getpagesize()),
		MetricCPUUser:        16.77,
		MetricCPUSystem:      0.44,
	}
	for name, want := range tests {
		t.Run(name, func(t *testing.T) {
			got, ok := r.Value(name, nil)
			require.True(t, ok)
			assert.InDelta(t, want, got, 1e-9)
		})
	}
}

func TestCollector_CollectWithoutProcfs(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := New(Config{ProcRoot: filepath.Join(t.TempDir(), "missing"), StartTime: start})
	c.now = func() time.Time { return start.Add(time.Minute) }
	c.Mute()
	r := metrix.NewRegistry(metrix.WithDefinitions(Definitions()...), metrix.WithCollector(c))

	_ = r.Text()

	uptime, ok := r.Value(MetricUptime, nil)
	require.True(t, ok)
	assert.Equal(t, 60.0, uptime)
	_, ok = r.Value(MetricResidentMemory, nil)
	assert.False(t, ok)
}
