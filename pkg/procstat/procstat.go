// SPDX-License-Identifier: GPL-3.0-or-later

// Package procstat publishes process-level gauges (uptime, resident memory,
// CPU seconds) into a metrix.Registry at render time.
package procstat

import (
	"os"
	"sync"
	"time"

	"github.com/prometheus/procfs"

	"github.com/souqline/souqline/go/telemetry/logger"
	"github.com/souqline/souqline/go/telemetry/pkg/metrix"
)

const (
	MetricUptime         = "process_uptime_seconds"
	MetricResidentMemory = "process_resident_memory_bytes"
	MetricCPUUser        = "process_cpu_user_seconds_total"
	MetricCPUSystem      = "process_cpu_system_seconds_total"
)

// userHZ is the kernel clock tick rate procfs reports utime/stime in.
const userHZ = 100

type Config struct {
	// ProcRoot is the procfs mount point, procfs.DefaultMountPoint if empty.
	ProcRoot string
	// PID defaults to the current process.
	PID int
	// StartTime defaults to the time New is called.
	StartTime time.Time
}

type Collector struct {
	*logger.Logger

	procRoot string
	pid      int
	start    time.Time
	now      func() time.Time

	once sync.Once
	fs   procfs.FS
	err  error
}

func New(cfg Config) *Collector {
	c := &Collector{
		Logger:   logger.New().With("component", "procstat"),
		procRoot: cfg.ProcRoot,
		pid:      cfg.PID,
		start:    cfg.StartTime,
		now:      time.Now,
	}
	if c.procRoot == "" {
		c.procRoot = procfs.DefaultMountPoint
	}
	if c.pid == 0 {
		c.pid = os.Getpid()
	}
	if c.start.IsZero() {
		c.start = c.now()
	}
	return c
}

// Definitions returns the metric definitions Collect writes to.
func Definitions() []metrix.Definition {
	return []metrix.Definition{
		metrix.GaugeDef(MetricUptime, "Seconds since the process started."),
		metrix.GaugeDef(MetricResidentMemory, "Resident memory size in bytes."),
		metrix.CounterDef(MetricCPUUser, "Total user CPU time spent in seconds."),
		metrix.CounterDef(MetricCPUSystem, "Total system CPU time spent in seconds."),
	}
}

// Collect implements metrix.Collector. Uptime is always published; memory and
// CPU are skipped when procfs is unavailable.
func (c *Collector) Collect(s metrix.Setter) {
	s.Set(MetricUptime, nil, c.now().Sub(c.start).Seconds())

	stat, err := c.stat()
	if err != nil {
		return
	}

	s.Set(MetricResidentMemory, nil, float64(stat.ResidentMemory()))
	s.SetTotal(MetricCPUUser, nil, float64(stat.UTime)/userHZ)
	s.SetTotal(MetricCPUSystem, nil, float64(stat.STime)/userHZ)
}

func (c *Collector) stat() (procfs.ProcStat, error) {
	c.once.Do(func() {
		c.fs, c.err = procfs.NewFS(c.procRoot)
		if c.err != nil {
			c.Debugf("procfs unavailable at '%s', process memory and cpu are not collected: %v", c.procRoot, c.err)
		}
	})
	if c.err != nil {
		return procfs.ProcStat{}, c.err
	}

	p, err := c.fs.Proc(c.pid)
	if err != nil {
		c.Debugf("read process %d: %v", c.pid, err)
		return procfs.ProcStat{}, err
	}
	stat, err := p.Stat()
	if err != nil {
		c.Debugf("read process %d stat: %v", c.pid, err)
		return procfs.ProcStat{}, err
	}
	return stat, nil
}
