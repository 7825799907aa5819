// SPDX-License-Identifier: GPL-3.0-or-later

package monitoring

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/prometheus/common/model"
	"gopkg.in/yaml.v2"

	"github.com/souqline/souqline/go/telemetry/pkg/confopt"
	"github.com/souqline/souqline/go/telemetry/pkg/instrument"
	"github.com/souqline/souqline/go/telemetry/pkg/procstat"
)

var errInvalidConfig = errors.New("monitoring: invalid config")

type (
	Config struct {
		HistoryCapacity int              `yaml:"history_capacity" json:"history_capacity"`
		DebounceWindow  confopt.Duration `yaml:"debounce_window" json:"debounce_window"`
		SeriesWindow    confopt.Duration `yaml:"series_window" json:"series_window"`
		Trend           TrendOptions     `yaml:"trend" json:"trend"`
		Peaks           PeakOptions      `yaml:"peaks" json:"peaks"`
		Insights        InsightOptions   `yaml:"insights" json:"insights"`
		Schema          Schema           `yaml:"schema" json:"schema"`
	}
	TrendOptions struct {
		MinSamples int     `yaml:"min_samples" json:"min_samples"`
		NoiseFloor float64 `yaml:"noise_floor" json:"noise_floor"`
	}
	PeakOptions struct {
		Factor   float64 `yaml:"factor" json:"factor"`
		MinValue float64 `yaml:"min_value" json:"min_value"`
		Max      int     `yaml:"max" json:"max"`
	}
	InsightOptions struct {
		Max                 int     `yaml:"max" json:"max"`
		ErrorRateWarningPct float64 `yaml:"error_rate_warning_pct" json:"error_rate_warning_pct"`
	}
	// Schema names the metrics a snapshot is built from.
	Schema struct {
		APIRequests    string `yaml:"api_requests" json:"api_requests"`
		APIErrors      string `yaml:"api_errors" json:"api_errors"`
		APIDuration    string `yaml:"api_duration" json:"api_duration"`
		Messages       string `yaml:"messages" json:"messages"`
		Scrapes        string `yaml:"scrapes" json:"scrapes"`
		Uptime         string `yaml:"uptime" json:"uptime"`
		ResidentMemory string `yaml:"resident_memory" json:"resident_memory"`
		CPUUser        string `yaml:"cpu_user" json:"cpu_user"`
		CPUSystem      string `yaml:"cpu_system" json:"cpu_system"`
	}
)

func DefaultConfig() Config {
	return Config{
		HistoryCapacity: 1440,
		DebounceWindow:  confopt.Duration(30 * time.Second),
		SeriesWindow:    confopt.Duration(24 * time.Hour),
		Trend:           DefaultTrendOptions(),
		Peaks:           DefaultPeakOptions(),
		Insights: InsightOptions{
			Max:                 4,
			ErrorRateWarningPct: 1,
		},
		Schema: DefaultSchema(),
	}
}

func DefaultTrendOptions() TrendOptions {
	return TrendOptions{MinSamples: 4, NoiseFloor: 0.02}
}

func DefaultPeakOptions() PeakOptions {
	return PeakOptions{Factor: 1.35, MinValue: 1, Max: 3}
}

func DefaultSchema() Schema {
	return Schema{
		APIRequests:    instrument.MetricAPIRequests,
		APIErrors:      instrument.MetricAPIErrors,
		APIDuration:    instrument.MetricAPIDuration,
		Messages:       instrument.MetricMessagesProcessed,
		Scrapes:        instrument.MetricScrapes,
		Uptime:         procstat.MetricUptime,
		ResidentMemory: procstat.MetricResidentMemory,
		CPUUser:        procstat.MetricCPUUser,
		CPUSystem:      procstat.MetricCPUSystem,
	}
}

// LoadConfig reads a YAML config on top of the defaults. An empty path
// returns the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	bs, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(bs, &cfg); err != nil {
		return cfg, fmt.Errorf("parse '%s': %v", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("'%s': %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch {
	case c.HistoryCapacity < 2:
		return fmt.Errorf("%w: history_capacity must be at least 2, got %d", errInvalidConfig, c.HistoryCapacity)
	case c.DebounceWindow < 0:
		return fmt.Errorf("%w: debounce_window must not be negative", errInvalidConfig)
	case c.SeriesWindow < 0:
		return fmt.Errorf("%w: series_window must not be negative", errInvalidConfig)
	case c.Trend.MinSamples < 2:
		return fmt.Errorf("%w: trend.min_samples must be at least 2, got %d", errInvalidConfig, c.Trend.MinSamples)
	case c.Trend.NoiseFloor < 0:
		return fmt.Errorf("%w: trend.noise_floor must not be negative", errInvalidConfig)
	case c.Peaks.Factor <= 0:
		return fmt.Errorf("%w: peaks.factor must be positive", errInvalidConfig)
	case c.Peaks.Max < 1:
		return fmt.Errorf("%w: peaks.max must be at least 1", errInvalidConfig)
	case c.Insights.Max < 1:
		return fmt.Errorf("%w: insights.max must be at least 1", errInvalidConfig)
	}
	return c.Schema.validate()
}

func (s Schema) validate() error {
	for key, name := range map[string]string{
		"api_requests":    s.APIRequests,
		"api_errors":      s.APIErrors,
		"api_duration":    s.APIDuration,
		"messages":        s.Messages,
		"scrapes":         s.Scrapes,
		"uptime":          s.Uptime,
		"resident_memory": s.ResidentMemory,
		"cpu_user":        s.CPUUser,
		"cpu_system":      s.CPUSystem,
	} {
		if !model.IsValidLegacyMetricName(name) {
			return fmt.Errorf("%w: schema.%s: invalid metric name '%s'", errInvalidConfig, key, name)
		}
	}
	return nil
}

func (c Config) accumulatePolicy() AccumulatePolicy {
	return AccumulatePolicy{
		Capacity:       c.HistoryCapacity,
		DebounceWindow: c.DebounceWindow.Duration(),
	}
}
