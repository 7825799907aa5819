// SPDX-License-Identifier: GPL-3.0-or-later

package prometheus

import (
	"strings"

	"github.com/prometheus/common/model"
)

type (
	// MetricMeta is what # HELP and # TYPE lines say about a metric family.
	MetricMeta struct {
		Help string
		Type model.MetricType
	}

	// Metadata maps family names to their HELP/TYPE information.
	Metadata map[string]MetricMeta
)

// Type returns the declared type of the family a sample name belongs to.
// Histogram and summary sample suffixes are resolved to their family.
func (m Metadata) Type(name string) model.MetricType {
	if meta, ok := m[name]; ok && meta.Type != "" {
		return meta.Type
	}
	if meta, ok := m[trimMetricSuffix(name)]; ok && meta.Type != "" {
		return meta.Type
	}
	return model.MetricTypeUnknown
}

func (m Metadata) setHelp(name, help string) {
	meta := m[name]
	meta.Help = help
	m[name] = meta
}

func (m Metadata) setType(name string, typ model.MetricType) {
	meta := m[name]
	meta.Type = typ
	m[name] = meta
}

// trimMetricSuffix strips the _bucket, _sum and _count sample suffixes.
func trimMetricSuffix(name string) string {
	for _, suffix := range []string{"_bucket", "_sum", "_count"} {
		if trimmed := strings.TrimSuffix(name, suffix); trimmed != name {
			return trimmed
		}
	}
	return name
}
