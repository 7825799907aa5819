// SPDX-License-Identifier: GPL-3.0-or-later

package metrix

import (
	"slices"
	"strings"

	"github.com/prometheus/common/model"
)

// UnknownLabelValue replaces empty or missing label values.
const UnknownLabelValue = "unknown"

// Labels is the loosely typed label input accepted by the write path. Names
// outside the metric's schema are ignored, missing ones default to
// UnknownLabelValue.
type Labels map[string]string

// Label is one normalized name/value pair.
type Label struct {
	Name  string
	Value string
}

// labelSchema is a family's label names in canonical (sorted) order.
type labelSchema []string

func newLabelSchema(names []string) labelSchema {
	s := slices.Clone(names)
	slices.Sort(s)
	return s
}

// normalize projects in onto the schema and returns the values aligned with
// the schema order together with the canonical series key.
func (s labelSchema) normalize(in Labels) ([]string, string) {
	if len(s) == 0 {
		return nil, ""
	}

	values := make([]string, len(s))
	var b strings.Builder
	for i, name := range s {
		v := normalizeLabelValue(in[name])
		values[i] = v
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(v)
		b.WriteByte('\xff')
	}
	return values, b.String()
}

func (s labelSchema) labels(values []string) []Label {
	out := make([]Label, len(s))
	for i, name := range s {
		out[i] = Label{Name: name, Value: values[i]}
	}
	return out
}

// normalizeLabelValue trims v and replaces invalid UTF-8 sequences, so a value
// never carries the 0xff key separator.
func normalizeLabelValue(v string) string {
	if v = strings.ToValidUTF8(strings.TrimSpace(v), "\uFFFD"); v == "" {
		return UnknownLabelValue
	}
	return v
}

// CanonicalKey returns the key two label sets share iff they are equal: the
// sorted name=value pairs joined together. Names that are not valid label
// names are ignored, as no metric definition can declare them.
func CanonicalKey(labels Labels) string {
	names := make([]string, 0, len(labels))
	for name := range labels {
		if model.LabelName(name).IsValidLegacy() {
			names = append(names, name)
		}
	}
	_, key := newLabelSchema(names).normalize(labels)
	return key
}
