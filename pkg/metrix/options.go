// SPDX-License-Identifier: GPL-3.0-or-later

package metrix

type Option interface {
	apply(*Registry)
}

type optionFunc func(*Registry)

func (f optionFunc) apply(r *Registry) { f(r) }

// WithDefinitions registers defs at construction; invalid definitions panic.
func WithDefinitions(defs ...Definition) Option {
	return optionFunc(func(r *Registry) {
		r.MustRegister(defs...)
	})
}

// WithScrapeCounter names a counter that Render increments once per call.
// The counter must be registered separately and have no labels.
func WithScrapeCounter(name string) Option {
	return optionFunc(func(r *Registry) {
		r.scrapeCounter = name
	})
}

// WithCollector adds a collector that refreshes gauges before every render.
func WithCollector(c Collector) Option {
	return optionFunc(func(r *Registry) {
		r.collectors = append(r.collectors, c)
	})
}
