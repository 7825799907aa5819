// SPDX-License-Identifier: GPL-3.0-or-later

package instrument

import (
	"github.com/souqline/souqline/go/telemetry/pkg/metrix"
	"github.com/souqline/souqline/go/telemetry/pkg/procstat"
)

const (
	MetricAPIRequests        = "app_api_requests_total"
	MetricAPIErrors          = "app_api_errors_total"
	MetricAPIDuration        = "app_api_request_duration_seconds"
	MetricDependencyRequests = "app_dependency_requests_total"
	MetricDependencyDuration = "app_dependency_request_duration_seconds"
	MetricMessagesProcessed  = "app_messages_processed_total"
	MetricMessageTokens      = "app_message_tokens_total"
	MetricTokensGranted      = "app_tokens_granted_total"
	MetricScrapes            = "app_metrics_scrapes_total"
)

// Definitions are the application metric families.
func Definitions() []metrix.Definition {
	return []metrix.Definition{
		metrix.CounterDef(MetricAPIRequests, "Total API requests handled.", "route", "method", "status"),
		metrix.CounterDef(MetricAPIErrors, "Total API requests that ended with a server error.", "route", "method", "status"),
		metrix.HistogramDef(MetricAPIDuration, "API request duration in seconds.", metrix.DefBuckets, "route", "method"),
		metrix.CounterDef(MetricDependencyRequests, "Total outbound dependency calls.", "dependency", "operation", "outcome"),
		metrix.HistogramDef(MetricDependencyDuration, "Outbound dependency call duration in seconds.", metrix.DefBuckets, "dependency", "operation"),
		metrix.CounterDef(MetricMessagesProcessed, "Total chat messages processed.", "kind", "role", "source"),
		metrix.CounterDef(MetricMessageTokens, "Total tokens spent on processed messages.", "kind", "role", "source"),
		metrix.CounterDef(MetricTokensGranted, "Total tokens granted to users.", "source"),
		metrix.CounterDef(MetricScrapes, "Total metrics exposition renders."),
	}
}

// NewRegistry builds the process registry: application families, process
// gauges from pc (skipped when nil) and the scrape counter.
func NewRegistry(pc *procstat.Collector) *metrix.Registry {
	opts := []metrix.Option{
		metrix.WithDefinitions(Definitions()...),
		metrix.WithScrapeCounter(MetricScrapes),
	}
	if pc != nil {
		opts = append(opts,
			metrix.WithDefinitions(procstat.Definitions()...),
			metrix.WithCollector(pc),
		)
	}
	return metrix.NewRegistry(opts...)
}
