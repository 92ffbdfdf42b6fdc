// Package metrics exposes the service's Prometheus instrumentation behind a
// private registry so tests can create isolated instances.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry bundles every metric the service records.
type Registry struct {
	reg *prometheus.Registry

	ReceiptsScanned        prometheus.Counter
	ReceiptsIngested       prometheus.Counter
	ObservationRowsWritten prometheus.Counter
	CatalogEntriesCreated  prometheus.Counter
	DuplicateRowsRemoved   prometheus.Counter
	ComparisonQueries      prometheus.Counter
	ComparisonNoResults    prometheus.Counter
	ComparisonDurationSec  prometheus.Histogram
}

// NewRegistry creates a registry with all metrics registered.
func NewRegistry() *Registry {
	r := prometheus.NewRegistry()

	scanned := prometheus.NewCounter(prometheus.CounterOpts{Name: "pricescan_receipts_scanned_total"})
	ingested := prometheus.NewCounter(prometheus.CounterOpts{Name: "pricescan_receipts_ingested_total"})
	rows := prometheus.NewCounter(prometheus.CounterOpts{Name: "pricescan_observation_rows_written_total"})
	catalog := prometheus.NewCounter(prometheus.CounterOpts{Name: "pricescan_catalog_entries_created_total"})
	dupes := prometheus.NewCounter(prometheus.CounterOpts{Name: "pricescan_duplicate_rows_removed_total"})
	queries := prometheus.NewCounter(prometheus.CounterOpts{Name: "pricescan_comparison_queries_total"})
	noResults := prometheus.NewCounter(prometheus.CounterOpts{Name: "pricescan_comparison_no_results_total"})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "pricescan_comparison_duration_seconds",
		Buckets: prometheus.DefBuckets,
	})

	r.MustRegister(scanned, ingested, rows, catalog, dupes, queries, noResults, duration)

	return &Registry{
		reg:                    r,
		ReceiptsScanned:        scanned,
		ReceiptsIngested:       ingested,
		ObservationRowsWritten: rows,
		CatalogEntriesCreated:  catalog,
		DuplicateRowsRemoved:   dupes,
		ComparisonQueries:      queries,
		ComparisonNoResults:    noResults,
		ComparisonDurationSec:  duration,
	}
}

// Handler returns the scrape endpoint for this registry.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}
