package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	TournamentsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "tournaments_created_total", Help: "Total tournaments created"},
	)
	TournamentsUpdated = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "tournaments_updated_total", Help: "Total successful tournament updates"},
	)
	UpdateConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "tournament_update_conflicts_total", Help: "Total updates rejected on a stale revision"},
	)
	CorruptRecords = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "tournament_corrupt_loads_total", Help: "Total loads that found an undecodable stored record"},
	)
	RowsImported = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "reference_rows_imported_total", Help: "Total rows appended by bulk imports"},
		[]string{"table"},
	)
	ImportSchemaFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "reference_import_schema_failures_total", Help: "Total imports rejected for missing or unknown columns"},
		[]string{"table"},
	)
)

var registerOnce sync.Once

// Register adds every collector to the default registry. Safe to call more
// than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			TournamentsCreated,
			TournamentsUpdated,
			UpdateConflicts,
			CorruptRecords,
			RowsImported,
			ImportSchemaFailures,
		)
	})
}
