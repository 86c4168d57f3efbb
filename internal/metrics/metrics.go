package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// QueriesTotal counts executed statements by kind (select, aggregate, insert) and status.
	QueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flatdb_queries_total",
			Help: "Total number of executed queries",
		},
		[]string{"kind", "status"},
	)
	// RowsScanned counts rows read from table files by the query engine.
	RowsScanned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "flatdb_rows_scanned_total",
			Help: "Total number of rows read by queries",
		},
	)
	// BudgetTruncations counts result sets cut short by the memory budget.
	BudgetTruncations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "flatdb_budget_truncations_total",
			Help: "Total number of query results truncated by the memory budget",
		},
	)
	// ChunksWritten counts chunk files produced by the splitter, by codec.
	ChunksWritten = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flatdb_chunks_written_total",
			Help: "Total number of chunk files written",
		},
		[]string{"codec"},
	)
)

// Status returns the status label for an error
func Status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// Handler exposes the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}
