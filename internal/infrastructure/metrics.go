package infrastructure

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instruments for the derivation pipeline.
type Metrics struct {
	DatasetLoads *prometheus.CounterVec
	RowsIngested prometheus.Counter
	FilesSkipped prometheus.Counter
	Exports      prometheus.Counter
}

// NewMetrics registers the pipeline metrics on the given registerer.
// Pass prometheus.DefaultRegisterer in production; tests use a fresh
// prometheus.NewRegistry to avoid duplicate registration.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		DatasetLoads: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "orderlens_dataset_loads_total",
			Help: "Dataset load attempts by result (hit, rebuild, error).",
		}, []string{"result"}),
		RowsIngested: factory.NewCounter(prometheus.CounterOpts{
			Name: "orderlens_rows_ingested_total",
			Help: "Raw order lines ingested across all loads.",
		}),
		FilesSkipped: factory.NewCounter(prometheus.CounterOpts{
			Name: "orderlens_files_skipped_total",
			Help: "Source files skipped because they could not be decoded or parsed.",
		}),
		Exports: factory.NewCounter(prometheus.CounterOpts{
			Name: "orderlens_exports_total",
			Help: "CSV exports served.",
		}),
	}
}
