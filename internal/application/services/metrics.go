package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Pipeline phases used as metric labels
const (
	PhaseBackfill = "backfill"
	PhaseTail     = "tail"
)

// PipelineMetrics holds Prometheus metrics for the indexing pipeline
type PipelineMetrics struct {
	BlocksProcessed     *prometheus.CounterVec
	BlocksSkipped       *prometheus.CounterVec
	TransactionsIndexed prometheus.Counter
	ActionsDecoded      prometheus.Counter
	Checkpoint          prometheus.Gauge
	SyncHead            prometheus.Gauge
	BatchDuration       *prometheus.HistogramVec
}

// NewPipelineMetrics creates the pipeline metrics on reg
func NewPipelineMetrics(reg prometheus.Registerer) *PipelineMetrics {
	f := promauto.With(reg)
	return &PipelineMetrics{
		BlocksProcessed: f.NewCounterVec(prometheus.CounterOpts{
			Name: "indexer_blocks_processed_total",
			Help: "Total number of blocks processed",
		}, []string{"phase"}),
		BlocksSkipped: f.NewCounterVec(prometheus.CounterOpts{
			Name: "indexer_blocks_skipped_total",
			Help: "Total number of blocks skipped after a fetch or write error",
		}, []string{"phase"}),
		TransactionsIndexed: f.NewCounter(prometheus.CounterOpts{
			Name: "indexer_transactions_indexed_total",
			Help: "Total number of transactions written",
		}),
		ActionsDecoded: f.NewCounter(prometheus.CounterOpts{
			Name: "indexer_actions_decoded_total",
			Help: "Total number of transfer actions decoded",
		}),
		Checkpoint: f.NewGauge(prometheus.GaugeOpts{
			Name: "indexer_backfill_checkpoint",
			Help: "Last persisted backfill checkpoint",
		}),
		SyncHead: f.NewGauge(prometheus.GaugeOpts{
			Name: "indexer_sync_head",
			Help: "Last persisted tail-sync head",
		}),
		BatchDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "indexer_batch_duration_seconds",
			Help:    "Time taken to process one batch of blocks",
			Buckets: []float64{.1, .5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"phase"}),
	}
}
