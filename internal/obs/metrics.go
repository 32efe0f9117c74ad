package obs

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the service collectors on a private registry so tests can
// construct isolated instances.
type Metrics struct {
	Registry *prometheus.Registry

	RowsIngested   *prometheus.CounterVec
	CacheHits      prometheus.Counter
	CacheMisses    prometheus.Counter
	RebuildSeconds prometheus.Histogram
	StoredRows     prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		RowsIngested: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "searchgram_rows_ingested_total",
			Help: "Search-term rows ingested, by source.",
		}, []string{"source"}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "searchgram_fetch_cache_hits_total",
			Help: "Upstream fetches served from the response cache.",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "searchgram_fetch_cache_misses_total",
			Help: "Upstream fetches that went to the network.",
		}),
		RebuildSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "searchgram_pipeline_rebuild_seconds",
			Help:    "Duration of full n-gram pipeline recomputations.",
			Buckets: prometheus.DefBuckets,
		}),
		StoredRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "searchgram_stored_rows",
			Help: "Aggregated rows currently held in the store.",
		}),
	}
	m.Registry.MustRegister(m.RowsIngested, m.CacheHits, m.CacheMisses, m.RebuildSeconds, m.StoredRows)
	return m
}
