package store

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	triplesAdded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "factstore_store_triples_added_total",
		Help: "Triples newly inserted into the store",
	})

	triplesRemoved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "factstore_store_triples_removed_total",
		Help: "Triples deleted from the store",
	})

	batchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "factstore_store_batch_duration_seconds",
		Help:    "Duration of store write batches",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
	}, []string{"op"})

	tripleGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "factstore_store_triples",
		Help: "Number of triples currently stored",
	})
)
