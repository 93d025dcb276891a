package state

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Set of sources a block can be accepted from.
const (
	sourceMined = "mined"
	sourcePeer  = "peer"
	sourceSync  = "sync"
)

// Metrics for monitoring the node.
var (
	chainHeight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Help:      "Number of blocks in the chain",
			Name:      "chain_height",
			Namespace: "gossipchain",
		},
	)
	mempoolSize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Help:      "Number of transactions waiting in the mempool",
			Name:      "mempool_size",
			Namespace: "gossipchain",
		},
	)
	blocksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Help:      "Number of blocks added to the chain by source",
			Name:      "blocks_total",
			Namespace: "gossipchain",
		},
		[]string{"source"},
	)
	messagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Help:      "Number of peer messages processed by kind",
			Name:      "messages_total",
			Namespace: "gossipchain",
		},
		[]string{"kind"},
	)
	miningBatches = prometheus.NewCounter(
		prometheus.CounterOpts{
			Help:      "Number of nonce batches searched",
			Name:      "mining_batches_total",
			Namespace: "gossipchain",
		},
	)
)

func init() {
	prometheus.MustRegister(
		chainHeight,
		mempoolSize,
		blocksTotal,
		messagesTotal,
		miningBatches,
	)
}
