package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TradesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chipgate_trades_total",
		Help: "The total number of chip trades processed",
	}, []string{"side", "status"})

	ClaimsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chipgate_reward_claims_total",
		Help: "The total number of reward claims",
	}, []string{"status"})

	DistributionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chipgate_reward_distributions_total",
		Help: "The total number of reward distribution rounds",
	})

	LatencyBucket = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "chipgate_latency_bucket",
		Help:    "Request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})
)
