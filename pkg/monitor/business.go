package monitor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// BusinessMetrics 定义业务监控指标
type BusinessMetrics struct {
	ActionsVerifiedTotal *prometheus.CounterVec // label: kind (burn/swap/free)
	ActionsRejectedTotal *prometheus.CounterVec // label: reason (errno message class)
	XPAwardedTotal       prometheus.Counter
	BoostsCreatedTotal   *prometheus.CounterVec // label: action (boost/burn_boost)
	ScanDuration         prometheus.Histogram
	ScanTokensFound      prometheus.Histogram
	CompletionFailovers  *prometheus.CounterVec // label: provider
}

// Global Metrics Instance
var Business *BusinessMetrics

// InitBusinessMetrics 初始化业务指标
func InitBusinessMetrics() {
	Business = &BusinessMetrics{
		ActionsVerifiedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "molt_actions_verified_total",
			Help: "The total number of successfully verified on-chain actions",
		}, []string{"kind"}),
		ActionsRejectedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "molt_actions_rejected_total",
			Help: "The total number of rejected action verifications",
		}, []string{"reason"}),
		XPAwardedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "molt_xp_awarded_total",
			Help: "The total amount of XP awarded",
		}),
		BoostsCreatedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "molt_boosts_created_total",
			Help: "The total number of boosts created",
		}, []string{"action"}),
		ScanDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "molt_scan_duration_seconds",
			Help:    "Duration of full balance scans",
			Buckets: prometheus.DefBuckets,
		}),
		ScanTokensFound: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "molt_scan_tokens_found",
			Help:    "Number of verified positive balances per scan",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100},
		}),
		CompletionFailovers: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "molt_completion_failovers_total",
			Help: "Completion provider failures that triggered failover",
		}, []string{"provider"}),
	}
}
