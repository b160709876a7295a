package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(redemptionsTotal) }

var redemptionsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "code_redemptions_total",
		Help: "Redemption attempts by outcome.",
	},
	[]string{"result"}, // 'success', 'not_found', 'already_used', ...
)

func IncRedemption(result string) {
	redemptionsTotal.WithLabelValues(norm(result)).Inc()
}
