package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(codesGeneratedTotal, generationRequestsTotal, generationCollisionsTotal)
}

var codesGeneratedTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "codes_generated_total",
		Help: "Total number of discount codes durably inserted.",
	},
)

var generationRequestsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "code_generation_requests_total",
		Help: "Generation requests by outcome.",
	},
	[]string{"result"}, // 'ok', 'exhausted', 'error'
)

var generationCollisionsTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "code_generation_collisions_total",
		Help: "Bulk inserts rejected by the store's uniqueness constraint.",
	},
)

func AddCodesGenerated(n int) { codesGeneratedTotal.Add(float64(n)) }

func IncGenerationRequest(result string) {
	generationRequestsTotal.WithLabelValues(norm(result)).Inc()
}

func IncGenerationCollision() { generationCollisionsTotal.Inc() }
