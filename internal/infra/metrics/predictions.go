package metrics

import (
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

func init() { register(predictionWaitSeconds, predictionOutputBytes) }

var predictionWaitSeconds = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "prediction_wait_seconds",
		Help:    "Time spent waiting for a provider prediction to reach a terminal state.",
		Buckets: []float64{1, 5, 15, 60, 180, 600, 900, 1800},
	},
	[]string{"model", "success"},
)

var predictionOutputBytes = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "prediction_output_bytes_total",
		Help: "Total bytes downloaded from prediction outputs.",
	},
	[]string{"model"},
)

func ObservePredictionWait(model string, seconds float64, success bool) {
	predictionWaitSeconds.WithLabelValues(norm(model), strconv.FormatBool(success)).Observe(seconds)
}

func AddPredictionOutputBytes(model string, n int) {
	predictionOutputBytes.WithLabelValues(norm(model)).Add(float64(n))
}

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
