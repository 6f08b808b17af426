package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		paymentsTotal,
		paymentsAmountTotal,
		validationFailures,
	)
}

var (
	paymentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cardinity_payments_total",
			Help: "Payments returned by the gateway, by operation and status (approved/pending/declined).",
		},
		[]string{"operation", "status"},
	)

	paymentsAmountTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cardinity_payments_amount_total",
			Help: "Sum of approved payment amounts in major units, labeled by currency.",
		},
		[]string{"currency"},
	)

	validationFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cardinity_validation_failures_total",
			Help: "Requests rejected locally before reaching the gateway, by request model.",
		},
		[]string{"model"},
	)
)

func IncPayment(operation, status string) {
	if status == "" {
		status = "unknown"
	}
	paymentsTotal.WithLabelValues(norm(operation), norm(status)).Inc()
}

// AddPaymentAmount adds a decimal amount string such as "10.50". Unparseable
// amounts are ignored.
func AddPaymentAmount(currency, amount string) {
	v, err := strconv.ParseFloat(amount, 64)
	if err != nil || v < 0 {
		return
	}
	paymentsAmountTotal.WithLabelValues(norm(currency)).Add(v)
}

func IncValidationFailure(model string) {
	validationFailures.WithLabelValues(model).Inc()
}
