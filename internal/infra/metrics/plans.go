package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		plansExpiredTotal,
		activePlansTotal,
	)
}

var (
	plansExpiredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "plans_expired_total",
			Help: "Total number of plans deactivated by the expiry worker.",
		},
	)

	activePlansTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "plans_active_total",
			Help: "Current number of active plans by location.",
		},
		[]string{"location"},
	)
)

func IncPlansExpired(count int) {
	plansExpiredTotal.Add(float64(count))
}

func SetActivePlans(counts map[string]int) {
	for location, count := range counts {
		activePlansTotal.WithLabelValues(norm(location)).Set(float64(count))
	}
}
