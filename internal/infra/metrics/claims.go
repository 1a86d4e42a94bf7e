package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		claimsIssuedTotal,
		redemptionsTotal,
	)
}

var (
	claimsIssuedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "claims_issued_total",
			Help: "Claim issuance attempts by result (issued/no_plan/exhausted/duplicate/rate_limited/error).",
		},
		[]string{"result"},
	)

	redemptionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "redemptions_total",
			Help: "Redemption attempts by result (redeemed/already_redeemed/not_found/unauthorized/error).",
		},
		[]string{"result"},
	)
)

func IncClaimIssued(result string) {
	claimsIssuedTotal.WithLabelValues(norm(result)).Inc()
}

func IncRedemption(result string) {
	redemptionsTotal.WithLabelValues(norm(result)).Inc()
}
