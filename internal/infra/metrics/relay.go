package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		relayEventsTotal,
		relayDroppedTotal,
		relayClients,
	)
}

var (
	relayEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_events_total",
			Help: "Events fanned out by the notification relay, by subject.",
		},
		[]string{"subject"},
	)

	relayDroppedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "relay_dropped_total",
			Help: "Events dropped because a client's buffer was full.",
		},
	)

	relayClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "relay_clients",
			Help: "Currently connected relay clients.",
		},
	)
)

func IncRelayEvent(subject string) {
	relayEventsTotal.WithLabelValues(norm(subject)).Inc()
}

func IncRelayDropped() { relayDroppedTotal.Inc() }

func SetRelayClients(n int) { relayClients.Set(float64(n)) }
