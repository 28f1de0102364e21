package inspect

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// metrics holds the Prometheus instruments for the inspector.
type metrics struct {
	updatesTotal *prometheus.CounterVec
	driverErrors *prometheus.CounterVec
	registered   prometheus.Gauge
	wsClients    prometheus.Gauge
}

// newMetrics registers the inspector metrics with the given registry.
func newMetrics(namespace string, registry prometheus.Registerer) *metrics {
	factory := promauto.With(registry)

	return &metrics{
		updatesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "variable_updates_total",
			Help:      "Total number of change notifications per registered variable",
		}, []string{"variable"}),

		driverErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "driver_errors_total",
			Help:      "Total number of driver errors routed through inspector error handlers",
		}, []string{"variable"}),

		registered: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "variables_registered",
			Help:      "Number of variables currently registered with the inspector",
		}),

		wsClients: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "inspect_ws_clients",
			Help:      "Number of connected inspector WebSocket clients",
		}),
	}
}
