package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	AllocationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "parking_allocations_total",
		Help: "Entry requests by outcome",
	}, []string{"result"})
	ExitsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "parking_exits_total",
		Help: "Exit requests by outcome",
	}, []string{"result"})
	AllocationDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "parking_allocation_duration_ms",
		Help:    "Entry request duration in milliseconds, lock wait included",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000},
	})
	RouteRequestsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "parking_route_requests_total",
		Help: "Total shortest path queries",
	})
	NotificationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "parking_notifications_total",
		Help: "Push notifications by outcome",
	}, []string{"result"})
)

func init() {
	prometheus.MustRegister(AllocationsTotal)
	prometheus.MustRegister(ExitsTotal)
	prometheus.MustRegister(AllocationDurationMs)
	prometheus.MustRegister(RouteRequestsTotal)
	prometheus.MustRegister(NotificationsTotal)
}

// Handler exposes the registered metrics for scraping.
func Handler() http.Handler { return promhttp.Handler() }
