package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	reg *prometheus.Registry

	ReservationOutcomes *prometheus.CounterVec
	Cancellations       *prometheus.CounterVec
	Promotions          *prometheus.CounterVec
	StoreRetries        *prometheus.CounterVec
	PanicsRecovered     prometheus.Counter
	RateLimited         prometheus.Counter
}

// New builds counters on a private registry so that tests can create as many
// instances as they need.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Metrics{
		reg: reg,
		ReservationOutcomes: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "court_reservation_outcomes_total",
			Help: "Reservation attempts by outcome.",
		}, []string{"outcome"}),
		Cancellations: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "court_cancellations_total",
			Help: "Cancellations by what was removed.",
		}, []string{"kind"}),
		Promotions: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "court_promotions_total",
			Help: "Waitlisted teams promoted into a freed venue.",
		}, []string{"source"}),
		StoreRetries: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "court_slot_store_retries_total",
			Help: "Slot store operations retried after a transient failure.",
		}, []string{"op"}),
		PanicsRecovered: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "http_req_panics_recovered_total",
			Help: "Total number of HTTP requests recovered from internal panic.",
		}),
		RateLimited: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "http_req_rate_limited_total",
			Help: "Requests rejected by the per-client rate limiter.",
		}),
	}
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.reg
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
