package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/BruksfildServices01/termine-api/internal/httperr"
)

const (
	ResultOK        = "ok"
	ResultNotFound  = "not_found"
	ResultExhausted = "exhausted"
	ResultInvalid   = "invalid"
	ResultError     = "error"
)

// BookingMetrics exposes counters for the claim/booking protocol.
type BookingMetrics struct {
	claimsTotal     *prometheus.CounterVec
	bookingsTotal   *prometheus.CounterVec
	releasesTotal   *prometheus.CounterVec
	codeCollisions  prometheus.Counter
	operationLength *prometheus.HistogramVec
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		claimsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "termine",
			Subsystem: "appointments",
			Name:      "claims_total",
			Help:      "Claim attempts by result",
		}, []string{"result"}),
		bookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "termine",
			Subsystem: "appointments",
			Name:      "bookings_total",
			Help:      "Booking attempts by result",
		}, []string{"result"}),
		releasesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "termine",
			Subsystem: "appointments",
			Name:      "releases_total",
			Help:      "Claim releases by outcome",
		}, []string{"result"}),
		codeCollisions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "termine",
			Subsystem: "appointments",
			Name:      "access_code_collisions_total",
			Help:      "Access codes regenerated because the day already used them",
		}),
		operationLength: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "termine",
			Subsystem: "appointments",
			Name:      "operation_seconds",
			Help:      "Latency of claim/book/release transactions",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.claimsTotal, m.bookingsTotal, m.releasesTotal, m.codeCollisions, m.operationLength)
	return m
}

// Result maps an operation error to its label.
func Result(err error) string {
	if err == nil {
		return ResultOK
	}
	switch httperr.KindOf(err) {
	case httperr.KindNotFound:
		return ResultNotFound
	case httperr.KindExhausted:
		return ResultExhausted
	case httperr.KindInvalid:
		return ResultInvalid
	default:
		return ResultError
	}
}

func (m *BookingMetrics) ObserveClaim(err error) {
	if m == nil {
		return
	}
	m.claimsTotal.WithLabelValues(Result(err)).Inc()
}

func (m *BookingMetrics) ObserveBooking(err error) {
	if m == nil {
		return
	}
	m.bookingsTotal.WithLabelValues(Result(err)).Inc()
}

func (m *BookingMetrics) ObserveRelease(released bool, err error) {
	if m == nil {
		return
	}
	label := Result(err)
	if err == nil && !released {
		label = ResultNotFound
	}
	m.releasesTotal.WithLabelValues(label).Inc()
}

func (m *BookingMetrics) ObserveCodeCollision() {
	if m == nil {
		return
	}
	m.codeCollisions.Inc()
}

func (m *BookingMetrics) ObserveDuration(operation string, seconds float64) {
	if m == nil {
		return
	}
	m.operationLength.WithLabelValues(operation).Observe(seconds)
}
