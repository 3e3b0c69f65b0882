package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/BruksfildServices01/termine-api/internal/httperr"
)

func TestResultLabels(t *testing.T) {
	assert.Equal(t, ResultOK, Result(nil))
	assert.Equal(t, ResultNotFound, Result(httperr.ErrNotFound("x")))
	assert.Equal(t, ResultExhausted, Result(httperr.ErrExhausted("x")))
	assert.Equal(t, ResultInvalid, Result(httperr.ErrInvalid("x")))
	assert.Equal(t, ResultError, Result(errors.New("x")))
}

func TestBookingMetricsCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewBookingMetrics(reg)

	m.ObserveClaim(nil)
	m.ObserveClaim(nil)
	m.ObserveClaim(httperr.ErrExhausted("no_free_appointment"))
	m.ObserveBooking(httperr.ErrNotFound("appointment_not_found"))
	m.ObserveRelease(false, nil)
	m.ObserveCodeCollision()
	m.ObserveDuration("claim", 0.01)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.claimsTotal.WithLabelValues(ResultOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.claimsTotal.WithLabelValues(ResultExhausted)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.bookingsTotal.WithLabelValues(ResultNotFound)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.releasesTotal.WithLabelValues(ResultNotFound)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.codeCollisions))
}

func TestBookingMetricsNilSafe(t *testing.T) {
	var m *BookingMetrics
	m.ObserveClaim(nil)
	m.ObserveBooking(nil)
	m.ObserveRelease(true, nil)
	m.ObserveCodeCollision()
	m.ObserveDuration("book", 0.1)
}
