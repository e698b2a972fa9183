package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCounters(t *testing.T) {
	m := New()
	m.Booking("booked")
	m.Booking("booked")
	m.Booking("slot_taken")
	m.Cancellation("user")
	m.Payment("verify", "rejected")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.bookings.WithLabelValues("booked")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.bookings.WithLabelValues("slot_taken")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cancellations.WithLabelValues("user")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.payments.WithLabelValues("verify", "rejected")))
}

func TestNilMetricsAreNoops(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Booking("booked")
		m.Cancellation("admin")
		m.Payment("order", "created")
		m.ObserveRequest("GET", "/x", "200", 0.1)
	})
}

func TestHandlerExposesSeries(t *testing.T) {
	m := New()
	m.ObserveRequest("POST", "/api/user/book-appointment", "201", 0.02)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(w.Body)
	assert.Contains(t, string(body), `http_requests_total{method="POST",route="/api/user/book-appointment",status_code="201"} 1`)
}
