package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics exposes counters for the booking lifecycle.
type BookingMetrics struct {
	createdTotal   *prometheus.CounterVec
	rejectedTotal  *prometheus.CounterVec
	cancelledTotal prometheus.Counter
	refundsTotal   prometheus.Counter
	refundCents    prometheus.Counter
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		createdTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "avenrae",
			Subsystem: "bookings",
			Name:      "created_total",
			Help:      "Total bookings created",
		}, []string{"booking_type"}),
		rejectedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "avenrae",
			Subsystem: "bookings",
			Name:      "rejected_total",
			Help:      "Booking requests rejected, by error type",
		}, []string{"reason"}),
		cancelledTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "avenrae",
			Subsystem: "bookings",
			Name:      "cancelled_total",
			Help:      "Total bookings cancelled",
		}),
		refundsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "avenrae",
			Subsystem: "bookings",
			Name:      "refunds_total",
			Help:      "Refund transactions issued on cancellation",
		}),
		refundCents: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "avenrae",
			Subsystem: "bookings",
			Name:      "refunded_cents_total",
			Help:      "Sum of refunded amounts in cents",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.createdTotal, m.rejectedTotal, m.cancelledTotal, m.refundsTotal, m.refundCents)
	return m
}

func (m *BookingMetrics) ObserveCreated(bookingType string) {
	if m == nil {
		return
	}
	m.createdTotal.WithLabelValues(bookingType).Inc()
}

// ObserveRejected counts a failed create; reason is the error type.
func (m *BookingMetrics) ObserveRejected(reason string) {
	if m == nil {
		return
	}
	m.rejectedTotal.WithLabelValues(reason).Inc()
}

func (m *BookingMetrics) ObserveCancelled(refundCents int64) {
	if m == nil {
		return
	}
	m.cancelledTotal.Inc()
	if refundCents > 0 {
		m.refundsTotal.Inc()
		m.refundCents.Add(float64(refundCents))
	}
}

// HTTPMetrics records request latency per route pattern.
type HTTPMetrics struct {
	requestDuration *prometheus.HistogramVec
	requestsTotal   *prometheus.CounterVec
}

func NewHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	m := &HTTPMetrics{
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "avenrae",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Latency of HTTP requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "avenrae",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests",
		}, []string{"method", "route", "status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.requestDuration, m.requestsTotal)
	return m
}

func (m *HTTPMetrics) ObserveRequest(method, route, status string, seconds float64) {
	if m == nil {
		return
	}
	m.requestDuration.WithLabelValues(method, route).Observe(seconds)
	m.requestsTotal.WithLabelValues(method, route, status).Inc()
}

// NotifyMetrics counts notification delivery outcomes.
type NotifyMetrics struct {
	deliveriesTotal *prometheus.CounterVec
}

func NewNotifyMetrics(reg prometheus.Registerer) *NotifyMetrics {
	m := &NotifyMetrics{
		deliveriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "avenrae",
			Subsystem: "notify",
			Name:      "deliveries_total",
			Help:      "Notification delivery attempts by outcome",
		}, []string{"outcome"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.deliveriesTotal)
	return m
}

func (m *NotifyMetrics) ObserveDelivery(outcome string) {
	if m == nil {
		return
	}
	m.deliveriesTotal.WithLabelValues(outcome).Inc()
}
