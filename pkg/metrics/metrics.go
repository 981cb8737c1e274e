package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics набор prometheus-метрик сервиса
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	DBQueryDuration   *prometheus.HistogramVec
	DBOpenConnections *prometheus.GaugeVec
	DBInUse           *prometheus.GaugeVec
	DBIdle            *prometheus.GaugeVec
	DBWaitCount       *prometheus.GaugeVec

	BookingTransitions *prometheus.CounterVec
	ExpirySweeps       *prometheus.CounterVec
	ExpiredBookings    prometheus.Counter
	EventsPublished    *prometheus.CounterVec
}

// New создает и регистрирует метрики в prometheus.DefaultRegisterer
func New(serviceName string) *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer, serviceName)
}

// NewWithRegistry создает метрики в указанном реестре (для тестов - prometheus.NewRegistry())
func NewWithRegistry(reg prometheus.Registerer, serviceName string) *Metrics {
	labels := prometheus.Labels{"service": serviceName}

	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests",
			ConstLabels: labels,
		}, []string{"method", "route", "status"}),

		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request latency",
			ConstLabels: labels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"method", "route"}),

		DBQueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "db_query_duration_seconds",
			Help:        "Database query latency",
			ConstLabels: labels,
			Buckets:     []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"operation"}),

		DBOpenConnections: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_open_connections",
			Help:        "Number of established connections",
			ConstLabels: labels,
		}, []string{"pool"}),

		DBInUse: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_in_use_connections",
			Help:        "Number of connections currently in use",
			ConstLabels: labels,
		}, []string{"pool"}),

		DBIdle: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_idle_connections",
			Help:        "Number of idle connections",
			ConstLabels: labels,
		}, []string{"pool"}),

		DBWaitCount: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_wait_count",
			Help:        "Total number of connections waited for",
			ConstLabels: labels,
		}, []string{"pool"}),

		BookingTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "booking_transitions_total",
			Help:        "Booking lifecycle operations by result",
			ConstLabels: labels,
		}, []string{"operation", "result"}),

		ExpirySweeps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "booking_expiry_sweeps_total",
			Help:        "Expiry sweep runs by result",
			ConstLabels: labels,
		}, []string{"result"}),

		ExpiredBookings: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "booking_expired_total",
			Help:        "Bookings completed by the expiry sweep",
			ConstLabels: labels,
		}),

		EventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "booking_events_published_total",
			Help:        "Booking change events delivered to subscribers by sink",
			ConstLabels: labels,
		}, []string{"sink", "result"}),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.DBQueryDuration,
		m.DBOpenConnections,
		m.DBInUse,
		m.DBIdle,
		m.DBWaitCount,
		m.BookingTransitions,
		m.ExpirySweeps,
		m.ExpiredBookings,
		m.EventsPublished,
	)

	return m
}

// ObserveHTTP фиксирует завершенный HTTP запрос.
// Методы Record* и ObserveHTTP безопасны для nil *Metrics (метрики выключены).
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// RecordTransition фиксирует результат операции жизненного цикла бронирования
func (m *Metrics) RecordTransition(operation, result string) {
	if m == nil {
		return
	}
	m.BookingTransitions.WithLabelValues(operation, result).Inc()
}

// RecordSweep фиксирует запуск sweep и количество завершенных бронирований
func (m *Metrics) RecordSweep(expired int, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.ExpirySweeps.WithLabelValues("error").Inc()
		return
	}
	m.ExpirySweeps.WithLabelValues("ok").Inc()
	m.ExpiredBookings.Add(float64(expired))
}

// RecordPublish фиксирует доставку события в sink (websocket, rabbitmq)
func (m *Metrics) RecordPublish(sink string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.EventsPublished.WithLabelValues(sink, result).Inc()
}
