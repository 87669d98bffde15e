package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for the clock service.
type Metrics struct {
	registry *prometheus.Registry

	ticksTotal         prometheus.Counter
	loadsTotal         *prometheus.CounterVec
	announcementsTotal *prometheus.CounterVec
	requestsTotal      prometheus.Counter
	errorsTotal        prometheus.Counter
	periodActive       prometheus.Gauge
	periodsLoaded      prometheus.Gauge
	remainingMinutes   prometheus.Gauge
}

// New creates and registers the collectors on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		ticksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "classclock_ticks_total",
			Help: "Total number of clock refresh ticks",
		}),
		loadsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "classclock_timetable_loads_total",
			Help: "Timetable load attempts by result (ok, failed)",
		}, []string{"result"}),
		announcementsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "classclock_announcements_total",
			Help: "Announcements sent to the speech sink by kind",
		}, []string{"kind"}),
		requestsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "classclock_http_requests_total",
			Help: "Total number of HTTP requests received",
		}),
		errorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "classclock_http_errors_total",
			Help: "Total number of HTTP responses with error status (4xx or 5xx)",
		}),
		periodActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "classclock_period_active",
			Help: "1 while a timetable period is running, 0 otherwise",
		}),
		periodsLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "classclock_periods_loaded",
			Help: "Number of periods in the loaded timetable",
		}),
		remainingMinutes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "classclock_remaining_minutes",
			Help: "Minutes left in the current period, 0 outside a period",
		}),
	}

	m.registry.MustRegister(
		m.ticksTotal,
		m.loadsTotal,
		m.announcementsTotal,
		m.requestsTotal,
		m.errorsTotal,
		m.periodActive,
		m.periodsLoaded,
		m.remainingMinutes,
	)
	return m
}

// Nil receivers are no-ops so callers can run without metrics.

func (m *Metrics) IncTicks() {
	if m == nil {
		return
	}
	m.ticksTotal.Inc()
}

// ObserveLoad records one load attempt and, on success, the period count.
func (m *Metrics) ObserveLoad(ok bool, periods int) {
	if m == nil {
		return
	}
	if ok {
		m.loadsTotal.WithLabelValues("ok").Inc()
	} else {
		m.loadsTotal.WithLabelValues("failed").Inc()
	}
	m.periodsLoaded.Set(float64(periods))
}

func (m *Metrics) IncAnnouncements(kind string) {
	if m == nil {
		return
	}
	m.announcementsTotal.WithLabelValues(kind).Inc()
}

func (m *Metrics) IncRequests() {
	if m == nil {
		return
	}
	m.requestsTotal.Inc()
}

func (m *Metrics) IncErrors() {
	if m == nil {
		return
	}
	m.errorsTotal.Inc()
}

// SetPeriod updates the current-period gauges. remaining is ignored when
// active is false.
func (m *Metrics) SetPeriod(active bool, remaining int) {
	if m == nil {
		return
	}
	if !active {
		m.periodActive.Set(0)
		m.remainingMinutes.Set(0)
		return
	}
	m.periodActive.Set(1)
	m.remainingMinutes.Set(float64(remaining))
}

// Registry exposes the registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns an http.Handler that serves Prometheus metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
