// Package metrics exposes Prometheus collectors for the HTTP surface, the
// session stores, realtime subscriptions and push notifications.
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"

	"harbor/internal/realtime"
	"harbor/internal/state"
)

const namespace = "harbor"

// Metrics owns a registry and the application collectors.
type Metrics struct {
	registry *prometheus.Registry

	httpInFlight  prometheus.Gauge
	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
	actions       *prometheus.CounterVec
	latency       *prometheus.HistogramVec
	sessions      prometheus.Gauge
	subscriptions *prometheus.GaugeVec
	notifications *prometheus.CounterVec
}

// New creates the collectors and registers them with a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		}, []string{"method", "route"}),
		actions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "state",
			Name:      "actions_total",
			Help:      "Total number of actions dispatched to session stores.",
		}, []string{"type", "outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "state",
			Name:      "action_duration_seconds",
			Help:      "Time from a request action to its success or failure.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
		}, []string{"action", "outcome"}),
		sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "state",
			Name:      "sessions",
			Help:      "Current number of live client sessions.",
		}),
		subscriptions: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "realtime",
			Name:      "subscriptions",
			Help:      "Current number of live realtime subscriptions.",
		}, []string{"channel"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notifier",
			Name:      "push_total",
			Help:      "Push notifications sent, by result.",
		}, []string{"result"}),
	}

	m.registry.MustRegister(
		m.httpInFlight,
		m.httpRequests,
		m.httpDuration,
		m.actions,
		m.latency,
		m.sessions,
		m.subscriptions,
		m.notifications,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)

	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Echo records request counts and latencies by route template.
func (m *Metrics) Echo() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Path() == "/metrics" {
				return next(c)
			}

			m.httpInFlight.Inc()
			defer m.httpInFlight.Dec()

			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if httpErr, ok := err.(*echo.HTTPError); ok {
				status = httpErr.Code
			}

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			method := strings.ToUpper(c.Request().Method)

			m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
			m.httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())

			return err
		}
	}
}

// StateMiddleware counts dispatched actions by type and outcome, and observes
// the time between each request and its terminal action. Use one instance per store.
func (m *Metrics) StateMiddleware() state.Middleware {
	var (
		mu      sync.Mutex
		started = make(map[string]time.Time)
	)

	return func(next state.DispatchFunc) state.DispatchFunc {
		return func(a state.Action) {
			outcome := actionOutcome(a)
			m.actions.WithLabelValues(string(a.Type()), outcome).Inc()

			if family, ok := actionFamily(a.Type(), outcome); ok {
				mu.Lock()
				switch outcome {
				case "request":
					started[family] = time.Now()
				default:
					if at, found := started[family]; found {
						delete(started, family)
						m.latency.WithLabelValues(family, outcome).Observe(time.Since(at).Seconds())
					}
				}
				mu.Unlock()
			}

			next(a)
		}
	}
}

func actionOutcome(a state.Action) string {
	if _, ok := a.(state.Failure); ok {
		return "failure"
	}

	t := string(a.Type())

	switch {
	case strings.HasSuffix(t, "_REQUEST"):
		return "request"
	case strings.HasSuffix(t, "_SUCCESS"):
		return "success"
	default:
		return "event"
	}
}

// actionFamily strips the outcome suffix: FETCH_GOODS_SUCCESS -> FETCH_GOODS.
func actionFamily(t state.ActionType, outcome string) (string, bool) {
	if outcome == "event" {
		return "", false
	}

	s := string(t)
	i := strings.LastIndexByte(s, '_')
	if i <= 0 {
		return "", false
	}

	return s[:i], true
}

// SessionOpened and SessionClosed track live sessions.
func (m *Metrics) SessionOpened() { m.sessions.Inc() }

func (m *Metrics) SessionClosed() { m.sessions.Dec() }

// Subscribed implements realtime.Observer.
func (m *Metrics) Subscribed(channel realtime.Channel) {
	m.subscriptions.WithLabelValues(string(channel)).Inc()
}

// Unsubscribed implements realtime.Observer.
func (m *Metrics) Unsubscribed(channel realtime.Channel) {
	m.subscriptions.WithLabelValues(string(channel)).Dec()
}

// PushSent records push notification outcomes.
func (m *Metrics) PushSent(success, failure, invalid int) {
	m.notifications.WithLabelValues("success").Add(float64(success))
	m.notifications.WithLabelValues("failure").Add(float64(failure))
	m.notifications.WithLabelValues("invalid_token").Add(float64(invalid))
}

var _ realtime.Observer = (*Metrics)(nil)

// Module provides the metrics FX module
//
//nolint:gochecknoglobals
var Module = fx.Options(
	fx.Provide(New),
)
