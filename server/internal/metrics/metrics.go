// Package metrics registers the server's Prometheus collectors and exposes
// helpers for the hot paths.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricPrefix = "wavealert_"

var (
	registerOnce sync.Once

	alertRequests *prometheus.CounterVec
	nwsFetches    *prometheus.CounterVec

	registryRefreshes *prometheus.CounterVec
	registryStale     prometheus.Counter
	registryFallback  prometheus.Counter

	wsClients prometheus.Gauge
)

// Init registers the collectors. Safe to call more than once.
func Init() {
	registerOnce.Do(func() {
		alertRequests = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "alert_requests_total",
				Help: "Alert level requests served, by resolved level and source",
			},
			[]string{"level", "source"},
		)
		nwsFetches = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "nws_fetches_total",
				Help: "Upstream alert API fetches by result",
			},
			[]string{"result"},
		)
		registryRefreshes = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "registry_refreshes_total",
				Help: "Registry document refreshes by result",
			},
			[]string{"result"},
		)
		registryStale = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "registry_stale_serves_total",
				Help: "Reads served from a stale registry copy after a failed refresh",
			},
		)
		registryFallback = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "registry_fallback_serves_total",
				Help: "Reads served from the static fallback document",
			},
		)
		wsClients = prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: metricPrefix + "ws_clients",
				Help: "Connected WebSocket dashboard clients",
			},
		)

		prometheus.MustRegister(
			alertRequests,
			nwsFetches,
			registryRefreshes,
			registryStale,
			registryFallback,
			wsClients,
		)
	})
}

// Handler returns the /metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// IncAlertRequest counts one served alert level request.
func IncAlertRequest(level, source string) {
	if alertRequests != nil {
		alertRequests.WithLabelValues(level, source).Inc()
	}
}

// IncNWSFetch counts one upstream fetch by result ("success" or "error").
func IncNWSFetch(result string) {
	if nwsFetches != nil {
		nwsFetches.WithLabelValues(result).Inc()
	}
}

// IncRegistryRefresh counts one registry refresh by result.
func IncRegistryRefresh(result string) {
	if registryRefreshes != nil {
		registryRefreshes.WithLabelValues(result).Inc()
	}
}

// IncRegistryStaleServe counts one stale registry read.
func IncRegistryStaleServe() {
	if registryStale != nil {
		registryStale.Inc()
	}
}

// IncRegistryFallbackServe counts one fallback registry read.
func IncRegistryFallbackServe() {
	if registryFallback != nil {
		registryFallback.Inc()
	}
}

// SetWSClients records the current WebSocket client count.
func SetWSClients(n int) {
	if wsClients != nil {
		wsClients.Set(float64(n))
	}
}

const (
	ResultSuccess = "success"
	ResultError   = "error"
)
