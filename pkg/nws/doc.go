// Package nws fetches active weather alerts from the National Weather
// Service API (api.weather.gov) and converts them to hazard.Alert records.
//
// Transport failures — network errors, non-2xx statuses, undecodable
// bodies — are returned as errors, never coerced into an alert level here.
// The caller owns the boundary fail-safe (default to the middle tier).
//
// The base URL is configurable so bench setups can point at the mock
// scenario API, which accepts an extra "scenario" query parameter.
package nws
