package web

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"teraview/internal/terabox"
)

// Metrics counts requests and resolution outcomes for the web surface.
type Metrics struct {
	RequestsTotal *prometheus.CounterVec
	ResolveTotal  *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "teraview_requests_total",
				Help: "Total number of download and view requests",
			},
			[]string{"action"},
		),
		ResolveTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "teraview_resolve_total",
				Help: "Total number of link resolutions by outcome",
			},
			[]string{"outcome"},
		),
	}
	reg.MustRegister(m.RequestsTotal, m.ResolveTotal)
	return m
}

// outcome labels a resolution result.
func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, terabox.ErrInvalidInput):
		return "invalid"
	case errors.Is(err, terabox.ErrRequest):
		return "request"
	case errors.Is(err, terabox.ErrParse):
		return "parse"
	case errors.Is(err, terabox.ErrNoLink):
		return "no_link"
	default:
		return "error"
	}
}
