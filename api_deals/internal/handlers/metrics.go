package handlers

import "github.com/prometheus/client_golang/prometheus"

type DealMetrics struct {
	Requests *prometheus.CounterVec
}

func (m *DealMetrics) IncRequest(endpoint, status string) {
	if m == nil || m.Requests == nil {
		return
	}

	m.Requests.WithLabelValues(endpoint, status).Inc()
}
