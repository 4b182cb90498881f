// Package metric 汇总直播接入的 Prometheus 指标
package metric

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "live_ingest"

// Metrics 帧、事件、重连与合并写入的计数
type Metrics struct {
	FramesReceived    *prometheus.CounterVec
	FramesDropped     *prometheus.CounterVec
	EventsClassified  *prometheus.CounterVec
	ReconnectAttempts *prometheus.CounterVec
	ConnectionStatus  *prometheus.GaugeVec
	MergeWrites       *prometheus.CounterVec
	MergeErrors       *prometheus.CounterVec
}

// NewMetrics 创建指标，reg 为 nil 时不注册
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		FramesReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "frames",
			Name:      "received_total",
			Help:      "Total number of frames received from the transport",
		}, []string{"room"}),
		FramesDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "frames",
			Name:      "dropped_total",
			Help:      "Total number of empty frames dropped by the decoder",
		}, []string{"room"}),
		EventsClassified: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "classified_total",
			Help:      "Total number of classified events by kind",
		}, []string{"room", "kind"}),
		ReconnectAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "connection",
			Name:      "reconnect_attempts_total",
			Help:      "Total number of scheduled reconnection attempts",
		}, []string{"room"}),
		ConnectionStatus: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "connection",
			Name:      "status",
			Help:      "Connection status (0=idle, 1=connecting, 2=connected, 3=reconnecting, 4=manually closed)",
		}, []string{"room"}),
		MergeWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "merge",
			Name:      "writes_total",
			Help:      "Total number of merge writes by collection and mode",
		}, []string{"collection", "mode"}),
		MergeErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "merge",
			Name:      "errors_total",
			Help:      "Total number of failed merges by collection",
		}, []string{"collection"}),
	}

	if reg != nil {
		reg.MustRegister(
			m.FramesReceived,
			m.FramesDropped,
			m.EventsClassified,
			m.ReconnectAttempts,
			m.ConnectionStatus,
			m.MergeWrites,
			m.MergeErrors,
		)
	}
	return m
}
