package handler

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/S1riyS/tfs/internal/service"
)

type Metrics struct {
	operations *prometheus.CounterVec
}

// NewMetrics registers the operation counter and the registry gauges on reg.
func NewMetrics(reg prometheus.Registerer, registry *service.Registry) *Metrics {
	factory := promauto.With(reg)

	m := &Metrics{
		operations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "tfs",
				Name:      "operations_total",
				Help:      "Filesystem API calls by operation and return code.",
			},
			[]string{"op", "code"},
		),
	}

	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "tfs",
		Name:      "instances",
		Help:      "Number of live filesystem instances.",
	}, func() float64 {
		return float64(registry.Len())
	})
	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "tfs",
		Name:      "inodes_in_use",
		Help:      "Allocated inodes over all instances.",
	}, func() float64 {
		return float64(registry.Stats().Inodes)
	})
	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "tfs",
		Name:      "blocks_in_use",
		Help:      "Allocated data blocks over all instances.",
	}, func() float64 {
		return float64(registry.Stats().Blocks)
	})
	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "tfs",
		Name:      "open_files",
		Help:      "Open file sessions over all instances.",
	}, func() float64 {
		return float64(registry.Stats().OpenFiles)
	})

	return m
}

func (m *Metrics) observe(op string, code int64) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(op, strconv.FormatInt(code, 10)).Inc()
}
