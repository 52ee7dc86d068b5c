package queue

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics содержит метрики очереди
type Metrics struct {
	Length      prometheus.Gauge
	IssuedTotal prometheus.Counter
	CalledTotal prometheus.Counter
	ResetsTotal prometheus.Counter
}

var (
	globalMetrics     *Metrics
	globalMetricsOnce sync.Once
)

// NewMetrics возвращает метрики очереди, регистрируя их один раз на процесс
func NewMetrics() *Metrics {
	globalMetricsOnce.Do(func() {
		globalMetrics = &Metrics{
			Length: promauto.NewGauge(prometheus.GaugeOpts{
				Name: "queue_length",
				Help: "Количество номеров, ожидающих вызова",
			}),
			IssuedTotal: promauto.NewCounter(prometheus.CounterOpts{
				Name: "queue_numbers_issued_total",
				Help: "Общее количество выданных номеров",
			}),
			CalledTotal: promauto.NewCounter(prometheus.CounterOpts{
				Name: "queue_numbers_called_total",
				Help: "Общее количество вызванных номеров",
			}),
			ResetsTotal: promauto.NewCounter(prometheus.CounterOpts{
				Name: "queue_resets_total",
				Help: "Количество сбросов очереди",
			}),
		}
	})
	return globalMetrics
}
