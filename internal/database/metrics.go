package database

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// DBMetrics содержит все метрики, связанные с базой данных
type DBMetrics struct {
	SuccessfulSavesTotal prometheus.Counter
	FailedSavesTotal     prometheus.Counter
	SuccessfulGetsTotal  prometheus.Counter
	FailedGetsTotal      prometheus.Counter

	SaveDuration prometheus.Histogram
	GetDuration  prometheus.Histogram
	InitDuration prometheus.Histogram

	ConnectionErrorsTotal  prometheus.Counter
	TransactionErrorsTotal prometheus.Counter
	ItemsSavedTotal        prometheus.Counter
}

// Global metrics для предотвращения дублирования метрик
var globalDBMetrics *DBMetrics

// NewDBMetrics создает и регистрирует новые метрики БД
func NewDBMetrics() *DBMetrics {
	// Возвращаем глобальный экземпляр, чтобы избежать дублирования метрик
	if globalDBMetrics != nil {
		return globalDBMetrics
	}

	buckets := []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0}

	globalDBMetrics = &DBMetrics{
		SuccessfulSavesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "db_successful_saves_total",
			Help: "Общее количество успешно сохраненных заказов",
		}),
		FailedSavesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "db_failed_saves_total",
			Help: "Общее количество заказов, сохранение которых откатилось",
		}),
		SuccessfulGetsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "db_successful_gets_total",
			Help: "Общее количество успешных операций получения из БД",
		}),
		FailedGetsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "db_failed_gets_total",
			Help: "Общее количество неудачных операций получения из БД",
		}),
		SaveDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "db_save_duration_seconds",
			Help:    "Время выполнения транзакции сохранения заказа в секундах",
			Buckets: buckets,
		}),
		GetDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "db_get_duration_seconds",
			Help:    "Время выполнения операции получения из БД в секундах",
			Buckets: buckets,
		}),
		InitDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "db_init_duration_seconds",
			Help:    "Время выполнения инициализации БД в секундах",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0},
		}),
		ConnectionErrorsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "db_connection_errors_total",
			Help: "Общее количество ошибок подключения к БД",
		}),
		TransactionErrorsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "db_transaction_errors_total",
			Help: "Общее количество ошибок транзакций в БД",
		}),
		ItemsSavedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "db_order_items_saved_total",
			Help: "Общее количество сохраненных позиций заказов",
		}),
	}

	return globalDBMetrics
}
