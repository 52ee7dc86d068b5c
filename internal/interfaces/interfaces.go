// Package interfaces содержит интерфейсы для основных сущностей приложения
package interfaces

import (
	"context"
	"encoding/json"

	"restaurant_service/internal/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mocks/mocks.go -package=mocks

// Database интерфейс для работы с хранилищем заказов
type Database interface {
	// Init инициализирует базу данных (создает таблицы и т.д.)
	Init(ctx context.Context) error

	// SaveOrder сохраняет заказ и его позиции одной транзакцией и возвращает идентификатор заказа
	SaveOrder(ctx context.Context, order *models.Order) (int64, error)

	// GetOrder получает заказ по идентификатору
	GetOrder(ctx context.Context, orderID int64) (*models.Order, error)

	// GetRecentOrders получает последние заказы, новые первыми
	GetRecentOrders(ctx context.Context, limit int) ([]models.Order, error)

	// Close закрывает соединение с базой данных
	Close()
}

// Cache интерфейс для работы с кэшем
type Cache interface {
	// Set добавляет или обновляет заказ в кэше
	Set(order *models.Order)

	// Get получает заказ из кэша по идентификатору
	Get(orderID int64) (*models.Order, bool)

	// LoadFromSlice загружает заказы из слайса в кэш
	LoadFromSlice(orders []models.Order)

	// Size возвращает количество заказов в кэше
	Size() int

	// Cleanup удаляет истекшие элементы из кэша
	Cleanup()
}

// Publisher интерфейс для публикации событий о принятых заказах
type Publisher interface {
	// PublishOrder отправляет событие о сохраненном заказе
	PublishOrder(ctx context.Context, order *models.Order) error

	// Close закрывает соединение с брокером
	Close() error
}

// OrderService интерфейс для сервиса работы с заказами
type OrderService interface {
	// SubmitOrder сохраняет заказ и возвращает его идентификатор
	SubmitOrder(ctx context.Context, order *models.Order) (int64, error)

	// GetOrder получает заказ по идентификатору с использованием кэша и БД
	GetOrder(ctx context.Context, orderID int64) (*models.Order, error)

	// GetStats возвращает статистику работы сервиса
	GetStats() map[string]interface{}
}

// QueueService интерфейс очереди "взять номер"
type QueueService interface {
	Enqueue() int
	Dequeue() (int, error)
	Current() (int, error)
	Len() int
	Snapshot() []int
	Reset()
}

// MenuReader интерфейс для чтения документа меню
type MenuReader interface {
	Read() (json.RawMessage, error)
}
