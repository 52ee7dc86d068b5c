// Пакет service содержит бизнес-логику приложения для работы с заказами
package service

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"restaurant_service/internal/interfaces"
	"restaurant_service/internal/models"
)

// Таймаут обработки заказа, пришедшего из Kafka
const processTimeout = 10 * time.Second

// Service представляет основной сервис для работы с заказами
type Service struct {
	db        interfaces.Database  // Хранилище заказов
	cache     interfaces.Cache     // Кэш для хранения заказов в памяти
	publisher interfaces.Publisher // Публикация событий, может отсутствовать
	submitted atomic.Int64         // Количество принятых заказов
	mu        sync.RWMutex         // Мьютекс для безопасного доступа к статистике
	stats     struct {
		LastRequestTime     time.Time     // Время последнего запроса
		LastRequestDuration time.Duration // Длительность обработки последнего запроса
	}
}

// New создает новый экземпляр сервиса. publisher может быть nil, тогда события не отправляются.
func New(db interfaces.Database, cache interfaces.Cache, publisher interfaces.Publisher) *Service {
	return &Service{
		db:        db,
		cache:     cache,
		publisher: publisher,
	}
}

// SubmitOrder сохраняет заказ одной транзакцией и возвращает его идентификатор.
// Повторных попыток нет: при ошибке клиент получает ее текст.
func (s *Service) SubmitOrder(ctx context.Context, order *models.Order) (int64, error) {
	id, err := s.db.SaveOrder(ctx, order)
	if err != nil {
		log.Printf("Ошибка сохранения заказа: %v", err)
		return 0, models.Persistence(err)
	}
	order.ID = id
	s.submitted.Add(1)

	// Добавляем заказ в кэш для быстрого доступа
	s.cache.Set(order)

	// Заказ уже сохранен, поэтому ошибка публикации только логируется
	if s.publisher != nil {
		if err := s.publisher.PublishOrder(ctx, order); err != nil {
			log.Printf("Не удалось опубликовать событие заказа %d: %v", id, err)
		}
	}

	log.Printf("Заказ принят %d (позиций: %d)", id, len(order.Items))
	return id, nil
}

// ProcessOrder обрабатывает заказ, полученный из Kafka
func (s *Service) ProcessOrder(order *models.Order) error {
	// Создаем контекст с таймаутом
	ctx, cancel := context.WithTimeout(context.Background(), processTimeout)
	defer cancel()

	_, err := s.SubmitOrder(ctx, order)
	return err
}

// GetOrder получает заказ по идентификатору с использованием кэша и БД
func (s *Service) GetOrder(ctx context.Context, orderID int64) (*models.Order, error) {
	start := time.Now()
	defer s.recordRequest(start)

	// Сначала пытаемся найти заказ в кэше
	if order, exists := s.cache.Get(orderID); exists {
		return order, nil
	}

	// Заказ не найден в кэше, ищем в базе данных
	order, err := s.db.GetOrder(ctx, orderID)
	if err != nil {
		if models.IsNotFound(err) {
			return nil, err
		}
		return nil, models.Persistence(err)
	}

	// Добавляем заказ в кэш для будущих запросов
	s.cache.Set(order)
	return order, nil
}

// WarmUpCache загружает последние заказы из БД в кэш
func (s *Service) WarmUpCache(ctx context.Context, limit int) error {
	if limit <= 0 {
		return nil
	}

	orders, err := s.db.GetRecentOrders(ctx, limit)
	if err != nil {
		return fmt.Errorf("Ошибка загрузки кэша: %w", err)
	}

	s.cache.LoadFromSlice(orders)
	log.Printf("В кэш загружено заказов: %d", len(orders))
	return nil
}

// GetStats возвращает статистику работы сервиса
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return map[string]interface{}{
		"cache_size":            s.cache.Size(),                             // Количество элементов в кэше
		"orders_submitted":      s.submitted.Load(),                         // Количество принятых заказов
		"last_request_time":     s.stats.LastRequestTime,                    // Время последнего запроса
		"last_request_duration": s.stats.LastRequestDuration.Milliseconds(), // Длительность последнего запроса в миллисекундах
		"timestamp":             time.Now().UTC(),                           // Текущее время
	}
}

// Close закрывает соединение с базой данных
func (s *Service) Close() {
	s.db.Close()
}

func (s *Service) recordRequest(start time.Time) {
	s.mu.Lock()
	s.stats.LastRequestTime = start
	s.stats.LastRequestDuration = time.Since(start)
	s.mu.Unlock()
}
