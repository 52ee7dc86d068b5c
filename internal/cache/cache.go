// Package cache содержит реализацию кэша для хранения заказов в памяти
package cache

import (
	"context"
	"sync"
	"time"

	"restaurant_service/internal/models"
)

// cachedOrder кэшированный заказ со сроком жизни
type cachedOrder struct {
	order      *models.Order
	expireTime time.Time
}

// Cache хранит недавно сохраненные и прочитанные заказы по их идентификатору
type Cache struct {
	mu     sync.RWMutex           // Мьютекс для безопасного доступа
	orders map[int64]*cachedOrder // Заказы по идентификатору с временем истечения
	ttl    time.Duration          // Время жизни элемента кэша
}

// New создает новый экземпляр кэша
func New(ttl time.Duration) *Cache {
	return &Cache{
		orders: make(map[int64]*cachedOrder),
		ttl:    ttl,
	}
}

// Set добавляет или обновляет заказ в кэше
func (c *Cache) Set(order *models.Order) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.orders[order.ID] = &cachedOrder{
		order:      order,
		expireTime: time.Now().Add(c.ttl),
	}
}

// Get получает заказ из кэша по идентификатору
func (c *Cache) Get(orderID int64) (*models.Order, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	item, exists := c.orders[orderID]
	if !exists {
		return nil, false
	}

	// Истекший элемент считаем отсутствующим
	if time.Now().After(item.expireTime) {
		return nil, false
	}

	return item.order, true
}

// LoadFromSlice загружает заказы из слайса в кэш
func (c *Cache) LoadFromSlice(orders []models.Order) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expireTime := time.Now().Add(c.ttl)
	for i := range orders {
		c.orders[orders[i].ID] = &cachedOrder{
			order:      &orders[i],
			expireTime: expireTime,
		}
	}
}

// Size возвращает количество неистекших заказов в кэше
func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	now := time.Now()
	count := 0
	for _, item := range c.orders {
		if now.After(item.expireTime) {
			continue
		}
		count++
	}
	return count
}

// Cleanup удаляет истекшие элементы из кэша
func (c *Cache) Cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for key, item := range c.orders {
		if now.After(item.expireTime) {
			delete(c.orders, key)
		}
	}
}

// Run периодически вызывает Cleanup, пока контекст не отменен
func (c *Cache) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Cleanup()
		}
	}
}
