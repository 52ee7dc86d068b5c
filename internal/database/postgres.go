// Package database содержит хранилища заказов: PostgreSQL и SQLite
package database

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"restaurant_service/internal/models"
	"restaurant_service/internal/retry"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Сообщение для клиента, когда заказ не найден
const msgOrderNotFound = "Order not found"

// Postgres представляет подключение к базе данных PostgreSQL
type Postgres struct {
	pool    *pgxpool.Pool // Пул соединений с базой данных
	metrics *DBMetrics
}

// NewPostgres создает новое подключение к базе данных PostgreSQL.
// Подключение повторяется по ConnectPolicy, после чего ошибка возвращается вызывающему.
func NewPostgres(ctx context.Context, connectStr string) (*Postgres, error) {
	metrics := NewDBMetrics()

	// Парсим строку подключения
	config, err := pgxpool.ParseConfig(connectStr)
	if err != nil {
		return nil, fmt.Errorf("Ошибка при анализе строки для подключения: %w", err)
	}

	// Создаем пул соединений
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("Ошибка при создании подключения: %w", err)
	}

	// Проверяем соединение с базой данных
	err = retry.DoWithContext(ctx, retry.ConnectPolicy(), func(ctx context.Context) error {
		if err := pool.Ping(ctx); err != nil {
			metrics.ConnectionErrorsTotal.Inc()
			log.Printf("БД недоступна, повторяем: %v", err)
			return err
		}
		return nil
	})
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("Ошибка соединения с БД: %w", err)
	}

	return &Postgres{pool: pool, metrics: metrics}, nil
}

// Init инициализирует базу данных, создавая необходимые таблицы и индексы
func (p *Postgres) Init(ctx context.Context) error {
	start := time.Now()
	defer func() { p.metrics.InitDuration.Observe(time.Since(start).Seconds()) }()

	// Создание схемы идемпотентно, поэтому повторяем по тяжелой политике
	return retry.DoWithContext(ctx, retry.HeavyPolicy(), func(ctx context.Context) error {
		queries := []string{
			CreateOrdersTable,
			CreateOrderItemsTable,
			CreateOrderItemsIndex,
		}

		for _, query := range queries {
			if _, err := p.pool.Exec(ctx, query); err != nil {
				return fmt.Errorf("Ошибка выполнения запроса %s: %w", query, err)
			}
		}

		log.Println("БД инициализирована")
		return nil
	})
}

// SaveOrder сохраняет заказ и его позиции в рамках одной транзакции.
// При любой ошибке транзакция откатывается целиком. Повторных попыток нет.
func (p *Postgres) SaveOrder(ctx context.Context, order *models.Order) (int64, error) {
	start := time.Now()
	defer func() { p.metrics.SaveDuration.Observe(time.Since(start).Seconds()) }()

	orderID, err := p.saveOrderTx(ctx, order)
	if err != nil {
		p.metrics.FailedSavesTotal.Inc()
		return 0, err
	}

	p.metrics.SuccessfulSavesTotal.Inc()
	p.metrics.ItemsSavedTotal.Add(float64(len(order.Items)))
	return orderID, nil
}

func (p *Postgres) saveOrderTx(ctx context.Context, order *models.Order) (int64, error) {
	// Начинаем транзакцию
	tx, err := p.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		p.metrics.TransactionErrorsTotal.Inc()
		return 0, fmt.Errorf("Ошибка начала транзакции: %w", err)
	}

	// Откатываем транзакцию только в случае ошибки
	shouldRollback := true
	defer func() {
		if shouldRollback {
			if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
				log.Printf("Ошибка при откате транзакции: %v", err)
			}
		}
	}()

	// Сохраняем заказ и получаем его идентификатор
	var orderID int64
	if err := tx.QueryRow(ctx, SaveOrderQuery, order.OrderTime, order.TotalPrice).Scan(&orderID); err != nil {
		return 0, fmt.Errorf("Ошибка при записи заказа: %w", err)
	}

	// Сохраняем позиции заказа
	for _, item := range order.Items {
		if _, err := tx.Exec(ctx, SaveOrderItemQuery, orderID, item.ItemID, item.Quantity, item.Price); err != nil {
			return 0, fmt.Errorf("Ошибка добавления позиции %d: %w", item.ItemID, err)
		}
	}

	// Коммитим транзакцию
	if err := tx.Commit(ctx); err != nil {
		p.metrics.TransactionErrorsTotal.Inc()
		return 0, fmt.Errorf("Ошибка коммита транзакции: %w", err)
	}

	shouldRollback = false
	return orderID, nil
}

// GetOrder получает заказ из базы данных по идентификатору
func (p *Postgres) GetOrder(ctx context.Context, orderID int64) (*models.Order, error) {
	start := time.Now()
	defer func() { p.metrics.GetDuration.Observe(time.Since(start).Seconds()) }()

	var order models.Order
	err := p.pool.QueryRow(ctx, GetOrderByIDQuery, orderID).Scan(&order.ID, &order.OrderTime, &order.TotalPrice)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.NotFound(msgOrderNotFound)
		}
		p.metrics.FailedGetsTotal.Inc()
		return nil, fmt.Errorf("Ошибка получения заказа: %w", err)
	}

	items, err := p.getItems(ctx, orderID)
	if err != nil {
		p.metrics.FailedGetsTotal.Inc()
		return nil, err
	}
	order.Items = items

	p.metrics.SuccessfulGetsTotal.Inc()
	return &order, nil
}

// GetRecentOrders получает последние заказы вместе с позициями
func (p *Postgres) GetRecentOrders(ctx context.Context, limit int) ([]models.Order, error) {
	rows, err := p.pool.Query(ctx, GetRecentOrdersQuery, limit)
	if err != nil {
		return nil, fmt.Errorf("Ошибка при запросе заказов: %w", err)
	}

	orders, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Order, error) {
		var order models.Order
		err := row.Scan(&order.ID, &order.OrderTime, &order.TotalPrice)
		return order, err
	})
	if err != nil {
		return nil, fmt.Errorf("Ошибка при чтении заказов: %w", err)
	}

	for i := range orders {
		items, err := p.getItems(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}

	return orders, nil
}

// getItems получает позиции заказа в порядке добавления
func (p *Postgres) getItems(ctx context.Context, orderID int64) ([]models.OrderItem, error) {
	rows, err := p.pool.Query(ctx, GetItemsByOrderIDQuery, orderID)
	if err != nil {
		return nil, fmt.Errorf("Не удалось запросить позиции: %w", err)
	}

	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.OrderItem, error) {
		var item models.OrderItem
		err := row.Scan(&item.ItemID, &item.Quantity, &item.Price)
		return item, err
	})
	if err != nil {
		return nil, fmt.Errorf("Ошибка при чтении позиций: %w", err)
	}

	return items, nil
}

// Close закрывает соединение с базой данных
func (p *Postgres) Close() {
	p.pool.Close()
}
