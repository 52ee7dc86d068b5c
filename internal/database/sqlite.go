package database

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"restaurant_service/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// orderRow строка таблицы orders
type orderRow struct {
	ID         int64   `gorm:"primaryKey;autoIncrement"`
	OrderTime  string  `gorm:"size:255"`
	TotalPrice float64 `gorm:"not null;default:0"`
}

func (orderRow) TableName() string { return "orders" }

// orderItemRow строка таблицы order_items, связана с заказом только через OrderID
type orderItemRow struct {
	ID       int64 `gorm:"primaryKey;autoIncrement"`
	OrderID  int64 `gorm:"index:idx_order_items_order_id"`
	ItemID   int64
	Quantity int
	Price    float64
}

func (orderItemRow) TableName() string { return "order_items" }

// SQLite хранилище заказов на встроенной базе SQLite через GORM
type SQLite struct {
	db      *gorm.DB
	metrics *DBMetrics
}

// NewSQLite открывает (или создает) файл базы данных SQLite
func NewSQLite(path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("Ошибка создания каталога БД: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.New(log.Default(), logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		NewDBMetrics().ConnectionErrorsTotal.Inc()
		return nil, fmt.Errorf("Ошибка открытия БД SQLite: %w", err)
	}

	// SQLite допускает одного писателя одновременно
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("Ошибка получения соединения SQLite: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	return &SQLite{db: db, metrics: NewDBMetrics()}, nil
}

// Init создает таблицы orders и order_items
func (s *SQLite) Init(ctx context.Context) error {
	start := time.Now()
	defer func() { s.metrics.InitDuration.Observe(time.Since(start).Seconds()) }()

	if err := s.db.WithContext(ctx).AutoMigrate(&orderRow{}, &orderItemRow{}); err != nil {
		return fmt.Errorf("Ошибка миграции БД SQLite: %w", err)
	}

	log.Println("БД SQLite инициализирована")
	return nil
}

// SaveOrder сохраняет заказ, затем его позиции, в одной транзакции.
// Если любая вставка не удалась, не сохраняется ничего.
func (s *SQLite) SaveOrder(ctx context.Context, order *models.Order) (int64, error) {
	start := time.Now()
	defer func() { s.metrics.SaveDuration.Observe(time.Since(start).Seconds()) }()

	var orderID int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := orderRow{OrderTime: order.OrderTime, TotalPrice: order.TotalPrice}
		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("Ошибка при записи заказа: %w", err)
		}

		if len(order.Items) > 0 {
			items := make([]orderItemRow, 0, len(order.Items))
			for _, item := range order.Items {
				items = append(items, orderItemRow{
					OrderID:  row.ID,
					ItemID:   item.ItemID,
					Quantity: item.Quantity,
					Price:    item.Price,
				})
			}
			if err := tx.Create(&items).Error; err != nil {
				return fmt.Errorf("Ошибка добавления позиций: %w", err)
			}
		}

		orderID = row.ID
		return nil
	})
	if err != nil {
		s.metrics.FailedSavesTotal.Inc()
		return 0, err
	}

	s.metrics.SuccessfulSavesTotal.Inc()
	s.metrics.ItemsSavedTotal.Add(float64(len(order.Items)))
	return orderID, nil
}

// GetOrder получает заказ по идентификатору вместе с позициями
func (s *SQLite) GetOrder(ctx context.Context, orderID int64) (*models.Order, error) {
	start := time.Now()
	defer func() { s.metrics.GetDuration.Observe(time.Since(start).Seconds()) }()

	var row orderRow
	if err := s.db.WithContext(ctx).First(&row, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NotFound(msgOrderNotFound)
		}
		s.metrics.FailedGetsTotal.Inc()
		return nil, fmt.Errorf("Ошибка получения заказа: %w", err)
	}

	items, err := s.getItems(ctx, row.ID)
	if err != nil {
		s.metrics.FailedGetsTotal.Inc()
		return nil, err
	}

	s.metrics.SuccessfulGetsTotal.Inc()
	return toOrder(row, items), nil
}

// GetRecentOrders получает последние заказы, новые первыми
func (s *SQLite) GetRecentOrders(ctx context.Context, limit int) ([]models.Order, error) {
	var rows []orderRow
	if err := s.db.WithContext(ctx).Order("id DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("Ошибка при запросе заказов: %w", err)
	}

	orders := make([]models.Order, 0, len(rows))
	for _, row := range rows {
		items, err := s.getItems(ctx, row.ID)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *toOrder(row, items))
	}

	return orders, nil
}

func (s *SQLite) getItems(ctx context.Context, orderID int64) ([]orderItemRow, error) {
	var items []orderItemRow
	err := s.db.WithContext(ctx).Where("order_id = ?", orderID).Order("id").Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("Не удалось запросить позиции: %w", err)
	}
	return items, nil
}

// Close закрывает соединение с базой данных
func (s *SQLite) Close() {
	sqlDB, err := s.db.DB()
	if err != nil {
		log.Printf("Ошибка получения соединения SQLite: %v", err)
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Printf("Ошибка закрытия БД SQLite: %v", err)
	}
}

func toOrder(row orderRow, items []orderItemRow) *models.Order {
	order := &models.Order{
		ID:         row.ID,
		OrderTime:  row.OrderTime,
		TotalPrice: row.TotalPrice,
		Items:      make([]models.OrderItem, 0, len(items)),
	}
	for _, item := range items {
		order.Items = append(order.Items, models.OrderItem{
			ItemID:   item.ItemID,
			Quantity: item.Quantity,
			Price:    item.Price,
		})
	}
	return order
}
