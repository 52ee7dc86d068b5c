// Package database содержит SQL запросы для работы с базой данных
package database

// SQL Queries
const (
	// Создание таблиц
	CreateOrdersTable = `CREATE TABLE IF NOT EXISTS orders (
		id SERIAL PRIMARY KEY,
		order_time VARCHAR(255),
		total_price DOUBLE PRECISION
	)`

	CreateOrderItemsTable = `CREATE TABLE IF NOT EXISTS order_items (
		id SERIAL PRIMARY KEY,
		order_id INTEGER REFERENCES orders(id),
		item_id INTEGER,
		quantity INTEGER,
		price DOUBLE PRECISION
	)`

	// Индексы
	CreateOrderItemsIndex = `CREATE INDEX IF NOT EXISTS idx_order_items_order_id ON order_items(order_id)`

	// Сохранение заказа
	SaveOrderQuery = `INSERT INTO orders (order_time, total_price)
		VALUES ($1, $2)
		RETURNING id`

	// Сохранение позиции заказа
	SaveOrderItemQuery = `INSERT INTO order_items (order_id, item_id, quantity, price)
		VALUES ($1, $2, $3, $4)`

	// Получение заказа по идентификатору
	GetOrderByIDQuery = `SELECT id, order_time, total_price
		FROM orders
		WHERE id = $1`

	// Получение позиций заказа
	GetItemsByOrderIDQuery = `SELECT item_id, quantity, price
		FROM order_items
		WHERE order_id = $1
		ORDER BY id`

	// Получение последних заказов
	GetRecentOrdersQuery = `SELECT id, order_time, total_price
		FROM orders
		ORDER BY id DESC
		LIMIT $1`
)
