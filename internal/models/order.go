// Package models содержит структуры данных для работы с заказами
package models

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

// Экземпляр валидатора
var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Order представляет заказ: позиции, итоговая сумма и время заказа
type Order struct {
	ID         int64       `json:"order_id,omitempty"`        // Идентификатор, назначенный хранилищем
	Items      []OrderItem `json:"items" validate:"required"` // Позиции заказа
	TotalPrice float64     `json:"totalPrice"`                // Итоговая сумма
	OrderTime  string      `json:"orderTime"`                 // Время заказа, как его прислал клиент
}

// OrderItem представляет позицию заказа
type OrderItem struct {
	ItemID   int64   `json:"id"`       // Идентификатор товара из меню
	Quantity int     `json:"quantity"` // Количество
	Price    float64 `json:"price"`    // Цена за единицу
}

// Validate проверяет только форму запроса: список позиций должен присутствовать.
// Количество, цены и формат времени не проверяются.
func (o *Order) Validate() error {
	if o == nil {
		return errors.New("order is nil")
	}
	return validate.Struct(o)
}
