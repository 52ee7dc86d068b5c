// Package kafka содержит логику для работы с Apache Kafka
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"strconv"
	"time"

	"restaurant_service/internal/models"
	"restaurant_service/internal/retry"

	"github.com/go-faker/faker/v4"
	"github.com/segmentio/kafka-go"
)

// Количество позиций в демонстрационном меню
const menuSize = 7

// messageWriter часть kafka.Writer, которая нужна продюсерам
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

func newWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...), // Адреса брокеров Kafka
		Topic:                  topic,                 // Топик для отправки
		Balancer:               &kafka.LeastBytes{},   // Балансировщик по наименьшему количеству байт
		WriteTimeout:           10 * time.Second,      // Таймаут на запись
		ReadTimeout:            10 * time.Second,      // Таймаут на чтение
		RequiredAcks:           kafka.RequireAll,      // Требовать подтверждения от всех реплик
		MaxAttempts:            3,                     // Максимальное количество попыток
		AllowAutoTopicCreation: true,                  // Разрешить автоматическое создание топика
	}
}

// OrderEvent событие о сохраненном заказе
type OrderEvent struct {
	OrderID     int64              `json:"order_id"`
	TotalPrice  float64            `json:"totalPrice"`
	OrderTime   string             `json:"orderTime"`
	Items       []models.OrderItem `json:"items"`
	SubmittedAt time.Time          `json:"submitted_at"` // Время сохранения на сервере
}

// Producer для отправки сообщений в Kafka
type Producer struct {
	writer  messageWriter // Kafka writer для отправки сообщений
	topic   string        // Топик для отправки
	metrics *KafkaMetrics // Метрики для мониторинга
}

// NewProducer создает нового Kafka продюсера для указанного топика
func NewProducer(brokers []string, topic string) *Producer {
	return newProducer(newWriter(brokers, topic), topic)
}

func newProducer(writer messageWriter, topic string) *Producer {
	return &Producer{
		writer:  writer,
		topic:   topic,
		metrics: NewKafkaMetrics(),
	}
}

// PublishOrder отправляет событие о сохраненном заказе
func (p *Producer) PublishOrder(ctx context.Context, order *models.Order) error {
	event := OrderEvent{
		OrderID:     order.ID,
		TotalPrice:  order.TotalPrice,
		OrderTime:   order.OrderTime,
		Items:       order.Items,
		SubmittedAt: time.Now().UTC(),
	}

	eventJSON, err := json.Marshal(event)
	if err != nil {
		p.metrics.ProcessingErrorsTotal.Inc()
		return err
	}

	return p.write(ctx, retry.LightPolicy(), kafka.Message{
		Key:   []byte(strconv.FormatInt(order.ID, 10)), // Идентификатор заказа в качестве ключа
		Value: eventJSON,
		Time:  time.Now(),
	})
}

// SendOrder отправляет заказ во входящий топик с механизмом повторных попыток
func (p *Producer) SendOrder(ctx context.Context, order *models.Order) error {
	// Валидация заказа перед отправкой
	if err := order.Validate(); err != nil {
		p.metrics.ProcessingErrorsTotal.Inc()
		return fmt.Errorf("ошибка валидации заказа перед отправкой в Kafka: %w", err)
	}

	// Сериализация заказа в JSON
	orderJSON, err := json.Marshal(order)
	if err != nil {
		p.metrics.ProcessingErrorsTotal.Inc()
		return err
	}

	return p.write(ctx, retry.DefaultPolicy(), kafka.Message{
		Key:   []byte(order.OrderTime),
		Value: orderJSON,
		Time:  time.Now(),
	})
}

func (p *Producer) write(ctx context.Context, policy retry.Policy, msg kafka.Message) error {
	attempt := 0
	err := retry.DoWithContext(ctx, policy, func(ctx context.Context) error {
		attempt++
		if attempt > 1 {
			p.metrics.RetryAttemptsTotal.Inc()
		}

		if err := p.writer.WriteMessages(ctx, msg); err != nil {
			p.metrics.FailedSendsTotal.Inc()
			log.Printf("Ошибка отправки сообщения в %s (попытка %d): %v", p.topic, attempt, err)
			return err
		}
		p.metrics.MessagesSentTotal.Inc()
		return nil
	})

	if err != nil {
		p.metrics.ProcessingErrorsTotal.Inc()
	}

	return err
}

// Close закрывает writer Kafka
func (p *Producer) Close() error {
	return p.writer.Close()
}

// GenerateTestOrder создает тестовый заказ для демонстрации с использованием фейковых данных
func GenerateTestOrder(index int) *models.Order {
	numItems := 1 + index%5 // от 1 до 5 позиций
	items := make([]models.OrderItem, 0, numItems)

	var total float64
	for i := 0; i < numItems; i++ {
		var item models.OrderItem
		_ = faker.FakeData(&item)

		// Приводим случайные значения к позициям меню и разумным ценам
		item.ItemID = 1 + int64(uint64(item.ItemID)%menuSize)
		item.Quantity = 1 + int(uint64(item.Quantity)%4)
		item.Price = float64(100+uint64(math.Abs(item.Price)*1e6)%1900) / 100

		total += item.Price * float64(item.Quantity)
		items = append(items, item)
	}

	order := &models.Order{
		Items:      items,
		TotalPrice: math.Round(total*100) / 100,
		OrderTime:  time.Now().Add(-time.Duration(index) * time.Minute).Format("2006-01-02T15:04:05"),
	}

	// Валидация сгенерированного заказа
	if err := order.Validate(); err != nil {
		log.Printf("Сгенерированный заказ не прошел валидацию: %v", err)
	}

	return order
}
