package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"restaurant_service/internal/models"

	"github.com/segmentio/kafka-go"
)

// messageReader часть kafka.Reader, которая нужна консьюмеру
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer читает входящие заказы и передает их на обработку
type Consumer struct {
	reader  messageReader // Kafka reader для чтения сообщений
	dlq     *DLQProducer  // Куда отправляются сообщения, которые не удалось обработать
	metrics *KafkaMetrics
}

// NewConsumer создает новый Kafka consumer. dlq может быть nil, тогда ошибочные сообщения только логируются.
func NewConsumer(brokers []string, topic string, groupID string, dlq *DLQProducer) *Consumer {
	// Создаем конфигурацию для Kafka reader
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,     // Список брокеров Kafka
		GroupID:        groupID,     // ID группы потребителей
		Topic:          topic,       // Топик для чтения
		CommitInterval: time.Second, // Интервал коммита сообщений
	})
	return newConsumer(reader, dlq)
}

func newConsumer(reader messageReader, dlq *DLQProducer) *Consumer {
	return &Consumer{reader: reader, dlq: dlq, metrics: NewKafkaMetrics()}
}

// Consume запускает цикл обработки сообщений до отмены контекста
func (c *Consumer) Consume(ctx context.Context, processFunc func(*models.Order) error) error {
	for {
		// Получаем сообщение из Kafka
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			// Если контекст отменен, выходим
			if ctx.Err() != nil {
				return nil
			}
			log.Printf("Ошибка при получении сообщения: %v", err)
			continue
		}

		c.handleMessage(ctx, msg, processFunc)
	}
}

// handleMessage обрабатывает одно сообщение. Заказ не повторяется: при ошибке
// сообщение уходит в DLQ и подтверждается.
func (c *Consumer) handleMessage(ctx context.Context, msg kafka.Message, processFunc func(*models.Order) error) {
	start := time.Now()
	c.metrics.MessagesReceivedTotal.Inc()
	defer func() { c.metrics.MessageProcessingTime.Observe(time.Since(start).Seconds()) }()

	if err := processMessage(msg, processFunc); err != nil {
		c.metrics.ProcessingErrorsTotal.Inc()
		log.Printf("Ошибка обработки сообщения offset=%d: %v", msg.Offset, err)
		c.sendToDLQ(ctx, msg, err)
	}

	// Подтверждаем сообщение в любом случае, чтобы не зациклиться
	if err := c.reader.CommitMessages(ctx, msg); err != nil {
		log.Printf("Ошибка commit сообщения: %v", err)
	}
}

func processMessage(msg kafka.Message, processFunc func(*models.Order) error) error {
	// Декодируем JSON сообщение в структуру заказа
	var order models.Order
	if err := json.Unmarshal(msg.Value, &order); err != nil {
		return fmt.Errorf("ошибка дешифровки сообщения: %w", err)
	}

	// Валидация полезной нагрузки
	if err := order.Validate(); err != nil {
		return fmt.Errorf("невалидный заказ: %w", err)
	}

	return processFunc(&order)
}

func (c *Consumer) sendToDLQ(ctx context.Context, msg kafka.Message, cause error) {
	if c.dlq == nil {
		return
	}
	if err := c.dlq.SendToDLQ(ctx, msg, cause, 1); err != nil {
		log.Printf("Ошибка отправки в DLQ: %v", err)
	}
}

// Close закрывает Kafka reader
func (c *Consumer) Close() error {
	return c.reader.Close()
}
