package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
)

// DLQMessage представляет сообщение в DLQ с дополнительной информацией
type DLQMessage struct {
	OriginalMessage json.RawMessage `json:"original_message"` // Оригинальное сообщение
	Error           string          `json:"error"`            // Ошибка, приведшая к отправке в DLQ
	Timestamp       time.Time       `json:"timestamp"`        // Время отправки в DLQ
	Topic           string          `json:"topic"`            // Изначальный топик
	Key             string          `json:"key"`              // Ключ сообщения
	Attempts        int             `json:"attempts"`         // Количество попыток обработки
}

// DLQProducer для отправки сообщений в DLQ
type DLQProducer struct {
	writer  messageWriter
	topic   string
	metrics *KafkaMetrics
}

// NewDLQProducer создает новый DLQ producer
func NewDLQProducer(brokers []string, dlqTopic string) *DLQProducer {
	return newDLQProducer(newWriter(brokers, dlqTopic), dlqTopic)
}

func newDLQProducer(writer messageWriter, dlqTopic string) *DLQProducer {
	return &DLQProducer{
		writer:  writer,
		topic:   dlqTopic,
		metrics: NewKafkaMetrics(),
	}
}

// SendToDLQ отправляет сообщение в DLQ вместе с причиной ошибки
func (d *DLQProducer) SendToDLQ(ctx context.Context, originalMsg kafka.Message, err error, attempts int) error {
	original := json.RawMessage(originalMsg.Value)
	if !json.Valid(originalMsg.Value) {
		// Невалидный JSON сохраняем строкой, чтобы DLQ сообщение оставалось разбираемым
		original, _ = json.Marshal(string(originalMsg.Value))
	}

	dlqMsg := DLQMessage{
		OriginalMessage: original,
		Error:           err.Error(),
		Timestamp:       time.Now(),
		Topic:           originalMsg.Topic,
		Key:             string(originalMsg.Key),
		Attempts:        attempts,
	}

	msgJSON, jsonErr := json.Marshal(dlqMsg)
	if jsonErr != nil {
		return jsonErr
	}

	dlqKafkaMsg := kafka.Message{
		Key:   originalMsg.Key,
		Value: msgJSON,
		Time:  time.Now(),
	}

	if sendErr := d.writer.WriteMessages(ctx, dlqKafkaMsg); sendErr != nil {
		d.metrics.FailedSendsTotal.Inc()
		return sendErr
	}

	d.metrics.DLQMessagesSentTotal.Inc()
	return nil
}

// Close закрывает DLQ producer
func (d *DLQProducer) Close() error {
	return d.writer.Close()
}
