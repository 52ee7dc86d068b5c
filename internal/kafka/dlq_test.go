package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDLQProducer_SendToDLQ(t *testing.T) {
	t.Run("ValidJSONKeptAsIs", func(t *testing.T) {
		writer := &fakeWriter{}
		dlq := newDLQProducer(writer, "orders-dlq")

		original := kafka.Message{
			Topic: "orders",
			Key:   []byte("key-1"),
			Value: []byte(`{"items":[{"id":1}]}`),
		}
		require.NoError(t, dlq.SendToDLQ(context.Background(), original, errors.New("relation does not exist"), 1))

		sent := writer.sent()
		require.Len(t, sent, 1)
		assert.Equal(t, []byte("key-1"), sent[0].Key)

		var msg DLQMessage
		require.NoError(t, json.Unmarshal(sent[0].Value, &msg))
		assert.Equal(t, "relation does not exist", msg.Error)
		assert.Equal(t, "orders", msg.Topic)
		assert.Equal(t, "key-1", msg.Key)
		assert.Equal(t, 1, msg.Attempts)
		assert.JSONEq(t, `{"items":[{"id":1}]}`, string(msg.OriginalMessage))
		assert.False(t, msg.Timestamp.IsZero())
	})

	t.Run("InvalidJSONWrappedAsString", func(t *testing.T) {
		writer := &fakeWriter{}
		dlq := newDLQProducer(writer, "orders-dlq")

		original := kafka.Message{Topic: "orders", Value: []byte("not json")}
		require.NoError(t, dlq.SendToDLQ(context.Background(), original, errors.New("decode"), 1))

		var msg DLQMessage
		require.NoError(t, json.Unmarshal(writer.sent()[0].Value, &msg))

		var raw string
		require.NoError(t, json.Unmarshal(msg.OriginalMessage, &raw))
		assert.Equal(t, "not json", raw)
	})

	t.Run("WriteError", func(t *testing.T) {
		writer := &fakeWriter{failures: 1}
		dlq := newDLQProducer(writer, "orders-dlq")

		err := dlq.SendToDLQ(context.Background(), kafka.Message{Value: []byte(`{}`)}, errors.New("x"), 1)
		assert.Error(t, err, "DLQ не повторяет отправку")
		assert.Equal(t, 1, writer.attempts)
	})
}

func TestNewDLQProducer(t *testing.T) {
	producer := NewDLQProducer([]string{"localhost:9092"}, "test-dlq-topic")

	assert.NotNil(t, producer)
	assert.Equal(t, "test-dlq-topic", producer.topic)
	assert.NotNil(t, producer.writer)
}
