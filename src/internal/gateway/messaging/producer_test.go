package messaging

import (
	"encoding/json"
	"errors"
	"testing"

	"payment-service/src/internal/model"
	"payment-service/src/pkg/kafka"
	"payment-service/src/pkg/log"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockProducer(t *testing.T) *mocks.SyncProducer {
	config := mocks.NewTestConfig()
	config.Producer.Return.Successes = true
	mock := mocks.NewSyncProducer(t, config)
	t.Cleanup(func() { _ = mock.Close() })
	return mock
}

func TestPaymentProducerKeysByOrderID(t *testing.T) {
	decimal.MarshalJSONWithoutQuotes = true
	t.Cleanup(func() { decimal.MarshalJSONWithoutQuotes = false })

	mock := newMockProducer(t)
	mock.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		assert.Equal(t, "payment-succeeded", msg.Topic)
		key, err := msg.Key.Encode()
		require.NoError(t, err)
		assert.Equal(t, "42", string(key))

		value, err := msg.Value.Encode()
		require.NoError(t, err)
		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(value, &body))
		assert.Equal(t, float64(42), body["orderId"])
		assert.Equal(t, float64(300), body["amount"])
		assert.Equal(t, "t-1", body["transactionId"])
		return nil
	})

	producer := NewPaymentProducer(kafka.NewProducerFrom(mock, log.Nop()), log.Nop(), "payment-succeeded", "payment-failed")
	err := producer.SendPaymentSucceeded(&model.PaymentSucceededEvent{
		OrderID: 42, UserID: 7, Amount: decimal.NewFromInt(300), TransactionID: "t-1",
	})
	assert.NoError(t, err)
}

func TestPaymentProducerFailedTopic(t *testing.T) {
	mock := newMockProducer(t)
	mock.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		if msg.Topic != "payment-failed" {
			return errors.New("unexpected topic " + msg.Topic)
		}
		return nil
	})

	producer := NewPaymentProducer(kafka.NewProducerFrom(mock, log.Nop()), log.Nop(), "payment-succeeded", "payment-failed")
	assert.NoError(t, producer.SendPaymentFailed(&model.PaymentFailedEvent{OrderID: 42, Reason: "INSUFFICIENT_BALANCE"}))
}

func TestOrderProducerPropagatesBrokerError(t *testing.T) {
	mock := newMockProducer(t)
	mock.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	producer := NewOrderProducer(kafka.NewProducerFrom(mock, log.Nop()), log.Nop(), "order-created")
	err := producer.SendOrderCreated(&model.OrderCreatedEvent{OrderID: 42, UserID: 7, TotalAmount: decimal.NewFromInt(300)})
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
}

func TestDisabledProducerReportsError(t *testing.T) {
	producer := NewOrderProducer(nil, log.Nop(), "order-created")
	err := producer.SendOrderCreated(&model.OrderCreatedEvent{OrderID: 42})
	assert.ErrorIs(t, err, ErrProducerDisabled)
}
