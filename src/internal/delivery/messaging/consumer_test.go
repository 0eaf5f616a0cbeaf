package messaging

import (
	"context"
	"errors"
	"testing"

	"payment-service/src/internal/model"
	"payment-service/src/pkg/log"

	"github.com/IBM/sarama"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingHandler struct {
	created   []*model.OrderCreatedEvent
	succeeded []*model.PaymentSucceededEvent
	failed    []*model.PaymentFailedEvent
	err       error
}

func (h *recordingHandler) HandleOrderCreated(ctx context.Context, event *model.OrderCreatedEvent) error {
	h.created = append(h.created, event)
	return h.err
}

func (h *recordingHandler) HandlePaymentSucceeded(ctx context.Context, event *model.PaymentSucceededEvent) error {
	h.succeeded = append(h.succeeded, event)
	return h.err
}

func (h *recordingHandler) HandlePaymentFailed(ctx context.Context, event *model.PaymentFailedEvent) error {
	h.failed = append(h.failed, event)
	return h.err
}

func newRouter(h *recordingHandler) *Router {
	router := NewRouter(log.Nop())
	router.Handle("order-created", NewOrderCreatedConsumer(log.Nop(), h).Consume)
	results := NewPaymentResultConsumer(log.Nop(), h)
	router.Handle("payment-succeeded", results.ConsumeSucceeded)
	router.Handle("payment-failed", results.ConsumeFailed)
	return router
}

func message(topic, body string) *sarama.ConsumerMessage {
	return &sarama.ConsumerMessage{Topic: topic, Key: []byte("42"), Value: []byte(body)}
}

func TestRouterDispatchesByTopic(t *testing.T) {
	h := &recordingHandler{}
	router := newRouter(h)
	ctx := context.Background()

	require.NoError(t, router.HandleMessage(ctx, message("order-created",
		`{"orderId":42,"userId":7,"totalAmount":300,"items":[{"resourceTemplateId":1,"price":300,"discount":0}]}`)))
	require.NoError(t, router.HandleMessage(ctx, message("payment-succeeded",
		`{"orderId":42,"userId":7,"amount":300,"transactionId":"t-1"}`)))
	require.NoError(t, router.HandleMessage(ctx, message("payment-failed",
		`{"orderId":43,"userId":7,"amount":300,"reason":"INSUFFICIENT_BALANCE"}`)))

	require.Len(t, h.created, 1)
	assert.True(t, h.created[0].TotalAmount.Equal(decimal.NewFromInt(300)))
	require.Len(t, h.succeeded, 1)
	assert.Equal(t, "t-1", h.succeeded[0].TransactionID)
	require.Len(t, h.failed, 1)
	assert.Equal(t, "INSUFFICIENT_BALANCE", h.failed[0].Reason)
	assert.ElementsMatch(t, []string{"order-created", "payment-succeeded", "payment-failed"}, router.Topics())
}

func TestRouterIgnoresUnknownTopic(t *testing.T) {
	h := &recordingHandler{}
	assert.NoError(t, newRouter(h).HandleMessage(context.Background(), message("elsewhere", `{}`)))
}

func TestRouterPropagatesHandlerError(t *testing.T) {
	boom := errors.New("boom")
	h := &recordingHandler{err: boom}

	err := newRouter(h).HandleMessage(context.Background(), message("order-created", `{"orderId":42,"userId":7,"totalAmount":300}`))
	assert.ErrorIs(t, err, boom)
}

func TestOrderCreatedConsumerForwardsUndecodableBody(t *testing.T) {
	h := &recordingHandler{}
	consumer := NewOrderCreatedConsumer(log.Nop(), h)

	require.NoError(t, consumer.Consume(context.Background(), message("order-created", `{"orderId":42,"userId":7,"totalAmount":"abc"}`)))
	require.Len(t, h.created, 1)
	assert.Equal(t, int64(42), h.created[0].OrderID)
	assert.True(t, h.created[0].TotalAmount.IsZero())

	require.NoError(t, consumer.Consume(context.Background(), message("order-created", `not json`)))
	require.Len(t, h.created, 2)
	assert.Zero(t, h.created[1].OrderID)
}

func TestPaymentResultConsumerDropsGarbage(t *testing.T) {
	h := &recordingHandler{}
	consumer := NewPaymentResultConsumer(log.Nop(), h)

	assert.NoError(t, consumer.ConsumeSucceeded(context.Background(), message("payment-succeeded", `nope`)))
	assert.NoError(t, consumer.ConsumeFailed(context.Background(), message("payment-failed", `nope`)))
	assert.Empty(t, h.succeeded)
	assert.Empty(t, h.failed)
}
