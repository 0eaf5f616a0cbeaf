package messaging

import (
	"context"
	"encoding/json"

	"payment-service/src/internal/model"
	"payment-service/src/pkg/log"

	"github.com/IBM/sarama"
)

type PaymentResultHandler interface {
	HandlePaymentSucceeded(ctx context.Context, event *model.PaymentSucceededEvent) error
	HandlePaymentFailed(ctx context.Context, event *model.PaymentFailedEvent) error
}

type PaymentResultConsumer struct {
	Log     log.Log
	UseCase PaymentResultHandler
}

func NewPaymentResultConsumer(logger log.Log, useCase PaymentResultHandler) *PaymentResultConsumer {
	return &PaymentResultConsumer{
		Log:     logger,
		UseCase: useCase,
	}
}

func (c *PaymentResultConsumer) ConsumeSucceeded(ctx context.Context, message *sarama.ConsumerMessage) error {
	event := new(model.PaymentSucceededEvent)
	if err := json.Unmarshal(message.Value, event); err != nil {
		c.Log.Error("PaymentResultConsumer.ConsumeSucceeded", err.Error(), "unmarshal", string(message.Value))
		return nil
	}
	return c.UseCase.HandlePaymentSucceeded(ctx, event)
}

func (c *PaymentResultConsumer) ConsumeFailed(ctx context.Context, message *sarama.ConsumerMessage) error {
	event := new(model.PaymentFailedEvent)
	if err := json.Unmarshal(message.Value, event); err != nil {
		c.Log.Error("PaymentResultConsumer.ConsumeFailed", err.Error(), "unmarshal", string(message.Value))
		return nil
	}
	return c.UseCase.HandlePaymentFailed(ctx, event)
}
