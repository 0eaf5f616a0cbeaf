package messaging

import (
	"context"
	"encoding/json"

	"payment-service/src/internal/model"
	"payment-service/src/pkg/log"

	"github.com/IBM/sarama"
)

type OrderCreatedHandler interface {
	HandleOrderCreated(ctx context.Context, event *model.OrderCreatedEvent) error
}

type OrderCreatedConsumer struct {
	Log     log.Log
	UseCase OrderCreatedHandler
}

func NewOrderCreatedConsumer(logger log.Log, useCase OrderCreatedHandler) *OrderCreatedConsumer {
	return &OrderCreatedConsumer{
		Log:     logger,
		UseCase: useCase,
	}
}

// Consume decodes an order-created message. A body that does not decode is
// still handed on when its order id can be read, so the order gets a
// failed result instead of waiting forever.
func (c *OrderCreatedConsumer) Consume(ctx context.Context, message *sarama.ConsumerMessage) error {
	event := new(model.OrderCreatedEvent)
	if err := json.Unmarshal(message.Value, event); err != nil {
		c.Log.Error("OrderCreatedConsumer.Consume", err.Error(), "unmarshal", string(message.Value))

		var ids struct {
			OrderID int64 `json:"orderId"`
			UserID  int64 `json:"userId"`
		}
		_ = json.Unmarshal(message.Value, &ids)
		event = &model.OrderCreatedEvent{OrderID: ids.OrderID, UserID: ids.UserID}
	}
	return c.UseCase.HandleOrderCreated(ctx, event)
}
