package messaging

import (
	"payment-service/src/internal/model"
	"payment-service/src/pkg/kafka"
	"payment-service/src/pkg/log"
)

type OrderProducer struct {
	Producer[*model.OrderCreatedEvent]
}

func NewOrderProducer(producer kafka.Producer, log log.Log, topic string) *OrderProducer {
	return &OrderProducer{
		Producer: Producer[*model.OrderCreatedEvent]{
			Producer: producer,
			Topic:    topic,
			Log:      log,
		},
	}
}

func (p *OrderProducer) SendOrderCreated(event *model.OrderCreatedEvent) error {
	return p.Send(event)
}
