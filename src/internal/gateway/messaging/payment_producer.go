package messaging

import (
	"payment-service/src/internal/model"
	"payment-service/src/pkg/kafka"
	"payment-service/src/pkg/log"
)

type PaymentProducer struct {
	SucceededProducer Producer[*model.PaymentSucceededEvent]
	FailedProducer    Producer[*model.PaymentFailedEvent]
}

func NewPaymentProducer(producer kafka.Producer, log log.Log, succeededTopic, failedTopic string) *PaymentProducer {
	return &PaymentProducer{
		SucceededProducer: Producer[*model.PaymentSucceededEvent]{
			Producer: producer,
			Topic:    succeededTopic,
			Log:      log,
		},
		FailedProducer: Producer[*model.PaymentFailedEvent]{
			Producer: producer,
			Topic:    failedTopic,
			Log:      log,
		},
	}
}

func (p *PaymentProducer) SendPaymentSucceeded(event *model.PaymentSucceededEvent) error {
	return p.SucceededProducer.Send(event)
}

func (p *PaymentProducer) SendPaymentFailed(event *model.PaymentFailedEvent) error {
	return p.FailedProducer.Send(event)
}
