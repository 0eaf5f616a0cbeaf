package messaging

import (
	"encoding/json"
	"errors"

	"payment-service/src/internal/model"
	"payment-service/src/pkg/kafka"
	"payment-service/src/pkg/log"

	"github.com/IBM/sarama"
)

var ErrProducerDisabled = errors.New("kafka producer is disabled")

type Producer[T model.Event] struct {
	Producer kafka.Producer
	Topic    string
	Log      log.Log
}

// Send publishes event keyed by its id so every event of one order lands on
// the same partition.
func (p *Producer[T]) Send(event T) error {
	if p.Producer == nil {
		return ErrProducerDisabled
	}

	value, err := json.Marshal(event)
	if err != nil {
		p.Log.Error("gateway/messaging/producer", "failed to marshal event", "Send", err.Error())
		return err
	}

	message := &sarama.ProducerMessage{
		Topic: p.Topic,
		Key:   sarama.StringEncoder(event.GetId()),
		Value: sarama.ByteEncoder(value),
	}

	err = p.Producer.Publish(message)
	if err != nil {
		p.Log.Error("send-event", "error send message", p.Topic, err.Error())
		return err
	}

	return nil
}
