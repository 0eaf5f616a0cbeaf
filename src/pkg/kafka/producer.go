package kafka

import (
	"fmt"

	"payment-service/src/pkg/log"

	"github.com/IBM/sarama"
)

type syncProducer struct {
	producer sarama.SyncProducer
	log      log.Log
}

// NewProducer dials the brokers and returns a synchronous producer.
func NewProducer(cfg KafkaConfig, logger log.Log) (Producer, error) {
	saramaCfg, err := cfg.SaramaConfig()
	if err != nil {
		return nil, err
	}
	p, err := sarama.NewSyncProducer(cfg.Brokers, saramaCfg)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return NewProducerFrom(p, logger), nil
}

// NewProducerFrom wraps an existing sarama producer.
func NewProducerFrom(p sarama.SyncProducer, logger log.Log) Producer {
	return &syncProducer{producer: p, log: logger}
}

func (p *syncProducer) Publish(message *sarama.ProducerMessage) error {
	partition, offset, err := p.producer.SendMessage(message)
	if err != nil {
		p.log.Error("kafka-producer", fmt.Sprintf("failed to publish: %v", err), "Publish", message.Topic)
		return err
	}
	p.log.Info("kafka-producer", "message published", "Publish",
		fmt.Sprintf("topic=%s partition=%d offset=%d", message.Topic, partition, offset))
	return nil
}

func (p *syncProducer) Close() error {
	return p.producer.Close()
}
