package kafka

import (
	"context"
	"errors"
	"fmt"
	"time"

	"payment-service/src/pkg/log"

	"github.com/IBM/sarama"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// DeadLetterSuffix names the topic a message is parked on once its handler
// has failed every attempt.
const DeadLetterSuffix = ".dlq"

var messagesDeadLetteredTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "kafka_messages_dead_lettered_total",
	Help: "Messages acknowledged after every handler attempt failed; each needs manual reconciliation.",
}, []string{"topic"})

type groupConsumer struct {
	group      sarama.ConsumerGroup
	handler    ConsumerHandler
	deadLetter Producer
	cfg        KafkaConfig
	log        log.Log
}

// NewConsumer joins the configured consumer group.
func NewConsumer(cfg KafkaConfig, logger log.Log) (Consumer, error) {
	saramaCfg, err := cfg.SaramaConfig()
	if err != nil {
		return nil, err
	}
	group, err := sarama.NewConsumerGroup(cfg.Brokers, cfg.GroupID, saramaCfg)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer group: %w", err)
	}
	return &groupConsumer{group: group, cfg: cfg, log: logger}, nil
}

func (c *groupConsumer) SetHandler(handler ConsumerHandler) {
	c.handler = handler
}

func (c *groupConsumer) SetDeadLetter(producer Producer) {
	c.deadLetter = producer
}

// Subscribe blocks, rejoining the group after every rebalance or abandoned
// claim, until ctx is cancelled.
func (c *groupConsumer) Subscribe(ctx context.Context, topics ...string) error {
	if c.handler == nil {
		return errors.New("kafka consumer: handler not set")
	}

	go func() {
		for err := range c.group.Errors() {
			c.log.Error("kafka-consumer", err.Error(), "group-error", c.cfg.GroupID)
		}
	}()

	claimHandler := &ClaimHandler{
		Handler:    c.handler,
		DeadLetter: c.deadLetter,
		Attempts:   c.cfg.RetryAttempts,
		Backoff:    c.cfg.RetryBackoff,
		Log:        c.log,
	}
	for {
		if err := c.group.Consume(ctx, topics, claimHandler); err != nil {
			if errors.Is(err, sarama.ErrClosedConsumerGroup) {
				return nil
			}
			c.log.Error("kafka-consumer", fmt.Sprintf("consume: %v", err), "Subscribe", c.cfg.GroupID)
			select {
			case <-ctx.Done():
			case <-time.After(c.cfg.RetryBackoff):
			}
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}

func (c *groupConsumer) Close() error {
	return c.group.Close()
}

// ClaimHandler adapts a ConsumerHandler to sarama. A message is retried with
// backoff up to Attempts times. After the last failure it is copied to
// <topic>.dlq when DeadLetter is set, counted for reconciliation, and marked,
// so one poison message cannot stall the group. Only a cancelled session
// leaves a message unmarked for redelivery.
type ClaimHandler struct {
	Handler    ConsumerHandler
	DeadLetter Producer
	Attempts   int
	Backoff    time.Duration
	Log        log.Log
}

func (h *ClaimHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *ClaimHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *ClaimHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case msg, ok := <-claim.Messages():
			if !ok {
				return nil
			}
			if err := h.handle(session.Context(), msg); err != nil {
				if session.Context().Err() != nil {
					return nil
				}
				h.park(msg, err)
			}
			session.MarkMessage(msg, "")
		case <-session.Context().Done():
			return nil
		}
	}
}

func (h *ClaimHandler) handle(ctx context.Context, msg *sarama.ConsumerMessage) error {
	attempts := h.Attempts
	if attempts <= 0 {
		attempts = 1
	}
	backoff := h.Backoff

	var err error
	for i := 0; i < attempts; i++ {
		if err = h.Handler.HandleMessage(ctx, msg); err == nil {
			return nil
		}
		h.Log.Error("kafka-consumer", fmt.Sprintf("handler failed (attempt %d/%d): %v", i+1, attempts, err),
			"ConsumeClaim", messageMeta(msg))
		if i == attempts-1 {
			break
		}
		select {
		case <-time.After(backoff):
			backoff *= 2
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return fmt.Errorf("message %s not handled: %w", messageMeta(msg), err)
}

func (h *ClaimHandler) park(msg *sarama.ConsumerMessage, cause error) {
	messagesDeadLetteredTotal.WithLabelValues(msg.Topic).Inc()
	h.Log.Error("kafka-consumer", fmt.Sprintf("giving up, reconciliation required: %v", cause), "dead-letter", messageMeta(msg))

	if h.DeadLetter == nil {
		return
	}
	headers := append([]sarama.RecordHeader{}, recordHeaders(msg)...)
	headers = append(headers, sarama.RecordHeader{Key: []byte("x-error"), Value: []byte(cause.Error())})
	dlq := &sarama.ProducerMessage{
		Topic:   msg.Topic + DeadLetterSuffix,
		Key:     sarama.ByteEncoder(msg.Key),
		Value:   sarama.ByteEncoder(msg.Value),
		Headers: headers,
	}
	if err := h.DeadLetter.Publish(dlq); err != nil {
		h.Log.Error("kafka-consumer", fmt.Sprintf("dead letter publish failed: %v", err), "dead-letter", messageMeta(msg))
	}
}

func recordHeaders(msg *sarama.ConsumerMessage) []sarama.RecordHeader {
	headers := make([]sarama.RecordHeader, 0, len(msg.Headers))
	for _, header := range msg.Headers {
		if header != nil {
			headers = append(headers, *header)
		}
	}
	return headers
}

func messageMeta(msg *sarama.ConsumerMessage) string {
	return fmt.Sprintf("topic=%s partition=%d offset=%d", msg.Topic, msg.Partition, msg.Offset)
}
