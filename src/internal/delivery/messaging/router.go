package messaging

import (
	"context"
	"fmt"

	"payment-service/src/pkg/log"

	"github.com/IBM/sarama"
)

type HandlerFunc func(ctx context.Context, message *sarama.ConsumerMessage) error

// Router dispatches consumed messages to the handler registered for their
// topic. It satisfies kafka.ConsumerHandler.
type Router struct {
	Log      log.Log
	handlers map[string]HandlerFunc
}

func NewRouter(logger log.Log) *Router {
	return &Router{
		Log:      logger,
		handlers: map[string]HandlerFunc{},
	}
}

func (r *Router) Handle(topic string, handler HandlerFunc) {
	r.handlers[topic] = handler
}

func (r *Router) Topics() []string {
	topics := make([]string, 0, len(r.handlers))
	for topic := range r.handlers {
		topics = append(topics, topic)
	}
	return topics
}

func (r *Router) HandleMessage(ctx context.Context, message *sarama.ConsumerMessage) error {
	handler, ok := r.handlers[message.Topic]
	if !ok {
		r.Log.Warn("delivery/messaging/router", "no handler for topic", message.Topic, string(message.Key))
		return nil
	}
	if err := handler(ctx, message); err != nil {
		return fmt.Errorf("%s: %w", message.Topic, err)
	}
	return nil
}
