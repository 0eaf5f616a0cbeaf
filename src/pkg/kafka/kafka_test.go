package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"payment-service/src/pkg/log"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitKafkaConfig(t *testing.T) {
	cfg := InitKafkaConfig(Cfg{KafkaUrl: "b1:9092, b2:9092,", AppName: "payment-service"})

	assert.Equal(t, []string{"b1:9092", "b2:9092"}, cfg.Brokers)
	assert.Equal(t, "payment-service", cfg.GroupID)
	assert.Equal(t, 3, cfg.RetryAttempts)
	assert.Equal(t, 500*time.Millisecond, cfg.RetryBackoff)

	saramaCfg, err := cfg.SaramaConfig()
	require.NoError(t, err)
	assert.Equal(t, sarama.WaitForAll, saramaCfg.Producer.RequiredAcks)
	assert.True(t, saramaCfg.Producer.Idempotent)
	assert.False(t, saramaCfg.Net.SASL.Enable)
}

func TestSaramaConfigRejectsBadCA(t *testing.T) {
	cfg := InitKafkaConfig(Cfg{KafkaUrl: "b1:9092", KafkaUsername: "u", KafkaPassword: "p", KafkaCaCert: "bm90LWEtY2VydA=="})
	_, err := cfg.SaramaConfig()
	assert.Error(t, err)
}

func TestProducerPublish(t *testing.T) {
	mock := mocks.NewSyncProducer(t, nil)
	mock.ExpectSendMessageAndSucceed()
	mock.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	p := NewProducerFrom(mock, log.Nop())
	msg := &sarama.ProducerMessage{Topic: "payment-succeeded", Key: sarama.StringEncoder("1"), Value: sarama.StringEncoder("{}")}

	assert.NoError(t, p.Publish(msg))
	assert.ErrorIs(t, p.Publish(msg), sarama.ErrOutOfBrokers)
	require.NoError(t, p.Close())
}

type handlerFunc func(ctx context.Context, msg *sarama.ConsumerMessage) error

func (f handlerFunc) HandleMessage(ctx context.Context, msg *sarama.ConsumerMessage) error {
	return f(ctx, msg)
}

type fakeSession struct {
	ctx    context.Context
	mu     sync.Mutex
	marked []int64
}

func (s *fakeSession) Claims() map[string][]int32                               { return nil }
func (s *fakeSession) MemberID() string                                         { return "member" }
func (s *fakeSession) GenerationID() int32                                      { return 1 }
func (s *fakeSession) MarkOffset(string, int32, int64, string)                  {}
func (s *fakeSession) Commit()                                                  {}
func (s *fakeSession) ResetOffset(string, int32, int64, string)                 {}
func (s *fakeSession) Context() context.Context                                 { return s.ctx }
func (s *fakeSession) MarkMessage(msg *sarama.ConsumerMessage, metadata string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.marked = append(s.marked, msg.Offset)
}

type fakeClaim struct {
	msgs chan *sarama.ConsumerMessage
}

func (c *fakeClaim) Topic() string                            { return "order-created" }
func (c *fakeClaim) Partition() int32                         { return 0 }
func (c *fakeClaim) InitialOffset() int64                     { return 0 }
func (c *fakeClaim) HighWaterMarkOffset() int64               { return 0 }
func (c *fakeClaim) Messages() <-chan *sarama.ConsumerMessage { return c.msgs }

func TestClaimHandlerMarksHandledMessages(t *testing.T) {
	claim := &fakeClaim{msgs: make(chan *sarama.ConsumerMessage, 3)}
	for i := int64(0); i < 3; i++ {
		claim.msgs <- &sarama.ConsumerMessage{Topic: "order-created", Offset: i}
	}
	close(claim.msgs)

	session := &fakeSession{ctx: context.Background()}
	h := &ClaimHandler{
		Handler:  handlerFunc(func(context.Context, *sarama.ConsumerMessage) error { return nil }),
		Attempts: 1,
		Log:      log.Nop(),
	}

	require.NoError(t, h.ConsumeClaim(session, claim))
	assert.Equal(t, []int64{0, 1, 2}, session.marked)
}

type recordingProducer struct {
	mu       sync.Mutex
	messages []*sarama.ProducerMessage
	err      error
}

func (p *recordingProducer) Publish(message *sarama.ProducerMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.messages = append(p.messages, message)
	return nil
}

func (p *recordingProducer) Close() error { return nil }

func TestClaimHandlerDeadLettersAfterLastAttempt(t *testing.T) {
	claim := &fakeClaim{msgs: make(chan *sarama.ConsumerMessage, 2)}
	claim.msgs <- &sarama.ConsumerMessage{Topic: "order-created", Offset: 7, Key: []byte("42"), Value: []byte(`{"orderId":42}`)}
	claim.msgs <- &sarama.ConsumerMessage{Topic: "order-created", Offset: 8, Key: []byte("43"), Value: []byte(`{"orderId":43}`)}
	close(claim.msgs)

	calls := 0
	deadLetter := &recordingProducer{}
	session := &fakeSession{ctx: context.Background()}
	h := &ClaimHandler{
		Handler: handlerFunc(func(context.Context, *sarama.ConsumerMessage) error {
			calls++
			return errors.New("lock wait timeout")
		}),
		DeadLetter: deadLetter,
		Attempts:   3,
		Backoff:    time.Millisecond,
		Log:        log.Nop(),
	}
	parked := testutil.ToFloat64(messagesDeadLetteredTotal.WithLabelValues("order-created"))

	require.NoError(t, h.ConsumeClaim(session, claim))
	assert.Equal(t, 6, calls)
	assert.Equal(t, []int64{7, 8}, session.marked)
	assert.Equal(t, parked+2, testutil.ToFloat64(messagesDeadLetteredTotal.WithLabelValues("order-created")))

	require.Len(t, deadLetter.messages, 2)
	first := deadLetter.messages[0]
	assert.Equal(t, "order-created"+DeadLetterSuffix, first.Topic)
	assert.Equal(t, sarama.ByteEncoder(`{"orderId":42}`), first.Value)
	require.Len(t, first.Headers, 1)
	assert.Equal(t, "x-error", string(first.Headers[0].Key))
}

func TestClaimHandlerMarksWhenDeadLetterUnavailable(t *testing.T) {
	claim := &fakeClaim{msgs: make(chan *sarama.ConsumerMessage, 1)}
	claim.msgs <- &sarama.ConsumerMessage{Topic: "order-created", Offset: 4}
	close(claim.msgs)

	session := &fakeSession{ctx: context.Background()}
	h := &ClaimHandler{
		Handler: handlerFunc(func(context.Context, *sarama.ConsumerMessage) error {
			return errors.New("poison")
		}),
		DeadLetter: &recordingProducer{err: sarama.ErrOutOfBrokers},
		Attempts:   1,
		Log:        log.Nop(),
	}

	require.NoError(t, h.ConsumeClaim(session, claim))
	assert.Equal(t, []int64{4}, session.marked)
}

func TestClaimHandlerLeavesMessageUnmarkedOnShutdown(t *testing.T) {
	claim := &fakeClaim{msgs: make(chan *sarama.ConsumerMessage, 1)}
	claim.msgs <- &sarama.ConsumerMessage{Topic: "order-created", Offset: 9}

	ctx, cancel := context.WithCancel(context.Background())
	session := &fakeSession{ctx: ctx}
	deadLetter := &recordingProducer{}
	h := &ClaimHandler{
		Handler: handlerFunc(func(context.Context, *sarama.ConsumerMessage) error {
			cancel()
			return errors.New("shutting down")
		}),
		DeadLetter: deadLetter,
		Attempts:   3,
		Backoff:    time.Second,
		Log:        log.Nop(),
	}

	require.NoError(t, h.ConsumeClaim(session, claim))
	assert.Empty(t, session.marked)
	assert.Empty(t, deadLetter.messages)
}

func TestClaimHandlerRecoversOnRetry(t *testing.T) {
	claim := &fakeClaim{msgs: make(chan *sarama.ConsumerMessage, 1)}
	claim.msgs <- &sarama.ConsumerMessage{Topic: "order-created", Offset: 3}
	close(claim.msgs)

	calls := 0
	session := &fakeSession{ctx: context.Background()}
	h := &ClaimHandler{
		Handler: handlerFunc(func(context.Context, *sarama.ConsumerMessage) error {
			calls++
			if calls == 1 {
				return errors.New("transient")
			}
			return nil
		}),
		Attempts: 3,
		Backoff:  time.Millisecond,
		Log:      log.Nop(),
	}

	require.NoError(t, h.ConsumeClaim(session, claim))
	assert.Equal(t, 2, calls)
	assert.Equal(t, []int64{3}, session.marked)
}
