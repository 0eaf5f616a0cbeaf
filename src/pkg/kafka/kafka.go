package kafka

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/base64"
	"errors"
	"strings"
	"time"

	"github.com/IBM/sarama"
)

// Producer publishes messages with broker acknowledgement.
type Producer interface {
	Publish(message *sarama.ProducerMessage) error
	Close() error
}

// Consumer feeds messages from a consumer group into a handler.
type Consumer interface {
	SetHandler(handler ConsumerHandler)
	SetDeadLetter(producer Producer)
	Subscribe(ctx context.Context, topics ...string) error
	Close() error
}

// ConsumerHandler processes one message. Returning an error leaves the offset
// unmarked so the message is delivered again.
type ConsumerHandler interface {
	HandleMessage(ctx context.Context, message *sarama.ConsumerMessage) error
}

type KafkaConfig struct {
	Brokers       []string
	Username      string
	Password      string
	SaslMechanism string
	AppName       string
	KafkaCaCert   string
	GroupID       string
	RetryAttempts int
	RetryBackoff  time.Duration
}

type Cfg struct {
	KafkaUrl      string
	KafkaUsername string
	KafkaPassword string
	KafkaCaCert   string
	AppName       string
	GroupID       string
	RetryAttempts int
	RetryBackoff  time.Duration
}

func InitKafkaConfig(cfg Cfg) KafkaConfig {
	groupID := cfg.GroupID
	if groupID == "" {
		groupID = cfg.AppName
	}
	attempts := cfg.RetryAttempts
	if attempts <= 0 {
		attempts = 3
	}
	backoff := cfg.RetryBackoff
	if backoff <= 0 {
		backoff = 500 * time.Millisecond
	}
	return KafkaConfig{
		Brokers:       splitBrokers(cfg.KafkaUrl),
		Username:      cfg.KafkaUsername,
		Password:      cfg.KafkaPassword,
		AppName:       cfg.AppName,
		KafkaCaCert:   cfg.KafkaCaCert,
		SaslMechanism: sarama.SASLTypePlaintext,
		GroupID:       groupID,
		RetryAttempts: attempts,
		RetryBackoff:  backoff,
	}
}

func splitBrokers(url string) []string {
	var brokers []string
	for _, b := range strings.Split(url, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

func decodeKey(secret string) (string, error) {
	decoded, err := base64.StdEncoding.DecodeString(secret)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}

// SaramaConfig builds the client config shared by producers and consumer groups.
func (kc KafkaConfig) SaramaConfig() (*sarama.Config, error) {
	cfg := sarama.NewConfig()
	cfg.ClientID = kc.AppName
	cfg.Version = sarama.V2_8_0_0

	if kc.Username != "" {
		cfg.Net.SASL.Enable = true
		cfg.Net.SASL.Mechanism = sarama.SASLMechanism(kc.SaslMechanism)
		cfg.Net.SASL.User = kc.Username
		cfg.Net.SASL.Password = kc.Password
		cfg.Net.TLS.Enable = true
		tlsCfg := &tls.Config{MinVersion: tls.VersionTLS12}
		if kc.KafkaCaCert != "" {
			ca, err := decodeKey(kc.KafkaCaCert)
			if err != nil {
				return nil, err
			}
			pool := x509.NewCertPool()
			if !pool.AppendCertsFromPEM([]byte(ca)) {
				return nil, errors.New("kafka: invalid CA certificate")
			}
			tlsCfg.RootCAs = pool
		}
		cfg.Net.TLS.Config = tlsCfg
	}

	cfg.Net.DialTimeout = 5 * time.Second
	cfg.Metadata.Retry.Backoff = 500 * time.Millisecond

	// Idempotent producer: no duplicates introduced by producer retries.
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Return.Successes = true
	cfg.Producer.Idempotent = true
	cfg.Net.MaxOpenRequests = 1
	cfg.Producer.Retry.Max = 5
	cfg.Producer.Retry.Backoff = 200 * time.Millisecond
	cfg.Producer.Partitioner = sarama.NewHashPartitioner

	cfg.Consumer.Return.Errors = true
	cfg.Consumer.Offsets.Initial = sarama.OffsetOldest
	cfg.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRoundRobin()}

	return cfg, nil
}
