package config

import (
	"payment-service/src/pkg/kafka"
	"payment-service/src/pkg/log"

	"github.com/spf13/viper"
)

func NewKafkaConfig(viper *viper.Viper) kafka.KafkaConfig {
	configKafka := kafka.Cfg{
		KafkaUrl:      viper.GetString("kafka.bootstrap.servers"),
		KafkaUsername: viper.GetString("kafka.username"),
		KafkaPassword: viper.GetString("kafka.password"),
		KafkaCaCert:   viper.GetString("kafka.cacert"),
		AppName:       viper.GetString("kafka.app.name"),
		GroupID:       viper.GetString("kafka.group.id"),
		RetryAttempts: viper.GetInt("kafka.consumer.retry.attempts"),
		RetryBackoff:  viper.GetDuration("kafka.consumer.retry.backoff"),
	}
	return kafka.InitKafkaConfig(configKafka)
}

func NewKafkaProducer(cfg kafka.KafkaConfig, config *viper.Viper, log log.Log) kafka.Producer {
	if !config.GetBool("kafka.producer.enabled") {
		log.Info("kafka-config", "Kafka producer is disabled in configuration", "kafka", "")
		return nil
	}
	kafkaProducer, err := kafka.NewProducer(cfg, log)
	if err != nil {
		panic(err)
	}

	return kafkaProducer
}

func NewKafkaConsumer(cfg kafka.KafkaConfig, log log.Log) kafka.Consumer {
	consumer, err := kafka.NewConsumer(cfg, log)
	if err != nil {
		panic(err)
	}
	return consumer
}
