package config

import (
	"os"
	"strings"

	"github.com/spf13/viper"
)

// NewViper reads config.json from CONFIG_PATH (or the working directory) and
// lets environment variables override any key, dots replaced by underscores.
func NewViper() *viper.Viper {
	config := viper.New()

	config.SetConfigName("config")
	config.SetConfigType("json")
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		config.AddConfigPath(path)
	}
	config.AddConfigPath("./")
	config.AddConfigPath("./../")

	config.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	config.AutomaticEnv()

	if err := config.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			panic(err)
		}
	}

	return config
}

// SetDefaults fills every key the service reads.
func SetDefaults(config *viper.Viper) {
	config.SetDefault("app.name", "PAYMENT_SERVICE")
	config.SetDefault("web.port", 8080)
	config.SetDefault("log.level", "DEBUG")

	config.SetDefault("database.host", "127.0.0.1")
	config.SetDefault("database.port", 3306)
	config.SetDefault("database.name", "payment")
	config.SetDefault("database.pool.max", 20)
	config.SetDefault("database.pool.idle", 5)
	config.SetDefault("database.pool.lifetime", 300)

	config.SetDefault("redis.host", "127.0.0.1")
	config.SetDefault("redis.port", "6379")
	config.SetDefault("redis.db", 0)
	config.SetDefault("redis.use_cluster", false)
	config.SetDefault("redis.tls", false)

	config.SetDefault("kafka.bootstrap.servers", "127.0.0.1:9092")
	config.SetDefault("kafka.app.name", "payment-service")
	config.SetDefault("kafka.producer.enabled", true)
	config.SetDefault("kafka.consumer.retry.attempts", 3)
	config.SetDefault("kafka.consumer.retry.backoff", "500ms")
	config.SetDefault("kafka.topic.order_created", "order-created")
	config.SetDefault("kafka.topic.payment_succeeded", "payment-succeeded")
	config.SetDefault("kafka.topic.payment_failed", "payment-failed")

	config.SetDefault("asynq.concurrency", 5)

	config.SetDefault("payment.provider", "payos")
	config.SetDefault("payment.lock_ttl", "30s")
	config.SetDefault("wallet.currency", "IDR")

	config.SetDefault("saga.payment.enabled", true)
	config.SetDefault("saga.order.enabled", true)
}
