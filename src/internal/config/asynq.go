package config

import (
	"context"
	"crypto/tls"
	"fmt"

	"payment-service/src/pkg/log"

	"github.com/hibiken/asynq"
	"github.com/spf13/viper"
)

func newAsynqRedisOpt(v *viper.Viper) asynq.RedisConnOpt {
	host := v.GetString("redis.host")
	if host == "" {
		host = "127.0.0.1"
	}

	port := v.GetInt("redis.port")
	if port == 0 {
		port = 6379
	}

	redisOpt := asynq.RedisClientOpt{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: v.GetString("redis.password"),
		DB:       v.GetInt("redis.db"),
	}
	if v.GetBool("redis.tls") {
		redisOpt.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	return redisOpt
}

func NewAsynqClient(v *viper.Viper) *asynq.Client {
	return asynq.NewClient(newAsynqRedisOpt(v))
}

// NewAsynqServer runs the background retries queued by the usecases.
func NewAsynqServer(v *viper.Viper, logger log.Log) *asynq.Server {
	return asynq.NewServer(newAsynqRedisOpt(v), asynq.Config{
		Concurrency: v.GetInt("asynq.concurrency"),
		Logger:      logger.Logger,
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			logger.Error("asynq", err.Error(), task.Type(), string(task.Payload()))
		}),
	})
}

func NewAsynqMux() *asynq.ServeMux {
	return asynq.NewServeMux()
}
