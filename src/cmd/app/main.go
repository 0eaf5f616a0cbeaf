package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"payment-service/src/internal/config"
	"payment-service/src/pkg/log"

	"github.com/shopspring/decimal"
)

func main() {

	viperConfig := config.NewViper()
	config.SetDefaults(viperConfig)
	decimal.MarshalJSONWithoutQuotes = true

	log.InitLogger(viperConfig)
	logger := log.GetLogger()

	db := config.NewDatabase(viperConfig, logger)
	redisClient := config.NewRedis(viperConfig)
	kafkaConfig := config.NewKafkaConfig(viperConfig)
	producer := config.NewKafkaProducer(kafkaConfig, viperConfig, logger)
	consumer := config.NewKafkaConsumer(kafkaConfig, logger)
	asynqClient := config.NewAsynqClient(viperConfig)
	asynqServer := config.NewAsynqServer(viperConfig, logger)
	asynqMux := config.NewAsynqMux()
	validate := config.NewValidator(viperConfig)
	app := config.NewFiber(viperConfig)

	router := config.Bootstrap(&config.BootstrapConfig{
		DB:          db,
		App:         app,
		Log:         logger,
		Validate:    validate,
		Config:      viperConfig,
		Producer:    producer,
		Redis:       redisClient,
		AsynqClient: asynqClient,
		Async:       asynqMux,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	consumer.SetHandler(router)
	if producer != nil {
		consumer.SetDeadLetter(producer)
	}
	go func() {
		topics := router.Topics()
		logger.Info("main", fmt.Sprintf("consuming %v", topics), "kafka", kafkaConfig.GroupID)
		if err := consumer.Subscribe(ctx, topics...); err != nil {
			logger.Error("main", fmt.Sprintf("Kafka consumer stopped: %v", err), "kafka", "")
			stop()
		}
	}()

	if err := asynqServer.Start(asynqMux); err != nil {
		logger.Error("main", fmt.Sprintf("Failed to start asynq server: %v", err), "asynq", "")
		os.Exit(1)
	}

	go func() {
		webPort := viperConfig.GetInt("web.port")
		if err := app.Listen(fmt.Sprintf(":%d", webPort)); err != nil {
			logger.Error("main", fmt.Sprintf("Failed to start server: %v", err), "main", "")
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("main", fmt.Sprintf("Server %s is shutting down...", viperConfig.GetString("app.name")), "gracefull", "")

	if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
		logger.Error("main", fmt.Sprintf("Error during shutdown: %v", err), "graceful", "")
	}
	asynqServer.Shutdown()
	if err := consumer.Close(); err != nil {
		logger.Error("main", fmt.Sprintf("Error closing consumer: %v", err), "graceful", "")
	}
	if producer != nil {
		if err := producer.Close(); err != nil {
			logger.Error("main", fmt.Sprintf("Error closing producer: %v", err), "graceful", "")
		}
	}
	_ = asynqClient.Close()
	_ = redisClient.Close()
	_ = db.Close()

	logger.Info("main", fmt.Sprintf("Server %s stopped", viperConfig.GetString("app.name")), "gracefull", "")
}
