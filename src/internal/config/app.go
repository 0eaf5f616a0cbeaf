package config

import (
	"payment-service/src/internal/delivery/http"
	"payment-service/src/internal/delivery/http/route"
	messagingDelivery "payment-service/src/internal/delivery/messaging"
	"payment-service/src/internal/gateway/messaging"
	"payment-service/src/internal/repository"
	"payment-service/src/internal/usecase"
	"payment-service/src/pkg/databases/mysql"
	"payment-service/src/pkg/kafka"
	"payment-service/src/pkg/log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
)

type BootstrapConfig struct {
	DB          mysql.DBInterface
	App         *fiber.App
	Log         log.Log
	Validate    *validator.Validate
	Config      *viper.Viper
	Producer    kafka.Producer
	Redis       redis.UniversalClient
	AsynqClient *asynq.Client
	Async       *asynq.ServeMux
}

// Bootstrap wires both sides of the saga that are enabled and returns the
// router the Kafka consumer should be fed with.
func Bootstrap(config *BootstrapConfig) *messagingDelivery.Router {
	// setup repositories
	transactor := repository.NewTransactor(config.DB)
	walletRepository := repository.NewWalletRepository(config.DB)
	transactionRepository := repository.NewTransactionRepository(config.DB)
	orderPaymentRepository := repository.NewOrderPaymentRepository(config.DB)
	orderRepository := repository.NewOrderRepository(config.DB)
	lockRepository := repository.NewLockRepository(config.Redis)

	router := messagingDelivery.NewRouter(config.Log)
	routeConfig := route.RouteConfig{
		App: config.App,
	}

	if config.Config.GetBool("saga.payment.enabled") {
		paymentProducer := messaging.NewPaymentProducer(config.Producer, config.Log,
			config.Config.GetString("kafka.topic.payment_succeeded"),
			config.Config.GetString("kafka.topic.payment_failed"))

		// setup use cases
		walletUseCase := usecase.NewWalletUseCase(
			config.Log,
			config.Validate,
			transactor,
			walletRepository,
			transactionRepository,
			config.Config,
		)
		paymentUseCase := usecase.NewPaymentUseCase(
			config.Log,
			config.Validate,
			walletUseCase,
			orderPaymentRepository,
			transactionRepository,
			lockRepository,
			paymentProducer,
			config.AsynqClient,
			config.Config,
		)
		verifier := usecase.HMACVerifier{ChecksumKey: config.Config.GetString("payment.checksum_key")}
		webhookUseCase := usecase.NewWebhookUseCase(config.Log, config.Validate, verifier, walletUseCase)

		// setup controller
		routeConfig.WalletController = http.NewWalletController(walletUseCase, config.Log)
		routeConfig.WebhookController = http.NewWebhookController(webhookUseCase, config.Log)

		orderCreatedConsumer := messagingDelivery.NewOrderCreatedConsumer(config.Log, paymentUseCase)
		router.Handle(config.Config.GetString("kafka.topic.order_created"), orderCreatedConsumer.Consume)
		config.Async.HandleFunc(usecase.TypeRepublishPaymentResult, paymentUseCase.RepublishResult)
		config.Async.HandleFunc(usecase.TypeResumeOrderCreated, paymentUseCase.ResumeOrderCreated)
	}

	if config.Config.GetBool("saga.order.enabled") {
		orderProducer := messaging.NewOrderProducer(config.Producer, config.Log,
			config.Config.GetString("kafka.topic.order_created"))

		orderUseCase := usecase.NewOrderUseCase(
			config.Log,
			config.Validate,
			transactor,
			orderRepository,
			orderProducer,
			config.AsynqClient,
		)
		routeConfig.OrderController = http.NewOrderController(orderUseCase, config.Log)

		resultConsumer := messagingDelivery.NewPaymentResultConsumer(config.Log, orderUseCase)
		router.Handle(config.Config.GetString("kafka.topic.payment_succeeded"), resultConsumer.ConsumeSucceeded)
		router.Handle(config.Config.GetString("kafka.topic.payment_failed"), resultConsumer.ConsumeFailed)
		config.Async.HandleFunc(usecase.TypeRepublishOrderCreated, orderUseCase.RepublishCreated)
	}

	routeConfig.Setup()
	return router
}
