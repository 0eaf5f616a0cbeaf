package usecase

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	paymentEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_order_events_total",
		Help: "order-created events handled by the payment processor, by outcome",
	}, []string{"outcome"})

	reconciliationRequiredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "payment_reconciliation_required_total",
		Help: "orders failed on an unexpected ledger error that need manual review",
	})

	publishFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_publish_failures_total",
		Help: "event publish attempts that failed, by topic",
	}, []string{"topic"})

	webhookCallbacksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_webhook_callbacks_total",
		Help: "gateway callbacks received, by outcome",
	}, []string{"outcome"})

	orderSagaUpdatesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "order_saga_updates_total",
		Help: "payment result events applied to orders, by outcome",
	}, []string{"outcome"})
)
