package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"payment-service/src/internal/entity"
	"payment-service/src/internal/model"
	"payment-service/src/internal/model/converter"
	"payment-service/src/pkg/log"
	"payment-service/src/pkg/utils"

	"github.com/go-playground/validator/v10"
	"github.com/hibiken/asynq"
	"github.com/spf13/viper"
)

const (
	TypeRepublishPaymentResult = "payment:republish-result"
	TypeResumeOrderCreated     = "payment:resume-order-created"

	defaultPaymentLockTTL = 30 * time.Second
)

type republishPayload struct {
	OrderID int64 `json:"orderId"`
}

func NewResumeOrderCreatedTask(event *model.OrderCreatedEvent) (*asynq.Task, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeResumeOrderCreated, payload), nil
}

func NewRepublishPaymentResultTask(orderID int64) (*asynq.Task, error) {
	payload, err := json.Marshal(republishPayload{OrderID: orderID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeRepublishPaymentResult, payload), nil
}

// PaymentUseCase turns order-created events into one debit and one stored
// payment result per order, however many times the event is delivered. The
// result is published until it is marked published; a redelivery that lands
// between a publish and a failed mark sends it again, which the order side
// ignores.
type PaymentUseCase struct {
	Log           log.Log
	Validate      *validator.Validate
	Ledger        Ledger
	OrderPayments OrderPaymentStore
	Transactions  TransactionStore
	Locker        OrderLocker
	Publisher     PaymentResultPublisher
	Tasks         TaskEnqueuer
	LockTTL       time.Duration
}

func NewPaymentUseCase(
	logger log.Log,
	validate *validator.Validate,
	ledger Ledger,
	orderPayments OrderPaymentStore,
	transactions TransactionStore,
	locker OrderLocker,
	publisher PaymentResultPublisher,
	tasks TaskEnqueuer,
	cfg *viper.Viper,
) *PaymentUseCase {
	ttl := cfg.GetDuration("payment.lock_ttl")
	if ttl <= 0 {
		ttl = defaultPaymentLockTTL
	}
	return &PaymentUseCase{
		Log:           logger,
		Validate:      validate,
		Ledger:        ledger,
		OrderPayments: orderPayments,
		Transactions:  transactions,
		Locker:        locker,
		Publisher:     publisher,
		Tasks:         tasks,
		LockTTL:       ttl,
	}
}

// HandleOrderCreated processes one delivery of an order-created event. A nil
// return acknowledges the message; an error asks the transport to redeliver.
func (c *PaymentUseCase) HandleOrderCreated(ctx context.Context, event *model.OrderCreatedEvent) error {
	if event == nil || event.OrderID <= 0 {
		c.Log.Error("PaymentUseCase.HandleOrderCreated", "dropping event without order id", "validation", utils.ConvertString(event))
		paymentEventsTotal.WithLabelValues("dropped").Inc()
		return nil
	}
	orderID := utils.ConvertString(event.OrderID)

	token, err := c.Locker.AcquireOrder(ctx, event.OrderID, c.LockTTL)
	if err != nil {
		c.Log.Error("PaymentUseCase.HandleOrderCreated", err.Error(), "AcquireOrder", orderID)
		return err
	}
	if token == "" {
		return c.deferInFlight(ctx, event)
	}
	defer func() {
		if err := c.Locker.ReleaseOrder(context.WithoutCancel(ctx), event.OrderID, token); err != nil {
			c.Log.Warn("PaymentUseCase.HandleOrderCreated", err.Error(), "ReleaseOrder", orderID)
		}
	}()

	invalid := c.invalidReason(event)

	now := time.Now().UTC()
	op := &entity.OrderPayment{
		OrderID:   event.OrderID,
		UserID:    event.UserID,
		Amount:    event.TotalAmount,
		Status:    entity.OrderPaymentReceived,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err = c.OrderPayments.Claim(ctx, op)
	switch {
	case errors.Is(err, entity.ErrOrderPaymentDuplicate):
		existing, err := c.OrderPayments.FindByOrderID(ctx, event.OrderID)
		if err != nil {
			return err
		}
		if existing.Status.IsTerminal() {
			if existing.Published {
				c.Log.Info("PaymentUseCase.HandleOrderCreated", "order already settled", "duplicate", orderID)
				paymentEventsTotal.WithLabelValues("duplicate").Inc()
				return nil
			}
			return c.publish(ctx, existing)
		}

		op = existing
		tx, err := c.Transactions.FindByOrderID(ctx, op.OrderID, entity.TransactionPayment)
		if err == nil {
			c.Log.Info("PaymentUseCase.HandleOrderCreated", "resuming order already debited", "resume", orderID)
			return c.finalizeSucceeded(ctx, op, tx)
		}
		if !errors.Is(err, entity.ErrTransactionNotFound) {
			return err
		}
	case err != nil:
		c.Log.Error("PaymentUseCase.HandleOrderCreated", err.Error(), "Claim", orderID)
		return err
	}

	if invalid != "" {
		c.Log.Error("PaymentUseCase.HandleOrderCreated", invalid, "validation", utils.ConvertString(event))
		return c.finalizeFailed(ctx, op, entity.ReasonInvalidPayload)
	}
	return c.debit(ctx, op)
}

// deferInFlight schedules another pass over an event whose order is locked by
// a concurrent delivery. The pass runs once the lock has expired, so an order
// whose holder died mid-flight still reaches a terminal state.
func (c *PaymentUseCase) deferInFlight(ctx context.Context, event *model.OrderCreatedEvent) error {
	orderID := utils.ConvertString(event.OrderID)

	task, err := NewResumeOrderCreatedTask(event)
	if err == nil {
		_, err = c.Tasks.EnqueueContext(ctx, task, asynq.ProcessIn(c.LockTTL), asynq.MaxRetry(10))
	}
	if err != nil {
		c.Log.Error("PaymentUseCase.deferInFlight", err.Error(), "enqueue", orderID)
		return fmt.Errorf("order %d: %w", event.OrderID, entity.ErrOrderInFlight)
	}

	c.Log.Info("PaymentUseCase.deferInFlight", "order locked by another delivery, resume scheduled", "in-flight", orderID)
	paymentEventsTotal.WithLabelValues("deferred").Inc()
	return nil
}

func (c *PaymentUseCase) invalidReason(event *model.OrderCreatedEvent) string {
	if err := c.Validate.Struct(event); err != nil {
		return err.Error()
	}
	if !event.TotalAmount.IsPositive() {
		return "totalAmount must be greater than zero"
	}
	return ""
}

func (c *PaymentUseCase) debit(ctx context.Context, op *entity.OrderPayment) error {
	orderID := utils.ConvertString(op.OrderID)

	wallet, err := c.Ledger.GetWalletByUser(ctx, op.UserID)
	if errors.Is(err, entity.ErrWalletNotFound) {
		return c.finalizeFailed(ctx, op, entity.ReasonWalletNotFound)
	}
	if err != nil {
		c.Log.Error("PaymentUseCase.debit", err.Error(), "GetWalletByUser", orderID)
		return err
	}

	op.WalletID = &wallet.ID
	op.Status = entity.OrderPaymentDebiting
	if err := c.OrderPayments.Update(ctx, op); err != nil {
		return err
	}

	tx, err := c.Ledger.Debit(ctx, wallet.ID, op.Amount, model.LedgerContext{
		Type:        entity.TransactionPayment,
		OrderID:     &op.OrderID,
		Description: fmt.Sprintf("payment for order %d", op.OrderID),
	})
	switch {
	case err == nil:
		return c.finalizeSucceeded(ctx, op, tx)
	case errors.Is(err, entity.ErrInsufficientBalance):
		return c.finalizeFailed(ctx, op, entity.ReasonInsufficientBalance)
	case errors.Is(err, entity.ErrWalletNotFound):
		return c.finalizeFailed(ctx, op, entity.ReasonWalletNotFound)
	case errors.Is(err, entity.ErrDuplicateTransaction):
		existing, findErr := c.Transactions.FindByOrderID(ctx, op.OrderID, entity.TransactionPayment)
		if findErr != nil {
			return findErr
		}
		return c.finalizeSucceeded(ctx, op, existing)
	default:
		c.Log.Error("PaymentUseCase.debit", err.Error(), "reconciliation-required", orderID)
		reconciliationRequiredTotal.Inc()
		return c.finalizeFailed(ctx, op, err.Error())
	}
}

func (c *PaymentUseCase) finalizeSucceeded(ctx context.Context, op *entity.OrderPayment, tx *entity.Transaction) error {
	op.Status = entity.OrderPaymentSucceeded
	op.TransactionID = &tx.ID
	op.WalletID = &tx.WalletID
	op.Reason = nil
	if err := c.OrderPayments.Update(ctx, op); err != nil {
		return err
	}
	paymentEventsTotal.WithLabelValues("succeeded").Inc()
	return c.publish(ctx, op)
}

func (c *PaymentUseCase) finalizeFailed(ctx context.Context, op *entity.OrderPayment, reason string) error {
	reason = entity.TruncateReason(reason)
	op.Status = entity.OrderPaymentFailed
	op.Reason = &reason
	if err := c.OrderPayments.Update(ctx, op); err != nil {
		return err
	}
	paymentEventsTotal.WithLabelValues("failed").Inc()
	return c.publish(ctx, op)
}

// publish emits the terminal event. When the broker refuses it the retry is
// handed to asynq; if that also fails the caller gets the error back so the
// order-created message is redelivered and the stored result republished.
// A failed MarkPublished is only logged: the result went out, and a later
// redelivery may send it once more.
func (c *PaymentUseCase) publish(ctx context.Context, op *entity.OrderPayment) error {
	orderID := utils.ConvertString(op.OrderID)

	if err := c.send(op); err != nil {
		c.Log.Error("PaymentUseCase.publish", err.Error(), "send", orderID)
		task, taskErr := NewRepublishPaymentResultTask(op.OrderID)
		if taskErr == nil {
			_, taskErr = c.Tasks.EnqueueContext(ctx, task, asynq.MaxRetry(10))
		}
		if taskErr != nil {
			c.Log.Error("PaymentUseCase.publish", taskErr.Error(), "enqueue", orderID)
			return fmt.Errorf("publish payment result for order %d: %w", op.OrderID, err)
		}
		return nil
	}

	if err := c.OrderPayments.MarkPublished(ctx, op.OrderID); err != nil {
		c.Log.Warn("PaymentUseCase.publish", err.Error(), "MarkPublished", orderID)
	}
	return nil
}

func (c *PaymentUseCase) send(op *entity.OrderPayment) error {
	switch op.Status {
	case entity.OrderPaymentSucceeded:
		err := c.Publisher.SendPaymentSucceeded(converter.OrderPaymentToSucceededEvent(op))
		if err != nil {
			publishFailuresTotal.WithLabelValues("payment-succeeded").Inc()
		}
		return err
	case entity.OrderPaymentFailed:
		err := c.Publisher.SendPaymentFailed(converter.OrderPaymentToFailedEvent(op))
		if err != nil {
			publishFailuresTotal.WithLabelValues("payment-failed").Inc()
		}
		return err
	}
	return fmt.Errorf("order %d has no result to publish: status %s", op.OrderID, op.Status)
}

// RepublishResult is the asynq handler for TypeRepublishPaymentResult.
func (c *PaymentUseCase) RepublishResult(ctx context.Context, t *asynq.Task) error {
	var payload republishPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		c.Log.Error("PaymentUseCase.RepublishResult", err.Error(), "payload", string(t.Payload()))
		return fmt.Errorf("decode payload: %v: %w", err, asynq.SkipRetry)
	}

	op, err := c.OrderPayments.FindByOrderID(ctx, payload.OrderID)
	if errors.Is(err, entity.ErrOrderPaymentNotFound) {
		return fmt.Errorf("order %d: %w", payload.OrderID, asynq.SkipRetry)
	}
	if err != nil {
		return err
	}
	if !op.Status.IsTerminal() || op.Published {
		return nil
	}

	if err := c.send(op); err != nil {
		c.Log.Error("PaymentUseCase.RepublishResult", err.Error(), "send", utils.ConvertString(op.OrderID))
		return err
	}
	if err := c.OrderPayments.MarkPublished(ctx, op.OrderID); err != nil {
		c.Log.Warn("PaymentUseCase.RepublishResult", err.Error(), "MarkPublished", utils.ConvertString(op.OrderID))
	}
	c.Log.Info("PaymentUseCase.RepublishResult", "payment result republished", "orderID", utils.ConvertString(op.OrderID))
	return nil
}

// ResumeOrderCreated is the asynq handler for TypeResumeOrderCreated.
func (c *PaymentUseCase) ResumeOrderCreated(ctx context.Context, t *asynq.Task) error {
	var event model.OrderCreatedEvent
	if err := json.Unmarshal(t.Payload(), &event); err != nil {
		c.Log.Error("PaymentUseCase.ResumeOrderCreated", err.Error(), "payload", string(t.Payload()))
		return fmt.Errorf("decode payload: %v: %w", err, asynq.SkipRetry)
	}
	return c.HandleOrderCreated(ctx, &event)
}
