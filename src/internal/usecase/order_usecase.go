package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"payment-service/src/internal/entity"
	"payment-service/src/internal/model"
	"payment-service/src/internal/model/converter"
	httpError "payment-service/src/pkg/http-error"
	"payment-service/src/pkg/log"
	"payment-service/src/pkg/utils"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"
)

const TypeRepublishOrderCreated = "order:republish-created"

type OrderUseCase struct {
	Log        log.Log
	Validate   *validator.Validate
	Transactor Transactor
	Orders     OrderStore
	Publisher  OrderEventPublisher
	Tasks      TaskEnqueuer
}

func NewOrderUseCase(
	logger log.Log,
	validate *validator.Validate,
	transactor Transactor,
	orders OrderStore,
	publisher OrderEventPublisher,
	tasks TaskEnqueuer,
) *OrderUseCase {
	return &OrderUseCase{
		Log:        logger,
		Validate:   validate,
		Transactor: transactor,
		Orders:     orders,
		Publisher:  publisher,
		Tasks:      tasks,
	}
}

// HandlePaymentSucceeded marks a PENDING order PAID. Orders that already
// reached a terminal status keep it.
func (c *OrderUseCase) HandlePaymentSucceeded(ctx context.Context, event *model.PaymentSucceededEvent) error {
	if err := c.Validate.Struct(event); err != nil {
		c.Log.Error("OrderUseCase.HandlePaymentSucceeded", err.Error(), "validation", utils.ConvertString(event))
		orderSagaUpdatesTotal.WithLabelValues("invalid").Inc()
		return nil
	}
	transactionID := event.TransactionID
	return c.applyResult(ctx, event.OrderID, entity.PaymentPaid, &transactionID, nil)
}

// HandlePaymentFailed marks a PENDING order FAILED with the reason.
func (c *OrderUseCase) HandlePaymentFailed(ctx context.Context, event *model.PaymentFailedEvent) error {
	if err := c.Validate.Struct(event); err != nil {
		c.Log.Error("OrderUseCase.HandlePaymentFailed", err.Error(), "validation", utils.ConvertString(event))
		orderSagaUpdatesTotal.WithLabelValues("invalid").Inc()
		return nil
	}
	reason := entity.TruncateReason(event.Reason)
	return c.applyResult(ctx, event.OrderID, entity.PaymentFailed, nil, &reason)
}

func (c *OrderUseCase) applyResult(ctx context.Context, orderID int64, status entity.PaymentStatus, transactionID, reason *string) error {
	id := utils.ConvertString(orderID)

	ok, err := c.Orders.UpdatePaymentStatusFromPending(ctx, orderID, status, transactionID, reason)
	if err != nil {
		c.Log.Error("OrderUseCase.applyResult", err.Error(), "UpdatePaymentStatusFromPending", id)
		return err
	}
	if ok {
		c.Log.Info("OrderUseCase.applyResult", fmt.Sprintf("order moved to %s", status), "orderID", id)
		orderSagaUpdatesTotal.WithLabelValues(strings.ToLower(string(status))).Inc()
		return nil
	}

	order, err := c.Orders.FindByID(ctx, orderID)
	if errors.Is(err, entity.ErrOrderNotFound) {
		c.Log.Error("OrderUseCase.applyResult", "payment result for unknown order", "orderID", id)
		orderSagaUpdatesTotal.WithLabelValues("unknown").Inc()
		return nil
	}
	if err != nil {
		return err
	}
	c.Log.Info("OrderUseCase.applyResult",
		fmt.Sprintf("order already %s, ignoring %s", order.PaymentStatus, status), "duplicate", id)
	orderSagaUpdatesTotal.WithLabelValues("ignored").Inc()
	return nil
}

func (c *OrderUseCase) CreateOrder(ctx context.Context, request *model.CreateOrderRequest) utils.Result {
	var result utils.Result

	if err := c.Validate.Struct(request); err != nil {
		result.Error = validationError(err)
		c.Log.Error("CreateOrder-validation", err.Error(), "request", utils.ConvertString(request))
		return result
	}

	now := time.Now().UTC()
	order := &entity.Order{
		UserID:        request.UserID,
		OrderCode:     newOrderReference(),
		PaymentStatus: entity.PaymentPending,
		Items:         converter.OrderItemsFromRequest(request),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	total := decimal.Zero
	for _, item := range order.Items {
		total = total.Add(item.Subtotal())
	}
	if !total.IsPositive() {
		errObj := httpError.NewBadRequest()
		errObj.Message = "order total must be greater than zero"
		result.Error = errObj
		return result
	}
	order.TotalAmount = total

	err := c.Transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		return c.Orders.Create(ctx, order)
	})
	if err != nil {
		c.Log.Error("CreateOrder-Create", err.Error(), "request", utils.ConvertString(request))
		errObj := httpError.NewInternalServerError()
		errObj.Message = "failed to create order"
		result.Error = errObj
		return result
	}

	if err := c.publishCreated(ctx, order); err != nil {
		c.Log.Error("CreateOrder-publish", err.Error(), "orderID", utils.ConvertString(order.ID))
	}

	c.Log.Info("CreateOrder", "order created", "orderID", utils.ConvertString(order.ID))
	result.Data = converter.OrderToResponse(order)
	return result
}

func (c *OrderUseCase) publishCreated(ctx context.Context, order *entity.Order) error {
	err := c.Publisher.SendOrderCreated(converter.OrderToCreatedEvent(order))
	if err == nil {
		return nil
	}
	publishFailuresTotal.WithLabelValues("order-created").Inc()

	payload, marshalErr := json.Marshal(republishPayload{OrderID: order.ID})
	if marshalErr != nil {
		return marshalErr
	}
	if _, qErr := c.Tasks.EnqueueContext(ctx, asynq.NewTask(TypeRepublishOrderCreated, payload), asynq.MaxRetry(10)); qErr != nil {
		return fmt.Errorf("publish order-created: %v; enqueue retry: %w", err, qErr)
	}
	return nil
}

// RepublishCreated is the asynq handler for TypeRepublishOrderCreated. Only
// orders still waiting on payment are announced again.
func (c *OrderUseCase) RepublishCreated(ctx context.Context, t *asynq.Task) error {
	var payload republishPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("decode payload: %v: %w", err, asynq.SkipRetry)
	}

	order, err := c.Orders.FindByID(ctx, payload.OrderID)
	if errors.Is(err, entity.ErrOrderNotFound) {
		return fmt.Errorf("order %d: %w", payload.OrderID, asynq.SkipRetry)
	}
	if err != nil {
		return err
	}
	if order.PaymentStatus != entity.PaymentPending {
		return nil
	}
	return c.Publisher.SendOrderCreated(converter.OrderToCreatedEvent(order))
}

func (c *OrderUseCase) GetOrder(ctx context.Context, request *model.GetOrderRequest) utils.Result {
	var result utils.Result

	if err := c.Validate.Struct(request); err != nil {
		result.Error = validationError(err)
		return result
	}

	order, err := c.Orders.FindByID(ctx, request.OrderID)
	if err != nil {
		c.Log.Error("GetOrder-FindByID", err.Error(), "request", utils.ConvertString(request))
		result.Error = ledgerHTTPError(err)
		return result
	}
	result.Data = converter.OrderToResponse(order)
	return result
}

func newOrderReference() string {
	return "ORD-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:16])
}
