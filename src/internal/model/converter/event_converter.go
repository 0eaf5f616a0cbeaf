package converter

import (
	"payment-service/src/internal/entity"
	"payment-service/src/internal/model"
)

func OrderToCreatedEvent(order *entity.Order) *model.OrderCreatedEvent {
	items := make([]model.OrderItemEvent, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, model.OrderItemEvent{
			ResourceTemplateID: item.ResourceTemplateID,
			Price:              item.Price,
			Discount:           item.Discount,
		})
	}
	return &model.OrderCreatedEvent{
		OrderID:     order.ID,
		UserID:      order.UserID,
		TotalAmount: order.TotalAmount,
		Items:       items,
	}
}

func OrderPaymentToSucceededEvent(op *entity.OrderPayment) *model.PaymentSucceededEvent {
	event := &model.PaymentSucceededEvent{
		OrderID: op.OrderID,
		UserID:  op.UserID,
		Amount:  op.Amount,
	}
	if op.TransactionID != nil {
		event.TransactionID = *op.TransactionID
	}
	return event
}

func OrderPaymentToFailedEvent(op *entity.OrderPayment) *model.PaymentFailedEvent {
	event := &model.PaymentFailedEvent{
		OrderID: op.OrderID,
		UserID:  op.UserID,
		Amount:  op.Amount,
	}
	if op.Reason != nil {
		event.Reason = *op.Reason
	}
	return event
}
