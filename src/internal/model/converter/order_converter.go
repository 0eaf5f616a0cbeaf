package converter

import (
	"payment-service/src/internal/entity"
	"payment-service/src/internal/model"
)

func OrderToResponse(order *entity.Order) *model.OrderResponse {
	items := make([]model.OrderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, model.OrderItemResponse{
			ResourceTemplateID: item.ResourceTemplateID,
			Price:              item.Price,
			Discount:           item.Discount,
		})
	}
	return &model.OrderResponse{
		ID:            order.ID,
		UserID:        order.UserID,
		OrderCode:     order.OrderCode,
		TotalAmount:   order.TotalAmount,
		PaymentStatus: string(order.PaymentStatus),
		TransactionID: order.TransactionID,
		FailureReason: order.FailureReason,
		Items:         items,
		CreatedAt:     order.CreatedAt,
		UpdatedAt:     order.UpdatedAt,
	}
}

func OrderItemsFromRequest(request *model.CreateOrderRequest) []entity.OrderItem {
	items := make([]entity.OrderItem, 0, len(request.Items))
	for _, item := range request.Items {
		items = append(items, entity.OrderItem{
			ResourceTemplateID: item.ResourceTemplateID,
			Price:              item.Price,
			Discount:           item.Discount,
		})
	}
	return items
}
