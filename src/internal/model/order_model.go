package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type CreateOrderRequest struct {
	UserID int64              `json:"userId" validate:"required,gt=0"`
	Items  []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

type OrderItemRequest struct {
	ResourceTemplateID int64           `json:"resourceTemplateId" validate:"required,gt=0"`
	Price              decimal.Decimal `json:"price"`
	Discount           decimal.Decimal `json:"discount"`
}

type GetOrderRequest struct {
	OrderID int64 `json:"orderId" validate:"required,gt=0"`
}

type OrderResponse struct {
	ID            int64               `json:"id"`
	UserID        int64               `json:"userId"`
	OrderCode     string              `json:"orderCode"`
	TotalAmount   decimal.Decimal     `json:"totalAmount"`
	PaymentStatus string              `json:"paymentStatus"`
	TransactionID *string             `json:"transactionId,omitempty"`
	FailureReason *string             `json:"failureReason,omitempty"`
	Items         []OrderItemResponse `json:"items"`
	CreatedAt     time.Time           `json:"createdAt"`
	UpdatedAt     time.Time           `json:"updatedAt"`
}

type OrderItemResponse struct {
	ResourceTemplateID int64           `json:"resourceTemplateId"`
	Price              decimal.Decimal `json:"price"`
	Discount           decimal.Decimal `json:"discount"`
}
