package model

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// Event is anything published on the bus; GetId is the partition key.
type Event interface {
	GetId() string
}

type OrderCreatedEvent struct {
	OrderID     int64            `json:"orderId" validate:"required,gt=0"`
	UserID      int64            `json:"userId" validate:"required,gt=0"`
	TotalAmount decimal.Decimal  `json:"totalAmount"`
	Items       []OrderItemEvent `json:"items" validate:"dive"`
}

type OrderItemEvent struct {
	ResourceTemplateID int64           `json:"resourceTemplateId" validate:"required"`
	Price              decimal.Decimal `json:"price"`
	Discount           decimal.Decimal `json:"discount"`
}

func (e *OrderCreatedEvent) GetId() string {
	return strconv.FormatInt(e.OrderID, 10)
}

type PaymentSucceededEvent struct {
	OrderID       int64           `json:"orderId" validate:"required,gt=0"`
	UserID        int64           `json:"userId"`
	Amount        decimal.Decimal `json:"amount"`
	TransactionID string          `json:"transactionId" validate:"required"`
}

func (e *PaymentSucceededEvent) GetId() string {
	return strconv.FormatInt(e.OrderID, 10)
}

type PaymentFailedEvent struct {
	OrderID int64           `json:"orderId" validate:"required,gt=0"`
	UserID  int64           `json:"userId"`
	Amount  decimal.Decimal `json:"amount"`
	Reason  string          `json:"reason" validate:"required"`
}

func (e *PaymentFailedEvent) GetId() string {
	return strconv.FormatInt(e.OrderID, 10)
}
