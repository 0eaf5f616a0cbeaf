package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PENDING"
	PaymentPaid    PaymentStatus = "PAID"
	PaymentFailed  PaymentStatus = "FAILED"
)

func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentPaid || s == PaymentFailed
}

type Order struct {
	ID            int64           `db:"id"`
	UserID        int64           `db:"user_id"`
	OrderCode     string          `db:"order_code"`
	TotalAmount   decimal.Decimal `db:"total_amount"`
	PaymentStatus PaymentStatus   `db:"payment_status"`
	TransactionID *string         `db:"transaction_id"` // settlement reference once PAID
	FailureReason *string         `db:"failure_reason"`
	CreatedAt     time.Time       `db:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at"`

	Items []OrderItem `db:"-"`
}

type OrderItem struct {
	ID                 int64           `db:"id"`
	OrderID            int64           `db:"order_id"`
	ResourceTemplateID int64           `db:"resource_template_id"`
	Price              decimal.Decimal `db:"price"`
	Discount           decimal.Decimal `db:"discount"`
}

// Subtotal is the price after discount, never below zero.
func (i OrderItem) Subtotal() decimal.Decimal {
	sub := i.Price.Sub(i.Discount)
	if sub.IsNegative() {
		return decimal.Zero
	}
	return sub
}
