package entity

import (
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// OrderPaymentStatus is the payment side's view of one order:
// RECEIVED -> DEBITING -> SUCCEEDED | FAILED.
type OrderPaymentStatus string

const (
	OrderPaymentReceived  OrderPaymentStatus = "RECEIVED"
	OrderPaymentDebiting  OrderPaymentStatus = "DEBITING"
	OrderPaymentSucceeded OrderPaymentStatus = "SUCCEEDED"
	OrderPaymentFailed    OrderPaymentStatus = "FAILED"
)

func (s OrderPaymentStatus) IsTerminal() bool {
	return s == OrderPaymentSucceeded || s == OrderPaymentFailed
}

// Failure reasons carried on PaymentFailedEvent.
const (
	ReasonInsufficientBalance = "INSUFFICIENT_BALANCE"
	ReasonWalletNotFound      = "WALLET_NOT_FOUND"
	ReasonInvalidPayload      = "INVALID_PAYLOAD"
)

// MaxReasonLength caps a failure reason in runes. The reason columns hold more.
const MaxReasonLength = 255

// TruncateReason shortens reason to MaxReasonLength runes.
func TruncateReason(reason string) string {
	if utf8.RuneCountInString(reason) <= MaxReasonLength {
		return reason
	}
	return string([]rune(reason)[:MaxReasonLength])
}

type OrderPayment struct {
	OrderID       int64              `db:"order_id"`
	UserID        int64              `db:"user_id"`
	WalletID      *string            `db:"wallet_id"`
	Amount        decimal.Decimal    `db:"amount"`
	Status        OrderPaymentStatus `db:"status"`
	TransactionID *string            `db:"transaction_id"`
	Reason        *string            `db:"reason"`
	Published     bool               `db:"published"`
	CreatedAt     time.Time          `db:"created_at"`
	UpdatedAt     time.Time          `db:"updated_at"`
}
