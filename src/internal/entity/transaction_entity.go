package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionDeposit  TransactionType = "DEPOSIT"
	TransactionWithdraw TransactionType = "WITHDRAW"
	TransactionPayment  TransactionType = "PAYMENT"
	TransactionRefund   TransactionType = "REFUND"
)

// IsCredit reports whether the type adds to the wallet balance.
func (t TransactionType) IsCredit() bool {
	return t == TransactionDeposit || t == TransactionRefund
}

type TransactionStatus string

const (
	TransactionPending TransactionStatus = "PENDING"
	TransactionSuccess TransactionStatus = "SUCCESS"
	TransactionFailed  TransactionStatus = "FAILED"
)

// Transaction is a ledger entry. Amount is always the positive magnitude.
// Once Status leaves PENDING the row is never modified again.
type Transaction struct {
	ID                    string            `db:"id"`
	WalletID              string            `db:"wallet_id"`
	Amount                decimal.Decimal   `db:"amount"`
	Type                  TransactionType   `db:"type"`
	Status                TransactionStatus `db:"status"`
	OrderID               *int64            `db:"order_id"`
	OrderCode             *int64            `db:"order_code"`
	Provider              *string           `db:"provider"`
	ExternalTransactionID *string           `db:"external_transaction_id"`
	Description           string            `db:"description"`
	CreatedAt             time.Time         `db:"created_at"`
	UpdatedAt             time.Time         `db:"updated_at"`
}

// SignedAmount is the effect of the entry on the wallet balance.
func (t *Transaction) SignedAmount() decimal.Decimal {
	if t.Type.IsCredit() {
		return t.Amount
	}
	return t.Amount.Neg()
}

func (t *Transaction) IsFinal() bool {
	return t.Status != TransactionPending
}
