package model

import (
	"time"

	"payment-service/src/internal/entity"

	"github.com/shopspring/decimal"
)

type CreateWalletRequest struct {
	UserID int64 `json:"userId" validate:"required,gt=0"`
}

type GetWalletRequest struct {
	WalletID string `json:"walletId" validate:"required,uuid"`
}

type GetWalletByUserRequest struct {
	UserID int64 `json:"userId" validate:"required,gt=0"`
}

type ListTransactionsRequest struct {
	WalletID string `json:"walletId" validate:"required,uuid"`
	Limit    int    `json:"limit" validate:"min=1,max=100"`
	Offset   int    `json:"offset" validate:"min=0"`
}

type DepositRequest struct {
	UserID      int64           `json:"userId" validate:"required,gt=0"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description" validate:"max=255"`
}

// LedgerContext describes why a balance moves; it becomes the transaction row.
type LedgerContext struct {
	Type                  entity.TransactionType
	OrderID               *int64
	OrderCode             *int64
	Provider              *string
	ExternalTransactionID *string
	Description           string
}

type WalletResponse struct {
	ID        string          `json:"id"`
	UserID    int64           `json:"userId"`
	Balance   decimal.Decimal `json:"balance"`
	Currency  string          `json:"currency"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

type TransactionResponse struct {
	ID                    string          `json:"id"`
	WalletID              string          `json:"walletId"`
	Amount                decimal.Decimal `json:"amount"`
	SignedAmount          decimal.Decimal `json:"signedAmount"`
	Type                  string          `json:"type"`
	Status                string          `json:"status"`
	OrderID               *int64          `json:"orderId,omitempty"`
	OrderCode             *int64          `json:"orderCode,omitempty"`
	Provider              *string         `json:"provider,omitempty"`
	ExternalTransactionID *string         `json:"externalTransactionId,omitempty"`
	Description           string          `json:"description"`
	CreatedAt             time.Time       `json:"createdAt"`
}
