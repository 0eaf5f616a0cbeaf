package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

type Wallet struct {
	ID        string          `db:"id" json:"id"`
	UserID    int64           `db:"user_id" json:"userId"`
	Balance   decimal.Decimal `db:"balance" json:"balance"`
	Currency  string          `db:"currency" json:"currency"`
	CreatedAt time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time       `db:"updated_at" json:"updatedAt"`
}
