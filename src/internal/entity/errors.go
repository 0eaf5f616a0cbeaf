package entity

import "errors"

// Business outcomes. Callers branch on these with errors.Is; none of them
// indicates an infrastructure failure.
var (
	ErrWalletNotFound        = errors.New("wallet not found")
	ErrWalletAlreadyExists   = errors.New("wallet already exists for user")
	ErrInsufficientBalance   = errors.New("insufficient balance")
	ErrInvalidAmount         = errors.New("amount must be greater than zero")
	ErrInvalidLedgerType     = errors.New("transaction type does not match ledger direction")
	ErrTransactionNotFound   = errors.New("transaction not found")
	ErrDuplicateTransaction  = errors.New("transaction already recorded")
	ErrTransactionFinalized  = errors.New("transaction is no longer pending")
	ErrUnknownReference      = errors.New("unknown payment reference")
	ErrInvalidSignature      = errors.New("invalid webhook signature")
	ErrAmountMismatch        = errors.New("webhook amount does not match registered amount")
	ErrOrderNotFound         = errors.New("order not found")
	ErrOrderPaymentNotFound  = errors.New("order payment record not found")
	ErrOrderInFlight         = errors.New("order is being processed by another delivery")
	ErrOrderPaymentDuplicate = errors.New("order payment already claimed")
)
