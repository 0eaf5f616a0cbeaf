package usecase

import (
	"context"
	"time"

	"payment-service/src/internal/entity"
	"payment-service/src/internal/model"

	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"
)

// Storage and transport seams. The repository and messaging packages
// satisfy these; tests substitute in-memory fakes.

type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type WalletStore interface {
	Create(ctx context.Context, wallet *entity.Wallet) error
	FindByID(ctx context.Context, id string) (*entity.Wallet, error)
	FindByUserID(ctx context.Context, userID int64) (*entity.Wallet, error)
	DecreaseBalance(ctx context.Context, id string, amount decimal.Decimal) (bool, error)
	IncreaseBalance(ctx context.Context, id string, amount decimal.Decimal) (bool, error)
}

type TransactionStore interface {
	Create(ctx context.Context, tx *entity.Transaction) error
	FindByID(ctx context.Context, id string) (*entity.Transaction, error)
	FindByOrderCode(ctx context.Context, orderCode int64) (*entity.Transaction, error)
	FindByOrderID(ctx context.Context, orderID int64, txType entity.TransactionType) (*entity.Transaction, error)
	ListByWallet(ctx context.Context, walletID string, limit, offset int) ([]entity.Transaction, error)
	UpdateStatusFromPending(ctx context.Context, id string, status entity.TransactionStatus, externalRef *string) (bool, error)
}

type OrderPaymentStore interface {
	Claim(ctx context.Context, op *entity.OrderPayment) error
	FindByOrderID(ctx context.Context, orderID int64) (*entity.OrderPayment, error)
	Update(ctx context.Context, op *entity.OrderPayment) error
	MarkPublished(ctx context.Context, orderID int64) error
}

type OrderStore interface {
	Create(ctx context.Context, order *entity.Order) error
	FindByID(ctx context.Context, id int64) (*entity.Order, error)
	UpdatePaymentStatusFromPending(ctx context.Context, id int64, status entity.PaymentStatus, transactionID, reason *string) (bool, error)
}

type OrderLocker interface {
	AcquireOrder(ctx context.Context, orderID int64, ttl time.Duration) (string, error)
	ReleaseOrder(ctx context.Context, orderID int64, token string) error
}

// Ledger is the slice of the wallet ledger the payment processor needs.
type Ledger interface {
	GetWalletByUser(ctx context.Context, userID int64) (*entity.Wallet, error)
	Debit(ctx context.Context, walletID string, amount decimal.Decimal, lc model.LedgerContext) (*entity.Transaction, error)
}

// DepositLedger is the slice of the wallet ledger the webhook handler needs.
type DepositLedger interface {
	RecordIdempotent(ctx context.Context, orderCode int64, op func(ctx context.Context) (*entity.Transaction, error)) (*entity.Transaction, bool, error)
	SettleDeposit(ctx context.Context, orderCode int64, amount decimal.Decimal, externalRef string) (*entity.Transaction, error)
	FailDeposit(ctx context.Context, orderCode int64, reason string) (*entity.Transaction, error)
}

type PaymentResultPublisher interface {
	SendPaymentSucceeded(event *model.PaymentSucceededEvent) error
	SendPaymentFailed(event *model.PaymentFailedEvent) error
}

type OrderEventPublisher interface {
	SendOrderCreated(event *model.OrderCreatedEvent) error
}

type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}
