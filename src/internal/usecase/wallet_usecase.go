package usecase

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"payment-service/src/internal/entity"
	"payment-service/src/internal/model"
	"payment-service/src/internal/model/converter"
	httpError "payment-service/src/pkg/http-error"
	"payment-service/src/pkg/log"
	"payment-service/src/pkg/utils"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

const registerDepositAttempts = 3

// WalletUseCase is the wallet ledger. Every balance change is a single
// conditional UPDATE paired with its transaction row in one DB transaction.
type WalletUseCase struct {
	Log          log.Log
	Validate     *validator.Validate
	Transactor   Transactor
	Wallets      WalletStore
	Transactions TransactionStore
	Currency     string
	Provider     string
}

func NewWalletUseCase(
	logger log.Log,
	validate *validator.Validate,
	transactor Transactor,
	wallets WalletStore,
	transactions TransactionStore,
	cfg *viper.Viper,
) *WalletUseCase {
	return &WalletUseCase{
		Log:          logger,
		Validate:     validate,
		Transactor:   transactor,
		Wallets:      wallets,
		Transactions: transactions,
		Currency:     cfg.GetString("wallet.currency"),
		Provider:     cfg.GetString("payment.provider"),
	}
}

func (c *WalletUseCase) CreateWallet(ctx context.Context, userID int64) (*entity.Wallet, error) {
	now := time.Now().UTC()
	wallet := &entity.Wallet{
		ID:        uuid.NewString(),
		UserID:    userID,
		Balance:   decimal.Zero,
		Currency:  c.Currency,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := c.Wallets.Create(ctx, wallet); err != nil {
		return nil, err
	}
	return wallet, nil
}

func (c *WalletUseCase) GetWallet(ctx context.Context, walletID string) (*entity.Wallet, error) {
	return c.Wallets.FindByID(ctx, walletID)
}

func (c *WalletUseCase) GetWalletByUser(ctx context.Context, userID int64) (*entity.Wallet, error) {
	return c.Wallets.FindByUserID(ctx, userID)
}

// Debit removes amount from the wallet. ErrInsufficientBalance leaves the
// wallet and the ledger untouched.
func (c *WalletUseCase) Debit(ctx context.Context, walletID string, amount decimal.Decimal, lc model.LedgerContext) (*entity.Transaction, error) {
	if !amount.IsPositive() {
		return nil, entity.ErrInvalidAmount
	}
	if lc.Type == "" {
		lc.Type = entity.TransactionPayment
	}
	if lc.Type.IsCredit() {
		return nil, entity.ErrInvalidLedgerType
	}

	var tx *entity.Transaction
	err := c.Transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		ok, err := c.Wallets.DecreaseBalance(ctx, walletID, amount)
		if err != nil {
			return err
		}
		if !ok {
			if _, err := c.Wallets.FindByID(ctx, walletID); err != nil {
				return err
			}
			return entity.ErrInsufficientBalance
		}

		tx = newLedgerTransaction(walletID, amount, entity.TransactionSuccess, lc)
		return c.Transactions.Create(ctx, tx)
	})
	if err != nil {
		return nil, err
	}
	return tx, nil
}

func (c *WalletUseCase) Credit(ctx context.Context, walletID string, amount decimal.Decimal, lc model.LedgerContext) (*entity.Transaction, error) {
	if !amount.IsPositive() {
		return nil, entity.ErrInvalidAmount
	}
	if lc.Type == "" {
		lc.Type = entity.TransactionDeposit
	}
	if !lc.Type.IsCredit() {
		return nil, entity.ErrInvalidLedgerType
	}

	var tx *entity.Transaction
	err := c.Transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		ok, err := c.Wallets.IncreaseBalance(ctx, walletID, amount)
		if err != nil {
			return err
		}
		if !ok {
			return entity.ErrWalletNotFound
		}

		tx = newLedgerTransaction(walletID, amount, entity.TransactionSuccess, lc)
		return c.Transactions.Create(ctx, tx)
	})
	if err != nil {
		return nil, err
	}
	return tx, nil
}

// RecordIdempotent runs op unless orderCode already has a final transaction,
// in which case that transaction is returned with duplicate set.
func (c *WalletUseCase) RecordIdempotent(ctx context.Context, orderCode int64, op func(ctx context.Context) (*entity.Transaction, error)) (*entity.Transaction, bool, error) {
	existing, err := c.Transactions.FindByOrderCode(ctx, orderCode)
	switch {
	case err == nil && existing.IsFinal():
		return existing, true, nil
	case err != nil && !errors.Is(err, entity.ErrTransactionNotFound):
		return nil, false, err
	}

	tx, err := op(ctx)
	if errors.Is(err, entity.ErrTransactionFinalized) {
		// lost a race with a concurrent delivery of the same callback
		existing, findErr := c.Transactions.FindByOrderCode(ctx, orderCode)
		if findErr != nil {
			return nil, false, findErr
		}
		return existing, true, nil
	}
	if err != nil {
		return nil, false, err
	}
	return tx, false, nil
}

// RegisterDeposit records a PENDING top-up under a fresh order code. The
// gateway callback later settles or fails it.
func (c *WalletUseCase) RegisterDeposit(ctx context.Context, request *model.DepositRequest) (*entity.Transaction, error) {
	if !request.Amount.IsPositive() {
		return nil, entity.ErrInvalidAmount
	}
	wallet, err := c.Wallets.FindByUserID(ctx, request.UserID)
	if err != nil {
		return nil, err
	}

	provider := c.Provider
	for attempt := 0; attempt < registerDepositAttempts; attempt++ {
		orderCode := newOrderCode()
		tx := newLedgerTransaction(wallet.ID, request.Amount, entity.TransactionPending, model.LedgerContext{
			Type:        entity.TransactionDeposit,
			OrderCode:   &orderCode,
			Provider:    &provider,
			Description: request.Description,
		})
		err = c.Transactions.Create(ctx, tx)
		if errors.Is(err, entity.ErrDuplicateTransaction) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return tx, nil
	}
	return nil, fmt.Errorf("register deposit: %w", err)
}

// SettleDeposit moves a PENDING deposit to SUCCESS and credits the wallet in
// the same DB transaction.
func (c *WalletUseCase) SettleDeposit(ctx context.Context, orderCode int64, amount decimal.Decimal, externalRef string) (*entity.Transaction, error) {
	var settled *entity.Transaction
	err := c.Transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		tx, err := c.pendingDeposit(ctx, orderCode)
		if err != nil {
			return err
		}
		if !amount.Equal(tx.Amount) {
			return entity.ErrAmountMismatch
		}

		var ref *string
		if externalRef != "" {
			ref = &externalRef
		}
		ok, err := c.Transactions.UpdateStatusFromPending(ctx, tx.ID, entity.TransactionSuccess, ref)
		if err != nil {
			return err
		}
		if !ok {
			return entity.ErrTransactionFinalized
		}

		ok, err = c.Wallets.IncreaseBalance(ctx, tx.WalletID, tx.Amount)
		if err != nil {
			return err
		}
		if !ok {
			return entity.ErrWalletNotFound
		}

		tx.Status = entity.TransactionSuccess
		if ref != nil {
			tx.ExternalTransactionID = ref
		}
		tx.UpdatedAt = time.Now().UTC()
		settled = tx
		return nil
	})
	if err != nil {
		return nil, err
	}
	return settled, nil
}

// FailDeposit closes a PENDING deposit without touching the balance.
func (c *WalletUseCase) FailDeposit(ctx context.Context, orderCode int64, reason string) (*entity.Transaction, error) {
	var failed *entity.Transaction
	err := c.Transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		tx, err := c.pendingDeposit(ctx, orderCode)
		if err != nil {
			return err
		}
		ok, err := c.Transactions.UpdateStatusFromPending(ctx, tx.ID, entity.TransactionFailed, nil)
		if err != nil {
			return err
		}
		if !ok {
			return entity.ErrTransactionFinalized
		}
		tx.Status = entity.TransactionFailed
		tx.UpdatedAt = time.Now().UTC()
		failed = tx
		return nil
	})
	if err != nil {
		return nil, err
	}
	c.Log.Info("WalletUseCase.FailDeposit", "deposit failed", utils.ConvertString(orderCode), reason)
	return failed, nil
}

func (c *WalletUseCase) pendingDeposit(ctx context.Context, orderCode int64) (*entity.Transaction, error) {
	tx, err := c.Transactions.FindByOrderCode(ctx, orderCode)
	if errors.Is(err, entity.ErrTransactionNotFound) {
		return nil, entity.ErrUnknownReference
	}
	if err != nil {
		return nil, err
	}
	if tx.Type != entity.TransactionDeposit {
		return nil, entity.ErrInvalidLedgerType
	}
	if tx.IsFinal() {
		return nil, entity.ErrTransactionFinalized
	}
	return tx, nil
}

func (c *WalletUseCase) ListTransactions(ctx context.Context, walletID string, limit, offset int) ([]entity.Transaction, error) {
	if _, err := c.Wallets.FindByID(ctx, walletID); err != nil {
		return nil, err
	}
	return c.Transactions.ListByWallet(ctx, walletID, limit, offset)
}

func (c *WalletUseCase) PostWallet(ctx context.Context, request *model.CreateWalletRequest) utils.Result {
	var result utils.Result

	if err := c.Validate.Struct(request); err != nil {
		result.Error = validationError(err)
		c.Log.Error("PostWallet-validation", err.Error(), "request", utils.ConvertString(request))
		return result
	}

	wallet, err := c.CreateWallet(ctx, request.UserID)
	if err != nil {
		result.Error = ledgerHTTPError(err)
		c.Log.Error("PostWallet-CreateWallet", err.Error(), "request", utils.ConvertString(request))
		return result
	}
	c.Log.Info("PostWallet", "wallet created", "walletID", wallet.ID)
	result.Data = converter.WalletToResponse(wallet)
	return result
}

func (c *WalletUseCase) GetWalletDetail(ctx context.Context, request *model.GetWalletRequest) utils.Result {
	var result utils.Result

	if err := c.Validate.Struct(request); err != nil {
		result.Error = validationError(err)
		return result
	}

	wallet, err := c.GetWallet(ctx, request.WalletID)
	if err != nil {
		result.Error = ledgerHTTPError(err)
		c.Log.Error("GetWalletDetail-FindByID", err.Error(), "request", utils.ConvertString(request))
		return result
	}
	result.Data = converter.WalletToResponse(wallet)
	return result
}

func (c *WalletUseCase) GetUserWallet(ctx context.Context, request *model.GetWalletByUserRequest) utils.Result {
	var result utils.Result

	if err := c.Validate.Struct(request); err != nil {
		result.Error = validationError(err)
		return result
	}

	wallet, err := c.GetWalletByUser(ctx, request.UserID)
	if err != nil {
		result.Error = ledgerHTTPError(err)
		c.Log.Error("GetUserWallet-FindByUserID", err.Error(), "request", utils.ConvertString(request))
		return result
	}
	result.Data = converter.WalletToResponse(wallet)
	return result
}

func (c *WalletUseCase) GetTransactionHistory(ctx context.Context, request *model.ListTransactionsRequest) utils.Result {
	var result utils.Result

	if err := c.Validate.Struct(request); err != nil {
		result.Error = validationError(err)
		return result
	}

	txs, err := c.ListTransactions(ctx, request.WalletID, request.Limit, request.Offset)
	if err != nil {
		result.Error = ledgerHTTPError(err)
		c.Log.Error("GetTransactionHistory-ListByWallet", err.Error(), "request", utils.ConvertString(request))
		return result
	}
	result.Data = converter.TransactionsToResponse(txs)
	return result
}

func (c *WalletUseCase) PostDeposit(ctx context.Context, request *model.DepositRequest) utils.Result {
	var result utils.Result

	if err := c.Validate.Struct(request); err != nil {
		result.Error = validationError(err)
		c.Log.Error("PostDeposit-validation", err.Error(), "request", utils.ConvertString(request))
		return result
	}

	tx, err := c.RegisterDeposit(ctx, request)
	if err != nil {
		result.Error = ledgerHTTPError(err)
		c.Log.Error("PostDeposit-RegisterDeposit", err.Error(), "request", utils.ConvertString(request))
		return result
	}
	c.Log.Info("PostDeposit", "deposit registered", "orderCode", utils.ConvertString(tx.OrderCode))
	result.Data = converter.TransactionToResponse(tx)
	return result
}

func newLedgerTransaction(walletID string, amount decimal.Decimal, status entity.TransactionStatus, lc model.LedgerContext) *entity.Transaction {
	now := time.Now().UTC()
	return &entity.Transaction{
		ID:                    uuid.NewString(),
		WalletID:              walletID,
		Amount:                amount,
		Type:                  lc.Type,
		Status:                status,
		OrderID:               lc.OrderID,
		OrderCode:             lc.OrderCode,
		Provider:              lc.Provider,
		ExternalTransactionID: lc.ExternalTransactionID,
		Description:           lc.Description,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
}

// newOrderCode stays below 2^53 so gateways that treat it as a JS number
// keep it exact.
func newOrderCode() int64 {
	return time.Now().UnixMilli()*1000 + rand.Int63n(1000)
}

func validationError(err error) error {
	errObj := httpError.NewBadRequest()
	errObj.Message = fmt.Sprintf("validation error: %v", err.Error())
	return errObj
}

func ledgerHTTPError(err error) error {
	var errObj httpError.CommonError
	switch {
	case errors.Is(err, entity.ErrWalletNotFound),
		errors.Is(err, entity.ErrTransactionNotFound),
		errors.Is(err, entity.ErrUnknownReference),
		errors.Is(err, entity.ErrOrderNotFound):
		errObj = httpError.NewNotFound()
	case errors.Is(err, entity.ErrWalletAlreadyExists),
		errors.Is(err, entity.ErrDuplicateTransaction):
		errObj = httpError.NewConflict()
	case errors.Is(err, entity.ErrInvalidAmount),
		errors.Is(err, entity.ErrInvalidLedgerType):
		errObj = httpError.NewBadRequest()
	case errors.Is(err, entity.ErrInsufficientBalance),
		errors.Is(err, entity.ErrAmountMismatch),
		errors.Is(err, entity.ErrTransactionFinalized):
		errObj = httpError.NewUnprocessableEntity()
	case errors.Is(err, entity.ErrInvalidSignature):
		errObj = httpError.NewUnauthorized()
	default:
		errObj = httpError.NewInternalServerError()
		errObj.Message = "internal server error"
		return errObj
	}
	errObj.Message = err.Error()
	return errObj
}
