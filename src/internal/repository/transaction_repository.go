package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"payment-service/src/internal/entity"
	"payment-service/src/pkg/databases/mysql"
)

type TransactionRepository struct {
	DB mysql.DBInterface
}

func NewTransactionRepository(db mysql.DBInterface) *TransactionRepository {
	return &TransactionRepository{
		DB: db,
	}
}

const transactionColumns = `id, wallet_id, amount, type, status, order_id, order_code, provider,
	external_transaction_id, description, created_at, updated_at`

func (r *TransactionRepository) Create(ctx context.Context, tx *entity.Transaction) error {
	db, err := conn(ctx, r.DB)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO transactions (id, wallet_id, amount, type, status, order_id, order_code, provider,
			external_transaction_id, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = db.ExecContext(ctx, query,
		tx.ID, tx.WalletID, tx.Amount, tx.Type, tx.Status, tx.OrderID, tx.OrderCode, tx.Provider,
		tx.ExternalTransactionID, tx.Description, tx.CreatedAt, tx.UpdatedAt)
	if mysql.IsDuplicateEntry(err) {
		return entity.ErrDuplicateTransaction
	}
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

func (r *TransactionRepository) FindByID(ctx context.Context, id string) (*entity.Transaction, error) {
	return r.findOne(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, id)
}

func (r *TransactionRepository) FindByOrderCode(ctx context.Context, orderCode int64) (*entity.Transaction, error) {
	return r.findOne(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE order_code = ?`, orderCode)
}

func (r *TransactionRepository) FindByOrderID(ctx context.Context, orderID int64, txType entity.TransactionType) (*entity.Transaction, error) {
	return r.findOne(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE order_id = ? AND type = ?`, orderID, txType)
}

func (r *TransactionRepository) findOne(ctx context.Context, query string, args ...interface{}) (*entity.Transaction, error) {
	db, err := conn(ctx, r.DB)
	if err != nil {
		return nil, err
	}

	var tx entity.Transaction
	err = db.GetContext(ctx, &tx, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrTransactionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

func (r *TransactionRepository) ListByWallet(ctx context.Context, walletID string, limit, offset int) ([]entity.Transaction, error) {
	db, err := conn(ctx, r.DB)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions
		WHERE wallet_id = ?
		ORDER BY created_at DESC, id
		LIMIT ? OFFSET ?`

	txs := []entity.Transaction{}
	if err := db.SelectContext(ctx, &txs, query, walletID, limit, offset); err != nil {
		return nil, err
	}
	return txs, nil
}

// UpdateStatusFromPending finalizes a PENDING row. It reports false when the
// row had already left PENDING.
func (r *TransactionRepository) UpdateStatusFromPending(ctx context.Context, id string, status entity.TransactionStatus, externalRef *string) (bool, error) {
	db, err := conn(ctx, r.DB)
	if err != nil {
		return false, err
	}

	query := `
		UPDATE transactions
		SET status = ?, external_transaction_id = COALESCE(?, external_transaction_id), updated_at = ?
		WHERE id = ? AND status = 'PENDING'
	`
	res, err := db.ExecContext(ctx, query, status, externalRef, time.Now().UTC(), id)
	if err != nil {
		return false, fmt.Errorf("update transaction status: %w", err)
	}
	return rowsAffected(res)
}
