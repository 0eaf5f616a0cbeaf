package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"payment-service/src/internal/entity"
	"payment-service/src/pkg/databases/mysql"

	"github.com/shopspring/decimal"
)

type WalletRepository struct {
	DB mysql.DBInterface
}

func NewWalletRepository(db mysql.DBInterface) *WalletRepository {
	return &WalletRepository{
		DB: db,
	}
}

const walletColumns = `id, user_id, balance, currency, created_at, updated_at`

func (r *WalletRepository) Create(ctx context.Context, wallet *entity.Wallet) error {
	db, err := conn(ctx, r.DB)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO wallets (id, user_id, balance, currency, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err = db.ExecContext(ctx, query,
		wallet.ID, wallet.UserID, wallet.Balance, wallet.Currency, wallet.CreatedAt, wallet.UpdatedAt)
	if mysql.IsDuplicateEntry(err) {
		return entity.ErrWalletAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("insert wallet: %w", err)
	}
	return nil
}

func (r *WalletRepository) FindByID(ctx context.Context, id string) (*entity.Wallet, error) {
	return r.findOne(ctx, `SELECT `+walletColumns+` FROM wallets WHERE id = ?`, id)
}

func (r *WalletRepository) FindByUserID(ctx context.Context, userID int64) (*entity.Wallet, error) {
	return r.findOne(ctx, `SELECT `+walletColumns+` FROM wallets WHERE user_id = ?`, userID)
}

func (r *WalletRepository) findOne(ctx context.Context, query string, arg interface{}) (*entity.Wallet, error) {
	db, err := conn(ctx, r.DB)
	if err != nil {
		return nil, err
	}

	var wallet entity.Wallet
	err = db.GetContext(ctx, &wallet, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrWalletNotFound
	}
	if err != nil {
		return nil, err
	}
	return &wallet, nil
}

// DecreaseBalance subtracts amount only if the balance covers it. It reports
// false when no row qualified, either because funds are short or the wallet
// does not exist.
func (r *WalletRepository) DecreaseBalance(ctx context.Context, id string, amount decimal.Decimal) (bool, error) {
	db, err := conn(ctx, r.DB)
	if err != nil {
		return false, err
	}

	query := `
		UPDATE wallets
		SET balance = balance - ?, updated_at = ?
		WHERE id = ? AND balance >= ?
	`
	res, err := db.ExecContext(ctx, query, amount, time.Now().UTC(), id, amount)
	if err != nil {
		return false, fmt.Errorf("decrease balance: %w", err)
	}
	return rowsAffected(res)
}

func (r *WalletRepository) IncreaseBalance(ctx context.Context, id string, amount decimal.Decimal) (bool, error) {
	db, err := conn(ctx, r.DB)
	if err != nil {
		return false, err
	}

	query := `
		UPDATE wallets
		SET balance = balance + ?, updated_at = ?
		WHERE id = ?
	`
	res, err := db.ExecContext(ctx, query, amount, time.Now().UTC(), id)
	if err != nil {
		return false, fmt.Errorf("increase balance: %w", err)
	}
	return rowsAffected(res)
}
