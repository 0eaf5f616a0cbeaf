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

type OrderPaymentRepository struct {
	DB mysql.DBInterface
}

func NewOrderPaymentRepository(db mysql.DBInterface) *OrderPaymentRepository {
	return &OrderPaymentRepository{
		DB: db,
	}
}

// Claim inserts the record for a newly seen order. A second claim for the
// same order gives ErrOrderPaymentDuplicate.
func (r *OrderPaymentRepository) Claim(ctx context.Context, op *entity.OrderPayment) error {
	db, err := conn(ctx, r.DB)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO order_payments (order_id, user_id, wallet_id, amount, status, transaction_id, reason,
			published, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = db.ExecContext(ctx, query,
		op.OrderID, op.UserID, op.WalletID, op.Amount, op.Status, op.TransactionID, op.Reason,
		op.Published, op.CreatedAt, op.UpdatedAt)
	if mysql.IsDuplicateEntry(err) {
		return entity.ErrOrderPaymentDuplicate
	}
	if err != nil {
		return fmt.Errorf("claim order payment: %w", err)
	}
	return nil
}

func (r *OrderPaymentRepository) FindByOrderID(ctx context.Context, orderID int64) (*entity.OrderPayment, error) {
	db, err := conn(ctx, r.DB)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT order_id, user_id, wallet_id, amount, status, transaction_id, reason, published,
			created_at, updated_at
		FROM order_payments
		WHERE order_id = ?
	`
	var op entity.OrderPayment
	err = db.GetContext(ctx, &op, query, orderID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrOrderPaymentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &op, nil
}

// Update persists the progress fields. A terminal record is never moved.
func (r *OrderPaymentRepository) Update(ctx context.Context, op *entity.OrderPayment) error {
	db, err := conn(ctx, r.DB)
	if err != nil {
		return err
	}

	op.UpdatedAt = time.Now().UTC()
	query := `
		UPDATE order_payments
		SET wallet_id = ?, status = ?, transaction_id = ?, reason = ?, updated_at = ?
		WHERE order_id = ? AND status NOT IN ('SUCCEEDED', 'FAILED')
	`
	res, err := db.ExecContext(ctx, query, op.WalletID, op.Status, op.TransactionID, op.Reason, op.UpdatedAt, op.OrderID)
	if err != nil {
		return fmt.Errorf("update order payment: %w", err)
	}
	ok, err := rowsAffected(res)
	if err != nil {
		return err
	}
	if !ok {
		return entity.ErrOrderPaymentNotFound
	}
	return nil
}

func (r *OrderPaymentRepository) MarkPublished(ctx context.Context, orderID int64) error {
	db, err := conn(ctx, r.DB)
	if err != nil {
		return err
	}

	query := `UPDATE order_payments SET published = 1, updated_at = ? WHERE order_id = ?`
	if _, err := db.ExecContext(ctx, query, time.Now().UTC(), orderID); err != nil {
		return fmt.Errorf("mark order payment published: %w", err)
	}
	return nil
}
