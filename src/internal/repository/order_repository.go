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

type OrderRepository struct {
	DB mysql.DBInterface
}

func NewOrderRepository(db mysql.DBInterface) *OrderRepository {
	return &OrderRepository{
		DB: db,
	}
}

// Create inserts the order and its items. The caller supplies the
// transaction through ctx when both must land together.
func (r *OrderRepository) Create(ctx context.Context, order *entity.Order) error {
	db, err := conn(ctx, r.DB)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO orders (user_id, order_code, total_amount, payment_status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	res, err := db.ExecContext(ctx, query,
		order.UserID, order.OrderCode, order.TotalAmount, order.PaymentStatus, order.CreatedAt, order.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("order id: %w", err)
	}
	order.ID = id

	itemQuery := `
		INSERT INTO order_items (order_id, resource_template_id, price, discount)
		VALUES (?, ?, ?, ?)
	`
	for i := range order.Items {
		item := &order.Items[i]
		item.OrderID = id
		res, err := db.ExecContext(ctx, itemQuery, id, item.ResourceTemplateID, item.Price, item.Discount)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
		if itemID, err := res.LastInsertId(); err == nil {
			item.ID = itemID
		}
	}
	return nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id int64) (*entity.Order, error) {
	db, err := conn(ctx, r.DB)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT id, user_id, order_code, total_amount, payment_status, transaction_id, failure_reason,
			created_at, updated_at
		FROM orders
		WHERE id = ?
	`
	var order entity.Order
	err = db.GetContext(ctx, &order, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	itemQuery := `
		SELECT id, order_id, resource_template_id, price, discount
		FROM order_items
		WHERE order_id = ?
		ORDER BY id
	`
	order.Items = []entity.OrderItem{}
	if err := db.SelectContext(ctx, &order.Items, itemQuery, id); err != nil {
		return nil, err
	}
	return &order, nil
}

// UpdatePaymentStatusFromPending moves a PENDING order to a terminal status.
// It reports false when the order was missing or already terminal.
func (r *OrderRepository) UpdatePaymentStatusFromPending(ctx context.Context, id int64, status entity.PaymentStatus, transactionID, reason *string) (bool, error) {
	db, err := conn(ctx, r.DB)
	if err != nil {
		return false, err
	}

	query := `
		UPDATE orders
		SET payment_status = ?, transaction_id = ?, failure_reason = ?, updated_at = ?
		WHERE id = ? AND payment_status = 'PENDING'
	`
	res, err := db.ExecContext(ctx, query, status, transactionID, reason, time.Now().UTC(), id)
	if err != nil {
		return false, fmt.Errorf("update order payment status: %w", err)
	}
	return rowsAffected(res)
}
