package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/keyfold/keyfold/internal/services/market/storage"
)

// PutOrder inserts one purchase attempt.
func (s *Store) PutOrder(ctx context.Context, order storage.Order) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	if strings.TrimSpace(order.ID) == "" {
		return fmt.Errorf("order id is required")
	}

	var delivery any
	if order.Delivery != nil {
		raw, err := json.Marshal(order.Delivery)
		if err != nil {
			return fmt.Errorf("encode delivery: %w", err)
		}
		delivery = string(raw)
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO orders (id, seller_id, product_id, buyer_email, amount, currency, status, delivery, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		order.ID,
		order.SellerID,
		order.ProductID,
		order.BuyerEmail,
		order.Amount,
		order.Currency,
		order.Status,
		delivery,
		toMillis(order.CreatedAt),
		toMillis(order.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("put order: %w", err)
	}
	return nil
}

// GetOrder returns one purchase attempt by id.
func (s *Store) GetOrder(ctx context.Context, orderID string) (storage.Order, error) {
	if err := ctx.Err(); err != nil {
		return storage.Order{}, err
	}
	if err := s.ready(); err != nil {
		return storage.Order{}, err
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, seller_id, product_id, buyer_email, amount, currency, status, delivery, created_at, updated_at
		 FROM orders WHERE id = ?`,
		orderID,
	)
	var (
		order     storage.Order
		delivery  sql.NullString
		createdAt int64
		updatedAt int64
	)
	err := row.Scan(
		&order.ID,
		&order.SellerID,
		&order.ProductID,
		&order.BuyerEmail,
		&order.Amount,
		&order.Currency,
		&order.Status,
		&delivery,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Order{}, storage.ErrNotFound
		}
		return storage.Order{}, fmt.Errorf("get order: %w", err)
	}
	if delivery.Valid && strings.TrimSpace(delivery.String) != "" {
		var artifact storage.Delivery
		if err := json.Unmarshal([]byte(delivery.String), &artifact); err != nil {
			return storage.Order{}, fmt.Errorf("decode delivery: %w", err)
		}
		order.Delivery = &artifact
	}
	order.CreatedAt = fromMillis(createdAt)
	order.UpdatedAt = fromMillis(updatedAt)
	return order, nil
}

// MarkOrderPaid transitions one order to paid with its delivery artifact.
func (s *Store) MarkOrderPaid(ctx context.Context, orderID string, delivery storage.Delivery, updatedAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	if strings.TrimSpace(orderID) == "" {
		return fmt.Errorf("order id is required")
	}

	raw, err := json.Marshal(delivery)
	if err != nil {
		return fmt.Errorf("encode delivery: %w", err)
	}

	result, err := s.sqlDB.ExecContext(
		ctx,
		`UPDATE orders SET status = 'paid', delivery = ?, updated_at = ? WHERE id = ?`,
		string(raw),
		toMillis(updatedAt),
		orderID,
	)
	if err != nil {
		return fmt.Errorf("mark order paid: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark order paid rows: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// AppendPayment inserts one immutable payment ledger entry.
func (s *Store) AppendPayment(ctx context.Context, payment storage.Payment) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	if strings.TrimSpace(payment.ID) == "" {
		return fmt.Errorf("payment id is required")
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO payments (id, order_id, processor, processor_ref, amount, currency, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		payment.ID,
		payment.OrderID,
		payment.Processor,
		payment.ProcessorRef,
		payment.Amount,
		payment.Currency,
		payment.Status,
		toMillis(payment.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("append payment: %w", err)
	}
	return nil
}

// ListPaymentsByOrder returns the ledger entries for one order, oldest first.
func (s *Store) ListPaymentsByOrder(ctx context.Context, orderID string) ([]storage.Payment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.ready(); err != nil {
		return nil, err
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id, order_id, processor, processor_ref, amount, currency, status, created_at
		 FROM payments WHERE order_id = ? ORDER BY created_at, id`,
		orderID,
	)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	var payments []storage.Payment
	for rows.Next() {
		var (
			payment   storage.Payment
			createdAt int64
		)
		if err := rows.Scan(
			&payment.ID,
			&payment.OrderID,
			&payment.Processor,
			&payment.ProcessorRef,
			&payment.Amount,
			&payment.Currency,
			&payment.Status,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		payment.CreatedAt = fromMillis(createdAt)
		payments = append(payments, payment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate payments: %w", err)
	}
	return payments, nil
}
