package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/keyfold/keyfold/internal/services/market/storage"
)

// PutLicenseKey inserts one issued credential.
func (s *Store) PutLicenseKey(ctx context.Context, key storage.LicenseKey) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	if strings.TrimSpace(key.ID) == "" {
		return fmt.Errorf("license key id is required")
	}

	var expiresAt int64
	if !key.ExpiresAt.IsZero() {
		expiresAt = toMillis(key.ExpiresAt)
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO license_keys (id, product_id, order_id, key, status, expires_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		key.ID,
		key.ProductID,
		key.OrderID,
		key.Key,
		key.Status,
		expiresAt,
		toMillis(key.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("put license key: %w", err)
	}
	return nil
}

// CountActiveKeysByProduct returns how many active keys a product has issued.
func (s *Store) CountActiveKeysByProduct(ctx context.Context, productID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := s.ready(); err != nil {
		return 0, err
	}

	var count int
	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT COUNT(*) FROM license_keys WHERE product_id = ? AND status = 'active'`,
		productID,
	)
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("count active keys: %w", err)
	}
	return count, nil
}

// ListLicenseKeysByOrder returns the credentials issued for one order.
func (s *Store) ListLicenseKeysByOrder(ctx context.Context, orderID string) ([]storage.LicenseKey, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.ready(); err != nil {
		return nil, err
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id, product_id, order_id, key, status, expires_at, created_at
		 FROM license_keys WHERE order_id = ? ORDER BY created_at, id`,
		orderID,
	)
	if err != nil {
		return nil, fmt.Errorf("list license keys: %w", err)
	}
	defer rows.Close()

	var keys []storage.LicenseKey
	for rows.Next() {
		var (
			key       storage.LicenseKey
			expiresAt int64
			createdAt int64
		)
		if err := rows.Scan(
			&key.ID,
			&key.ProductID,
			&key.OrderID,
			&key.Key,
			&key.Status,
			&expiresAt,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("scan license key: %w", err)
		}
		if expiresAt != 0 {
			key.ExpiresAt = fromMillis(expiresAt)
		}
		key.CreatedAt = fromMillis(createdAt)
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate license keys: %w", err)
	}
	return keys, nil
}

// AppendRiskEvent inserts the audit record of one risk evaluation.
func (s *Store) AppendRiskEvent(ctx context.Context, event storage.RiskEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	if strings.TrimSpace(event.ID) == "" {
		return fmt.Errorf("risk event id is required")
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO risk_events (id, order_id, score, email, currency, device_fp, action, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		event.ID,
		event.OrderID,
		event.Score,
		event.Email,
		event.Currency,
		event.DeviceFP,
		event.Action,
		toMillis(event.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("append risk event: %w", err)
	}
	return nil
}
