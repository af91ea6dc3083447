package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/keyfold/keyfold/internal/services/market/storage"
)

// PutSeller inserts or replaces one seller account.
func (s *Store) PutSeller(ctx context.Context, seller storage.Seller) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	if strings.TrimSpace(seller.ID) == "" {
		return fmt.Errorf("seller id is required")
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO sellers (id, name, email, domain, plan, webhook_url, is_active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name = excluded.name,
		   email = excluded.email,
		   domain = excluded.domain,
		   plan = excluded.plan,
		   webhook_url = excluded.webhook_url,
		   is_active = excluded.is_active,
		   updated_at = excluded.updated_at`,
		seller.ID,
		seller.Name,
		seller.Email,
		seller.Domain,
		seller.Plan,
		seller.WebhookURL,
		boolToInt(seller.IsActive),
		toMillis(seller.CreatedAt),
		toMillis(seller.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("put seller: %w", err)
	}
	return nil
}

// GetSeller returns one seller account by id.
func (s *Store) GetSeller(ctx context.Context, sellerID string) (storage.Seller, error) {
	if err := ctx.Err(); err != nil {
		return storage.Seller{}, err
	}
	if err := s.ready(); err != nil {
		return storage.Seller{}, err
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, name, email, domain, plan, webhook_url, is_active, created_at, updated_at
		 FROM sellers WHERE id = ?`,
		sellerID,
	)
	var (
		seller    storage.Seller
		isActive  int
		createdAt int64
		updatedAt int64
	)
	err := row.Scan(
		&seller.ID,
		&seller.Name,
		&seller.Email,
		&seller.Domain,
		&seller.Plan,
		&seller.WebhookURL,
		&isActive,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Seller{}, storage.ErrNotFound
		}
		return storage.Seller{}, fmt.Errorf("get seller: %w", err)
	}
	seller.IsActive = isActive != 0
	seller.CreatedAt = fromMillis(createdAt)
	seller.UpdatedAt = fromMillis(updatedAt)
	return seller, nil
}

// PutStorefront inserts or replaces one storefront.
func (s *Store) PutStorefront(ctx context.Context, storefront storage.Storefront) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	if strings.TrimSpace(storefront.ID) == "" {
		return fmt.Errorf("storefront id is required")
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO storefronts (id, seller_id, name, theme, brand_color, custom_domain, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name = excluded.name,
		   theme = excluded.theme,
		   brand_color = excluded.brand_color,
		   custom_domain = excluded.custom_domain`,
		storefront.ID,
		storefront.SellerID,
		storefront.Name,
		storefront.Theme,
		storefront.BrandColor,
		storefront.CustomDomain,
		toMillis(storefront.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("put storefront: %w", err)
	}
	return nil
}

// PutProduct inserts or replaces one product.
func (s *Store) PutProduct(ctx context.Context, product storage.Product) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	if strings.TrimSpace(product.ID) == "" {
		return fmt.Errorf("product id is required")
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO products (id, seller_id, title, description, price, currency, category,
		                       delivery_type, file_url, max_keys, is_active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   title = excluded.title,
		   description = excluded.description,
		   price = excluded.price,
		   currency = excluded.currency,
		   category = excluded.category,
		   delivery_type = excluded.delivery_type,
		   file_url = excluded.file_url,
		   max_keys = excluded.max_keys,
		   is_active = excluded.is_active,
		   updated_at = excluded.updated_at`,
		product.ID,
		product.SellerID,
		product.Title,
		product.Description,
		product.Price,
		product.Currency,
		product.Category,
		product.DeliveryType,
		product.FileURL,
		product.MaxKeys,
		boolToInt(product.IsActive),
		toMillis(product.CreatedAt),
		toMillis(product.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("put product: %w", err)
	}
	return nil
}

// GetProduct returns one product by id.
func (s *Store) GetProduct(ctx context.Context, productID string) (storage.Product, error) {
	if err := ctx.Err(); err != nil {
		return storage.Product{}, err
	}
	if err := s.ready(); err != nil {
		return storage.Product{}, err
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, seller_id, title, description, price, currency, category,
		        delivery_type, file_url, max_keys, is_active, created_at, updated_at
		 FROM products WHERE id = ?`,
		productID,
	)
	return scanProduct(row)
}

// ListActiveProducts returns active products newest first, optionally
// narrowed to one seller.
func (s *Store) ListActiveProducts(ctx context.Context, sellerID string, limit int) ([]storage.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.ready(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, nil
	}

	query := `SELECT id, seller_id, title, description, price, currency, category,
	                 delivery_type, file_url, max_keys, is_active, created_at, updated_at
	          FROM products WHERE is_active = 1`
	args := []any{}
	if strings.TrimSpace(sellerID) != "" {
		query += " AND seller_id = ?"
		args = append(args, sellerID)
	}
	query += " ORDER BY created_at DESC, id LIMIT ?"
	args = append(args, limit)

	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list active products: %w", err)
	}
	defer rows.Close()

	var products []storage.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return products, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (storage.Product, error) {
	var (
		product   storage.Product
		isActive  int
		createdAt int64
		updatedAt int64
	)
	err := row.Scan(
		&product.ID,
		&product.SellerID,
		&product.Title,
		&product.Description,
		&product.Price,
		&product.Currency,
		&product.Category,
		&product.DeliveryType,
		&product.FileURL,
		&product.MaxKeys,
		&isActive,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Product{}, storage.ErrNotFound
		}
		return storage.Product{}, fmt.Errorf("scan product: %w", err)
	}
	product.IsActive = isActive != 0
	product.CreatedAt = fromMillis(createdAt)
	product.UpdatedAt = fromMillis(updatedAt)
	return product, nil
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
