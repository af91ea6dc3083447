package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/keyfold/keyfold/internal/services/market/product"
	"github.com/keyfold/keyfold/internal/services/market/storage"
)

const (
	defaultListProductsLimit = 20
	maxListProductsLimit     = 100
)

// ListProducts returns the buyer-safe view of active products, optionally
// narrowed to one seller. The limit is clamped to a sane page size.
func (s *Service) ListProducts(ctx context.Context, sellerID string, limit int) ([]product.Public, error) {
	if s == nil || s.store == nil {
		return nil, fmt.Errorf("store is not configured")
	}
	if limit <= 0 {
		limit = defaultListProductsLimit
	}
	if limit > maxListProductsLimit {
		limit = maxListProductsLimit
	}

	records, err := s.store.ListActiveProducts(ctx, strings.TrimSpace(sellerID), limit)
	if err != nil {
		return nil, fmt.Errorf("list active products: %w", err)
	}

	views := make([]product.Public, 0, len(records))
	for _, record := range records {
		views = append(views, product.PublicView(productFromRecord(record)))
	}
	return views, nil
}

func productFromRecord(record storage.Product) product.Product {
	return product.Product{
		ID:           record.ID,
		SellerID:     record.SellerID,
		Title:        record.Title,
		Description:  record.Description,
		Price:        record.Price,
		Currency:     record.Currency,
		Category:     product.Category(record.Category),
		DeliveryType: product.DeliveryType(record.DeliveryType),
		FileURL:      record.FileURL,
		MaxKeys:      record.MaxKeys,
		IsActive:     record.IsActive,
		CreatedAt:    record.CreatedAt,
		UpdatedAt:    record.UpdatedAt,
	}
}
