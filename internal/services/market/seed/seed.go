// Package seed installs a demo seller, storefront, and product so a fresh
// deployment has something to sell.
package seed

import (
	"context"
	"fmt"

	"github.com/keyfold/keyfold/internal/services/market/product"
	"github.com/keyfold/keyfold/internal/services/market/seller"
	"github.com/keyfold/keyfold/internal/services/market/storage"
)

// Result reports the ids of the seeded fixture.
type Result struct {
	SellerID  string `json:"seller_id"`
	ProductID string `json:"product_id"`
}

// Apply writes the demo fixture. Each call creates a fresh seller and
// product; it is a development convenience, not an idempotent migration.
func Apply(ctx context.Context, store storage.Store) (Result, error) {
	if store == nil {
		return Result{}, fmt.Errorf("store is not configured")
	}

	acct, err := seller.CreateSeller(seller.CreateSellerInput{
		Name:  "Acme Digital",
		Email: "acme@example.com",
		Plan:  seller.PlanPro,
	}, nil, nil)
	if err != nil {
		return Result{}, fmt.Errorf("create demo seller: %w", err)
	}
	if err := store.PutSeller(ctx, sellerToRecord(acct)); err != nil {
		return Result{}, fmt.Errorf("put demo seller: %w", err)
	}

	front, err := seller.CreateStorefront(seller.CreateStorefrontInput{
		SellerID: acct.ID,
		Name:     "Acme Store",
		Theme:    seller.ThemeDark,
	}, nil, nil)
	if err != nil {
		return Result{}, fmt.Errorf("create demo storefront: %w", err)
	}
	if err := store.PutStorefront(ctx, storefrontToRecord(front)); err != nil {
		return Result{}, fmt.Errorf("put demo storefront: %w", err)
	}

	item, err := product.CreateProduct(product.CreateProductInput{
		SellerID:     acct.ID,
		Title:        "Pro Script Bundle",
		Description:  "A bundle of productivity scripts",
		Price:        29.00,
		Currency:     "USD",
		Category:     product.CategoryScript,
		DeliveryType: product.DeliveryLicenseKey,
	}, nil, nil)
	if err != nil {
		return Result{}, fmt.Errorf("create demo product: %w", err)
	}
	if err := store.PutProduct(ctx, productToRecord(item)); err != nil {
		return Result{}, fmt.Errorf("put demo product: %w", err)
	}

	return Result{SellerID: acct.ID, ProductID: item.ID}, nil
}

func sellerToRecord(value seller.Seller) storage.Seller {
	return storage.Seller{
		ID:         value.ID,
		Name:       value.Name,
		Email:      value.Email,
		Domain:     value.Domain,
		Plan:       string(value.Plan),
		WebhookURL: value.WebhookURL,
		IsActive:   value.IsActive,
		CreatedAt:  value.CreatedAt,
		UpdatedAt:  value.UpdatedAt,
	}
}

func storefrontToRecord(value seller.Storefront) storage.Storefront {
	return storage.Storefront{
		ID:           value.ID,
		SellerID:     value.SellerID,
		Name:         value.Name,
		Theme:        string(value.Theme),
		BrandColor:   value.BrandColor,
		CustomDomain: value.CustomDomain,
		CreatedAt:    value.CreatedAt,
	}
}

func productToRecord(value product.Product) storage.Product {
	return storage.Product{
		ID:           value.ID,
		SellerID:     value.SellerID,
		Title:        value.Title,
		Description:  value.Description,
		Price:        value.Price,
		Currency:     value.Currency,
		Category:     string(value.Category),
		DeliveryType: string(value.DeliveryType),
		FileURL:      value.FileURL,
		MaxKeys:      value.MaxKeys,
		IsActive:     value.IsActive,
		CreatedAt:    value.CreatedAt,
		UpdatedAt:    value.UpdatedAt,
	}
}
