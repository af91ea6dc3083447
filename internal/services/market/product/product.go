// Package product provides the digital product entity and its buyer-facing
// projection.
package product

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/keyfold/keyfold/internal/platform/errors"
	"github.com/keyfold/keyfold/internal/platform/id"
)

var (
	// ErrEmptySellerID indicates a product without an owning seller.
	ErrEmptySellerID = apperrors.New(apperrors.CodeProductEmptySellerID, "product seller id is required")
	// ErrEmptyTitle indicates a missing product title.
	ErrEmptyTitle = apperrors.New(apperrors.CodeProductEmptyTitle, "product title is required")
	// ErrNegativePrice indicates a price below zero.
	ErrNegativePrice = apperrors.New(apperrors.CodeProductNegativePrice, "product price must be non-negative")
	// ErrInvalidCategory indicates a category outside the known set.
	ErrInvalidCategory = apperrors.New(apperrors.CodeProductInvalidCategory, "unknown product category")
	// ErrInvalidDeliveryType indicates a delivery type outside the known set.
	ErrInvalidDeliveryType = apperrors.New(apperrors.CodeProductInvalidDeliveryType, "unknown delivery type")
	// ErrInvalidMaxKeys indicates a non-positive license key cap.
	ErrInvalidMaxKeys = apperrors.New(apperrors.CodeProductInvalidMaxKeys, "max keys must be positive when set")
)

// Category classifies a digital product.
type Category string

const (
	CategorySoftware     Category = "software"
	CategoryScript       Category = "script"
	CategoryFile         Category = "file"
	CategoryAccount      Category = "account"
	CategorySubscription Category = "subscription"
	CategoryService      Category = "service"
)

// DeliveryType is the dispatch key for fulfillment.
type DeliveryType string

const (
	DeliveryLicenseKey DeliveryType = "license_key"
	DeliveryDownload   DeliveryType = "download"
	DeliveryAPI        DeliveryType = "api"
	DeliveryManual     DeliveryType = "manual"
)

// ValidCategory reports whether value is a known category.
func ValidCategory(value Category) bool {
	switch value {
	case CategorySoftware, CategoryScript, CategoryFile, CategoryAccount, CategorySubscription, CategoryService:
		return true
	default:
		return false
	}
}

// ValidDeliveryType reports whether value is a known delivery type.
func ValidDeliveryType(value DeliveryType) bool {
	switch value {
	case DeliveryLicenseKey, DeliveryDownload, DeliveryAPI, DeliveryManual:
		return true
	default:
		return false
	}
}

// Product is a sellable item. Products referenced by historical orders are
// deactivated via IsActive, never hard-deleted.
type Product struct {
	ID           string
	SellerID     string
	Title        string
	Description  string
	Price        float64
	Currency     string
	Category     Category
	DeliveryType DeliveryType
	FileURL      string
	MaxKeys      int // 0 means no cap
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CreateProductInput describes the metadata needed to create a product.
type CreateProductInput struct {
	SellerID     string
	Title        string
	Description  string
	Price        float64
	Currency     string
	Category     Category
	DeliveryType DeliveryType
	FileURL      string
	MaxKeys      int
}

// CreateProduct creates a durable product from validated input. Enumeration
// values and the price invariant are enforced here, at the boundary.
func CreateProduct(input CreateProductInput, now func() time.Time, idGenerator func() (string, error)) (Product, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	input.SellerID = strings.TrimSpace(input.SellerID)
	input.Title = strings.TrimSpace(input.Title)
	if input.SellerID == "" {
		return Product{}, ErrEmptySellerID
	}
	if input.Title == "" {
		return Product{}, ErrEmptyTitle
	}
	if input.Price < 0 {
		return Product{}, ErrNegativePrice
	}
	if input.Currency == "" {
		input.Currency = "USD"
	}
	if input.Category == "" {
		input.Category = CategorySoftware
	}
	if !ValidCategory(input.Category) {
		return Product{}, ErrInvalidCategory
	}
	if input.DeliveryType == "" {
		input.DeliveryType = DeliveryDownload
	}
	if !ValidDeliveryType(input.DeliveryType) {
		return Product{}, ErrInvalidDeliveryType
	}
	if input.MaxKeys < 0 {
		return Product{}, ErrInvalidMaxKeys
	}

	productID, err := idGenerator()
	if err != nil {
		return Product{}, fmt.Errorf("generate product id: %w", err)
	}

	createdAt := now().UTC()
	return Product{
		ID:           productID,
		SellerID:     input.SellerID,
		Title:        input.Title,
		Description:  strings.TrimSpace(input.Description),
		Price:        input.Price,
		Currency:     strings.ToUpper(input.Currency),
		Category:     input.Category,
		DeliveryType: input.DeliveryType,
		FileURL:      strings.TrimSpace(input.FileURL),
		MaxKeys:      input.MaxKeys,
		IsActive:     true,
		CreatedAt:    createdAt,
		UpdatedAt:    createdAt,
	}, nil
}

// Public is the buyer-safe projection of a product. Fulfillment internals
// (delivery type, file URL, key caps) are deliberately excluded.
type Public struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	Currency    string  `json:"currency"`
	Category    string  `json:"category"`
}

// PublicView projects a product down to its buyer-safe subset. Missing
// optional fields fall back to defaults so partially written records still
// render.
func PublicView(p Product) Public {
	currency := p.Currency
	if currency == "" {
		currency = "USD"
	}
	category := p.Category
	if category == "" {
		category = CategorySoftware
	}
	price := p.Price
	if price < 0 {
		price = 0
	}
	return Public{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Price:       price,
		Currency:    currency,
		Category:    string(category),
	}
}
