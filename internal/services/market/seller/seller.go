// Package seller provides seller account and storefront management.
package seller

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/keyfold/keyfold/internal/platform/errors"
	"github.com/keyfold/keyfold/internal/platform/id"
)

var (
	// ErrEmptyName indicates a missing seller display name.
	ErrEmptyName = apperrors.New(apperrors.CodeSellerEmptyName, "seller name is required")
	// ErrEmptyEmail indicates a missing contact email.
	ErrEmptyEmail = apperrors.New(apperrors.CodeSellerEmptyEmail, "seller email is required")
	// ErrInvalidPlan indicates a subscription plan outside the known set.
	ErrInvalidPlan = apperrors.New(apperrors.CodeSellerInvalidPlan, "plan must be one of free, pro, enterprise")

	// ErrStorefrontEmptySellerID indicates a storefront without an owning seller.
	ErrStorefrontEmptySellerID = apperrors.New(apperrors.CodeStorefrontEmptySellerID, "storefront seller id is required")
	// ErrStorefrontEmptyName indicates a missing storefront display name.
	ErrStorefrontEmptyName = apperrors.New(apperrors.CodeStorefrontEmptyName, "storefront name is required")
	// ErrStorefrontInvalidTheme indicates a theme outside the known set.
	ErrStorefrontInvalidTheme = apperrors.New(apperrors.CodeStorefrontInvalidTheme, "theme must be light or dark")
)

// Plan is a seller subscription tier.
type Plan string

const (
	PlanFree       Plan = "free"
	PlanPro        Plan = "pro"
	PlanEnterprise Plan = "enterprise"
)

// Theme is a storefront display theme.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Seller represents an account owning products and storefronts. Sellers are
// never hard-deleted; deactivation flips IsActive.
type Seller struct {
	ID         string
	Name       string
	Email      string
	Domain     string
	Plan       Plan
	WebhookURL string
	IsActive   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// CreateSellerInput describes the metadata needed to onboard a seller.
type CreateSellerInput struct {
	Name       string
	Email      string
	Domain     string
	Plan       Plan
	WebhookURL string
}

// CreateSeller creates a durable seller account from validated input.
func CreateSeller(input CreateSellerInput, now func() time.Time, idGenerator func() (string, error)) (Seller, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)
	if input.Name == "" {
		return Seller{}, ErrEmptyName
	}
	if input.Email == "" {
		return Seller{}, ErrEmptyEmail
	}
	if input.Plan == "" {
		input.Plan = PlanFree
	}
	switch input.Plan {
	case PlanFree, PlanPro, PlanEnterprise:
	default:
		return Seller{}, ErrInvalidPlan
	}

	sellerID, err := idGenerator()
	if err != nil {
		return Seller{}, fmt.Errorf("generate seller id: %w", err)
	}

	createdAt := now().UTC()
	return Seller{
		ID:         sellerID,
		Name:       input.Name,
		Email:      input.Email,
		Domain:     strings.TrimSpace(input.Domain),
		Plan:       input.Plan,
		WebhookURL: strings.TrimSpace(input.WebhookURL),
		IsActive:   true,
		CreatedAt:  createdAt,
		UpdatedAt:  createdAt,
	}, nil
}

// Storefront is presentation configuration bound to a seller. It carries no
// behavioral coupling to the order or payment flow.
type Storefront struct {
	ID           string
	SellerID     string
	Name         string
	Theme        Theme
	BrandColor   string
	CustomDomain string
	CreatedAt    time.Time
}

// CreateStorefrontInput describes the metadata needed to create a storefront.
type CreateStorefrontInput struct {
	SellerID     string
	Name         string
	Theme        Theme
	BrandColor   string
	CustomDomain string
}

const defaultBrandColor = "#3b82f6"

// CreateStorefront creates storefront display metadata for a seller.
func CreateStorefront(input CreateStorefrontInput, now func() time.Time, idGenerator func() (string, error)) (Storefront, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	input.SellerID = strings.TrimSpace(input.SellerID)
	input.Name = strings.TrimSpace(input.Name)
	if input.SellerID == "" {
		return Storefront{}, ErrStorefrontEmptySellerID
	}
	if input.Name == "" {
		return Storefront{}, ErrStorefrontEmptyName
	}
	if input.Theme == "" {
		input.Theme = ThemeDark
	}
	switch input.Theme {
	case ThemeLight, ThemeDark:
	default:
		return Storefront{}, ErrStorefrontInvalidTheme
	}
	if strings.TrimSpace(input.BrandColor) == "" {
		input.BrandColor = defaultBrandColor
	}

	storefrontID, err := idGenerator()
	if err != nil {
		return Storefront{}, fmt.Errorf("generate storefront id: %w", err)
	}

	return Storefront{
		ID:           storefrontID,
		SellerID:     input.SellerID,
		Name:         input.Name,
		Theme:        input.Theme,
		BrandColor:   input.BrandColor,
		CustomDomain: strings.TrimSpace(input.CustomDomain),
		CreatedAt:    now().UTC(),
	}, nil
}
