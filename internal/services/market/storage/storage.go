// Package storage defines persistence contracts for market service state.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound indicates a requested record is missing.
var ErrNotFound = errors.New("record not found")

// Seller stores one seller account.
type Seller struct {
	ID         string
	Name       string
	Email      string
	Domain     string
	Plan       string
	WebhookURL string
	IsActive   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Storefront stores display configuration for one seller.
type Storefront struct {
	ID           string
	SellerID     string
	Name         string
	Theme        string
	BrandColor   string
	CustomDomain string
	CreatedAt    time.Time
}

// Product stores one sellable digital product.
type Product struct {
	ID           string
	SellerID     string
	Title        string
	Description  string
	Price        float64
	Currency     string
	Category     string
	DeliveryType string
	FileURL      string
	MaxKeys      int
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Delivery stores the fulfillment artifact attached to a paid order.
type Delivery struct {
	Type string `json:"type"`
	Key  string `json:"key,omitempty"`
	URL  string `json:"url,omitempty"`
	Note string `json:"note,omitempty"`
}

// Order stores one purchase attempt. Delivery is nil until fulfillment.
type Order struct {
	ID         string
	SellerID   string
	ProductID  string
	BuyerEmail string
	Amount     float64
	Currency   string
	Status     string
	Delivery   *Delivery
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Payment stores one append-only processor-reported payment attempt.
type Payment struct {
	ID           string
	OrderID      string
	Processor    string
	ProcessorRef string
	Amount       float64
	Currency     string
	Status       string
	CreatedAt    time.Time
}

// LicenseKey stores one issued credential.
type LicenseKey struct {
	ID        string
	ProductID string
	OrderID   string
	Key       string
	Status    string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// RiskEvent stores the audit record of one risk evaluation.
type RiskEvent struct {
	ID        string
	OrderID   string
	Score     float64
	Email     string
	Currency  string
	DeviceFP  string
	Action    string
	CreatedAt time.Time
}

// SellerStore persists seller accounts and storefront metadata.
type SellerStore interface {
	PutSeller(ctx context.Context, seller Seller) error
	GetSeller(ctx context.Context, sellerID string) (Seller, error)
	PutStorefront(ctx context.Context, storefront Storefront) error
}

// ProductStore persists digital products.
type ProductStore interface {
	PutProduct(ctx context.Context, product Product) error
	GetProduct(ctx context.Context, productID string) (Product, error)
	// ListActiveProducts returns active products ordered by creation time,
	// newest first, optionally narrowed to one seller.
	ListActiveProducts(ctx context.Context, sellerID string, limit int) ([]Product, error)
}

// OrderStore persists purchase attempts and their terminal transition.
type OrderStore interface {
	PutOrder(ctx context.Context, order Order) error
	GetOrder(ctx context.Context, orderID string) (Order, error)
	// MarkOrderPaid transitions one order to paid, attaching its delivery
	// artifact and bumping the updated timestamp.
	MarkOrderPaid(ctx context.Context, orderID string, delivery Delivery, updatedAt time.Time) error
}

// PaymentStore appends processor-reported payment attempts.
type PaymentStore interface {
	AppendPayment(ctx context.Context, payment Payment) error
	ListPaymentsByOrder(ctx context.Context, orderID string) ([]Payment, error)
}

// LicenseKeyStore persists issued credentials.
type LicenseKeyStore interface {
	PutLicenseKey(ctx context.Context, key LicenseKey) error
	CountActiveKeysByProduct(ctx context.Context, productID string) (int, error)
	ListLicenseKeysByOrder(ctx context.Context, orderID string) ([]LicenseKey, error)
}

// RiskEventStore appends risk evaluation audit records.
type RiskEventStore interface {
	AppendRiskEvent(ctx context.Context, event RiskEvent) error
}

// Store aggregates every market persistence contract.
type Store interface {
	SellerStore
	ProductStore
	OrderStore
	PaymentStore
	LicenseKeyStore
	RiskEventStore
}
