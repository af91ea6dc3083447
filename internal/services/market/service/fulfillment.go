package service

import (
	"context"
	"fmt"
	"time"

	"github.com/keyfold/keyfold/internal/platform/id"
	"github.com/keyfold/keyfold/internal/services/market/license"
	"github.com/keyfold/keyfold/internal/services/market/product"
	"github.com/keyfold/keyfold/internal/services/market/storage"
	"github.com/keyfold/keyfold/internal/services/market/token"
)

// Fallback notes attached to artifacts whose delivery happens outside this
// service.
const (
	apiDeliveryNote    = "delivery is out-of-band via API callback"
	manualDeliveryNote = "seller will complete delivery by hand"
)

// Engine computes exactly one delivery artifact for a paid order. It is
// deterministic given (order, product) and carries no idempotency state;
// the payment intake decides whether fulfillment runs at all.
type Engine struct {
	licenses storage.LicenseKeyStore
	clock    func() time.Time
	newID    func() (string, error)
	newKey   func() (string, error)
}

// NewEngine creates a fulfillment engine over license key storage.
func NewEngine(licenses storage.LicenseKeyStore) *Engine {
	return &Engine{
		licenses: licenses,
		clock:    time.Now,
		newID:    id.NewID,
		newKey:   token.LicenseKey,
	}
}

// Fulfill produces the delivery artifact for ord. A nil product, an unknown
// delivery type, or an exhausted license key cap all degrade to the manual
// fallback; ambiguous delivery mechanics never fail a confirmed payment.
func (e *Engine) Fulfill(ctx context.Context, ord storage.Order, prod *storage.Product) (storage.Delivery, error) {
	if e == nil {
		return storage.Delivery{}, fmt.Errorf("fulfillment engine is not configured")
	}
	if prod == nil {
		return storage.Delivery{Type: string(product.DeliveryManual), Note: manualDeliveryNote}, nil
	}

	switch product.DeliveryType(prod.DeliveryType) {
	case product.DeliveryLicenseKey:
		return e.fulfillLicenseKey(ctx, ord, prod)
	case product.DeliveryDownload:
		// A missing file URL degrades to a bare download artifact rather
		// than failing or falling back.
		return storage.Delivery{Type: string(product.DeliveryDownload), URL: prod.FileURL}, nil
	case product.DeliveryAPI:
		return storage.Delivery{Type: string(product.DeliveryAPI), Note: apiDeliveryNote}, nil
	default:
		return storage.Delivery{Type: string(product.DeliveryManual), Note: manualDeliveryNote}, nil
	}
}

func (e *Engine) fulfillLicenseKey(ctx context.Context, ord storage.Order, prod *storage.Product) (storage.Delivery, error) {
	if e.licenses == nil {
		return storage.Delivery{}, fmt.Errorf("license key store is not configured")
	}

	if prod.MaxKeys > 0 {
		count, err := e.licenses.CountActiveKeysByProduct(ctx, prod.ID)
		if err != nil {
			return storage.Delivery{}, fmt.Errorf("count active keys: %w", err)
		}
		if count >= prod.MaxKeys {
			return storage.Delivery{Type: string(product.DeliveryManual), Note: manualDeliveryNote}, nil
		}
	}

	key, err := license.Issue(license.IssueInput{
		ProductID: prod.ID,
		OrderID:   ord.ID,
	}, e.clock, e.newID, e.newKey)
	if err != nil {
		return storage.Delivery{}, fmt.Errorf("issue license key: %w", err)
	}

	if err := e.licenses.PutLicenseKey(ctx, storage.LicenseKey{
		ID:        key.ID,
		ProductID: key.ProductID,
		OrderID:   key.OrderID,
		Key:       key.Key,
		Status:    string(key.Status),
		ExpiresAt: key.ExpiresAt,
		CreatedAt: key.CreatedAt,
	}); err != nil {
		return storage.Delivery{}, fmt.Errorf("put license key: %w", err)
	}

	return storage.Delivery{Type: string(product.DeliveryLicenseKey), Key: key.Key}, nil
}
