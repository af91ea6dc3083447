// Package license provides the issued license key credential.
package license

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/keyfold/keyfold/internal/platform/errors"
	"github.com/keyfold/keyfold/internal/platform/id"
	"github.com/keyfold/keyfold/internal/services/market/token"
)

var (
	// ErrEmptyProductID indicates a key without a product reference.
	ErrEmptyProductID = apperrors.New(apperrors.CodeLicenseEmptyProductID, "license product id is required")
	// ErrEmptyOrderID indicates a key without an order reference.
	ErrEmptyOrderID = apperrors.New(apperrors.CodeLicenseEmptyOrderID, "license order id is required")
	// ErrEmptyKey indicates a missing key string.
	ErrEmptyKey = apperrors.New(apperrors.CodeLicenseEmptyKey, "license key value is required")
	// ErrInvalidStatus indicates a key status outside the known set.
	ErrInvalidStatus = apperrors.New(apperrors.CodeLicenseInvalidStatus, "license status must be active or revoked")
)

// Status is the lifecycle state of an issued key.
type Status string

const (
	StatusActive  Status = "active"
	StatusRevoked Status = "revoked"
)

// Key is an issued credential bound to exactly one order.
type Key struct {
	ID        string
	ProductID string
	OrderID   string
	Key       string
	Status    Status
	ExpiresAt time.Time // zero when the key does not expire
	CreatedAt time.Time
}

// IssueInput describes the references a new key is bound to.
type IssueInput struct {
	ProductID string
	OrderID   string
	ExpiresAt time.Time
}

// Issue mints a fresh active license key for a paid order. The key string is
// drawn from the CSPRNG and rendered uppercase URL-safe.
func Issue(input IssueInput, now func() time.Time, idGenerator func() (string, error), keyGenerator func() (string, error)) (Key, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}
	if keyGenerator == nil {
		keyGenerator = token.LicenseKey
	}

	input.ProductID = strings.TrimSpace(input.ProductID)
	input.OrderID = strings.TrimSpace(input.OrderID)
	if input.ProductID == "" {
		return Key{}, ErrEmptyProductID
	}
	if input.OrderID == "" {
		return Key{}, ErrEmptyOrderID
	}

	keyID, err := idGenerator()
	if err != nil {
		return Key{}, fmt.Errorf("generate license id: %w", err)
	}
	value, err := keyGenerator()
	if err != nil {
		return Key{}, fmt.Errorf("generate license key: %w", err)
	}
	if value == "" {
		return Key{}, ErrEmptyKey
	}

	return Key{
		ID:        keyID,
		ProductID: input.ProductID,
		OrderID:   input.OrderID,
		Key:       value,
		Status:    StatusActive,
		ExpiresAt: input.ExpiresAt,
		CreatedAt: now().UTC(),
	}, nil
}
