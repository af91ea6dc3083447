// Package order provides the order entity and its status machine.
package order

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/keyfold/keyfold/internal/platform/errors"
	"github.com/keyfold/keyfold/internal/platform/id"
)

var (
	// ErrEmptyProductID indicates an order without a product reference.
	ErrEmptyProductID = apperrors.New(apperrors.CodeOrderEmptyProductID, "order product id is required")
	// ErrEmptyBuyerEmail indicates a missing buyer email.
	ErrEmptyBuyerEmail = apperrors.New(apperrors.CodeOrderEmptyBuyerEmail, "buyer email is required")
	// ErrNegativeAmount indicates an amount below zero.
	ErrNegativeAmount = apperrors.New(apperrors.CodeOrderNegativeAmount, "order amount must be non-negative")
	// ErrInvalidStatus indicates a status outside the known set.
	ErrInvalidStatus = apperrors.New(apperrors.CodeOrderInvalidStatus, "unknown order status")
)

// Status is the lifecycle state of an order.
type Status string

const (
	StatusPending  Status = "pending"
	StatusPaid     Status = "paid"
	StatusRefunded Status = "refunded"
	StatusFailed   Status = "failed"
)

// ValidStatus reports whether value is a known order status.
func ValidStatus(value Status) bool {
	switch value {
	case StatusPending, StatusPaid, StatusRefunded, StatusFailed:
		return true
	default:
		return false
	}
}

// CanTransition reports whether the status machine permits from -> to.
// Transitions are monotone: pending reaches paid or failed, paid reaches
// refunded, and failed and refunded are terminal.
func CanTransition(from, to Status) bool {
	switch from {
	case StatusPending:
		return to == StatusPaid || to == StatusFailed
	case StatusPaid:
		return to == StatusRefunded
	default:
		return false
	}
}

// Order is one purchase attempt. Amount is snapshotted from the product
// price at creation and never tracks later price changes.
type Order struct {
	ID         string
	SellerID   string
	ProductID  string
	BuyerEmail string
	Amount     float64
	Currency   string
	Status     Status
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// CreateOrderInput describes the data captured by the purchase-intent flow.
type CreateOrderInput struct {
	SellerID   string
	ProductID  string
	BuyerEmail string
	Amount     float64
	Currency   string
	Status     Status
}

// CreateOrder creates an order record from validated input. The risk gate
// decides the initial status: pending, or failed when blocked.
func CreateOrder(input CreateOrderInput, now func() time.Time, idGenerator func() (string, error)) (Order, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	input.ProductID = strings.TrimSpace(input.ProductID)
	input.BuyerEmail = strings.TrimSpace(input.BuyerEmail)
	if input.ProductID == "" {
		return Order{}, ErrEmptyProductID
	}
	if input.BuyerEmail == "" {
		return Order{}, ErrEmptyBuyerEmail
	}
	if input.Amount < 0 {
		return Order{}, ErrNegativeAmount
	}
	if input.Currency == "" {
		input.Currency = "USD"
	}
	if input.Status == "" {
		input.Status = StatusPending
	}
	if input.Status != StatusPending && input.Status != StatusFailed {
		return Order{}, ErrInvalidStatus
	}

	orderID, err := idGenerator()
	if err != nil {
		return Order{}, fmt.Errorf("generate order id: %w", err)
	}

	createdAt := now().UTC()
	return Order{
		ID:         orderID,
		SellerID:   strings.TrimSpace(input.SellerID),
		ProductID:  input.ProductID,
		BuyerEmail: input.BuyerEmail,
		Amount:     input.Amount,
		Currency:   strings.ToUpper(input.Currency),
		Status:     input.Status,
		CreatedAt:  createdAt,
		UpdatedAt:  createdAt,
	}, nil
}
