// Package payment provides the append-only payment ledger entry.
package payment

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/keyfold/keyfold/internal/platform/errors"
	"github.com/keyfold/keyfold/internal/platform/id"
)

var (
	// ErrInvalidProcessor indicates a processor outside the known set.
	ErrInvalidProcessor = apperrors.New(apperrors.CodePaymentInvalidProcessor, "processor must be one of card, paypal, crypto, bank")
	// ErrInvalidStatus indicates a payment status outside the known set.
	ErrInvalidStatus = apperrors.New(apperrors.CodePaymentInvalidStatus, "unknown payment status")
	// ErrNegativeAmount indicates an amount below zero.
	ErrNegativeAmount = apperrors.New(apperrors.CodePaymentNegativeAmount, "payment amount must be non-negative")
)

// Processor identifies how the buyer paid.
type Processor string

const (
	ProcessorCard   Processor = "card"
	ProcessorPaypal Processor = "paypal"
	ProcessorCrypto Processor = "crypto"
	ProcessorBank   Processor = "bank"
)

// Status is the processor-reported outcome of a payment attempt.
type Status string

const (
	StatusInitiated Status = "initiated"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusRefunded  Status = "refunded"
)

// ValidProcessor reports whether value is a known processor.
func ValidProcessor(value Processor) bool {
	switch value {
	case ProcessorCard, ProcessorPaypal, ProcessorCrypto, ProcessorBank:
		return true
	default:
		return false
	}
}

// ValidStatus reports whether value is a known payment status.
func ValidStatus(value Status) bool {
	switch value {
	case StatusInitiated, StatusSucceeded, StatusFailed, StatusRefunded:
		return true
	default:
		return false
	}
}

// Payment records one processor-reported payment attempt. Records are
// append-only and never mutated after creation.
type Payment struct {
	ID           string
	OrderID      string
	Processor    Processor
	ProcessorRef string
	Amount       float64
	Currency     string
	Status       Status
	CreatedAt    time.Time
}

// RecordInput describes one inbound payment attempt to append.
type RecordInput struct {
	OrderID      string
	Processor    Processor
	ProcessorRef string
	Amount       float64
	Currency     string
	Status       Status
}

// Record creates an immutable ledger entry from validated input. An empty
// processor defaults to card, matching the normalized webhook event shape.
func Record(input RecordInput, now func() time.Time, idGenerator func() (string, error)) (Payment, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	if input.Processor == "" {
		input.Processor = ProcessorCard
	}
	if !ValidProcessor(input.Processor) {
		return Payment{}, ErrInvalidProcessor
	}
	if input.Status == "" {
		input.Status = StatusInitiated
	}
	if !ValidStatus(input.Status) {
		return Payment{}, ErrInvalidStatus
	}
	if input.Amount < 0 {
		return Payment{}, ErrNegativeAmount
	}
	if input.Currency == "" {
		input.Currency = "USD"
	}

	paymentID, err := idGenerator()
	if err != nil {
		return Payment{}, fmt.Errorf("generate payment id: %w", err)
	}

	return Payment{
		ID:           paymentID,
		OrderID:      strings.TrimSpace(input.OrderID),
		Processor:    input.Processor,
		ProcessorRef: strings.TrimSpace(input.ProcessorRef),
		Amount:       input.Amount,
		Currency:     strings.ToUpper(input.Currency),
		Status:       input.Status,
		CreatedAt:    now().UTC(),
	}, nil
}
