package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	apperrors "github.com/keyfold/keyfold/internal/platform/errors"
	"github.com/keyfold/keyfold/internal/services/market/order"
	"github.com/keyfold/keyfold/internal/services/market/payment"
	"github.com/keyfold/keyfold/internal/services/market/storage"
)

// EventPaymentSucceeded is the only event type that drives a transition.
const EventPaymentSucceeded = "payment.succeeded"

// PaymentEvent is the normalized webhook event delivered by the payment
// processor integration.
type PaymentEvent struct {
	Type string
	Data PaymentEventData
}

// PaymentEventData carries the payload of a payment event.
type PaymentEventData struct {
	OrderID      string
	Amount       float64
	Currency     string
	Processor    string
	ProcessorRef string
}

// IntakeResult reports what a payment event did.
type IntakeResult struct {
	// Received is true for acknowledged events, including ignored types.
	Received bool
	// OrderID and Delivery are set when a succeeded payment was processed.
	OrderID  string
	Delivery *storage.Delivery
	// Replayed is true when the order was already paid and the stored
	// delivery was returned without re-running fulfillment.
	Replayed bool
}

// HandlePaymentEvent drives the paid transition for a succeeded payment.
// Every other event type is acknowledged as a no-op so an at-least-once
// webhook retry loop is never poisoned. Intake is idempotent per order: a
// redelivered event for an already-paid order returns the stored delivery
// and writes nothing.
func (s *Service) HandlePaymentEvent(ctx context.Context, event PaymentEvent) (IntakeResult, error) {
	if s == nil || s.store == nil {
		return IntakeResult{}, fmt.Errorf("store is not configured")
	}

	if event.Type != EventPaymentSucceeded {
		return IntakeResult{Received: true}, nil
	}

	orderID := strings.TrimSpace(event.Data.OrderID)
	if orderID == "" {
		return IntakeResult{}, apperrors.New(apperrors.CodeOrderIDMissing, "order_id missing")
	}

	// Serialize per order so concurrently redelivered events cannot both
	// observe a pending order and fulfill twice.
	release := s.locks.acquire(orderID)
	defer release()

	ord, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return IntakeResult{}, apperrors.New(apperrors.CodeOrderNotFound, "order not found")
		}
		return IntakeResult{}, fmt.Errorf("get order: %w", err)
	}

	switch order.Status(ord.Status) {
	case order.StatusPaid:
		return IntakeResult{Received: true, OrderID: ord.ID, Delivery: ord.Delivery, Replayed: true}, nil
	case order.StatusPending:
		// Falls through to the paid transition below.
	default:
		// A blocked (failed) or refunded order is never payable, even via a
		// forged or stale webhook.
		return IntakeResult{}, apperrors.WithMetadata(
			apperrors.CodeOrderNotPayable,
			"order is not payable",
			map[string]string{"status": ord.Status},
		)
	}

	entry, err := payment.Record(payment.RecordInput{
		OrderID:      ord.ID,
		Processor:    payment.Processor(event.Data.Processor),
		ProcessorRef: event.Data.ProcessorRef,
		Amount:       event.Data.Amount,
		Currency:     event.Data.Currency,
		Status:       payment.StatusSucceeded,
	}, s.clock, s.newID)
	if err != nil {
		return IntakeResult{}, err
	}
	if err := s.store.AppendPayment(ctx, paymentToRecord(entry)); err != nil {
		return IntakeResult{}, fmt.Errorf("append payment: %w", err)
	}

	// A vanished product degrades to the manual fallback rather than
	// failing the confirmation.
	var prod *storage.Product
	productRecord, err := s.store.GetProduct(ctx, ord.ProductID)
	if err == nil {
		prod = &productRecord
	} else if !errors.Is(err, storage.ErrNotFound) {
		return IntakeResult{}, fmt.Errorf("get product: %w", err)
	} else {
		log.Printf("fulfilling without product order_id=%s product_id=%s", ord.ID, ord.ProductID)
	}

	delivery, err := s.engine.Fulfill(ctx, ord, prod)
	if err != nil {
		return IntakeResult{}, fmt.Errorf("fulfill order %s: %w", ord.ID, err)
	}

	if err := s.store.MarkOrderPaid(ctx, ord.ID, delivery, s.now().UTC()); err != nil {
		return IntakeResult{}, fmt.Errorf("mark order paid: %w", err)
	}

	return IntakeResult{Received: true, OrderID: ord.ID, Delivery: &delivery}, nil
}

func paymentToRecord(value payment.Payment) storage.Payment {
	return storage.Payment{
		ID:           value.ID,
		OrderID:      value.OrderID,
		Processor:    string(value.Processor),
		ProcessorRef: value.ProcessorRef,
		Amount:       value.Amount,
		Currency:     value.Currency,
		Status:       string(value.Status),
		CreatedAt:    value.CreatedAt,
	}
}
