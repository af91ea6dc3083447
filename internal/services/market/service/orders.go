package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	apperrors "github.com/keyfold/keyfold/internal/platform/errors"
	"github.com/keyfold/keyfold/internal/services/market/order"
	"github.com/keyfold/keyfold/internal/services/market/risk"
	"github.com/keyfold/keyfold/internal/services/market/storage"
)

// CreateOrderInput captures one purchase intent.
type CreateOrderInput struct {
	ProductID         string
	BuyerEmail        string
	Currency          string
	DeviceFingerprint string
}

// OrderCreation is the outcome of one purchase intent.
type OrderCreation struct {
	OrderID      string
	Status       order.Status
	ClientSecret string
	RiskScore    float64
	Action       risk.Action
}

// CreateOrder runs the purchase-intent flow: product lookup, amount
// snapshot, risk gate, and persistence of exactly one order. A blocking
// risk outcome records the order as failed; it is never payable.
func (s *Service) CreateOrder(ctx context.Context, input CreateOrderInput) (OrderCreation, error) {
	if s == nil || s.store == nil {
		return OrderCreation{}, fmt.Errorf("store is not configured")
	}

	productID := strings.TrimSpace(input.ProductID)
	if productID == "" {
		return OrderCreation{}, order.ErrEmptyProductID
	}

	record, err := s.store.GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return OrderCreation{}, apperrors.New(apperrors.CodeProductNotFound, "product not found")
		}
		return OrderCreation{}, fmt.Errorf("get product: %w", err)
	}

	// Amount is snapshotted here; later product price edits never touch it.
	amount := record.Price
	currency := strings.TrimSpace(input.Currency)
	if currency == "" {
		currency = record.Currency
	}
	if currency == "" {
		currency = "USD"
	}

	signal := risk.Signal{
		Email:             input.BuyerEmail,
		Currency:          currency,
		DeviceFingerprint: input.DeviceFingerprint,
	}
	score := risk.Score(signal)
	action := risk.ActionFor(score)

	status := order.StatusPending
	if action == risk.ActionBlock {
		status = order.StatusFailed
	}

	created, err := order.CreateOrder(order.CreateOrderInput{
		SellerID:   record.SellerID,
		ProductID:  record.ID,
		BuyerEmail: input.BuyerEmail,
		Amount:     amount,
		Currency:   currency,
		Status:     status,
	}, s.clock, s.newID)
	if err != nil {
		return OrderCreation{}, err
	}

	if err := s.store.PutOrder(ctx, orderToRecord(created)); err != nil {
		return OrderCreation{}, fmt.Errorf("put order: %w", err)
	}

	s.appendRiskEvent(ctx, created.ID, signal, score, action)

	clientSecret, err := s.newClientSecret()
	if err != nil {
		return OrderCreation{}, fmt.Errorf("generate client secret: %w", err)
	}

	return OrderCreation{
		OrderID:      created.ID,
		Status:       created.Status,
		ClientSecret: clientSecret,
		RiskScore:    score,
		Action:       action,
	}, nil
}

// appendRiskEvent records the audit trail of one risk evaluation. The order
// already exists at this point, so a failed append is logged rather than
// surfaced to the buyer.
func (s *Service) appendRiskEvent(ctx context.Context, orderID string, signal risk.Signal, score float64, action risk.Action) {
	eventID, err := s.newID()
	if err != nil {
		log.Printf("generate risk event id order_id=%s: %v", orderID, err)
		return
	}
	event := storage.RiskEvent{
		ID:        eventID,
		OrderID:   orderID,
		Score:     score,
		Email:     signal.Email,
		Currency:  signal.Currency,
		DeviceFP:  signal.DeviceFingerprint,
		Action:    string(action),
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.AppendRiskEvent(ctx, event); err != nil {
		log.Printf("append risk event order_id=%s: %v", orderID, err)
	}
}

// GetOrder returns one order snapshot by id.
func (s *Service) GetOrder(ctx context.Context, orderID string) (storage.Order, error) {
	if s == nil || s.store == nil {
		return storage.Order{}, fmt.Errorf("store is not configured")
	}
	record, err := s.store.GetOrder(ctx, strings.TrimSpace(orderID))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return storage.Order{}, apperrors.New(apperrors.CodeOrderNotFound, "order not found")
		}
		return storage.Order{}, fmt.Errorf("get order: %w", err)
	}
	return record, nil
}

func orderToRecord(value order.Order) storage.Order {
	return storage.Order{
		ID:         value.ID,
		SellerID:   value.SellerID,
		ProductID:  value.ProductID,
		BuyerEmail: value.BuyerEmail,
		Amount:     value.Amount,
		Currency:   value.Currency,
		Status:     string(value.Status),
		CreatedAt:  value.CreatedAt,
		UpdatedAt:  value.UpdatedAt,
	}
}
