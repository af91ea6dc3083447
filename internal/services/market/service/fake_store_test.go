package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/keyfold/keyfold/internal/services/market/storage"
)

// fakeStore is an in-memory storage.Store for service tests. Optional
// fail hooks simulate storage outages per operation.
type fakeStore struct {
	sellers     map[string]storage.Seller
	storefronts map[string]storage.Storefront
	products    map[string]storage.Product
	orders      map[string]storage.Order
	payments    []storage.Payment
	licenses    []storage.LicenseKey
	riskEvents  []storage.RiskEvent

	failPutOrder      bool
	failAppendPayment bool
	failPutLicense    bool
	failMarkPaid      bool
	failAppendRisk    bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		sellers:     make(map[string]storage.Seller),
		storefronts: make(map[string]storage.Storefront),
		products:    make(map[string]storage.Product),
		orders:      make(map[string]storage.Order),
	}
}

func (f *fakeStore) PutSeller(_ context.Context, seller storage.Seller) error {
	f.sellers[seller.ID] = seller
	return nil
}

func (f *fakeStore) GetSeller(_ context.Context, sellerID string) (storage.Seller, error) {
	seller, ok := f.sellers[sellerID]
	if !ok {
		return storage.Seller{}, storage.ErrNotFound
	}
	return seller, nil
}

func (f *fakeStore) PutStorefront(_ context.Context, storefront storage.Storefront) error {
	f.storefronts[storefront.ID] = storefront
	return nil
}

func (f *fakeStore) PutProduct(_ context.Context, product storage.Product) error {
	f.products[product.ID] = product
	return nil
}

func (f *fakeStore) GetProduct(_ context.Context, productID string) (storage.Product, error) {
	product, ok := f.products[productID]
	if !ok {
		return storage.Product{}, storage.ErrNotFound
	}
	return product, nil
}

func (f *fakeStore) ListActiveProducts(_ context.Context, sellerID string, limit int) ([]storage.Product, error) {
	var records []storage.Product
	for _, product := range f.products {
		if !product.IsActive {
			continue
		}
		if sellerID != "" && product.SellerID != sellerID {
			continue
		}
		records = append(records, product)
	}
	sort.Slice(records, func(i, j int) bool {
		if !records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].CreatedAt.After(records[j].CreatedAt)
		}
		return records[i].ID < records[j].ID
	})
	if len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

func (f *fakeStore) PutOrder(_ context.Context, order storage.Order) error {
	if f.failPutOrder {
		return fmt.Errorf("put order: storage unavailable")
	}
	f.orders[order.ID] = order
	return nil
}

func (f *fakeStore) GetOrder(_ context.Context, orderID string) (storage.Order, error) {
	order, ok := f.orders[orderID]
	if !ok {
		return storage.Order{}, storage.ErrNotFound
	}
	return order, nil
}

func (f *fakeStore) MarkOrderPaid(_ context.Context, orderID string, delivery storage.Delivery, updatedAt time.Time) error {
	if f.failMarkPaid {
		return fmt.Errorf("mark order paid: storage unavailable")
	}
	order, ok := f.orders[orderID]
	if !ok {
		return storage.ErrNotFound
	}
	order.Status = "paid"
	order.Delivery = &delivery
	order.UpdatedAt = updatedAt
	f.orders[orderID] = order
	return nil
}

func (f *fakeStore) AppendPayment(_ context.Context, payment storage.Payment) error {
	if f.failAppendPayment {
		return fmt.Errorf("append payment: storage unavailable")
	}
	f.payments = append(f.payments, payment)
	return nil
}

func (f *fakeStore) ListPaymentsByOrder(_ context.Context, orderID string) ([]storage.Payment, error) {
	var payments []storage.Payment
	for _, payment := range f.payments {
		if payment.OrderID == orderID {
			payments = append(payments, payment)
		}
	}
	return payments, nil
}

func (f *fakeStore) PutLicenseKey(_ context.Context, key storage.LicenseKey) error {
	if f.failPutLicense {
		return fmt.Errorf("put license key: storage unavailable")
	}
	f.licenses = append(f.licenses, key)
	return nil
}

func (f *fakeStore) CountActiveKeysByProduct(_ context.Context, productID string) (int, error) {
	count := 0
	for _, key := range f.licenses {
		if key.ProductID == productID && key.Status == "active" {
			count++
		}
	}
	return count, nil
}

func (f *fakeStore) ListLicenseKeysByOrder(_ context.Context, orderID string) ([]storage.LicenseKey, error) {
	var keys []storage.LicenseKey
	for _, key := range f.licenses {
		if key.OrderID == orderID {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

func (f *fakeStore) AppendRiskEvent(_ context.Context, event storage.RiskEvent) error {
	if f.failAppendRisk {
		return fmt.Errorf("append risk event: storage unavailable")
	}
	f.riskEvents = append(f.riskEvents, event)
	return nil
}
