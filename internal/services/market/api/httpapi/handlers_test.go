package httpapi

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/keyfold/keyfold/internal/services/market/service"
	"github.com/keyfold/keyfold/internal/services/market/storage"
)

type memStore struct {
	sellers     map[string]storage.Seller
	storefronts map[string]storage.Storefront
	products    map[string]storage.Product
	orders      map[string]storage.Order
	payments    []storage.Payment
	licenses    []storage.LicenseKey
	riskEvents  []storage.RiskEvent
}

func newMemStore() *memStore {
	return &memStore{
		sellers:     make(map[string]storage.Seller),
		storefronts: make(map[string]storage.Storefront),
		products:    make(map[string]storage.Product),
		orders:      make(map[string]storage.Order),
	}
}

func (m *memStore) PutSeller(_ context.Context, seller storage.Seller) error {
	m.sellers[seller.ID] = seller
	return nil
}

func (m *memStore) GetSeller(_ context.Context, sellerID string) (storage.Seller, error) {
	seller, ok := m.sellers[sellerID]
	if !ok {
		return storage.Seller{}, storage.ErrNotFound
	}
	return seller, nil
}

func (m *memStore) PutStorefront(_ context.Context, storefront storage.Storefront) error {
	m.storefronts[storefront.ID] = storefront
	return nil
}

func (m *memStore) PutProduct(_ context.Context, product storage.Product) error {
	m.products[product.ID] = product
	return nil
}

func (m *memStore) GetProduct(_ context.Context, productID string) (storage.Product, error) {
	product, ok := m.products[productID]
	if !ok {
		return storage.Product{}, storage.ErrNotFound
	}
	return product, nil
}

func (m *memStore) ListActiveProducts(_ context.Context, sellerID string, limit int) ([]storage.Product, error) {
	var records []storage.Product
	for _, product := range m.products {
		if !product.IsActive {
			continue
		}
		if sellerID != "" && product.SellerID != sellerID {
			continue
		}
		records = append(records, product)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	if len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

func (m *memStore) PutOrder(_ context.Context, order storage.Order) error {
	m.orders[order.ID] = order
	return nil
}

func (m *memStore) GetOrder(_ context.Context, orderID string) (storage.Order, error) {
	order, ok := m.orders[orderID]
	if !ok {
		return storage.Order{}, storage.ErrNotFound
	}
	return order, nil
}

func (m *memStore) MarkOrderPaid(_ context.Context, orderID string, delivery storage.Delivery, updatedAt time.Time) error {
	order, ok := m.orders[orderID]
	if !ok {
		return storage.ErrNotFound
	}
	order.Status = "paid"
	order.Delivery = &delivery
	order.UpdatedAt = updatedAt
	m.orders[orderID] = order
	return nil
}

func (m *memStore) AppendPayment(_ context.Context, payment storage.Payment) error {
	m.payments = append(m.payments, payment)
	return nil
}

func (m *memStore) ListPaymentsByOrder(_ context.Context, orderID string) ([]storage.Payment, error) {
	var payments []storage.Payment
	for _, payment := range m.payments {
		if payment.OrderID == orderID {
			payments = append(payments, payment)
		}
	}
	return payments, nil
}

func (m *memStore) PutLicenseKey(_ context.Context, key storage.LicenseKey) error {
	m.licenses = append(m.licenses, key)
	return nil
}

func (m *memStore) CountActiveKeysByProduct(_ context.Context, productID string) (int, error) {
	count := 0
	for _, key := range m.licenses {
		if key.ProductID == productID && key.Status == "active" {
			count++
		}
	}
	return count, nil
}

func (m *memStore) ListLicenseKeysByOrder(_ context.Context, orderID string) ([]storage.LicenseKey, error) {
	var keys []storage.LicenseKey
	for _, key := range m.licenses {
		if key.OrderID == orderID {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

func (m *memStore) AppendRiskEvent(_ context.Context, event storage.RiskEvent) error {
	m.riskEvents = append(m.riskEvents, event)
	return nil
}

func newTestMux(t *testing.T, store *memStore, webhookSecret string) *http.ServeMux {
	t.Helper()
	server := NewServer(service.NewService(store), store, webhookSecret)
	mux := http.NewServeMux()
	server.RegisterRoutes(mux)
	return mux
}

func seedActiveProduct(store *memStore, p storage.Product) {
	if p.Currency == "" {
		p.Currency = "USD"
	}
	if p.Category == "" {
		p.Category = "software"
	}
	p.IsActive = true
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	store.products[p.ID] = p
}

func TestProductsEndpoint(t *testing.T) {
	store := newMemStore()
	seedActiveProduct(store, storage.Product{ID: "prod-1", SellerID: "s1", Title: "A", Price: 10})
	seedActiveProduct(store, storage.Product{ID: "prod-2", SellerID: "s2", Title: "B", Price: 20})
	mux := newTestMux(t, store, "")

	recorder := httptest.NewRecorder()
	mux.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/products?seller_id=s2", nil))

	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", recorder.Code, recorder.Body.String())
	}
	var got []map[string]any
	if err := json.NewDecoder(recorder.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(got) != 1 || got[0]["id"] != "prod-2" {
		t.Fatalf("products = %+v, want only seller s2", got)
	}
	if _, leaked := got[0]["file_url"]; leaked {
		t.Fatal("public view must not leak file_url")
	}
}

func TestProductsEndpointRejectsBadLimit(t *testing.T) {
	mux := newTestMux(t, newMemStore(), "")
	recorder := httptest.NewRecorder()
	mux.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/products?limit=abc", nil))
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", recorder.Code)
	}
}

func TestCreateOrderEndpoint(t *testing.T) {
	store := newMemStore()
	seedActiveProduct(store, storage.Product{ID: "prod-1", SellerID: "s1", Title: "A", Price: 29})
	mux := newTestMux(t, store, "")

	body := `{"product_id":"prod-1","buyer_email":"buyer@example.com","device_fingerprint":"fp"}`
	recorder := httptest.NewRecorder()
	mux.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(body)))

	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", recorder.Code, recorder.Body.String())
	}
	var got createOrderResponse
	if err := json.NewDecoder(recorder.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.Status != "pending" || got.Action != "allow" {
		t.Fatalf("response = %+v", got)
	}
	if got.OrderID == "" || got.ClientSecret == "" {
		t.Fatalf("response = %+v, want order id and client secret", got)
	}
}

func TestCreateOrderEndpointUnknownProduct(t *testing.T) {
	mux := newTestMux(t, newMemStore(), "")
	body := `{"product_id":"missing","buyer_email":"buyer@example.com"}`
	recorder := httptest.NewRecorder()
	mux.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(body)))
	if recorder.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", recorder.Code)
	}
}

func TestCreateOrderEndpointInvalidBody(t *testing.T) {
	mux := newTestMux(t, newMemStore(), "")
	recorder := httptest.NewRecorder()
	mux.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader("{")))
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", recorder.Code)
	}
}

func TestGetOrderEndpoint(t *testing.T) {
	store := newMemStore()
	orderID := strings.Repeat("a", 26)
	store.orders[orderID] = storage.Order{
		ID: orderID, SellerID: "s1", ProductID: "prod-1",
		BuyerEmail: "buyer@example.com", Amount: 29, Currency: "USD", Status: "pending",
	}
	mux := newTestMux(t, store, "")

	recorder := httptest.NewRecorder()
	mux.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/orders/"+orderID, nil))

	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", recorder.Code, recorder.Body.String())
	}
	var got orderResponse
	if err := json.NewDecoder(recorder.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.ID != orderID || got.Status != "pending" {
		t.Fatalf("response = %+v", got)
	}
	if got.Delivery != nil {
		t.Fatal("delivery must be null before payment")
	}
}

func TestGetOrderEndpointMalformedID(t *testing.T) {
	mux := newTestMux(t, newMemStore(), "")
	recorder := httptest.NewRecorder()
	mux.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/orders/UPPER-not-base32", nil))
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 for malformed id", recorder.Code)
	}
}

func TestGetOrderEndpointNotFound(t *testing.T) {
	mux := newTestMux(t, newMemStore(), "")
	recorder := httptest.NewRecorder()
	mux.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/orders/"+strings.Repeat("b", 26), nil))
	if recorder.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", recorder.Code)
	}
}

func webhookBody(t *testing.T, eventType, orderID string) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"type": eventType,
		"data": map[string]any{
			"order_id":      orderID,
			"amount":        29,
			"currency":      "USD",
			"processor":     "card",
			"processor_ref": "ch_123",
		},
	})
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	return body
}

func TestWebhookEndpointPaidTransition(t *testing.T) {
	store := newMemStore()
	seedActiveProduct(store, storage.Product{ID: "prod-1", SellerID: "s1", Title: "A", Price: 29, DeliveryType: "license_key"})
	store.orders["ord-1"] = storage.Order{ID: "ord-1", SellerID: "s1", ProductID: "prod-1", BuyerEmail: "a@b.com", Status: "pending"}
	mux := newTestMux(t, store, "")

	recorder := httptest.NewRecorder()
	mux.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/payments/webhook",
		bytes.NewReader(webhookBody(t, "payment.succeeded", "ord-1"))))

	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", recorder.Code, recorder.Body.String())
	}
	var got webhookResponse
	if err := json.NewDecoder(recorder.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !got.OK || got.OrderID != "ord-1" {
		t.Fatalf("response = %+v", got)
	}
	if got.Delivery == nil || got.Delivery.Type != "license_key" || got.Delivery.Key == "" {
		t.Fatalf("delivery = %+v", got.Delivery)
	}
	if store.orders["ord-1"].Status != "paid" {
		t.Fatalf("order status = %q, want paid", store.orders["ord-1"].Status)
	}
}

func TestWebhookEndpointIgnoredType(t *testing.T) {
	store := newMemStore()
	store.orders["ord-1"] = storage.Order{ID: "ord-1", Status: "pending", ProductID: "p", BuyerEmail: "a@b.com"}
	mux := newTestMux(t, store, "")

	recorder := httptest.NewRecorder()
	mux.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/payments/webhook",
		bytes.NewReader(webhookBody(t, "payment.failed", "ord-1"))))

	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d", recorder.Code)
	}
	var got webhookResponse
	if err := json.NewDecoder(recorder.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !got.Received || got.OK {
		t.Fatalf("response = %+v, want bare ack", got)
	}
	if store.orders["ord-1"].Status != "pending" {
		t.Fatal("ignored event mutated the order")
	}
}

func TestWebhookEndpointMissingOrderID(t *testing.T) {
	mux := newTestMux(t, newMemStore(), "")
	recorder := httptest.NewRecorder()
	mux.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/payments/webhook",
		bytes.NewReader(webhookBody(t, "payment.succeeded", ""))))
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", recorder.Code)
	}
}

func TestWebhookEndpointNotPayable(t *testing.T) {
	store := newMemStore()
	store.orders["ord-1"] = storage.Order{ID: "ord-1", Status: "failed", ProductID: "p", BuyerEmail: "a@b.com"}
	mux := newTestMux(t, store, "")

	recorder := httptest.NewRecorder()
	mux.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/payments/webhook",
		bytes.NewReader(webhookBody(t, "payment.succeeded", "ord-1"))))
	if recorder.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", recorder.Code)
	}
}

func TestWebhookEndpointSignature(t *testing.T) {
	const secret = "whsec_test"
	store := newMemStore()
	seedActiveProduct(store, storage.Product{ID: "prod-1", SellerID: "s1", Title: "A", Price: 29, DeliveryType: "manual"})
	store.orders["ord-1"] = storage.Order{ID: "ord-1", SellerID: "s1", ProductID: "prod-1", BuyerEmail: "a@b.com", Status: "pending"}
	mux := newTestMux(t, store, secret)

	body := webhookBody(t, "payment.succeeded", "ord-1")

	// Unsigned request is rejected when a secret is configured.
	recorder := httptest.NewRecorder()
	mux.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/payments/webhook", bytes.NewReader(body)))
	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("unsigned status = %d, want 401", recorder.Code)
	}

	// Wrong signature is rejected.
	request := httptest.NewRequest(http.MethodPost, "/payments/webhook", bytes.NewReader(body))
	request.Header.Set(signatureHeader, "deadbeef")
	recorder = httptest.NewRecorder()
	mux.ServeHTTP(recorder, request)
	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("bad signature status = %d, want 401", recorder.Code)
	}

	// Correct signature passes.
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	request = httptest.NewRequest(http.MethodPost, "/payments/webhook", bytes.NewReader(body))
	request.Header.Set(signatureHeader, hex.EncodeToString(mac.Sum(nil)))
	recorder = httptest.NewRecorder()
	mux.ServeHTTP(recorder, request)
	if recorder.Code != http.StatusOK {
		t.Fatalf("signed status = %d, body = %s", recorder.Code, recorder.Body.String())
	}
}

func TestSeedEndpoint(t *testing.T) {
	store := newMemStore()
	mux := newTestMux(t, store, "")

	recorder := httptest.NewRecorder()
	mux.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/seed", nil))

	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", recorder.Code, recorder.Body.String())
	}
	var got struct {
		SellerID  string `json:"seller_id"`
		ProductID string `json:"product_id"`
	}
	if err := json.NewDecoder(recorder.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.SellerID == "" || got.ProductID == "" {
		t.Fatalf("response = %+v", got)
	}
	if _, ok := store.products[got.ProductID]; !ok {
		t.Fatal("seeded product not persisted")
	}
	if _, ok := store.sellers[got.SellerID]; !ok {
		t.Fatal("seeded seller not persisted")
	}
	if len(store.storefronts) != 1 {
		t.Fatalf("storefronts = %d, want 1", len(store.storefronts))
	}
}

func TestHealthzEndpoint(t *testing.T) {
	mux := newTestMux(t, newMemStore(), "")
	recorder := httptest.NewRecorder()
	mux.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d", recorder.Code)
	}
	if recorder.Body.String() != "ok" {
		t.Fatalf("body = %q", recorder.Body.String())
	}
}

func TestMethodNotAllowed(t *testing.T) {
	mux := newTestMux(t, newMemStore(), "")
	tests := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/products"},
		{http.MethodGet, "/payments/webhook"},
		{http.MethodDelete, "/orders"},
		{http.MethodGet, "/seed"},
	}
	for _, test := range tests {
		recorder := httptest.NewRecorder()
		mux.ServeHTTP(recorder, httptest.NewRequest(test.method, test.path, nil))
		if recorder.Code != http.StatusMethodNotAllowed {
			t.Fatalf("%s %s: status = %d, want 405", test.method, test.path, recorder.Code)
		}
	}
}

func TestRequestIDHeader(t *testing.T) {
	mux := newTestMux(t, newMemStore(), "")

	recorder := httptest.NewRecorder()
	mux.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/products", nil))
	if recorder.Header().Get(requestIDHeader) == "" {
		t.Fatal("response must carry a request id")
	}

	request := httptest.NewRequest(http.MethodGet, "/products", nil)
	request.Header.Set(requestIDHeader, "req-123")
	recorder = httptest.NewRecorder()
	mux.ServeHTTP(recorder, request)
	if got := recorder.Header().Get(requestIDHeader); got != "req-123" {
		t.Fatalf("request id = %q, want caller-provided id echoed", got)
	}
}
