package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/keyfold/keyfold/internal/platform/errors"
	"github.com/keyfold/keyfold/internal/platform/id"
	"github.com/keyfold/keyfold/internal/services/market/metrics"
	"github.com/keyfold/keyfold/internal/services/market/seed"
	"github.com/keyfold/keyfold/internal/services/market/service"
	"github.com/keyfold/keyfold/internal/services/market/storage"
)

// maxBodyBytes caps request bodies; payloads here are small JSON documents.
const maxBodyBytes = 1 << 20

func (s *Server) handleProducts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "INVALID_LIMIT", "limit must be an integer")
			return
		}
		limit = parsed
	}

	products, err := s.service.ListProducts(r.Context(), r.URL.Query().Get("seller_id"), limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

type createOrderRequest struct {
	ProductID         string `json:"product_id"`
	BuyerEmail        string `json:"buyer_email"`
	Currency          string `json:"currency"`
	DeviceFingerprint string `json:"device_fingerprint"`
}

type createOrderResponse struct {
	OrderID      string  `json:"order_id"`
	Status       string  `json:"status"`
	ClientSecret string  `json:"client_secret"`
	RiskScore    float64 `json:"risk_score"`
	Action       string  `json:"action"`
}

func (s *Server) handleOrders(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req createOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "INVALID_BODY", "invalid JSON body")
		return
	}

	created, err := s.service.CreateOrder(r.Context(), service.CreateOrderInput{
		ProductID:         req.ProductID,
		BuyerEmail:        req.BuyerEmail,
		Currency:          req.Currency,
		DeviceFingerprint: req.DeviceFingerprint,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	metrics.OrdersCreatedTotal.WithLabelValues(string(created.Action)).Inc()

	writeJSON(w, http.StatusOK, createOrderResponse{
		OrderID:      created.OrderID,
		Status:       string(created.Status),
		ClientSecret: created.ClientSecret,
		RiskScore:    created.RiskScore,
		Action:       string(created.Action),
	})
}

type orderResponse struct {
	ID         string            `json:"id"`
	SellerID   string            `json:"seller_id"`
	ProductID  string            `json:"product_id"`
	BuyerEmail string            `json:"buyer_email"`
	Amount     float64           `json:"amount"`
	Currency   string            `json:"currency"`
	Status     string            `json:"status"`
	Delivery   *storage.Delivery `json:"delivery"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

func (s *Server) handleOrderByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	orderID := strings.TrimPrefix(r.URL.Path, "/orders/")
	if orderID == "" || strings.Contains(orderID, "/") {
		http.NotFound(w, r)
		return
	}
	if !id.Valid(orderID) {
		writeJSONError(w, http.StatusBadRequest, string(apperrors.CodeOrderIDMalformed), "malformed order id")
		return
	}

	ord, err := s.service.GetOrder(r.Context(), orderID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, orderResponse{
		ID:         ord.ID,
		SellerID:   ord.SellerID,
		ProductID:  ord.ProductID,
		BuyerEmail: ord.BuyerEmail,
		Amount:     ord.Amount,
		Currency:   ord.Currency,
		Status:     ord.Status,
		Delivery:   ord.Delivery,
		CreatedAt:  ord.CreatedAt,
		UpdatedAt:  ord.UpdatedAt,
	})
}

type webhookRequest struct {
	Type string `json:"type"`
	Data struct {
		OrderID      string  `json:"order_id"`
		Amount       float64 `json:"amount"`
		Currency     string  `json:"currency"`
		Processor    string  `json:"processor"`
		ProcessorRef string  `json:"processor_ref"`
	} `json:"data"`
}

type webhookResponse struct {
	OK       bool              `json:"ok,omitempty"`
	Received bool              `json:"received,omitempty"`
	OrderID  string            `json:"order_id,omitempty"`
	Delivery *storage.Delivery `json:"delivery,omitempty"`
}

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "INVALID_BODY", "unreadable request body")
		return
	}

	if s.webhookSecret != "" {
		if !verifySignature(s.webhookSecret, body, r.Header.Get(signatureHeader)) {
			writeJSONError(w, http.StatusUnauthorized, string(apperrors.CodeWebhookSignatureInvalid), "webhook signature mismatch")
			return
		}
	}

	var req webhookRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "INVALID_BODY", "invalid JSON body")
		return
	}

	eventType := req.Type
	if eventType == "" {
		eventType = "unknown"
	}
	metrics.PaymentEventsTotal.WithLabelValues(eventType).Inc()

	result, err := s.service.HandlePaymentEvent(r.Context(), service.PaymentEvent{
		Type: req.Type,
		Data: service.PaymentEventData{
			OrderID:      req.Data.OrderID,
			Amount:       req.Data.Amount,
			Currency:     req.Data.Currency,
			Processor:    req.Data.Processor,
			ProcessorRef: req.Data.ProcessorRef,
		},
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if result.OrderID == "" {
		writeJSON(w, http.StatusOK, webhookResponse{Received: true})
		return
	}

	if result.Delivery != nil && !result.Replayed {
		metrics.FulfillmentsTotal.WithLabelValues(result.Delivery.Type).Inc()
	}

	writeJSON(w, http.StatusOK, webhookResponse{
		OK:       true,
		OrderID:  result.OrderID,
		Delivery: result.Delivery,
	})
}

func (s *Server) handleSeed(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	result, err := seed.Apply(r.Context(), s.store)
	if err != nil {
		log.Printf("seed demo data: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "SEED_FAILED", "failed to seed demo data")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func decodeJSON(r *http.Request, target any) error {
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	return decoder.Decode(target)
}

// writeDomainError maps a service error to its HTTP shape. Unrecognized
// errors are logged and collapsed into an opaque 500.
func writeDomainError(w http.ResponseWriter, err error) {
	var domainErr *apperrors.Error
	if errors.As(err, &domainErr) {
		writeJSONError(w, domainErr.Code.HTTPStatus(), string(domainErr.Code), domainErr.Message)
		return
	}
	log.Printf("internal error: %v", err)
	writeJSONError(w, http.StatusInternalServerError, string(apperrors.CodeUnknown), "internal error")
}

type errorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

func writeJSONError(w http.ResponseWriter, status int, code, description string) {
	writeJSON(w, status, errorResponse{Error: code, ErrorDescription: description})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encoder := json.NewEncoder(w)
	_ = encoder.Encode(payload)
}
