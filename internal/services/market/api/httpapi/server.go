// Package httpapi exposes the market service over JSON HTTP.
package httpapi

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/keyfold/keyfold/internal/services/market/service"
	"github.com/keyfold/keyfold/internal/services/market/storage"
)

// Server hosts the market HTTP endpoints.
type Server struct {
	service *service.Service
	store   storage.Store
	// webhookSecret, when non-empty, requires signed payment webhooks.
	webhookSecret string
}

// NewServer builds an HTTP server over the market service. The store is
// needed directly for the seed fixture.
func NewServer(svc *service.Service, store storage.Store, webhookSecret string) *Server {
	return &Server{
		service:       svc,
		store:         store,
		webhookSecret: webhookSecret,
	}
}

// RegisterRoutes registers market HTTP endpoints on the provided mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	if mux == nil {
		return
	}

	mux.HandleFunc("/products", instrument("products", s.handleProducts))
	mux.HandleFunc("/orders", instrument("orders", s.handleOrders))
	mux.HandleFunc("/orders/", instrument("order", s.handleOrderByID))
	mux.HandleFunc("/payments/webhook", instrument("webhook", s.handleWebhook))
	mux.HandleFunc("/seed", instrument("seed", s.handleSeed))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.Handler())
}
