// Package server wires the market service and hosts its HTTP surface.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/keyfold/keyfold/internal/platform/timeouts"
	"github.com/keyfold/keyfold/internal/services/market/api/httpapi"
	"github.com/keyfold/keyfold/internal/services/market/metrics"
	"github.com/keyfold/keyfold/internal/services/market/service"
	marketsqlite "github.com/keyfold/keyfold/internal/services/market/storage/sqlite"
)

// Server hosts the market service.
type Server struct {
	listener   net.Listener
	httpServer *http.Server
	store      *marketsqlite.Store
}

// New creates a configured market server listening on the provided port.
func New(port int) (*Server, error) {
	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return nil, fmt.Errorf("listen on port %d: %w", port, err)
	}

	store, err := openMarketStore()
	if err != nil {
		_ = listener.Close()
		return nil, err
	}

	svc := service.NewService(store)
	apiServer := httpapi.NewServer(svc, store, os.Getenv("KEYFOLD_WEBHOOK_SECRET"))

	mux := http.NewServeMux()
	apiServer.RegisterRoutes(mux)

	httpServer := &http.Server{
		Handler:           mux,
		ReadTimeout:       timeouts.HTTPRead,
		ReadHeaderTimeout: timeouts.ReadHeader,
		WriteTimeout:      timeouts.HTTPWrite,
		IdleTimeout:       timeouts.HTTPIdle,
	}

	return &Server{
		listener:   listener,
		httpServer: httpServer,
		store:      store,
	}, nil
}

// Addr returns the listener address for the market server.
func (s *Server) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Run creates and serves a market server until the context ends.
func Run(ctx context.Context, port int) error {
	metrics.Register()
	server, err := New(port)
	if err != nil {
		return err
	}
	return server.Serve(ctx)
}

// Serve starts the market server and blocks until it stops or the context
// ends.
func (s *Server) Serve(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	defer s.closeStore()

	log.Printf("market server listening at %v", s.listener.Addr())
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.httpServer.Serve(s.listener)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown HTTP: %w", err)
		}
		err := <-serveErr
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve HTTP: %w", err)
	case err := <-serveErr:
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve HTTP: %w", err)
	}
}

func openMarketStore() (*marketsqlite.Store, error) {
	path := strings.TrimSpace(os.Getenv("KEYFOLD_MARKET_DB_PATH"))
	if path == "" {
		path = filepath.Join("data", "market.db")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}

	store, err := marketsqlite.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open market sqlite store: %w", err)
	}
	return store, nil
}

func (s *Server) closeStore() {
	if s == nil || s.store == nil {
		return
	}
	if err := s.store.Close(); err != nil {
		log.Printf("close market store: %v", err)
	}
}
