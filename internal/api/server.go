// Package api provides the HTTP JSON API for the jonnen to-do service.
//
// Every data route authenticates via the api_key query parameter, resolves it
// to the owning user id, and scopes its statements to that user. Handlers hold
// no cross-request state; each request is independently authorized.
//
// File structure:
//   - server.go: route registration and middleware assembly
//   - auth.go: API-key resolution
//   - person.go: user lookup endpoint
//   - orders.go: order CRUD endpoints
//   - response.go: JSON response helpers
//   - middleware.go: recovery, logging, CORS
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/jonnen/jonnen/internal/todo"
)

// Store defines the persistence operations the API consumes.
// *todo.Store satisfies this interface; tests substitute fakes.
type Store interface {
	ResolveAPIKey(ctx context.Context, apiKey string) (int64, error)
	UserName(ctx context.Context, userID int64) (string, error)
	OrdersForUser(ctx context.Context, userID int64) ([]todo.Order, error)
	OrdersByCategory(ctx context.Context, userID, categoryID int64) ([]todo.Order, error)
	CreateOrder(ctx context.Context, userID int64, title string, categoryID int64, dueAt string) (int64, error)
	UpdateOrderUnscoped(ctx context.Context, orderID, categoryID int64, title, dueAt string) error
	UpdateOrder(ctx context.Context, orderID, userID, categoryID int64, title, dueAt string) error
	DeleteOrder(ctx context.Context, orderID, userID int64) (int64, error)
	CompleteOrder(ctx context.Context, orderID, userID int64) (int64, error)
}

// ServerConfig contains configuration for creating the API server.
type ServerConfig struct {
	Store       Store    // Required
	Logger      *slog.Logger
	CORSOrigins []string // Allowed origins; ["*"] permits any
}

// Server is the JSON API HTTP server.
type Server struct {
	handler http.Handler
}

// NewServer creates a new API server with all routes configured.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Store == nil {
		return nil, errors.New("store is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	auth := &authorizer{store: cfg.Store, logger: logger}

	ph := &personHandler{store: cfg.Store, auth: auth, logger: logger}
	oh := &ordersHandler{store: cfg.Store, auth: auth, logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", index)
	mux.HandleFunc("GET /person/{id}", ph.get)
	mux.HandleFunc("GET /category/{id}", oh.byCategory)
	// /orders dispatches on method internally: an unmatched method gets the
	// historical diagnostic body, not a 405.
	mux.HandleFunc("/orders/{id}", oh.orders)
	mux.HandleFunc("PUT /edit/{id}", oh.edit)
	mux.HandleFunc("DELETE /delete/{id}", oh.delete)
	mux.HandleFunc("PUT /completed/{id}", oh.complete)

	// Middleware stack (outermost first): Recovery → Logging → CORS → Routes
	var handler http.Handler = mux
	handler = corsMiddleware(cfg.CORSOrigins)(handler)
	handler = loggingMiddleware(logger)(handler)
	handler = recoveryMiddleware(logger)(handler)

	return &Server{handler: handler}, nil
}

// Handler returns the server as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// index handles GET / — points callers at the to-do endpoints.
func index(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Use endpoint /todo"})
}
