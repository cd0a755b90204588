// Package httpapi wires the HTTP surface of the wallet service.
// Handlers stay thin; business rules live in the service layer.
package httpapi

import (
	"log/slog"
	"net/http"

	chi "github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/tinoosan/wallet/internal/service"
)

// Server wires handlers and middleware using Chi.
type Server struct {
	svc *service.Service
	log *slog.Logger
	rt  *chi.Mux
}

// New constructs the HTTP server with routes and middleware.
func New(svc *service.Service, logger *slog.Logger) *Server {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(requestLogger(logger))
	r.Use(recoverer(logger))
	r.Use(metricsMiddleware)

	s := &Server{svc: svc, log: logger, rt: r}
	s.routes()
	return s
}

// Handler exposes the configured http.Handler.
func (s *Server) Handler() http.Handler { return s.rt }

// routes declares the public API. The passphrase travels in the
// X-Wallet-Passphrase header on every call that opens the encrypted metadata.
func (s *Server) routes() {
	// Wallet lifecycle (v1)
	s.rt.Head("/v1/wallets/{identity}", s.headWallet)
	s.rt.Post("/v1/wallets", s.postWallet)
	s.rt.Get("/v1/wallets/{identity}", s.getMetadata)
	s.rt.Put("/v1/wallets/{identity}", s.putMetadata)
	s.rt.Delete("/v1/wallets/{identity}", s.deleteWallet)
	// Ledger (v1)
	s.rt.Get("/v1/wallets/{identity}/items/{itemID}/balance", s.getBalance)
	s.rt.Post("/v1/wallets/{identity}/items/{itemID}/operations/query", s.queryOperations)
	s.rt.Put("/v1/wallets/{identity}/operations", s.putOperations)
	s.rt.Post("/v1/wallets/{identity}/operations/delete", s.deleteOperations)
	s.rt.Post("/v1/wallets/{identity}/items/{itemID}/import", s.previewImport)
	// Health and metrics (unversioned)
	s.rt.Get("/healthz", s.healthz)
	s.rt.Get("/readyz", s.readyz)
	s.rt.Method(http.MethodGet, "/metrics", metricsHandler())
}
