// Package api implements the marketplace's HTTP handlers: the kit catalog,
// checkout submission, and supplier analytics.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/mealkart/mealkart/internal/domain/analytics"
	"github.com/mealkart/mealkart/internal/domain/kit"
	"github.com/mealkart/mealkart/internal/domain/order"
)

// Config holds non-dependency configuration for the Handler.
type Config struct {
	// ImageBaseURL is prepended to relative image paths in kit responses.
	// When empty, image paths are returned as stored in the database.
	ImageBaseURL string
	// AnalyticsTopN bounds the top-kits list in analytics summaries.
	AnalyticsTopN int
}

// Handler serves the marketplace API, delegating business logic to the
// injected domain services.
type Handler struct {
	kits      kit.Repository
	orders    *order.Service
	analytics analytics.Repository
	cfg       Config
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(
	cfg Config,
	kits kit.Repository,
	orders *order.Service,
	analyticsRepo analytics.Repository,
) *Handler {
	return &Handler{
		kits:      kits,
		orders:    orders,
		analytics: analyticsRepo,
		cfg:       cfg,
	}
}

// Register mounts all API routes on the mux. The analytics route is wrapped
// with the given security middleware.
func (h *Handler) Register(mux *http.ServeMux, secure func(http.Handler) http.Handler) {
	mux.HandleFunc("GET /api/kits", h.ListKits)
	mux.HandleFunc("GET /api/kits/{id}", h.GetKit)
	mux.HandleFunc("POST /api/checkout", h.Checkout)
	mux.Handle("GET /api/analytics/summary", secure(http.HandlerFunc(h.AnalyticsSummary)))
}

// errorResponse is the uniform error body for every failure.
type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeInternalError logs the underlying error and responds with a generic
// message so internals never leak to clients.
func writeInternalError(w http.ResponseWriter, r *http.Request, err error) {
	zctx.From(r.Context()).Error("request failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal server error")
}
