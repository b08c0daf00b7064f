package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mealkart/mealkart/internal/checkout"
	"github.com/mealkart/mealkart/internal/domain/order"
	"github.com/mealkart/mealkart/internal/domain/promo"
)

type checkoutRequest struct {
	Items           []checkoutItem  `json:"items"`
	Total           decimal.Decimal `json:"total"`
	DeliveryAddress string          `json:"deliveryAddress,omitempty"`
	PromoCode       string          `json:"promoCode,omitempty"`
}

type checkoutItem struct {
	KitID    string          `json:"kitId,omitempty"`
	Name     string          `json:"name"`
	Category string          `json:"category,omitempty"`
	Type     string          `json:"type,omitempty"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

type checkoutResponse struct {
	URL string `json:"url"`
}

// Checkout places an order and creates a hosted checkout session, responding
// with the gateway redirect URL. The client-supplied total is advisory; the
// authoritative total is recomputed server-side.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	items := make([]order.CartItem, len(req.Items))
	for i, it := range req.Items {
		items[i] = order.CartItem{
			KitID:     it.KitID,
			Name:      it.Name,
			Category:  it.Category,
			Type:      it.Type,
			UnitPrice: it.Price,
			Quantity:  it.Quantity,
		}
	}

	result, err := h.orders.PlaceOrder(r.Context(), order.PlaceOrderRequest{
		Items:           items,
		PromoCode:       req.PromoCode,
		DeliveryAddress: req.DeliveryAddress,
		Origin:          r.Header.Get("Origin"),
	})
	if err != nil {
		h.writeCheckoutError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, checkoutResponse{URL: result.RedirectURL})
}

// writeCheckoutError maps domain and gateway errors to the uniform error
// response shape.
func (h *Handler) writeCheckoutError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, order.ErrEmptyItems) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var iqErr *order.InvalidQuantityError
	if errors.As(err, &iqErr) {
		writeError(w, http.StatusBadRequest, iqErr.Error())
		return
	}

	var ipErr *order.InvalidPriceError
	if errors.As(err, &ipErr) {
		writeError(w, http.StatusBadRequest, ipErr.Error())
		return
	}

	var knfErr *order.KitNotFoundError
	if errors.As(err, &knfErr) {
		writeError(w, http.StatusBadRequest, knfErr.Error())
		return
	}

	switch {
	case errors.Is(err, promo.ErrInvalidCode),
		errors.Is(err, promo.ErrExpired),
		errors.Is(err, promo.ErrUsageLimitReached):
		writeError(w, http.StatusBadRequest, "invalid promo code")
		return
	}

	// Gateway failures keep the upstream message for diagnostics; the
	// secret key never appears in gateway messages.
	var gwErr *checkout.GatewayError
	if errors.As(err, &gwErr) {
		zctx.From(r.Context()).Error("checkout session failed",
			zap.Int("gateway_status", gwErr.StatusCode),
			zap.String("gateway_message", gwErr.Message),
		)
		writeError(w, http.StatusInternalServerError, gwErr.Message)
		return
	}

	writeInternalError(w, r, err)
}
