package api

import (
	"net/http"
	"strings"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/mealkart/mealkart/internal/domain/kit"
)

type kitResponse struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	BasePrice   decimal.Decimal    `json:"basePrice"`
	Category    string             `json:"category"`
	SupplierID  string             `json:"supplierId,omitempty"`
	Serves      int                `json:"serves"`
	Image       kitImageResponse   `json:"image"`
	Items       []lineItemResponse `json:"items"`
}

type kitImageResponse struct {
	Thumbnail string `json:"thumbnail"`
	Mobile    string `json:"mobile"`
	Tablet    string `json:"tablet"`
	Desktop   string `json:"desktop"`
}

type lineItemResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
	Required  bool            `json:"required"`
	Unit      string          `json:"unit,omitempty"`
}

// ListKits returns the full kit catalog.
func (h *Handler) ListKits(w http.ResponseWriter, r *http.Request) {
	kits, err := h.kits.List(r.Context())
	if err != nil {
		writeInternalError(w, r, errors.Wrap(err, "list kits"))
		return
	}

	resp := make([]kitResponse, len(kits))
	for i, k := range kits {
		resp[i] = h.toKitResponse(k)
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetKit returns a single kit with its customization line items.
func (h *Handler) GetKit(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	k, err := h.kits.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, kit.ErrNotFound) {
			writeError(w, http.StatusNotFound, "kit not found")
			return
		}
		writeInternalError(w, r, errors.Wrapf(err, "get kit %s", id))
		return
	}

	writeJSON(w, http.StatusOK, h.toKitResponse(*k))
}

func (h *Handler) toKitResponse(k kit.Kit) kitResponse {
	items := make([]lineItemResponse, len(k.Items))
	for i, it := range k.Items {
		items[i] = lineItemResponse{
			ID:        it.ID,
			Name:      it.Name,
			UnitPrice: it.UnitPrice,
			Quantity:  it.Quantity,
			Required:  it.Required,
			Unit:      it.Unit,
		}
	}

	return kitResponse{
		ID:          k.ID,
		Name:        k.Name,
		Description: k.Description,
		BasePrice:   k.BasePrice,
		Category:    k.Category,
		SupplierID:  k.SupplierID,
		Serves:      k.Serves,
		Image: kitImageResponse{
			Thumbnail: h.imageURL(k.Image.Thumbnail),
			Mobile:    h.imageURL(k.Image.Mobile),
			Tablet:    h.imageURL(k.Image.Tablet),
			Desktop:   h.imageURL(k.Image.Desktop),
		},
		Items: items,
	}
}

// imageURL prepends the configured base URL to relative image paths.
func (h *Handler) imageURL(path string) string {
	if path == "" || h.cfg.ImageBaseURL == "" {
		return path
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return strings.TrimSuffix(h.cfg.ImageBaseURL, "/") + "/" + strings.TrimPrefix(path, "/")
}
