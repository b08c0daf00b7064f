package api

import (
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

type analyticsSummaryResponse struct {
	Since         time.Time          `json:"since"`
	Until         time.Time          `json:"until"`
	OrderCount    int64              `json:"orderCount"`
	GrossRevenue  decimal.Decimal    `json:"grossRevenue"`
	AvgOrderValue decimal.Decimal    `json:"avgOrderValue"`
	TopKits       []kitSalesResponse `json:"topKits"`
}

type kitSalesResponse struct {
	KitID    string `json:"kitId"`
	Name     string `json:"name"`
	Quantity int64  `json:"quantity"`
}

// AnalyticsSummary returns supplier order metrics for a window given by the
// optional "days" query parameter (default 30, max 365).
func (h *Handler) AnalyticsSummary(w http.ResponseWriter, r *http.Request) {
	days := 30
	if v := r.URL.Query().Get("days"); v != "" {
		parsed, err := parseDays(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		days = parsed
	}

	until := time.Now()
	since := until.AddDate(0, 0, -days)

	summary, err := h.analytics.Summary(r.Context(), since, until, h.cfg.AnalyticsTopN)
	if err != nil {
		writeInternalError(w, r, errors.Wrap(err, "analytics summary"))
		return
	}

	topKits := make([]kitSalesResponse, len(summary.TopKits))
	for i, ks := range summary.TopKits {
		topKits[i] = kitSalesResponse{KitID: ks.KitID, Name: ks.Name, Quantity: ks.Quantity}
	}

	writeJSON(w, http.StatusOK, analyticsSummaryResponse{
		Since:         summary.Since,
		Until:         summary.Until,
		OrderCount:    summary.OrderCount,
		GrossRevenue:  summary.GrossRevenue,
		AvgOrderValue: summary.AvgOrderValue,
		TopKits:       topKits,
	})
}

func parseDays(v string) (int, error) {
	days := 0
	for _, c := range v {
		if c < '0' || c > '9' {
			return 0, errors.New("days must be a positive integer")
		}
		days = days*10 + int(c-'0')
		if days > 365 {
			return 0, errors.New("days must not exceed 365")
		}
	}
	if days == 0 {
		return 0, errors.New("days must be a positive integer")
	}
	return days, nil
}
