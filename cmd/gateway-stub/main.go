// Command gateway-stub is a minimal stand-in for the hosted payment gateway,
// used in local development and the integration test environment. It accepts
// session creation requests and returns a fake redirect URL.
package main

import (
	"encoding/json"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/google/uuid"
)

type sessionRequest struct {
	Currency  string `json:"currency"`
	LineItems []struct {
		Name       string `json:"name"`
		UnitAmount int64  `json:"unit_amount"`
		Quantity   int    `json:"quantity"`
	} `json:"line_items"`
	SuccessURL string `json:"success_url"`
	CancelURL  string `json:"cancel_url"`
}

func main() {
	var (
		addr   string
		apiKey string
	)

	flag.StringVar(&addr, "addr", ":9090", "listen address")
	flag.StringVar(&apiKey, "api-key", "", "expected bearer token (or GATEWAY_STUB_API_KEY env)")
	flag.Parse()

	if apiKey == "" {
		apiKey = os.Getenv("GATEWAY_STUB_API_KEY")
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/checkout/sessions", func(w http.ResponseWriter, r *http.Request) {
		if apiKey != "" {
			token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			if token != apiKey {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid api key"})
				return
			}
		}

		var req sessionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed session request"})
			return
		}
		if len(req.LineItems) == 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "line_items required"})
			return
		}

		id := "cs_" + uuid.NewString()
		slog.Info("session created",
			slog.String("id", id),
			slog.String("currency", req.Currency),
			slog.Int("line_items", len(req.LineItems)),
		)
		writeJSON(w, http.StatusOK, map[string]string{
			"id":  id,
			"url": "https://pay.gateway.test/" + id,
		})
	})

	slog.Info("gateway stub listening", slog.String("addr", addr))
	if err := http.ListenAndServe(addr, mux); err != nil {
		slog.Error("server failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
