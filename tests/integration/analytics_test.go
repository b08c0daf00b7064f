//go:build integration

package integration

import (
	"net/http"
	"testing"
)

const testAPIKey = "integration-test-key"

func TestAnalytics_NoAuth(t *testing.T) {
	resp := doGet(t, "/api/analytics/summary")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestAnalytics_InvalidKey(t *testing.T) {
	resp := doGetWithAuth(t, "/api/analytics/summary", "wrong-key")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestAnalytics_Summary(t *testing.T) {
	// Place an order first so the window is not empty.
	checkout := checkoutRequest{
		Items: []checkoutItem{
			{KitID: "kit-masala-dosa", Name: "Masala Dosa Kit", Price: 320, Quantity: 1},
		},
		Total: 320,
	}
	resp := doPost(t, "/api/checkout", checkout)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("checkout setup failed: %d", resp.StatusCode)
	}

	resp = doGetWithAuth(t, "/api/analytics/summary?days=7", testAPIKey)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	summary := decodeJSON[analyticsSummaryResponse](t, resp)
	if summary.OrderCount < 1 {
		t.Errorf("order count: got %d, want >= 1", summary.OrderCount)
	}
	if summary.GrossRevenue <= 0 {
		t.Errorf("gross revenue: got %v, want > 0", summary.GrossRevenue)
	}
}

func TestAnalytics_BadDays(t *testing.T) {
	resp := doGetWithAuth(t, "/api/analytics/summary?days=never", testAPIKey)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}
