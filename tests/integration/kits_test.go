//go:build integration

package integration

import (
	"net/http"
	"testing"
)

func TestListKits(t *testing.T) {
	resp := doGet(t, "/api/kits")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	kits := decodeJSON[[]kitResponse](t, resp)
	if len(kits) != 6 {
		t.Fatalf("expected 6 kits, got %d", len(kits))
	}

	for _, k := range kits {
		if k.ID == "" || k.Name == "" {
			t.Errorf("kit missing id or name: %+v", k)
		}
		if k.BasePrice <= 0 {
			t.Errorf("kit %s has non-positive base price %v", k.ID, k.BasePrice)
		}
	}
}

func TestGetKit(t *testing.T) {
	resp := doGet(t, "/api/kits/kit-biryani")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	k := decodeJSON[kitResponse](t, resp)
	if k.ID != "kit-biryani" {
		t.Errorf("id: got %q, want %q", k.ID, "kit-biryani")
	}
	if k.BasePrice != 850 {
		t.Errorf("base price: got %v, want 850", k.BasePrice)
	}
	if len(k.Items) != 4 {
		t.Fatalf("expected 4 line items, got %d", len(k.Items))
	}

	var requiredSeen bool
	for _, it := range k.Items {
		if it.Required {
			requiredSeen = true
			if it.Quantity < 1 {
				t.Errorf("required item %s has quantity %d", it.ID, it.Quantity)
			}
		}
	}
	if !requiredSeen {
		t.Error("expected at least one required line item")
	}
}

func TestGetKit_NotFound(t *testing.T) {
	resp := doGet(t, "/api/kits/no-such-kit")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}

	body := decodeJSON[errorResponse](t, resp)
	if body.Error == "" {
		t.Error("expected error message in body")
	}
}
