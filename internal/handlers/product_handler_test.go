package handlers_test

import (
	"net/http"
	"testing"
)

func TestUpdateProductPartialBodyKeepsFields(t *testing.T) {
	app, db := setupTestApp(t)
	_, adminToken := seedAdminToken(t, db)

	resp, body := doJSON(t, app, "POST", "/api/products", adminToken, map[string]any{
		"name":             "Kettlebell",
		"sku":              "KB-001",
		"stock":            7,
		"discount_percent": 12.5,
		"mrp":              100,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create product: expected 201, got %d", resp.StatusCode)
	}
	productID := body["data"].(map[string]any)["id"].(string)

	resp, _ = doJSON(t, app, "PUT", "/api/products/"+productID, adminToken, map[string]any{
		"name": "Kettlebell Pro",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("partial update: expected 200, got %d", resp.StatusCode)
	}

	resp, body = doJSON(t, app, "GET", "/api/products/"+productID, adminToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get product: expected 200, got %d", resp.StatusCode)
	}
	data := body["data"].(map[string]any)
	if data["name"].(string) != "Kettlebell Pro" {
		t.Fatalf("expected renamed product, got %v", data["name"])
	}
	if stock := data["stock"].(float64); stock != 7 {
		t.Fatalf("partial update changed stock: expected 7, got %v", stock)
	}
	if discount := data["discount_percent"].(float64); discount != 12.5 {
		t.Fatalf("partial update changed discount: expected 12.5, got %v", discount)
	}
	variant := data["variants"].([]any)[0].(map[string]any)
	if price := variant["credit_price"].(float64); price != 200 {
		t.Fatalf("partial update changed price: expected 200, got %v", price)
	}
}

func TestUpdateProductStockOnly(t *testing.T) {
	app, db := setupTestApp(t)
	_, adminToken := seedAdminToken(t, db)

	resp, body := doJSON(t, app, "POST", "/api/products", adminToken, map[string]any{
		"name":  "Resistance Band",
		"sku":   "RB-001",
		"stock": 3,
		"mrp":   25,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create product: expected 201, got %d", resp.StatusCode)
	}
	productID := body["data"].(map[string]any)["id"].(string)

	resp, _ = doJSON(t, app, "PUT", "/api/products/"+productID, adminToken, map[string]any{
		"stock": 0,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("stock update: expected 200, got %d", resp.StatusCode)
	}

	resp, body = doJSON(t, app, "GET", "/api/products/"+productID, adminToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get product: expected 200, got %d", resp.StatusCode)
	}
	data := body["data"].(map[string]any)
	if stock := data["stock"].(float64); stock != 0 {
		t.Fatalf("expected stock 0, got %v", stock)
	}
	if name := data["name"].(string); name != "Resistance Band" {
		t.Fatalf("stock update changed name: %v", name)
	}

	resp, _ = doJSON(t, app, "PUT", "/api/products/"+productID, adminToken, map[string]any{
		"stock": -1,
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("negative stock: expected 400, got %d", resp.StatusCode)
	}
}
