package foodfacts

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestServer(t *testing.T, status int, body string) (*Client, *string) {
	t.Helper()
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return NewClient(srv.URL + "/"), &gotPath
}

func TestLookup_Found(t *testing.T) {
	c, path := newTestServer(t, http.StatusOK, `{
		"code": "3017620422003",
		"status": 1,
		"product": {
			"product_name": "Nutella",
			"nutriments": {
				"energy-kcal_100g": 539,
				"proteins_100g": 6.3,
				"carbohydrates_100g": 57.5,
				"fat_100g": 30.9,
				"sugars_100g": 56.3
			}
		}
	}`)

	est, err := c.Lookup(context.Background(), "3017620422003")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if *path != "/api/v2/product/3017620422003.json" {
		t.Errorf("path = %q", *path)
	}
	if est.MealName != "Nutella" || est.Calories != 539 || est.Protein != 6.3 ||
		est.Carbohydrates != 57.5 || est.Fat != 30.9 || est.Sugar != 56.3 {
		t.Errorf("est = %+v", est)
	}
}

func TestLookup_MissingFieldsDefault(t *testing.T) {
	c, _ := newTestServer(t, http.StatusOK,
		`{"status":1,"product":{"nutriments":{"energy-kcal_100g":42}}}`)

	est, err := c.Lookup(context.Background(), "12345678")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if est.MealName != "Unnamed Product" {
		t.Errorf("MealName = %q, want Unnamed Product", est.MealName)
	}
	if est.Calories != 42 || est.Protein != 0 || est.Sugar != 0 {
		t.Errorf("est = %+v", est)
	}
}

func TestLookup_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		barcode string
		want    error
	}{
		{"status zero", http.StatusOK, `{"status":0,"status_verbose":"product not found"}`, "12345678", ErrNotFound},
		{"no product", http.StatusOK, `{"status":1}`, "12345678", ErrNotFound},
		{"http 404", http.StatusNotFound, `{}`, "12345678", ErrNotFound},
		{"incomplete", http.StatusOK, `{"status":1,"product":{"product_name":"Water","nutriments":{"sugars_100g":0}}}`, "12345678", ErrIncomplete},
		{"rate limited", http.StatusTooManyRequests, ``, "12345678", ErrRateLimited},
		{"letters", http.StatusOK, `{}`, "abc12345", ErrInvalidBarcode},
		{"too short", http.StatusOK, `{}`, "123", ErrInvalidBarcode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestServer(t, tt.status, tt.body)
			_, err := c.Lookup(context.Background(), tt.barcode)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestLookup_ConnectionFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	c := NewClient(srv.URL)
	srv.Close()

	_, err := c.Lookup(context.Background(), "12345678")
	if err == nil {
		t.Fatal("expected error")
	}
	msg := UserMessage("12345678", err)
	if !strings.HasPrefix(msg, "Failed to connect to the food database") {
		t.Errorf("UserMessage = %q", msg)
	}
}

func TestUserMessage_NotFound(t *testing.T) {
	got := UserMessage("999", ErrNotFound)
	if got != "Product with barcode 999 not found." {
		t.Errorf("UserMessage = %q", got)
	}
}

func TestNewClient_DefaultBaseURL(t *testing.T) {
	if c := NewClient(""); c.baseURL != DefaultBaseURL {
		t.Errorf("baseURL = %q, want %q", c.baseURL, DefaultBaseURL)
	}
}
