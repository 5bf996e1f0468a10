// Package foodfacts looks up packaged food nutrition by barcode in the
// Open Food Facts database.
package foodfacts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/theirongolddev/mealradar/internal/model"
)

const (
	// DefaultBaseURL is the public Open Food Facts API host.
	DefaultBaseURL = "https://world.openfoodfacts.org"
	requestTimeout = 10 * time.Second
	maxBodySize    = 2 << 20 // 2 MB
	unnamedProduct = "Unnamed Product"
)

var (
	// ErrNotFound indicates the barcode is not in the database.
	ErrNotFound = errors.New("foodfacts: product not found")
	// ErrIncomplete indicates the product lacks usable nutrition data.
	ErrIncomplete = errors.New("foodfacts: nutritional information is incomplete")
	// ErrInvalidBarcode indicates the barcode is not 8-14 digits.
	ErrInvalidBarcode = errors.New("foodfacts: invalid barcode")
	// ErrRateLimited indicates the API rate limit was hit.
	ErrRateLimited = errors.New("foodfacts: rate limited")
)

// Client fetches product data from the Open Food Facts API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the given base URL, or the public API if
// baseURL is empty.
func NewClient(baseURL string) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{},
	}
}

// ValidateBarcode checks that code is an 8-14 digit EAN/UPC barcode.
func ValidateBarcode(code string) error {
	if len(code) < 8 || len(code) > 14 {
		return fmt.Errorf("%w: %q", ErrInvalidBarcode, code)
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return fmt.Errorf("%w: %q", ErrInvalidBarcode, code)
		}
	}
	return nil
}

// Lookup fetches a product and converts its per-100g nutriments into an
// estimate for a 100 g serving.
func (c *Client) Lookup(ctx context.Context, barcode string) (model.Estimate, error) {
	barcode = strings.TrimSpace(barcode)
	if err := ValidateBarcode(barcode); err != nil {
		return model.Estimate{}, err
	}

	body, err := c.get(ctx, "/api/v2/product/"+barcode+".json")
	if err != nil {
		return model.Estimate{}, err
	}

	var raw ProductResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return model.Estimate{}, fmt.Errorf("foodfacts: parsing product: %w", err)
	}

	return toEstimate(barcode, raw)
}

func toEstimate(barcode string, raw ProductResponse) (model.Estimate, error) {
	if raw.Status != 1 || raw.Product == nil {
		return model.Estimate{}, fmt.Errorf("%w: barcode %s", ErrNotFound, barcode)
	}

	p := raw.Product
	name := strings.TrimSpace(p.ProductName)
	if name == "" {
		name = unnamedProduct
	}

	n := p.Nutriments
	est := model.Estimate{
		MealName:      name,
		Calories:      n.EnergyKcal100g,
		Protein:       n.Proteins100g,
		Carbohydrates: n.Carbohydrates100g,
		Fat:           n.Fat100g,
		Sugar:         n.Sugars100g,
	}
	if est.Calories == 0 && est.Protein == 0 {
		return model.Estimate{}, fmt.Errorf("%w: %q", ErrIncomplete, name)
	}
	return est, nil
}

// get performs a GET request and returns the response body.
func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("foodfacts: creating request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "mealradar/1.0 (github.com/theirongolddev/mealradar)")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("foodfacts: failed to connect to the food database: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusNotFound:
		return nil, ErrNotFound
	case http.StatusTooManyRequests:
		return nil, ErrRateLimited
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("foodfacts: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("foodfacts: reading response: %w", err)
	}
	return body, nil
}

// UserMessage turns a lookup error into the text shown to the user.
func UserMessage(barcode string, err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return fmt.Sprintf("Product with barcode %s not found.", barcode)
	case errors.Is(err, ErrIncomplete):
		return "Nutritional information for this product is incomplete."
	case errors.Is(err, ErrInvalidBarcode):
		return fmt.Sprintf("%q is not a valid barcode.", barcode)
	case errors.Is(err, ErrRateLimited):
		return "The food database is busy. Please try again in a moment."
	}
	return "Failed to connect to the food database. Please check your internet connection."
}
