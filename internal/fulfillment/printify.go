// Package fulfillment submits finished calendars to the print-on-demand
// provider: image uploads, product assembly, order creation and production
// hand-off.
package fulfillment

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"
)

// ProductConfig pins a calendar product to its catalog identifiers.
type ProductConfig struct {
	BlueprintID     int
	PrintProviderID int
	VariantID       int
	Name            string
}

// calendarProducts maps the product_type carried in checkout metadata to
// catalog configuration. Only calendar_2026 has its provider and variant
// resolved; the others fail fast until their IDs are fetched from the
// catalog API.
var calendarProducts = map[string]ProductConfig{
	"calendar_2026": {
		BlueprintID:     1253,
		PrintProviderID: 234,
		VariantID:       94860,
		Name:            "Calendar (2026)",
	},
	"desktop": {
		BlueprintID: 1170,
		Name:        "Desktop Calendar",
	},
	"standard_wall": {
		BlueprintID: 965,
		Name:        "Standard Wall Calendar (2026)",
	},
}

// priceCents is what the variant is listed at; the provider adds its margin.
const priceCents = 2499

var monthNames = [...]string{
	"january", "february", "march", "april", "may", "june",
	"july", "august", "september", "october", "november", "december",
}

type PrintifyOptions struct {
	BaseURL    string
	APIToken   string
	ShopID     string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// PrintifyClient is a thin client over the provider's REST API. The shop ID
// is discovered on first use when not configured.
type PrintifyClient struct {
	httpClient *http.Client
	baseURL    string
	token      string

	mu     sync.Mutex
	shopID string
}

func NewPrintifyClient(opts PrintifyOptions) *PrintifyClient {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = "https://api.printify.com/v1"
	}
	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &PrintifyClient{
		httpClient: client,
		baseURL:    base,
		token:      strings.TrimSpace(opts.APIToken),
		shopID:     strings.TrimSpace(opts.ShopID),
	}
}

// ProductFor resolves a product type to its catalog configuration.
func ProductFor(productType string) (ProductConfig, error) {
	cfg, ok := calendarProducts[productType]
	if !ok {
		return ProductConfig{}, fmt.Errorf("printify: unknown product type %q", productType)
	}
	if cfg.PrintProviderID == 0 || cfg.VariantID == 0 {
		return ProductConfig{}, fmt.Errorf("printify: product type %q not fully configured", productType)
	}
	return cfg, nil
}

// UploadImage pushes raw image bytes into the provider's media library and
// returns the upload ID.
func (c *PrintifyClient) UploadImage(ctx context.Context, data []byte, filename string) (string, error) {
	payload := map[string]string{
		"file_name": filename,
		"contents":  base64.StdEncoding.EncodeToString(data),
	}
	var out struct {
		ID string `json:"id"`
	}
	if err := c.post(ctx, "/uploads/images.json", payload, &out); err != nil {
		return "", err
	}
	if out.ID == "" {
		return "", errors.New("printify: upload returned no id")
	}
	return out.ID, nil
}

type placementImage struct {
	ID    string  `json:"id"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Scale float64 `json:"scale"`
	Angle int     `json:"angle"`
}

type placeholder struct {
	Position string           `json:"position"`
	Images   []placementImage `json:"images"`
}

func centered(uploadID string) []placementImage {
	return []placementImage{{ID: uploadID, X: 0.5, Y: 0.5, Scale: 1.0}}
}

// CreateProduct assembles a calendar product from twelve uploaded images,
// indexed by month number 1-12. January doubles as the front cover.
func (c *PrintifyClient) CreateProduct(ctx context.Context, cfg ProductConfig, uploadIDs map[int]string, title string) (string, error) {
	placeholders := []placeholder{{Position: "front_cover", Images: centered(uploadIDs[1])}}
	for i, name := range monthNames {
		id, ok := uploadIDs[i+1]
		if !ok {
			return "", fmt.Errorf("printify: missing upload for %s", name)
		}
		placeholders = append(placeholders, placeholder{Position: name, Images: centered(id)})
	}

	payload := map[string]any{
		"title":             title,
		"description":       "Personalized calendar with AI-generated monthly portraits",
		"blueprint_id":      cfg.BlueprintID,
		"print_provider_id": cfg.PrintProviderID,
		"variants": []map[string]any{
			{"id": cfg.VariantID, "price": priceCents, "is_enabled": true},
		},
		"print_areas": []map[string]any{
			{"variant_ids": []int{cfg.VariantID}, "placeholders": placeholders},
		},
	}

	shopID, err := c.ShopID(ctx)
	if err != nil {
		return "", err
	}
	var out struct {
		ID string `json:"id"`
	}
	if err := c.post(ctx, "/shops/"+shopID+"/products.json", payload, &out); err != nil {
		return "", err
	}
	if out.ID == "" {
		return "", errors.New("printify: product creation returned no id")
	}
	return out.ID, nil
}

// PublishProduct makes the product orderable.
func (c *PrintifyClient) PublishProduct(ctx context.Context, productID string) error {
	payload := map[string]bool{
		"title":       true,
		"description": true,
		"images":      true,
		"variants":    true,
		"tags":        true,
	}
	shopID, err := c.ShopID(ctx)
	if err != nil {
		return err
	}
	return c.post(ctx, "/shops/"+shopID+"/products/"+productID+"/publish.json", payload, nil)
}

// OrderAddress is the provider-side shipping destination.
type OrderAddress struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Country   string `json:"country"`
	Region    string `json:"region"`
	Address1  string `json:"address1"`
	Address2  string `json:"address2"`
	City      string `json:"city"`
	Zip       string `json:"zip"`
}

// CreateOrder places an order for one product and returns the provider's
// order ID. Shipping method 1 is the provider's standard tier.
func (c *PrintifyClient) CreateOrder(ctx context.Context, productID string, variantID int, quantity int, address OrderAddress, externalID string) (string, error) {
	payload := map[string]any{
		"external_id": externalID,
		"label":       address.Email,
		"line_items": []map[string]any{
			{"product_id": productID, "variant_id": variantID, "quantity": quantity},
		},
		"shipping_method":            1,
		"send_shipping_notification": true,
		"address_to":                 address,
	}
	shopID, err := c.ShopID(ctx)
	if err != nil {
		return "", err
	}
	var out struct {
		ID string `json:"id"`
	}
	if err := c.post(ctx, "/shops/"+shopID+"/orders.json", payload, &out); err != nil {
		return "", err
	}
	if out.ID == "" {
		return "", errors.New("printify: order creation returned no id")
	}
	return out.ID, nil
}

// SubmitOrder sends an order to production.
func (c *PrintifyClient) SubmitOrder(ctx context.Context, orderID string) error {
	shopID, err := c.ShopID(ctx)
	if err != nil {
		return err
	}
	return c.post(ctx, "/shops/"+shopID+"/orders/"+orderID+"/send_to_production.json", struct{}{}, nil)
}

// ShopID returns the configured shop, or discovers and caches the first shop
// on the account.
func (c *PrintifyClient) ShopID(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.shopID != "" {
		return c.shopID, nil
	}

	var shops []struct {
		ID json.Number `json:"id"`
	}
	if err := c.get(ctx, "/shops.json", &shops); err != nil {
		return "", err
	}
	if len(shops) == 0 {
		return "", errors.New("printify: account has no shops")
	}
	c.shopID = shops[0].ID.String()
	return c.shopID, nil
}

func (c *PrintifyClient) post(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *PrintifyClient) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *PrintifyClient) do(req *http.Request, out any) error {
	if c.token == "" {
		return errors.New("printify: API token is missing")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var apiErr struct {
			Message string `json:"message"`
			Errors  any    `json:"errors"`
		}
		if json.NewDecoder(resp.Body).Decode(&apiErr) == nil && apiErr.Message != "" {
			return fmt.Errorf("printify: %s (http %d)", apiErr.Message, resp.StatusCode)
		}
		return fmt.Errorf("printify: http %d for %s", resp.StatusCode, req.URL.Path)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
