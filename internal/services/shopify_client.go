package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/Parham-dev/ai-agent-cs-sub004/internal/config"
	"github.com/Parham-dev/ai-agent-cs-sub004/internal/models"
	"github.com/Parham-dev/ai-agent-cs-sub004/pkg/utils"
)

// ShopifyClient talks to the Shopify Admin API with per-shop access
// tokens and runs the app's OAuth install flow.
type ShopifyClient struct {
	cfg        config.ShopifyConfig
	httpClient *http.Client
}

type ShopifyProduct struct {
	ID     int64  `json:"id"`
	Title  string `json:"title"`
	Status string `json:"status"`
	Vendor string `json:"vendor"`
}

type ShopifyOrder struct {
	ID                int64  `json:"id"`
	Name              string `json:"name"`
	Email             string `json:"email"`
	FinancialStatus   string `json:"financial_status"`
	FulfillmentStatus string `json:"fulfillment_status"`
	TotalPrice        string `json:"total_price"`
}

func NewShopifyClient(cfg config.ShopifyConfig) *ShopifyClient {
	return &ShopifyClient{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
	}
}

// OAuthConfig builds the oauth2 config for a shop's install URL and
// token exchange.
func (c *ShopifyClient) OAuthConfig(shopDomain string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     c.cfg.ClientID,
		ClientSecret: c.cfg.ClientSecret,
		Scopes:       c.cfg.Scopes,
		RedirectURL:  c.cfg.RedirectURL,
		Endpoint: oauth2.Endpoint{
			AuthURL:  fmt.Sprintf("https://%s/admin/oauth/authorize", shopDomain),
			TokenURL: fmt.Sprintf("https://%s/admin/oauth/access_token", shopDomain),
		},
	}
}

// InstallURL returns the merchant-facing authorization URL.
func (c *ShopifyClient) InstallURL(shopDomain, state string) string {
	return c.OAuthConfig(shopDomain).AuthCodeURL(state)
}

// ExchangeCode swaps the callback code for a permanent access token.
func (c *ShopifyClient) ExchangeCode(ctx context.Context, shopDomain, code string) (*models.ShopifyCredentials, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	token, err := c.OAuthConfig(shopDomain).Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	return &models.ShopifyCredentials{
		ShopDomain:  shopDomain,
		AccessToken: token.AccessToken,
	}, nil
}

// Ping verifies the stored credentials against the shop endpoint.
func (c *ShopifyClient) Ping(ctx context.Context, creds *models.ShopifyCredentials) error {
	var out struct {
		Shop struct {
			Name string `json:"name"`
		} `json:"shop"`
	}
	return c.get(ctx, creds, "shop.json", nil, &out)
}

// SearchProducts queries products by title.
func (c *ShopifyClient) SearchProducts(ctx context.Context, creds *models.ShopifyCredentials, query string, limit int) ([]ShopifyProduct, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}

	params := url.Values{}
	params.Set("limit", fmt.Sprintf("%d", limit))
	if query != "" {
		params.Set("title", query)
	}

	var out struct {
		Products []ShopifyProduct `json:"products"`
	}
	if err := c.get(ctx, creds, "products.json", params, &out); err != nil {
		return nil, err
	}
	return out.Products, nil
}

// GetProduct fetches a single product by ID.
func (c *ShopifyClient) GetProduct(ctx context.Context, creds *models.ShopifyCredentials, productID int64) (*ShopifyProduct, error) {
	var out struct {
		Product ShopifyProduct `json:"product"`
	}
	path := fmt.Sprintf("products/%d.json", productID)
	if err := c.get(ctx, creds, path, nil, &out); err != nil {
		return nil, err
	}
	return &out.Product, nil
}

// GetOrderStatus resolves an order by its customer-facing name
// ("#1001").
func (c *ShopifyClient) GetOrderStatus(ctx context.Context, creds *models.ShopifyCredentials, orderName string) (*ShopifyOrder, error) {
	params := url.Values{}
	params.Set("name", orderName)
	params.Set("status", "any")

	var out struct {
		Orders []ShopifyOrder `json:"orders"`
	}
	if err := c.get(ctx, creds, "orders.json", params, &out); err != nil {
		return nil, err
	}
	if len(out.Orders) == 0 {
		return nil, NewNotFoundError("order")
	}
	return &out.Orders[0], nil
}

func (c *ShopifyClient) get(ctx context.Context, creds *models.ShopifyCredentials, path string, params url.Values, target interface{}) error {
	endpoint := fmt.Sprintf("https://%s/admin/api/%s/%s",
		strings.TrimSuffix(creds.ShopDomain, "/"),
		c.cfg.APIVersion,
		path)
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Shopify-Access-Token", creds.AccessToken)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.executeWithRetry(ctx, req)
	if err != nil {
		utils.LogHTTPCall(http.MethodGet, endpoint, 0, time.Since(start), err)
		return err
	}
	defer resp.Body.Close()
	utils.LogHTTPCall(http.MethodGet, endpoint, resp.StatusCode, time.Since(start), nil)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return NewNotFoundError("shopify resource")
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return NewValidationError("shopify credentials rejected")
	case resp.StatusCode >= 400:
		return fmt.Errorf("shopify API error: HTTP %d: %s", resp.StatusCode, string(body))
	}

	if target != nil && len(body) > 0 {
		if err := json.Unmarshal(body, target); err != nil {
			return fmt.Errorf("failed to decode shopify response: %w", err)
		}
	}
	return nil
}

// executeWithRetry retries idempotent requests on transport errors,
// 429 and 5xx, with linear backoff.
func (c *ShopifyClient) executeWithRetry(ctx context.Context, req *http.Request) (*http.Response, error) {
	maxRetries := c.cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 1
	}

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * time.Second):
			}
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			resp.Body.Close()
			lastErr = fmt.Errorf("shopify returned HTTP %d", resp.StatusCode)
			continue
		}

		return resp, nil
	}

	return nil, fmt.Errorf("request failed after %d attempts: %w", maxRetries, lastErr)
}
