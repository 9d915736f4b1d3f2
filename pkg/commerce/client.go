package commerce

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Platforms with a live cart endpoint. Anything else never takes the
// live-cart path and always answers from indexed data.
const (
	PlatformWordPress = "wordpress"
	PlatformShopify   = "shopify"
)

// SupportsLiveCart reports whether the storefront platform can serve current
// cart contents on demand.
func SupportsLiveCart(platform string) bool {
	switch platform {
	case PlatformWordPress, PlatformShopify:
		return true
	}
	return false
}

// CartClient fetches the current cart for a customer. An empty string with a
// nil error means the customer has no cart.
type CartClient interface {
	GetCart(ctx context.Context, customerID int64) (string, error)
}

// HTTPCartClient talks to the storefront's cart API over HTTP.
type HTTPCartClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewHTTPCartClient(baseURL, apiKey string) *HTTPCartClient {
	return &HTTPCartClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// GetCart returns the raw cart JSON for the customer. 404 means no cart, not
// an error.
func (c *HTTPCartClient) GetCart(ctx context.Context, customerID int64) (string, error) {
	url := fmt.Sprintf("%s/carts/%d", c.baseURL, customerID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create cart request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("cart request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", nil
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("cart API returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read cart response: %w", err)
	}
	return string(body), nil
}
