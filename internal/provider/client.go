package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"inventory-sync-service/internal/util"

	"go.uber.org/zap"
)

// InventoryRecord is one inventory line as returned by the carrier API.
// SKU is the natural key.
type InventoryRecord struct {
	SKU         string `json:"sku"`
	Name        string `json:"name"`
	Available   int    `json:"available"`
	WarehouseID string `json:"warehouse_id"`
}

// WarehouseRecord is one warehouse as returned by the carrier API.
// The provider-assigned id is the natural key.
type WarehouseRecord struct {
	WarehouseID string `json:"id"`
	Name        string `json:"name"`
	City        string `json:"city"`
	Country     string `json:"country"`
	Phone       string `json:"phone"`
}

// LocationRecord is one inventory location as returned by the carrier API.
// The provider-assigned id is the natural key.
type LocationRecord struct {
	LocationID  string `json:"id"`
	WarehouseID string `json:"warehouse_id"`
	Name        string `json:"name"`
	Kind        string `json:"type"`
}

// Error is a failed provider call. StatusCode is 0 for network-level errors,
// which are treated the same as non-2xx responses.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("provider request failed: %s", e.Message)
	}
	return fmt.Sprintf("provider returned %d: %s", e.StatusCode, e.Message)
}

// statusHint maps known provider statuses to user-facing messages.
func statusHint(status int, body string) string {
	switch status {
	case http.StatusUnauthorized:
		return "invalid API key"
	case http.StatusForbidden:
		return "access forbidden, check the integration permissions"
	case http.StatusTooManyRequests:
		return "rate limited by provider, try again later"
	}
	if body == "" {
		return http.StatusText(status)
	}
	return body
}

// Client fetches paginated collections from the carrier API.
type Client struct {
	baseURL    string
	pageSize   int
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a carrier API client. timeout bounds each page request.
func NewClient(baseURL string, pageSize int, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		pageSize:   pageSize,
		httpClient: &http.Client{Timeout: timeout},
		logger:     util.GetLogger(),
	}
}

// FetchInventory retrieves all inventory levels for the given credential.
func (c *Client) FetchInventory(ctx context.Context, apiKey string) ([]InventoryRecord, error) {
	return fetchAll[InventoryRecord](ctx, c, apiKey, "/inventory", "inventory")
}

// FetchWarehouses retrieves all warehouses for the given credential.
func (c *Client) FetchWarehouses(ctx context.Context, apiKey string) ([]WarehouseRecord, error) {
	return fetchAll[WarehouseRecord](ctx, c, apiKey, "/warehouses", "warehouses")
}

// FetchLocations retrieves all inventory locations for the given credential.
func (c *Client) FetchLocations(ctx context.Context, apiKey string) ([]LocationRecord, error) {
	return fetchAll[LocationRecord](ctx, c, apiKey, "/inventory-locations", "locations")
}

// fetchAll pages through a collection endpoint until the provider returns a
// batch smaller than the page size. This is a heuristic: it assumes the
// provider never returns a full-size final page. The carrier API exposes no
// "has more" flag, so a full final page simply costs one extra empty-page
// request before the loop stops.
//
// On a page failure the records accumulated so far are returned alongside the
// error; callers decide whether partial data is usable.
func fetchAll[T any](ctx context.Context, c *Client, apiKey, path, envelopeKey string) ([]T, error) {
	var all []T

	for page := 1; ; page++ {
		batch, err := fetchPage[T](ctx, c, apiKey, path, envelopeKey, page)
		if err != nil {
			util.ProviderErrorsTotal.WithLabelValues(strconv.Itoa(providerStatus(err))).Inc()
			return all, err
		}

		all = append(all, batch...)
		if len(batch) < c.pageSize {
			break
		}
	}

	c.logger.Debug("Provider fetch complete",
		zap.String("path", path),
		zap.Int("records", len(all)))
	return all, nil
}

func fetchPage[T any](ctx context.Context, c *Client, apiKey, path, envelopeKey string, page int) ([]T, error) {
	start := time.Now()
	defer func() {
		util.ProviderRequestDuration.WithLabelValues(path).Observe(time.Since(start).Seconds())
	}()

	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return nil, &Error{Message: err.Error()}
	}
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	q.Set("page_size", strconv.Itoa(c.pageSize))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, &Error{Message: err.Error()}
	}
	req.Header.Set("X-Api-Key", apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &Error{Message: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, &Error{Message: err.Error()}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{
			StatusCode: resp.StatusCode,
			Message:    statusHint(resp.StatusCode, string(body)),
		}
	}

	// Envelope shape: { "<entity>": [...] }
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, &Error{Message: fmt.Sprintf("malformed response: %v", err)}
	}

	raw, ok := envelope[envelopeKey]
	if !ok {
		return nil, nil
	}

	var batch []T
	if err := json.Unmarshal(raw, &batch); err != nil {
		return nil, &Error{Message: fmt.Sprintf("malformed %s payload: %v", envelopeKey, err)}
	}
	return batch, nil
}

func providerStatus(err error) int {
	if perr, ok := err.(*Error); ok {
		return perr.StatusCode
	}
	return 0
}
