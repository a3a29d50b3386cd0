// Package catalog fetches restaurant menus and normalizes them at the
// boundary: whatever the backend sends for price (a number, or a
// formatted string like "₹80"), only numeric prices reach the cart.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/campusdash/orderkit/internal/config"
	"github.com/campusdash/orderkit/internal/domain"
	"github.com/campusdash/orderkit/pkg/errors"
)

type Client struct {
	baseURL    string
	authToken  string
	httpClient *http.Client
	logger     *zap.Logger
	sfg        singleflight.Group // collapses concurrent fetches per restaurant
}

// NewClient creates a catalog client
func NewClient(cfg config.BackendConfig, logger *zap.Logger) *Client {
	return &Client{
		baseURL:   strings.TrimSuffix(cfg.BaseURL, "/"),
		authToken: cfg.AuthToken,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

// wireMenuItem is the raw backend shape before normalization
type wireMenuItem struct {
	ItemID      string          `json:"item_id"`
	Name        string          `json:"name"`
	Price       json.RawMessage `json:"price"`
	IsVeg       bool            `json:"is_veg"`
	IsAvailable bool            `json:"is_available"`
	IsScheduled bool            `json:"is_scheduled"`
}

type menuResponse struct {
	Restaurant domain.Restaurant `json:"restaurant"`
	Items      []wireMenuItem    `json:"items"`
}

// Menu holds a normalized menu
type Menu struct {
	Restaurant domain.Restaurant
	Items      []domain.MenuItem
}

// FetchMenu fetches and normalizes a restaurant's menu. Concurrent
// calls for the same restaurant share one request.
func (c *Client) FetchMenu(ctx context.Context, restaurantID string) (*Menu, error) {
	v, err, _ := c.sfg.Do(restaurantID, func() (interface{}, error) {
		return c.fetchMenu(ctx, restaurantID)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Menu), nil
}

func (c *Client) fetchMenu(ctx context.Context, restaurantID string) (*Menu, error) {
	url := fmt.Sprintf("%s/v1/restaurants/%s/menu", c.baseURL, restaurantID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &errors.APIError{StatusCode: resp.StatusCode, Message: string(body)}
	}

	var wire menuResponse
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, fmt.Errorf("failed to unmarshal menu response: %w", err)
	}

	menu := &Menu{
		Restaurant: wire.Restaurant,
		Items:      make([]domain.MenuItem, 0, len(wire.Items)),
	}
	for _, raw := range wire.Items {
		menu.Items = append(menu.Items, c.normalize(raw))
	}
	return menu, nil
}

func (c *Client) normalize(raw wireMenuItem) domain.MenuItem {
	item := domain.MenuItem{
		ItemID:      raw.ItemID,
		Name:        raw.Name,
		IsVeg:       raw.IsVeg,
		IsAvailable: raw.IsAvailable,
		IsScheduled: raw.IsScheduled,
	}

	price, err := NormalizePrice(raw.Price)
	if err != nil {
		// An item whose price we cannot read must not be orderable
		c.logger.Warn("unparseable menu price",
			zap.String("item_id", raw.ItemID),
			zap.Error(err))
		item.Price = 0
		item.IsAvailable = false
		return item
	}
	item.Price = price
	return item
}
