// Package api is the HTTP client for the campus-delivery backend: order
// submission, payment verification, and gateway key retrieval.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/campusdash/orderkit/internal/config"
	"github.com/campusdash/orderkit/internal/domain"
	"github.com/campusdash/orderkit/pkg/errors"
)

type Client struct {
	baseURL    string
	authToken  string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a backend API client
func NewClient(cfg config.BackendConfig, logger *zap.Logger) *Client {
	// Normalize base URL - remove trailing slashes
	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")

	return &Client{
		baseURL:   baseURL,
		authToken: cfg.AuthToken,
		httpClient: &http.Client{
			// Backstop only; callers bound individual calls via context
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

// CreateOrderResponse is the success payload of POST /v1/orders
type CreateOrderResponse struct {
	Order         domain.Order         `json:"order"`
	RazorpayOrder *domain.GatewayOrder `json:"razorpay_order,omitempty"`
}

// VerifyPaymentResponse is the payload of POST /v1/payments/verify
type VerifyPaymentResponse struct {
	Verified bool   `json:"verified"`
	OrderID  string `json:"order_id,omitempty"`
}

// GatewayKeyResponse is the payload of GET /v1/payments/key
type GatewayKeyResponse struct {
	KeyID string `json:"key_id"`
}

// errorResponse is the backend's failure body. The menu-changed
// condition is signalled by Code or the legacy ShouldEmptyCart flag; a
// failure status without either is an ordinary rejection.
type errorResponse struct {
	Error           string   `json:"error"`
	Code            string   `json:"code,omitempty"`
	ShouldEmptyCart bool     `json:"should_empty_cart,omitempty"`
	ItemIDs         []string `json:"item_ids,omitempty"`
}

const codeMenuChanged = "MENU_CHANGED"

// CreateOrder submits an order. A staleness rejection comes back as
// *errors.MenuChangedError, everything else as *errors.APIError or a
// transport error.
func (c *Client) CreateOrder(ctx context.Context, req domain.OrderRequest) (*CreateOrderResponse, error) {
	body, err := c.do(ctx, http.MethodPost, "/v1/orders", req)
	if err != nil {
		return nil, err
	}

	var resp CreateOrderResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal order response: %w", err)
	}
	if resp.Order.ID == "" {
		return nil, &errors.APIError{StatusCode: http.StatusOK, Message: "order response missing order id"}
	}
	return &resp, nil
}

// VerifyPayment forwards the gateway confirmation for server-side
// verification. A non-verified response is an *errors.APIError.
func (c *Client) VerifyPayment(ctx context.Context, conf domain.PaymentConfirmation) error {
	body, err := c.do(ctx, http.MethodPost, "/v1/payments/verify", conf)
	if err != nil {
		return err
	}

	var resp VerifyPaymentResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("failed to unmarshal verify response: %w", err)
	}
	if !resp.Verified {
		return &errors.APIError{StatusCode: http.StatusOK, Message: "payment not verified"}
	}
	return nil
}

// GatewayKey fetches the payment gateway public key, consumed once per
// checkout attempt before opening the gateway
func (c *Client) GatewayKey(ctx context.Context) (string, error) {
	body, err := c.do(ctx, http.MethodGet, "/v1/payments/key", nil)
	if err != nil {
		return "", err
	}

	var resp GatewayKeyResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("failed to unmarshal gateway key response: %w", err)
	}
	if resp.KeyID == "" {
		return "", &errors.APIError{StatusCode: http.StatusOK, Message: "gateway key response missing key id"}
	}
	return resp.KeyID, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload interface{}) ([]byte, error) {
	url := c.baseURL + path

	var reqBody io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
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

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return body, nil
	}

	return nil, c.classifyFailure(resp.StatusCode, body)
}

func (c *Client) classifyFailure(status int, body []byte) error {
	var failure errorResponse
	if err := json.Unmarshal(body, &failure); err != nil {
		c.logger.Warn("unparseable backend error body",
			zap.Int("status", status),
			zap.Int("body_len", len(body)),
		)
		return &errors.APIError{StatusCode: status, Message: string(body)}
	}

	if failure.Code == codeMenuChanged || failure.ShouldEmptyCart {
		return &errors.MenuChangedError{Message: failure.Error, ItemIDs: failure.ItemIDs}
	}
	if status == http.StatusUnauthorized {
		return &errors.ErrUnauthorized{Message: failure.Error}
	}
	return &errors.APIError{StatusCode: status, Message: failure.Error}
}
