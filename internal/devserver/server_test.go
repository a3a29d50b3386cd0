package devserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/campusdash/orderkit/internal/api"
	"github.com/campusdash/orderkit/internal/cart"
	"github.com/campusdash/orderkit/internal/catalog"
	"github.com/campusdash/orderkit/internal/checkout"
	"github.com/campusdash/orderkit/internal/config"
	"github.com/campusdash/orderkit/internal/domain"
	"github.com/campusdash/orderkit/internal/hash"
	"github.com/campusdash/orderkit/internal/payment"
)

const testGatewaySecret = "test-secret"

func newTestServer(t *testing.T, cfg config.DevServerConfig) (*httptest.Server, *MenuStore, *OrderStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	menu := NewMenuStore()
	SeedDemoMenu(menu)
	orders := NewOrderStore()

	router := NewRouter(cfg, "test", menu, orders, zap.NewNop())
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server, menu, orders
}

func devConfig() config.DevServerConfig {
	return config.DevServerConfig{
		GatewayKeyID:  "rzp_test_abc",
		GatewaySecret: testGatewaySecret,
	}
}

// fillCartFromMenu fetches the seeded menu over HTTP and adds itemID
// to the cart the given number of times
func fillCartFromMenu(t *testing.T, baseURL, restaurantID, itemID string, times int) *cart.Aggregate {
	t.Helper()

	menuClient := catalog.NewClient(config.BackendConfig{BaseURL: baseURL}, zap.NewNop())
	menu, err := menuClient.FetchMenu(context.Background(), restaurantID)
	require.NoError(t, err)

	var menuItem domain.MenuItem
	found := false
	for _, item := range menu.Items {
		if item.ItemID == itemID {
			menuItem = item
			found = true
			break
		}
	}
	require.True(t, found, "item %s not on menu", itemID)

	agg := cart.New(zap.NewNop())
	for i := 0; i < times; i++ {
		require.NoError(t, agg.AddItem(domain.CartItem{
			ItemID:      menuItem.ItemID,
			Name:        menuItem.Name,
			Price:       menuItem.Price,
			IsVeg:       menuItem.IsVeg,
			IsAvailable: menuItem.IsAvailable,
			IsScheduled: menuItem.IsScheduled,
		}, menu.Restaurant.ID, menu.Restaurant.Name))
	}
	return agg
}

func TestEndToEnd_CashOnDelivery(t *testing.T) {
	server, _, orders := newTestServer(t, devConfig())

	agg := fillCartFromMenu(t, server.URL, "rest-canteen-1", "item-chai", 2)
	backend := api.NewClient(config.BackendConfig{BaseURL: server.URL}, zap.NewNop())
	gateway := &payment.MockGateway{KeySecret: testGatewaySecret}
	flow := checkout.NewFlow(agg, backend, gateway, config.CheckoutConfig{}, zap.NewNop())

	result := flow.Checkout(context.Background(), checkout.Params{
		DeliveryAddress: "Hostel B",
		PaymentMethod:   domain.PaymentMethodCashOnDelivery,
	})

	require.Equal(t, checkout.OutcomeCompleted, result.Outcome)
	assert.True(t, agg.IsEmpty())

	stored, ok := orders.Get(result.OrderID)
	require.True(t, ok)
	assert.Equal(t, orderStatusPlaced, stored.Status)
	assert.Empty(t, stored.GatewayOrderID)
}

func TestEndToEnd_OnlinePayment(t *testing.T) {
	server, _, orders := newTestServer(t, devConfig())

	agg := fillCartFromMenu(t, server.URL, "rest-canteen-1", "item-masala-dosa", 2)
	backend := api.NewClient(config.BackendConfig{BaseURL: server.URL}, zap.NewNop())
	gateway := &payment.MockGateway{KeySecret: testGatewaySecret}
	flow := checkout.NewFlow(agg, backend, gateway, config.CheckoutConfig{}, zap.NewNop())

	result := flow.Checkout(context.Background(), checkout.Params{
		DeliveryAddress: "Hostel B",
		PaymentMethod:   domain.PaymentMethodOnline,
	})

	require.Equal(t, checkout.OutcomeCompleted, result.Outcome)
	assert.NotEmpty(t, result.GatewayPaymentID)
	assert.True(t, agg.IsEmpty())

	stored, ok := orders.Get(result.OrderID)
	require.True(t, ok)
	assert.Equal(t, orderStatusPaid, stored.Status)
	// 2 x 60.00 in paise
	assert.Equal(t, int64(12000), stored.Amount)
}

func TestEndToEnd_PriceChangeRejectsAsStale(t *testing.T) {
	server, menu, _ := newTestServer(t, devConfig())

	agg := fillCartFromMenu(t, server.URL, "rest-canteen-1", "item-chai", 1)

	// Price changes server-side after the cart was built
	ok := menu.UpdateItem("rest-canteen-1", "item-chai", func(item *domain.MenuItem) {
		item.Price = 25
	})
	require.True(t, ok)

	backend := api.NewClient(config.BackendConfig{BaseURL: server.URL}, zap.NewNop())
	flow := checkout.NewFlow(agg, backend, &payment.MockGateway{KeySecret: testGatewaySecret}, config.CheckoutConfig{}, zap.NewNop())

	result := flow.Checkout(context.Background(), checkout.Params{
		DeliveryAddress: "Hostel B",
		PaymentMethod:   domain.PaymentMethodCashOnDelivery,
	})

	assert.Equal(t, checkout.OutcomeRejectedStaleMenu, result.Outcome)
	assert.True(t, agg.IsEmpty())
}

func TestEndToEnd_CancelledPaymentPreservesCart(t *testing.T) {
	server, _, _ := newTestServer(t, devConfig())

	agg := fillCartFromMenu(t, server.URL, "rest-canteen-1", "item-masala-dosa", 2)
	backend := api.NewClient(config.BackendConfig{BaseURL: server.URL}, zap.NewNop())
	gateway := &payment.MockGateway{KeySecret: testGatewaySecret, CancelNext: true}
	flow := checkout.NewFlow(agg, backend, gateway, config.CheckoutConfig{}, zap.NewNop())

	result := flow.Checkout(context.Background(), checkout.Params{
		DeliveryAddress: "Hostel B",
		PaymentMethod:   domain.PaymentMethodOnline,
	})

	assert.Equal(t, checkout.OutcomePaymentCancelled, result.Outcome)
	assert.Equal(t, 2, agg.ItemQuantity("item-masala-dosa"))
}

func TestEndToEnd_BadSignatureFailsVerification(t *testing.T) {
	server, _, _ := newTestServer(t, devConfig())

	agg := fillCartFromMenu(t, server.URL, "rest-canteen-1", "item-chai", 1)
	backend := api.NewClient(config.BackendConfig{BaseURL: server.URL}, zap.NewNop())
	// Gateway signs with the wrong secret, so verification must fail
	gateway := &payment.MockGateway{KeySecret: "wrong-secret"}
	flow := checkout.NewFlow(agg, backend, gateway, config.CheckoutConfig{}, zap.NewNop())

	result := flow.Checkout(context.Background(), checkout.Params{
		DeliveryAddress: "Hostel B",
		PaymentMethod:   domain.PaymentMethodOnline,
	})

	assert.Equal(t, checkout.OutcomeRejectedOther, result.Outcome)
	assert.NotNil(t, result.Confirmation)
	assert.Equal(t, 1, agg.ItemQuantity("item-chai"))
}

func TestCreateOrder_IdempotentClientReference(t *testing.T) {
	server, menu, _ := newTestServer(t, devConfig())

	item, ok := menu.Item("rest-canteen-1", "item-chai")
	require.True(t, ok)

	body := map[string]interface{}{
		"items": []map[string]interface{}{{
			"item_id":      item.ItemID,
			"quantity":     1,
			"version_hash": hash.Sum(hash.SnapshotOfMenuItem(item)),
		}},
		"vendor_id":        "rest-canteen-1",
		"delivery_address": "Hostel B",
		"payment_method":   "cash_on_delivery",
		"client_reference": "ref-123",
	}
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	submit := func() string {
		resp, err := http.Post(server.URL+"/v1/orders", "application/json", bytes.NewReader(payload))
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var parsed struct {
			Order struct {
				ID string `json:"id"`
			} `json:"order"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed))
		return parsed.Order.ID
	}

	first := submit()
	second := submit()
	assert.Equal(t, first, second)
}

func TestAPIKeyMiddleware(t *testing.T) {
	keyHash, err := bcrypt.GenerateFromPassword([]byte("dev-key-123"), 10)
	require.NoError(t, err)

	cfg := devConfig()
	cfg.APIKeyHash = string(keyHash)
	server, _, _ := newTestServer(t, cfg)

	// Missing key
	resp, err := http.Get(server.URL + "/v1/payments/key")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Wrong key
	req, _ := http.NewRequest(http.MethodGet, server.URL+"/v1/payments/key", nil)
	req.Header.Set("X-API-Key", "wrong")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Right key
	req, _ = http.NewRequest(http.MethodGet, server.URL+"/v1/payments/key", nil)
	req.Header.Set("X-API-Key", "dev-key-123")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Health endpoint stays open
	resp, err = http.Get(server.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHandleCreateOrder_UnknownItemIsStale(t *testing.T) {
	server, _, _ := newTestServer(t, devConfig())

	body := `{
		"items": [{"item_id": "item-ghost", "quantity": 1, "version_hash": "deadbeef"}],
		"vendor_id": "rest-canteen-1",
		"delivery_address": "Hostel B",
		"payment_method": "cash_on_delivery"
	}`
	resp, err := http.Post(server.URL+"/v1/orders", "application/json", bytes.NewReader([]byte(body)))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	var parsed struct {
		Code            string   `json:"code"`
		ShouldEmptyCart bool     `json:"should_empty_cart"`
		ItemIDs         []string `json:"item_ids"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed))
	assert.Equal(t, "MENU_CHANGED", parsed.Code)
	assert.True(t, parsed.ShouldEmptyCart)
	assert.Equal(t, []string{"item-ghost"}, parsed.ItemIDs)
}
