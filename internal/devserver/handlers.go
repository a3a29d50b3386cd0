package devserver

import (
	"crypto/hmac"
	"math"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campusdash/orderkit/internal/config"
	"github.com/campusdash/orderkit/internal/domain"
	"github.com/campusdash/orderkit/internal/hash"
	"github.com/campusdash/orderkit/internal/payment"
)

// createOrderRequest is the order intake payload
type createOrderRequest struct {
	Items               []orderItemRequest `json:"items" binding:"required,min=1"`
	VendorID            string             `json:"vendor_id" binding:"required"`
	DeliveryAddress     string             `json:"delivery_address" binding:"required"`
	PaymentMethod       string             `json:"payment_method" binding:"required"`
	SpecialInstructions string             `json:"special_instructions"`
	ClientReference     string             `json:"client_reference"`
}

type orderItemRequest struct {
	ItemID      string `json:"item_id" binding:"required"`
	Quantity    int    `json:"quantity" binding:"required,min=1"`
	VersionHash string `json:"version_hash" binding:"required"`
	IsScheduled bool   `json:"is_scheduled"`
}

type createOrderResponse struct {
	Order         orderResponse        `json:"order"`
	RazorpayOrder *domain.GatewayOrder `json:"razorpay_order,omitempty"`
}

type orderResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// HandleGetMenu handles GET /v1/restaurants/:id/menu
func HandleGetMenu(menu *MenuStore, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		restaurantID := c.Param("id")

		restaurant, items, ok := menu.Menu(restaurantID)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "restaurant not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"restaurant": restaurant,
			"items":      items,
		})
	}
}

// HandleCreateOrder handles POST /v1/orders. Every submitted item hash
// is recomputed against the current menu; any mismatch (or an item that
// vanished or went unavailable) rejects the whole order with the
// menu-changed flag.
func HandleCreateOrder(menu *MenuStore, orders *OrderStore, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":   "validation failed",
				"details": err.Error(),
			})
			return
		}

		method := domain.PaymentMethod(req.PaymentMethod)
		if !method.IsValid() {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "unknown payment method"})
			return
		}

		// Resubmitted client reference returns the existing order
		if req.ClientReference != "" {
			if existing, ok := orders.GetByReference(req.ClientReference); ok {
				c.JSON(http.StatusOK, buildOrderResponse(existing))
				return
			}
		}

		var staleIDs []string
		var total float64
		for _, item := range req.Items {
			current, ok := menu.Item(req.VendorID, item.ItemID)
			if !ok || !current.IsAvailable ||
				hash.Sum(hash.SnapshotOfMenuItem(current)) != item.VersionHash {
				staleIDs = append(staleIDs, item.ItemID)
				continue
			}
			total += current.Price * float64(item.Quantity)
		}
		if len(staleIDs) > 0 {
			logger.Info("rejecting stale order",
				zap.String("vendor_id", req.VendorID),
				zap.Strings("item_ids", staleIDs))
			c.JSON(http.StatusConflict, gin.H{
				"error":             "menu changed since cart was built",
				"code":              "MENU_CHANGED",
				"should_empty_cart": true,
				"item_ids":          staleIDs,
			})
			return
		}

		order := &StoredOrder{
			ID:              uuid.NewString(),
			VendorID:        req.VendorID,
			PaymentMethod:   method,
			Status:          orderStatusPlaced,
			ClientReference: req.ClientReference,
		}
		for _, item := range req.Items {
			order.Items = append(order.Items, domain.OrderRequestItem{
				ItemID:      item.ItemID,
				Quantity:    item.Quantity,
				VersionHash: item.VersionHash,
				IsScheduled: item.IsScheduled,
			})
		}
		if method == domain.PaymentMethodOnline {
			order.GatewayOrderID = "order_" + uuid.NewString()
			order.Amount = int64(math.Round(total * 100))
		}
		orders.Create(order)

		logger.Info("order accepted",
			zap.String("order_id", order.ID),
			zap.String("vendor_id", order.VendorID),
			zap.String("payment_method", string(method)))

		c.JSON(http.StatusOK, buildOrderResponse(*order))
	}
}

func buildOrderResponse(order StoredOrder) createOrderResponse {
	resp := createOrderResponse{
		Order: orderResponse{ID: order.ID, Status: order.Status},
	}
	if order.GatewayOrderID != "" && order.Status != orderStatusPaid {
		resp.RazorpayOrder = &domain.GatewayOrder{
			ID:     order.GatewayOrderID,
			Amount: order.Amount,
		}
	}
	return resp
}

// HandleGetOrder handles GET /v1/orders/:id
func HandleGetOrder(orders *OrderStore, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		order, ok := orders.Get(c.Param("id"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"id":             order.ID,
			"status":         order.Status,
			"vendor_id":      order.VendorID,
			"payment_method": order.PaymentMethod,
			"items":          order.Items,
		})
	}
}

// verifyPaymentRequest mirrors the gateway confirmation tokens
type verifyPaymentRequest struct {
	GatewayOrderID   string `json:"gateway_order_id" binding:"required"`
	GatewayPaymentID string `json:"gateway_payment_id" binding:"required"`
	GatewaySignature string `json:"gateway_signature" binding:"required"`
}

// HandleVerifyPayment handles POST /v1/payments/verify, checking the
// HMAC signature over "orderID|paymentID" against the gateway secret
func HandleVerifyPayment(cfg config.DevServerConfig, orders *OrderStore, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req verifyPaymentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":   "validation failed",
				"details": err.Error(),
			})
			return
		}

		expected := payment.Sign(cfg.GatewaySecret, req.GatewayOrderID, req.GatewayPaymentID)
		if !hmac.Equal([]byte(expected), []byte(req.GatewaySignature)) {
			logger.Warn("payment signature mismatch",
				zap.String("gateway_order_id", req.GatewayOrderID))
			c.JSON(http.StatusBadRequest, gin.H{
				"error":    "invalid payment signature",
				"verified": false,
			})
			return
		}

		orderID, ok := orders.MarkPaid(req.GatewayOrderID)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{
				"error":    "unknown gateway order",
				"verified": false,
			})
			return
		}

		logger.Info("payment verified",
			zap.String("order_id", orderID),
			zap.String("gateway_payment_id", req.GatewayPaymentID))

		c.JSON(http.StatusOK, gin.H{"verified": true, "order_id": orderID})
	}
}

// HandleGatewayKey handles GET /v1/payments/key
func HandleGatewayKey(cfg config.DevServerConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"key_id": cfg.GatewayKeyID})
	}
}
