package domain

// Restaurant identifies the single vendor a cart belongs to
type Restaurant struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CartItem is the snapshot of a menu item captured at add-to-cart time.
// The snapshot fields (Name, Price, IsAvailable, IsVeg) feed the version
// hash at submission time.
type CartItem struct {
	ItemID       string  `json:"item_id"`
	Name         string  `json:"name"`
	Price        float64 `json:"price"`
	IsVeg        bool    `json:"is_veg"`
	IsAvailable  bool    `json:"is_available"`
	IsScheduled  bool    `json:"is_scheduled"`
	Quantity     int     `json:"quantity"`
	RestaurantID string  `json:"restaurant_id"`
}

// MenuItem is a catalog entry after boundary normalization (price is
// always numeric once it reaches this type)
type MenuItem struct {
	ItemID      string  `json:"item_id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	IsVeg       bool    `json:"is_veg"`
	IsAvailable bool    `json:"is_available"`
	IsScheduled bool    `json:"is_scheduled"`
}

// OrderRequestItem is the wire-level item sent to the backend
type OrderRequestItem struct {
	ItemID      string `json:"item_id"`
	Quantity    int    `json:"quantity"`
	VersionHash string `json:"version_hash"`
	IsScheduled bool   `json:"is_scheduled"`
}

// OrderRequest is the order submission payload
type OrderRequest struct {
	Items               []OrderRequestItem `json:"items"`
	VendorID            string             `json:"vendor_id"`
	DeliveryAddress     string             `json:"delivery_address"`
	PaymentMethod       PaymentMethod      `json:"payment_method"`
	SpecialInstructions string             `json:"special_instructions"`
	ClientReference     string             `json:"client_reference"`
}

// Order is the backend's record of an accepted order
type Order struct {
	ID     string `json:"id"`
	Status string `json:"status,omitempty"`
}

// GatewayOrder is the payment-gateway-side order handle returned by the
// backend for online payments. Amount is in the gateway's smallest
// currency unit (paise).
type GatewayOrder struct {
	ID     string `json:"id"`
	Amount int64  `json:"amount"`
}

// PaymentConfirmation holds the opaque tokens the gateway returns after a
// completed payment, forwarded verbatim to the backend for verification
type PaymentConfirmation struct {
	GatewayOrderID   string `json:"gateway_order_id"`
	GatewayPaymentID string `json:"gateway_payment_id"`
	GatewaySignature string `json:"gateway_signature"`
}

// IsComplete reports whether all three tokens are present. No structural
// validation beyond non-empty presence.
func (p PaymentConfirmation) IsComplete() bool {
	return p.GatewayOrderID != "" && p.GatewayPaymentID != "" && p.GatewaySignature != ""
}
