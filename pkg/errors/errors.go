package errors

import "fmt"

// ErrInvalidItem signals a malformed add-to-cart input
type ErrInvalidItem struct {
	Reason string
}

func (e *ErrInvalidItem) Error() string {
	return fmt.Sprintf("invalid cart item: %s", e.Reason)
}

// ErrCrossVendorConflict is returned when adding an item from a different
// restaurant than the one the cart already holds. The caller must confirm
// the switch explicitly; the cart is unchanged until then.
type ErrCrossVendorConflict struct {
	CurrentRestaurantID   string
	CurrentRestaurantName string
	NewRestaurantID       string
	NewRestaurantName     string
	ItemID                string
}

func (e *ErrCrossVendorConflict) Error() string {
	return fmt.Sprintf("cart already holds items from %q; confirm before switching to %q",
		e.CurrentRestaurantName, e.NewRestaurantName)
}

// ErrInvalidStateTransition signals an illegal checkout state change
type ErrInvalidStateTransition struct {
	From string
	To   string
}

func (e *ErrInvalidStateTransition) Error() string {
	return fmt.Sprintf("invalid state transition from %s to %s", e.From, e.To)
}

// MenuChangedError is the backend's staleness rejection: at least one
// submitted item hash no longer matches the menu. Keyed off the response
// body flag, never off the HTTP status alone.
type MenuChangedError struct {
	Message string
	ItemIDs []string
}

func (e *MenuChangedError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("menu changed: %s", e.Message)
	}
	return "menu changed since cart was built"
}

// ErrUnauthorized signals authentication failure
type ErrUnauthorized struct {
	Message string
}

func (e *ErrUnauthorized) Error() string {
	return fmt.Sprintf("unauthorized: %s", e.Message)
}

// APIError is a non-stale backend rejection (validation, server error)
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend API error: status %d: %s", e.StatusCode, e.Message)
}
