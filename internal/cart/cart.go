// Package cart holds the in-memory cart aggregate: the items currently
// intended for purchase from exactly one restaurant, with quantity
// bookkeeping and derived totals.
package cart

import (
	"math"
	"sync"

	"go.uber.org/zap"

	"github.com/campusdash/orderkit/internal/domain"
	"github.com/campusdash/orderkit/pkg/errors"
)

// Aggregate is a mutex-guarded cart. Invariants:
//   - restaurant is set if and only if the cart is non-empty
//   - every item's RestaurantID equals the cart's restaurant id
//   - no item exists with quantity < 1 (removal deletes the record)
type Aggregate struct {
	mu         sync.Mutex
	items      map[string]*domain.CartItem
	order      []string // item ids in insertion order, for display
	restaurant *domain.Restaurant
	listeners  []func()
	logger     *zap.Logger
}

// New creates an empty cart aggregate
func New(logger *zap.Logger) *Aggregate {
	return &Aggregate{
		items:  make(map[string]*domain.CartItem),
		logger: logger,
	}
}

// OnChange registers a callback invoked after every mutation. Callbacks
// run outside the aggregate lock, in registration order.
func (a *Aggregate) OnChange(fn func()) {
	a.mu.Lock()
	a.listeners = append(a.listeners, fn)
	a.mu.Unlock()
}

// AddItem inserts an item from the given restaurant, or bumps its
// quantity by one if already present. Adding from a different restaurant
// than the cart's current one returns *errors.ErrCrossVendorConflict and
// leaves the cart unchanged; the caller confirms the switch with
// ReplaceWith.
func (a *Aggregate) AddItem(item domain.CartItem, restaurantID, restaurantName string) error {
	if item.ItemID == "" {
		return &errors.ErrInvalidItem{Reason: "missing item id"}
	}
	if restaurantID == "" {
		return &errors.ErrInvalidItem{Reason: "missing restaurant id"}
	}

	a.mu.Lock()
	if a.restaurant != nil && a.restaurant.ID != restaurantID {
		conflict := &errors.ErrCrossVendorConflict{
			CurrentRestaurantID:   a.restaurant.ID,
			CurrentRestaurantName: a.restaurant.Name,
			NewRestaurantID:       restaurantID,
			NewRestaurantName:     restaurantName,
			ItemID:                item.ItemID,
		}
		a.mu.Unlock()
		return conflict
	}

	if a.restaurant == nil {
		a.restaurant = &domain.Restaurant{ID: restaurantID, Name: restaurantName}
	}

	if existing, ok := a.items[item.ItemID]; ok {
		existing.Quantity++
	} else {
		inserted := item
		inserted.Quantity = 1
		inserted.RestaurantID = restaurantID
		a.items[item.ItemID] = &inserted
		a.order = append(a.order, item.ItemID)
	}
	a.mu.Unlock()

	a.notify()
	return nil
}

// ReplaceWith clears the cart and reseeds it with a single item from a
// new restaurant. This is the confirmation path for a cross-vendor
// conflict; it never fails on a non-empty cart.
func (a *Aggregate) ReplaceWith(item domain.CartItem, restaurantID, restaurantName string) error {
	if item.ItemID == "" {
		return &errors.ErrInvalidItem{Reason: "missing item id"}
	}
	if restaurantID == "" {
		return &errors.ErrInvalidItem{Reason: "missing restaurant id"}
	}

	a.mu.Lock()
	inserted := item
	inserted.Quantity = 1
	inserted.RestaurantID = restaurantID
	a.items = map[string]*domain.CartItem{item.ItemID: &inserted}
	a.order = []string{item.ItemID}
	a.restaurant = &domain.Restaurant{ID: restaurantID, Name: restaurantName}
	a.mu.Unlock()

	a.notify()
	return nil
}

// DecreaseOrRemove decrements an item's quantity, deleting it at
// quantity one. Absent items are a no-op, not an error.
func (a *Aggregate) DecreaseOrRemove(itemID string) {
	a.mu.Lock()
	existing, ok := a.items[itemID]
	if !ok {
		a.mu.Unlock()
		return
	}
	if existing.Quantity > 1 {
		existing.Quantity--
	} else {
		a.removeLocked(itemID)
	}
	a.mu.Unlock()

	a.notify()
}

// SetQuantity overwrites an item's quantity. A quantity <= 0 removes the
// item; setting quantity on an absent item is a no-op (items enter the
// cart only through AddItem or ReplaceWith).
func (a *Aggregate) SetQuantity(itemID string, quantity int) {
	a.mu.Lock()
	existing, ok := a.items[itemID]
	if !ok {
		a.mu.Unlock()
		return
	}
	if quantity <= 0 {
		a.removeLocked(itemID)
	} else {
		existing.Quantity = quantity
	}
	a.mu.Unlock()

	a.notify()
}

// Clear empties the cart and unsets the restaurant unconditionally
func (a *Aggregate) Clear() {
	a.mu.Lock()
	a.items = make(map[string]*domain.CartItem)
	a.order = nil
	a.restaurant = nil
	a.mu.Unlock()

	a.notify()
}

// Total sums price*quantity over all items. A NaN or Inf price
// contributes 0, so the total is always a valid number.
func (a *Aggregate) Total() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()

	var total float64
	for _, item := range a.items {
		price := item.Price
		if math.IsNaN(price) || math.IsInf(price, 0) {
			price = 0
		}
		total += price * float64(item.Quantity)
	}
	return total
}

// ItemCount returns the sum of all quantities, 0 for an empty cart
func (a *Aggregate) ItemCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	count := 0
	for _, item := range a.items {
		count += item.Quantity
	}
	return count
}

// ItemQuantity returns the stored quantity for an item, 0 if absent
func (a *Aggregate) ItemQuantity(itemID string) int {
	a.mu.Lock()
	defer a.mu.Unlock()

	if item, ok := a.items[itemID]; ok {
		return item.Quantity
	}
	return 0
}

// Items returns a copy of the cart contents in insertion order
func (a *Aggregate) Items() []domain.CartItem {
	a.mu.Lock()
	defer a.mu.Unlock()

	snapshot := make([]domain.CartItem, 0, len(a.order))
	for _, id := range a.order {
		snapshot = append(snapshot, *a.items[id])
	}
	return snapshot
}

// Restaurant returns the cart's restaurant; ok is false for an empty cart
func (a *Aggregate) Restaurant() (domain.Restaurant, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.restaurant == nil {
		return domain.Restaurant{}, false
	}
	return *a.restaurant, true
}

// IsEmpty reports whether the cart holds no items
func (a *Aggregate) IsEmpty() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.items) == 0
}

// removeLocked deletes an item and restores the empty-cart invariant.
// Caller holds the lock.
func (a *Aggregate) removeLocked(itemID string) {
	delete(a.items, itemID)
	for i, id := range a.order {
		if id == itemID {
			a.order = append(a.order[:i], a.order[i+1:]...)
			break
		}
	}
	if len(a.items) == 0 {
		a.restaurant = nil
	}
}

// load replaces the cart contents wholesale (used by the persistor)
func (a *Aggregate) load(restaurant *domain.Restaurant, items []domain.CartItem) {
	a.mu.Lock()
	a.items = make(map[string]*domain.CartItem, len(items))
	a.order = make([]string, 0, len(items))
	for i := range items {
		item := items[i]
		if item.ItemID == "" || item.Quantity < 1 {
			continue
		}
		a.items[item.ItemID] = &item
		a.order = append(a.order, item.ItemID)
	}
	if len(a.items) == 0 {
		a.restaurant = nil
	} else {
		a.restaurant = restaurant
	}
	a.mu.Unlock()

	a.notify()
}

func (a *Aggregate) notify() {
	a.mu.Lock()
	listeners := make([]func(), len(a.listeners))
	copy(listeners, a.listeners)
	a.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}
