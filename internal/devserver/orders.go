package devserver

import (
	"sync"

	"github.com/campusdash/orderkit/internal/domain"
)

const (
	orderStatusPlaced = "PLACED"
	orderStatusPaid   = "PAID"
)

// StoredOrder is the dev server's record of an accepted order
type StoredOrder struct {
	ID             string
	VendorID       string
	Items          []domain.OrderRequestItem
	PaymentMethod  domain.PaymentMethod
	Status          string
	GatewayOrderID  string
	Amount          int64
	ClientReference string
}

// OrderStore keeps accepted orders in memory, indexed by order id and
// by gateway order id for payment verification
type OrderStore struct {
	mu          sync.RWMutex
	orders      map[string]*StoredOrder
	byGateway   map[string]string // gateway order id -> order id
	byReference map[string]string // client reference -> order id
}

func NewOrderStore() *OrderStore {
	return &OrderStore{
		orders:      make(map[string]*StoredOrder),
		byGateway:   make(map[string]string),
		byReference: make(map[string]string),
	}
}

func (s *OrderStore) Create(order *StoredOrder) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.orders[order.ID] = order
	if order.GatewayOrderID != "" {
		s.byGateway[order.GatewayOrderID] = order.ID
	}
	if order.ClientReference != "" {
		s.byReference[order.ClientReference] = order.ID
	}
}

// GetByReference resolves a previously submitted client reference, so a
// resubmitted request returns the existing order instead of a duplicate
func (s *OrderStore) GetByReference(reference string) (StoredOrder, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	orderID, ok := s.byReference[reference]
	if !ok {
		return StoredOrder{}, false
	}
	return *s.orders[orderID], true
}

func (s *OrderStore) Get(orderID string) (StoredOrder, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	order, ok := s.orders[orderID]
	if !ok {
		return StoredOrder{}, false
	}
	return *order, true
}

// MarkPaid transitions the order behind a gateway order id to PAID,
// returning the order id. False when the gateway order is unknown.
func (s *OrderStore) MarkPaid(gatewayOrderID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	orderID, ok := s.byGateway[gatewayOrderID]
	if !ok {
		return "", false
	}
	s.orders[orderID].Status = orderStatusPaid
	return orderID, true
}
