package devserver

import (
	"sync"

	"github.com/campusdash/orderkit/internal/domain"
)

// MenuStore is the dev server's in-memory catalog. Tests and the seed
// routine mutate it to simulate backend-side menu changes.
type MenuStore struct {
	mu          sync.RWMutex
	restaurants map[string]domain.Restaurant
	items       map[string]map[string]domain.MenuItem // restaurant id -> item id -> item
}

func NewMenuStore() *MenuStore {
	return &MenuStore{
		restaurants: make(map[string]domain.Restaurant),
		items:       make(map[string]map[string]domain.MenuItem),
	}
}

func (s *MenuStore) AddRestaurant(r domain.Restaurant) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.restaurants[r.ID] = r
	if s.items[r.ID] == nil {
		s.items[r.ID] = make(map[string]domain.MenuItem)
	}
}

func (s *MenuStore) AddItem(restaurantID string, item domain.MenuItem) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.items[restaurantID] == nil {
		s.items[restaurantID] = make(map[string]domain.MenuItem)
	}
	s.items[restaurantID][item.ItemID] = item
}

// UpdateItem applies a mutation to a menu item, returning false if the
// item does not exist
func (s *MenuStore) UpdateItem(restaurantID, itemID string, mutate func(*domain.MenuItem)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[restaurantID][itemID]
	if !ok {
		return false
	}
	mutate(&item)
	s.items[restaurantID][itemID] = item
	return true
}

// Menu returns a restaurant and a copy of its items
func (s *MenuStore) Menu(restaurantID string) (domain.Restaurant, []domain.MenuItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	restaurant, ok := s.restaurants[restaurantID]
	if !ok {
		return domain.Restaurant{}, nil, false
	}
	items := make([]domain.MenuItem, 0, len(s.items[restaurantID]))
	for _, item := range s.items[restaurantID] {
		items = append(items, item)
	}
	return restaurant, items, true
}

// Item looks up a single menu item
func (s *MenuStore) Item(restaurantID, itemID string) (domain.MenuItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[restaurantID][itemID]
	return item, ok
}
