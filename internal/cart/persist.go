package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/campusdash/orderkit/internal/domain"
	"github.com/campusdash/orderkit/internal/kv"
)

// Persistor mirrors the cart into the key-value store so a restart can
// restore it. The aggregate itself stays memory-only; durability is
// strictly this wrapper's concern.
type Persistor struct {
	store  kv.Store
	key    string
	logger *zap.Logger
}

func NewPersistor(store kv.Store, key string, logger *zap.Logger) *Persistor {
	return &Persistor{
		store:  store,
		key:    key,
		logger: logger,
	}
}

type cartSnapshot struct {
	Restaurant *domain.Restaurant `json:"restaurant,omitempty"`
	Items      []domain.CartItem  `json:"items"`
}

// Save writes the cart's current contents to the store
func (p *Persistor) Save(ctx context.Context, agg *Aggregate) error {
	snap := cartSnapshot{Items: agg.Items()}
	if restaurant, ok := agg.Restaurant(); ok {
		snap.Restaurant = &restaurant
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal cart snapshot failed: %w", err)
	}
	return p.store.Set(ctx, p.key, data)
}

// Restore loads a previously saved cart into the aggregate. A missing
// key or an undecodable snapshot restores an empty cart.
func (p *Persistor) Restore(ctx context.Context, agg *Aggregate) error {
	data, err := p.store.Get(ctx, p.key)
	if errors.Is(err, kv.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	var snap cartSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		p.logger.Warn("discarding undecodable cart snapshot", zap.Error(err))
		return nil
	}
	if snap.Restaurant == nil {
		// Snapshot violates the restaurant invariant; start clean
		agg.load(nil, nil)
		return nil
	}
	agg.load(snap.Restaurant, snap.Items)
	return nil
}

// Attach subscribes to cart changes and writes each new state through
// with a short deadline, logging rather than propagating store errors
// so a flaky store never blocks cart mutation.
func (p *Persistor) Attach(agg *Aggregate) {
	agg.OnChange(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := p.Save(ctx, agg); err != nil {
			p.logger.Warn("cart persist failed", zap.Error(err))
		}
	})
}
