// Package kv abstracts the durable key-value store the app keeps
// client-side state in (cart snapshots, preferences).
package kv

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the key is absent
var ErrNotFound = errors.New("kv: key not found")

// Store is an async get/set/remove interface over string keys
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
