// Package hash computes the item version hash used to detect that a menu
// item changed between add-to-cart and checkout. The backend stores the
// same digest for its current menu record; a mismatch at submission time
// rejects the order.
package hash

import (
	"crypto/sha256"
	"encoding/hex"
	"math"
	"strconv"

	"github.com/campusdash/orderkit/internal/domain"
)

// ItemSnapshot holds exactly the fields that participate in the digest
type ItemSnapshot struct {
	Name        string
	Price       float64
	IsAvailable bool
	IsVeg       bool
}

// SnapshotOf extracts the hashed fields from a cart item
func SnapshotOf(item domain.CartItem) ItemSnapshot {
	return ItemSnapshot{
		Name:        item.Name,
		Price:       item.Price,
		IsAvailable: item.IsAvailable,
		IsVeg:       item.IsVeg,
	}
}

// SnapshotOfMenuItem extracts the hashed fields from a catalog entry
func SnapshotOfMenuItem(item domain.MenuItem) ItemSnapshot {
	return ItemSnapshot{
		Name:        item.Name,
		Price:       item.Price,
		IsAvailable: item.IsAvailable,
		IsVeg:       item.IsVeg,
	}
}

// Sum returns the hex SHA-256 digest of the snapshot's canonical form.
// It is total: there is no input for which it fails.
func Sum(s ItemSnapshot) string {
	digest := sha256.Sum256([]byte(canonical(s)))
	return hex.EncodeToString(digest[:])
}

// canonical serializes the snapshot with a fixed field order and fixed
// formatting, so the digest can never drift on map ordering or float
// rendering. NaN and Inf prices normalize to 0 rather than erroring.
func canonical(s ItemSnapshot) string {
	price := s.Price
	if math.IsNaN(price) || math.IsInf(price, 0) {
		price = 0
	}
	return "available=" + strconv.FormatBool(s.IsAvailable) +
		"|name=" + strconv.Quote(s.Name) +
		"|price=" + strconv.FormatFloat(price, 'f', -1, 64) +
		"|veg=" + strconv.FormatBool(s.IsVeg)
}
