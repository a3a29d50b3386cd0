package cart

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campusdash/orderkit/internal/domain"
	"github.com/campusdash/orderkit/pkg/errors"
)

func testItem(id, name string, price float64) domain.CartItem {
	return domain.CartItem{
		ItemID:      id,
		Name:        name,
		Price:       price,
		IsVeg:       true,
		IsAvailable: true,
	}
}

func TestAddItem_FirstAddSetsRestaurant(t *testing.T) {
	agg := New(zap.NewNop())

	err := agg.AddItem(testItem("item-1", "Tea", 20), "rest-1", "Main Canteen")
	require.NoError(t, err)

	restaurant, ok := agg.Restaurant()
	require.True(t, ok)
	assert.Equal(t, "rest-1", restaurant.ID)
	assert.Equal(t, "Main Canteen", restaurant.Name)
	assert.Equal(t, 1, agg.ItemQuantity("item-1"))
}

func TestAddItem_MissingIDRejected(t *testing.T) {
	agg := New(zap.NewNop())

	err := agg.AddItem(domain.CartItem{Name: "Tea"}, "rest-1", "Main Canteen")

	var invalid *errors.ErrInvalidItem
	require.ErrorAs(t, err, &invalid)
	assert.True(t, agg.IsEmpty())
	_, ok := agg.Restaurant()
	assert.False(t, ok)
}

func TestAddItem_SameItemBumpsQuantity(t *testing.T) {
	agg := New(zap.NewNop())

	for i := 0; i < 3; i++ {
		require.NoError(t, agg.AddItem(testItem("item-1", "Tea", 20), "rest-1", "Main Canteen"))
	}

	assert.Equal(t, 3, agg.ItemQuantity("item-1"))
	assert.Equal(t, 3, agg.ItemCount())
	assert.Len(t, agg.Items(), 1)
}

func TestAddItem_CrossVendorConflictLeavesCartUnchanged(t *testing.T) {
	agg := New(zap.NewNop())
	require.NoError(t, agg.AddItem(testItem("item-1", "Tea", 20), "rest-1", "Main Canteen"))

	err := agg.AddItem(testItem("item-9", "Maggi", 40), "rest-2", "Night Mess")

	var conflict *errors.ErrCrossVendorConflict
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "Main Canteen", conflict.CurrentRestaurantName)
	assert.Equal(t, "rest-2", conflict.NewRestaurantID)
	assert.Equal(t, "item-9", conflict.ItemID)

	// Reject-by-default: nothing merged, nothing replaced
	restaurant, ok := agg.Restaurant()
	require.True(t, ok)
	assert.Equal(t, "rest-1", restaurant.ID)
	assert.Equal(t, 0, agg.ItemQuantity("item-9"))
	assert.Equal(t, 1, agg.ItemCount())
}

func TestReplaceWith_ConfirmsVendorSwitch(t *testing.T) {
	agg := New(zap.NewNop())
	require.NoError(t, agg.AddItem(testItem("item-1", "Tea", 20), "rest-1", "Main Canteen"))
	require.NoError(t, agg.AddItem(testItem("item-1", "Tea", 20), "rest-1", "Main Canteen"))

	require.NoError(t, agg.ReplaceWith(testItem("item-9", "Maggi", 40), "rest-2", "Night Mess"))

	restaurant, ok := agg.Restaurant()
	require.True(t, ok)
	assert.Equal(t, "rest-2", restaurant.ID)
	assert.Equal(t, 1, agg.ItemCount())
	assert.Equal(t, 1, agg.ItemQuantity("item-9"))
	assert.Equal(t, 0, agg.ItemQuantity("item-1"))
}

func TestAddItem_AllItemsShareRestaurantID(t *testing.T) {
	agg := New(zap.NewNop())
	require.NoError(t, agg.AddItem(testItem("item-1", "Tea", 20), "rest-1", "Main Canteen"))
	require.NoError(t, agg.AddItem(testItem("item-2", "Dosa", 60), "rest-1", "Main Canteen"))

	for _, item := range agg.Items() {
		assert.Equal(t, "rest-1", item.RestaurantID)
	}
}

func TestDecreaseOrRemove_DecrementsThenRemoves(t *testing.T) {
	agg := New(zap.NewNop())
	require.NoError(t, agg.AddItem(testItem("item-1", "Tea", 20), "rest-1", "Main Canteen"))
	require.NoError(t, agg.AddItem(testItem("item-1", "Tea", 20), "rest-1", "Main Canteen"))

	agg.DecreaseOrRemove("item-1")
	assert.Equal(t, 1, agg.ItemQuantity("item-1"))

	agg.DecreaseOrRemove("item-1")
	assert.Equal(t, 0, agg.ItemQuantity("item-1"))
	assert.True(t, agg.IsEmpty())

	// Emptying the cart unsets the restaurant
	_, ok := agg.Restaurant()
	assert.False(t, ok)
	assert.Equal(t, 0, agg.ItemCount())
	assert.Equal(t, 0.0, agg.Total())
}

func TestDecreaseOrRemove_AbsentItemIsNoOp(t *testing.T) {
	agg := New(zap.NewNop())
	require.NoError(t, agg.AddItem(testItem("item-1", "Tea", 20), "rest-1", "Main Canteen"))

	agg.DecreaseOrRemove("item-404")

	assert.Equal(t, 1, agg.ItemCount())
}

func TestSetQuantity_OverwritesDirectly(t *testing.T) {
	agg := New(zap.NewNop())
	require.NoError(t, agg.AddItem(testItem("item-1", "Tea", 20), "rest-1", "Main Canteen"))

	agg.SetQuantity("item-1", 5)
	assert.Equal(t, 5, agg.ItemQuantity("item-1"))

	agg.SetQuantity("item-1", 2)
	assert.Equal(t, 2, agg.ItemQuantity("item-1"))
}

func TestSetQuantity_ZeroRemoves(t *testing.T) {
	agg := New(zap.NewNop())
	require.NoError(t, agg.AddItem(testItem("item-1", "Tea", 20), "rest-1", "Main Canteen"))

	agg.SetQuantity("item-1", 0)

	assert.True(t, agg.IsEmpty())
	_, ok := agg.Restaurant()
	assert.False(t, ok)
}

func TestSetQuantity_AbsentItemIsNoOp(t *testing.T) {
	agg := New(zap.NewNop())
	require.NoError(t, agg.AddItem(testItem("item-1", "Tea", 20), "rest-1", "Main Canteen"))

	agg.SetQuantity("item-404", 3)

	assert.Equal(t, 0, agg.ItemQuantity("item-404"))
	assert.Equal(t, 1, agg.ItemCount())
}

func TestClear_EmptiesUnconditionally(t *testing.T) {
	agg := New(zap.NewNop())
	require.NoError(t, agg.AddItem(testItem("item-1", "Tea", 20), "rest-1", "Main Canteen"))
	require.NoError(t, agg.AddItem(testItem("item-2", "Dosa", 60), "rest-1", "Main Canteen"))

	agg.Clear()

	assert.True(t, agg.IsEmpty())
	assert.Equal(t, 0, agg.ItemCount())
	_, ok := agg.Restaurant()
	assert.False(t, ok)
}

func TestTotal_SumsPriceTimesQuantity(t *testing.T) {
	agg := New(zap.NewNop())
	require.NoError(t, agg.AddItem(testItem("item-1", "Thali", 100), "rest-1", "Main Canteen"))
	require.NoError(t, agg.AddItem(testItem("item-1", "Thali", 100), "rest-1", "Main Canteen"))
	require.NoError(t, agg.AddItem(testItem("item-2", "Lassi", 50), "rest-1", "Main Canteen"))

	assert.Equal(t, 250.0, agg.Total())
}

func TestTotal_NaNPriceContributesZero(t *testing.T) {
	agg := New(zap.NewNop())
	require.NoError(t, agg.AddItem(testItem("item-1", "Tea", 20), "rest-1", "Main Canteen"))

	broken := testItem("item-2", "Mystery", math.NaN())
	require.NoError(t, agg.AddItem(broken, "rest-1", "Main Canteen"))

	total := agg.Total()
	assert.False(t, math.IsNaN(total))
	assert.Equal(t, 20.0, total)
}

func TestItems_PreservesInsertionOrder(t *testing.T) {
	agg := New(zap.NewNop())
	require.NoError(t, agg.AddItem(testItem("item-b", "Dosa", 60), "rest-1", "Main Canteen"))
	require.NoError(t, agg.AddItem(testItem("item-a", "Tea", 20), "rest-1", "Main Canteen"))
	require.NoError(t, agg.AddItem(testItem("item-b", "Dosa", 60), "rest-1", "Main Canteen"))

	items := agg.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "item-b", items[0].ItemID)
	assert.Equal(t, "item-a", items[1].ItemID)
}

func TestOnChange_FiresOnEveryMutation(t *testing.T) {
	agg := New(zap.NewNop())

	fired := 0
	agg.OnChange(func() { fired++ })

	require.NoError(t, agg.AddItem(testItem("item-1", "Tea", 20), "rest-1", "Main Canteen"))
	agg.SetQuantity("item-1", 4)
	agg.DecreaseOrRemove("item-1")
	agg.Clear()

	assert.Equal(t, 4, fired)
}

func TestOnChange_NotFiredOnRejectedAdd(t *testing.T) {
	agg := New(zap.NewNop())
	require.NoError(t, agg.AddItem(testItem("item-1", "Tea", 20), "rest-1", "Main Canteen"))

	fired := 0
	agg.OnChange(func() { fired++ })

	_ = agg.AddItem(testItem("item-9", "Maggi", 40), "rest-2", "Night Mess")

	assert.Equal(t, 0, fired)
}
