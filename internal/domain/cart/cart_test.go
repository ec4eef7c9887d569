package cart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func item(id string, qty int) LineItem {
	return LineItem{
		ID:        id,
		Name:      "Item " + id,
		UnitPrice: decimal.NewFromInt(2),
		Quantity:  qty,
	}
}

func TestAddItems_NewGroup(t *testing.T) {
	c := Cart{}
	c.AddItems("Wash & Fold", "svc-1", []LineItem{item("shirt", 2)})

	require.Len(t, c.Groups, 1)
	assert.Equal(t, "Wash & Fold", c.Groups[0].ServiceLabel)
	assert.Equal(t, "svc-1", c.Groups[0].ServiceRef)
	require.Len(t, c.Groups[0].Items, 1)
	assert.Equal(t, 2, c.Groups[0].Items[0].Quantity)
}

func TestAddItems_MergesByServiceRef(t *testing.T) {
	c := Cart{}
	c.AddItems("Wash & Fold", "svc-1", []LineItem{item("shirt", 2)})
	c.AddItems("Wash & Fold", "svc-1", []LineItem{item("shirt", 3), item("towel", 1)})

	require.Len(t, c.Groups, 1)
	require.Len(t, c.Groups[0].Items, 2)
	assert.Equal(t, 5, c.Groups[0].Items[0].Quantity)
	assert.Equal(t, 1, c.Groups[0].Items[1].Quantity)
}

func TestAddItems_EmptyRefNeverMerges(t *testing.T) {
	c := Cart{}
	c.AddItems("Wash & Fold", "", []LineItem{item("shirt", 1)})
	c.AddItems("Wash & Fold", "", []LineItem{item("shirt", 1)})

	assert.Len(t, c.Groups, 2)
}

func TestAddItems_DropsNonPositiveQuantities(t *testing.T) {
	c := Cart{}
	c.AddItems("Wash & Fold", "svc-1", []LineItem{item("shirt", 0), item("towel", -2)})
	assert.True(t, c.Empty())

	c.AddItems("Wash & Fold", "svc-1", []LineItem{item("shirt", 0), item("towel", 1)})
	require.Len(t, c.Groups, 1)
	require.Len(t, c.Groups[0].Items, 1)
	assert.Equal(t, "towel", c.Groups[0].Items[0].ID)
}

func TestChangeQuantity_Increment(t *testing.T) {
	c := Cart{}
	c.AddItems("Wash & Fold", "svc-1", []LineItem{item("shirt", 2)})

	require.NoError(t, c.ChangeQuantity(0, "shirt", 3))
	assert.Equal(t, 5, c.Groups[0].Items[0].Quantity)
}

func TestChangeQuantity_DropToZeroRemovesItem(t *testing.T) {
	c := Cart{}
	c.AddItems("Wash & Fold", "svc-1", []LineItem{item("shirt", 2), item("towel", 1)})

	require.NoError(t, c.ChangeQuantity(0, "shirt", -2))
	require.Len(t, c.Groups, 1)
	require.Len(t, c.Groups[0].Items, 1)
	assert.Equal(t, "towel", c.Groups[0].Items[0].ID)
}

func TestChangeQuantity_LastItemPrunesGroup(t *testing.T) {
	c := Cart{}
	c.AddItems("Wash & Fold", "svc-1", []LineItem{item("shirt", 1)})
	c.AddItems("Ironing", "svc-2", []LineItem{item("dress", 1)})

	require.NoError(t, c.ChangeQuantity(0, "shirt", -5))
	require.Len(t, c.Groups, 1)
	assert.Equal(t, "svc-2", c.Groups[0].ServiceRef)
}

func TestChangeQuantity_Errors(t *testing.T) {
	c := Cart{}
	c.AddItems("Wash & Fold", "svc-1", []LineItem{item("shirt", 1)})

	assert.ErrorIs(t, c.ChangeQuantity(5, "shirt", 1), ErrGroupNotFound)
	assert.ErrorIs(t, c.ChangeQuantity(-1, "shirt", 1), ErrGroupNotFound)
	assert.ErrorIs(t, c.ChangeQuantity(0, "missing", 1), ErrItemNotFound)
}

func TestRemoveItem_IgnoresQuantity(t *testing.T) {
	c := Cart{}
	c.AddItems("Wash & Fold", "svc-1", []LineItem{item("shirt", 9), item("towel", 1)})

	require.NoError(t, c.RemoveItem(0, "shirt"))
	require.Len(t, c.Groups[0].Items, 1)
	assert.Equal(t, "towel", c.Groups[0].Items[0].ID)
}

func TestRemoveGroup_Reindexes(t *testing.T) {
	c := Cart{}
	c.AddItems("Wash & Fold", "svc-1", []LineItem{item("shirt", 1)})
	c.AddItems("Ironing", "svc-2", []LineItem{item("dress", 1)})
	c.AddItems("Dry Cleaning", "svc-3", []LineItem{item("coat", 1)})

	require.NoError(t, c.RemoveGroup(1))
	require.Len(t, c.Groups, 2)
	assert.Equal(t, "svc-1", c.Groups[0].ServiceRef)
	assert.Equal(t, "svc-3", c.Groups[1].ServiceRef)

	assert.ErrorIs(t, c.RemoveGroup(2), ErrGroupNotFound)
}

func TestClone_Independent(t *testing.T) {
	c := Cart{}
	c.AddItems("Wash & Fold", "svc-1", []LineItem{item("shirt", 1)})

	clone := c.Clone()
	require.NoError(t, c.ChangeQuantity(0, "shirt", 4))

	assert.Equal(t, 5, c.Groups[0].Items[0].Quantity)
	assert.Equal(t, 1, clone.Groups[0].Items[0].Quantity)
}

func TestItemCount(t *testing.T) {
	c := Cart{}
	assert.Equal(t, 0, c.ItemCount())

	c.AddItems("Wash & Fold", "svc-1", []LineItem{item("shirt", 3), item("towel", 1)})
	c.AddItems("Ironing", "svc-2", []LineItem{item("dress", 2)})
	assert.Equal(t, 3, c.ItemCount())
}
