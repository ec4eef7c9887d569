package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoGroupState(t *testing.T) *State {
	t.Helper()
	st := NewState(Cart{})
	st.AddItems("Wash & Fold", "svc-1", []LineItem{item("shirt", 2), item("towel", 1)})
	st.AddItems("Ironing", "svc-2", []LineItem{item("dress", 1)})
	return st
}

func TestDefaultSelection_SelectsEverything(t *testing.T) {
	st := twoGroupState(t)

	assert.True(t, st.Selection.GroupSelected(0))
	assert.True(t, st.Selection.GroupSelected(1))
	assert.True(t, st.Selection.ItemSelected(0, "shirt"))
	assert.True(t, st.Selection.ItemSelected(0, "towel"))
	assert.True(t, st.Selection.ItemSelected(1, "dress"))
}

func TestToggleGroup_CascadesDown(t *testing.T) {
	st := twoGroupState(t)

	require.NoError(t, st.ToggleGroup(0, false))
	assert.False(t, st.Selection.GroupSelected(0))
	assert.False(t, st.Selection.ItemSelected(0, "shirt"))
	assert.False(t, st.Selection.ItemSelected(0, "towel"))
	// The other group is untouched.
	assert.True(t, st.Selection.GroupSelected(1))

	require.NoError(t, st.ToggleGroup(0, true))
	assert.True(t, st.Selection.GroupSelected(0))
	assert.True(t, st.Selection.ItemSelected(0, "shirt"))
	assert.True(t, st.Selection.ItemSelected(0, "towel"))
}

func TestToggleItem_DeselectDropsGroupKey(t *testing.T) {
	st := twoGroupState(t)

	// Deselecting one item drops the group key even though the sibling stays
	// selected.
	require.NoError(t, st.ToggleItem(0, "shirt", false))
	assert.False(t, st.Selection.GroupSelected(0))
	assert.False(t, st.Selection.ItemSelected(0, "shirt"))
	assert.True(t, st.Selection.ItemSelected(0, "towel"))
}

func TestToggleItem_SelectingLastItemCascadesUp(t *testing.T) {
	st := twoGroupState(t)

	require.NoError(t, st.ToggleItem(0, "shirt", false))
	require.False(t, st.Selection.GroupSelected(0))

	require.NoError(t, st.ToggleItem(0, "shirt", true))
	assert.True(t, st.Selection.GroupSelected(0))
}

func TestToggleItem_Errors(t *testing.T) {
	st := twoGroupState(t)

	assert.ErrorIs(t, st.ToggleItem(9, "shirt", true), ErrGroupNotFound)
	assert.ErrorIs(t, st.ToggleItem(0, "missing", true), ErrItemNotFound)
	assert.ErrorIs(t, st.ToggleGroup(9, true), ErrGroupNotFound)
}

func TestRemoveGroup_RebasesSelectionOrdinals(t *testing.T) {
	st := NewState(Cart{})
	st.AddItems("Wash & Fold", "svc-1", []LineItem{item("shirt", 1)})
	st.AddItems("Ironing", "svc-2", []LineItem{item("dress", 1)})
	st.AddItems("Dry Cleaning", "svc-3", []LineItem{item("coat", 1)})

	// Exclude the last group, then remove the first: the exclusion must follow
	// the group to its new ordinal.
	require.NoError(t, st.ToggleGroup(2, false))
	require.NoError(t, st.RemoveGroup(0))

	require.Len(t, st.Cart.Groups, 2)
	assert.True(t, st.Selection.GroupSelected(0))
	assert.True(t, st.Selection.ItemSelected(0, "dress"))
	assert.False(t, st.Selection.GroupSelected(1))
	assert.False(t, st.Selection.ItemSelected(1, "coat"))
}

func TestChangeQuantity_PruneRebasesSelection(t *testing.T) {
	st := NewState(Cart{})
	st.AddItems("Wash & Fold", "svc-1", []LineItem{item("shirt", 1)})
	st.AddItems("Ironing", "svc-2", []LineItem{item("dress", 1)})

	require.NoError(t, st.ToggleItem(1, "dress", false))
	require.NoError(t, st.ChangeQuantity(0, "shirt", -1))

	require.Len(t, st.Cart.Groups, 1)
	assert.Equal(t, "svc-2", st.Cart.Groups[0].ServiceRef)
	assert.False(t, st.Selection.ItemSelected(0, "dress"))
	assert.False(t, st.Selection.GroupSelected(0))
}

func TestAddItems_NewItemsStartSelected(t *testing.T) {
	st := NewState(Cart{})
	st.AddItems("Wash & Fold", "svc-1", []LineItem{item("shirt", 1)})
	require.NoError(t, st.ToggleItem(0, "shirt", false))

	st.AddItems("Wash & Fold", "svc-1", []LineItem{item("towel", 1)})

	assert.True(t, st.Selection.ItemSelected(0, "towel"))
	// The previously deselected sibling stays deselected, so no group key.
	assert.False(t, st.Selection.ItemSelected(0, "shirt"))
	assert.False(t, st.Selection.GroupSelected(0))
}

func TestRestore_DropsDanglingKeys(t *testing.T) {
	st := twoGroupState(t)
	sel := st.Selection

	// Simulate a cart that shrank since the selection was taken.
	c := Cart{}
	c.AddItems("Wash & Fold", "svc-1", []LineItem{item("shirt", 2)})

	restored := Restore(c, sel)
	assert.True(t, restored.Selection.ItemSelected(0, "shirt"))
	assert.False(t, restored.Selection.ItemSelected(0, "towel"))
	assert.False(t, restored.Selection.ItemSelected(1, "dress"))
	// All surviving items are selected, so the group key is re-derived.
	assert.True(t, restored.Selection.GroupSelected(0))
}
