package cart

// State is the explicit cart state container: the cart contents plus the
// transient selection, kept consistent across mutations. Handlers hold one
// State per request instead of a process-wide singleton, so tests can run
// independent carts side by side.
type State struct {
	Cart      Cart
	Selection Selection
}

// NewState builds a State from a loaded cart with the default select-all
// selection.
func NewState(c Cart) *State {
	return &State{
		Cart:      c,
		Selection: DefaultSelection(&c),
	}
}

// Restore builds a State from a loaded cart and a previously derived
// selection, dropping any selection keys the cart no longer backs.
func Restore(c Cart, sel Selection) *State {
	st := &State{Cart: c, Selection: sel}
	st.Selection.reconcile(&st.Cart)
	return st
}

// AddItems merges items into the cart. Newly added items start selected,
// matching the select-all default for freshly loaded carts.
func (st *State) AddItems(serviceLabel, serviceRef string, items []LineItem) {
	before := len(st.Cart.Groups)
	target := st.Cart.groupIndexByRef(serviceRef)

	st.Cart.AddItems(serviceLabel, serviceRef, items)

	if target == -1 {
		if len(st.Cart.Groups) == before {
			return
		}
		target = len(st.Cart.Groups) - 1
	}
	for _, item := range items {
		if item.Quantity > 0 {
			st.Selection.Items[ItemKey{Group: target, ItemID: item.ID}] = struct{}{}
		}
	}
	st.Selection.reconcile(&st.Cart)
}

// ChangeQuantity applies a quantity delta and repairs the selection when the
// item or its whole group disappears.
func (st *State) ChangeQuantity(groupKey int, itemID string, delta int) error {
	_, groupPruned, err := st.Cart.changeQuantity(groupKey, itemID, delta)
	if err != nil {
		return err
	}
	if groupPruned {
		st.Selection.rebase(groupKey)
	}
	st.Selection.reconcile(&st.Cart)
	return nil
}

// RemoveItem deletes an item outright and repairs the selection.
func (st *State) RemoveItem(groupKey int, itemID string) error {
	_, groupPruned, err := st.Cart.removeItem(groupKey, itemID)
	if err != nil {
		return err
	}
	if groupPruned {
		st.Selection.rebase(groupKey)
	}
	st.Selection.reconcile(&st.Cart)
	return nil
}

// RemoveGroup deletes a whole group, purging and re-indexing selection keys.
func (st *State) RemoveGroup(groupKey int) error {
	if err := st.Cart.RemoveGroup(groupKey); err != nil {
		return err
	}
	st.Selection.rebase(groupKey)
	st.Selection.reconcile(&st.Cart)
	return nil
}

// ToggleGroup includes or excludes a whole group.
func (st *State) ToggleGroup(groupKey int, included bool) error {
	return st.Selection.ToggleGroup(&st.Cart, groupKey, included)
}

// ToggleItem includes or excludes a single item.
func (st *State) ToggleItem(groupKey int, itemID string, included bool) error {
	return st.Selection.ToggleItem(&st.Cart, groupKey, itemID, included)
}
