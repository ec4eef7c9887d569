package cart

// AddItems merges new line items into the cart. When a group with the same
// non-empty service ref already exists, items with a known ID have their
// quantity incremented (never overwritten) and unknown items are appended.
// Otherwise a new group is appended. Items with a non-positive quantity are
// ignored so the positive-quantity invariant holds at the boundary.
func (c *Cart) AddItems(serviceLabel, serviceRef string, items []LineItem) {
	valid := items[:0:0]
	for _, item := range items {
		if item.Quantity > 0 {
			valid = append(valid, item)
		}
	}
	if len(valid) == 0 {
		return
	}

	idx := c.groupIndexByRef(serviceRef)
	if idx == -1 {
		group := Group{
			ServiceLabel: serviceLabel,
			ServiceRef:   serviceRef,
			Items:        make([]LineItem, len(valid)),
		}
		copy(group.Items, valid)
		c.Groups = append(c.Groups, group)
		return
	}

	group := &c.Groups[idx]
	for _, item := range valid {
		if i := group.itemIndex(item.ID); i != -1 {
			group.Items[i].Quantity += item.Quantity
		} else {
			group.Items = append(group.Items, item)
		}
	}
}

// ChangeQuantity applies a quantity delta to the item at (groupKey, itemID).
// A resulting quantity of zero or below removes the item; the group is pruned
// when its last item goes. Deltas never clamp: going below one always removes.
func (c *Cart) ChangeQuantity(groupKey int, itemID string, delta int) error {
	_, _, err := c.changeQuantity(groupKey, itemID, delta)
	return err
}

func (c *Cart) changeQuantity(groupKey int, itemID string, delta int) (itemRemoved, groupPruned bool, err error) {
	if groupKey < 0 || groupKey >= len(c.Groups) {
		return false, false, ErrGroupNotFound
	}
	group := &c.Groups[groupKey]

	i := group.itemIndex(itemID)
	if i == -1 {
		return false, false, ErrItemNotFound
	}

	if newQty := group.Items[i].Quantity + delta; newQty > 0 {
		group.Items[i].Quantity = newQty
		return false, false, nil
	}

	group.Items = append(group.Items[:i], group.Items[i+1:]...)
	if len(group.Items) == 0 {
		c.pruneGroup(groupKey)
		return true, true, nil
	}
	return true, false, nil
}

// RemoveItem deletes the item at (groupKey, itemID) regardless of quantity,
// pruning the group if it is left empty.
func (c *Cart) RemoveItem(groupKey int, itemID string) error {
	_, _, err := c.removeItem(groupKey, itemID)
	return err
}

func (c *Cart) removeItem(groupKey int, itemID string) (itemRemoved, groupPruned bool, err error) {
	if groupKey < 0 || groupKey >= len(c.Groups) {
		return false, false, ErrGroupNotFound
	}
	group := &c.Groups[groupKey]

	i := group.itemIndex(itemID)
	if i == -1 {
		return false, false, ErrItemNotFound
	}

	group.Items = append(group.Items[:i], group.Items[i+1:]...)
	if len(group.Items) == 0 {
		c.pruneGroup(groupKey)
		return true, true, nil
	}
	return true, false, nil
}

// RemoveGroup deletes an entire group and re-indexes the remaining groups.
func (c *Cart) RemoveGroup(groupKey int) error {
	if groupKey < 0 || groupKey >= len(c.Groups) {
		return ErrGroupNotFound
	}
	c.pruneGroup(groupKey)
	return nil
}

func (c *Cart) pruneGroup(groupKey int) {
	c.Groups = append(c.Groups[:groupKey], c.Groups[groupKey+1:]...)
}
