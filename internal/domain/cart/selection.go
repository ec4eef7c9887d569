package cart

// ItemKey identifies a line item for selection purposes: the ordinal of its
// group in the cart plus the item ID, which is unique within the group.
type ItemKey struct {
	Group  int
	ItemID string
}

// Selection tracks which groups and items are included in the checkout total.
//
// Cascade invariant: a group key is present iff every item of that group has
// its key present. Selection is never persisted; it is derived fresh from the
// loaded cart at session start (everything selected) and repaired after every
// structural cart mutation.
type Selection struct {
	Groups map[int]struct{}
	Items  map[ItemKey]struct{}
}

// NewSelection returns an empty selection.
func NewSelection() Selection {
	return Selection{
		Groups: make(map[int]struct{}),
		Items:  make(map[ItemKey]struct{}),
	}
}

// DefaultSelection returns the select-all state for the given cart. This is a
// pure function of the cart, independent of any UI lifecycle.
func DefaultSelection(c *Cart) Selection {
	s := NewSelection()
	for gi, g := range c.Groups {
		s.Groups[gi] = struct{}{}
		for _, item := range g.Items {
			s.Items[ItemKey{Group: gi, ItemID: item.ID}] = struct{}{}
		}
	}
	return s
}

// ItemSelected reports whether the item at (groupKey, itemID) is included.
func (s *Selection) ItemSelected(groupKey int, itemID string) bool {
	_, ok := s.Items[ItemKey{Group: groupKey, ItemID: itemID}]
	return ok
}

// GroupSelected reports whether the group key is included.
func (s *Selection) GroupSelected(groupKey int) bool {
	_, ok := s.Groups[groupKey]
	return ok
}

// ToggleGroup includes or excludes a whole group, cascading down to every
// current item of the group in both directions.
func (s *Selection) ToggleGroup(c *Cart, groupKey int, included bool) error {
	if groupKey < 0 || groupKey >= len(c.Groups) {
		return ErrGroupNotFound
	}

	if included {
		s.Groups[groupKey] = struct{}{}
		for _, item := range c.Groups[groupKey].Items {
			s.Items[ItemKey{Group: groupKey, ItemID: item.ID}] = struct{}{}
		}
		return nil
	}

	delete(s.Groups, groupKey)
	for _, item := range c.Groups[groupKey].Items {
		delete(s.Items, ItemKey{Group: groupKey, ItemID: item.ID})
	}
	return nil
}

// ToggleItem includes or excludes a single item. Selecting the last missing
// item of a group cascades up and marks the group selected. Deselecting any
// item unconditionally drops the group key, even when every other item stays
// selected. The asymmetry is deliberate product behavior; there is no
// separate indeterminate state.
func (s *Selection) ToggleItem(c *Cart, groupKey int, itemID string, included bool) error {
	if groupKey < 0 || groupKey >= len(c.Groups) {
		return ErrGroupNotFound
	}
	group := &c.Groups[groupKey]
	if group.itemIndex(itemID) == -1 {
		return ErrItemNotFound
	}

	key := ItemKey{Group: groupKey, ItemID: itemID}
	if included {
		s.Items[key] = struct{}{}
		if s.allItemsSelected(group, groupKey) {
			s.Groups[groupKey] = struct{}{}
		}
		return nil
	}

	delete(s.Items, key)
	delete(s.Groups, groupKey)
	return nil
}

func (s *Selection) allItemsSelected(g *Group, groupKey int) bool {
	for _, item := range g.Items {
		if _, ok := s.Items[ItemKey{Group: groupKey, ItemID: item.ID}]; !ok {
			return false
		}
	}
	return true
}

// rebase shifts selection keys after the group at removedKey was pruned from
// the cart: keys for the removed group are dropped and keys for groups past it
// move down one ordinal.
func (s *Selection) rebase(removedKey int) {
	groups := make(map[int]struct{}, len(s.Groups))
	for g := range s.Groups {
		switch {
		case g < removedKey:
			groups[g] = struct{}{}
		case g > removedKey:
			groups[g-1] = struct{}{}
		}
	}
	s.Groups = groups

	items := make(map[ItemKey]struct{}, len(s.Items))
	for key := range s.Items {
		switch {
		case key.Group < removedKey:
			items[key] = struct{}{}
		case key.Group > removedKey:
			items[ItemKey{Group: key.Group - 1, ItemID: key.ItemID}] = struct{}{}
		}
	}
	s.Items = items
}

// reconcile drops selection keys that no longer reference a live item and
// re-derives every group key from the cascade invariant. Called after
// structural cart mutations so the selection never holds dangling references.
func (s *Selection) reconcile(c *Cart) {
	for key := range s.Items {
		if key.Group < 0 || key.Group >= len(c.Groups) {
			delete(s.Items, key)
			continue
		}
		if c.Groups[key.Group].itemIndex(key.ItemID) == -1 {
			delete(s.Items, key)
		}
	}

	s.Groups = make(map[int]struct{}, len(c.Groups))
	for gi := range c.Groups {
		if s.allItemsSelected(&c.Groups[gi], gi) {
			s.Groups[gi] = struct{}{}
		}
	}
}
