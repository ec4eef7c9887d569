// Package cart implements the cart aggregation and selection engine: line
// items grouped by service offering, quantity mutations that never leave an
// empty group behind, and the checkbox selection state that decides which
// items count towards the checkout total.
package cart

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Sentinel errors for cart mutations.
var (
	ErrGroupNotFound = errors.New("cart group not found")
	ErrItemNotFound  = errors.New("cart item not found")
)

// LineItem is a single catalog entry with a quantity inside a group.
// Quantity is always positive: an item that would drop to zero or below is
// removed from its group instead.
type LineItem struct {
	ID        string
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int
	ImageRef  string
}

// Group is a cart subdivision for one service offering. ServiceRef correlates
// the group to a backend service entity and acts as the merge key; it may be
// empty for groups created before the service was known.
type Group struct {
	ServiceLabel string
	ServiceRef   string
	Items        []LineItem
}

// Cart is the aggregate of all groups, in insertion order. The order carries
// no meaning beyond stable display. A Cart owns its groups and items outright.
//
// Invariants, maintained by every mutation:
//   - every group has at least one item
//   - no two groups share the same non-empty ServiceRef
//   - every item quantity is positive
type Cart struct {
	Groups []Group
}

// Empty reports whether the cart has no groups.
func (c *Cart) Empty() bool {
	return len(c.Groups) == 0
}

// ItemCount returns the number of distinct line items across all groups.
func (c *Cart) ItemCount() int {
	n := 0
	for _, g := range c.Groups {
		n += len(g.Items)
	}
	return n
}

// groupIndexByRef returns the index of the group with the given non-empty
// service ref, or -1.
func (c *Cart) groupIndexByRef(serviceRef string) int {
	if serviceRef == "" {
		return -1
	}
	for i, g := range c.Groups {
		if g.ServiceRef == serviceRef {
			return i
		}
	}
	return -1
}

// itemIndex returns the index of the item with the given ID inside the group,
// or -1.
func (g *Group) itemIndex(itemID string) int {
	for i, item := range g.Items {
		if item.ID == itemID {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy of the cart. Used by checkout to snapshot the
// groups without aliasing the live cart.
func (c *Cart) Clone() Cart {
	out := Cart{Groups: make([]Group, len(c.Groups))}
	for i, g := range c.Groups {
		items := make([]LineItem, len(g.Items))
		copy(items, g.Items)
		out.Groups[i] = Group{
			ServiceLabel: g.ServiceLabel,
			ServiceRef:   g.ServiceRef,
			Items:        items,
		}
	}
	return out
}
