package cartstore

import (
	"encoding/json"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/freshfold/laundrokart/internal/domain/cart"
)

// flexID is an item identifier that tolerates both JSON strings and numbers
// on input. Legacy carts stored catalog IDs as bare numbers; everything is
// written back as a string.
type flexID string

func (f *flexID) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexID(n.String())
	return nil
}

// wireItem is the on-disk line item shape. Field names match the historic
// serialized form and must not change.
type wireItem struct {
	ID       flexID          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
	Image    string          `json:"image,omitempty"`
}

// wireGroup is the on-disk group shape of the current format.
type wireGroup struct {
	ServiceType string     `json:"serviceType"`
	ServiceID   string     `json:"serviceId"`
	Items       []wireItem `json:"items"`
}

// Handoff is the checkout payload mirrored to the store for the confirmation
// flow. Field names match the historic serialized form.
type Handoff struct {
	CartGroups   []cart.Group
	Subtotal     decimal.Decimal
	DeliveryCost decimal.Decimal
	Discount     decimal.Decimal
	Total        decimal.Decimal
}

type wireHandoff struct {
	CartGroups   []wireGroup     `json:"cartGroups"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	DeliveryCost decimal.Decimal `json:"deliveryCost"`
	Discount     decimal.Decimal `json:"discount"`
	Total        decimal.Decimal `json:"total"`
}

// decodeGroups parses the current multi-group format, normalizing away
// anything that would violate the cart invariants: empty groups and items
// with non-positive quantities.
func decodeGroups(raw []byte) (cart.Cart, error) {
	var groups []wireGroup
	if err := json.Unmarshal(raw, &groups); err != nil {
		return cart.Cart{}, errors.Wrap(err, "parse cart groups")
	}

	c := cart.Cart{}
	for _, g := range groups {
		items := itemsFromWire(g.Items)
		if len(items) == 0 {
			continue
		}
		c.Groups = append(c.Groups, cart.Group{
			ServiceLabel: g.ServiceType,
			ServiceRef:   g.ServiceID,
			Items:        items,
		})
	}
	return c, nil
}

// decodeItems parses the legacy flat item list.
func decodeItems(raw []byte) ([]cart.LineItem, error) {
	var items []wireItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, errors.Wrap(err, "parse legacy cart items")
	}
	return itemsFromWire(items), nil
}

// decodeString accepts both a raw string value and a JSON-encoded string.
func decodeString(raw []byte, fallback string) string {
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
		return fallback
	}
	return string(raw)
}

func encodeGroups(c *cart.Cart) ([]byte, error) {
	return json.Marshal(groupsToWire(c.Groups))
}

func encodeHandoff(h Handoff) ([]byte, error) {
	return json.Marshal(wireHandoff{
		CartGroups:   groupsToWire(h.CartGroups),
		Subtotal:     h.Subtotal,
		DeliveryCost: h.DeliveryCost,
		Discount:     h.Discount,
		Total:        h.Total,
	})
}

func groupsToWire(groups []cart.Group) []wireGroup {
	out := make([]wireGroup, len(groups))
	for i, g := range groups {
		items := make([]wireItem, len(g.Items))
		for j, item := range g.Items {
			items[j] = wireItem{
				ID:       flexID(item.ID),
				Name:     item.Name,
				Price:    item.UnitPrice,
				Quantity: item.Quantity,
				Image:    item.ImageRef,
			}
		}
		out[i] = wireGroup{
			ServiceType: g.ServiceLabel,
			ServiceID:   g.ServiceRef,
			Items:       items,
		}
	}
	return out
}

func itemsFromWire(items []wireItem) []cart.LineItem {
	out := make([]cart.LineItem, 0, len(items))
	for _, item := range items {
		if item.Quantity <= 0 {
			continue
		}
		out = append(out, cart.LineItem{
			ID:        string(item.ID),
			Name:      item.Name,
			UnitPrice: item.Price,
			Quantity:  item.Quantity,
			ImageRef:  item.Image,
		})
	}
	return out
}
