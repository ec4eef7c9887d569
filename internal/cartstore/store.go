// Package cartstore bridges the in-memory cart and a durable string-keyed
// blob store that survives restarts. It understands two on-disk shapes: the
// current multi-group format and the legacy single-group format, which is
// migrated on first read.
package cartstore

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/freshfold/laundrokart/internal/domain/cart"
)

// Storage keys. The legacy trio predates grouped carts and is kept only so
// old carts survive the format change.
const (
	keyCartGroups   = "cartGroups"
	keyLegacyItems  = "cartItems"
	keyLegacyLabel  = "serviceType"
	keyLegacyRef    = "serviceId"
	keyOrderHandoff = "orderData"
)

// defaultServiceLabel is assumed for legacy carts that never recorded one.
const defaultServiceLabel = "Wash & Fold"

// ErrCorruptLegacyCart is returned when the legacy item list cannot be
// parsed. There is no further fallback, so the load fails as a whole.
var ErrCorruptLegacyCart = errors.New("corrupt legacy cart data")

// KV is a durable session-scoped key-value store of JSON blobs.
type KV interface {
	// Get returns the stored value and whether the key exists.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
}

// Store reads and writes a cart's serialized form through a KV.
type Store struct {
	kv KV
}

// New returns a Store over the given KV.
func New(kv KV) *Store {
	return &Store{kv: kv}
}

// Load reads the cart, trying formats in order: current, legacy, empty.
// A current-format parse failure is non-fatal and falls through to the legacy
// shape; legacy corruption propagates. A cart recovered from the legacy shape
// is re-persisted in the current format before returning.
func (s *Store) Load(ctx context.Context) (cart.Cart, error) {
	c, ok, err := s.loadCurrent(ctx)
	if err != nil {
		return cart.Cart{}, err
	}
	if ok {
		return c, nil
	}

	c, ok, err = s.loadLegacy(ctx)
	if err != nil {
		return cart.Cart{}, err
	}
	if !ok {
		return cart.Cart{}, nil
	}

	// Migrate immediately so the legacy keys are not consulted again.
	if err := s.Save(ctx, &c); err != nil {
		return cart.Cart{}, errors.Wrap(err, "persist migrated cart")
	}
	return c, nil
}

// loadCurrent attempts the current multi-group format. Unparsable or empty
// data reports ok=false so the caller falls through to the legacy shape.
func (s *Store) loadCurrent(ctx context.Context) (cart.Cart, bool, error) {
	raw, found, err := s.kv.Get(ctx, keyCartGroups)
	if err != nil {
		return cart.Cart{}, false, errors.Wrap(err, "read cart groups")
	}
	if !found {
		return cart.Cart{}, false, nil
	}

	c, err := decodeGroups(raw)
	if err != nil || c.Empty() {
		return cart.Cart{}, false, nil
	}
	return c, true, nil
}

// loadLegacy attempts the legacy single-group format: a flat item list plus a
// separately stored service label and ref.
func (s *Store) loadLegacy(ctx context.Context) (cart.Cart, bool, error) {
	raw, found, err := s.kv.Get(ctx, keyLegacyItems)
	if err != nil {
		return cart.Cart{}, false, errors.Wrap(err, "read legacy cart items")
	}
	if !found {
		return cart.Cart{}, false, nil
	}

	items, err := decodeItems(raw)
	if err != nil {
		return cart.Cart{}, false, errors.Wrap(ErrCorruptLegacyCart, err.Error())
	}

	label := s.stringKey(ctx, keyLegacyLabel, defaultServiceLabel)
	ref := s.stringKey(ctx, keyLegacyRef, "")

	c := cart.Cart{}
	if len(items) > 0 {
		c.Groups = []cart.Group{{
			ServiceLabel: label,
			ServiceRef:   ref,
			Items:        items,
		}}
	}
	return c, true, nil
}

func (s *Store) stringKey(ctx context.Context, key, fallback string) string {
	raw, found, err := s.kv.Get(ctx, key)
	if err != nil || !found || len(raw) == 0 {
		return fallback
	}
	return decodeString(raw, fallback)
}

// Save persists a non-empty cart in the current format. An empty cart deletes
// every cart key instead; an empty placeholder is never written.
func (s *Store) Save(ctx context.Context, c *cart.Cart) error {
	if c.Empty() {
		err := s.kv.Delete(ctx, keyCartGroups, keyLegacyItems, keyLegacyLabel, keyLegacyRef)
		return errors.Wrap(err, "delete cart keys")
	}

	raw, err := encodeGroups(c)
	if err != nil {
		return errors.Wrap(err, "encode cart groups")
	}
	return errors.Wrap(s.kv.Set(ctx, keyCartGroups, raw), "write cart groups")
}

// SaveHandoff mirrors the checkout handoff payload to the store, where the
// confirmation flow picks it up.
func (s *Store) SaveHandoff(ctx context.Context, h Handoff) error {
	raw, err := encodeHandoff(h)
	if err != nil {
		return errors.Wrap(err, "encode order handoff")
	}
	return errors.Wrap(s.kv.Set(ctx, keyOrderHandoff, raw), "write order handoff")
}
