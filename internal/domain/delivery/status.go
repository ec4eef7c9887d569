// Package delivery defines the fixed linear order status progression used by
// the delivery and staff dashboards.
package delivery

import "github.com/go-faster/errors"

// Status is one stage of the order delivery lifecycle.
type Status string

// The full progression, in order. Delivered is terminal.
const (
	StatusConfirmed      Status = "confirmed"
	StatusPickedUp       Status = "picked_up"
	StatusInProcess      Status = "in_process"
	StatusReady          Status = "ready"
	StatusOutForDelivery Status = "out_for_delivery"
	StatusDelivered      Status = "delivered"
)

// ErrUnknownStatus is returned by Parse for a value outside the progression.
var ErrUnknownStatus = errors.New("unknown delivery status")

// next is the total successor table. Delivered has no entry.
var next = map[Status]Status{
	StatusConfirmed:      StatusPickedUp,
	StatusPickedUp:       StatusInProcess,
	StatusInProcess:      StatusReady,
	StatusReady:          StatusOutForDelivery,
	StatusOutForDelivery: StatusDelivered,
}

// Next returns the successor status. ok is false for the terminal status and
// for values outside the progression.
func (s Status) Next() (Status, bool) {
	n, ok := next[s]
	return n, ok
}

// Terminal reports whether the status has no successor.
func (s Status) Terminal() bool {
	return s == StatusDelivered
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	if _, ok := next[s]; ok {
		return true
	}
	return s == StatusDelivered
}

// Parse converts a wire string into a Status.
func Parse(v string) (Status, error) {
	s := Status(v)
	if !s.Valid() {
		return "", errors.Wrapf(ErrUnknownStatus, "%q", v)
	}
	return s, nil
}

// DashboardViews maps the delivery dashboard listing names to the statuses
// each view filters on. An order leaves a filtered view as soon as its status
// stops matching the view's predicate.
var DashboardViews = map[string][]Status{
	"assigned":   {StatusConfirmed, StatusPickedUp},
	"in-transit": {StatusInProcess, StatusReady, StatusOutForDelivery},
	"completed":  {StatusDelivered},
}
