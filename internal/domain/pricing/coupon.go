package pricing

import (
	"strings"

	"github.com/go-faster/errors"
)

// ErrInvalidCoupon is returned when a submitted code is not in the coupon
// table. It surfaces to the user as a form error, never as a fatal failure.
var ErrInvalidCoupon = errors.New("invalid coupon code")

// couponTable is the closed set of accepted codes. Codes are matched
// case-insensitively against these upper-case keys.
var couponTable = map[string]int{
	"SAVE10": 10,
	"SAVE20": 20,
}

// Coupon holds the last submitted code and the discount it earned. The zero
// value means no coupon applied.
type Coupon struct {
	Code            string
	DiscountPercent int
}

// ApplyCoupon matches code against the coupon table, ignoring case. A hit
// returns the coupon state with the code as typed by the user. A miss returns
// the zero state together with ErrInvalidCoupon, clearing any previously
// applied coupon on the caller's side.
func ApplyCoupon(code string) (Coupon, error) {
	pct, ok := couponTable[strings.ToUpper(code)]
	if !ok {
		return Coupon{}, ErrInvalidCoupon
	}
	return Coupon{Code: code, DiscountPercent: pct}, nil
}
