package domain

import (
	"math"

	"github.com/chommo/shopfront/pkg/platformsdk"
)

// Cart is the ordered list of items the buyer intends to purchase. It is
// stored wholesale as one serialized value per session; there is no partial
// update protocol.
type Cart []platformsdk.CartItem

// Total returns the cart total in VND. Any overflow saturates to the
// maximum so a corrupt cart can never look affordable.
func (c Cart) Total() int64 {
	var total int64
	for _, item := range c {
		qty := int64(item.Quantity)
		line := item.Price * qty
		if qty != 0 && (line/qty != item.Price || line < 0) {
			return math.MaxInt64
		}
		total += line
		if total < 0 {
			return math.MaxInt64
		}
	}
	return total
}

// IsEmpty reports whether the cart has no items.
func (c Cart) IsEmpty() bool { return len(c) == 0 }
