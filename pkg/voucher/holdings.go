package voucher

import (
	"math"
	"sort"

	"go.mongodb.org/mongo-driver/bson"
)

// Holdings maps a voucher id to how many times the user redeemed it. Every quantity is
// at least one; a voucher the user no longer holds has no key.
type Holdings map[string]int

// add saturates at math.MaxInt rather than wrapping negative.
func (h Holdings) add(id string, n int) {
	if h[id] > math.MaxInt-n {
		h[id] = math.MaxInt
		return
	}
	h[id] += n
}

// IDs returns the voucher ids in ascending order.
func (h Holdings) IDs() []string {
	ids := make([]string, 0, len(h))
	for id := range h {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (h Holdings) Clone() Holdings {
	out := make(Holdings, len(h))
	for id, n := range h {
		out[id] = n
	}
	return out
}

// Document renders the holdings as the embedded document stored in users.vouchers,
// keys sorted so equal holdings always serialize identically.
func (h Holdings) Document() bson.D {
	doc := make(bson.D, 0, len(h))
	for _, id := range h.IDs() {
		doc = append(doc, bson.E{Key: id, Value: h[id]})
	}
	return doc
}
