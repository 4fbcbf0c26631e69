package voucher

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// HasMalformedEntries reports whether a stored vouchers value still carries an entry
// without a usable id: a null element, a record whose voucherId is missing or null, or a
// map key that is empty or a stringified null.
func HasMalformedEntries(raw bson.RawValue) bool {
	switch raw.Type {
	case bsontype.Array:
		values, err := raw.Array().Values()
		if err != nil {
			return true
		}
		for _, v := range values {
			if isNullish(v) {
				return true
			}
			if v.Type == bsontype.EmbeddedDocument && isNullish(v.Document().Lookup("voucherId")) {
				return true
			}
		}
	case bsontype.EmbeddedDocument:
		elems, err := raw.Document().Elements()
		if err != nil {
			return true
		}
		for _, e := range elems {
			switch e.Key() {
			case "", "null", "undefined":
				return true
			}
		}
	}
	return false
}
