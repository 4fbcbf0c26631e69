package voucher

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IDValidator decides whether a voucher id is in the accepted format.
type IDValidator interface {
	Valid(id string) bool
}

// IDValidatorFunc adapts a plain function to IDValidator.
type IDValidatorFunc func(id string) bool

func (f IDValidatorFunc) Valid(id string) bool { return f(id) }

// KeySafeIDs accepts any id that can be stored as a key of the users.vouchers document.
// The literal strings "null" and "undefined" are what older clients wrote for a missing id.
var KeySafeIDs IDValidator = IDValidatorFunc(func(id string) bool {
	switch {
	case id == "", id == "null", id == "undefined":
		return false
	case strings.HasPrefix(id, "$"):
		return false
	case strings.ContainsAny(id, ".\x00"):
		return false
	}
	return true
})

// ObjectIDs only accepts 24 character hex object ids.
var ObjectIDs IDValidator = IDValidatorFunc(func(id string) bool {
	return primitive.IsValidObjectID(id)
})

// identifier reads a bare id element: a string or an ObjectID. Anything else, null
// included, is not an identifier.
func identifier(v bson.RawValue) (string, bool) {
	switch v.Type {
	case bsontype.String:
		return v.StringValue(), true
	case bsontype.ObjectID:
		return v.ObjectID().Hex(), true
	}
	return "", false
}

func isNullish(v bson.RawValue) bool {
	return v.Type == 0 || v.Type == bsontype.Null || v.Type == bsontype.Undefined
}
