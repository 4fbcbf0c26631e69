package voucher

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// Shape is the encoding a users.vouchers value was written in.
type Shape int

const (
	ShapeUnknown Shape = iota
	// ShapeAbsent is a missing, null or undefined field.
	ShapeAbsent
	// ShapeIDList is the legacy array holding one id per redemption.
	ShapeIDList
	// ShapeRecordList is the intermediate array of {voucherId, quantity} records.
	ShapeRecordList
	// ShapeMap is the canonical embedded document of id -> quantity.
	ShapeMap
)

func (s Shape) String() string {
	switch s {
	case ShapeAbsent:
		return "absent"
	case ShapeIDList:
		return "id-list"
	case ShapeRecordList:
		return "record-list"
	case ShapeMap:
		return "map"
	}
	return "unknown"
}

// DetectShape classifies a raw vouchers value. An array is a record list as soon as one
// element is a document; otherwise it is an id list, whatever its null or stray elements.
func DetectShape(raw bson.RawValue) Shape {
	switch {
	case isNullish(raw):
		return ShapeAbsent
	case raw.Type == bsontype.EmbeddedDocument:
		return ShapeMap
	case raw.Type != bsontype.Array:
		return ShapeUnknown
	}

	values, err := raw.Array().Values()
	if err != nil {
		return ShapeUnknown
	}
	for _, v := range values {
		if v.Type == bsontype.EmbeddedDocument {
			return ShapeRecordList
		}
	}
	return ShapeIDList
}
