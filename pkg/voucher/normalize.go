package voucher

import (
	"cmp"
	"math"

	"github.com/cockroachdb/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

var (
	ErrUnsupportedShape = errors.New("unsupported vouchers encoding")
	ErrInvalidID        = errors.New("invalid voucher id")
)

// QuantityPolicy decides what a record with a zero or negative quantity counts as.
type QuantityPolicy int

const (
	// QuantityDefaultToOne counts zero and negative quantities as a single redemption,
	// the same as a missing quantity.
	QuantityDefaultToOne QuantityPolicy = iota
	// QuantityDropNonPositive drops records whose quantity is explicitly zero or negative.
	QuantityDropNonPositive
)

func ParseQuantityPolicy(s string) (QuantityPolicy, error) {
	switch s {
	case "", "default":
		return QuantityDefaultToOne, nil
	case "drop":
		return QuantityDropNonPositive, nil
	}
	return 0, errors.Newf("unknown zero-quantity policy %q (want default or drop)", s)
}

type Result struct {
	Shape    Shape
	Holdings Holdings
	// Dropped counts array elements excluded as malformed.
	Dropped int
	// NeedsWrite is set when the stored value is not already in canonical form.
	NeedsWrite bool
}

type Normalizer struct {
	ids    IDValidator
	policy QuantityPolicy
}

func NewNormalizer(ids IDValidator, policy QuantityPolicy) *Normalizer {
	if ids == nil {
		ids = KeySafeIDs
	}
	return &Normalizer{ids: ids, policy: policy}
}

// ValidID reports whether id would survive normalization.
func (n *Normalizer) ValidID(id string) bool {
	return n.ids.Valid(id)
}

// Normalize converts any stored vouchers encoding to Holdings. Malformed array elements
// are dropped silently. A value already in map form is passed through without
// re-validating its keys.
func (n *Normalizer) Normalize(raw bson.RawValue) (Result, error) {
	shape := DetectShape(raw)
	res := Result{Shape: shape}

	var err error
	switch shape {
	case ShapeAbsent:
		res.Holdings = Holdings{}
	case ShapeIDList:
		res.Holdings, res.Dropped, err = n.fromIDList(raw.Array())
		res.NeedsWrite = true
	case ShapeRecordList:
		res.Holdings, res.Dropped, err = n.fromRecordList(raw.Array())
		res.NeedsWrite = true
	case ShapeMap:
		res.Holdings, err = fromMap(raw.Document())
	default:
		return res, errors.Wrapf(ErrUnsupportedShape, "bson type %s", raw.Type)
	}
	if err != nil {
		return res, errors.Wrapf(err, "normalize %s", shape)
	}
	return res, nil
}

func (n *Normalizer) fromIDList(arr bson.Raw) (Holdings, int, error) {
	values, err := arr.Values()
	if err != nil {
		return nil, 0, err
	}

	out := Holdings{}
	dropped := 0
	for _, v := range values {
		id, ok := identifier(v)
		if !ok || !n.ids.Valid(id) {
			dropped++
			continue
		}
		out.add(id, 1)
	}
	return out, dropped, nil
}

func (n *Normalizer) fromRecordList(arr bson.Raw) (Holdings, int, error) {
	values, err := arr.Values()
	if err != nil {
		return nil, 0, err
	}

	out := Holdings{}
	dropped := 0
	for _, v := range values {
		if v.Type != bsontype.EmbeddedDocument {
			// bare ids left over from the legacy encoding
			id, ok := identifier(v)
			if !ok || !n.ids.Valid(id) {
				dropped++
				continue
			}
			out.add(id, 1)
			continue
		}

		rec := v.Document()
		id, ok := identifier(rec.Lookup("voucherId"))
		if !ok || !n.ids.Valid(id) {
			dropped++
			continue
		}
		qty, ok := n.quantity(rec.Lookup("quantity"))
		if !ok {
			dropped++
			continue
		}
		out.add(id, qty)
	}
	return out, dropped, nil
}

// quantity resolves a record's quantity. Missing or non-numeric quantities count once.
func (n *Normalizer) quantity(v bson.RawValue) (int, bool) {
	q, sign, ok := integer(v)
	if !ok {
		return 1, true
	}
	if q >= 1 {
		return q, true
	}
	if n.policy == QuantityDropNonPositive && sign <= 0 {
		return 0, false
	}
	return 1, true
}

func fromMap(doc bson.Raw) (Holdings, error) {
	elems, err := doc.Elements()
	if err != nil {
		return nil, err
	}

	out := make(Holdings, len(elems))
	for _, e := range elems {
		if q, _, ok := integer(e.Value()); ok {
			out[e.Key()] = q
			continue
		}
		out[e.Key()] = 1
	}
	return out, nil
}

// integer reads a numeric value truncated toward zero and clamped to the int range.
// sign is the sign of the stored value, so 0.5 is positive although it truncates to 0.
func integer(v bson.RawValue) (n int, sign int, ok bool) {
	switch v.Type {
	case bsontype.Int32:
		i := int(v.Int32())
		return i, cmp.Compare(i, 0), true
	case bsontype.Int64:
		i := v.Int64()
		return clampInt64(i), cmp.Compare(i, 0), true
	case bsontype.Double:
		f := v.Double()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, 0, false
		}
		sign = cmp.Compare(f, 0)
		switch {
		case f >= math.MaxInt:
			return math.MaxInt, sign, true
		case f <= math.MinInt:
			return math.MinInt, sign, true
		}
		return int(f), sign, true
	}
	return 0, 0, false
}

func clampInt64(i int64) int {
	switch {
	case i > math.MaxInt:
		return math.MaxInt
	case i < math.MinInt:
		return math.MinInt
	}
	return int(i)
}
