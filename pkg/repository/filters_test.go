package repository

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestGuardClause(t *testing.T) {
	t.Run("missing field is guarded by non-existence", func(t *testing.T) {
		got := guardClause(bson.RawValue{})

		assert.Equal(t, bson.E{Key: "vouchers", Value: bson.M{"$exists": false}}, got)
	})

	t.Run("stored value is compared whole", func(t *testing.T) {
		typ, data, err := bson.MarshalValue(bson.A{"v1", "v1"})
		require.NoError(t, err)
		stored := bson.RawValue{Type: typ, Value: data}

		got := guardClause(stored)

		want := bson.E{Key: "$expr", Value: bson.M{"$eq": bson.A{"$vouchers", bson.M{"$literal": stored}}}}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("guardClause (-want +got):\n%s", diff)
		}
	})
}

func TestCanonicalFilter(t *testing.T) {
	id := primitive.NewObjectID()

	got := canonicalFilter(id)

	require.Len(t, got, 2)
	assert.Equal(t, bson.E{Key: "_id", Value: id}, got[0])
	assert.Equal(t, "$or", got[1].Key)
	assert.ElementsMatch(t, bson.A{
		bson.M{"vouchers": bson.M{"$exists": false}},
		bson.M{"vouchers": bson.M{"$type": "object"}},
	}, got[1].Value)
}

func TestReleaseStepsNeverStoreZero(t *testing.T) {
	id := primitive.NewObjectID()

	steps := releaseSteps(id, "v1")

	require.Len(t, steps, 2)

	dec := steps[0]
	assert.Equal(t, bson.E{Key: "vouchers.v1", Value: bson.M{"$gt": 1}}, dec.filter[len(dec.filter)-1])
	assert.Equal(t, bson.M{"$inc": bson.M{"vouchers.v1": -1}}, dec.update)

	drop := steps[1]
	assert.Equal(t, bson.E{Key: "vouchers.v1", Value: 1}, drop.filter[len(drop.filter)-1])
	assert.Equal(t, bson.M{"$unset": bson.M{"vouchers.v1": ""}}, drop.update)

	for _, step := range steps {
		assert.Equal(t, canonicalFilter(id), step.filter[:len(step.filter)-1])
	}
}

func TestIsTypeMismatch(t *testing.T) {
	mismatch := mongo.WriteException{WriteErrors: []mongo.WriteError{{
		Code:    14,
		Message: "Cannot apply $inc to a value of non-numeric type",
	}}}
	duplicate := mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000}}}

	assert.True(t, isTypeMismatch(mismatch))
	assert.True(t, isTypeMismatch(errors.Wrap(mismatch, "redeem")))
	assert.False(t, isTypeMismatch(duplicate))
	assert.False(t, isTypeMismatch(errors.New("connection reset")))
}
