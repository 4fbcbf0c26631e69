package repository

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/greenmart/greenmart-backend/pkg/database"
	"github.com/greenmart/greenmart-backend/pkg/models"
	"github.com/greenmart/greenmart-backend/pkg/voucher"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UserRepository owns users.vouchers. Everything else on the user document belongs to
// the account service and is never written here.
type UserRepository struct {
	coll       *mongo.Collection
	normalizer *voucher.Normalizer
}

func NewUserRepository(db *mongo.Database, normalizer *voucher.Normalizer) *UserRepository {
	return &UserRepository{
		coll:       db.Collection(database.UsersCollection),
		normalizer: normalizer,
	}
}

var vouchersProjection = options.Find().
	SetProjection(bson.M{"_id": 1, "vouchers": 1}).
	SetSort(bson.M{"_id": 1})

func (r *UserRepository) EachUser(ctx context.Context, fn func(doc bson.Raw) error) error {
	cur, err := r.coll.Find(ctx, bson.M{}, vouchersProjection)
	if err != nil {
		return errors.Wrap(err, "failed to scan users")
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		if err := fn(cur.Current); err != nil {
			return err
		}
	}
	return errors.Wrap(cur.Err(), "users cursor failed")
}

func (r *UserRepository) ReplaceVouchers(ctx context.Context, userID primitive.ObjectID, holdings voucher.Holdings, guard *bson.RawValue) (bool, error) {
	filter := bson.D{{Key: "_id", Value: userID}}
	if guard != nil {
		filter = append(filter, guardClause(*guard))
	}

	res, err := r.coll.UpdateOne(ctx, filter, bson.M{"$set": bson.M{"vouchers": holdings.Document()}})
	if err != nil {
		return false, errors.Wrap(err, "failed to replace vouchers")
	}
	return res.MatchedCount > 0, nil
}

func (r *UserRepository) ResetVouchers(ctx context.Context, userID primitive.ObjectID) error {
	_, err := r.coll.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$set": bson.M{"vouchers": bson.D{}}})
	return errors.Wrap(err, "failed to reset vouchers")
}

// Holdings reads a user's vouchers in canonical form without rewriting the stored value.
func (r *UserRepository) Holdings(ctx context.Context, userID primitive.ObjectID) (voucher.Holdings, error) {
	user, err := r.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	res, err := r.normalizer.Normalize(user.Vouchers)
	if err != nil {
		return nil, err
	}
	return res.Holdings, nil
}

// canonicalFilter matches users whose vouchers can be updated in place with dotted keys.
func canonicalFilter(userID primitive.ObjectID) bson.D {
	return bson.D{
		{Key: "_id", Value: userID},
		{Key: "$or", Value: bson.A{
			bson.M{"vouchers": bson.M{"$exists": false}},
			bson.M{"vouchers": bson.M{"$type": "object"}},
		}},
	}
}

// Redeem records one more redemption of voucherID. Users still on an older encoding are
// converted on the way, guarded against concurrent writers, as are maps holding a
// non-numeric count under that key.
func (r *UserRepository) Redeem(ctx context.Context, userID primitive.ObjectID, voucherID string) (voucher.Holdings, error) {
	if !r.normalizer.ValidID(voucherID) {
		return nil, voucher.ErrInvalidID
	}

	res, err := r.coll.UpdateOne(ctx, canonicalFilter(userID), bson.M{"$inc": bson.M{"vouchers." + voucherID: 1}})
	if err != nil && !isTypeMismatch(err) {
		return nil, errors.Wrap(err, "failed to redeem voucher")
	}
	if err == nil && res.MatchedCount > 0 {
		return r.Holdings(ctx, userID)
	}

	return r.rewrite(ctx, userID, func(h voucher.Holdings) error {
		h[voucherID]++
		return nil
	})
}

// Release takes back one redemption. A count of one is removed outright, so a stored
// zero is never visible.
func (r *UserRepository) Release(ctx context.Context, userID primitive.ObjectID, voucherID string) (voucher.Holdings, error) {
	if !r.normalizer.ValidID(voucherID) {
		return nil, voucher.ErrInvalidID
	}

	for _, step := range releaseSteps(userID, voucherID) {
		res, err := r.coll.UpdateOne(ctx, step.filter, step.update)
		if err != nil {
			return nil, errors.Wrap(err, "failed to release voucher")
		}
		if res.MatchedCount > 0 {
			return r.Holdings(ctx, userID)
		}
	}

	return r.rewrite(ctx, userID, func(h voucher.Holdings) error {
		if h[voucherID] < 1 {
			return ErrVoucherNotHeld
		}
		h[voucherID]--
		if h[voucherID] == 0 {
			delete(h, voucherID)
		}
		return nil
	})
}

type updateStep struct {
	filter bson.D
	update bson.M
}

// releaseSteps are the single-write releases tried in order: decrement a count above
// one, or drop a key holding exactly one. Anything else falls through to rewrite.
func releaseSteps(userID primitive.ObjectID, voucherID string) []updateStep {
	key := "vouchers." + voucherID
	return []updateStep{
		{
			filter: append(canonicalFilter(userID), bson.E{Key: key, Value: bson.M{"$gt": 1}}),
			update: bson.M{"$inc": bson.M{key: -1}},
		},
		{
			filter: append(canonicalFilter(userID), bson.E{Key: key, Value: 1}),
			update: bson.M{"$unset": bson.M{key: ""}},
		},
	}
}

// isTypeMismatch reports a server TypeMismatch, which $inc raises on a non-numeric field.
func isTypeMismatch(err error) bool {
	var se mongo.ServerError
	return errors.As(err, &se) && se.HasErrorCode(errCodeTypeMismatch)
}

const errCodeTypeMismatch = 14

// rewrite applies fn to the user's normalized holdings and writes them back in canonical
// form, provided nobody changed the stored value in between.
func (r *UserRepository) rewrite(ctx context.Context, userID primitive.ObjectID, fn func(voucher.Holdings) error) (voucher.Holdings, error) {
	user, err := r.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	norm, err := r.normalizer.Normalize(user.Vouchers)
	if err != nil {
		return nil, err
	}

	holdings := norm.Holdings.Clone()
	if err := fn(holdings); err != nil {
		return nil, err
	}
	ok, err := r.ReplaceVouchers(ctx, userID, holdings, &user.Vouchers)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrVoucherConflict
	}
	return holdings, nil
}

func (r *UserRepository) findUser(ctx context.Context, userID primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := r.coll.FindOne(ctx, bson.M{"_id": userID}, options.FindOne().SetProjection(bson.M{"vouchers": 1})).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, errors.Wrap(err, "failed to find user")
	}
	return &user, nil
}

// guardClause matches the stored vouchers value exactly. $expr compares whole values, so
// an array guard does not also match arrays that merely contain it.
func guardClause(v bson.RawValue) bson.E {
	if v.Type == 0 {
		return bson.E{Key: "vouchers", Value: bson.M{"$exists": false}}
	}
	return bson.E{Key: "$expr", Value: bson.M{"$eq": bson.A{"$vouchers", bson.M{"$literal": v}}}}
}
