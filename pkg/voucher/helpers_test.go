package voucher

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// rawOf encodes v the way it would sit in users.vouchers.
func rawOf(t *testing.T, v any) bson.RawValue {
	t.Helper()
	doc, err := bson.Marshal(bson.M{"v": v})
	require.NoError(t, err)
	return bson.Raw(doc).Lookup("v")
}

type memUser struct {
	id       primitive.ObjectID
	vouchers bson.RawValue
}

// memUserStore keeps users in insertion order, like a collection scanned by _id.
type memUserStore struct {
	t      *testing.T
	users  []*memUser
	writes int

	failWrite   map[primitive.ObjectID]error
	beforeWrite func(id primitive.ObjectID)
}

func newMemUserStore(t *testing.T) *memUserStore {
	return &memUserStore{t: t, failWrite: map[primitive.ObjectID]error{}}
}

func (s *memUserStore) add(vouchers bson.RawValue) primitive.ObjectID {
	id := primitive.NewObjectID()
	s.users = append(s.users, &memUser{id: id, vouchers: vouchers})
	return id
}

func (s *memUserStore) find(id primitive.ObjectID) *memUser {
	for _, u := range s.users {
		if u.id == id {
			return u
		}
	}
	return nil
}

func (s *memUserStore) vouchersOf(id primitive.ObjectID) bson.RawValue {
	u := s.find(id)
	require.NotNil(s.t, u)
	return u.vouchers
}

func (s *memUserStore) EachUser(ctx context.Context, fn func(doc bson.Raw) error) error {
	for _, u := range s.users {
		d := bson.D{{Key: "_id", Value: u.id}}
		if u.vouchers.Type != 0 {
			d = append(d, bson.E{Key: "vouchers", Value: u.vouchers})
		}
		doc, err := bson.Marshal(d)
		require.NoError(s.t, err)
		if err := fn(doc); err != nil {
			return err
		}
	}
	return nil
}

func (s *memUserStore) ReplaceVouchers(_ context.Context, id primitive.ObjectID, h Holdings, guard *bson.RawValue) (bool, error) {
	if s.beforeWrite != nil {
		s.beforeWrite(id)
	}
	if err := s.failWrite[id]; err != nil {
		return false, err
	}
	u := s.find(id)
	if u == nil {
		return false, nil
	}
	if guard != nil && (guard.Type != u.vouchers.Type || !bytes.Equal(guard.Value, u.vouchers.Value)) {
		return false, nil
	}
	s.writes++
	u.vouchers = rawOf(s.t, h.Document())
	return true, nil
}

func (s *memUserStore) ResetVouchers(_ context.Context, id primitive.ObjectID) error {
	if err := s.failWrite[id]; err != nil {
		return err
	}
	u := s.find(id)
	if u == nil {
		return nil
	}
	s.writes++
	u.vouchers = rawOf(s.t, bson.D{})
	return nil
}
