package voucher

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newTestLogger() (*logrus.Logger, *test.Hook) {
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	return log, hook
}

func holdingsOf(t *testing.T, raw bson.RawValue) Holdings {
	t.Helper()
	res, err := NewNormalizer(nil, QuantityDefaultToOne).Normalize(raw)
	require.NoError(t, err)
	require.Equal(t, ShapeMap, res.Shape, "stored value is not canonical")
	return res.Holdings
}

func TestMigratorThreeUserScenario(t *testing.T) {
	store := newMemUserStore(t)
	legacy := store.add(rawOf(t, bson.A{"v1", "v1", "v2"}))
	records := store.add(rawOf(t, bson.A{bson.M{"voucherId": "v3", "quantity": 5}}))
	malformed := store.add(rawOf(t, bson.A{bson.M{"voucherId": nil}}))

	log, _ := newTestLogger()
	m := NewMigrator(store, NewNormalizer(nil, QuantityDefaultToOne), log, MigrateOptions{})

	sum, err := m.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, Summary{Scanned: 3, Migrated: 3, Dropped: 1}, sum)
	if diff := cmp.Diff(Holdings{"v1": 2, "v2": 1}, holdingsOf(t, store.vouchersOf(legacy))); diff != "" {
		t.Errorf("legacy user (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(Holdings{"v3": 5}, holdingsOf(t, store.vouchersOf(records))); diff != "" {
		t.Errorf("record user (-want +got):\n%s", diff)
	}
	assert.Empty(t, holdingsOf(t, store.vouchersOf(malformed)))
}

func TestMigratorLeavesCanonicalAndAbsentUsersAlone(t *testing.T) {
	store := newMemUserStore(t)
	canonical := rawOf(t, bson.D{{Key: "v1", Value: 1}})
	store.add(canonical)
	store.add(bson.RawValue{})
	store.add(rawOf(t, nil))

	log, _ := newTestLogger()
	sum, err := NewMigrator(store, NewNormalizer(nil, QuantityDefaultToOne), log, MigrateOptions{}).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, Summary{Scanned: 3, Unchanged: 3}, sum)
	assert.Zero(t, store.writes)
}

func TestMigratorContinuesAfterFailures(t *testing.T) {
	store := newMemUserStore(t)
	first := store.add(rawOf(t, bson.A{"v1"}))
	broken := store.add(rawOf(t, bson.A{"v2"}))
	unreadable := store.add(rawOf(t, "v3"))
	last := store.add(rawOf(t, bson.A{"v4", "v4"}))
	store.failWrite[broken] = errors.New("write concern timeout")

	log, hook := newTestLogger()
	sum, err := NewMigrator(store, NewNormalizer(nil, QuantityDefaultToOne), log, MigrateOptions{}).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, Summary{Scanned: 4, Migrated: 2, Failed: 2}, sum)
	assert.Equal(t, Holdings{"v1": 1}, holdingsOf(t, store.vouchersOf(first)))
	assert.Equal(t, Holdings{"v4": 2}, holdingsOf(t, store.vouchersOf(last)))
	assert.Equal(t, ShapeIDList, DetectShape(store.vouchersOf(broken)))
	assert.Equal(t, ShapeUnknown, DetectShape(store.vouchersOf(unreadable)))

	var errorLogs int
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.ErrorLevel {
			errorLogs++
		}
	}
	assert.Equal(t, 1, errorLogs)
	assert.Equal(t, "Migrate: finished", hook.LastEntry().Message)
}

func TestMigratorDryRun(t *testing.T) {
	store := newMemUserStore(t)
	id := store.add(rawOf(t, bson.A{"v1", "v1"}))
	before := store.vouchersOf(id)

	log, _ := newTestLogger()
	sum, err := NewMigrator(store, NewNormalizer(nil, QuantityDefaultToOne), log, MigrateOptions{DryRun: true}).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, sum.Migrated)
	assert.Zero(t, store.writes)
	assert.Equal(t, before, store.vouchersOf(id))
}

func TestMigratorGuardSkipsConcurrentlyChangedUser(t *testing.T) {
	store := newMemUserStore(t)
	raced := store.add(rawOf(t, bson.A{"v1"}))
	calm := store.add(rawOf(t, bson.A{"v2"}))

	// a redemption lands between the migrator's read and its write
	store.beforeWrite = func(id primitive.ObjectID) {
		if id == raced {
			store.find(id).vouchers = rawOf(t, bson.A{"v1", "v1"})
		}
	}

	log, _ := newTestLogger()
	sum, err := NewMigrator(store, NewNormalizer(nil, QuantityDefaultToOne), log, MigrateOptions{Guard: true}).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, sum.Conflicted)
	assert.Equal(t, 1, sum.Migrated)
	assert.Equal(t, ShapeIDList, DetectShape(store.vouchersOf(raced)))
	assert.Equal(t, Holdings{"v2": 1}, holdingsOf(t, store.vouchersOf(calm)))
}

func TestMigratorWithoutGuardOverwritesConcurrentChange(t *testing.T) {
	store := newMemUserStore(t)
	raced := store.add(rawOf(t, bson.A{"v1"}))
	store.beforeWrite = func(id primitive.ObjectID) {
		store.find(id).vouchers = rawOf(t, bson.A{"v1", "v1"})
	}

	log, _ := newTestLogger()
	sum, err := NewMigrator(store, NewNormalizer(nil, QuantityDefaultToOne), log, MigrateOptions{}).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, sum.Migrated)
	assert.Equal(t, Holdings{"v1": 1}, holdingsOf(t, store.vouchersOf(raced)))
}

func TestMigratorStopsOnCancelledContext(t *testing.T) {
	store := newMemUserStore(t)
	store.add(rawOf(t, bson.A{"v1"}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	log, _ := newTestLogger()
	sum, err := NewMigrator(store, NewNormalizer(nil, QuantityDefaultToOne), log, MigrateOptions{}).Run(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Zero(t, sum.Scanned)
}

func TestMigratorLogsProgress(t *testing.T) {
	store := newMemUserStore(t)
	for range 5 {
		store.add(rawOf(t, bson.A{"v1"}))
	}

	log, hook := newTestLogger()
	_, err := NewMigrator(store, NewNormalizer(nil, QuantityDefaultToOne), log, MigrateOptions{ProgressEvery: 2}).Run(context.Background())
	require.NoError(t, err)

	var progress int
	for _, e := range hook.AllEntries() {
		if e.Message == "Migrate: progress" {
			progress++
		}
	}
	assert.Equal(t, 2, progress)
}
