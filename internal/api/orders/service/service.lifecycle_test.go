package ordersvc

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	ordermodels "github.com/orimhanre/distrinaranjos-sub004/internal/api/orders/models"
	"github.com/orimhanre/distrinaranjos-sub004/internal/common"
)

func newLifecycle(s *fakeStores, retentionDays int) *LifecycleManager {
	coord := NewDualWriteCoordinator(s.store)
	return NewLifecycleManager(s.store, coord, retentionDays, "production")
}

func TestMigrateProfile_MovesEmbeddedOrdersToCanonicalStore(t *testing.T) {
	s := newFakeStores()
	s.profiles.profiles["ana@example.com"] = ordermodels.ClientProfile{
		Email: "ana@example.com",
		Orders: []ordermodels.OrderSnapshot{
			{"orderToken": "ORD-1", "estado": "confirmed"},
		},
	}
	s.profiles.raw["ana@example.com"] = bson.M{
		"correo":   "Ana@Example.com",
		"nombre":   "Ana",
		"apellido": "García",
		"cedula":   "99887766",
		"orders": []interface{}{
			bson.M{"orderToken": "ORD-1", "estado": "confirmed", "total": 90000.0},
			bson.M{"numeroPedido": "PED-2", "estadoPago": "paid"},
		},
	}

	m := newLifecycle(s, 90)
	result, err := m.MigrateProfile(context.Background(), "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, 2, result.Migrated)
	assert.False(t, result.Skipped)

	// Token preserved on the first, legacy alias promoted on the second.
	first, err := s.orders.Get(context.Background(), ordermodels.OrderID{ClientEmail: "ana@example.com", OrderToken: "ORD-1"})
	require.NoError(t, err)
	assert.Equal(t, ordermodels.StatusConfirmed, first.Status)
	assert.Equal(t, 90000.0, first.Total)

	second, err := s.orders.Get(context.Background(), ordermodels.OrderID{ClientEmail: "ana@example.com", OrderToken: "PED-2"})
	require.NoError(t, err)
	assert.Equal(t, ordermodels.PaymentPaid, second.PaymentStatus)

	// Profile rewritten: canonical client fields, no embedded orders, legacy
	// alias keys gone.
	profile, err := s.profiles.Get(context.Background(), "ana@example.com")
	require.NoError(t, err)
	assert.False(t, profile.IsLegacy())
	assert.Equal(t, "Ana", profile.Name)
	assert.Equal(t, "García", profile.Surname)
	assert.Equal(t, "99887766", profile.ExternalID)
}

func TestMigrateProfile_Idempotent(t *testing.T) {
	s := newFakeStores()
	s.profiles.raw["ana@example.com"] = bson.M{
		"correo": "ana@example.com",
		"orders": []interface{}{bson.M{"orderToken": "ORD-1"}},
	}
	s.profiles.profiles["ana@example.com"] = ordermodels.ClientProfile{
		Email:  "ana@example.com",
		Orders: []ordermodels.OrderSnapshot{{"orderToken": "ORD-1"}},
	}

	m := newLifecycle(s, 90)
	first, err := m.MigrateProfile(context.Background(), "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, 1, first.Migrated)

	second, err := m.MigrateProfile(context.Background(), "ana@example.com")
	require.NoError(t, err)
	assert.True(t, second.Skipped)
	assert.Zero(t, second.Migrated)

	// Still exactly one canonical record.
	records, err := s.orders.ListByClient(context.Background(), "ana@example.com")
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestMigrateProfile_FailedSnapshotStaysEmbeddedForRetry(t *testing.T) {
	s := newFakeStores()
	s.profiles.profiles["ana@example.com"] = ordermodels.ClientProfile{
		Email:  "ana@example.com",
		Orders: []ordermodels.OrderSnapshot{{"orderToken": "ORD-1"}},
	}
	s.profiles.raw["ana@example.com"] = bson.M{
		"correo": "ana@example.com",
		"orders": []interface{}{bson.M{"orderToken": "ORD-1"}},
	}
	s.orders.errs["upsert"] = errors.New("write concern timeout")

	m := newLifecycle(s, 90)
	result, err := m.MigrateProfile(context.Background(), "ana@example.com")
	require.NoError(t, err)
	assert.Zero(t, result.Migrated)
	assert.False(t, result.Skipped)

	// The order lives in neither store yet, so the snapshot must survive the
	// profile rewrite for a later run to pick up.
	profile, err := s.profiles.Get(context.Background(), "ana@example.com")
	require.NoError(t, err)
	require.True(t, profile.IsLegacy())
	assert.Equal(t, "ORD-1", profile.Orders[0]["orderToken"])

	// Once the store recovers, the retry completes the migration.
	delete(s.orders.errs, "upsert")
	retry, err := m.MigrateProfile(context.Background(), "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, 1, retry.Migrated)

	_, err = s.orders.Get(context.Background(), ordermodels.OrderID{ClientEmail: "ana@example.com", OrderToken: "ORD-1"})
	assert.NoError(t, err)
	profile, err = s.profiles.Get(context.Background(), "ana@example.com")
	require.NoError(t, err)
	assert.False(t, profile.IsLegacy())
}

func TestMigrateAll_ToleratesPerProfileFailure(t *testing.T) {
	s := newFakeStores()
	s.profiles.profiles["ana@example.com"] = ordermodels.ClientProfile{
		Email:  "ana@example.com",
		Orders: []ordermodels.OrderSnapshot{{"orderToken": "ORD-1"}},
	}
	s.profiles.profiles["bob@example.com"] = ordermodels.ClientProfile{
		Email:  "bob@example.com",
		Orders: []ordermodels.OrderSnapshot{{"orderToken": "ORD-2"}},
	}

	m := newLifecycle(s, 90)
	result, err := m.MigrateAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.ProfilesScanned)
	assert.Equal(t, 2, result.Outcome.Succeeded)
	assert.Equal(t, 2, result.OrdersMigrated)
	assert.Zero(t, result.Outcome.Failed)
}

func TestSoftDelete_ArchivesAndRemovesCanonical(t *testing.T) {
	s := newFakeStores()
	seedOrder(t, s, ordermodels.OrderRecord{
		ClientEmail: "ana@example.com",
		OrderToken:  "ORD-1",
		Status:      ordermodels.StatusDelivered,
	})

	m := newLifecycle(s, 90)
	before := time.Now().UnixMilli()
	archived, err := m.SoftDelete(context.Background(), "ana@example.com_ORD-1")
	require.NoError(t, err)

	assert.Equal(t, "ana@example.com_ORD-1", archived.OrderID)
	assert.Equal(t, "production", archived.SourceEnv)
	assert.GreaterOrEqual(t, archived.DeletedAt, before)
	assert.LessOrEqual(t, archived.DeletedAt, time.Now().UnixMilli())
	wantDeadline := archived.DeletedAt + 90*24*int64(time.Hour/time.Millisecond)
	assert.Equal(t, wantDeadline, archived.RetentionDeadline)

	// Canonical copy gone: the identifier no longer resolves.
	coord := NewDualWriteCoordinator(s.store)
	_, err = coord.Resolve(context.Background(), "ana@example.com_ORD-1")
	assert.ErrorIs(t, err, common.ErrNotFound)

	// Archive entry retrievable by original id.
	entry, err := s.archive.Get(context.Background(), "ana@example.com_ORD-1")
	require.NoError(t, err)
	assert.Equal(t, ordermodels.StatusDelivered, entry.Order.Status)
}

func TestSoftDelete_CapturesClientSnapshot(t *testing.T) {
	s := newFakeStores()
	seedOrder(t, s, ordermodels.OrderRecord{ClientEmail: "ana@example.com", OrderToken: "ORD-1"})
	s.profiles.profiles["ana@example.com"] = ordermodels.ClientProfile{
		Email: "ana@example.com",
		Name:  "Ana",
		City:  "Cali",
	}

	m := newLifecycle(s, 90)
	archived, err := m.SoftDelete(context.Background(), "ORD-1")
	require.NoError(t, err)
	require.NotNil(t, archived.ClientSnapshot)
	assert.Equal(t, "Ana", archived.ClientSnapshot.Name)
	assert.Equal(t, "Cali", archived.ClientSnapshot.City)
}

func TestSoftDelete_RemovesEmbeddedCopy(t *testing.T) {
	s := newFakeStores()
	seedOrder(t, s, ordermodels.OrderRecord{ClientEmail: "ana@example.com", OrderToken: "ORD-1"})
	seedLegacyProfile(t, s, "ana@example.com",
		ordermodels.OrderSnapshot{"orderToken": "ORD-1"},
		ordermodels.OrderSnapshot{"orderToken": "ORD-2"},
	)

	m := newLifecycle(s, 90)
	_, err := m.SoftDelete(context.Background(), "ORD-1")
	require.NoError(t, err)

	profile, err := s.profiles.Get(context.Background(), "ana@example.com")
	require.NoError(t, err)
	require.Len(t, profile.Orders, 1)
	assert.Equal(t, "ORD-2", profile.Orders[0]["orderToken"])
}

func TestSoftDelete_UnknownIdentifier(t *testing.T) {
	s := newFakeStores()
	m := newLifecycle(s, 90)
	_, err := m.SoftDelete(context.Background(), "ORD-404")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestPurgeExpired_OnlyPastDeadline(t *testing.T) {
	s := newFakeStores()
	now := time.Now()
	s.archive.entries["old"] = ordermodels.ArchivedOrder{
		OrderID:           "old",
		RetentionDeadline: now.Add(-time.Hour).UnixMilli(),
	}
	s.archive.entries["fresh"] = ordermodels.ArchivedOrder{
		OrderID:           "fresh",
		RetentionDeadline: now.Add(24 * time.Hour).UnixMilli(),
	}

	m := newLifecycle(s, 90)
	result, err := m.PurgeExpired(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Purged)

	_, err = s.archive.Get(context.Background(), "old")
	assert.ErrorIs(t, err, common.ErrNotFound)
	_, err = s.archive.Get(context.Background(), "fresh")
	assert.NoError(t, err)

	// Idempotent: nothing left to purge.
	again, err := m.PurgeExpired(context.Background(), now)
	require.NoError(t, err)
	assert.Zero(t, again.Purged)
}

func TestPurgeExpired_EmptyArchiveIsNoOp(t *testing.T) {
	s := newFakeStores()
	m := newLifecycle(s, 90)
	result, err := m.PurgeExpired(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Zero(t, result.Purged)
	assert.Zero(t, result.Outcome.Failed)
}

func TestPermanentDelete_IgnoresDeadline(t *testing.T) {
	s := newFakeStores()
	s.archive.entries["keep-until-2030"] = ordermodels.ArchivedOrder{
		OrderID:           "keep-until-2030",
		RetentionDeadline: time.Now().Add(365 * 24 * time.Hour).UnixMilli(),
	}

	m := newLifecycle(s, 90)
	require.NoError(t, m.PermanentDelete(context.Background(), "keep-until-2030"))

	_, err := s.archive.Get(context.Background(), "keep-until-2030")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestRetentionWindow_Default(t *testing.T) {
	s := newFakeStores()
	m := newLifecycle(s, 0)
	assert.Equal(t, time.Duration(DefaultRetentionDays)*24*time.Hour, m.RetentionWindow())
}
