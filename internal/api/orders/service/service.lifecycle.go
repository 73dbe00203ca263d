package ordersvc

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"

	basemodels "github.com/orimhanre/distrinaranjos-sub004/internal/api/base/models"
	ordermodels "github.com/orimhanre/distrinaranjos-sub004/internal/api/orders/models"
	orderstore "github.com/orimhanre/distrinaranjos-sub004/internal/api/orders/store"
	"github.com/orimhanre/distrinaranjos-sub004/internal/common"
	"github.com/orimhanre/distrinaranjos-sub004/internal/logger"
)

// DefaultRetentionDays is the archive retention window applied when the
// configuration does not override it.
const DefaultRetentionDays = 90

// MigrationResult reports the outcome of migrating one profile.
type MigrationResult struct {
	Email    string `json:"email"`
	Migrated int    `json:"migratedOrderCount"`
	Skipped  bool   `json:"skipped"`
}

// MigrateAllResult reports a full migration scan.
type MigrateAllResult struct {
	ProfilesScanned int                     `json:"profilesScanned"`
	OrdersMigrated  int                     `json:"ordersMigrated"`
	Outcome         basemodels.BatchOutcome `json:"outcome"`
}

// PurgeResult reports one purge pass.
type PurgeResult struct {
	Purged  int                     `json:"purgedCount"`
	Outcome basemodels.BatchOutcome `json:"outcome"`
}

// LifecycleManager moves orders through migration, soft delete and permanent
// purge. Every batch path completes its full scan and reports per-item
// outcomes; re-running any of them is safe.
type LifecycleManager struct {
	store     *orderstore.RecordStore
	resolver  *DualWriteCoordinator
	retention time.Duration
	sourceEnv string
	log       *logrus.Logger
}

// NewLifecycleManager builds a lifecycle manager over one environment's
// stores. retentionDays <= 0 falls back to DefaultRetentionDays.
func NewLifecycleManager(store *orderstore.RecordStore, resolver *DualWriteCoordinator, retentionDays int, sourceEnv string) *LifecycleManager {
	if retentionDays <= 0 {
		retentionDays = DefaultRetentionDays
	}
	return &LifecycleManager{
		store:     store,
		resolver:  resolver,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
		sourceEnv: sourceEnv,
		log:       logger.GetAppLogger(),
	}
}

// RetentionWindow exposes the configured retention duration.
func (m *LifecycleManager) RetentionWindow() time.Duration {
	return m.retention
}

// MigrateProfile rewrites one legacy profile: every embedded snapshot becomes
// a canonical OrderRecord (address fields normalized from the raw document,
// original token preserved), then the profile document is rewritten without
// order fields. The rewrite replaces the whole document so stray legacy keys
// do not survive. Snapshots whose canonical write failed are carried over into
// the rewritten profile so a later run retries them. Idempotent: an
// already-migrated profile is skipped without side effects.
func (m *LifecycleManager) MigrateProfile(ctx context.Context, email string) (MigrationResult, error) {
	email = strings.ToLower(email)
	result := MigrationResult{Email: email}

	raw, err := m.store.Profiles.GetRaw(ctx, email)
	if err != nil {
		return result, err
	}

	snapshots := snapshotList(raw["orders"])
	if len(snapshots) == 0 {
		result.Skipped = true
		return result, nil
	}

	client := NormalizeClient(raw)
	if client.Email == "" {
		client.Email = email
	}

	var unmigrated []ordermodels.OrderSnapshot
	for i, snapshot := range snapshots {
		record := NormalizeOrderSnapshot(snapshot, client)
		if _, err := m.store.Orders.Upsert(ctx, record); err != nil {
			// One bad snapshot must not abort the batch; it stays embedded
			// for the next run.
			m.log.WithError(err).WithFields(logrus.Fields{
				"email": email,
				"index": i,
			}).Error("Failed to migrate embedded order")
			unmigrated = append(unmigrated, snapshot)
			continue
		}
		result.Migrated++
	}

	profile := rebuildProfile(raw, client)
	profile.Orders = unmigrated
	if _, err := m.store.Profiles.Replace(ctx, profile); err != nil {
		return result, fmt.Errorf("failed to rewrite profile %s after migration: %w", email, err)
	}

	m.log.WithFields(logrus.Fields{
		"email":    email,
		"migrated": result.Migrated,
	}).Info("Profile migrated")
	return result, nil
}

// MigrateAll scans every legacy profile and migrates each one, tolerating
// per-profile failure.
func (m *LifecycleManager) MigrateAll(ctx context.Context) (*MigrateAllResult, error) {
	profiles, err := m.store.Profiles.ListLegacy(ctx)
	if err != nil {
		return nil, err
	}

	out := &MigrateAllResult{ProfilesScanned: len(profiles)}
	for _, profile := range profiles {
		res, err := m.MigrateProfile(ctx, profile.Email)
		if err != nil {
			out.Outcome.Failed++
			out.Outcome.Errors = append(out.Outcome.Errors, basemodels.BatchError{
				Key:    profile.Email,
				Reason: err.Error(),
			})
			continue
		}
		out.Outcome.Succeeded++
		out.OrdersMigrated += res.Migrated
	}
	return out, nil
}

// SoftDelete archives the resolved order with a retention deadline, then
// removes it from the canonical store and from any legacy embedded copy.
func (m *LifecycleManager) SoftDelete(ctx context.Context, identifier string) (ordermodels.ArchivedOrder, error) {
	var zero ordermodels.ArchivedOrder

	record, err := m.resolver.Resolve(ctx, identifier)
	if err != nil {
		return zero, err
	}

	now := time.Now().UnixMilli()
	archived := ordermodels.ArchivedOrder{
		OrderID:           record.OrderID().String(),
		Order:             record,
		DeletedAt:         now,
		RetentionDeadline: now + m.retention.Milliseconds(),
		SourceEnv:         m.sourceEnv,
	}

	// Opportunistic: the owning profile's address fields at time of deletion.
	if raw, err := m.store.Profiles.GetRaw(ctx, record.ClientEmail); err == nil {
		client := NormalizeClient(raw)
		archived.ClientSnapshot = &client
	}

	archived, err = m.store.Archive.Insert(ctx, archived)
	if err != nil {
		return zero, err
	}

	if err := m.store.Orders.Delete(ctx, record.OrderID()); err != nil && !errors.Is(err, common.ErrNotFound) {
		// The archive copy exists; report the degraded outcome instead of
		// leaving the caller with nothing.
		m.log.WithError(err).WithField("order", archived.OrderID).Error("Archived but failed to remove canonical record")
		return archived, common.NewError(
			common.ErrCodePartialWrite,
			"Order archived but the canonical copy could not be removed",
			common.StatusInternalServerError,
			err,
		)
	}

	m.removeEmbedded(ctx, record, identifier)

	logger.GetAuditLogger().WithFields(logrus.Fields{
		"action":            "order_soft_delete",
		"order":             archived.OrderID,
		"retentionDeadline": archived.RetentionDeadline,
	}).Info("Order soft-deleted")
	return archived, nil
}

// PurgeExpired deletes every archive entry whose retention deadline has
// passed. Entries before their deadline are never touched; zero matches is a
// safe no-op, and absence of results never cascades into any other deletion.
func (m *LifecycleManager) PurgeExpired(ctx context.Context, now time.Time) (*PurgeResult, error) {
	expired, err := m.store.Archive.ListExpired(ctx, now.UnixMilli())
	if err != nil {
		return nil, err
	}

	result := &PurgeResult{}
	for _, entry := range expired {
		if err := m.store.Archive.Delete(ctx, entry.OrderID); err != nil {
			if errors.Is(err, common.ErrNotFound) {
				// Deleted by a concurrent purge pass; nothing to redo.
				continue
			}
			result.Outcome.Failed++
			result.Outcome.Errors = append(result.Outcome.Errors, basemodels.BatchError{
				Key:    entry.OrderID,
				Reason: err.Error(),
			})
			continue
		}
		result.Purged++
		result.Outcome.Succeeded++
	}

	if result.Purged > 0 {
		m.log.WithField("purged", result.Purged).Info("Expired archived orders purged")
	}
	return result, nil
}

// PermanentDelete removes one archived order immediately, regardless of its
// retention deadline.
func (m *LifecycleManager) PermanentDelete(ctx context.Context, orderID string) error {
	if err := m.store.Archive.Delete(ctx, orderID); err != nil {
		return err
	}
	logger.GetAuditLogger().WithFields(logrus.Fields{
		"action": "order_permanent_delete",
		"order":  orderID,
	}).Info("Archived order permanently deleted")
	return nil
}

// removeEmbedded splices the order's snapshot out of the profile's legacy
// list, best-effort.
func (m *LifecycleManager) removeEmbedded(ctx context.Context, record ordermodels.OrderRecord, identifier string) {
	profile, err := m.store.Profiles.Get(ctx, record.ClientEmail)
	if err != nil || !profile.IsLegacy() {
		return
	}

	idx, err := ResolveSnapshot(identifier, profile.Orders)
	if err != nil {
		return
	}

	remaining := append(profile.Orders[:idx:idx], profile.Orders[idx+1:]...)
	if err := m.store.Profiles.Patch(ctx, profile.Email, bson.M{"orders": remaining}); err != nil {
		m.log.WithError(err).WithField("email", profile.Email).Warn("Failed to remove embedded copy of deleted order")
	}
}

// rebuildProfile constructs the clean post-migration profile document,
// keeping only canonical profile attributes.
func rebuildProfile(raw bson.M, client ordermodels.Client) ordermodels.ClientProfile {
	active := true
	if v, ok := raw["active"].(bool); ok {
		active = v
	}
	return ordermodels.ClientProfile{
		Email:       client.Email,
		Name:        client.Name,
		Surname:     client.Surname,
		Company:     client.Company,
		Phone:       client.Phone,
		Address:     client.Address,
		City:        client.City,
		Department:  client.Department,
		ExternalID:  client.ExternalID,
		Active:      active,
		FirstLogin:  NormalizeInstant(firstPresent(raw, "firstLogin", "createdAt", "fechaRegistro")),
		LastLoginAt: NormalizeInstant(firstPresent(raw, "lastLoginAt", "lastLogin", "ultimoIngreso")),
	}
}

// snapshotList coerces the raw orders field into snapshot maps, skipping
// entries with unusable shapes.
func snapshotList(v interface{}) []ordermodels.OrderSnapshot {
	raw := asSlice(v)
	out := make([]ordermodels.OrderSnapshot, 0, len(raw))
	for _, entry := range raw {
		if m := asMap(entry); m != nil {
			out = append(out, m)
		}
	}
	return out
}
