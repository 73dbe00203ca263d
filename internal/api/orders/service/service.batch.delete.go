package ordersvc

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	ordermodels "github.com/orimhanre/distrinaranjos-sub004/internal/api/orders/models"
	orderstore "github.com/orimhanre/distrinaranjos-sub004/internal/api/orders/store"
	"github.com/orimhanre/distrinaranjos-sub004/internal/common"
	"github.com/orimhanre/distrinaranjos-sub004/internal/logger"
)

// IdentityDeleteResult reports what a full identity deletion removed and which
// branches failed. A failed probe or delete never aborts the others.
type IdentityDeleteResult struct {
	OrdersDeleted   int      `json:"ordersDeleted"`
	ProfilesDeleted int      `json:"profilesDeleted"`
	TokensDeleted   int      `json:"tokensDeleted"`
	ArchivesDeleted int      `json:"archivesDeleted"`
	FailedProbes    []string `json:"failedProbes,omitempty"`
	FailedDeletes   []string `json:"failedDeletes,omitempty"`
}

// Complete reports whether every branch both probed and deleted cleanly.
func (r IdentityDeleteResult) Complete() bool {
	return len(r.FailedProbes) == 0 && len(r.FailedDeletes) == 0
}

// BatchDeleter removes every record tied to a client identity across all
// denormalized stores of one environment. Orders may reference the identity
// by top-level email, by nested client fields, or by external id, so each
// shape is probed independently and the union is deleted.
type BatchDeleter struct {
	store *orderstore.RecordStore
	log   *logrus.Logger
}

// NewBatchDeleter builds a deleter over one environment's stores.
func NewBatchDeleter(store *orderstore.RecordStore) *BatchDeleter {
	return &BatchDeleter{store: store, log: logger.GetAppLogger()}
}

// DeleteAllForIdentity removes every order, profile, archive entry and device
// token belonging to the identity (email plus optional external id). Probes
// and deletes fan out concurrently; each failure is recorded and the remaining
// branches continue, so one unreachable shape never strands the rest of the
// identity's data. Finishes with a verification read and one retry of the
// profile delete.
func (d *BatchDeleter) DeleteAllForIdentity(ctx context.Context, email, externalID string) (*IdentityDeleteResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, common.ErrInvalidInput
	}

	result := &IdentityDeleteResult{}
	var mu sync.Mutex

	orderIDs := make(map[ordermodels.OrderID]struct{})
	archiveIDs := make(map[string]struct{})

	collectOrders := func(records []ordermodels.OrderRecord) {
		mu.Lock()
		defer mu.Unlock()
		for _, r := range records {
			orderIDs[r.OrderID()] = struct{}{}
		}
	}
	probeFailed := func(name string, err error) {
		mu.Lock()
		defer mu.Unlock()
		result.FailedProbes = append(result.FailedProbes, name)
		d.log.WithError(err).WithField("probe", name).Warn("Identity probe failed")
	}

	// Probe every shape the identity can appear under. errgroup gives us the
	// fan-out; failures are swallowed per branch so the group never cancels.
	g, gctx := errgroup.WithContext(ctx)

	type probe struct {
		name  string
		field string
		value interface{}
	}
	probes := []probe{
		{"orders.clientEmail", "clientEmail", email},
		{"orders.client.email", "client.email", email},
		{"orders.client.correo", "client.correo", email},
	}
	if externalID != "" {
		probes = append(probes,
			probe{"orders.externalId", "externalId", externalID},
			probe{"orders.userId", "userId", externalID},
		)
	}
	for _, p := range probes {
		g.Go(func() error {
			records, err := d.store.Orders.FindByField(gctx, p.field, p.value)
			if err != nil {
				probeFailed(p.name, err)
				return nil
			}
			collectOrders(records)
			return nil
		})
	}

	g.Go(func() error {
		archived, err := d.store.Archive.FindByField(gctx, "order.clientEmail", email)
		if err != nil {
			probeFailed("archive.clientEmail", err)
			return nil
		}
		mu.Lock()
		defer mu.Unlock()
		for _, a := range archived {
			archiveIDs[a.OrderID] = struct{}{}
		}
		return nil
	})

	// Probes report failures through result, never through the group.
	_ = g.Wait()

	// Delete the union, one branch per id. Per-item failures are recorded and
	// the rest keep going.
	del, dctx := errgroup.WithContext(ctx)
	for id := range orderIDs {
		del.Go(func() error {
			err := d.store.Orders.Delete(dctx, id)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				result.OrdersDeleted++
			case !errors.Is(err, common.ErrNotFound):
				result.FailedDeletes = append(result.FailedDeletes, "order:"+id.String())
			}
			return nil
		})
	}
	for id := range archiveIDs {
		del.Go(func() error {
			err := d.store.Archive.Delete(dctx, id)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				result.ArchivesDeleted++
			case !errors.Is(err, common.ErrNotFound):
				result.FailedDeletes = append(result.FailedDeletes, "archive:"+id)
			}
			return nil
		})
	}
	_ = del.Wait()

	if n, err := d.store.Tokens.DeleteByEmail(ctx, email); err != nil {
		result.FailedDeletes = append(result.FailedDeletes, "tokens:"+email)
	} else {
		result.TokensDeleted = int(n)
	}

	result.ProfilesDeleted += d.deleteProfiles(ctx, email, externalID, result)

	// Verification pass: if the profile survived the first attempt, retry
	// once before reporting.
	if _, err := d.store.Profiles.Get(ctx, email); err == nil {
		if err := d.store.Profiles.Delete(ctx, email); err != nil && !errors.Is(err, common.ErrNotFound) {
			result.FailedDeletes = append(result.FailedDeletes, "profile:"+email)
		} else {
			result.ProfilesDeleted++
		}
	}

	logger.GetAuditLogger().WithFields(logrus.Fields{
		"action":   "identity_delete",
		"email":    email,
		"orders":   result.OrdersDeleted,
		"profiles": result.ProfilesDeleted,
		"tokens":   result.TokensDeleted,
		"archives": result.ArchivesDeleted,
		"complete": result.Complete(),
	}).Info("Identity deletion finished")
	return result, nil
}

// deleteProfiles removes the profile by primary key and, when an external id
// is known, any duplicate profile documents carrying it under a stale email.
func (d *BatchDeleter) deleteProfiles(ctx context.Context, email, externalID string, result *IdentityDeleteResult) int {
	deleted := 0

	if err := d.store.Profiles.Delete(ctx, email); err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			result.FailedDeletes = append(result.FailedDeletes, "profile:"+email)
		}
	} else {
		deleted++
	}

	if externalID == "" {
		return deleted
	}

	dupes, err := d.store.Profiles.FindByField(ctx, "externalId", externalID)
	if err != nil {
		result.FailedProbes = append(result.FailedProbes, "profiles.externalId")
		return deleted
	}
	for _, p := range dupes {
		if p.Email == email {
			continue
		}
		if err := d.store.Profiles.Delete(ctx, p.Email); err != nil {
			if !errors.Is(err, common.ErrNotFound) {
				result.FailedDeletes = append(result.FailedDeletes, "profile:"+p.Email)
			}
			continue
		}
		deleted++
	}
	return deleted
}
