package ordersvc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"

	ordermodels "github.com/orimhanre/distrinaranjos-sub004/internal/api/orders/models"
	orderstore "github.com/orimhanre/distrinaranjos-sub004/internal/api/orders/store"
	"github.com/orimhanre/distrinaranjos-sub004/internal/common"
	"github.com/orimhanre/distrinaranjos-sub004/internal/logger"
)

// OrderPatch is a typed partial update. Status and payment-status changes are
// gated by the state machine; every other field is an unconstrained merge.
type OrderPatch struct {
	Status        *ordermodels.OrderStatus
	PaymentStatus *ordermodels.PaymentStatus
	PaymentMethod *string

	TrackingNumber  *string
	TrackingCourier *string
	DocumentURL     *string

	AppendMessage    *ordermodels.AdminMessage
	MarkMessagesRead bool
}

// IsEmpty reports whether the patch carries no change at all.
func (p OrderPatch) IsEmpty() bool {
	return p.Status == nil && p.PaymentStatus == nil && p.PaymentMethod == nil &&
		p.TrackingNumber == nil && p.TrackingCourier == nil && p.DocumentURL == nil &&
		p.AppendMessage == nil && !p.MarkMessagesRead
}

// WriteTarget names one of the dual-write destinations.
type WriteTarget string

const (
	TargetCanonical WriteTarget = "canonical"
	TargetEmbedded  WriteTarget = "embedded"
)

// StoreWriteResult is the outcome of one write target.
type StoreWriteResult struct {
	Target  WriteTarget `json:"target"`
	Applied bool        `json:"applied"`
	Skipped bool        `json:"skipped"` // no copy exists in this target
	Error   string      `json:"error,omitempty"`
}

// SyncResult is the aggregated outcome of a dual write. Degraded means one
// target failed while the other succeeded; because the canonical store is
// authoritative this is reported as degraded success, not hard failure.
type SyncResult struct {
	Order    ordermodels.OrderRecord `json:"order"`
	Results  []StoreWriteResult      `json:"perStoreResult"`
	Degraded bool                    `json:"degraded"`
}

// DualWriteCoordinator applies an update to every store holding a copy of an
// order. The two writes are independent best-effort sequential writes, not a
// two-phase commit: transient divergence is accepted and resolved permanently
// by the migration path.
type DualWriteCoordinator struct {
	store *orderstore.RecordStore
	log   *logrus.Logger
}

// NewDualWriteCoordinator builds a coordinator over one environment's stores.
func NewDualWriteCoordinator(store *orderstore.RecordStore) *DualWriteCoordinator {
	return &DualWriteCoordinator{
		store: store,
		log:   logger.GetAppLogger(),
	}
}

// Resolve locates the canonical record for a loose identifier. The candidate
// set is scoped to the client when the identifier carries an email, otherwise
// searched across all alias fields.
func (c *DualWriteCoordinator) Resolve(ctx context.Context, identifier string) (ordermodels.OrderRecord, error) {
	var zero ordermodels.OrderRecord

	id := ordermodels.ParseOrderID(identifier)
	if id.IsZero() {
		return zero, common.ErrInvalidInput
	}

	var candidates []ordermodels.OrderRecord
	var err error
	if id.ClientEmail != "" {
		candidates, err = c.store.Orders.ListByClient(ctx, id.ClientEmail)
	} else {
		candidates, err = c.store.Orders.FindByTokenAlias(ctx, id.OrderToken)
	}
	if err != nil {
		return zero, err
	}

	record, err := ResolveRecord(identifier, candidates)
	if err != nil {
		return zero, err
	}
	return *record, nil
}

// ApplyUpdate resolves the target order and writes the patch into the
// canonical store and, when a legacy embedded copy still exists, into the
// profile's embedded list. Failure of either target does not roll back the
// other. Every successful write sets lastUpdated to the operation's start
// instant.
func (c *DualWriteCoordinator) ApplyUpdate(ctx context.Context, identifier string, patch OrderPatch) (*SyncResult, error) {
	if patch.IsEmpty() {
		return nil, common.ErrInvalidInput
	}

	startedAt := time.Now().UnixMilli()

	current, err := c.Resolve(ctx, identifier)
	if err != nil {
		return nil, err
	}

	if err := validateTransitions(current, patch); err != nil {
		return nil, err
	}

	result := &SyncResult{Order: current}

	// Canonical write first; the canonical store is authoritative.
	canonical := StoreWriteResult{Target: TargetCanonical}
	if update := patch.buildUpdate(current, startedAt); len(update) == 0 {
		// Mark-read on an order that has no messages; nothing to write.
		canonical.Applied = true
	} else if updated, err := c.store.Orders.Patch(ctx, current.OrderID(), update); err != nil {
		canonical.Error = err.Error()
		c.log.WithError(err).WithField("order", current.OrderID().String()).Error("Canonical order write failed")
	} else {
		canonical.Applied = true
		result.Order = updated
	}
	result.Results = append(result.Results, canonical)

	// Independent embedded write; skipped when the profile is already
	// migrated or holds no matching snapshot.
	embedded := c.applyEmbedded(ctx, current, identifier, patch, startedAt)
	result.Results = append(result.Results, embedded)

	applied, failed := 0, 0
	for _, r := range result.Results {
		switch {
		case r.Applied:
			applied++
		case !r.Skipped:
			failed++
		}
	}
	result.Degraded = applied > 0 && failed > 0

	if applied == 0 {
		return result, common.NewError(
			common.ErrCodePartialWrite,
			"No store accepted the order update",
			common.StatusInternalServerError,
			result.Results,
		)
	}
	if result.Degraded {
		c.log.WithFields(logrus.Fields{
			"order":   current.OrderID().String(),
			"results": fmt.Sprintf("%+v", result.Results),
		}).Warn("Dual write degraded, one target failed")
	}
	return result, nil
}

// MarkMessagesRead flips isRead on every admin message of the order in one
// update per document.
func (c *DualWriteCoordinator) MarkMessagesRead(ctx context.Context, identifier string) (*SyncResult, error) {
	return c.ApplyUpdate(ctx, identifier, OrderPatch{MarkMessagesRead: true})
}

func validateTransitions(current ordermodels.OrderRecord, patch OrderPatch) error {
	if patch.Status != nil {
		from := current.Status
		if from == "" {
			from = ordermodels.StatusNew
		}
		if !from.CanTransitionTo(*patch.Status) {
			return common.NewError(
				common.ErrCodeOrderTransition,
				fmt.Sprintf("Status %q is not reachable from %q", *patch.Status, from),
				common.StatusConflict,
				nil,
			)
		}
	}
	if patch.PaymentStatus != nil {
		from := current.PaymentStatus
		if !from.CanTransitionTo(*patch.PaymentStatus) {
			return common.NewError(
				common.ErrCodeOrderTransition,
				fmt.Sprintf("Payment status %q is not reachable from %q", *patch.PaymentStatus, from),
				common.StatusConflict,
				nil,
			)
		}
	}
	return nil
}

// buildUpdate translates the patch into a Mongo update document. lastUpdated
// never moves backwards and is only stamped alongside an actual change; an
// empty document means there is nothing to write.
func (p OrderPatch) buildUpdate(current ordermodels.OrderRecord, startedAt int64) bson.M {
	set := bson.M{}
	if p.Status != nil {
		set["status"] = *p.Status
	}
	if p.PaymentStatus != nil {
		set["paymentStatus"] = *p.PaymentStatus
	}
	if p.PaymentMethod != nil {
		set["paymentMethod"] = *p.PaymentMethod
	}
	if p.TrackingNumber != nil {
		set["tracking.number"] = *p.TrackingNumber
	}
	if p.TrackingCourier != nil {
		set["tracking.courier"] = *p.TrackingCourier
	}
	if p.DocumentURL != nil {
		set["documentUrl"] = *p.DocumentURL
	}
	// The all-positional operator requires the array to exist; records created
	// outside this system may carry no adminMessages field at all.
	if p.MarkMessagesRead && len(current.AdminMessages) > 0 {
		set["adminMessages.$[].isRead"] = true
	}

	update := bson.M{}
	if p.AppendMessage != nil {
		msg := *p.AppendMessage
		if msg.At == 0 {
			msg.At = startedAt
		}
		if msg.Attachments == nil {
			msg.Attachments = []string{}
		}
		msg.IsRead = false
		update["$push"] = bson.M{"adminMessages": msg}
	}
	if len(set) == 0 && len(update) == 0 {
		return update
	}
	if startedAt >= current.LastUpdated {
		set["lastUpdated"] = startedAt
	}
	if len(set) > 0 {
		update["$set"] = set
	}
	return update
}

// applyEmbedded resolves the same logical order inside the profile's legacy
// embedded list and applies the equivalent patch there.
func (c *DualWriteCoordinator) applyEmbedded(ctx context.Context, current ordermodels.OrderRecord, identifier string, patch OrderPatch, startedAt int64) StoreWriteResult {
	out := StoreWriteResult{Target: TargetEmbedded}

	profile, err := c.store.Profiles.Get(ctx, current.ClientEmail)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			out.Skipped = true
			return out
		}
		out.Error = err.Error()
		return out
	}
	if !profile.IsLegacy() {
		out.Skipped = true
		return out
	}

	idx, err := ResolveSnapshot(identifier, profile.Orders)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			out.Skipped = true
			return out
		}
		out.Error = err.Error()
		return out
	}

	patch.applyToSnapshot(profile.Orders[idx], startedAt)

	if err := c.store.Profiles.Patch(ctx, profile.Email, bson.M{"orders": profile.Orders}); err != nil {
		out.Error = err.Error()
		c.log.WithError(err).WithField("email", profile.Email).Error("Embedded order write failed")
		return out
	}
	out.Applied = true
	return out
}

// applyToSnapshot mutates a legacy snapshot map in place with the same
// semantics as buildUpdate.
func (p OrderPatch) applyToSnapshot(snapshot ordermodels.OrderSnapshot, startedAt int64) {
	snapshot["lastUpdated"] = startedAt
	if p.Status != nil {
		snapshot["status"] = string(*p.Status)
	}
	if p.PaymentStatus != nil {
		snapshot["paymentStatus"] = string(*p.PaymentStatus)
	}
	if p.PaymentMethod != nil {
		snapshot["paymentMethod"] = *p.PaymentMethod
	}
	if p.TrackingNumber != nil || p.TrackingCourier != nil {
		tracking := asMap(snapshot["tracking"])
		if tracking == nil {
			tracking = map[string]interface{}{}
		}
		if p.TrackingNumber != nil {
			tracking["number"] = *p.TrackingNumber
		}
		if p.TrackingCourier != nil {
			tracking["courier"] = *p.TrackingCourier
		}
		snapshot["tracking"] = tracking
	}
	if p.DocumentURL != nil {
		snapshot["documentUrl"] = *p.DocumentURL
	}
	if p.MarkMessagesRead {
		for _, entry := range asSlice(snapshot["adminMessages"]) {
			if m := asMap(entry); m != nil {
				m["isRead"] = true
			}
		}
	}
	if p.AppendMessage != nil {
		msg := *p.AppendMessage
		if msg.At == 0 {
			msg.At = startedAt
		}
		msg.IsRead = false
		messages := asSlice(snapshot["adminMessages"])
		snapshot["adminMessages"] = append(messages, msg)
	}
}
