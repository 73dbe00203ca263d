// Package ordersvc contains the order core: identifier matching, legacy field
// normalization, dual-write synchronization, lifecycle management and
// identity batch deletion.
package ordersvc

import (
	ordermodels "github.com/orimhanre/distrinaranjos-sub004/internal/api/orders/models"
	"github.com/orimhanre/distrinaranjos-sub004/internal/common"
	"github.com/orimhanre/distrinaranjos-sub004/internal/utility"
)

// aliasView is the matcher's flattened view of one candidate order. Alias
// field names never leak outside this package.
type aliasView struct {
	token        string
	invoice      string
	orderNumber  string
	numeroPedido string
}

func viewOfRecord(r ordermodels.OrderRecord) aliasView {
	return aliasView{token: r.OrderToken, invoice: r.InvoiceNumber}
}

func viewOfSnapshot(s ordermodels.OrderSnapshot) aliasView {
	return aliasView{
		token:        utility.GetString(s, "orderToken"),
		invoice:      utility.GetString(s, "invoiceNumber"),
		orderNumber:  utility.GetString(s, "orderNumber"),
		numeroPedido: utility.GetString(s, "numeroPedido"),
	}
}

// ResolveRecord resolves a loose identifier against canonical records.
// Zero matches yields ErrNotFound, more than one yields ErrAmbiguous; the
// matcher never guesses. Pure function over the provided slice.
func ResolveRecord(identifier string, records []ordermodels.OrderRecord) (*ordermodels.OrderRecord, error) {
	views := make([]aliasView, len(records))
	for i, r := range records {
		views[i] = viewOfRecord(r)
	}
	idx, err := matchIndex(identifier, views)
	if err != nil {
		return nil, err
	}
	return &records[idx], nil
}

// ResolveSnapshot resolves a loose identifier against a profile's embedded
// legacy snapshots, returning the snapshot index.
func ResolveSnapshot(identifier string, snapshots []ordermodels.OrderSnapshot) (int, error) {
	views := make([]aliasView, len(snapshots))
	for i, s := range snapshots {
		views[i] = viewOfSnapshot(s)
	}
	return matchIndex(identifier, views)
}

// matchIndex tries the matching tiers in order until one yields at least one
// candidate: (1) the full identifier against the canonical token/invoice
// fields, (2) the full identifier against the legacy aliases, (3) the
// identifier's trailing segment (leading email stripped) against any alias
// field. The identifier is not assumed to have a fixed number of separator
// segments; degraded historical data used emails as tokens.
func matchIndex(identifier string, views []aliasView) (int, error) {
	segment := ordermodels.ParseOrderID(identifier).OrderToken

	tiers := []func(aliasView) bool{
		func(v aliasView) bool {
			return (v.token != "" && v.token == identifier) ||
				(v.invoice != "" && v.invoice == identifier)
		},
		func(v aliasView) bool {
			return (v.orderNumber != "" && v.orderNumber == identifier) ||
				(v.numeroPedido != "" && v.numeroPedido == identifier)
		},
		func(v aliasView) bool {
			if segment == "" {
				return false
			}
			return v.token == segment || v.invoice == segment ||
				v.orderNumber == segment || v.numeroPedido == segment
		},
	}

	for _, tier := range tiers {
		matched := -1
		count := 0
		for i, v := range views {
			if tier(v) {
				matched = i
				count++
			}
		}
		if count == 1 {
			return matched, nil
		}
		if count > 1 {
			return -1, common.ErrAmbiguous
		}
	}
	return -1, common.ErrNotFound
}
