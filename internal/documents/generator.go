// Package documents produces client-facing order documents (invoices and
// order summaries) through an external rendering service.
package documents

import (
	"context"

	ordermodels "github.com/orimhanre/distrinaranjos-sub004/internal/api/orders/models"
)

// Generator renders one order into a hosted document and returns its URL.
type Generator interface {
	Render(ctx context.Context, order ordermodels.OrderRecord) (string, error)
}
