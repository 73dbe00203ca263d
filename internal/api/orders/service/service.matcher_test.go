package ordersvc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ordermodels "github.com/orimhanre/distrinaranjos-sub004/internal/api/orders/models"
	"github.com/orimhanre/distrinaranjos-sub004/internal/common"
)

func TestResolveRecord_MatchesCanonicalToken(t *testing.T) {
	records := []ordermodels.OrderRecord{
		{ClientEmail: "ana@example.com", OrderToken: "ORD-1001"},
		{ClientEmail: "ana@example.com", OrderToken: "ORD-1002"},
	}

	match, err := ResolveRecord("ORD-1002", records)
	require.NoError(t, err)
	assert.Equal(t, "ORD-1002", match.OrderToken)
}

func TestResolveRecord_MatchesInvoiceNumber(t *testing.T) {
	records := []ordermodels.OrderRecord{
		{ClientEmail: "ana@example.com", OrderToken: "ORD-1001", InvoiceNumber: "INV-77"},
		{ClientEmail: "ana@example.com", OrderToken: "ORD-1002", InvoiceNumber: "INV-78"},
	}

	match, err := ResolveRecord("INV-78", records)
	require.NoError(t, err)
	assert.Equal(t, "ORD-1002", match.OrderToken)
}

func TestResolveRecord_StripsEmailPrefix(t *testing.T) {
	records := []ordermodels.OrderRecord{
		{ClientEmail: "ana@example.com", OrderToken: "ORD-1001"},
		{ClientEmail: "ana@example.com", OrderToken: "ORD-1002"},
	}

	match, err := ResolveRecord("ana@example.com_ORD-1001", records)
	require.NoError(t, err)
	assert.Equal(t, "ORD-1001", match.OrderToken)
}

func TestResolveRecord_TokenContainingSeparator(t *testing.T) {
	records := []ordermodels.OrderRecord{
		{ClientEmail: "ana@example.com", OrderToken: "ORD_2024_55"},
	}

	match, err := ResolveRecord("ana@example.com_ORD_2024_55", records)
	require.NoError(t, err)
	assert.Equal(t, "ORD_2024_55", match.OrderToken)
}

func TestResolveRecord_NotFound(t *testing.T) {
	records := []ordermodels.OrderRecord{
		{ClientEmail: "ana@example.com", OrderToken: "ORD-1001"},
	}

	_, err := ResolveRecord("ORD-9999", records)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestResolveRecord_EmptyCandidates(t *testing.T) {
	_, err := ResolveRecord("ORD-1", nil)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestResolveRecord_AmbiguousWithinTier(t *testing.T) {
	records := []ordermodels.OrderRecord{
		{ClientEmail: "ana@example.com", OrderToken: "DUP-1"},
		{ClientEmail: "bob@example.com", OrderToken: "DUP-1"},
	}

	_, err := ResolveRecord("DUP-1", records)
	assert.ErrorIs(t, err, common.ErrAmbiguous)
}

func TestResolveRecord_EarlierTierWinsOverLater(t *testing.T) {
	// The identifier equals one record's canonical token and, after email
	// stripping, would also match the other. The canonical tier decides
	// alone.
	records := []ordermodels.OrderRecord{
		{ClientEmail: "ana@example.com", OrderToken: "ORD-5"},
		{ClientEmail: "bob@example.com", OrderToken: "other", InvoiceNumber: "ignored"},
	}

	match, err := ResolveRecord("ORD-5", records)
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", match.ClientEmail)
}

func TestResolveSnapshot_LegacyAliasFields(t *testing.T) {
	snapshots := []ordermodels.OrderSnapshot{
		{"orderNumber": "PED-10"},
		{"numeroPedido": "PED-11"},
	}

	idx, err := ResolveSnapshot("PED-11", snapshots)
	require.NoError(t, err)
	assert.Equal(t, 1, idx)
}

func TestResolveSnapshot_StrippedSegmentAgainstAnyAlias(t *testing.T) {
	snapshots := []ordermodels.OrderSnapshot{
		{"orderToken": "T-1"},
		{"numeroPedido": "PED-42"},
	}

	idx, err := ResolveSnapshot("carlos@tienda.co_PED-42", snapshots)
	require.NoError(t, err)
	assert.Equal(t, 1, idx)
}

func TestParseOrderID(t *testing.T) {
	cases := []struct {
		in    string
		email string
		token string
	}{
		{"ana@example.com_ORD-1", "ana@example.com", "ORD-1"},
		{"Ana@Example.com_ORD-1", "ana@example.com", "ORD-1"},
		{"ana@example.com_ORD_2024_55", "ana@example.com", "ORD_2024_55"},
		{"ORD-1", "", "ORD-1"},
		{"ORD_2024", "", "ORD_2024"}, // prefix without @ never splits
		{"  ORD-1  ", "", "ORD-1"},
	}
	for _, tc := range cases {
		id := ordermodels.ParseOrderID(tc.in)
		assert.Equal(t, tc.email, id.ClientEmail, tc.in)
		assert.Equal(t, tc.token, id.OrderToken, tc.in)
	}
}

func TestOrderIDString_RoundTrip(t *testing.T) {
	id := ordermodels.OrderID{ClientEmail: "ana@example.com", OrderToken: "ORD-9"}
	assert.Equal(t, id, ordermodels.ParseOrderID(id.String()))
}
