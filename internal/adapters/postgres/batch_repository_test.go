package postgres

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qpago/serfinsa-settler/internal/domain/models"
)

func TestRollupColumns(t *testing.T) {
	rollup := &models.DayBatch{
		ID:            7,
		MerchantCount: 4,
		Totals: models.BatchTotals{
			TransactionCount: 120,
			Amount:           decimal.RequireFromString("1000.00"),
			Deposit:          decimal.RequireFromString("950.00"),
		},
	}

	cols := rollupColumns(rollup)

	names := make([]string, 0, len(cols))
	for _, c := range cols {
		names = append(names, c.name)
	}
	assert.Equal(t, []string{
		"total_comercios",
		"total_transacciones",
		"total_monto_tran",
		"total_monto_ajus",
		"total_monto_texe",
		"total_subtotal",
		"total_monto_iva",
		"total_comisionab",
		"total_com_monto",
		"total_com_mtoiva",
		"total_retencion2",
		"total_retenido",
		"total_monto_debi",
	}, names)

	// The deposit total and the VAT rate are not part of the fixed list:
	// the update resolves their column names against the live schema.
	assert.NotContains(t, names, "total_deposito")
	assert.NotContains(t, names, "total_monto_deposito")
	assert.NotContains(t, names, "iva_porc")

	assert.Equal(t, int64(4), cols[0].value)
	assert.Equal(t, int64(120), cols[1].value)
}

func TestParentLookupStatementBySchemaVariant(t *testing.T) {
	current := &models.SchemaInfo{ParentHasBusinessID: true, LedgerHasBusinessID: true}
	legacy := &models.SchemaInfo{}

	query, args := parentLookupStatement(current, "2024-03-15", "biz-1")
	assert.Contains(t, query, "business_id = $2")
	assert.Equal(t, []any{"2024-03-15", "biz-1"}, args)

	// Legacy deployments key the parent by date alone.
	query, args = parentLookupStatement(legacy, "2024-03-15", "biz-1")
	assert.NotContains(t, query, "business_id")
	assert.Equal(t, []any{"2024-03-15"}, args)
}

func TestParentInsertStatementBySchemaVariant(t *testing.T) {
	current := &models.SchemaInfo{ParentHasBusinessID: true, LedgerHasBusinessID: true}
	legacy := &models.SchemaInfo{}

	query, args := parentInsertStatement(current, "2024-03-15", "biz-1")
	assert.Contains(t, query, "business_id")
	assert.Contains(t, query, "'pendiente'")
	assert.Equal(t, []any{"2024-03-15", "biz-1"}, args)

	query, args = parentInsertStatement(legacy, "2024-03-15", "biz-1")
	assert.NotContains(t, query, "business_id")
	assert.Contains(t, query, "'pendiente'")
	assert.Equal(t, []any{"2024-03-15"}, args)
}

func TestTotalsNumericsRoundTrip(t *testing.T) {
	totals := models.BatchTotals{
		Amount:           decimal.RequireFromString("1000.10"),
		Adjustments:      decimal.RequireFromString("-5.25"),
		TaxExempt:        decimal.RequireFromString("12.00"),
		Subtotal:         decimal.RequireFromString("994.85"),
		VAT:              decimal.RequireFromString("129.33"),
		CommissionBase:   decimal.RequireFromString("994.85"),
		CommissionAmount: decimal.RequireFromString("29.85"),
		CommissionVAT:    decimal.RequireFromString("3.88"),
		Retention:        decimal.RequireFromString("9.95"),
		Retained:         decimal.RequireFromString("9.95"),
		Debited:          decimal.RequireFromString("43.68"),
		Deposit:          decimal.RequireFromString("951.17"),
	}

	sums, err := totalsToNumerics(&totals)
	require.NoError(t, err)

	var back models.BatchTotals
	require.NoError(t, numericsToTotals(sums, &back))

	assert.True(t, totals.Amount.Equal(back.Amount))
	assert.True(t, totals.Adjustments.Equal(back.Adjustments))
	assert.True(t, totals.Deposit.Equal(back.Deposit))
	assert.True(t, totals.CommissionVAT.Equal(back.CommissionVAT))
}
