package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/qpago/serfinsa-settler/internal/domain"
	"github.com/qpago/serfinsa-settler/internal/domain/models"
)

// LedgerRepository implements ports.LedgerRepository over the settlement
// ledger table
type LedgerRepository struct {
	pool   *pgxpool.Pool
	schema *models.SchemaInfo
	logger *zap.Logger
}

// NewLedgerRepository creates a new ledger repository
func NewLedgerRepository(pool *pgxpool.Pool, schema *models.SchemaInfo, logger *zap.Logger) *LedgerRepository {
	return &LedgerRepository{pool: pool, schema: schema, logger: logger}
}

// SeqNumExists reports whether a ledger row with the canonical sequence
// number is already present. The stored column's type depends on schema
// history, so the comparison casts to text on both sides.
func (r *LedgerRepository) SeqNumExists(ctx context.Context, seqNum string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM liquidaciones_sv WHERE "SEQ_NUM"::text = $1)`,
		seqNum).Scan(&exists)
	if err != nil {
		return false, domain.WrapError(domain.ErrorCodeDBQueryFailed, "lookup sequence number", err).
			WithDetail("seq_num", seqNum)
	}
	return exists, nil
}

// InsertRow inserts one settlement row. Only detail columns that carried a
// value in the workbook are written; the rest stay NULL.
func (r *LedgerRepository) InsertRow(ctx context.Context, row *models.LedgerRow) error {
	cols := make([]string, 0, len(row.Fields))
	placeholders := make([]string, 0, len(row.Fields))
	args := make([]any, 0, len(row.Fields))

	// LedgerColumns fixes the order so the statement text is stable across
	// rows of the same workbook.
	for _, col := range models.LedgerColumns {
		value, ok := row.Fields[col]
		if !ok {
			continue
		}
		cols = append(cols, quoteIdent(col))
		placeholders = append(placeholders, fmt.Sprintf("$%d", len(args)+1))
		args = append(args, value)
	}
	if len(cols) == 0 {
		return domain.NewDomainError(domain.ErrorCodeIngestInsertFailed, "row has no insertable fields")
	}

	query := fmt.Sprintf("INSERT INTO liquidaciones_sv (%s) VALUES (%s)",
		strings.Join(cols, ", "), strings.Join(placeholders, ", "))

	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		return domain.WrapError(domain.ErrorCodeIngestInsertFailed, "insert settlement row", err)
	}
	return nil
}

// SetReconciliation writes the recovered transaction id onto the row keyed
// by its sequence number. On schemas carrying the business id column, the
// business id is written in the same statement.
func (r *LedgerRepository) SetReconciliation(ctx context.Context, seqNum, transactionID, businessID string) error {
	query, args := reconciliationUpdateStatement(r.schema, seqNum, transactionID, businessID)
	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		return domain.WrapError(domain.ErrorCodeReconcileWriteFailed, "write reconciliation", err).
			WithDetail("seq_num", seqNum)
	}
	return nil
}

// reconciliationUpdateStatement builds the write-back for the resolved
// schema variant; legacy ledgers lack the business id column.
func reconciliationUpdateStatement(schema *models.SchemaInfo, seqNum, transactionID, businessID string) (string, []any) {
	if schema.LedgerHasBusinessID {
		return `UPDATE liquidaciones_sv SET qpay_transac_id = $1, business_id = $2 WHERE "SEQ_NUM"::text = $3`,
			[]any{transactionID, nullText(businessID), seqNum}
	}
	return `UPDATE liquidaciones_sv SET qpay_transac_id = $1 WHERE "SEQ_NUM"::text = $2`,
		[]any{transactionID, seqNum}
}

// UnbatchedGroups groups reconciled, unbatched rows by (business id, date)
// and returns the per-group aggregated totals. Monetary sums are exact
// decimals coalesced to zero; the average VAT rate stays NULL when no row
// carried one.
func (r *LedgerRepository) UnbatchedGroups(ctx context.Context) ([]models.BatchGroup, error) {
	// Grouping keys on business_id; a ledger without the column has no
	// rows eligible for batching.
	if !r.schema.LedgerHasBusinessID {
		r.logger.Warn("Ledger table lacks the business_id column, skipping batch grouping")
		return nil, nil
	}

	rows, err := r.pool.Query(ctx, `
		SELECT
			business_id,
			to_char("FECHA_TRAN"::date, 'YYYY-MM-DD') AS fecha_lote,
			COUNT(*) AS total_transacciones,
			COALESCE(SUM("MONTO_TRAN"), 0),
			COALESCE(SUM("MONTO_AJUS"), 0),
			COALESCE(SUM("MONTO_TEXE"), 0),
			COALESCE(SUM("SUBTOTAL"), 0),
			COALESCE(SUM("MONTO_IVA"), 0),
			COALESCE(SUM("COMISIONAB"), 0),
			COALESCE(SUM("COM_MONTO"), 0),
			COALESCE(SUM("COM_MTOIVA"), 0),
			COALESCE(SUM("RETENCION2"), 0),
			COALESCE(SUM("RETENIDO"), 0),
			COALESCE(SUM("MONTO_DEBI"), 0),
			COALESCE(SUM("DEPOSITO"), 0),
			AVG("IVA_PORC")
		FROM liquidaciones_sv
		WHERE business_id IS NOT NULL
		AND lote_id IS NULL
		GROUP BY business_id, "FECHA_TRAN"::date`)
	if err != nil {
		return nil, domain.WrapError(domain.ErrorCodeDBQueryFailed, "group unbatched rows", err)
	}
	defer rows.Close()

	var groups []models.BatchGroup
	for rows.Next() {
		group, err := scanBatchGroup(rows)
		if err != nil {
			return nil, err
		}
		groups = append(groups, *group)
	}
	return groups, rows.Err()
}

// AssignBatchID stamps batchID onto every row of the group that is still
// unclaimed. Re-checking lote_id IS NULL at update time guards against
// rows claimed by a prior partial run.
func (r *LedgerRepository) AssignBatchID(ctx context.Context, businessID, batchDate string, batchID int64) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE liquidaciones_sv
		SET lote_id = $1
		WHERE business_id = $2
		AND "FECHA_TRAN"::date = $3::date
		AND lote_id IS NULL`,
		batchID, businessID, batchDate)
	if err != nil {
		return 0, domain.WrapError(domain.ErrorCodeDBQueryFailed, "assign batch id", err).
			WithDetail("business_id", businessID).
			WithDetail("fecha_lote", batchDate)
	}
	return tag.RowsAffected(), nil
}

func scanBatchGroup(rows pgx.Rows) (*models.BatchGroup, error) {
	var (
		group models.BatchGroup
		sums  [12]pgtype.Numeric
		avg   pgtype.Numeric
	)
	err := rows.Scan(
		&group.BusinessID, &group.BatchDate, &group.Totals.TransactionCount,
		&sums[0], &sums[1], &sums[2], &sums[3], &sums[4], &sums[5],
		&sums[6], &sums[7], &sums[8], &sums[9], &sums[10], &sums[11],
		&avg,
	)
	if err != nil {
		return nil, fmt.Errorf("scan batch group: %w", err)
	}

	dst := []decimalField{
		{&group.Totals.Amount, sums[0]},
		{&group.Totals.Adjustments, sums[1]},
		{&group.Totals.TaxExempt, sums[2]},
		{&group.Totals.Subtotal, sums[3]},
		{&group.Totals.VAT, sums[4]},
		{&group.Totals.CommissionBase, sums[5]},
		{&group.Totals.CommissionAmount, sums[6]},
		{&group.Totals.CommissionVAT, sums[7]},
		{&group.Totals.Retention, sums[8]},
		{&group.Totals.Retained, sums[9]},
		{&group.Totals.Debited, sums[10]},
		{&group.Totals.Deposit, sums[11]},
	}
	for _, f := range dst {
		d, err := pgNumericToDecimal(f.src)
		if err != nil {
			return nil, err
		}
		*f.dst = d
	}

	group.Totals.VATRate, err = pgNumericToDecimalPtr(avg)
	if err != nil {
		return nil, err
	}
	return &group, nil
}

type decimalField struct {
	dst *decimal.Decimal
	src pgtype.Numeric
}
