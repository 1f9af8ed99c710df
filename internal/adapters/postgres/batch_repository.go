package postgres

import (
	"context"
	"errors"
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

// BatchRepository implements ports.BatchRepository over the parent and
// child batch tables
type BatchRepository struct {
	pool   *pgxpool.Pool
	schema *models.SchemaInfo
	mgr    *SchemaManager
	logger *zap.Logger

	// parent batch columns, fetched once per run for the
	// column-presence-aware roll-up update
	parentCols map[string]struct{}
}

// NewBatchRepository creates a new batch repository
func NewBatchRepository(pool *pgxpool.Pool, schema *models.SchemaInfo, mgr *SchemaManager, logger *zap.Logger) *BatchRepository {
	return &BatchRepository{pool: pool, schema: schema, mgr: mgr, logger: logger}
}

// GetOrCreateDayBatch returns the id of the parent batch for the date,
// creating it in state pending when absent. Lookup-then-insert is not an
// atomic upsert; single-run execution makes that acceptable.
func (r *BatchRepository) GetOrCreateDayBatch(ctx context.Context, batchDate, businessID string) (int64, error) {
	var id int64
	query, args := parentLookupStatement(r.schema, batchDate, businessID)
	err := r.pool.QueryRow(ctx, query, args...).Scan(&id)
	if err == nil {
		r.logger.Debug("Parent batch already exists",
			zap.Int64("day_batch_id", id),
			zap.String("fecha_lote", batchDate),
		)
		return id, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, domain.WrapError(domain.ErrorCodeDBQueryFailed, "lookup parent batch", err).
			WithDetail("fecha_lote", batchDate)
	}

	query, args = parentInsertStatement(r.schema, batchDate, businessID)
	if err = r.pool.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return 0, domain.WrapError(domain.ErrorCodeBatchParentFailed, "create parent batch", err).
			WithDetail("fecha_lote", batchDate).
			WithDetail("business_id", businessID)
	}

	r.logger.Info("Parent batch created",
		zap.Int64("day_batch_id", id),
		zap.String("fecha_lote", batchDate),
		zap.String("business_id", businessID),
	)
	return id, nil
}

// parentLookupStatement builds the parent batch lookup for the resolved
// schema variant. Legacy deployments key the parent by date alone, one
// parent per date shared by every merchant.
func parentLookupStatement(schema *models.SchemaInfo, batchDate, businessID string) (string, []any) {
	if schema.ParentHasBusinessID {
		return `SELECT id FROM lote_sv WHERE fecha_lote = $1::date AND business_id = $2 LIMIT 1`,
			[]any{batchDate, businessID}
	}
	return `SELECT id FROM lote_sv WHERE fecha_lote = $1::date LIMIT 1`,
		[]any{batchDate}
}

// parentInsertStatement builds the parent batch insert for the resolved
// schema variant
func parentInsertStatement(schema *models.SchemaInfo, batchDate, businessID string) (string, []any) {
	if schema.ParentHasBusinessID {
		return `INSERT INTO lote_sv (fecha_lote, business_id, estado) VALUES ($1::date, $2, 'pendiente') RETURNING id`,
			[]any{batchDate, businessID}
	}
	return `INSERT INTO lote_sv (fecha_lote, estado) VALUES ($1::date, 'pendiente') RETURNING id`,
		[]any{batchDate}
}

// FindMerchantBatch returns the id of an existing child batch for
// (business id, date, parent id), or domain.ErrNotFound
func (r *BatchRepository) FindMerchantBatch(ctx context.Context, businessID, batchDate string, dayBatchID int64) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		SELECT id FROM lote_sv_business
		WHERE business_id = $1 AND fecha_lote = $2::date AND lote_sv_id = $3
		LIMIT 1`,
		businessID, batchDate, dayBatchID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, domain.ErrNotFound
	}
	if err != nil {
		return 0, domain.WrapError(domain.ErrorCodeDBQueryFailed, "lookup merchant batch", err).
			WithDetail("business_id", businessID).
			WithDetail("fecha_lote", batchDate)
	}
	return id, nil
}

// CreateMerchantBatch inserts a child batch seeded with its group totals
// in state pending and returns its id
func (r *BatchRepository) CreateMerchantBatch(ctx context.Context, batch *models.MerchantBatch) (int64, error) {
	sums, err := totalsToNumerics(&batch.Totals)
	if err != nil {
		return 0, err
	}
	vatRate, err := decimalPtrToNumeric(batch.Totals.VATRate)
	if err != nil {
		return 0, err
	}

	var id int64
	err = r.pool.QueryRow(ctx, `
		INSERT INTO lote_sv_business (
			business_id, lote_sv_id, fecha_lote,
			total_transacciones, total_monto_tran, total_monto_ajus,
			total_monto_texe, total_subtotal, total_monto_iva,
			total_comisionab, total_com_monto, total_com_mtoiva,
			total_retencion2, total_retenido, total_monto_debi,
			total_deposito, iva_porc, estado
		) VALUES (
			$1, $2, $3::date, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, 'pendiente'
		) RETURNING id`,
		batch.BusinessID, batch.DayBatchID, batch.BatchDate,
		batch.Totals.TransactionCount,
		sums[0], sums[1], sums[2], sums[3], sums[4], sums[5],
		sums[6], sums[7], sums[8], sums[9], sums[10], sums[11],
		vatRate,
	).Scan(&id)
	if err != nil {
		return 0, domain.WrapError(domain.ErrorCodeBatchGroupFailed, "create merchant batch", err).
			WithDetail("business_id", batch.BusinessID).
			WithDetail("fecha_lote", batch.BatchDate)
	}
	return id, nil
}

// DayBatchIDs returns the distinct parent ids referenced by any child batch
func (r *BatchRepository) DayBatchIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.pool.Query(ctx, `SELECT DISTINCT lote_sv_id FROM lote_sv_business`)
	if err != nil {
		return nil, domain.WrapError(domain.ErrorCodeDBQueryFailed, "list parent batch ids", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan parent batch id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// SumChildren re-aggregates every child of the parent from scratch. A full
// re-summation rather than an increment, so repeated and partial runs
// converge on the same totals.
func (r *BatchRepository) SumChildren(ctx context.Context, dayBatchID int64) (*models.DayBatch, error) {
	var (
		rollup models.DayBatch
		sums   [12]pgtype.Numeric
		avg    pgtype.Numeric
	)
	err := r.pool.QueryRow(ctx, `
		SELECT
			COUNT(DISTINCT business_id),
			COALESCE(SUM(total_transacciones), 0),
			COALESCE(SUM(total_monto_tran), 0),
			COALESCE(SUM(total_monto_ajus), 0),
			COALESCE(SUM(total_monto_texe), 0),
			COALESCE(SUM(total_subtotal), 0),
			COALESCE(SUM(total_monto_iva), 0),
			COALESCE(SUM(total_comisionab), 0),
			COALESCE(SUM(total_com_monto), 0),
			COALESCE(SUM(total_com_mtoiva), 0),
			COALESCE(SUM(total_retencion2), 0),
			COALESCE(SUM(total_retenido), 0),
			COALESCE(SUM(total_monto_debi), 0),
			COALESCE(SUM(total_deposito), 0),
			AVG(iva_porc)
		FROM lote_sv_business
		WHERE lote_sv_id = $1`, dayBatchID).Scan(
		&rollup.MerchantCount, &rollup.Totals.TransactionCount,
		&sums[0], &sums[1], &sums[2], &sums[3], &sums[4], &sums[5],
		&sums[6], &sums[7], &sums[8], &sums[9], &sums[10], &sums[11],
		&avg,
	)
	if err != nil {
		return nil, domain.WrapError(domain.ErrorCodeDBQueryFailed, "sum child batches", err).
			WithDetail("day_batch_id", dayBatchID)
	}

	if err := numericsToTotals(sums, &rollup.Totals); err != nil {
		return nil, err
	}
	if rollup.Totals.VATRate, err = pgNumericToDecimalPtr(avg); err != nil {
		return nil, err
	}
	rollup.ID = dayBatchID
	return &rollup, nil
}

// rollupColumns maps parent batch columns to the roll-up values they take.
// Older deployments miss some of these; only columns present in the live
// schema are written.
func rollupColumns(rollup *models.DayBatch) []struct {
	name  string
	value any
} {
	t := &rollup.Totals
	cols := []struct {
		name  string
		value any
	}{
		{"total_comercios", rollup.MerchantCount},
		{"total_transacciones", t.TransactionCount},
		{"total_monto_tran", t.Amount},
		{"total_monto_ajus", t.Adjustments},
		{"total_monto_texe", t.TaxExempt},
		{"total_subtotal", t.Subtotal},
		{"total_monto_iva", t.VAT},
		{"total_comisionab", t.CommissionBase},
		{"total_com_monto", t.CommissionAmount},
		{"total_com_mtoiva", t.CommissionVAT},
		{"total_retencion2", t.Retention},
		{"total_retenido", t.Retained},
		{"total_monto_debi", t.Debited},
	}
	return cols
}

// UpdateDayBatchTotals persists the roll-up onto the parent row, writing
// only the total columns present in the parent schema
func (r *BatchRepository) UpdateDayBatchTotals(ctx context.Context, dayBatchID int64, rollup *models.DayBatch) error {
	if r.parentCols == nil {
		cols, err := r.mgr.ParentColumns(ctx)
		if err != nil {
			return err
		}
		r.parentCols = cols
	}

	var (
		sets []string
		args []any
	)
	add := func(col string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	for _, c := range rollupColumns(rollup) {
		if _, ok := r.parentCols[c.name]; !ok {
			continue
		}
		if d, isDecimal := c.value.(decimal.Decimal); isDecimal {
			n, err := decimalToNumeric(d)
			if err != nil {
				return err
			}
			add(c.name, n)
			continue
		}
		add(c.name, c.value)
	}

	// The deposit total was renamed between deployments.
	deposit, err := decimalToNumeric(rollup.Totals.Deposit)
	if err != nil {
		return err
	}
	if _, ok := r.parentCols["total_monto_deposito"]; ok {
		add("total_monto_deposito", deposit)
	} else if _, ok := r.parentCols["total_deposito"]; ok {
		add("total_deposito", deposit)
	}

	if _, ok := r.parentCols["iva_porc"]; ok && rollup.Totals.VATRate != nil {
		vatRate, err := decimalToNumeric(*rollup.Totals.VATRate)
		if err != nil {
			return err
		}
		add("iva_porc", vatRate)
	}

	if len(sets) == 0 {
		r.logger.Warn("No roll-up columns present on parent batch table, nothing to update",
			zap.Int64("day_batch_id", dayBatchID))
		return nil
	}

	args = append(args, dayBatchID)
	query := fmt.Sprintf("UPDATE lote_sv SET %s WHERE id = $%d",
		strings.Join(sets, ", "), len(args))

	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		return domain.WrapError(domain.ErrorCodeBatchParentFailed, "update parent batch totals", err).
			WithDetail("day_batch_id", dayBatchID)
	}

	r.logger.Info("Parent batch totals updated",
		zap.Int64("day_batch_id", dayBatchID),
		zap.Int64("merchants", rollup.MerchantCount),
		zap.Int64("transactions", rollup.Totals.TransactionCount),
	)
	return nil
}

func totalsToNumerics(t *models.BatchTotals) ([12]pgtype.Numeric, error) {
	var out [12]pgtype.Numeric
	src := []decimal.Decimal{
		t.Amount, t.Adjustments, t.TaxExempt, t.Subtotal, t.VAT,
		t.CommissionBase, t.CommissionAmount, t.CommissionVAT,
		t.Retention, t.Retained, t.Debited, t.Deposit,
	}
	for i, d := range src {
		n, err := decimalToNumeric(d)
		if err != nil {
			return out, err
		}
		out[i] = n
	}
	return out, nil
}

func numericsToTotals(sums [12]pgtype.Numeric, t *models.BatchTotals) error {
	dst := []*decimal.Decimal{
		&t.Amount, &t.Adjustments, &t.TaxExempt, &t.Subtotal, &t.VAT,
		&t.CommissionBase, &t.CommissionAmount, &t.CommissionVAT,
		&t.Retention, &t.Retained, &t.Debited, &t.Deposit,
	}
	for i := range sums {
		d, err := pgNumericToDecimal(sums[i])
		if err != nil {
			return err
		}
		*dst[i] = d
	}
	return nil
}
