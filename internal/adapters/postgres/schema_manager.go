package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/qpago/serfinsa-settler/internal/domain"
	"github.com/qpago/serfinsa-settler/internal/domain/models"
)

const (
	ledgerTable        = "liquidaciones_sv"
	transactionsTable  = "transactions"
	dayBatchTable      = "lote_sv"
	merchantBatchTable = "lote_sv_business"
)

// SchemaManager implements ports.SchemaManager against the Postgres
// catalog. All DDL is additive; existing structure is never dropped or
// narrowed.
type SchemaManager struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewSchemaManager creates a new schema manager
func NewSchemaManager(pool *pgxpool.Pool, logger *zap.Logger) *SchemaManager {
	return &SchemaManager{pool: pool, logger: logger}
}

// TableExists checks the schema catalog for the named table
func (m *SchemaManager) TableExists(ctx context.Context, table string) (bool, error) {
	var exists bool
	err := m.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM information_schema.tables
			WHERE table_schema = current_schema() AND table_name = $1
		)`, table).Scan(&exists)
	if err != nil {
		return false, domain.WrapError(domain.ErrorCodeDBQueryFailed, "check table existence", err).
			WithDetail("table", table)
	}
	return exists, nil
}

// ColumnExists checks the schema catalog for a column on a table
func (m *SchemaManager) ColumnExists(ctx context.Context, table, column string) (bool, error) {
	var exists bool
	err := m.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM information_schema.columns
			WHERE table_schema = current_schema() AND table_name = $1 AND column_name = $2
		)`, table, column).Scan(&exists)
	if err != nil {
		return false, domain.WrapError(domain.ErrorCodeDBQueryFailed, "check column existence", err).
			WithDetail("table", table).
			WithDetail("column", column)
	}
	return exists, nil
}

// EnsureReconciliationColumns adds the reconciled transaction id column to
// the ledger when absent. The business id column distinguishes the legacy
// schema variant and is deliberately never added here.
func (m *SchemaManager) EnsureReconciliationColumns(ctx context.Context) error {
	exists, err := m.ColumnExists(ctx, ledgerTable, "qpay_transac_id")
	if err != nil {
		return err
	}
	if exists {
		m.logger.Debug("Column qpay_transac_id already present", zap.String("table", ledgerTable))
		return nil
	}

	_, err = m.pool.Exec(ctx,
		`ALTER TABLE liquidaciones_sv ADD COLUMN qpay_transac_id VARCHAR(255)`)
	if err != nil {
		return domain.WrapError(domain.ErrorCodeSchemaDDLFailed, "add qpay_transac_id column", err)
	}

	m.logger.Info("Column qpay_transac_id added", zap.String("table", ledgerTable))
	return nil
}

// EnsureBatchIDColumn adds the batch id column and its index to the ledger
// when absent
func (m *SchemaManager) EnsureBatchIDColumn(ctx context.Context) error {
	exists, err := m.ColumnExists(ctx, ledgerTable, "lote_id")
	if err != nil {
		return err
	}
	if !exists {
		_, err = m.pool.Exec(ctx,
			`ALTER TABLE liquidaciones_sv ADD COLUMN lote_id BIGINT`)
		if err != nil {
			return domain.WrapError(domain.ErrorCodeSchemaDDLFailed, "add lote_id column", err)
		}
		m.logger.Info("Column lote_id added", zap.String("table", ledgerTable))
	} else {
		m.logger.Debug("Column lote_id already present", zap.String("table", ledgerTable))
	}

	_, err = m.pool.Exec(ctx,
		`CREATE INDEX IF NOT EXISTS idx_liquidaciones_lote_id ON liquidaciones_sv (lote_id)`)
	if err != nil {
		return domain.WrapError(domain.ErrorCodeSchemaDDLFailed, "create lote_id index", err)
	}
	return nil
}

// EnsureDayBatchTable creates the parent batch table when absent, in the
// canonical shape keyed by (fecha_lote, business_id). The child table is
// owned by migrations and is never created here.
func (m *SchemaManager) EnsureDayBatchTable(ctx context.Context) error {
	exists, err := m.TableExists(ctx, dayBatchTable)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	m.logger.Warn("Parent batch table missing, creating it", zap.String("table", dayBatchTable))

	_, err = m.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS lote_sv (
			id                  BIGSERIAL PRIMARY KEY,
			fecha_lote          DATE NOT NULL,
			business_id         VARCHAR(100) NOT NULL,
			total_comercios     INT NOT NULL DEFAULT 0,
			total_transacciones INT NOT NULL DEFAULT 0,
			total_monto_tran    NUMERIC(15,2) DEFAULT 0,
			total_monto_ajus    NUMERIC(15,2) DEFAULT 0,
			total_monto_texe    NUMERIC(15,2) DEFAULT 0,
			total_subtotal      NUMERIC(15,2) DEFAULT 0,
			total_monto_iva     NUMERIC(15,2) DEFAULT 0,
			total_comisionab    NUMERIC(15,2) DEFAULT 0,
			total_com_monto     NUMERIC(15,2) DEFAULT 0,
			total_com_mtoiva    NUMERIC(15,2) DEFAULT 0,
			total_retencion2    NUMERIC(15,2) DEFAULT 0,
			total_retenido      NUMERIC(15,2) DEFAULT 0,
			total_monto_debi    NUMERIC(15,2) DEFAULT 0,
			total_monto_deposito NUMERIC(15,2) DEFAULT 0,
			iva_porc            NUMERIC(8,4),
			estado              VARCHAR(20) NOT NULL DEFAULT 'pendiente',
			created_at          TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at          TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CONSTRAINT unique_fecha_lote_business UNIQUE (fecha_lote, business_id)
		)`)
	if err != nil {
		return domain.WrapError(domain.ErrorCodeSchemaDDLFailed, "create parent batch table", err)
	}

	m.logger.Info("Parent batch table created", zap.String("table", dayBatchTable))
	return nil
}

// Resolve inspects the catalog once and returns the schema variant
// descriptor the run operates under. A missing parent table resolves as
// canonical, since EnsureDayBatchTable creates it in the canonical shape.
func (m *SchemaManager) Resolve(ctx context.Context) (*models.SchemaInfo, error) {
	info := &models.SchemaInfo{}

	parentExists, err := m.TableExists(ctx, dayBatchTable)
	if err != nil {
		return nil, err
	}
	if parentExists {
		info.ParentHasBusinessID, err = m.ColumnExists(ctx, dayBatchTable, "business_id")
		if err != nil {
			return nil, err
		}
	} else {
		info.ParentHasBusinessID = true
	}

	info.LedgerHasBusinessID, err = m.ColumnExists(ctx, ledgerTable, "business_id")
	if err != nil {
		return nil, err
	}

	m.logger.Info("Schema variant resolved",
		zap.Bool("parent_has_business_id", info.ParentHasBusinessID),
		zap.Bool("ledger_has_business_id", info.LedgerHasBusinessID),
	)
	return info, nil
}

// ParentColumns returns the column names currently present on the parent
// batch table, for the column-presence-aware roll-up update.
func (m *SchemaManager) ParentColumns(ctx context.Context) (map[string]struct{}, error) {
	rows, err := m.pool.Query(ctx, `
		SELECT column_name FROM information_schema.columns
		WHERE table_schema = current_schema() AND table_name = $1`, dayBatchTable)
	if err != nil {
		return nil, domain.WrapError(domain.ErrorCodeDBQueryFailed, "list parent batch columns", err)
	}
	defer rows.Close()

	cols := make(map[string]struct{})
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan column name: %w", err)
		}
		cols[name] = struct{}{}
	}
	return cols, rows.Err()
}
