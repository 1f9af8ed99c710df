package ports

import (
	"context"

	"github.com/qpago/serfinsa-settler/internal/domain/models"
)

// SchemaManager guards the additive runtime DDL this pipeline depends on.
// Every method is idempotent and safe to invoke on each run; none ever
// drops or narrows existing structure.
type SchemaManager interface {
	// EnsureReconciliationColumns adds the transaction id column to the
	// ledger when absent. The business id column is never added: its
	// presence is what distinguishes the schema variants.
	EnsureReconciliationColumns(ctx context.Context) error

	// EnsureBatchIDColumn adds the batch id column and its index to the
	// ledger when absent.
	EnsureBatchIDColumn(ctx context.Context) error

	// EnsureDayBatchTable creates the parent batch table when absent. The
	// child batch table is owned by migrations and is never auto-created.
	EnsureDayBatchTable(ctx context.Context) error

	// TableExists checks the schema catalog for the named table.
	TableExists(ctx context.Context, table string) (bool, error)

	// Resolve inspects the catalog once and returns the schema variant
	// descriptor the run operates under.
	Resolve(ctx context.Context) (*models.SchemaInfo, error)
}
