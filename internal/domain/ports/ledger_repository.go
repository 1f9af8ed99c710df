package ports

import (
	"context"

	"github.com/qpago/serfinsa-settler/internal/domain/models"
)

// LedgerRepository defines persistence for settlement ledger rows
type LedgerRepository interface {
	// SeqNumExists reports whether a ledger row with the canonical sequence
	// number is already present. The comparison is an exact text match
	// against the type-cast stored key.
	SeqNumExists(ctx context.Context, seqNum string) (bool, error)

	// InsertRow inserts one settlement row with its detail fields.
	InsertRow(ctx context.Context, row *models.LedgerRow) error

	// SetReconciliation writes the recovered transaction id (and business id,
	// on schemas that carry the column) onto the row keyed by seqNum,
	// committing immediately.
	SetReconciliation(ctx context.Context, seqNum, transactionID, businessID string) error

	// UnbatchedGroups groups rows with a business id and no batch id by
	// (business id, date-truncated transaction timestamp) and returns the
	// per-group aggregated totals.
	UnbatchedGroups(ctx context.Context) ([]models.BatchGroup, error)

	// AssignBatchID stamps batchID onto every row matching the group that is
	// still unclaimed, and returns the number of rows updated.
	AssignBatchID(ctx context.Context, businessID, batchDate string, batchID int64) (int64, error)
}
