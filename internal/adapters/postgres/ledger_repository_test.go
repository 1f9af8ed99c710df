package postgres

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/qpago/serfinsa-settler/internal/domain/models"
)

func TestReconciliationUpdateStatementBySchemaVariant(t *testing.T) {
	current := &models.SchemaInfo{ParentHasBusinessID: true, LedgerHasBusinessID: true}
	legacy := &models.SchemaInfo{}

	query, args := reconciliationUpdateStatement(current, "1001", "txn-9", "biz-1")
	assert.Contains(t, query, "business_id = $2")
	require.Len(t, args, 3)
	assert.Equal(t, "txn-9", args[0])
	assert.Equal(t, pgtype.Text{String: "biz-1", Valid: true}, args[1])
	assert.Equal(t, "1001", args[2])

	// Legacy ledgers lack the business id column; the write-back only
	// carries the transaction id.
	query, args = reconciliationUpdateStatement(legacy, "1001", "txn-9", "biz-1")
	assert.NotContains(t, query, "business_id")
	assert.Equal(t, []any{"txn-9", "1001"}, args)
}

func TestReconciliationUpdateStatementNullsEmptyBusinessID(t *testing.T) {
	current := &models.SchemaInfo{LedgerHasBusinessID: true}

	_, args := reconciliationUpdateStatement(current, "1001", "txn-9", "")
	require.Len(t, args, 3)
	assert.Equal(t, pgtype.Text{Valid: false}, args[1])
}

func TestUnbatchedGroupsSkipsLegacySchema(t *testing.T) {
	// Without the business_id column there is nothing to group by; the
	// repository must not reach the database at all.
	repo := NewLedgerRepository(nil, &models.SchemaInfo{}, zap.NewNop())

	groups, err := repo.UnbatchedGroups(context.Background())
	require.NoError(t, err)
	assert.Empty(t, groups)
}
