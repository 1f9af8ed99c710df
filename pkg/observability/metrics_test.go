package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunMetrics_Record(t *testing.T) {
	m := NewRunMetrics()

	m.RecordIngest(40, 5, 2)
	m.RecordReconciliation(38)
	m.RecordBatches(3, 1)
	m.RecordMissing(17)
	m.RecordRun(12 * time.Second)

	assert.Equal(t, 40.0, testutil.ToFloat64(m.rowsInserted))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.rowsSkipped))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.rowsErrored))
	assert.Equal(t, 38.0, testutil.ToFloat64(m.txnsReconciled))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.batchesCreated))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.parentsUpdated))
	assert.Equal(t, 17.0, testutil.ToFloat64(m.missingTxns))
	assert.Equal(t, 12.0, testutil.ToFloat64(m.runDuration))
	assert.Greater(t, testutil.ToFloat64(m.runCompletedUnix), 0.0)
}

func TestRunMetrics_PushWithoutGatewayIsNoOp(t *testing.T) {
	m := NewRunMetrics()
	require.NoError(t, m.Push("", "serfinsa_settler"))
}
