package excel

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/qpago/serfinsa-settler/internal/domain/models"
)

func TestWriteMissingReport(t *testing.T) {
	dir := t.TempDir()
	writer := NewReportWriter(zap.NewNop())

	created := time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC)
	missing := []models.MissingTransaction{
		{
			TransactionID:     "tx-1",
			OrderNumber:       "ORD-1",
			Reference:         "900412345678",
			Amount:            decimal.RequireFromString("45.00"),
			AuthorizationCode: "AUTH1",
			Currency:          "USD",
			Status:            1,
			PaymentMethodName: "Liquidaciones SV",
			Email:             "cliente@example.com",
			BillToName:        "Cliente Uno",
			CreatedAt:         created,
			UpdatedAt:         created,
		},
	}

	path := filepath.Join(dir, "transacciones_faltantes_test.xlsx")
	require.NoError(t, writer.WriteMissingReport(path, missing))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, MissingReportHeaders, rows[0])
	assert.Equal(t, "tx-1", rows[1][0])
	assert.Equal(t, "45", rows[1][3])
	assert.Equal(t, "Liquidaciones SV", rows[1][7])
	assert.Equal(t, "2024-03-15 09:30:00", rows[1][10])
}

func TestWriteMissingReport_HeaderOnlyWhenEmpty(t *testing.T) {
	dir := t.TempDir()
	writer := NewReportWriter(zap.NewNop())

	path := filepath.Join(dir, "transacciones_faltantes_empty.xlsx")
	require.NoError(t, writer.WriteMissingReport(path, nil))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, MissingReportHeaders, rows[0])
}
