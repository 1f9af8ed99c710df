package excel

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/qpago/serfinsa-settler/internal/domain"
)

func writeWorkbook(t *testing.T, path string, rows [][]interface{}) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	require.NoError(t, f.SaveAs(path))
}

func TestFindLatestWorkbook_PicksNewest(t *testing.T) {
	dir := t.TempDir()
	reader := NewReader(zap.NewNop())

	older := filepath.Join(dir, "Serfinsa_20240301.xlsx")
	newer := filepath.Join(dir, "Serfinsa_20240315.xlsx")
	writeWorkbook(t, older, [][]interface{}{{"SEQ_NUM"}})
	writeWorkbook(t, newer, [][]interface{}{{"SEQ_NUM"}})

	now := time.Now()
	require.NoError(t, os.Chtimes(older, now.Add(-time.Hour), now.Add(-time.Hour)))
	require.NoError(t, os.Chtimes(newer, now, now))

	path, err := reader.FindLatestWorkbook(dir, "Serfinsa*.xlsx")
	require.NoError(t, err)
	assert.Equal(t, newer, path)
}

func TestFindLatestWorkbook_SearchesSubdirectories(t *testing.T) {
	dir := t.TempDir()
	reader := NewReader(zap.NewNop())

	sub := filepath.Join(dir, "2024", "marzo")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	target := filepath.Join(sub, "Serfinsa_20240315.xlsx")
	writeWorkbook(t, target, [][]interface{}{{"SEQ_NUM"}})

	path, err := reader.FindLatestWorkbook(dir, "Serfinsa*.xlsx")
	require.NoError(t, err)
	assert.Equal(t, target, path)
}

func TestFindLatestWorkbook_NoMatchReturnsFileMissing(t *testing.T) {
	dir := t.TempDir()
	reader := NewReader(zap.NewNop())

	writeWorkbook(t, filepath.Join(dir, "otro_reporte.xlsx"), [][]interface{}{{"X"}})

	_, err := reader.FindLatestWorkbook(dir, "Serfinsa*.xlsx")
	require.Error(t, err)
	assert.Equal(t, domain.ErrorCodeIngestFileMissing, domain.CodeOf(err))
}

func TestReadRows(t *testing.T) {
	dir := t.TempDir()
	reader := NewReader(zap.NewNop())

	path := filepath.Join(dir, "Serfinsa_20240315.xlsx")
	writeWorkbook(t, path, [][]interface{}{
		{"SEQ_NUM", "MONTO_TRAN", "AFILIADO"},
		{"1001", "100.50", "4401"},
		{"1002", "75.25"}, // short row: trailing cells come back empty
	})

	records, err := reader.ReadRows(path)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "1001", records[0]["SEQ_NUM"])
	assert.Equal(t, "100.50", records[0]["MONTO_TRAN"])
	assert.Equal(t, "4401", records[0]["AFILIADO"])

	assert.Equal(t, "1002", records[1]["SEQ_NUM"])
	assert.Equal(t, "", records[1]["AFILIADO"])
}

func TestReadRows_NotAWorkbook(t *testing.T) {
	dir := t.TempDir()
	reader := NewReader(zap.NewNop())

	path := filepath.Join(dir, "Serfinsa_corrupt.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("not a zip archive"), 0o644))

	_, err := reader.ReadRows(path)
	require.Error(t, err)
	assert.Equal(t, domain.ErrorCodeIngestFileInvalid, domain.CodeOf(err))
}
