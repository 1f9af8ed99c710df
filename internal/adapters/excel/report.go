package excel

import (
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/qpago/serfinsa-settler/internal/domain"
	"github.com/qpago/serfinsa-settler/internal/domain/models"
)

// MissingReportHeaders is the fixed, human-labeled column set of the
// missing-transactions export, in presentation order.
var MissingReportHeaders = []string{
	"Transaction ID",
	"Order Number",
	"Referencs",
	"Amount",
	"Authorization Code",
	"Currency",
	"Status",
	"Payment Method",
	"Email",
	"Bill To Name",
	"Created At",
	"Updated At",
}

const reportTimeLayout = "2006-01-02 15:04:05"

// ReportWriter generates the missing-transactions workbook export
type ReportWriter struct {
	logger *zap.Logger
}

// NewReportWriter creates a new report writer
func NewReportWriter(logger *zap.Logger) *ReportWriter {
	return &ReportWriter{logger: logger}
}

// WriteMissingReport writes the audit hits to an xlsx file at path
func (w *ReportWriter) WriteMissingReport(path string, missing []models.MissingTransaction) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	if err := f.SetSheetRow(sheet, "A1", &MissingReportHeaders); err != nil {
		return domain.WrapError(domain.ErrorCodeReportExportFailed, "write report header", err)
	}

	for i, m := range missing {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return domain.WrapError(domain.ErrorCodeReportExportFailed, "compute cell name", err)
		}
		row := []interface{}{
			m.TransactionID,
			m.OrderNumber,
			m.Reference,
			m.Amount.String(),
			m.AuthorizationCode,
			m.Currency,
			m.Status,
			m.PaymentMethodName,
			m.Email,
			m.BillToName,
			m.CreatedAt.Format(reportTimeLayout),
			m.UpdatedAt.Format(reportTimeLayout),
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return domain.WrapError(domain.ErrorCodeReportExportFailed,
				fmt.Sprintf("write report row %d", i+1), err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return domain.WrapError(domain.ErrorCodeReportExportFailed, "save report", err).
			WithDetail("path", path)
	}

	w.logger.Info("Missing-transactions report written",
		zap.String("path", path),
		zap.Int("rows", len(missing)),
	)
	return nil
}
