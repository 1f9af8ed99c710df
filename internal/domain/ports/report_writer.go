package ports

import "github.com/qpago/serfinsa-settler/internal/domain/models"

// ReportWriter exports the missing-transactions audit as a spreadsheet
type ReportWriter interface {
	WriteMissingReport(path string, missing []models.MissingTransaction) error
}
