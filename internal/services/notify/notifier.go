package notify

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/qpago/serfinsa-settler/internal/domain/ports"
)

const timestampLayout = "2006-01-02 15:04:05"

// RunSummary is the end-of-run statistics block of the summary email
type RunSummary struct {
	Workbook          string
	RunID             string
	Inserted          int
	Skipped           int
	Errors            int
	TransactionsFound int
	BatchesCreated    int
	TotalProcessed    int
	Duration          string
}

// Notifier formats and dispatches run notifications. A missing recipient
// downgrades every send to a warning; notification failures never fail the
// run.
type Notifier struct {
	mailer    ports.Mailer
	recipient string
	logger    *zap.Logger
}

// NewNotifier creates a new notifier
func NewNotifier(mailer ports.Mailer, recipient string, logger *zap.Logger) *Notifier {
	return &Notifier{mailer: mailer, recipient: recipient, logger: logger}
}

// SendRunSummary sends the end-of-run processing report with the workbook
// and log file attached
func (n *Notifier) SendRunSummary(ctx context.Context, summary *RunSummary, attachments ...string) error {
	if !n.configured() {
		return nil
	}

	var body strings.Builder
	if err := summaryTmpl.Execute(&body, summary); err != nil {
		return fmt.Errorf("render summary email: %w", err)
	}

	subject := fmt.Sprintf("Procesamiento Serfinsa completado - %s", filepath.Base(summary.Workbook))
	return n.send(ctx, subject, body.String(), attachments)
}

// SendFileAlert sends the distinct missing-workbook incident alert
func (n *Notifier) SendFileAlert(ctx context.Context, searchPath string) error {
	if !n.configured() {
		return nil
	}

	var body strings.Builder
	err := alertTmpl.Execute(&body, struct {
		Timestamp  string
		SearchPath string
	}{
		Timestamp:  time.Now().Format(timestampLayout),
		SearchPath: searchPath,
	})
	if err != nil {
		return fmt.Errorf("render alert email: %w", err)
	}

	return n.send(ctx, "ALERTA: archivo de liquidaciones no encontrado", body.String(), nil)
}

// SendMissingReport sends the missing-transactions audit report with the
// export attached
func (n *Notifier) SendMissingReport(ctx context.Context, count int, reportPath string) error {
	if !n.configured() {
		return nil
	}

	var body strings.Builder
	err := missingTmpl.Execute(&body, struct {
		Timestamp  string
		Count      int
		ReportFile string
	}{
		Timestamp:  time.Now().Format(timestampLayout),
		Count:      count,
		ReportFile: filepath.Base(reportPath),
	})
	if err != nil {
		return fmt.Errorf("render missing-transactions email: %w", err)
	}

	subject := fmt.Sprintf("Reporte de Transacciones Faltantes - %d transacciones", count)
	var attachments []string
	if reportPath != "" {
		attachments = append(attachments, reportPath)
	}
	return n.send(ctx, subject, body.String(), attachments)
}

func (n *Notifier) configured() bool {
	if n.recipient == "" {
		n.logger.Warn("NOTIFICATION_EMAIL not configured, skipping notification")
		return false
	}
	return true
}

func (n *Notifier) send(ctx context.Context, subject, body string, attachments []string) error {
	err := n.mailer.Send(ctx, &ports.Email{
		To:          n.recipient,
		Subject:     subject,
		HTMLBody:    body,
		Attachments: attachments,
	})
	if err != nil {
		n.logger.Error("Notification send failed",
			zap.String("subject", subject),
			zap.Error(err),
		)
		return err
	}
	return nil
}
