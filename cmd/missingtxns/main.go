package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/qpago/serfinsa-settler/internal/adapters/database"
	"github.com/qpago/serfinsa-settler/internal/adapters/excel"
	"github.com/qpago/serfinsa-settler/internal/adapters/postgres"
	"github.com/qpago/serfinsa-settler/internal/adapters/smtp"
	"github.com/qpago/serfinsa-settler/internal/config"
	"github.com/qpago/serfinsa-settler/internal/logging"
	"github.com/qpago/serfinsa-settler/internal/services/audit"
	"github.com/qpago/serfinsa-settler/internal/services/notify"
	"github.com/qpago/serfinsa-settler/pkg/observability"
)

func main() {
	start := time.Now()

	cfg, err := config.LoadFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewConsoleLogger(cfg.Logger)
	defer logger.Sync()

	logger = logger.With(zap.String("run_id", uuid.NewString()))
	logger.Info("Starting missing-transactions audit",
		zap.Int("payment_method_id", cfg.Audit.PaymentMethodID))

	ctx := context.Background()

	db, err := database.NewPostgreSQLAdapter(ctx,
		database.DefaultPostgreSQLConfig(cfg.Database.ConnectionString()), logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := os.MkdirAll(cfg.Ingest.LogDir, 0o755); err != nil {
		logger.Fatal("Failed to create report directory", zap.Error(err))
	}

	txnRepo := postgres.NewTransactionRepository(db.Pool())
	reports := excel.NewReportWriter(logger)
	auditSvc := audit.NewService(txnRepo, reports, logger)

	auditCtx, cancel := db.ReportQueryContext(ctx)
	missing, reportPath, err := auditSvc.FindMissing(auditCtx, cfg.Audit.PaymentMethodID, cfg.Ingest.LogDir)
	cancel()
	if err != nil {
		logger.Fatal("Audit failed", zap.Error(err))
	}

	metrics := observability.NewRunMetrics()
	metrics.RecordMissing(len(missing))
	metrics.RecordRun(time.Since(start))
	if err := metrics.Push(cfg.Metrics.PushgatewayURL, cfg.Metrics.JobName+"_audit"); err != nil {
		logger.Warn("Metrics push failed", zap.Error(err))
	}

	if len(missing) == 0 {
		logger.Info("No missing transactions found")
		return
	}

	mailer := smtp.NewMailer(cfg.Mail, logger)
	notifier := notify.NewNotifier(mailer, cfg.Mail.Recipient, logger)
	if err := notifier.SendMissingReport(ctx, len(missing), reportPath); err != nil {
		logger.Error("Report notification failed", zap.Error(err))
	}

	logger.Info("Audit complete",
		zap.Int("missing", len(missing)),
		zap.String("report", reportPath),
		zap.Duration("duration", time.Since(start)),
	)
}
