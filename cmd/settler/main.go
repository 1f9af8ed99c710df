package main

import (
	"context"
	"errors"
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
	"github.com/qpago/serfinsa-settler/internal/domain"
	"github.com/qpago/serfinsa-settler/internal/logging"
	"github.com/qpago/serfinsa-settler/internal/services/batch"
	"github.com/qpago/serfinsa-settler/internal/services/ingest"
	"github.com/qpago/serfinsa-settler/internal/services/notify"
	"github.com/qpago/serfinsa-settler/internal/services/reconcile"
	"github.com/qpago/serfinsa-settler/pkg/observability"
)

func main() {
	start := time.Now()

	cfg, err := config.LoadFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	// Console-only logger until the workbook is known; the per-run log
	// file is named after it.
	bootLogger := logging.NewConsoleLogger(cfg.Logger)

	reader := excel.NewReader(bootLogger)
	workbook, err := reader.FindLatestWorkbook(cfg.Ingest.DataDir, cfg.Ingest.FilePattern)
	if err != nil {
		handleMissingWorkbook(cfg, bootLogger, err)
		return
	}

	logger, logPath, err := logging.NewRunLogger(cfg.Logger, cfg.Ingest.LogDir, workbook)
	if err != nil {
		bootLogger.Fatal("Failed to initialize run logger", zap.Error(err))
	}
	defer logger.Sync()

	runID := uuid.NewString()
	logger = logger.With(zap.String("run_id", runID))

	logger.Info("Starting settlement run",
		zap.String("workbook", workbook),
		zap.String("log_file", logPath),
	)

	ctx := context.Background()

	db, err := database.NewPostgreSQLAdapter(ctx,
		&database.PostgreSQLConfig{
			DatabaseURL:        cfg.Database.ConnectionString(),
			MaxConns:           cfg.Database.MaxConns,
			MinConns:           cfg.Database.MinConns,
			ReportQueryTimeout: 60 * time.Second,
		}, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	mailer := smtp.NewMailer(cfg.Mail, logger)
	notifier := notify.NewNotifier(mailer, cfg.Mail.Recipient, logger)
	metrics := observability.NewRunMetrics()

	schemaMgr := postgres.NewSchemaManager(db.Pool(), logger)

	// Reconciliation columns come first so the resolved schema variant
	// already sees them.
	skipReconcile := false
	if err := schemaMgr.EnsureReconciliationColumns(ctx); err != nil {
		logger.Error("Reconciliation columns not ready, reconciliation will be skipped", zap.Error(err))
		skipReconcile = true
	}

	schemaInfo, err := schemaMgr.Resolve(ctx)
	if err != nil {
		logger.Fatal("Failed to resolve schema variant", zap.Error(err))
	}

	ledgerRepo := postgres.NewLedgerRepository(db.Pool(), schemaInfo, logger)
	txnRepo := postgres.NewTransactionRepository(db.Pool())
	batchRepo := postgres.NewBatchRepository(db.Pool(), schemaInfo, schemaMgr, logger)

	ingestSvc := ingest.NewService(ledgerRepo, logger)
	reconcileSvc := reconcile.NewService(ledgerRepo, txnRepo, logger)
	batchSvc := batch.NewService(ledgerRepo, batchRepo, schemaMgr, logger)

	// Ingest
	records, err := reader.ReadRows(workbook)
	if err != nil {
		logger.Fatal("Failed to read workbook", zap.Error(err))
	}
	ingestResult := ingestSvc.IngestRows(ctx, records)
	metrics.RecordIngest(ingestResult.Inserted, ingestResult.Skipped, ingestResult.Errors)

	// Reconcile
	reconcileResult := &reconcile.Result{}
	if skipReconcile {
		logger.Warn("Reconciliation skipped for this run")
	} else {
		reconcileResult = reconcileSvc.ReconcileAll(ctx, ingestResult.SeqNums)
	}
	metrics.RecordReconciliation(reconcileResult.Found)

	// Aggregate batches
	batchResult, err := batchSvc.CreateBatches(ctx)
	if err != nil {
		// Schema not ready halts batching but not the run; already-ingested
		// rows are picked up on the next invocation.
		logger.Error("Batch aggregation skipped", zap.Error(err))
		batchResult = &batch.Result{}
	}
	metrics.RecordBatches(batchResult.BatchesCreated, batchResult.ParentsUpdated)

	duration := time.Since(start)
	metrics.RecordRun(duration)
	if err := metrics.Push(cfg.Metrics.PushgatewayURL, cfg.Metrics.JobName); err != nil {
		logger.Warn("Metrics push failed", zap.Error(err))
	}

	summary := &notify.RunSummary{
		Workbook:          workbook,
		RunID:             runID,
		Inserted:          ingestResult.Inserted,
		Skipped:           ingestResult.Skipped,
		Errors:            ingestResult.Errors,
		TransactionsFound: reconcileResult.Found,
		BatchesCreated:    batchResult.BatchesCreated,
		TotalProcessed:    ingestResult.TotalProcessed(),
		Duration:          duration.Round(time.Millisecond).String(),
	}
	if err := notifier.SendRunSummary(ctx, summary, workbook, logPath); err != nil {
		logger.Error("Summary notification failed", zap.Error(err))
	}

	logger.Info("Settlement run complete",
		zap.Int("inserted", ingestResult.Inserted),
		zap.Int("skipped", ingestResult.Skipped),
		zap.Int("errors", ingestResult.Errors),
		zap.Int("reconciled", reconcileResult.Found),
		zap.Int("batches_created", batchResult.BatchesCreated),
		zap.Duration("duration", duration),
	)
}

// handleMissingWorkbook routes the missing-file condition to its dedicated
// alert path and exits non-zero.
func handleMissingWorkbook(cfg *config.Config, logger *zap.Logger, err error) {
	var de *domain.DomainError
	if !errors.As(err, &de) || de.Code != domain.ErrorCodeIngestFileMissing {
		logger.Fatal("Workbook discovery failed", zap.Error(err))
	}

	logger.Error("No settlement workbook found",
		zap.String("data_dir", cfg.Ingest.DataDir),
		zap.String("pattern", cfg.Ingest.FilePattern),
	)

	mailer := smtp.NewMailer(cfg.Mail, logger)
	notifier := notify.NewNotifier(mailer, cfg.Mail.Recipient, logger)
	if alertErr := notifier.SendFileAlert(context.Background(), cfg.Ingest.DataDir); alertErr != nil {
		logger.Error("Missing-file alert failed", zap.Error(alertErr))
	}

	logger.Sync()
	os.Exit(1)
}
