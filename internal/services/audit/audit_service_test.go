package audit

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/qpago/serfinsa-settler/internal/domain/models"
)

// MockTransactionRepository implements ports.TransactionRepository for testing
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) FindByReference(ctx context.Context, reference string) (*models.ExternalTransaction, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ExternalTransaction), args.Error(1)
}

func (m *MockTransactionRepository) FindByAuthorizationCode(ctx context.Context, authCode string) (*models.ExternalTransaction, error) {
	args := m.Called(ctx, authCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ExternalTransaction), args.Error(1)
}

func (m *MockTransactionRepository) ListMissing(ctx context.Context, paymentMethodID int) ([]models.MissingTransaction, error) {
	args := m.Called(ctx, paymentMethodID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.MissingTransaction), args.Error(1)
}

// MockReportWriter implements ports.ReportWriter for testing
type MockReportWriter struct {
	mock.Mock
}

func (m *MockReportWriter) WriteMissingReport(path string, missing []models.MissingTransaction) error {
	args := m.Called(path, missing)
	return args.Error(0)
}

func setupAuditService() (*Service, *MockTransactionRepository, *MockReportWriter) {
	mockTxns := new(MockTransactionRepository)
	mockReports := new(MockReportWriter)
	return NewService(mockTxns, mockReports, zap.NewNop()), mockTxns, mockReports
}

func missingTxn(id string) models.MissingTransaction {
	now := time.Now()
	return models.MissingTransaction{
		TransactionID:     id,
		OrderNumber:       "ORD-" + id,
		Reference:         "900412345678",
		Amount:            decimal.RequireFromString("45.00"),
		AuthorizationCode: "AUTH" + id,
		Currency:          "USD",
		Status:            1,
		PaymentMethodName: "Liquidaciones SV",
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

func TestFindMissing_WritesTimestampedReport(t *testing.T) {
	service, mockTxns, mockReports := setupAuditService()
	ctx := context.Background()

	hits := []models.MissingTransaction{missingTxn("tx-1"), missingTxn("tx-2")}
	mockTxns.On("ListMissing", ctx, 10).Return(hits, nil)
	mockReports.On("WriteMissingReport", mock.MatchedBy(func(path string) bool {
		base := filepath.Base(path)
		return filepath.Dir(path) == "/tmp/reports" &&
			strings.HasPrefix(base, "transacciones_faltantes_") &&
			strings.HasSuffix(base, ".xlsx")
	}), hits).Return(nil)

	missing, reportPath, err := service.FindMissing(ctx, 10, "/tmp/reports")
	require.NoError(t, err)

	assert.Len(t, missing, 2)
	assert.NotEmpty(t, reportPath)
	mockReports.AssertExpectations(t)
}

func TestFindMissing_NothingToReport(t *testing.T) {
	service, mockTxns, mockReports := setupAuditService()
	ctx := context.Background()

	mockTxns.On("ListMissing", ctx, 10).Return([]models.MissingTransaction{}, nil)

	missing, reportPath, err := service.FindMissing(ctx, 10, "/tmp/reports")
	require.NoError(t, err)

	assert.Empty(t, missing)
	assert.Empty(t, reportPath)
	mockReports.AssertNotCalled(t, "WriteMissingReport", mock.Anything, mock.Anything)
}

func TestFindMissing_QueryFailurePropagates(t *testing.T) {
	service, mockTxns, _ := setupAuditService()
	ctx := context.Background()

	mockTxns.On("ListMissing", ctx, 10).Return(nil, errors.New("relation does not exist"))

	_, _, err := service.FindMissing(ctx, 10, "/tmp/reports")
	assert.Error(t, err)
}

func TestFindMissing_ExportFailureStillReturnsHits(t *testing.T) {
	service, mockTxns, mockReports := setupAuditService()
	ctx := context.Background()

	hits := []models.MissingTransaction{missingTxn("tx-1")}
	mockTxns.On("ListMissing", ctx, 10).Return(hits, nil)
	mockReports.On("WriteMissingReport", mock.Anything, hits).
		Return(errors.New("disk full"))

	missing, reportPath, err := service.FindMissing(ctx, 10, "/tmp/reports")
	assert.Error(t, err)
	assert.Len(t, missing, 1)
	assert.Empty(t, reportPath)
}
