package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/qpago/serfinsa-settler/internal/config"
)

func TestNewRunLogger_NamesFileAfterWorkbook(t *testing.T) {
	logDir := t.TempDir()
	cfg := config.LoggerConfig{Level: "info"}

	logger, logPath, err := NewRunLogger(cfg, logDir, "/data/Serfinsa_20240315.xlsx")
	require.NoError(t, err)
	defer logger.Sync()

	assert.Equal(t, filepath.Join(logDir, "Serfinsa_20240315.log"), logPath)

	logger.Info("settlement run started")
	logger.Sync()

	content, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "settlement run started")
}

func TestNewRunLogger_CreatesLogDir(t *testing.T) {
	logDir := filepath.Join(t.TempDir(), "nested", "logs")
	cfg := config.LoggerConfig{Level: "info"}

	logger, logPath, err := NewRunLogger(cfg, logDir, "workbook.xlsx")
	require.NoError(t, err)
	defer logger.Sync()

	_, err = os.Stat(logPath)
	assert.NoError(t, err)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("WARN"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("info"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("garbage"))
}
