package excel

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/qpago/serfinsa-settler/internal/domain"
)

// Reader discovers and parses settlement workbooks
type Reader struct {
	logger *zap.Logger
}

// NewReader creates a new workbook reader
func NewReader(logger *zap.Logger) *Reader {
	return &Reader{logger: logger}
}

// FindLatestWorkbook searches the directory tree under dataDir for files
// whose base name matches pattern and returns the most recently modified
// one. Returns a domain error with code INGEST_FILE_MISSING when nothing
// matches, which callers route to the alert notification path.
func (r *Reader) FindLatestWorkbook(dataDir, pattern string) (string, error) {
	type candidate struct {
		path    string
		modTime int64
	}
	var found []candidate

	err := filepath.WalkDir(dataDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable subdirectories do not abort the search.
			r.logger.Warn("Skipping unreadable path", zap.String("path", path), zap.Error(err))
			return nil
		}
		if d.IsDir() {
			return nil
		}
		matched, matchErr := filepath.Match(pattern, d.Name())
		if matchErr != nil {
			return matchErr
		}
		if !matched {
			return nil
		}
		info, infoErr := d.Info()
		if infoErr != nil {
			return nil
		}
		found = append(found, candidate{path: path, modTime: info.ModTime().UnixNano()})
		return nil
	})
	if err != nil {
		if os.IsNotExist(err) {
			return "", domain.WrapError(domain.ErrorCodeIngestFileMissing, "data directory not found", err).
				WithDetail("data_dir", dataDir)
		}
		return "", domain.WrapError(domain.ErrorCodeIngestFileMissing, "workbook search failed", err).
			WithDetail("data_dir", dataDir)
	}
	if len(found) == 0 {
		return "", domain.NewDomainError(domain.ErrorCodeIngestFileMissing, "no workbook matched pattern").
			WithDetail("data_dir", dataDir).
			WithDetail("pattern", pattern)
	}

	sort.Slice(found, func(i, j int) bool { return found[i].modTime > found[j].modTime })

	r.logger.Info("Workbook found",
		zap.String("path", found[0].path),
		zap.Int("candidates", len(found)),
	)
	return found[0].path, nil
}

// ReadRows opens the workbook and returns its first sheet as a sequence of
// header-keyed records, preserving the sheet's row order. Cell values come
// back as the raw display strings; null-sentinel normalization happens
// downstream.
func (r *Reader) ReadRows(path string) ([]map[string]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, domain.WrapError(domain.ErrorCodeIngestFileInvalid, "open workbook", err).
			WithDetail("path", path)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, domain.WrapError(domain.ErrorCodeIngestFileInvalid, "read sheet", err).
			WithDetail("sheet", sheet)
	}
	if len(rows) == 0 {
		return nil, domain.NewDomainError(domain.ErrorCodeIngestFileInvalid, "workbook has no header row").
			WithDetail("path", path)
	}

	headers := rows[0]
	records := make([]map[string]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		record := make(map[string]string, len(headers))
		for i, header := range headers {
			if header == "" {
				continue
			}
			if i < len(row) {
				record[header] = row[i]
			} else {
				record[header] = ""
			}
		}
		records = append(records, record)
	}

	r.logger.Info("Workbook read",
		zap.String("path", path),
		zap.Int("rows", len(records)),
		zap.Int("columns", len(headers)),
	)
	return records, nil
}
