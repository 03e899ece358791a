// Package parsers loads payment batches and contract snapshots from CSV
// exports. Header matching is alias-aware because the exports come from
// several systems that never agreed on column names; record-level failures
// are accumulated, not fatal, so one bad row cannot sink a batch file.
package parsers

import (
	"encoding/csv"
	"io"
	"os"
	"strings"

	"payment-linking-engine/pkg/errors"
	"payment-linking-engine/pkg/logger"
)

// ParseStats reports what happened while parsing one file
type ParseStats struct {
	TotalRecords      int                  `json:"total_records"`
	SuccessfulRecords int                  `json:"successful_records"`
	FailedRecords     int                  `json:"failed_records"`
	Errors            *errors.ErrorSummary `json:"errors,omitempty"`
}

// headerMap resolves canonical column names to field indexes in one file
type headerMap map[string]int

// resolveHeaders maps each canonical column to its index using the alias
// table. Matching is case-insensitive and ignores surrounding whitespace.
func resolveHeaders(header []string, aliases map[string][]string) headerMap {
	normalized := make([]string, len(header))
	for i, h := range header {
		normalized[i] = strings.ToLower(strings.TrimSpace(h))
	}

	resolved := make(headerMap)
	for canonical, names := range aliases {
		for _, name := range names {
			for i, h := range normalized {
				if h == name {
					resolved[canonical] = i
					break
				}
			}
			if _, ok := resolved[canonical]; ok {
				break
			}
		}
	}
	return resolved
}

// missingColumns returns required canonical columns absent from the map
func (h headerMap) missingColumns(required []string) []string {
	var missing []string
	for _, col := range required {
		if _, ok := h[col]; !ok {
			missing = append(missing, col)
		}
	}
	return missing
}

// field returns the trimmed value of a canonical column, or empty when the
// column is absent or the row is short
func (h headerMap) field(record []string, canonical string) string {
	idx, ok := h[canonical]
	if !ok || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

// openCSV opens a file and wraps failures in the file error taxonomy
func openCSV(path string) (*os.File, *errors.LinkerError) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.FileError(errors.CodeFileNotFound, path, err)
		}
		if os.IsPermission(err) {
			return nil, errors.FileError(errors.CodeFilePermission, path, err)
		}
		return nil, errors.FileError(errors.CodeFileCorrupted, path, err)
	}
	return f, nil
}

// newCSVReader builds a csv.Reader tolerant of ragged rows
func newCSVReader(r io.Reader) *csv.Reader {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	return reader
}

func componentLogger(log logger.Logger, component string) logger.Logger {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return log.WithComponent(component)
}
