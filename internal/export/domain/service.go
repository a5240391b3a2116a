// Package domain defines the insight export contracts.
package domain

import (
	"context"
	"errors"
)

type Format string

const (
	FormatCSV     Format = "csv"
	FormatParquet Format = "parquet"
)

func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatCSV, "":
		return FormatCSV, nil
	case FormatParquet:
		return FormatParquet, nil
	default:
		return "", ErrUnsupportedFormat
	}
}

// ExportResult points at a finished export file on local disk.
type ExportResult struct {
	Path     string `json:"path"`
	Filename string `json:"filename"`
	Format   Format `json:"format"`
	Rows     int    `json:"rows"`
}

type Service interface {
	// Export materializes the current city insight set into a file under
	// the configured export directory.
	Export(ctx context.Context, format Format) (ExportResult, error)
}

var (
	ErrUnsupportedFormat = errors.New("unsupported_export_format")
	ErrNothingToExport   = errors.New("nothing_to_export")
)
