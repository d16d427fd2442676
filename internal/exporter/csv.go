package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"bikepulse/internal/config"
)

// utf8BOM helps Excel recognize UTF-8 CSV
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVWriter provides CSV export functionality
type CSVWriter struct {
	paths  *config.Paths
	logger *slog.Logger
}

// NewCSVWriter creates a new CSV writer. paths may be nil when only
// io.Writer targets are used.
func NewCSVWriter(paths *config.Paths, logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{paths: paths, logger: logger}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	BOMPrefix bool
	// OmitHeader skips the header row
	OmitHeader bool
}

// Write encodes table to w
func (cw *CSVWriter) Write(w io.Writer, table Table, opts WriteOptions) error {
	stream, err := NewStreamWriter(w, table.Headers, opts)
	if err != nil {
		return err
	}
	for i, row := range table.Rows {
		if err := stream.WriteRecord(row); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	if err := stream.Flush(); err != nil {
		return err
	}

	cw.logger.Debug("CSV table written",
		slog.String("table", table.Name),
		slog.Int("record_count", len(table.Rows)))
	return nil
}

// WriteFile writes table to filePath, creating parent directories. Relative
// paths resolve against the configured base directory.
func (cw *CSVWriter) WriteFile(filePath string, table Table, opts WriteOptions) error {
	fullPath := cw.resolvePath(filePath)

	cw.logger.Info("Writing CSV file",
		slog.String("file_path", filePath),
		slog.String("full_path", fullPath),
		slog.Int("record_count", len(table.Rows)))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if err := cw.Write(file, table, opts); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// StreamWriter writes CSV rows one at a time
type StreamWriter struct {
	writer *csv.Writer
}

// NewStreamWriter writes the optional BOM and header row, then returns a
// writer for the data rows
func NewStreamWriter(w io.Writer, headers []string, opts WriteOptions) (*StreamWriter, error) {
	if opts.BOMPrefix {
		if _, err := w.Write(utf8BOM); err != nil {
			return nil, fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(w)
	if !opts.OmitHeader && len(headers) > 0 {
		if err := writer.Write(headers); err != nil {
			return nil, fmt.Errorf("failed to write headers: %w", err)
		}
	}
	return &StreamWriter{writer: writer}, nil
}

// WriteRecord writes a single record to the stream
func (s *StreamWriter) WriteRecord(record []string) error {
	return s.writer.Write(record)
}

// Flush flushes buffered rows and reports any write error
func (s *StreamWriter) Flush() error {
	s.writer.Flush()
	return s.writer.Error()
}

func (cw *CSVWriter) resolvePath(filePath string) string {
	if filepath.IsAbs(filePath) || cw.paths == nil || cw.paths.BaseDir == "" {
		return filePath
	}
	return filepath.Join(cw.paths.BaseDir, filePath)
}
