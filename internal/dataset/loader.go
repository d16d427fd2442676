package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/xuri/excelize/v2"

	apperrors "bikepulse/internal/errors"
	"bikepulse/pkg/contracts/domain"
)

// Column names of the daily bike-sharing dataset.
const (
	ColumnDate       = "dteday"
	ColumnSeason     = "season"
	ColumnWorkingDay = "workingday"
	ColumnCasual     = "casual"
	ColumnRegistered = "registered"
	ColumnTotal      = "cnt"
)

// RequiredColumns lists the columns the loader needs, in output order.
var RequiredColumns = []string{
	ColumnDate,
	ColumnSeason,
	ColumnWorkingDay,
	ColumnCasual,
	ColumnRegistered,
	ColumnTotal,
}

var (
	ErrMissingColumn     = errors.New("missing required column")
	ErrUnsupportedFormat = errors.New("unsupported dataset format")
	ErrNoHeader          = errors.New("dataset has no header row")
)

// dateLayouts are tried in order when parsing the date column.
var dateLayouts = []string{
	domain.DateLayout,
	"2006-01-02 15:04:05",
	time.RFC3339,
	"1/2/2006",
	"2006/01/02",
}

// Loader reads daily records from CSV or XLSX files.
type Loader struct {
	logger   *slog.Logger
	validate *validator.Validate
}

// NewLoader creates a loader. A nil logger falls back to slog.Default().
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		logger:   logger.With(slog.String("component", "dataset_loader")),
		validate: validator.New(),
	}
}

// Load reads the dataset at path, choosing the reader by file extension.
func (l *Loader) Load(ctx context.Context, path string) (*Dataset, error) {
	l.logger.InfoContext(ctx, "loading dataset", slog.String("path", path))

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, apperrors.NewStorageError("failed to open dataset", err).WithContext("path", path)
		}
		defer f.Close()
		return l.ReadCSV(ctx, f, path)
	case ".xlsx":
		return l.readXLSX(ctx, path)
	default:
		return nil, apperrors.NewAppError(apperrors.ErrTypeValidation,
			fmt.Sprintf("cannot load %q", path), ErrUnsupportedFormat)
	}
}

// ReadCSV parses CSV content. The first row must be the header.
func (l *Loader) ReadCSV(ctx context.Context, r io.Reader, source string) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, apperrors.NewParsingError("failed to read CSV", err).WithContext("source", source)
	}
	return l.fromRows(ctx, rows, source)
}

// readXLSX parses the first sheet of a workbook.
func (l *Loader) readXLSX(ctx context.Context, path string) (*Dataset, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to open workbook", err).WithContext("path", path)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperrors.NewParsingError("workbook has no sheets", ErrNoHeader).WithContext("path", path)
	}

	// Raw values keep dates as serial numbers regardless of cell formatting.
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, apperrors.NewParsingError("failed to read sheet", err).WithContext("sheet", sheets[0])
	}

	l.logger.DebugContext(ctx, "read workbook sheet",
		slog.String("sheet", sheets[0]),
		slog.Int("rows", len(rows)))

	return l.fromRows(ctx, rows, path)
}

func (l *Loader) fromRows(ctx context.Context, rows [][]string, source string) (*Dataset, error) {
	if len(rows) == 0 {
		return nil, apperrors.NewParsingError("failed to read header", ErrNoHeader).WithContext("source", source)
	}

	columns, err := mapColumns(rows[0])
	if err != nil {
		return nil, apperrors.NewParsingError("invalid header", err).WithContext("source", source)
	}

	records := make([]domain.DailyRecord, 0, len(rows)-1)
	inconsistent := 0
	for i, row := range rows[1:] {
		if blank(row) {
			continue
		}
		// Row numbers are 1-based and count the header.
		line := i + 2

		rec, err := parseRecord(row, columns)
		if err != nil {
			return nil, apperrors.NewParsingError(fmt.Sprintf("row %d", line), err).WithContext("source", source)
		}
		if err := l.validate.Struct(rec); err != nil {
			return nil, apperrors.NewAppError(apperrors.ErrTypeValidation, fmt.Sprintf("row %d", line), err).
				WithContext("source", source)
		}
		if !rec.Consistent() {
			inconsistent++
		}
		records = append(records, rec)
	}

	if inconsistent > 0 {
		l.logger.DebugContext(ctx, "records where total differs from casual + registered",
			slog.Int("count", inconsistent))
	}

	ds := New(source, records)
	bounds := ds.Bounds()
	l.logger.InfoContext(ctx, "dataset loaded",
		slog.String("source", source),
		slog.Int("records", ds.Len()),
		slog.String("min_date", bounds.StartString()),
		slog.String("max_date", bounds.EndString()))

	return ds, nil
}

// mapColumns resolves required column positions by header name.
func mapColumns(header []string) (map[string]int, error) {
	positions := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, seen := positions[name]; !seen {
			positions[name] = i
		}
	}

	var missing []string
	columns := make(map[string]int, len(RequiredColumns))
	for _, name := range RequiredColumns {
		idx, ok := positions[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		columns[name] = idx
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return columns, nil
}

func parseRecord(row []string, columns map[string]int) (domain.DailyRecord, error) {
	var rec domain.DailyRecord
	field := func(name string) string {
		idx := columns[name]
		if idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	date, err := parseDate(field(ColumnDate))
	if err != nil {
		return rec, fmt.Errorf("column %s: %w", ColumnDate, err)
	}

	season, err := parseInt(field(ColumnSeason))
	if err != nil {
		return rec, fmt.Errorf("column %s: %w", ColumnSeason, err)
	}

	working, err := parseFlag(field(ColumnWorkingDay))
	if err != nil {
		return rec, fmt.Errorf("column %s: %w", ColumnWorkingDay, err)
	}

	casual, err := parseInt(field(ColumnCasual))
	if err != nil {
		return rec, fmt.Errorf("column %s: %w", ColumnCasual, err)
	}

	registered, err := parseInt(field(ColumnRegistered))
	if err != nil {
		return rec, fmt.Errorf("column %s: %w", ColumnRegistered, err)
	}

	total, err := parseInt(field(ColumnTotal))
	if err != nil {
		return rec, fmt.Errorf("column %s: %w", ColumnTotal, err)
	}

	return domain.DailyRecord{
		Date:       date,
		Season:     domain.Season(season),
		WorkingDay: working,
		Casual:     casual,
		Registered: registered,
		Total:      total,
	}, nil
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, errors.New("empty date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return domain.Day(t), nil
		}
	}
	// Spreadsheet serial date
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err == nil {
			return domain.Day(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

func parseInt(s string) (int64, error) {
	if s == "" {
		return 0, errors.New("empty value")
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err == nil {
		return v, nil
	}
	// Spreadsheets may store integers as "985.0".
	f, ferr := strconv.ParseFloat(s, 64)
	if ferr != nil || f != float64(int64(f)) {
		return 0, fmt.Errorf("invalid integer %q", s)
	}
	return int64(f), nil
}

func parseFlag(s string) (bool, error) {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid flag %q", s)
	}
	return b, nil
}

func blank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
