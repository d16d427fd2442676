package exporter

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"bikepulse/pkg/contracts/domain"
)

// XLSXContentType is the media type of workbook downloads
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Sheet names in workbook order
const (
	SheetSummary   = "Summary"
	SheetMonthly   = "Monthly"
	SheetSeasons   = "Seasons"
	SheetUserTypes = "UserTypes"
	SheetDayTypes  = "DayTypes"
	SheetRecords   = "Records"
)

type sheet struct {
	name    string
	headers []string
	rows    [][]interface{}
}

// WorkbookWriter writes a dashboard to an XLSX workbook, one sheet per table
type WorkbookWriter struct {
	logger *slog.Logger
}

func NewWorkbookWriter(logger *slog.Logger) *WorkbookWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkbookWriter{logger: logger}
}

// Write encodes dash and the filtered records to w
func (ww *WorkbookWriter) Write(w io.Writer, dash domain.Dashboard, records []domain.DailyRecord) error {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			ww.logger.Warn("failed to close workbook", slog.String("error", err.Error()))
		}
	}()

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	sheets := workbookSheets(dash, records)
	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), s.name); err != nil {
				return fmt.Errorf("failed to rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(s.name); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", s.name, err)
		}
		if err := writeSheet(f, s, headerStyle); err != nil {
			return err
		}
	}
	f.SetActiveSheet(0)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	ww.logger.Debug("workbook written",
		slog.Int("sheets", len(sheets)),
		slog.Int("records", len(records)))
	return nil
}

func writeSheet(f *excelize.File, s sheet, headerStyle int) error {
	header := make([]interface{}, len(s.headers))
	for i, h := range s.headers {
		header[i] = h
	}
	if err := f.SetSheetRow(s.name, "A1", &header); err != nil {
		return fmt.Errorf("failed to write %s header: %w", s.name, err)
	}

	last, err := excelize.CoordinatesToCellName(len(s.headers), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(s.name, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("failed to style %s header: %w", s.name, err)
	}

	for i := range s.rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(s.name, cell, &s.rows[i]); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", s.name, i+1, err)
		}
	}

	lastCol, err := excelize.ColumnNumberToName(len(s.headers))
	if err != nil {
		return err
	}
	return f.SetColWidth(s.name, "A", lastCol, 18)
}

func workbookSheets(dash domain.Dashboard, records []domain.DailyRecord) []sheet {
	summary := sheet{
		name:    SheetSummary,
		headers: []string{"Metric", "Value"},
		rows: [][]interface{}{
			{"Start", dash.Range.StartString()},
			{"End", dash.Range.EndString()},
			{"Days", dash.Summary.Days},
			{"Total rentals", dash.Summary.TotalRentals},
			{"Total registered users", dash.Summary.TotalRegistered},
			{"Mean daily rentals", dash.Summary.MeanDailyRentals},
		},
	}

	monthly := sheet{name: SheetMonthly, headers: []string{"Month", "Total"}}
	for _, m := range dash.Monthly {
		monthly.rows = append(monthly.rows, []interface{}{m.Month, m.Total})
	}

	seasons := sheet{name: SheetSeasons, headers: []string{"Season", "Total"}}
	for _, s := range dash.Seasons {
		seasons.rows = append(seasons.rows, []interface{}{s.Label, s.Total})
	}

	users := sheet{name: SheetUserTypes, headers: []string{"User type", "Sum"}}
	for _, u := range dash.UserTypes {
		users.rows = append(users.rows, []interface{}{u.UserType, u.Sum})
	}

	days := sheet{name: SheetDayTypes, headers: []string{"Day type", "Count"}}
	for _, d := range dash.DayTypes {
		days.rows = append(days.rows, []interface{}{d.DayType, d.Count})
	}

	recs := sheet{
		name:    SheetRecords,
		headers: []string{"dteday", "season", "workingday", "casual", "registered", "cnt"},
	}
	for _, r := range records {
		recs.rows = append(recs.rows, []interface{}{
			formatDate(r.Date), int(r.Season), formatBool(r.WorkingDay), r.Casual, r.Registered, r.Total,
		})
	}

	return []sheet{summary, monthly, seasons, users, days, recs}
}
