package exporter

import (
	"errors"
	"fmt"
	"strings"

	"bikepulse/pkg/contracts/domain"
)

// Table names accepted by TableFor
const (
	TableMonthly   = "monthly"
	TableSeasons   = "seasons"
	TableUserTypes = "user-types"
	TableDayTypes  = "day-types"
	TableRecords   = "records"
)

// ErrUnknownTable is returned for a table name outside TableNames
var ErrUnknownTable = errors.New("unknown table")

// TableNames lists the exportable tables in export order
var TableNames = []string{TableMonthly, TableSeasons, TableUserTypes, TableDayTypes, TableRecords}

// Table is a rectangular export of one dashboard table
type Table struct {
	Name    string
	Headers []string
	Rows    [][]string
}

// TableFor builds the named table. records is only consulted for TableRecords
// and should already be filtered to the dashboard range.
func TableFor(name string, dash domain.Dashboard, records []domain.DailyRecord) (Table, error) {
	switch strings.ToLower(name) {
	case TableMonthly:
		return MonthlyTable(dash.Monthly), nil
	case TableSeasons:
		return SeasonTable(dash.Seasons), nil
	case TableUserTypes:
		return UserTypeTable(dash.UserTypes), nil
	case TableDayTypes:
		return DayTypeTable(dash.DayTypes), nil
	case TableRecords:
		return RecordTable(records), nil
	default:
		return Table{}, fmt.Errorf("%w: %q", ErrUnknownTable, name)
	}
}

// MonthlyTable renders monthly totals as month,total rows
func MonthlyTable(rows []domain.MonthlyTotal) Table {
	t := Table{Name: TableMonthly, Headers: []string{"month", "total"}}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{r.Month, formatInt(r.Total)})
	}
	return t
}

func SeasonTable(rows []domain.SeasonTotal) Table {
	t := Table{Name: TableSeasons, Headers: []string{"season", "total"}}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{r.Label, formatInt(r.Total)})
	}
	return t
}

func UserTypeTable(rows []domain.UserTypeTotal) Table {
	t := Table{Name: TableUserTypes, Headers: []string{"user_type", "sum"}}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{r.UserType, formatInt(r.Sum)})
	}
	return t
}

func DayTypeTable(rows []domain.DayTypeTotal) Table {
	t := Table{Name: TableDayTypes, Headers: []string{"day_type", "count"}}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{r.DayType, formatInt(r.Count)})
	}
	return t
}

// RecordTable renders daily records with the column names of the source file
func RecordTable(records []domain.DailyRecord) Table {
	t := Table{
		Name:    TableRecords,
		Headers: []string{"dteday", "season", "workingday", "casual", "registered", "cnt"},
	}
	for _, rec := range records {
		t.Rows = append(t.Rows, []string{
			formatDate(rec.Date),
			formatInt(int64(rec.Season)),
			formatBool(rec.WorkingDay),
			formatInt(rec.Casual),
			formatInt(rec.Registered),
			formatInt(rec.Total),
		})
	}
	return t
}

// SummaryTable renders the headline metrics as metric,value rows
func SummaryTable(s domain.Summary, rng domain.DateRange) Table {
	return Table{
		Name:    "summary",
		Headers: []string{"metric", "value"},
		Rows: [][]string{
			{"start", rng.StartString()},
			{"end", rng.EndString()},
			{"days", formatInt(int64(s.Days))},
			{"total_rentals", formatInt(s.TotalRentals)},
			{"total_registered", formatInt(s.TotalRegistered)},
			{"mean_daily_rentals", formatFloat(s.MeanDailyRentals)},
		},
	}
}
