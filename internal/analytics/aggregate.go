package analytics

import (
	"sort"
	"time"

	"github.com/jinzhu/now"
	"github.com/shopspring/decimal"

	"bikepulse/pkg/contracts/domain"
)

// monthLayout formats month buckets as YYYY-MM.
const monthLayout = "2006-01"

// Filter returns the records whose date lies inside rng, preserving order.
// The result is never nil; an empty or inverted range yields no records.
func Filter(records []domain.DailyRecord, rng domain.DateRange) []domain.DailyRecord {
	out := make([]domain.DailyRecord, 0)
	if rng.Empty() {
		return out
	}
	for _, rec := range records {
		if rng.Contains(rec.Date) {
			out = append(out, rec)
		}
	}
	return out
}

// MonthlyTotals sums total rentals per calendar month in chronological order.
func MonthlyTotals(records []domain.DailyRecord) []domain.MonthlyTotal {
	sums := make(map[time.Time]int64)
	for _, rec := range records {
		month := now.With(domain.Day(rec.Date)).BeginningOfMonth()
		sums[month] += rec.Total
	}

	months := make([]time.Time, 0, len(sums))
	for month := range sums {
		months = append(months, month)
	}
	sort.Slice(months, func(i, j int) bool {
		return months[i].Before(months[j])
	})

	out := make([]domain.MonthlyTotal, 0, len(months))
	for _, month := range months {
		out = append(out, domain.MonthlyTotal{
			Month: month.Format(monthLayout),
			Start: month,
			Total: sums[month],
		})
	}
	return out
}

// SeasonTotals sums total rentals per season, ordered by season code.
// Only seasons present in records are returned.
func SeasonTotals(records []domain.DailyRecord) []domain.SeasonTotal {
	sums := make(map[domain.Season]int64)
	for _, rec := range records {
		sums[rec.Season] += rec.Total
	}

	seasons := make([]domain.Season, 0, len(sums))
	for season := range sums {
		seasons = append(seasons, season)
	}
	sort.Slice(seasons, func(i, j int) bool {
		return seasons[i] < seasons[j]
	})

	out := make([]domain.SeasonTotal, 0, len(seasons))
	for _, season := range seasons {
		out = append(out, domain.SeasonTotal{
			Season: season,
			Label:  season.String(),
			Total:  sums[season],
		})
	}
	return out
}

// UserTypeTotals returns the casual and registered sums as a two-row table.
func UserTypeTotals(records []domain.DailyRecord) []domain.UserTypeTotal {
	var casual, registered int64
	for _, rec := range records {
		casual += rec.Casual
		registered += rec.Registered
	}
	return []domain.UserTypeTotal{
		{UserType: domain.UserTypeCasual, Sum: casual},
		{UserType: domain.UserTypeRegistered, Sum: registered},
	}
}

// DayTypeTotals partitions records by the working-day flag. The non-working
// row comes first.
func DayTypeTotals(records []domain.DailyRecord) []domain.DayTypeTotal {
	var off, working int64
	for _, rec := range records {
		if rec.WorkingDay {
			working += rec.Total
		} else {
			off += rec.Total
		}
	}
	return []domain.DayTypeTotal{
		{DayType: domain.DayTypeOff, Count: off},
		{DayType: domain.DayTypeWorking, Count: working},
	}
}

// Summarize computes the headline metrics. MeanDailyRentals is rounded to two
// decimals and is zero for an empty input.
func Summarize(records []domain.DailyRecord) domain.Summary {
	var total, registered int64
	for _, rec := range records {
		total += rec.Total
		registered += rec.Registered
	}

	summary := domain.Summary{
		Days:            len(records),
		TotalRentals:    total,
		TotalRegistered: registered,
	}
	if len(records) > 0 {
		mean := decimal.NewFromInt(total).
			Div(decimal.NewFromInt(int64(len(records)))).
			Round(2)
		summary.MeanDailyRentals = mean.InexactFloat64()
	}
	return summary
}

// Compute runs the filter and every aggregator over records.
func Compute(records []domain.DailyRecord, rng, bounds domain.DateRange) domain.Dashboard {
	view := Filter(records, rng)
	return domain.Dashboard{
		Range:     rng,
		Bounds:    bounds,
		Summary:   Summarize(view),
		Monthly:   MonthlyTotals(view),
		Seasons:   SeasonTotals(view),
		UserTypes: UserTypeTotals(view),
		DayTypes:  DayTypeTotals(view),
	}
}

// Sum returns the total rentals of records.
func Sum(records []domain.DailyRecord) int64 {
	var total int64
	for _, rec := range records {
		total += rec.Total
	}
	return total
}
