package dataset

import (
	"sort"

	"bikepulse/pkg/contracts/domain"
)

// Dataset is the read-only, date-sorted table of daily records.
type Dataset struct {
	source  string
	records []domain.DailyRecord
}

// New copies records and sorts the copy ascending by date.
func New(source string, records []domain.DailyRecord) *Dataset {
	sorted := make([]domain.DailyRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})
	return &Dataset{source: source, records: sorted}
}

// Records returns the sorted records. Callers must not modify the slice.
func (d *Dataset) Records() []domain.DailyRecord {
	return d.records
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	return len(d.records)
}

// Source returns the path or name the dataset was loaded from.
func (d *Dataset) Source() string {
	return d.source
}

// Bounds returns the first and last dates. It is the zero range when empty.
func (d *Dataset) Bounds() domain.DateRange {
	if len(d.records) == 0 {
		return domain.DateRange{}
	}
	return domain.NewDateRange(d.records[0].Date, d.records[len(d.records)-1].Date)
}

// Info summarises the dataset for the API.
func (d *Dataset) Info() domain.DatasetInfo {
	bounds := d.Bounds()
	return domain.DatasetInfo{
		Source:  d.source,
		Records: len(d.records),
		MinDate: bounds.Start,
		MaxDate: bounds.End,
	}
}
