package domain

import (
	"time"
)

// DateLayout is the calendar-day layout used by the dataset and the API.
const DateLayout = "2006-01-02"

// Season is the numeric season code of the dataset (1-4).
type Season int

const (
	SeasonSpring Season = 1
	SeasonSummer Season = 2
	SeasonFall   Season = 3
	SeasonWinter Season = 4
)

// String returns the display label of the season.
func (s Season) String() string {
	switch s {
	case SeasonSpring:
		return "Spring"
	case SeasonSummer:
		return "Summer"
	case SeasonFall:
		return "Fall"
	case SeasonWinter:
		return "Winter"
	default:
		return "Unknown"
	}
}

// Valid reports whether the code is one of the four known seasons.
func (s Season) Valid() bool {
	return s >= SeasonSpring && s <= SeasonWinter
}

// DailyRecord represents one day of bike-sharing usage.
// Total is expected to equal Casual + Registered; the loader does not enforce it.
type DailyRecord struct {
	Date       time.Time `json:"date" validate:"required"`
	Season     Season    `json:"season" validate:"min=1,max=4"`
	WorkingDay bool      `json:"working_day"`
	Casual     int64     `json:"casual" validate:"min=0"`
	Registered int64     `json:"registered" validate:"min=0"`
	Total      int64     `json:"total" validate:"min=0"`
}

// Consistent reports whether the total matches casual plus registered riders.
func (r DailyRecord) Consistent() bool {
	return r.Total == r.Casual+r.Registered
}

// DateRange is an inclusive range of calendar days.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewDateRange truncates both bounds to calendar days.
func NewDateRange(start, end time.Time) DateRange {
	return DateRange{Start: Day(start), End: Day(end)}
}

// Empty reports whether no day can fall inside the range.
func (r DateRange) Empty() bool {
	return r.Start.After(r.End)
}

// Contains reports whether t falls on a day inside the range.
func (r DateRange) Contains(t time.Time) bool {
	d := Day(t)
	return !d.Before(r.Start) && !d.After(r.End)
}

// StartString and EndString format the bounds for forms and query strings.
func (r DateRange) StartString() string { return r.Start.Format(DateLayout) }
func (r DateRange) EndString() string   { return r.End.Format(DateLayout) }

// Day returns midnight UTC of the calendar day of t.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDay parses a YYYY-MM-DD string into a UTC calendar day.
func ParseDay(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return Day(t), nil
}
