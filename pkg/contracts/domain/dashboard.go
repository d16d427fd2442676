package domain

import (
	"time"
)

// User type and day type labels used in the two-row tables.
const (
	UserTypeCasual     = "Casual"
	UserTypeRegistered = "Registered"

	DayTypeOff     = "Weekend/Holiday"
	DayTypeWorking = "Working Day"
)

// MonthlyTotal is the rental count of one calendar month.
type MonthlyTotal struct {
	Month string    `json:"month"` // YYYY-MM
	Start time.Time `json:"start"`
	Total int64     `json:"total"`
}

// SeasonTotal is the rental count of one season.
type SeasonTotal struct {
	Season Season `json:"season"`
	Label  string `json:"label"`
	Total  int64  `json:"total"`
}

// UserTypeTotal is one row of the casual vs registered table.
type UserTypeTotal struct {
	UserType string `json:"user_type"`
	Sum      int64  `json:"sum"`
}

// DayTypeTotal is one row of the working day vs weekend/holiday table.
type DayTypeTotal struct {
	DayType string `json:"day_type"`
	Count   int64  `json:"count"`
}

// Summary holds the headline metrics shown above the charts.
type Summary struct {
	Days             int     `json:"days"`
	TotalRentals     int64   `json:"total_rentals"`
	TotalRegistered  int64   `json:"total_registered"`
	MeanDailyRentals float64 `json:"mean_daily_rentals"`
}

// Dashboard is the full result of one filter and aggregate pass.
type Dashboard struct {
	Range     DateRange       `json:"range"`
	Bounds    DateRange       `json:"bounds"`
	Summary   Summary         `json:"summary"`
	Monthly   []MonthlyTotal  `json:"monthly"`
	Seasons   []SeasonTotal   `json:"seasons"`
	UserTypes []UserTypeTotal `json:"user_types"`
	DayTypes  []DayTypeTotal  `json:"day_types"`
}

// DatasetInfo describes the loaded dataset.
type DatasetInfo struct {
	Source  string    `json:"source"`
	Records int       `json:"records"`
	MinDate time.Time `json:"min_date"`
	MaxDate time.Time `json:"max_date"`
}
