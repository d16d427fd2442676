package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"bikepulse/pkg/contracts/domain"
)

// Day returns midnight UTC of the given date.
func Day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Record builds a consistent daily record.
func Record(date time.Time, season domain.Season, working bool, casual, registered int64) domain.DailyRecord {
	return domain.DailyRecord{
		Date:       date,
		Season:     season,
		WorkingDay: working,
		Casual:     casual,
		Registered: registered,
		Total:      casual + registered,
	}
}

// SampleRecords returns eight days spread over four seasons and two years,
// sorted by date.
func SampleRecords() []domain.DailyRecord {
	return []domain.DailyRecord{
		Record(Day(2011, 1, 1), domain.SeasonSpring, false, 331, 654),
		Record(Day(2011, 1, 2), domain.SeasonSpring, false, 131, 670),
		Record(Day(2011, 1, 3), domain.SeasonSpring, true, 120, 1229),
		Record(Day(2011, 4, 2), domain.SeasonSummer, false, 898, 1354),
		Record(Day(2011, 7, 4), domain.SeasonFall, false, 3065, 2978),
		Record(Day(2011, 10, 17), domain.SeasonWinter, true, 570, 3910),
		Record(Day(2011, 12, 30), domain.SeasonSpring, true, 440, 2260),
		Record(Day(2012, 1, 2), domain.SeasonSpring, true, 244, 1707),
	}
}

// CSV renders records in the day.csv column layout.
func CSV(records []domain.DailyRecord) string {
	var b strings.Builder
	b.WriteString("instant,dteday,season,holiday,workingday,casual,registered,cnt\n")
	for i, r := range records {
		working := 0
		if r.WorkingDay {
			working = 1
		}
		fmt.Fprintf(&b, "%d,%s,%d,0,%d,%d,%d,%d\n",
			i+1, r.Date.Format(domain.DateLayout), int(r.Season), working,
			r.Casual, r.Registered, r.Total)
	}
	return b.String()
}

// WriteCSV writes records to day.csv in a temporary directory and returns
// the path.
func WriteCSV(t *testing.T, records []domain.DailyRecord) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "day.csv")
	if err := os.WriteFile(path, []byte(CSV(records)), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}
