package dataset

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	apperrors "bikepulse/internal/errors"
	"bikepulse/pkg/contracts/domain"
)

const sampleCSV = `instant,dteday,season,yr,mnth,holiday,weekday,workingday,weathersit,temp,atemp,hum,windspeed,casual,registered,cnt
3,2011-01-03,1,0,1,0,1,1,1,0.196364,0.189405,0.437273,0.248309,120,1229,1349
1,2011-01-01,1,0,1,0,6,0,2,0.344167,0.363625,0.805833,0.160446,331,654,985
2,2011-01-02,1,0,1,0,0,0,2,0.363478,0.353739,0.696087,0.248539,131,670,801
`

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestLoader_ReadCSV(t *testing.T) {
	loader := NewLoader(nil)

	ds, err := loader.ReadCSV(context.Background(), strings.NewReader(sampleCSV), "day.csv")
	require.NoError(t, err)
	require.Equal(t, 3, ds.Len())

	records := ds.Records()
	assert.Equal(t, day(2011, 1, 1), records[0].Date, "records are sorted by date")
	assert.Equal(t, day(2011, 1, 2), records[1].Date)
	assert.Equal(t, day(2011, 1, 3), records[2].Date)

	first := records[0]
	assert.Equal(t, domain.SeasonSpring, first.Season)
	assert.False(t, first.WorkingDay)
	assert.Equal(t, int64(331), first.Casual)
	assert.Equal(t, int64(654), first.Registered)
	assert.Equal(t, int64(985), first.Total)
	assert.True(t, records[2].WorkingDay)

	bounds := ds.Bounds()
	assert.Equal(t, day(2011, 1, 1), bounds.Start)
	assert.Equal(t, day(2011, 1, 3), bounds.End)
	assert.Equal(t, "day.csv", ds.Source())
}

func TestLoader_ReadCSV_Errors(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		errContains string
		target      error
	}{
		{
			name:        "missing columns",
			input:       "dteday,season,casual\n2011-01-01,1,331\n",
			errContains: "workingday, registered, cnt",
			target:      ErrMissingColumn,
		},
		{
			name:        "empty input",
			input:       "",
			errContains: "no header",
			target:      ErrNoHeader,
		},
		{
			name:        "malformed date",
			input:       "dteday,season,workingday,casual,registered,cnt\nnot-a-date,1,0,1,2,3\n",
			errContains: "row 2",
		},
		{
			name:        "malformed count",
			input:       "dteday,season,workingday,casual,registered,cnt\n2011-01-01,1,0,lots,2,3\n",
			errContains: "column casual",
		},
		{
			name:        "malformed working day flag",
			input:       "dteday,season,workingday,casual,registered,cnt\n2011-01-01,1,maybe,1,2,3\n",
			errContains: "column workingday",
		},
		{
			name:        "season out of range",
			input:       "dteday,season,workingday,casual,registered,cnt\n2011-01-01,7,0,1,2,3\n",
			errContains: "Season",
		},
		{
			name:        "negative count",
			input:       "dteday,season,workingday,casual,registered,cnt\n2011-01-01,1,0,-1,2,1\n",
			errContains: "Casual",
		},
	}

	loader := NewLoader(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loader.ReadCSV(context.Background(), strings.NewReader(tt.input), "test.csv")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)
			if tt.target != nil {
				assert.True(t, errors.Is(err, tt.target))
			}

			var appErr *apperrors.AppError
			assert.True(t, errors.As(err, &appErr))
		})
	}
}

func TestLoader_ReadCSV_HeaderOnly(t *testing.T) {
	loader := NewLoader(nil)

	ds, err := loader.ReadCSV(context.Background(),
		strings.NewReader("dteday,season,workingday,casual,registered,cnt\n"), "empty.csv")
	require.NoError(t, err)
	assert.Equal(t, 0, ds.Len())
	assert.Equal(t, domain.DateRange{}, ds.Bounds())
}

func TestLoader_ReadCSV_BOMAndCase(t *testing.T) {
	input := "\ufeffDTEDAY,Season,WorkingDay,Casual,Registered,CNT\n2011-02-01,1,1,10,20,30\n\n"
	loader := NewLoader(nil)

	ds, err := loader.ReadCSV(context.Background(), strings.NewReader(input), "bom.csv")
	require.NoError(t, err)
	require.Equal(t, 1, ds.Len())
	assert.Equal(t, int64(30), ds.Records()[0].Total)
}

func TestLoader_Load(t *testing.T) {
	dir := t.TempDir()
	loader := NewLoader(nil)

	t.Run("csv file", func(t *testing.T) {
		path := filepath.Join(dir, "day.csv")
		require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0644))

		ds, err := loader.Load(context.Background(), path)
		require.NoError(t, err)
		assert.Equal(t, 3, ds.Len())
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := loader.Load(context.Background(), filepath.Join(dir, "nope.csv"))
		require.Error(t, err)

		var appErr *apperrors.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, apperrors.ErrTypeStorage, appErr.Type)
	})

	t.Run("unsupported extension", func(t *testing.T) {
		_, err := loader.Load(context.Background(), filepath.Join(dir, "day.parquet"))
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrUnsupportedFormat))
	})

	t.Run("xlsx workbook", func(t *testing.T) {
		path := filepath.Join(dir, "day.xlsx")
		f := excelize.NewFile()
		sheet := f.GetSheetName(0)
		rows := [][]interface{}{
			{"dteday", "season", "workingday", "casual", "registered", "cnt"},
			{"2011-01-02", 1, 0, 131, 670, 801},
			{"2011-01-01", 1, 0, 331, 654, 985},
		}
		for i, row := range rows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(sheet, cell, &row))
		}
		require.NoError(t, f.SaveAs(path))
		require.NoError(t, f.Close())

		ds, err := loader.Load(context.Background(), path)
		require.NoError(t, err)
		require.Equal(t, 2, ds.Len())
		assert.Equal(t, day(2011, 1, 1), ds.Records()[0].Date)
		assert.Equal(t, int64(801), ds.Records()[1].Total)
	})
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		input string
		want  time.Time
	}{
		{"2011-01-01", day(2011, 1, 1)},
		{"2011-01-01 13:45:00", day(2011, 1, 1)},
		{"1/31/2012", day(2012, 1, 31)},
		{"40544", day(2011, 1, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseDate(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := parseDate("")
	assert.Error(t, err)
}

func TestNew_DoesNotAliasInput(t *testing.T) {
	input := []domain.DailyRecord{
		{Date: day(2011, 1, 2), Season: domain.SeasonSpring, Total: 2},
		{Date: day(2011, 1, 1), Season: domain.SeasonSpring, Total: 1},
	}

	ds := New("mem", input)
	assert.Equal(t, day(2011, 1, 2), input[0].Date, "input order is untouched")
	assert.Equal(t, day(2011, 1, 1), ds.Records()[0].Date)

	info := ds.Info()
	assert.Equal(t, 2, info.Records)
	assert.Equal(t, day(2011, 1, 1), info.MinDate)
	assert.Equal(t, day(2011, 1, 2), info.MaxDate)
}
