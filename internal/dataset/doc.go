// Package dataset loads the daily bike-sharing table.
//
// The loader accepts the CSV layout of the public day.csv file and, for
// convenience, the same layout stored in the first sheet of an XLSX
// workbook. Columns are located by header name, so extra columns such as
// instant, yr, mnth, holiday or weathersit are ignored:
//
//	loader := dataset.NewLoader(logger)
//	ds, err := loader.Load(ctx, "data/day.csv")
//	if err != nil {
//	    return err
//	}
//	bounds := ds.Bounds()
//
// A Dataset is sorted once at load time and never modified afterwards, so it
// may be shared by concurrent requests without locking.
package dataset
