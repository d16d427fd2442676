// Package exporter writes dashboard tables as CSV and XLSX.
//
// TableFor turns one aggregate table (or the filtered records) into rows of
// strings that CSVWriter encodes, optionally with a UTF-8 BOM so Excel
// opens the file with the right encoding:
//
//	table, err := exporter.TableFor(exporter.TableMonthly, dash, nil)
//	if err != nil {
//	    return err
//	}
//	err = exporter.NewCSVWriter(nil, logger).Write(w, table, exporter.WriteOptions{BOMPrefix: true})
//
// WorkbookWriter places every table on its own sheet of a single workbook,
// keeping numeric cells numeric.
package exporter
