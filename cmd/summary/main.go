// Command summary prints the dashboard aggregates for a date range.
//
//	summary -data data/day.csv -start 2011-01-01 -end 2011-12-31 -format table
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"bikepulse/internal/config"
	"bikepulse/internal/dataset"
	"bikepulse/internal/exporter"
	"bikepulse/internal/infrastructure"
	"bikepulse/internal/services"
	"bikepulse/pkg/contracts/domain"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("summary", flag.ContinueOnError)
	fs.SetOutput(stderr)
	data := fs.String("data", "", "dataset file, CSV or XLSX (defaults to dataset.path from config)")
	start := fs.String("start", "", "first day, YYYY-MM-DD (defaults to the dataset start)")
	end := fs.String("end", "", "last day, YYYY-MM-DD (defaults to the dataset end)")
	format := fs.String("format", "json", "output format: json | table")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	switch *format {
	case "json", "table":
	default:
		fmt.Fprintf(stderr, "unsupported format %q (want json or table)\n", *format)
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "failed to load configuration: %v\n", err)
		return 1
	}
	if *data != "" {
		cfg.Dataset.Path = *data
	}
	paths, err := cfg.ResolvePaths("")
	if err != nil {
		fmt.Fprintf(stderr, "failed to resolve paths: %v\n", err)
		return 1
	}

	// Logs go to stderr so stdout carries only the report
	logCfg := cfg.Logging
	logCfg.Output = "console"
	logger, err := infrastructure.NewLogger(logCfg, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "failed to initialize logger: %v\n", err)
		return 1
	}

	ds, err := dataset.NewLoader(logger).Load(ctx, paths.DatasetFile)
	if err != nil {
		logger.ErrorContext(ctx, "failed to load dataset",
			slog.String("path", paths.DatasetFile),
			slog.String("error", err.Error()))
		return 1
	}

	svc := services.NewDashboardService(ds, nil, logger)
	rng, err := svc.ParseRange(*start, *end)
	if err != nil {
		fmt.Fprintf(stderr, "invalid range: %v\n", err)
		return 2
	}
	dash, err := svc.Compute(ctx, rng, services.SourceCLI)
	if err != nil {
		logger.ErrorContext(ctx, "failed to compute dashboard", slog.String("error", err.Error()))
		return 1
	}

	if *format == "table" {
		err = writeTables(stdout, dash)
	} else {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		err = enc.Encode(dash)
	}
	if err != nil {
		fmt.Fprintf(stderr, "failed to write output: %v\n", err)
		return 1
	}
	return 0
}

// writeTables prints the summary followed by the four aggregate tables
func writeTables(w io.Writer, dash domain.Dashboard) error {
	tables := []exporter.Table{exporter.SummaryTable(dash.Summary, dash.Range)}
	for _, name := range []string{exporter.TableMonthly, exporter.TableSeasons, exporter.TableUserTypes, exporter.TableDayTypes} {
		t, err := exporter.TableFor(name, dash, nil)
		if err != nil {
			return err
		}
		tables = append(tables, t)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for i, t := range tables {
		if i > 0 {
			fmt.Fprintln(tw)
		}
		fmt.Fprintf(tw, "== %s ==\n", t.Name)
		fmt.Fprintln(tw, strings.Join(t.Headers, "\t"))
		for _, row := range t.Rows {
			fmt.Fprintln(tw, strings.Join(row, "\t"))
		}
	}
	return tw.Flush()
}
