// Command bikepulse serves the bike sharing dashboard.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"bikepulse/internal/app"
	"bikepulse/pkg/contracts"
)

func main() {
	configFile := flag.String("config", "", "path to config.yaml (defaults to ./config.yaml when present)")
	data := flag.String("data", "", "dataset file, CSV or XLSX; overrides dataset.path")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println(contracts.GetFullVersionString())
		return
	}

	ctx := context.Background()
	application, err := app.New(ctx, app.Options{
		ConfigFile:  *configFile,
		DatasetPath: *data,
	})
	if err != nil {
		slog.Error("Failed to initialize application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := application.Run(ctx); err != nil {
		slog.Error("Application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
