package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths holds the resolved file system locations used at runtime
type Paths struct {
	BaseDir     string
	DatasetFile string
	LogFile     string
	LogsDir     string
}

// ResolvePaths makes the dataset and log paths absolute relative to baseDir.
// An empty baseDir means the current working directory.
func (c *Config) ResolvePaths(baseDir string) (*Paths, error) {
	if baseDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		baseDir = wd
	}

	paths := &Paths{
		BaseDir:     baseDir,
		DatasetFile: resolve(baseDir, c.Dataset.Path),
		LogFile:     resolve(baseDir, c.Logging.FilePath),
	}
	paths.LogsDir = filepath.Dir(paths.LogFile)
	return paths, nil
}

// EnsureDirectories creates the log directory when file logging is enabled
func (p *Paths) EnsureDirectories(logToFile bool) error {
	if !logToFile {
		return nil
	}
	if err := os.MkdirAll(p.LogsDir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", p.LogsDir, err)
	}
	return nil
}

// LogAttrs describes the paths for the startup log line
func (p *Paths) LogAttrs() slog.Attr {
	return slog.Group("paths",
		slog.String("base", p.BaseDir),
		slog.String("dataset", p.DatasetFile),
		slog.String("log_file", p.LogFile),
	)
}

// FileExists checks if a regular file exists at path
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func resolve(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}
