package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths holds the resolved absolute locations the application reads
type Paths struct {
	DataDir      string
	SnapshotFile string
	FactFile     string
	LogsDir      string
}

// GetPaths resolves the configured locations. The data directory is taken
// against the working directory; source files are taken against the data
// directory unless absolute.
func (c *Config) GetPaths() (*Paths, error) {
	dataDir := c.Sources.DataDir
	if dataDir == "" {
		dataDir = DefaultDataDir
	}
	dataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data dir: %w", err)
	}

	logsDir := ""
	if c.Logging.FilePath != "" {
		if logsDir, err = filepath.Abs(filepath.Dir(c.Logging.FilePath)); err != nil {
			return nil, fmt.Errorf("failed to resolve logs dir: %w", err)
		}
	}

	return &Paths{
		DataDir:      dataDir,
		SnapshotFile: underDir(dataDir, c.Sources.SnapshotPath),
		FactFile:     underDir(dataDir, c.Sources.FactPath),
		LogsDir:      logsDir,
	}, nil
}

// resolvePaths rewrites the source locations to absolute paths
func (c *Config) resolvePaths() error {
	paths, err := c.GetPaths()
	if err != nil {
		return err
	}
	c.Sources.DataDir = paths.DataDir
	c.Sources.SnapshotPath = paths.SnapshotFile
	c.Sources.FactPath = paths.FactFile
	return nil
}

func underDir(dir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

// FileExists reports whether path names an existing regular file
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// LogPathResolution logs the resolved locations for debugging
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	logger.Info("Path resolution",
		slog.String("data_dir", p.DataDir),
		slog.String("snapshot_file", p.SnapshotFile),
		slog.Bool("snapshot_exists", FileExists(p.SnapshotFile)),
		slog.String("fact_file", p.FactFile),
		slog.Bool("fact_exists", FileExists(p.FactFile)),
		slog.String("logs_dir", p.LogsDir))
}
