package validation

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"klothdash/internal/files"
)

var (
	// ErrNotExist is returned when a source or directory is absent
	ErrNotExist = errors.New("does not exist")
	// ErrUnsupportedType is returned for files the loader cannot read
	ErrUnsupportedType = errors.New("unsupported file type")
	// ErrLockFile is returned for office lock files (~$name.xlsx)
	ErrLockFile = errors.New("office lock file")
)

// FileValidator checks source workbooks and export destinations before
// they are read or written
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger,
	}
}

// ValidateDataDirectory checks that dir exists and is a directory
func (v *FileValidator) ValidateDataDirectory(dir string) error {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		v.logger.Error("Data directory does not exist", slog.String("directory", dir))
		return fmt.Errorf("data directory %s: %w", dir, ErrNotExist)
	}
	if err != nil {
		return fmt.Errorf("failed to stat directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		v.logger.Error("Data path is not a directory", slog.String("path", dir))
		return fmt.Errorf("%s is not a directory", dir)
	}
	return nil
}

// ValidateSourceFile checks that path is a readable workbook or CSV the
// loader understands
func (v *FileValidator) ValidateSourceFile(path string) error {
	base := filepath.Base(path)
	if strings.HasPrefix(base, "~$") {
		v.logger.Warn("Skipping office lock file", slog.String("file", path))
		return fmt.Errorf("%s: %w", path, ErrLockFile)
	}
	if !files.IsSourceFile(base) {
		return fmt.Errorf("%s (%s): %w", path, filepath.Ext(base), ErrUnsupportedType)
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("source file %s: %w", path, ErrNotExist)
	}
	if err != nil {
		return fmt.Errorf("failed to stat file %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory, not a file", path)
	}

	file, err := os.Open(path)
	if err != nil {
		v.logger.Error("Source file is not readable",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return fmt.Errorf("file %s is not readable: %w", path, err)
	}
	file.Close()

	v.logger.Debug("Source file validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateOutputFile makes sure the directory holding path exists and that
// path does not name a directory
func (v *FileValidator) ValidateOutputFile(path string) error {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return fmt.Errorf("output %s is a directory", path)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}
	return nil
}
