package dataset

import (
	"errors"
	"fmt"
)

// Sentinel errors matched with errors.Is
var (
	ErrMissingSourceFile = errors.New("missing source file")
	ErrMissingSheet      = errors.New("missing sheet")
)

// MissingSourceFileError reports a required input file absent at its configured path
type MissingSourceFileError struct {
	Path string
}

func (e *MissingSourceFileError) Error() string {
	return fmt.Sprintf("data file not found: %s", e.Path)
}

// Is allows errors.Is(err, ErrMissingSourceFile)
func (e *MissingSourceFileError) Is(target error) bool {
	return target == ErrMissingSourceFile
}

// MissingSheetError reports a workbook that lacks the expected sheet
type MissingSheetError struct {
	Path      string
	Sheet     string
	Available []string
}

func (e *MissingSheetError) Error() string {
	return fmt.Sprintf("sheet %q not found in %s", e.Sheet, e.Path)
}

// Is allows errors.Is(err, ErrMissingSheet)
func (e *MissingSheetError) Is(target error) bool {
	return target == ErrMissingSheet
}
