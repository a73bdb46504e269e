package exporter

import (
	"strconv"

	"klothdash/pkg/contracts/domain"
)

// formatFloat formats a value in the shortest form that parses back to it
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// formatDate formats a date as YYYY-MM-DD, or "" when absent
func formatDate(d domain.NullDate) string {
	return d.String()
}

// dateCell returns a workbook cell value for d; absent dates leave the cell blank
func dateCell(d domain.NullDate) any {
	if !d.Valid {
		return nil
	}
	return d.Time
}
