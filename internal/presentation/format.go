package presentation

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Formatter renders metric values for display with thousands separators
type Formatter struct {
	printer *message.Printer
}

// NewFormatter returns a formatter for the given language
func NewFormatter(tag language.Tag) *Formatter {
	return &Formatter{printer: message.NewPrinter(tag)}
}

// KG formats a weight with one decimal, e.g. "1,234.5"
func (f *Formatter) KG(v float64) string {
	return f.printer.Sprintf("%.1f", v)
}

// Percent formats a ratio in [0,1] as a percentage with one decimal
func (f *Formatter) Percent(ratio float64) string {
	return f.printer.Sprintf("%.1f%%", ratio*100)
}

// Count formats an integer count, e.g. "1,234"
func (f *Formatter) Count(n int) string {
	return f.printer.Sprintf("%d", n)
}
