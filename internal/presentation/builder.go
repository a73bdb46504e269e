package presentation

import (
	"fmt"

	"golang.org/x/text/language"

	"klothdash/internal/aggregate"
)

// Builder assembles dashboards from filtered rows
type Builder struct {
	format *Formatter
}

// NewBuilder returns a builder that formats numbers for English readers
func NewBuilder() *Builder {
	return &Builder{format: NewFormatter(language.English)}
}

// Formatter exposes the builder's number formatter
func (b *Builder) Formatter() *Formatter {
	return b.format
}

func (b *Builder) kgMetric(id, label string, v float64) Metric {
	return Metric{ID: id, Label: label, Value: v, Display: b.format.KG(v)}
}

func (b *Builder) rateMetric(id, label string, ratio float64) Metric {
	return Metric{ID: id, Label: label, Value: ratio, Display: b.format.Percent(ratio)}
}

func (b *Builder) countMetric(id, label string, n int) Metric {
	return Metric{ID: id, Label: label, Value: float64(n), Display: b.format.Count(n)}
}

// topMetrics returns the card naming the top group and the card holding its value
func (b *Builder) topMetrics(id, label, valueLabel string, top aggregate.Group) []Metric {
	return []Metric{
		{ID: id, Label: label, Text: top.Key, Display: top.Key},
		b.kgMetric(id+"_value", valueLabel, top.Value),
	}
}

func validateTopN(n int) error {
	if n < 1 {
		return fmt.Errorf("%w: got %d", aggregate.ErrInvalidTopN, n)
	}
	return nil
}
