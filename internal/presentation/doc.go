// Package presentation turns aggregates into metric cards, chart
// specifications and filter option lists for an external renderer.
//
// Builders never fail on empty input: metrics fall back to zero and "-",
// and charts are flagged Empty with a notice for the caller to show.
package presentation
