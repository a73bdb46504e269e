// Package filter selects rows of a loaded table by user criteria.
//
// Each criterion becomes a Predicate. A criterion that is unset (an empty
// selection, a blank query, a nil range) yields a nil Predicate, which Apply
// skips. Active predicates combine with AND, so their order never changes
// the result and adding one can only shrink it.
package filter
