// Package aggregate computes grouped sums, rankings, pivots and scalar
// summaries over filtered rows.
//
// Every function is pure: inputs are never modified and the same input
// always yields the same output, including the order of groups.
package aggregate
