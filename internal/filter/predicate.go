package filter

import (
	"strings"
	"time"

	"golang.org/x/text/cases"

	"klothdash/pkg/contracts/domain"
)

// Predicate reports whether a row passes one criterion. A nil Predicate is
// inactive and passes every row.
type Predicate[T any] func(T) bool

// Range is an inclusive numeric interval
type Range struct {
	Lo float64 `json:"lo"`
	Hi float64 `json:"hi"`
}

// Contains reports whether v lies within the range. An inverted range is empty.
func (r Range) Contains(v float64) bool {
	return v >= r.Lo && v <= r.Hi
}

// DateRange is an inclusive calendar interval. A zero bound is open.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// IsZero reports whether both bounds are open
func (r DateRange) IsZero() bool {
	return r.Start.IsZero() && r.End.IsZero()
}

// Contains reports whether d lies within the range. Absent dates never do.
func (r DateRange) Contains(d domain.NullDate) bool {
	if !d.Valid {
		return false
	}
	day := domain.NewDate(d.Time).Time
	if !r.Start.IsZero() && day.Before(domain.NewDate(r.Start).Time) {
		return false
	}
	if !r.End.IsZero() && day.After(domain.NewDate(r.End).Time) {
		return false
	}
	return true
}

// In matches rows whose field value is one of selected. Inactive when
// selected is empty.
func In[T any](field func(T) string, selected []string) Predicate[T] {
	if len(selected) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(selected))
	for _, s := range selected {
		set[s] = struct{}{}
	}
	return func(row T) bool {
		_, ok := set[field(row)]
		return ok
	}
}

// Contains matches rows whose case-folded field value contains the
// case-folded, trimmed query. The query is plain text, not a pattern.
// Inactive when the query is blank.
func Contains[T any](field func(T) string, query string) Predicate[T] {
	q := strings.TrimSpace(query)
	if q == "" {
		return nil
	}
	q = cases.Fold().String(q)
	return func(row T) bool {
		return strings.Contains(cases.Fold().String(field(row)), q)
	}
}

// Between matches rows whose field value lies in r. Inactive when r is nil.
func Between[T any](field func(T) float64, r *Range) Predicate[T] {
	if r == nil {
		return nil
	}
	bounds := *r
	return func(row T) bool {
		return bounds.Contains(field(row))
	}
}

// Within matches rows whose date lies in r; rows without a date are
// excluded. Inactive when r is nil or fully open.
func Within[T any](field func(T) domain.NullDate, r *DateRange) Predicate[T] {
	if r == nil || r.IsZero() {
		return nil
	}
	bounds := *r
	return func(row T) bool {
		return bounds.Contains(field(row))
	}
}

// Apply returns the rows that satisfy every active predicate. The input is
// never modified; the result is a fresh slice even when nothing filters.
func Apply[T any](rows []T, preds ...Predicate[T]) []T {
	active := Active(preds...)
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		if matchAll(row, active) {
			out = append(out, row)
		}
	}
	return out
}

// Active drops inactive predicates
func Active[T any](preds ...Predicate[T]) []Predicate[T] {
	active := make([]Predicate[T], 0, len(preds))
	for _, p := range preds {
		if p != nil {
			active = append(active, p)
		}
	}
	return active
}

func matchAll[T any](row T, preds []Predicate[T]) bool {
	for _, p := range preds {
		if !p(row) {
			return false
		}
	}
	return true
}
