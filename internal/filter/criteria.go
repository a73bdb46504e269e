package filter

import (
	"klothdash/pkg/contracts/domain"
)

// SnapshotCriteria are the user controls of the snapshot view
type SnapshotCriteria struct {
	States        []string
	Sites         []string
	LocationQuery string
	AddressQuery  string
	Acceptable    *Range
}

// Predicates maps the criteria to row predicates; unset criteria yield nil
func (c SnapshotCriteria) Predicates() []Predicate[domain.AggregatedRecord] {
	return []Predicate[domain.AggregatedRecord]{
		In(func(r domain.AggregatedRecord) string { return r.StateTerritory }, c.States),
		In(func(r domain.AggregatedRecord) string { return r.SiteContractID }, c.Sites),
		Contains(func(r domain.AggregatedRecord) string { return r.LocationName }, c.LocationQuery),
		Contains(func(r domain.AggregatedRecord) string { return r.SiteAddress }, c.AddressQuery),
		Between(func(r domain.AggregatedRecord) float64 { return r.TotalAcceptableKG }, c.Acceptable),
	}
}

// Apply filters rows by every active criterion
func (c SnapshotCriteria) Apply(rows []domain.AggregatedRecord) []domain.AggregatedRecord {
	return Apply(rows, c.Predicates()...)
}

// ActiveCount returns the number of active criteria
func (c SnapshotCriteria) ActiveCount() int {
	return len(Active(c.Predicates()...))
}

// FactCriteria are the user controls of the daily fact view
type FactCriteria struct {
	States        []string
	Sites         []string
	Weeks         []string
	Months        []string
	Days          []string
	LocationQuery string
	AddressQuery  string
	Weight        *Range
	Dates         *DateRange
}

// Predicates maps the criteria to row predicates; unset criteria yield nil
func (c FactCriteria) Predicates() []Predicate[domain.FactRecord] {
	return []Predicate[domain.FactRecord]{
		In(func(r domain.FactRecord) string { return r.StateTerritory }, c.States),
		In(func(r domain.FactRecord) string { return r.Site }, c.Sites),
		In(func(r domain.FactRecord) string { return r.WeekLabel }, c.Weeks),
		In(func(r domain.FactRecord) string { return r.MonthText }, c.Months),
		In(func(r domain.FactRecord) string { return r.DayOfWeek }, c.Days),
		Contains(func(r domain.FactRecord) string { return r.LocationName }, c.LocationQuery),
		Contains(func(r domain.FactRecord) string { return r.SiteAddress }, c.AddressQuery),
		Between(func(r domain.FactRecord) float64 { return r.WeightKG }, c.Weight),
		Within(func(r domain.FactRecord) domain.NullDate { return r.Date }, c.Dates),
	}
}

// Apply filters rows by every active criterion
func (c FactCriteria) Apply(rows []domain.FactRecord) []domain.FactRecord {
	return Apply(rows, c.Predicates()...)
}

// ActiveCount returns the number of active criteria
func (c FactCriteria) ActiveCount() int {
	return len(Active(c.Predicates()...))
}
