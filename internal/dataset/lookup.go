package dataset

import (
	"klothdash/pkg/contracts/domain"
)

// StateLookup resolves a site identifier to its state or federal territory.
// Built once per snapshot load; the first snapshot row for a site wins.
type StateLookup struct {
	states map[string]string
}

// NewStateLookup builds the lookup from snapshot rows
func NewStateLookup(rows []domain.AggregatedRecord) StateLookup {
	states := make(map[string]string, len(rows))
	for _, r := range rows {
		if r.SiteContractID == "" {
			continue
		}
		if _, seen := states[r.SiteContractID]; seen {
			continue
		}
		states[r.SiteContractID] = r.StateTerritory
	}
	return StateLookup{states: states}
}

// Resolve returns the state for site, or domain.UnknownState when unmatched
func (l StateLookup) Resolve(site string) string {
	if state, ok := l.states[site]; ok {
		return state
	}
	return domain.UnknownState
}

// Len returns the number of distinct sites in the lookup
func (l StateLookup) Len() int {
	return len(l.states)
}
