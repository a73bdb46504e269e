package aggregate

import (
	"errors"
	"fmt"
	"sort"
)

// ErrInvalidTopN is returned when a ranking is truncated to fewer than one entry
var ErrInvalidTopN = errors.New("top-n must be at least 1")

// Order controls the ordering of grouped results
type Order int

const (
	// ByValueDesc sorts by summed value, largest first, ties by key ascending
	ByValueDesc Order = iota
	// ByKeyAsc sorts by key ascending
	ByKeyAsc
)

// Group is one key with its summed value
type Group struct {
	Key   string  `json:"key"`
	Value float64 `json:"value"`
}

// MultiGroup is one key with several summed values in caller order
type MultiGroup struct {
	Key    string    `json:"key"`
	Values []float64 `json:"values"`
}

// Total returns the sum of the group's values
func (g MultiGroup) Total() float64 {
	var total float64
	for _, v := range g.Values {
		total += v
	}
	return total
}

// GroupSum sums value per distinct key. Every row lands in exactly one group,
// so the group values add up to the column total.
func GroupSum[T any](rows []T, key func(T) string, value func(T) float64, order Order) []Group {
	index := make(map[string]int)
	groups := make([]Group, 0)
	for _, row := range rows {
		k := key(row)
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, Group{Key: k})
		}
		groups[i].Value += value(row)
	}
	sortGroups(groups, order)
	return groups
}

// GroupSums sums several values per distinct key. Groups are ordered by the
// first value, largest first, ties by key ascending.
func GroupSums[T any](rows []T, key func(T) string, values ...func(T) float64) []MultiGroup {
	index := make(map[string]int)
	groups := make([]MultiGroup, 0)
	for _, row := range rows {
		k := key(row)
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, MultiGroup{Key: k, Values: make([]float64, len(values))})
		}
		for j, value := range values {
			groups[i].Values[j] += value(row)
		}
	}
	sort.SliceStable(groups, func(a, b int) bool {
		if len(values) > 0 && groups[a].Values[0] != groups[b].Values[0] {
			return groups[a].Values[0] > groups[b].Values[0]
		}
		return groups[a].Key < groups[b].Key
	})
	return groups
}

// TopN returns the first n groups of an already ordered result. n beyond the
// group count returns every group.
func TopN(groups []Group, n int) ([]Group, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidTopN, n)
	}
	if n > len(groups) {
		n = len(groups)
	}
	out := make([]Group, n)
	copy(out, groups[:n])
	return out, nil
}

// Keys returns the keys of groups in order
func Keys(groups []Group) []string {
	keys := make([]string, len(groups))
	for i, g := range groups {
		keys[i] = g.Key
	}
	return keys
}

func sortGroups(groups []Group, order Order) {
	switch order {
	case ByKeyAsc:
		sort.SliceStable(groups, func(a, b int) bool {
			return groups[a].Key < groups[b].Key
		})
	default:
		sort.SliceStable(groups, func(a, b int) bool {
			if groups[a].Value != groups[b].Value {
				return groups[a].Value > groups[b].Value
			}
			return groups[a].Key < groups[b].Key
		})
	}
}
