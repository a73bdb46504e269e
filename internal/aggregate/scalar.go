package aggregate

// NoGroup stands in for the top group of an empty input
const NoGroup = "-"

// Sum adds value over rows
func Sum[T any](rows []T, value func(T) float64) float64 {
	var total float64
	for _, row := range rows {
		total += value(row)
	}
	return total
}

// DistinctCount counts distinct keys, including the empty key
func DistinctCount[T any](rows []T, key func(T) string) int {
	seen := make(map[string]struct{})
	for _, row := range rows {
		seen[key(row)] = struct{}{}
	}
	return len(seen)
}

// Ratio divides num by den, returning 0 when den is 0
func Ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

// AcceptanceRate is acceptable / (acceptable + rejected), 0 when both are 0
func AcceptanceRate(acceptable, rejected float64) float64 {
	return Ratio(acceptable, acceptable+rejected)
}

// Mean returns total / count, 0 when count is 0
func Mean(total float64, count int) float64 {
	return Ratio(total, float64(count))
}

// ArgMax returns the group with the largest summed value, ties resolved by
// key ascending. Empty input yields NoGroup with value 0.
func ArgMax[T any](rows []T, key func(T) string, value func(T) float64) Group {
	groups := GroupSum(rows, key, value, ByValueDesc)
	if len(groups) == 0 {
		return Group{Key: NoGroup}
	}
	return groups[0]
}
