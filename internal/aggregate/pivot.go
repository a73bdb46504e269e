package aggregate

import "sort"

// PivotTable is a dense grid of summed values. Cells[i][j] belongs to
// Rows[i] and Columns[j]; combinations without rows hold 0.
type PivotTable struct {
	Rows    []string    `json:"rows"`
	Columns []string    `json:"columns"`
	Cells   [][]float64 `json:"cells"`
}

// IsEmpty reports whether the table has no cells
func (p PivotTable) IsEmpty() bool {
	return len(p.Rows) == 0 || len(p.Columns) == 0
}

// Cell returns the value at row and column keys, or 0 when either is absent
func (p PivotTable) Cell(row, column string) float64 {
	for i, r := range p.Rows {
		if r != row {
			continue
		}
		for j, c := range p.Columns {
			if c == column {
				return p.Cells[i][j]
			}
		}
	}
	return 0
}

// Pivot sums value over the rowKey x colKey grid. Rows are sorted by key.
// When columnOrder is given, columns present in it come first in that order
// and any other columns follow in discovery order; otherwise columns keep
// discovery order. Columns of columnOrder with no rows are omitted.
func Pivot[T any](rows []T, rowKey, colKey func(T) string, value func(T) float64, columnOrder []string) PivotTable {
	type cellKey struct{ row, col string }

	sums := make(map[cellKey]float64)
	rowSeen := make(map[string]struct{})
	colSeen := make(map[string]struct{})
	var rowKeys, discovered []string

	for _, row := range rows {
		r, c := rowKey(row), colKey(row)
		if _, ok := rowSeen[r]; !ok {
			rowSeen[r] = struct{}{}
			rowKeys = append(rowKeys, r)
		}
		if _, ok := colSeen[c]; !ok {
			colSeen[c] = struct{}{}
			discovered = append(discovered, c)
		}
		sums[cellKey{r, c}] += value(row)
	}

	sort.Strings(rowKeys)
	columns := orderColumns(discovered, colSeen, columnOrder)

	table := PivotTable{
		Rows:    rowKeys,
		Columns: columns,
		Cells:   make([][]float64, len(rowKeys)),
	}
	if table.Rows == nil {
		table.Rows = []string{}
	}
	for i, r := range rowKeys {
		table.Cells[i] = make([]float64, len(columns))
		for j, c := range columns {
			table.Cells[i][j] = sums[cellKey{r, c}]
		}
	}
	return table
}

// RestrictRows keeps the rows named in keep, in the order of keep
func (p PivotTable) RestrictRows(keep []string) PivotTable {
	index := make(map[string]int, len(p.Rows))
	for i, r := range p.Rows {
		index[r] = i
	}
	out := PivotTable{Rows: []string{}, Columns: p.Columns, Cells: [][]float64{}}
	for _, k := range keep {
		i, ok := index[k]
		if !ok {
			continue
		}
		out.Rows = append(out.Rows, k)
		out.Cells = append(out.Cells, append([]float64(nil), p.Cells[i]...))
	}
	return out
}

func orderColumns(discovered []string, seen map[string]struct{}, canonical []string) []string {
	columns := make([]string, 0, len(discovered))
	if len(canonical) == 0 {
		return append(columns, discovered...)
	}
	placed := make(map[string]struct{}, len(canonical))
	for _, c := range canonical {
		if _, ok := seen[c]; !ok {
			continue
		}
		if _, dup := placed[c]; dup {
			continue
		}
		placed[c] = struct{}{}
		columns = append(columns, c)
	}
	for _, c := range discovered {
		if _, ok := placed[c]; !ok {
			columns = append(columns, c)
		}
	}
	return columns
}
