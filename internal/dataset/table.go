package dataset

import (
	"strings"
	"time"
)

// Table is an immutable typed view of one loaded source.
// Consumers must treat Rows as read-only; filters return new slices.
type Table[T any] struct {
	Source   string    `json:"source"`
	Sheet    string    `json:"sheet,omitempty"`
	Rows     []T       `json:"-"`
	Columns  []string  `json:"columns"`
	Missing  []string  `json:"missing,omitempty"`
	LoadedAt time.Time `json:"loaded_at"`
}

// Len returns the number of rows
func (t *Table[T]) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// columnIndex maps normalized header names to their position
type columnIndex map[string]int

func normalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	return strings.ToLower(strings.TrimSpace(h))
}

func indexHeader(header []string) columnIndex {
	idx := make(columnIndex, len(header))
	for i, h := range header {
		key := normalizeHeader(h)
		if key == "" {
			continue
		}
		// first occurrence wins on duplicate headers
		if _, dup := idx[key]; !dup {
			idx[key] = i
		}
	}
	return idx
}

func (c columnIndex) has(name string) bool {
	_, ok := c[normalizeHeader(name)]
	return ok
}

// cell returns the value of column name in row, or "" when the column or
// cell is absent
func (c columnIndex) cell(row []string, name string) string {
	i, ok := c[normalizeHeader(name)]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

// partition splits expected columns into present and missing
func (c columnIndex) partition(expected []string) (present, missing []string) {
	for _, name := range expected {
		if c.has(name) {
			present = append(present, name)
		} else {
			missing = append(missing, name)
		}
	}
	return present, missing
}
