package engine

import (
	"sort"
	"strings"
)

// FilterAll disables the categorical filter
const FilterAll = "todos"

// SortDirection is asc or desc
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// Sort is a sort key with direction. An empty key means no sorting.
type Sort struct {
	Key       string        `json:"key,omitempty"`
	Direction SortDirection `json:"direction,omitempty"`
}

// Toggle returns the sort that results from requesting key: the same key flips
// asc/desc, a different key starts ascending.
func (s Sort) Toggle(key string) Sort {
	if s.Key == key && s.Direction == SortAsc {
		return Sort{Key: key, Direction: SortDesc}
	}
	return Sort{Key: key, Direction: SortAsc}
}

// FilterOption is one entry of a dataset's categorical filter
type FilterOption struct {
	Value  string `json:"value"`
	Label  string `json:"label"`
	Estado string `json:"-"`
}

// Field resolves a named value from a row
type Field[T any] func(T) Value

// Schema declares how rows of one dataset are searched, filtered and sorted.
// Search and sort resolve names through the same Fields map.
type Schema[T any] struct {
	Fields  map[string]Field[T]
	Search  []string
	Filters []FilterOption
	Status  func(T) string
}

// Resolve returns the named value of row, Null for unknown names
func (s Schema[T]) Resolve(row T, name string) Value {
	f, ok := s.Fields[name]
	if !ok {
		return Null
	}
	return f(row)
}

// FilterOptions lists the selectable filters, always starting with todos
func (s Schema[T]) FilterOptions() []FilterOption {
	opts := make([]FilterOption, 0, len(s.Filters)+1)
	opts = append(opts, FilterOption{Value: FilterAll, Label: "Todos"})
	return append(opts, s.Filters...)
}

// Query is the search/filter/sort input of one render
type Query struct {
	Search string
	Filter string
	Sort   Sort
}

// Apply filters and orders rows without modifying them. The sort is stable.
func Apply[T any](rows []T, schema Schema[T], q Query) []T {
	needle := strings.ToLower(strings.TrimSpace(q.Search))
	estado, filtering := schema.filterEstado(q.Filter)

	out := make([]T, 0, len(rows))
	for _, row := range rows {
		if filtering && (schema.Status == nil || schema.Status(row) != estado) {
			continue
		}
		if needle != "" && !schema.matches(row, needle) {
			continue
		}
		out = append(out, row)
	}

	if q.Sort.Key != "" {
		schema.sort(out, q.Sort)
	}
	return out
}

func (s Schema[T]) filterEstado(value string) (string, bool) {
	if value == "" || value == FilterAll {
		return "", false
	}
	for _, opt := range s.Filters {
		if opt.Value == value {
			return opt.Estado, true
		}
	}
	return "", false
}

func (s Schema[T]) matches(row T, needle string) bool {
	for _, name := range s.Search {
		if s.Resolve(row, name).contains(needle) {
			return true
		}
	}
	return false
}

// sort places null values last regardless of direction; direction only flips
// comparisons between non-null values.
func (s Schema[T]) sort(rows []T, by Sort) {
	f, ok := s.Fields[by.Key]
	if !ok {
		return
	}
	keys := make([]Value, len(rows))
	for i, row := range rows {
		keys[i] = f(row)
	}
	desc := by.Direction == SortDesc

	idx := make([]int, len(rows))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool {
		a, b := keys[idx[i]], keys[idx[j]]
		switch {
		case a.IsNull():
			return false
		case b.IsNull():
			return true
		}
		c := a.Compare(b)
		if desc {
			c = -c
		}
		return c < 0
	})

	sorted := make([]T, len(rows))
	for i, k := range idx {
		sorted[i] = rows[k]
	}
	copy(rows, sorted)
}
