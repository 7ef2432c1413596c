package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransitionsResetPage(t *testing.T) {
	s := NewViewState(KindInvoices, 10).WithPage(4)
	assert.Equal(t, 4, s.Page)

	assert.Equal(t, 1, s.WithSearch("ruiz").Page)
	assert.Equal(t, 1, s.WithFilter("vencidas").Page)
	assert.Equal(t, 1, s.ToggleSort("valor_total").Page)
	assert.Equal(t, 1, s.WithSort("valor_total", SortDesc).Page)
	assert.Equal(t, 1, s.WithPageSize(25).Page)
	assert.Equal(t, 1, s.WithDataset(KindUsers).Page)

	// the receiver is untouched
	assert.Equal(t, 4, s.Page)
}

func TestWithDatasetClearsFilterAndSort(t *testing.T) {
	s := NewViewState(KindInvoices, 25).
		WithSearch("calle").
		WithFilter("vencidas").
		ToggleSort("valor_total")

	next := s.WithDataset(KindRequests)
	assert.Equal(t, KindRequests, next.Dataset)
	assert.Equal(t, FilterAll, next.Filter)
	assert.Equal(t, Sort{}, next.Sort)
	assert.Equal(t, "calle", next.Search)
	assert.Equal(t, 25, next.PageSize)
}

func TestStateDefaults(t *testing.T) {
	s := NewViewState(KindUsers, 0)
	assert.Equal(t, DefaultPageSize, s.PageSize)
	assert.Equal(t, 1, s.Page)
	assert.Equal(t, FilterAll, s.Filter)

	assert.Equal(t, 1, s.WithPage(-3).Page)
	assert.Equal(t, DefaultPageSize, s.WithPageSize(0).PageSize)
	assert.Equal(t, FilterAll, s.WithFilter("").Filter)
	assert.Equal(t, Sort{}, s.WithSort("", SortDesc).Sort)
	assert.Equal(t, SortAsc, s.WithSort("cc", "sideways").Sort.Direction)

	q := s.WithSearch("x").ToggleSort("cc").Query()
	assert.Equal(t, Query{Search: "x", Filter: FilterAll, Sort: Sort{Key: "cc", Direction: SortAsc}}, q)
}
