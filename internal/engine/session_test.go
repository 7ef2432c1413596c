package engine

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/aethra/acueducto/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionSelectAndRender(t *testing.T) {
	s := NewSession(newTestLoader(newFakeReader(newFixture())), KindUsers, 10)

	before := s.Render()
	assert.Empty(t, before.Rows)
	assert.False(t, before.Error)

	require.NoError(t, s.Select(context.Background(), KindInvoices))
	s.Update(func(v ViewState) ViewState { return v.WithFilter("vencidas") })
	s.Update(func(v ViewState) ViewState { return v.ToggleSort("valor_total") })

	v := s.Render()
	assert.Equal(t, KindInvoices, v.Kind)
	assert.Equal(t, 2, v.TotalRows)
	require.Len(t, v.Rows, 2)
	assert.Equal(t, int64(4), v.Rows[0].Data.(InvoiceRow).ID)

	s.Update(func(v ViewState) ViewState { return v.ToggleSort("valor_total") })
	v = s.Render()
	assert.Equal(t, int64(1), v.Rows[0].Data.(InvoiceRow).ID)
}

func TestSessionUpdateCannotSwitchDataset(t *testing.T) {
	s := NewSession(newTestLoader(newFakeReader(newFixture())), KindUsers, 10)
	st := s.Update(func(v ViewState) ViewState { return v.WithDataset(KindInvoices).WithSearch("x") })
	assert.Equal(t, KindUsers, st.Dataset)
	assert.Equal(t, "x", st.Search)
}

func TestSessionFetchErrorShowsErrorState(t *testing.T) {
	r := newFakeReader(newFixture())
	r.failOn("facturas", stderrors.New("timeout"))
	s := NewSession(newTestLoader(r), KindUsers, 10)

	require.NoError(t, s.Select(context.Background(), KindUsers))
	err := s.Select(context.Background(), KindInvoices)
	require.Error(t, err)

	v := s.Render()
	assert.True(t, v.Error)
	assert.Contains(t, v.Message, "timeout")
	assert.Empty(t, v.Rows)
	assert.Equal(t, 0, v.TotalRows)
	assert.Equal(t, 1, v.TotalPages)

	// reselecting retries
	r.failOn("facturas", nil)
	require.NoError(t, s.Select(context.Background(), KindInvoices))
	v = s.Render()
	assert.False(t, v.Error)
	assert.Equal(t, 4, v.TotalRows)
}

func TestSessionDiscardsStaleLoad(t *testing.T) {
	r := newFakeReader(newFixture())
	started, release := r.block("facturas")

	reg := prometheus.NewRegistry()
	m, err := metrics.New(reg)
	require.NoError(t, err)
	loader := NewLoader(r, NewFormatter("CO"), m).WithClock(newTestLoader(r).now)
	s := NewSession(loader, KindUsers, 10)

	slow := make(chan error, 1)
	go func() { slow <- s.Select(context.Background(), KindInvoices) }()
	waitFor(t, started)

	// the user moves on before facturas arrive
	require.NoError(t, s.Select(context.Background(), KindRequests))
	release()
	assert.ErrorIs(t, <-slow, ErrStaleLoad)

	v := s.Render()
	assert.Equal(t, KindRequests, v.Kind)
	assert.Equal(t, 2, v.TotalRows)
	assert.Equal(t, KindRequests, s.State().Dataset)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LoadCounter().WithLabelValues("facturas", metrics.OutcomeStale)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LoadCounter().WithLabelValues("solicitudes", metrics.OutcomeOK)))
}
