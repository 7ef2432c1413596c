package engine

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/aethra/acueducto/internal/errors"
	"github.com/aethra/acueducto/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFetchesOnlyWhatTheDatasetNeeds(t *testing.T) {
	r := newFakeReader(newFixture())
	l := newTestLoader(r)

	ds, err := l.Load(context.Background(), KindProperties)
	require.NoError(t, err)
	assert.Equal(t, KindProperties, ds.Kind())
	assert.Equal(t, 2, ds.Len())
	assert.Equal(t, 1, r.callCount("predios"))
	assert.Equal(t, 1, r.callCount("usuarios"))
	assert.Zero(t, r.callCount("matriculas"))
	assert.Zero(t, r.callCount("facturas"))
}

func TestLoadEveryKind(t *testing.T) {
	l := newTestLoader(newFakeReader(newFixture()))
	want := map[Kind]int{
		KindUsers:         2,
		KindProperties:    2,
		KindRegistrations: 3,
		KindInvoices:      4,
		KindRequests:      2,
	}
	for kind, n := range want {
		ds, err := l.Load(context.Background(), kind)
		require.NoError(t, err, kind)
		assert.Equal(t, n, ds.Len(), kind)
	}

	_, err := l.Load(context.Background(), Kind("clientes"))
	assert.Error(t, err)
}

func TestLoadFetchesConcurrently(t *testing.T) {
	r := newFakeReader(newFixture())
	usersStarted, releaseUsers := r.block("usuarios")
	invoicesStarted, releaseInvoices := r.block("facturas")

	done := make(chan error, 1)
	go func() {
		_, err := newTestLoader(r).Load(context.Background(), KindInvoices)
		done <- err
	}()

	// both calls are in flight before either returns
	waitFor(t, usersStarted)
	waitFor(t, invoicesStarted)
	releaseUsers()
	releaseInvoices()
	require.NoError(t, <-done)
}

func TestLoadFailsWholeCallOnAnyFetchError(t *testing.T) {
	r := newFakeReader(newFixture())
	cause := stderrors.New("relation \"predios\" does not exist")
	r.failOn("predios", cause)

	reg := prometheus.NewRegistry()
	m, err := metrics.New(reg)
	require.NoError(t, err)
	l := NewLoader(r, NewFormatter("CO"), m)

	ds, err := l.Load(context.Background(), KindInvoices)
	assert.Nil(t, ds)
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)

	var fe *errors.FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "predios", fe.Entity)
	assert.Contains(t, fe.Error(), "does not exist")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FetchCounter().WithLabelValues("predios", "error")))
}

func TestLoadPassesFetchErrorsThrough(t *testing.T) {
	r := newFakeReader(newFixture())
	original := errors.NewFetchError("usuarios", stderrors.New("401 Unauthorized"))
	r.failOn("usuarios", original)

	_, err := newTestLoader(r).Load(context.Background(), KindUsers)
	var fe *errors.FetchError
	require.ErrorAs(t, err, &fe)
	assert.Same(t, original, fe)
}

func TestInvoiceStatsThroughLoader(t *testing.T) {
	stats, err := newTestLoader(newFakeReader(newFixture())).InvoiceStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Vencidas)
	assert.Equal(t, "220000", stats.TotalDeuda.String())
}

func waitFor(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for fetch to start")
	}
}
