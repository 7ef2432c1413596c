// Package engine turns backend snapshots into enriched, queryable datasets.
//
// The pipeline is Load (concurrent fetch + enrich) -> Apply (search, filter, sort)
// -> Paginate -> View. Everything after Load is pure.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/aethra/acueducto/internal/errors"
	"github.com/aethra/acueducto/internal/metrics"
	"github.com/aethra/acueducto/internal/models"
	"github.com/aethra/acueducto/internal/store"
	"golang.org/x/sync/errgroup"
)

// Loader fetches the collections a dataset needs and enriches them
type Loader struct {
	store   store.Reader
	format  Formatter
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewLoader creates a loader; m may be nil
func NewLoader(r store.Reader, f Formatter, m *metrics.Metrics) *Loader {
	return &Loader{store: r, format: f, metrics: m, now: time.Now}
}

// WithClock replaces the clock used for arrears
func (l *Loader) WithClock(now func() time.Time) *Loader {
	cp := *l
	cp.now = now
	return &cp
}

// Metrics returns the loader's metrics, possibly nil
func (l *Loader) Metrics() *metrics.Metrics {
	return l.metrics
}

type needs struct {
	users, properties, registrations, invoices, requests bool
}

var datasetNeeds = map[Kind]needs{
	KindUsers:         {users: true},
	KindProperties:    {users: true, properties: true},
	KindRegistrations: {users: true, properties: true, registrations: true},
	KindInvoices:      {users: true, properties: true, registrations: true, invoices: true},
	KindRequests:      {users: true, properties: true, registrations: true, requests: true},
}

type snapshot struct {
	users         []models.User
	properties    []models.Property
	registrations []models.Registration
	invoices      []models.Invoice
	requests      []models.Request
}

// fetch issues every needed call at once and waits for all of them. The first
// failure cancels the others and is returned; no partial snapshot escapes.
func (l *Loader) fetch(ctx context.Context, n needs) (snapshot, error) {
	var s snapshot
	eg, egCtx := errgroup.WithContext(ctx)

	if n.users {
		eg.Go(func() error {
			return fetchInto(egCtx, l, store.TableUsers, &s.users, l.store.ListUsers)
		})
	}
	if n.properties {
		eg.Go(func() error {
			return fetchInto(egCtx, l, store.TableProperties, &s.properties, l.store.ListProperties)
		})
	}
	if n.registrations {
		eg.Go(func() error {
			return fetchInto(egCtx, l, store.TableRegistrations, &s.registrations, l.store.ListRegistrations)
		})
	}
	if n.invoices {
		eg.Go(func() error {
			return fetchInto(egCtx, l, store.TableInvoices, &s.invoices, l.store.ListInvoices)
		})
	}
	if n.requests {
		eg.Go(func() error {
			return fetchInto(egCtx, l, store.TableRequests, &s.requests, l.store.ListRequests)
		})
	}

	if err := eg.Wait(); err != nil {
		return snapshot{}, err
	}
	return s, nil
}

func fetchInto[T any](ctx context.Context, l *Loader, entity string, dst *[]T, list func(context.Context) ([]T, error)) error {
	start := time.Now()
	rows, err := list(ctx)
	l.metrics.RecordFetch(entity, time.Since(start), len(rows), err)
	if err != nil {
		if !errors.IsFetch(err) {
			err = errors.NewFetchError(entity, err)
		}
		return err
	}
	*dst = rows
	return nil
}

// Load fetches and enriches the snapshot for kind
func (l *Loader) Load(ctx context.Context, kind Kind) (Dataset, error) {
	n, ok := datasetNeeds[kind]
	if !ok {
		return nil, errors.NewBadRequestError(fmt.Sprintf("unknown dataset %q", kind))
	}
	s, err := l.fetch(ctx, n)
	if err != nil {
		return nil, err
	}

	switch kind {
	case KindUsers:
		return NewUsersDataset(EnrichUsers(s.users), l.format), nil
	case KindProperties:
		return NewPropertiesDataset(EnrichProperties(s.properties, s.users), l.format), nil
	case KindRegistrations:
		return NewRegistrationsDataset(EnrichRegistrations(s.registrations, s.properties, s.users), l.format), nil
	case KindInvoices:
		return NewInvoicesDataset(EnrichInvoices(s.invoices, s.registrations, s.properties, s.users, l.now()), l.format), nil
	default:
		return NewRequestsDataset(EnrichRequests(s.requests, s.registrations, s.properties, s.users), l.format), nil
	}
}

// Invoices fetches and enriches the invoice snapshot
func (l *Loader) Invoices(ctx context.Context) ([]InvoiceRow, error) {
	s, err := l.fetch(ctx, datasetNeeds[KindInvoices])
	if err != nil {
		return nil, err
	}
	return EnrichInvoices(s.invoices, s.registrations, s.properties, s.users, l.now()), nil
}

// InvoiceStats summarises the current invoice snapshot
func (l *Loader) InvoiceStats(ctx context.Context) (InvoiceStats, error) {
	rows, err := l.Invoices(ctx)
	if err != nil {
		return InvoiceStats{}, err
	}
	return ComputeInvoiceStats(rows), nil
}
