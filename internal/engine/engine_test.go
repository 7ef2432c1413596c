package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aethra/acueducto/internal/models"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func daysAgo(n int) models.Timestamp {
	return models.NewTimestamp(testNow.AddDate(0, 0, -n))
}

type fixture struct {
	users         []models.User
	properties    []models.Property
	registrations []models.Registration
	invoices      []models.Invoice
	requests      []models.Request
}

func newFixture() fixture {
	return fixture{
		users: []models.User{
			{CC: "100", FirstName: "Ana", LastName: "Ruiz", Phone: "3001234567", Email: "ana@example.com", RegisteredAt: daysAgo(300)},
			{CC: "200", FirstName: "Luis", LastName: "Pérez", Email: "luis@example.com", RegisteredAt: daysAgo(200)},
		},
		properties: []models.Property{
			{ID: 5, Address: "Calle 1", OwnerCC: "100", Type: models.PropertyResidential, RegisteredAt: daysAgo(250)},
			{ID: 6, Address: "Carrera 7", OwnerCC: "999", Type: models.PropertyCommercial, RegisteredAt: daysAgo(150)},
		},
		registrations: []models.Registration{
			{Code: "M1", PropertyID: 5, Status: models.RegistrationActive, Date: daysAgo(240)},
			{Code: "M2", PropertyID: 6, Status: models.RegistrationSuspended, Date: daysAgo(140)},
			{Code: "M3", PropertyID: 77, Status: models.RegistrationCancelled, Date: daysAgo(40)},
		},
		invoices: []models.Invoice{
			{ID: 1, RegistrationCode: "M1", Amount: "50000", IssuedOn: daysAgo(95), DueOn: daysAgo(65), Status: models.InvoiceOverdue},
			{ID: 2, RegistrationCode: "M2", Amount: "20000", IssuedOn: daysAgo(25), DueOn: daysAgo(-5), Status: models.InvoicePending},
			{ID: 3, RegistrationCode: "M9", Amount: "abc", IssuedOn: daysAgo(20), Status: models.InvoicePaid},
			{ID: 4, RegistrationCode: "M1", Amount: "50000", IssuedOn: daysAgo(40), DueOn: daysAgo(10), Status: models.InvoiceOverdue},
		},
		requests: []models.Request{
			{ID: 1, RegistrationCode: "M1", Status: models.RequestPending, Priority: models.PriorityUrgent, Notes: "fuga", OpenedAt: daysAgo(2)},
			{ID: 2, RegistrationCode: "M3", Status: models.RequestInProgress, Priority: models.PriorityLow, OpenedAt: daysAgo(1)},
		},
	}
}

// fakeReader serves a fixture. Calls can be made to fail or to block until a
// gate is closed; entered is signalled when a call starts.
type fakeReader struct {
	fx fixture

	mu      sync.Mutex
	errs    map[string]error
	gates   map[string]chan struct{}
	entered map[string]chan struct{}
	calls   map[string]int
}

func newFakeReader(fx fixture) *fakeReader {
	return &fakeReader{
		fx:      fx,
		errs:    map[string]error{},
		gates:   map[string]chan struct{}{},
		entered: map[string]chan struct{}{},
		calls:   map[string]int{},
	}
}

func (f *fakeReader) failOn(table string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[table] = err
}

// block makes table wait for the returned release func; the returned channel
// receives once the call has started.
func (f *fakeReader) block(table string) (started <-chan struct{}, release func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	gate := make(chan struct{})
	in := make(chan struct{}, 1)
	f.gates[table] = gate
	f.entered[table] = in
	var once sync.Once
	return in, func() { once.Do(func() { close(gate) }) }
}

func (f *fakeReader) callCount(table string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[table]
}

func (f *fakeReader) enter(ctx context.Context, table string) error {
	f.mu.Lock()
	f.calls[table]++
	gate, in, err := f.gates[table], f.entered[table], f.errs[table]
	f.mu.Unlock()

	if in != nil {
		select {
		case in <- struct{}{}:
		default:
		}
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

func (f *fakeReader) ListUsers(ctx context.Context) ([]models.User, error) {
	if err := f.enter(ctx, "usuarios"); err != nil {
		return nil, err
	}
	return f.fx.users, nil
}

func (f *fakeReader) ListProperties(ctx context.Context) ([]models.Property, error) {
	if err := f.enter(ctx, "predios"); err != nil {
		return nil, err
	}
	return f.fx.properties, nil
}

func (f *fakeReader) ListRegistrations(ctx context.Context) ([]models.Registration, error) {
	if err := f.enter(ctx, "matriculas"); err != nil {
		return nil, err
	}
	return f.fx.registrations, nil
}

func (f *fakeReader) ListInvoices(ctx context.Context) ([]models.Invoice, error) {
	if err := f.enter(ctx, "facturas"); err != nil {
		return nil, err
	}
	return f.fx.invoices, nil
}

func (f *fakeReader) ListRequests(ctx context.Context) ([]models.Request, error) {
	if err := f.enter(ctx, "solicitudes"); err != nil {
		return nil, err
	}
	return f.fx.requests, nil
}

func newTestLoader(r *fakeReader) *Loader {
	return NewLoader(r, NewFormatter("CO"), nil).WithClock(func() time.Time { return testNow })
}
