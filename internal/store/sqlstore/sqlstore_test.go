package sqlstore

import (
	"context"
	"testing"
	"time"

	"github.com/aethra/acueducto/internal/errors"
	"github.com/aethra/acueducto/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var base = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func at(days int) models.Timestamp {
	return models.NewTimestamp(base.AddDate(0, 0, days))
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	seed(t, db)
	return New(db)
}

func seed(t *testing.T, db *gorm.DB) {
	t.Helper()
	require.NoError(t, db.Create(&[]models.User{
		{CC: "100", FirstName: "Ana", LastName: "Ruiz", RegisteredAt: at(-10)},
		{CC: "200", FirstName: "Luis", LastName: "Pérez", RegisteredAt: at(-5)},
	}).Error)
	require.NoError(t, db.Create(&[]models.Property{
		{ID: 5, Address: "Calle 1", OwnerCC: "100", Type: models.PropertyResidential, RegisteredAt: at(-9)},
		{ID: 6, Address: "Calle 2", OwnerCC: "100", Type: models.PropertyCommercial, RegisteredAt: at(-3)},
	}).Error)
	require.NoError(t, db.Create(&[]models.Registration{
		{Code: "M1", PropertyID: 5, Status: models.RegistrationActive, Date: at(-8)},
	}).Error)
	require.NoError(t, db.Create(&[]models.Invoice{
		{ID: 1, RegistrationCode: "M1", Amount: "50000", IssuedOn: at(-60), DueOn: at(-30), Status: models.InvoiceOverdue},
		{ID: 2, RegistrationCode: "M1", Amount: "52000", IssuedOn: at(-30), DueOn: at(0), Status: models.InvoiceOverdue},
		{ID: 3, RegistrationCode: "M1", Amount: "51000", IssuedOn: at(-1), DueOn: at(29), Status: models.InvoicePending},
	}).Error)
	require.NoError(t, db.Create(&[]models.Request{
		{ID: 1, RegistrationCode: "M1", Status: models.RequestPending, Priority: models.PriorityLow, OpenedAt: at(-3)},
		{ID: 2, RegistrationCode: "M1", Status: models.RequestPending, Priority: models.PriorityUrgent, OpenedAt: at(-2)},
		{ID: 3, RegistrationCode: "M1", Status: models.RequestCompleted, Priority: models.PriorityUrgent, OpenedAt: at(-1)},
	}).Error)
}

func TestListsAreNewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "200", users[0].CC)

	invs, err := s.ListInvoices(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), invs[0].ID)
	assert.Equal(t, "51000", invs[0].Amount.Decimal().String())
	assert.True(t, invs[0].DueOn.Valid())

	reqs, err := s.ListRequests(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), reqs[0].ID)
}

func TestEqualityHelpers(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	props, err := s.ListPropertiesByOwner(ctx, "100")
	require.NoError(t, err)
	require.Len(t, props, 2)
	assert.Equal(t, int64(6), props[0].ID)

	overdue, err := s.ListInvoicesByStatus(ctx, models.InvoiceOverdue)
	require.NoError(t, err)
	require.Len(t, overdue, 2)
	assert.Equal(t, int64(1), overdue[0].ID, "earliest due first")

	pending, err := s.ListRequestsByStatus(ctx, models.RequestPending)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, models.PriorityUrgent, pending[0].Priority)

	urgent, err := s.ListRequestsByPriority(ctx, models.PriorityUrgent)
	require.NoError(t, err)
	require.Len(t, urgent, 2)
	assert.Equal(t, int64(3), urgent[0].ID)

	byReg, err := s.ListInvoicesByRegistration(ctx, "M1")
	require.NoError(t, err)
	assert.Len(t, byReg, 3)

	none, err := s.ListRequestsByRegistration(ctx, "M404")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestGetters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u, err := s.GetUser(ctx, "100")
	require.NoError(t, err)
	assert.Equal(t, "Ana Ruiz", u.FullName())

	p, err := s.GetProperty(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, "Calle 1", p.Address)

	_, err = s.GetInvoice(ctx, 99)
	assert.True(t, errors.IsNotFound(err))
	_, err = s.GetRegistration(ctx, "M404")
	assert.True(t, errors.IsNotFound(err))
	_, err = s.GetRequest(ctx, 99)
	assert.True(t, errors.IsNotFound(err))
}

func TestUserWrites(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := &models.User{CC: "300", FirstName: "Eva", LastName: "Gil"}
	require.NoError(t, s.CreateUser(ctx, u))
	assert.True(t, u.RegisteredAt.Valid())

	dup := &models.User{CC: "300", FirstName: "Otra"}
	var conflict *errors.ConflictError
	assert.ErrorAs(t, s.CreateUser(ctx, dup), &conflict)

	upd := &models.User{FirstName: "Eva", LastName: "Gil", Phone: "3110000000"}
	require.NoError(t, s.UpdateUser(ctx, "300", upd))
	assert.Equal(t, "300", upd.CC)
	assert.Equal(t, "3110000000", upd.Phone)
	assert.True(t, upd.RegisteredAt.Valid())

	assert.True(t, errors.IsNotFound(s.UpdateUser(ctx, "404", upd)))

	require.NoError(t, s.DeleteUser(ctx, "300"))
	assert.True(t, errors.IsNotFound(s.DeleteUser(ctx, "300")))
}

func TestRegistrationWrites(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	r := &models.Registration{Code: "M2", PropertyID: 6, Status: models.RegistrationActive}
	require.NoError(t, s.CreateRegistration(ctx, r))

	upd := &models.Registration{PropertyID: 6, Status: models.RegistrationSuspended}
	require.NoError(t, s.UpdateRegistration(ctx, "M2", upd))
	assert.Equal(t, "M2", upd.Code)
	assert.Equal(t, models.RegistrationSuspended, upd.Status)

	require.NoError(t, s.DeleteRegistration(ctx, "M2"))
	assert.True(t, errors.IsNotFound(s.DeleteRegistration(ctx, "M2")))
}

func TestFetchErrorsNameTheTable(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.DB().Migrator().DropTable(&models.Property{}))

	_, err := s.ListProperties(context.Background())
	var fe *errors.FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "predios", fe.Entity)
}
