// Package sqlstore implements store.Store on a relational database through gorm.
// It is the self-hosted alternative to the PostgREST backend and reads the same
// five tables.
package sqlstore

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/aethra/acueducto/internal/errors"
	"github.com/aethra/acueducto/internal/models"
	"github.com/aethra/acueducto/internal/store"
	"gorm.io/gorm"
)

// Store wraps a gorm connection
type Store struct {
	db *gorm.DB
}

var _ store.Store = (*Store)(nil)

// New returns a store on db. The database should be opened with TranslateError
// so duplicate keys surface as conflicts.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB returns the underlying connection
func (s *Store) DB() *gorm.DB {
	return s.db
}

func find[T any](ctx context.Context, db *gorm.DB, table, order string, where ...interface{}) ([]T, error) {
	rows := []T{}
	q := db.WithContext(ctx).Order(order)
	if len(where) > 0 {
		q = q.Where(where[0], where[1:]...)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, errors.NewFetchError(table, err)
	}
	return rows, nil
}

func first[T any](ctx context.Context, db *gorm.DB, table, resource, cond string, key interface{}) (*T, error) {
	var row T
	if err := db.WithContext(ctx).Where(cond, key).First(&row).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NewNotFoundError(resource)
		}
		return nil, errors.NewFetchError(table, err)
	}
	return &row, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	return find[models.User](ctx, s.db, store.TableUsers, "fecha DESC")
}

func (s *Store) ListProperties(ctx context.Context) ([]models.Property, error) {
	return find[models.Property](ctx, s.db, store.TableProperties, "fecha_registro DESC")
}

func (s *Store) ListRegistrations(ctx context.Context) ([]models.Registration, error) {
	return find[models.Registration](ctx, s.db, store.TableRegistrations, "fecha DESC")
}

func (s *Store) ListInvoices(ctx context.Context) ([]models.Invoice, error) {
	return find[models.Invoice](ctx, s.db, store.TableInvoices, "fecha_creacion DESC")
}

func (s *Store) ListRequests(ctx context.Context) ([]models.Request, error) {
	return find[models.Request](ctx, s.db, store.TableRequests, "created_at DESC")
}

func (s *Store) GetUser(ctx context.Context, cc string) (*models.User, error) {
	return first[models.User](ctx, s.db, store.TableUsers, "usuario", "cc = ?", cc)
}

func (s *Store) GetProperty(ctx context.Context, id int64) (*models.Property, error) {
	return first[models.Property](ctx, s.db, store.TableProperties, "predio", "id = ?", id)
}

func (s *Store) GetRegistration(ctx context.Context, code string) (*models.Registration, error) {
	return first[models.Registration](ctx, s.db, store.TableRegistrations, "matricula", "cod_matricula = ?", code)
}

func (s *Store) GetInvoice(ctx context.Context, id int64) (*models.Invoice, error) {
	return first[models.Invoice](ctx, s.db, store.TableInvoices, "factura", "id = ?", id)
}

func (s *Store) GetRequest(ctx context.Context, id int64) (*models.Request, error) {
	return first[models.Request](ctx, s.db, store.TableRequests, "solicitud", "id = ?", id)
}

func (s *Store) ListPropertiesByOwner(ctx context.Context, cc string) ([]models.Property, error) {
	return find[models.Property](ctx, s.db, store.TableProperties, "fecha_registro DESC", "propietario_cc = ?", cc)
}

func (s *Store) ListInvoicesByRegistration(ctx context.Context, code string) ([]models.Invoice, error) {
	return find[models.Invoice](ctx, s.db, store.TableInvoices, "fecha_creacion DESC", "cod_matricula = ?", code)
}

func (s *Store) ListInvoicesByStatus(ctx context.Context, status models.InvoiceStatus) ([]models.Invoice, error) {
	return find[models.Invoice](ctx, s.db, store.TableInvoices, "fecha_vencimiento ASC", "estado = ?", status)
}

func (s *Store) ListRequestsByRegistration(ctx context.Context, code string) ([]models.Request, error) {
	return find[models.Request](ctx, s.db, store.TableRequests, "created_at DESC", "cod_matricula = ?", code)
}

func (s *Store) ListRequestsByStatus(ctx context.Context, status models.RequestStatus) ([]models.Request, error) {
	rows, err := find[models.Request](ctx, s.db, store.TableRequests, "created_at DESC", "estado = ?", status)
	if err != nil {
		return nil, err
	}
	models.SortByPriority(rows)
	return rows, nil
}

func (s *Store) ListRequestsByPriority(ctx context.Context, p models.Priority) ([]models.Request, error) {
	return find[models.Request](ctx, s.db, store.TableRequests, "created_at DESC", "prioridad = ?", p)
}

// =============================================================================
// WRITES
// =============================================================================

func writeError(table, resource string, err error) error {
	if stderrors.Is(err, gorm.ErrDuplicatedKey) {
		return errors.NewConflictError(resource)
	}
	return errors.NewFetchError(table, err)
}

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	if !u.RegisteredAt.Valid() {
		u.RegisteredAt = models.NewTimestamp(time.Now())
	}
	if err := s.db.WithContext(ctx).Create(u).Error; err != nil {
		return writeError(store.TableUsers, "usuario", err)
	}
	return nil
}

// UpdateUser changes the contact fields of cc and reloads u
func (s *Store) UpdateUser(ctx context.Context, cc string, u *models.User) error {
	res := s.db.WithContext(ctx).Model(&models.User{}).Where("cc = ?", cc).Updates(map[string]interface{}{
		"nombre":   u.FirstName,
		"apellido": u.LastName,
		"telefono": u.Phone,
		"correo":   u.Email,
	})
	if res.Error != nil {
		return writeError(store.TableUsers, "usuario", res.Error)
	}
	if res.RowsAffected == 0 {
		return errors.NewNotFoundError("usuario")
	}
	fresh, err := s.GetUser(ctx, cc)
	if err != nil {
		return err
	}
	*u = *fresh
	return nil
}

func (s *Store) DeleteUser(ctx context.Context, cc string) error {
	res := s.db.WithContext(ctx).Where("cc = ?", cc).Delete(&models.User{})
	if res.Error != nil {
		return writeError(store.TableUsers, "usuario", res.Error)
	}
	if res.RowsAffected == 0 {
		return errors.NewNotFoundError("usuario")
	}
	return nil
}

func (s *Store) CreateRegistration(ctx context.Context, r *models.Registration) error {
	if !r.Date.Valid() {
		r.Date = models.NewTimestamp(time.Now())
	}
	if err := s.db.WithContext(ctx).Create(r).Error; err != nil {
		return writeError(store.TableRegistrations, "matricula", err)
	}
	return nil
}

// UpdateRegistration changes the property and status of code and reloads r
func (s *Store) UpdateRegistration(ctx context.Context, code string, r *models.Registration) error {
	res := s.db.WithContext(ctx).Model(&models.Registration{}).Where("cod_matricula = ?", code).Updates(map[string]interface{}{
		"id_predio": r.PropertyID,
		"estado":    r.Status,
	})
	if res.Error != nil {
		return writeError(store.TableRegistrations, "matricula", res.Error)
	}
	if res.RowsAffected == 0 {
		return errors.NewNotFoundError("matricula")
	}
	fresh, err := s.GetRegistration(ctx, code)
	if err != nil {
		return err
	}
	*r = *fresh
	return nil
}

func (s *Store) DeleteRegistration(ctx context.Context, code string) error {
	res := s.db.WithContext(ctx).Where("cod_matricula = ?", code).Delete(&models.Registration{})
	if res.Error != nil {
		return writeError(store.TableRegistrations, "matricula", res.Error)
	}
	if res.RowsAffected == 0 {
		return errors.NewNotFoundError("matricula")
	}
	return nil
}
