// Package store defines access to the five entity collections held by the backend.
//
// List methods return full snapshots in the backend's natural order (newest first).
// Remote failures are returned as *errors.FetchError; a missing single record is
// *errors.NotFoundError.
package store

import (
	"context"

	"github.com/aethra/acueducto/internal/models"
)

// Table names as exposed by the backend
const (
	TableUsers         = "usuarios"
	TableProperties    = "predios"
	TableRegistrations = "matriculas"
	TableInvoices      = "facturas"
	TableRequests      = "solicitudes"
)

// Reader fetches whole collections. It is all the enrichment pipeline needs.
type Reader interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	ListProperties(ctx context.Context) ([]models.Property, error)
	ListRegistrations(ctx context.Context) ([]models.Registration, error)
	ListInvoices(ctx context.Context) ([]models.Invoice, error)
	ListRequests(ctx context.Context) ([]models.Request, error)
}

// Store adds single-table lookups, equality helpers and writes
type Store interface {
	Reader

	GetUser(ctx context.Context, cc string) (*models.User, error)
	GetProperty(ctx context.Context, id int64) (*models.Property, error)
	GetRegistration(ctx context.Context, code string) (*models.Registration, error)
	GetInvoice(ctx context.Context, id int64) (*models.Invoice, error)
	GetRequest(ctx context.Context, id int64) (*models.Request, error)

	// ListPropertiesByOwner returns the predios whose propietario_cc is cc
	ListPropertiesByOwner(ctx context.Context, cc string) ([]models.Property, error)
	// ListInvoicesByRegistration is ordered by fecha_creacion desc
	ListInvoicesByRegistration(ctx context.Context, code string) ([]models.Invoice, error)
	// ListInvoicesByStatus is ordered by fecha_vencimiento asc
	ListInvoicesByStatus(ctx context.Context, status models.InvoiceStatus) ([]models.Invoice, error)
	// ListRequestsByRegistration is ordered by created_at desc
	ListRequestsByRegistration(ctx context.Context, code string) ([]models.Request, error)
	// ListRequestsByStatus is ordered from Urgente to Baja
	ListRequestsByStatus(ctx context.Context, status models.RequestStatus) ([]models.Request, error)
	// ListRequestsByPriority is ordered by created_at desc
	ListRequestsByPriority(ctx context.Context, p models.Priority) ([]models.Request, error)

	CreateUser(ctx context.Context, u *models.User) error
	UpdateUser(ctx context.Context, cc string, u *models.User) error
	DeleteUser(ctx context.Context, cc string) error

	CreateRegistration(ctx context.Context, r *models.Registration) error
	UpdateRegistration(ctx context.Context, code string, r *models.Registration) error
	DeleteRegistration(ctx context.Context, code string) error
}
