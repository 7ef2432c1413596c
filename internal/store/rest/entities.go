package rest

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/aethra/acueducto/internal/models"
	"github.com/aethra/acueducto/internal/store"
)

var _ store.Store = (*Client)(nil)

func (c *Client) ListUsers(ctx context.Context) ([]models.User, error) {
	return list[models.User](ctx, c, store.TableUsers, "fecha.desc")
}

func (c *Client) ListProperties(ctx context.Context) ([]models.Property, error) {
	return list[models.Property](ctx, c, store.TableProperties, "fecha_registro.desc")
}

func (c *Client) ListRegistrations(ctx context.Context) ([]models.Registration, error) {
	return list[models.Registration](ctx, c, store.TableRegistrations, "fecha.desc")
}

func (c *Client) ListInvoices(ctx context.Context) ([]models.Invoice, error) {
	return list[models.Invoice](ctx, c, store.TableInvoices, "fecha_creacion.desc")
}

func (c *Client) ListRequests(ctx context.Context) ([]models.Request, error) {
	return list[models.Request](ctx, c, store.TableRequests, "created_at.desc")
}

func (c *Client) GetUser(ctx context.Context, cc string) (*models.User, error) {
	return getOne[models.User](ctx, c, store.TableUsers, "cc", cc, "usuario")
}

func (c *Client) GetProperty(ctx context.Context, id int64) (*models.Property, error) {
	return getOne[models.Property](ctx, c, store.TableProperties, "id", strconv.FormatInt(id, 10), "predio")
}

func (c *Client) GetRegistration(ctx context.Context, code string) (*models.Registration, error) {
	return getOne[models.Registration](ctx, c, store.TableRegistrations, "cod_matricula", code, "matricula")
}

func (c *Client) GetInvoice(ctx context.Context, id int64) (*models.Invoice, error) {
	return getOne[models.Invoice](ctx, c, store.TableInvoices, "id", strconv.FormatInt(id, 10), "factura")
}

func (c *Client) GetRequest(ctx context.Context, id int64) (*models.Request, error) {
	return getOne[models.Request](ctx, c, store.TableRequests, "id", strconv.FormatInt(id, 10), "solicitud")
}

func (c *Client) ListPropertiesByOwner(ctx context.Context, cc string) ([]models.Property, error) {
	return list[models.Property](ctx, c, store.TableProperties, "fecha_registro.desc", "propietario_cc", cc)
}

func (c *Client) ListInvoicesByRegistration(ctx context.Context, code string) ([]models.Invoice, error) {
	return list[models.Invoice](ctx, c, store.TableInvoices, "fecha_creacion.desc", "cod_matricula", code)
}

func (c *Client) ListInvoicesByStatus(ctx context.Context, status models.InvoiceStatus) ([]models.Invoice, error) {
	return list[models.Invoice](ctx, c, store.TableInvoices, "fecha_vencimiento.asc", "estado", string(status))
}

func (c *Client) ListRequestsByRegistration(ctx context.Context, code string) ([]models.Request, error) {
	return list[models.Request](ctx, c, store.TableRequests, "created_at.desc", "cod_matricula", code)
}

// ListRequestsByStatus ranks by priority locally; the column is plain text
// on the backend so server-side ordering would be alphabetical.
func (c *Client) ListRequestsByStatus(ctx context.Context, status models.RequestStatus) ([]models.Request, error) {
	rows, err := list[models.Request](ctx, c, store.TableRequests, "created_at.desc", "estado", string(status))
	if err != nil {
		return nil, err
	}
	models.SortByPriority(rows)
	return rows, nil
}

func (c *Client) ListRequestsByPriority(ctx context.Context, p models.Priority) ([]models.Request, error) {
	return list[models.Request](ctx, c, store.TableRequests, "created_at.desc", "prioridad", string(p))
}

func eq(column, value string) url.Values {
	q := url.Values{}
	q.Set(column, "eq."+value)
	return q
}

func (c *Client) CreateUser(ctx context.Context, u *models.User) error {
	return write(ctx, c, http.MethodPost, store.TableUsers, nil, u, u, "usuario")
}

// UpdateUser changes the contact fields of cc; the key and registration date are kept
func (c *Client) UpdateUser(ctx context.Context, cc string, u *models.User) error {
	patch := map[string]interface{}{
		"nombre":   u.FirstName,
		"apellido": u.LastName,
		"telefono": u.Phone,
		"correo":   u.Email,
	}
	return write(ctx, c, http.MethodPatch, store.TableUsers, eq("cc", cc), patch, u, "usuario")
}

func (c *Client) DeleteUser(ctx context.Context, cc string) error {
	return write[models.User](ctx, c, http.MethodDelete, store.TableUsers, eq("cc", cc), nil, nil, "usuario")
}

func (c *Client) CreateRegistration(ctx context.Context, r *models.Registration) error {
	return write(ctx, c, http.MethodPost, store.TableRegistrations, nil, r, r, "matricula")
}

// UpdateRegistration changes the property and status of code
func (c *Client) UpdateRegistration(ctx context.Context, code string, r *models.Registration) error {
	patch := map[string]interface{}{
		"id_predio": r.PropertyID,
		"estado":    r.Status,
	}
	return write(ctx, c, http.MethodPatch, store.TableRegistrations, eq("cod_matricula", code), patch, r, "matricula")
}

func (c *Client) DeleteRegistration(ctx context.Context, code string) error {
	return write[models.Registration](ctx, c, http.MethodDelete, store.TableRegistrations, eq("cod_matricula", code), nil, nil, "matricula")
}
