package engine

import (
	"time"

	"github.com/aethra/acueducto/internal/logging"
	"github.com/aethra/acueducto/internal/models"
	"github.com/sirupsen/logrus"
)

// =============================================================================
// LOOKUPS
// =============================================================================

// Lookup maps a key to a record of an auxiliary collection
type Lookup[K comparable, V any] map[K]V

// IndexBy builds a Lookup from items. When two items share a key the later one wins.
func IndexBy[K comparable, V any](items []V, key func(V) K) Lookup[K, V] {
	l := make(Lookup[K, V], len(items))
	for _, item := range items {
		l[key(item)] = item
	}
	return l
}

// Find returns a copy of the record stored under k, or nil
func (l Lookup[K, V]) Find(k K) *V {
	v, ok := l[k]
	if !ok {
		return nil
	}
	return &v
}

// chain resolves registration -> property -> user. Every hop may miss; a miss
// short-circuits the rest of the chain.
type chain struct {
	registrations Lookup[string, models.Registration]
	properties    Lookup[int64, models.Property]
	users         Lookup[string, models.User]
}

func newChain(regs []models.Registration, props []models.Property, users []models.User) chain {
	return chain{
		registrations: IndexBy(regs, func(r models.Registration) string { return r.Code }),
		properties:    IndexBy(props, func(p models.Property) int64 { return p.ID }),
		users:         IndexBy(users, func(u models.User) string { return u.CC }),
	}
}

func (c chain) owner(cc string, from string) *models.User {
	u := c.users.Find(cc)
	if u == nil {
		traceMiss(from, "usuario", cc)
	}
	return u
}

func (c chain) property(id int64, from string) (*models.Property, *models.User) {
	p := c.properties.Find(id)
	if p == nil {
		traceMiss(from, "predio", id)
		return nil, nil
	}
	return p, c.owner(p.OwnerCC, "predio")
}

func (c chain) registration(code string, from string) (*models.Registration, *models.Property, *models.User) {
	r := c.registrations.Find(code)
	if r == nil {
		traceMiss(from, "matricula", code)
		return nil, nil, nil
	}
	p, u := c.property(r.PropertyID, "matricula")
	return r, p, u
}

func traceMiss(from, to string, key interface{}) {
	log := logging.Get()
	if !log.IsLevelEnabled(logrus.TraceLevel) {
		return
	}
	log.WithFields(logrus.Fields{
		"from": from,
		"to":   to,
		"key":  key,
	}).Trace("enrich: unresolved reference")
}

func fullName(u *models.User) string {
	if u == nil {
		return ""
	}
	return u.FullName()
}

// =============================================================================
// ENRICHED ROWS
// =============================================================================

// UserRow adds the computed full name to a user
type UserRow struct {
	models.User
	NombreCompleto string `json:"nombre_completo"`
}

// PropertyRow is a predio joined with its owner
type PropertyRow struct {
	models.Property
	PropietarioNombre string       `json:"propietario_nombre"`
	Propietario       *models.User `json:"propietario"`
}

// RegistrationRow is a matrícula joined through its predio to the owner
type RegistrationRow struct {
	models.Registration
	Direccion         string           `json:"direccion"`
	PropietarioCC     string           `json:"propietario_cc"`
	PropietarioNombre string           `json:"propietario_nombre"`
	TipoPredio        string           `json:"tipo_predio"`
	Predio            *models.Property `json:"predio"`
	Usuario           *models.User     `json:"usuario"`
}

// InvoiceRow is a factura joined through its matrícula with arrears computed
type InvoiceRow struct {
	models.Invoice
	Arrears
	Cedula      string               `json:"cedula"`
	Propietario string               `json:"propietario"`
	Direccion   string               `json:"direccion"`
	Telefono    string               `json:"telefono"`
	Correo      string               `json:"correo"`
	Matricula   *models.Registration `json:"matricula"`
	Predio      *models.Property     `json:"predio"`
	Usuario     *models.User         `json:"usuario"`
}

// RequestRow is a solicitud joined through its matrícula
type RequestRow struct {
	models.Request
	Direccion         string               `json:"direccion"`
	PropietarioNombre string               `json:"propietario_nombre"`
	PropietarioCC     string               `json:"propietario_cc"`
	Matricula         *models.Registration `json:"matricula"`
	Predio            *models.Property     `json:"predio"`
	Usuario           *models.User         `json:"usuario"`
}

// =============================================================================
// ENRICHERS
// =============================================================================

// EnrichUsers derives nombre_completo
func EnrichUsers(users []models.User) []UserRow {
	rows := make([]UserRow, 0, len(users))
	for _, u := range users {
		rows = append(rows, UserRow{User: u, NombreCompleto: u.FullName()})
	}
	return rows
}

// EnrichProperties attaches each predio's owner
func EnrichProperties(props []models.Property, users []models.User) []PropertyRow {
	c := chain{users: IndexBy(users, func(u models.User) string { return u.CC })}
	rows := make([]PropertyRow, 0, len(props))
	for _, p := range props {
		owner := c.owner(p.OwnerCC, "predio")
		rows = append(rows, PropertyRow{
			Property:          p,
			PropietarioNombre: fullName(owner),
			Propietario:       owner,
		})
	}
	return rows
}

// EnrichRegistrations resolves each matrícula's predio and owner
func EnrichRegistrations(regs []models.Registration, props []models.Property, users []models.User) []RegistrationRow {
	c := newChain(nil, props, users)
	rows := make([]RegistrationRow, 0, len(regs))
	for _, r := range regs {
		row := RegistrationRow{Registration: r}
		p, u := c.property(r.PropertyID, "matricula")
		if p != nil {
			row.Direccion = p.Address
			row.PropietarioCC = p.OwnerCC
			row.TipoPredio = string(p.Type)
			row.Predio = p
		}
		row.PropietarioNombre = fullName(u)
		row.Usuario = u
		rows = append(rows, row)
	}
	return rows
}

// EnrichInvoices resolves each factura through matrícula, predio and owner, and
// computes arrears as of now.
func EnrichInvoices(invs []models.Invoice, regs []models.Registration, props []models.Property, users []models.User, now time.Time) []InvoiceRow {
	c := newChain(regs, props, users)
	rows := make([]InvoiceRow, 0, len(invs))
	for _, inv := range invs {
		row := InvoiceRow{
			Invoice: inv,
			Arrears: ComputeArrears(inv.DueOn, inv.Amount, now),
		}
		r, p, u := c.registration(inv.RegistrationCode, "factura")
		row.Matricula = r
		row.Predio = p
		row.Usuario = u
		if p != nil {
			row.Direccion = p.Address
			row.Cedula = p.OwnerCC
		}
		if u != nil {
			row.Cedula = u.CC
			row.Propietario = u.FullName()
			row.Telefono = u.Phone
			row.Correo = u.Email
		}
		rows = append(rows, row)
	}
	return rows
}

// EnrichRequests resolves each solicitud through matrícula, predio and owner
func EnrichRequests(reqs []models.Request, regs []models.Registration, props []models.Property, users []models.User) []RequestRow {
	c := newChain(regs, props, users)
	rows := make([]RequestRow, 0, len(reqs))
	for _, req := range reqs {
		row := RequestRow{Request: req}
		r, p, u := c.registration(req.RegistrationCode, "solicitud")
		row.Matricula = r
		row.Predio = p
		row.Usuario = u
		if p != nil {
			row.Direccion = p.Address
			row.PropietarioCC = p.OwnerCC
		}
		row.PropietarioNombre = fullName(u)
		rows = append(rows, row)
	}
	return rows
}
