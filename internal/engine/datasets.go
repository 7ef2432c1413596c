package engine

import (
	"github.com/aethra/acueducto/internal/models"
)

// Kind names one of the five datasets
type Kind string

const (
	KindUsers         Kind = "usuarios"
	KindProperties    Kind = "predios"
	KindRegistrations Kind = "matriculas"
	KindInvoices      Kind = "facturas"
	KindRequests      Kind = "solicitudes"
)

// Kinds lists the datasets in menu order
func Kinds() []Kind {
	return []Kind{KindUsers, KindProperties, KindRegistrations, KindInvoices, KindRequests}
}

// ParseKind validates a dataset name
func ParseKind(s string) (Kind, bool) {
	for _, k := range Kinds() {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// Column describes one table column
type Column struct {
	Key      string      `json:"key"`
	Label    string      `json:"label"`
	Type     DisplayType `json:"type"`
	Sortable bool        `json:"sortable"`
}

// Definition is the static description of a dataset
type Definition struct {
	Kind    Kind           `json:"kind"`
	Title   string         `json:"title"`
	Columns []Column       `json:"columns"`
	Filters []FilterOption `json:"filters"`
}

// Describe returns the definition of k
func Describe(k Kind) Definition {
	d := Definition{Kind: k, Columns: columns[k], Title: titles[k]}
	switch k {
	case KindUsers:
		d.Filters = userSchema.FilterOptions()
	case KindProperties:
		d.Filters = propertySchema.FilterOptions()
	case KindRegistrations:
		d.Filters = registrationSchema.FilterOptions()
	case KindInvoices:
		d.Filters = invoiceSchema.FilterOptions()
	case KindRequests:
		d.Filters = requestSchema.FilterOptions()
	default:
		d.Filters = Schema[struct{}]{}.FilterOptions()
	}
	return d
}

var titles = map[Kind]string{
	KindUsers:         "Usuarios Registrados",
	KindProperties:    "Predios Registrados",
	KindRegistrations: "Matrículas Registradas",
	KindInvoices:      "Facturas del Sistema",
	KindRequests:      "Solicitudes de Mantenimiento",
}

var columns = map[Kind][]Column{
	KindUsers: {
		{Key: "cc", Label: "Cédula", Type: DisplayPlain, Sortable: true},
		{Key: "nombre_completo", Label: "Nombre Completo", Type: DisplayComputed, Sortable: true},
		{Key: "telefono", Label: "Teléfono", Type: DisplayPhone},
		{Key: "correo", Label: "Correo", Type: DisplayPlain, Sortable: true},
		{Key: "fecha", Label: "Fecha Registro", Type: DisplayDate, Sortable: true},
	},
	KindProperties: {
		{Key: "id", Label: "ID", Type: DisplayPlain, Sortable: true},
		{Key: "direccion", Label: "Dirección", Type: DisplayPlain, Sortable: true},
		{Key: "propietario_nombre", Label: "Propietario", Type: DisplayPlain, Sortable: true},
		{Key: "telefono", Label: "Teléfono", Type: DisplayPhone},
		{Key: "tipo", Label: "Tipo", Type: DisplayBadge, Sortable: true},
		{Key: "fecha_registro", Label: "Fecha Registro", Type: DisplayDate, Sortable: true},
	},
	KindRegistrations: {
		{Key: "cod_matricula", Label: "Código", Type: DisplayPlain, Sortable: true},
		{Key: "direccion", Label: "Dirección", Type: DisplayPlain, Sortable: true},
		{Key: "propietario_nombre", Label: "Propietario", Type: DisplayPlain, Sortable: true},
		{Key: "tipo_predio", Label: "Tipo", Type: DisplayPlain, Sortable: true},
		{Key: "estado", Label: "Estado", Type: DisplayBadge, Sortable: true},
		{Key: "fecha", Label: "Fecha", Type: DisplayDate, Sortable: true},
	},
	KindInvoices: {
		{Key: "id", Label: "ID", Type: DisplayPlain, Sortable: true},
		{Key: "cedula", Label: "Cédula", Type: DisplayPlain, Sortable: true},
		{Key: "propietario", Label: "Propietario", Type: DisplayPlain, Sortable: true},
		{Key: "direccion", Label: "Dirección", Type: DisplayPlain, Sortable: true},
		{Key: "cod_matricula", Label: "Matrícula", Type: DisplayPlain, Sortable: true},
		{Key: "fecha_creacion", Label: "Fecha Creación", Type: DisplayDate, Sortable: true},
		{Key: "fecha_vencimiento", Label: "Vencimiento", Type: DisplayDate, Sortable: true},
		{Key: "valor_mensual", Label: "Valor Mensual", Type: DisplayCurrency, Sortable: true},
		{Key: "meses_atrasados", Label: "Meses Atrasados", Type: DisplayArrears, Sortable: true},
		{Key: "valor_total", Label: "Total a Pagar", Type: DisplayCurrency, Sortable: true},
		{Key: "estado", Label: "Estado", Type: DisplayBadge, Sortable: true},
	},
	KindRequests: {
		{Key: "id", Label: "ID", Type: DisplayPlain, Sortable: true},
		{Key: "cod_matricula", Label: "Matrícula", Type: DisplayPlain, Sortable: true},
		{Key: "direccion", Label: "Dirección", Type: DisplayPlain, Sortable: true},
		{Key: "propietario_nombre", Label: "Propietario", Type: DisplayPlain, Sortable: true},
		{Key: "estado", Label: "Estado", Type: DisplayBadge, Sortable: true},
		{Key: "prioridad", Label: "Prioridad", Type: DisplayBadge, Sortable: true},
		{Key: "observaciones", Label: "Observaciones", Type: DisplayPlain},
	},
}

// =============================================================================
// SCHEMAS
// =============================================================================

var userSchema = Schema[UserRow]{
	Fields: map[string]Field[UserRow]{
		"cc":              func(r UserRow) Value { return Text(r.CC) },
		"nombre":          func(r UserRow) Value { return Text(r.FirstName) },
		"apellido":        func(r UserRow) Value { return Text(r.LastName) },
		"nombre_completo": func(r UserRow) Value { return Text(r.NombreCompleto) },
		"telefono":        func(r UserRow) Value { return Text(r.Phone) },
		"correo":          func(r UserRow) Value { return Text(r.Email) },
		"fecha":           func(r UserRow) Value { return Time(r.RegisteredAt) },
	},
	Search: []string{"nombre", "apellido", "cc", "correo", "telefono"},
}

func ownerField[T any](owner func(T) *models.User, pick func(models.User) string) Field[T] {
	return func(r T) Value {
		u := owner(r)
		if u == nil {
			return Null
		}
		return Text(pick(*u))
	}
}

var propertySchema = Schema[PropertyRow]{
	Fields: map[string]Field[PropertyRow]{
		"id":                 func(r PropertyRow) Value { return Int(r.ID) },
		"direccion":          func(r PropertyRow) Value { return Text(r.Address) },
		"propietario_cc":     func(r PropertyRow) Value { return Text(r.OwnerCC) },
		"propietario_nombre": func(r PropertyRow) Value { return Text(r.PropietarioNombre) },
		"propietario":        func(r PropertyRow) Value { return Text(r.PropietarioNombre) },
		"telefono":           ownerField(func(r PropertyRow) *models.User { return r.Propietario }, func(u models.User) string { return u.Phone }),
		"correo":             ownerField(func(r PropertyRow) *models.User { return r.Propietario }, func(u models.User) string { return u.Email }),
		"tipo":               func(r PropertyRow) Value { return Text(string(r.Type)) },
		"fecha_registro":     func(r PropertyRow) Value { return Time(r.RegisteredAt) },
	},
	Search: []string{"direccion", "propietario_cc", "propietario_nombre", "telefono", "correo", "tipo"},
}

var registrationSchema = Schema[RegistrationRow]{
	Fields: map[string]Field[RegistrationRow]{
		"cod_matricula":      func(r RegistrationRow) Value { return Text(r.Code) },
		"id_predio":          func(r RegistrationRow) Value { return Int(r.PropertyID) },
		"direccion":          func(r RegistrationRow) Value { return Text(r.Direccion) },
		"propietario_cc":     func(r RegistrationRow) Value { return Text(r.PropietarioCC) },
		"propietario_nombre": func(r RegistrationRow) Value { return Text(r.PropietarioNombre) },
		"propietario":        func(r RegistrationRow) Value { return Text(r.PropietarioNombre) },
		"tipo_predio":        func(r RegistrationRow) Value { return Text(r.TipoPredio) },
		"estado":             func(r RegistrationRow) Value { return Text(string(r.Status)) },
		"fecha":              func(r RegistrationRow) Value { return Time(r.Date) },
	},
	Search: []string{"cod_matricula", "direccion", "propietario_nombre", "tipo_predio", "estado"},
	Filters: []FilterOption{
		{Value: "activas", Label: "Activas", Estado: string(models.RegistrationActive)},
		{Value: "suspendidas", Label: "Suspendidas", Estado: string(models.RegistrationSuspended)},
		{Value: "canceladas", Label: "Canceladas", Estado: string(models.RegistrationCancelled)},
	},
	Status: func(r RegistrationRow) string { return string(r.Status) },
}

var invoiceSchema = Schema[InvoiceRow]{
	Fields: map[string]Field[InvoiceRow]{
		"id":                    func(r InvoiceRow) Value { return Int(r.ID) },
		"cod_matricula":         func(r InvoiceRow) Value { return Text(r.RegistrationCode) },
		"cedula":                func(r InvoiceRow) Value { return Text(r.Cedula) },
		"propietario":           func(r InvoiceRow) Value { return Text(r.Propietario) },
		"propietario_nombre":    func(r InvoiceRow) Value { return Text(r.Propietario) },
		"direccion":             func(r InvoiceRow) Value { return Text(r.Direccion) },
		"telefono":              func(r InvoiceRow) Value { return Text(r.Telefono) },
		"correo":                func(r InvoiceRow) Value { return Text(r.Correo) },
		"valor":                 func(r InvoiceRow) Value { return Number(r.ValorMensual) },
		"fecha_creacion":        func(r InvoiceRow) Value { return Time(r.IssuedOn) },
		"fecha_vencimiento":     func(r InvoiceRow) Value { return Time(r.DueOn) },
		"estado":                func(r InvoiceRow) Value { return Text(string(r.Status)) },
		"dias_vencido":          func(r InvoiceRow) Value { return Int(int64(r.DiasVencido)) },
		"meses_atrasados":       func(r InvoiceRow) Value { return Int(int64(r.MesesAtrasados)) },
		"valor_mensual":         func(r InvoiceRow) Value { return Number(r.ValorMensual) },
		"valor_meses_atrasados": func(r InvoiceRow) Value { return Number(r.ValorMesesAtrasados) },
		"valor_total":           func(r InvoiceRow) Value { return Number(r.ValorTotal) },
	},
	Search: []string{"cedula", "propietario", "direccion", "cod_matricula", "estado"},
	Filters: []FilterOption{
		{Value: "pendientes", Label: "Pendientes", Estado: string(models.InvoicePending)},
		{Value: "vencidas", Label: "Vencidas", Estado: string(models.InvoiceOverdue)},
	},
	Status: func(r InvoiceRow) string { return string(r.Status) },
}

var requestSchema = Schema[RequestRow]{
	Fields: map[string]Field[RequestRow]{
		"id":                 func(r RequestRow) Value { return Int(r.ID) },
		"cod_matricula":      func(r RequestRow) Value { return Text(r.RegistrationCode) },
		"direccion":          func(r RequestRow) Value { return Text(r.Direccion) },
		"propietario_nombre": func(r RequestRow) Value { return Text(r.PropietarioNombre) },
		"propietario":        func(r RequestRow) Value { return Text(r.PropietarioNombre) },
		"propietario_cc":     func(r RequestRow) Value { return Text(r.PropietarioCC) },
		"estado":             func(r RequestRow) Value { return Text(string(r.Status)) },
		"prioridad":          func(r RequestRow) Value { return Text(string(r.Priority)) },
		"observaciones":      func(r RequestRow) Value { return Text(r.Notes) },
		"created_at":         func(r RequestRow) Value { return Time(r.OpenedAt) },
	},
	Search: []string{"id", "cod_matricula", "direccion", "propietario_nombre", "estado", "prioridad"},
	Filters: []FilterOption{
		{Value: "pendientes", Label: "Pendientes", Estado: string(models.RequestPending)},
	},
	Status: func(r RequestRow) string { return string(r.Status) },
}

// =============================================================================
// DATASETS
// =============================================================================

// Record is one displayed row: the enriched record plus its formatted cells
type Record struct {
	Data  interface{} `json:"data"`
	Cells []Cell      `json:"cells"`
}

// View is everything the presentation layer needs for one render
type View struct {
	Definition
	Query      ViewQuery `json:"query"`
	Rows       []Record  `json:"rows"`
	TotalRows  int       `json:"total_rows"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	TotalPages int       `json:"total_pages"`
	Error      bool      `json:"error"`
	Message    string    `json:"message,omitempty"`
}

// ViewQuery echoes the inputs a view was produced from
type ViewQuery struct {
	Search string `json:"search"`
	Filter string `json:"filter"`
	Sort   Sort   `json:"sort"`
}

// Dataset is an enriched snapshot of one kind, ready to be queried
type Dataset interface {
	Kind() Kind
	Len() int
	View(q Query, page, size int) View
}

type table[T any] struct {
	kind   Kind
	rows   []T
	schema Schema[T]
	format Formatter
}

func (t *table[T]) Kind() Kind { return t.kind }

func (t *table[T]) Len() int { return len(t.rows) }

func (t *table[T]) View(q Query, page, size int) View {
	p := Paginate(Apply(t.rows, t.schema, q), page, size)
	def := Describe(t.kind)

	records := make([]Record, 0, len(p.Rows))
	for _, row := range p.Rows {
		cells := make([]Cell, 0, len(def.Columns))
		for _, col := range def.Columns {
			cells = append(cells, t.format.Cell(col, t.schema.Resolve(row, col.Key)))
		}
		records = append(records, Record{Data: row, Cells: cells})
	}

	filter := q.Filter
	if filter == "" {
		filter = FilterAll
	}
	return View{
		Definition: def,
		Query:      ViewQuery{Search: q.Search, Filter: filter, Sort: q.Sort},
		Rows:       records,
		TotalRows:  p.TotalRows,
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalPages: p.TotalPages,
	}
}

// EmptyView is the view of a dataset that failed to load
func EmptyView(k Kind, q Query, size int, err error) View {
	v := (&table[struct{}]{kind: k}).View(q, 1, size)
	if err != nil {
		v.Error = true
		v.Message = err.Error()
	}
	return v
}

// NewUsersDataset wraps enriched users
func NewUsersDataset(rows []UserRow, f Formatter) Dataset {
	return &table[UserRow]{kind: KindUsers, rows: rows, schema: userSchema, format: f}
}

// NewPropertiesDataset wraps enriched properties
func NewPropertiesDataset(rows []PropertyRow, f Formatter) Dataset {
	return &table[PropertyRow]{kind: KindProperties, rows: rows, schema: propertySchema, format: f}
}

// NewRegistrationsDataset wraps enriched registrations
func NewRegistrationsDataset(rows []RegistrationRow, f Formatter) Dataset {
	return &table[RegistrationRow]{kind: KindRegistrations, rows: rows, schema: registrationSchema, format: f}
}

// NewInvoicesDataset wraps enriched invoices
func NewInvoicesDataset(rows []InvoiceRow, f Formatter) Dataset {
	return &table[InvoiceRow]{kind: KindInvoices, rows: rows, schema: invoiceSchema, format: f}
}

// NewRequestsDataset wraps enriched requests
func NewRequestsDataset(rows []RequestRow, f Formatter) Dataset {
	return &table[RequestRow]{kind: KindRequests, rows: rows, schema: requestSchema, format: f}
}
