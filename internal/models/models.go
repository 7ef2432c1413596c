// Package models contains the acueducto entities as stored by the backend.
// Column names follow the hosted schema, which is why tags are Spanish.
package models

import (
	"sort"
	"strings"
)

// =============================================================================
// ENUMS
// =============================================================================

// PropertyType classifies a predio
type PropertyType string

const (
	PropertyResidential PropertyType = "Residencial"
	PropertyCommercial  PropertyType = "Comercial"
	PropertyIndustrial  PropertyType = "Industrial"
)

// RegistrationStatus is the lifecycle state of a matrícula
type RegistrationStatus string

const (
	RegistrationActive    RegistrationStatus = "Activa"
	RegistrationSuspended RegistrationStatus = "Suspendida"
	RegistrationCancelled RegistrationStatus = "Cancelada"
)

// InvoiceStatus is the payment state of a factura
type InvoiceStatus string

const (
	InvoicePending InvoiceStatus = "Pendiente"
	InvoicePaid    InvoiceStatus = "Pagada"
	InvoiceOverdue InvoiceStatus = "Vencida"
)

// RequestStatus is the progress of a maintenance solicitud
type RequestStatus string

const (
	RequestPending    RequestStatus = "Pendiente"
	RequestInProgress RequestStatus = "En Proceso"
	RequestCompleted  RequestStatus = "Completado"
)

// Priority of a maintenance request
type Priority string

const (
	PriorityUrgent Priority = "Urgente"
	PriorityHigh   Priority = "Alta"
	PriorityMedium Priority = "Media"
	PriorityLow    Priority = "Baja"
)

// Rank orders priorities from most to least urgent. Unknown values rank last.
func (p Priority) Rank() int {
	switch p {
	case PriorityUrgent:
		return 0
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 3
	}
	return 4
}

// =============================================================================
// ENTITIES
// =============================================================================

// User is a registered customer, keyed by national id (cédula)
type User struct {
	CC           string    `json:"cc" gorm:"column:cc;primaryKey;size:20" validate:"required,max=20"`
	FirstName    string    `json:"nombre" gorm:"column:nombre;size:100" validate:"required"`
	LastName     string    `json:"apellido" gorm:"column:apellido;size:100"`
	Phone        string    `json:"telefono" gorm:"column:telefono;size:30"`
	Email        string    `json:"correo" gorm:"column:correo;size:255" validate:"omitempty,email"`
	RegisteredAt Timestamp `json:"fecha" gorm:"column:fecha"`
}

func (User) TableName() string { return "usuarios" }

// FullName joins nombre and apellido, trimming when either is empty
func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Property is a predio owned by a user
type Property struct {
	ID           int64        `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	Address      string       `json:"direccion" gorm:"column:direccion;size:255" validate:"required"`
	OwnerCC      string       `json:"propietario_cc" gorm:"column:propietario_cc;size:20;index"`
	Type         PropertyType `json:"tipo" gorm:"column:tipo;size:20" validate:"omitempty,oneof=Residencial Comercial Industrial"`
	RegisteredAt Timestamp    `json:"fecha_registro" gorm:"column:fecha_registro"`
}

func (Property) TableName() string { return "predios" }

// Registration (matrícula) links a property to its billing account
type Registration struct {
	Code       string             `json:"cod_matricula" gorm:"column:cod_matricula;primaryKey;size:50" validate:"required,max=50"`
	PropertyID int64              `json:"id_predio" gorm:"column:id_predio;index" validate:"required,gt=0"`
	Status     RegistrationStatus `json:"estado" gorm:"column:estado;size:20" validate:"required,oneof=Activa Suspendida Cancelada"`
	Date       Timestamp          `json:"fecha" gorm:"column:fecha"`
}

func (Registration) TableName() string { return "matriculas" }

// Invoice (factura) is a monthly charge on a registration
type Invoice struct {
	ID               int64         `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	RegistrationCode string        `json:"cod_matricula" gorm:"column:cod_matricula;size:50;index"`
	Amount           Amount        `json:"valor" gorm:"column:valor"`
	IssuedOn         Timestamp     `json:"fecha_creacion" gorm:"column:fecha_creacion"`
	DueOn            Timestamp     `json:"fecha_vencimiento" gorm:"column:fecha_vencimiento"`
	Status           InvoiceStatus `json:"estado" gorm:"column:estado;size:20;index"`
}

func (Invoice) TableName() string { return "facturas" }

// Request (solicitud) is a maintenance ticket on a registration
type Request struct {
	ID               int64         `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	RegistrationCode string        `json:"cod_matricula" gorm:"column:cod_matricula;size:50;index"`
	Status           RequestStatus `json:"estado" gorm:"column:estado;size:20;index"`
	Priority         Priority      `json:"prioridad" gorm:"column:prioridad;size:20"`
	Notes            string        `json:"observaciones" gorm:"column:observaciones;type:text"`
	OpenedAt         Timestamp     `json:"created_at" gorm:"column:created_at"`
}

func (Request) TableName() string { return "solicitudes" }

// SortByPriority orders requests from Urgente to Baja, keeping the incoming order for ties
func SortByPriority(reqs []Request) {
	sort.SliceStable(reqs, func(i, j int) bool {
		return reqs[i].Priority.Rank() < reqs[j].Priority.Rank()
	})
}

// All returns every entity for AutoMigrate
func All() []interface{} {
	return []interface{}{&User{}, &Property{}, &Registration{}, &Invoice{}, &Request{}}
}
