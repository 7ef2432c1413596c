package api

import (
	"net/http"
	"time"

	"github.com/aethra/acueducto/internal/errors"
	"github.com/aethra/acueducto/internal/models"
	"github.com/gin-gonic/gin"
)

// bindEntity decodes the JSON body into v and validates it
func bindEntity(c *gin.Context, v interface{}) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		respondError(c, errors.NewBadRequestError("invalid request body: "+err.Error()))
		return false
	}
	if err := models.Validate(v); err != nil {
		respondError(c, err)
		return false
	}
	return true
}

// =============================================================================
// USUARIOS
// =============================================================================

// GetUser returns one user
// GET /api/v1/usuarios/:cc
func (h *Handler) GetUser(c *gin.Context) {
	u, err := h.store.GetUser(c.Request.Context(), c.Param("cc"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// CreateUser registers a user; fecha defaults to now
// POST /api/v1/usuarios
func (h *Handler) CreateUser(c *gin.Context) {
	var u models.User
	if !bindEntity(c, &u) {
		return
	}
	if !u.RegisteredAt.Valid() {
		u.RegisteredAt = models.NewTimestamp(time.Now().UTC())
	}
	if err := h.store.CreateUser(c.Request.Context(), &u); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, u)
}

// UpdateUser replaces the contact fields of a user
// PUT /api/v1/usuarios/:cc
func (h *Handler) UpdateUser(c *gin.Context) {
	var u models.User
	if err := c.ShouldBindJSON(&u); err != nil {
		respondError(c, errors.NewBadRequestError("invalid request body: "+err.Error()))
		return
	}
	u.CC = c.Param("cc")
	if err := models.Validate(&u); err != nil {
		respondError(c, err)
		return
	}
	if err := h.store.UpdateUser(c.Request.Context(), u.CC, &u); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// DeleteUser removes a user
// DELETE /api/v1/usuarios/:cc
func (h *Handler) DeleteUser(c *gin.Context) {
	if err := h.store.DeleteUser(c.Request.Context(), c.Param("cc")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted successfully"})
}

// ListUserProperties returns the predios owned by a user
// GET /api/v1/usuarios/:cc/predios
func (h *Handler) ListUserProperties(c *gin.Context) {
	props, err := h.store.ListPropertiesByOwner(c.Request.Context(), c.Param("cc"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": props, "total": len(props)})
}

// =============================================================================
// MATRICULAS
// =============================================================================

// GetRegistration returns one registration
// GET /api/v1/matriculas/:codigo
func (h *Handler) GetRegistration(c *gin.Context) {
	r, err := h.store.GetRegistration(c.Request.Context(), c.Param("codigo"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// propertyExists turns a missing predio into a validation error on id_predio
func (h *Handler) propertyExists(c *gin.Context, id int64) bool {
	if _, err := h.store.GetProperty(c.Request.Context(), id); err != nil {
		if errors.IsNotFound(err) {
			err = errors.NewValidationError("id_predio", "predio does not exist")
		}
		respondError(c, err)
		return false
	}
	return true
}

// CreateRegistration opens a registration on an existing property
// POST /api/v1/matriculas
func (h *Handler) CreateRegistration(c *gin.Context) {
	var r models.Registration
	if !bindEntity(c, &r) {
		return
	}
	if !h.propertyExists(c, r.PropertyID) {
		return
	}
	if !r.Date.Valid() {
		r.Date = models.NewTimestamp(time.Now().UTC())
	}
	if err := h.store.CreateRegistration(c.Request.Context(), &r); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

// UpdateRegistration changes the property or status of a registration
// PUT /api/v1/matriculas/:codigo
func (h *Handler) UpdateRegistration(c *gin.Context) {
	var r models.Registration
	if err := c.ShouldBindJSON(&r); err != nil {
		respondError(c, errors.NewBadRequestError("invalid request body: "+err.Error()))
		return
	}
	r.Code = c.Param("codigo")
	if err := models.Validate(&r); err != nil {
		respondError(c, err)
		return
	}
	if !h.propertyExists(c, r.PropertyID) {
		return
	}
	if err := h.store.UpdateRegistration(c.Request.Context(), r.Code, &r); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// DeleteRegistration removes a registration
// DELETE /api/v1/matriculas/:codigo
func (h *Handler) DeleteRegistration(c *gin.Context) {
	if err := h.store.DeleteRegistration(c.Request.Context(), c.Param("codigo")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted successfully"})
}

// ListRegistrationInvoices returns the invoices of a registration, newest first
// GET /api/v1/matriculas/:codigo/facturas
func (h *Handler) ListRegistrationInvoices(c *gin.Context) {
	invs, err := h.store.ListInvoicesByRegistration(c.Request.Context(), c.Param("codigo"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": invs, "total": len(invs)})
}

// ListRegistrationRequests returns the maintenance requests of a registration
// GET /api/v1/matriculas/:codigo/solicitudes
func (h *Handler) ListRegistrationRequests(c *gin.Context) {
	reqs, err := h.store.ListRequestsByRegistration(c.Request.Context(), c.Param("codigo"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": reqs, "total": len(reqs)})
}

// =============================================================================
// PREDIOS, FACTURAS, SOLICITUDES
// =============================================================================

// GetProperty returns one property
// GET /api/v1/predios/:id
func (h *Handler) GetProperty(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	p, err := h.store.GetProperty(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// GetInvoice returns one invoice
// GET /api/v1/facturas/:id
func (h *Handler) GetInvoice(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	inv, err := h.store.GetInvoice(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, inv)
}

// ListInvoicesByStatus returns invoices in one estado, earliest due first
// GET /api/v1/facturas?estado=
func (h *Handler) ListInvoicesByStatus(c *gin.Context) {
	status := models.InvoiceStatus(c.Query("estado"))
	switch status {
	case models.InvoicePending, models.InvoicePaid, models.InvoiceOverdue:
	default:
		respondError(c, errors.NewValidationError("estado", "estado must be Pendiente, Pagada or Vencida"))
		return
	}
	invs, err := h.store.ListInvoicesByStatus(c.Request.Context(), status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": invs, "total": len(invs)})
}

// GetRequest returns one maintenance request
// GET /api/v1/solicitudes/:id
func (h *Handler) GetRequest(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	r, err := h.store.GetRequest(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// ListRequests filters maintenance requests by estado (ranked by priority) or
// by prioridad (newest first)
// GET /api/v1/solicitudes?estado=|prioridad=
func (h *Handler) ListRequests(c *gin.Context) {
	ctx := c.Request.Context()

	var (
		reqs []models.Request
		err  error
	)
	switch {
	case c.Query("estado") != "":
		status := models.RequestStatus(c.Query("estado"))
		switch status {
		case models.RequestPending, models.RequestInProgress, models.RequestCompleted:
		default:
			respondError(c, errors.NewValidationError("estado", "estado must be Pendiente, En Proceso or Completado"))
			return
		}
		reqs, err = h.store.ListRequestsByStatus(ctx, status)
	case c.Query("prioridad") != "":
		p := models.Priority(c.Query("prioridad"))
		if p.Rank() > models.PriorityLow.Rank() {
			respondError(c, errors.NewValidationError("prioridad", "prioridad must be Urgente, Alta, Media or Baja"))
			return
		}
		reqs, err = h.store.ListRequestsByPriority(ctx, p)
	default:
		respondError(c, errors.NewBadRequestError("estado or prioridad is required"))
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": reqs, "total": len(reqs)})
}
