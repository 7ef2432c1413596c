// Package api contains the HTTP API of the acueducto dashboard
package api

import (
	"bytes"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/aethra/acueducto/internal/config"
	"github.com/aethra/acueducto/internal/engine"
	"github.com/aethra/acueducto/internal/errors"
	"github.com/aethra/acueducto/internal/export"
	"github.com/aethra/acueducto/internal/logging"
	"github.com/aethra/acueducto/internal/metrics"
	"github.com/aethra/acueducto/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Version is reported by the health check
const Version = "1.0.0"

// Handler contains the dataset and entity handlers
type Handler struct {
	loader    *engine.Loader
	store     store.Store
	dashboard config.DashboardConfig
}

// NewHandler creates a new API handler
func NewHandler(loader *engine.Loader, st store.Store, dashboard config.DashboardConfig) *Handler {
	return &Handler{
		loader:    loader,
		store:     st,
		dashboard: dashboard,
	}
}

// =============================================================================
// MIDDLEWARE
// =============================================================================

const requestIDHeader = "X-Request-ID"

// RequestID tags every request with an id, reusing the caller's when present
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.New().String()
		}
		c.Set("request_id", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// AccessLog writes one logrus line per request
func AccessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := logging.Get().WithFields(logrus.Fields{
			"request_id": c.GetString("request_id"),
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"latency":    time.Since(start).String(),
			"client_ip":  c.ClientIP(),
		})
		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			entry.Error("http request")
		case c.Writer.Status() >= http.StatusBadRequest:
			entry.Warn("http request")
		default:
			entry.Info("http request")
		}
	}
}

// respondError maps err through errors.ToHTTPError
func respondError(c *gin.Context, err error) {
	status, body := errors.ToHTTPError(err)
	if status >= http.StatusInternalServerError {
		logging.LogError("api", c.FullPath(), c.Request.Method+" "+c.Request.URL.Path,
			map[string]interface{}{"request_id": c.GetString("request_id")}, err)
	}
	c.AbortWithStatusJSON(status, body)
}

// =============================================================================
// DATASET ENDPOINTS
// =============================================================================

// ListDatasets returns every dataset definition in menu order
// GET /api/v1/datasets
func (h *Handler) ListDatasets(c *gin.Context) {
	defs := make([]engine.Definition, 0, len(engine.Kinds()))
	for _, k := range engine.Kinds() {
		defs = append(defs, engine.Describe(k))
	}
	c.JSON(http.StatusOK, gin.H{
		"datasets":          defs,
		"default_dataset":   h.dashboard.DefaultDataset,
		"page_sizes":        h.dashboard.PageSizes,
		"default_page_size": h.dashboard.DefaultPageSize,
	})
}

// viewState reads the table state from the query string. Unknown page sizes
// fall back to the configured default.
func (h *Handler) viewState(c *gin.Context, kind engine.Kind) engine.ViewState {
	size := parseIntParam(c.Query("page_size"), h.dashboard.DefaultPageSize)
	if !h.dashboard.AllowsPageSize(size) {
		size = h.dashboard.DefaultPageSize
	}

	dir := engine.SortAsc
	if strings.EqualFold(c.Query("dir"), string(engine.SortDesc)) {
		dir = engine.SortDesc
	}

	return engine.NewViewState(kind, size).
		WithSearch(c.Query("search")).
		WithFilter(c.Query("filter")).
		WithSort(c.Query("sort"), dir).
		WithPage(parseIntParam(c.Query("page"), 1))
}

func (h *Handler) loadDataset(c *gin.Context) (engine.Dataset, engine.ViewState, bool) {
	kind, ok := engine.ParseKind(c.Param("kind"))
	if !ok {
		respondError(c, errors.NewNotFoundError("dataset "+c.Param("kind")))
		return nil, engine.ViewState{}, false
	}
	state := h.viewState(c, kind)

	ds, err := h.loader.Load(c.Request.Context(), kind)
	if err != nil {
		h.loader.Metrics().RecordLoad(string(kind), metrics.OutcomeError)
		respondError(c, err)
		return nil, state, false
	}
	h.loader.Metrics().RecordLoad(string(kind), metrics.OutcomeOK)
	return ds, state, true
}

// GetDataset runs the full pipeline and returns one rendered page
// GET /api/v1/datasets/:kind
func (h *Handler) GetDataset(c *gin.Context) {
	ds, state, ok := h.loadDataset(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, ds.View(state.Query(), state.Page, state.PageSize))
}

// ExportDataset returns every filtered and sorted row as a workbook
// GET /api/v1/datasets/:kind/export.xlsx
func (h *Handler) ExportDataset(c *gin.Context) {
	ds, state, ok := h.loadDataset(c)
	if !ok {
		return
	}
	size := ds.Len()
	if size == 0 {
		size = state.PageSize
	}
	view := ds.View(state.Query(), 1, size)

	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, view); err != nil {
		respondError(c, errors.NewInternalError(err))
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+export.Filename(view))
	c.Data(http.StatusOK, export.ContentType, buf.Bytes())
}

// InvoiceStats summarises all invoices
// GET /api/v1/facturas/stats
func (h *Handler) InvoiceStats(c *gin.Context) {
	stats, err := h.loader.InvoiceStats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// =============================================================================
// HEALTH CHECK
// =============================================================================

// Health returns the health status
// GET /api/health
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "acueducto",
		"version": Version,
	})
}

// =============================================================================
// HELPERS
// =============================================================================

func parseIntParam(value string, defaultValue int) int {
	if value == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return i
}

func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		respondError(c, errors.NewValidationError(name, "invalid "+name))
		return 0, false
	}
	return id, true
}
