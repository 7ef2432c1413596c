package api

import (
	"net/http"
	"time"

	"github.com/aethra/acueducto/internal/config"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRouter creates and configures the Gin router. Data routes require a
// token only when auth is enabled.
func SetupRouter(cfg *config.Config, handler *Handler, authHandler *AuthHandler, gatherer prometheus.Gatherer) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(AccessLog())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", requestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Type", "Content-Disposition", requestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/api/health", handler.Health)
	if gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	authRoutes := r.Group("/auth")
	{
		authRoutes.POST("/login", authHandler.Login)
	}

	v1 := r.Group("/api/v1")
	if cfg.Auth.Enabled {
		v1.Use(RequireAuth(authHandler.authn.Tokens()))
	}
	{
		// Enriched datasets
		v1.GET("/datasets", handler.ListDatasets)
		v1.GET("/datasets/:kind", handler.GetDataset)
		v1.GET("/datasets/:kind/export.xlsx", handler.ExportDataset)

		// Usuarios
		v1.POST("/usuarios", handler.CreateUser)
		v1.GET("/usuarios/:cc", handler.GetUser)
		v1.PUT("/usuarios/:cc", handler.UpdateUser)
		v1.DELETE("/usuarios/:cc", handler.DeleteUser)
		v1.GET("/usuarios/:cc/predios", handler.ListUserProperties)

		// Matriculas
		v1.POST("/matriculas", handler.CreateRegistration)
		v1.GET("/matriculas/:codigo", handler.GetRegistration)
		v1.PUT("/matriculas/:codigo", handler.UpdateRegistration)
		v1.DELETE("/matriculas/:codigo", handler.DeleteRegistration)
		v1.GET("/matriculas/:codigo/facturas", handler.ListRegistrationInvoices)
		v1.GET("/matriculas/:codigo/solicitudes", handler.ListRegistrationRequests)

		v1.GET("/predios/:id", handler.GetProperty)

		v1.GET("/facturas", handler.ListInvoicesByStatus)
		v1.GET("/facturas/stats", handler.InvoiceStats)
		v1.GET("/facturas/:id", handler.GetInvoice)

		v1.GET("/solicitudes", handler.ListRequests)
		v1.GET("/solicitudes/:id", handler.GetRequest)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "NOT_FOUND", "message": "route not found"})
	})

	return r
}
