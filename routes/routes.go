package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kendall-kelly/hantverk-dashboard/controllers"
	"github.com/kendall-kelly/hantverk-dashboard/logger"
	"github.com/kendall-kelly/hantverk-dashboard/metrics"
	"github.com/kendall-kelly/hantverk-dashboard/middleware"
	"github.com/kendall-kelly/hantverk-dashboard/services"
)

// Deps are the collaborators the router wires into handlers and middleware
type Deps struct {
	Log            *logger.Logger
	Metrics        *metrics.Metrics
	Gatherer       prometheus.Gatherer
	Idempotency    services.IdempotencyStore
	IdempotencyTTL time.Duration
	CORSOrigins    []string
}

// Setup builds the API router
func Setup(deps Deps) *gin.Engine {
	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestID(deps.Log),
		middleware.Logging(deps.Log),
		middleware.Metrics(deps.Metrics),
		middleware.CORS(deps.CORSOrigins),
	)

	ctl := controllers.New(deps.Log, deps.Metrics)

	router.GET("/health", ctl.HealthCheck)
	router.GET("/database/status", ctl.DatabaseStatus)
	if deps.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	router.GET("/customers", ctl.ListCustomers)
	router.POST("/customers", ctl.CreateCustomer)

	router.GET("/installers", ctl.ListInstallers)
	router.POST("/installers", ctl.CreateInstaller)

	router.GET("/materials", ctl.ListMaterials)
	router.POST("/materials", ctl.CreateMaterial)

	router.GET("/orders", ctl.ListOrders)
	router.POST("/orders",
		middleware.Idempotency(deps.Idempotency, deps.IdempotencyTTL, deps.Log, deps.Metrics),
		ctl.CreateOrder,
	)

	router.GET("/dashboard/summary", ctl.DashboardSummary)

	return router
}
