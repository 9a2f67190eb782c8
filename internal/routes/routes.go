// internal/routes/routes.go
package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"panel-link/internal/config"
	"panel-link/internal/handler"
	"panel-link/internal/middleware"
	"panel-link/internal/utils"
)

// Router holds all dependencies for routing
type Router struct {
	config  *config.Config
	logger  *zap.Logger
	db      handler.DatabaseChecker
	devices handler.DeviceAPI
}

// NewRouter creates a new router instance. db is nil when the command
// history is kept in memory.
func NewRouter(
	config *config.Config,
	logger *zap.Logger,
	db handler.DatabaseChecker,
	devices handler.DeviceAPI,
) *Router {
	return &Router{
		config:  config,
		logger:  logger,
		db:      db,
		devices: devices,
	}
}

// SetupRouter creates and configures the Gin router
func (r *Router) SetupRouter() *gin.Engine {
	if gin.Mode() != gin.TestMode {
		gin.SetMode(ginMode(r.config))
	}

	router := gin.New()

	r.addMiddleware(router)
	r.addRoutes(router)

	return router
}

// ginMode picks debug mode only for debug-enabled, non-production configs
func ginMode(cfg *config.Config) string {
	if cfg.IsProduction() || !cfg.IsDebugEnabled() {
		return gin.ReleaseMode
	}
	return gin.DebugMode
}

// addMiddleware adds middleware to the router
func (r *Router) addMiddleware(router *gin.Engine) {
	router.Use(middleware.RecoveryMiddleware(r.logger))
	router.Use(middleware.RequestIDMiddleware())

	serviceLogger := utils.NewServiceLogger(r.logger, "http-server")
	router.Use(middleware.LoggingMiddleware(serviceLogger))

	router.Use(middleware.CORSMiddleware(&r.config.Security))

	r.logger.Debug("Middleware configured")
}

// addRoutes sets up all application routes
func (r *Router) addRoutes(router *gin.Engine) {
	healthHandler := handler.NewHealthHandler(r.db, r.devices, r.config, r.logger)
	deviceHandler := handler.NewDeviceHandler(r.devices, r.config.Device.ProbeWindow, r.logger)
	commandHandler := handler.NewCommandHandler(r.devices, r.logger)
	protocolHandler := handler.NewProtocolHandler(r.logger)

	healthHandler.RegisterRoutes(router.Group(""))

	apiV1 := router.Group("/api/v1")
	deviceHandler.RegisterRoutes(apiV1)
	commandHandler.RegisterRoutes(apiV1)
	protocolHandler.RegisterRoutes(apiV1)

	r.addDocumentationRoutes(router)

	r.logger.Debug("All routes configured")
}

// addDocumentationRoutes sets up documentation routes
func (r *Router) addDocumentationRoutes(router *gin.Engine) {
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))

	router.GET("/docs", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
	})
}
