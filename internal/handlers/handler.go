package handlers

import (
	"control_panel/internal/logger"
	"control_panel/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger) *Handler {
	return &Handler{services: services, log: log}
}

// InitRoutes builds the security service router.
func (h *Handler) InitRoutes() *gin.Engine {
	router := h.baseRouter()

	// Auth endpoints
	h.registerAuthRoutes(router)

	// Versioned API endpoints (protected)
	api := router.Group("/api/v1", h.userIdMiddleware)
	{
		h.registerSubjectRoutes(api)
		h.registerLogRoutes(api)
	}

	return router
}

// InitPanelRoutes builds the control panel router. Unlock requires an operator
// token, verified through services.Authorization.
func (h *Handler) InitPanelRoutes() *gin.Engine {
	router := h.baseRouter()

	api := router.Group("/api/v1")
	{
		h.registerPanelRoutes(api)
	}

	// Feedback stream (HTTP upgrade) on the same port
	router.GET("/ws", h.wsConnect)

	return router
}

func (h *Handler) baseRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	if h.log != nil {
		router.Use(h.requestLogger)
	}

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/health", h.health)
	return router
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/sign-up", h.signUp)
		auth.POST("/sign-in", h.signIn)
	}
}

func (h *Handler) registerSubjectRoutes(api *gin.RouterGroup) {
	subjects := api.Group("/subjects")
	{
		// Body example: {"id":"house-1","master_code":"1234","guest_code":"9999"}
		subjects.POST("", h.provisionSubject)
		subjects.GET("/:id", h.getSubject)
		subjects.POST("/:id/credentials/check", h.checkCredentials)
		subjects.POST("/:id/power/on", h.powerOn)
		subjects.POST("/:id/power/off", h.powerOff)
		subjects.POST("/:id/arm", h.arm)
		subjects.POST("/:id/disarm", h.disarm)
		subjects.POST("/:id/panic", h.raisePanic)
		subjects.POST("/:id/password", h.changePassword)
	}
}

func (h *Handler) registerLogRoutes(api *gin.RouterGroup) {
	logs := api.Group("/logs")
	{
		logs.GET("/", h.getLogs)
	}
}

func (h *Handler) registerPanelRoutes(api *gin.RouterGroup) {
	panels := api.Group("/panels")
	{
		panels.GET("/", h.listPanels)
		panels.GET("/:id", h.getPanel)
		// Body example: {"key":"5"} or {"keys":["1","2","3","4"]}
		panels.POST("/:id/keys", h.pressKeys)
		panels.POST("/:id/submit", h.submitCode)
		// Lockout release is an operator action.
		panels.POST("/:id/unlock", h.userIdMiddleware, h.unlockPanel)
	}
}
