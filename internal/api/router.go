package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/xiaobei/mvd/internal/daemon"
	"github.com/xiaobei/mvd/internal/events"
	"github.com/xiaobei/mvd/internal/service"
	"github.com/xiaobei/mvd/internal/storage"
)

// Server represents the API server
type Server struct {
	store     storage.Store
	proposals *service.ProposalStore
	scheduler *service.Scheduler
	monitor   *daemon.Monitor
	eventBus  *events.Bus
	router    *gin.Engine
	port      int    // Web service port
	version   string // mvd version
	startedAt time.Time
}

// NewServer creates an API server
func NewServer(store storage.Store, proposals *service.ProposalStore, scheduler *service.Scheduler, monitor *daemon.Monitor, eventBus *events.Bus, port int, version string) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		store:     store,
		proposals: proposals,
		scheduler: scheduler,
		monitor:   monitor,
		eventBus:  eventBus,
		router:    gin.New(),
		port:      port,
		version:   version,
		startedAt: time.Now(),
	}
	s.router.Use(gin.Recovery(), requestLogger())

	s.setupRoutes()
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes sets up routes
func (s *Server) setupRoutes() {
	// CORS configuration
	s.router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	// API route group
	api := s.router.Group("/api")
	{
		// Proposals
		api.GET("/proposals", s.getProposals)
		api.GET("/proposals/all", s.getAllProposals)
		api.GET("/proposals/counts", s.getProposalCounts)
		api.GET("/proposals/active", s.getActiveProposal)
		api.POST("/proposals/active", s.toggleActiveProposal)
		api.POST("/proposals/refresh", s.refreshProposals)

		// Filters
		api.GET("/filters", s.getFilters)
		api.PUT("/filters/text", s.setTextFilter)
		api.PUT("/filters/price-per-hour", s.setPricePerHourFilter)
		api.PUT("/filters/price-per-gib", s.setPricePerGiBFilter)
		api.DELETE("/filters/price", s.resetPriceFilter)
		api.PUT("/filters/quality", s.setQualityFilter)
		api.PUT("/filters/include-failed", s.setIncludeFailedFilter)
		api.PUT("/filters/ip-type", s.setIPTypeFilter)
		api.PUT("/filters/country", s.setCountryFilter)
		api.PUT("/filters/access-policy", s.setAccessPolicyFilter)

		// Status and events
		api.GET("/status", s.getStatus)
		api.GET("/events", s.streamEvents)

		// Analytics
		api.GET("/analytics", s.getAnalytics)

		// System monitoring
		api.GET("/monitor/system", s.getSystemInfo)
		api.GET("/monitor/logs", s.getLogs)
	}
}
