// Package httpapi exposes the lakemap operations over HTTP with gin.
package httpapi

import (
	"context"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"lakemap/backend/internal/aggregate"
	"lakemap/backend/internal/dataset"
)

// Service is everything the handlers call. *aggregate.Service satisfies it.
type Service interface {
	CreateUser(ctx context.Context, in aggregate.CreateUserInput) (string, error)
	GetUser(ctx context.Context, id string) (*aggregate.UserView, error)
	ListUsers(ctx context.Context) ([]aggregate.UserView, error)

	CreatePoint(ctx context.Context, in aggregate.CreatePointInput) (string, error)
	GetPoint(ctx context.Context, id string) (*aggregate.PointView, error)
	ListPoints(ctx context.Context) ([]aggregate.PointView, error)

	CreateRoute(ctx context.Context, in aggregate.CreateRouteInput) (string, error)
	GetRoute(ctx context.Context, id string) (*aggregate.RouteView, error)
	ListRoutes(ctx context.Context) ([]aggregate.RouteView, error)

	CreateLake(ctx context.Context, in aggregate.CreateLakeInput) (string, error)
	GetLake(ctx context.Context, id string) (*aggregate.LakeView, error)
	ListLakes(ctx context.Context) ([]aggregate.LakeView, error)

	CreateTicket(ctx context.Context, in aggregate.CreateTicketInput) (string, error)
	AddTicketReview(ctx context.Context, ticketID string, in aggregate.CreateReviewInput) (string, error)
	GetTicket(ctx context.Context, id string) (*aggregate.TicketView, error)
	ListTickets(ctx context.Context) ([]aggregate.TicketView, error)

	Export(ctx context.Context) (*dataset.Dataset, error)
	Import(ctx context.Context, ds *dataset.Dataset) (*dataset.Report, error)
}

// RouterConfig wires the router's dependencies
type RouterConfig struct {
	Service     Service
	Logger      *zap.Logger
	CORSOrigins []string
	Production  bool
	// MaxImportBytes caps an import body; zero selects DefaultMaxImportBytes.
	MaxImportBytes int64
	// ServiceName names the HTTP spans; empty disables the otel middleware.
	ServiceName string
}

// DefaultMaxImportBytes bounds import bodies when RouterConfig leaves it unset.
const DefaultMaxImportBytes int64 = 32 << 20

// NewRouter builds the gin engine with middleware and every route.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Production {
		gin.SetMode(gin.ReleaseMode)
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	router := gin.New()
	if cfg.ServiceName != "" {
		router.Use(otelgin.Middleware(cfg.ServiceName))
	}
	router.Use(ginLogger(log))
	router.Use(gin.Recovery())
	router.Use(cors.New(corsConfig(cfg.CORSOrigins)))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	maxImport := cfg.MaxImportBytes
	if maxImport <= 0 {
		maxImport = DefaultMaxImportBytes
	}
	h := &handler{svc: cfg.Service, log: log, maxImport: maxImport}

	api := router.Group("/api")
	{
		api.POST("/users", h.createUser)
		api.GET("/users", h.listUsers)
		api.GET("/users/:id", h.getUser)

		api.POST("/points", h.createPoint)
		api.GET("/points", h.listPoints)
		api.GET("/points/:id", h.getPoint)

		api.POST("/routes", h.createRoute)
		api.GET("/routes", h.listRoutes)
		api.GET("/routes/:id", h.getRoute)

		api.POST("/lakes", h.createLake)
		api.GET("/lakes", h.listLakes)
		api.GET("/lakes/:id", h.getLake)

		api.POST("/tickets", h.createTicket)
		api.GET("/tickets", h.listTickets)
		api.GET("/tickets/:id", h.getTicket)
		api.POST("/tickets/:id/reviews", h.addReview)

		api.GET("/export", h.exportDataset)
		api.POST("/import", h.importDataset)
	}

	return router
}

// corsConfig allows the listed origins, or any origin without credentials
// when none are listed.
func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Content-Type", "Accept", "Origin", "X-Requested-With"},
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}
