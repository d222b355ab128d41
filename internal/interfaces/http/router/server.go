package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/pension/backend/internal/application/catalog"
	"github.com/pension/backend/internal/application/recommend"
	"github.com/pension/backend/internal/infrastructure/config"
	csvimport "github.com/pension/backend/internal/infrastructure/import"
	"github.com/pension/backend/internal/infrastructure/logger"
	"github.com/pension/backend/internal/infrastructure/metrics"
	"github.com/pension/backend/internal/interfaces/http/dto"
	"github.com/pension/backend/internal/interfaces/http/handler"
	"github.com/pension/backend/internal/interfaces/http/middleware"
)

// Dependencies are the services the HTTP API is built over
type Dependencies struct {
	Config  *config.Config
	Logger  *zap.Logger
	Catalog *catalog.Service
	Engine  *recommend.Engine
	Loader  *csvimport.Loader
	// Metrics is nil when exposition is disabled
	Metrics *metrics.Collector
	// Tracer is nil when tracing is disabled
	Tracer trace.TracerProvider
	// Limiter is nil when rate limiting is disabled
	Limiter *middleware.RateLimiter
}

// New builds the gin engine with the middleware chain and every API route
func New(deps Dependencies) *gin.Engine {
	cfg := deps.Config
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	engine := gin.New()
	engine.HandleMethodNotAllowed = true

	engine.Use(middleware.RequestID())
	if deps.Tracer != nil {
		engine.Use(middleware.Tracing(cfg.Telemetry.ServiceName, deps.Tracer), middleware.SpanAttributes())
	}
	engine.Use(logger.GinMiddleware(log), logger.Recovery(log))
	if deps.Metrics != nil {
		engine.Use(deps.Metrics.GinMiddleware())
	}

	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		cors.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		cors.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORS(cors), middleware.Secure())
	if cfg.HTTP.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	}
	if deps.Limiter != nil {
		engine.Use(middleware.RateLimit(deps.Limiter))
	}

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, dto.NewErrorResponseWithRequestID(dto.ErrCodeNotFound, "Route not found", c.GetString(handler.RequestIDKey)))
	})
	engine.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, dto.NewErrorResponseWithRequestID(dto.ErrCodeBadRequest, "Method not allowed", c.GetString(handler.RequestIDKey)))
	})

	if deps.Metrics != nil {
		engine.GET(cfg.Metrics.Path, gin.WrapH(deps.Metrics.Handler()))
	}

	r := NewRouter(engine, WithAPIVersion("v1"))
	for _, group := range routeGroups(deps) {
		r.Register(group)
	}
	r.Setup()
	return engine
}

// routeGroups lays out the /api/v1 routes
func routeGroups(deps Dependencies) []*DomainGroup {
	cfg := deps.Config

	systemHandler := handler.NewSystemHandler(cfg.App.Name, deps.Catalog, deps.Engine.Store())
	productHandler := handler.NewProductHandler(deps.Catalog)
	importHandler := handler.NewCatalogImportHandler(deps.Loader, deps.Catalog, snapshotter(deps))
	advisorHandler := handler.NewAdvisorHandler(deps.Engine, handler.TopNLimits{
		Default: cfg.Recommend.DefaultTopN,
		Max:     cfg.Recommend.MaxTopN,
	})

	system := NewDomainGroup("system", "")
	system.GET("/health", systemHandler.Health)
	system.GET("/system/info", systemHandler.GetSystemInfo)

	products := NewDomainGroup("products", "")
	products.GET("/products", productHandler.ListProducts)
	products.GET("/products/:id", productHandler.GetProduct)
	products.GET("/companies", productHandler.ListCompanies)

	catalogRoutes := NewDomainGroup("catalog", "/catalog")
	catalogRoutes.GET("/summary", productHandler.GetSummary)
	catalogRoutes.POST("/import", importHandler.ImportCatalog)

	advisor := NewDomainGroup("advisor", "")
	advisor.POST("/analyze", advisorHandler.Analyze)
	advisor.POST("/compare", advisorHandler.Compare)
	advisor.POST("/advice", advisorHandler.Advice)
	advisor.GET("/weights", advisorHandler.GetWeights)
	advisor.PUT("/weights", advisorHandler.PutWeights)

	users := advisor.Group("users", "/users/:id")
	users.GET("/profile", advisorHandler.GetProfile)
	users.PUT("/profile", advisorHandler.PutProfile)
	users.GET("/recommendations", advisorHandler.GetRecommendations)
	users.GET("/history", advisorHandler.GetHistory)
	users.DELETE("/history", advisorHandler.ClearHistory)

	return []*DomainGroup{system, products, catalogRoutes, advisor}
}

// snapshotter returns the catalog service only when a snapshot backend is configured
func snapshotter(deps Dependencies) handler.CatalogSnapshotter {
	if deps.Config.Snapshot.Backend == config.SnapshotBackendNone {
		return nil
	}
	return deps.Catalog
}
