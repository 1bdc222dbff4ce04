package api

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/otel/trace"

	"github.com/sweetshop/api/internal/api/handler"
	"github.com/sweetshop/api/internal/api/middleware"
	"github.com/sweetshop/api/internal/core/domain"
	"github.com/sweetshop/api/internal/core/ports"
	"github.com/sweetshop/api/internal/infrastructure/http/handlers"
)

// Deps is everything the HTTP layer needs from the rest of the process.
type Deps struct {
	Log          zerolog.Logger
	JWTSecret    string
	FrontendURL  string
	AuthService  ports.AuthService
	SweetService ports.SweetService
	// AuthLimiter throttles the auth routes; nil disables throttling.
	AuthLimiter middleware.Limiter
	// Checks feed the readiness probe, keyed by dependency name.
	Checks map[string]handlers.Check
	// ServiceName labels the HTTP server spans; defaults to sweetshop-api.
	ServiceName string
	// TracerProvider defaults to the global provider set up by tracing.Init.
	TracerProvider trace.TracerProvider
	// Registerer and Gatherer default to the global Prometheus registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	if d.Registerer == nil {
		d.Registerer = prometheus.DefaultRegisterer
	}
	if d.Gatherer == nil {
		d.Gatherer = prometheus.DefaultGatherer
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(tracingMiddleware(d))
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(requestLogger(d.Log))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     []string{d.FrontendURL},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))
	e.Use(echomiddleware.Secure())
	e.Use(echomiddleware.BodyLimit("1M"))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "sweetshop",
		Registerer: d.Registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))

	// --- Operational endpoints (no auth required) ---
	e.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, "Sweet Shop API is running")
	})
	e.GET("/health", handlers.NewHealthHandler().Liveness)
	e.GET("/health/ready", handlers.NewHealthDependenciesHandler(d.Checks).Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: d.Gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// --- Auth routes ---
	authHandler := handler.NewAuthHandler(d.AuthService)
	auth := api.Group("/auth")
	if d.AuthLimiter != nil {
		auth.Use(middleware.RateLimit(d.AuthLimiter, "auth", d.Log))
	}
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	// --- Inventory routes ---
	sweetHandler := handler.NewSweetHandler(d.SweetService)
	adminOnly := middleware.RequireRole(domain.RoleAdmin)

	sweets := api.Group("/sweets",
		middleware.Auth(d.JWTSecret),
		middleware.RequireRole(domain.RoleUser, domain.RoleAdmin),
	)
	sweets.GET("", sweetHandler.List)
	sweets.GET("/search", sweetHandler.Search)
	sweets.GET("/:id", sweetHandler.Get)
	sweets.POST("/:id/purchase", sweetHandler.Purchase)

	sweets.POST("", sweetHandler.Create, adminOnly)
	sweets.PUT("/:id", sweetHandler.Update, adminOnly)
	sweets.DELETE("/:id", sweetHandler.Delete, adminOnly)
	sweets.POST("/:id/restock", sweetHandler.Restock, adminOnly)
	sweets.GET("/:id/movements", sweetHandler.Movements, adminOnly)

	return e
}

// tracingMiddleware opens a server span per request so service spans get a
// request parent. Operational endpoints are not traced.
func tracingMiddleware(d Deps) echo.MiddlewareFunc {
	name := d.ServiceName
	if name == "" {
		name = "sweetshop-api"
	}
	opts := []otelecho.Option{
		otelecho.WithSkipper(func(c echo.Context) bool {
			return !strings.HasPrefix(c.Path(), "/api/")
		}),
	}
	if d.TracerProvider != nil {
		opts = append(opts, otelecho.WithTracerProvider(d.TracerProvider))
	}
	return otelecho.Middleware(name, opts...)
}

// requestLogger writes one zerolog event per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Status >= http.StatusInternalServerError {
				ev = log.Error()
			}
			ev.Str("request_id", v.RequestID).
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote_ip", v.RemoteIP)
			if v.Error != nil {
				ev.Err(v.Error)
			}
			ev.Msg("request")
			return nil
		},
	})
}
