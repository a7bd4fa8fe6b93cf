package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/replyrocket/composer/internal/api/handler"
	"github.com/replyrocket/composer/internal/api/middleware"
	"github.com/replyrocket/composer/internal/core/ports"
	"github.com/replyrocket/composer/internal/infrastructure/http/handlers"
)

// Deps holds everything the router needs to mount the API.
type Deps struct {
	Auth     ports.AuthService
	Accounts ports.AccountService
	Posts    ports.PostService
	Compose  ports.ComposeService
	Dispatch ports.DispatchService

	// Readiness probes keyed by dependency name.
	Checks map[string]handlers.Check

	JWTSecret     string
	CronSecret    string
	AppURL        string
	SecureCookies bool
	Log           zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Log))
	e.Use(echoprometheus.NewMiddleware("composer"))

	// --- Operational endpoints ---
	e.GET("/health", handlers.NewHealthHandler().Liveness)
	e.GET("/health/ready", handlers.NewReadinessHandler(deps.Checks).Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	authHandler := handler.NewAuthHandler(deps.Auth)
	accountHandler := handler.NewAccountHandler(deps.Accounts, deps.AppURL, deps.SecureCookies, deps.Log)
	postHandler := handler.NewPostHandler(deps.Posts)
	composeHandler := handler.NewComposeHandler(deps.Compose)
	cronHandler := handler.NewCronHandler(deps.Dispatch, deps.Log)

	v1 := e.Group("/v1")

	// --- Public routes ---
	auth := v1.Group("/auth")
	auth.POST("/signup", authHandler.StartSignup)
	auth.POST("/signup/verify", authHandler.VerifySignup)
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	v1.POST("/compose/analyze", composeHandler.Analyze)
	v1.GET("/twitter/callback", accountHandler.Callback)
	v1.GET("/cron/dispatch", cronHandler.Dispatch, middleware.CronSecret(deps.CronSecret))

	// --- Authenticated routes ---
	protected := v1.Group("", middleware.Auth(deps.JWTSecret))

	protected.GET("/account", accountHandler.Get)
	protected.PATCH("/account", accountHandler.Update)
	protected.DELETE("/account/twitter", accountHandler.Disconnect)
	protected.GET("/twitter/connect", accountHandler.Connect)

	protected.POST("/posts", postHandler.Create)
	protected.GET("/posts", postHandler.List)
	protected.POST("/posts/publish", postHandler.Publish)
	protected.GET("/posts/:id", postHandler.Get)
	protected.PATCH("/posts/:id", postHandler.Update)
	protected.DELETE("/posts/:id", postHandler.Delete)
	protected.GET("/posts/:id/attempts", postHandler.Attempts)

	protected.POST("/compose/generate", composeHandler.Generate)

	return e
}

// requestLogger emits one structured line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogMethod:    true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Status >= 500 {
				ev = log.Error().Err(v.Error)
			}
			ev.Str("request_id", v.RequestID).
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("request")
			return nil
		},
	})
}
