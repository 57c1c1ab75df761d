package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/folio-hub/portfolio-api/internal/api/handler"
	"github.com/folio-hub/portfolio-api/internal/api/middleware"
	"github.com/folio-hub/portfolio-api/internal/core/domain"
	"github.com/folio-hub/portfolio-api/internal/core/ports"
	"github.com/folio-hub/portfolio-api/internal/infrastructure/storage"
)

// Deps is everything the router needs, built once in main.
type Deps struct {
	Log       zerolog.Logger
	JWTSecret string

	Auth         ports.AuthService
	Users        ports.UserService
	Images       ports.ProfileImageService
	Projects     ports.RecordService[domain.Project]
	Educations   ports.RecordService[domain.Education]
	Certificates ports.RecordService[domain.Certificate]

	// UploadDir is served read-only under storage.PublicPrefix.
	UploadDir      string
	MaxUploadBytes int64

	Ready    map[string]handler.DependencyCheck
	Optional map[string]handler.DependencyCheck
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))
	e.Use(echoprometheus.NewMiddleware("portfolio"))

	authHandler := handler.NewAuthHandler(d.Auth)
	userHandler := handler.NewUserHandler(d.Users, d.Auth, d.Images, d.MaxUploadBytes)
	projectHandler := handler.NewProjectHandler(d.Projects)
	educationHandler := handler.NewEducationHandler(d.Educations)
	certificateHandler := handler.NewCertificateHandler(d.Certificates)

	auth := middleware.Auth(d.JWTSecret)
	owner := middleware.OwnerOnly("id")

	// --- Account routes ---
	e.POST("/user/register", authHandler.Register)
	e.POST("/user/login", authHandler.Login)
	e.GET("/user/current", userHandler.Current, auth)

	e.GET("/users/:id", userHandler.Get, auth)
	e.PUT("/users/:id", userHandler.Update, auth, owner)
	e.DELETE("/users/:id", userHandler.Delete, auth, owner)
	e.GET("/userlist", userHandler.List, auth)
	e.GET("/userlist/search/:name", userHandler.Search, auth)
	e.PUT("/users/password/:id", userHandler.ChangePassword, auth, owner)
	e.PUT("/users/profileImg/:id", userHandler.UploadProfileImage, auth, owner)
	e.GET("/users/profileImg/:id", userHandler.GetProfileImageURL)

	// --- Profile records ---
	e.POST("/project/create", projectHandler.Create, auth)
	e.GET("/projects/:id", projectHandler.Get, auth)
	e.PUT("/projects/:id", projectHandler.Update, auth)
	e.DELETE("/projects/:id", projectHandler.Delete, auth)
	e.GET("/projectlist/:user_id", projectHandler.ListByUser, auth)

	e.POST("/education/create", educationHandler.Create, auth)
	e.GET("/educations/:id", educationHandler.Get, auth)
	e.PUT("/educations/:id", educationHandler.Update, auth)
	e.DELETE("/educations/:id", educationHandler.Delete, auth)
	e.GET("/educationlist/:user_id", educationHandler.ListByUser, auth)

	e.POST("/certificate/create", certificateHandler.Create, auth)
	e.GET("/certificates/:id", certificateHandler.Get, auth)
	e.PUT("/certificates/:id", certificateHandler.Update, auth)
	e.DELETE("/certificates/:id", certificateHandler.Delete, auth)
	e.GET("/certificatelist/:user_id", certificateHandler.ListByUser, auth)

	// --- Static profile images ---
	if d.UploadDir != "" {
		e.Static(storage.PublicPrefix, d.UploadDir)
	}

	// --- Health probes, metrics and docs (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(d.Ready, d.Optional)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Status >= 500 {
				ev = log.Error().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
