package api

import (
	"fmt"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/oculab/microbio-portal/internal/api/handler"
	"github.com/oculab/microbio-portal/internal/api/middleware"
	"github.com/oculab/microbio-portal/internal/core/domain"
	"github.com/oculab/microbio-portal/internal/core/ports"
)

// Dependencies carries everything the router needs. Services are constructed
// by the caller so the HTTP layer stays free of persistence concerns.
type Dependencies struct {
	Cases       ports.CaseService
	Auth        ports.AuthService
	Mongo       *mongo.Database
	Redis       *redis.Client
	Revocations middleware.TokenRevocations
	JWTSecret   string
	MaxUploadMB int64
	Logger      zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("microbio"))
	if deps.MaxUploadMB > 0 {
		e.Use(echomiddleware.BodyLimit(fmt.Sprintf("%dM", deps.MaxUploadMB)))
	}

	// --- Handlers ---
	caseHandler := handler.NewCaseHandler(deps.Cases)
	authHandler := handler.NewAuthHandler(deps.Auth)
	exportHandler := handler.NewExportHandler(deps.Cases)

	// --- Health probes and operational surface (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(deps.Mongo, deps.Redis)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	// --- Auth routes ---
	v1 := e.Group("/v1")
	v1.POST("/auth/register", authHandler.Register)
	v1.POST("/auth/login", authHandler.Login)

	// --- Authenticated surface ---
	authMW := middleware.Auth(deps.JWTSecret, deps.Revocations, deps.Logger)
	doctorOnly := middleware.RequireRole(domain.RoleDoctor)
	labOnly := middleware.RequireRole(domain.RoleLabTech)

	secured := v1.Group("", authMW)
	secured.POST("/auth/logout", authHandler.Logout)

	secured.POST("/cases", caseHandler.Submit, doctorOnly)
	secured.GET("/cases", caseHandler.List)
	secured.GET("/cases/:id", caseHandler.Get)
	secured.GET("/cases/:id/history", caseHandler.History)
	secured.GET("/stats", caseHandler.Stats)

	secured.POST("/cases/:id/claim", caseHandler.Claim, labOnly)
	secured.POST("/cases/:id/report", caseHandler.CompleteReport, labOnly)
	secured.PUT("/cases/:id/report/pdf", caseHandler.AttachReportPDF, labOnly)

	secured.GET("/cases/:id/image", exportHandler.CaseImage)
	secured.GET("/cases/:id/report.pdf", exportHandler.CaseReportPDF)
	secured.GET("/cases/:id/report/pdf", exportHandler.DownloadReportPDF, doctorOnly)
	secured.GET("/exports/cases.csv", exportHandler.CasesCSV)

	return e
}
