package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/lifeflow/blood-bank/docs"
	"github.com/lifeflow/blood-bank/internal/api/handler"
	"github.com/lifeflow/blood-bank/internal/api/middleware"
	"github.com/lifeflow/blood-bank/internal/core/service"
	mongodb "github.com/lifeflow/blood-bank/internal/infrastructure/db/mongo"
	redisdb "github.com/lifeflow/blood-bank/internal/infrastructure/db/redis"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(db *mongo.Database, rdb *redis.Client, jwtSecret string, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echoprometheus.NewMiddleware("bloodbank"))

	// --- Dependencies ---
	donorRepo := mongodb.NewDonorRepository(db)
	searchCache := redisdb.NewSearchCache(rdb)
	sessions := service.NewSessionService(jwtSecret, 0)
	registration := service.NewRegistrationService(donorRepo, sessions, log)
	donations := service.NewDonationService(donorRepo, log)
	search := service.NewSearchService(donorRepo, searchCache, log)

	donors := handler.NewDonorHandler(registration, donations, search)
	requireSession := middleware.Session(sessions)

	// --- Registry routes ---
	e.GET("/", donors.Index)
	e.POST("/register", donors.Register)
	e.GET("/donate", donors.Profile, requireSession)
	e.POST("/donate", donors.Donate, requireSession)
	e.GET("/bank", donors.Bank, requireSession)
	e.GET("/logout", donors.Logout)

	// --- Health probes (no session required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- Operational endpoints ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	return e
}
