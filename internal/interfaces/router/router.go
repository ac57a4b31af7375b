package router

import (
	"net/http"

	appsvc "volunhub-backend/internal/application/applications"
	authsvc "volunhub-backend/internal/application/auth"
	"volunhub-backend/internal/application/emails"
	eventsvc "volunhub-backend/internal/application/events"
	healthsvc "volunhub-backend/internal/application/health"
	notifsvc "volunhub-backend/internal/application/notifications"
	usersvc "volunhub-backend/internal/application/users"
	"volunhub-backend/internal/config"
	"volunhub-backend/internal/infrastructure/database"
	apphandlers "volunhub-backend/internal/interfaces/handlers/applications"
	authhandlers "volunhub-backend/internal/interfaces/handlers/auth"
	eventhandlers "volunhub-backend/internal/interfaces/handlers/events"
	healthhandlers "volunhub-backend/internal/interfaces/handlers/health"
	notifhandlers "volunhub-backend/internal/interfaces/handlers/notifications"
	userhandlers "volunhub-backend/internal/interfaces/handlers/users"
	"volunhub-backend/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// CreateApp builds the Fiber app with all global middleware and route
// registration. The returned DB and Redis client are shared with main for
// startup pings and shutdown.
func CreateApp(cfg *config.Config) (*fiber.App, *gorm.DB, *redis.Client, error) {
	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.ErrorHandler,
		EnableTrustedProxyCheck: true,
	})

	// CORS (before session)
	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedSuffix:  cfg.FrontendURLEndsWith,
		AllowLocalhost: cfg.Env != "production",
	}))

	// Session (Redis); the client is reused by the health marker and auth handlers
	sessionCfg := middleware.SessionConfig{
		Secret:            cfg.SessionSecret,
		RedisURL:          cfg.RedisURL,
		AllowCrossSiteDev: cfg.AllowCrossSiteDev,
		IsProduction:      cfg.Env == "production",
	}
	sessionHandler, rdb, err := middleware.Session(sessionCfg)
	if err != nil {
		return nil, nil, nil, err
	}
	app.Use(sessionHandler)

	// Health request marker (after session)
	app.Use(middleware.HealthMarker(rdb))

	// Tracing + route logger
	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())

	// db may be nil if DATABASE_URL not set (e.g. smoke tests); protected
	// modules are then not mounted and Login returns 500
	var db *gorm.DB
	if cfg.DatabaseURL != "" {
		db, err = database.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, err
		}
	}

	// --- Health module (no auth) ---
	healthH := &healthhandlers.Handlers{
		Rdb:            rdb,
		DB:             gormPinger(db),
		HealthAdminKey: cfg.HealthAdminKey,
	}
	app.Get("/", healthH.Dashboard)
	app.Get("/reset", healthH.Reset)
	app.Get("/health/json", healthH.JSON)
	app.Get("/health/errors", healthH.Errors)

	// --- Auth (no auth middleware) ---
	var userFinder authsvc.UserFinder
	if db != nil {
		userFinder = &authsvc.GormUserFinder{DB: db}
	}
	authH := &authhandlers.Handlers{
		UserFinder: userFinder,
		Rdb:        rdb,
		Config:     sessionCfg,
	}
	authGroup := app.Group("/api/v1/auth")
	authGroup.Post("/login", authH.Login)
	authGroup.Get("/me", authH.Me)
	authGroup.Delete("/logout", authH.Logout)

	// --- Protected modules ---
	if db != nil && rdb != nil {
		emailClient := &emails.BrevoClient{
			APIKey:   cfg.SendinblueAPIKey,
			MailFrom: cfg.MailFrom,
			Client:   &http.Client{},
		}
		dispatcher := &notifsvc.Dispatcher{
			DB:         db,
			Emails:     emailClient,
			AppBaseURL: cfg.AppBaseURL,
		}
		cache := &appsvc.SummaryCache{Rdb: rdb}

		// The lifecycle engine owns the per-event lock table; the events
		// service shares it so capacity edits serialize with approvals.
		applications := appsvc.NewService(db, cache, dispatcher)
		events := &eventsvc.Service{DB: db, Locks: applications.Locks, Cache: cache}

		// Users module
		userService := &usersvc.Service{DB: db, Emails: emailClient}
		userH := &userhandlers.Handlers{Service: userService}
		app.Post("/api/v1/users/register", userH.Register)
		userGroup := app.Group("/api/v1/users", middleware.RequireAuth())
		userGroup.Get("/:user_id", userH.Get)

		// Events module
		eventH := &eventhandlers.Handlers{Service: events, Applications: applications}
		eventGroup := app.Group("/api/v1/events", middleware.RequireAuth())
		eventGroup.Post("/", eventH.Create)
		eventGroup.Get("/", eventH.List)
		eventGroup.Get("/mine", eventH.ListMine)
		eventGroup.Get("/:event_id", eventH.Get)
		eventGroup.Patch("/:event_id", eventH.Update)
		eventGroup.Post("/:event_id/cancel", eventH.Cancel)
		eventGroup.Post("/:event_id/complete", eventH.Complete)
		eventGroup.Delete("/:event_id", eventH.Delete)

		// Application lifecycle (nested under events)
		appH := &apphandlers.Handlers{Service: applications}
		app.Get("/api/v1/applications/mine", middleware.RequireAuth(), appH.ListMine)
		eventGroup.Post("/:event_id/applications", appH.Apply)
		eventGroup.Get("/:event_id/applications", appH.List)
		eventGroup.Patch("/:event_id/applications/:application_id", appH.Decide)
		eventGroup.Patch("/:event_id/applications/:application_id/reset", appH.Reset)
		eventGroup.Patch("/:event_id/applications/:application_id/hours", appH.RecordHours)

		// Notifications module
		notifService := &notifsvc.Service{DB: db}
		notifH := &notifhandlers.Handlers{Service: notifService}
		notifGroup := app.Group("/api/v1/notifications", middleware.RequireAuth())
		notifGroup.Get("/", notifH.List)
		notifGroup.Patch("/:notification_id/read", notifH.MarkRead)
	}

	return app, db, rdb, nil
}

// Handler returns an http.Handler for serverless deployment.
func Handler(app *fiber.App) http.Handler {
	return adaptor.FiberApp(app)
}

type gormDBPinger struct{ db *gorm.DB }

func (p gormDBPinger) Ping() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func gormPinger(db *gorm.DB) healthsvc.DBPinger {
	if db == nil {
		return nil
	}
	return gormDBPinger{db: db}
}
