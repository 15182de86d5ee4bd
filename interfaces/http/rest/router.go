package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"pingwards-backend/application/commands/bus"
	"pingwards-backend/application/ports"
	querybus "pingwards-backend/application/queries/bus"
	"pingwards-backend/application/services"
	"pingwards-backend/infrastructure/config"
	"pingwards-backend/interfaces/http/rest/handlers"
	"pingwards-backend/interfaces/http/rest/middleware"
	"pingwards-backend/pkg/auth"
	pkgerrors "pingwards-backend/pkg/errors"
)

// Router creates and configures the HTTP router
type Router struct {
	cfg          *config.Config
	commandBus   *bus.CommandBus
	queryBus     *querybus.QueryBus
	cache        ports.Cache
	service      *services.ReminderLifecycleService
	jwtValidator *auth.JWTValidator
	logger       *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(
	cfg *config.Config,
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	cache ports.Cache,
	service *services.ReminderLifecycleService,
	jwtValidator *auth.JWTValidator,
	logger *zap.Logger,
) *Router {
	return &Router{
		cfg:          cfg,
		commandBus:   commandBus,
		queryBus:     queryBus,
		cache:        cache,
		service:      service,
		jwtValidator: jwtValidator,
		logger:       logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))

	if rt.cfg.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"http://localhost:3000", "https://*.pingwards.app"},
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	// Health check
	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)

	errorHandler := pkgerrors.NewErrorHandler(rt.logger, rt.cfg.IsDevelopment())

	// API v1 routes
	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Authenticate(rt.jwtValidator, rt.logger))

		// Reminder endpoints
		r.Route("/reminders", func(r chi.Router) {
			reminderHandler := handlers.NewReminderHandler(rt.commandBus, rt.queryBus, rt.cache, errorHandler, rt.logger)
			r.Post("/", reminderHandler.CreateReminder)
			r.Get("/", reminderHandler.ListReminders)
			r.Get("/{reminderID}", reminderHandler.GetReminder)
			r.Patch("/{reminderID}", reminderHandler.UpdateReminder)
			// PUT kept for older clients that send full replacements
			r.Put("/{reminderID}", reminderHandler.UpdateReminder)
			r.Delete("/{reminderID}", reminderHandler.DeleteReminder)
			r.Post("/{reminderID}/toggle-complete", reminderHandler.ToggleComplete)
			r.Post("/{reminderID}/snooze", reminderHandler.SnoozeReminder)
		})

		// Notification endpoints
		r.Route("/notifications", func(r chi.Router) {
			notificationHandler := handlers.NewNotificationHandler(rt.queryBus, rt.service, errorHandler, rt.logger)
			r.Get("/pending", notificationHandler.ListPending)
			r.Delete("/", notificationHandler.CancelAll)
		})
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

// readinessCheck handles readiness check requests
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}
