package di

import (
	"go.uber.org/zap"

	"pingwards-backend/application/commands/bus"
	"pingwards-backend/application/ports"
	querybus "pingwards-backend/application/queries/bus"
	"pingwards-backend/application/services"
	domainconfig "pingwards-backend/domain/config"
	"pingwards-backend/infrastructure/config"
	"pingwards-backend/pkg/auth"
	"pingwards-backend/pkg/observability"
)

// Container holds all application dependencies
type Container struct {
	Config           *config.Config
	DomainConfig     *domainconfig.DomainConfig
	Logger           *zap.Logger
	ReminderRepo     ports.ReminderRepository
	Scheduler        ports.NotificationScheduler
	EventBus         ports.EventBus
	LifecycleService *services.ReminderLifecycleService
	CommandBus       *bus.CommandBus
	QueryBus         *querybus.QueryBus
	Cache            ports.Cache
	Metrics          *observability.Metrics
	Tracer           *observability.Tracer
	JWTValidator     *auth.JWTValidator
}
