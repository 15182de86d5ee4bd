package di

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscloudwatch "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"go.uber.org/zap"

	"pingwards-backend/application/commands"
	"pingwards-backend/application/commands/bus"
	commandhandlers "pingwards-backend/application/commands/handlers"
	"pingwards-backend/application/ports"
	"pingwards-backend/application/queries"
	querybus "pingwards-backend/application/queries/bus"
	queryhandlers "pingwards-backend/application/queries/handlers"
	"pingwards-backend/application/services"
	domainconfig "pingwards-backend/domain/config"
	"pingwards-backend/infrastructure/config"
	messagingeb "pingwards-backend/infrastructure/messaging/eventbridge"
	notifyeb "pingwards-backend/infrastructure/notifications/eventbridge"
	notifylocal "pingwards-backend/infrastructure/notifications/local"
	"pingwards-backend/infrastructure/persistence/dynamodb"
	"pingwards-backend/pkg/auth"
	"pingwards-backend/pkg/observability"
)

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.Environment == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideEventBridgeClient creates an EventBridge client
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

// ProvideCloudWatchClient creates a CloudWatch client
func ProvideCloudWatchClient(awsCfg aws.Config) *awscloudwatch.Client {
	return awscloudwatch.NewFromConfig(awsCfg)
}

// ProvideDomainConfig creates the domain rule configuration
func ProvideDomainConfig() *domainconfig.DomainConfig {
	return domainconfig.DefaultDomainConfig()
}

// ProvideReminderRepository creates a reminder repository
func ProvideReminderRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.ReminderRepository {
	return dynamodb.NewReminderRepository(
		client,
		cfg.DynamoDBTable,
		cfg.IndexName,
		logger,
	)
}

// ProvideNotificationScheduler selects the scheduling backend. The
// local adapter keeps development and tests off AWS.
func ProvideNotificationScheduler(client *awseventbridge.Client, cfg *config.Config, logger *zap.Logger) ports.NotificationScheduler {
	if cfg.SchedulerBackend == "eventbridge" {
		return notifyeb.NewScheduler(
			client,
			cfg.EventBusName,
			cfg.RulePrefix,
			cfg.NotifyTargetArn,
			logger,
		)
	}
	return notifylocal.NewScheduler(logger)
}

// ProvideEventBus creates an event bus
func ProvideEventBus(client *awseventbridge.Client, cfg *config.Config, logger *zap.Logger) ports.EventBus {
	return messagingeb.NewPublisher(
		client,
		cfg.EventBusName,
		logger,
	)
}

// ProvideMetrics creates metrics instance
func ProvideMetrics(client *awscloudwatch.Client, cfg *config.Config) *observability.Metrics {
	namespace := fmt.Sprintf("PingWards/%s", cfg.Environment)
	return observability.NewMetrics(namespace, client)
}

// ProvideTracer creates the X-Ray tracer
func ProvideTracer(cfg *config.Config) *observability.Tracer {
	return observability.NewTracer("pingwards-backend", cfg.EnableTracing)
}

// ProvideJWTValidator creates the bearer-token validator
func ProvideJWTValidator(cfg *config.Config) (*auth.JWTValidator, error) {
	secret := cfg.JWTSecret
	if secret == "" && !cfg.IsProduction() {
		secret = "development-secret"
	}
	return auth.NewJWTValidator(auth.JWTConfig{
		SecretKey: secret,
		Issuer:    cfg.JWTIssuer,
	})
}

// ProvideLifecycleService creates the reminder lifecycle service
func ProvideLifecycleService(
	repo ports.ReminderRepository,
	scheduler ports.NotificationScheduler,
	eventBus ports.EventBus,
	domainCfg *domainconfig.DomainConfig,
	logger *zap.Logger,
	metrics *observability.Metrics,
	tracer *observability.Tracer,
) *services.ReminderLifecycleService {
	return services.NewReminderLifecycleService(
		repo,
		scheduler,
		eventBus,
		domainCfg,
		logger,
		metrics,
		tracer,
	)
}

// CommandHandlerAdapter adapts specific command handlers to the generic interface
type CommandHandlerAdapter struct {
	handler func(context.Context, bus.Command) error
}

// Handle implements bus.CommandHandler
func (a *CommandHandlerAdapter) Handle(ctx context.Context, cmd bus.Command) error {
	return a.handler(ctx, cmd)
}

// ProvideCommandBus creates a command bus with registered handlers
func ProvideCommandBus(service *services.ReminderLifecycleService) *bus.CommandBus {
	commandBus := bus.NewCommandBus()

	createHandler := commandhandlers.NewCreateReminderHandler(service)
	commandBus.Register(commands.CreateReminderCommand{}, &CommandHandlerAdapter{
		handler: func(ctx context.Context, cmd bus.Command) error {
			createCmd, ok := cmd.(commands.CreateReminderCommand)
			if !ok {
				return fmt.Errorf("invalid command type")
			}
			return createHandler.Handle(ctx, createCmd)
		},
	})

	updateHandler := commandhandlers.NewUpdateReminderHandler(service)
	commandBus.Register(commands.UpdateReminderCommand{}, &CommandHandlerAdapter{
		handler: func(ctx context.Context, cmd bus.Command) error {
			updateCmd, ok := cmd.(commands.UpdateReminderCommand)
			if !ok {
				return fmt.Errorf("invalid command type")
			}
			return updateHandler.Handle(ctx, updateCmd)
		},
	})

	deleteHandler := commandhandlers.NewDeleteReminderHandler(service)
	commandBus.Register(commands.DeleteReminderCommand{}, &CommandHandlerAdapter{
		handler: func(ctx context.Context, cmd bus.Command) error {
			deleteCmd, ok := cmd.(commands.DeleteReminderCommand)
			if !ok {
				return fmt.Errorf("invalid command type")
			}
			return deleteHandler.Handle(ctx, deleteCmd)
		},
	})

	toggleHandler := commandhandlers.NewToggleCompleteHandler(service)
	commandBus.Register(commands.ToggleCompleteCommand{}, &CommandHandlerAdapter{
		handler: func(ctx context.Context, cmd bus.Command) error {
			toggleCmd, ok := cmd.(commands.ToggleCompleteCommand)
			if !ok {
				return fmt.Errorf("invalid command type")
			}
			return toggleHandler.Handle(ctx, toggleCmd)
		},
	})

	snoozeHandler := commandhandlers.NewSnoozeReminderHandler(service)
	commandBus.Register(commands.SnoozeReminderCommand{}, &CommandHandlerAdapter{
		handler: func(ctx context.Context, cmd bus.Command) error {
			snoozeCmd, ok := cmd.(commands.SnoozeReminderCommand)
			if !ok {
				return fmt.Errorf("invalid command type")
			}
			return snoozeHandler.Handle(ctx, snoozeCmd)
		},
	})

	return commandBus
}

// QueryHandlerAdapter adapts specific query handlers to the generic interface
type QueryHandlerAdapter struct {
	handler func(context.Context, querybus.Query) (interface{}, error)
}

// Handle implements querybus.QueryHandler
func (a *QueryHandlerAdapter) Handle(ctx context.Context, query querybus.Query) (interface{}, error) {
	return a.handler(ctx, query)
}

// ProvideQueryBus creates a query bus with registered handlers
func ProvideQueryBus(
	repo ports.ReminderRepository,
	scheduler ports.NotificationScheduler,
	cache ports.Cache,
	logger *zap.Logger,
) *querybus.QueryBus {
	queryBus := querybus.NewQueryBus()

	getHandler := queryhandlers.NewGetReminderHandler(repo, cache, logger)
	queryBus.Register(queries.GetReminderQuery{}, &QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			getQuery, ok := query.(queries.GetReminderQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return getHandler.Handle(ctx, getQuery)
		},
	})

	listHandler := queryhandlers.NewListRemindersHandler(repo)
	queryBus.Register(queries.ListRemindersQuery{}, &QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			listQuery, ok := query.(queries.ListRemindersQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return listHandler.Handle(ctx, listQuery)
		},
	})

	pendingHandler := queryhandlers.NewListPendingNotificationsHandler(scheduler)
	queryBus.Register(queries.ListPendingNotificationsQuery{}, &QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			pendingQuery, ok := query.(queries.ListPendingNotificationsQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return pendingHandler.Handle(ctx, pendingQuery)
		},
	})

	return queryBus
}

// ProvideInMemoryCache creates the read-path cache
func ProvideInMemoryCache() ports.Cache {
	return NewInMemoryCache()
}
