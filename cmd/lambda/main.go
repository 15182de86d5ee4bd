package main

import (
	"context"
	"log"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	chiadapter "github.com/awslabs/aws-lambda-go-api-proxy/chi"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"pingwards-backend/infrastructure/config"
	"pingwards-backend/infrastructure/di"
	"pingwards-backend/interfaces/http/rest"
)

var (
	chiLambda *chiadapter.ChiLambdaV2
	container *di.Container
)

// init runs during cold start
func init() {
	start := time.Now()

	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	container, err = di.InitializeContainer(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}

	if _, err := container.Scheduler.RequestPermission(ctx); err != nil {
		container.Logger.Warn("notification platform unavailable", zap.Error(err))
	}
	if err := container.LifecycleService.RestoreSchedules(ctx); err != nil {
		container.Logger.Warn("schedule restoration failed", zap.Error(err))
	}

	router := rest.NewRouter(
		cfg,
		container.CommandBus,
		container.QueryBus,
		container.Cache,
		container.LifecycleService,
		container.JWTValidator,
		container.Logger,
	)

	handler := router.Setup()

	chiRouter, ok := handler.(*chi.Mux)
	if !ok {
		log.Fatal("Failed to cast handler to chi.Mux")
	}
	chiLambda = chiadapter.NewV2(chiRouter)

	container.Logger.Info("Lambda cold start completed",
		zap.Duration("duration", time.Since(start)),
	)
}

// Handler is the Lambda function handler
func Handler(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	return chiLambda.ProxyWithContextV2(ctx, req)
}

func main() {
	lambda.Start(Handler)
}
