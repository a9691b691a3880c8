package main

import (
	"context"
	"log/slog"
	"os"

	"go.uber.org/fx"

	"harbor/config"
	"harbor/internal/delivery"
	"harbor/internal/delivery/http"
	"harbor/internal/delivery/http/middleware"
	"harbor/internal/delivery/http/router/handler"
	"harbor/internal/infra/auth"
	"harbor/internal/infra/cache"
	"harbor/internal/infra/gateway"
	"harbor/internal/infra/imaging"
	logs "harbor/internal/infra/log"
	"harbor/internal/infra/metrics"
	"harbor/internal/infra/pubsub"
	"harbor/internal/session"
	"harbor/internal/usecase"
	"harbor/internal/usecase/impl"
)

type startServerParams struct {
	fx.In
	fx.Lifecycle
	fx.Shutdowner

	Deliveries []delivery.Delivery `group:"deliveries"`
}

func main() {
	fx.New(
		injectInfra(),
		injectService(),
		injectUsecase(),
		injectSession(),
		injectMiddleware(),
		injectHandler(),
		injectDelivery(),
		fx.Invoke(
			startServer,
		),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Options(
		fx.Provide(
			config.New,
			context.Background,
		),
		logs.Module,
		metrics.Module,
		gateway.Module,
		cache.Module,
		pubsub.Module,
	)
}

func injectService() fx.Option {
	return fx.Options(
		fx.Provide(
			auth.NewJWTService,
			imaging.NewProcessorFromConfig,
		),
	)
}

func injectUsecase() fx.Option {
	return fx.Options(
		impl.Module,
		fx.Provide(
			func(m *metrics.Metrics) usecase.PushObserver { return m },
		),
	)
}

func injectSession() fx.Option {
	return fx.Options(
		fx.Provide(
			session.NewManager,
		),
	)
}

func injectMiddleware() fx.Option {
	return fx.Options(
		fx.Provide(
			middleware.NewSessionMiddleware,
		),
	)
}

func injectHandler() fx.Option {
	return handler.Module
}

func injectDelivery() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				http.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
		),
	)
}

func startServer(ctx context.Context, params startServerParams) {
	for _, delivery := range params.Deliveries {
		go func() {
			if err := delivery.Serve(ctx); err != nil {
				slog.Error("Failed to start server", slog.Any("error", err))

				// Trigger graceful shutdown to execute all OnStop hooks
				if shutdownErr := params.Shutdown(); shutdownErr != nil {
					slog.Error("Failed to shutdown gracefully", slog.Any("error", shutdownErr))
					os.Exit(1)
				}
			}
		}()
	}
}
