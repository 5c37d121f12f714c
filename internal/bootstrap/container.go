package bootstrap

import (
	"context"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/AbelardoOk/PlanTracker/internal/config"
	"github.com/AbelardoOk/PlanTracker/internal/infra/blob"
	"github.com/AbelardoOk/PlanTracker/internal/infra/cache"
	"github.com/AbelardoOk/PlanTracker/internal/infra/db"
	"github.com/AbelardoOk/PlanTracker/internal/infra/logger"
	mq "github.com/AbelardoOk/PlanTracker/internal/infra/queue"
	"github.com/AbelardoOk/PlanTracker/internal/modules/handler"
	"github.com/AbelardoOk/PlanTracker/internal/modules/repo"
	"github.com/AbelardoOk/PlanTracker/internal/modules/service"
	"github.com/AbelardoOk/PlanTracker/internal/router"
	"github.com/AbelardoOk/PlanTracker/internal/telemetry"
)

func BuildContainer() *do.Injector {
	inj := do.New()

	// config
	do.Provide(inj, func(i *do.Injector) (*config.Config, error) {
		return config.Load()
	})

	// logger
	do.Provide(inj, func(i *do.Injector) (*zap.Logger, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return logger.New(cfg.Log.Level)
	})

	// metrics
	do.Provide(inj, func(i *do.Injector) (*telemetry.Metrics, error) {
		return telemetry.NewMetrics()
	})

	// DB
	do.Provide(inj, func(i *do.Injector) (*gorm.DB, error) {
		cfg := do.MustInvoke[*config.Config](i)
		log := do.MustInvoke[*zap.Logger](i)
		d, err := db.New(cfg)
		if err != nil {
			return nil, err
		}
		if cfg.Telemetry.Enabled {
			if err := db.RegisterOpenTelemetryPlugin(d); err != nil {
				log.Warn("gorm tracing disabled", zap.Error(err))
			}
		}
		// [optional] auto migrate
		if cfg.Database.AutoMigrate {
			if err := Migrate(context.Background(), d, log); err != nil {
				return nil, err
			}
		}
		return d, nil
	})

	// Redis
	do.Provide(inj, func(i *do.Injector) (*redis.Client, error) {
		cfg := do.MustInvoke[*config.Config](i)
		log := do.MustInvoke[*zap.Logger](i)
		rdb, err := cache.New(context.Background(), cfg)
		if err != nil {
			return nil, err
		}
		if cfg.Telemetry.Enabled {
			if err := cache.RegisterOpenTelemetryPlugin(rdb); err != nil {
				log.Warn("redis tracing disabled", zap.Error(err))
			}
		}
		return rdb, nil
	})

	// photo storage
	do.Provide(inj, func(i *do.Injector) (blob.Store, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return blob.Open(context.Background(), cfg)
	})

	// RabbitMQ Connection
	do.Provide(inj, func(i *do.Injector) (*amqp.Connection, error) {
		return mq.Dial(do.MustInvoke[*config.Config](i))
	})

	// record events; nil when RabbitMQ is disabled
	do.Provide(inj, func(i *do.Injector) (service.EventPublisher, error) {
		cfg := do.MustInvoke[*config.Config](i)
		if !cfg.RabbitMQ.Enabled {
			return nil, nil
		}
		p, err := mq.NewPublisher(
			do.MustInvoke[*amqp.Connection](i),
			do.MustInvoke[*zap.Logger](i),
			cfg,
		)
		if err != nil {
			return nil, err
		}
		return p, nil
	})

	// Repo
	do.Provide(inj, func(i *do.Injector) (repo.UserRepo, error) {
		return repo.NewUserRepo(do.MustInvoke[*gorm.DB](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (repo.SessionRepo, error) {
		return repo.NewSessionRepo(do.MustInvoke[*redis.Client](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (repo.ProjectRepo, error) {
		return repo.NewProjectRepo(do.MustInvoke[*gorm.DB](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (repo.PlantRepo, error) {
		return repo.NewPlantRepo(do.MustInvoke[*gorm.DB](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (repo.VisitorRepo, error) {
		return repo.NewVisitorRepo(do.MustInvoke[*gorm.DB](i)), nil
	})

	// Service
	do.Provide(inj, func(i *do.Injector) (service.UserService, error) {
		return service.NewUserService(
			do.MustInvoke[repo.UserRepo](i),
			do.MustInvoke[repo.SessionRepo](i),
			do.MustInvoke[*config.Config](i),
			do.MustInvoke[*zap.Logger](i),
			do.MustInvoke[*telemetry.Metrics](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.ProjectService, error) {
		return service.NewProjectService(
			do.MustInvoke[repo.ProjectRepo](i),
			do.MustInvoke[repo.UserRepo](i),
			do.MustInvoke[blob.Store](i),
			do.MustInvoke[service.EventPublisher](i),
			do.MustInvoke[*config.Config](i),
			do.MustInvoke[*zap.Logger](i),
			do.MustInvoke[*telemetry.Metrics](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.PlantService, error) {
		return service.NewPlantService(
			do.MustInvoke[repo.PlantRepo](i),
			do.MustInvoke[repo.ProjectRepo](i),
			do.MustInvoke[blob.Store](i),
			do.MustInvoke[service.EventPublisher](i),
			do.MustInvoke[*config.Config](i),
			do.MustInvoke[*zap.Logger](i),
			do.MustInvoke[*telemetry.Metrics](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.VisitorService, error) {
		return service.NewVisitorService(
			do.MustInvoke[repo.VisitorRepo](i),
			do.MustInvoke[repo.PlantRepo](i),
			do.MustInvoke[blob.Store](i),
			do.MustInvoke[service.EventPublisher](i),
			do.MustInvoke[*config.Config](i),
			do.MustInvoke[*zap.Logger](i),
			do.MustInvoke[*telemetry.Metrics](i),
		), nil
	})

	// Handler
	do.Provide(inj, func(i *do.Injector) (*handler.AuthHandler, error) {
		return handler.NewAuthHandler(do.MustInvoke[service.UserService](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.ProjectHandler, error) {
		return handler.NewProjectHandler(do.MustInvoke[service.ProjectService](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.PlantHandler, error) {
		return handler.NewPlantHandler(
			do.MustInvoke[service.PlantService](i),
			do.MustInvoke[*config.Config](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.VisitorHandler, error) {
		return handler.NewVisitorHandler(
			do.MustInvoke[service.VisitorService](i),
			do.MustInvoke[*config.Config](i),
		), nil
	})

	// Router
	do.Provide(inj, func(i *do.Injector) (*router.RouterDeps, error) {
		return &router.RouterDeps{
			Config:         do.MustInvoke[*config.Config](i),
			Log:            do.MustInvoke[*zap.Logger](i),
			Metrics:        do.MustInvoke[*telemetry.Metrics](i),
			UserService:    do.MustInvoke[service.UserService](i),
			AuthHandler:    do.MustInvoke[*handler.AuthHandler](i),
			ProjectHandler: do.MustInvoke[*handler.ProjectHandler](i),
			PlantHandler:   do.MustInvoke[*handler.PlantHandler](i),
			VisitorHandler: do.MustInvoke[*handler.VisitorHandler](i),
		}, nil
	})
	return inj
}
