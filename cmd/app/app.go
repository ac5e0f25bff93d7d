package app

import (
	"context"
	"ssipfix/internal/config"
	"ssipfix/internal/database"
	"ssipfix/internal/logger"
	"ssipfix/internal/repository"
	"ssipfix/internal/service"
	"ssipfix/internal/storage"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Application struct {
	DB       database.MethodsDB
	Redis    *redis.Client
	Storage  storage.Storage
	Repo     *repository.Repository
	Services *service.Service
}

func newStorage(cfg *config.Config) storage.Storage {
	if cfg.Media.Backend == "minio" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		minioClient, err := storage.NewMinIOClient(ctx, cfg)
		if err != nil {
			logger.Log.Fatal("Failed to initialize MinIO", zap.Error(err))
		}
		return minioClient
	}

	return storage.NewLocalStorage(cfg.Media.Root)
}

func App(cfg *config.Config) *Application {
	// connection DB
	db, err := database.ConnectDB(cfg)
	if err != nil {
		logger.Log.Fatal("Failed to connect to database", zap.Error(err))
	}

	// connection Redis
	rdb, err := database.ConnectRedis(cfg)
	if err != nil {
		logger.Log.Fatal("Failed to connect to Redis", zap.Error(err))
	}

	store := newStorage(cfg)

	// enabling dependencies
	repo := repository.NewRepository(db.GetDB().DB, rdb, cfg.Session.TTL)

	services := service.NewService(repo, cfg, store, map[string]service.PingFunc{
		"postgres": db.HealthCheck,
		"redis": func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		},
	})

	return &Application{
		DB:       db,
		Redis:    rdb,
		Storage:  store,
		Repo:     repo,
		Services: services,
	}
}

func (a *Application) Close() {
	if err := a.Redis.Close(); err != nil {
		logger.WarnWithFields("Failed to close Redis client", err)
	}
	if err := a.DB.CloseDB(); err != nil {
		logger.WarnWithFields("Failed to close database", err)
	}
}
