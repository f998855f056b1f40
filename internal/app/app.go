package app

import (
	"context"
	"log/slog"

	httpapp "github.com/eternal-silence00/Black-Needle/internal/app/http"
	"github.com/eternal-silence00/Black-Needle/internal/config"
	"github.com/eternal-silence00/Black-Needle/internal/repository"
	articlesvc "github.com/eternal-silence00/Black-Needle/internal/services/article_service"
	"github.com/eternal-silence00/Black-Needle/internal/services/auth"
	catalogsvc "github.com/eternal-silence00/Black-Needle/internal/services/catalog_service"
	productsvc "github.com/eternal-silence00/Black-Needle/internal/services/product_service"
	tokensvc "github.com/eternal-silence00/Black-Needle/internal/services/token_service"
	filestorage "github.com/eternal-silence00/Black-Needle/internal/storage/filestorage"
	"github.com/eternal-silence00/Black-Needle/internal/storage/postgresql"
	redisstorage "github.com/eternal-silence00/Black-Needle/internal/storage/redis"
	httprouters "github.com/eternal-silence00/Black-Needle/internal/transport/http"
)

type App struct {
	HTTPServer *httpapp.Server
	storage    *postgresql.Storage
	redis      *redisstorage.Client
}

func New(log *slog.Logger, cfg *config.Config) *App {
	storage, err := postgresql.New(context.Background(), cfg.DSN)
	if err != nil {
		panic(err)
	}

	redisClient := redisstorage.NewClient(cfg.Redis.RedisAddr, cfg.Redis.RedisPassword, cfg.Redis.RedisDB)

	fileStorage, err := filestorage.NewLocalFileStorage(cfg.FileStorage.BaseDir)
	if err != nil {
		panic(err)
	}

	repo := repository.NewRepository(storage.Pool)
	tokenRepo := repository.NewRedisTokenRepo(redisClient)

	authService := auth.New(log, repo.User)
	tokenService := tokensvc.NewTokenService(tokenRepo, cfg.TokenSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	catalogService := catalogsvc.NewCatalogService(log, repo.Product)
	productService := productsvc.NewProductService(log, repo.Product, fileStorage, catalogService)
	articleService := articlesvc.NewArticleService(log, repo.Article)

	routers := httprouters.NewRouter(log, authService, tokenService, catalogService, productService, articleService)

	server := httpapp.New(log, cfg.SessionSecret, cfg.HTTP.Host, cfg.HTTP.Port, cfg.FileStorage.BaseDir, routers)
	server.BuildRouters()

	return &App{
		HTTPServer: server,
		storage:    storage,
		redis:      redisClient,
	}
}

func (a *App) Stop() {
	if err := a.HTTPServer.Stop(); err != nil {
		panic(err)
	}

	a.storage.Stop()

	_ = a.redis.Close()
}
