package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	httptransport "github.com/spec-kit/marketplace-service/internal/api/http"
	"github.com/spec-kit/marketplace-service/internal/api/http/handlers"
	"github.com/spec-kit/marketplace-service/internal/auth"
	"github.com/spec-kit/marketplace-service/internal/blobstore"
	"github.com/spec-kit/marketplace-service/internal/cache"
	"github.com/spec-kit/marketplace-service/internal/config"
	"github.com/spec-kit/marketplace-service/internal/events"
	"github.com/spec-kit/marketplace-service/internal/observability"
	"github.com/spec-kit/marketplace-service/internal/persistence"
	"github.com/spec-kit/marketplace-service/internal/repository"
	"github.com/spec-kit/marketplace-service/internal/repository/memory"
	"github.com/spec-kit/marketplace-service/internal/service"
	"github.com/spec-kit/marketplace-service/internal/worker"
)

type repositories struct {
	users    repository.UserRepository
	listings repository.ListingRepository
	media    repository.MediaRepository
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metrics := observability.NewMetrics()

	var (
		pg    *persistence.Postgres
		repos repositories
	)
	switch cfg.Store.Driver {
	case config.StoreDriverMemory:
		logger.Warn("using in-memory store; data is lost on restart")
		store := memory.New(nil)
		repos = repositories{users: store.Users(), listings: store.Listings(), media: store.Media()}
	default:
		pg, err = persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			logger.Fatal("failed to connect postgres", zap.Error(err))
		}
		defer pg.Close()

		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
				logger.Fatal("failed to run migrations", zap.Error(err))
			}
		}

		pool := pg.PoolHandle()
		repos = repositories{
			users:    repository.NewUserRepository(pool),
			listings: repository.NewListingRepository(pool),
			media:    repository.NewMediaRepository(pool),
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()
	listingCache := cache.NewListingCache(redis.Client, cfg.Cache.ListingTTL(), logger)

	var blobs blobstore.Store
	if cfg.Blob.Enabled() {
		s3Store, err := blobstore.NewS3Store(ctx, cfg.Blob, logger)
		if err != nil {
			logger.Fatal("failed to init blob store", zap.Error(err))
		}
		blobs = s3Store
	} else {
		logger.Warn("S3_BUCKET not set; uploads disabled")
	}

	hasher, err := auth.NewPasswordHasher(cfg.Auth.PasswordAlgorithm, cfg.Auth.BcryptCost)
	if err != nil {
		logger.Fatal("failed to init password hasher", zap.Error(err))
	}
	tokens, err := auth.NewTokenCodec(auth.TokenConfig{
		Secret:    cfg.Auth.JWTSecret,
		Algorithm: cfg.Auth.JWTAlgorithm,
		TTL:       cfg.Auth.AccessTokenTTL(),
	})
	if err != nil {
		logger.Fatal("failed to init token codec", zap.Error(err))
	}

	dispatcher := events.NewInMemoryDispatcher(logger)
	worker.StartListingWorker(dispatcher, listingCache, logger)

	authService := service.NewAuthService(service.AuthDependencies{
		UserRepo: repos.users,
		Hasher:   hasher,
		Tokens:   tokens,
		Metrics:  metrics,
		Logger:   logger,
	})
	listingService := service.NewListingService(service.ListingDependencies{
		ListingRepo: repos.listings,
		Cache:       listingCache,
		Dispatcher:  dispatcher,
		Metrics:     metrics,
		Logger:      logger,
	})
	mediaService := service.NewMediaService(service.MediaDependencies{
		ListingRepo: repos.listings,
		MediaRepo:   repos.media,
		BlobStore:   blobs,
		MaxBytes:    cfg.Upload.MaxBytes,
		Dispatcher:  dispatcher,
		Metrics:     metrics,
		Logger:      logger,
	})
	sessions := auth.NewSessionResolver(tokens, repos.users, nil)

	app := httptransport.NewApp(cfg.App.Name, mediaService.MaxBytes())
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Users:          handlers.NewUsersHandler(authService),
		Listings:       handlers.NewListingsHandler(listingService, mediaService),
		Uploads:        handlers.NewUploadsHandler(mediaService),
		AuthMiddleware: auth.NewAuthMiddleware(sessions, metrics),
		Metrics:        metrics,
	})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
