package apiapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/mangala-lk/backend/internal/config"
	mongoinfra "github.com/mangala-lk/backend/internal/infra/mongodb"
	s3infra "github.com/mangala-lk/backend/internal/infra/s3"
	"github.com/mangala-lk/backend/internal/jobs/outbox"
	mongorepo "github.com/mangala-lk/backend/internal/repo/mongodb"
	pgrepo "github.com/mangala-lk/backend/internal/repo/postgres"
	redrepo "github.com/mangala-lk/backend/internal/repo/redis"
	activitysvc "github.com/mangala-lk/backend/internal/services/activity"
	authsvc "github.com/mangala-lk/backend/internal/services/auth"
	convsvc "github.com/mangala-lk/backend/internal/services/conversations"
	notifsvc "github.com/mangala-lk/backend/internal/services/notifications"
	photosvc "github.com/mangala-lk/backend/internal/services/photos"
	profilesvc "github.com/mangala-lk/backend/internal/services/profiles"
	proposalsvc "github.com/mangala-lk/backend/internal/services/proposals"
	usersvc "github.com/mangala-lk/backend/internal/services/users"
)

type App struct {
	cfg          config.Config
	logger       *zap.Logger
	server       *http.Server
	postgres     *pgxpool.Pool
	mongo        *mongo.Client
	redis        *goredis.Client
	outboxWorker *outbox.Worker
	httpRouter   http.Handler
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	r := chi.NewRouter()
	ApplyMiddlewares(r, cfg.CORS, log)

	var pool *pgxpool.Pool
	if p, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN); err != nil {
		log.Warn("postgres init failed, continuing in degraded mode", zap.Error(err))
	} else {
		pool = p
	}

	var mongoClient *mongo.Client
	var mongoDB *mongo.Database
	if c, err := mongoinfra.NewClient(ctx, cfg.Mongo.URI); err != nil {
		log.Warn("mongo init failed, continuing in degraded mode", zap.Error(err))
	} else {
		mongoClient = c
		mongoDB = c.Database(cfg.Mongo.Database)
	}

	redisClient := redrepo.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	sessionRepo := redrepo.NewSessionRepo(redisClient)

	userRepo := pgrepo.NewUserRepo(pool)
	profileRepo := pgrepo.NewProfileRepo(pool)
	photoRepo := pgrepo.NewPhotoRepo(pool)
	proposalRepo := pgrepo.NewProposalRepo(pool)
	outboxRepo := pgrepo.NewOutboxRepo(pool)

	jwtManager := authsvc.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTAccessTTL)
	authService := authsvc.NewService(jwtManager, userRepo, sessionRepo, cfg.Auth.RefreshTTL)
	profileService := profilesvc.NewService(pool, profileRepo, userRepo)
	photoService := photosvc.NewService(photoRepo, profileRepo, newPhotoStorage(cfg, log), log)
	proposalService := proposalsvc.NewService(pool, proposalRepo, userRepo, outboxRepo)

	var (
		conversationService *convsvc.Service
		notificationService *notifsvc.Service
		activityService     *activitysvc.Service
		userService         *usersvc.Service
		outboxWorker        *outbox.Worker
	)
	if mongoDB != nil {
		conversationRepo := mongorepo.NewConversationRepo(mongoDB)
		notificationRepo := mongorepo.NewNotificationRepo(mongoDB)
		activityRepo := mongorepo.NewActivityRepo(mongoDB)

		ensureIndexes(ctx, log, map[string]indexEnsurer{
			"conversations": conversationRepo,
			"notifications": notificationRepo,
			"activity_log":  activityRepo,
		})

		conversationService = convsvc.NewService(pool, conversationRepo, userRepo, outboxRepo)
		notificationService = notifsvc.NewService(notificationRepo)
		activityService = activitysvc.NewService(activityRepo)
		userService = usersvc.NewService(pool, userRepo, profileRepo, photoRepo, notificationRepo, conversationRepo, outboxRepo)
		outboxWorker = outbox.NewWorker(
			outboxRepo,
			notificationRepo,
			activityRepo,
			cfg.Outbox.PollInterval,
			cfg.Outbox.BatchSize,
			cfg.Outbox.MaxAttempts,
			log,
		)
	} else {
		log.Warn("mongo-backed services disabled, continuing in degraded mode")
	}

	RegisterRoutes(r, Dependencies{
		AuthService:         authService,
		ProfileService:      profileService,
		PhotoService:        photoService,
		ProposalService:     proposalService,
		ConversationService: conversationService,
		NotificationService: notificationService,
		ActivityService:     activityService,
		UserService:         userService,
		Logger:              log,
		Config:              cfg,
	})

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	return &App{
		cfg:          cfg,
		logger:       log,
		server:       server,
		postgres:     pool,
		mongo:        mongoClient,
		redis:        redisClient,
		outboxWorker: outboxWorker,
		httpRouter:   r,
	}, nil
}

// newPhotoStorage picks the photo file backend from config. Local disk is
// the default; "s3" switches to the MinIO-compatible object store.
func newPhotoStorage(cfg config.Config, log *zap.Logger) photosvc.Storage {
	if cfg.Uploads.Kind == "s3" {
		client, err := s3infra.NewClient(s3infra.Config{
			Endpoint:  cfg.S3.Endpoint,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			UseSSL:    cfg.S3.UseSSL,
		})
		if err != nil {
			log.Warn("s3 init failed, falling back to local uploads", zap.Error(err))
			return photosvc.NewLocalStorage(cfg.Uploads.Dir, cfg.Uploads.BaseURL)
		}
		return photosvc.NewS3Storage(client, cfg.S3.Bucket)
	}
	return photosvc.NewLocalStorage(cfg.Uploads.Dir, cfg.Uploads.BaseURL)
}

type indexEnsurer interface {
	EnsureIndexes(ctx context.Context) error
}

func ensureIndexes(ctx context.Context, log *zap.Logger, repos map[string]indexEnsurer) {
	for name, repo := range repos {
		if err := repo.EnsureIndexes(ctx); err != nil {
			log.Warn("ensure mongo indexes failed", zap.String("collection", name), zap.Error(err))
		}
	}
}

func (a *App) Run() error {
	a.logger.Info("api server started", zap.String("addr", a.cfg.HTTP.Addr))
	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// RunOutboxWorker drains the transactional outbox until ctx is cancelled.
// It is a no-op when the worker could not be built (degraded mode).
func (a *App) RunOutboxWorker(ctx context.Context) error {
	if a.outboxWorker == nil {
		a.logger.Warn("outbox worker is not configured, skipping")
		return nil
	}
	return a.outboxWorker.Run(ctx)
}

func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error

	if err := a.server.Shutdown(ctx); err != nil {
		shutdownErr = err
	}
	if a.postgres != nil {
		a.postgres.Close()
	}
	if a.mongo != nil {
		if err := a.mongo.Disconnect(ctx); err != nil && shutdownErr == nil {
			shutdownErr = err
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && shutdownErr == nil {
			shutdownErr = err
		}
	}

	return shutdownErr
}

func (a *App) Handler() http.Handler {
	return a.httpRouter
}
