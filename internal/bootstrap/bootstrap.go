package bootstrap

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	appAuth "github.com/yigit/coursehub/internal/app/auth"
	appControllers "github.com/yigit/coursehub/internal/app/controllers"
	appMigrations "github.com/yigit/coursehub/internal/app/migrations"
	appRepos "github.com/yigit/coursehub/internal/app/repositories"
	"github.com/yigit/coursehub/internal/app/repositories/memory"
	appRoutes "github.com/yigit/coursehub/internal/app/routes"
	appServices "github.com/yigit/coursehub/internal/app/services"
	"github.com/yigit/coursehub/internal/config"
	"github.com/yigit/coursehub/internal/db"
	appMiddleware "github.com/yigit/coursehub/internal/middleware"
	pkgAuth "github.com/yigit/coursehub/internal/pkg/auth"
	"github.com/yigit/coursehub/internal/pkg/cache"
	"github.com/yigit/coursehub/internal/pkg/events"
	"github.com/yigit/coursehub/internal/pkg/logger"
	"github.com/yigit/coursehub/internal/pkg/metrics"
	"github.com/yigit/coursehub/internal/seed"
)

const redisPingTimeout = 3 * time.Second

// Store is the selected storage backend
type Store struct {
	Repos  *appRepos.Repositories
	Pinger appRoutes.Pinger
	close  func()
}

// Close releases the backend's connections
func (s *Store) Close() {
	if s != nil && s.close != nil {
		s.close()
	}
}

// Dependencies holds all the application dependencies
type Dependencies struct {
	Store         *Store
	Metrics       *metrics.Metrics
	Cache         cache.CourseCache
	Redis         *redis.Client
	Publisher     events.Publisher
	JWTService    *pkgAuth.JWTService
	Services      *appServices.Services
	AccessControl *appMiddleware.AccessControl
	Controllers   *appRoutes.Controllers
	Logger        zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger(configPath string) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.LogLevel(strings.ToLower(cfg.Logging.Level))
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	lgr := logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: prettyLog,
	})
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupStore opens the configured storage backend and runs migrations.
func SetupStore(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*Store, error) {
	if cfg.Database.Driver == config.DriverMemory {
		lgr.Warn().Msg("Using in-memory store, data is lost on restart")
		mem := memory.NewStore()
		return &Store{Repos: mem.Repositories(), Pinger: mem}, nil
	}

	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	lgr.Info().Msg("Running database migrations...")
	if err := appMigrations.NewMigrator(database.Pool, lgr).Migrate(ctx); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		database.Close()
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	return &Store{Repos: appRepos.NewRepositories(database), Pinger: database, close: database.Close}, nil
}

// SetupCache connects the Redis course cache. An empty address or an
// unreachable server leaves caching disabled.
func SetupCache(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (cache.CourseCache, *redis.Client) {
	if cfg.Redis.Addr == "" {
		lgr.Info().Msg("Redis address not configured, course cache disabled")
		return cache.NoopCourseCache{}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		lgr.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("Redis unreachable, course cache disabled")
		_ = client.Close()
		return cache.NoopCourseCache{}, nil
	}

	lgr.Info().Str("addr", cfg.Redis.Addr).Dur("ttl", cfg.RedisTTL()).Msg("Course cache enabled")
	return cache.NewRedisCourseCache(client, cfg.RedisTTL()), client
}

// SetupPublisher creates the Kafka event publisher when brokers are configured
func SetupPublisher(cfg *config.Config, lgr zerolog.Logger) events.Publisher {
	if len(cfg.Kafka.Brokers) == 0 {
		lgr.Info().Msg("Kafka brokers not configured, domain events disabled")
		return events.NoopPublisher{}
	}

	lgr.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("Publishing domain events to Kafka")
	return events.NewKafkaPublisher(events.KafkaConfig{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.Topic,
		Logger:  lgr,
	})
}

// BuildDependencies initializes services, middleware and controllers on top of store.
func BuildDependencies(ctx context.Context, cfg *config.Config, store *Store, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Store:   store,
		Logger:  lgr,
		Metrics: metrics.New(),
	}

	deps.Cache, deps.Redis = SetupCache(ctx, cfg, lgr)
	deps.Publisher = SetupPublisher(cfg, lgr)

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: cfg.AccessTokenTTL(),
		TokenIssuer:    cfg.JWT.Issuer,
	})

	deps.Services = appServices.NewServices(appServices.Dependencies{
		Repos:     store.Repos,
		Hasher:    pkgAuth.NewPasswordHasher(cfg.Auth.BcryptCost),
		Tokens:    deps.JWTService,
		Cache:     deps.Cache,
		Publisher: deps.Publisher,
		Metrics:   deps.Metrics,
		Logger:    lgr,
	})

	if err := seed.CreateDefaultData(ctx, deps.Services.Auth, cfg.Auth.AdminUsername, cfg.Auth.AdminPassword, lgr); err != nil {
		deps.closeClients()
		return nil, fmt.Errorf("failed to seed admin account: %w", err)
	}

	deps.AccessControl = appMiddleware.NewAccessControl(deps.JWTService, appAuth.NewDefaultPolicy(), deps.Metrics)
	deps.Controllers = &appRoutes.Controllers{
		Auth:     appControllers.NewAuthController(deps.Services.Auth, lgr),
		Courses:  appControllers.NewCourseController(deps.Services.Courses),
		Students: appControllers.NewStudentController(deps.Services.Students),
	}

	return deps, nil
}

// Close releases the external clients held by deps, then the store
func (d *Dependencies) Close() {
	d.closeClients()
	d.Store.Close()
}

func (d *Dependencies) closeClients() {
	if d.Publisher != nil {
		if err := d.Publisher.Close(); err != nil {
			d.Logger.Error().Err(err).Msg("Failed to close event publisher")
		}
	}
	if d.Redis != nil {
		if err := d.Redis.Close(); err != nil {
			d.Logger.Error().Err(err).Msg("Failed to close redis client")
		}
	}
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		appMiddleware.RequestLogger(deps.Logger, deps.Metrics),
		appMiddleware.Recovery(),
		deps.AccessControl.Authenticate(),
		deps.AccessControl.Authorize(),
	)

	appRoutes.SetupSwagger(router)
	appRoutes.SetupRouter(router, deps.Controllers, deps.Store.Pinger, deps.Metrics)

	return router
}
