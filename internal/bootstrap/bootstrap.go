package bootstrap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	appAuth "github.com/yigit/schooladmin/internal/app/auth"
	appControllers "github.com/yigit/schooladmin/internal/app/controllers"
	appMigrations "github.com/yigit/schooladmin/internal/app/migrations"
	appRepos "github.com/yigit/schooladmin/internal/app/repositories"
	"github.com/yigit/schooladmin/internal/app/repositories/memory"
	"github.com/yigit/schooladmin/internal/app/repositories/postgres"
	appRoutes "github.com/yigit/schooladmin/internal/app/routes"
	appServices "github.com/yigit/schooladmin/internal/app/services"
	"github.com/yigit/schooladmin/internal/config"
	"github.com/yigit/schooladmin/internal/db"
	appMiddleware "github.com/yigit/schooladmin/internal/middleware"
	pkgAuth "github.com/yigit/schooladmin/internal/pkg/auth"
	"github.com/yigit/schooladmin/internal/pkg/email"
	"github.com/yigit/schooladmin/internal/pkg/helpers"
	"github.com/yigit/schooladmin/internal/pkg/logger"
	"github.com/yigit/schooladmin/internal/pkg/validation"
	"github.com/yigit/schooladmin/internal/seed"
)

// DefaultConfigPath is used when CONFIG_PATH is unset
var DefaultConfigPath = filepath.Join("configs", "config.yaml")

// Dependencies holds all the application dependencies
type Dependencies struct {
	Store             appRepos.Store
	Redis             *redis.Client
	Limiter           appMiddleware.Limiter
	JWTService        *pkgAuth.JWTService
	AuthzService      *appAuth.AuthorizationService
	Mailer            email.EmailService
	AuthService       *appServices.AuthService
	CourseService     *appServices.CourseService
	AssignmentService *appServices.AssignmentService
	ReportService     *appServices.ReportService
	CommService       *appServices.CommunicationService
	DirectoryService  *appServices.DirectoryService
	Controllers       appRoutes.Controllers
	AuthMiddleware    *appMiddleware.AuthMiddleware
	Logger            zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = DefaultConfigPath
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Str("path", configPath).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	lgr := logger.Configure(logger.Config{
		Level:  logger.ParseLevel(cfg.Logging.Level),
		Pretty: cfg.Logging.Format == "text",
	})
	lgr.Info().Str("logLevel", cfg.Logging.Level).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupStore opens the configured backend, applies migrations and seeds demo data.
func SetupStore(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (appRepos.Store, error) {
	var store appRepos.Store
	switch cfg.Database.Driver {
	case config.DriverMemory:
		lgr.Warn().Msg("Using the in-memory store; data is lost on restart")
		store = memory.NewStore()
	default:
		lgr.Info().Msg("Establishing database connection...")
		database, err := db.NewPostgresDB(cfg)
		if err != nil {
			lgr.Error().Err(err).Msg("Failed to connect to database")
			return nil, err
		}
		lgr.Info().Msg("Database connection successfully established.")

		if err := runMigrations(ctx, database, cfg.Database.MigrationsDir, lgr); err != nil {
			database.Close()
			return nil, err
		}
		store = postgres.NewStore(database)
	}

	if cfg.Seed.Enabled {
		if err := seed.CreateDefaultData(ctx, store, cfg.Institution.Name, lgr); err != nil {
			// Seeding is a convenience; the server still starts without it
			lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
		}
	}
	return store, nil
}

func runMigrations(ctx context.Context, database *db.PostgresDB, dir string, lgr zerolog.Logger) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		lgr.Error().Str("path", dir).Msg("Migrations directory not found")
		return fmt.Errorf("migrations directory not found at %s: %w", dir, err)
	}

	lgr.Info().Str("path", dir).Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(database.Pool, lgr)
	if err := migrator.MigrateFromDirectory(ctx, dir); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		return fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")
	return nil
}

// adminPasswordHash returns the configured bcrypt hash, hashing the plain
// password when no hash is given.
func adminPasswordHash(cfg *config.Config) (string, error) {
	if cfg.Admin.PasswordHash != "" {
		return cfg.Admin.PasswordHash, nil
	}
	hash, err := pkgAuth.HashPassword(cfg.Admin.Password)
	if err != nil {
		return "", fmt.Errorf("failed to hash admin password: %w", err)
	}
	return hash, nil
}

// setupLimiter picks redis when an address is configured, process memory otherwise
func setupLimiter(cfg *config.Config, deps *Dependencies) {
	if !cfg.RateLimit.Enabled {
		return
	}
	if cfg.RateLimit.RedisAddr == "" {
		deps.Limiter = appMiddleware.NewMemoryLimiter(cfg.RateLimit.PerMinute)
		return
	}

	deps.Redis = appMiddleware.NewRedisClient(cfg.RateLimit.RedisAddr)
	limiter := appMiddleware.NewRedisLimiter(deps.Redis, cfg.RateLimit.PerMinute)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if !limiter.Healthy(ctx) {
		deps.Logger.Warn().Str("addr", cfg.RateLimit.RedisAddr).Msg("Redis unreachable at startup; requests pass until it recovers")
	}
	deps.Limiter = limiter
}

// BuildDependencies initializes application services and controllers over store.
func BuildDependencies(cfg *config.Config, store appRepos.Store, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Store: store, Logger: lgr}

	adminHash, err := adminPasswordHash(cfg)
	if err != nil {
		return nil, err
	}

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:       cfg.JWT.Secret,
		AccessTokenExp:  helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 24*time.Hour),
		RefreshTokenExp: helpers.ParseDuration(cfg.JWT.RefreshTokenExpiration, 7*24*time.Hour),
		TokenIssuer:     cfg.JWT.Issuer,
	})

	deps.Mailer = email.NewEmailService(email.SMTPConfig{
		Host:        cfg.SMTP.Host,
		Port:        cfg.SMTP.Port,
		Username:    cfg.SMTP.Username,
		Password:    cfg.SMTP.Password,
		FromName:    cfg.SMTP.FromName,
		FromEmail:   cfg.SMTP.FromEmail,
		UseTLS:      cfg.SMTP.UseTLS,
		Institution: cfg.Institution.Name,
	}, lgr.With().Str("component", "email").Logger())

	setupLimiter(cfg, deps)

	deps.AuthzService = appAuth.NewAuthorizationService(store.Repos().Users)
	deps.AuthService = appServices.NewAuthService(store, deps.JWTService, deps.Mailer, appServices.AccountConfig{
		AdminID:            cfg.Admin.ID,
		AdminPasswordHash:  adminHash,
		DefaultDesignation: cfg.Institution.DefaultDesignation,
		Institution:        cfg.Institution.Name,
	}, lgr)
	deps.CourseService = appServices.NewCourseService(store, deps.AuthzService, lgr)
	deps.AssignmentService = appServices.NewAssignmentService(store, lgr)
	deps.ReportService = appServices.NewReportService(store, lgr)
	deps.CommService = appServices.NewCommunicationService(store, lgr)
	deps.DirectoryService = appServices.NewDirectoryService(store, lgr)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)

	var redisHealth appControllers.HealthChecker
	if rl, ok := deps.Limiter.(*appMiddleware.RedisLimiter); ok {
		redisHealth = rl
	}
	deps.Controllers = appRoutes.Controllers{
		Auth:          appControllers.NewAuthController(deps.AuthService, lgr),
		Course:        appControllers.NewCourseController(deps.CourseService, lgr),
		Assignment:    appControllers.NewAssignmentController(deps.AssignmentService, lgr),
		Communication: appControllers.NewCommunicationController(deps.CommService, deps.ReportService, lgr),
		Directory:     appControllers.NewDirectoryController(deps.DirectoryService, lgr),
		Health:        appControllers.NewHealthController(store, redisHealth),
	}

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) (*gin.Engine, error) {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	}

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := validation.Register(v); err != nil {
			return nil, fmt.Errorf("failed to register validation rules: %w", err)
		}
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		appMiddleware.RequestID(),
		appMiddleware.RequestLogger(lgr, "/health", "/metrics"),
		appMiddleware.Metrics(),
		appMiddleware.SecurityHeaders(),
		cors.New(corsConfig(cfg)),
	)
	if deps.Limiter != nil {
		router.Use(appMiddleware.RateLimit(deps.Limiter))
	}

	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware)
	return router, nil
}

func corsConfig(cfg *config.Config) cors.Config {
	c := cors.Config{
		AllowOrigins:     cfg.Server.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", appMiddleware.RequestIDHeader},
		ExposeHeaders:    []string{appMiddleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(c.AllowOrigins) == 0 {
		c.AllowOrigins = nil
		c.AllowAllOrigins = true
		c.AllowCredentials = false
	}
	return c
}
