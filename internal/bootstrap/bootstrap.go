package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/dcruz/schoolgate/docs" // Import generated swagger docs
	"github.com/dcruz/schoolgate/internal/app/authz"
	appControllers "github.com/dcruz/schoolgate/internal/app/controllers"
	appMigrations "github.com/dcruz/schoolgate/internal/app/migrations"
	appRepos "github.com/dcruz/schoolgate/internal/app/repositories"
	appRoutes "github.com/dcruz/schoolgate/internal/app/routes"
	appServices "github.com/dcruz/schoolgate/internal/app/services"
	"github.com/dcruz/schoolgate/internal/config"
	"github.com/dcruz/schoolgate/internal/db"
	appMiddleware "github.com/dcruz/schoolgate/internal/middleware"
	pkgAuth "github.com/dcruz/schoolgate/internal/pkg/auth"
	"github.com/dcruz/schoolgate/internal/pkg/email"
	"github.com/dcruz/schoolgate/internal/pkg/filestorage"
	"github.com/dcruz/schoolgate/internal/pkg/helpers"
	"github.com/dcruz/schoolgate/internal/pkg/logger"
	"github.com/dcruz/schoolgate/internal/pkg/validation"
	"github.com/dcruz/schoolgate/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	AuthService         *appServices.AuthService
	AdmissionService    *appServices.AdmissionService
	EnrollmentService   *appServices.EnrollmentService
	UserService         *appServices.UserService
	RoleService         *appServices.RoleService
	NumberService       *appServices.NumberService
	AuthController      *appControllers.AuthController
	AdmissionController *appControllers.AdmissionController
	StudentController   *appControllers.StudentController
	UserController      *appControllers.UserController
	RoleController      *appControllers.RoleController
	AuthMiddleware      *appMiddleware.AuthMiddleware
	Repos               *appRepos.Repositories
	JWTService          *pkgAuth.JWTService
	AuthzService        *authz.AuthorizationService
	EmailService        email.EmailService
	FileStorage         *filestorage.LocalStorage
	Logger              zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.LogLevel(strings.ToLower(cfg.Logging.Level))
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: prettyLog,
	})

	lgr := log.Logger
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection, runs migrations and
// seeds default data.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*pgxpool.Pool, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	dbPool := database.Pool

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := dbPool.Ping(ctx); err != nil {
		lgr.Error().Err(err).Msg("Failed to ping database")
		dbPool.Close()
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	lgr.Info().Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(dbPool)

	migrationsDir := "migrations"
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	if err := migrator.MigrateFromDirectory(migrationsDir); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}

	lgr.Info().Msg("Database migrations successfully applied.")

	if err := seed.CreateDefaultData(context.Background(), dbPool, cfg, lgr); err != nil {
		// Seeding problems should not keep the server from starting
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}

	return dbPool, nil
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(cfg *config.Config, dbPool *pgxpool.Pool, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	deps.Repos = appRepos.NewRepositories(dbPool)

	// File storage serves stored documents under the /uploads URL path
	baseURL := cfg.Server.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost:" + cfg.Server.Port
	}
	var err error
	deps.FileStorage, err = filestorage.NewLocalStorage(cfg.Server.StoragePath, baseURL+"/uploads")
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	deps.EmailService = email.NewEmailService(email.SMTPConfig{
		Host:      cfg.SMTP.Host,
		Port:      cfg.SMTP.Port,
		Username:  cfg.SMTP.Username,
		Password:  cfg.SMTP.Password,
		FromName:  cfg.SMTP.FromName,
		FromEmail: cfg.SMTP.FromEmail,
	}, lgr)

	deps.AuthzService = authz.NewAuthorizationService(deps.Repos.UserRepository)

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:       cfg.JWT.Secret,
		AccessTokenExp:  helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 1*time.Hour),
		RefreshTokenExp: helpers.ParseDuration(cfg.JWT.RefreshTokenExpiration, 720*time.Hour),
		TokenIssuer:     cfg.JWT.Issuer,
	})

	deps.AuthService = appServices.NewAuthService(
		deps.Repos.UserRepository,
		deps.Repos.TokenRepository,
		deps.JWTService,
		deps.AuthzService,
	)

	deps.NumberService = appServices.NewNumberService(deps.Repos.ApplicationRepository)
	deps.EnrollmentService = appServices.NewEnrollmentService(
		dbPool,
		deps.Repos.StudentRepository,
		deps.Repos.PersonRepository,
		deps.EmailService,
	)
	deps.AdmissionService = appServices.NewAdmissionService(
		dbPool,
		deps.Repos.PersonRepository,
		deps.Repos.ApplicationRepository,
		deps.NumberService,
		deps.EnrollmentService,
		deps.FileStorage,
		deps.EmailService,
	)
	deps.UserService = appServices.NewUserService(deps.Repos.UserRepository, deps.Repos.RoleRepository)
	deps.RoleService = appServices.NewRoleService(deps.Repos.RoleRepository, deps.Repos.UserRepository)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService, deps.AuthzService)

	deps.AuthController = appControllers.NewAuthController(deps.AuthService)
	deps.AdmissionController = appControllers.NewAdmissionController(deps.AdmissionService)
	deps.StudentController = appControllers.NewStudentController(deps.EnrollmentService)
	deps.UserController = appControllers.NewUserController(deps.UserService)
	deps.RoleController = appControllers.NewRoleController(deps.RoleService)

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	validation.RegisterCustomValidators()

	router := gin.Default()

	// Setup Swagger
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json"), ginSwagger.DefaultModelsExpandDepth(1)))

	appRoutes.SetupRouter(router,
		deps.AuthController,
		deps.AdmissionController,
		deps.StudentController,
		deps.UserController,
		deps.RoleController,
		deps.AuthMiddleware,
	)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})

	return router
}
