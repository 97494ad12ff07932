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

	appControllers "github.com/yigit/academy/internal/app/controllers"
	appMigrations "github.com/yigit/academy/internal/app/migrations"
	appRepos "github.com/yigit/academy/internal/app/repositories"
	appRoutes "github.com/yigit/academy/internal/app/routes"
	appServices "github.com/yigit/academy/internal/app/services"
	"github.com/yigit/academy/internal/config"
	"github.com/yigit/academy/internal/db"
	"github.com/yigit/academy/internal/jobs"
	appMiddleware "github.com/yigit/academy/internal/middleware"
	pkgAuth "github.com/yigit/academy/internal/pkg/auth"
	"github.com/yigit/academy/internal/pkg/email"
	"github.com/yigit/academy/internal/pkg/filestorage"
	"github.com/yigit/academy/internal/pkg/helpers"
	"github.com/yigit/academy/internal/pkg/logger"
	"github.com/yigit/academy/internal/pkg/websocket"
	"github.com/yigit/academy/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos       *appRepos.Repositories
	JWTService  *pkgAuth.JWTService
	FileStorage *filestorage.LocalStorage
	Hub         *websocket.Hub

	AuthService         appServices.AuthService
	UserService         appServices.UserService
	NotificationService appServices.NotificationService
	AssignmentService   appServices.AssignmentService
	TrainingService     appServices.TrainingService
	MatchService        appServices.MatchService
	CalendarService     appServices.CalendarService
	AnnouncementService appServices.AnnouncementService
	FundraisingService  appServices.FundraisingService
	PerformanceService  appServices.PerformanceNoteService
	AnalyticsService    appServices.AnalyticsService
	ExportService       appServices.ExportService

	Controllers    appRoutes.Controllers
	AuthMiddleware *appMiddleware.AuthMiddleware
	Logger         zerolog.Logger
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

	lgr := logger.Get()
	lgr.Info().
		Str("logLevel", string(logLevel)).
		Str("logFormat", cfg.Logging.Format).
		Str("timezone", cfg.Location().String()).
		Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection, runs migrations and seeds the admin account.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*pgxpool.Pool, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	dbPool := database.Pool

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	migrationsDir := cfg.Database.MigrationsDir
	if migrationsDir == "" {
		migrationsDir = "migrations"
	}
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		dbPool.Close()
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	lgr.Info().Str("path", migrationsDir).Msg("Running database migrations...")
	if err := appMigrations.NewMigrator(dbPool).MigrateFromDirectory(ctx, migrationsDir); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		dbPool.Close()
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	admin := seed.AdminAccount{
		Email:    cfg.Academy.AdminEmail,
		Password: cfg.Academy.AdminPassword,
		FullName: cfg.Academy.AdminFullName,
	}
	if err := seed.EnsureDefaultAdmin(ctx, appRepos.NewUserRepository(dbPool), admin, lgr); err != nil {
		// A missing admin account does not stop the API from serving
		lgr.Error().Err(err).Msg("Failed to seed default admin, proceeding anyway...")
	}

	return dbPool, nil
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(cfg *config.Config, dbPool *pgxpool.Pool, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}
	loc := cfg.Location()

	deps.Repos = appRepos.NewRepositories(dbPool)
	repos := deps.Repos

	var err error
	deps.FileStorage, err = filestorage.NewLocalStorage(cfg.Server.StoragePath, cfg.PublicBaseURL()+"/uploads")
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:       cfg.JWT.Secret,
		AccessTokenExp:  helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 1*time.Hour),
		RefreshTokenExp: helpers.ParseDuration(cfg.JWT.RefreshTokenExpiration, 720*time.Hour),
		TokenIssuer:     cfg.JWT.Issuer,
	})

	emailService := email.NewEmailService(email.SMTPConfig{
		Host:        cfg.SMTP.Host,
		Port:        cfg.SMTP.Port,
		Username:    cfg.SMTP.Username,
		Password:    cfg.SMTP.Password,
		FromName:    cfg.SMTP.FromName,
		FromEmail:   cfg.SMTP.FromEmail,
		UseTLS:      cfg.SMTP.UseTLS,
		AcademyName: cfg.Academy.Name,
		FrontendURL: cfg.Academy.FrontendURL,
	}, logger.WithComponent("email"))

	deps.Hub = websocket.NewHub(logger.WithComponent("websocket"))

	deps.AuthService = appServices.NewAuthService(
		repos.UserRepository,
		repos.TokenRepository,
		repos.PasswordResetTokenRepository,
		deps.JWTService,
		emailService,
		logger.WithComponent("auth"),
	)
	deps.UserService = appServices.NewUserService(repos.UserRepository, deps.FileStorage, cfg.Academy.AvatarSize, logger.WithComponent("users"))
	deps.NotificationService = appServices.NewNotificationService(repos.NotificationRepository, deps.Hub, logger.WithComponent("notifications"))
	deps.AssignmentService = appServices.NewAssignmentService(repos.AssignmentRepository, repos.UserRepository, deps.NotificationService, logger.WithComponent("assignments"))
	deps.TrainingService = appServices.NewTrainingService(repos.TrainingRepository, repos.AttendanceRepository, repos.UserRepository, loc, logger.WithComponent("trainings"))
	deps.MatchService = appServices.NewMatchService(repos.MatchRepository, repos.RosterRepository, repos.MatchAttendanceRepository, repos.UserRepository, loc, logger.WithComponent("matches"))
	deps.CalendarService = appServices.NewCalendarService(repos.TrainingRepository, repos.MatchRepository, repos.AnnouncementRepository, loc)
	deps.AnnouncementService = appServices.NewAnnouncementService(repos.AnnouncementRepository, deps.Hub, logger.WithComponent("announcements"))
	deps.FundraisingService = appServices.NewFundraisingService(
		repos.CampaignRepository,
		repos.SponsorshipRepository,
		repos.UserRepository,
		deps.NotificationService,
		loc,
		logger.WithComponent("fundraising"),
	)
	deps.PerformanceService = appServices.NewPerformanceNoteService(repos.PerformanceNoteRepository, repos.UserRepository, logger.WithComponent("performance"))
	deps.AnalyticsService = appServices.NewAnalyticsService(
		repos.TrainingRepository,
		repos.MatchRepository,
		repos.AttendanceRepository,
		repos.MatchAttendanceRepository,
		repos.PerformanceNoteRepository,
	)
	deps.ExportService = appServices.NewExportService(deps.TrainingService, deps.PerformanceService, deps.AnalyticsService, loc)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService, repos.UserRepository, logger.WithComponent("auth-middleware"))

	controllerLogger := logger.WithComponent("http")
	deps.Controllers = appRoutes.Controllers{
		Auth:         appControllers.NewAuthController(deps.AuthService, controllerLogger),
		User:         appControllers.NewUserController(deps.UserService, controllerLogger),
		Training:     appControllers.NewTrainingController(deps.TrainingService, controllerLogger),
		Match:        appControllers.NewMatchController(deps.MatchService, controllerLogger),
		Calendar:     appControllers.NewCalendarController(deps.CalendarService, controllerLogger),
		Announcement: appControllers.NewAnnouncementController(deps.AnnouncementService, controllerLogger),
		Assignment:   appControllers.NewAssignmentController(deps.AssignmentService, controllerLogger),
		Fundraising:  appControllers.NewFundraisingController(deps.FundraisingService, controllerLogger),
		Notification: appControllers.NewNotificationController(deps.NotificationService, controllerLogger),
		Performance:  appControllers.NewPerformanceController(deps.PerformanceService, controllerLogger),
		Report:       appControllers.NewReportController(deps.AnalyticsService, deps.ExportService, controllerLogger),
		Realtime:     websocket.NewHandler(deps.Hub, logger.WithComponent("websocket")).HandleConnection,
	}

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) (*gin.Engine, error) {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	if err := appMiddleware.RegisterValidators(); err != nil {
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}

	router := gin.New()
	router.Use(
		appMiddleware.Recovery(lgr),
		appMiddleware.RequestLogger(logger.WithComponent("http")),
		appMiddleware.Timeout(cfg.RequestTimeout()),
	)
	router.MaxMultipartMemory = cfg.Academy.MaxUploadBytes

	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware)

	router.Static("/uploads", cfg.Server.StoragePath)
	lgr.Info().Str("path", cfg.Server.StoragePath).Msg("Static file serving configured for uploads directory")

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})

	return router, nil
}

// StartBackground runs the websocket hub, its inbound message handler and the job
// scheduler until ctx is cancelled. The returned scheduler must be stopped by the caller.
func StartBackground(ctx context.Context, cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) (*jobs.Scheduler, error) {
	go deps.Hub.Run(ctx)
	websocket.NewMessageHandler(deps.NotificationService, deps.Hub, logger.WithComponent("websocket")).Start(ctx)

	scheduler := jobs.NewScheduler(logger.WithComponent("jobs"), cfg.Location())
	if !cfg.Jobs.Enabled {
		lgr.Info().Msg("Background jobs disabled")
		return scheduler, nil
	}

	for _, job := range []jobs.Job{
		jobs.CampaignCloser(deps.FundraisingService, cfg.Jobs.CampaignCloserSpec),
		jobs.TokenCleanup(deps.AuthService, cfg.Jobs.TokenCleanupSpec),
	} {
		if err := scheduler.Add(job); err != nil {
			return nil, err
		}
	}
	scheduler.Start()
	return scheduler, nil
}
