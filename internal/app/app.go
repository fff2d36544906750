package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lpd_backend/internal/config"
	"lpd_backend/internal/controller"
	"lpd_backend/internal/repository"
	"lpd_backend/internal/service"
	"lpd_backend/internal/util"
	"lpd_backend/pkg/database"
	"lpd_backend/pkg/logger"
	"lpd_backend/pkg/monitoring"
	"lpd_backend/pkg/security"
	"lpd_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config *config.Config
	Router *gin.Engine
	DB     *gorm.DB
	Redis  *redis.Client
}

type repositories struct {
	user               *repository.UserRepository
	dashboard          *repository.DashboardRepository
	question           *repository.QuestionRepository
	answer             *repository.AnswerRepository
	score              *repository.ScoreRepository
	submission         *repository.SubmissionRepository
	knowledgeComponent *repository.KnowledgeComponentRepository
	export             *repository.ExportRepository
}

type services struct {
	auth       *service.AuthService
	storage    *service.StorageService
	classifier *service.ClassifierService
	engine     *service.EngineClient
	completion *service.CompletionService
	submission *service.SubmissionService
	profile    *service.ProfileService
	export     *service.ExportService
	dashboard  *service.DashboardService
}

type controllers struct {
	auth       *controller.AuthController
	submission *controller.SubmissionController
	profile    *controller.ProfileController
	export     *controller.ExportController
	dashboard  *controller.DashboardController
	health     *controller.HealthController
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:               repository.NewUserRepository(db),
		dashboard:          repository.NewDashboardRepository(db),
		question:           repository.NewQuestionRepository(db),
		answer:             repository.NewAnswerRepository(db),
		score:              repository.NewScoreRepository(db),
		submission:         repository.NewSubmissionRepository(db),
		knowledgeComponent: repository.NewKnowledgeComponentRepository(db),
		export:             repository.NewExportRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	s := &services{}

	artifacts, err := service.LoadClassifierArtifacts(cfg.Classifier.ArtifactsPath)
	if err != nil {
		logger.Log.Fatal("Failed to load classifier artifacts", zap.Error(err))
	}

	s.auth = service.NewAuthService(repos.user, cfg)
	s.storage = service.NewStorageService(cfg)
	s.classifier = service.NewClassifierService(artifacts, cfg.Classifier.GroupKCs, repos.score, repos.knowledgeComponent)
	s.engine = service.NewEngineClient(cfg.Engine.BaseURL, cfg.Engine.Token, cfg.Engine.InstanceDomain)
	s.completion = service.NewCompletionService(repos.dashboard, repos.question, repos.answer, rdb)
	s.submission = service.NewSubmissionService(
		repos.question,
		repos.answer,
		repos.score,
		repos.submission,
		repos.dashboard,
		s.classifier,
		s.engine,
		s.completion,
	)
	s.profile = service.NewProfileService(repos.dashboard, repos.question, repos.answer, repos.submission, s.completion)
	s.export = service.NewExportService(s.profile, repos.score, repos.export, s.storage)
	s.dashboard = service.NewDashboardService(repos.dashboard, repos.question, repos.knowledgeComponent)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB) *controllers {
	return &controllers{
		auth:       controller.NewAuthController(s.auth, a.Config.LTI.LaunchURL),
		submission: controller.NewSubmissionController(s.submission, s.auth),
		profile:    controller.NewProfileController(s.profile, s.auth),
		export:     controller.NewExportController(s.export, s.auth),
		dashboard:  controller.NewDashboardController(s.dashboard),
		health:     controller.NewHealthController(db),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests == 0 {
		maxRequests = 1000
	}
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window == 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(maxRequests, window))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(cfg)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	if cfg.MigrateOnly {
		return &App{Config: cfg, DB: db}
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, rdb)
	controllers := app.initControllers(services, db)

	monitoring.Init()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("learner-profile-dashboard", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, repos, cfg)

	if cfg.Storage.Type == util.StorageLocal {
		router.Static("/exports", cfg.Storage.LocalPath)
	}

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
