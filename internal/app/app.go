package app

import (
	"ai_sensei_backend/internal/config"
	"ai_sensei_backend/internal/controller"
	"ai_sensei_backend/internal/repository"
	"ai_sensei_backend/internal/service"
	"ai_sensei_backend/pkg/database"
	"ai_sensei_backend/pkg/logger"
	"ai_sensei_backend/pkg/monitoring"
	"ai_sensei_backend/pkg/security"
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config *config.Config
	Router *gin.Engine
	DB     *gorm.DB
}

type repositories struct {
	user        *repository.UserRepository
	lesson      *repository.LessonRepository
	chat        *repository.ChatRepository
	studentLink *repository.StudentLinkRepository
}

type services struct {
	auth      *service.AuthService
	storage   *service.StorageService
	extract   *service.ExtractService
	generator *service.GeminiService
	telegram  *service.TelegramService
	lesson    *service.LessonService
	authoring *service.AuthoringService
	chat      *service.ChatService
	webhook   *service.WebhookService
}

type controllers struct {
	auth      *controller.AuthController
	lesson    *controller.LessonController
	source    *controller.SourceController
	authoring *controller.AuthoringController
	chat      *controller.ChatController
	student   *controller.StudentController
	telegram  *controller.TelegramController
	health    *controller.HealthController
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:        repository.NewUserRepository(db),
		lesson:      repository.NewLessonRepository(db),
		chat:        repository.NewChatRepository(db),
		studentLink: repository.NewStudentLinkRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)
	s.extract = service.NewExtractService()
	s.auth = service.NewAuthService(repos.user, cfg)
	s.lesson = service.NewLessonService(repos.lesson)

	generator, err := service.NewGeminiService(context.Background(), cfg.Gemini)
	if err != nil {
		logger.Log.Fatal("Failed to initialize Gemini client", zap.Error(err))
	}
	s.generator = generator

	telegram, err := service.NewTelegramService(cfg.Telegram)
	if err != nil {
		logger.Log.Fatal("Failed to initialize Telegram bot", zap.Error(err))
	}
	s.telegram = telegram

	s.authoring = service.NewAuthoringService(repos.lesson, s.storage, s.extract, s.generator)
	s.chat = service.NewChatService(repos.lesson, repos.chat, repos.studentLink, repos.user, s.generator, s.telegram)
	s.webhook = service.NewWebhookService(repos.lesson, repos.studentLink, repos.user, repos.chat, s.telegram)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB) *controllers {
	return &controllers{
		auth:      controller.NewAuthController(s.auth),
		lesson:    controller.NewLessonController(s.lesson),
		source:    controller.NewSourceController(s.authoring),
		authoring: controller.NewAuthoringController(s.authoring),
		chat:      controller.NewChatController(s.chat),
		student:   controller.NewStudentController(s.chat),
		telegram:  controller.NewTelegramController(s.webhook),
		health:    controller.NewHealthController(db),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	if cfg.RateLimit.MaxRequests > 0 {
		window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
		router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, window))
	}
	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	migrate := cfg.Server.Mode != "release" || cfg.ForceMigrate
	db, err := database.InitDB(&cfg.Database, migrate)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	app := &App{
		Config: cfg,
		DB:     db,
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg)
	controllers := app.initControllers(services, db)

	monitoring.Init()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	router.HandleMethodNotAllowed = true
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers, cfg)

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	if cfg.Telegram.WebhookURL != "" {
		if err := services.telegram.SetWebhook(); err != nil {
			logger.Log.Error("Failed to register Telegram webhook", zap.Error(err))
		}
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
