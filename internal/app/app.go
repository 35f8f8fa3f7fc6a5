package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"maang_tracker_backend/internal/config"
	"maang_tracker_backend/internal/controller"
	"maang_tracker_backend/internal/repository"
	"maang_tracker_backend/internal/service"
	"maang_tracker_backend/pkg/database"
	"maang_tracker_backend/pkg/logger"
	"maang_tracker_backend/pkg/monitoring"
	"maang_tracker_backend/pkg/security"
	"maang_tracker_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	services        *services
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user      *repository.UserRepository
	topic     *repository.TopicRepository
	problem   *repository.ProblemRepository
	event     *repository.EventRepository
	mastery   *repository.MasteryRepository
	dailyTask *repository.DailyTaskRepository
	interview *repository.InterviewRepository
}

type services struct {
	auth       *service.AuthService
	user       *service.UserService
	storage    *service.StorageService
	taxonomy   *service.TaxonomyService
	classifier *service.ClassifierService
	verifier   *service.VerifierService
	notifier   *service.NotifierService
	mastery    *service.MasteryService
	weakness   *service.WeaknessService
	roadmap    *service.RoadmapService
	dailyTask  *service.DailyTaskService
	mentor     *service.MentorService
	interview  *service.InterviewService
	dashboard  *service.DashboardService
	export     *service.ExportService
}

type controllers struct {
	auth      *controller.AuthController
	ingest    *controller.IngestController
	analytics *controller.AnalyticsController
	dailyTask *controller.DailyTaskController
	dashboard *controller.DashboardController
	interview *controller.InterviewController
	export    *controller.ExportController
	health    *controller.HealthController
}

// RegisterConfigCallback adds a hook invoked on every config hot reload.
func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

// ApplyConfig runs the registered reload hooks with a fresh config.
func (a *App) ApplyConfig(cfg *config.Config) {
	cfg.Learning.ApplyDefaults()
	for _, cb := range a.configCallbacks {
		cb(cfg)
	}
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:      repository.NewUserRepository(db),
		topic:     repository.NewTopicRepository(db),
		problem:   repository.NewProblemRepository(db),
		event:     repository.NewEventRepository(db),
		mastery:   repository.NewMasteryRepository(db),
		dailyTask: repository.NewDailyTaskRepository(db),
		interview: repository.NewInterviewRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	s := &services{}

	storage, err := service.NewStorageService(cfg)
	if err != nil {
		logger.Log.Fatal("Failed to initialize storage", zap.Error(err))
	}
	s.storage = storage

	taxonomy, err := service.NewTaxonomyService(repos.topic)
	if err != nil {
		logger.Log.Fatal("Failed to load topic taxonomy", zap.Error(err))
	}
	s.taxonomy = taxonomy

	s.auth = service.NewAuthService(repos.user, cfg)
	s.user = service.NewUserService(repos.user)
	s.classifier = service.NewClassifierService(taxonomy)
	s.verifier = service.NewVerifierService(cfg)
	s.notifier = service.NewNotifierService(cfg)

	locks := service.NewUserLockRegistry()
	s.mastery = service.NewMasteryService(
		repos.event, repos.mastery, repos.problem,
		taxonomy, s.verifier, locks, rdb, s.notifier, cfg,
	)
	s.weakness = service.NewWeaknessService(repos.mastery, taxonomy, rdb)
	s.roadmap = service.NewRoadmapService(repos.mastery, taxonomy, rdb, cfg)
	s.dailyTask = service.NewDailyTaskService(
		repos.dailyTask, repos.problem, repos.mastery, repos.user,
		s.weakness, s.verifier, s.notifier, cfg,
	)
	s.mentor = service.NewMentorService(cfg)
	s.interview = service.NewInterviewService(repos.interview, repos.problem, s.mastery, s.classifier, s.mentor)
	s.dashboard = service.NewDashboardService(s.mastery, s.weakness, s.roadmap, s.dailyTask, s.interview)
	s.export = service.NewExportService(repos.mastery, taxonomy, s.storage)

	// the learning thresholds are hot-reloadable; services read them
	// through the shared config struct
	a.RegisterConfigCallback(func(fresh *config.Config) {
		cfg.Learning = fresh.Learning
		cfg.Mentor = fresh.Mentor
		cfg.Notify = fresh.Notify
		logger.Log.Info("learning configuration reloaded",
			zap.Int("verifyN", cfg.Learning.VerifyN),
			zap.Int("dailyMin", cfg.Learning.DailyMin),
			zap.Int("dailyMax", cfg.Learning.DailyMax),
			zap.Int("roadmapWeeks", cfg.Learning.RoadmapWeeks))
	})

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB) *controllers {
	return &controllers{
		auth:      controller.NewAuthController(s.auth, s.user),
		ingest:    controller.NewIngestController(s.mastery, s.classifier),
		analytics: controller.NewAnalyticsController(s.mastery, s.weakness, s.roadmap),
		dailyTask: controller.NewDailyTaskController(s.dailyTask),
		dashboard: controller.NewDashboardController(s.dashboard),
		interview: controller.NewInterviewController(s.interview, s.mentor, s.weakness),
		export:    controller.NewExportController(s.export),
		health:    controller.NewHealthController(db),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 1000
	}
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
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

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
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
	app.services = services
	controllers := app.initControllers(services, db)

	monitoring.Init()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("maang-tracker", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, repos, cfg)

	if cfg.Storage.Type == "local" || cfg.Storage.Type == "" {
		router.Static("/uploads", cfg.Storage.LocalPath)
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
