package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"learner_analytics_backend/internal/config"
	"learner_analytics_backend/internal/controller"
	"learner_analytics_backend/internal/repository"
	"learner_analytics_backend/internal/service"
	"learner_analytics_backend/pkg/database"
	"learner_analytics_backend/pkg/logger"
	"learner_analytics_backend/pkg/monitoring"
	"learner_analytics_backend/pkg/security"
	"learner_analytics_backend/pkg/tracing"
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
	user     *repository.UserRepository
	response *repository.ResponseRepository
	sample   *repository.SampleRepository
	session  *repository.SessionRepository
	goal     *repository.GoalRepository
}

type services struct {
	events     *service.EventPublisher
	assessment *service.AssessmentService
	analytics  *service.AnalyticsService
	goal       *service.GoalService
	session    *service.SessionService
	export     *service.ExportService
}

type controllers struct {
	assessment *controller.AssessmentController
	analytics  *controller.AnalyticsController
	goal       *controller.GoalController
	session    *controller.SessionController
	health     *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

// ReloadConfig 配置热更新入口（由 configwatcher 驱动）
func (a *App) ReloadConfig(cfg *config.Config) {
	a.Config = cfg
	for _, callback := range a.configCallbacks {
		callback(cfg)
	}
	logger.Log.Info("config reloaded")
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:     repository.NewUserRepository(db),
		response: repository.NewResponseRepository(db),
		sample:   repository.NewSampleRepository(db),
		session:  repository.NewSessionRepository(db),
		goal:     repository.NewGoalRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	s := &services{}
	params := cfg.EngineParams()

	s.events = service.NewEventPublisher(rdb)
	s.assessment = service.NewAssessmentService(repos.response, repos.sample, s.events, params)
	s.analytics = service.NewAnalyticsService(repos.sample, repos.session, service.NewRedisCache(rdb), params, cfg.CacheTTL())
	s.goal = service.NewGoalService(repos.goal, repos.sample, params)
	s.session = service.NewSessionService(repos.session, s.events)

	if cfg.Export.Enabled {
		export, err := service.NewExportService(cfg, s.analytics, s.goal, repos.sample)
		if err != nil {
			logger.Log.Warn("snapshot export disabled", zap.Error(err))
		} else {
			s.export = export
		}
	}

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB) *controllers {
	return &controllers{
		assessment: controller.NewAssessmentController(s.assessment),
		analytics:  controller.NewAnalyticsController(s.analytics),
		goal:       controller.NewGoalController(s.goal),
		session:    controller.NewSessionController(s.session),
		health:     controller.NewHealthController(db),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(func(c *gin.Context) {
		c.Set("config", a.Config)
		c.Next()
	})

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

// startBackgroundTasks 夜间快照导出：每天 cfg.Export.Hour 点整批导出
func (a *App) startBackgroundTasks(s *services) {
	if s.export == nil {
		return
	}

	go func() {
		for {
			time.Sleep(untilNextRun(time.Now(), a.Config.Export.Hour))
			if err := s.export.ExportAll(context.Background()); err != nil {
				logger.Log.Error("nightly export failed", zap.Error(err))
			}
		}
	}()
}

func untilNextRun(now time.Time, hour int) time.Duration {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next.Sub(now)
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	// release 模式默认不迁移，需要 --migrate 显式开启
	migrate := cfg.ForceMigrate || cfg.Server.Mode != "release"
	db, err := database.InitDB(&cfg.Database, migrate)
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

	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("learner-analytics", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, repos)

	app.startBackgroundTasks(services)

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

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
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
