package app

import (
	"ai_study_backend/internal/config"
	"ai_study_backend/internal/controller"
	"ai_study_backend/internal/repository"
	"ai_study_backend/internal/service"
	"ai_study_backend/pkg/cache"
	"ai_study_backend/pkg/database"
	"ai_study_backend/pkg/logger"
	"ai_study_backend/pkg/monitoring"
	"ai_study_backend/pkg/security"
	"ai_study_backend/pkg/tracing"
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
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	Cache           *cache.Cache
	services        *services
	configCallbacks []func(*config.Config)
	bgCancel        context.CancelFunc
}

type repositories struct {
	user    *repository.UserRepository
	course  *repository.CourseRepository
	section *repository.SectionRepository
	version *repository.SectionVersionRepository
}

type services struct {
	auth      *service.AuthService
	storage   *service.StorageService
	converter *service.ConverterService
	course    *service.CourseService
	section   *service.SectionService
	content   *service.ContentService
	version   *service.VersionService
	query     *service.QueryService
	export    *service.ExportService
	importer  *service.ImportService
}

type controllers struct {
	auth    *controller.AuthController
	course  *controller.CourseController
	section *controller.SectionController
	content *controller.ContentController
	query   *controller.QueryController
	health  *controller.HealthController
}

// RegisterConfigCallback 注册配置热更回调
func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

// ApplyConfig 配置文件变更后刷新可热更项
func (a *App) ApplyConfig(cfg *config.Config) {
	a.Config.CORS = cfg.CORS
	a.Config.RateLimit = cfg.RateLimit
	a.Config.Course = cfg.Course
	for _, cb := range a.configCallbacks {
		cb(cfg)
	}
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:    repository.NewUserRepository(db),
		course:  repository.NewCourseRepository(db),
		section: repository.NewSectionRepository(db),
		version: repository.NewSectionVersionRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, db *gorm.DB, rdb *redis.Client, queryCache *cache.Cache) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)
	s.auth = service.NewAuthService(repos.user, cfg)
	s.converter = service.NewConverterService()

	s.course = service.NewCourseService(repos.course, repos.section, queryCache, cfg, db, rdb)
	s.section = service.NewSectionService(repos.section, repos.course, repos.version, s.converter, queryCache, cfg, db)
	s.content = service.NewContentService(repos.section, repos.version, s.converter, queryCache, cfg, db)
	s.version = service.NewVersionService(repos.version, repos.section)
	s.query = service.NewQueryService(repos.course, repos.section, s.converter, queryCache, db)
	s.export = service.NewExportService(repos.course, repos.section, s.converter, s.storage, db)
	s.importer = service.NewImportService(s.section)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		auth:    controller.NewAuthController(s.auth),
		course:  controller.NewCourseController(s.course, s.export),
		section: controller.NewSectionController(s.section, s.importer),
		content: controller.NewContentController(s.content, s.version),
		query:   controller.NewQueryController(s.query),
		health:  controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 10000
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

// startBackgroundTasks 启动后台任务：浏览数落库与缓存失效广播
func (a *App) startBackgroundTasks(ctx context.Context, s *services) {
	a.Cache.StartInvalidationFanout(ctx)

	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := s.course.FlushViewCounts(ctx); err != nil {
					logger.Log.Error("view count flush error", zap.Error(err))
				}
			}
		}
	}()
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	if cfg.ForceMigrate || cfg.Server.Mode != "release" {
		if err := database.Migrate(db); err != nil {
			logger.Log.Fatal("Failed to migrate database", zap.Error(err))
		}
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

	if cfg.MigrateOnly {
		return app
	}

	app.Cache = cache.New(cache.Options{
		Capacity: cfg.Cache.Capacity,
		TTLs: map[cache.Kind]time.Duration{
			cache.KindCourse:    time.Duration(cfg.Cache.CourseTTL) * time.Second,
			cache.KindSection:   time.Duration(cfg.Cache.SectionTTL) * time.Second,
			cache.KindHierarchy: time.Duration(cfg.Cache.HierarchyTTL) * time.Second,
			cache.KindStats:     time.Duration(cfg.Cache.StatsTTL) * time.Second,
			cache.KindTOC:       time.Duration(cfg.Cache.TOCTTL) * time.Second,
			cache.KindSearch:    time.Duration(cfg.Cache.SearchTTL) * time.Second,
		},
	}, rdb)

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, db, rdb, app.Cache)
	app.services = services
	controllers := app.initControllers(services, db, rdb)

	monitoring.Init()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("ai-study-backend", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, cfg)

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	ctx, cancel := context.WithCancel(context.Background())
	app.bgCancel = cancel
	app.startBackgroundTasks(ctx, services)

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

	if a.bgCancel != nil {
		a.bgCancel()
	}

	// 退出前把缓冲的浏览数落库
	flushCtx, flushCancel := context.WithTimeout(context.Background(), 3*time.Second)
	if err := a.services.course.FlushViewCounts(flushCtx); err != nil {
		logger.Log.Warn("final view count flush failed", zap.Error(err))
	}
	flushCancel()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
