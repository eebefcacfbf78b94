package app

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"literacy_backend/internal/config"
	"literacy_backend/internal/controller"
	"literacy_backend/internal/repository"
	"literacy_backend/internal/service"
	"literacy_backend/pkg/database"
	"literacy_backend/pkg/logger"
	"literacy_backend/pkg/monitoring"
	"literacy_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/mongo"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	Mongo           *mongo.Client
	DB              *mongo.Database
	Redis           *redis.Client
	services        *services
	tracer          *sdktrace.TracerProvider
	configCallbacks []func(*config.Config)
}

// Stores holds everything the services persist to. NewApp fills it with the
// Mongo repositories; tests fill it with the in-memory ones.
type Stores struct {
	Users         service.UserStore
	Templates     service.TemplateStore
	Plans         service.InterventionStore
	Progress      service.ProgressStore
	Responses     service.ResponseStore
	Results       service.CategoryResultStore
	Analyses      service.PrescriptiveAnalysisStore
	Tx            repository.TxRunner
	IdentityCache service.IdentityCache
	Presigner     service.Presigner
	DB            controller.Pinger
}

type services struct {
	identity     *service.IdentityService
	templates    *service.TemplateService
	results      *service.CategoryResultService
	analyses     *service.PrescriptiveAnalysisService
	intervention *service.InterventionService
	upload       *service.UploadService
}

type controllers struct {
	intervention *controller.InterventionController
	template     *controller.TemplateController
	upload       *controller.UploadController
	analysis     *controller.AnalysisController
	student      *controller.StudentController
	health       *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

// ApplyConfig hands a reloaded config to every registered callback.
func (a *App) ApplyConfig(cfg *config.Config) {
	for _, cb := range a.configCallbacks {
		cb(cfg)
	}
}

func mongoStores(db *mongo.Database, client *mongo.Client, cfg *config.Config) Stores {
	return Stores{
		Users:     repository.NewUserRepository(db),
		Templates: repository.NewTemplateRepository(db),
		Plans:     repository.NewInterventionRepository(db),
		Progress:  repository.NewProgressRepository(db),
		Responses: repository.NewResponseRepository(db),
		Results:   repository.NewCategoryResultRepository(db),
		Analyses:  repository.NewPrescriptiveAnalysisRepository(db),
		Tx:        repository.NewMongoTxRunner(client, cfg.Database.Transactions),
		DB:        client,
	}
}

func initServices(cfg *config.Config, st Stores) *services {
	s := &services{}
	s.identity = service.NewIdentityService(st.Users, st.IdentityCache)
	s.templates = service.NewTemplateService(st.Templates)
	s.results = service.NewCategoryResultService(st.Results, s.identity)
	s.analyses = service.NewPrescriptiveAnalysisService(st.Analyses, s.identity)
	s.intervention = service.NewInterventionService(
		st.Plans,
		st.Progress,
		st.Responses,
		st.Analyses,
		s.results,
		s.identity,
		st.Tx,
		cfg.Intervention.DefaultPassThreshold,
	)
	s.upload = service.NewUploadService(st.Presigner, &cfg.Storage)
	return s
}

func initControllers(s *services, db controller.Pinger) *controllers {
	return &controllers{
		intervention: controller.NewInterventionController(s.intervention),
		template:     controller.NewTemplateController(s.templates),
		upload:       controller.NewUploadController(s.upload),
		analysis:     controller.NewAnalysisController(s.results, s.analyses),
		student:      controller.NewStudentController(s.identity),
		health:       controller.NewHealthController(db),
	}
}

// NewRouter builds the HTTP surface over the given stores.
func NewRouter(cfg *config.Config, st Stores) *gin.Engine {
	router, _ := newRouter(cfg, st)
	return router
}

func newRouter(cfg *config.Config, st Stores) (*gin.Engine, *services) {
	gin.SetMode(cfg.Server.Mode)
	s := initServices(cfg, st)
	c := initControllers(s, st.DB)

	router := gin.New()
	router.Use(gin.Recovery())
	setupMiddlewares(router, cfg)
	registerRoutes(router, c, cfg)
	return router, s
}

func NewApp(cfg *config.Config) (*App, error) {
	logger.InitLogger(cfg)
	logger.Log.Info("Logger initialized successfully")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Database.ConnectTimeout+5*time.Second)
	defer cancel()

	client, db, err := database.InitMongo(ctx, &cfg.Database)
	if err != nil {
		logger.Log.Error("Failed to initialize database", zap.Error(err))
		return nil, err
	}

	app := &App{
		Config: cfg,
		Mongo:  client,
		DB:     db,
	}

	stores := mongoStores(db, client, cfg)

	if cfg.Redis.Enabled {
		rdb, err := database.InitRedis(ctx, &cfg.Redis)
		if err != nil {
			// The identity cache is an optimisation; run without it.
			logger.Log.Warn("Redis unavailable, identity cache disabled", zap.Error(err))
		} else {
			app.Redis = rdb
			stores.IdentityCache = service.NewRedisIdentityCache(rdb, cfg.Redis.IdentityTTL)
		}
	}

	if cfg.Storage.Bucket != "" {
		presigner, err := service.NewMinioPresigner(&cfg.Storage)
		if err != nil {
			logger.Log.Error("Failed to initialize object storage", zap.Error(err))
			return nil, err
		}
		stores.Presigner = presigner
	} else {
		logger.Log.Warn("storage.bucket not set, upload URLs are unavailable")
	}

	if cfg.EnsureIndexes {
		if err := database.EnsureIndexes(ctx, db); err != nil {
			logger.Log.Error("Failed to ensure indexes", zap.Error(err))
			return nil, err
		}
	}

	monitoring.Init()

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("literacy-backend", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Error("Failed to initialize tracing", zap.Error(err))
			return nil, err
		}
		app.tracer = tp
	}

	app.Router, app.services = newRouter(cfg, stores)

	app.RegisterConfigCallback(logger.SetLevel)

	return app, nil
}

// Backfill runs the one-shot data repairs: intervention normalisation and the
// category_results studentObjectId migration.
func (a *App) Backfill(ctx context.Context) (*service.BackfillSummary, *service.MigrationSummary, error) {
	backfill, err := a.services.intervention.UpdateExistingInterventions(ctx)
	if err != nil {
		return nil, nil, err
	}
	migration, err := a.services.results.MigrateStudentObjectIDs(ctx)
	if err != nil {
		return backfill, nil, err
	}
	return backfill, migration, nil
}

// Close releases the database, cache and tracer.
func (a *App) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
	if a.Mongo != nil {
		if err := a.Mongo.Disconnect(ctx); err != nil {
			logger.Log.Error("Failed to disconnect mongo", zap.Error(err))
		}
	}
	_ = logger.Log.Sync()
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	a.Close()
	log.Println("Server exiting")
}
