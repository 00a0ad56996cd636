package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/fieldproof/tradecheck/internal/application"
	appanalyses "github.com/fieldproof/tradecheck/internal/application/analyses"
	appinsights "github.com/fieldproof/tradecheck/internal/application/insights"
	applibrary "github.com/fieldproof/tradecheck/internal/application/library"
	"github.com/fieldproof/tradecheck/internal/config"
	"github.com/fieldproof/tradecheck/internal/domain/compliance"
	"github.com/fieldproof/tradecheck/internal/domain/knowledge"
	"github.com/fieldproof/tradecheck/internal/domain/profile"
	aiclient "github.com/fieldproof/tradecheck/internal/infra/ai/openai"
	mysqlp "github.com/fieldproof/tradecheck/internal/infra/db/mysql"
	postgresp "github.com/fieldproof/tradecheck/internal/infra/db/postgres"
	"github.com/fieldproof/tradecheck/internal/infra/httpserver"
	minioStore "github.com/fieldproof/tradecheck/internal/infra/storage"
	"github.com/fieldproof/tradecheck/internal/middleware"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	cfg, err := config.Load(path)
	if err != nil {
		logger.Fatal("config load error", zap.Error(err))
	}

	ctx := context.Background()

	// connect DB per configured driver
	var (
		db           *sql.DB
		analysisRepo compliance.Repository
		profileRepo  profile.Repository
		clipRepo     knowledge.Repository
	)
	switch cfg.Database.Driver {
	case "postgres":
		db, err = postgresp.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			logger.Fatal("postgres connect error", zap.Error(err))
		}
		analysisRepo = postgresp.NewAnalysisRepository(db)
		profileRepo = postgresp.NewProfileRepository(db)
		clipRepo = postgresp.NewKnowledgeRepository(db)
	default:
		db, err = mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			logger.Fatal("mysql connect error", zap.Error(err))
		}
		analysisRepo = mysqlp.NewAnalysisRepository(db)
		profileRepo = mysqlp.NewProfileRepository(db)
		clipRepo = mysqlp.NewKnowledgeRepository(db)
	}
	defer db.Close()

	// init minio photo store
	store, err := minioStore.New(ctx,
		cfg.Minio.Endpoint,
		cfg.Minio.Region,
		cfg.Minio.BucketName,
		cfg.Minio.AccessKey,
		cfg.Minio.SecretKey,
		cfg.Minio.UseSSL,
	)
	if err != nil {
		logger.Fatal("minio init error", zap.Error(err))
	}

	// init inference client
	ai := aiclient.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model)

	// init services
	analysesSvc := &appanalyses.Service{
		Repo:   analysisRepo,
		Photos: store,
		AI:     ai,
		Clock:  application.SystemClock{},
	}
	insightsSvc := &appinsights.Service{
		Analyses: analysisRepo,
		Profiles: profileRepo,
	}
	librarySvc := &applibrary.Service{
		Clips:    clipRepo,
		Analyses: analysisRepo,
	}

	// init router + middleware chain
	mux := chi.NewRouter()
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))
	mux.Use(middleware.Logging(logger))
	mux.Use(middleware.MetricsMiddleware)
	if len(cfg.Auth.APIKeys) > 0 {
		mux.Use(middleware.APIKeyAuth(cfg.Auth.APIKeys))
	}
	capacity, refill := cfg.RateLimit.Capacity, cfg.RateLimit.RefillRate
	if capacity <= 0 {
		capacity = 30
	}
	if refill <= 0 {
		refill = 1
	}
	mux.Use(middleware.RateLimit(capacity, refill))

	mux.Get("/health", middleware.HealthHandler(map[string]middleware.HealthChecker{
		"database": &middleware.DatabaseHealthChecker{DB: db},
		"storage":  middleware.CheckerFunc(store.Ping),
	}))
	mux.Get("/metrics", middleware.MetricsHandler)
	mux.Mount("/", httpserver.NewRouter(analysesSvc, insightsSvc, librarySvc, profileRepo, logger))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// run server
	go func() {
		logger.Info("server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	logger.Info("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}
}
