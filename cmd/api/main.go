package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/bryanwahyu/logsentinel/internal/application/alert"
	"github.com/bryanwahyu/logsentinel/internal/application/session"
	"github.com/bryanwahyu/logsentinel/internal/config"
	"github.com/bryanwahyu/logsentinel/internal/domain/faults"
	"github.com/bryanwahyu/logsentinel/internal/domain/history"
	"github.com/bryanwahyu/logsentinel/internal/infra/ai"
	mysqlp "github.com/bryanwahyu/logsentinel/internal/infra/db/mysql"
	postgresp "github.com/bryanwahyu/logsentinel/internal/infra/db/postgres"
	"github.com/bryanwahyu/logsentinel/internal/infra/httpserver"
	minioStore "github.com/bryanwahyu/logsentinel/internal/infra/storage"
	"github.com/bryanwahyu/logsentinel/internal/infra/ws"
	"github.com/bryanwahyu/logsentinel/internal/middleware"
)

// metricsEvents bumps counters on terminal transitions before forwarding.
type metricsEvents struct {
	next session.Events
}

func (m metricsEvents) StateChanged(st session.State) {
	if !st.IsAnalyzing && st.LastError != "" {
		middleware.IncrementAnalysesFailed()
	}
	if m.next != nil {
		m.next.StateChanged(st)
	}
}

func (m metricsEvents) AlertRaised(a alert.Alert) {
	middleware.IncrementAlertsFired()
	if m.next != nil {
		m.next.AlertRaised(a)
	}
}

func main() {
	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	// analysis backend
	analyzer, err := ai.NewAnalyzer(ctx, cfg.AI)
	if err != nil {
		logger.Fatal("analyzer init error", zap.Error(err))
	}

	// optional audit database
	var (
		histRepo  history.Repository
		faultRepo faults.Repository
		checkers  = map[string]middleware.HealthChecker{}
	)
	if cfg.HistoryEnabled() {
		switch cfg.Database.Driver {
		case "mysql":
			db, err := mysqlp.Connect(ctx, cfg.MySQLDSN())
			if err != nil {
				logger.Fatal("mysql connect error", zap.Error(err))
			}
			defer db.Close()
			histRepo = mysqlp.NewHistoryRepository(db)
			faultRepo = mysqlp.NewFaultRepository(db)
			checkers["database"] = &middleware.DatabaseHealthChecker{DB: db}
		case "postgres":
			db, err := postgresp.Connect(ctx, cfg.PostgresDSN())
			if err != nil {
				logger.Fatal("postgres connect error", zap.Error(err))
			}
			defer db.Close()
			histRepo = postgresp.NewHistoryRepository(db)
			faultRepo = postgresp.NewFaultRepository(db)
			checkers["database"] = &middleware.DatabaseHealthChecker{DB: db}
		default:
			logger.Fatal("unknown database driver", zap.String("driver", cfg.Database.Driver))
		}
	}

	// optional artifact archive
	var archive session.Archiver
	if cfg.ArchiveEnabled() {
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
		archive = store
	}

	// websocket fan-out
	hub := ws.NewHub(logger)
	go hub.Run()

	// session state machine
	svc := session.New(analyzer, cfg.AlertWindow(), logger)
	svc.Events = metricsEvents{next: hub}
	svc.History = histRepo
	svc.Faults = faultRepo
	svc.Archive = archive

	mux := chi.NewRouter()
	mux.Mount("/", httpserver.NewRouter(svc, histRepo, hub, checkers, cfg, logger))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("addr", addr), zap.String("provider", cfg.AI.Provider))
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
