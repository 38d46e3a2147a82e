package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"

	"github.com/d60-Lab/postservice/config"
	"github.com/d60-Lab/postservice/internal/api"
	"github.com/d60-Lab/postservice/internal/api/handler"
	"github.com/d60-Lab/postservice/internal/cache"
	"github.com/d60-Lab/postservice/internal/repository"
	"github.com/d60-Lab/postservice/internal/service"
	"github.com/d60-Lab/postservice/pkg/database"
	"github.com/d60-Lab/postservice/pkg/logger"
	"github.com/d60-Lab/postservice/pkg/tracing"
)

// @title           Posts API
// @version         1.0
// @description     Posts CRUD with filtered, paginated listing.
// @BasePath        /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.Sentry.DSN,
			Environment: cfg.Sentry.Environment,
		}); err != nil {
			logger.Warn("sentry init failed", zap.Error(err))
		}
		defer sentry.Flush(2 * time.Second)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}

	db, err := database.InitDB(cfg)
	if err != nil {
		return fmt.Errorf("init database: %w", err)
	}
	repo := repository.NewPostRepository(db)
	defer repo.Close()
	if err := repo.InitSchema(); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	sqlxDB, err := database.Sqlx(db)
	if err != nil {
		return err
	}
	dialect, err := repository.DialectFor(db.Dialector.Name())
	if err != nil {
		return err
	}
	lister := repository.NewPostLister(sqlxDB, dialect)

	rdb, err := database.InitRedis(ctx, cfg.Redis)
	if err != nil {
		// 缓存不可用时降级为直读数据库
		logger.Warn("redis unavailable, cache disabled", zap.Error(err))
		rdb = nil
	}
	if rdb != nil {
		defer rdb.Close()
	}

	svc := service.NewPostService(repo, lister, cache.NewPostCache(rdb, cfg.Redis.TTL))
	router := api.SetupRouter(cfg, handler.NewHandler(svc))

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr), zap.String("driver", dialect.Name()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", zap.Error(err))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Warn("tracing shutdown", zap.Error(err))
	}
	return nil
}
