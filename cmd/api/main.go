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

	"github.com/ahwlsqja/lti-tool-provider/docs"
	"github.com/ahwlsqja/lti-tool-provider/internal/common/handler"
	"github.com/ahwlsqja/lti-tool-provider/internal/common/middleware"
	"github.com/ahwlsqja/lti-tool-provider/internal/config"
	"github.com/ahwlsqja/lti-tool-provider/internal/consumer"
	"github.com/ahwlsqja/lti-tool-provider/internal/launch"
	"github.com/ahwlsqja/lti-tool-provider/internal/metrics"
	"github.com/ahwlsqja/lti-tool-provider/internal/worker"
	pkgdb "github.com/ahwlsqja/lti-tool-provider/pkg/db"
	"github.com/ahwlsqja/lti-tool-provider/pkg/nonce"
	pkgredis "github.com/ahwlsqja/lti-tool-provider/pkg/redis"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// @title LTI Tool Provider API
// @version 1.0
// @description LTI 1.x basic launch authentication (OAuth 1.0a HMAC-SHA1) with nonce replay protection

// @contact.name API Support
// @contact.email support@example.com

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /

func main() {
	// 1) 로거 초기화
	logger, err := initLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// 2) 설정 로드
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	logger.Info("starting server",
		zap.String("environment", cfg.Server.Environment),
		zap.String("addr", cfg.Server.Addr()),
		zap.String("nonce_backend", cfg.Nonce.Backend),
		zap.String("consumer_source", cfg.LTI.ConsumerSource),
	)

	// 3) 백엔드 초기화 (설정에 필요한 것만)
	var db *sql.DB
	if cfg.NeedsMySQL() {
		db, err = pkgdb.New(databaseConfig(cfg.Database))
		if err != nil {
			logger.Fatal("failed to connect to database", zap.Error(err))
		}
		defer db.Close()
	}

	var rdb *redis.Client
	if cfg.NeedsRedis() {
		rdb = pkgredis.New(redisConfig(cfg.Redis))
		defer rdb.Close()
	}

	// 4) 연결 테스트 (fail-fast)
	if err := testConnections(db, rdb); err != nil {
		logger.Fatal("failed to test connections", zap.Error(err))
	}

	if db != nil && cfg.Database.EnsureSchema {
		if err := ensureSchema(cfg, db); err != nil {
			logger.Fatal("failed to ensure schema", zap.Error(err))
		}
	}

	// 5) 의존성 구성
	m := metrics.New()

	registry, err := initRegistry(cfg, db)
	if err != nil {
		logger.Fatal("failed to load consumers", zap.Error(err))
	}

	nonces := initNonceProvider(cfg, db, rdb, logger)

	var sweeper *worker.NonceSweeper
	if cfg.Nonce.Backend == config.NonceBackendMySQL {
		sweeper, err = worker.NewNonceSweeper(db, cfg.Nonce.SweepSchedule, m, logger)
		if err != nil {
			logger.Fatal("failed to schedule nonce sweeper", zap.Error(err))
		}
		sweeper.Start()
	}

	// 6) 라우터 구성
	launchService := launch.NewService(registry, nonces, m, logger)
	router := setupRouter(cfg, logger, db, rdb, m, launchService)

	// 7) HTTP 서버 생성
	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// 8) 서버 비동기 시작
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	logger.Info("server started",
		zap.String("addr", cfg.Server.Addr()),
		zap.String("swagger", fmt.Sprintf("http://localhost:%d/swagger/index.html", cfg.Server.Port)),
	)

	// 9) 종료 시그널 대기
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// 10) Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}
	if sweeper != nil {
		sweeper.Stop(ctx)
	}

	logger.Info("server exited")
}

func initLogger() (*zap.Logger, error) {
	env := os.Getenv("ENVIRONMENT")
	if env == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func databaseConfig(cfg config.DatabaseConfig) pkgdb.Config {
	return pkgdb.Config{
		Host:            cfg.Host,
		Port:            cfg.Port,
		User:            cfg.User,
		Password:        cfg.Password,
		Name:            cfg.Name,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	}
}

func redisConfig(cfg config.RedisConfig) pkgredis.Config {
	return pkgredis.Config{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
}

func testConnections(db *sql.DB, rdb *redis.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if db != nil {
		if err := pkgdb.Ping(ctx, db); err != nil {
			return err
		}
	}

	if rdb != nil {
		if err := pkgredis.Ping(ctx, rdb); err != nil {
			return err
		}
	}

	return nil
}

func ensureSchema(cfg *config.Config, db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if cfg.Nonce.Backend == config.NonceBackendMySQL {
		if err := nonce.EnsureSchema(ctx, db); err != nil {
			return err
		}
	}
	if cfg.LTI.ConsumerSource == config.ConsumerSourceMySQL {
		return pkgdb.Exec(ctx, db, consumer.Schema)
	}
	return nil
}

func initRegistry(cfg *config.Config, db *sql.DB) (consumer.Registry, error) {
	if cfg.LTI.ConsumerSource == config.ConsumerSourceMySQL {
		return consumer.NewMySQLRegistry(db), nil
	}
	return consumer.LoadFile(cfg.LTI.ConsumersFile)
}

func initNonceProvider(cfg *config.Config, db *sql.DB, rdb *redis.Client, logger *zap.Logger) nonce.Provider {
	switch cfg.Nonce.Backend {
	case config.NonceBackendMySQL:
		return nonce.NewMySQLProvider(db, logger)
	case config.NonceBackendRedis:
		return nonce.NewRedisProvider(rdb, logger)
	default:
		logger.Warn("using in-memory nonce store; replay protection is per process")
		return nonce.NewMemoryProvider(logger)
	}
}

func setupRouter(cfg *config.Config, logger *zap.Logger, db *sql.DB, rdb *redis.Client, m *metrics.Metrics, launchService *launch.Service) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger))

	// Swagger 설정
	docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%d", cfg.Server.Port)
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health endpoints
	healthHandler := handler.NewHealthHandler(db, rdb)
	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)

	// Metrics
	router.GET("/metrics", gin.WrapH(m.Handler()))

	// LTI launch
	var launchMiddleware []gin.HandlerFunc
	if cfg.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst, cfg.RateLimit.Idle)
		launchMiddleware = append(launchMiddleware, middleware.RateLimit(limiter))
	}

	launchHandler := launch.NewHandler(launchService, launch.Options{
		PublicBaseURL:       cfg.LTI.PublicBaseURL,
		TrustForwardedProto: cfg.LTI.TrustForwardedProto,
	})
	launchHandler.RegisterRoutes(router, cfg.LTI.LaunchPath, launchMiddleware...)

	return router
}
