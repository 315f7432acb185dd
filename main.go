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

	"github.com/LPS-RESULT/mongodb-gin-boilerplate/handlers"
	"github.com/LPS-RESULT/mongodb-gin-boilerplate/internal/config"
	"github.com/LPS-RESULT/mongodb-gin-boilerplate/internal/database"
	"github.com/LPS-RESULT/mongodb-gin-boilerplate/internal/users"
	"github.com/LPS-RESULT/mongodb-gin-boilerplate/pkg/logger"
	"github.com/LPS-RESULT/mongodb-gin-boilerplate/pkg/metrics"
	"github.com/LPS-RESULT/mongodb-gin-boilerplate/pkg/middleware"
	"github.com/LPS-RESULT/mongodb-gin-boilerplate/pkg/pagination"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

var startTime = time.Now()

func main() {
	// initialize logging (can be controlled with LOG_LEVEL env: debug|info|warn|error|fatal)
	// and re-applied once the .env file has been read by LoadConfig
	logger.Init(os.Getenv("LOG_LEVEL"))
	defer func() { _ = logger.Sync() }()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Init(cfg.Log.Level)
	logger.SetFormat(cfg.Log.Format)
	logger.Infof("config loaded: env=%s store=%s redis=%v log=%s", cfg.Server.Environment, cfg.Store.Driver, cfg.Redis.Host != "", logger.LevelString())

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Mongo connection is made lazily on first use; the connector owns it until shutdown.
	var conn *database.Connector
	deps := map[string]handlers.Pinger{}
	if cfg.Store.Driver == "mongo" {
		conn = database.NewConnector(cfg.MongoDB.URI, cfg.MongoDB.Database, cfg.MongoDB.Timeout).
			WithDebug(cfg.IsDevelopment())
		deps["mongo"] = conn.Ping
	}

	repo, err := users.NewUserRepository(cfg.Store.Driver, conn)
	if err != nil {
		logger.Fatalf("failed to create user repository: %v", err)
	}
	userSvc := users.NewService(repo, users.NewHasher(cfg.Security.BcryptCost))

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.RequestLogger(), middleware.HTTPMetrics())

	// Lightweight CORS middleware: set common headers and respond to OPTIONS.
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Length, X-Request-ID")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}
		c.Next()
	})

	var rdb *redis.Client
	if cfg.Redis.Host != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			logger.Warnf("failed to connect to Redis (%s:%s): %v", cfg.Redis.Host, cfg.Redis.Port, err)
		} else {
			logger.Infof("connected to Redis %s:%s", cfg.Redis.Host, cfg.Redis.Port)
		}
		deps["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && rdb != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			r.Use(middleware.RedisRateLimitMiddleware(rdb, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win))
			logger.Infof("rate limiter: redis, %.1f rps, burst %d, window %s", cfg.RateLimit.RPS, cfg.RateLimit.Burst, win)
		} else {
			r.Use(middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
			logger.Infof("rate limiter: memory, %.1f rps, burst %d", cfg.RateLimit.RPS, cfg.RateLimit.Burst)
		}
	}

	handlers.RegisterRoot(r, startTime, deps)
	handlers.RegisterSwagger(r)
	pager := pagination.Config{DefaultLimit: cfg.Pagination.DefaultLimit, MaxLimit: cfg.Pagination.MaxLimit}
	handlers.NewUserHandler(userSvc, pager).Register(r.Group("/"))

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Infof("Starting user service on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server failed: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("server shutdown: %v", err)
	}
	if conn != nil {
		if err := conn.Close(shutdownCtx); err != nil {
			logger.Warnf("mongo disconnect: %v", err)
		}
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	logger.Info("server stopped")
}
