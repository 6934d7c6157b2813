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

	"user-service/internal/config"
	"user-service/internal/handler"
	"user-service/internal/messaging"
	"user-service/internal/service"
	"user-service/shared/database"
	"user-service/shared/interfaces"
	sharedLogger "user-service/shared/logger"
	sharedMiddleware "user-service/shared/middleware"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rabbitmq/amqp091-go"
	redis "github.com/redis/go-redis/v9"
	ginprometheus "github.com/zsais/go-gin-prometheus"
	"go.uber.org/zap"
)

func main() {
	// --- Configuration ---
	cfg, err := config.LoadConfig(".env")
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// --- Logger ---
	encoding := "json"
	if cfg.Env == "development" {
		encoding = "console"
	}
	logger, err := sharedLogger.New(sharedLogger.Config{Level: cfg.LogLevel, Encoding: encoding})
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	zap.ReplaceGlobals(logger)
	zap.L().Info("Logger initialized", zap.String("logLevel", cfg.LogLevel), zap.String("env", cfg.Env))

	// --- External Connections ---
	mongoClient, err := setupMongo(cfg)
	if err != nil {
		zap.L().Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	users := mongoClient.Database(cfg.MongoDatabase).Collection(cfg.MongoCollection)

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient, err = setupRedis(cfg)
		if err != nil {
			zap.L().Fatal("Failed to connect to Redis", zap.Error(err))
		}
	} else {
		zap.L().Info("REDIS_ADDR not set, rate limiter uses in-memory store")
	}

	var (
		mqConn    *amqp091.Connection
		publisher interfaces.AccountEventPublisher = messaging.NoopAccountEventPublisher{}
	)
	if cfg.RabbitMQURL != "" {
		mqConn, err = connectRabbitMQ(cfg.RabbitMQURL, logger)
		if err != nil {
			zap.L().Fatal("Failed to connect to RabbitMQ", zap.Error(err))
		}
		publisher, err = messaging.NewRabbitMQAccountEventPublisher(mqConn, logger)
		if err != nil {
			zap.L().Fatal("Failed to create account event publisher", zap.Error(err))
		}
	} else {
		zap.L().Info("RABBITMQ_URL not set, account events are not published")
	}

	// --- Dependency Injection ---
	userRepo := database.NewMongoUserRepository(users, logger)
	indexCtx, indexCancel := context.WithTimeout(context.Background(), cfg.MongoTimeout)
	err = userRepo.EnsureIndexes(indexCtx)
	indexCancel()
	if err != nil {
		zap.L().Fatal("Failed to ensure MongoDB indexes", zap.Error(err))
	}

	hasher, err := service.NewPasswordHasher(cfg.PasswordHashing, cfg.PasswordPepper)
	if err != nil {
		zap.L().Fatal("Failed to create password hasher", zap.Error(err))
	}
	if cfg.PasswordHashing == config.PasswordHashingPlain {
		zap.L().Warn("PASSWORD_HASHING=plain: passwords are stored without hashing")
	} else if cfg.PasswordPepper == "" {
		zap.L().Warn("PASSWORD_PEPPER is empty")
	}

	userSvc := service.NewUserService(userRepo, hasher, publisher, cfg.TokenTTL, logger)
	userHandler := handler.NewUserHandler(userSvc, &service.VisitCounter{}, cfg.HealthCheckResponse)

	rateLimitMiddleware := newRateLimitMiddleware(redisClient, cfg.RateLimitPerMinute)
	zap.L().Info("Rate limiter middleware initialized", zap.Uint("limitPerMinute", cfg.RateLimitPerMinute))

	// --- HTTP Server Setup (Gin) ---
	gin.SetMode(gin.ReleaseMode)
	if cfg.Env == "development" {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()
	router.Use(sharedMiddleware.GinZapLogger(logger))
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.GetAllowedOrigins()
	if len(corsConfig.AllowOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	userHandler.RegisterRoutes(router, rateLimitMiddleware)

	// Applied after routes so the request metrics see the registered paths.
	p := ginprometheus.NewPrometheus("gin")
	p.Use(router)

	// --- Start HTTP Server ---
	srv := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	zap.L().Info("Starting HTTP server", zap.String("port", cfg.ServerPort))

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.L().Fatal("HTTP Server listen error", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zap.L().Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.L().Error("HTTP Server forced to shutdown", zap.Error(err))
	}

	if err := publisher.Close(); err != nil {
		zap.L().Error("Error closing account event publisher", zap.Error(err))
	}
	if mqConn != nil {
		if err := mqConn.Close(); err != nil && !errors.Is(err, amqp091.ErrClosed) {
			zap.L().Error("Error closing RabbitMQ connection", zap.Error(err))
		}
	}
	if err := mongoClient.Disconnect(shutdownCtx); err != nil {
		zap.L().Error("Error disconnecting from MongoDB", zap.Error(err))
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			zap.L().Error("Error closing Redis client", zap.Error(err))
		}
	}

	zap.L().Info("Server exiting")
}

// newRateLimitMiddleware limits requests per client IP. Redis backs the
// counters when a client is given so that replicas share them.
func newRateLimitMiddleware(redisClient *redis.Client, limitPerMinute uint) gin.HandlerFunc {
	var store ratelimit.Store
	if redisClient != nil {
		store = ratelimit.RedisStore(&ratelimit.RedisOptions{
			RedisClient: redisClient,
			Rate:        time.Minute,
			Limit:       limitPerMinute,
		})
	} else {
		store = ratelimit.InMemoryStore(&ratelimit.InMemoryOptions{
			Rate:  time.Minute,
			Limit: limitPerMinute,
		})
	}

	return ratelimit.RateLimiter(store, &ratelimit.Options{
		ErrorHandler: func(c *gin.Context, info ratelimit.Info) {
			zap.L().Warn("Rate limit exceeded",
				zap.String("clientIP", c.ClientIP()),
				zap.Time("resetTime", info.ResetTime),
				zap.String("path", c.Request.URL.Path),
			)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"code":    http.StatusTooManyRequests,
				"message": "Too many requests. Try again in " + time.Until(info.ResetTime).Round(time.Second).String(),
			})
		},
		KeyFunc: func(c *gin.Context) string {
			return c.ClientIP()
		},
	})
}
