package main

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"user-service/internal/config"

	"github.com/rabbitmq/amqp091-go"
	redis "github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

const (
	maxRetries = 50
	retryDelay = 3 * time.Second
)

// redactURL hides credentials in a connection URL before it is logged.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "<unparseable url>"
	}
	return u.Redacted()
}

// setupMongo connects to MongoDB with retry logic. The returned client is
// owned by the caller and must be disconnected on shutdown.
func setupMongo(cfg *config.Config) (*mongo.Client, error) {
	opts := options.Client().
		ApplyURI(cfg.DatabaseURL).
		SetMaxPoolSize(cfg.MongoMaxPool).
		SetConnectTimeout(cfg.MongoTimeout)

	zap.L().Info("Attempting to connect to MongoDB",
		zap.String("url", redactURL(cfg.DatabaseURL)),
		zap.String("database", cfg.MongoDatabase),
		zap.Int("max_retries", maxRetries),
		zap.Duration("retry_delay", retryDelay),
	)

	var lastErr error
	for i := 0; i < maxRetries; i++ {
		attempt := i + 1

		connectCtx, connectCancel := context.WithTimeout(context.Background(), cfg.MongoTimeout)
		client, err := mongo.Connect(connectCtx, opts)
		connectCancel()
		if err != nil {
			// Connect only fails on invalid options; retrying will not help.
			return nil, fmt.Errorf("invalid mongodb options: %w", err)
		}

		pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
		err = client.Ping(pingCtx, readpref.Primary())
		pingCancel()
		if err == nil {
			zap.L().Info("Successfully connected and pinged MongoDB", zap.Int("attempt", attempt))
			return client, nil
		}

		_ = client.Disconnect(context.Background())
		lastErr = fmt.Errorf("unable to ping mongodb (attempt %d/%d): %w", attempt, maxRetries, err)
		zap.L().Warn("MongoDB ping failed, retrying...", zap.Int("attempt", attempt), zap.Error(err))
		if i < maxRetries-1 {
			time.Sleep(retryDelay)
		}
	}

	return nil, fmt.Errorf("failed to connect to mongodb after %d attempts: %w", maxRetries, lastErr)
}

// setupRedis initializes the Redis client with retry logic.
func setupRedis(cfg *config.Config) (*redis.Client, error) {
	redisOpts := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}
	zap.L().Info("Attempting to connect to Redis", zap.String("address", redisOpts.Addr), zap.Int("db", redisOpts.DB))

	var lastErr error
	for i := 0; i < maxRetries; i++ {
		attempt := i + 1
		client := redis.NewClient(redisOpts)

		pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
		_, err := client.Ping(pingCtx).Result()
		pingCancel()
		if err == nil {
			zap.L().Info("Successfully connected and pinged Redis", zap.Int("attempt", attempt))
			return client, nil
		}

		client.Close()
		lastErr = fmt.Errorf("unable to ping redis (attempt %d/%d): %w", attempt, maxRetries, err)
		zap.L().Warn("Redis ping failed, retrying...", zap.Int("attempt", attempt), zap.Error(err))
		if i < maxRetries-1 {
			time.Sleep(retryDelay)
		}
	}

	return nil, fmt.Errorf("failed to connect to redis after %d attempts: %w", maxRetries, lastErr)
}

// connectRabbitMQ dials RabbitMQ with retry logic and logs unexpected connection loss.
func connectRabbitMQ(rawURL string, logger *zap.Logger) (*amqp091.Connection, error) {
	logger.Info("Attempting to connect to RabbitMQ",
		zap.String("url", redactURL(rawURL)),
		zap.Int("max_retries", maxRetries),
		zap.Duration("retry_delay", retryDelay),
	)

	var err error
	for i := 0; i < maxRetries; i++ {
		attempt := i + 1
		var conn *amqp091.Connection
		conn, err = amqp091.Dial(rawURL)
		if err == nil {
			logger.Info("Successfully connected to RabbitMQ", zap.Int("attempt", attempt))
			notifyClose := conn.NotifyClose(make(chan *amqp091.Error, 1))
			go func() {
				if err := <-notifyClose; err != nil {
					logger.Error("RabbitMQ connection closed unexpectedly", zap.Error(err))
				}
			}()
			return conn, nil
		}
		logger.Warn("RabbitMQ connection failed, retrying...", zap.Int("attempt", attempt), zap.Error(err))
		if i < maxRetries-1 {
			time.Sleep(retryDelay)
		}
	}
	return nil, fmt.Errorf("failed to connect to RabbitMQ after %d attempts: %w", maxRetries, err)
}
