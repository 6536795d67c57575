package main

import (
	"context"
	"fmt"
	"time"

	"github.com/Abraxas-365/bolsa/pkg/config"
	"github.com/Abraxas-365/bolsa/pkg/iam/auth"
	"github.com/Abraxas-365/bolsa/pkg/logx"
	"github.com/Abraxas-365/bolsa/placement/matching"
	"github.com/Abraxas-365/bolsa/placement/matching/matchingapi"
	"github.com/Abraxas-365/bolsa/placement/matching/matchingevents"
	"github.com/Abraxas-365/bolsa/placement/matching/matchinginfra"
	"github.com/Abraxas-365/bolsa/placement/matching/matchingsrv"
	"github.com/Abraxas-365/bolsa/placement/profile"
	"github.com/Abraxas-365/bolsa/placement/profile/profileinfra"
	"github.com/cenkalti/backoff/v4"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Container holds all application dependencies
type Container struct {
	Config *config.Config

	// Infrastructure
	DB       *sqlx.DB
	Redis    *redis.Client
	Producer *matchingevents.Producer

	// Repositories and queues
	Profiles  profile.Reader
	MatchRepo matching.Repository
	TaskQueue *matchinginfra.RedisTaskQueue
	Locker    *matchinginfra.RedisLocker

	// Services
	MatchService   *matchingsrv.Service
	Generator      *matchingsrv.Generator
	AsyncGenerator *matchingsrv.AsyncGenerator
	TokenService   *auth.TokenService

	// API Handlers
	MatchHandlers *matchingapi.Handlers

	// Middleware
	UnifiedAuthMiddleware *auth.UnifiedAuthMiddleware
}

// NewContainer initializes the dependency injection container
func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	c := &Container{Config: cfg}
	if err := c.initInfrastructure(ctx); err != nil {
		c.Close()
		return nil, err
	}
	c.initServices()
	return c, nil
}

func (c *Container) initInfrastructure(ctx context.Context) error {
	// 1. Database Connection
	db, err := connectDB(ctx, c.Config.DB)
	if err != nil {
		return err
	}
	c.DB = db

	if err := matchinginfra.EnsureSchema(ctx, db); err != nil {
		return fmt.Errorf("ensuring schema: %w", err)
	}

	// 2. Redis Connection
	c.Redis = redis.NewClient(&redis.Options{
		Addr:     c.Config.Redis.Addr,
		Password: c.Config.Redis.Password,
		DB:       c.Config.Redis.DB,
	})
	if err := c.Redis.Ping(ctx).Err(); err != nil {
		logx.Warnf("Redis not reachable at %s: %v", c.Config.Redis.Addr, err)
	}

	// 3. Kafka producer for match events
	if c.Config.Kafka.Enabled {
		logger := logx.L().WithOptions(zap.AddCallerSkip(-1))
		matchingevents.EnsureTopic(c.Config.Kafka.Brokers, c.Config.Kafka.Topic, c.Config.Kafka.Partitions, logger)
		c.Producer = matchingevents.NewKafkaProducer(c.Config.Kafka.Brokers, c.Config.Kafka.Topic, logger)
	}
	return nil
}

func (c *Container) initServices() {
	var publisher matching.EventPublisher = matching.NopPublisher{}
	if c.Producer != nil {
		publisher = c.Producer
	}

	c.Profiles = profileinfra.NewPostgresReader(c.DB)
	c.MatchRepo = matchinginfra.NewPostgresMatchRepository(c.DB)
	c.TaskQueue = matchinginfra.NewRedisTaskQueue(c.Redis, c.Config.Redis.QueueName, c.Config.Redis.StatusTTL)
	c.Locker = matchinginfra.NewRedisLocker(c.Redis)

	c.MatchService = matchingsrv.NewService(c.MatchRepo, c.Profiles, publisher)
	c.Generator = matchingsrv.NewGenerator(c.MatchRepo, c.Profiles, c.Locker, publisher, c.Config.Matching.LockTTL)
	c.AsyncGenerator = matchingsrv.NewAsyncGenerator(c.Generator, c.TaskQueue)

	// A nil queue turns ?async=true into ASYNC_UNAVAILABLE
	var tasks matchingapi.TaskQueue
	if c.Config.Matching.AsyncEnabled {
		tasks = c.AsyncGenerator
	}
	c.MatchHandlers = matchingapi.NewHandlers(c.MatchService, c.Generator, tasks, matching.GenerateOptions{
		MinScore: c.Config.Matching.GenerateMinScore,
		Limit:    c.Config.Matching.GenerateLimit,
	})

	c.TokenService = auth.NewTokenService(c.Config.Auth.JWTSecret, c.Config.Auth.TokenTTL, c.Config.Auth.Issuer)
	c.UnifiedAuthMiddleware = auth.NewUnifiedAuthMiddleware(c.TokenService, c.Config.Auth.Enabled)
	if !c.Config.Auth.Enabled {
		logx.Warn("Authentication disabled, every request runs with full scopes")
	}
}

// Close releases infrastructure in reverse order of creation
func (c *Container) Close() {
	if c.Producer != nil {
		c.Producer.Close()
	}
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			logx.Warnf("Failed to close redis: %v", err)
		}
	}
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			logx.Warnf("Failed to close database: %v", err)
		}
	}
	_ = logx.Sync()
}

// connectDB retries the initial connection until cfg.ConnectTimeout elapses
func connectDB(ctx context.Context, cfg config.DBConfig) (*sqlx.DB, error) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 500 * time.Millisecond
	policy.MaxElapsedTime = cfg.ConnectTimeout

	var db *sqlx.DB
	connect := func() error {
		var err error
		db, err = sqlx.ConnectContext(ctx, "postgres", cfg.DSN())
		return err
	}
	notify := func(err error, wait time.Duration) {
		logx.Warnf("Database not ready, retrying in %s: %v", wait.Round(time.Millisecond), err)
	}

	if err := backoff.RetryNotify(connect, backoff.WithContext(policy, ctx), notify); err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	logx.Infof("Connected to database %s at %s:%d", cfg.Name, cfg.Host, cfg.Port)
	return db, nil
}
