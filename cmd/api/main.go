package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/IBM/sarama"
	"github.com/YouSangSon/academy-backoffice/internal/application/audit"
	"github.com/YouSangSon/academy-backoffice/internal/application/auth"
	"github.com/YouSangSon/academy-backoffice/internal/application/content"
	"github.com/YouSangSon/academy-backoffice/internal/application/leads"
	"github.com/YouSangSon/academy-backoffice/internal/application/validation"
	"github.com/YouSangSon/academy-backoffice/internal/config"
	"github.com/YouSangSon/academy-backoffice/internal/domain/repository"
	"github.com/YouSangSon/academy-backoffice/internal/infrastructure/cache"
	"github.com/YouSangSon/academy-backoffice/internal/infrastructure/messaging/kafka"
	"github.com/YouSangSon/academy-backoffice/internal/infrastructure/persistence"
	"github.com/YouSangSon/academy-backoffice/internal/infrastructure/persistence/mongodb"
	"github.com/YouSangSon/academy-backoffice/internal/infrastructure/persistence/mysql"
	grpcHandler "github.com/YouSangSon/academy-backoffice/internal/interfaces/grpc/handler"
	grpcServer "github.com/YouSangSon/academy-backoffice/internal/interfaces/grpc/server"
	httpHandler "github.com/YouSangSon/academy-backoffice/internal/interfaces/http/handler"
	"github.com/YouSangSon/academy-backoffice/internal/interfaces/http/middleware"
	"github.com/YouSangSon/academy-backoffice/internal/interfaces/http/router"
	"github.com/YouSangSon/academy-backoffice/internal/pkg/logger"
	"github.com/YouSangSon/academy-backoffice/internal/pkg/metrics"
	"github.com/YouSangSon/academy-backoffice/internal/pkg/retry"
	"github.com/YouSangSon/academy-backoffice/internal/pkg/tracing"
	"github.com/YouSangSon/academy-backoffice/internal/pkg/vault"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	configPath := flag.String("config", "./configs", "directory containing the config file")
	configName := flag.String("config-name", "config", "config file name without extension")
	flag.Parse()

	// ============================================
	// 1. Configuration
	// ============================================
	cfg, err := config.LoadConfig(*configPath, *configName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		os.Exit(1)
	}

	// ============================================
	// 2. Logger Initialization
	// ============================================
	if err := logger.Init(&logger.Config{
		Level:       cfg.Observability.Logging.Level,
		Environment: cfg.App.Environment,
		ServiceName: cfg.App.Name,
		Version:     cfg.App.Version,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logger.Fatal(ctx, "service stopped with error", zap.Error(err))
	}
	logger.Info(ctx, "service exited")
}

func run(ctx context.Context, cfg *config.Config) error {
	logger.Info(ctx, "starting academy back-office",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
		zap.String("store", cfg.Store.Backend),
		zap.String("go_version", runtime.Version()),
	)

	// ============================================
	// 3. Metrics & Tracing
	// ============================================
	var m *metrics.Metrics
	if cfg.Observability.Metrics.Enabled {
		m = metrics.GetMetrics()
	}

	tracingShutdown, err := tracing.Init(&tracing.Config{
		ServiceName:    cfg.App.Name,
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Environment,
		JaegerEndpoint: cfg.Observability.Tracing.JaegerEndpoint,
		SamplingRate:   cfg.Observability.Tracing.SamplingRate,
		Enabled:        cfg.Observability.Tracing.Enabled,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracingShutdown(shutdownCtx); err != nil {
			logger.Error(ctx, "failed to shutdown tracing", zap.Error(err))
		}
	}()

	// ============================================
	// 4. Vault (Optional)
	// ============================================
	var vaultClient *vault.Client
	if cfg.Vault.Enabled {
		vaultClient, err = vault.NewClient(ctx, &vault.Config{
			Address:      cfg.Vault.Address,
			AuthMethod:   cfg.Vault.AuthMethod,
			Token:        cfg.Vault.Token,
			RoleID:       cfg.Vault.RoleID,
			SecretID:     cfg.Vault.SecretID,
			Namespace:    cfg.Vault.Namespace,
			MongoDBPath:  cfg.Vault.MongoDBPath,
			SecretsPath:  cfg.Vault.SecretsPath,
			CacheEnabled: true,
			CacheTTL:     cfg.Vault.CacheTTL,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize vault client: %w", err)
		}
		defer vaultClient.Close()

		if cfg.MongoDB.UseVault {
			username, password, err := vaultClient.GetMongoDBCredentials(ctx)
			if err != nil {
				return fmt.Errorf("failed to get mongodb credentials from vault: %w", err)
			}
			cfg.MongoDB.Username, cfg.MongoDB.Password = username, password
			logger.Info(ctx, "using vault-managed mongodb credentials")
		}
		if cfg.Auth.JWTSecret == "" {
			if cfg.Auth.JWTSecret, err = vaultClient.GetJWTSecret(ctx); err != nil {
				return fmt.Errorf("failed to get jwt secret from vault: %w", err)
			}
		}
	}

	// ============================================
	// 5. Document Store
	// ============================================
	store, err := persistence.Open(ctx, persistence.Options{
		Backend: cfg.Store.Backend,
		MongoDB: &mongodb.Config{
			URI:            cfg.MongoDB.URI,
			Database:       cfg.MongoDB.Database,
			Username:       cfg.MongoDB.Username,
			Password:       cfg.MongoDB.Password,
			MaxPoolSize:    cfg.MongoDB.MaxPoolSize,
			MinPoolSize:    cfg.MongoDB.MinPoolSize,
			MaxConnecting:  cfg.MongoDB.MaxConnecting,
			ConnectTimeout: cfg.MongoDB.ConnectTimeout,
			Timeout:        cfg.MongoDB.Timeout,
			Transactions:   cfg.MongoDB.Transactions,
		},
		MySQL: &mysql.Config{
			Host:            cfg.MySQL.Host,
			Port:            cfg.MySQL.Port,
			User:            cfg.MySQL.User,
			Password:        cfg.MySQL.Password,
			Database:        cfg.MySQL.Database,
			MaxOpenConns:    cfg.MySQL.MaxOpenConns,
			MaxIdleConns:    cfg.MySQL.MaxIdleConns,
			ConnMaxLifetime: cfg.MySQL.ConnMaxLifetime,
			ConnMaxIdleTime: cfg.MySQL.ConnMaxIdleTime,
		},
		Retry: retry.StartupConfig(),
	})
	if err != nil {
		return fmt.Errorf("failed to open document store: %w", err)
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			logger.Error(ctx, "failed to close document store", zap.Error(err))
		}
	}()

	// ============================================
	// 6. Redis
	// ============================================
	redisClient, err := retry.DoWithValue(ctx, retry.StartupConfig(), func(ctx context.Context) (*redis.Client, error) {
		return cache.NewRedisClient(ctx, &cache.Config{
			Addr:         cfg.Redis.Addr,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
	})
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	defer redisClient.Close()

	// ============================================
	// 7. Kafka (Optional)
	// ============================================
	var publisher repository.EventPublisher
	if cfg.Kafka.Enabled {
		var codec sarama.CompressionCodec
		if err := codec.UnmarshalText([]byte(cfg.Kafka.Compression)); err != nil {
			return fmt.Errorf("invalid kafka.compression: %w", err)
		}
		p, err := kafka.NewPublisher(&kafka.ProducerConfig{
			Brokers:          cfg.Kafka.Brokers,
			ClientID:         cfg.Kafka.ClientID,
			Topic:            cfg.Kafka.Topic,
			RequiredAcks:     sarama.WaitForAll,
			Compression:      codec,
			MaxRetries:       cfg.Kafka.MaxRetries,
			RetryBackoff:     cfg.Kafka.RetryBackoff,
			EnableIdempotent: cfg.Kafka.EnableIdempotent,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize kafka publisher: %w", err)
		}
		defer p.Close()
		publisher = p
	}

	// ============================================
	// 8. Application Services
	// ============================================
	validate := validation.New()
	auditLog := audit.NewLogger(store, audit.Config{
		FailureThreshold: cfg.Audit.FailureThreshold,
		OpenTimeout:      cfg.Audit.OpenTimeout,
	})
	catalog := content.NewCatalog(store, cache.NewCacheRepository(redisClient, "catalog"), cfg.Content.CacheTTL)

	var locker content.Locker
	if cfg.Content.CurrentClassLock {
		locker = cache.NewLocker(redisClient, cfg.Content.LockTTL, cfg.Content.LockWait)
	}
	registry := content.NewRegistry(store, auditLog, validate, catalog, locker)

	authSvc, err := auth.NewService(store, cache.NewSessionStore(redisClient), auditLog, auth.Config{
		JWTSecret:  cfg.Auth.JWTSecret,
		Issuer:     cfg.Auth.Issuer,
		SessionTTL: cfg.Auth.SessionTTL,
		BcryptCost: cfg.Auth.BcryptCost,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize auth service: %w", err)
	}
	if cfg.Auth.BootstrapEmail != "" {
		admin, created, err := authSvc.EnsureAdmin(ctx, cfg.Auth.BootstrapEmail, cfg.Auth.BootstrapName, cfg.Auth.BootstrapPassword)
		if err != nil {
			return fmt.Errorf("failed to bootstrap admin: %w", err)
		}
		if created {
			logger.Info(ctx, "bootstrap admin created", logger.AdminID(admin.ID), logger.AdminEmail(admin.Email))
		}
	}

	var formLimiter middleware.Limiter
	if cfg.RateLimit.Enabled {
		formLimiter = cache.NewRateLimiter(redisClient, "ratelimit:forms", cfg.RateLimit.Requests, cfg.RateLimit.Window)
	}

	// ============================================
	// 9. HTTP Server
	// ============================================
	health := httpHandler.NewHealthHandler(cfg.App.Version)
	health.Require(store.Backend, store.HealthCheck)
	health.Require("redis", func(ctx context.Context) error { return redisClient.Ping(ctx).Err() })
	if vaultClient != nil {
		health.Optional("vault", vaultClient.HealthCheck)
	}

	engine := router.SetupRouter(router.Handlers{
		Health:  health,
		Content: httpHandler.NewContentHandler(catalog, leads.NewService(store, validate, publisher)),
		Auth:    httpHandler.NewAuthHandler(authSvc),
		Admin:   httpHandler.NewAdminHandler(registry),
		Logs:    httpHandler.NewLogsHandler(auditLog),
	}, authSvc, m, router.Options{
		Environment:    cfg.App.Environment,
		EnableTracing:  cfg.Observability.Tracing.Enabled,
		EnableMetrics:  m != nil,
		AllowedOrigins: cfg.Server.HTTP.AllowedOrigins,
		FormLimiter:    formLimiter,
		RateWindow:     cfg.RateLimit.Window,
	})

	srv := &http.Server{
		Addr:         cfg.Server.HTTP.Addr(),
		Handler:      engine,
		ReadTimeout:  cfg.Server.HTTP.ReadTimeout,
		WriteTimeout: cfg.Server.HTTP.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info(gctx, "http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	// ============================================
	// 10. gRPC Health Server
	// ============================================
	grpcHealth := grpcHandler.NewHealthHandler(store.HealthCheck, cfg.Server.GRPC.HealthInterval)
	if cfg.Server.GRPC.Enabled {
		lis, err := net.Listen("tcp", cfg.Server.GRPC.Addr())
		if err != nil {
			return fmt.Errorf("failed to listen for grpc: %w", err)
		}
		gs := grpcServer.New(grpcHealth, grpcServer.Options{
			EnableTracing:    cfg.Observability.Tracing.Enabled,
			EnableReflection: cfg.Server.GRPC.EnableReflection,
			Metrics:          m,
		})

		g.Go(func() error {
			grpcHealth.Run(gctx)
			return nil
		})
		g.Go(func() error {
			logger.Info(gctx, "grpc server listening", zap.String("addr", lis.Addr().String()))
			return gs.Serve(lis)
		})
		g.Go(func() error {
			<-gctx.Done()
			grpcHealth.Shutdown()
			gs.GracefulStop()
			return nil
		})
	}

	// ============================================
	// 11. Background Workers
	// ============================================
	if cfg.Content.FollowChanges && store.Watcher != nil {
		g.Go(func() error {
			if err := catalog.Follow(gctx, store.Watcher); err != nil {
				logger.Warn(gctx, "content change stream stopped; cache relies on TTL", zap.Error(err))
			}
			return nil
		})
	}

	g.Go(func() error {
		events, cancel := authSvc.Subscribe()
		defer cancel()
		for {
			select {
			case <-gctx.Done():
				return nil
			case ev := <-events:
				logger.Debug(gctx, "admin session changed",
					zap.String("event", string(ev.Type)),
					logger.AdminEmail(ev.Session.Email),
				)
			}
		}
	})

	// ============================================
	// 12. Graceful Shutdown
	// ============================================
	g.Go(func() error {
		<-gctx.Done()
		logger.Info(ctx, "shutting down http server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.HTTP.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http server forced to shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}
