package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/rosie073/shopfinalcross/internal/blobstore"
	"github.com/rosie073/shopfinalcross/internal/cache"
	"github.com/rosie073/shopfinalcross/internal/config"
	"github.com/rosie073/shopfinalcross/internal/docstore"
	mongostore "github.com/rosie073/shopfinalcross/internal/docstore/mongo"
	pgstore "github.com/rosie073/shopfinalcross/internal/docstore/postgres"
	h "github.com/rosie073/shopfinalcross/internal/http"
	"github.com/rosie073/shopfinalcross/internal/localstore"
	"github.com/rosie073/shopfinalcross/internal/logger"
	"github.com/rosie073/shopfinalcross/internal/publisher"
	"github.com/rosie073/shopfinalcross/internal/storefront"
)

const mediaBucket = "media"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogDev)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()
	zap.ReplaceGlobals(log)

	ctx := context.Background()
	var closers []func()
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}()

	// Document store
	var docs docstore.Store
	var mongoDB *mongo.Database
	switch cfg.Docstore {
	case config.DocstoreMongo:
		mongoDB, err = mongostore.Connect(ctx, mongostore.ConnectOptions{URI: cfg.MongoURI, Database: cfg.MongoDBName})
		if err != nil {
			log.Fatal("failed to connect to MongoDB", zap.Error(err))
		}
		closers = append(closers, func() { _ = mongoDB.Client().Disconnect(context.Background()) })
		docs = mongostore.NewStore(mongoDB)
		log.Info("connected to MongoDB", zap.String("uri", cfg.MongoURI), zap.String("db", cfg.MongoDBName))
	case config.DocstorePostgres:
		pg, err := pgstore.Open(cfg.PostgresDSN)
		if err != nil {
			log.Fatal("failed to connect to Postgres", zap.Error(err))
		}
		closers = append(closers, func() { _ = pg.Close() })
		if err := pg.RunMigrations(); err != nil {
			log.Fatal("failed to run migrations", zap.Error(err))
		}
		docs = pg
		log.Info("connected to Postgres")
	default:
		docs = docstore.NewMemory()
		log.Warn("using in-memory document store, data is lost on exit")
	}
	docs = docstore.NewBreaker(docs, docstore.DefaultBreakerSettings(), log)

	// Remote cart cache
	var cartCache cache.CartCache = cache.Noop{}
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       0,
		})
		closers = append(closers, func() { _ = redisClient.Close() })
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatal("redis connection failed", zap.Error(err))
		}
		cartCache = cache.NewRedisCache(redisClient)
		log.Info("redis ping succeeded", zap.String("addr", cfg.RedisAddr))
	}

	// Order events
	var events publisher.Publisher = publisher.Noop{}
	if len(cfg.KafkaBrokers) > 0 {
		k := publisher.NewKafka(cfg.KafkaBrokers...)
		closers = append(closers, func() { _ = k.Close() })
		events = k
		log.Info("publishing order events", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", publisher.Topic))
	}

	// Product images
	var blobs blobstore.Store = blobstore.NewMemory(cfg.MediaBaseURL)
	if mongoDB != nil {
		gfs, err := blobstore.NewGridFS(mongoDB, mediaBucket, cfg.MediaBaseURL)
		if err != nil {
			log.Fatal("failed to open GridFS bucket", zap.Error(err))
		}
		blobs = gfs
	}

	// Browser-side storage
	var local localstore.Store = localstore.NewMemory()
	if cfg.LocalstorePath != "" {
		lite, err := localstore.NewSQLite(cfg.LocalstorePath)
		if err != nil {
			log.Fatal("failed to open local store", zap.Error(err))
		}
		closers = append(closers, func() { _ = lite.Close() })
		if err := lite.RunMigrations(); err != nil {
			log.Fatal("failed to migrate local store", zap.Error(err))
		}
		local = lite
	}

	sessions := storefront.NewManager(storefront.Deps{
		Docs:      docs,
		Local:     local,
		CartCache: cartCache,
		Blobs:     blobs,
		Publisher: events,
		Log:       log,
	}, cfg.SessionIdleTTL, storefront.DefaultSweepInterval)
	closers = append(closers, func() { _ = sessions.Close() })

	if cfg.SeedOnStart {
		seedCtx, cancel := context.WithTimeout(ctx, cfg.RequestTimeout)
		if err := sessions.Catalog().Seed(seedCtx); err != nil {
			log.Warn("catalog seed failed", zap.Error(err))
		}
		cancel()
	}

	router := h.NewRouter(sessions, blobs, h.RouterConfig{
		RequestTimeout:     cfg.RequestTimeout,
		MaxRequestBodySize: cfg.MaxRequestBodySize,
	}, log)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(router, "storefront"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("storefront starting", zap.String("port", cfg.HTTPPort), zap.String("docstore", cfg.Docstore))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server exited")
}
