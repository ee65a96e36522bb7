package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/shashiranjanraj/foodmate/app/repositories"
	"github.com/shashiranjanraj/foodmate/config"
	"github.com/shashiranjanraj/foodmate/pkg/auth"
	"github.com/shashiranjanraj/foodmate/pkg/database"
	"github.com/shashiranjanraj/foodmate/pkg/logger"
	"github.com/shashiranjanraj/foodmate/pkg/payment"
)

// runtime is what a command needs once config is loaded.
type runtime struct {
	store   *repositories.Store
	db      *database.DB
	closers []func()
}

func (rt *runtime) Close() {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		rt.closers[i]()
	}
}

// boot loads config and opens the configured store. withLogSink ships
// log records to Mongo when LOG_MONGO is set.
func boot(ctx context.Context, withLogSink bool) (*runtime, error) {
	if err := config.Load(); err != nil {
		return nil, err
	}
	logger.Use(logger.New(os.Stdout, config.AppEnv(), config.LogLevel()))

	rt := &runtime{}
	if config.StoreDriver() == "memory" {
		logger.Warn("using in-memory store; data is lost on exit")
		rt.store = repositories.NewMemoryStore()
		return rt, nil
	}

	db, err := database.Connect(ctx, database.Options{
		URI:      config.MongoURI(),
		Database: config.MongoDB(),
	})
	if err != nil {
		return nil, err
	}
	rt.db = db
	rt.closers = append(rt.closers, func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.Close(closeCtx); err != nil {
			logger.Error("database disconnect failed", "error", err)
		}
	})

	if err := repositories.EnsureIndexes(ctx, db.Database); err != nil {
		rt.Close()
		return nil, fmt.Errorf("ensure indexes: %w", err)
	}
	rt.store = repositories.NewMongoStore(db.Client, db.Database, config.MongoTransactions())

	if withLogSink && config.LogToMongo() {
		sink := logger.NewMongoHandler(db.Collection(repositories.LogsCollection), logger.ParseLevel(config.LogLevel()))
		logger.Use(slog.New(logger.NewMultiHandler(logger.L.Handler(), sink)))
		// Flush before the client disconnects.
		rt.closers = append(rt.closers, sink.Close)
	}

	logger.Info("store ready", "driver", "mongo", "database", config.MongoDB(), "transactions", config.MongoTransactions())
	return rt, nil
}

func newSigner() *auth.Signer {
	return auth.NewSigner(config.AccessTokenSecret(), config.AccessTokenTTL())
}

// newGateway returns Stripe when a key is configured. Without one,
// payment intents fail with an internal error and everything else works.
func newGateway() (payment.Gateway, error) {
	key := config.StripeSecretKey()
	if key == "" {
		logger.Warn("STRIPE_SECRET_KEY not set; payment intents are disabled")
		return payment.Disabled{}, nil
	}
	return payment.NewStripe(key)
}
