package main

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/orimhanre/distrinaranjos-sub004/config"
	orderhdl "github.com/orimhanre/distrinaranjos-sub004/internal/api/orders/handler"
	ordersvc "github.com/orimhanre/distrinaranjos-sub004/internal/api/orders/service"
	orderstore "github.com/orimhanre/distrinaranjos-sub004/internal/api/orders/store"
	"github.com/orimhanre/distrinaranjos-sub004/internal/database"
	"github.com/orimhanre/distrinaranjos-sub004/internal/documents"
	"github.com/orimhanre/distrinaranjos-sub004/internal/logger"
	"github.com/orimhanre/distrinaranjos-sub004/internal/notification"
	"github.com/orimhanre/distrinaranjos-sub004/internal/worker"
)

// application holds everything main needs after wiring.
type application struct {
	cfg     *config.Configuration
	client  *mongo.Client
	handler *orderhdl.OrderHandler
	purger  *worker.PurgeWorker
}

// initApplication loads config, connects MongoDB, ensures indexes on both
// environment databases and wires the two environment service stacks.
func initApplication() (*application, error) {
	cfg, err := config.NewConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	client, err := database.GetInstance(cfg)
	if err != nil {
		return nil, err
	}

	var dispatcher notification.Dispatcher
	if cfg.FirebaseProjectID != "" && cfg.FirebaseCredentialsPath != "" {
		fcm, err := notification.NewFCMDispatcher(context.Background(), cfg.FirebaseProjectID, cfg.FirebaseCredentialsPath)
		if err != nil {
			// Push delivery is optional; the rest of the service runs without it.
			logger.GetAppLogger().WithError(err).Warn("Push dispatcher unavailable, notifications disabled")
		} else {
			dispatcher = fcm
		}
	}

	var generator documents.Generator
	if cfg.DocumentRendererURL != "" {
		generator = documents.NewHTTPRenderer(cfg.DocumentRendererURL)
	}

	regular, err := initEnvironment(client, cfg, cfg.MongoDB_DBName_Regular, "regular", dispatcher)
	if err != nil {
		return nil, err
	}
	virtual, err := initEnvironment(client, cfg, cfg.MongoDB_DBName_Virtual, "virtual", dispatcher)
	if err != nil {
		return nil, err
	}

	purger := worker.NewPurgeWorker(
		[]*ordersvc.LifecycleManager{regular.Lifecycle, virtual.Lifecycle},
		time.Duration(cfg.PurgeIntervalMinutes)*time.Minute,
	)

	return &application{
		cfg:     cfg,
		client:  client,
		handler: orderhdl.NewOrderHandler(regular, virtual, generator),
		purger:  purger,
	}, nil
}

// closeApplication releases held resources.
func closeApplication(app *application) error {
	return database.CloseInstance(app.client)
}

// initEnvironment builds one environment's store and service stack.
func initEnvironment(client *mongo.Client, cfg *config.Configuration, dbName, env string, dispatcher notification.Dispatcher) (*orderhdl.EnvServices, error) {
	db := client.Database(dbName)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := database.EnsureIndexes(ctx, db); err != nil {
		return nil, fmt.Errorf("failed to ensure indexes on %s: %w", dbName, err)
	}

	store := orderstore.NewMongoRecordStore(db, env)
	sync := ordersvc.NewDualWriteCoordinator(store)

	sourceEnv := cfg.SourceEnvTag
	if env != "regular" {
		sourceEnv = fmt.Sprintf("%s-%s", cfg.SourceEnvTag, env)
	}

	return &orderhdl.EnvServices{
		Store:     store,
		Sync:      sync,
		Lifecycle: ordersvc.NewLifecycleManager(store, sync, cfg.ArchiveRetentionDays, sourceEnv),
		Deleter:   ordersvc.NewBatchDeleter(store),
		Notifier:  notification.NewService(dispatcher, store.Tokens),
	}, nil
}
