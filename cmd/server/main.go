package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/orimhanre/distrinaranjos-sub004/internal/api/router"
	"github.com/orimhanre/distrinaranjos-sub004/internal/logger"
)

func main() {
	if err := logger.Init(nil); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	log := logger.GetAppLogger()

	app, err := initApplication()
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go app.purger.Start(ctx)

	fiberApp := initFiberApp(app.cfg)
	router.SetupRoutes(fiberApp, app.cfg.JwtSecret, app.handler)

	// Shutdown on SIGINT/SIGTERM, then stop workers and close the client.
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		log.Info("Shutdown signal received")
		cancel()
		if err := fiberApp.Shutdown(); err != nil {
			log.WithError(err).Error("Fiber shutdown failed")
		}
	}()

	address := ":" + app.cfg.Address
	log.WithField("address", address).Info("Starting server")
	if err := fiberApp.Listen(address); err != nil {
		log.Fatalf("Error in Fiber Listen: %v", err)
	}

	if err := closeApplication(app); err != nil {
		log.WithError(err).Error("Cleanup failed")
	}
	log.Info("Server stopped")
}
