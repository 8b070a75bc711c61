package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/lumahq/dispatch/internal/dispatcher"
	"github.com/lumahq/dispatch/internal/storage/postgres"
	"github.com/lumahq/dispatch/internal/transport"
	"github.com/lumahq/dispatch/internal/worker"
)

func main() {
	log.Println("Starting Worker...")

	ctx := context.Background()

	pgCfg, err := postgres.LoadConfigFromEnv(ctx)
	if err != nil {
		log.Fatal("Failed to load postgres config:", err)
	}

	db, err := postgres.ConnectDB(ctx, pgCfg)
	if err != nil {
		log.Fatal("Connection failed:", err)
	}

	queue, err := transport.NewRedisTransport(ctx, nil)
	if err != nil {
		log.Fatal("Failed to connect to redis:", err)
	}
	defer queue.Close()

	workerCfg, err := worker.LoadConfigFromEnv(ctx)
	if err != nil {
		log.Fatal("Failed to load worker config:", err)
	}

	repo := postgres.NewJobRepository(db)
	disp := dispatcher.NewDispatcher(repo, queue, worker.Registry(), workerCfg.HandlerTimeout)

	pool := worker.NewPool(workerCfg.MaxWorkers, disp, workerCfg)
	pool.Start()
	log.Printf("Worker pool active (%d runners). Press Ctrl+C to stop.", workerCfg.MaxWorkers)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	pool.Stop()
	log.Println("Shutdown complete.")
}
