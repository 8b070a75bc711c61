package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lumahq/dispatch/internal/dispatcher"
	"github.com/lumahq/dispatch/internal/job"
	"github.com/lumahq/dispatch/internal/models"
	"github.com/lumahq/dispatch/internal/storage/postgres"
	"github.com/lumahq/dispatch/internal/transport"
	"github.com/lumahq/dispatch/internal/worker"
	"github.com/lumahq/dispatch/middleware"
)

func main() {
	log.Println("Starting API...")

	ctx := context.Background()

	pgCfg, err := postgres.LoadConfigFromEnv(ctx)
	if err != nil {
		log.Fatal("Failed to load postgres config:", err)
	}

	db, err := postgres.ConnectDB(ctx, pgCfg)
	if err != nil {
		log.Fatal("Connection failed:", err)
	}

	if err := postgres.MigrateModels(db, &models.Job{}); err != nil {
		log.Fatal("Migration failed:", err)
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
	service := job.NewJobService(repo, queue)
	jobHandler := job.NewJobHandler(service)

	disp := dispatcher.NewDispatcher(repo, queue, worker.Registry(), workerCfg.HandlerTimeout)
	workerHandler := dispatcher.NewWorkerHandler(disp)

	r := gin.New()
	r.Use(gin.Recovery(), middleware.ErrorHandler())

	r.POST("/jobs", jobHandler.Create)
	r.GET("/jobs", jobHandler.List)
	r.GET("/jobs/:id", jobHandler.Get)

	w := r.Group("/worker", middleware.WorkerAuth(workerCfg.Secret))
	w.POST("/process", workerHandler.Process)
	w.GET("/process", workerHandler.Status)

	addr := ":8080"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}

	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		log.Printf("Listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server error:", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
	log.Println("Shutdown complete.")
}
