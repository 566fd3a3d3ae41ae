// Command main is the entry point for the Chirp API server.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chirp/internal/bootstrap"
	"chirp/internal/config"
	"chirp/internal/server"
	"chirp/internal/storage"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	rt, err := bootstrap.InitRuntime(cfg, bootstrap.Options{SeedTopics: true})
	if err != nil {
		log.Fatalf("Failed to initialize runtime: %v", err)
	}

	var images storage.ImageStorage
	if cfg.CloudinaryURL != "" {
		images, err = storage.NewCloudinaryStorage(cfg.CloudinaryURL)
		if err != nil {
			log.Fatalf("Failed to set up image storage: %v", err)
		}
	}

	srv, err := server.NewServerWithDeps(cfg, rt.DB, rt.Redis, images)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
		if err := rt.Shutdown(ctx); err != nil {
			log.Printf("Runtime shutdown error: %v", err)
		}
	}()

	if err := srv.Start(); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}
