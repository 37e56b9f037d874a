package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"haley-companion-be/internal/bootstrap"
	"haley-companion-be/internal/config"
	"haley-companion-be/internal/model"
	"haley-companion-be/internal/server"
	"haley-companion-be/internal/tracer"
	"haley-companion-be/pkg/database"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 0. Initialize Tracer
	shutdownTracer := tracer.InitTracer(ctx)
	defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Database
	gormDB, err := database.Open(cfg.Database.Driver, cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}
	if cfg.Database.Driver == "sqlite" {
		// Local development has no separate migrate step.
		if err := model.AutoMigrate(gormDB); err != nil {
			log.Panicf("Unable to migrate SQLite schema: %v", err)
		}
	}

	// 3. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(ctx, gormDB, cfg)
	defer container.Close()

	// 4. Start Background Services
	log.Println("Background: Starting Consumer Service...")
	if err := container.StartBackground(ctx); err != nil {
		log.Panicf("Background Consumer Error: %v", err)
	}

	// 5. Initialize Server
	srv := server.New(cfg, container)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Shutdown error: %v", err)
		}
	}()

	// 6. Run Server
	if err := srv.Run(); err != nil {
		log.Printf("Server stopped: %v", err)
	}
}
