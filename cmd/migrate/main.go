package main

import (
	"log"
	"os"

	"haley-companion-be/internal/model"
	"haley-companion-be/pkg/database"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
)

func main() {
	// 1. Load Environment Variables
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		color.Red("Error: DB_CONNECTION_STRING is not set")
		os.Exit(1)
	}
	driver := os.Getenv("DB_DRIVER")

	// 2. Connect to Database using existing GORM helpers
	db, err := database.Open(driver, dsn)
	if err != nil {
		color.Red("Error: Failed to connect to database: %v", err)
		os.Exit(1)
	}

	// 3. Pre-Migration: Extensions (Postgres only)
	if driver == "" || driver == "postgres" {
		color.Cyan("Step 1: Setting up extensions...")
		if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto;`).Error; err != nil {
			color.Yellow("Warn: Failed to create pgcrypto: %v. Continuing...", err)
		}
	}

	// 4. AutoMigrate All Models
	tables := model.All()
	color.Cyan("Step 2: Running AutoMigrate for %d tables...", len(tables))
	if err := db.AutoMigrate(tables...); err != nil {
		color.Red("Error: AutoMigrate failed: %v", err)
		os.Exit(1)
	}

	color.Green("Success: Database migration completed.")
}
