package main

import (
	"context"
	"log"

	"github.com/labstack/echo/v4"

	"github.com/Bashy-Codes/worldfriends-webapp-sub000/internal/router"
	"github.com/Bashy-Codes/worldfriends-webapp-sub000/pkg/config"
	"github.com/Bashy-Codes/worldfriends-webapp-sub000/pkg/firebase"
	"github.com/Bashy-Codes/worldfriends-webapp-sub000/pkg/logger"
	"github.com/Bashy-Codes/worldfriends-webapp-sub000/validators"
)

func main() {
	// Load configuration
	cfg := config.Load()
	logger.Init()

	// Initialize database connections
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize databases: %v", err)
	}
	defer db.CloseDB()

	// Initialize Firebase
	ctx := context.Background()
	firebaseApp, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath, cfg.StorageBucket)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase: %v", err)
	}

	// Create Echo instance
	e := echo.New()

	// Setup global middleware
	router.SetupMiddleware(e)

	// Setup routes and dependencies
	router.SetupRoutes(e, cfg, db.Postgres, db.Mongo, firebaseApp)

	// Validator
	e.Validator = validators.NewValidator()

	// Start server
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
