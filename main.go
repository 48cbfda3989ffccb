package main

import (
	"io"
	"log"

	"gursha/config"
	"gursha/handlers"
	"gursha/middleware"
	"gursha/models"
	"gursha/routes"
	"gursha/services"

	"github.com/gin-gonic/gin"
	"github.com/google/logger"
)

func main() {
	defer logger.Init("gursha", true, false, io.Discard).Close()

	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto-migrate database models
	err = db.AutoMigrate(
		&models.User{},
		&models.Device{},
		&models.Game{},
		&models.Participant{},
		&models.Prize{},
	)
	if err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Initialize Redis
	redisClient := config.InitRedis(cfg)

	// Initialize services
	packageService := services.NewPackageService(db, redisClient)
	authService := services.NewAuthService(db, cfg.JWTSecret, packageService)
	gameService := services.NewGameService(db)
	participantService := services.NewParticipantService(db, packageService)

	// Ensure the admin account exists
	if err := authService.EnsureAdmin(cfg.AdminUsername, cfg.AdminPassword); err != nil {
		log.Fatal("Failed to create admin user:", err)
	}

	// Initialize WebSocket hub
	hub := services.NewHub()
	go hub.Run()

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, packageService)
	gameHandler := handlers.NewGameHandler(gameService, hub)
	participantHandler := handlers.NewParticipantHandler(participantService, hub)
	userHandler := handlers.NewUserHandler(authService, packageService)

	// Setup Gin router
	router := gin.Default()

	// Add CORS middleware
	router.Use(middleware.CORS())

	// Setup routes
	routes.SetupRoutes(router, authHandler, gameHandler, participantHandler, userHandler, hub, gameService, packageService, cfg.JWTSecret)

	// Start server
	log.Printf("Server starting on port %s", cfg.Port)
	if err := router.Run(cfg.BindAddress + ":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
