package routes

import (
	"net/http"
	"strconv"

	"gursha/handlers"
	"gursha/middleware"
	"gursha/services"

	"github.com/gin-gonic/gin"
	"github.com/google/logger"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for development
	},
}

func SetupRoutes(
	router *gin.Engine,
	authHandler *handlers.AuthHandler,
	gameHandler *handlers.GameHandler,
	participantHandler *handlers.ParticipantHandler,
	userHandler *handlers.UserHandler,
	hub *services.Hub,
	gameService *services.GameService,
	packageService *services.PackageService,
	jwtSecret string,
) {
	api := router.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/signup", authHandler.SignUp)
			auth.POST("/signin", authHandler.SignIn)
		}

		// Protected routes
		protected := api.Group("/")
		protected.Use(middleware.AuthMiddleware(jwtSecret))
		{
			protected.GET("/auth/profile", authHandler.GetProfile)
			protected.GET("/auth/devices", authHandler.GetDevices)
			protected.POST("/auth/devices/remove", authHandler.RemoveDevice)

			// Game routes; creating and updating are paid actions gated on
			// the controller's package.
			games := protected.Group("/games")
			{
				games.POST("", middleware.PackageGuard(packageService), gameHandler.CreateGame)
				games.GET("", gameHandler.GetGames)
				games.GET("/:gameId", gameHandler.GetGameByID)
				games.PUT("/:gameId", middleware.PackageGuard(packageService), gameHandler.UpdateGame)
				games.DELETE("/:gameId", gameHandler.DeleteGame)

				// Participant join is the paid action that triggers the
				// per-participant package deduction.
				games.POST("/:gameId/participants", middleware.PackageGuard(packageService), participantHandler.AddParticipant)
				games.GET("/:gameId/participants", participantHandler.GetParticipants)
			}

			protected.GET("/games/controller/:id", gameHandler.GetGamesByController)
			protected.GET("/revenue/controller/:id", gameHandler.GetControllerRevenue)

			participants := protected.Group("/participants")
			{
				participants.GET("", participantHandler.GetAllParticipants)
				participants.GET("/controller/:controllerId", participantHandler.GetParticipantsByController)
				participants.PUT("/:participantId", participantHandler.UpdateParticipant)
				participants.DELETE("/:participantId", participantHandler.DeleteParticipant)
			}

			prizes := protected.Group("/prizes")
			{
				prizes.POST("", gameHandler.CreatePrize)
				prizes.GET("", gameHandler.GetPrizes)
			}

			// Admin routes
			admin := protected.Group("/")
			admin.Use(middleware.RequireAdmin())
			{
				admin.POST("/users", userHandler.CreateUser)
				admin.GET("/users", userHandler.GetUsers)
				admin.GET("/users/:userId", userHandler.GetUserByID)
				admin.PUT("/users/:userId", userHandler.UpdateUser)
				admin.DELETE("/users/:userId", userHandler.DeleteUser)
				admin.GET("/reconciliation", userHandler.GetReconciliation)
			}
		}
	}

	// WebSocket endpoint for live game boards
	router.GET("/ws/:gameId", func(c *gin.Context) {
		rawID := c.Param("gameId")
		gameID, err := strconv.ParseUint(rawID, 10, 32)
		if err != nil || gameID == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid game ID"})
			return
		}

		if _, err := gameService.GetGameByID(uint(gameID)); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "Game not found"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Errorf("WebSocket upgrade failed for game %d: %v", gameID, err)
			return
		}

		hub.RegisterClient(conn, uint(gameID))
	})

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
