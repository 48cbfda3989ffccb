package handlers

import (
	"net/http"
	"strconv"
	"time"

	"gursha/models"
	"gursha/services"

	"github.com/gin-gonic/gin"
)

type GameHandler struct {
	gameService *services.GameService
	hub         *services.Hub
}

func NewGameHandler(gameService *services.GameService, hub *services.Hub) *GameHandler {
	return &GameHandler{
		gameService: gameService,
		hub:         hub,
	}
}

func parseIDParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid " + name + " provided"})
		return 0, false
	}
	return uint(id), true
}

func (h *GameHandler) CreateGame(c *gin.Context) {
	var req services.CreateGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	// Controllers create games for themselves; admins may name a controller.
	if req.ControllerID == 0 || c.GetString("user_role") != models.RoleAdmin {
		req.ControllerID = c.GetUint("user_id")
	}

	game, err := h.gameService.CreateGame(&req)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Game created successfully", "game": game})
}

func (h *GameHandler) GetGames(c *gin.Context) {
	games, err := h.gameService.GetGames()
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, games)
}

func (h *GameHandler) GetGameByID(c *gin.Context) {
	gameID, ok := parseIDParam(c, "gameId")
	if !ok {
		return
	}

	game, err := h.gameService.GetGameByID(gameID)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, game)
}

func (h *GameHandler) UpdateGame(c *gin.Context) {
	gameID, ok := parseIDParam(c, "gameId")
	if !ok {
		return
	}

	var req services.UpdateGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	game, err := h.gameService.UpdateGame(gameID, &req, h.hub)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, game)
}

func (h *GameHandler) DeleteGame(c *gin.Context) {
	gameID, ok := parseIDParam(c, "gameId")
	if !ok {
		return
	}

	if err := h.gameService.DeleteGame(gameID); err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Game deleted successfully"})
}

func (h *GameHandler) GetGamesByController(c *gin.Context) {
	controllerID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	games, err := h.gameService.GetGamesByController(controllerID)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, games)
}

func (h *GameHandler) GetControllerRevenue(c *gin.Context) {
	controllerID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	asOf := time.Now()
	if raw := c.Query("as_of"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid as_of timestamp, expected RFC3339"})
			return
		}
		asOf = parsed
	}

	revenue, err := h.gameService.GetControllerRevenue(controllerID, asOf)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, revenue)
}

func (h *GameHandler) CreatePrize(c *gin.Context) {
	var req services.CreatePrizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	prize, err := h.gameService.CreatePrize(&req)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Prize created successfully", "prize": prize})
}

func (h *GameHandler) GetPrizes(c *gin.Context) {
	prizes, err := h.gameService.GetPrizes()
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, prizes)
}
