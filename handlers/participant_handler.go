package handlers

import (
	"net/http"

	"gursha/services"

	"github.com/gin-gonic/gin"
)

type ParticipantHandler struct {
	participantService *services.ParticipantService
	hub                *services.Hub
}

func NewParticipantHandler(participantService *services.ParticipantService, hub *services.Hub) *ParticipantHandler {
	return &ParticipantHandler{
		participantService: participantService,
		hub:                hub,
	}
}

func (h *ParticipantHandler) AddParticipant(c *gin.Context) {
	gameID, ok := parseIDParam(c, "gameId")
	if !ok {
		return
	}

	var req services.AddParticipantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	participant, err := h.participantService.AddParticipant(gameID, &req, h.hub)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Participant added successfully", "participant": participant})
}

func (h *ParticipantHandler) GetParticipants(c *gin.Context) {
	gameID, ok := parseIDParam(c, "gameId")
	if !ok {
		return
	}

	participants, err := h.participantService.GetParticipants(gameID)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, participants)
}

func (h *ParticipantHandler) GetAllParticipants(c *gin.Context) {
	participants, err := h.participantService.GetAllParticipants()
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, participants)
}

func (h *ParticipantHandler) GetParticipantsByController(c *gin.Context) {
	controllerID, ok := parseIDParam(c, "controllerId")
	if !ok {
		return
	}

	participants, err := h.participantService.GetParticipantsByController(controllerID)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, participants)
}

func (h *ParticipantHandler) UpdateParticipant(c *gin.Context) {
	participantID, ok := parseIDParam(c, "participantId")
	if !ok {
		return
	}

	var req services.UpdateParticipantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	participant, err := h.participantService.UpdateParticipant(participantID, &req)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, participant)
}

func (h *ParticipantHandler) DeleteParticipant(c *gin.Context) {
	participantID, ok := parseIDParam(c, "participantId")
	if !ok {
		return
	}

	if err := h.participantService.DeleteParticipant(participantID, h.hub); err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Participant deleted successfully"})
}
