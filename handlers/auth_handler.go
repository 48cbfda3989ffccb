package handlers

import (
	"net/http"

	"gursha/services"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService    *services.AuthService
	packageService *services.PackageService
}

func NewAuthHandler(authService *services.AuthService, packageService *services.PackageService) *AuthHandler {
	return &AuthHandler{
		authService:    authService,
		packageService: packageService,
	}
}

func (h *AuthHandler) SignUp(c *gin.Context) {
	var req services.SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	user, err := h.authService.SignUp(&req)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "User created successfully.", "user": user})
}

func (h *AuthHandler) SignIn(c *gin.Context) {
	var req services.SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	resp, err := h.authService.SignIn(&req)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) GetProfile(c *gin.Context) {
	userID := c.GetUint("user_id")

	user, err := h.authService.GetProfile(userID)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) GetDevices(c *gin.Context) {
	userID := c.GetUint("user_id")

	devices, err := h.packageService.GetDevices(userID)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"devices": devices})
}

type removeDeviceRequest struct {
	DeviceID string `json:"device_id" binding:"required"`
}

func (h *AuthHandler) RemoveDevice(c *gin.Context) {
	var req removeDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Device ID is required."})
		return
	}

	userID := c.GetUint("user_id")
	if err := h.packageService.RemoveDevice(userID, req.DeviceID); err != nil {
		writeServiceError(c, err)
		return
	}

	devices, err := h.packageService.GetDevices(userID)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Device removed successfully", "devices": devices})
}
