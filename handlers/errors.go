package handlers

import (
	"errors"
	"net/http"

	"gursha/services"

	"github.com/gin-gonic/gin"
)

// writeServiceError maps service errors onto HTTP responses. Depletion gets
// its remediation payload so clients can render a "contact admin" state
// instead of a generic error; storage failures stay opaque.
func writeServiceError(c *gin.Context, err error) {
	var (
		validation *services.ValidationError
		depleted   *services.PackageDepletedError
	)

	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{
			"message": validation.Error(),
			"fields":  validation.Fields,
		})
	case errors.As(err, &depleted):
		c.JSON(http.StatusForbidden, gin.H{
			"message":         "Package depleted. Please contact admin to refill your package.",
			"packageDepleted": true,
			"originalAmount":  depleted.OriginalAmount,
		})
	case errors.Is(err, services.ErrMaxDevices):
		c.JSON(http.StatusForbidden, gin.H{
			"message":           "You have reached the maximum number of devices for this account. Please remove another device before logging in with a new one.",
			"maxDevicesReached": true,
		})
	case errors.Is(err, services.ErrGameNotFound),
		errors.Is(err, services.ErrParticipantNotFound),
		errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrDeviceNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": err.Error()})
	case errors.Is(err, services.ErrUserExists):
		c.JSON(http.StatusBadRequest, gin.H{"message": "User already exists."})
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid credentials."})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
	}
}
