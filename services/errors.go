package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrGameNotFound        = errors.New("game not found")
	ErrParticipantNotFound = errors.New("participant not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrUserExists          = errors.New("user already exists")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrDeviceNotFound      = errors.New("device not found")
	ErrMaxDevices          = errors.New("maximum number of devices reached")
)

// ValidationError reports missing or malformed request fields by name.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "invalid or missing fields: " + strings.Join(e.Fields, ", ")
}

// PackageDepletedError denies a paid action for a controller whose prepaid
// package has run out. OriginalAmount carries the package quota so callers can
// render a "contact admin to refill" state.
type PackageDepletedError struct {
	OriginalAmount float64
}

func (e *PackageDepletedError) Error() string {
	return fmt.Sprintf("package depleted (original amount: %.2f)", e.OriginalAmount)
}
