package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	RoleAdmin          = "admin"
	RoleGameController = "gameController"
)

// Package is a controller's prepaid system-revenue allowance.
// Amount of 0 means unlimited only when IsUnlimited is also true.
// IsUnlimited carries no column default on purpose: a zero-valued false must
// reach the database as false, not be swapped for a default.
type Package struct {
	Amount          float64 `json:"amount" gorm:"not null;default:0"`
	IsUnlimited     bool    `json:"is_unlimited" gorm:"not null"`
	RemainingAmount float64 `json:"remaining_amount" gorm:"not null;default:0"`
}

type User struct {
	ID             uint           `json:"id" gorm:"primaryKey"`
	Username       string         `json:"username" gorm:"uniqueIndex;not null"`
	Password       string         `json:"-" gorm:"not null"`
	Role           string         `json:"role" gorm:"not null;default:'gameController'"` // admin, gameController
	Image          string         `json:"image"`
	Location       string         `json:"location"`
	RestaurantName string         `json:"restaurant_name"`
	PhoneNumber    string         `json:"phone_number"`
	Package        Package        `json:"package" gorm:"embedded;embeddedPrefix:package_"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `json:"-" gorm:"index"`

	// Relationships
	Devices []Device `json:"devices,omitempty" gorm:"foreignKey:UserID"`
	Games   []Game   `json:"games,omitempty" gorm:"foreignKey:ControllerID"`
}
