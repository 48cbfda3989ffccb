package models

import (
	"time"

	"gorm.io/gorm"
)

// Device is one entry in a controller's bounded login-device list.
type Device struct {
	ID         uint           `json:"id" gorm:"primaryKey"`
	UserID     uint           `json:"user_id" gorm:"not null;index"`
	DeviceID   string         `json:"device_id" gorm:"not null"`
	DeviceName string         `json:"device_name" gorm:"not null;default:'Unknown Device'"`
	LastLogin  time.Time      `json:"last_login"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"index"`
}
