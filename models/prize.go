package models

import (
	"time"

	"gorm.io/gorm"
)

type Prize struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	Name        string         `json:"name" gorm:"not null"`
	Description string         `json:"description"`
	Amount      float64        `json:"amount" gorm:"not null;default:0"` // recomputed on every participant join
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}
