package models

import (
	"time"

	"gorm.io/gorm"
)

type Participant struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	Name         string         `json:"name" gorm:"not null"`
	Photo        string         `json:"photo"`
	Emoji        string         `json:"emoji" gorm:"not null;default:'😀'"`
	GameID       uint           `json:"game_id" gorm:"not null;index"`
	ControllerID uint           `json:"controller_id" gorm:"not null;index"` // copied from the game at join time
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`

	// Relationships
	Game Game `json:"game,omitempty"`
}
