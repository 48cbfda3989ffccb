package models

import (
	"time"

	"gorm.io/gorm"
)

type Game struct {
	ID             uint           `json:"id" gorm:"primaryKey"`
	Name           string         `json:"name" gorm:"not null"`
	MealTime       string         `json:"meal_time" gorm:"not null"` // breakfast, lunch, dinner
	EntranceFee    float64        `json:"entrance_fee" gorm:"not null"`
	ControllerID   uint           `json:"controller_id" gorm:"not null;index"`
	PrizeID        *uint          `json:"prize_id"`
	WinnerID       *uint          `json:"winner_id"`
	Status         string         `json:"status" gorm:"not null;default:'ongoing'"`     // ongoing, completed
	SystemRevenue  float64        `json:"system_revenue" gorm:"not null"`               // per-participant cut, fixed at creation
	TotalCollected float64        `json:"total_collected" gorm:"not null;default:0"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `json:"-" gorm:"index"`

	// Relationships
	Controller   User          `json:"controller,omitempty" gorm:"foreignKey:ControllerID"`
	Prize        *Prize        `json:"prize,omitempty"`
	Winner       *Participant  `json:"winner,omitempty" gorm:"foreignKey:WinnerID"`
	Participants []Participant `json:"participants,omitempty" gorm:"foreignKey:GameID"`
}
