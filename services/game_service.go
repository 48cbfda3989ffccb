package services

import (
	"errors"
	"strings"
	"time"

	"gursha/models"

	"github.com/google/logger"
	"gorm.io/gorm"
)

// RevenueRate is the platform's cut of each participant's entrance fee. It is
// applied exactly once, at game creation, and the captured value on the game
// record drives every later deduction; changing the constant never reprices
// existing games.
const RevenueRate = 0.3

// PrizeShare is the winner's share of collected entrance fees.
const PrizeShare = 1 - RevenueRate

type GameService struct {
	db *gorm.DB
}

func NewGameService(db *gorm.DB) *GameService {
	return &GameService{db: db}
}

type CreateGameRequest struct {
	Name         string  `json:"name"`
	MealTime     string  `json:"meal_time"`
	EntranceFee  float64 `json:"entrance_fee"`
	ControllerID uint    `json:"controller_id"`
	PrizeID      *uint   `json:"prize_id"`
}

type UpdateGameRequest struct {
	Name        *string  `json:"name"`
	MealTime    *string  `json:"meal_time"`
	EntranceFee *float64 `json:"entrance_fee"`
	Status      *string  `json:"status"`
	WinnerID    *uint    `json:"winner_id"`
	PrizeID     *uint    `json:"prize_id"`
}

type ControllerRevenue struct {
	TotalRevenue       float64 `json:"total_revenue"`
	DailyRevenue       float64 `json:"daily_revenue"`
	TotalSystemRevenue float64 `json:"total_system_revenue"`
	DailySystemRevenue float64 `json:"daily_system_revenue"`
}

func validMealTime(mealTime string) bool {
	switch mealTime {
	case "breakfast", "lunch", "dinner":
		return true
	}
	return false
}

func (s *GameService) CreateGame(req *CreateGameRequest) (*models.Game, error) {
	fields := []string{}
	if strings.TrimSpace(req.Name) == "" {
		fields = append(fields, "name")
	}
	if !validMealTime(req.MealTime) {
		fields = append(fields, "meal_time")
	}
	if req.EntranceFee <= 0 {
		fields = append(fields, "entrance_fee")
	}
	if req.ControllerID == 0 {
		fields = append(fields, "controller_id")
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	game := models.Game{
		Name:         req.Name,
		MealTime:     req.MealTime,
		EntranceFee:  req.EntranceFee,
		ControllerID: req.ControllerID,
		PrizeID:      req.PrizeID,
		Status:       "ongoing",
		// Capture the system cut now; participants joining later are each
		// charged this amount against the controller's package.
		SystemRevenue:  req.EntranceFee * RevenueRate,
		TotalCollected: 0,
	}

	if err := s.db.Create(&game).Error; err != nil {
		return nil, err
	}

	logger.Infof("Game %d created by controller %d (%s, fee %.2f, system revenue %.2f per participant)",
		game.ID, game.ControllerID, game.MealTime, game.EntranceFee, game.SystemRevenue)
	return &game, nil
}

// UpdateGame applies a partial update, re-validating any touched field with
// the creation rules. SystemRevenue is deliberately left alone: the cut is
// fixed when the game is created, even if the entrance fee changes later.
// Setting a winner is announced to the game's live boards via hub.
func (s *GameService) UpdateGame(gameID uint, req *UpdateGameRequest, hub *Hub) (*models.Game, error) {
	var game models.Game
	if err := s.db.First(&game, gameID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, err
	}

	fields := []string{}
	updates := map[string]interface{}{}
	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			fields = append(fields, "name")
		} else {
			updates["name"] = *req.Name
		}
	}
	if req.MealTime != nil {
		if !validMealTime(*req.MealTime) {
			fields = append(fields, "meal_time")
		} else {
			updates["meal_time"] = *req.MealTime
		}
	}
	if req.EntranceFee != nil {
		if *req.EntranceFee <= 0 {
			fields = append(fields, "entrance_fee")
		} else {
			updates["entrance_fee"] = *req.EntranceFee
		}
	}
	if req.Status != nil {
		if *req.Status != "ongoing" && *req.Status != "completed" {
			fields = append(fields, "status")
		} else {
			updates["status"] = *req.Status
		}
	}
	if req.WinnerID != nil {
		updates["winner_id"] = *req.WinnerID
	}
	if req.PrizeID != nil {
		updates["prize_id"] = *req.PrizeID
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	if len(updates) > 0 {
		if err := s.db.Model(&game).Updates(updates).Error; err != nil {
			return nil, err
		}
	}

	updated, err := s.GetGameByID(gameID)
	if err != nil {
		return nil, err
	}

	if hub != nil && req.WinnerID != nil {
		hub.BroadcastToGame(updated.ID, "winner_update", map[string]interface{}{
			"game_id":   updated.ID,
			"winner_id": *req.WinnerID,
			"status":    updated.Status,
		})
	}

	return updated, nil
}

func (s *GameService) DeleteGame(gameID uint) error {
	res := s.db.Delete(&models.Game{}, gameID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrGameNotFound
	}
	return nil
}

func (s *GameService) GetGames() ([]models.Game, error) {
	var games []models.Game
	err := s.db.
		Preload("Controller").
		Preload("Prize").
		Preload("Winner").
		Preload("Participants").
		Find(&games).Error
	return games, err
}

func (s *GameService) GetGameByID(gameID uint) (*models.Game, error) {
	var game models.Game
	err := s.db.
		Preload("Prize").
		Preload("Winner").
		Preload("Participants").
		First(&game, gameID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, err
	}
	return &game, nil
}

func (s *GameService) GetGamesByController(controllerID uint) ([]models.Game, error) {
	var games []models.Game
	err := s.db.
		Where("controller_id = ?", controllerID).
		Preload("Prize").
		Preload("Winner").
		Preload("Participants").
		Order("created_at DESC").
		Find(&games).Error
	return games, err
}

// GetControllerRevenue aggregates gross game-level revenue for a controller:
// each game contributes its entrance fee and captured system revenue once,
// regardless of how many participants joined. The daily figures cover games
// created within the calendar day containing asOf. A controller with no games
// gets zeros, not an error.
func (s *GameService) GetControllerRevenue(controllerID uint, asOf time.Time) (*ControllerRevenue, error) {
	var total struct {
		Revenue       float64
		SystemRevenue float64
	}
	err := s.db.Model(&models.Game{}).
		Select("COALESCE(SUM(entrance_fee), 0) AS revenue, COALESCE(SUM(system_revenue), 0) AS system_revenue").
		Where("controller_id = ?", controllerID).
		Scan(&total).Error
	if err != nil {
		return nil, err
	}

	dayStart := time.Date(asOf.Year(), asOf.Month(), asOf.Day(), 0, 0, 0, 0, asOf.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	var daily struct {
		Revenue       float64
		SystemRevenue float64
	}
	err = s.db.Model(&models.Game{}).
		Select("COALESCE(SUM(entrance_fee), 0) AS revenue, COALESCE(SUM(system_revenue), 0) AS system_revenue").
		Where("controller_id = ? AND created_at >= ? AND created_at < ?", controllerID, dayStart, dayEnd).
		Scan(&daily).Error
	if err != nil {
		return nil, err
	}

	return &ControllerRevenue{
		TotalRevenue:       total.Revenue,
		DailyRevenue:       daily.Revenue,
		TotalSystemRevenue: total.SystemRevenue,
		DailySystemRevenue: daily.SystemRevenue,
	}, nil
}

type CreatePrizeRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
}

func (s *GameService) CreatePrize(req *CreatePrizeRequest) (*models.Prize, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, &ValidationError{Fields: []string{"name"}}
	}

	prize := models.Prize{
		Name:        req.Name,
		Description: req.Description,
		Amount:      req.Amount,
	}
	if err := s.db.Create(&prize).Error; err != nil {
		return nil, err
	}
	return &prize, nil
}

func (s *GameService) GetPrizes() ([]models.Prize, error) {
	var prizes []models.Prize
	err := s.db.Find(&prizes).Error
	return prizes, err
}
