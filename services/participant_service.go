package services

import (
	"errors"
	"strings"
	"time"

	"gursha/models"

	"github.com/google/logger"
	"gorm.io/gorm"
)

const defaultEmoji = "😀"

type ParticipantService struct {
	db       *gorm.DB
	packages *PackageService
}

func NewParticipantService(db *gorm.DB, packages *PackageService) *ParticipantService {
	return &ParticipantService{
		db:       db,
		packages: packages,
	}
}

type AddParticipantRequest struct {
	Name  string `json:"name"`
	Photo string `json:"photo"`
	Emoji string `json:"emoji"`
}

type UpdateParticipantRequest struct {
	Name  *string `json:"name"`
	Photo *string `json:"photo"`
	Emoji *string `json:"emoji"`
}

// AddParticipant records a person joining a game and settles the game's
// money state: the game total is recounted from scratch, the linked prize is
// repriced, and the controller's package is charged the game's captured
// per-participant system revenue. The deduction is best-effort; a bookkeeping
// failure is queued for reconciliation and never fails the join itself.
// Join and prize events are broadcast to the game's live boards via hub.
func (s *ParticipantService) AddParticipant(gameID uint, req *AddParticipantRequest, hub *Hub) (*models.Participant, error) {
	var game models.Game
	if err := s.db.First(&game, gameID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, err
	}

	if strings.TrimSpace(req.Name) == "" {
		return nil, &ValidationError{Fields: []string{"name"}}
	}

	emoji := req.Emoji
	if emoji == "" {
		emoji = defaultEmoji
	}

	participant := models.Participant{
		Name:         req.Name,
		Photo:        req.Photo,
		Emoji:        emoji,
		GameID:       game.ID,
		ControllerID: game.ControllerID,
	}
	if err := s.db.Create(&participant).Error; err != nil {
		return nil, err
	}

	totalCollected, err := s.recountGame(&game)
	if err != nil {
		return nil, err
	}

	if _, err := s.packages.Deduct(game.ControllerID, game.SystemRevenue); err != nil {
		s.packages.RecordDeductionFailure(DeductionEvent{
			ControllerID:  game.ControllerID,
			GameID:        game.ID,
			ParticipantID: participant.ID,
			Amount:        game.SystemRevenue,
			Reason:        err.Error(),
			OccurredAt:    time.Now(),
		})
	}

	if hub != nil {
		hub.BroadcastParticipantUpdate(game.ID, participant, "joined")
		s.broadcastPrizeUpdate(hub, &game, totalCollected)
	}

	logger.Infof("Participant %d joined game %d (%.2f collected)", participant.ID, game.ID, totalCollected)
	return &participant, nil
}

// recountGame recomputes the game's collected total from the live participant
// count and reprices the linked prize. Counting from scratch instead of
// incrementing keeps the total correct after concurrent joins, removals or
// manual corrections.
func (s *ParticipantService) recountGame(game *models.Game) (float64, error) {
	var count int64
	if err := s.db.Model(&models.Participant{}).Where("game_id = ?", game.ID).Count(&count).Error; err != nil {
		return 0, err
	}
	totalCollected := float64(count) * game.EntranceFee

	if err := s.db.Model(game).Update("total_collected", totalCollected).Error; err != nil {
		return 0, err
	}

	if game.PrizeID != nil {
		prizeAmount := totalCollected * PrizeShare
		if err := s.db.Model(&models.Prize{}).Where("id = ?", *game.PrizeID).Update("amount", prizeAmount).Error; err != nil {
			return 0, err
		}
	}

	return totalCollected, nil
}

func (s *ParticipantService) broadcastPrizeUpdate(hub *Hub, game *models.Game, totalCollected float64) {
	if game.PrizeID == nil {
		return
	}
	hub.BroadcastToGame(game.ID, "prize_update", map[string]interface{}{
		"prize_id":        *game.PrizeID,
		"amount":          totalCollected * PrizeShare,
		"total_collected": totalCollected,
	})
}

func (s *ParticipantService) GetParticipants(gameID uint) ([]models.Participant, error) {
	var participants []models.Participant
	err := s.db.Where("game_id = ?", gameID).Find(&participants).Error
	return participants, err
}

func (s *ParticipantService) GetAllParticipants() ([]models.Participant, error) {
	var participants []models.Participant
	err := s.db.Find(&participants).Error
	return participants, err
}

func (s *ParticipantService) GetParticipantsByController(controllerID uint) ([]models.Participant, error) {
	var participants []models.Participant
	err := s.db.Where("controller_id = ?", controllerID).Find(&participants).Error
	return participants, err
}

func (s *ParticipantService) UpdateParticipant(participantID uint, req *UpdateParticipantRequest) (*models.Participant, error) {
	var participant models.Participant
	if err := s.db.First(&participant, participantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrParticipantNotFound
		}
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, &ValidationError{Fields: []string{"name"}}
		}
		updates["name"] = *req.Name
	}
	if req.Photo != nil {
		updates["photo"] = *req.Photo
	}
	if req.Emoji != nil && *req.Emoji != "" {
		updates["emoji"] = *req.Emoji
	}

	if len(updates) > 0 {
		if err := s.db.Model(&participant).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return &participant, nil
}

// DeleteParticipant removes a participant and recounts the game's totals so a
// correction is reflected immediately, not on the next join. The removal and
// the repriced prize are broadcast to the game's live boards.
func (s *ParticipantService) DeleteParticipant(participantID uint, hub *Hub) error {
	var participant models.Participant
	if err := s.db.First(&participant, participantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrParticipantNotFound
		}
		return err
	}

	if err := s.db.Delete(&participant).Error; err != nil {
		return err
	}

	var game models.Game
	err := s.db.First(&game, participant.GameID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// Game already gone, nothing left to recount.
		return nil
	}
	if err != nil {
		return err
	}

	totalCollected, err := s.recountGame(&game)
	if err != nil {
		return err
	}

	if hub != nil {
		hub.BroadcastParticipantUpdate(game.ID, participant, "left")
		s.broadcastPrizeUpdate(hub, &game, totalCollected)
	}

	return nil
}
