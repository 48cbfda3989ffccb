package services

import (
	"testing"
	"time"

	"gursha/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateGame(t *testing.T) {
	db := setupTestDB(t)
	svc := NewGameService(db)
	controller := createController(t, db, models.Package{IsUnlimited: true})

	t.Run("captures system revenue at the fixed rate", func(t *testing.T) {
		game, err := svc.CreateGame(&CreateGameRequest{
			Name:         "Lunch Bingo",
			MealTime:     "lunch",
			EntranceFee:  50,
			ControllerID: controller.ID,
		})
		require.NoError(t, err)

		assert.Equal(t, 15.0, game.SystemRevenue)
		assert.Equal(t, "ongoing", game.Status)
		assert.Equal(t, 0.0, game.TotalCollected)
		assert.Nil(t, game.WinnerID)
	})

	t.Run("names every offending field", func(t *testing.T) {
		_, err := svc.CreateGame(&CreateGameRequest{
			Name:        "",
			MealTime:    "brunch",
			EntranceFee: 0,
		})

		var validation *ValidationError
		require.ErrorAs(t, err, &validation)
		assert.ElementsMatch(t, []string{"name", "meal_time", "entrance_fee", "controller_id"}, validation.Fields)
	})

	t.Run("rejects negative entrance fee", func(t *testing.T) {
		_, err := svc.CreateGame(&CreateGameRequest{
			Name:         "Dinner Bingo",
			MealTime:     "dinner",
			EntranceFee:  -10,
			ControllerID: controller.ID,
		})

		var validation *ValidationError
		require.ErrorAs(t, err, &validation)
		assert.Equal(t, []string{"entrance_fee"}, validation.Fields)
	})
}

func TestUpdateGame(t *testing.T) {
	db := setupTestDB(t)
	svc := NewGameService(db)
	controller := createController(t, db, models.Package{IsUnlimited: true})

	game, err := svc.CreateGame(&CreateGameRequest{
		Name:         "Breakfast Bingo",
		MealTime:     "breakfast",
		EntranceFee:  50,
		ControllerID: controller.ID,
	})
	require.NoError(t, err)

	t.Run("re-validates touched fields", func(t *testing.T) {
		bad := "supper"
		_, err := svc.UpdateGame(game.ID, &UpdateGameRequest{MealTime: &bad}, nil)

		var validation *ValidationError
		require.ErrorAs(t, err, &validation)
		assert.Equal(t, []string{"meal_time"}, validation.Fields)
	})

	t.Run("system revenue survives a fee change", func(t *testing.T) {
		newFee := 80.0
		updated, err := svc.UpdateGame(game.ID, &UpdateGameRequest{EntranceFee: &newFee}, nil)
		require.NoError(t, err)

		assert.Equal(t, 80.0, updated.EntranceFee)
		assert.Equal(t, 15.0, updated.SystemRevenue)
	})

	t.Run("completes with a winner", func(t *testing.T) {
		status := "completed"
		winnerID := uint(42)
		updated, err := svc.UpdateGame(game.ID, &UpdateGameRequest{Status: &status, WinnerID: &winnerID}, nil)
		require.NoError(t, err)

		assert.Equal(t, "completed", updated.Status)
		require.NotNil(t, updated.WinnerID)
		assert.Equal(t, uint(42), *updated.WinnerID)
	})

	t.Run("unknown game", func(t *testing.T) {
		name := "Ghost"
		_, err := svc.UpdateGame(99999, &UpdateGameRequest{Name: &name}, nil)
		assert.ErrorIs(t, err, ErrGameNotFound)
	})
}

func TestDeleteGame(t *testing.T) {
	db := setupTestDB(t)
	svc := NewGameService(db)
	controller := createController(t, db, models.Package{IsUnlimited: true})

	game, err := svc.CreateGame(&CreateGameRequest{
		Name:         "Dinner Bingo",
		MealTime:     "dinner",
		EntranceFee:  30,
		ControllerID: controller.ID,
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteGame(game.ID))
	_, err = svc.GetGameByID(game.ID)
	assert.ErrorIs(t, err, ErrGameNotFound)

	assert.ErrorIs(t, svc.DeleteGame(game.ID), ErrGameNotFound)
}

func TestGetControllerRevenue(t *testing.T) {
	db := setupTestDB(t)
	svc := NewGameService(db)
	controller := createController(t, db, models.Package{IsUnlimited: true})
	other := createController(t, db, models.Package{IsUnlimited: true})

	mustCreate := func(fee float64) *models.Game {
		game, err := svc.CreateGame(&CreateGameRequest{
			Name:         "Bingo",
			MealTime:     "lunch",
			EntranceFee:  fee,
			ControllerID: controller.ID,
		})
		require.NoError(t, err)
		return game
	}

	mustCreate(50)
	mustCreate(100)
	yesterday := mustCreate(200)

	// Push one game into the previous calendar day.
	require.NoError(t, db.Model(&models.Game{}).
		Where("id = ?", yesterday.ID).
		Update("created_at", time.Now().AddDate(0, 0, -1)).Error)

	// A different controller's games must not leak into the aggregates.
	_, err := svc.CreateGame(&CreateGameRequest{
		Name:         "Other Bingo",
		MealTime:     "dinner",
		EntranceFee:  500,
		ControllerID: other.ID,
	})
	require.NoError(t, err)

	t.Run("totals cover all games, daily only today's", func(t *testing.T) {
		revenue, err := svc.GetControllerRevenue(controller.ID, time.Now())
		require.NoError(t, err)

		assert.Equal(t, 350.0, revenue.TotalRevenue)
		assert.Equal(t, 105.0, revenue.TotalSystemRevenue)
		assert.Equal(t, 150.0, revenue.DailyRevenue)
		assert.Equal(t, 45.0, revenue.DailySystemRevenue)
	})

	t.Run("controller without games gets zeros", func(t *testing.T) {
		empty := createController(t, db, models.Package{IsUnlimited: true})

		revenue, err := svc.GetControllerRevenue(empty.ID, time.Now())
		require.NoError(t, err)

		assert.Equal(t, 0.0, revenue.TotalRevenue)
		assert.Equal(t, 0.0, revenue.DailyRevenue)
		assert.Equal(t, 0.0, revenue.TotalSystemRevenue)
		assert.Equal(t, 0.0, revenue.DailySystemRevenue)
	})
}
