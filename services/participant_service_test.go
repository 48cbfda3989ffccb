package services

import (
	"testing"

	"gursha/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newParticipantFixture(t *testing.T) (*gorm.DB, *GameService, *ParticipantService, *PackageService) {
	t.Helper()
	db := setupTestDB(t)
	packages := NewPackageService(db, nil)
	games := NewGameService(db)
	participants := NewParticipantService(db, packages)
	return db, games, participants, packages
}

func TestAddParticipant(t *testing.T) {
	db, games, participants, _ := newParticipantFixture(t)
	controller := createController(t, db, models.Package{IsUnlimited: true})

	game, err := games.CreateGame(&CreateGameRequest{
		Name:         "Lunch Bingo",
		MealTime:     "lunch",
		EntranceFee:  50,
		ControllerID: controller.ID,
	})
	require.NoError(t, err)

	t.Run("copies the game's controller and defaults the emoji", func(t *testing.T) {
		participant, err := participants.AddParticipant(game.ID, &AddParticipantRequest{Name: "Abebe"}, nil)
		require.NoError(t, err)

		assert.Equal(t, controller.ID, participant.ControllerID)
		assert.Equal(t, game.ID, participant.GameID)
		assert.Equal(t, "😀", participant.Emoji)
	})

	t.Run("unknown game", func(t *testing.T) {
		_, err := participants.AddParticipant(99999, &AddParticipantRequest{Name: "Abebe"}, nil)
		assert.ErrorIs(t, err, ErrGameNotFound)
	})

	t.Run("missing name", func(t *testing.T) {
		_, err := participants.AddParticipant(game.ID, &AddParticipantRequest{}, nil)

		var validation *ValidationError
		require.ErrorAs(t, err, &validation)
		assert.Equal(t, []string{"name"}, validation.Fields)
	})
}

func TestTotalCollectedRecount(t *testing.T) {
	db, games, participants, _ := newParticipantFixture(t)
	controller := createController(t, db, models.Package{IsUnlimited: true})

	game, err := games.CreateGame(&CreateGameRequest{
		Name:         "Dinner Bingo",
		MealTime:     "dinner",
		EntranceFee:  50,
		ControllerID: controller.ID,
	})
	require.NoError(t, err)

	// The total is recounted from scratch on every join, so after N joins it
	// must be exactly N * fee with no cumulative drift.
	for n := 1; n <= 5; n++ {
		_, err := participants.AddParticipant(game.ID, &AddParticipantRequest{Name: "Guest"}, nil)
		require.NoError(t, err)

		reloaded, err := games.GetGameByID(game.ID)
		require.NoError(t, err)
		assert.Equal(t, float64(n)*50, reloaded.TotalCollected)
	}
}

func TestPrizeRecompute(t *testing.T) {
	db, games, participants, _ := newParticipantFixture(t)
	controller := createController(t, db, models.Package{IsUnlimited: true})

	prize, err := games.CreatePrize(&CreatePrizeRequest{Name: "Dinner for two"})
	require.NoError(t, err)

	game, err := games.CreateGame(&CreateGameRequest{
		Name:         "Lunch Bingo",
		MealTime:     "lunch",
		EntranceFee:  50,
		ControllerID: controller.ID,
		PrizeID:      &prize.ID,
	})
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, err := participants.AddParticipant(game.ID, &AddParticipantRequest{Name: "Guest"}, nil)
		require.NoError(t, err)
	}

	var reloaded models.Prize
	require.NoError(t, db.First(&reloaded, prize.ID).Error)

	// 2 participants * 50 collected, winner's share is 70%.
	assert.Equal(t, 70.0, reloaded.Amount)
}

func TestDeleteParticipantRecounts(t *testing.T) {
	db, games, participants, _ := newParticipantFixture(t)
	controller := createController(t, db, models.Package{IsUnlimited: true})

	prize, err := games.CreatePrize(&CreatePrizeRequest{Name: "Dinner for two"})
	require.NoError(t, err)

	game, err := games.CreateGame(&CreateGameRequest{
		Name:         "Lunch Bingo",
		MealTime:     "lunch",
		EntranceFee:  50,
		ControllerID: controller.ID,
		PrizeID:      &prize.ID,
	})
	require.NoError(t, err)

	var last *models.Participant
	for i := 0; i < 3; i++ {
		last, err = participants.AddParticipant(game.ID, &AddParticipantRequest{Name: "Guest"}, nil)
		require.NoError(t, err)
	}

	reloaded, err := games.GetGameByID(game.ID)
	require.NoError(t, err)
	require.Equal(t, 150.0, reloaded.TotalCollected)

	// Removing a participant corrects the total and the prize right away, not
	// on the next join.
	require.NoError(t, participants.DeleteParticipant(last.ID, nil))

	reloaded, err = games.GetGameByID(game.ID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, reloaded.TotalCollected)

	var reloadedPrize models.Prize
	require.NoError(t, db.First(&reloadedPrize, prize.ID).Error)
	assert.Equal(t, 70.0, reloadedPrize.Amount)

	t.Run("unknown participant", func(t *testing.T) {
		err := participants.DeleteParticipant(99999, nil)
		assert.ErrorIs(t, err, ErrParticipantNotFound)
	})
}

func TestPackageDeductionFlow(t *testing.T) {
	db, games, participants, packages := newParticipantFixture(t)
	controller := createController(t, db, models.Package{Amount: 100, RemainingAmount: 100})

	game, err := games.CreateGame(&CreateGameRequest{
		Name:         "Lunch Bingo",
		MealTime:     "lunch",
		EntranceFee:  50,
		ControllerID: controller.ID,
	})
	require.NoError(t, err)
	require.Equal(t, 15.0, game.SystemRevenue)

	join := func() {
		t.Helper()
		_, err := participants.AddParticipant(game.ID, &AddParticipantRequest{Name: "Guest"}, nil)
		require.NoError(t, err)
	}
	remaining := func() float64 {
		t.Helper()
		user, err := packages.GetController(controller.ID)
		require.NoError(t, err)
		return user.Package.RemainingAmount
	}

	// First join charges one participant's system revenue.
	join()
	assert.Equal(t, 85.0, remaining())

	// Five more joins leave 100 - 6*15 = 10.
	for i := 0; i < 5; i++ {
		join()
	}
	assert.Equal(t, 10.0, remaining())

	// The seventh join is allowed into "the last game": the deduction clamps
	// at zero instead of erroring.
	assert.NoError(t, packages.CheckAccess(controller.ID, models.RoleGameController))
	join()
	assert.Equal(t, 0.0, remaining())

	// From now on the guard denies every paid action until a refill.
	err = packages.CheckAccess(controller.ID, models.RoleGameController)
	var depleted *PackageDepletedError
	require.ErrorAs(t, err, &depleted)
	assert.Equal(t, 100.0, depleted.OriginalAmount)
}

func TestUnlimitedControllerNeverCharged(t *testing.T) {
	db, games, participants, packages := newParticipantFixture(t)
	controller := createController(t, db, models.Package{IsUnlimited: true, RemainingAmount: 40})

	game, err := games.CreateGame(&CreateGameRequest{
		Name:         "Breakfast Bingo",
		MealTime:     "breakfast",
		EntranceFee:  50,
		ControllerID: controller.ID,
	})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := participants.AddParticipant(game.ID, &AddParticipantRequest{Name: "Guest"}, nil)
		require.NoError(t, err)
	}

	user, err := packages.GetController(controller.ID)
	require.NoError(t, err)
	assert.Equal(t, 40.0, user.Package.RemainingAmount)
	assert.NoError(t, packages.CheckAccess(controller.ID, models.RoleGameController))
}

func TestDeductionFailureDoesNotBlockJoin(t *testing.T) {
	db, _, participants, _ := newParticipantFixture(t)

	// A game whose controller record is gone: the join must still succeed,
	// with the bookkeeping failure left to reconciliation.
	game := models.Game{
		Name:          "Orphaned Bingo",
		MealTime:      "dinner",
		EntranceFee:   50,
		ControllerID:  99999,
		Status:        "ongoing",
		SystemRevenue: 15,
	}
	require.NoError(t, db.Create(&game).Error)

	participant, err := participants.AddParticipant(game.ID, &AddParticipantRequest{Name: "Guest"}, nil)
	require.NoError(t, err)
	assert.NotZero(t, participant.ID)

	var reloaded models.Game
	require.NoError(t, db.First(&reloaded, game.ID).Error)
	assert.Equal(t, 50.0, reloaded.TotalCollected)
}
