package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gursha/models"

	"github.com/google/logger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MaxDevicesPerUser caps concurrent logins for a controller account. The cap
// is enforced by rejecting the next device outright, never by evicting one.
const MaxDevicesPerUser = 2

const reconciliationKey = "reconciliation:deductions"

// PackageService is the single owner of controller package state. Every paid
// action goes through CheckAccess before it commits and through Deduct after.
type PackageService struct {
	db    *gorm.DB
	redis *redis.Client
}

func NewPackageService(db *gorm.DB, redis *redis.Client) *PackageService {
	return &PackageService{
		db:    db,
		redis: redis,
	}
}

func (s *PackageService) GetController(userID uint) (*models.User, error) {
	var user models.User
	if err := s.db.Preload("Devices").First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// CheckAccess gates paid actions (game create/update, participant join). It is
// read-only: admins always pass, unlimited packages always pass, and a limited
// package with nothing remaining is denied with the depletion payload.
func (s *PackageService) CheckAccess(userID uint, role string) error {
	if role == models.RoleAdmin {
		return nil
	}

	user, err := s.GetController(userID)
	if err != nil {
		return err
	}

	if user.Package.IsUnlimited {
		return nil
	}

	if user.Package.RemainingAmount <= 0 {
		return &PackageDepletedError{OriginalAmount: user.Package.Amount}
	}

	return nil
}

// Deduct subtracts amount from a controller's remaining balance, clamping at
// zero. The whole read-modify-write happens in a single conditional UPDATE so
// concurrent deductions cannot lose updates or drive the balance negative.
// The returned balance comes from the UPDATE's RETURNING clause, so it is the
// value this deduction produced even when other deductions race it. Unlimited
// packages and already-depleted packages are left untouched.
func (s *PackageService) Deduct(userID uint, amount float64) (float64, error) {
	var updated models.User
	res := s.db.Model(&updated).
		Clauses(clause.Returning{Columns: []clause.Column{{Name: "package_remaining_amount"}}}).
		Where("id = ? AND package_is_unlimited = ? AND package_remaining_amount > 0", userID, false).
		Update("package_remaining_amount",
			gorm.Expr("CASE WHEN package_remaining_amount > ? THEN package_remaining_amount - ? ELSE 0 END", amount, amount))
	if res.Error != nil {
		return 0, res.Error
	}

	if res.RowsAffected > 0 {
		remaining := updated.Package.RemainingAmount
		logger.Infof("Deducted %.2f from controller %d package: %.2f remaining", amount, userID, remaining)
		return remaining, nil
	}

	// Unlimited, already depleted, or no such controller: nothing was touched,
	// report the balance as stored.
	user, err := s.GetController(userID)
	if err != nil {
		return 0, err
	}
	return user.Package.RemainingAmount, nil
}

type RefillRequest struct {
	Amount          *float64 `json:"amount"`
	IsUnlimited     *bool    `json:"is_unlimited"`
	RemainingAmount *float64 `json:"remaining_amount"`
}

// Refill is the admin-side package mutation: it can set the quota, the
// remaining balance, or switch the package to/from unlimited. Remaining is
// never allowed below zero; it is not checked against the quota (admins may
// top up ad hoc).
func (s *PackageService) Refill(userID uint, req *RefillRequest) (*models.User, error) {
	user, err := s.GetController(userID)
	if err != nil {
		return nil, err
	}

	fields := []string{}
	if req.Amount != nil && *req.Amount < 0 {
		fields = append(fields, "amount")
	}
	if req.RemainingAmount != nil && *req.RemainingAmount < 0 {
		fields = append(fields, "remaining_amount")
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	updates := map[string]interface{}{}
	if req.Amount != nil {
		updates["package_amount"] = *req.Amount
	}
	if req.IsUnlimited != nil {
		updates["package_is_unlimited"] = *req.IsUnlimited
	}
	if req.RemainingAmount != nil {
		updates["package_remaining_amount"] = *req.RemainingAmount
	}

	if len(updates) > 0 {
		if err := s.db.Model(user).Updates(updates).Error; err != nil {
			return nil, err
		}
	}

	logger.Infof("Refilled package for controller %d", userID)
	return s.GetController(userID)
}

type UpdateUserRequest struct {
	Username       *string        `json:"username"`
	Image          *string        `json:"image"`
	Location       *string        `json:"location"`
	RestaurantName *string        `json:"restaurant_name"`
	PhoneNumber    *string        `json:"phone_number"`
	Package        *RefillRequest `json:"package"`
}

func (s *PackageService) GetUsers() ([]models.User, error) {
	var users []models.User
	err := s.db.Preload("Devices").Find(&users).Error
	return users, err
}

// UpdateUser applies profile changes and, when present, the package refill.
func (s *PackageService) UpdateUser(userID uint, req *UpdateUserRequest) (*models.User, error) {
	user, err := s.GetController(userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Username != nil {
		if *req.Username == "" {
			return nil, &ValidationError{Fields: []string{"username"}}
		}
		updates["username"] = *req.Username
	}
	if req.Image != nil {
		updates["image"] = *req.Image
	}
	if req.Location != nil {
		updates["location"] = *req.Location
	}
	if req.RestaurantName != nil {
		updates["restaurant_name"] = *req.RestaurantName
	}
	if req.PhoneNumber != nil {
		updates["phone_number"] = *req.PhoneNumber
	}

	if len(updates) > 0 {
		if err := s.db.Model(user).Updates(updates).Error; err != nil {
			return nil, err
		}
	}

	if req.Package != nil {
		return s.Refill(userID, req.Package)
	}
	return s.GetController(userID)
}

func (s *PackageService) DeleteUser(userID uint) error {
	res := s.db.Delete(&models.User{}, userID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// RegisterDevice records a login device for a controller. A known deviceID
// refreshes its last-login time (and name, when provided); an unknown one is
// added only while the account is under the device cap.
func (s *PackageService) RegisterDevice(userID uint, deviceID, deviceName string) error {
	var device models.Device
	err := s.db.Where("user_id = ? AND device_id = ?", userID, deviceID).First(&device).Error
	if err == nil {
		device.LastLogin = time.Now()
		if deviceName != "" {
			device.DeviceName = deviceName
		}
		return s.db.Save(&device).Error
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	var count int64
	if err := s.db.Model(&models.Device{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return err
	}
	if count >= MaxDevicesPerUser {
		return ErrMaxDevices
	}

	if deviceName == "" {
		deviceName = "Unknown Device"
	}
	return s.db.Create(&models.Device{
		UserID:     userID,
		DeviceID:   deviceID,
		DeviceName: deviceName,
		LastLogin:  time.Now(),
	}).Error
}

func (s *PackageService) GetDevices(userID uint) ([]models.Device, error) {
	if _, err := s.GetController(userID); err != nil {
		return nil, err
	}

	var devices []models.Device
	if err := s.db.Where("user_id = ?", userID).Find(&devices).Error; err != nil {
		return nil, err
	}
	return devices, nil
}

func (s *PackageService) RemoveDevice(userID uint, deviceID string) error {
	res := s.db.Where("user_id = ? AND device_id = ?", userID, deviceID).Delete(&models.Device{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrDeviceNotFound
	}
	return nil
}

// DeductionEvent is a bookkeeping failure queued for operator reconciliation.
type DeductionEvent struct {
	ControllerID  uint      `json:"controller_id"`
	GameID        uint      `json:"game_id"`
	ParticipantID uint      `json:"participant_id"`
	Amount        float64   `json:"amount"`
	Reason        string    `json:"reason"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// RecordDeductionFailure surfaces a failed package deduction to operators.
// The parent action (the participant join) has already succeeded and must not
// be rolled back, so the event is logged and queued instead of returned.
func (s *PackageService) RecordDeductionFailure(event DeductionEvent) {
	logger.Errorf("Package deduction failed for controller %d (game %d, participant %d, amount %.2f): %s",
		event.ControllerID, event.GameID, event.ParticipantID, event.Amount, event.Reason)

	if s.redis == nil {
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		logger.Errorf("Failed to marshal deduction event: %v", err)
		return
	}

	if err := s.redis.LPush(context.Background(), reconciliationKey, data).Err(); err != nil {
		logger.Errorf("Failed to queue deduction event for reconciliation: %v", err)
	}
}

// PendingDeductionFailures lists queued reconciliation events, newest first.
func (s *PackageService) PendingDeductionFailures() ([]DeductionEvent, error) {
	if s.redis == nil {
		return []DeductionEvent{}, nil
	}

	entries, err := s.redis.LRange(context.Background(), reconciliationKey, 0, -1).Result()
	if err != nil {
		return nil, err
	}

	events := make([]DeductionEvent, 0, len(entries))
	for _, entry := range entries {
		var event DeductionEvent
		if err := json.Unmarshal([]byte(entry), &event); err != nil {
			logger.Errorf("Skipping malformed reconciliation entry: %v", err)
			continue
		}
		events = append(events, event)
	}
	return events, nil
}
