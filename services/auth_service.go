package services

import (
	"errors"
	"strings"
	"time"

	"gursha/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/logger"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService struct {
	db        *gorm.DB
	jwtSecret string
	packages  *PackageService
}

func NewAuthService(db *gorm.DB, jwtSecret string, packages *PackageService) *AuthService {
	return &AuthService{
		db:        db,
		jwtSecret: jwtSecret,
		packages:  packages,
	}
}

type SignUpRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type DeviceInfo struct {
	DeviceID   string `json:"device_id"`
	DeviceName string `json:"device_name"`
}

type SignInRequest struct {
	Username   string      `json:"username"`
	Password   string      `json:"password"`
	DeviceInfo *DeviceInfo `json:"device_info"`
}

type SignInResponse struct {
	Token    string `json:"token"`
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	Devices  int    `json:"devices"`
}

func (s *AuthService) SignUp(req *SignUpRequest) (*models.User, error) {
	fields := []string{}
	if strings.TrimSpace(req.Username) == "" {
		fields = append(fields, "username")
	}
	if req.Password == "" {
		fields = append(fields, "password")
	}
	role := req.Role
	if role == "" {
		role = models.RoleGameController
	}
	if role != models.RoleAdmin && role != models.RoleGameController {
		fields = append(fields, "role")
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	var existing models.User
	if err := s.db.Where("username = ?", req.Username).First(&existing).Error; err == nil {
		return nil, ErrUserExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Username: req.Username,
		Password: string(hashed),
		Role:     role,
		// New accounts start unlimited; admins assign a quota later.
		Package: models.Package{IsUnlimited: true},
	}
	if err := s.db.Create(&user).Error; err != nil {
		return nil, err
	}

	logger.Infof("User %s created with role %s", user.Username, user.Role)
	return &user, nil
}

// SignIn authenticates a user and issues a 24h token. Controllers with a
// depleted limited package are refused outright so a stale session cannot be
// traded for a fresh one, and their login devices are registered against the
// two-device cap.
func (s *AuthService) SignIn(req *SignInRequest) (*SignInResponse, error) {
	if req.Username == "" || req.Password == "" {
		return nil, &ValidationError{Fields: []string{"username", "password"}}
	}

	var user models.User
	if err := s.db.Where("username = ?", req.Username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if user.Role == models.RoleGameController &&
		!user.Package.IsUnlimited &&
		user.Package.RemainingAmount <= 0 {
		return nil, &PackageDepletedError{OriginalAmount: user.Package.Amount}
	}

	if user.Role == models.RoleGameController && req.DeviceInfo != nil && req.DeviceInfo.DeviceID != "" {
		if err := s.packages.RegisterDevice(user.ID, req.DeviceInfo.DeviceID, req.DeviceInfo.DeviceName); err != nil {
			return nil, err
		}
	}

	token, err := s.generateToken(&user)
	if err != nil {
		return nil, err
	}

	devices, err := s.packages.GetDevices(user.ID)
	if err != nil {
		return nil, err
	}

	logger.Infof("User %s signed in (role %s, %d devices)", user.Username, user.Role, len(devices))
	return &SignInResponse{
		Token:    token,
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		Devices:  len(devices),
	}, nil
}

func (s *AuthService) GetProfile(userID uint) (*models.User, error) {
	return s.packages.GetController(userID)
}

// EnsureAdmin bootstraps the admin account from config at startup. A blank
// password disables the bootstrap.
func (s *AuthService) EnsureAdmin(username, password string) error {
	if password == "" {
		logger.Infof("No admin password configured, skipping admin bootstrap")
		return nil
	}

	var existing models.User
	err := s.db.Where("username = ?", username).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := models.User{
		Username: username,
		Password: string(hashed),
		Role:     models.RoleAdmin,
		Package:  models.Package{IsUnlimited: true},
	}
	if err := s.db.Create(&admin).Error; err != nil {
		return err
	}

	logger.Infof("Admin user %s created", username)
	return nil
}

func (s *AuthService) generateToken(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"id":   user.ID,
		"role": user.Role,
		"exp":  time.Now().Add(24 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}
