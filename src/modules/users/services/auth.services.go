package users

import (
	"context"
	"errors"
	"strings"
	"time"

	"yemenflix/src/auth"
	"yemenflix/src/database"
	lib "yemenflix/src/modules/users/lib"
	models "yemenflix/src/modules/users/models"
	"yemenflix/src/utils"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type AuthService struct {
	db         *database.Manager
	jwt        *auth.JWTManager
	bcryptCost int
}

func NewAuthService(db *database.Manager, jwt *auth.JWTManager, bcryptCost int) *AuthService {
	return &AuthService{db: db, jwt: jwt, bcryptCost: bcryptCost}
}

type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *models.User `json:"user"`
}

func (s *AuthService) issue(u *models.User) (*AuthResponse, error) {
	token, expires, err := s.jwt.GenerateToken(u.ID, u.Username, u.IsAdmin)
	if err != nil {
		return nil, err
	}
	return &AuthResponse{Token: token, ExpiresAt: expires, User: u}, nil
}

// Register creates an active, non-admin account and signs it in.
func (s *AuthService) Register(ctx context.Context, req lib.RegisterRequest) (*AuthResponse, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	enabled, err := s.db.SettingEnabled(ctx, "enable_registration", true)
	if err != nil {
		return nil, err
	}
	if !enabled {
		return nil, utils.Forbidden("registration is disabled")
	}

	hash, err := auth.HashPassword(req.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	user := models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		IsActive:     true,
		LastLogin:    &now,
	}

	err = s.db.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).
			Where("username = ? OR email = ?", user.Username, user.Email).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return utils.Conflict("username or email already registered")
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		settings := models.DefaultNotificationSettings(user.ID)
		return tx.Create(&settings).Error
	})
	if err != nil {
		return nil, err
	}
	log.Ctx(ctx).Info().Uint("user_id", user.ID).Str("username", user.Username).Msg("user registered")
	return s.issue(&user)
}

// Login checks credentials against the username or email.
func (s *AuthService) Login(ctx context.Context, req lib.LoginRequest) (*AuthResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}
	db := s.db.DB().WithContext(ctx)

	ident := strings.TrimSpace(req.Username)
	var user models.User
	err := db.Where("username = ? OR email = ?", ident, strings.ToLower(ident)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.Unauthorized("invalid username or password")
	}
	if err != nil {
		return nil, err
	}
	if err := auth.CheckPassword(user.PasswordHash, req.Password); err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return nil, utils.Unauthorized("invalid username or password")
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, utils.Forbidden("account is disabled")
	}

	now := time.Now()
	if err := db.Model(&user).UpdateColumn("last_login", now).Error; err != nil {
		return nil, err
	}
	user.LastLogin = &now
	return s.issue(&user)
}

func (s *AuthService) Me(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	err := s.db.DB().WithContext(ctx).First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.NotFound("User not found")
	}
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, utils.Forbidden("account is disabled")
	}
	return &user, nil
}

// Logout revokes the token for the rest of its lifetime.
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims) error {
	return s.jwt.Revoke(ctx, claims)
}
