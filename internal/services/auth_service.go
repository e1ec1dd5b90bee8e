package services

import (
	"errors"
	"fmt"

	"coffeestock-backend/config"
	"coffeestock-backend/internal/database"
	"coffeestock-backend/internal/models"
	"coffeestock-backend/internal/utils"
	"coffeestock-backend/pkg/logger"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserInactive       = errors.New("account is not active")
)

func LoginUser(email, password string) (string, *models.User, error) {
	var user models.User
	if err := database.DB.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return "", nil, ErrUserInactive
	}

	token, err := utils.GenerateSessionToken(user.ID, user.Role, user.Email)
	if err != nil {
		return "", nil, err
	}

	return token, &user, nil
}

// RegisterUser self-registers an inactive account and mails the admins
// approve/reject links carrying 48h action tokens. The account cannot log
// in until an admin approves it.
func RegisterUser(email, name, password string) (*models.User, error) {
	var existing models.User
	result := database.DB.Where("email = ?", email).First(&existing)
	if result.Error == nil {
		return nil, ErrEmailTaken
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, result.Error
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:    email,
		Name:     name,
		Password: string(hashedPassword),
		Role:     models.RoleUser,
		IsActive: false,
	}
	if err := database.DB.Create(user).Error; err != nil {
		return nil, err
	}

	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Log.Error("registration mail panicked", zap.Any("panic", r))
			}
		}()
		if err := sendRegistrationMail(user); err != nil {
			RecordRuntimeError("mail", err)
			logger.Log.Error("registration mail failed", zap.Error(err))
		}
	}()

	return user, nil
}

func sendRegistrationMail(user *models.User) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	token, err := utils.GenerateActionToken(user.ID, user.Email)
	if err != nil {
		return err
	}

	admins, err := AdminEmails()
	if err != nil {
		return err
	}
	if len(admins) == 0 {
		return errors.New("no active admins to notify")
	}

	approve := fmt.Sprintf("%s/api/v1/auth/registration/approve?token=%s", cfg.PublicBaseURL, token)
	reject := fmt.Sprintf("%s/api/v1/auth/registration/reject?token=%s", cfg.PublicBaseURL, token)

	subject := fmt.Sprintf("New registration: %s", user.Email)
	body := fmt.Sprintf(
		"%s (%s) requested an account.\n\nApprove: %s\nReject: %s\n\nThe links expire in 48 hours.",
		user.Name, user.Email, approve, reject)

	return SendMail(admins, subject, body)
}

// ResolveRegistration activates or deletes a pending account given a
// verified action token.
func ResolveRegistration(userID uint, approve bool) (*models.User, error) {
	var user models.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if approve {
		if err := database.DB.Model(&user).Update("is_active", true).Error; err != nil {
			return nil, err
		}
		invalidateUserCache(user.ID)
		database.DB.First(&user, userID)
		return &user, nil
	}

	if err := database.DB.Delete(&models.User{}, userID).Error; err != nil {
		return nil, err
	}
	invalidateUserCache(userID)
	return &user, nil
}

// EnsureBootstrapAdmin creates the configured admin account on first
// start.
func EnsureBootstrapAdmin(cfg *config.Config) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}

	var admin models.User
	err := database.DB.Where("email = ?", cfg.AdminEmail).First(&admin).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin = models.User{
		Email:    cfg.AdminEmail,
		Name:     "Administrator",
		Password: string(hashedPassword),
		Role:     models.RoleAdmin,
		IsActive: true,
		Notify:   true,
	}
	if err := database.DB.Create(&admin).Error; err != nil {
		return err
	}

	logger.Log.Info("bootstrap admin created", zap.String("email", cfg.AdminEmail))
	return nil
}
