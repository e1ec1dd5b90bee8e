package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"coffeestock-backend/internal/database"
	"coffeestock-backend/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("user with this email already exists")
	ErrSelfDelete   = errors.New("admins cannot delete their own account")
)

func userCacheKey(userID uint) string {
	return fmt.Sprintf("user:%d", userID)
}

func invalidateUserCache(userID uint) {
	if database.RedisClient != nil {
		database.RedisClient.Del(database.Ctx, userCacheKey(userID))
	}
}

func FindUserByID(userID uint) (models.User, error) {
	// Try cache
	if database.RedisClient != nil {
		val, err := database.RedisClient.Get(database.Ctx, userCacheKey(userID)).Result()
		if err == nil {
			var user models.User
			if err := json.Unmarshal([]byte(val), &user); err == nil {
				return user, nil
			}
		}
	}

	var user models.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return user, ErrUserNotFound
		}
		return user, err
	}

	// Set cache
	if database.RedisClient != nil {
		if data, err := json.Marshal(user); err == nil {
			database.RedisClient.Set(database.Ctx, userCacheKey(userID), data, time.Hour)
		}
	}

	return user, nil
}

// ResolveSessionUser loads the live user row, bypassing the cache. The
// auth gate uses it so deactivation and demotion take effect on the very
// next request regardless of cache state.
func ResolveSessionUser(userID uint) (models.User, error) {
	var user models.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return user, ErrUserNotFound
		}
		return user, err
	}
	return user, nil
}

func FindUserByEmail(email string) (models.User, error) {
	var user models.User
	if err := database.DB.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return user, ErrUserNotFound
		}
		return user, err
	}
	return user, nil
}

// FindUsers retrieves a paginated list of users.
func FindUsers(page, limit int) ([]models.User, int64, error) {
	var users []models.User
	var total int64

	offset := (page - 1) * limit

	if err := database.DB.Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := database.DB.Order("id").Limit(limit).Offset(offset).Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

// CreateUser inserts a new user row. Duplicate email is a conflict.
func CreateUser(email, name, password, role string, maxCoffees *int, notify bool) (*models.User, error) {
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
		Email:      email,
		Name:       name,
		Password:   string(hashedPassword),
		Role:       role,
		IsActive:   true,
		MaxCoffees: maxCoffees,
		Notify:     notify,
	}

	if err := database.DB.Create(user).Error; err != nil {
		return nil, err
	}

	return user, nil
}

// UpdateUser applies selective field updates and invalidates the cache so
// deactivation takes effect on the user's next request.
func UpdateUser(id uint, updates map[string]interface{}) (*models.User, error) {
	var user models.User
	if err := database.DB.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if password, ok := updates["password"].(string); ok && password != "" {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		updates["password"] = string(hashedPassword)
	}

	if email, ok := updates["email"].(string); ok && email != user.Email {
		var other models.User
		if err := database.DB.Where("email = ? AND id <> ?", email, id).First(&other).Error; err == nil {
			return nil, ErrEmailTaken
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	if err := database.DB.Model(&user).Updates(updates).Error; err != nil {
		return nil, err
	}

	invalidateUserCache(id)

	database.DB.First(&user, id)
	return &user, nil
}

// DeleteUser removes a user and cascades the user's log rows. Admins
// cannot delete themselves.
func DeleteUser(id, actorID uint) error {
	if id == actorID {
		return ErrSelfDelete
	}

	var user models.User
	if err := database.DB.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	tx := database.DB.Begin()
	if tx.Error != nil {
		return tx.Error
	}
	if err := tx.Where("user_id = ?", id).Delete(&models.CoffeeLog{}).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Delete(&models.User{}, id).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit().Error; err != nil {
		return err
	}

	invalidateUserCache(id)
	return nil
}

// NotifyRecipients lists active users who opted into notifications.
func NotifyRecipients() ([]models.User, error) {
	var users []models.User
	err := database.DB.Where("is_active = ? AND notify = ?", true, true).Find(&users).Error
	return users, err
}

// AdminEmails lists active admin addresses, used for registration mail.
func AdminEmails() ([]string, error) {
	var emails []string
	err := database.DB.Model(&models.User{}).
		Where("role = ? AND is_active = ?", models.RoleAdmin, true).
		Pluck("email", &emails).Error
	return emails, err
}
