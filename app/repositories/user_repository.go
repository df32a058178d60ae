package repositories

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/shashiranjanraj/bazaar/app/models"
	"gorm.io/gorm"
)

// UserRepository handles database operations for shoppers.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetOrCreate upserts a user by telegram id, refreshing the username on
// every contact since people rename themselves.
func (r *UserRepository) GetOrCreate(telegramID int64, username string) (models.User, error) {
	var user models.User
	err := r.db.Where("telegram_id = ?", telegramID).First(&user).Error

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		user = models.User{TelegramID: telegramID, TelegramUsername: username, CanReceiveMessage: true}
		err = r.db.Create(&user).Error
	case err == nil && username != "" && user.TelegramUsername != username:
		user.TelegramUsername = username
		err = r.db.Save(&user).Error
	}

	return user, err
}

// GetByID looks up a user by primary key.
func (r *UserRepository) GetByID(id uint) (models.User, error) {
	var user models.User
	err := r.db.First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return user, ErrNotFound
	}
	return user, err
}

// GetByTelegramID looks up a user by telegram id.
func (r *UserRepository) GetByTelegramID(telegramID int64) (models.User, error) {
	var user models.User
	err := r.db.Where("telegram_id = ?", telegramID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return user, ErrNotFound
	}
	return user, err
}

// GetByEntity resolves "123456" or "@username" to a user, the way admins
// type them into the credit-management prompt.
func (r *UserRepository) GetByEntity(entity string) (models.User, error) {
	entity = strings.TrimSpace(entity)

	if id, err := strconv.ParseInt(entity, 10, 64); err == nil {
		return r.GetByTelegramID(id)
	}

	var user models.User
	err := r.db.Where("telegram_username = ?", strings.TrimPrefix(entity, "@")).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return user, ErrNotFound
	}
	return user, err
}

// Update persists changes to an existing user.
func (r *UserRepository) Update(user *models.User) error {
	return r.db.Save(user).Error
}

// SetLocation stores the user's preferred delivery location.
func (r *UserRepository) SetLocation(userID uint, locationID *uint) error {
	return r.db.Model(&models.User{}).Where("id = ?", userID).
		Update("location_id", locationID).Error
}

// ActiveReceivers returns users who have not blocked the bot, for broadcasts.
func (r *UserRepository) ActiveReceivers() ([]models.User, error) {
	var users []models.User
	err := r.db.Where("can_receive_message = ?", true).Find(&users).Error
	return users, err
}

// CountAll counts every registered user.
func (r *UserRepository) CountAll() (int64, error) {
	var n int64
	err := r.db.Model(&models.User{}).Count(&n).Error
	return n, err
}

// NewSince returns users registered after the cutoff, newest first.
func (r *UserRepository) NewSince(cutoff time.Time) ([]models.User, error) {
	var users []models.User
	err := r.db.Where("created_at >= ?", cutoff).
		Order("created_at DESC").
		Find(&users).Error
	return users, err
}
