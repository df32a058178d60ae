package repositories

import (
	"errors"
	"time"

	"github.com/shashiranjanraj/bazaar/app/models"
	"gorm.io/gorm"
)

// BuyRepository handles completed purchases.
type BuyRepository struct {
	db *gorm.DB
}

func NewBuyRepository(db *gorm.DB) *BuyRepository {
	return &BuyRepository{db: db}
}

// Create persists a purchase record.
func (r *BuyRepository) Create(buy *models.Buy) error {
	return r.db.Create(buy).Error
}

// GetByID returns a buy with user and product preloaded.
func (r *BuyRepository) GetByID(id uint) (models.Buy, error) {
	var buy models.Buy
	err := r.db.Preload("User").Preload("Category").First(&buy, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return buy, ErrNotFound
	}
	return buy, err
}

// ByUser returns one page of a user's purchase history, newest first.
func (r *BuyRepository) ByUser(userID uint, page, perPage int) ([]models.Buy, error) {
	if page < 0 {
		page = 0
	}
	var buys []models.Buy
	err := r.db.Preload("Category").
		Where("user_id = ?", userID).
		Order("id DESC").
		Limit(perPage).
		Offset(page * perPage).
		Find(&buys).Error
	return buys, err
}

// Refundable returns one page of buys that have not been refunded yet,
// newest first, with user and product preloaded.
func (r *BuyRepository) Refundable(page, perPage int) ([]models.Buy, error) {
	if page < 0 {
		page = 0
	}
	var buys []models.Buy
	err := r.db.Preload("User").Preload("Category").
		Where("is_refunded = ?", false).
		Order("id DESC").
		Limit(perPage).
		Offset(page * perPage).
		Find(&buys).Error
	return buys, err
}

// CountRefundable counts buys still eligible for refund.
func (r *BuyRepository) CountRefundable() (int64, error) {
	var n int64
	err := r.db.Model(&models.Buy{}).Where("is_refunded = ?", false).Count(&n).Error
	return n, err
}

// MarkRefunded flags a buy as refunded.
func (r *BuyRepository) MarkRefunded(id uint) error {
	return r.db.Model(&models.Buy{}).Where("id = ?", id).
		Update("is_refunded", true).Error
}

// Since returns all buys created after the cutoff.
func (r *BuyRepository) Since(cutoff time.Time) ([]models.Buy, error) {
	var buys []models.Buy
	err := r.db.Where("created_at >= ?", cutoff).Find(&buys).Error
	return buys, err
}
