package repositories

import (
	"errors"
	"fmt"
	"time"

	"github.com/shashiranjanraj/bazaar/app/models"
	"gorm.io/gorm"
)

// CartRepository handles the single open cart per user.
type CartRepository struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) *CartRepository {
	return &CartRepository{db: db}
}

// GetOrCreate returns the user's cart, creating an empty one on first use.
func (r *CartRepository) GetOrCreate(userID uint) (models.Cart, error) {
	var cart models.Cart
	err := r.db.Where("user_id = ?", userID).First(&cart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		cart = models.Cart{UserID: userID}
		err = r.db.Create(&cart).Error
	}
	return cart, err
}

// AddItem puts quantity units of a product into the cart, merging with an
// existing line for the same product.
func (r *CartRepository) AddItem(cartID, categoryID uint, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("cart: quantity must be positive, got %d", quantity)
	}

	var line models.CartItem
	err := r.db.Where("cart_id = ? AND category_id = ?", cartID, categoryID).
		First(&line).Error

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		line = models.CartItem{CartID: cartID, CategoryID: categoryID, Quantity: quantity}
		return r.db.Create(&line).Error
	case err != nil:
		return err
	default:
		line.Quantity += quantity
		return r.db.Save(&line).Error
	}
}

// Items returns the cart lines with their product nodes preloaded.
func (r *CartRepository) Items(cartID uint) ([]models.CartItem, error) {
	var lines []models.CartItem
	err := r.db.Preload("Category").
		Where("cart_id = ?", cartID).
		Order("id").
		Find(&lines).Error
	return lines, err
}

// GetItem returns one cart line with its product preloaded.
func (r *CartRepository) GetItem(cartItemID uint) (models.CartItem, error) {
	var line models.CartItem
	err := r.db.Preload("Category").First(&line, cartItemID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return line, ErrNotFound
	}
	return line, err
}

// RemoveItem drops a single line from the cart.
func (r *CartRepository) RemoveItem(cartItemID uint) error {
	return r.db.Unscoped().Delete(&models.CartItem{}, cartItemID).Error
}

// Clear empties the cart after checkout.
func (r *CartRepository) Clear(cartID uint) error {
	return r.db.Unscoped().Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error
}

// PurgeStale drops cart lines untouched for longer than maxAge. Prices and
// stock drift; an abandoned cart is noise by the time the shopper returns.
func (r *CartRepository) PurgeStale(maxAge time.Duration) (int64, error) {
	cutoff := time.Now().Add(-maxAge)
	res := r.db.Unscoped().
		Where("updated_at < ?", cutoff).
		Delete(&models.CartItem{})
	return res.RowsAffected, res.Error
}
