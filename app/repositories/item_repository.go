package repositories

import (
	"errors"

	"github.com/shashiranjanraj/bazaar/app/models"
	"gorm.io/gorm"
)

// ItemRepository handles database operations for stock units.
type ItemRepository struct {
	db *gorm.DB
}

func NewItemRepository(db *gorm.DB) *ItemRepository {
	return &ItemRepository{db: db}
}

// GetByID looks up an item by primary key.
func (r *ItemRepository) GetByID(id uint) (models.Item, error) {
	var item models.Item
	err := r.db.First(&item, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return item, ErrNotFound
	}
	return item, err
}

// CreateBatch inserts a batch of items in one statement.
func (r *ItemRepository) CreateBatch(items []models.Item) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.Create(&items).Error
}

// Unsold returns up to limit unsold items of a product, oldest first, so
// stock is sold in arrival order.
func (r *ItemRepository) Unsold(categoryID uint, limit int) ([]models.Item, error) {
	var items []models.Item
	err := r.db.Where("category_id = ? AND is_sold = ?", categoryID, false).
		Order("id").
		Limit(limit).
		Find(&items).Error
	return items, err
}

// MarkSold flags the given items as sold and links them to the buy record.
func (r *ItemRepository) MarkSold(itemIDs []uint, buyID uint) error {
	if len(itemIDs) == 0 {
		return nil
	}
	return r.db.Model(&models.Item{}).
		Where("id IN ?", itemIDs).
		Updates(map[string]interface{}{"is_sold": true, "buy_id": buyID}).Error
}

// SetNotNew clears the is_new flag on all items. Run after a restocking
// announcement so the next one only reports stock added since.
func (r *ItemRepository) SetNotNew() error {
	return r.db.Model(&models.Item{}).
		Where("is_new = ?", true).
		Update("is_new", false).Error
}

// NewProductIDs returns the distinct product-category ids that have unsold
// items flagged as new (the payload of a restocking announcement).
func (r *ItemRepository) NewProductIDs() ([]uint, error) {
	var ids []uint
	err := r.db.Model(&models.Item{}).
		Where("is_new = ? AND is_sold = ?", true, false).
		Distinct().
		Pluck("category_id", &ids).Error
	return ids, err
}

// InStockProductIDs returns the distinct product-category ids that still
// have unsold items.
func (r *ItemRepository) InStockProductIDs() ([]uint, error) {
	var ids []uint
	err := r.db.Model(&models.Item{}).
		Where("is_sold = ?", false).
		Distinct().
		Pluck("category_id", &ids).Error
	return ids, err
}

// CountReferencingLocations counts items (sold or not) stored in any of the
// given locations. Used as the delete guard on the location tree.
func (r *ItemRepository) CountReferencingLocations(locationIDs []uint) (int64, error) {
	if len(locationIDs) == 0 {
		return 0, nil
	}
	var n int64
	err := r.db.Model(&models.Item{}).
		Where("location_id IN ?", locationIDs).
		Count(&n).Error
	return n, err
}
