package repositories

import (
	"errors"

	"github.com/shashiranjanraj/bazaar/app/models"
	"gorm.io/gorm"
)

// LocationRepository handles the City -> Neighborhood delivery tree.
type LocationRepository struct {
	db    *gorm.DB
	items *ItemRepository
}

func NewLocationRepository(db *gorm.DB) *LocationRepository {
	return &LocationRepository{db: db, items: NewItemRepository(db)}
}

// GetByID looks up a location by primary key.
func (r *LocationRepository) GetByID(id uint) (models.Location, error) {
	var loc models.Location
	err := r.db.First(&loc, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return loc, ErrNotFound
	}
	return loc, err
}

// Cities returns all top-level locations in insertion order.
func (r *LocationRepository) Cities() ([]models.Location, error) {
	var locs []models.Location
	err := r.db.Where("parent_id IS NULL").Order("id").Find(&locs).Error
	return locs, err
}

// Neighborhoods returns the children of a city in insertion order.
func (r *LocationRepository) Neighborhoods(cityID uint) ([]models.Location, error) {
	var locs []models.Location
	err := r.db.Where("parent_id = ?", cityID).Order("id").Find(&locs).Error
	return locs, err
}

// GetOrCreateCity reuses or creates a top-level city node.
func (r *LocationRepository) GetOrCreateCity(name string) (models.Location, error) {
	var loc models.Location
	err := r.db.Where("parent_id IS NULL AND name = ?", name).First(&loc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		loc = models.Location{Name: name, IsDeliverable: false}
		err = r.db.Create(&loc).Error
	}
	return loc, err
}

// GetOrCreateNeighborhood reuses or creates a deliverable leaf under a city.
// The parent must itself be a root node; the tree never grows a third level.
func (r *LocationRepository) GetOrCreateNeighborhood(cityID uint, name string) (models.Location, error) {
	city, err := r.GetByID(cityID)
	if err != nil {
		return models.Location{}, err
	}
	if city.ParentID != nil {
		return models.Location{}, ErrNotCity
	}

	var loc models.Location
	err = r.db.Where("parent_id = ? AND name = ?", cityID, name).First(&loc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		loc = models.Location{ParentID: &cityID, Name: name, IsDeliverable: true}
		err = r.db.Create(&loc).Error
	}
	return loc, err
}

// DeliverableLeaves resolves a location node to the deliverable leaf ids it
// dominates: the node itself when it is already a leaf, otherwise every
// deliverable descendant of the city.
func (r *LocationRepository) DeliverableLeaves(id uint) ([]uint, error) {
	loc, err := r.GetByID(id)
	if err != nil {
		return nil, err
	}

	if loc.IsDeliverable {
		return []uint{loc.ID}, nil
	}

	var ids []uint
	err = r.db.Model(&models.Location{}).
		Where("parent_id = ? AND is_deliverable = ?", loc.ID, true).
		Pluck("id", &ids).Error
	return ids, err
}

// Delete removes a location and its descendants. The delete is rejected with
// ErrLocationInUse while any item still references the subtree.
func (r *LocationRepository) Delete(id uint) error {
	loc, err := r.GetByID(id)
	if err != nil {
		return err
	}

	subtree := []uint{loc.ID}
	if !loc.IsDeliverable {
		var children []uint
		if err := r.db.Model(&models.Location{}).
			Where("parent_id = ?", loc.ID).
			Pluck("id", &children).Error; err != nil {
			return err
		}
		subtree = append(subtree, children...)
	}

	n, err := r.items.CountReferencingLocations(subtree)
	if err != nil {
		return err
	}
	if n > 0 {
		return ErrLocationInUse
	}

	return r.db.Unscoped().Where("id IN ?", subtree).Delete(&models.Location{}).Error
}

// Breadcrumb returns the City > Neighborhood path for a node, root-first.
func (r *LocationRepository) Breadcrumb(id uint) ([]models.Location, error) {
	loc, err := r.GetByID(id)
	if err != nil {
		return nil, err
	}

	if loc.ParentID == nil {
		return []models.Location{loc}, nil
	}

	parent, err := r.GetByID(*loc.ParentID)
	if err != nil {
		return nil, err
	}
	return []models.Location{parent, loc}, nil
}
