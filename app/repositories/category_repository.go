package repositories

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shashiranjanraj/bazaar/app/models"
	"gorm.io/gorm"
)

// CategoryRepository handles database operations for the Category tree.
//
// The tree is self-referential: every query that needs "the whole subtree"
// walks it breadth-first in application code (SubtreeIDs) and then hits the
// items table once. Catalog depth is small, so the walk is a handful of
// queries at most.
type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// GetByID looks up a category by primary key.
func (r *CategoryRepository) GetByID(id uint) (models.Category, error) {
	var cat models.Category
	err := r.db.First(&cat, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return cat, ErrNotFound
	}
	return cat, err
}

// scopeLevel narrows a query to the direct children of parentID
// (nil = roots).
func scopeLevel(db *gorm.DB, parentID *uint) *gorm.DB {
	if parentID == nil {
		return db.Where("parent_id IS NULL")
	}
	return db.Where("parent_id = ?", *parentID)
}

// LevelFiltered returns one page of the direct children of parentID (roots
// when parentID is nil), in insertion order. showArchived flips the view
// between active and archived nodes.
func (r *CategoryRepository) LevelFiltered(parentID *uint, page, perPage int, showArchived bool) ([]models.Category, error) {
	if page < 0 {
		page = 0
	}

	var cats []models.Category
	err := scopeLevel(r.db.Model(&models.Category{}), parentID).
		Where("is_active = ?", !showArchived).
		Order("id").
		Limit(perPage).
		Offset(page * perPage).
		Find(&cats).Error
	return cats, err
}

// CountLevelFiltered counts the direct children of parentID in the given view.
func (r *CategoryRepository) CountLevelFiltered(parentID *uint, showArchived bool) (int64, error) {
	var n int64
	err := scopeLevel(r.db.Model(&models.Category{}), parentID).
		Where("is_active = ?", !showArchived).
		Count(&n).Error
	return n, err
}

// CountChildren counts all direct children regardless of archive state.
func (r *CategoryRepository) CountChildren(id uint) (int64, error) {
	var n int64
	err := r.db.Model(&models.Category{}).Where("parent_id = ?", id).Count(&n).Error
	return n, err
}

// Breadcrumb walks parent pointers from id up to the root and returns the
// path root-first, ending at the queried node.
func (r *CategoryRepository) Breadcrumb(id uint) ([]models.Category, error) {
	var path []models.Category
	seen := map[uint]bool{}

	current, err := r.GetByID(id)
	if err != nil {
		return nil, err
	}

	for {
		if seen[current.ID] {
			return nil, fmt.Errorf("category %d: parent cycle detected", id)
		}
		seen[current.ID] = true
		path = append([]models.Category{current}, path...)

		if current.ParentID == nil {
			return path, nil
		}
		current, err = r.GetByID(*current.ParentID)
		if err != nil {
			return nil, fmt.Errorf("breadcrumb for %d: %w", id, err)
		}
	}
}

// BreadcrumbString renders the breadcrumb as "Root > ... > Node".
func (r *CategoryRepository) BreadcrumbString(id uint) (string, error) {
	crumbs, err := r.Breadcrumb(id)
	if err != nil {
		return "", err
	}

	names := make([]string, len(crumbs))
	for i, c := range crumbs {
		names[i] = c.Name
	}
	return strings.Join(names, " > "), nil
}

// SubtreeIDs returns the ids of the subtree rooted at id (the node itself
// included), breadth-first.
func (r *CategoryRepository) SubtreeIDs(id uint) ([]uint, error) {
	ids := []uint{id}
	frontier := []uint{id}

	for len(frontier) > 0 {
		var next []uint
		if err := r.db.Model(&models.Category{}).
			Where("parent_id IN ?", frontier).
			Pluck("id", &next).Error; err != nil {
			return nil, err
		}
		ids = append(ids, next...)
		frontier = next
	}
	return ids, nil
}

// AvailableQty counts unsold items directly under a product node, optionally
// restricted to a set of deliverable location ids.
func (r *CategoryRepository) AvailableQty(categoryID uint, locationIDs []uint) (int64, error) {
	q := r.db.Model(&models.Item{}).
		Where("category_id = ? AND is_sold = ?", categoryID, false)
	if len(locationIDs) > 0 {
		q = q.Where("location_id IN ?", locationIDs)
	}

	var n int64
	err := q.Count(&n).Error
	return n, err
}

// HasAvailableItems reports whether any leaf product under the node has an
// unsold item. A product node is checked directly; a grouping node is true
// iff any of its children are.
func (r *CategoryRepository) HasAvailableItems(id uint, locationIDs []uint) (bool, error) {
	cat, err := r.GetByID(id)
	if err != nil {
		return false, err
	}

	if cat.IsProduct {
		qty, err := r.AvailableQty(cat.ID, locationIDs)
		return qty > 0, err
	}

	var children []models.Category
	if err := r.db.Where("parent_id = ? AND is_active = ?", id, true).
		Order("id").Find(&children).Error; err != nil {
		return false, err
	}

	for _, child := range children {
		ok, err := r.HasAvailableItems(child.ID, locationIDs)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// CountSoldInSubtree counts sold items anywhere under the node. A non-zero
// result means the subtree holds purchase history and must be archived
// rather than deleted.
func (r *CategoryRepository) CountSoldInSubtree(id uint) (int64, error) {
	ids, err := r.SubtreeIDs(id)
	if err != nil {
		return 0, err
	}

	var n int64
	err = r.db.Model(&models.Item{}).
		Where("category_id IN ? AND is_sold = ?", ids, true).
		Count(&n).Error
	return n, err
}

// ExistsAtLevel reports whether a node named name already exists under
// parentID (nil = root level).
func (r *CategoryRepository) ExistsAtLevel(name string, parentID *uint) (bool, error) {
	var n int64
	err := scopeLevel(r.db.Model(&models.Category{}), parentID).
		Where("name = ?", name).
		Count(&n).Error
	return n > 0, err
}

// Create persists a new node. Product nodes must carry a positive price;
// grouping nodes must not carry product fields.
func (r *CategoryRepository) Create(cat *models.Category) error {
	if cat.IsProduct {
		if cat.Price == nil || *cat.Price <= 0 {
			return ErrInvalidPrice
		}
	} else {
		cat.Price = nil
		cat.Description = nil
		cat.PhotoFileID = nil
	}

	exists, err := r.ExistsAtLevel(cat.Name, cat.ParentID)
	if err != nil {
		return err
	}
	if exists {
		return ErrExists
	}

	cat.IsActive = true
	return r.db.Create(cat).Error
}

// GetOrCreatePath walks names level by level under the root, creating any
// missing node, and returns the final node. Only the final node is marked as
// a product with the supplied price and description; existing nodes are
// reused by (parent, name) match, which makes the whole call idempotent.
func (r *CategoryRepository) GetOrCreatePath(names []string, price float64, description string) (models.Category, error) {
	if len(names) == 0 {
		return models.Category{}, fmt.Errorf("get-or-create path: empty path")
	}
	if price <= 0 {
		return models.Category{}, ErrInvalidPrice
	}

	var parentID *uint
	var current models.Category

	for i, name := range names {
		leaf := i == len(names)-1

		// Fresh struct per level: First() would otherwise treat the
		// previous row's primary key as a query condition.
		var node models.Category
		err := scopeLevel(r.db.Model(&models.Category{}), parentID).
			Where("name = ?", name).
			First(&node).Error

		switch {
		case err == nil:
			// Reuse. A leaf hit on an existing node refreshes the
			// product fields so re-imports pick up price changes.
			if leaf {
				node.IsProduct = true
				node.Price = &price
				if description != "" {
					node.Description = &description
				}
				if err := r.db.Save(&node).Error; err != nil {
					return models.Category{}, err
				}
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			node = models.Category{ParentID: parentID, Name: name, IsActive: true}
			if leaf {
				node.IsProduct = true
				node.Price = &price
				if description != "" {
					node.Description = &description
				}
			}
			if err := r.db.Create(&node).Error; err != nil {
				return models.Category{}, fmt.Errorf("get-or-create path %q: %w", name, err)
			}
		default:
			return models.Category{}, err
		}

		current = node
		id := node.ID
		parentID = &id
	}

	return current, nil
}

// UpdatePrice sets a new positive price on a product node.
func (r *CategoryRepository) UpdatePrice(id uint, price float64) error {
	if price <= 0 {
		return ErrInvalidPrice
	}

	cat, err := r.GetByID(id)
	if err != nil {
		return err
	}
	if !cat.IsProduct {
		return ErrNotProduct
	}

	return r.db.Model(&models.Category{}).Where("id = ?", id).
		Update("price", price).Error
}

// UpdateDescription sets the product description.
func (r *CategoryRepository) UpdateDescription(id uint, description string) error {
	return r.updateProductField(id, "description", description)
}

// UpdatePhoto sets the telegram photo file id shown on the product card.
func (r *CategoryRepository) UpdatePhoto(id uint, fileID string) error {
	return r.updateProductField(id, "photo_file_id", fileID)
}

func (r *CategoryRepository) updateProductField(id uint, column string, value interface{}) error {
	cat, err := r.GetByID(id)
	if err != nil {
		return err
	}
	if !cat.IsProduct {
		return ErrNotProduct
	}

	return r.db.Model(&models.Category{}).Where("id = ?", id).
		Update(column, value).Error
}

// SetActive re-activates the whole subtree rooted at id.
func (r *CategoryRepository) SetActive(id uint) error {
	return r.setActive(id, true)
}

// SetInactive archives the whole subtree rooted at id. Archived nodes keep
// their items and purchase history but disappear from the shopper view.
func (r *CategoryRepository) SetInactive(id uint) error {
	return r.setActive(id, false)
}

func (r *CategoryRepository) setActive(id uint, active bool) error {
	ids, err := r.SubtreeIDs(id)
	if err != nil {
		return err
	}
	return r.db.Model(&models.Category{}).Where("id IN ?", ids).
		Update("is_active", active).Error
}

// DeleteSubtree hard-deletes the node, its descendants and their unsold
// items. Callers are expected to have checked CountSoldInSubtree first; the
// smart-delete decision lives in the inventory service.
func (r *CategoryRepository) DeleteSubtree(id uint) error {
	ids, err := r.SubtreeIDs(id)
	if err != nil {
		return err
	}

	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().
			Where("category_id IN ?", ids).
			Delete(&models.Item{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().
			Where("category_id IN ?", ids).
			Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().
			Where("id IN ?", ids).
			Delete(&models.Category{}).Error
	})
}
