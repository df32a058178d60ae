package services

import (
	"fmt"

	"github.com/shashiranjanraj/bazaar/app/models"
	"github.com/shashiranjanraj/bazaar/app/repositories"
	"github.com/shashiranjanraj/bazaar/pkg/crypt"
	"github.com/shashiranjanraj/bazaar/pkg/event"
	"github.com/shashiranjanraj/bazaar/pkg/logger"
	"gorm.io/gorm"
)

// InventoryService is the admin side of the catalog: creating nodes, editing
// product fields, adding stock and the smart delete.
type InventoryService struct {
	categories *repositories.CategoryRepository
	items      *repositories.ItemRepository
	catalog    *CatalogService
}

func NewInventoryService(db *gorm.DB) *InventoryService {
	return &InventoryService{
		categories: repositories.NewCategoryRepository(db),
		items:      repositories.NewItemRepository(db),
		catalog:    NewCatalogService(db),
	}
}

// CreateCategory adds a grouping node under parentID (nil = root).
func (s *InventoryService) CreateCategory(parentID *uint, name string) (models.Category, error) {
	cat := models.Category{ParentID: parentID, Name: name}
	if err := s.categories.Create(&cat); err != nil {
		return models.Category{}, err
	}
	logger.Info("inventory: category created", "id", cat.ID, "name", name)
	return cat, nil
}

// CreateProduct adds a product node with its price and description.
func (s *InventoryService) CreateProduct(parentID *uint, name string, price float64, description string) (models.Category, error) {
	cat := models.Category{
		ParentID:    parentID,
		Name:        name,
		IsProduct:   true,
		Price:       &price,
		Description: &description,
	}
	if err := s.categories.Create(&cat); err != nil {
		return models.Category{}, err
	}
	logger.Info("inventory: product created", "id", cat.ID, "name", name, "price", price)
	return cat, nil
}

// AddItems encrypts and stores a batch of per-unit payloads as unsold stock
// of a product node. Returns how many units were added.
func (s *InventoryService) AddItems(categoryID uint, payloads []string, locationID *uint) (int, error) {
	cat, err := s.categories.GetByID(categoryID)
	if err != nil {
		return 0, err
	}
	if !cat.IsProduct {
		return 0, repositories.ErrNotProduct
	}

	items := make([]models.Item, 0, len(payloads))
	for _, payload := range payloads {
		enc, err := crypt.Encrypt(payload)
		if err != nil {
			return 0, fmt.Errorf("inventory: encrypt payload: %w", err)
		}
		items = append(items, models.Item{
			CategoryID:  categoryID,
			LocationID:  locationID,
			PrivateData: enc,
			IsNew:       true,
		})
	}

	if err := s.items.CreateBatch(items); err != nil {
		return 0, err
	}

	s.catalog.InvalidateQty(categoryID)
	logger.Info("inventory: items added", "category_id", categoryID, "count", len(items))
	return len(items), nil
}

// EditPrice updates a product price (must stay positive).
func (s *InventoryService) EditPrice(categoryID uint, price float64) error {
	return s.categories.UpdatePrice(categoryID, price)
}

// EditDescription updates a product description.
func (s *InventoryService) EditDescription(categoryID uint, description string) error {
	return s.categories.UpdateDescription(categoryID, description)
}

// EditPhoto updates the product photo file id.
func (s *InventoryService) EditPhoto(categoryID uint, fileID string) error {
	return s.categories.UpdatePhoto(categoryID, fileID)
}

// SmartDelete archives the subtree when it holds sold items (purchase
// history must survive) and hard-deletes it otherwise. Returns true when the
// subtree was archived rather than removed.
func (s *InventoryService) SmartDelete(categoryID uint) (archived bool, err error) {
	cat, err := s.categories.GetByID(categoryID)
	if err != nil {
		return false, err
	}

	sold, err := s.categories.CountSoldInSubtree(categoryID)
	if err != nil {
		return false, err
	}

	if sold > 0 {
		if err := s.categories.SetInactive(categoryID); err != nil {
			return false, err
		}
		event.Fire(EventCategoryArchived, cat)
		logger.Info("inventory: archived", "id", categoryID, "name", cat.Name, "sold", sold)
		return true, nil
	}

	if err := s.categories.DeleteSubtree(categoryID); err != nil {
		return false, err
	}
	s.catalog.InvalidateQty(categoryID)
	logger.Info("inventory: deleted", "id", categoryID, "name", cat.Name)
	return false, nil
}

// Reactivate brings an archived subtree back into the shopper view.
func (s *InventoryService) Reactivate(categoryID uint) error {
	if err := s.categories.SetActive(categoryID); err != nil {
		return err
	}
	logger.Info("inventory: reactivated", "id", categoryID)
	return nil
}
