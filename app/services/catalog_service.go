package services

import (
	"fmt"
	"time"

	"github.com/shashiranjanraj/bazaar/app/models"
	"github.com/shashiranjanraj/bazaar/app/repositories"
	"github.com/shashiranjanraj/bazaar/pkg/cache"
	"gorm.io/gorm"
)

// availabilityTTL bounds how stale the cached per-product stock count may be.
const availabilityTTL = 30 * time.Second

// CatalogService drives the shopper-side catalog: browsing the active tree,
// availability-aware filtering and the product card.
type CatalogService struct {
	categories *repositories.CategoryRepository
	locations  *repositories.LocationRepository
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{
		categories: repositories.NewCategoryRepository(db),
		locations:  repositories.NewLocationRepository(db),
	}
}

// CatalogEntry is one row of a browse listing.
type CatalogEntry struct {
	Category models.Category
	Qty      int64 // unsold units for products, 0 for groupings
	Children int64 // direct child count for groupings
}

// ProductCard is everything the product view shows.
type ProductCard struct {
	Category   models.Category
	Breadcrumb string
	Qty        int64
}

// deliverableScope resolves an optional location filter to leaf ids.
func (s *CatalogService) deliverableScope(locationID *uint) ([]uint, error) {
	if locationID == nil {
		return nil, nil
	}
	return s.locations.DeliverableLeaves(*locationID)
}

// Browse returns one page of the active children of parentID (roots when
// nil), keeping only subtrees that still have something to sell within the
// optional delivery-location scope.
func (s *CatalogService) Browse(parentID *uint, page, perPage int, locationID *uint) ([]CatalogEntry, error) {
	leaves, err := s.deliverableScope(locationID)
	if err != nil {
		return nil, err
	}

	cats, err := s.categories.LevelFiltered(parentID, page, perPage, false)
	if err != nil {
		return nil, err
	}

	entries := make([]CatalogEntry, 0, len(cats))
	for _, cat := range cats {
		available, err := s.categories.HasAvailableItems(cat.ID, leaves)
		if err != nil {
			return nil, err
		}
		if !available {
			continue
		}

		entry := CatalogEntry{Category: cat}
		if cat.IsProduct {
			entry.Qty, err = s.AvailableQty(cat.ID, leaves)
		} else {
			entry.Children, err = s.categories.CountChildren(cat.ID)
		}
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// PageCount returns how many browse pages the level has in the active view.
func (s *CatalogService) PageCount(parentID *uint, perPage int) (int, error) {
	n, err := s.categories.CountLevelFiltered(parentID, false)
	if err != nil {
		return 0, err
	}
	pages := int((n + int64(perPage) - 1) / int64(perPage))
	if pages < 1 {
		pages = 1
	}
	return pages, nil
}

// AvailableQty counts unsold units of a product, going through the cache so
// hot products do not hammer the items table on every keyboard render.
// Location-scoped counts bypass the cache: the key space would explode.
func (s *CatalogService) AvailableQty(categoryID uint, locationIDs []uint) (int64, error) {
	if len(locationIDs) > 0 {
		return s.categories.AvailableQty(categoryID, locationIDs)
	}

	key := fmt.Sprintf("catalog:qty:%d", categoryID)
	var qty int64
	if cache.Get(key, &qty) {
		return qty, nil
	}

	qty, err := s.categories.AvailableQty(categoryID, nil)
	if err != nil {
		return 0, err
	}
	cache.Set(key, qty, availabilityTTL)
	return qty, nil
}

// InvalidateQty drops the cached stock count after a sale or restock.
func (s *CatalogService) InvalidateQty(categoryID uint) {
	cache.Forget(fmt.Sprintf("catalog:qty:%d", categoryID))
}

// Card assembles the product view for a product node.
func (s *CatalogService) Card(categoryID uint, locationID *uint) (ProductCard, error) {
	cat, err := s.categories.GetByID(categoryID)
	if err != nil {
		return ProductCard{}, err
	}
	if !cat.IsProduct {
		return ProductCard{}, repositories.ErrNotProduct
	}

	crumb, err := s.categories.BreadcrumbString(categoryID)
	if err != nil {
		return ProductCard{}, err
	}

	leaves, err := s.deliverableScope(locationID)
	if err != nil {
		return ProductCard{}, err
	}

	qty, err := s.AvailableQty(categoryID, leaves)
	if err != nil {
		return ProductCard{}, err
	}

	return ProductCard{Category: cat, Breadcrumb: crumb, Qty: qty}, nil
}

// Breadcrumb exposes the repository breadcrumb for presentation layers.
func (s *CatalogService) Breadcrumb(categoryID uint) ([]models.Category, error) {
	return s.categories.Breadcrumb(categoryID)
}
