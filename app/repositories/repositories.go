package repositories

import "gorm.io/gorm"

// Registry bundles every repository over one gorm handle so services and
// handlers can share a single wiring point.
type Registry struct {
	db *gorm.DB

	Categories *CategoryRepository
	Items      *ItemRepository
	Locations  *LocationRepository
	Users      *UserRepository
	Carts      *CartRepository
	Buys       *BuyRepository
	Operators  *OperatorRepository
}

// New builds a Registry over db.
func New(db *gorm.DB) *Registry {
	return &Registry{
		db:         db,
		Categories: NewCategoryRepository(db),
		Items:      NewItemRepository(db),
		Locations:  NewLocationRepository(db),
		Users:      NewUserRepository(db),
		Carts:      NewCartRepository(db),
		Buys:       NewBuyRepository(db),
		Operators:  NewOperatorRepository(db),
	}
}

// Transaction runs fn with a Registry bound to one database transaction.
// Returning an error rolls everything back.
func (r *Registry) Transaction(fn func(tx *Registry) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(New(tx))
	})
}
