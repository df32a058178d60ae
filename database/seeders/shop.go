package seeders

import (
	"github.com/shashiranjanraj/bazaar/app/models"
	"github.com/shashiranjanraj/bazaar/app/repositories"
	"github.com/shashiranjanraj/bazaar/pkg/auth"
	"github.com/shashiranjanraj/bazaar/pkg/crypt"
	"gorm.io/gorm"
)

func init() {
	Register("locations", SeedLocations)
	Register("catalog", SeedCatalog)
	Register("operator", SeedOperator)
}

// SeedLocations creates a small two-level delivery tree.
func SeedLocations(db *gorm.DB) error {
	locations := repositories.NewLocationRepository(db)

	cities := map[string][]string{
		"Springfield": {"Downtown", "North Side"},
		"Shelbyville": {"Old Town"},
	}
	for city, hoods := range cities {
		c, err := locations.GetOrCreateCity(city)
		if err != nil {
			return err
		}
		for _, hood := range hoods {
			if _, err := locations.GetOrCreateNeighborhood(c.ID, hood); err != nil {
				return err
			}
		}
	}
	return nil
}

// SeedCatalog loads a demo tree with a few units of stock per product.
func SeedCatalog(db *gorm.DB) error {
	categories := repositories.NewCategoryRepository(db)
	items := repositories.NewItemRepository(db)

	demo := []struct {
		path  []string
		price float64
		desc  string
		units int
	}{
		{[]string{"Gift Cards", "Streaming", "MoviePass 1 month"}, 9.99, "Digital code, delivered instantly.", 5},
		{[]string{"Gift Cards", "Streaming", "MoviePass 12 months"}, 89.99, "Digital code, delivered instantly.", 2},
		{[]string{"Gift Cards", "Gaming", "Arcade credits 10"}, 10.00, "Top-up voucher.", 8},
		{[]string{"Software", "Licenses", "PhotoTool Pro"}, 49.50, "Single-seat license key.", 3},
	}

	for _, d := range demo {
		product, err := categories.GetOrCreatePath(d.path, d.price, d.desc)
		if err != nil {
			return err
		}

		existing, err := categories.AvailableQty(product.ID, nil)
		if err != nil {
			return err
		}
		if existing > 0 {
			continue
		}

		batch := make([]models.Item, 0, d.units)
		for i := 0; i < d.units; i++ {
			enc, err := crypt.Encrypt("DEMO-CODE-0000")
			if err != nil {
				return err
			}
			batch = append(batch, models.Item{
				CategoryID:  product.ID,
				PrivateData: enc,
				IsNew:       true,
			})
		}
		if err := items.CreateBatch(batch); err != nil {
			return err
		}
	}
	return nil
}

// SeedOperator creates the default admin account for the HTTP API.
func SeedOperator(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Operator{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := auth.HashPassword("change-me")
	if err != nil {
		return err
	}
	return db.Create(&models.Operator{
		Email:    "admin@example.com",
		Password: hash,
		Role:     "admin",
	}).Error
}
