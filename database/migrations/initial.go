package migrations

import (
	"github.com/shashiranjanraj/bazaar/app/models"
	"github.com/shashiranjanraj/bazaar/pkg/migration"
	"gorm.io/gorm"
)

func init() {
	migration.Register("20260301000000_create_locations_table", &CreateLocationsTable{})
	migration.Register("20260301000001_create_users_table", &CreateUsersTable{})
	migration.Register("20260301000002_create_categories_table", &CreateCategoriesTable{})
	migration.Register("20260301000003_create_buys_table", &CreateBuysTable{})
	migration.Register("20260301000004_create_items_table", &CreateItemsTable{})
	migration.Register("20260301000005_create_carts_table", &CreateCartsTable{})
	migration.Register("20260301000006_create_operators_table", &CreateOperatorsTable{})
}

// -------- 0000: locations --------

type CreateLocationsTable struct{}

func (m *CreateLocationsTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.Location{})
}

func (m *CreateLocationsTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("locations")
}

// -------- 0001: users --------

type CreateUsersTable struct{}

func (m *CreateUsersTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.User{})
}

func (m *CreateUsersTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("users")
}

// -------- 0002: categories --------

type CreateCategoriesTable struct{}

func (m *CreateCategoriesTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.Category{})
}

func (m *CreateCategoriesTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("categories")
}

// -------- 0003: buys --------

type CreateBuysTable struct{}

func (m *CreateBuysTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.Buy{})
}

func (m *CreateBuysTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("buys")
}

// -------- 0004: items --------

type CreateItemsTable struct{}

func (m *CreateItemsTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.Item{})
}

func (m *CreateItemsTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("items")
}

// -------- 0005: carts --------

type CreateCartsTable struct{}

func (m *CreateCartsTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.Cart{}, &models.CartItem{})
}

func (m *CreateCartsTable) Down(db *gorm.DB) error {
	if err := db.Migrator().DropTable("cart_items"); err != nil {
		return err
	}
	return db.Migrator().DropTable("carts")
}

// -------- 0006: operators --------

type CreateOperatorsTable struct{}

func (m *CreateOperatorsTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.Operator{})
}

func (m *CreateOperatorsTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("operators")
}
