package repositories_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/shashiranjanraj/bazaar/app/models"
	"github.com/shashiranjanraj/bazaar/app/repositories"
)

// testDB opens a fresh in-memory sqlite database with the full schema.
// MaxOpenConns(1) keeps every query on the same connection, which is what
// makes :memory: behave like one database.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.Location{},
		&models.User{},
		&models.Category{},
		&models.Buy{},
		&models.Item{},
		&models.Cart{},
		&models.CartItem{},
	))
	return db
}

// addStock inserts n unsold plaintext units under a product node.
func addStock(t *testing.T, db *gorm.DB, categoryID uint, n int, locationID *uint) {
	t.Helper()
	for i := 0; i < n; i++ {
		require.NoError(t, db.Create(&models.Item{
			CategoryID:  categoryID,
			LocationID:  locationID,
			PrivateData: "unit",
			IsNew:       true,
		}).Error)
	}
}

func TestRegistryTransactionRollsBack(t *testing.T) {
	db := testDB(t)
	repos := repositories.New(db)

	err := repos.Transaction(func(tx *repositories.Registry) error {
		if err := tx.Users.Update(&models.User{TelegramID: 1}); err != nil {
			return err
		}
		return repositories.ErrNotFound // force rollback
	})
	require.Error(t, err)

	n, err := repos.Users.CountAll()
	require.NoError(t, err)
	require.Zero(t, n)
}
