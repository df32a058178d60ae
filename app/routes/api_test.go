package routes_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/shashiranjanraj/bazaar/app/models"
	"github.com/shashiranjanraj/bazaar/app/routes"
	"github.com/shashiranjanraj/bazaar/app/services"
	"github.com/shashiranjanraj/bazaar/pkg/router"
	"github.com/shashiranjanraj/bazaar/pkg/testkit"
	"github.com/shashiranjanraj/bazaar/pkg/ws"
)

// TestAPIScenarios drives the mounted router through the JSON scenarios in
// testdata/. Request and expected-response bodies live in testdata/bodies/.
func TestAPIScenarios(t *testing.T) {
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
		&models.Operator{},
	))

	_, err = services.NewAuthService(db).CreateOperator("admin@example.com", "s3cret", "admin")
	require.NoError(t, err)

	r := router.New()
	require.NoError(t, routes.RegisterAPI(r, db, ws.NewHub()))

	testkit.RunDir(t, r.Handler(), "testdata")
}
