package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/bazaar/app/models"
	"github.com/shashiranjanraj/bazaar/app/repositories"
	"github.com/shashiranjanraj/bazaar/app/services"
	"github.com/shashiranjanraj/bazaar/pkg/crypt"
)

func TestCreateNodes(t *testing.T) {
	db := testDB(t)
	svc := services.NewInventoryService(db)

	folder, err := svc.CreateCategory(nil, "Drinks")
	require.NoError(t, err)
	assert.False(t, folder.IsProduct)
	assert.True(t, folder.IsActive)

	prod, err := svc.CreateProduct(&folder.ID, "Espresso", 3.5, "strong")
	require.NoError(t, err)
	assert.True(t, prod.IsProduct)
	require.NotNil(t, prod.Price)
	assert.Equal(t, 3.5, *prod.Price)

	_, err = svc.CreateProduct(&folder.ID, "Espresso", 3.5, "")
	assert.ErrorIs(t, err, repositories.ErrExists)

	_, err = svc.CreateProduct(&folder.ID, "Free", 0, "")
	assert.ErrorIs(t, err, repositories.ErrInvalidPrice)
}

func TestAddItemsEncrypts(t *testing.T) {
	db := testDB(t)
	svc := services.NewInventoryService(db)

	folder, err := svc.CreateCategory(nil, "Drinks")
	require.NoError(t, err)
	prod, err := svc.CreateProduct(&folder.ID, "Espresso", 3.5, "")
	require.NoError(t, err)

	n, err := svc.AddItems(prod.ID, []string{"CODE-1", "CODE-2"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	var units []models.Item
	require.NoError(t, db.Order("id").Find(&units).Error)
	require.Len(t, units, 2)
	assert.NotEqual(t, "CODE-1", units[0].PrivateData, "payloads never hit the db in the clear")
	plain, err := crypt.Decrypt(units[0].PrivateData)
	require.NoError(t, err)
	assert.Equal(t, "CODE-1", plain)

	// Stock only attaches to products.
	_, err = svc.AddItems(folder.ID, []string{"CODE-3"}, nil)
	assert.ErrorIs(t, err, repositories.ErrNotProduct)
}

func TestSmartDeleteCascadesWithoutSales(t *testing.T) {
	db := testDB(t)
	svc := services.NewInventoryService(db)
	cats := repositories.NewCategoryRepository(db)

	prod, err := cats.GetOrCreatePath([]string{"Drinks", "Coffee", "Espresso"}, 3.5, "")
	require.NoError(t, err)
	_, err = svc.AddItems(prod.ID, []string{"CODE-1"}, nil)
	require.NoError(t, err)

	crumbs, err := cats.Breadcrumb(prod.ID)
	require.NoError(t, err)
	drinksID := crumbs[0].ID

	archived, err := svc.SmartDelete(drinksID)
	require.NoError(t, err)
	assert.False(t, archived, "no sales, so the subtree is really gone")

	var n int64
	require.NoError(t, db.Model(&models.Category{}).Count(&n).Error)
	assert.Zero(t, n)
	require.NoError(t, db.Model(&models.Item{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestSmartDeleteArchivesSoldHistory(t *testing.T) {
	db := testDB(t)
	svc := services.NewInventoryService(db)
	cats := repositories.NewCategoryRepository(db)

	prod, err := cats.GetOrCreatePath([]string{"Drinks", "Coffee", "Espresso"}, 3.5, "")
	require.NoError(t, err)
	_, err = svc.AddItems(prod.ID, []string{"CODE-1", "CODE-2"}, nil)
	require.NoError(t, err)

	// One unit sold somewhere under the node.
	var unit models.Item
	require.NoError(t, db.First(&unit).Error)
	require.NoError(t, db.Model(&unit).Update("is_sold", true).Error)

	crumbs, err := cats.Breadcrumb(prod.ID)
	require.NoError(t, err)
	drinksID := crumbs[0].ID

	archived, err := svc.SmartDelete(drinksID)
	require.NoError(t, err)
	assert.True(t, archived, "sold history pins the subtree")

	// Everything still exists, just hidden from shoppers.
	var n int64
	require.NoError(t, db.Model(&models.Category{}).Count(&n).Error)
	assert.EqualValues(t, 3, n)
	require.NoError(t, db.Model(&models.Category{}).Where("is_active = ?", true).Count(&n).Error)
	assert.Zero(t, n)
	require.NoError(t, db.Model(&models.Item{}).Count(&n).Error)
	assert.EqualValues(t, 2, n)

	// Reactivate brings the whole branch back.
	require.NoError(t, svc.Reactivate(drinksID))
	require.NoError(t, db.Model(&models.Category{}).Where("is_active = ?", true).Count(&n).Error)
	assert.EqualValues(t, 3, n)
}

func TestEditProductFields(t *testing.T) {
	db := testDB(t)
	svc := services.NewInventoryService(db)
	cats := repositories.NewCategoryRepository(db)

	prod, err := cats.GetOrCreatePath([]string{"Gum"}, 1.0, "")
	require.NoError(t, err)

	require.NoError(t, svc.EditPrice(prod.ID, 1.5))
	require.NoError(t, svc.EditDescription(prod.ID, "minty"))
	require.NoError(t, svc.EditPhoto(prod.ID, "file-123"))

	got, err := cats.GetByID(prod.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Price)
	assert.Equal(t, 1.5, *got.Price)
	require.NotNil(t, got.Description)
	assert.Equal(t, "minty", *got.Description)
	require.NotNil(t, got.PhotoFileID)
	assert.Equal(t, "file-123", *got.PhotoFileID)

	assert.ErrorIs(t, svc.EditPrice(prod.ID, -1), repositories.ErrInvalidPrice)
}
