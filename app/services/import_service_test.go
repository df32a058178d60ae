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

func TestImportText(t *testing.T) {
	db := testDB(t)
	svc := services.NewImportService(db)

	upload := []byte(`Drinks>Coffee>Espresso;strong;3.5;CODE-0001
Drinks>Coffee>Espresso;strong;3.5;CODE-0002

garbage line without separators
Drinks>Tea;loose;0;CODE-0003
Snacks>Chips;salted;1.5;KEY;WITH;SEMICOLONS
`)

	report, err := svc.ImportText(upload, nil)
	require.NoError(t, err)

	assert.Equal(t, 3, report.Added)
	assert.Equal(t, 2, report.Skipped)
	require.Len(t, report.Errors, 2)
	assert.Equal(t, 4, report.Errors[0].Line, "blank lines still count for numbering")
	assert.Equal(t, 5, report.Errors[1].Line)

	// Two espresso lines, one product node, two units.
	cats := repositories.NewCategoryRepository(db)
	espresso, err := cats.GetOrCreatePath([]string{"Drinks", "Coffee", "Espresso"}, 3.5, "")
	require.NoError(t, err)
	qty, err := cats.AvailableQty(espresso.ID, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 2, qty)

	// The failed Tea line must not have created its node.
	var total int64
	require.NoError(t, db.Model(&models.Category{}).Count(&total).Error)
	assert.EqualValues(t, 5, total) // Drinks, Coffee, Espresso, Snacks, Chips

	// Payloads are stored encrypted and the semicolons survive round trip.
	var unit models.Item
	require.NoError(t, db.Joins("JOIN categories ON categories.id = items.category_id").
		Where("categories.name = ?", "Chips").
		First(&unit).Error)
	assert.NotEqual(t, "KEY;WITH;SEMICOLONS", unit.PrivateData)
	plain, err := crypt.Decrypt(unit.PrivateData)
	require.NoError(t, err)
	assert.Equal(t, "KEY;WITH;SEMICOLONS", plain)
}

func TestImportTextIsRepeatable(t *testing.T) {
	db := testDB(t)
	svc := services.NewImportService(db)

	line := []byte("Drinks>Coffee;fresh;3.0;CODE-1\n")
	_, err := svc.ImportText(line, nil)
	require.NoError(t, err)
	_, err = svc.ImportText(line, nil)
	require.NoError(t, err)

	var cats int64
	require.NoError(t, db.Model(&models.Category{}).Count(&cats).Error)
	assert.EqualValues(t, 2, cats, "same path twice, no duplicate nodes")

	var units int64
	require.NoError(t, db.Model(&models.Item{}).Count(&units).Error)
	assert.EqualValues(t, 2, units, "each run adds its unit of stock")
}

func TestImportJSON(t *testing.T) {
	db := testDB(t)
	svc := services.NewImportService(db)

	upload := []byte(`[
		{"path": "Drinks > Coffee > Latte", "description": "milky", "price": 4.0, "private_data": "CODE-A"},
		{"path": "", "description": "", "price": 1.0, "private_data": "CODE-B"},
		{"path": "Drinks>Tea", "description": "", "price": 2.0, "private_data": "   "}
	]`)

	report, err := svc.ImportJSON(upload, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Added)
	assert.Equal(t, 2, report.Skipped)
	require.Len(t, report.Errors, 2)
	assert.Equal(t, 2, report.Errors[0].Line)
	assert.Equal(t, 3, report.Errors[1].Line)

	cats := repositories.NewCategoryRepository(db)
	latte, err := cats.GetOrCreatePath([]string{"Drinks", "Coffee", "Latte"}, 4.0, "")
	require.NoError(t, err)
	assert.True(t, latte.IsProduct)
	require.NotNil(t, latte.Description)
	assert.Equal(t, "milky", *latte.Description)

	_, err = svc.ImportJSON([]byte("{not json"), nil)
	assert.Error(t, err)
}

func TestImportPinsLocation(t *testing.T) {
	db := testDB(t)
	svc := services.NewImportService(db)
	locs := repositories.NewLocationRepository(db)

	city, err := locs.GetOrCreateCity("Springfield")
	require.NoError(t, err)
	hood, err := locs.GetOrCreateNeighborhood(city.ID, "Downtown")
	require.NoError(t, err)

	_, err = svc.ImportText([]byte("Snacks>Chips;salted;1.5;CODE-1\n"), &hood.ID)
	require.NoError(t, err)

	var unit models.Item
	require.NoError(t, db.First(&unit).Error)
	require.NotNil(t, unit.LocationID)
	assert.Equal(t, hood.ID, *unit.LocationID)
}

func TestImportArchivesUpload(t *testing.T) {
	db := testDB(t)
	svc := services.NewImportService(db)

	before := testDisk.count()
	_, err := svc.ImportText([]byte("Gum;minty;1.0;CODE-1\n"), nil)
	require.NoError(t, err)
	assert.Greater(t, testDisk.count(), before, "raw upload is kept for auditing")
}
