package repositories_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/bazaar/app/models"
	"github.com/shashiranjanraj/bazaar/app/repositories"
)

func TestGetOrCreatePathIsIdempotent(t *testing.T) {
	db := testDB(t)
	repo := repositories.NewCategoryRepository(db)

	first, err := repo.GetOrCreatePath([]string{"Drinks", "Coffee", "Espresso"}, 3.5, "strong")
	require.NoError(t, err)

	second, err := repo.GetOrCreatePath([]string{"Drinks", "Coffee", "Espresso"}, 3.5, "strong")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	var n int64
	require.NoError(t, db.Model(&models.Category{}).Count(&n).Error)
	assert.EqualValues(t, 3, n, "re-import must not duplicate any node")

	assert.True(t, second.IsProduct)
	require.NotNil(t, second.Price)
	assert.Equal(t, 3.5, *second.Price)
}

func TestGetOrCreatePathRefreshesLeafPrice(t *testing.T) {
	db := testDB(t)
	repo := repositories.NewCategoryRepository(db)

	_, err := repo.GetOrCreatePath([]string{"Drinks", "Tea"}, 2.0, "")
	require.NoError(t, err)

	updated, err := repo.GetOrCreatePath([]string{"Drinks", "Tea"}, 2.5, "loose leaf")
	require.NoError(t, err)

	require.NotNil(t, updated.Price)
	assert.Equal(t, 2.5, *updated.Price)
	require.NotNil(t, updated.Description)
	assert.Equal(t, "loose leaf", *updated.Description)
}

func TestGetOrCreatePathSharesPrefixes(t *testing.T) {
	db := testDB(t)
	repo := repositories.NewCategoryRepository(db)

	a, err := repo.GetOrCreatePath([]string{"Drinks", "Coffee"}, 3.0, "")
	require.NoError(t, err)
	b, err := repo.GetOrCreatePath([]string{"Drinks", "Tea"}, 2.0, "")
	require.NoError(t, err)

	require.NotNil(t, a.ParentID)
	require.NotNil(t, b.ParentID)
	assert.Equal(t, *a.ParentID, *b.ParentID, "siblings share the Drinks node")

	// Same name at different levels is a different node.
	nested, err := repo.GetOrCreatePath([]string{"Food", "Drinks"}, 1.0, "")
	require.NoError(t, err)
	assert.NotEqual(t, *a.ParentID, nested.ID)
}

func TestGetOrCreatePathRejectsBadInput(t *testing.T) {
	db := testDB(t)
	repo := repositories.NewCategoryRepository(db)

	_, err := repo.GetOrCreatePath(nil, 1.0, "")
	assert.Error(t, err)

	_, err = repo.GetOrCreatePath([]string{"X"}, 0, "")
	assert.ErrorIs(t, err, repositories.ErrInvalidPrice)

	_, err = repo.GetOrCreatePath([]string{"X"}, -3, "")
	assert.ErrorIs(t, err, repositories.ErrInvalidPrice)
}

func TestBreadcrumbRootFirst(t *testing.T) {
	db := testDB(t)
	repo := repositories.NewCategoryRepository(db)

	leaf, err := repo.GetOrCreatePath([]string{"Drinks", "Coffee", "Espresso"}, 3.5, "")
	require.NoError(t, err)

	crumbs, err := repo.Breadcrumb(leaf.ID)
	require.NoError(t, err)
	require.Len(t, crumbs, 3)
	assert.Equal(t, "Drinks", crumbs[0].Name)
	assert.Equal(t, "Coffee", crumbs[1].Name)
	assert.Equal(t, "Espresso", crumbs[2].Name)

	s, err := repo.BreadcrumbString(leaf.ID)
	require.NoError(t, err)
	assert.Equal(t, "Drinks > Coffee > Espresso", s)

	// A root's breadcrumb is just itself.
	root := crumbs[0]
	s, err = repo.BreadcrumbString(root.ID)
	require.NoError(t, err)
	assert.Equal(t, "Drinks", s)
}

func TestSubtreeIDs(t *testing.T) {
	db := testDB(t)
	repo := repositories.NewCategoryRepository(db)

	espresso, err := repo.GetOrCreatePath([]string{"Drinks", "Coffee", "Espresso"}, 3.5, "")
	require.NoError(t, err)
	_, err = repo.GetOrCreatePath([]string{"Drinks", "Coffee", "Latte"}, 4.0, "")
	require.NoError(t, err)
	_, err = repo.GetOrCreatePath([]string{"Drinks", "Tea"}, 2.0, "")
	require.NoError(t, err)

	crumbs, err := repo.Breadcrumb(espresso.ID)
	require.NoError(t, err)
	drinksID := crumbs[0].ID
	coffeeID := crumbs[1].ID

	ids, err := repo.SubtreeIDs(coffeeID)
	require.NoError(t, err)
	assert.Len(t, ids, 3) // Coffee, Espresso, Latte

	ids, err = repo.SubtreeIDs(drinksID)
	require.NoError(t, err)
	assert.Len(t, ids, 5)

	ids, err = repo.SubtreeIDs(espresso.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{espresso.ID}, ids)
}

func TestHasAvailableItemsRecursion(t *testing.T) {
	db := testDB(t)
	repo := repositories.NewCategoryRepository(db)

	espresso, err := repo.GetOrCreatePath([]string{"Drinks", "Coffee", "Espresso"}, 3.5, "")
	require.NoError(t, err)
	crumbs, err := repo.Breadcrumb(espresso.ID)
	require.NoError(t, err)
	drinksID := crumbs[0].ID

	// Empty product: nothing anywhere in the tree.
	ok, err := repo.HasAvailableItems(drinksID, nil)
	require.NoError(t, err)
	assert.False(t, ok)

	// One unit deep in the tree lights up every ancestor.
	addStock(t, db, espresso.ID, 1, nil)
	ok, err = repo.HasAvailableItems(drinksID, nil)
	require.NoError(t, err)
	assert.True(t, ok)

	// Selling it turns the tree dark again.
	require.NoError(t, db.Model(&models.Item{}).
		Where("category_id = ?", espresso.ID).
		Update("is_sold", true).Error)
	ok, err = repo.HasAvailableItems(drinksID, nil)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHasAvailableItemsIgnoresArchivedBranches(t *testing.T) {
	db := testDB(t)
	repo := repositories.NewCategoryRepository(db)

	espresso, err := repo.GetOrCreatePath([]string{"Drinks", "Coffee", "Espresso"}, 3.5, "")
	require.NoError(t, err)
	addStock(t, db, espresso.ID, 2, nil)

	crumbs, err := repo.Breadcrumb(espresso.ID)
	require.NoError(t, err)
	drinksID, coffeeID := crumbs[0].ID, crumbs[1].ID

	require.NoError(t, repo.SetInactive(coffeeID))

	ok, err := repo.HasAvailableItems(drinksID, nil)
	require.NoError(t, err)
	assert.False(t, ok, "stock under an archived branch must not surface")
}

func TestHasAvailableItemsLocationScope(t *testing.T) {
	db := testDB(t)
	repo := repositories.NewCategoryRepository(db)
	locs := repositories.NewLocationRepository(db)

	city, err := locs.GetOrCreateCity("Springfield")
	require.NoError(t, err)
	downtown, err := locs.GetOrCreateNeighborhood(city.ID, "Downtown")
	require.NoError(t, err)
	north, err := locs.GetOrCreateNeighborhood(city.ID, "North Side")
	require.NoError(t, err)

	prod, err := repo.GetOrCreatePath([]string{"Snacks", "Chips"}, 1.5, "")
	require.NoError(t, err)
	addStock(t, db, prod.ID, 3, &downtown.ID)

	ok, err := repo.HasAvailableItems(prod.ID, []uint{downtown.ID})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.HasAvailableItems(prod.ID, []uint{north.ID})
	require.NoError(t, err)
	assert.False(t, ok, "stock pinned elsewhere is invisible in this scope")

	qty, err := repo.AvailableQty(prod.ID, []uint{downtown.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 3, qty)
}

func TestCreateValidation(t *testing.T) {
	db := testDB(t)
	repo := repositories.NewCategoryRepository(db)

	price := 2.0
	bad := models.Category{Name: "Free stuff", IsProduct: true}
	assert.ErrorIs(t, repo.Create(&bad), repositories.ErrInvalidPrice)

	good := models.Category{Name: "Gum", IsProduct: true, Price: &price}
	require.NoError(t, repo.Create(&good))

	dup := models.Category{Name: "Gum", IsProduct: true, Price: &price}
	assert.ErrorIs(t, repo.Create(&dup), repositories.ErrExists)

	// Grouping nodes never carry product fields even when the caller sets them.
	desc := "oops"
	folder := models.Category{Name: "Folder", Price: &price, Description: &desc}
	require.NoError(t, repo.Create(&folder))
	assert.Nil(t, folder.Price)
	assert.Nil(t, folder.Description)

	exists, err := repo.ExistsAtLevel("Gum", nil)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsAtLevel("Gum", &folder.ID)
	require.NoError(t, err)
	assert.False(t, exists, "names only collide within one level")
}

func TestDeleteSubtreeDropsItemsAndCartLines(t *testing.T) {
	db := testDB(t)
	repo := repositories.NewCategoryRepository(db)

	espresso, err := repo.GetOrCreatePath([]string{"Drinks", "Coffee", "Espresso"}, 3.5, "")
	require.NoError(t, err)
	addStock(t, db, espresso.ID, 2, nil)
	require.NoError(t, db.Create(&models.CartItem{CartID: 1, CategoryID: espresso.ID, Quantity: 1}).Error)

	crumbs, err := repo.Breadcrumb(espresso.ID)
	require.NoError(t, err)
	drinksID := crumbs[0].ID

	require.NoError(t, repo.DeleteSubtree(drinksID))

	var cats, items, lines int64
	require.NoError(t, db.Model(&models.Category{}).Count(&cats).Error)
	require.NoError(t, db.Model(&models.Item{}).Count(&items).Error)
	require.NoError(t, db.Model(&models.CartItem{}).Count(&lines).Error)
	assert.Zero(t, cats)
	assert.Zero(t, items)
	assert.Zero(t, lines)
}

func TestCountSoldInSubtree(t *testing.T) {
	db := testDB(t)
	repo := repositories.NewCategoryRepository(db)

	espresso, err := repo.GetOrCreatePath([]string{"Drinks", "Coffee", "Espresso"}, 3.5, "")
	require.NoError(t, err)
	addStock(t, db, espresso.ID, 3, nil)

	crumbs, err := repo.Breadcrumb(espresso.ID)
	require.NoError(t, err)
	drinksID := crumbs[0].ID

	n, err := repo.CountSoldInSubtree(drinksID)
	require.NoError(t, err)
	assert.Zero(t, n)

	var ids []uint
	require.NoError(t, db.Model(&models.Item{}).
		Where("category_id = ?", espresso.ID).
		Limit(2).
		Pluck("id", &ids).Error)
	require.NoError(t, db.Model(&models.Item{}).
		Where("id IN ?", ids).
		Update("is_sold", true).Error)

	n, err = repo.CountSoldInSubtree(drinksID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

func TestUpdatePriceGuards(t *testing.T) {
	db := testDB(t)
	repo := repositories.NewCategoryRepository(db)

	folder := models.Category{Name: "Folder"}
	require.NoError(t, repo.Create(&folder))

	prod, err := repo.GetOrCreatePath([]string{"Gum"}, 1.0, "")
	require.NoError(t, err)

	assert.ErrorIs(t, repo.UpdatePrice(prod.ID, 0), repositories.ErrInvalidPrice)
	assert.ErrorIs(t, repo.UpdatePrice(folder.ID, 2.0), repositories.ErrNotProduct)
	require.NoError(t, repo.UpdatePrice(prod.ID, 2.0))

	got, err := repo.GetByID(prod.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Price)
	assert.Equal(t, 2.0, *got.Price)
}
