package repositories_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/bazaar/app/models"
	"github.com/shashiranjanraj/bazaar/app/repositories"
)

func TestGetOrCreateCityAndNeighborhood(t *testing.T) {
	db := testDB(t)
	repo := repositories.NewLocationRepository(db)

	city, err := repo.GetOrCreateCity("Springfield")
	require.NoError(t, err)
	assert.True(t, city.IsCity())
	assert.False(t, city.IsDeliverable)

	again, err := repo.GetOrCreateCity("Springfield")
	require.NoError(t, err)
	assert.Equal(t, city.ID, again.ID)

	hood, err := repo.GetOrCreateNeighborhood(city.ID, "Downtown")
	require.NoError(t, err)
	assert.True(t, hood.IsDeliverable)
	require.NotNil(t, hood.ParentID)
	assert.Equal(t, city.ID, *hood.ParentID)

	hoodAgain, err := repo.GetOrCreateNeighborhood(city.ID, "Downtown")
	require.NoError(t, err)
	assert.Equal(t, hood.ID, hoodAgain.ID)
}

func TestNeighborhoodRequiresCityParent(t *testing.T) {
	db := testDB(t)
	repo := repositories.NewLocationRepository(db)

	city, err := repo.GetOrCreateCity("Springfield")
	require.NoError(t, err)
	hood, err := repo.GetOrCreateNeighborhood(city.ID, "Downtown")
	require.NoError(t, err)

	// A leaf cannot parent another leaf; the tree stays two levels deep.
	_, err = repo.GetOrCreateNeighborhood(hood.ID, "Sub-block")
	assert.ErrorIs(t, err, repositories.ErrNotCity)

	_, err = repo.GetOrCreateNeighborhood(9999, "Nowhere")
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	var n int64
	require.NoError(t, db.Model(&models.Location{}).Count(&n).Error)
	assert.EqualValues(t, 2, n)
}

func TestDeliverableLeaves(t *testing.T) {
	db := testDB(t)
	repo := repositories.NewLocationRepository(db)

	city, err := repo.GetOrCreateCity("Springfield")
	require.NoError(t, err)
	downtown, err := repo.GetOrCreateNeighborhood(city.ID, "Downtown")
	require.NoError(t, err)
	north, err := repo.GetOrCreateNeighborhood(city.ID, "North Side")
	require.NoError(t, err)

	// A leaf resolves to itself.
	leaves, err := repo.DeliverableLeaves(downtown.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{downtown.ID}, leaves)

	// A city resolves to all its deliverable children.
	leaves, err = repo.DeliverableLeaves(city.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{downtown.ID, north.ID}, leaves)

	_, err = repo.DeliverableLeaves(9999)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestLocationDeleteGuard(t *testing.T) {
	db := testDB(t)
	repo := repositories.NewLocationRepository(db)
	cats := repositories.NewCategoryRepository(db)

	city, err := repo.GetOrCreateCity("Springfield")
	require.NoError(t, err)
	downtown, err := repo.GetOrCreateNeighborhood(city.ID, "Downtown")
	require.NoError(t, err)

	prod, err := cats.GetOrCreatePath([]string{"Snacks", "Chips"}, 1.5, "")
	require.NoError(t, err)
	addStock(t, db, prod.ID, 1, &downtown.ID)

	// The leaf holds stock, so neither it nor its city may go.
	assert.ErrorIs(t, repo.Delete(downtown.ID), repositories.ErrLocationInUse)
	assert.ErrorIs(t, repo.Delete(city.ID), repositories.ErrLocationInUse)

	// Sold items still pin the location: history references it.
	require.NoError(t, db.Model(&models.Item{}).
		Where("location_id = ?", downtown.ID).
		Update("is_sold", true).Error)
	assert.ErrorIs(t, repo.Delete(downtown.ID), repositories.ErrLocationInUse)

	// Detach the item and the delete goes through, city subtree and all.
	require.NoError(t, db.Model(&models.Item{}).
		Where("location_id = ?", downtown.ID).
		Update("location_id", nil).Error)
	require.NoError(t, repo.Delete(city.ID))

	var n int64
	require.NoError(t, db.Model(&models.Location{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestLocationBreadcrumb(t *testing.T) {
	db := testDB(t)
	repo := repositories.NewLocationRepository(db)

	city, err := repo.GetOrCreateCity("Springfield")
	require.NoError(t, err)
	hood, err := repo.GetOrCreateNeighborhood(city.ID, "Downtown")
	require.NoError(t, err)

	crumbs, err := repo.Breadcrumb(hood.ID)
	require.NoError(t, err)
	require.Len(t, crumbs, 2)
	assert.Equal(t, "Springfield", crumbs[0].Name)
	assert.Equal(t, "Downtown", crumbs[1].Name)

	crumbs, err = repo.Breadcrumb(city.ID)
	require.NoError(t, err)
	require.Len(t, crumbs, 1)
	assert.Equal(t, "Springfield", crumbs[0].Name)
}
