package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/bazaar/app/repositories"
	"github.com/shashiranjanraj/bazaar/app/services"
)

func TestBrowseHidesEmptySubtrees(t *testing.T) {
	db := testDB(t)
	repos := repositories.New(db)
	inventory := services.NewInventoryService(db)
	catalog := services.NewCatalogService(db)

	stocked, err := repos.Categories.GetOrCreatePath([]string{"Drinks", "Espresso"}, 3.5, "")
	require.NoError(t, err)
	_, err = repos.Categories.GetOrCreatePath([]string{"Snacks", "Chips"}, 1.5, "")
	require.NoError(t, err)

	// Nothing has stock: the root view is empty.
	entries, err := catalog.Browse(nil, 0, 10, nil)
	require.NoError(t, err)
	assert.Empty(t, entries)

	_, err = inventory.AddItems(stocked.ID, []string{"CODE-1"}, nil)
	require.NoError(t, err)

	// Only the branch with stock shows up.
	entries, err = catalog.Browse(nil, 0, 10, nil)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Drinks", entries[0].Category.Name)
	assert.EqualValues(t, 1, entries[0].Children)

	// Descending into it lists the product with its count.
	drinksID := entries[0].Category.ID
	entries, err = catalog.Browse(&drinksID, 0, 10, nil)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Espresso", entries[0].Category.Name)
	assert.EqualValues(t, 1, entries[0].Qty)
}

func TestBrowseLocationScope(t *testing.T) {
	db := testDB(t)
	repos := repositories.New(db)
	inventory := services.NewInventoryService(db)
	catalog := services.NewCatalogService(db)

	city, err := repos.Locations.GetOrCreateCity("Springfield")
	require.NoError(t, err)
	downtown, err := repos.Locations.GetOrCreateNeighborhood(city.ID, "Downtown")
	require.NoError(t, err)
	north, err := repos.Locations.GetOrCreateNeighborhood(city.ID, "North Side")
	require.NoError(t, err)

	prod, err := repos.Categories.GetOrCreatePath([]string{"Chips"}, 1.5, "")
	require.NoError(t, err)
	_, err = inventory.AddItems(prod.ID, []string{"CODE-1"}, &downtown.ID)
	require.NoError(t, err)

	// Visible without a scope and in the right neighborhood.
	entries, err := catalog.Browse(nil, 0, 10, nil)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	entries, err = catalog.Browse(nil, 0, 10, &downtown.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	// Scoping to the city covers all its neighborhoods.
	entries, err = catalog.Browse(nil, 0, 10, &city.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	// The wrong neighborhood sees nothing.
	entries, err = catalog.Browse(nil, 0, 10, &north.ID)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCard(t *testing.T) {
	db := testDB(t)
	repos := repositories.New(db)
	inventory := services.NewInventoryService(db)
	catalog := services.NewCatalogService(db)

	prod, err := repos.Categories.GetOrCreatePath([]string{"Drinks", "Coffee", "Espresso"}, 3.5, "strong")
	require.NoError(t, err)
	_, err = inventory.AddItems(prod.ID, []string{"CODE-1", "CODE-2"}, nil)
	require.NoError(t, err)

	card, err := catalog.Card(prod.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, "Drinks > Coffee > Espresso", card.Breadcrumb)
	assert.EqualValues(t, 2, card.Qty)
	require.NotNil(t, card.Category.Price)
	assert.Equal(t, 3.5, *card.Category.Price)

	// Grouping nodes have no card.
	crumbs, err := repos.Categories.Breadcrumb(prod.ID)
	require.NoError(t, err)
	_, err = catalog.Card(crumbs[0].ID, nil)
	assert.ErrorIs(t, err, repositories.ErrNotProduct)
}

func TestPageCount(t *testing.T) {
	db := testDB(t)
	repos := repositories.New(db)
	catalog := services.NewCatalogService(db)

	pages, err := catalog.PageCount(nil, 5)
	require.NoError(t, err)
	assert.Equal(t, 1, pages, "an empty level still renders one page")

	for _, name := range []string{"A", "B", "C", "D", "E", "F"} {
		_, err := repos.Categories.GetOrCreatePath([]string{name}, 1.0, "")
		require.NoError(t, err)
	}

	pages, err = catalog.PageCount(nil, 5)
	require.NoError(t, err)
	assert.Equal(t, 2, pages)
}
