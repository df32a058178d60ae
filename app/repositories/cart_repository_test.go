package repositories_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/bazaar/app/models"
	"github.com/shashiranjanraj/bazaar/app/repositories"
)

func cartFixture(t *testing.T, db *gorm.DB) (*repositories.Registry, models.Cart, models.Category) {
	t.Helper()
	repos := repositories.New(db)

	user, err := repos.Users.GetOrCreate(501, "shopper")
	require.NoError(t, err)
	cart, err := repos.Carts.GetOrCreate(user.ID)
	require.NoError(t, err)
	product, err := repos.Categories.GetOrCreatePath([]string{"Drinks", "Espresso"}, 3.5, "")
	require.NoError(t, err)
	return repos, cart, product
}

func TestAddItemMergesLines(t *testing.T) {
	db := testDB(t)
	repos, cart, product := cartFixture(t, db)

	require.NoError(t, repos.Carts.AddItem(cart.ID, product.ID, 2))
	require.NoError(t, repos.Carts.AddItem(cart.ID, product.ID, 3))
	require.Error(t, repos.Carts.AddItem(cart.ID, product.ID, 0))

	lines, err := repos.Carts.Items(cart.ID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 5, lines[0].Quantity)
	assert.Equal(t, "Espresso", lines[0].Category.Name)
}

func TestPurgeStaleCartLines(t *testing.T) {
	db := testDB(t)
	repos, cart, product := cartFixture(t, db)

	require.NoError(t, repos.Carts.AddItem(cart.ID, product.ID, 1))

	// Nothing old enough yet.
	n, err := repos.Carts.PurgeStale(time.Hour)
	require.NoError(t, err)
	assert.Zero(t, n)

	stale := time.Now().Add(-4 * time.Hour)
	require.NoError(t, db.Model(&models.CartItem{}).
		Where("cart_id = ?", cart.ID).
		UpdateColumn("updated_at", stale).Error)

	n, err = repos.Carts.PurgeStale(time.Hour)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	lines, err := repos.Carts.Items(cart.ID)
	require.NoError(t, err)
	assert.Empty(t, lines)
}
