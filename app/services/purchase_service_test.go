package services_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/bazaar/app/models"
	"github.com/shashiranjanraj/bazaar/app/repositories"
	"github.com/shashiranjanraj/bazaar/app/services"
)

// shopSetup wires a user with balance and one stocked product.
type shopSetup struct {
	repos    *repositories.Registry
	purchase *services.PurchaseService
	user     models.User
	product  models.Category
}

func newShop(t *testing.T, db *gorm.DB, balance float64, price float64, stock int) shopSetup {
	t.Helper()

	repos := repositories.New(db)
	inventory := services.NewInventoryService(db)

	user, err := repos.Users.GetOrCreate(1001, "buyer")
	require.NoError(t, err)
	if balance > 0 {
		user.TopUpAmount = balance
		require.NoError(t, repos.Users.Update(&user))
	}

	product, err := repos.Categories.GetOrCreatePath([]string{"Drinks", "Espresso"}, price, "")
	require.NoError(t, err)

	payloads := make([]string, stock)
	for i := range payloads {
		payloads[i] = "CODE-000" + string(rune('1'+i))
	}
	if stock > 0 {
		n, err := inventory.AddItems(product.ID, payloads, nil)
		require.NoError(t, err)
		require.Equal(t, stock, n)
	}

	return shopSetup{
		repos:    repos,
		purchase: services.NewPurchaseService(db),
		user:     user,
		product:  product,
	}
}

func (s *shopSetup) fill(t *testing.T, qty int) models.Cart {
	t.Helper()
	cart, err := s.repos.Carts.GetOrCreate(s.user.ID)
	require.NoError(t, err)
	require.NoError(t, s.repos.Carts.AddItem(cart.ID, s.product.ID, qty))
	return cart
}

func TestCheckout(t *testing.T) {
	db := testDB(t)
	shop := newShop(t, db, 100, 3.5, 3)
	shop.fill(t, 2)

	deliveries, err := shop.purchase.Checkout(shop.user.ID)
	require.NoError(t, err)
	require.Len(t, deliveries, 1)

	d := deliveries[0]
	assert.Equal(t, "Espresso", d.Product)
	assert.ElementsMatch(t, []string{"CODE-0001", "CODE-0002"}, d.Payloads,
		"buyer receives the decrypted unit payloads, oldest first")
	assert.Equal(t, 7.0, d.Buy.TotalPrice)

	user, err := shop.repos.Users.GetByID(shop.user.ID)
	require.NoError(t, err)
	assert.Equal(t, 93.0, user.Balance())

	// Cart is gone, one unit of stock remains.
	cart, err := shop.repos.Carts.GetOrCreate(shop.user.ID)
	require.NoError(t, err)
	lines, err := shop.repos.Carts.Items(cart.ID)
	require.NoError(t, err)
	assert.Empty(t, lines)

	qty, err := shop.repos.Categories.AvailableQty(shop.product.ID, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 1, qty)

	// The sold units point back at the buy record.
	var sold int64
	require.NoError(t, db.Model(&models.Item{}).
		Where("buy_id = ? AND is_sold = ?", d.Buy.ID, true).
		Count(&sold).Error)
	assert.EqualValues(t, 2, sold)
}

func TestCheckoutEmptyCart(t *testing.T) {
	db := testDB(t)
	shop := newShop(t, db, 100, 3.5, 3)

	_, err := shop.purchase.Checkout(shop.user.ID)
	assert.ErrorIs(t, err, services.ErrEmptyCart)
}

func TestCheckoutOutOfStock(t *testing.T) {
	db := testDB(t)
	shop := newShop(t, db, 100, 3.5, 2)
	shop.fill(t, 5)

	_, err := shop.purchase.Checkout(shop.user.ID)
	assert.ErrorIs(t, err, services.ErrOutOfStock)

	// Nothing was charged and nothing was sold.
	user, err := shop.repos.Users.GetByID(shop.user.ID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, user.Balance())

	qty, err := shop.repos.Categories.AvailableQty(shop.product.ID, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 2, qty)
}

func TestCheckoutInsufficientFunds(t *testing.T) {
	db := testDB(t)
	shop := newShop(t, db, 1, 3.5, 3)
	shop.fill(t, 1)

	_, err := shop.purchase.Checkout(shop.user.ID)
	assert.ErrorIs(t, err, services.ErrInsufficientFunds)

	qty, err := shop.repos.Categories.AvailableQty(shop.product.ID, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 3, qty)
}

func TestCheckoutSettlesAgainstCurrentBalance(t *testing.T) {
	db := testDB(t)
	shop := newShop(t, db, 10, 3.5, 2)
	shop.fill(t, 2)

	// Credit the account right after the first user read of the checkout.
	// The settlement must work on current rows, not write a stale struct
	// back over the credit.
	var once sync.Once
	err := db.Callback().Query().After("gorm:query").Register("midway_credit", func(d *gorm.DB) {
		if d.Statement.Table != "users" {
			return
		}
		once.Do(func() {
			assert.NoError(t, db.Session(&gorm.Session{NewDB: true}).
				Exec("UPDATE users SET top_up_amount = top_up_amount + 100 WHERE id = ?", shop.user.ID).Error)
		})
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Callback().Query().Remove("midway_credit") })

	_, err = shop.purchase.Checkout(shop.user.ID)
	require.NoError(t, err)

	user, err := shop.repos.Users.GetByID(shop.user.ID)
	require.NoError(t, err)
	assert.Equal(t, 103.0, user.Balance(), "the mid-checkout credit survives the settlement")
}

func TestTopUp(t *testing.T) {
	db := testDB(t)
	shop := newShop(t, db, 0, 3.5, 0)

	user, err := shop.purchase.TopUp(shop.user.ID, 25)
	require.NoError(t, err)
	assert.Equal(t, 25.0, user.Balance())

	_, err = shop.purchase.TopUp(shop.user.ID, 0)
	assert.Error(t, err)
	_, err = shop.purchase.TopUp(shop.user.ID, -5)
	assert.Error(t, err)

	_, err = shop.purchase.TopUp(9999, 10)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestDeduct(t *testing.T) {
	db := testDB(t)
	shop := newShop(t, db, 100, 3.5, 0)

	user, err := shop.purchase.Deduct(shop.user.ID, 25)
	require.NoError(t, err)
	assert.Equal(t, 75.0, user.Balance())

	// The ledger may go below zero; how far is the admin's call.
	user, err = shop.purchase.Deduct(shop.user.ID, 80)
	require.NoError(t, err)
	assert.Equal(t, -5.0, user.Balance())

	_, err = shop.purchase.Deduct(shop.user.ID, 0)
	assert.Error(t, err)
	_, err = shop.purchase.Deduct(shop.user.ID, -5)
	assert.Error(t, err)

	_, err = shop.purchase.Deduct(9999, 10)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestRefundRestoresBalance(t *testing.T) {
	db := testDB(t)
	shop := newShop(t, db, 100, 3.5, 2)
	shop.fill(t, 2)

	deliveries, err := shop.purchase.Checkout(shop.user.ID)
	require.NoError(t, err)
	buyID := deliveries[0].Buy.ID

	user, err := shop.repos.Users.GetByID(shop.user.ID)
	require.NoError(t, err)
	require.Equal(t, 93.0, user.Balance())

	refunded, err := shop.purchase.Refund(buyID)
	require.NoError(t, err)
	assert.True(t, refunded.IsRefunded)

	user, err = shop.repos.Users.GetByID(shop.user.ID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, user.Balance())

	// A refund compensates, it does not restock.
	qty, err := shop.repos.Categories.AvailableQty(shop.product.ID, nil)
	require.NoError(t, err)
	assert.Zero(t, qty)

	// And it only works once.
	_, err = shop.purchase.Refund(buyID)
	assert.Error(t, err)
}

func TestCartTotalReportsShortLines(t *testing.T) {
	db := testDB(t)
	shop := newShop(t, db, 100, 3.5, 1)
	cart := shop.fill(t, 4)

	total, short, err := shop.purchase.CartTotal(cart.ID)
	require.NoError(t, err)
	assert.Equal(t, 14.0, total, "total is priced as asked, shortness reported separately")
	require.Len(t, short, 1)
	assert.Equal(t, shop.product.ID, short[0].CategoryID)
}
