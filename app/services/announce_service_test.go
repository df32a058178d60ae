package services_test

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/bazaar/app/repositories"
	"github.com/shashiranjanraj/bazaar/app/services"
)

// recordingSender collects broadcast deliveries. Chats in forbidden reject
// the message outright; chats in flaky fail with a transient error.
type recordingSender struct {
	mu        sync.Mutex
	sent      map[int64]string
	forbidden map[int64]bool
	flaky     map[int64]bool
}

func newRecordingSender() *recordingSender {
	return &recordingSender{
		sent:      map[int64]string{},
		forbidden: map[int64]bool{},
		flaky:     map[int64]bool{},
	}
}

func (s *recordingSender) send(chatID int64, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.forbidden[chatID]:
		return fmt.Errorf("%w: chat %d", services.ErrForbidden, chatID)
	case s.flaky[chatID]:
		return fmt.Errorf("telegram: too many requests")
	}
	s.sent[chatID] = text
	return nil
}

func TestBroadcastFlagsBlockedUsers(t *testing.T) {
	db := testDB(t)
	repos := repositories.New(db)

	for i := int64(1); i <= 5; i++ {
		_, err := repos.Users.GetOrCreate(i, "")
		require.NoError(t, err)
	}

	sender := newRecordingSender()
	sender.forbidden[3] = true
	svc := services.NewAnnounceService(db, sender.send)

	result, err := svc.Broadcast("hello")
	require.NoError(t, err)
	assert.Equal(t, 4, result.Sent)
	assert.Equal(t, 1, result.Blocked)
	assert.Zero(t, result.Failed)

	// The blocking user is skipped next time.
	receivers, err := repos.Users.ActiveReceivers()
	require.NoError(t, err)
	assert.Len(t, receivers, 4)
	for _, u := range receivers {
		assert.NotEqual(t, int64(3), u.TelegramID)
	}

	sender2 := newRecordingSender()
	svc2 := services.NewAnnounceService(db, sender2.send)
	result, err = svc2.Broadcast("again")
	require.NoError(t, err)
	assert.Equal(t, 4, result.Sent)
}

func TestBroadcastKeepsUsersOnTransientFailures(t *testing.T) {
	db := testDB(t)
	repos := repositories.New(db)

	for i := int64(1); i <= 3; i++ {
		_, err := repos.Users.GetOrCreate(i, "")
		require.NoError(t, err)
	}

	sender := newRecordingSender()
	sender.flaky[2] = true
	svc := services.NewAnnounceService(db, sender.send)

	result, err := svc.Broadcast("hello")
	require.NoError(t, err)
	assert.Equal(t, 2, result.Sent)
	assert.Equal(t, 1, result.Failed)
	assert.Zero(t, result.Blocked)

	// A rate-limited chat stays subscribed and is retried on the next run.
	receivers, err := repos.Users.ActiveReceivers()
	require.NoError(t, err)
	assert.Len(t, receivers, 3)

	sender.mu.Lock()
	delete(sender.flaky, 2)
	sender.mu.Unlock()
	result, err = svc.Broadcast("again")
	require.NoError(t, err)
	assert.Equal(t, 3, result.Sent)
	assert.Equal(t, "again", sender.sent[2])
}

func TestRestockDigest(t *testing.T) {
	db := testDB(t)
	repos := repositories.New(db)
	inventory := services.NewInventoryService(db)

	_, err := repos.Users.GetOrCreate(1, "")
	require.NoError(t, err)

	// Nothing new yet: silent run.
	sender := newRecordingSender()
	svc := services.NewAnnounceService(db, sender.send)
	result, err := svc.RestockDigest()
	require.NoError(t, err)
	assert.Zero(t, result.Sent)

	prod, err := repos.Categories.GetOrCreatePath([]string{"Drinks", "Espresso"}, 3.5, "")
	require.NoError(t, err)
	_, err = inventory.AddItems(prod.ID, []string{"CODE-1", "CODE-2"}, nil)
	require.NoError(t, err)

	result, err = svc.RestockDigest()
	require.NoError(t, err)
	assert.Equal(t, 1, result.Sent)

	text := sender.sent[1]
	assert.True(t, strings.HasPrefix(text, "Restocked:"), "got %q", text)
	assert.Contains(t, text, "Drinks > Espresso")
	assert.Contains(t, text, "(2 pcs)")

	// The digest consumed the new flags: next run is silent again.
	result, err = svc.RestockDigest()
	require.NoError(t, err)
	assert.Zero(t, result.Sent)
}

func TestStockListSkipsArchivedAndSoldOut(t *testing.T) {
	db := testDB(t)
	repos := repositories.New(db)
	inventory := services.NewInventoryService(db)

	_, err := repos.Users.GetOrCreate(1, "")
	require.NoError(t, err)

	visible, err := repos.Categories.GetOrCreatePath([]string{"Drinks", "Espresso"}, 3.5, "")
	require.NoError(t, err)
	hidden, err := repos.Categories.GetOrCreatePath([]string{"Drinks", "Secret"}, 9.0, "")
	require.NoError(t, err)

	_, err = inventory.AddItems(visible.ID, []string{"CODE-1"}, nil)
	require.NoError(t, err)
	_, err = inventory.AddItems(hidden.ID, []string{"CODE-2"}, nil)
	require.NoError(t, err)
	require.NoError(t, repos.Categories.SetInactive(hidden.ID))

	sender := newRecordingSender()
	svc := services.NewAnnounceService(db, sender.send)
	result, err := svc.StockList()
	require.NoError(t, err)
	assert.Equal(t, 1, result.Sent)

	text := sender.sent[1]
	assert.Contains(t, text, "Espresso")
	assert.NotContains(t, text, "Secret")
}

// Stats live next to announcements on the admin dashboard, so they share the
// fixtures here.
func TestStatsOverviewAndExport(t *testing.T) {
	db := testDB(t)
	repos := repositories.New(db)
	inventory := services.NewInventoryService(db)
	purchase := services.NewPurchaseService(db)
	stats := services.NewStatsService(db)

	user, err := repos.Users.GetOrCreate(1, "buyer")
	require.NoError(t, err)
	user.TopUpAmount = 100
	require.NoError(t, repos.Users.Update(&user))

	prod, err := repos.Categories.GetOrCreatePath([]string{"Espresso"}, 3.5, "")
	require.NoError(t, err)
	_, err = inventory.AddItems(prod.ID, []string{"A", "B", "C"}, nil)
	require.NoError(t, err)

	cart, err := repos.Carts.GetOrCreate(user.ID)
	require.NoError(t, err)
	require.NoError(t, repos.Carts.AddItem(cart.ID, prod.ID, 2))
	deliveries, err := purchase.Checkout(user.ID)
	require.NoError(t, err)

	// A second, refunded purchase.
	require.NoError(t, repos.Carts.AddItem(cart.ID, prod.ID, 1))
	more, err := purchase.Checkout(user.ID)
	require.NoError(t, err)
	_, err = purchase.Refund(more[0].Buy.ID)
	require.NoError(t, err)

	overview, err := stats.Overview()
	require.NoError(t, err)
	assert.EqualValues(t, 1, overview.TotalUsers)
	require.Len(t, overview.Windows, 3)

	week := overview.Windows[1]
	assert.Equal(t, 7, week.Days)
	assert.Equal(t, 1, week.NewUsers)
	assert.Equal(t, 1, week.Orders, "refunded orders do not count as sales")
	assert.Equal(t, 2, week.Units)
	assert.Equal(t, 7.0, week.Revenue)
	assert.Equal(t, 3.5, week.Refunded)

	path, err := stats.ExportBuys(7)
	require.NoError(t, err)
	content, err := testDisk.Get(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	require.Len(t, lines, 3, "header plus two buys")
	assert.Contains(t, lines[0], "total_price")
	assert.Contains(t, string(content), deliveries[0].Buy.CreatedAt.Format("2006"))
}
