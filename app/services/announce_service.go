package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shashiranjanraj/bazaar/app/models"
	"github.com/shashiranjanraj/bazaar/app/repositories"
	"github.com/shashiranjanraj/bazaar/config"
	"github.com/shashiranjanraj/bazaar/pkg/logger"
	"github.com/shashiranjanraj/bazaar/pkg/metrics"
	"github.com/shashiranjanraj/bazaar/pkg/workerpool"
	"gorm.io/gorm"
)

// Sender delivers one broadcast message to a chat. The bot wires the real
// telegram sender in; tests inject their own.
type Sender func(chatID int64, text string) error

// broadcastWorkers bounds concurrent sends so big user bases do not trip
// the messenger's rate limits.
const broadcastWorkers = 8

// BroadcastResult summarizes one broadcast run.
type BroadcastResult struct {
	Sent    int
	Blocked int
	Failed  int
}

// AnnounceService sends broadcasts to every user who still accepts messages:
// free-form admin announcements, the restocking digest and the full stock
// list.
type AnnounceService struct {
	repos  *repositories.Registry
	sender Sender
}

func NewAnnounceService(db *gorm.DB, sender Sender) *AnnounceService {
	return &AnnounceService{repos: repositories.New(db), sender: sender}
}

// Broadcast fans text out to all active receivers through a bounded pool.
// Users who rejected the delivery (ErrForbidden) are flagged so the next run
// skips them; transient failures leave the user subscribed.
func (s *AnnounceService) Broadcast(text string) (BroadcastResult, error) {
	users, err := s.repos.Users.ActiveReceivers()
	if err != nil {
		return BroadcastResult{}, err
	}

	pool := workerpool.New(broadcastWorkers)
	defer pool.Shutdown()

	var (
		mu     sync.Mutex
		result BroadcastResult
	)
	for _, user := range users {
		u := user
		task := func() {
			err := s.sender(u.TelegramID, text)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				result.Sent++
				metrics.BroadcastMessages.WithLabelValues("sent").Inc()
			case errors.Is(err, ErrForbidden):
				metrics.BroadcastMessages.WithLabelValues("blocked").Inc()
				if markErr := s.markBlocked(u); markErr != nil {
					logger.Warn("announce: mark blocked", "user_id", u.ID, "error", markErr)
				} else {
					result.Blocked++
				}
			default:
				result.Failed++
				metrics.BroadcastMessages.WithLabelValues("failed").Inc()
				logger.Warn("announce: send failed", "user_id", u.ID, "error", err)
			}
		}
		// The pool buffer is small relative to the user base, so spin
		// on backpressure instead of dropping receivers.
		for {
			err := pool.Submit(task)
			if err == nil {
				break
			}
			if err == workerpool.ErrPoolClosed {
				return result, err
			}
			time.Sleep(50 * time.Millisecond)
		}
	}
	pool.Shutdown()

	logger.Info("announce: broadcast done",
		"recipients", len(users), "sent", result.Sent, "failed", result.Failed)
	return result, nil
}

func (s *AnnounceService) markBlocked(user models.User) error {
	user.CanReceiveMessage = false
	return s.repos.Users.Update(&user)
}

// RestockDigest broadcasts the products restocked since the last digest and
// clears their new flag so the next digest starts empty. Returns the zero
// result with no error when nothing is new.
func (s *AnnounceService) RestockDigest() (BroadcastResult, error) {
	ids, err := s.repos.Items.NewProductIDs()
	if err != nil {
		return BroadcastResult{}, err
	}
	if len(ids) == 0 {
		return BroadcastResult{}, nil
	}

	text, err := s.stockMessage("Restocked:", ids)
	if err != nil {
		return BroadcastResult{}, err
	}

	result, err := s.Broadcast(text)
	if err != nil {
		return result, err
	}
	return result, s.repos.Items.SetNotNew()
}

// StockList broadcasts everything currently purchasable. It also clears the
// new flag: a full list supersedes any pending digest.
func (s *AnnounceService) StockList() (BroadcastResult, error) {
	ids, err := s.repos.Items.InStockProductIDs()
	if err != nil {
		return BroadcastResult{}, err
	}
	if len(ids) == 0 {
		return BroadcastResult{}, nil
	}

	text, err := s.stockMessage("In stock now:", ids)
	if err != nil {
		return BroadcastResult{}, err
	}

	result, err := s.Broadcast(text)
	if err != nil {
		return result, err
	}
	return result, s.repos.Items.SetNotNew()
}

// stockMessage renders one line per product: breadcrumb, unit price and the
// unsold count. Archived products are left out.
func (s *AnnounceService) stockMessage(header string, productIDs []uint) (string, error) {
	type line struct {
		crumb string
		price float64
		qty   int64
	}

	var lines []line
	for _, id := range productIDs {
		cat, err := s.repos.Categories.GetByID(id)
		if err != nil {
			if err == repositories.ErrNotFound {
				continue
			}
			return "", err
		}
		if !cat.IsActive || !cat.IsProduct || cat.Price == nil {
			continue
		}

		crumb, err := s.repos.Categories.BreadcrumbString(id)
		if err != nil {
			return "", err
		}
		qty, err := s.repos.Categories.AvailableQty(id, nil)
		if err != nil {
			return "", err
		}
		if qty == 0 {
			continue
		}
		lines = append(lines, line{crumb: crumb, price: *cat.Price, qty: qty})
	}
	if len(lines) == 0 {
		return "", fmt.Errorf("announce: nothing to announce")
	}

	sort.Slice(lines, func(i, j int) bool { return lines[i].crumb < lines[j].crumb })

	var b strings.Builder
	b.WriteString(header)
	symbol := config.CurrencySymbol()
	for _, l := range lines {
		fmt.Fprintf(&b, "\n%s %s%.2f (%d pcs)", l.crumb, symbol, l.price, l.qty)
	}
	return b.String(), nil
}
