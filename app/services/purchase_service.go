package services

import (
	"fmt"

	"github.com/shashiranjanraj/bazaar/app/models"
	"github.com/shashiranjanraj/bazaar/app/repositories"
	"github.com/shashiranjanraj/bazaar/pkg/crypt"
	"github.com/shashiranjanraj/bazaar/pkg/event"
	"github.com/shashiranjanraj/bazaar/pkg/logger"
	"github.com/shashiranjanraj/bazaar/pkg/metrics"
	"gorm.io/gorm"
)

// PurchaseService runs the money path: cart checkout, balance top ups and
// refunds.
type PurchaseService struct {
	repos   *repositories.Registry
	catalog *CatalogService
}

func NewPurchaseService(db *gorm.DB) *PurchaseService {
	return &PurchaseService{
		repos:   repositories.New(db),
		catalog: NewCatalogService(db),
	}
}

// Delivery is what the buyer receives for one purchased product: the
// decrypted per-unit payloads.
type Delivery struct {
	Buy      models.Buy
	Product  string
	Payloads []string
}

// CartTotal sums the cart at current prices and reports lines that can no
// longer be fulfilled from stock.
func (s *PurchaseService) CartTotal(cartID uint) (total float64, short []models.CartItem, err error) {
	lines, err := s.repos.Carts.Items(cartID)
	if err != nil {
		return 0, nil, err
	}
	for _, line := range lines {
		if line.Category.Price != nil {
			total += *line.Category.Price * float64(line.Quantity)
		}
		qty, err := s.repos.Categories.AvailableQty(line.CategoryID, nil)
		if err != nil {
			return 0, nil, err
		}
		if qty < int64(line.Quantity) {
			short = append(short, line)
		}
	}
	return total, short, nil
}

// Checkout settles the whole cart against the user's balance. Stock and
// funds are re-checked inside the transaction, oldest units are sold first
// and the buyer gets the decrypted payloads back. The cart is cleared on
// success.
func (s *PurchaseService) Checkout(userID uint) ([]Delivery, error) {
	user, err := s.repos.Users.GetByID(userID)
	if err != nil {
		return nil, err
	}

	cart, err := s.repos.Carts.GetOrCreate(userID)
	if err != nil {
		return nil, err
	}
	lines, err := s.repos.Carts.Items(cart.ID)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	total, short, err := s.CartTotal(cart.ID)
	if err != nil {
		return nil, err
	}
	if len(short) > 0 {
		return nil, ErrOutOfStock
	}
	if user.Balance() < total {
		return nil, ErrInsufficientFunds
	}

	var deliveries []Delivery
	err = s.repos.Transaction(func(tx *repositories.Registry) error {
		// The checks above only produce friendlier errors; the balance that
		// counts is re-read here so a concurrent top up or refund is not
		// overwritten by a stale row.
		user, err := tx.Users.GetByID(userID)
		if err != nil {
			return err
		}
		if user.Balance() < total {
			return ErrInsufficientFunds
		}

		deliveries = deliveries[:0]
		for _, line := range lines {
			d, err := s.sellLine(tx, &user, line)
			if err != nil {
				return err
			}
			deliveries = append(deliveries, d)
		}

		user.ConsumeRecords += total
		if err := tx.Users.Update(&user); err != nil {
			return err
		}
		return tx.Carts.Clear(cart.ID)
	})
	if err != nil {
		return nil, err
	}

	for _, d := range deliveries {
		s.catalog.InvalidateQty(d.Buy.CategoryID)
		metrics.PurchasesTotal.Inc()
		metrics.RevenueTotal.Add(d.Buy.TotalPrice)
		event.Fire(EventPurchaseCompleted, PurchasePayload{
			BuyID:      d.Buy.ID,
			UserID:     userID,
			CategoryID: d.Buy.CategoryID,
			Product:    d.Product,
			Quantity:   d.Buy.Quantity,
			TotalPrice: d.Buy.TotalPrice,
		})

		left, err := s.repos.Categories.AvailableQty(d.Buy.CategoryID, nil)
		if err == nil && left == 0 {
			event.Fire(EventProductSoldOut, SoldOutPayload{
				CategoryID: d.Buy.CategoryID,
				Product:    d.Product,
			})
		}
	}

	logger.Info("purchase: checkout", "user_id", userID, "lines", len(lines), "total", total)
	return deliveries, nil
}

// sellLine sells one cart line inside tx: reserve the oldest unsold units,
// record the buy and mark the units sold.
func (s *PurchaseService) sellLine(tx *repositories.Registry, user *models.User, line models.CartItem) (Delivery, error) {
	units, err := tx.Items.Unsold(line.CategoryID, line.Quantity)
	if err != nil {
		return Delivery{}, err
	}
	if len(units) < line.Quantity {
		return Delivery{}, ErrOutOfStock
	}
	if line.Category.Price == nil {
		return Delivery{}, repositories.ErrNotProduct
	}

	buy := models.Buy{
		UserID:     user.ID,
		CategoryID: line.CategoryID,
		Quantity:   line.Quantity,
		TotalPrice: *line.Category.Price * float64(line.Quantity),
	}
	if err := tx.Buys.Create(&buy); err != nil {
		return Delivery{}, err
	}

	ids := make([]uint, len(units))
	payloads := make([]string, len(units))
	for i, unit := range units {
		ids[i] = unit.ID
		plain, err := crypt.Decrypt(unit.PrivateData)
		if err != nil {
			return Delivery{}, fmt.Errorf("purchase: decrypt item %d: %w", unit.ID, err)
		}
		payloads[i] = plain
	}
	if err := tx.Items.MarkSold(ids, buy.ID); err != nil {
		return Delivery{}, err
	}

	return Delivery{Buy: buy, Product: line.Category.Name, Payloads: payloads}, nil
}

// TopUp credits amount to a user's balance. Used by the admin tooling after
// an out-of-band payment.
func (s *PurchaseService) TopUp(userID uint, amount float64) (models.User, error) {
	if amount <= 0 {
		return models.User{}, fmt.Errorf("purchase: top up amount must be positive")
	}
	user, err := s.repos.Users.GetByID(userID)
	if err != nil {
		return models.User{}, err
	}
	user.TopUpAmount += amount
	if err := s.repos.Users.Update(&user); err != nil {
		return models.User{}, err
	}
	logger.Info("purchase: top up", "user_id", userID, "amount", amount, "balance", user.Balance())
	return user, nil
}

// Deduct removes amount from a user's balance, the counterpart of TopUp for
// admin corrections. The ledger may go negative; charging back more than is
// left is the admin's call.
func (s *PurchaseService) Deduct(userID uint, amount float64) (models.User, error) {
	if amount <= 0 {
		return models.User{}, fmt.Errorf("purchase: deduct amount must be positive")
	}
	user, err := s.repos.Users.GetByID(userID)
	if err != nil {
		return models.User{}, err
	}
	user.ConsumeRecords += amount
	if err := s.repos.Users.Update(&user); err != nil {
		return models.User{}, err
	}
	logger.Info("purchase: deduct", "user_id", userID, "amount", amount, "balance", user.Balance())
	return user, nil
}

// Refund returns the purchase price to the buyer's balance. The sold units
// stay sold; a refund compensates, it does not restock.
func (s *PurchaseService) Refund(buyID uint) (models.Buy, error) {
	buy, err := s.repos.Buys.GetByID(buyID)
	if err != nil {
		return models.Buy{}, err
	}
	if buy.IsRefunded {
		return models.Buy{}, fmt.Errorf("purchase: buy %d already refunded", buyID)
	}

	err = s.repos.Transaction(func(tx *repositories.Registry) error {
		if err := tx.Buys.MarkRefunded(buyID); err != nil {
			return err
		}
		user, err := tx.Users.GetByID(buy.UserID)
		if err != nil {
			return err
		}
		user.ConsumeRecords -= buy.TotalPrice
		return tx.Users.Update(&user)
	})
	if err != nil {
		return models.Buy{}, err
	}

	buy.IsRefunded = true
	logger.Info("purchase: refunded", "buy_id", buyID, "amount", buy.TotalPrice)
	return buy, nil
}
