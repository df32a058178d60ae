package bot

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/shashiranjanraj/bazaar/app/models"
	"github.com/shashiranjanraj/bazaar/app/repositories"
	"github.com/shashiranjanraj/bazaar/app/services"
	"github.com/shashiranjanraj/bazaar/config"
	"github.com/shashiranjanraj/bazaar/pkg/logger"
)

// shopper resolves the stored user for a Telegram account.
func (b *Bot) shopper(telegramID int64) (models.User, error) {
	return b.repos.Users.GetOrCreate(telegramID, "")
}

// showCatalog renders one level of the shopper catalog, editing msg in place
// when the view came from a button press.
func (b *Bot) showCatalog(chatID, telegramID int64, parentID uint, msg *tgbotapi.Message, page int) {
	user, err := b.shopper(telegramID)
	if err != nil {
		b.fail(chatID, "catalog", err)
		return
	}

	perPage := config.PageSize()
	entries, err := b.catalog.Browse(optID(parentID), page, perPage, user.LocationID)
	if err != nil {
		b.fail(chatID, "catalog", err)
		return
	}
	pages, err := b.catalog.PageCount(optID(parentID), perPage)
	if err != nil {
		b.fail(chatID, "catalog", err)
		return
	}

	var parent *models.Category
	title := "\U0001f6cd Shop"
	if parentID != 0 {
		cat, err := b.repos.Categories.GetByID(parentID)
		if err != nil {
			b.fail(chatID, "catalog", err)
			return
		}
		parent = &cat
		crumb, err := b.repos.Categories.BreadcrumbString(parentID)
		if err == nil {
			title = crumb
		}
	}
	if len(entries) == 0 {
		title += "\n\nNothing in stock here right now."
	}

	kb := catalogKeyboard(entries, parent, page, pages)
	if msg != nil {
		b.edit(msg, title, kb)
		return
	}
	out := tgbotapi.NewMessage(chatID, title)
	out.ReplyMarkup = kb
	b.send(out)
}

// showProduct renders the product card. Products with a photo get a fresh
// photo message since Telegram cannot turn a text message into one.
func (b *Bot) showProduct(q *tgbotapi.CallbackQuery, categoryID uint) {
	user, err := b.shopper(q.From.ID)
	if err != nil {
		b.fail(q.Message.Chat.ID, "product", err)
		return
	}

	card, err := b.catalog.Card(categoryID, user.LocationID)
	if err != nil {
		b.fail(q.Message.Chat.ID, "product", err)
		return
	}

	text := productText(card)
	kb := productKeyboard(card)

	if card.Category.PhotoFileID != nil {
		photo := tgbotapi.NewPhoto(q.Message.Chat.ID, tgbotapi.FileID(*card.Category.PhotoFileID))
		photo.Caption = text
		photo.ReplyMarkup = kb
		b.send(photo)
		return
	}
	b.edit(q.Message, text, kb)
}

func productText(card services.ProductCard) string {
	var sb strings.Builder
	sb.WriteString(card.Breadcrumb)
	if card.Category.Description != nil && *card.Category.Description != "" {
		sb.WriteString("\n\n")
		sb.WriteString(*card.Category.Description)
	}
	fmt.Fprintf(&sb, "\n\nPrice: %s%.2f", config.CurrencySymbol(), *card.Category.Price)
	fmt.Fprintf(&sb, "\nIn stock: %d", card.Qty)
	return sb.String()
}

// addToCart puts qty units of a product into the shopper's cart.
func (b *Bot) addToCart(q *tgbotapi.CallbackQuery, categoryID uint, qty int) {
	user, err := b.shopper(q.From.ID)
	if err != nil {
		b.fail(q.Message.Chat.ID, "cart", err)
		return
	}

	available, err := b.catalog.AvailableQty(categoryID, nil)
	if err != nil {
		b.fail(q.Message.Chat.ID, "cart", err)
		return
	}
	if int64(qty) > available {
		b.send(tgbotapi.NewMessage(q.Message.Chat.ID,
			fmt.Sprintf("Only %d left in stock.", available)))
		return
	}

	cart, err := b.repos.Carts.GetOrCreate(user.ID)
	if err != nil {
		b.fail(q.Message.Chat.ID, "cart", err)
		return
	}
	if err := b.repos.Carts.AddItem(cart.ID, categoryID, qty); err != nil {
		b.fail(q.Message.Chat.ID, "cart", err)
		return
	}
	b.showCart(q)
}

// showCart renders the cart with its total and any lines stock can no
// longer cover.
func (b *Bot) showCart(q *tgbotapi.CallbackQuery) {
	user, err := b.shopper(q.From.ID)
	if err != nil {
		b.fail(q.Message.Chat.ID, "cart", err)
		return
	}
	cart, err := b.repos.Carts.GetOrCreate(user.ID)
	if err != nil {
		b.fail(q.Message.Chat.ID, "cart", err)
		return
	}
	lines, err := b.repos.Carts.Items(cart.ID)
	if err != nil {
		b.fail(q.Message.Chat.ID, "cart", err)
		return
	}

	if len(lines) == 0 {
		b.edit(q.Message, "\U0001f6d2 Your cart is empty.", cartKeyboard(nil))
		return
	}

	total, short, err := b.purchase.CartTotal(cart.ID)
	if err != nil {
		b.fail(q.Message.Chat.ID, "cart", err)
		return
	}

	symbol := config.CurrencySymbol()
	var sb strings.Builder
	sb.WriteString("\U0001f6d2 Cart\n")
	for _, line := range lines {
		price := 0.0
		if line.Category.Price != nil {
			price = *line.Category.Price
		}
		fmt.Fprintf(&sb, "\n%s ×%d = %s%.2f", line.Category.Name, line.Quantity, symbol, price*float64(line.Quantity))
	}
	fmt.Fprintf(&sb, "\n\nTotal: %s%.2f", symbol, total)
	fmt.Fprintf(&sb, "\nBalance: %s%.2f", symbol, user.Balance())
	for _, line := range short {
		fmt.Fprintf(&sb, "\n⚠ %s: not enough stock", line.Category.Name)
	}

	b.edit(q.Message, sb.String(), cartKeyboard(lines))
}

// dropCartLine removes one line and re-renders the cart.
func (b *Bot) dropCartLine(q *tgbotapi.CallbackQuery, cartItemID uint) {
	line, err := b.repos.Carts.GetItem(cartItemID)
	if err != nil {
		if err != repositories.ErrNotFound {
			b.fail(q.Message.Chat.ID, "cart", err)
			return
		}
	} else {
		// Ignore presses on someone else's stale keyboard.
		user, err := b.shopper(q.From.ID)
		if err != nil {
			b.fail(q.Message.Chat.ID, "cart", err)
			return
		}
		cart, err := b.repos.Carts.GetOrCreate(user.ID)
		if err != nil {
			b.fail(q.Message.Chat.ID, "cart", err)
			return
		}
		if line.CartID == cart.ID {
			if err := b.repos.Carts.RemoveItem(cartItemID); err != nil {
				b.fail(q.Message.Chat.ID, "cart", err)
				return
			}
		}
	}
	b.showCart(q)
}

// checkout settles the cart and delivers the purchased payloads.
func (b *Bot) checkout(q *tgbotapi.CallbackQuery) {
	user, err := b.shopper(q.From.ID)
	if err != nil {
		b.fail(q.Message.Chat.ID, "checkout", err)
		return
	}

	deliveries, err := b.purchase.Checkout(user.ID)
	switch err {
	case nil:
	case services.ErrEmptyCart:
		b.edit(q.Message, "\U0001f6d2 Your cart is empty.", cartKeyboard(nil))
		return
	case services.ErrOutOfStock:
		b.send(tgbotapi.NewMessage(q.Message.Chat.ID, "Some cart lines are out of stock. Check your cart."))
		return
	case services.ErrInsufficientFunds:
		b.send(tgbotapi.NewMessage(q.Message.Chat.ID, "Your balance does not cover the cart total. Contact support to top up."))
		return
	default:
		b.fail(q.Message.Chat.ID, "checkout", err)
		return
	}

	for _, d := range deliveries {
		var sb strings.Builder
		fmt.Fprintf(&sb, "✅ %s ×%d\n", d.Product, d.Buy.Quantity)
		for _, payload := range d.Payloads {
			sb.WriteString("\n")
			sb.WriteString(payload)
		}
		b.send(tgbotapi.NewMessage(q.Message.Chat.ID, sb.String()))
	}

	fresh, err := b.shopper(q.From.ID)
	if err == nil {
		b.send(tgbotapi.NewMessage(q.Message.Chat.ID,
			fmt.Sprintf("Purchase complete. Balance: %s%.2f", config.CurrencySymbol(), fresh.Balance())))
	}
}

// showLocations renders the city list or one city's neighborhoods.
func (b *Bot) showLocations(q *tgbotapi.CallbackQuery, parentID uint, page int) {
	var (
		locs []models.Location
		err  error
	)
	title := "\U0001f4cd Pick your city"
	if parentID == 0 {
		locs, err = b.repos.Locations.Cities()
	} else {
		locs, err = b.repos.Locations.Neighborhoods(parentID)
		if city, cerr := b.repos.Locations.GetByID(parentID); cerr == nil {
			title = "\U0001f4cd " + city.Name
		}
	}
	if err != nil {
		b.fail(q.Message.Chat.ID, "locations", err)
		return
	}

	perPage := config.PageSize()
	pages := (len(locs) + perPage - 1) / perPage
	if pages < 1 {
		pages = 1
	}
	if page >= pages {
		page = pages - 1
	}
	start := page * perPage
	end := start + perPage
	if end > len(locs) {
		end = len(locs)
	}

	b.edit(q.Message, title, locationKeyboard(locs[start:end], parentID, page, pages))
}

// pickLocation stores the delivery location (0 clears it) and returns to
// the catalog filtered by it.
func (b *Bot) pickLocation(q *tgbotapi.CallbackQuery, locationID uint) {
	user, err := b.shopper(q.From.ID)
	if err != nil {
		b.fail(q.Message.Chat.ID, "locations", err)
		return
	}
	if err := b.repos.Users.SetLocation(user.ID, optID(locationID)); err != nil {
		b.fail(q.Message.Chat.ID, "locations", err)
		return
	}
	b.showCatalog(q.Message.Chat.ID, q.From.ID, 0, q.Message, 0)
}

// showProfile renders balance, spend history and the stored location.
func (b *Bot) showProfile(chatID, telegramID int64) {
	user, err := b.shopper(telegramID)
	if err != nil {
		b.fail(chatID, "profile", err)
		return
	}

	symbol := config.CurrencySymbol()
	var sb strings.Builder
	sb.WriteString("\U0001f464 Profile\n")
	fmt.Fprintf(&sb, "\nBalance: %s%.2f", symbol, user.Balance())
	fmt.Fprintf(&sb, "\nTotal topped up: %s%.2f", symbol, user.TopUpAmount)
	fmt.Fprintf(&sb, "\nTotal spent: %s%.2f", symbol, user.ConsumeRecords)
	if user.LocationID != nil {
		if crumb, err := locationCrumb(b.repos.Locations, *user.LocationID); err == nil {
			sb.WriteString("\nDelivery location: " + crumb)
		}
	}

	out := tgbotapi.NewMessage(chatID, sb.String())
	out.ReplyMarkup = profileKeyboard()
	b.send(out)
}

func locationCrumb(locations *repositories.LocationRepository, id uint) (string, error) {
	chain, err := locations.Breadcrumb(id)
	if err != nil {
		return "", err
	}
	names := make([]string, len(chain))
	for i, loc := range chain {
		names[i] = loc.Name
	}
	return strings.Join(names, ", "), nil
}

// showHistory renders one page of the shopper's purchases.
func (b *Bot) showHistory(q *tgbotapi.CallbackQuery, page int) {
	user, err := b.shopper(q.From.ID)
	if err != nil {
		b.fail(q.Message.Chat.ID, "history", err)
		return
	}

	perPage := config.PageSize()
	buys, err := b.repos.Buys.ByUser(user.ID, page, perPage)
	if err != nil {
		b.fail(q.Message.Chat.ID, "history", err)
		return
	}

	if len(buys) == 0 && page == 0 {
		b.edit(q.Message, "No purchases yet.", profileKeyboard())
		return
	}

	symbol := config.CurrencySymbol()
	var sb strings.Builder
	sb.WriteString("\U0001f4e6 Purchases\n")
	for _, buy := range buys {
		fmt.Fprintf(&sb, "\n%s: %s ×%d, %s%.2f",
			buy.CreatedAt.Format("02 Jan 2006"), buy.Category.Name, buy.Quantity, symbol, buy.TotalPrice)
		if buy.IsRefunded {
			sb.WriteString(" (refunded)")
		}
	}

	var rows = tgbotapi.NewInlineKeyboardMarkup(
		row(btn("→ More", pack(cbHistory, page+1))),
		row(btn("← Profile", pack(cbProfile))),
	)
	if len(buys) < perPage {
		rows = tgbotapi.NewInlineKeyboardMarkup(row(btn("← Profile", pack(cbProfile))))
	}
	b.edit(q.Message, sb.String(), rows)
}

// fail reports an internal error to the chat once and logs the detail.
func (b *Bot) fail(chatID int64, op string, err error) {
	logger.Error("bot: "+op, "error", err)
	b.send(tgbotapi.NewMessage(chatID, "Something went wrong. Try again later."))
}
