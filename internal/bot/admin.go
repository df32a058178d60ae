package bot

import (
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/shashiranjanraj/bazaar/app/jobs"
	"github.com/shashiranjanraj/bazaar/app/models"
	"github.com/shashiranjanraj/bazaar/config"
	"github.com/shashiranjanraj/bazaar/pkg/queue"
	"github.com/shashiranjanraj/bazaar/pkg/session"
)

// Admin flow states. Each one names the input the chat is waiting for.
const (
	stateNewCategory  = "admin.newcat"
	stateNewProdName  = "admin.newprod.name"
	stateNewProdPrice = "admin.newprod.price"
	stateNewProdDesc  = "admin.newprod.desc"
	stateAddStock     = "admin.addstock"
	stateEditPrice    = "admin.price"
	stateEditDesc     = "admin.desc"
	stateEditPhoto    = "admin.photo"
	stateImport       = "admin.import"
	stateAnnounce     = "admin.announce"
	stateCreditUser   = "admin.credit.user"
	stateCreditAmount = "admin.credit.amount"
)

func (b *Bot) showAdminMenu(chatID int64) {
	out := tgbotapi.NewMessage(chatID, "\U0001f527 Admin")
	out.ReplyMarkup = adminKeyboard()
	b.send(out)
}

// showAdminCatalog renders one catalog level including archived nodes.
func (b *Bot) showAdminCatalog(q *tgbotapi.CallbackQuery, parentID uint, page int) {
	perPage := config.PageSize()
	cats, err := b.repos.Categories.LevelFiltered(optID(parentID), page, perPage, true)
	if err != nil {
		b.fail(q.Message.Chat.ID, "admin catalog", err)
		return
	}
	total, err := b.repos.Categories.CountLevelFiltered(optID(parentID), true)
	if err != nil {
		b.fail(q.Message.Chat.ID, "admin catalog", err)
		return
	}
	pages := int((total + int64(perPage) - 1) / int64(perPage))
	if pages < 1 {
		pages = 1
	}

	title := "\U0001f4c1 Catalog"
	var parentCat *models.Category
	if parentID != 0 {
		cat, err := b.repos.Categories.GetByID(parentID)
		if err != nil {
			b.fail(q.Message.Chat.ID, "admin catalog", err)
			return
		}
		parentCat = &cat
		if crumb, err := b.repos.Categories.BreadcrumbString(parentID); err == nil {
			title = "\U0001f4c1 " + crumb
		}
	}

	b.edit(q.Message, title, adminCatalogKeyboard(cats, parentCat, page, pages))
}

// showAdminNode renders the per-node menu with its key figures.
func (b *Bot) showAdminNode(q *tgbotapi.CallbackQuery, categoryID uint) {
	cat, err := b.repos.Categories.GetByID(categoryID)
	if err != nil {
		b.fail(q.Message.Chat.ID, "admin node", err)
		return
	}

	var sb strings.Builder
	crumb, err := b.repos.Categories.BreadcrumbString(categoryID)
	if err != nil {
		crumb = cat.Name
	}
	sb.WriteString(crumb)

	if cat.IsProduct {
		if cat.Price != nil {
			fmt.Fprintf(&sb, "\nPrice: %s%.2f", config.CurrencySymbol(), *cat.Price)
		}
		qty, err := b.repos.Categories.AvailableQty(categoryID, nil)
		if err == nil {
			fmt.Fprintf(&sb, "\nIn stock: %d", qty)
		}
	}
	sold, err := b.repos.Categories.CountSoldInSubtree(categoryID)
	if err == nil {
		fmt.Fprintf(&sb, "\nSold: %d", sold)
	}
	if !cat.IsActive {
		sb.WriteString("\nArchived")
	}

	b.edit(q.Message, sb.String(), adminNodeKeyboard(cat))
}

// handleAdminAction routes `adm:<action>:<arg>...` buttons. Most actions
// arm a flow state and prompt for input.
func (b *Bot) handleAdminAction(q *tgbotapi.CallbackQuery, cb Callback) {
	chatID := q.Message.Chat.ID
	action := cb.Str(0)
	chat := session.Load(chatID)

	prompt := func(state, key string, id uint, text string) {
		chat.SetState(state)
		if key != "" {
			chat.SetField(key, strconv.FormatUint(uint64(id), 10))
		}
		chat.Save()
		b.send(tgbotapi.NewMessage(chatID, text+"\nSend /cancel to abort."))
	}

	switch action {
	case "menu":
		b.showAdminMenu(chatID)
	case "newcat":
		prompt(stateNewCategory, "parent_id", cb.Uint(1), "Name of the new category?")
	case "newprod":
		prompt(stateNewProdName, "parent_id", cb.Uint(1), "Name of the new product?")
	case "addstock":
		prompt(stateAddStock, "category_id", cb.Uint(1),
			"Send the private data, one unit per line.")
	case "price":
		prompt(stateEditPrice, "category_id", cb.Uint(1), "New price?")
	case "desc":
		prompt(stateEditDesc, "category_id", cb.Uint(1), "New description?")
	case "photo":
		prompt(stateEditPhoto, "category_id", cb.Uint(1), "Send the new photo.")
	case "import":
		prompt(stateImport, "", 0,
			"Send a .txt (Cat>Sub>Product;description;price;data per line) or .json file.")
	case "announce":
		prompt(stateAnnounce, "", 0, "Text of the announcement?")
	case "credit":
		chat.SetField("op", "add")
		prompt(stateCreditUser, "", 0, "Telegram id or @username of the user?")
	case "debit":
		chat.SetField("op", "reduce")
		prompt(stateCreditUser, "", 0, "Telegram id or @username of the user?")
	case "restock":
		b.dispatchBroadcast(chatID, jobs.BroadcastJob{Kind: jobs.BroadcastRestock})
	case "stocklist":
		b.dispatchBroadcast(chatID, jobs.BroadcastJob{Kind: jobs.BroadcastStock})
	case "delete":
		b.adminDelete(q, cb.Uint(1))
	case "restore":
		b.adminRestore(q, cb.Uint(1))
	case "refunds":
		b.showRefunds(q, cb.Int(1))
	case "refund":
		b.adminRefund(q, cb.Uint(1))
	case "stats":
		b.showStats(chatID)
	}
}

// dispatchBroadcast queues a broadcast so the admin chat is not blocked on
// thousands of sends.
func (b *Bot) dispatchBroadcast(chatID int64, job jobs.BroadcastJob) {
	if err := queue.Dispatch(&job); err != nil {
		b.fail(chatID, "broadcast", err)
		return
	}
	b.send(tgbotapi.NewMessage(chatID, "Broadcast queued."))
}

// adminDelete runs the archive-or-delete decision on a subtree.
func (b *Bot) adminDelete(q *tgbotapi.CallbackQuery, categoryID uint) {
	archived, err := b.inventory.SmartDelete(categoryID)
	if err != nil {
		b.fail(q.Message.Chat.ID, "delete", err)
		return
	}
	if archived {
		b.send(tgbotapi.NewMessage(q.Message.Chat.ID,
			"Has sold items, archived instead of deleted. It can be reactivated."))
		b.showAdminNode(q, categoryID)
		return
	}
	b.send(tgbotapi.NewMessage(q.Message.Chat.ID, "Deleted."))
	b.showAdminCatalog(q, 0, 0)
}

func (b *Bot) adminRestore(q *tgbotapi.CallbackQuery, categoryID uint) {
	if err := b.inventory.Reactivate(categoryID); err != nil {
		b.fail(q.Message.Chat.ID, "restore", err)
		return
	}
	b.showAdminNode(q, categoryID)
}

// showRefunds lists one page of refundable buys.
func (b *Bot) showRefunds(q *tgbotapi.CallbackQuery, page int) {
	perPage := config.PageSize()
	buys, err := b.repos.Buys.Refundable(page, perPage)
	if err != nil {
		b.fail(q.Message.Chat.ID, "refunds", err)
		return
	}
	if len(buys) == 0 {
		b.edit(q.Message, "Nothing to refund.", adminKeyboard())
		return
	}

	symbol := config.CurrencySymbol()
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, buy := range buys {
		label := fmt.Sprintf("#%d %s ×%d %s%.2f (@%s)",
			buy.ID, buy.Category.Name, buy.Quantity, symbol, buy.TotalPrice, buy.User.TelegramUsername)
		rows = append(rows, row(btn(label, pack(cbAdmin, "refund", buy.ID))))
	}
	if len(buys) == perPage {
		rows = append(rows, row(btn("→ More", pack(cbAdmin, "refunds", page+1))))
	}
	rows = append(rows, row(btn("← Menu", pack(cbAdmin, "menu"))))

	b.edit(q.Message, "↩️ Tap a purchase to refund it.", tgbotapi.NewInlineKeyboardMarkup(rows...))
}

func (b *Bot) adminRefund(q *tgbotapi.CallbackQuery, buyID uint) {
	buy, err := b.purchase.Refund(buyID)
	if err != nil {
		b.fail(q.Message.Chat.ID, "refund", err)
		return
	}
	b.send(tgbotapi.NewMessage(q.Message.Chat.ID,
		fmt.Sprintf("Refunded %s%.2f for buy #%d.", config.CurrencySymbol(), buy.TotalPrice, buy.ID)))
	b.showRefunds(q, 0)
}

// showStats renders the dashboard windows.
func (b *Bot) showStats(chatID int64) {
	overview, err := b.stats.Overview()
	if err != nil {
		b.fail(chatID, "stats", err)
		return
	}

	symbol := config.CurrencySymbol()
	var sb strings.Builder
	fmt.Fprintf(&sb, "\U0001f4ca Users: %d", overview.TotalUsers)
	for _, w := range overview.Windows {
		fmt.Fprintf(&sb, "\n\nLast %d day(s):", w.Days)
		fmt.Fprintf(&sb, "\n  new users: %d", w.NewUsers)
		fmt.Fprintf(&sb, "\n  orders: %d (%d pcs)", w.Orders, w.Units)
		fmt.Fprintf(&sb, "\n  revenue: %s%.2f", symbol, w.Revenue)
		if w.Refunded > 0 {
			fmt.Fprintf(&sb, "\n  refunded: %s%.2f", symbol, w.Refunded)
		}
	}
	b.send(tgbotapi.NewMessage(chatID, sb.String()))
}
