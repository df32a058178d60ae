package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/shashiranjanraj/bazaar/app/models"
	"github.com/shashiranjanraj/bazaar/app/services"
	"github.com/shashiranjanraj/bazaar/config"
)

// row is shorthand for one keyboard row.
func row(buttons ...tgbotapi.InlineKeyboardButton) []tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardRow(buttons...)
}

func btn(label, data string) tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardButtonData(label, data)
}

// navRow builds the prev / page / next row when the listing spans pages.
func navRow(prefix string, parentID uint, page, pages int) []tgbotapi.InlineKeyboardButton {
	if pages <= 1 {
		return nil
	}
	var buttons []tgbotapi.InlineKeyboardButton
	if page > 0 {
		buttons = append(buttons, btn("←", pack(prefix, parentID, page-1)))
	}
	buttons = append(buttons, btn(fmt.Sprintf("%d/%d", page+1, pages), pack(prefix, parentID, page)))
	if page < pages-1 {
		buttons = append(buttons, btn("→", pack(prefix, parentID, page+1)))
	}
	return buttons
}

// backTarget resolves where a level's back button points: the grandparent
// level, or the roots.
func backTarget(parent *models.Category) uint {
	if parent == nil || parent.ParentID == nil {
		return 0
	}
	return *parent.ParentID
}

// catalogKeyboard renders one browse level: a button per entry, the pager
// and a back button to the parent level.
func catalogKeyboard(entries []services.CatalogEntry, parent *models.Category, page, pages int) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	symbol := config.CurrencySymbol()

	for _, e := range entries {
		if e.Category.IsProduct {
			label := fmt.Sprintf("%s %s%.2f (%d)", e.Category.Name, symbol, *e.Category.Price, e.Qty)
			rows = append(rows, row(btn(label, pack(cbProduct, e.Category.ID))))
			continue
		}
		rows = append(rows, row(btn(e.Category.Name+" ▸", pack(cbCatalog, e.Category.ID, 0))))
	}

	var parentID uint
	if parent != nil {
		parentID = parent.ID
	}
	if nav := navRow(cbCatalog, parentID, page, pages); nav != nil {
		rows = append(rows, nav)
	}
	if parent != nil {
		rows = append(rows, row(btn("← Back", pack(cbCatalog, backTarget(parent), 0))))
	}
	rows = append(rows, row(btn("\U0001f6d2 Cart", pack(cbCart))))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// productKeyboard renders the card actions: quantity picks capped by stock,
// and the way back to the listing.
func productKeyboard(card services.ProductCard) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton

	var qtyRow []tgbotapi.InlineKeyboardButton
	for _, q := range []int64{1, 2, 5, 10} {
		if q > card.Qty {
			break
		}
		qtyRow = append(qtyRow, btn(fmt.Sprintf("+%d", q), pack(cbAddCart, card.Category.ID, q)))
	}
	if len(qtyRow) > 0 {
		rows = append(rows, qtyRow)
	}

	back := uint(0)
	if card.Category.ParentID != nil {
		back = *card.Category.ParentID
	}
	rows = append(rows,
		row(btn("\U0001f6d2 Cart", pack(cbCart))),
		row(btn("← Back", pack(cbCatalog, back, 0))),
	)
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// cartKeyboard renders one remove button per line plus checkout.
func cartKeyboard(lines []models.CartItem) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, line := range lines {
		label := fmt.Sprintf("✖ %s ×%d", line.Category.Name, line.Quantity)
		rows = append(rows, row(btn(label, pack(cbCartDrop, line.ID))))
	}
	if len(lines) > 0 {
		rows = append(rows, row(btn("✅ Checkout", pack(cbCheckout))))
	}
	rows = append(rows, row(btn("← Shop", pack(cbCatalog, 0, 0))))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// locationKeyboard lists cities or one city's neighborhoods.
func locationKeyboard(locations []models.Location, parentID uint, page, pages int) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, loc := range locations {
		if loc.IsDeliverable {
			rows = append(rows, row(btn(loc.Name, pack(cbLocation, loc.ID))))
		} else {
			rows = append(rows, row(btn(loc.Name+" ▸", pack(cbLocPage, loc.ID, 0))))
		}
	}
	if nav := navRow(cbLocPage, parentID, page, pages); nav != nil {
		rows = append(rows, nav)
	}
	if parentID != 0 {
		rows = append(rows, row(btn("← Back", pack(cbLocPage, 0, 0))))
	}
	rows = append(rows, row(btn("Anywhere", pack(cbLocation, 0))))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// profileKeyboard links out of the profile view.
func profileKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		row(btn("\U0001f4e6 Purchases", pack(cbHistory, 0))),
		row(btn("\U0001f4cd Delivery location", pack(cbLocPage, 0, 0))),
		row(btn("← Shop", pack(cbCatalog, 0, 0))),
	)
}

// adminKeyboard is the admin main menu.
func adminKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		row(btn("\U0001f4c1 Catalog", pack(cbAdminCat, 0, 0))),
		row(btn("\U0001f4e5 Import stock", pack(cbAdmin, "import"))),
		row(btn("\U0001f4e3 Announcement", pack(cbAdmin, "announce"))),
		row(btn("\U0001f195 Restock digest", pack(cbAdmin, "restock")), btn("\U0001f4cb Stock list", pack(cbAdmin, "stocklist"))),
		row(btn("\U0001f4b0 Credit user", pack(cbAdmin, "credit")), btn("\U0001f4b8 Debit user", pack(cbAdmin, "debit"))),
		row(btn("↩️ Refunds", pack(cbAdmin, "refunds", 0))),
		row(btn("\U0001f4ca Statistics", pack(cbAdmin, "stats"))),
	)
}

// adminCatalogKeyboard renders one admin browse level including archived
// nodes, with node menus instead of product cards.
func adminCatalogKeyboard(cats []models.Category, parent *models.Category, page, pages int) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, cat := range cats {
		label := cat.Name
		if cat.IsProduct {
			label = "\U0001f4e6 " + label
		}
		if !cat.IsActive {
			label += " (archived)"
		}
		rows = append(rows, row(
			btn(label, pack(cbAdminNode, cat.ID)),
		))
	}

	var parentID uint
	if parent != nil {
		parentID = parent.ID
	}
	if nav := navRow(cbAdminCat, parentID, page, pages); nav != nil {
		rows = append(rows, nav)
	}

	rows = append(rows, row(
		btn("➕ Category", pack(cbAdmin, "newcat", parentID)),
		btn("➕ Product", pack(cbAdmin, "newprod", parentID)),
	))
	if parent != nil {
		rows = append(rows, row(btn("← Back", pack(cbAdminCat, backTarget(parent), 0))))
	} else {
		rows = append(rows, row(btn("← Menu", pack(cbAdmin, "menu"))))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// adminNodeKeyboard is the per-node admin menu. Products get the full edit
// set, groupings only browse and delete.
func adminNodeKeyboard(cat models.Category) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton

	if cat.IsProduct {
		rows = append(rows,
			row(btn("➕ Add stock", pack(cbAdmin, "addstock", cat.ID))),
			row(
				btn("\U0001f4b2 Price", pack(cbAdmin, "price", cat.ID)),
				btn("\U0001f4dd Description", pack(cbAdmin, "desc", cat.ID)),
			),
			row(btn("\U0001f5bc Photo", pack(cbAdmin, "photo", cat.ID))),
		)
	} else {
		rows = append(rows, row(btn("\U0001f4c2 Open", pack(cbAdminCat, cat.ID, 0))))
	}

	if cat.IsActive {
		rows = append(rows, row(btn("\U0001f5d1 Delete", pack(cbAdmin, "delete", cat.ID))))
	} else {
		rows = append(rows, row(btn("♻️ Reactivate", pack(cbAdmin, "restore", cat.ID))))
	}

	back := uint(0)
	if cat.ParentID != nil {
		back = *cat.ParentID
	}
	rows = append(rows, row(btn("← Back", pack(cbAdminCat, back, 0))))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
