// Package bot is the Telegram surface of the shop: shopper browsing and
// checkout plus the inline admin tooling.
package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/bazaar/app/repositories"
	"github.com/shashiranjanraj/bazaar/app/services"
	"github.com/shashiranjanraj/bazaar/config"
	"github.com/shashiranjanraj/bazaar/pkg/http"
	"github.com/shashiranjanraj/bazaar/pkg/logger"
	"github.com/shashiranjanraj/bazaar/pkg/metrics"
	"github.com/shashiranjanraj/bazaar/pkg/session"
)

// Bot wires the Telegram API to the service layer.
type Bot struct {
	api *tgbotapi.BotAPI

	repos     *repositories.Registry
	catalog   *services.CatalogService
	inventory *services.InventoryService
	purchase  *services.PurchaseService
	importer  *services.ImportService
	announce  *services.AnnounceService
	stats     *services.StatsService
}

// New connects to Telegram and builds the handler graph.
func New(db *gorm.DB) (*Bot, error) {
	token := config.BotToken()
	if token == "" {
		return nil, fmt.Errorf("bot: BOT_TOKEN not configured")
	}

	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("bot: connect: %w", err)
	}

	b := &Bot{
		api:       api,
		repos:     repositories.New(db),
		catalog:   services.NewCatalogService(db),
		inventory: services.NewInventoryService(db),
		purchase:  services.NewPurchaseService(db),
		importer:  services.NewImportService(db),
		stats:     services.NewStatsService(db),
	}
	b.announce = services.NewAnnounceService(db, b.sendTo)

	logger.Info("bot: authorized", "username", api.Self.UserName)
	return b, nil
}

// Announcer exposes the broadcast service for queue-job wiring.
func (b *Bot) Announcer() *services.AnnounceService { return b.announce }

// sendTo is the broadcast Sender: one plain message to one chat. Telegram's
// 403 (user blocked the bot) maps to ErrForbidden so the announce service
// can tell a rejection from a transient failure.
func (b *Bot) sendTo(chatID int64, text string) error {
	_, err := b.api.Send(tgbotapi.NewMessage(chatID, text))
	var tgErr *tgbotapi.Error
	if errors.As(err, &tgErr) && tgErr.Code == 403 {
		return fmt.Errorf("%w: %s", services.ErrForbidden, tgErr.Message)
	}
	return err
}

// Run long-polls for updates until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 30
	updates := b.api.GetUpdatesChan(cfg)

	logger.Info("bot: polling")
	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.dispatch(update)
		}
	}
}

// dispatch routes one update. Handler panics are contained so a bad update
// cannot take the poll loop down.
func (b *Bot) dispatch(update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("bot: handler panic", "panic", r)
		}
	}()

	switch {
	case update.CallbackQuery != nil:
		metrics.BotUpdates.WithLabelValues("callback").Inc()
		b.handleCallback(update.CallbackQuery)
	case update.Message != nil:
		metrics.BotUpdates.WithLabelValues("message").Inc()
		b.handleMessage(update.Message)
	default:
		metrics.BotUpdates.WithLabelValues("other").Inc()
	}
}

// handleMessage routes commands, admin flow input and stray text.
func (b *Bot) handleMessage(msg *tgbotapi.Message) {
	if _, err := b.repos.Users.GetOrCreate(msg.From.ID, msg.From.UserName); err != nil {
		logger.Error("bot: upsert user", "telegram_id", msg.From.ID, "error", err)
		return
	}

	if msg.IsCommand() {
		b.handleCommand(msg)
		return
	}

	// Non-command input only means something inside an admin flow.
	chat := session.Load(msg.Chat.ID)
	if chat.State != session.StateNone && config.IsAdmin(msg.From.ID) {
		b.handleAdminInput(msg, chat)
		return
	}

	b.send(tgbotapi.NewMessage(msg.Chat.ID, "Use /start to browse the shop."))
}

func (b *Bot) handleCommand(msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		session.Reset(msg.Chat.ID)
		b.showCatalog(msg.Chat.ID, msg.From.ID, 0, nil, 0)
	case "profile":
		b.showProfile(msg.Chat.ID, msg.From.ID)
	case "cancel":
		session.Reset(msg.Chat.ID)
		b.send(tgbotapi.NewMessage(msg.Chat.ID, "Cancelled."))
	case "admin":
		if !config.IsAdmin(msg.From.ID) {
			b.send(tgbotapi.NewMessage(msg.Chat.ID, "Unknown command."))
			return
		}
		b.showAdminMenu(msg.Chat.ID)
	default:
		b.send(tgbotapi.NewMessage(msg.Chat.ID, "Unknown command. Try /start."))
	}
}

// handleCallback routes a pressed button by its prefix.
func (b *Bot) handleCallback(q *tgbotapi.CallbackQuery) {
	// Ack first so the client stops its spinner even when handling fails.
	if _, err := b.api.Request(tgbotapi.NewCallback(q.ID, "")); err != nil {
		logger.Debug("bot: callback ack", "error", err)
	}

	cb, err := parseCallback(q.Data)
	if err != nil {
		return
	}

	admin := config.IsAdmin(q.From.ID)
	switch cb.Prefix {
	case cbCatalog:
		b.showCatalog(q.Message.Chat.ID, q.From.ID, cb.Uint(0), q.Message, cb.Int(1))
	case cbProduct:
		b.showProduct(q, cb.Uint(0))
	case cbAddCart:
		b.addToCart(q, cb.Uint(0), cb.Int(1))
	case cbCart:
		b.showCart(q)
	case cbCartDrop:
		b.dropCartLine(q, cb.Uint(0))
	case cbCheckout:
		b.checkout(q)
	case cbLocPage:
		b.showLocations(q, cb.Uint(0), cb.Int(1))
	case cbLocation:
		b.pickLocation(q, cb.Uint(0))
	case cbProfile:
		b.showProfile(q.Message.Chat.ID, q.From.ID)
	case cbHistory:
		b.showHistory(q, cb.Int(0))
	case cbAdminCat:
		if admin {
			b.showAdminCatalog(q, cb.Uint(0), cb.Int(1))
		}
	case cbAdminNode:
		if admin {
			b.showAdminNode(q, cb.Uint(0))
		}
	case cbAdmin:
		if admin {
			b.handleAdminAction(q, cb)
		}
	}
}

// send logs failed deliveries instead of bubbling them up; the poll loop
// must keep running.
func (b *Bot) send(c tgbotapi.Chattable) {
	if _, err := b.api.Send(c); err != nil {
		logger.Warn("bot: send failed", "error", err)
	}
}

// edit replaces a message's text and keyboard in place, falling back to a
// fresh message when Telegram refuses the edit (old or deleted message).
func (b *Bot) edit(msg *tgbotapi.Message, text string, kb tgbotapi.InlineKeyboardMarkup) {
	if msg == nil {
		return
	}
	edit := tgbotapi.NewEditMessageTextAndMarkup(msg.Chat.ID, msg.MessageID, text, kb)
	if _, err := b.api.Send(edit); err != nil {
		out := tgbotapi.NewMessage(msg.Chat.ID, text)
		out.ReplyMarkup = kb
		b.send(out)
	}
}

// downloadFile fetches an uploaded document through the bot file API.
func (b *Bot) downloadFile(fileID string) ([]byte, error) {
	url, err := b.api.GetFileDirectURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("bot: resolve file: %w", err)
	}

	resp, err := http.Get(url).Timeout(30 * time.Second).Send()
	if err != nil {
		return nil, fmt.Errorf("bot: download file: %w", err)
	}
	if !resp.OK() {
		return nil, fmt.Errorf("bot: download file: status %d", resp.StatusCode)
	}
	return []byte(resp.Text()), nil
}
