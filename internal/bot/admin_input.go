package bot

import (
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/shashiranjanraj/bazaar/app/jobs"
	"github.com/shashiranjanraj/bazaar/app/models"
	"github.com/shashiranjanraj/bazaar/app/repositories"
	"github.com/shashiranjanraj/bazaar/app/services"
	"github.com/shashiranjanraj/bazaar/config"
	"github.com/shashiranjanraj/bazaar/pkg/queue"
	"github.com/shashiranjanraj/bazaar/pkg/session"
)

// handleAdminInput consumes the message an armed admin flow was waiting
// for. Flows that collect several values move the state forward; the rest
// finish and reset the chat.
func (b *Bot) handleAdminInput(msg *tgbotapi.Message, chat *session.Chat) {
	chatID := msg.Chat.ID
	text := strings.TrimSpace(msg.Text)

	done := func(confirmation string) {
		session.Reset(chatID)
		b.send(tgbotapi.NewMessage(chatID, confirmation))
	}

	switch chat.State {
	case stateNewCategory:
		if text == "" {
			b.send(tgbotapi.NewMessage(chatID, "Send the category name as text."))
			return
		}
		cat, err := b.inventory.CreateCategory(optID(chat.FieldUint("parent_id")), text)
		if err != nil {
			b.inputError(chatID, err)
			return
		}
		done(fmt.Sprintf("Category %q created.", cat.Name))

	case stateNewProdName:
		if text == "" {
			b.send(tgbotapi.NewMessage(chatID, "Send the product name as text."))
			return
		}
		chat.SetField("name", text)
		chat.SetState(stateNewProdPrice)
		chat.Save()
		b.send(tgbotapi.NewMessage(chatID, "Price?"))

	case stateNewProdPrice:
		price, err := strconv.ParseFloat(text, 64)
		if err != nil || price <= 0 {
			b.send(tgbotapi.NewMessage(chatID, "Send a positive number."))
			return
		}
		chat.SetField("price", text)
		chat.SetState(stateNewProdDesc)
		chat.Save()
		b.send(tgbotapi.NewMessage(chatID, "Description?"))

	case stateNewProdDesc:
		price, _ := strconv.ParseFloat(chat.Field("price"), 64)
		prod, err := b.inventory.CreateProduct(
			optID(chat.FieldUint("parent_id")), chat.Field("name"), price, text)
		if err != nil {
			b.inputError(chatID, err)
			return
		}
		done(fmt.Sprintf("Product %q created. Add stock through its node menu.", prod.Name))

	case stateAddStock:
		payloads := splitLines(text)
		if len(payloads) == 0 {
			b.send(tgbotapi.NewMessage(chatID, "Send the private data, one unit per line."))
			return
		}
		n, err := b.inventory.AddItems(chat.FieldUint("category_id"), payloads, nil)
		if err != nil {
			b.inputError(chatID, err)
			return
		}
		done(fmt.Sprintf("%d unit(s) added.", n))

	case stateEditPrice:
		price, err := strconv.ParseFloat(text, 64)
		if err != nil {
			b.send(tgbotapi.NewMessage(chatID, "Send a number."))
			return
		}
		if err := b.inventory.EditPrice(chat.FieldUint("category_id"), price); err != nil {
			b.inputError(chatID, err)
			return
		}
		done("Price updated.")

	case stateEditDesc:
		if err := b.inventory.EditDescription(chat.FieldUint("category_id"), text); err != nil {
			b.inputError(chatID, err)
			return
		}
		done("Description updated.")

	case stateEditPhoto:
		if len(msg.Photo) == 0 {
			b.send(tgbotapi.NewMessage(chatID, "Send a photo."))
			return
		}
		// The last size is the largest.
		fileID := msg.Photo[len(msg.Photo)-1].FileID
		if err := b.inventory.EditPhoto(chat.FieldUint("category_id"), fileID); err != nil {
			b.inputError(chatID, err)
			return
		}
		done("Photo updated.")

	case stateImport:
		b.runImport(msg, done)

	case stateAnnounce:
		if text == "" {
			b.send(tgbotapi.NewMessage(chatID, "Send the announcement as text."))
			return
		}
		if err := queue.Dispatch(&jobs.BroadcastJob{Kind: jobs.BroadcastText, Text: text}); err != nil {
			b.inputError(chatID, err)
			return
		}
		done("Broadcast queued.")

	case stateCreditUser:
		user, err := b.repos.Users.GetByEntity(text)
		if err != nil {
			if err == repositories.ErrNotFound {
				b.send(tgbotapi.NewMessage(chatID, "No such user. Try the numeric telegram id."))
				return
			}
			b.inputError(chatID, err)
			return
		}
		chat.SetField("user_id", strconv.FormatUint(uint64(user.ID), 10))
		chat.SetState(stateCreditAmount)
		chat.Save()
		verb := "add"
		if chat.Field("op") == "reduce" {
			verb = "remove"
		}
		b.send(tgbotapi.NewMessage(chatID,
			fmt.Sprintf("Current balance: %s%.2f. Amount to %s?", config.CurrencySymbol(), user.Balance(), verb)))

	case stateCreditAmount:
		amount, err := strconv.ParseFloat(text, 64)
		if err != nil || amount <= 0 {
			b.send(tgbotapi.NewMessage(chatID, "Send a positive number."))
			return
		}
		var user models.User
		if chat.Field("op") == "reduce" {
			user, err = b.purchase.Deduct(chat.FieldUint("user_id"), amount)
		} else {
			user, err = b.purchase.TopUp(chat.FieldUint("user_id"), amount)
		}
		if err != nil {
			b.inputError(chatID, err)
			return
		}
		done(fmt.Sprintf("Done. New balance: %s%.2f.", config.CurrencySymbol(), user.Balance()))

	default:
		session.Reset(chatID)
	}
}

// runImport downloads the uploaded file and routes it by extension.
func (b *Bot) runImport(msg *tgbotapi.Message, done func(string)) {
	chatID := msg.Chat.ID
	if msg.Document == nil {
		b.send(tgbotapi.NewMessage(chatID, "Send the import as a .txt or .json document."))
		return
	}

	data, err := b.downloadFile(msg.Document.FileID)
	if err != nil {
		b.inputError(chatID, err)
		return
	}

	var report services.ImportReport
	switch {
	case strings.HasSuffix(msg.Document.FileName, ".json"):
		report, err = b.importer.ImportJSON(data, nil)
	default:
		report, err = b.importer.ImportText(data, nil)
	}
	if err != nil {
		b.inputError(chatID, err)
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Import finished: %d added, %d skipped.", report.Added, report.Skipped)
	for i, re := range report.Errors {
		if i == 10 {
			fmt.Fprintf(&sb, "\n… and %d more", len(report.Errors)-i)
			break
		}
		fmt.Fprintf(&sb, "\nline %d: %s", re.Line, re.Err)
	}
	done(sb.String())
}

func (b *Bot) inputError(chatID int64, err error) {
	b.send(tgbotapi.NewMessage(chatID, "Failed: "+err.Error()))
}

func splitLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}
