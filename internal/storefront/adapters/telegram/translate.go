package telegram

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dejobratic/tdsbot/internal/storefront/domain"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	mediaPhoto    = "photo"
	mediaDocument = "document"
)

// toEvent maps an update to a storefront event. Updates the storefront does
// not handle report false.
func toEvent(update tgbotapi.Update) (domain.Event, bool) {
	event := domain.Event{ID: strconv.Itoa(update.UpdateID)}

	if cb := update.CallbackQuery; cb != nil {
		if cb.Message == nil || cb.Message.Chat == nil {
			return domain.Event{}, false
		}
		event.Kind = domain.EventCallback
		event.UserID = strconv.FormatInt(cb.Message.Chat.ID, 10)
		event.Handle = handleOf(cb.From)
		event.ReceivedAt = cb.Message.Time()
		action, err := DecodeAction(cb.Data)
		if err != nil {
			return domain.Event{}, false
		}
		event.Action = action
		return event, true
	}

	msg := update.Message
	if msg == nil || msg.Chat == nil {
		return domain.Event{}, false
	}
	event.UserID = strconv.FormatInt(msg.Chat.ID, 10)
	event.Handle = handleOf(msg.From)
	event.ReceivedAt = msg.Time()

	switch {
	case msg.IsCommand():
		event.Kind = domain.EventCommand
		event.Command = msg.Command()
		event.Args = msg.CommandArguments()
	case len(msg.Photo) > 0:
		// Sizes are ascending; the last one is the original.
		largest := msg.Photo[len(msg.Photo)-1]
		event.Kind = domain.EventMedia
		event.Media = &domain.MediaRef{ID: largest.FileID, Kind: mediaPhoto}
	case msg.Document != nil && strings.HasPrefix(msg.Document.MimeType, "image/"):
		event.Kind = domain.EventMedia
		event.Media = &domain.MediaRef{ID: msg.Document.FileID, Kind: mediaDocument}
	case strings.TrimSpace(msg.Text) != "":
		event.Kind = domain.EventText
		event.Text = msg.Text
	default:
		return domain.Event{}, false
	}
	return event, true
}

func handleOf(u *tgbotapi.User) string {
	if u == nil {
		return ""
	}
	return u.UserName
}

// toChattable renders a response as a text message, or as a captioned
// photo or document when it carries media.
func toChattable(resp domain.Response) (tgbotapi.Chattable, error) {
	chatID, err := strconv.ParseInt(resp.Recipient, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid recipient %q: %w", resp.Recipient, err)
	}

	var parseMode string
	if resp.Markdown {
		parseMode = tgbotapi.ModeMarkdown
	}

	keyboard, err := toKeyboard(resp.Buttons)
	if err != nil {
		return nil, err
	}

	if resp.Media != nil {
		file := tgbotapi.FileID(resp.Media.ID)
		if resp.Media.Kind == mediaDocument {
			doc := tgbotapi.NewDocument(chatID, file)
			doc.Caption = resp.Text
			doc.ParseMode = parseMode
			if keyboard != nil {
				doc.ReplyMarkup = *keyboard
			}
			return doc, nil
		}
		photo := tgbotapi.NewPhoto(chatID, file)
		photo.Caption = resp.Text
		photo.ParseMode = parseMode
		if keyboard != nil {
			photo.ReplyMarkup = *keyboard
		}
		return photo, nil
	}

	msg := tgbotapi.NewMessage(chatID, resp.Text)
	msg.ParseMode = parseMode
	msg.DisableWebPagePreview = true
	if keyboard != nil {
		msg.ReplyMarkup = *keyboard
	}
	return msg, nil
}

func toKeyboard(rows [][]domain.Button) (*tgbotapi.InlineKeyboardMarkup, error) {
	if len(rows) == 0 {
		return nil, nil
	}

	var keyboard [][]tgbotapi.InlineKeyboardButton
	for _, row := range rows {
		var buttons []tgbotapi.InlineKeyboardButton
		for _, b := range row {
			if b.URL != "" {
				buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonURL(b.Label, b.URL))
				continue
			}
			if b.Action == nil {
				return nil, fmt.Errorf("button %q has neither action nor url", b.Label)
			}
			data, err := EncodeAction(*b.Action)
			if err != nil {
				return nil, fmt.Errorf("button %q: %w", b.Label, err)
			}
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(b.Label, data))
		}
		if len(buttons) > 0 {
			keyboard = append(keyboard, tgbotapi.NewInlineKeyboardRow(buttons...))
		}
	}

	markup := tgbotapi.NewInlineKeyboardMarkup(keyboard...)
	return &markup, nil
}
