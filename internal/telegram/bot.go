// Package telegram connects the chat handler chain to the Telegram Bot API.
package telegram

import (
	"context"
	"errors"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	chat "copperx-bot/internal/chat/domain"
	"copperx-bot/internal/log"
)

// API is the subset of *tgbotapi.BotAPI the bot uses to talk back to Telegram.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Messenger sends replies to Telegram chats. It implements notify.Sender.
type Messenger struct {
	api API
}

// NewMessenger returns a Messenger over api.
func NewMessenger(api API) *Messenger {
	return &Messenger{api: api}
}

// Bot converts updates to chat events, runs the handler chain and delivers the replies.
type Bot struct {
	*Messenger
	handler chat.Handler
}

// NewBot returns a Bot that answers through api.
func NewBot(api API, handler chat.Handler) *Bot {
	return &Bot{Messenger: NewMessenger(api), handler: handler}
}

// HandleUpdate processes one update synchronously. Unsupported updates are dropped.
func (b *Bot) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	ev, ok := ToEvent(upd)
	if !ok {
		log.Debug(ctx).Int("update_id", upd.UpdateID).Msg("telegram: ignoring unsupported update")
		return
	}
	b.HandleEvent(ctx, ev)
}

// HandleEvent acknowledges button presses, runs the handler and sends every reply in order.
func (b *Bot) HandleEvent(ctx context.Context, ev chat.Event) {
	if p, ok := ev.Payload.(chat.ButtonPress); ok && p.CallbackID != "" {
		if _, err := b.api.Request(tgbotapi.NewCallback(p.CallbackID, "")); err != nil {
			log.Warn(ctx).Err(err).Msg("telegram: answer callback failed")
		}
	}
	for _, r := range b.handler.Handle(ctx, ev) {
		if err := b.Send(ctx, ev.ChatID, r); err != nil {
			log.Warn(ctx).Err(err).Int64("chat_id", ev.ChatID).Msg("telegram: send reply failed")
		}
	}
}

// Send delivers one reply to chatID. A Markdown reply Telegram cannot parse is resent as plain text.
func (m *Messenger) Send(ctx context.Context, chatID int64, r chat.Reply) error {
	if strings.TrimSpace(r.Text) == "" {
		return nil
	}
	_, err := m.api.Send(NewMessage(chatID, r))
	if err != nil && r.Markdown && isParseError(err) {
		log.Debug(ctx).Err(err).Msg("telegram: markdown rejected, resending as plain text")
		r.Markdown = false
		_, err = m.api.Send(NewMessage(chatID, r))
	}
	return err
}

// NewMessage renders r as a sendMessage request with an inline keyboard.
func NewMessage(chatID int64, r chat.Reply) tgbotapi.MessageConfig {
	msg := tgbotapi.NewMessage(chatID, r.Text)
	if r.Markdown {
		msg.ParseMode = tgbotapi.ModeMarkdown
	}
	if len(r.Options) > 0 {
		rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(r.Options))
		for _, row := range r.Options {
			buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
			for _, o := range row {
				buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(o.Label, o.Key))
			}
			rows = append(rows, buttons)
		}
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	}
	return msg
}

// ToEvent converts a message or callback query. It reports false for every other update kind.
func ToEvent(upd tgbotapi.Update) (chat.Event, bool) {
	switch {
	case upd.Message != nil:
		m := upd.Message
		if m.From == nil || m.Chat == nil || m.Text == "" {
			return chat.Event{}, false
		}
		return chat.Event{Identity: m.From.ID, ChatID: m.Chat.ID, Payload: chat.ParseText(m.Text)}, true
	case upd.CallbackQuery != nil:
		q := upd.CallbackQuery
		if q.From == nil {
			return chat.Event{}, false
		}
		chatID := q.From.ID
		if q.Message != nil && q.Message.Chat != nil {
			chatID = q.Message.Chat.ID
		}
		return chat.Event{
			Identity: q.From.ID,
			ChatID:   chatID,
			Payload:  chat.ButtonPress{Data: q.Data, CallbackID: q.ID},
		}, true
	default:
		return chat.Event{}, false
	}
}

func isParseError(err error) bool {
	var tgErr *tgbotapi.Error
	if errors.As(err, &tgErr) {
		return strings.Contains(tgErr.Message, "can't parse entities")
	}
	return strings.Contains(err.Error(), "can't parse entities")
}
