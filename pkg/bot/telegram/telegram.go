// Package telegram bridges Telegram updates into classified bot events.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"factlens/pkg/bot"
	"factlens/pkg/config"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
)

const channelName = "telegram"
const messagePreviewLimit = 240
const typingRefreshInterval = 4 * time.Second

// Adapter runs long polling, classifies each update into a bot.InboundEvent,
// and implements the outbound Responder side over the same connection.
type Adapter struct {
	cfg       config.TelegramConfig
	allowFrom map[string]struct{}
	log       *slog.Logger
	bot       *telego.Bot
}

// NewAdapter validates Telegram configuration and constructs an adapter instance.
func NewAdapter(cfg config.TelegramConfig, log *slog.Logger) (*Adapter, error) {
	token := strings.TrimSpace(cfg.Token)
	if token == "" {
		return nil, errors.New("telegram.token is required")
	}

	if log == nil {
		log = slog.Default()
	}

	return &Adapter{
		cfg:       cfg,
		allowFrom: allowFromSet(cfg.AllowFrom),
		log:       log.With("component", "bot.telegram"),
	}, nil
}

// Name returns the channel identifier used in status reporting and logs.
func (a *Adapter) Name() string {
	return channelName
}

// Run starts Telegram long polling and feeds classified events to handler.
func (a *Adapter) Run(ctx context.Context, handler bot.Handler) error {
	if handler == nil {
		return errors.New("handler is required")
	}

	tgBot, err := telego.NewBot(strings.TrimSpace(a.cfg.Token))
	if err != nil {
		return fmt.Errorf("initialize telegram bot: %w", err)
	}
	a.bot = tgBot

	updates, err := tgBot.UpdatesViaLongPolling(ctx, nil)
	if err != nil {
		return fmt.Errorf("start long polling: %w", err)
	}

	a.log.Info("Telegram channel started")

	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				if err := ctx.Err(); err != nil {
					return nil
				}
				return errors.New("telegram updates channel closed")
			}

			event, ok := classify(update)
			if !ok {
				continue
			}

			senderID := strconv.FormatInt(event.UserID, 10)
			if !a.senderAllowed(senderID) {
				a.log.Debug("Ignoring event from unauthorized sender", "sender_id", senderID)
				continue
			}

			a.log.Info("Received event",
				"kind", kindName(event.Kind),
				"chat_id", event.ChatID,
				"sender_id", senderID,
				"content", previewText(eventPreview(event)),
			)

			stopTyping := func() {}
			if event.Kind == bot.KindText {
				stopTyping = a.startTypingIndicator(ctx, event.ChatID)
			}

			if err := handler(ctx, event, a); err != nil {
				a.log.Error("Failed to process inbound event", "kind", kindName(event.Kind), "error", err)
			}
			stopTyping()
		}
	}
}

// SendMessage delivers text (HTML formatted) with an optional inline menu.
func (a *Adapter) SendMessage(ctx context.Context, chatID int64, text string, menu []bot.Button) error {
	params := tu.Message(tu.ID(chatID), text).WithParseMode(telego.ModeHTML)
	if len(menu) > 0 {
		params = params.WithReplyMarkup(buildKeyboard(menu))
	}

	a.log.Debug("Sending message", "chat_id", chatID, "content", previewText(text))

	if _, err := a.bot.SendMessage(ctx, params); err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}

	return nil
}

// AnswerCallback acknowledges a pressed button so the client stops showing
// its loading indicator; toast is optional.
func (a *Adapter) AnswerCallback(ctx context.Context, callbackID string, toast string) error {
	params := &telego.AnswerCallbackQueryParams{CallbackQueryID: callbackID}
	if toast != "" {
		params.Text = toast
	}

	if err := a.bot.AnswerCallbackQuery(ctx, params); err != nil {
		return fmt.Errorf("answer callback query: %w", err)
	}

	return nil
}

// classify maps one raw update onto the event union consumed by the router.
// Updates with no sender cannot be attributed and are dropped.
func classify(update telego.Update) (bot.InboundEvent, bool) {
	if callback := update.CallbackQuery; callback != nil {
		return bot.InboundEvent{
			Kind:       bot.KindCallback,
			ChatID:     callback.From.ID,
			UserID:     callback.From.ID,
			CallbackID: callback.ID,
			Payload:    callback.Data,
		}, true
	}

	message := update.Message
	if message == nil || message.From == nil {
		return bot.InboundEvent{}, false
	}

	event := bot.InboundEvent{
		ChatID: message.Chat.ID,
		UserID: message.From.ID,
	}

	text := strings.TrimSpace(message.Text)
	switch {
	case strings.HasPrefix(text, "/"):
		event.Kind = bot.KindCommand
		event.Command = parseCommand(text)
	case text != "":
		event.Kind = bot.KindText
		event.Text = text
	case len(message.Photo) > 0:
		event.Kind = bot.KindPhoto
	case message.Document != nil:
		event.Kind = bot.KindDocument
	default:
		event.Kind = bot.KindOther
	}

	return event, true
}

// parseCommand extracts the bare command name from "/name@bot args".
func parseCommand(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ""
	}

	name := strings.TrimPrefix(fields[0], "/")
	name, _, _ = strings.Cut(name, "@")
	return strings.ToLower(name)
}

func buildKeyboard(menu []bot.Button) *telego.InlineKeyboardMarkup {
	rows := make([][]telego.InlineKeyboardButton, 0, len(menu))
	for _, button := range menu {
		rows = append(rows, tu.InlineKeyboardRow(
			tu.InlineKeyboardButton(button.Label).WithCallbackData(button.Data),
		))
	}

	return tu.InlineKeyboard(rows...)
}

// senderAllowed checks whether a sender is permitted by allow_from config.
//
// When no allow list is configured, all senders are accepted.
func (a *Adapter) senderAllowed(senderID string) bool {
	if len(a.allowFrom) == 0 {
		return true
	}

	_, ok := a.allowFrom[strings.TrimSpace(senderID)]
	return ok
}

// allowFromSet normalizes allow_from values into a lookup set.
func allowFromSet(allowFrom []string) map[string]struct{} {
	if len(allowFrom) == 0 {
		return nil
	}

	allowed := make(map[string]struct{}, len(allowFrom))
	for _, value := range allowFrom {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			continue
		}
		allowed[trimmed] = struct{}{}
	}

	if len(allowed) == 0 {
		return nil
	}

	return allowed
}

func kindName(kind bot.Kind) string {
	switch kind {
	case bot.KindCommand:
		return "command"
	case bot.KindCallback:
		return "callback"
	case bot.KindText:
		return "text"
	case bot.KindPhoto:
		return "photo"
	case bot.KindDocument:
		return "document"
	default:
		return "other"
	}
}

func eventPreview(event bot.InboundEvent) string {
	switch event.Kind {
	case bot.KindCommand:
		return "/" + event.Command
	case bot.KindCallback:
		return event.Payload
	case bot.KindText:
		return event.Text
	default:
		return ""
	}
}

// previewText returns a bounded log-safe preview of message text.
func previewText(text string) string {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) <= messagePreviewLimit {
		return trimmed
	}

	return trimmed[:messagePreviewLimit] + "..."
}

// startTypingIndicator sends an initial typing action and refreshes it
// periodically until the returned cancel function is called.
func (a *Adapter) startTypingIndicator(ctx context.Context, chatID int64) context.CancelFunc {
	typingCtx, cancel := context.WithCancel(ctx)

	sendTyping := func() {
		if err := a.bot.SendChatAction(typingCtx, tu.ChatAction(tu.ID(chatID), telego.ChatActionTyping)); err != nil && typingCtx.Err() == nil {
			a.log.Debug("Failed to send typing indicator", "chat_id", chatID, "error", err)
		}
	}

	sendTyping()

	go func() {
		ticker := time.NewTicker(typingRefreshInterval)
		defer ticker.Stop()

		for {
			select {
			case <-typingCtx.Done():
				return
			case <-ticker.C:
				sendTyping()
			}
		}
	}()

	return cancel
}
