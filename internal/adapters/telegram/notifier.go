package telegram

import (
	"context"
	"fmt"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"tradebridge/internal/domain"
	"tradebridge/internal/ports"
)

// Notifier implements the ports.Notifier interface on top of the Telegram
// Bot API. Messages are rendered as HTML and sent to one fixed chat.
type Notifier struct {
	bot    *tgbot.BotAPI
	chatID int64
	logger ports.Logger
}

// Config holds configuration specific to the Telegram notifier adapter.
type Config struct {
	Token  string
	ChatID int64
	Logger ports.Logger
}

// New creates a new Telegram notifier. It performs a getMe round trip, so a
// bad token fails here rather than on the first notification.
func New(cfg Config) (*Notifier, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for Telegram notifier")
	}
	if cfg.Token == "" || cfg.ChatID == 0 {
		return nil, fmt.Errorf("telegram token and chat ID are required")
	}

	bot, err := tgbot.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("connect to Telegram: %w", err)
	}
	cfg.Logger.Info(context.Background(), "Telegram notifier initialized", map[string]interface{}{"botUser": bot.Self.UserName})

	return &Notifier{bot: bot, chatID: cfg.ChatID, logger: cfg.Logger}, nil
}

// Notify renders the event and delivers it to the configured chat.
func (n *Notifier) Notify(ctx context.Context, event domain.Event) error {
	msg := tgbot.NewMessage(n.chatID, FormatEvent(event))
	msg.ParseMode = tgbot.ModeHTML

	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("send Telegram message: %w", err)
	}
	n.logger.Debug(ctx, "Telegram message sent", map[string]interface{}{"kind": event.Kind})
	return nil
}
