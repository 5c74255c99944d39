package notifier

import (
	"context"
	"fmt"
	"time"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
	"github.com/patrickmn/go-cache"

	"gift_tracker/internal/worker"
	"gift_tracker/pkg/contextx"
	"gift_tracker/pkg/logx"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

const alertDedupeTTL = 5 * time.Minute

// TelegramBot pushes feed-outage alerts to a chat. A flapping socket fires
// the same alert repeatedly, so alerts with the same status are suppressed
// for alertDedupeTTL.
type TelegramBot struct {
	bot    *telego.Bot
	chatID int64
	seen   *cache.Cache
}

func NewTelegramBot(token string, chatID int64) (*TelegramBot, error) {
	bot, err := telego.NewBot(token)
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}

	return &TelegramBot{
		bot:    bot,
		chatID: chatID,
		seen:   cache.New(alertDedupeTTL, alertDedupeTTL),
	}, nil
}

// Run consumes alerts until the channel closes or ctx is done.
func (b *TelegramBot) Run(ctx context.Context, alerts <-chan worker.Alert) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case alert, ok := <-alerts:
			if !ok {
				return nil
			}

			if _, found := b.seen.Get(alert.Status.String()); found {
				continue
			}
			b.seen.Set(alert.Status.String(), true, cache.DefaultExpiration)

			if err := b.SendAlert(ctx, alert); err != nil {
				logger(ctx).Error("failed to send alert", logx.Error(err))
			}
		}
	}
}

func (b *TelegramBot) SendAlert(ctx context.Context, alert worker.Alert) error {
	text := fmt.Sprintf(
		"⚠️ <b>Gift feed trouble</b>\n\n"+
			"<b>Status:</b> %s\n"+
			"<b>Attempt:</b> %d\n"+
			"<b>Error:</b> %v",
		alert.Status,
		alert.Attempt,
		alert.Err,
	)

	msg := tu.Message(
		tu.ID(b.chatID),
		text,
	).WithParseMode(telego.ModeHTML)

	if _, err := b.bot.SendMessage(ctx, msg); err != nil {
		return fmt.Errorf("send message: %w", err)
	}

	return nil
}

// SendText sends a plain text message.
func (b *TelegramBot) SendText(ctx context.Context, text string) error {
	msg := tu.Message(tu.ID(b.chatID), text)

	_, err := b.bot.SendMessage(ctx, msg)
	return err
}
