package telegram

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dejobratic/tdsbot/internal/storefront/app"
	"github.com/dejobratic/tdsbot/internal/storefront/domain"
	"github.com/dejobratic/tdsbot/internal/storefront/ports"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// BotAPI is the subset of *tgbotapi.BotAPI the runner drives.
type BotAPI interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// NewBot connects to the Bot API and verifies the token.
func NewBot(token string) (*tgbotapi.BotAPI, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("%w: telegram: %v", domain.ErrUpstreamUnavailable, err)
	}
	return bot, nil
}

// Runner long-polls for updates and handles them one at a time, in order.
type Runner struct {
	bot         BotAPI
	handler     app.EventHandler
	dedup       ports.UpdateDeduplicator
	logger      *slog.Logger
	pollTimeout int
}

func NewRunner(bot BotAPI, handler app.EventHandler, dedup ports.UpdateDeduplicator, logger *slog.Logger, pollTimeoutSeconds int) *Runner {
	return &Runner{
		bot:         bot,
		handler:     handler,
		dedup:       dedup,
		logger:      logger,
		pollTimeout: pollTimeoutSeconds,
	}
}

// Run blocks until ctx is canceled or the update channel closes.
func (r *Runner) Run(ctx context.Context) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = r.pollTimeout
	cfg.AllowedUpdates = []string{"message", "callback_query"}

	updates := r.bot.GetUpdatesChan(cfg)
	r.logger.InfoContext(ctx, "telegram polling started", "timeout_seconds", r.pollTimeout)

	for {
		select {
		case <-ctx.Done():
			r.bot.StopReceivingUpdates()
			r.logger.InfoContext(ctx, "telegram polling stopped")
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			r.process(ctx, update)
		}
	}
}

func (r *Runner) process(ctx context.Context, update tgbotapi.Update) {
	if update.CallbackQuery != nil {
		// Clears the loading indicator on the tapped button.
		if _, err := r.bot.Request(tgbotapi.NewCallback(update.CallbackQuery.ID, "")); err != nil {
			r.logger.WarnContext(ctx, "failed to answer callback", "error", err, "update_id", update.UpdateID)
		}
	}

	event, ok := toEvent(update)
	if !ok {
		r.logger.DebugContext(ctx, "ignoring unsupported update", "update_id", update.UpdateID)
		return
	}

	if r.dedup != nil {
		first, err := r.dedup.MarkProcessed(ctx, "telegram:"+event.ID)
		if err != nil {
			r.logger.WarnContext(ctx, "dedup check failed", "error", err, "update_id", update.UpdateID)
		} else if !first {
			r.logger.InfoContext(ctx, "dropping redelivered update", "update_id", update.UpdateID)
			return
		}
	}

	r.Deliver(ctx, r.handler.Handle(ctx, event))
}

// Deliver sends responses in order. Failures are logged and dropped.
func (r *Runner) Deliver(ctx context.Context, responses []domain.Response) {
	for _, resp := range responses {
		msg, err := toChattable(resp)
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to render response", "error", err, "recipient", resp.Recipient)
			continue
		}
		if _, err := r.bot.Send(msg); err != nil {
			err = fmt.Errorf("%w: send to %s: %v", domain.ErrUpstreamUnavailable, resp.Recipient, err)
			r.logger.ErrorContext(ctx, "failed to send response", "error", err, "recipient", resp.Recipient)
		}
	}
}
