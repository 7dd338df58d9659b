package bot

import (
	"context"
	"runtime/debug"
	"sync"

	"referral-miniapp-backend/internal/metrics"
	"referral-miniapp-backend/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

//go:generate mockgen -destination=mock/sender.go -package=mock . Sender

const errorReply = "❌ An error occurred. Please try again."

// Sender delivers outgoing chat messages.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Ledger is the part of the user/referral store the bot mutates.
type Ledger interface {
	GetOrCreateUser(ctx context.Context, profile models.TelegramProfile, referrerID string) (*models.User, bool, error)
	RecordReferral(ctx context.Context, referrerID, referredID string, referredIsNew bool) (bool, error)
	CreditReferralEarnings(ctx context.Context, userID string, amount float64) (float64, error)
}

type Bot struct {
	sender Sender
	ledger Ledger
	admins map[int64]bool
	logger *zap.Logger

	wg sync.WaitGroup
}

func New(sender Sender, ledger Ledger, adminIDs []int64, logger *zap.Logger) *Bot {
	admins := make(map[int64]bool, len(adminIDs))
	for _, id := range adminIDs {
		admins[id] = true
	}

	return &Bot{
		sender: sender,
		ledger: ledger,
		admins: admins,
		logger: logger,
	}
}

// Run dispatches updates until ctx is cancelled or the channel closes, then
// waits for in-flight handlers. Each update is handled on its own goroutine.
func (b *Bot) Run(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	defer b.wg.Wait()

	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.wg.Add(1)
			go func() {
				defer b.wg.Done()
				b.HandleUpdate(ctx, update)
			}()
		}
	}
}

// HandleUpdate processes a single update. Failures are answered in chat and
// logged, never propagated.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil || !msg.IsCommand() {
		return
	}

	command := msg.Command()

	defer func() {
		if r := recover(); r != nil {
			metrics.BotUpdates.WithLabelValues(command, "panic").Inc()
			b.logger.Error("bot handler panicked",
				zap.Int("update_id", update.UpdateID),
				zap.String("command", command),
				zap.Any("panic", r),
				zap.ByteString("stack", debug.Stack()))
			b.reply(msg.Chat.ID, errorReply)
		}
	}()

	var (
		text string
		err  error
	)
	switch command {
	case "start":
		text, err = b.handleStart(ctx, msg)
	case "addreferral":
		text, err = b.handleAddReferral(ctx, msg)
	default:
		return
	}

	if err != nil {
		metrics.BotUpdates.WithLabelValues(command, "error").Inc()
		b.logger.Error("bot command failed",
			zap.String("command", command),
			zap.Int64("user_id", msg.From.ID),
			zap.Error(err))
		text = errorReply
	} else {
		metrics.BotUpdates.WithLabelValues(command, "ok").Inc()
	}

	b.reply(msg.Chat.ID, text)
}

func (b *Bot) reply(chatID int64, text string) {
	out := tgbotapi.NewMessage(chatID, text)
	out.ParseMode = tgbotapi.ModeHTML

	if _, err := b.sender.Send(out); err != nil {
		b.logger.Warn("failed to send reply", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

// notify sends a best-effort message; failures are logged and counted only.
func (b *Bot) notify(chatID int64, text string) {
	out := tgbotapi.NewMessage(chatID, text)
	out.ParseMode = tgbotapi.ModeHTML

	if _, err := b.sender.Send(out); err != nil {
		metrics.NotificationFailures.Inc()
		b.logger.Warn("failed to notify referrer", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func profileOf(from *tgbotapi.User) models.TelegramProfile {
	return models.TelegramProfile{
		ID:        from.ID,
		Username:  from.UserName,
		FirstName: from.FirstName,
		LastName:  from.LastName,
	}
}
