package bot

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strconv"
	"strings"

	"referral-miniapp-backend/internal/models"
	"referral-miniapp-backend/internal/services"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const (
	addReferralUsage   = "Usage: /addreferral &lt;userId&gt; &lt;amount&gt;"
	notAuthorizedReply = "⛔ You are not allowed to use this command."
	invalidAmountReply = "❌ Amount must be a positive number."
	invalidUserReply   = "❌ User id must be numeric."
)

// handleStart creates the sender's ledger record on first contact, links the
// referrer from the deep-link payload and builds the welcome text.
func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) (string, error) {
	profile := profileOf(msg.From)
	userID := models.FormatUserID(profile.ID)
	name := displayName(profile)

	referrerID := b.parseReferrer(msg.CommandArguments())
	if referrerID == userID {
		referrerID = ""
	}

	user, isNew, err := b.ledger.GetOrCreateUser(ctx, profile, referrerID)
	if err != nil {
		return "", err
	}

	if !isNew {
		if user.ReferredBy == nil || *user.ReferredBy == "" {
			return fmt.Sprintf("Welcome back, %s!", name), nil
		}

		// The record may have been stored by an attempt whose referral write
		// failed. The edge is written at most once, so replaying it is safe.
		recorded, err := b.recordReferral(ctx, *user.ReferredBy, userID, name)
		if err != nil {
			return "", err
		}
		if !recorded {
			return fmt.Sprintf("Welcome back, %s!", name), nil
		}
		return fmt.Sprintf("👋 Hi %s! Referred by a friend! Start earning now!", name), nil
	}
	if referrerID == "" {
		return fmt.Sprintf("👋 Hi %s! Invite friends &amp; earn 10%% of their earnings!", name), nil
	}

	if _, err := b.recordReferral(ctx, referrerID, userID, name); err != nil {
		return "", err
	}

	return fmt.Sprintf("👋 Hi %s! Referred by a friend! Start earning now!", name), nil
}

// recordReferral writes the referral edge for a user whose record carries
// referrerID and notifies the referrer when the edge is new.
func (b *Bot) recordReferral(ctx context.Context, referrerID, userID, name string) (bool, error) {
	recorded, err := b.ledger.RecordReferral(ctx, referrerID, userID, true)
	if err != nil {
		return false, err
	}
	if recorded {
		// Stored referrer ids are always numeric.
		referrerChat, _ := strconv.ParseInt(referrerID, 10, 64)
		b.notify(referrerChat, fmt.Sprintf("New referral! %s.", name))
	}
	return recorded, nil
}

// parseReferrer takes the first token of the /start payload. Anything that
// is not a Telegram user id is treated as an organic signup.
func (b *Bot) parseReferrer(args string) string {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		return ""
	}

	id, err := models.ParseUserID(fields[0])
	if err != nil {
		b.logger.Debug("ignoring malformed referrer", zap.String("payload", fields[0]))
		return ""
	}
	return models.FormatUserID(id)
}

func (b *Bot) handleAddReferral(ctx context.Context, msg *tgbotapi.Message) (string, error) {
	if !b.admins[msg.From.ID] {
		b.logger.Warn("unauthorized addreferral attempt", zap.Int64("user_id", msg.From.ID))
		return notAuthorizedReply, nil
	}

	fields := strings.Fields(msg.CommandArguments())
	if len(fields) != 2 {
		return addReferralUsage, nil
	}

	userID, err := models.ParseUserID(fields[0])
	if err != nil {
		return invalidUserReply, nil
	}
	amount, err := services.ParseAmount(fields[1])
	if err != nil {
		return invalidAmountReply, nil
	}

	total, err := b.ledger.CreditReferralEarnings(ctx, models.FormatUserID(userID), amount)
	if errors.Is(err, services.ErrInvalidAmount) {
		return invalidAmountReply, nil
	}
	if err != nil {
		return "", err
	}

	b.logger.Info("referral earnings credited",
		zap.Int64("admin_id", msg.From.ID),
		zap.Int64("user_id", userID),
		zap.Float64("amount", amount),
		zap.Float64("total", total))

	return fmt.Sprintf("✅ Credited %s to %d. Total referral earnings: %s",
		formatAmount(amount), userID, formatAmount(total)), nil
}

func displayName(profile models.TelegramProfile) string {
	name := profile.FirstName
	if name == "" {
		name = models.DefaultFirstName
	}
	return html.EscapeString(name)
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
