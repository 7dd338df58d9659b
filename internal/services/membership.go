package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"referral-miniapp-backend/internal/metrics"
	"referral-miniapp-backend/internal/models"

	"go.uber.org/zap"
)

//go:generate mockgen -destination=mock/status_getter.go -package=mock . StatusGetter

var (
	ErrChatNotFound      = errors.New("chat not found")
	ErrForbidden         = errors.New("bot is not allowed to see chat members")
	ErrMembershipUnknown = errors.New("membership could not be determined")
	ErrBotNotConfigured  = errors.New("telegram bot is not configured")
)

// StatusGetter looks up a user's membership status in a chat.
type StatusGetter interface {
	ChatMemberStatus(ctx context.Context, chatID string, userID int64) (string, error)
}

// ChatAPIError is a failed response from the messaging platform.
type ChatAPIError struct {
	Code        int
	Description string
}

func (e *ChatAPIError) Error() string {
	return fmt.Sprintf("telegram api error %d: %s", e.Code, e.Description)
}

var memberStatuses = map[string]bool{
	"member":        true,
	"administrator": true,
	"creator":       true,
	"restricted":    true,
}

type MembershipProber struct {
	getter StatusGetter
	logger *zap.Logger
}

func NewMembershipProber(getter StatusGetter, logger *zap.Logger) *MembershipProber {
	return &MembershipProber{getter: getter, logger: logger}
}

// Candidates lists the chat id encodings tried for a channel reference, in
// order: the @handle, the bare name, and for all-digit names the -100
// supergroup form.
func Candidates(channel string) []string {
	name := CleanChannel(channel)
	if name == "" {
		return nil
	}

	candidates := []string{"@" + name, name}
	if isDigits(name) {
		candidates = append(candidates, "-100"+name)
	}
	return candidates
}

func CleanChannel(channel string) string {
	return strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(channel), "@"))
}

// Check asks the platform about each candidate until one answers. When every
// attempt fails the last error is returned, classified as ErrChatNotFound,
// ErrForbidden or ErrMembershipUnknown.
func (p *MembershipProber) Check(ctx context.Context, userID int64, channel string) (*models.MembershipResult, error) {
	if p.getter == nil {
		return nil, ErrBotNotConfigured
	}

	candidates := Candidates(channel)
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: empty channel", ErrChatNotFound)
	}

	var lastErr error
	for _, chatID := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMembershipUnknown, err)
		}

		status, err := p.getter.ChatMemberStatus(ctx, chatID, userID)
		if err != nil {
			metrics.MembershipAttempts.WithLabelValues("error").Inc()
			p.logger.Debug("membership attempt failed",
				zap.String("chat_id", chatID),
				zap.Int64("user_id", userID),
				zap.Error(err))
			lastErr = err
			continue
		}

		metrics.MembershipAttempts.WithLabelValues("ok").Inc()
		return &models.MembershipResult{
			IsMember: memberStatuses[status],
			Status:   status,
			ChatID:   chatID,
		}, nil
	}

	return nil, classifyChatError(lastErr)
}

func classifyChatError(err error) error {
	var apiErr *ChatAPIError
	if errors.As(err, &apiErr) {
		desc := strings.ToLower(apiErr.Description)
		switch {
		case apiErr.Code == 403 || strings.Contains(desc, "forbidden") || strings.Contains(desc, "not enough rights"):
			return fmt.Errorf("%w: %w", ErrForbidden, err)
		case apiErr.Code == 404 || strings.Contains(desc, "not found"):
			return fmt.Errorf("%w: %w", ErrChatNotFound, err)
		}
	}
	return fmt.Errorf("%w: %w", ErrMembershipUnknown, err)
}

// MembershipErrorReason maps a Check error onto the reason reported to clients.
func MembershipErrorReason(err error) string {
	switch {
	case errors.Is(err, ErrBotNotConfigured):
		return "bot_not_configured"
	case errors.Is(err, ErrChatNotFound):
		return "not_found"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	default:
		return "unknown"
	}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
