package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"referral-miniapp-backend/internal/services"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Client wraps the Bot API for status lookups, sends and update polling.
type Client struct {
	api    *tgbotapi.BotAPI
	logger *zap.Logger
}

// NewClient authorizes the bot. timeout bounds every single API call.
func NewClient(token string, timeout time.Duration, logger *zap.Logger) (*Client, error) {
	httpClient := &http.Client{Timeout: timeout}

	api, err := tgbotapi.NewBotAPIWithClient(token, tgbotapi.APIEndpoint, httpClient)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}
	logger.Info("telegram bot authorized", zap.String("username", api.Self.UserName))

	return &Client{api: api, logger: logger}, nil
}

func (c *Client) Username() string {
	return c.api.Self.UserName
}

// ChatMemberStatus returns the user's status string in chatID. Numeric ids
// are sent as chat ids, anything else as a username.
func (c *Client) ChatMemberStatus(ctx context.Context, chatID string, userID int64) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	target := tgbotapi.ChatConfigWithUser{UserID: userID}
	if id, err := strconv.ParseInt(chatID, 10, 64); err == nil {
		target.ChatID = id
	} else {
		target.SuperGroupUsername = chatID
	}

	member, err := c.api.GetChatMember(tgbotapi.GetChatMemberConfig{ChatConfigWithUser: target})
	if err != nil {
		return "", translateError(err)
	}
	return member.Status, nil
}

func (c *Client) Send(msg tgbotapi.Chattable) (tgbotapi.Message, error) {
	sent, err := c.api.Send(msg)
	if err != nil {
		return sent, translateError(err)
	}
	return sent, nil
}

// Updates starts long polling.
func (c *Client) Updates(timeout int) tgbotapi.UpdatesChannel {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = timeout
	return c.api.GetUpdatesChan(u)
}

func (c *Client) StopUpdates() {
	c.api.StopReceivingUpdates()
}

func translateError(err error) error {
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) {
		return &services.ChatAPIError{Code: apiErr.Code, Description: apiErr.Message}
	}
	return err
}
