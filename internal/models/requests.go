package models

import "encoding/json"

type ConnectRequest struct {
	Timestamp       string        `json:"timestamp"`
	UserAgent       string        `json:"userAgent"`
	FrontendVersion string        `json:"frontendVersion"`
	UserData        *FrontendUser `json:"userData"`
}

// MembershipRequest accepts userId either as a JSON number or a numeric string.
type MembershipRequest struct {
	UserID       json.Number `json:"userId"`
	Channel      string      `json:"channel"`
	ConnectionID string      `json:"connectionId"`
}

type MembershipResult struct {
	IsMember bool   `json:"isMember"`
	Status   string `json:"status"`
	ChatID   string `json:"chatId"`
}

type CreditRequest struct {
	UserID json.Number `json:"userId" binding:"required"`
	Amount float64     `json:"amount" binding:"required"`
}
