package models

import (
	"bytes"
	"encoding/json"
	"time"
)

// FrontendUserID is a client-supplied user id. Numbers and strings are both
// accepted; any other JSON value is kept as its raw text.
type FrontendUserID string

func (id *FrontendUserID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*id = FrontendUserID(s)
		return nil
	}

	raw := bytes.TrimSpace(data)
	if bytes.Equal(raw, []byte("null")) {
		*id = ""
		return nil
	}
	*id = FrontendUserID(raw)
	return nil
}

// FrontendUser is the Telegram WebApp user snapshot a frontend may send
// along with its check-in.
type FrontendUser struct {
	ID        FrontendUserID `json:"id,omitempty"`
	Username  string         `json:"username,omitempty"`
	FirstName string         `json:"first_name,omitempty"`
	LastName  string         `json:"last_name,omitempty"`
}

// Identity returns a stable key for distinct-user counting, or "" when the
// snapshot carries nothing usable.
func (u *FrontendUser) Identity() string {
	if u == nil {
		return ""
	}
	if id := string(u.ID); id != "" {
		return "id:" + id
	}
	if u.Username != "" {
		return "username:" + u.Username
	}
	return ""
}

type ConnectionMeta struct {
	UserAgent       string
	FrontendVersion string
	UserData        *FrontendUser
	IP              string
	Origin          string
}

type Connection struct {
	ID              string        `json:"id"`
	Timestamp       time.Time     `json:"timestamp"`
	LastSeen        time.Time     `json:"lastSeen"`
	UserAgent       string        `json:"userAgent"`
	FrontendVersion string        `json:"frontendVersion"`
	UserData        *FrontendUser `json:"userData"`
	IP              string        `json:"ip"`
	Origin          string        `json:"origin"`
}

type ConnectionStats struct {
	Total       int `json:"total"`
	Active      int `json:"active"`
	UniqueUsers int `json:"uniqueUsers"`
}
