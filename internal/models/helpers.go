package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

func GenerateConnectionID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return fmt.Sprintf("conn_%d_%s", now.UnixMilli(), suffix)
}

// NewUser returns a fresh ledger record for a first-contact user.
func NewUser(profile TelegramProfile, referrerID string, joined time.Time) *User {
	firstName := profile.FirstName
	if firstName == "" {
		firstName = DefaultFirstName
	}

	user := &User{
		TelegramID:     profile.ID,
		Username:       profile.Username,
		FirstName:      firstName,
		LastName:       profile.LastName,
		TasksCompleted: map[string]TaskCompletion{},
		JoinDate:       joined.UTC(),
	}
	if referrerID != "" {
		ref := referrerID
		user.ReferredBy = &ref
	}
	return user
}

// ParseUserID accepts the decimal string form of a Telegram user id.
func ParseUserID(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid user id: %q", raw)
	}
	return id, nil
}

func FormatUserID(id int64) string {
	return strconv.FormatInt(id, 10)
}
