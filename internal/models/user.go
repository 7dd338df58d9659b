package models

import "time"

const DefaultFirstName = "User"

// TelegramProfile is the sender identity carried by a bot update.
type TelegramProfile struct {
	ID        int64
	Username  string
	FirstName string
	LastName  string
}

type TaskCompletion struct {
	CompletedAt time.Time `json:"completedAt"`
	Reward      float64   `json:"reward,omitempty"`
}

type User struct {
	TelegramID int64  `json:"telegramId"`
	Username   string `json:"username"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`

	Balance        float64 `json:"balance"`
	TotalEarned    float64 `json:"totalEarned"`
	TotalWithdrawn float64 `json:"totalWithdrawn"`

	AdsWatchedToday int                       `json:"adsWatchedToday"`
	TasksCompleted  map[string]TaskCompletion `json:"tasksCompleted"`

	JoinDate   time.Time `json:"joinDate"`
	ReferredBy *string   `json:"referredBy"`
}
