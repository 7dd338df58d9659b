package models

import "time"

type ReferralStats struct {
	ReferralCode     string  `json:"referralCode" redis:"referralCode"`
	ReferredCount    int64   `json:"referredCount" redis:"referredCount"`
	ReferralEarnings float64 `json:"referralEarnings" redis:"referralEarnings"`
}

// ReferredUser is the edge between a referrer and the user who joined via
// their link. BonusGiven is stored but nothing sets it yet.
type ReferredUser struct {
	UserID     string    `json:"userId,omitempty"`
	JoinedAt   time.Time `json:"joinedAt"`
	BonusGiven bool      `json:"bonusGiven"`
}
