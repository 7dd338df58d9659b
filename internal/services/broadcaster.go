package services

import "referral-miniapp-backend/internal/models"

// Broadcaster pushes registry changes to live observers.
type Broadcaster interface {
	BroadcastConnectionStats(stats models.ConnectionStats)
}
