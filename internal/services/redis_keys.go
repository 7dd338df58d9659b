package services

import "time"

const (
	KeyUser           = "user:%s"
	KeyReferralStats  = "referral:%s:stats"
	KeyReferredUsers  = "referral:%s:referred"
	KeyReferredUserAt = "referral:%s:referred:%s"

	DefaultConnectionCapacity = 1000
	DefaultConnectionWindow   = 5 * time.Minute

	DefaultProbeTimeout = 15 * time.Second
)
