package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"referral-miniapp-backend/internal/metrics"
	"referral-miniapp-backend/internal/models"

	"github.com/redis/go-redis/v9"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrInvalidAmount = errors.New("amount must be a positive number")
)

// Ledger persists user profiles and referral statistics.
type Ledger struct {
	redis *RedisService
}

func NewLedger(redisService *RedisService) *Ledger {
	return &Ledger{redis: redisService}
}

// GetOrCreateUser stores a fresh record for the profile unless one already
// exists. The existence check and the write are a single SETNX, so two
// concurrent first contacts create the record exactly once.
func (l *Ledger) GetOrCreateUser(ctx context.Context, profile models.TelegramProfile, referrerID string) (*models.User, bool, error) {
	userID := models.FormatUserID(profile.ID)
	user := models.NewUser(profile, referrerID, time.Now())

	data, err := json.Marshal(user)
	if err != nil {
		return nil, false, fmt.Errorf("failed to marshal user: %w", err)
	}

	created, err := l.redis.client.SetNX(ctx, fmt.Sprintf(KeyUser, userID), data, 0).Result()
	if err != nil {
		return nil, false, fmt.Errorf("failed to create user %s: %w", userID, err)
	}
	if created {
		metrics.UsersCreated.Inc()
		return user, true, nil
	}

	existing, err := l.GetUser(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func (l *Ledger) GetUser(ctx context.Context, userID string) (*models.User, error) {
	data, err := l.redis.client.Get(ctx, fmt.Sprintf(KeyUser, userID)).Result()
	if err == redis.Nil {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %s: %w", userID, err)
	}

	var user models.User
	if err := json.Unmarshal([]byte(data), &user); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user %s: %w", userID, err)
	}
	return &user, nil
}

// KEYS: edge, referred set, stats hash. ARGV: edge json, referred id,
// join time score, referrer id. Returns 0 when the edge already existed,
// otherwise the referrer's new referred count.
var recordReferralScript = redis.NewScript(`
	if redis.call("SETNX", KEYS[1], ARGV[1]) == 0 then
		return 0
	end

	redis.call("ZADD", KEYS[2], ARGV[3], ARGV[2])
	redis.call("HSETNX", KEYS[3], "referralCode", ARGV[4])
	redis.call("HSETNX", KEYS[3], "referralEarnings", "0")

	return redis.call("HINCRBY", KEYS[3], "referredCount", 1)
`)

// RecordReferral links a newly created user to the referrer and bumps the
// referrer's count by one. It reports whether an edge was written.
func (l *Ledger) RecordReferral(ctx context.Context, referrerID, referredID string, referredIsNew bool) (bool, error) {
	if !referredIsNew || referrerID == "" || referrerID == referredID {
		return false, nil
	}

	joinedAt := time.Now().UTC()
	edge, err := json.Marshal(models.ReferredUser{JoinedAt: joinedAt, BonusGiven: false})
	if err != nil {
		return false, fmt.Errorf("failed to marshal referral: %w", err)
	}

	keys := []string{
		fmt.Sprintf(KeyReferredUserAt, referrerID, referredID),
		fmt.Sprintf(KeyReferredUsers, referrerID),
		fmt.Sprintf(KeyReferralStats, referrerID),
	}

	count, err := recordReferralScript.Run(ctx, l.redis.client, keys,
		string(edge), referredID, joinedAt.Unix(), referrerID).Int64()
	if err != nil {
		return false, fmt.Errorf("failed to record referral %s -> %s: %w", referrerID, referredID, err)
	}
	if count == 0 {
		return false, nil
	}

	metrics.ReferralsRecorded.Inc()
	return true, nil
}

// CreditReferralEarnings adds amount to the user's referral earnings and
// returns the new total.
func (l *Ledger) CreditReferralEarnings(ctx context.Context, userID string, amount float64) (float64, error) {
	if _, err := models.ParseUserID(userID); err != nil {
		return 0, err
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return 0, ErrInvalidAmount
	}

	key := fmt.Sprintf(KeyReferralStats, userID)

	pipe := l.redis.client.TxPipeline()
	pipe.HSetNX(ctx, key, "referralCode", userID)
	pipe.HSetNX(ctx, key, "referredCount", 0)
	total := pipe.HIncrByFloat(ctx, key, "referralEarnings", amount)

	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("failed to credit referral earnings for %s: %w", userID, err)
	}

	return total.Val(), nil
}

func (l *Ledger) GetReferralStats(ctx context.Context, userID string) (*models.ReferralStats, error) {
	res := l.redis.client.HGetAll(ctx, fmt.Sprintf(KeyReferralStats, userID))
	if err := res.Err(); err != nil {
		return nil, fmt.Errorf("failed to get referral stats for %s: %w", userID, err)
	}

	stats := models.ReferralStats{ReferralCode: userID}
	if len(res.Val()) == 0 {
		return &stats, nil
	}
	if err := res.Scan(&stats); err != nil {
		return nil, fmt.Errorf("failed to scan referral stats for %s: %w", userID, err)
	}
	return &stats, nil
}

// ListReferredUsers returns the most recent referrals first.
func (l *Ledger) ListReferredUsers(ctx context.Context, referrerID string, limit int64) ([]models.ReferredUser, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	ids, err := l.redis.client.ZRevRange(ctx, fmt.Sprintf(KeyReferredUsers, referrerID), 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list referred users for %s: %w", referrerID, err)
	}
	if len(ids) == 0 {
		return []models.ReferredUser{}, nil
	}

	pipe := l.redis.client.Pipeline()
	cmds := make([]*redis.StringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.Get(ctx, fmt.Sprintf(KeyReferredUserAt, referrerID, id))
	}
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, fmt.Errorf("failed to load referred users for %s: %w", referrerID, err)
	}

	referred := make([]models.ReferredUser, 0, len(ids))
	for i, cmd := range cmds {
		data, err := cmd.Result()
		if err != nil {
			continue
		}

		var edge models.ReferredUser
		if err := json.Unmarshal([]byte(data), &edge); err != nil {
			continue
		}
		edge.UserID = ids[i]
		referred = append(referred, edge)
	}

	return referred, nil
}

// ParseAmount parses an administrative credit amount.
func ParseAmount(raw string) (float64, error) {
	amount, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return 0, ErrInvalidAmount
	}
	return amount, nil
}
