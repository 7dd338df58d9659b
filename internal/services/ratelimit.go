package services

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const KeyRateLimit = "ratelimit:%s:%s"

// KEYS: counter. ARGV: window in milliseconds. A counter without a TTL gets
// one, so the window always closes.
var rateLimitScript = redis.NewScript(`
	local count = redis.call("INCR", KEYS[1])
	if redis.call("PTTL", KEYS[1]) < 0 then
		redis.call("PEXPIRE", KEYS[1], ARGV[1])
	end
	return count
`)

// CheckRateLimit counts a hit for subject/action in a fixed window and
// reports whether it is still within limit.
func (s *RedisService) CheckRateLimit(ctx context.Context, subject, action string, limit int, window time.Duration) (bool, error) {
	key := fmt.Sprintf(KeyRateLimit, subject, action)

	count, err := rateLimitScript.Run(ctx, s.client, []string{key}, window.Milliseconds()).Int64()
	if err != nil {
		return false, fmt.Errorf("failed to check rate limit: %w", err)
	}

	return count <= int64(limit), nil
}
