package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/trash2cash/platform/internal/config"
)

const (
	keyDisposeBin  = "dispose:bin:%s"
	keyDisposeUser = "dispose:user:%s"
	keyBinLock     = "dispose:lock:bin:%s"
)

// DisposeLimiter throttles disposal triggers per bin and per user, and
// serializes each bin's hardware choreography with a redis lock.
//
// A nil limiter is valid and means rate limiting is disabled.
type DisposeLimiter struct {
	enabled bool

	bucket *TokenBucket
	locker *Locker

	binRate    float64
	binBurst   int
	userRate   float64
	userBurst  int
	binLockTTL time.Duration
}

func NewDisposeLimiter(cfg config.Config) (*DisposeLimiter, error) {
	limitCfg := cfg.RateLimit
	if !limitCfg.Enabled {
		return nil, nil
	}

	addr := strings.TrimSpace(limitCfg.RedisAddr)
	if addr == "" {
		return nil, errors.New("rate limit redis addr is required")
	}
	if limitCfg.DisposeRate <= 0 || limitCfg.DisposeBurst <= 0 {
		return nil, errors.New("dispose rate limit must be positive")
	}
	if limitCfg.UserRate <= 0 || limitCfg.UserBurst <= 0 {
		return nil, errors.New("user rate limit must be positive")
	}
	if limitCfg.BinLockTTLSeconds <= 0 {
		return nil, errors.New("bin lock ttl must be positive")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(limitCfg.RedisPassword),
		DB:       limitCfg.RedisDB,
	})

	return &DisposeLimiter{
		enabled:    true,
		bucket:     NewTokenBucket(client),
		locker:     NewLocker(client),
		binRate:    limitCfg.DisposeRate,
		binBurst:   limitCfg.DisposeBurst,
		userRate:   limitCfg.UserRate,
		userBurst:  limitCfg.UserBurst,
		binLockTTL: time.Duration(limitCfg.BinLockTTLSeconds) * time.Second,
	}, nil
}

func (l *DisposeLimiter) Enabled() bool {
	return l != nil && l.enabled
}

// AllowBin limits how often a single bin may start a disposal cycle.
func (l *DisposeLimiter) AllowBin(ctx context.Context, binID string) (bool, error) {
	if !l.Enabled() {
		return true, nil
	}
	return l.bucket.Allow(ctx, fmt.Sprintf(keyDisposeBin, strings.TrimSpace(binID)), l.binRate, l.binBurst)
}

// AllowUser limits how often a single user may trigger disposals.
func (l *DisposeLimiter) AllowUser(ctx context.Context, userID string) (bool, error) {
	if !l.Enabled() {
		return true, nil
	}
	return l.bucket.Allow(ctx, fmt.Sprintf(keyDisposeUser, strings.TrimSpace(userID)), l.userRate, l.userBurst)
}

// TryLockBin serializes the hardware choreography for one bin across
// replicas. Returns the fencing token for ReleaseBin.
func (l *DisposeLimiter) TryLockBin(ctx context.Context, binID string) (string, bool, error) {
	if !l.Enabled() {
		return "", true, nil
	}
	key := fmt.Sprintf(keyBinLock, strings.TrimSpace(binID))
	return l.locker.TryLock(ctx, key, l.binLockTTL)
}

func (l *DisposeLimiter) ReleaseBin(ctx context.Context, binID, token string) error {
	if !l.Enabled() {
		return nil
	}
	key := fmt.Sprintf(keyBinLock, strings.TrimSpace(binID))
	return l.locker.Release(ctx, key, token)
}
