package store

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"ticket-resale/internal/status"
	"ticket-resale/models"

	"github.com/redis/go-redis/v9"
)

// ChallengeStore keeps the single live OTP record per phone number in
// Redis. Writing overwrites any prior record, which is how a newly
// requested code silently invalidates the previous one. Records carry
// their absolute expiry and additionally age out via key TTL.
type ChallengeStore struct {
	redis *redis.Client
}

func NewChallengeStore(redisClient *redis.Client) *ChallengeStore {
	return &ChallengeStore{redis: redisClient}
}

func challengeKey(phone string) string {
	return fmt.Sprintf("otp:%s", phone)
}

func (s *ChallengeStore) Put(ctx context.Context, ch models.Challenge) error {
	key := challengeKey(ch.PhoneNumber)

	if err := s.redis.HSet(ctx, key, map[string]any{
		"code_hash":  string(ch.CodeHash),
		"expires_at": ch.ExpiresAt.Unix(),
	}).Err(); err != nil {
		return fmt.Errorf("store challenge: %w", err)
	}

	if ttl := time.Until(ch.ExpiresAt); ttl > 0 {
		if err := s.redis.Expire(ctx, key, ttl).Err(); err != nil {
			return fmt.Errorf("expire challenge: %w", err)
		}
	}
	return nil
}

func (s *ChallengeStore) Get(ctx context.Context, phone string) (*models.Challenge, error) {
	fields, err := s.redis.HGetAll(ctx, challengeKey(phone)).Result()
	if err != nil {
		return nil, fmt.Errorf("read challenge: %w", err)
	}
	if len(fields) == 0 {
		return nil, status.ErrChallengeInvalid
	}

	expiresAt, err := strconv.ParseInt(fields["expires_at"], 10, 64)
	if err != nil {
		return nil, status.ErrChallengeInvalid
	}

	return &models.Challenge{
		PhoneNumber: phone,
		CodeHash:    []byte(fields["code_hash"]),
		ExpiresAt:   time.Unix(expiresAt, 0),
	}, nil
}
