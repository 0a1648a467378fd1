package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"
)

const (
	moviesKey = "active_filters:movies"
	citiesKey = "active_filters:cities"
)

// AvailabilityCounter reports how many available tickets remain for an
// exact (event, city) pair. Satisfied by store.TicketStore.
type AvailabilityCounter interface {
	CountAvailable(ctx context.Context, eventName, city string) (int64, error)
}

// FilterIndex is the derived filter-suggestion aggregate consulted by
// the browse UI. It is eventually consistent with the ticket store.
type FilterIndex interface {
	OnListed(ctx context.Context, eventName *string, city string) error
	OnAvailabilityChanged(ctx context.Context, eventName *string, city string) error
}

// FilterService keeps the active movie and city sets in Redis. Both
// sets are flat unions, not per-pair reference counts: membership means
// "at least one available ticket mentioned this value at some point",
// and pruning one exhausted (movie, city) pair removes both values even
// if another pairing still references one of them. Updates are plain
// SADD/SREM so concurrent writers commute.
type FilterService struct {
	redis   *redis.Client
	counter AvailabilityCounter
}

func NewFilterService(redisClient *redis.Client, counter AvailabilityCounter) *FilterService {
	return &FilterService{redis: redisClient, counter: counter}
}

// OnListed records a fresh available listing. Listings without a
// recognized event name only contribute their city.
func (s *FilterService) OnListed(ctx context.Context, eventName *string, city string) error {
	if eventName != nil && *eventName != "" {
		if err := s.redis.SAdd(ctx, moviesKey, *eventName).Err(); err != nil {
			return fmt.Errorf("add movie filter: %w", err)
		}
	}
	if err := s.redis.SAdd(ctx, citiesKey, city).Err(); err != nil {
		return fmt.Errorf("add city filter: %w", err)
	}
	return nil
}

// OnAvailabilityChanged re-derives the pair's membership after a sale or
// delisting: when no available ticket matches both the event and the
// city anymore, both values are removed from their sets.
func (s *FilterService) OnAvailabilityChanged(ctx context.Context, eventName *string, city string) error {
	if eventName == nil || *eventName == "" {
		return nil
	}

	remaining, err := s.counter.CountAvailable(ctx, *eventName, city)
	if err != nil {
		return fmt.Errorf("count remaining tickets: %w", err)
	}
	if remaining > 0 {
		return nil
	}

	if err := s.redis.SRem(ctx, moviesKey, *eventName).Err(); err != nil {
		return fmt.Errorf("remove movie filter: %w", err)
	}
	if err := s.redis.SRem(ctx, citiesKey, city).Err(); err != nil {
		return fmt.Errorf("remove city filter: %w", err)
	}
	return nil
}

// Snapshot returns the current filter suggestions, sorted for stable
// responses. Empty slices when nothing was ever listed.
func (s *FilterService) Snapshot(ctx context.Context) (movies, cities []string, err error) {
	movies, err = s.redis.SMembers(ctx, moviesKey).Result()
	if err != nil {
		return nil, nil, fmt.Errorf("read movie filters: %w", err)
	}
	cities, err = s.redis.SMembers(ctx, citiesKey).Result()
	if err != nil {
		return nil, nil, fmt.Errorf("read city filters: %w", err)
	}

	if movies == nil {
		movies = []string{}
	}
	if cities == nil {
		cities = []string{}
	}
	sort.Strings(movies)
	sort.Strings(cities)
	return movies, cities, nil
}
