package stats

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const revenueField = "revenue_cents"

// RedisStore keeps cumulative counters in hashes under prefix:total and
// prefix:type:<spot type>, plus per-minute buckets that expire after ttl.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

type RedisOption func(*RedisStore)

func WithPrefix(prefix string) RedisOption {
	return func(s *RedisStore) {
		s.prefix = strings.Trim(prefix, ":")
	}
}

func WithTTL(d time.Duration) RedisOption {
	return func(s *RedisStore) { s.ttl = d }
}

func NewRedisStore(rdb *redis.Client, opts ...RedisOption) *RedisStore {
	s := &RedisStore{
		rdb:    rdb,
		prefix: "parking:stats",
		ttl:    24 * time.Hour,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewRedisStoreFromURL parses a redis:// URL and checks the connection.
func NewRedisStoreFromURL(ctx context.Context, url string, opts ...RedisOption) (*RedisStore, error) {
	redisOpts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	rdb := redis.NewClient(redisOpts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return NewRedisStore(rdb, opts...), nil
}

func (s *RedisStore) totalKey() string {
	return s.prefix + ":total"
}

func (s *RedisStore) typesKey() string {
	return s.prefix + ":types"
}

func (s *RedisStore) typeKey(spotType string) string {
	return s.prefix + ":type:" + spotType
}

func (s *RedisStore) minuteKey(at time.Time) string {
	return fmt.Sprintf("%s:minute:%s", s.prefix, at.UTC().Format("200601021504"))
}

func (s *RedisStore) Record(ctx context.Context, ev Event) error {
	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}
	field := string(ev.Outcome)

	pipe := s.rdb.Pipeline()
	pipe.HIncrBy(ctx, s.totalKey(), field, 1)
	if cents := toCents(ev.Amount); cents != 0 {
		pipe.HIncrBy(ctx, s.totalKey(), revenueField, cents)
	}

	bucket := s.minuteKey(at)
	pipe.HIncrBy(ctx, bucket, field, 1)
	if s.ttl > 0 {
		pipe.Expire(ctx, bucket, s.ttl)
	}

	if ev.SpotType != "" {
		pipe.SAdd(ctx, s.typesKey(), ev.SpotType)
		pipe.HIncrBy(ctx, s.typeKey(ev.SpotType), field, 1)
	}

	_, err := pipe.Exec(ctx)
	return err
}

func (s *RedisStore) Snapshot(ctx context.Context) (Summary, error) {
	out := newSummary()

	totals, err := s.rdb.HGetAll(ctx, s.totalKey()).Result()
	if err != nil {
		return out, err
	}
	for field, raw := range totals {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return out, fmt.Errorf("field %s: %w", field, err)
		}
		if field == revenueField {
			out.Revenue = fromCents(v)
			continue
		}
		out.Totals[Outcome(field)] = v
	}

	types, err := s.rdb.SMembers(ctx, s.typesKey()).Result()
	if err != nil {
		return out, err
	}
	for _, spotType := range types {
		counters, err := s.rdb.HGetAll(ctx, s.typeKey(spotType)).Result()
		if err != nil {
			return out, err
		}
		byOutcome := make(map[Outcome]int64, len(counters))
		for field, raw := range counters {
			v, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return out, fmt.Errorf("type %s field %s: %w", spotType, field, err)
			}
			byOutcome[Outcome(field)] = v
		}
		out.BySpotType[spotType] = byOutcome
	}

	return out, nil
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
