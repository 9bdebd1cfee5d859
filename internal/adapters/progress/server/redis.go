package server

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/bnema/pioneer-tx-cli/internal/domain"
	"github.com/bnema/pioneer-tx-cli/internal/ports"
	"github.com/redis/go-redis/v9"
)

const DefaultRedisPrefix = "ptx:progress:"

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// RedisStore keeps the account list in a LIST and the counts in a HASH so
// the dashboard survives a restart of the serve process.
type RedisStore struct {
	client    *redis.Client
	usersKey  string
	countsKey string
}

var _ ports.ProgressStore = (*RedisStore)(nil)

func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	if cfg.Addr == "" {
		return nil, errors.New("redis address is required")
	}
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", cfg.Addr, err)
	}

	return &RedisStore{client: client, usersKey: prefix + "users", countsKey: prefix + "counts"}, nil
}

func (s *RedisStore) SetAccounts(ctx context.Context, accounts []string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.usersKey, s.countsKey)
		if len(accounts) == 0 {
			return nil
		}

		users := make([]any, 0, len(accounts))
		zeros := make([]any, 0, 2*len(accounts))
		for _, account := range accounts {
			users = append(users, account)
			zeros = append(zeros, account, 0)
		}
		pipe.RPush(ctx, s.usersKey, users...)
		pipe.HSet(ctx, s.countsKey, zeros...)
		return nil
	})
	if err != nil {
		return fmt.Errorf("reset progress accounts: %w", err)
	}
	return nil
}

func (s *RedisStore) SetCount(ctx context.Context, account string, count int) error {
	if err := s.client.HSet(ctx, s.countsKey, account, count).Err(); err != nil {
		return fmt.Errorf("set progress count for %s: %w", account, err)
	}
	return nil
}

func (s *RedisStore) Snapshot(ctx context.Context) (domain.ProgressSnapshot, error) {
	accounts, err := s.client.LRange(ctx, s.usersKey, 0, -1).Result()
	if err != nil {
		return domain.ProgressSnapshot{}, fmt.Errorf("read progress accounts: %w", err)
	}
	raw, err := s.client.HGetAll(ctx, s.countsKey).Result()
	if err != nil {
		return domain.ProgressSnapshot{}, fmt.Errorf("read progress counts: %w", err)
	}

	counts := make(map[string]int, len(raw))
	for account, value := range raw {
		count, err := strconv.Atoi(value)
		if err != nil {
			return domain.ProgressSnapshot{}, fmt.Errorf("progress count for %s: %w", account, err)
		}
		counts[account] = count
	}

	return domain.ProgressSnapshot{Accounts: accounts, Counts: counts}, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
