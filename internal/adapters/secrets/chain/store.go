package chain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	filestore "github.com/bnema/pioneer-tx-cli/internal/adapters/secrets/file"
	passstore "github.com/bnema/pioneer-tx-cli/internal/adapters/secrets/pass"
	"github.com/bnema/pioneer-tx-cli/internal/domain"
	"github.com/bnema/pioneer-tx-cli/internal/logger"
	"github.com/bnema/pioneer-tx-cli/internal/ports"
)

// Store tries primary first and falls back to the second backend on any
// failure other than cancellation.
type Store struct {
	primary  ports.SecretStore
	fallback ports.SecretStore
	logger   *slog.Logger
}

var _ ports.SecretStore = (*Store)(nil)

var (
	errNilPrimaryStore  = errors.New("primary secret store is nil")
	errNilFallbackStore = errors.New("fallback secret store is nil")
)

func NewStore(primary ports.SecretStore, fallback ports.SecretStore) (*Store, error) {
	if primary == nil {
		return nil, errNilPrimaryStore
	}
	if fallback == nil {
		return nil, errNilFallbackStore
	}

	return &Store{primary: primary, fallback: fallback, logger: logger.Named("secrets")}, nil
}

// NewPassFirstWithFileFallback uses pass(1) when it is installed and a
// directory of 0600 files otherwise.
func NewPassFirstWithFileFallback(fileRoot string) (*Store, error) {
	return NewStore(passstore.NewStore(), filestore.NewStore(fileRoot))
}

func (s *Store) Put(ctx context.Context, key string, value string) error {
	return s.either(ctx, "put", key, func(store ports.SecretStore) error {
		return store.Put(ctx, key, value)
	})
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.either(ctx, "get", key, func(store ports.SecretStore) error {
		v, err := store.Get(ctx, key)
		if err == nil {
			value = v
		}
		return err
	})
	return value, err
}

func (s *Store) Delete(ctx context.Context, key string) error {
	return s.either(ctx, "delete", key, func(store ports.SecretStore) error {
		return store.Delete(ctx, key)
	})
}

func (s *Store) either(ctx context.Context, op, key string, call func(store ports.SecretStore) error) error {
	primaryErr := call(s.primary)
	if primaryErr == nil {
		return nil
	}
	if ctx.Err() != nil || errors.Is(primaryErr, context.Canceled) || errors.Is(primaryErr, context.DeadlineExceeded) {
		return primaryErr
	}

	if !errors.Is(primaryErr, passstore.ErrUnavailable) && !errors.Is(primaryErr, domain.ErrSecretNotFound) {
		s.logger.Debug("primary secret backend failed, trying fallback", slog.String("op", op), slog.String("key", key), slog.String("error", primaryErr.Error()))
	}

	fallbackErr := call(s.fallback)
	if fallbackErr == nil {
		return nil
	}

	if errors.Is(primaryErr, domain.ErrSecretNotFound) && errors.Is(fallbackErr, domain.ErrSecretNotFound) {
		return fmt.Errorf("secret %q: %w", key, domain.ErrSecretNotFound)
	}

	return fmt.Errorf("primary backend %s failed: %w; fallback backend %s failed: %w", op, primaryErr, op, fallbackErr)
}
