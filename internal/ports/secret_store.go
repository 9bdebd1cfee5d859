package ports

import "context"

// SecretStore holds provider passwords keyed by an account's SecretRef.
type SecretStore interface {
	Get(ctx context.Context, key string) (string, error)
	Put(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, key string) error
}
