package domain

import (
	"fmt"
	"log/slog"
	"strings"
)

type AccountID string

type ProviderKind string

const (
	ProviderTwitter ProviderKind = "twitter"
	ProviderDiscord ProviderKind = "discord"
)

func ParseProviderKind(raw string) (ProviderKind, error) {
	kind := ProviderKind(strings.ToLower(strings.TrimSpace(raw)))
	switch kind {
	case ProviderTwitter, ProviderDiscord:
		return kind, nil
	default:
		return "", fmt.Errorf("%w: unsupported provider %q", ErrInvalidAccount, raw)
	}
}

type Account struct {
	ID         AccountID
	Provider   ProviderKind
	Identifier string
	// SecretRef points to the secret-store entry holding the provider password.
	SecretRef string
}

func (a Account) Validate() error {
	if strings.TrimSpace(string(a.ID)) == "" {
		return fmt.Errorf("%w: id is empty", ErrInvalidAccount)
	}
	if _, err := ParseProviderKind(string(a.Provider)); err != nil {
		return err
	}
	if strings.TrimSpace(a.Identifier) == "" {
		return fmt.Errorf("%w: identifier is empty", ErrInvalidAccount)
	}

	return nil
}

// ProgressKey is the key the account's count is mirrored under in the progress store.
func (a Account) ProgressKey() string {
	return a.Identifier
}

func (a Account) Label() string {
	if a.Identifier == "" {
		return string(a.ID)
	}

	return fmt.Sprintf("%s (%s)", a.Identifier, a.ID)
}

// Credential pairs an account with its resolved secret. It never renders the
// secret through fmt or slog.
type Credential struct {
	Account Account
	Secret  string
}

func (c Credential) String() string {
	return fmt.Sprintf("%s:%s", c.Account.Provider, c.Account.Identifier)
}

func (c Credential) GoString() string {
	return fmt.Sprintf("domain.Credential{Account:%q, Secret:\"[redacted]\"}", c.Account.ID)
}

func (c Credential) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("id", string(c.Account.ID)),
		slog.String("provider", string(c.Account.Provider)),
		slog.String("identifier", c.Account.Identifier),
		slog.String("secret", "[redacted]"),
	)
}
