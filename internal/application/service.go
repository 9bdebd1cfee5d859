package application

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/bnema/pioneer-tx-cli/internal/domain"
	"github.com/bnema/pioneer-tx-cli/internal/ports"
)

const secretRefPrefix = "ptx/accounts"

// Service manages the credential registry and the secrets it references.
type Service struct {
	repo  ports.AccountRepository
	store ports.SecretStore
}

func NewService(repo ports.AccountRepository, store ports.SecretStore) *Service {
	return &Service{repo: repo, store: store}
}

type AddAccountInput struct {
	// ID may be empty or "0" to take the next free numeric id.
	ID         string
	Provider   domain.ProviderKind
	Identifier string
	Secret     string
}

func SecretRefFor(id domain.AccountID) string {
	return fmt.Sprintf("%s/%s/password", secretRefPrefix, id)
}

// AddAccount stores the secret first and rolls it back when the registry
// cannot be saved. Re-adding an existing id replaces its secret. An
// identifier already held by another account is rejected whatever its
// provider, since progress is keyed by identifier.
func (s *Service) AddAccount(ctx context.Context, input AddAccountInput) (domain.Account, error) {
	id, err := s.resolveAccountID(ctx, input.ID)
	if err != nil {
		return domain.Account{}, err
	}
	if strings.TrimSpace(input.Secret) == "" {
		return domain.Account{}, fmt.Errorf("%w: secret is empty", domain.ErrInvalidAccount)
	}

	account := domain.Account{
		ID:         id,
		Provider:   input.Provider,
		Identifier: strings.TrimSpace(input.Identifier),
		SecretRef:  SecretRefFor(id),
	}
	if err := account.Validate(); err != nil {
		return domain.Account{}, err
	}
	if err := s.ensureUniqueIdentifier(ctx, account); err != nil {
		return domain.Account{}, err
	}

	previous, err := s.repo.GetByID(ctx, id)
	switch {
	case errors.Is(err, domain.ErrAccountNotFound):
	case err != nil:
		return domain.Account{}, fmt.Errorf("get account by id: %w", err)
	}

	if err := s.store.Put(ctx, account.SecretRef, input.Secret); err != nil {
		return domain.Account{}, fmt.Errorf("store account secret: %w", err)
	}

	if err := s.repo.Save(ctx, account); err != nil {
		if rollbackErr := s.store.Delete(ctx, account.SecretRef); rollbackErr != nil {
			return domain.Account{}, fmt.Errorf("save account and rollback stored secret: %w", errors.Join(err, rollbackErr))
		}
		return domain.Account{}, fmt.Errorf("save account: %w", err)
	}

	if previous.SecretRef != "" && previous.SecretRef != account.SecretRef {
		if err := s.store.Delete(ctx, previous.SecretRef); err != nil {
			return account, fmt.Errorf("delete previous account secret: %w", err)
		}
	}

	return account, nil
}

// SetSecret rotates the password of an existing account.
func (s *Service) SetSecret(ctx context.Context, id domain.AccountID, secret string) error {
	account, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get account by id: %w", err)
	}
	if strings.TrimSpace(secret) == "" {
		return fmt.Errorf("%w: secret is empty", domain.ErrInvalidAccount)
	}

	if account.SecretRef == "" {
		account.SecretRef = SecretRefFor(id)
		if err := s.store.Put(ctx, account.SecretRef, secret); err != nil {
			return fmt.Errorf("store account secret: %w", err)
		}
		if err := s.repo.Save(ctx, account); err != nil {
			if rollbackErr := s.store.Delete(ctx, account.SecretRef); rollbackErr != nil {
				return fmt.Errorf("save account and rollback stored secret: %w", errors.Join(err, rollbackErr))
			}
			return fmt.Errorf("save account: %w", err)
		}
		return nil
	}

	if err := s.store.Put(ctx, account.SecretRef, secret); err != nil {
		return fmt.Errorf("store account secret: %w", err)
	}

	return nil
}

// RemoveAccount drops the registry entry before its secret, restoring the
// entry if the secret cannot be deleted.
func (s *Service) RemoveAccount(ctx context.Context, id domain.AccountID) error {
	account, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get account by id: %w", err)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete account: %w", err)
	}

	if account.SecretRef == "" {
		return nil
	}

	if err := s.store.Delete(ctx, account.SecretRef); err != nil {
		if restoreErr := s.repo.Save(ctx, account); restoreErr != nil {
			return fmt.Errorf("delete account secret and restore account: %w", errors.Join(err, restoreErr))
		}
		return fmt.Errorf("delete account secret: %w", err)
	}

	return nil
}

func (s *Service) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	accounts, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return accounts, nil
}

// Credentials resolves the secrets of the selected accounts, or of every
// registered account when ids is empty, in registry order.
func (s *Service) Credentials(ctx context.Context, ids ...domain.AccountID) ([]domain.Credential, error) {
	var accounts []domain.Account
	if len(ids) == 0 {
		all, err := s.ListAccounts(ctx)
		if err != nil {
			return nil, err
		}
		accounts = all
	} else {
		for _, id := range ids {
			account, err := s.repo.GetByID(ctx, id)
			if err != nil {
				return nil, fmt.Errorf("get account %s: %w", id, err)
			}
			accounts = append(accounts, account)
		}
	}

	credentials := make([]domain.Credential, 0, len(accounts))
	for _, account := range accounts {
		if account.SecretRef == "" {
			return nil, fmt.Errorf("account %s: %w", account.ID, domain.ErrSecretNotFound)
		}

		secret, err := s.store.Get(ctx, account.SecretRef)
		if err != nil {
			return nil, fmt.Errorf("load secret for account %s: %w", account.ID, err)
		}
		credentials = append(credentials, domain.Credential{Account: account, Secret: secret})
	}

	return credentials, nil
}

func (s *Service) ensureUniqueIdentifier(ctx context.Context, account domain.Account) error {
	accounts, err := s.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("list accounts: %w", err)
	}

	for _, other := range accounts {
		if other.ID == account.ID {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(other.Identifier), account.Identifier) {
			return fmt.Errorf("%w: identifier %q is already registered as account %s", domain.ErrInvalidAccount, account.Identifier, other.ID)
		}
	}
	return nil
}

func (s *Service) resolveAccountID(ctx context.Context, raw string) (domain.AccountID, error) {
	requested := strings.TrimSpace(raw)
	if requested == "" || requested == "0" {
		return s.nextAvailableAccountID(ctx)
	}

	if n, err := strconv.Atoi(requested); err == nil && n <= 0 {
		return "", fmt.Errorf("account must be a positive number or empty/0 for auto assignment")
	}

	return domain.AccountID(requested), nil
}

func (s *Service) nextAvailableAccountID(ctx context.Context) (domain.AccountID, error) {
	accounts, err := s.repo.List(ctx)
	if err != nil {
		return "", fmt.Errorf("list accounts for auto assignment: %w", err)
	}

	used := make(map[int]struct{}, len(accounts))
	for _, account := range accounts {
		n, err := strconv.Atoi(string(account.ID))
		if err != nil || n <= 0 {
			continue
		}
		used[n] = struct{}{}
	}

	for i := 1; ; i++ {
		if _, ok := used[i]; !ok {
			return domain.AccountID(strconv.Itoa(i)), nil
		}
	}
}
