package ports

import (
	"context"

	"github.com/bnema/pioneer-tx-cli/internal/domain"
)

// AccountRepository is the credential registry. List preserves insertion order.
type AccountRepository interface {
	GetByID(ctx context.Context, id domain.AccountID) (domain.Account, error)
	List(ctx context.Context) ([]domain.Account, error)
	Save(ctx context.Context, account domain.Account) error
	Delete(ctx context.Context, id domain.AccountID) error
}
