package ports

import (
	"context"

	"github.com/bnema/pioneer-tx-cli/internal/domain"
)

// ProgressStore is the dashboard mirror of per-account committed counts.
type ProgressStore interface {
	SetAccounts(ctx context.Context, accounts []string) error
	SetCount(ctx context.Context, account string, count int) error
	Snapshot(ctx context.Context) (domain.ProgressSnapshot, error)
}
