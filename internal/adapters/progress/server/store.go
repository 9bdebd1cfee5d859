// Package server hosts the progress dashboard: a tiny JSON API mirroring
// per-account transfer counts plus an HTML page that polls it.
package server

import (
	"context"
	"sync"

	"github.com/bnema/pioneer-tx-cli/internal/domain"
	"github.com/bnema/pioneer-tx-cli/internal/ports"
)

// MemoryStore keeps the mirror in process memory. It is lost on restart.
type MemoryStore struct {
	mu       sync.RWMutex
	accounts []string
	counts   map[string]int
}

var _ ports.ProgressStore = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{counts: map[string]int{}}
}

func (s *MemoryStore) SetAccounts(_ context.Context, accounts []string) error {
	snapshot := domain.NewProgressSnapshot(accounts)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts = snapshot.Accounts
	s.counts = snapshot.Counts
	return nil
}

// SetCount overwrites the count of account, adding it to the counts when the
// account list does not know it.
func (s *MemoryStore) SetCount(_ context.Context, account string, count int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts[account] = count
	return nil
}

func (s *MemoryStore) Snapshot(context.Context) (domain.ProgressSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int, len(s.counts))
	for account, count := range s.counts {
		counts[account] = count
	}

	return domain.ProgressSnapshot{Accounts: append([]string{}, s.accounts...), Counts: counts}, nil
}
