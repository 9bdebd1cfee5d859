package toml

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/bnema/pioneer-tx-cli/internal/domain"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepository(t *testing.T, path string) *Repository {
	t.Helper()

	config := viper.New()
	config.Set(AccountsPathKey, path)

	repo, err := NewRepository(config)
	require.NoError(t, err)
	return repo
}

func TestRepositoryRoundTrip(t *testing.T) {
	t.Parallel()

	repo := newTestRepository(t, filepath.Join(t.TempDir(), "accounts.toml"))

	first := domain.Account{ID: "1", Provider: domain.ProviderTwitter, Identifier: "alice", SecretRef: "ptx/accounts/1/password"}
	second := domain.Account{ID: "2", Provider: domain.ProviderDiscord, Identifier: "bob@example.com", SecretRef: "ptx/accounts/2/password"}

	require.NoError(t, repo.Save(context.Background(), first))
	require.NoError(t, repo.Save(context.Background(), second))

	got, err := repo.GetByID(context.Background(), first.ID)
	require.NoError(t, err)
	assert.Equal(t, first, got)

	accounts, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.Account{first, second}, accounts)
}

func TestRepositorySaveReplacesExistingEntry(t *testing.T) {
	t.Parallel()

	repo := newTestRepository(t, filepath.Join(t.TempDir(), "accounts.toml"))
	require.NoError(t, repo.Save(context.Background(), domain.Account{ID: "1", Provider: domain.ProviderTwitter, Identifier: "alice"}))
	require.NoError(t, repo.Save(context.Background(), domain.Account{ID: "1", Provider: domain.ProviderDiscord, Identifier: "alice#0001"}))

	accounts, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, domain.ProviderDiscord, accounts[0].Provider)
}

func TestRepositoryDelete(t *testing.T) {
	t.Parallel()

	repo := newTestRepository(t, filepath.Join(t.TempDir(), "accounts.toml"))
	for _, id := range []domain.AccountID{"1", "2", "3"} {
		require.NoError(t, repo.Save(context.Background(), domain.Account{ID: id, Provider: domain.ProviderTwitter, Identifier: "user-" + string(id)}))
	}

	require.NoError(t, repo.Delete(context.Background(), "2"))

	accounts, err := repo.List(context.Background())
	require.NoError(t, err)
	ids := make([]domain.AccountID, 0, len(accounts))
	for _, account := range accounts {
		ids = append(ids, account.ID)
	}
	assert.Equal(t, []domain.AccountID{"1", "3"}, ids)

	err = repo.Delete(context.Background(), "2")
	require.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestRepositoryReadsHandWrittenFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "accounts.toml")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join([]string{
		"version = 1",
		"",
		"[[accounts]]",
		"id = \"4\"",
		"provider = \"discord\"",
		"identifier = \"carol@example.com\"",
		"secret_ref = \"ptx/accounts/4/password\"",
		"",
	}, "\n")), 0o600))

	account, err := newTestRepository(t, path).GetByID(context.Background(), "4")
	require.NoError(t, err)
	assert.Equal(t, domain.Account{ID: "4", Provider: domain.ProviderDiscord, Identifier: "carol@example.com", SecretRef: "ptx/accounts/4/password"}, account)
}

func TestRepositorySaveCreatesDefaultPathAndEnforcesPermissions(t *testing.T) {
	homeDir := t.TempDir()
	t.Setenv("HOME", homeDir)

	repo, err := NewRepository(viper.New())
	require.NoError(t, err)

	require.NoError(t, repo.Save(context.Background(), domain.Account{ID: "1", Provider: domain.ProviderTwitter, Identifier: "alice"}))

	accountsPath := filepath.Join(homeDir, ".config", "ptx", "accounts.toml")
	assert.Equal(t, accountsPath, repo.Path())
	info, err := os.Stat(accountsPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestRepositoryMissingFileBehaviors(t *testing.T) {
	t.Parallel()

	repo := newTestRepository(t, filepath.Join(t.TempDir(), "missing", "accounts.toml"))

	accounts, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, accounts)

	_, err = repo.GetByID(context.Background(), "1")
	require.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestRepositoryListMalformedTOMLReturnsError(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "accounts.toml")
	require.NoError(t, os.WriteFile(path, []byte("accounts = ["), 0o600))

	_, err := newTestRepository(t, path).List(context.Background())
	assert.ErrorContains(t, err, "decode accounts file")
}

func TestRepositorySaveCanceledContextReturnsContextError(t *testing.T) {
	t.Parallel()

	repo := newTestRepository(t, filepath.Join(t.TempDir(), "accounts.toml"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := repo.Save(ctx, domain.Account{ID: "1", Provider: domain.ProviderTwitter, Identifier: "alice"})
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestRepositoryConcurrentSavesAcrossInstancesPreserveAllAccounts(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "accounts.toml")
	repoA := newTestRepository(t, path)
	repoB := newTestRepository(t, path)

	const perRepoWrites = 50
	start := make(chan struct{})
	errCh := make(chan error, perRepoWrites*2)
	var wg sync.WaitGroup

	write := func(repo *Repository, prefix string) {
		defer wg.Done()
		<-start
		for i := 0; i < perRepoWrites; i++ {
			id := domain.AccountID(prefix + strconv.Itoa(i))
			errCh <- repo.Save(context.Background(), domain.Account{ID: id, Provider: domain.ProviderTwitter, Identifier: string(id)})
		}
	}

	wg.Add(2)
	go write(repoA, "a-")
	go write(repoB, "b-")
	close(start)
	wg.Wait()
	close(errCh)

	for err := range errCh {
		require.NoError(t, err)
	}

	accounts, err := repoA.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, accounts, perRepoWrites*2)
}

func TestRepositorySaveSerializedTOMLIncludesVersion(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "accounts.toml")
	require.NoError(t, newTestRepository(t, path).Save(context.Background(), domain.Account{ID: "1", Provider: domain.ProviderTwitter, Identifier: "alice"}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "version = 1")
	assert.Contains(t, string(data), "alice")
}

func TestRepositoryFutureSchemaVersionReturnsError(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "accounts.toml")
	require.NoError(t, os.WriteFile(path, []byte("version = 999\n\naccounts = []\n"), 0o600))

	_, err := newTestRepository(t, path).List(context.Background())
	assert.ErrorContains(t, err, "unsupported accounts schema version")
}
