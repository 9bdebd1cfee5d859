package toml

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/bnema/pioneer-tx-cli/internal/domain"
	"github.com/bnema/pioneer-tx-cli/internal/ports"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

const (
	AccountsPathKey = "accounts.path"

	registryFileMode = 0o600
	registryDirMode  = 0o700
	registryDir      = ".config/ptx"
	registryName     = "accounts.toml"
	tempFilePattern  = ".accounts-*.toml.tmp"
)

// Repository is the credential registry: one TOML file listing accounts and
// the secret-store references of their passwords.
type Repository struct {
	path string
	mu   *sync.RWMutex
}

var (
	lockRegistryMu sync.Mutex
	pathLockMap    = map[string]*sync.RWMutex{}
)

var _ ports.AccountRepository = (*Repository)(nil)

// DefaultPath is ~/.config/ptx/accounts.toml.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}

	return filepath.Join(homeDir, registryDir, registryName), nil
}

func NewRepository(cfg *viper.Viper) (*Repository, error) {
	if cfg == nil {
		cfg = viper.New()
	}

	path := cfg.GetString(AccountsPathKey)
	if path == "" {
		defaultPath, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = defaultPath
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve accounts path: %w", err)
	}
	absPath = filepath.Clean(absPath)

	return &Repository{path: absPath, mu: lockForPath(absPath)}, nil
}

func (r *Repository) Path() string {
	return r.path
}

func (r *Repository) Save(ctx context.Context, account domain.Account) error {
	return r.update(ctx, func(file *registryFile) error {
		entry := toEntry(account)
		if i := file.indexOf(entry.ID); i >= 0 {
			file.Accounts[i] = entry
			return nil
		}
		file.Accounts = append(file.Accounts, entry)
		return nil
	})
}

func (r *Repository) Delete(ctx context.Context, id domain.AccountID) error {
	return r.update(ctx, func(file *registryFile) error {
		i := file.indexOf(string(id))
		if i < 0 {
			return domain.ErrAccountNotFound
		}
		file.Accounts = append(file.Accounts[:i], file.Accounts[i+1:]...)
		return nil
	})
}

func (r *Repository) GetByID(ctx context.Context, id domain.AccountID) (domain.Account, error) {
	file, err := r.snapshot(ctx)
	if err != nil {
		return domain.Account{}, err
	}

	if i := file.indexOf(string(id)); i >= 0 {
		return fromEntry(file.Accounts[i]), nil
	}

	return domain.Account{}, domain.ErrAccountNotFound
}

func (r *Repository) List(ctx context.Context) ([]domain.Account, error) {
	file, err := r.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	accounts := make([]domain.Account, 0, len(file.Accounts))
	for _, entry := range file.Accounts {
		accounts = append(accounts, fromEntry(entry))
	}

	return accounts, nil
}

func (r *Repository) snapshot(ctx context.Context) (registryFile, error) {
	if err := ctx.Err(); err != nil {
		return registryFile{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.read()
}

// update applies mutate under the write lock and persists the result.
func (r *Repository) update(ctx context.Context, mutate func(file *registryFile) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	file, err := r.read()
	if err != nil {
		return err
	}
	if err := mutate(&file); err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	return r.write(file)
}

func (r *Repository) read() (registryFile, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return registryFile{Version: registryVersion}, nil
		}
		return registryFile{}, fmt.Errorf("read accounts file: %w", err)
	}

	var file registryFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return registryFile{}, fmt.Errorf("decode accounts file: %w", err)
	}
	if err := file.checkVersion(); err != nil {
		return registryFile{}, err
	}
	file.applyDefaults()

	return file, nil
}

// write replaces the registry through a temp file and rename so readers
// never observe a partial file.
func (r *Repository) write(file registryFile) error {
	file.applyDefaults()

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, registryDirMode); err != nil {
		return fmt.Errorf("create accounts directory: %w", err)
	}

	data, err := toml.Marshal(file)
	if err != nil {
		return fmt.Errorf("encode accounts file: %w", err)
	}

	tempFile, err := os.CreateTemp(dir, tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp accounts file: %w", err)
	}

	tempName := tempFile.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp accounts file: %w", err)
	}
	if err := tempFile.Chmod(registryFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp accounts file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp accounts file: %w", err)
	}

	if err := os.Rename(tempName, r.path); err != nil {
		return fmt.Errorf("replace accounts file: %w", err)
	}
	committed = true

	return nil
}

func lockForPath(path string) *sync.RWMutex {
	lockRegistryMu.Lock()
	defer lockRegistryMu.Unlock()

	if mu, ok := pathLockMap[path]; ok {
		return mu
	}

	mu := &sync.RWMutex{}
	pathLockMap[path] = mu
	return mu
}

func toEntry(account domain.Account) accountEntry {
	return accountEntry{
		ID:         string(account.ID),
		Provider:   string(account.Provider),
		Identifier: account.Identifier,
		SecretRef:  account.SecretRef,
	}
}

func fromEntry(entry accountEntry) domain.Account {
	return domain.Account{
		ID:         domain.AccountID(entry.ID),
		Provider:   domain.ProviderKind(entry.Provider),
		Identifier: entry.Identifier,
		SecretRef:  entry.SecretRef,
	}
}
