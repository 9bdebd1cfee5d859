package toml

import "fmt"

const registryVersion = 1

type registryFile struct {
	Version  int            `toml:"version"`
	Accounts []accountEntry `toml:"accounts"`
}

func (f *registryFile) applyDefaults() {
	if f.Version == 0 {
		f.Version = registryVersion
	}
}

func (f registryFile) checkVersion() error {
	if f.Version > registryVersion {
		return fmt.Errorf("unsupported accounts schema version %d (current %d)", f.Version, registryVersion)
	}

	return nil
}

func (f registryFile) indexOf(id string) int {
	for i, entry := range f.Accounts {
		if entry.ID == id {
			return i
		}
	}
	return -1
}

type accountEntry struct {
	ID         string `toml:"id"`
	Provider   string `toml:"provider"`
	Identifier string `toml:"identifier"`
	SecretRef  string `toml:"secret_ref"`
}
