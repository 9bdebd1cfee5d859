// Package catalog maps chain ids and aliases to the display names the wallet
// widget lists in its network picker.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/bnema/pioneer-tx-cli/internal/domain"
	"gopkg.in/yaml.v3"
)

//go:embed networks.yaml
var defaultNetworks []byte

var ErrUnknownNetwork = errors.New("unknown network")

type definitions struct {
	Networks map[string]Definition `yaml:"networks"`
}

type Definition struct {
	Name    string   `yaml:"name"`
	Aliases []string `yaml:"aliases"`
	Testnet bool     `yaml:"testnet"`
}

type Catalog struct {
	byID    map[string]Definition
	aliases map[string]string
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := parse(defaultNetworks, newCatalog())
	if err != nil {
		panic(fmt.Sprintf("built-in network catalog: %v", err))
	}
	return c
}

// Load reads path on top of the built-in catalog. Entries in the file
// replace built-in ones with the same chain id. An empty path yields the
// built-in catalog.
func Load(path string) (*Catalog, error) {
	c := Default()
	if strings.TrimSpace(path) == "" {
		return c, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read network catalog: %w", err)
	}
	return parse(content, c)
}

func newCatalog() *Catalog {
	return &Catalog{byID: map[string]Definition{}, aliases: map[string]string{}}
}

func parse(content []byte, into *Catalog) (*Catalog, error) {
	var defs definitions
	if err := yaml.Unmarshal(content, &defs); err != nil {
		return nil, fmt.Errorf("parse network catalog: %w", err)
	}

	for id, def := range defs.Networks {
		id = strings.TrimSpace(id)
		def.Name = strings.TrimSpace(def.Name)
		if id == "" || def.Name == "" {
			return nil, fmt.Errorf("parse network catalog: network %q needs an id and a name", id)
		}
		into.byID[id] = def
		into.aliases[strings.ToLower(def.Name)] = id
		for _, alias := range def.Aliases {
			into.aliases[strings.ToLower(strings.TrimSpace(alias))] = id
		}
	}

	return into, nil
}

// Resolve accepts a chain id, a display name or an alias.
func (c *Catalog) Resolve(key string) (domain.Network, error) {
	key = strings.TrimSpace(key)
	if def, ok := c.byID[key]; ok {
		return domain.Network{ID: key, Name: def.Name}, nil
	}
	if id, ok := c.aliases[strings.ToLower(key)]; ok {
		return domain.Network{ID: id, Name: c.byID[id].Name}, nil
	}
	return domain.Network{}, fmt.Errorf("%w: %q", ErrUnknownNetwork, key)
}

// Networks lists every entry ordered by chain id.
func (c *Catalog) Networks() []domain.Network {
	ids := make([]string, 0, len(c.byID))
	for id := range c.byID {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if len(ids[i]) != len(ids[j]) {
			return len(ids[i]) < len(ids[j])
		}
		return ids[i] < ids[j]
	})

	out := make([]domain.Network, 0, len(ids))
	for _, id := range ids {
		out = append(out, domain.Network{ID: id, Name: c.byID[id].Name})
	}
	return out
}
