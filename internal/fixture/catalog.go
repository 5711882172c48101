package fixture

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
)

// library holds the fixture types compiled into the binary.
//
//go:embed library/*.json
var library embed.FS

// Catalog is the set of known fixture types, matched by case-insensitive name.
type Catalog struct {
	configs []*Config
}

// NewCatalog builds a catalog from already-decoded configs.
func NewCatalog(configs ...*Config) *Catalog {
	return &Catalog{configs: configs}
}

// LoadLibrary decodes the embedded fixture library.
func LoadLibrary() (*Catalog, error) {
	return LoadFS(library, "library")
}

// LoadFS decodes every .json file in dir, in name order.
func LoadFS(fsys fs.FS, dir string) (*Catalog, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list fixture library: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	c := &Catalog{}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		b, err := fs.ReadFile(fsys, path.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read fixture %s: %w", e.Name(), err)
		}
		var cfg Config
		if err := json.Unmarshal(b, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse fixture %s: %w", e.Name(), err)
		}
		if cfg.Name == "" {
			return nil, fmt.Errorf("fixture %s has no name", e.Name())
		}
		if _, dup := c.Find(cfg.Name); dup {
			return nil, fmt.Errorf("fixture %s: duplicate name %q", e.Name(), cfg.Name)
		}
		c.configs = append(c.configs, &cfg)
	}
	return c, nil
}

// Find returns the config whose name matches, ignoring case.
func (c *Catalog) Find(name string) (*Config, bool) {
	for _, cfg := range c.configs {
		if strings.EqualFold(cfg.Name, name) {
			return cfg, true
		}
	}
	return nil, false
}

// Names lists the catalog's fixture names.
func (c *Catalog) Names() []string {
	out := make([]string, len(c.configs))
	for i, cfg := range c.configs {
		out[i] = cfg.Name
	}
	return out
}
