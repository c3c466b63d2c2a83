// Package catalog holds the static plan and module catalog shipped with the binary.
package catalog

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/edvin/buildcrm/internal/model"
)

//go:embed catalog.yaml
var catalogYAML []byte

type Catalog struct {
	Plans   []model.Plan   `yaml:"plans"`
	Modules []model.Module `yaml:"modules"`
}

// Load parses the embedded catalog.
func Load() (*Catalog, error) {
	return Parse(catalogYAML)
}

// Parse decodes a catalog document and checks that every plan only
// references modules defined in the same document.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	modules := make(map[string]bool, len(c.Modules))
	for _, m := range c.Modules {
		if m.ID == "" {
			return nil, fmt.Errorf("module %q has no id", m.Name)
		}
		if modules[m.ID] {
			return nil, fmt.Errorf("duplicate module %q", m.ID)
		}
		modules[m.ID] = true
	}

	plans := make(map[string]bool, len(c.Plans))
	for _, p := range c.Plans {
		if p.ID == "" {
			return nil, fmt.Errorf("plan %q has no id", p.Name)
		}
		if plans[p.ID] {
			return nil, fmt.Errorf("duplicate plan %q", p.ID)
		}
		plans[p.ID] = true
		for _, m := range p.BaseModules {
			if !modules[m] {
				return nil, fmt.Errorf("plan %q references unknown module %q", p.ID, m)
			}
		}
	}

	return &c, nil
}
