// Package aliases provides the curated table of imprecise license names.
//
// The table is reference data with its own version; it is never derived from
// the registry documents. The default copy is embedded from aliases.yaml and
// can be replaced with a file of the same shape.
package aliases

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/StinkyLord/spdx-update/internal/model"
)

//go:embed aliases.yaml
var embedded []byte

// Default returns the embedded table.
func Default() (model.AliasTable, error) {
	return Parse(embedded, "aliases.yaml")
}

// Load reads a table from path.
func Load(path string) (model.AliasTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.AliasTable{}, fmt.Errorf("cannot read alias table: %w", err)
	}
	return Parse(data, path)
}

// Parse decodes and validates a YAML table. name only appears in errors.
func Parse(data []byte, name string) (model.AliasTable, error) {
	var table model.AliasTable
	if err := yaml.Unmarshal(data, &table); err != nil {
		return model.AliasTable{}, fmt.Errorf("alias table %s: %w", name, err)
	}
	if err := validate(table); err != nil {
		return model.AliasTable{}, fmt.Errorf("alias table %s: %w", name, err)
	}
	return table, nil
}

func validate(table model.AliasTable) error {
	if table.Version < 1 {
		return fmt.Errorf("version must be at least 1, got %d", table.Version)
	}
	seen := make(map[string]bool, len(table.Entries))
	for i, e := range table.Entries {
		if e.Invalid == "" || e.Canonical == "" {
			return fmt.Errorf("entry %d: invalid and canonical must both be set", i)
		}
		if e.Invalid == e.Canonical {
			return fmt.Errorf("entry %d: %q maps to itself", i, e.Invalid)
		}
		if seen[e.Invalid] {
			return fmt.Errorf("entry %d: duplicate name %q", i, e.Invalid)
		}
		seen[e.Invalid] = true
	}
	return nil
}
