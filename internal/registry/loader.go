package registry

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/canireach/canireach/internal/domain"
)

// fileSchema matches the services override file:
//
//	services:
//	  - name: Supabase
//	    url: https://supabase.co
//	    icon: "⚡"
type fileSchema struct {
	Services []domain.Service `yaml:"services"`
}

// Load returns the registry to probe and report on. With an empty path
// it returns the builtin list; otherwise it reads and validates the
// YAML override file.
func Load(path string) ([]domain.Service, error) {
	if path == "" {
		return Builtin(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read services file: %w", err)
	}

	var schema fileSchema
	if err := yaml.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("failed to parse services yaml: %w", err)
	}

	if err := Validate(schema.Services); err != nil {
		return nil, fmt.Errorf("invalid services file %s: %w", path, err)
	}

	return schema.Services, nil
}
