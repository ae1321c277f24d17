package notetype

import (
	"fmt"

	"github.com/starford/ansuz/pkg/config"
)

// fileSpec is the YAML shape of a note-type table file.
type fileSpec struct {
	Strategy string    `yaml:"strategy"`
	Variants []Variant `yaml:"variants"`
}

// LoadFile reads a variant table and inference strategy from a YAML file.
// An empty path yields the built-in defaults.
func LoadFile(path string) (*Table, Strategy, error) {
	if path == "" {
		return Default(), RequiredSubset, nil
	}

	var spec fileSpec
	if err := config.Load(path, &spec); err != nil {
		return nil, nil, fmt.Errorf("notetype: %w", err)
	}

	t, err := New(spec.Variants...)
	if err != nil {
		return nil, nil, err
	}
	strategy, err := StrategyByName(spec.Strategy)
	if err != nil {
		return nil, nil, err
	}
	return t, strategy, nil
}
