package script

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"pagepilot/internal/domain/entity"

	"gopkg.in/yaml.v3"
)

// Load reads a YAML script file. A script without a name is named after
// its file.
func Load(path string) (*entity.Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}

	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if s.Name == "" {
		s.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return s, nil
}

func Parse(data []byte) (*entity.Script, error) {
	var s entity.Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	if err := validate(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

func validate(s *entity.Script) error {
	if len(s.Steps) == 0 {
		return errors.New("script has no steps")
	}
	var errs []error
	for i, step := range s.Steps {
		if step.Tool == "" {
			errs = append(errs, fmt.Errorf("step %d: tool is required", i+1))
		}
	}
	return errors.Join(errs...)
}
