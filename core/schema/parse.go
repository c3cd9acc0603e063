package schema

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ParseFile parses a panel definition from a YAML file.
func ParseFile(path string) (Panel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Panel{}, fmt.Errorf("read file %s: %w", path, err)
	}

	p, err := Parse(data)
	if err != nil {
		return Panel{}, fmt.Errorf("%s: %w", path, err)
	}

	return p, nil
}

// ParseDir parses all panel definitions from a directory, including
// subdirectories.
func ParseDir(dir string) ([]Panel, error) {
	var panels []Panel

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())

		if entry.IsDir() {
			sub, err := ParseDir(path)
			if err != nil {
				return nil, err
			}
			panels = append(panels, sub...)
			continue
		}

		name := entry.Name()
		if !strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml") {
			continue
		}

		p, err := ParseFile(path)
		if err != nil {
			return nil, err
		}

		panels = append(panels, p)
	}

	return panels, nil
}
