package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

type tagGroupsFile struct {
	Keywords []string `yaml:"keywords"`
}

// LoadTagKeywords reads the ordered keyword list from a YAML file of the form
//
//	keywords:
//	  - dev
//	  - release
//
// An empty path returns nil so the caller falls back to the built-in list.
func LoadTagKeywords(path string) ([]string, error) {
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tag groups file: %w", err)
	}
	var f tagGroupsFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse tag groups file %s: %w", path, err)
	}
	if len(f.Keywords) == 0 {
		return nil, fmt.Errorf("tag groups file %s has no keywords", path)
	}
	return f.Keywords, nil
}
