package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// BrandVocabulary is the configured brand allowlist. Entries are exact
// lowercase substrings; transliterations and common misspellings are listed
// explicitly rather than fuzzy-matched.
type BrandVocabulary struct {
	Brands []string `yaml:"brands"`
}

// LoadBrands reads the brand vocabulary YAML. A missing path is not an
// error: classification then runs with an empty allowlist.
func LoadBrands(path string) ([]string, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read brands file: %w", err)
	}
	var v BrandVocabulary
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("parse brands file: %w", err)
	}
	return v.Brands, nil
}
