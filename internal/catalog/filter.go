package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/voyagen/m3ulive/internal/models"
)

// Filter is a category filter definition.
type Filter struct {
	IncludedCategories []string `json:"included_categories" yaml:"included_categories"`
}

// AllowSet returns the included categories as a set.
func (f Filter) AllowSet() *models.AllowSet {
	return models.NewAllowSet(f.IncludedCategories...)
}

// LoadFilter reads a filter definition. Files ending in .yaml or .yml are
// decoded as YAML, everything else as JSON. included_categories is required.
func LoadFilter(path string) (*Filter, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read filter %s: %w", path, err)
	}
	var raw struct {
		IncludedCategories *[]string `json:"included_categories" yaml:"included_categories"`
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &raw)
	default:
		err = json.Unmarshal(data, &raw)
	}
	if err != nil {
		var jsonType *json.UnmarshalTypeError
		var yamlType *yaml.TypeError
		if errors.As(err, &jsonType) || errors.As(err, &yamlType) {
			return nil, fmt.Errorf("filter %s: %w", path, wrongType("included_categories", "array of strings"))
		}
		return nil, fmt.Errorf("parse filter %s: %w", path, err)
	}
	if raw.IncludedCategories == nil {
		return nil, fmt.Errorf("filter %s: %w", path, missing("included_categories"))
	}
	return &Filter{IncludedCategories: *raw.IncludedCategories}, nil
}
