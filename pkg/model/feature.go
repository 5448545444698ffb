package model

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
)

// FeatureView names a group of entity features kept in an offline table and
// served from the online store.
type FeatureView struct {
	Name   string        `yaml:"name"`
	Entity string        `yaml:"entity"`
	Table  string        `yaml:"table"`
	Fields []string      `yaml:"fields"`
	TTL    time.Duration `yaml:"ttl"`
}

func (v *FeatureView) Validate() error {
	if v.Name == "" {
		return goerr.New("feature view name is required")
	}
	if v.Entity == "" {
		return goerr.New("feature view entity is required", goerr.V("view", v.Name))
	}
	if v.Table == "" {
		return goerr.New("feature view table is required", goerr.V("view", v.Name))
	}
	if len(v.Fields) == 0 {
		return goerr.New("feature view has no fields", goerr.V("view", v.Name))
	}
	return nil
}

// FeatureRow is one entity's feature values as stored. Missing values are absent from Values.
type FeatureRow struct {
	Entity string
	Values map[string]string
}
