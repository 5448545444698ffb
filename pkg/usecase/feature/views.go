package feature

import (
	_ "embed"
	"io"

	"github.com/m-mizutani/goerr/v2"
	"github.com/tandem-mlops/tandem/pkg/model"
	"gopkg.in/yaml.v3"
)

//go:embed views.yaml
var defaultViewsYAML []byte

type viewsFile struct {
	Views []model.FeatureView `yaml:"views"`
}

// ParseViews reads feature view definitions in YAML
func ParseViews(r io.Reader) ([]model.FeatureView, error) {
	var file viewsFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		return nil, goerr.Wrap(err, "failed to decode feature views")
	}
	if len(file.Views) == 0 {
		return nil, goerr.New("no feature view defined")
	}

	seen := make(map[string]bool, len(file.Views))
	for i := range file.Views {
		v := &file.Views[i]
		if err := v.Validate(); err != nil {
			return nil, err
		}
		if seen[v.Name] {
			return nil, goerr.New("duplicated feature view", goerr.V("view", v.Name))
		}
		seen[v.Name] = true
	}

	return file.Views, nil
}

// DefaultViews returns the built-in covid_features and churn_features views
func DefaultViews() []model.FeatureView {
	var file viewsFile
	if err := yaml.Unmarshal(defaultViewsYAML, &file); err != nil {
		panic("broken embedded feature views: " + err.Error())
	}
	return file.Views
}
