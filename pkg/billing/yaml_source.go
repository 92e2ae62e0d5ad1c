package billing

import (
	"context"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type yamlSource struct {
	path string
}

// NewYAMLSource returns a PlanSource reading the catalog from a YAML file:
//
//	plans:
//	  - id: price_basic_monthly
//	    name: Basic
//	    price:
//	      amount: 49900
//	      currency: INR
//	    interval: monthly
//
// The file is read once per Load; the catalog loads it once at startup.
func NewYAMLSource(path string) PlanSource {
	return &yamlSource{path: path}
}

func (s *yamlSource) Load(_ context.Context) ([]Plan, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read plan catalog %s: %w", s.path, err)
	}

	var doc struct {
		Plans []Plan `yaml:"plans"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse plan catalog %s: %w", s.path, err)
	}
	if len(doc.Plans) == 0 {
		return nil, errors.New("plan catalog file contains no plans")
	}

	return doc.Plans, nil
}
