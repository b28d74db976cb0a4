package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gcbaptista/go-search-server/model"
)

// DocumentSpec is one entry of a documents file.
type DocumentSpec struct {
	ID      int                  `yaml:"id"`
	Text    string               `yaml:"text"`
	Status  model.DocumentStatus `yaml:"status"`
	Ratings []int                `yaml:"ratings"`
}

// documentsFile is the top-level layout of a documents file.
type documentsFile struct {
	Documents []DocumentSpec `yaml:"documents"`
}

// LoadDocuments reads the documents listed in a YAML file.
// A missing status means active.
func LoadDocuments(path string) ([]DocumentSpec, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is supplied by the operator
	if err != nil {
		return nil, fmt.Errorf("failed to read documents file %s: %w", path, err)
	}
	return ParseDocuments(data)
}

// ParseDocuments decodes a YAML documents payload.
func ParseDocuments(data []byte) ([]DocumentSpec, error) {
	var file documentsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse documents: %w", err)
	}
	if file.Documents == nil {
		return []DocumentSpec{}, nil
	}
	return file.Documents, nil
}
