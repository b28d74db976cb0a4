// Package config provides configuration structures for the search server.
// It defines stop words, ranking limits and the fan-out settings of bulk operations.
package config

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	searcherrors "github.com/gcbaptista/go-search-server/internal/errors"
	"github.com/gcbaptista/go-search-server/internal/tokenizer"
)

const (
	// DefaultMaxResultDocumentCount is the number of hits returned by a ranked query.
	DefaultMaxResultDocumentCount = 5
	// DefaultRelevanceEpsilon is the relevance difference below which two hits are ordered by rating.
	DefaultRelevanceEpsilon = 1e-6
	// DefaultParallelThreshold is the minimum term count at which the parallel policy actually fans out.
	DefaultParallelThreshold = 64
)

// ServerSettings contains all configuration options for a search server.
type ServerSettings struct {
	StopWords              []string         `yaml:"stop_words"`                // Terms excluded from indexing and queries
	MaxResultDocumentCount int              `yaml:"max_result_document_count"` // Maximum hits per ranked query
	RelevanceEpsilon       float64          `yaml:"relevance_epsilon"`         // Relevance tie tolerance
	Parallel               ParallelSettings `yaml:"parallel"`
}

// ParallelSettings controls the fan-out used by parallel removal, matching and batch queries.
type ParallelSettings struct {
	Workers   int `yaml:"workers"`   // Worker count; defaults to runtime.NumCPU()
	Threshold int `yaml:"threshold"` // Below this many terms the parallel policy runs sequentially
}

// DefaultSettings returns settings with every default applied and no stop words.
func DefaultSettings() ServerSettings {
	settings := ServerSettings{}
	settings.ApplyDefaults()
	return settings
}

// ApplyDefaults applies default values to unset fields
func (settings *ServerSettings) ApplyDefaults() {
	if settings.MaxResultDocumentCount == 0 {
		settings.MaxResultDocumentCount = DefaultMaxResultDocumentCount
	}
	if settings.RelevanceEpsilon == 0 {
		settings.RelevanceEpsilon = DefaultRelevanceEpsilon
	}
	if settings.Parallel.Workers == 0 {
		settings.Parallel.Workers = runtime.NumCPU()
	}
	if settings.Parallel.Threshold == 0 {
		settings.Parallel.Threshold = DefaultParallelThreshold
	}

	// Initialize empty slices if nil to prevent nil pointer issues
	if settings.StopWords == nil {
		settings.StopWords = []string{}
	}
}

// Validate returns a list of problems with the settings. An empty list means the settings are usable.
func (settings *ServerSettings) Validate() []string {
	var problems []string

	if settings.MaxResultDocumentCount < 0 {
		problems = append(problems, "max_result_document_count must not be negative")
	}
	if settings.RelevanceEpsilon < 0 {
		problems = append(problems, "relevance_epsilon must not be negative")
	}
	if settings.Parallel.Workers < 0 {
		problems = append(problems, "parallel.workers must not be negative")
	}
	if settings.Parallel.Threshold < 0 {
		problems = append(problems, "parallel.threshold must not be negative")
	}
	for _, word := range settings.StopWords {
		if strings.Contains(word, " ") {
			problems = append(problems, fmt.Sprintf("stop word %q must not contain spaces", word))
		}
		if !tokenizer.IsValidText(word) {
			problems = append(problems, fmt.Sprintf("stop word %q contains a control character", word))
		}
	}

	return problems
}

// ValidationError joins the problems reported by Validate into a single error, or returns nil.
func (settings *ServerSettings) ValidationError() error {
	problems := settings.Validate()
	if len(problems) == 0 {
		return nil
	}
	return searcherrors.NewValidationError("", strings.Join(problems, "; "))
}

// LoadSettings reads settings from a YAML file and applies defaults.
func LoadSettings(path string) (ServerSettings, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is supplied by the operator
	if err != nil {
		return ServerSettings{}, fmt.Errorf("failed to read settings file %s: %w", path, err)
	}

	var settings ServerSettings
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return ServerSettings{}, fmt.Errorf("failed to parse settings file %s: %w", path, err)
	}
	settings.ApplyDefaults()

	if err := settings.ValidationError(); err != nil {
		return ServerSettings{}, fmt.Errorf("invalid settings file %s: %w", path, err)
	}
	return settings, nil
}
