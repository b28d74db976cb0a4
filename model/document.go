package model

import (
	"fmt"
	"strings"
)

// DocumentStatus describes the lifecycle state a document was ingested with.
type DocumentStatus int

const (
	StatusActive DocumentStatus = iota
	StatusIrrelevant
	StatusBanned
	StatusRemoved
)

var statusNames = map[DocumentStatus]string{
	StatusActive:     "ACTIVE",
	StatusIrrelevant: "IRRELEVANT",
	StatusBanned:     "BANNED",
	StatusRemoved:    "REMOVED",
}

// String returns the upper-case name of the status.
func (s DocumentStatus) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("DocumentStatus(%d)", int(s))
}

// ParseDocumentStatus converts a status name into a DocumentStatus.
// Matching is case-insensitive; "ACTUAL" is accepted as an alias of "ACTIVE".
func ParseDocumentStatus(name string) (DocumentStatus, error) {
	normalized := strings.ToUpper(strings.TrimSpace(name))
	if normalized == "ACTUAL" {
		return StatusActive, nil
	}
	for status, statusName := range statusNames {
		if statusName == normalized {
			return status, nil
		}
	}
	return StatusActive, fmt.Errorf("unknown document status %q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (s DocumentStatus) MarshalText() ([]byte, error) {
	if _, ok := statusNames[s]; !ok {
		return nil, fmt.Errorf("unknown document status %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler so statuses can be written by name in YAML files.
func (s *DocumentStatus) UnmarshalText(text []byte) error {
	status, err := ParseDocumentStatus(string(text))
	if err != nil {
		return err
	}
	*s = status
	return nil
}

// Document is the stored form of an ingested text.
// Rating is the integer average of the ratings supplied at ingestion.
type Document struct {
	ID     int
	Status DocumentStatus
	Rating int
	Text   string
}

// ScoredDocument is a single ranked search hit.
type ScoredDocument struct {
	ID        int     `json:"document_id" yaml:"document_id"`
	Relevance float64 `json:"relevance" yaml:"relevance"`
	Rating    int     `json:"rating" yaml:"rating"`
}

func (d ScoredDocument) String() string {
	return fmt.Sprintf("{ document_id = %d, relevance = %g, rating = %d }", d.ID, d.Relevance, d.Rating)
}

// DocumentPredicate decides whether a candidate document may appear in search results.
type DocumentPredicate func(id int, status DocumentStatus, rating int) bool

// StatusIs returns a predicate accepting only documents with the given status.
func StatusIs(want DocumentStatus) DocumentPredicate {
	return func(_ int, status DocumentStatus, _ int) bool {
		return status == want
	}
}

// ExecutionPolicy selects between the sequential and the fan-out implementation
// of bulk operations. Both produce identical results.
type ExecutionPolicy int

const (
	Sequential ExecutionPolicy = iota
	Parallel
)

func (p ExecutionPolicy) String() string {
	switch p {
	case Sequential:
		return "sequential"
	case Parallel:
		return "parallel"
	default:
		return fmt.Sprintf("ExecutionPolicy(%d)", int(p))
	}
}
