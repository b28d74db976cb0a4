package services

import (
	"iter"

	"github.com/gcbaptista/go-search-server/config"
	"github.com/gcbaptista/go-search-server/model"
)

// Indexer defines operations for mutating the index
type Indexer interface {
	AddDocument(id int, text string, status model.DocumentStatus, ratings []int) error
	AddDocuments(docs []config.DocumentSpec) error
	RemoveDocument(policy model.ExecutionPolicy, id int) error
	FindDuplicates() []int
	RemoveDuplicates() ([]int, error)
}

// Searcher defines operations for querying the index
type Searcher interface {
	FindTopDocuments(rawQuery string, predicate model.DocumentPredicate) ([]model.ScoredDocument, error)
	MatchDocument(policy model.ExecutionPolicy, rawQuery string, id int) ([]string, model.DocumentStatus, error)
	GetWordFrequencies(id int) map[string]float64
}

// MultiSearcher defines operations for running several queries in one call
type MultiSearcher interface {
	ProcessQueries(queries []string) ([][]model.ScoredDocument, error)
	ProcessQueriesJoined(queries []string) ([]model.ScoredDocument, error)
}

// Server is the embeddable search server surface.
type Server interface {
	MultiSearcher

	AddDocument(id int, text string, status model.DocumentStatus, ratings []int) error
	AddDocuments(docs []config.DocumentSpec) error
	RemoveDocument(id int)
	RemoveDocumentPolicy(policy model.ExecutionPolicy, id int) error

	FindTopDocuments(rawQuery string) ([]model.ScoredDocument, error)
	FindTopDocumentsByStatus(rawQuery string, status model.DocumentStatus) ([]model.ScoredDocument, error)
	FindTopDocumentsFunc(rawQuery string, predicate model.DocumentPredicate) ([]model.ScoredDocument, error)

	MatchDocument(rawQuery string, id int) ([]string, model.DocumentStatus, error)
	MatchDocumentPolicy(policy model.ExecutionPolicy, rawQuery string, id int) ([]string, model.DocumentStatus, error)

	GetDocumentCount() int
	DocumentIDs() []int
	IDs() iter.Seq[int]
	GetWordFrequencies(id int) map[string]float64

	FindDuplicates() []int
	RemoveDuplicates() ([]int, error)

	Settings() config.ServerSettings
}
