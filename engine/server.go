// Package engine is the embeddable search server: an in-memory inverted index over short
// text documents, ranked with TF-IDF and filtered by plus/minus query terms.
package engine

import (
	"fmt"
	"iter"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/gcbaptista/go-search-server/config"
	"github.com/gcbaptista/go-search-server/index"
	searcherrors "github.com/gcbaptista/go-search-server/internal/errors"
	"github.com/gcbaptista/go-search-server/internal/indexing"
	"github.com/gcbaptista/go-search-server/internal/metrics"
	"github.com/gcbaptista/go-search-server/internal/search"
	"github.com/gcbaptista/go-search-server/internal/tokenizer"
	"github.com/gcbaptista/go-search-server/model"
	"github.com/gcbaptista/go-search-server/services"
	"github.com/gcbaptista/go-search-server/store"
)

var _ services.Server = (*Server)(nil)

// Server holds all components and services of one search index.
// It implements the services.Server interface.
//
// Every method is safe for concurrent use. Mutations take exclusive locks, so readers
// never observe a half-applied ingestion or removal.
type Server struct {
	settings      config.ServerSettings
	stopWords     tokenizer.StopWords
	invertedIndex *index.InvertedIndex
	documentStore *store.DocumentStore
	indexer       *indexing.Service
	searcher      *search.Service
	metrics       *metrics.Metrics
}

// Option configures a Server.
type Option func(*Server)

// WithMetrics registers the server's Prometheus collectors with reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(s *Server) {
		s.metrics = metrics.New(reg)
	}
}

// NewServer creates an empty Server. Unset settings get their defaults.
// A stop word containing a control character fails with ErrInvalidCharacter.
func NewServer(settings config.ServerSettings, opts ...Option) (*Server, error) {
	settings.ApplyDefaults()
	stopWords, err := tokenizer.NewStopWords(settings.StopWords)
	if err != nil {
		return nil, fmt.Errorf("invalid stop words: %w", err)
	}
	if err := settings.ValidationError(); err != nil {
		return nil, fmt.Errorf("invalid server settings: %w", err)
	}
	settings.StopWords = stopWords.Words()

	s := &Server{
		settings:      settings,
		stopWords:     stopWords,
		invertedIndex: index.NewInvertedIndex(),
		documentStore: store.NewDocumentStore(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.indexer, err = indexing.NewService(s.invertedIndex, s.documentStore, stopWords, settings.Parallel, s.metrics)
	if err != nil {
		return nil, fmt.Errorf("failed to create indexer service: %w", err)
	}
	s.searcher, err = search.NewService(s.invertedIndex, s.documentStore, stopWords, settings, s.metrics)
	if err != nil {
		return nil, fmt.Errorf("failed to create search service: %w", err)
	}
	return s, nil
}

// NewServerFromStopWordsText creates a Server with default settings whose stop words are
// the space-separated words of text.
func NewServerFromStopWordsText(text string, opts ...Option) (*Server, error) {
	if err := tokenizer.Validate(text); err != nil {
		return nil, fmt.Errorf("invalid stop words: %w", err)
	}
	settings := config.DefaultSettings()
	settings.StopWords = tokenizer.SplitIntoWords(text)
	return NewServer(settings, opts...)
}

// Settings returns the effective settings, stop words sorted and deduplicated.
func (s *Server) Settings() config.ServerSettings {
	settings := s.settings
	settings.StopWords = append([]string(nil), s.settings.StopWords...)
	return settings
}

// AddDocument ingests one document. It fails with ErrNegativeID, ErrDuplicateID or
// ErrInvalidCharacter and leaves the server untouched on failure.
func (s *Server) AddDocument(id int, text string, status model.DocumentStatus, ratings []int) error {
	return s.indexer.AddDocument(id, text, status, ratings)
}

// AddDocuments ingests docs as one batch. An invalid document rejects the whole batch.
func (s *Server) AddDocuments(docs []config.DocumentSpec) error {
	return s.indexer.AddDocuments(docs)
}

// RemoveDocument removes id sequentially. Unknown ids are ignored.
func (s *Server) RemoveDocument(id int) {
	// Sequential removal has no failure path.
	_ = s.indexer.RemoveDocument(model.Sequential, id)
}

// RemoveDocumentPolicy removes id using policy. Unknown ids are ignored.
func (s *Server) RemoveDocumentPolicy(policy model.ExecutionPolicy, id int) error {
	return s.indexer.RemoveDocument(policy, id)
}

// FindTopDocuments ranks active documents against rawQuery.
func (s *Server) FindTopDocuments(rawQuery string) ([]model.ScoredDocument, error) {
	return s.searcher.FindTopDocuments(rawQuery, model.StatusIs(model.StatusActive))
}

// FindTopDocumentsByStatus ranks documents with the given status against rawQuery.
func (s *Server) FindTopDocumentsByStatus(rawQuery string, status model.DocumentStatus) ([]model.ScoredDocument, error) {
	return s.searcher.FindTopDocuments(rawQuery, model.StatusIs(status))
}

// FindTopDocumentsFunc ranks the documents accepted by predicate against rawQuery.
func (s *Server) FindTopDocumentsFunc(rawQuery string, predicate model.DocumentPredicate) ([]model.ScoredDocument, error) {
	if predicate == nil {
		return nil, searcherrors.NewValidationError("predicate", "cannot be nil")
	}
	return s.searcher.FindTopDocuments(rawQuery, predicate)
}

// MatchDocument returns the plus-terms of rawQuery present in document id and its status.
func (s *Server) MatchDocument(rawQuery string, id int) ([]string, model.DocumentStatus, error) {
	return s.searcher.MatchDocument(model.Sequential, rawQuery, id)
}

// MatchDocumentPolicy is MatchDocument with an explicit execution policy.
func (s *Server) MatchDocumentPolicy(policy model.ExecutionPolicy, rawQuery string, id int) ([]string, model.DocumentStatus, error) {
	return s.searcher.MatchDocument(policy, rawQuery, id)
}

// GetDocumentCount returns the number of live documents.
func (s *Server) GetDocumentCount() int {
	s.documentStore.Mu.RLock()
	defer s.documentStore.Mu.RUnlock()
	return s.documentStore.Count()
}

// DocumentIDs returns the live document ids in ascending order.
func (s *Server) DocumentIDs() []int {
	s.documentStore.Mu.RLock()
	defer s.documentStore.Mu.RUnlock()
	return s.documentStore.IDs()
}

// IDs returns a restartable iterator over the ids live at the time of the call, ascending.
func (s *Server) IDs() iter.Seq[int] {
	s.documentStore.Mu.RLock()
	defer s.documentStore.Mu.RUnlock()
	return s.documentStore.All()
}

// GetWordFrequencies returns term -> TF for document id, or an empty map for an unknown id.
func (s *Server) GetWordFrequencies(id int) map[string]float64 {
	return s.searcher.GetWordFrequencies(id)
}

// FindDuplicates returns the ids of documents whose term set repeats an earlier document's.
func (s *Server) FindDuplicates() []int {
	return s.indexer.FindDuplicates()
}

// RemoveDuplicates removes the documents FindDuplicates reports and returns their ids.
func (s *Server) RemoveDuplicates() ([]int, error) {
	return s.indexer.RemoveDuplicates()
}

// ProcessQueries ranks each query against active documents, in parallel, keeping query order.
func (s *Server) ProcessQueries(queries []string) ([][]model.ScoredDocument, error) {
	return s.searcher.ProcessQueries(queries)
}

// ProcessQueriesJoined is ProcessQueries flattened into one sequence.
func (s *Server) ProcessQueriesJoined(queries []string) ([]model.ScoredDocument, error) {
	return s.searcher.ProcessQueriesJoined(queries)
}
