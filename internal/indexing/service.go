package indexing

import (
	"fmt"

	"github.com/gcbaptista/go-search-server/config"
	"github.com/gcbaptista/go-search-server/index"
	searcherrors "github.com/gcbaptista/go-search-server/internal/errors"
	"github.com/gcbaptista/go-search-server/internal/metrics"
	"github.com/gcbaptista/go-search-server/internal/tokenizer"
	"github.com/gcbaptista/go-search-server/model"
	"github.com/gcbaptista/go-search-server/services"
	"github.com/gcbaptista/go-search-server/store"
)

var _ services.Indexer = (*Service)(nil)

// Rejection reasons reported to metrics.
const (
	reasonNegativeID       = "negative_id"
	reasonDuplicateID      = "duplicate_id"
	reasonInvalidCharacter = "invalid_character"
)

// Service implements ingestion and removal for one server.
// It fulfills the services.Indexer interface.
type Service struct {
	invertedIndex *index.InvertedIndex
	documentStore *store.DocumentStore
	stopWords     tokenizer.StopWords
	parallel      config.ParallelSettings
	metrics       *metrics.Metrics
}

// NewService creates a new indexing Service.
// A nil metrics value disables metrics.
func NewService(
	invertedIndex *index.InvertedIndex,
	documentStore *store.DocumentStore,
	stopWords tokenizer.StopWords,
	parallel config.ParallelSettings,
	m *metrics.Metrics,
) (*Service, error) {
	if invertedIndex == nil {
		return nil, fmt.Errorf("inverted index cannot be nil")
	}
	if documentStore == nil {
		return nil, fmt.Errorf("document store cannot be nil")
	}
	if stopWords == nil {
		stopWords = make(tokenizer.StopWords)
	}
	return &Service{
		invertedIndex: invertedIndex,
		documentStore: documentStore,
		stopWords:     stopWords,
		parallel:      parallel,
		metrics:       m,
	}, nil
}

// AddDocument validates and ingests one document.
// Every check runs before the index or the store is touched, so a failed call leaves no trace.
func (s *Service) AddDocument(id int, text string, status model.DocumentStatus, ratings []int) error {
	if id < 0 {
		s.metrics.RecordDocumentRejected(reasonNegativeID)
		return searcherrors.NewNegativeIDError(id)
	}
	if err := tokenizer.Validate(text); err != nil {
		s.metrics.RecordDocumentRejected(reasonInvalidCharacter)
		return err
	}

	s.documentStore.Mu.Lock()
	s.invertedIndex.Mu.Lock()
	defer s.documentStore.Mu.Unlock()
	defer s.invertedIndex.Mu.Unlock()

	if err := s.addDocumentUnsafe(id, text, status, ratings); err != nil {
		return err
	}
	s.metrics.RecordDocumentAdded(s.documentStore.Count(), s.invertedIndex.TermCount())
	return nil
}

// addDocumentUnsafe assumes the caller holds write locks on documentStore and invertedIndex.
func (s *Service) addDocumentUnsafe(id int, text string, status model.DocumentStatus, ratings []int) error {
	if s.documentStore.Contains(id) || s.invertedIndex.HasDocument(id) {
		s.metrics.RecordDocumentRejected(reasonDuplicateID)
		return searcherrors.NewDuplicateIDError(id)
	}

	words := s.stopWords.SplitIntoWordsNoStop(text)
	frequencies := index.ComputeTermFrequencies(words)

	if err := s.invertedIndex.AddDocument(id, frequencies); err != nil {
		return err
	}

	doc := model.Document{
		ID:     id,
		Status: status,
		Rating: store.ComputeAverageRating(ratings),
		Text:   text,
	}
	if err := s.documentStore.Add(doc, s.invertedIndex.Terms(id)); err != nil {
		s.invertedIndex.RemoveDocument(id)
		return err
	}
	return nil
}

// RemoveDocument purges id from the store and the index. Unknown ids are ignored.
// With the parallel policy the document's terms are spread across workers once the
// document has at least the configured threshold of terms.
func (s *Service) RemoveDocument(policy model.ExecutionPolicy, id int) error {
	s.documentStore.Mu.Lock()
	s.invertedIndex.Mu.Lock()
	defer s.documentStore.Mu.Unlock()
	defer s.invertedIndex.Mu.Unlock()

	removed, err := s.removeDocumentUnsafe(policy, id)
	if err != nil || !removed {
		return err
	}
	s.metrics.RecordDocumentRemoved(policy.String(), s.documentStore.Count(), s.invertedIndex.TermCount())
	return nil
}

// removeDocumentUnsafe assumes the caller holds write locks on documentStore and invertedIndex.
func (s *Service) removeDocumentUnsafe(policy model.ExecutionPolicy, id int) (bool, error) {
	if !s.documentStore.Contains(id) {
		return false, nil
	}

	if policy == model.Parallel && len(s.invertedIndex.Terms(id)) >= s.parallel.Threshold {
		if err := s.invertedIndex.RemoveDocumentParallel(id, s.parallel.Workers); err != nil {
			return false, err
		}
	} else {
		s.invertedIndex.RemoveDocument(id)
	}
	s.documentStore.Remove(id)
	return true, nil
}
