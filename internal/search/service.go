package search

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/gcbaptista/go-search-server/config"
	"github.com/gcbaptista/go-search-server/index"
	"github.com/gcbaptista/go-search-server/internal/metrics"
	"github.com/gcbaptista/go-search-server/internal/query"
	"github.com/gcbaptista/go-search-server/internal/tokenizer"
	"github.com/gcbaptista/go-search-server/internal/workpool"
	"github.com/gcbaptista/go-search-server/model"
	"github.com/gcbaptista/go-search-server/services"
	"github.com/gcbaptista/go-search-server/store"
)

var (
	_ services.Searcher      = (*Service)(nil)
	_ services.MultiSearcher = (*Service)(nil)
)

// Service implements ranked search and matching for one server.
// It fulfills the services.Searcher interface.
type Service struct {
	invertedIndex *index.InvertedIndex
	documentStore *store.DocumentStore
	parser        *query.Parser
	calculator    *TFIDFCalculator
	settings      config.ServerSettings
	metrics       *metrics.Metrics
	inflight      singleflight.Group // Coalesces identical queries of one batch
}

// NewService creates a new search Service. settings must already have defaults applied.
// A nil metrics value disables metrics.
func NewService(
	invIndex *index.InvertedIndex,
	docStore *store.DocumentStore,
	stopWords tokenizer.StopWords,
	settings config.ServerSettings,
	m *metrics.Metrics,
) (*Service, error) {
	if invIndex == nil {
		return nil, fmt.Errorf("inverted index cannot be nil")
	}
	if docStore == nil {
		return nil, fmt.Errorf("document store cannot be nil")
	}
	if err := settings.ValidationError(); err != nil {
		return nil, err
	}

	return &Service{
		invertedIndex: invIndex,
		documentStore: docStore,
		parser:        query.NewParser(stopWords),
		calculator:    NewTFIDFCalculator(invIndex, docStore),
		settings:      settings,
		metrics:       m,
	}, nil
}

// FindTopDocuments ranks the documents accepted by predicate against rawQuery.
// A nil predicate keeps active documents only. Results are ordered by relevance
// descending, relevance ties by rating descending, then by id, and truncated to
// the configured maximum.
func (s *Service) FindTopDocuments(rawQuery string, predicate model.DocumentPredicate) ([]model.ScoredDocument, error) {
	startTime := time.Now()
	results, err := s.findTopDocuments(rawQuery, predicate)
	s.metrics.RecordQuery(time.Since(startTime), len(results), err)
	return results, err
}

func (s *Service) findTopDocuments(rawQuery string, predicate model.DocumentPredicate) ([]model.ScoredDocument, error) {
	if predicate == nil {
		predicate = model.StatusIs(model.StatusActive)
	}

	q, err := s.parser.Parse(rawQuery)
	if err != nil {
		return nil, err
	}

	s.documentStore.Mu.RLock()
	s.invertedIndex.Mu.RLock()
	defer s.documentStore.Mu.RUnlock()
	defer s.invertedIndex.Mu.RUnlock()

	relevance, err := s.accumulateRelevance(q, predicate)
	if err != nil {
		return nil, err
	}

	results := make([]model.ScoredDocument, 0, len(relevance))
	for id, score := range relevance {
		rating, err := s.documentStore.GetRating(id)
		if err != nil {
			return nil, fmt.Errorf("index references unknown document: %w", err)
		}
		results = append(results, model.ScoredDocument{ID: id, Relevance: score, Rating: rating})
	}

	// Relevances closer than epsilon count as equal. The order is total only when such
	// ties do not chain (a~b and b~c while a and c differ by epsilon or more).
	epsilon := s.settings.RelevanceEpsilon
	slices.SortFunc(results, func(a, b model.ScoredDocument) int {
		if math.Abs(a.Relevance-b.Relevance) >= epsilon {
			return cmp.Compare(b.Relevance, a.Relevance)
		}
		if a.Rating != b.Rating {
			return cmp.Compare(b.Rating, a.Rating)
		}
		return cmp.Compare(a.ID, b.ID)
	})

	if len(results) > s.settings.MaxResultDocumentCount {
		results = results[:s.settings.MaxResultDocumentCount]
	}
	return results, nil
}

// accumulateRelevance sums TF*IDF over plus-terms for documents accepted by predicate,
// then drops every document holding a minus-term. Callers hold read locks.
func (s *Service) accumulateRelevance(q query.Query, predicate model.DocumentPredicate) (map[int]float64, error) {
	relevance := make(map[int]float64)

	for _, term := range q.PlusTerms {
		postings, ok := s.invertedIndex.Postings(term)
		if !ok {
			continue
		}
		idf := s.calculator.IDF(term)
		for id, tf := range postings {
			doc, err := s.documentStore.Get(id)
			if err != nil {
				return nil, fmt.Errorf("index references unknown document: %w", err)
			}
			if predicate(id, doc.Status, doc.Rating) {
				relevance[id] += s.calculator.Score(tf, idf)
			}
		}
	}

	for _, term := range q.MinusTerms {
		postings, ok := s.invertedIndex.Postings(term)
		if !ok {
			continue
		}
		for id := range postings {
			delete(relevance, id)
		}
	}
	return relevance, nil
}

// MatchDocument returns the plus-terms of rawQuery found in document id, in lexicographic
// order, together with the document's status. A document holding any minus-term matches nothing.
// With the parallel policy the terms are spread across workers once the query has at
// least the configured threshold of terms; the result is the same either way.
func (s *Service) MatchDocument(policy model.ExecutionPolicy, rawQuery string, id int) ([]string, model.DocumentStatus, error) {
	q, err := s.parser.Parse(rawQuery)
	if err != nil {
		return nil, model.StatusActive, err
	}

	s.documentStore.Mu.RLock()
	s.invertedIndex.Mu.RLock()
	defer s.documentStore.Mu.RUnlock()
	defer s.invertedIndex.Mu.RUnlock()

	status, err := s.documentStore.GetStatus(id)
	if err != nil {
		return nil, model.StatusActive, err
	}

	var matched []string
	termCount := len(q.PlusTerms) + len(q.MinusTerms)
	if policy == model.Parallel && termCount >= s.settings.Parallel.Threshold {
		matched, err = s.matchParallel(q, id)
		if err != nil {
			return nil, model.StatusActive, err
		}
	} else {
		matched = s.matchSequential(q, id)
	}
	return matched, status, nil
}

func (s *Service) matchSequential(q query.Query, id int) []string {
	matched := make([]string, 0)
	for _, term := range q.MinusTerms {
		if s.invertedIndex.Contains(term, id) {
			return matched
		}
	}
	for _, term := range q.PlusTerms {
		if s.invertedIndex.Contains(term, id) {
			matched = append(matched, term)
		}
	}
	return matched
}

// matchParallel checks disjoint chunks of the query terms concurrently. Workers only read
// the index; each writes its own result slot.
func (s *Service) matchParallel(q query.Query, id int) ([]string, error) {
	workers := s.settings.Parallel.Workers

	var excluded atomic.Bool
	err := workpool.ForEachChunk(q.MinusTerms, workers, func(_ int, chunk []string) error {
		for _, term := range chunk {
			if excluded.Load() {
				return nil
			}
			if s.invertedIndex.Contains(term, id) {
				excluded.Store(true)
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if excluded.Load() {
		return make([]string, 0), nil
	}

	chunks := workpool.Partition(q.PlusTerms, workers)
	found := make([][]string, len(chunks))
	err = workpool.ForEachChunk(q.PlusTerms, workers, func(chunkIndex int, chunk []string) error {
		for _, term := range chunk {
			if s.invertedIndex.Contains(term, id) {
				found[chunkIndex] = append(found[chunkIndex], term)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	matched := make([]string, 0)
	for _, terms := range found {
		matched = append(matched, terms...)
	}
	slices.Sort(matched)
	return slices.Compact(matched), nil
}

// GetWordFrequencies returns term -> TF for document id. An unknown id yields an empty map.
func (s *Service) GetWordFrequencies(id int) map[string]float64 {
	s.invertedIndex.Mu.RLock()
	defer s.invertedIndex.Mu.RUnlock()

	return s.invertedIndex.Frequencies(id)
}
