package indexing

import (
	"fmt"

	"github.com/gcbaptista/go-search-server/config"
	"github.com/gcbaptista/go-search-server/index"
	searcherrors "github.com/gcbaptista/go-search-server/internal/errors"
	"github.com/gcbaptista/go-search-server/internal/tokenizer"
	"github.com/gcbaptista/go-search-server/internal/workpool"
	"github.com/gcbaptista/go-search-server/model"
	"github.com/gcbaptista/go-search-server/store"
)

// preparedDocument is a validated document whose term frequencies are already computed.
type preparedDocument struct {
	doc         model.Document
	frequencies map[string]float64
}

// AddDocuments ingests a batch of documents atomically: either every document is
// indexed or, on the first invalid one, none is.
// Tokenization runs outside the locks and is spread across workers once the batch
// reaches the parallel threshold.
func (s *Service) AddDocuments(docs []config.DocumentSpec) error {
	if len(docs) == 0 {
		return nil
	}

	if err := s.validateBatch(docs); err != nil {
		return err
	}

	prepared, err := s.prepareBatch(docs)
	if err != nil {
		return err
	}

	s.documentStore.Mu.Lock()
	s.invertedIndex.Mu.Lock()
	defer s.documentStore.Mu.Unlock()
	defer s.invertedIndex.Mu.Unlock()

	for i, p := range prepared {
		if s.documentStore.Contains(p.doc.ID) {
			s.metrics.RecordDocumentRejected(reasonDuplicateID)
			return batchError(i, p.doc.ID, searcherrors.NewDuplicateIDError(p.doc.ID))
		}
	}

	for i, p := range prepared {
		if err := s.invertedIndex.AddDocument(p.doc.ID, p.frequencies); err != nil {
			return batchError(i, p.doc.ID, err)
		}
		if err := s.documentStore.Add(p.doc, s.invertedIndex.Terms(p.doc.ID)); err != nil {
			s.invertedIndex.RemoveDocument(p.doc.ID)
			return batchError(i, p.doc.ID, err)
		}
		s.metrics.RecordDocumentAdded(s.documentStore.Count(), s.invertedIndex.TermCount())
	}
	return nil
}

// validateBatch checks every lock-free precondition, including ids repeated inside the batch.
func (s *Service) validateBatch(docs []config.DocumentSpec) error {
	seen := make(map[int]struct{}, len(docs))
	for i, doc := range docs {
		if doc.ID < 0 {
			s.metrics.RecordDocumentRejected(reasonNegativeID)
			return batchError(i, doc.ID, searcherrors.NewNegativeIDError(doc.ID))
		}
		if err := tokenizer.Validate(doc.Text); err != nil {
			s.metrics.RecordDocumentRejected(reasonInvalidCharacter)
			return batchError(i, doc.ID, err)
		}
		if _, dup := seen[doc.ID]; dup {
			s.metrics.RecordDocumentRejected(reasonDuplicateID)
			return batchError(i, doc.ID, searcherrors.NewDuplicateIDError(doc.ID))
		}
		seen[doc.ID] = struct{}{}
	}
	return nil
}

// prepareBatch computes term frequencies for docs. Each worker writes only the slots of its own chunk.
func (s *Service) prepareBatch(docs []config.DocumentSpec) ([]preparedDocument, error) {
	workers := 1
	if len(docs) >= s.parallel.Threshold {
		workers = s.parallel.Workers
	}

	positions := make([]int, len(docs))
	for i := range positions {
		positions[i] = i
	}

	prepared := make([]preparedDocument, len(docs))
	err := workpool.ForEachChunk(positions, workers, func(_ int, chunk []int) error {
		for _, i := range chunk {
			doc := docs[i]
			words := s.stopWords.SplitIntoWordsNoStop(doc.Text)
			prepared[i] = preparedDocument{
				doc: model.Document{
					ID:     doc.ID,
					Status: doc.Status,
					Rating: store.ComputeAverageRating(doc.Ratings),
					Text:   doc.Text,
				},
				frequencies: index.ComputeTermFrequencies(words),
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to prepare documents: %w", err)
	}
	return prepared, nil
}

func batchError(position, id int, err error) error {
	return fmt.Errorf("failed to add document #%d (id %d): %w", position, id, err)
}
