package indexing

import (
	"github.com/gcbaptista/go-search-server/model"
)

// FindDuplicates returns, in ascending order, the ids of documents whose distinct-term set
// equals that of a document with a smaller id. The first holder of a term set is never reported.
func (s *Service) FindDuplicates() []int {
	s.documentStore.Mu.RLock()
	defer s.documentStore.Mu.RUnlock()

	return s.findDuplicatesUnsafe()
}

func (s *Service) findDuplicatesUnsafe() []int {
	duplicates := make([]int, 0)
	seen := make(map[string]struct{})
	for id := range s.documentStore.All() {
		key := s.documentStore.TermSetKey(id)
		if _, ok := seen[key]; ok {
			duplicates = append(duplicates, id)
			continue
		}
		seen[key] = struct{}{}
	}
	return duplicates
}

// RemoveDuplicates removes every document FindDuplicates reports and returns the removed ids
// so the caller can report them. Detection and removal happen under one write lock.
func (s *Service) RemoveDuplicates() ([]int, error) {
	s.documentStore.Mu.Lock()
	s.invertedIndex.Mu.Lock()
	defer s.documentStore.Mu.Unlock()
	defer s.invertedIndex.Mu.Unlock()

	duplicates := s.findDuplicatesUnsafe()
	removed := make([]int, 0, len(duplicates))
	for _, id := range duplicates {
		ok, err := s.removeDocumentUnsafe(model.Sequential, id)
		if err != nil {
			return removed, err
		}
		if ok {
			removed = append(removed, id)
			s.metrics.RecordDocumentRemoved(model.Sequential.String(), s.documentStore.Count(), s.invertedIndex.TermCount())
		}
	}
	s.metrics.RecordDuplicatesRemoved(len(removed))
	return removed, nil
}
