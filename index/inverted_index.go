package index

import (
	"fmt"
	"sort"
	"sync"

	searcherrors "github.com/gcbaptista/go-search-server/internal/errors"
	"github.com/gcbaptista/go-search-server/internal/workpool"
)

// InvertedIndex maps a term to the documents containing it together with the term's TF.
//
// The term -> posting list map is the only place TF values are stored. The per-document
// view (document -> term -> TF) is derived from it through docTerms, which records
// which terms each document was indexed under. Both directions therefore agree by construction.
//
// Methods do not lock; callers hold Mu (read lock for lookups, write lock for mutation).
type InvertedIndex struct {
	Mu       sync.RWMutex
	Index    map[string]PostingList
	docTerms map[int][]string // Sorted distinct terms per indexed document
}

// NewInvertedIndex creates an empty InvertedIndex.
func NewInvertedIndex() *InvertedIndex {
	return &InvertedIndex{
		Index:    make(map[string]PostingList),
		docTerms: make(map[int][]string),
	}
}

// ComputeTermFrequencies returns occurrences/len(words) for every distinct word.
// An empty input yields an empty map rather than dividing by zero.
func ComputeTermFrequencies(words []string) map[string]float64 {
	frequencies := make(map[string]float64)
	if len(words) == 0 {
		return frequencies
	}
	invWordCount := 1.0 / float64(len(words))
	for _, word := range words {
		frequencies[word] += invWordCount
	}
	return frequencies
}

// AddDocument inserts docID into the posting list of every term in frequencies.
// A document id may be indexed only once while it is live.
func (ii *InvertedIndex) AddDocument(docID int, frequencies map[string]float64) error {
	if _, exists := ii.docTerms[docID]; exists {
		return searcherrors.NewDuplicateIDError(docID)
	}

	terms := make([]string, 0, len(frequencies))
	for term, tf := range frequencies {
		postingList, ok := ii.Index[term]
		if !ok {
			postingList = make(PostingList)
			ii.Index[term] = postingList
		}
		postingList[docID] = tf
		terms = append(terms, term)
	}
	sort.Strings(terms)
	ii.docTerms[docID] = terms
	return nil
}

// Postings returns the live posting list for term. Callers must not modify it.
func (ii *InvertedIndex) Postings(term string) (PostingList, bool) {
	postingList, ok := ii.Index[term]
	return postingList, ok
}

// DocumentFrequency returns the number of documents containing term.
func (ii *InvertedIndex) DocumentFrequency(term string) int {
	return len(ii.Index[term])
}

// Contains reports whether docID has a posting for term.
func (ii *InvertedIndex) Contains(term string, docID int) bool {
	_, ok := ii.Index[term][docID]
	return ok
}

// HasDocument reports whether docID is indexed, even with zero terms.
func (ii *InvertedIndex) HasDocument(docID int) bool {
	_, ok := ii.docTerms[docID]
	return ok
}

// TermCount returns the number of distinct terms in the index.
func (ii *InvertedIndex) TermCount() int {
	return len(ii.Index)
}

// Terms returns a copy of the sorted distinct terms docID was indexed under.
func (ii *InvertedIndex) Terms(docID int) []string {
	terms := ii.docTerms[docID]
	result := make([]string, len(terms))
	copy(result, terms)
	return result
}

// Frequencies returns term -> TF for docID, grouped from the posting lists.
// An unknown document yields an empty map.
func (ii *InvertedIndex) Frequencies(docID int) map[string]float64 {
	terms := ii.docTerms[docID]
	frequencies := make(map[string]float64, len(terms))
	for _, term := range terms {
		frequencies[term] = ii.Index[term][docID]
	}
	return frequencies
}

// RemoveDocument drops docID from the posting list of each of its terms and deletes
// terms whose posting list becomes empty. Cost is proportional to the document's term count.
// Removing an unknown id is a no-op.
func (ii *InvertedIndex) RemoveDocument(docID int) {
	terms, ok := ii.docTerms[docID]
	if !ok {
		return
	}
	for _, term := range terms {
		postingList := ii.Index[term]
		delete(postingList, docID)
		if len(postingList) == 0 {
			delete(ii.Index, term)
		}
	}
	delete(ii.docTerms, docID)
}

// RemoveDocumentParallel behaves like RemoveDocument but spreads the document's terms
// across workers. Each worker mutates only the posting lists of its own terms; the term
// map itself is only read by workers and is pruned afterwards on the calling goroutine.
func (ii *InvertedIndex) RemoveDocumentParallel(docID int, workers int) error {
	terms, ok := ii.docTerms[docID]
	if !ok {
		return nil
	}

	err := workpool.ForEachChunk(terms, workers, func(_ int, chunk []string) error {
		for _, term := range chunk {
			delete(ii.Index[term], docID)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to remove postings of document %d: %w", docID, err)
	}

	for _, term := range terms {
		if len(ii.Index[term]) == 0 {
			delete(ii.Index, term)
		}
	}
	delete(ii.docTerms, docID)
	return nil
}

// Verify checks that both directions of the index agree and that no term has an empty
// posting list. It is meant for tests and diagnostics. Within a term, the lowest
// inconsistent document id is reported.
func (ii *InvertedIndex) Verify() error {
	for term, postingList := range ii.Index {
		if len(postingList) == 0 {
			return fmt.Errorf("term %q has an empty posting list", term)
		}
		for _, docID := range postingList.DocIDs() {
			terms := ii.docTerms[docID]
			pos := sort.SearchStrings(terms, term)
			if pos == len(terms) || terms[pos] != term {
				return fmt.Errorf("term %q lists document %d, which is not indexed under it", term, docID)
			}
		}
	}
	for docID, terms := range ii.docTerms {
		for _, term := range terms {
			if _, ok := ii.Index[term][docID]; !ok {
				return fmt.Errorf("document %d is indexed under %q, which has no posting for it", docID, term)
			}
		}
	}
	return nil
}
