package store

import (
	"iter"
	"sort"
	"strings"
	"sync"

	"github.com/RoaringBitmap/roaring/v2/roaring64"

	searcherrors "github.com/gcbaptista/go-search-server/internal/errors"
	"github.com/gcbaptista/go-search-server/model"
)

// termSetSeparator cannot occur inside a validated term.
const termSetSeparator = "\x1f"

// DocumentStore owns every ingested document together with the live id set and the
// distinct-term set of each document used for duplicate detection.
//
// Methods do not lock; callers hold Mu.
type DocumentStore struct {
	Mu       sync.RWMutex
	Docs     map[int]model.Document
	ids      *roaring64.Bitmap // Live document ids, iterated in ascending order
	termSets map[int]map[string]struct{}
}

// NewDocumentStore creates an empty DocumentStore.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		Docs:     make(map[int]model.Document),
		ids:      roaring64.New(),
		termSets: make(map[int]map[string]struct{}),
	}
}

// ComputeAverageRating returns the integer average of ratings, truncated toward zero, or 0 when empty.
func ComputeAverageRating(ratings []int) int {
	if len(ratings) == 0 {
		return 0
	}
	sum := 0
	for _, rating := range ratings {
		sum += rating
	}
	return sum / len(ratings)
}

// Add stores doc and the distinct terms it was indexed under.
func (ds *DocumentStore) Add(doc model.Document, terms []string) error {
	if doc.ID < 0 {
		return searcherrors.NewNegativeIDError(doc.ID)
	}
	if ds.Contains(doc.ID) {
		return searcherrors.NewDuplicateIDError(doc.ID)
	}

	termSet := make(map[string]struct{}, len(terms))
	for _, term := range terms {
		termSet[term] = struct{}{}
	}

	ds.Docs[doc.ID] = doc
	ds.termSets[doc.ID] = termSet
	ds.ids.Add(uint64(doc.ID))
	return nil
}

// Remove deletes every trace of id. Unknown ids are ignored.
func (ds *DocumentStore) Remove(id int) {
	if !ds.Contains(id) {
		return
	}
	delete(ds.Docs, id)
	delete(ds.termSets, id)
	ds.ids.Remove(uint64(id))
}

// Contains reports whether id is live.
func (ds *DocumentStore) Contains(id int) bool {
	return id >= 0 && ds.ids.Contains(uint64(id))
}

// Get returns the document stored under id.
func (ds *DocumentStore) Get(id int) (model.Document, error) {
	doc, ok := ds.Docs[id]
	if !ok {
		return model.Document{}, searcherrors.NewDocumentNotFoundError(id)
	}
	return doc, nil
}

// GetStatus returns the status of document id.
func (ds *DocumentStore) GetStatus(id int) (model.DocumentStatus, error) {
	doc, err := ds.Get(id)
	if err != nil {
		return model.StatusActive, err
	}
	return doc.Status, nil
}

// GetRating returns the average rating of document id.
func (ds *DocumentStore) GetRating(id int) (int, error) {
	doc, err := ds.Get(id)
	if err != nil {
		return 0, err
	}
	return doc.Rating, nil
}

// Count returns the number of live documents.
func (ds *DocumentStore) Count() int {
	return int(ds.ids.GetCardinality())
}

// IDs returns the live ids in ascending order.
func (ds *DocumentStore) IDs() []int {
	raw := ds.ids.ToArray()
	ids := make([]int, len(raw))
	for i, id := range raw {
		ids[i] = int(id)
	}
	return ids
}

// All returns a restartable iterator over a snapshot of the live ids in ascending order.
func (ds *DocumentStore) All() iter.Seq[int] {
	snapshot := ds.ids.Clone()
	return func(yield func(int) bool) {
		it := snapshot.Iterator()
		for it.HasNext() {
			if !yield(int(it.Next())) {
				return
			}
		}
	}
}

// TermSet returns the distinct terms of document id in lexicographic order.
func (ds *DocumentStore) TermSet(id int) []string {
	termSet := ds.termSets[id]
	terms := make([]string, 0, len(termSet))
	for term := range termSet {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	return terms
}

// TermSetKey returns a canonical string for the distinct terms of document id.
// Two documents have equal keys exactly when their term sets are equal.
func (ds *DocumentStore) TermSetKey(id int) string {
	return strings.Join(ds.TermSet(id), termSetSeparator)
}
