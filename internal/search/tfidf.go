package search

import (
	"math"

	"github.com/gcbaptista/go-search-server/index"
	"github.com/gcbaptista/go-search-server/store"
)

// TFIDFCalculator handles TF-IDF score calculations.
// Callers hold read locks on both structures.
type TFIDFCalculator struct {
	invertedIndex *index.InvertedIndex
	documentStore *store.DocumentStore
}

// NewTFIDFCalculator creates a new TF-IDF calculator
func NewTFIDFCalculator(invIndex *index.InvertedIndex, docStore *store.DocumentStore) *TFIDFCalculator {
	return &TFIDFCalculator{
		invertedIndex: invIndex,
		documentStore: docStore,
	}
}

// IDF calculates the inverse document frequency
// IDF = ln(N / df) where N = live documents, df = documents containing term.
// A term without postings has no defined IDF and yields 0.
func (calc *TFIDFCalculator) IDF(term string) float64 {
	totalDocs := calc.documentStore.Count()
	if totalDocs == 0 {
		return 0.0
	}

	docFreq := calc.invertedIndex.DocumentFrequency(term)
	if docFreq == 0 {
		return 0.0
	}

	return math.Log(float64(totalDocs) / float64(docFreq))
}

// Score returns the contribution of one term occurrence to a document's relevance.
func (calc *TFIDFCalculator) Score(tf, idf float64) float64 {
	return tf * idf
}
