// Package testing provides utilities and helpers for testing the search server.
package testing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gcbaptista/go-search-server/config"
	"github.com/gcbaptista/go-search-server/engine"
	"github.com/gcbaptista/go-search-server/model"
)

// ReferenceStopWords are the stop words used with ReferenceDocuments.
const ReferenceStopWords = "and with"

// ReferenceDocuments is a small corpus in which ids 3, 4, 5 and 7 repeat the term set of an
// earlier document. Document 7 is banned.
var ReferenceDocuments = []config.DocumentSpec{
	{ID: 1, Text: "funny pet and nasty rat", Status: model.StatusActive, Ratings: []int{7, 2, 7}},
	{ID: 2, Text: "funny pet with curly hair", Status: model.StatusActive, Ratings: []int{1, 2}},
	{ID: 3, Text: "funny pet with curly hair", Status: model.StatusActive, Ratings: []int{1, 2}},
	{ID: 4, Text: "funny pet and curly hair", Status: model.StatusActive, Ratings: []int{1, 2}},
	{ID: 5, Text: "funny funny pet and nasty nasty rat", Status: model.StatusActive, Ratings: []int{1, 2}},
	{ID: 6, Text: "funny pet and not very nasty rat", Status: model.StatusActive, Ratings: []int{1, 2}},
	{ID: 7, Text: "very nasty rat and not very funny pet", Status: model.StatusBanned, Ratings: []int{1, 2}},
	{ID: 8, Text: "pet with rat and rat and rat", Status: model.StatusActive, Ratings: []int{1, 2}},
	{ID: 9, Text: "nasty rat with curly hair", Status: model.StatusActive, Ratings: []int{1, 2}},
}

// CreateTestServer creates a server with the given settings, failing the test on error.
func CreateTestServer(t *testing.T, settings config.ServerSettings, opts ...engine.Option) *engine.Server {
	t.Helper()
	server, err := engine.NewServer(settings, opts...)
	require.NoError(t, err, "Failed to create test server")
	return server
}

// CreateReferenceServer creates a server holding ReferenceDocuments.
func CreateReferenceServer(t *testing.T, opts ...engine.Option) *engine.Server {
	t.Helper()
	server, err := engine.NewServerFromStopWordsText(ReferenceStopWords, opts...)
	require.NoError(t, err, "Failed to create reference server")
	AddTestDocuments(t, server, ReferenceDocuments)
	return server
}

// AddTestDocuments ingests docs, failing the test on the first error.
func AddTestDocuments(t *testing.T, server *engine.Server, docs []config.DocumentSpec) {
	t.Helper()
	require.NoError(t, server.AddDocuments(docs), "Failed to add test documents")
}

// AssertRanked checks that results are ordered by relevance descending, ties by rating descending.
func AssertRanked(t *testing.T, results []model.ScoredDocument, epsilon float64) {
	t.Helper()
	for i := 1; i < len(results); i++ {
		prev, cur := results[i-1], results[i]
		if prev.Relevance-cur.Relevance < epsilon && cur.Relevance-prev.Relevance < epsilon {
			assert.GreaterOrEqual(t, prev.Rating, cur.Rating, "tie at position %d must be ordered by rating", i)
			continue
		}
		assert.Greater(t, prev.Relevance, cur.Relevance, "position %d is out of order", i)
	}
}

// DocumentIDs extracts the ids of results in order.
func DocumentIDs(results []model.ScoredDocument) []int {
	ids := make([]int, len(results))
	for i, doc := range results {
		ids[i] = doc.ID
	}
	return ids
}
