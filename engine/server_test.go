package engine_test

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gcbaptista/go-search-server/config"
	"github.com/gcbaptista/go-search-server/engine"
	testutils "github.com/gcbaptista/go-search-server/internal/testing"
	"github.com/gcbaptista/go-search-server/model"
)

func TestNewServer(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		server := testutils.CreateTestServer(t, config.ServerSettings{})
		settings := server.Settings()
		assert.Equal(t, config.DefaultMaxResultDocumentCount, settings.MaxResultDocumentCount)
		assert.Empty(t, settings.StopWords)
		assert.Zero(t, server.GetDocumentCount())
	})

	t.Run("stop word with control character", func(t *testing.T) {
		_, err := engine.NewServer(config.ServerSettings{StopWords: []string{"in", "o\x02n"}})
		assert.ErrorIs(t, err, engine.ErrInvalidCharacter)
		assert.NotErrorIs(t, err, engine.ErrInvalidInput)

		_, err = engine.NewServer(config.ServerSettings{StopWords: []string{"o\x02n"}, MaxResultDocumentCount: -1})
		assert.ErrorIs(t, err, engine.ErrInvalidCharacter)
	})

	t.Run("invalid settings", func(t *testing.T) {
		_, err := engine.NewServer(config.ServerSettings{MaxResultDocumentCount: -5})
		assert.ErrorIs(t, err, engine.ErrInvalidInput)
	})

	t.Run("stop words from text", func(t *testing.T) {
		server, err := engine.NewServerFromStopWordsText("  with and  with ")
		require.NoError(t, err)
		assert.Equal(t, []string{"and", "with"}, server.Settings().StopWords)

		_, err = engine.NewServerFromStopWordsText("and \x10with")
		assert.ErrorIs(t, err, engine.ErrInvalidCharacter)
	})

	t.Run("settings are copied", func(t *testing.T) {
		server := testutils.CreateTestServer(t, config.ServerSettings{StopWords: []string{"in"}})
		settings := server.Settings()
		settings.StopWords[0] = "changed"
		assert.Equal(t, []string{"in"}, server.Settings().StopWords)
	})
}

func TestServer_Introspection(t *testing.T) {
	server := testutils.CreateReferenceServer(t)

	assert.Equal(t, len(testutils.ReferenceDocuments), server.GetDocumentCount())
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9}, server.DocumentIDs())

	ids := server.IDs()
	first := slices.Collect(ids)
	second := slices.Collect(ids)
	assert.Equal(t, server.DocumentIDs(), first)
	assert.Equal(t, first, second, "iteration must be restartable")

	frequencies := server.GetWordFrequencies(8)
	assert.InDelta(t, 0.25, frequencies["pet"], 1e-9)
	assert.InDelta(t, 0.75, frequencies["rat"], 1e-9)
	assert.Empty(t, server.GetWordFrequencies(100))
}

func TestServer_ReferenceQueries(t *testing.T) {
	t.Run("minus terms", func(t *testing.T) {
		server := testutils.CreateTestServer(t, config.ServerSettings{})
		ratings := []int{4, 5, 1}
		require.NoError(t, server.AddDocument(1, "cat in house", model.StatusActive, ratings))
		require.NoError(t, server.AddDocument(2, "dog outside the house", model.StatusActive, ratings))
		require.NoError(t, server.AddDocument(3, "bird sitting in the house", model.StatusActive, ratings))

		results, err := server.FindTopDocuments("-in -on house")
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, 2, results[0].ID)
		assert.Equal(t, 3, results[0].Rating)
	})

	t.Run("status filter", func(t *testing.T) {
		server := testutils.CreateTestServer(t, config.ServerSettings{StopWords: []string{"in", "the"}})
		testutils.AddTestDocuments(t, server, []config.DocumentSpec{
			{ID: 1, Text: "cat in house", Status: model.StatusActive, Ratings: []int{9}},
			{ID: 2, Text: "dog outside the house", Status: model.StatusBanned, Ratings: []int{5}},
			{ID: 3, Text: "bird sitting in the house", Status: model.StatusBanned, Ratings: []int{1}},
			{ID: 4, Text: "cat laying", Status: model.StatusIrrelevant, Ratings: []int{3}},
		})

		results, err := server.FindTopDocumentsByStatus("cat laying in the house", model.StatusBanned)
		require.NoError(t, err)
		assert.Equal(t, []int{2, 3}, testutils.DocumentIDs(results))
		for _, result := range results {
			_, status, err := server.MatchDocument("house", result.ID)
			require.NoError(t, err)
			assert.Equal(t, model.StatusBanned, status)
		}

		results, err = server.FindTopDocumentsByStatus("cat laying in the house", model.StatusIrrelevant)
		require.NoError(t, err)
		assert.Equal(t, []int{4}, testutils.DocumentIDs(results))

		results, err = server.FindTopDocuments("cat laying in the house")
		require.NoError(t, err)
		assert.Equal(t, []int{1}, testutils.DocumentIDs(results))
	})

	t.Run("ranking and limit", func(t *testing.T) {
		server := testutils.CreateReferenceServer(t)

		results, err := server.FindTopDocuments("funny pet curly")
		require.NoError(t, err)
		assert.Len(t, results, config.DefaultMaxResultDocumentCount)
		testutils.AssertRanked(t, results, config.DefaultRelevanceEpsilon)
		assert.NotContains(t, testutils.DocumentIDs(results), 7, "banned documents are excluded by default")
	})

	t.Run("predicate", func(t *testing.T) {
		server := testutils.CreateReferenceServer(t)

		results, err := server.FindTopDocumentsFunc("rat", func(id int, _ model.DocumentStatus, _ int) bool {
			return id > 6
		})
		require.NoError(t, err)
		assert.ElementsMatch(t, []int{7, 8, 9}, testutils.DocumentIDs(results))

		_, err = server.FindTopDocumentsFunc("rat", nil)
		assert.ErrorIs(t, err, engine.ErrInvalidInput)
	})
}

func TestServer_MatchDocument(t *testing.T) {
	server := testutils.CreateReferenceServer(t)
	policies := []model.ExecutionPolicy{model.Sequential, model.Parallel}

	for _, policy := range policies {
		t.Run(policy.String(), func(t *testing.T) {
			terms, status, err := server.MatchDocumentPolicy(policy, "rat nasty funny", 8)
			require.NoError(t, err)
			assert.Equal(t, []string{"rat"}, terms)
			assert.Equal(t, model.StatusActive, status)

			terms, _, err = server.MatchDocumentPolicy(policy, "pet -curly", 2)
			require.NoError(t, err)
			assert.Empty(t, terms)

			_, status, err = server.MatchDocumentPolicy(policy, "pet", 7)
			require.NoError(t, err)
			assert.Equal(t, model.StatusBanned, status)

			_, _, err = server.MatchDocumentPolicy(policy, "pet", 70)
			assert.ErrorIs(t, err, engine.ErrDocumentNotFound)
		})
	}
}

func TestServer_InvalidInputLeavesStateUntouched(t *testing.T) {
	server := testutils.CreateReferenceServer(t)
	before := server.GetWordFrequencies(1)

	err := server.AddDocument(10, "nasty \x03rat", model.StatusActive, nil)
	assert.ErrorIs(t, err, engine.ErrInvalidCharacter)
	err = server.AddDocument(1, "new text", model.StatusActive, nil)
	assert.ErrorIs(t, err, engine.ErrDuplicateID)
	err = server.AddDocument(-1, "new text", model.StatusActive, nil)
	assert.ErrorIs(t, err, engine.ErrNegativeID)

	_, err = server.FindTopDocuments("ra\x05t")
	assert.ErrorIs(t, err, engine.ErrInvalidCharacter)
	_, err = server.FindTopDocuments("rat --pet")
	assert.ErrorIs(t, err, engine.ErrDoubleMinus)
	_, err = server.FindTopDocuments("rat -")
	assert.ErrorIs(t, err, engine.ErrEmptyMinusTerm)

	assert.Equal(t, len(testutils.ReferenceDocuments), server.GetDocumentCount())
	assert.Equal(t, before, server.GetWordFrequencies(1))
	assert.Empty(t, server.GetWordFrequencies(10))
}

func TestServer_RemoveDocument(t *testing.T) {
	server := testutils.CreateReferenceServer(t)

	server.RemoveDocument(100)
	assert.Equal(t, len(testutils.ReferenceDocuments), server.GetDocumentCount())

	before := server.GetWordFrequencies(9)
	server.RemoveDocument(9)
	assert.Empty(t, server.GetWordFrequencies(9))
	assert.NotContains(t, server.DocumentIDs(), 9)

	require.NoError(t, server.AddDocument(9, "nasty rat with curly hair", model.StatusActive, []int{1, 2}))
	assert.Equal(t, before, server.GetWordFrequencies(9))

	require.NoError(t, server.RemoveDocumentPolicy(model.Parallel, 6))
	require.NoError(t, server.RemoveDocumentPolicy(model.Parallel, 6))
	assert.NotContains(t, server.DocumentIDs(), 6)
}

func TestServer_Duplicates(t *testing.T) {
	server := testutils.CreateReferenceServer(t)

	assert.Equal(t, []int{3, 4, 5, 7}, server.FindDuplicates())

	removed, err := server.RemoveDuplicates()
	require.NoError(t, err)
	assert.Equal(t, []int{3, 4, 5, 7}, removed)
	assert.Equal(t, []int{1, 2, 6, 8, 9}, server.DocumentIDs())
	assert.Empty(t, server.FindDuplicates())
}

func TestServer_ProcessQueries(t *testing.T) {
	server := testutils.CreateReferenceServer(t)
	queries := []string{"nasty rat -not", "not very funny nasty pet", "curly hair"}

	perQuery, err := server.ProcessQueries(queries)
	require.NoError(t, err)
	require.Len(t, perQuery, len(queries))

	total := 0
	for i, results := range perQuery {
		expected, err := server.FindTopDocuments(queries[i])
		require.NoError(t, err)
		assert.Equal(t, expected, results)
		total += len(results)
	}

	joined, err := server.ProcessQueriesJoined(queries)
	require.NoError(t, err)
	assert.Len(t, joined, total)
	assert.Equal(t, slices.Concat(perQuery...), joined)

	_, err = server.ProcessQueries([]string{"rat", "rat --x"})
	assert.ErrorIs(t, err, engine.ErrDoubleMinus)
}

func TestServer_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	server := testutils.CreateReferenceServer(t, engine.WithMetrics(reg))

	_, err := server.RemoveDuplicates()
	require.NoError(t, err)

	expected := `
# HELP search_server_live_documents Number of live documents.
# TYPE search_server_live_documents gauge
search_server_live_documents 5
# HELP search_server_duplicates_removed_total Total number of documents removed as duplicates.
# TYPE search_server_duplicates_removed_total counter
search_server_duplicates_removed_total 4
`
	err = testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"search_server_live_documents", "search_server_duplicates_removed_total")
	assert.NoError(t, err)
}

func TestServer_ConcurrentReaders(t *testing.T) {
	server := testutils.CreateReferenceServer(t)

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				_, err := server.FindTopDocuments("funny nasty rat")
				assert.NoError(t, err)
				_, _, err = server.MatchDocument("rat", 1)
				assert.NoError(t, err)
			}
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for id := 100; id < 150; id++ {
			assert.NoError(t, server.AddDocument(id, fmt.Sprintf("rat number %d", id), model.StatusActive, nil))
		}
	}()
	wg.Wait()

	assert.Equal(t, len(testutils.ReferenceDocuments)+50, server.GetDocumentCount())
}
