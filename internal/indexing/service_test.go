package indexing

import (
	"fmt"
	"math"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gcbaptista/go-search-server/config"
	"github.com/gcbaptista/go-search-server/index"
	searcherrors "github.com/gcbaptista/go-search-server/internal/errors"
	"github.com/gcbaptista/go-search-server/internal/metrics"
	"github.com/gcbaptista/go-search-server/internal/tokenizer"
	"github.com/gcbaptista/go-search-server/model"
	"github.com/gcbaptista/go-search-server/store"
)

// newTestService creates a service with "and in on the" as stop words.
func newTestService(t *testing.T, parallel config.ParallelSettings) (*Service, *index.InvertedIndex, *store.DocumentStore) {
	t.Helper()
	stopWords, err := tokenizer.ParseStopWords("and in on the")
	require.NoError(t, err)

	invIdx := index.NewInvertedIndex()
	docStore := store.NewDocumentStore()
	s, err := NewService(invIdx, docStore, stopWords, parallel, nil)
	require.NoError(t, err)
	return s, invIdx, docStore
}

func TestNewService(t *testing.T) {
	t.Run("valid initialization", func(t *testing.T) {
		_, err := NewService(index.NewInvertedIndex(), store.NewDocumentStore(), nil, config.ParallelSettings{}, nil)
		assert.NoError(t, err)
	})

	t.Run("nil inverted index", func(t *testing.T) {
		_, err := NewService(nil, store.NewDocumentStore(), nil, config.ParallelSettings{}, nil)
		assert.Error(t, err)
	})

	t.Run("nil document store", func(t *testing.T) {
		_, err := NewService(index.NewInvertedIndex(), nil, nil, config.ParallelSettings{}, nil)
		assert.Error(t, err)
	})
}

func TestAddDocument(t *testing.T) {
	s, invIdx, docStore := newTestService(t, config.ParallelSettings{})

	require.NoError(t, s.AddDocument(1, "white cat and fancy collar", model.StatusActive, []int{8, -3}))

	doc, err := docStore.Get(1)
	require.NoError(t, err)
	assert.Equal(t, 2, doc.Rating)
	assert.Equal(t, "white cat and fancy collar", doc.Text)
	assert.Equal(t, model.StatusActive, doc.Status)

	assert.Equal(t, []string{"cat", "collar", "fancy", "white"}, invIdx.Terms(1))
	assert.False(t, invIdx.Contains("and", 1), "stop words must not be indexed")
	assert.InDelta(t, 0.25, invIdx.Index["cat"][1], 1e-9)
	assert.NoError(t, invIdx.Verify())
}

func TestAddDocument_TermFrequencies(t *testing.T) {
	s, invIdx, _ := newTestService(t, config.ParallelSettings{})

	require.NoError(t, s.AddDocument(7, "fluffy cat fluffy tail", model.StatusActive, nil))

	frequencies := invIdx.Frequencies(7)
	assert.InDelta(t, 0.5, frequencies["fluffy"], 1e-9)
	assert.InDelta(t, 0.25, frequencies["cat"], 1e-9)

	sum := 0.0
	for _, tf := range frequencies {
		sum += tf
	}
	assert.InDelta(t, 1.0, sum, 1e-6)
}

func TestAddDocument_Errors(t *testing.T) {
	s, invIdx, docStore := newTestService(t, config.ParallelSettings{})
	require.NoError(t, s.AddDocument(1, "cat in house", model.StatusActive, []int{1}))

	tests := []struct {
		name    string
		id      int
		text    string
		wantErr error
	}{
		{"negative id", -1, "dog", searcherrors.ErrNegativeID},
		{"duplicate id", 1, "dog", searcherrors.ErrDuplicateID},
		{"control character", 2, "big do\x12g", searcherrors.ErrInvalidCharacter},
		{"control character with negative id", -4, "do\x01g", searcherrors.ErrNegativeID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.AddDocument(tt.id, tt.text, model.StatusActive, nil)
			assert.ErrorIs(t, err, tt.wantErr)

			assert.Equal(t, 1, docStore.Count(), "failed ingestion must not change the store")
			assert.Equal(t, 2, invIdx.TermCount(), "failed ingestion must not change the index")
			assert.False(t, invIdx.HasDocument(2))
		})
	}
}

func TestAddDocument_EmptyText(t *testing.T) {
	s, invIdx, docStore := newTestService(t, config.ParallelSettings{})

	require.NoError(t, s.AddDocument(3, "", model.StatusActive, nil))
	require.NoError(t, s.AddDocument(4, "in the on", model.StatusBanned, []int{2}))

	assert.Equal(t, 2, docStore.Count())
	assert.Empty(t, invIdx.Frequencies(3))
	assert.Empty(t, invIdx.Frequencies(4))
	assert.True(t, invIdx.HasDocument(4))
	assert.Zero(t, invIdx.TermCount())
}

func TestAddDocuments(t *testing.T) {
	tests := []struct {
		name     string
		existing []config.DocumentSpec
		batch    []config.DocumentSpec
		wantErr  error
	}{
		{
			name:    "id repeated inside the batch",
			batch:   []config.DocumentSpec{{ID: 1, Text: "cat"}, {ID: 2, Text: "dog"}, {ID: 1, Text: "bird"}},
			wantErr: searcherrors.ErrDuplicateID,
		},
		{
			name:     "id already indexed",
			existing: []config.DocumentSpec{{ID: 2, Text: "dog"}},
			batch:    []config.DocumentSpec{{ID: 1, Text: "cat"}, {ID: 2, Text: "bird"}},
			wantErr:  searcherrors.ErrDuplicateID,
		},
		{
			name:    "negative id",
			batch:   []config.DocumentSpec{{ID: 1, Text: "cat"}, {ID: -2, Text: "dog"}},
			wantErr: searcherrors.ErrNegativeID,
		},
		{
			name:    "control character",
			batch:   []config.DocumentSpec{{ID: 1, Text: "cat"}, {ID: 2, Text: "d\x0fog"}},
			wantErr: searcherrors.ErrInvalidCharacter,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, invIdx, docStore := newTestService(t, config.ParallelSettings{})
			require.NoError(t, s.AddDocuments(tt.existing))
			before := docStore.IDs()
			terms := invIdx.TermCount()

			err := s.AddDocuments(tt.batch)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, before, docStore.IDs(), "a failed batch must not add anything")
			assert.Equal(t, terms, invIdx.TermCount())
		})
	}
}

func TestAddDocuments_ParallelPreparation(t *testing.T) {
	docs := make([]config.DocumentSpec, 0, 40)
	for i := 0; i < 40; i++ {
		docs = append(docs, config.DocumentSpec{
			ID:      i,
			Text:    fmt.Sprintf("pet %d and rat %d and rat", i%7, i%3),
			Status:  model.StatusActive,
			Ratings: []int{i, 1},
		})
	}

	sequential, seqIdx, seqStore := newTestService(t, config.ParallelSettings{Workers: 1, Threshold: 1000})
	parallel, parIdx, parStore := newTestService(t, config.ParallelSettings{Workers: 4, Threshold: 1})
	require.NoError(t, sequential.AddDocuments(docs))
	require.NoError(t, parallel.AddDocuments(docs))

	assert.Equal(t, seqIdx.Index, parIdx.Index)
	assert.Equal(t, seqStore.Docs, parStore.Docs)
	assert.Equal(t, 40, parStore.Count())
	assert.NoError(t, parIdx.Verify())
}

func TestRemoveDocument(t *testing.T) {
	policies := []model.ExecutionPolicy{model.Sequential, model.Parallel}

	for _, policy := range policies {
		t.Run(policy.String(), func(t *testing.T) {
			s, invIdx, docStore := newTestService(t, config.ParallelSettings{Workers: 3, Threshold: 1})
			require.NoError(t, s.AddDocument(1, "cat in the house", model.StatusActive, nil))
			require.NoError(t, s.AddDocument(2, "dog outside the house", model.StatusActive, nil))

			require.NoError(t, s.RemoveDocument(policy, 2))

			assert.Equal(t, []int{1}, docStore.IDs())
			assert.False(t, invIdx.HasDocument(2))
			_, hasDog := invIdx.Postings("dog")
			assert.False(t, hasDog, "terms left without postings must be dropped")
			assert.Equal(t, 1, invIdx.DocumentFrequency("house"))
			assert.NoError(t, invIdx.Verify())

			_, err := docStore.GetStatus(2)
			assert.ErrorIs(t, err, searcherrors.ErrDocumentNotFound)
		})
	}
}

func TestRemoveDocument_UnknownIsNoop(t *testing.T) {
	s, invIdx, docStore := newTestService(t, config.ParallelSettings{Workers: 2, Threshold: 1})
	require.NoError(t, s.AddDocument(1, "cat", model.StatusActive, nil))

	assert.NoError(t, s.RemoveDocument(model.Sequential, 42))
	assert.NoError(t, s.RemoveDocument(model.Parallel, 42))
	assert.NoError(t, s.RemoveDocument(model.Sequential, -1))

	assert.Equal(t, 1, docStore.Count())
	assert.Equal(t, 1, invIdx.TermCount())
}

func TestRemoveDocument_RoundTrip(t *testing.T) {
	s, invIdx, docStore := newTestService(t, config.ParallelSettings{})
	require.NoError(t, s.AddDocument(1, "cat cat house", model.StatusActive, []int{5}))
	require.NoError(t, s.AddDocument(2, "dog house", model.StatusBanned, []int{1, 2}))

	before := invIdx.Frequencies(2)
	beforeDoc, err := docStore.Get(2)
	require.NoError(t, err)

	require.NoError(t, s.RemoveDocument(model.Sequential, 2))
	require.NoError(t, s.AddDocument(2, "dog house", model.StatusBanned, []int{1, 2}))

	assert.Equal(t, before, invIdx.Frequencies(2))
	afterDoc, err := docStore.Get(2)
	require.NoError(t, err)
	assert.Equal(t, beforeDoc, afterDoc)
	assert.Equal(t, 2, invIdx.DocumentFrequency("house"))
	assert.NoError(t, invIdx.Verify())
}

func TestRemoveDocument_ParallelMatchesSequential(t *testing.T) {
	text := "alpha beta gamma delta epsilon zeta eta theta iota kappa lambda mu"

	sequential, seqIdx, _ := newTestService(t, config.ParallelSettings{})
	parallel, parIdx, _ := newTestService(t, config.ParallelSettings{Workers: 4, Threshold: 2})
	for _, s := range []*Service{sequential, parallel} {
		require.NoError(t, s.AddDocument(1, text, model.StatusActive, nil))
		require.NoError(t, s.AddDocument(2, "alpha omega mu", model.StatusActive, nil))
	}

	require.NoError(t, sequential.RemoveDocument(model.Sequential, 1))
	require.NoError(t, parallel.RemoveDocument(model.Parallel, 1))

	assert.Equal(t, seqIdx.Index, parIdx.Index)
	assert.NoError(t, parIdx.Verify())
}

func TestService_Metrics(t *testing.T) {
	stopWords, err := tokenizer.ParseStopWords("in")
	require.NoError(t, err)
	m := metrics.New(prometheus.NewRegistry())
	s, err := NewService(index.NewInvertedIndex(), store.NewDocumentStore(), stopWords, config.ParallelSettings{}, m)
	require.NoError(t, err)

	require.NoError(t, s.AddDocument(1, "cat in house", model.StatusActive, nil))
	require.NoError(t, s.AddDocument(2, "dog", model.StatusActive, nil))
	assert.Error(t, s.AddDocument(2, "dog", model.StatusActive, nil))
	require.NoError(t, s.RemoveDocument(model.Sequential, 2))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.DocumentsAddedTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DocumentsRejectedTotal.WithLabelValues(reasonDuplicateID)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DocumentsRemovedTotal.WithLabelValues("sequential")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LiveDocuments))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.IndexedTerms))
}

func TestComputeAverageRatingTruncates(t *testing.T) {
	s, _, docStore := newTestService(t, config.ParallelSettings{})
	require.NoError(t, s.AddDocument(1, "cat", model.StatusActive, []int{-7, 2}))

	rating, err := docStore.GetRating(1)
	require.NoError(t, err)
	assert.Equal(t, int(math.Trunc(-5.0/2.0)), rating)
}
