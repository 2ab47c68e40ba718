package search

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/interviewkit/retriever/ai"
	"github.com/interviewkit/retriever/ai/mock"
	"github.com/interviewkit/retriever/core"
	"github.com/interviewkit/retriever/storage"
	"github.com/interviewkit/retriever/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedStore commits documents in a single generation, embedding them with
// the same deterministic vectors the mock embedder produces.
func seedStore(t *testing.T, store storage.VectorStore, docs map[string]string) {
	t.Helper()
	ctx := context.Background()

	staging, err := store.Begin(ctx)
	require.NoError(t, err)

	for id, text := range docs {
		err := staging.Upsert(ctx, storage.Item{
			ID:     id,
			Vector: mock.DeterministicVector(text, 384),
			Text:   text,
			Kind:   core.KindQA,
			Hash:   core.HashContent(text),
		})
		require.NoError(t, err)
	}
	require.NoError(t, staging.Commit(ctx))
}

func TestNewRetriever(t *testing.T) {
	store, err := badger.NewMemoryStore()
	require.NoError(t, err)
	defer store.Close()

	provider := mock.NewMockProvider()

	t.Run("valid configuration", func(t *testing.T) {
		r, err := NewRetriever(store, provider)
		require.NoError(t, err)
		assert.NotNil(t, r)
	})

	t.Run("with custom logger", func(t *testing.T) {
		r, err := NewRetriever(store, provider, WithLogger(slog.Default()))
		require.NoError(t, err)
		assert.NotNil(t, r)
	})

	t.Run("with nil logger falls back to default", func(t *testing.T) {
		r, err := NewRetriever(store, provider, WithLogger(nil))
		require.NoError(t, err)
		assert.NotNil(t, r)
	})

	t.Run("nil store", func(t *testing.T) {
		_, err := NewRetriever(nil, provider)
		assert.Equal(t, ErrVectorStoreRequired, err)
	})

	t.Run("nil provider", func(t *testing.T) {
		_, err := NewRetriever(store, nil)
		assert.Equal(t, ErrAIProviderRequired, err)
	})

	t.Run("semantic weight out of range", func(t *testing.T) {
		_, err := NewRetriever(store, provider, WithSemanticWeight(1.5))
		assert.Equal(t, ErrInvalidSemanticWeight, err)
	})

	t.Run("nil reranker", func(t *testing.T) {
		_, err := NewRetriever(store, provider, WithReranker(nil))
		assert.Equal(t, ErrRerankerRequired, err)
	})
}

func TestRetrieve_EmptyStore(t *testing.T) {
	store, err := badger.NewMemoryStore()
	require.NoError(t, err)
	defer store.Close()

	r, err := NewRetriever(store, mock.NewMockProvider())
	require.NoError(t, err)

	result, err := r.Retrieve(context.Background(), "goroutine leak", 20, 5)
	require.NoError(t, err)
	assert.Equal(t, "goroutine leak", result.Query)
	assert.Empty(t, result.Candidates)
}

func TestRetrieve_SkipsPipelineForBlankInput(t *testing.T) {
	store, err := badger.NewMemoryStore()
	require.NoError(t, err)
	defer store.Close()

	embedder := mock.NewMockEmbedder()
	r, err := NewRetriever(store, mock.NewMockProviderWithEmbedder(embedder))
	require.NoError(t, err)

	ctx := context.Background()

	t.Run("blank query", func(t *testing.T) {
		result, err := r.Retrieve(ctx, "   ", 20, 5)
		require.NoError(t, err)
		assert.Empty(t, result.Candidates)
		assert.Zero(t, embedder.CallCount())
	})

	t.Run("non-positive finalN", func(t *testing.T) {
		result, err := r.Retrieve(ctx, "goroutine", 20, 0)
		require.NoError(t, err)
		assert.Empty(t, result.Candidates)
		assert.Zero(t, embedder.CallCount())
	})
}

func TestRetrieve_EmbeddingFailureIsFatal(t *testing.T) {
	store, err := badger.NewMemoryStore()
	require.NoError(t, err)
	defer store.Close()

	seedStore(t, store, map[string]string{"qa:1": "goroutine leak detection"})

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, ai.ErrEmbeddingUnavailable
	}

	r, err := NewRetriever(store, mock.NewMockProviderWithEmbedder(embedder))
	require.NoError(t, err)

	result, err := r.Retrieve(context.Background(), "goroutine", 20, 5)
	assert.Nil(t, result)
	assert.True(t, errors.Is(err, ai.ErrEmbeddingUnavailable))
}

func TestRetrieve_LexicalRerankWins(t *testing.T) {
	store, err := badger.NewMemoryStore()
	require.NoError(t, err)
	defer store.Close()

	seedStore(t, store, map[string]string{
		"qa:1":    "reward shaping changes the reward function to guide learning",
		"note:2":  "dynamic programming splits problems into overlapping subproblems",
		"qa:3":    "q-learning updates action values from observed transitions",
		"note:4":  "tcp congestion control uses slow start and fast recovery",
		"query:5": "how does garbage collection work in go",
	})

	r, err := NewRetriever(store, mock.NewMockProvider())
	require.NoError(t, err)

	result, err := r.Retrieve(context.Background(), "reward shaping", 10, 3)
	require.NoError(t, err)
	require.NotEmpty(t, result.Candidates)

	// The document containing both query terms outranks everything the
	// vector recall surfaced.
	assert.Equal(t, "qa:1", result.Candidates[0].DocumentID)
	assert.Greater(t, result.Candidates[0].LexicalScore, 0.0)
	assert.LessOrEqual(t, len(result.Candidates), 3)

	for i, c := range result.Candidates {
		assert.Equal(t, i+1, c.FinalRank)
	}
}

func TestRetrieve_Deterministic(t *testing.T) {
	store, err := badger.NewMemoryStore()
	require.NoError(t, err)
	defer store.Close()

	seedStore(t, store, map[string]string{
		"qa:1":   "binary search bisects a sorted slice",
		"qa:2":   "binary trees support ordered traversal",
		"note:3": "hash maps trade order for constant lookups",
	})

	r, err := NewRetriever(store, mock.NewMockProvider())
	require.NoError(t, err)

	ctx := context.Background()
	first, err := r.Retrieve(ctx, "binary search", 10, 3)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		again, err := r.Retrieve(ctx, "binary search", 10, 3)
		require.NoError(t, err)
		assert.Equal(t, first.DocumentIDs(), again.DocumentIDs())
	}
}

func TestRetrieve_SmallerFinalNIsPrefix(t *testing.T) {
	store, err := badger.NewMemoryStore()
	require.NoError(t, err)
	defer store.Close()

	seedStore(t, store, map[string]string{
		"qa:1":   "goroutine scheduling across processor queues",
		"qa:2":   "goroutine leaks from unbuffered channels",
		"note:3": "scheduling fairness under work stealing",
		"qa:4":   "channel select with default is non-blocking",
		"note:5": "mutex contention shows up in block profiles",
		"qa:6":   "context cancellation propagates to children",
	})

	r, err := NewRetriever(store, mock.NewMockProvider())
	require.NoError(t, err)

	ctx := context.Background()

	// semanticK held above every finalN so both calls rank the same
	// candidate set and truncation is the only difference.
	narrow, err := r.Retrieve(ctx, "goroutine scheduling", 10, 2)
	require.NoError(t, err)
	wide, err := r.Retrieve(ctx, "goroutine scheduling", 10, 4)
	require.NoError(t, err)

	require.Len(t, narrow.Candidates, 2)
	require.Len(t, wide.Candidates, 4)
	assert.Equal(t, narrow.DocumentIDs(), wide.DocumentIDs()[:2])
}

func TestRetrieve_MoreSpecificQueryKeepsTarget(t *testing.T) {
	store, err := badger.NewMemoryStore()
	require.NoError(t, err)
	defer store.Close()

	seedStore(t, store, map[string]string{
		"qa:1":   "binary search tree rotations keep the tree balanced",
		"qa:2":   "linked list reversal with three pointers",
		"note:3": "sorting stability matters for compound keys",
	})

	r, err := NewRetriever(store, mock.NewMockProvider())
	require.NoError(t, err)

	ctx := context.Background()

	rankOf := func(query string) int {
		result, err := r.Retrieve(ctx, query, 10, 3)
		require.NoError(t, err)
		for _, c := range result.Candidates {
			if c.DocumentID == "qa:1" {
				return c.FinalRank
			}
		}
		return len(result.Candidates) + 1
	}

	broad := rankOf("binary")
	specific := rankOf("binary search tree")
	assert.LessOrEqual(t, specific, broad)
}

func TestRetrieve_SemanticWeightBlending(t *testing.T) {
	store, err := badger.NewMemoryStore()
	require.NoError(t, err)
	defer store.Close()

	docs := map[string]string{
		"qa:1":   "goroutine scheduling and the GMP model",
		"qa:2":   "channel deadlocks and select statements",
		"note:3": "interface satisfaction is structural",
	}
	seedStore(t, store, docs)

	ctx := context.Background()
	query := "goroutine scheduling and the GMP model"

	// With weight 1 the ordering must match the raw vector-store ranking.
	hits, err := store.Query(ctx, mock.DeterministicVector(query, 384), 3)
	require.NoError(t, err)
	require.NotEmpty(t, hits)

	r, err := NewRetriever(store, mock.NewMockProvider(), WithSemanticWeight(1.0))
	require.NoError(t, err)

	result, err := r.Retrieve(ctx, query, 3, 3)
	require.NoError(t, err)
	require.Len(t, result.Candidates, len(hits))
	for i, hit := range hits {
		assert.Equal(t, hit.ID, result.Candidates[i].DocumentID)
	}
}

func TestRetrieveWithMonitor(t *testing.T) {
	store, err := badger.NewMemoryStore()
	require.NoError(t, err)
	defer store.Close()

	seedStore(t, store, map[string]string{
		"qa:1": "mutex contention profiling",
		"qa:2": "lock free queues",
	})

	r, err := NewRetriever(store, mock.NewMockProvider())
	require.NoError(t, err)

	monitor := &recordingMonitor{}
	result, err := r.RetrieveWithMonitor(context.Background(), "mutex contention", 10, 2, monitor)
	require.NoError(t, err)

	assert.Equal(t, []string{"Start", "AfterEmbedding", "AfterSemanticSearch", "AfterRerank", "Finish"}, monitor.calls)
	assert.Equal(t, 384, monitor.dimensions)
	assert.Len(t, monitor.semanticIDs, 2)
	assert.Equal(t, result, monitor.result)
}

type recordingMonitor struct {
	calls       []string
	dimensions  int
	semanticIDs []string
	result      *core.Result
}

func (m *recordingMonitor) Start(_ string) { m.calls = append(m.calls, "Start") }
func (m *recordingMonitor) AfterEmbedding(d int) {
	m.calls = append(m.calls, "AfterEmbedding")
	m.dimensions = d
}
func (m *recordingMonitor) AfterSemanticSearch(ids []string) {
	m.calls = append(m.calls, "AfterSemanticSearch")
	m.semanticIDs = ids
}
func (m *recordingMonitor) AfterRerank(_ []core.Candidate) { m.calls = append(m.calls, "AfterRerank") }
func (m *recordingMonitor) Finish(r *core.Result) {
	m.calls = append(m.calls, "Finish")
	m.result = r
}
