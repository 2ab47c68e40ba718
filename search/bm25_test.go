package search

import (
	"testing"

	"github.com/interviewkit/retriever/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReranker(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		r, err := NewReranker()
		require.NoError(t, err)
		assert.Equal(t, DefaultK1, r.k1)
		assert.Equal(t, DefaultB, r.b)
	})

	t.Run("custom parameters", func(t *testing.T) {
		r, err := NewReranker(WithK1(1.2), WithB(0.5))
		require.NoError(t, err)
		assert.Equal(t, 1.2, r.k1)
		assert.Equal(t, 0.5, r.b)
	})

	t.Run("negative k1 rejected", func(t *testing.T) {
		_, err := NewReranker(WithK1(-0.1))
		assert.ErrorIs(t, err, ErrInvalidBM25Param)
	})

	t.Run("b outside unit interval rejected", func(t *testing.T) {
		_, err := NewReranker(WithB(1.5))
		assert.ErrorIs(t, err, ErrInvalidBM25Param)
	})
}

func newTestReranker(t *testing.T) *Reranker {
	t.Helper()
	r, err := NewReranker()
	require.NoError(t, err)
	return r
}

func TestScore_TermFrequencyOrdering(t *testing.T) {
	r := newTestReranker(t)

	// Same length, different frequency of the query term.
	candidates := []core.Candidate{
		{DocumentID: "qa:1", Text: "heap heap heap sort merge"},
		{DocumentID: "qa:2", Text: "heap sort merge quick radix"},
		{DocumentID: "qa:3", Text: "bubble sort merge quick radix"},
	}

	r.Score(Tokenize("heap"), candidates)

	assert.Greater(t, candidates[0].LexicalScore, candidates[1].LexicalScore)
	assert.Greater(t, candidates[1].LexicalScore, candidates[2].LexicalScore)
	assert.Zero(t, candidates[2].LexicalScore)
}

func TestScore_RareTermsWeighMore(t *testing.T) {
	r := newTestReranker(t)

	// "sort" appears in every document, "memtable" in exactly one.
	candidates := []core.Candidate{
		{DocumentID: "qa:1", Text: "external sort algorithms"},
		{DocumentID: "qa:2", Text: "memtable flush details"},
		{DocumentID: "qa:3", Text: "quick sort pivot choice"},
		{DocumentID: "qa:4", Text: "merge sort stability notes"},
	}

	r.Score(Tokenize("memtable sort"), candidates)

	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.LexicalScore > best.LexicalScore {
			best = c
		}
	}
	assert.Equal(t, "qa:2", best.DocumentID)
}

func TestScore_EdgeCases(t *testing.T) {
	r := newTestReranker(t)

	t.Run("empty query tokens score zero", func(t *testing.T) {
		candidates := []core.Candidate{
			{DocumentID: "qa:1", Text: "some text", LexicalScore: 99},
		}
		r.Score(nil, candidates)
		assert.Zero(t, candidates[0].LexicalScore)
	})

	t.Run("tokenless candidate scores zero", func(t *testing.T) {
		candidates := []core.Candidate{
			{DocumentID: "qa:1", Text: "goroutine leak"},
			{DocumentID: "qa:2", Text: "!!! ---"},
		}
		r.Score(Tokenize("goroutine"), candidates)
		assert.Greater(t, candidates[0].LexicalScore, 0.0)
		assert.Zero(t, candidates[1].LexicalScore)
	})

	t.Run("no candidates", func(t *testing.T) {
		assert.NotPanics(t, func() {
			r.Score(Tokenize("anything"), nil)
		})
	})

	t.Run("deterministic across calls", func(t *testing.T) {
		build := func() []core.Candidate {
			return []core.Candidate{
				{DocumentID: "qa:1", Text: "binary search tree rotations"},
				{DocumentID: "qa:2", Text: "binary protocol framing"},
			}
		}
		a, b := build(), build()
		r.Score(Tokenize("binary search"), a)
		r.Score(Tokenize("binary search"), b)
		for i := range a {
			assert.Equal(t, a[i].LexicalScore, b[i].LexicalScore)
		}
	})
}

func TestScore_CJKQuery(t *testing.T) {
	r := newTestReranker(t)

	candidates := []core.Candidate{
		{DocumentID: "qa:1", Text: "讲讲二分查找的实现细节"},
		{DocumentID: "qa:2", Text: "链表反转的常见写法"},
	}

	r.Score(Tokenize("二分查找"), candidates)

	assert.Greater(t, candidates[0].LexicalScore, candidates[1].LexicalScore)
}
