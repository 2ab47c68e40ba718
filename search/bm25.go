package search

import (
	"math"

	"github.com/interviewkit/retriever/core"
)

// Default BM25 parameters, the conventional values from the literature.
const (
	DefaultK1 = 1.5
	DefaultB  = 0.75
)

// Reranker scores retrieval candidates against a query with Okapi BM25.
// Document frequencies are computed over the candidate set passed to each
// Score call, not over the whole knowledge base, so scores from different
// calls are not comparable with each other.
type Reranker struct {
	k1 float64
	b  float64
}

// RerankerOption configures a Reranker.
type RerankerOption func(*Reranker) error

// WithK1 sets the term-frequency saturation parameter.
// Default is DefaultK1.
func WithK1(k1 float64) RerankerOption {
	return func(r *Reranker) error {
		if k1 < 0 {
			return ErrInvalidBM25Param
		}
		r.k1 = k1
		return nil
	}
}

// WithB sets the document-length normalization parameter.
// Default is DefaultB.
func WithB(b float64) RerankerOption {
	return func(r *Reranker) error {
		if b < 0 || b > 1 {
			return ErrInvalidBM25Param
		}
		r.b = b
		return nil
	}
}

// NewReranker creates a BM25 reranker.
func NewReranker(opts ...RerankerOption) (*Reranker, error) {
	r := &Reranker{k1: DefaultK1, b: DefaultB}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Score fills LexicalScore on each candidate in place. The candidate set
// itself is the scoring corpus: IDF and the average document length are
// derived from it on every call. Candidates whose text yields no tokens
// score zero, as do empty queries.
func (r *Reranker) Score(queryTokens []string, candidates []core.Candidate) {
	if len(candidates) == 0 {
		return
	}
	if len(queryTokens) == 0 {
		for i := range candidates {
			candidates[i].LexicalScore = 0
		}
		return
	}

	// Tokenize the corpus once; count document frequency per query term.
	docTokens := make([]map[string]int, len(candidates))
	docLens := make([]int, len(candidates))
	var totalLen int
	for i, c := range candidates {
		tokens := Tokenize(c.Text)
		counts := make(map[string]int, len(tokens))
		for _, t := range tokens {
			counts[t]++
		}
		docTokens[i] = counts
		docLens[i] = len(tokens)
		totalLen += len(tokens)
	}

	n := float64(len(candidates))
	avgLen := float64(totalLen) / n
	if avgLen == 0 {
		for i := range candidates {
			candidates[i].LexicalScore = 0
		}
		return
	}

	df := make(map[string]int, len(queryTokens))
	for _, term := range queryTokens {
		if _, seen := df[term]; seen {
			continue
		}
		for i := range candidates {
			if docTokens[i][term] > 0 {
				df[term]++
			}
		}
	}

	idf := make(map[string]float64, len(df))
	for term, f := range df {
		idf[term] = math.Log((n-float64(f)+0.5)/(float64(f)+0.5) + 1)
	}

	for i := range candidates {
		if docLens[i] == 0 {
			candidates[i].LexicalScore = 0
			continue
		}
		norm := r.k1 * (1 - r.b + r.b*float64(docLens[i])/avgLen)
		var score float64
		for _, term := range queryTokens {
			tf := float64(docTokens[i][term])
			if tf == 0 {
				continue
			}
			score += idf[term] * tf * (r.k1 + 1) / (tf + norm)
		}
		candidates[i].LexicalScore = score
	}
}
