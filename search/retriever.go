package search

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/interviewkit/retriever/ai"
	"github.com/interviewkit/retriever/core"
	"github.com/interviewkit/retriever/storage"
)

// Retriever provides two-stage hybrid retrieval over the knowledge base:
// a semantic vector search recalls a broad candidate set, then BM25
// lexical scoring reranks it for precision.
type Retriever struct {
	store          storage.VectorStore
	embedder       ai.Embedder
	reranker       *Reranker
	semanticWeight float64
	logger         *slog.Logger
}

// Option configures a Retriever.
type Option func(*Retriever) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Retriever) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// WithReranker replaces the default BM25 reranker, e.g. to tune k1 and b.
func WithReranker(reranker *Reranker) Option {
	return func(r *Retriever) error {
		if reranker == nil {
			return ErrRerankerRequired
		}
		r.reranker = reranker
		return nil
	}
}

// WithSemanticWeight blends the semantic similarity into the final
// ordering. At the default of 0 the ordering is purely lexical with
// semantic similarity as tie-break; at 1 it is purely semantic. The
// lexical score is normalized to [0,1] before blending so the two
// signals share a scale.
func WithSemanticWeight(w float64) Option {
	return func(r *Retriever) error {
		if w < 0 || w > 1 {
			return ErrInvalidSemanticWeight
		}
		r.semanticWeight = w
		return nil
	}
}

// NewRetriever creates a retriever over the given vector store and
// embedding provider.
func NewRetriever(store storage.VectorStore, provider ai.Provider, opts ...Option) (*Retriever, error) {
	if store == nil {
		return nil, ErrVectorStoreRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	reranker, err := NewReranker()
	if err != nil {
		return nil, err
	}

	r := &Retriever{
		store:    store,
		embedder: provider.Embedder(),
		reranker: reranker,
		logger:   slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Retrieve runs the two-stage pipeline for query. semanticK bounds the
// candidate set recalled from the vector store, finalN the returned
// results. Returns an empty result for a blank query or finalN <= 0.
//
// A semanticK below finalN is raised to finalN, which changes the recall
// set; results at increasing finalN are prefixes of one another only while
// semanticK stays fixed at or above every finalN compared.
func (r *Retriever) Retrieve(ctx context.Context, query string, semanticK, finalN int) (*core.Result, error) {
	return r.RetrieveWithMonitor(ctx, query, semanticK, finalN, nil)
}

// RetrieveWithMonitor runs the two-stage pipeline with monitoring.
// The monitor receives callbacks at each stage of retrieval.
func (r *Retriever) RetrieveWithMonitor(ctx context.Context, query string, semanticK, finalN int, monitor RetrievalMonitor) (*core.Result, error) {
	// Use noop monitor if none provided
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	result := &core.Result{Query: query, Candidates: []core.Candidate{}}
	if strings.TrimSpace(query) == "" || finalN <= 0 {
		return result, nil
	}
	if semanticK < finalN {
		semanticK = finalN
	}

	monitor.Start(query)

	// 1. Semantic recall
	embedding, err := r.embedder.EmbedText(ctx, query)
	if err != nil {
		r.logger.Error("error generating embedding for query", "query", query, "err", err)
		return nil, err
	}
	monitor.AfterEmbedding(len(embedding))

	hits, err := r.store.Query(ctx, embedding, semanticK)
	if err != nil {
		r.logger.Error("error querying vector store", "err", err)
		return nil, err
	}

	// Dedup by document ID, keeping the best similarity.
	candidates := make([]core.Candidate, 0, len(hits))
	seen := make(map[string]int, len(hits))
	for _, hit := range hits {
		if idx, ok := seen[hit.ID]; ok {
			if hit.Similarity > candidates[idx].SemanticScore {
				candidates[idx].SemanticScore = hit.Similarity
			}
			continue
		}
		seen[hit.ID] = len(candidates)
		candidates = append(candidates, core.Candidate{
			DocumentID:    hit.ID,
			Text:          hit.Text,
			Kind:          hit.Kind,
			Metadata:      hit.Metadata,
			SemanticScore: hit.Similarity,
		})
	}

	ids := make([]string, len(candidates))
	for i, c := range candidates {
		ids[i] = c.DocumentID
	}
	monitor.AfterSemanticSearch(ids)

	// 2. Lexical rerank
	queryTokens := Tokenize(query)
	r.reranker.Score(queryTokens, candidates)
	monitor.AfterRerank(candidates)

	r.rank(candidates)
	if len(candidates) > finalN {
		candidates = candidates[:finalN]
	}
	for i := range candidates {
		candidates[i].FinalRank = i + 1
	}

	result.Candidates = candidates
	monitor.Finish(result)
	return result, nil
}

// rank orders candidates by lexical score descending, then semantic
// similarity descending, then ascending document ID. With a non-zero
// semantic weight the first key becomes the blended score instead.
func (r *Retriever) rank(candidates []core.Candidate) {
	var maxLex float64
	for _, c := range candidates {
		if c.LexicalScore > maxLex {
			maxLex = c.LexicalScore
		}
	}

	key := func(c core.Candidate) float64 {
		if r.semanticWeight == 0 {
			return c.LexicalScore
		}
		lex := 0.0
		if maxLex > 0 {
			lex = c.LexicalScore / maxLex
		}
		return (1-r.semanticWeight)*lex + r.semanticWeight*float64(c.SemanticScore)
	}

	slices.SortFunc(candidates, func(a, b core.Candidate) int {
		ka, kb := key(a), key(b)
		if ka != kb {
			if ka > kb {
				return -1
			}
			return 1
		}
		if a.SemanticScore != b.SemanticScore {
			if a.SemanticScore > b.SemanticScore {
				return -1
			}
			return 1
		}
		return strings.Compare(a.DocumentID, b.DocumentID)
	})
}
