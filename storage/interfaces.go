package storage

import (
	"context"

	"github.com/interviewkit/retriever/core"
)

// Item is one (id, vector, document, metadata) entry to be written into a
// vector store generation.
type Item struct {
	ID       string
	Vector   []float32
	Text     string
	Kind     core.DocKind
	Hash     core.ContentHash
	Metadata map[string]string
}

// Hit is a single result from a top-K similarity query.
type Hit struct {
	ID         string
	Text       string
	Kind       core.DocKind
	Metadata   map[string]string
	Similarity float32
}

// Staging is a not-yet-visible generation of the knowledge base. Writes go
// into staging; nothing is observable by concurrent Query calls until Commit
// atomically flips the live generation. Documents that are not upserted or
// carried into the staging generation are pruned by the flip.
type Staging interface {
	// Upsert writes items into the staging generation, keyed by item ID.
	// Vectors are normalized to unit length on write so cosine similarity
	// reduces to a dot product at query time.
	Upsert(ctx context.Context, items ...Item) error

	// Carry copies entries verbatim from the live generation into staging.
	// Used for documents whose content hash is unchanged, so their vectors
	// are reused without re-embedding. IDs missing from the live generation
	// are an error.
	Carry(ctx context.Context, ids ...string) error

	// Commit atomically makes the staging generation live. Concurrent
	// queries see either the fully-old or fully-new generation, never a
	// mixture. The previous generation's entries are deleted afterwards.
	Commit(ctx context.Context) error

	// Discard abandons the staging generation without affecting the live
	// one. Safe to call after Commit (it becomes a no-op).
	Discard() error
}

// VectorStore owns the persistent collection of document embeddings and is
// the single source of truth for what is currently searchable.
// Implementations must be safe for concurrent queries; writes are mediated
// through Staging generations.
type VectorStore interface {
	// Begin starts a new staging generation.
	Begin(ctx context.Context) (Staging, error)

	// Query returns the top-k entries of the live generation by cosine
	// similarity to vector, in descending similarity order. Ties are broken
	// by ascending ID for determinism. An empty live generation yields an
	// empty slice, not an error.
	Query(ctx context.Context, vector []float32, k int) ([]Hit, error)

	// Hashes returns the content hashes of the live generation keyed by
	// document ID. The builder compares them against the incoming record
	// set to decide which vectors can be carried over.
	Hashes(ctx context.Context) (map[string]core.ContentHash, error)

	// Count returns the number of documents in the live generation.
	Count(ctx context.Context) (int, error)

	// Close releases the backing index.
	Close() error
}
