// Package qdrant provides a Qdrant-backed implementation of
// storage.VectorStore for deployments where the knowledge base outgrows
// the embedded store or is shared between processes.
//
// Generations map onto physical collections: the live generation is
// exposed through a collection alias, a rebuild fills the inactive
// physical collection, and Commit moves the alias in a single aliases
// update that Qdrant applies atomically. The previous collection is
// dropped after the flip.
package qdrant
