// Copyright 2025 InterviewKit
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package storage provides the vector store abstraction for the retriever.
//
// The VectorStore interface decouples the retrieval pipeline from any
// concrete backing index. Two implementations ship with the module:
//
//   - storage/badger: an embedded, durable store on BadgerDB
//   - storage/qdrant: a remote store on a Qdrant server
//
// # Generations
//
// The store is versioned in whole generations. A knowledge-base rebuild
// writes every document into a Staging generation and then commits it, which
// atomically flips what Query sees. A query running concurrently with a
// rebuild therefore observes either the fully-old or the fully-new document
// set, never a mixture, and documents absent from the new generation are
// pruned by the flip.
//
// # Similarity
//
// The metric is cosine similarity. Implementations normalize vectors to
// unit length at write and query time, so no assumptions are made about
// what the embedding provider guarantees, and similarity reduces to a dot
// product. Top-K results are ordered by similarity descending with ties
// broken by ascending document ID.
//
// # Constructor Return Type Pattern
//
// Backend constructors return the storage.VectorStore interface to enforce
// abstraction; internal constructors may return concrete types.
//
// # Thread Safety
//
// All implementations must support concurrent Query calls. Staging
// generations are single-writer: the knowledge-base builder serializes
// rebuilds before opening one.
package storage
