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


// Package search provides two-stage hybrid retrieval over the knowledge base.
//
// The Retriever type implements a retrieve-then-rerank pipeline:
//   - Semantic recall using vector embeddings (broad, fuzzy)
//   - Lexical reranking with Okapi BM25 over the recalled candidates (precise)
//
// The tokenizer handles mixed Chinese/English text: Latin runs become
// lowercased word tokens while CJK runs go through dictionary-based
// segmentation, so a query like "讲讲 goroutine 泄漏" matches documents by
// both its English identifiers and its Chinese words.
package search
