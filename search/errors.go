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


package search

import "errors"

var (
	// ErrVectorStoreRequired is returned when a vector store is not provided.
	ErrVectorStoreRequired = errors.New("vector store required")

	// ErrAIProviderRequired is returned when an AI provider is not provided.
	ErrAIProviderRequired = errors.New("AI provider required")

	// ErrRerankerRequired is returned when a nil reranker is supplied.
	ErrRerankerRequired = errors.New("reranker required")

	// ErrInvalidBM25Param is returned for out-of-range k1 or b values.
	ErrInvalidBM25Param = errors.New("invalid BM25 parameter")

	// ErrInvalidSemanticWeight is returned when the semantic weight is outside [0,1].
	ErrInvalidSemanticWeight = errors.New("semantic weight must be in [0,1]")
)
