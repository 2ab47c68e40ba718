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


package retriever

import (
	"log/slog"

	"github.com/interviewkit/retriever/ai"
	"github.com/interviewkit/retriever/ai/openai"
	"github.com/interviewkit/retriever/kb"
	"github.com/interviewkit/retriever/search"
	"github.com/interviewkit/retriever/storage"
	"github.com/interviewkit/retriever/storage/badger"
	"github.com/interviewkit/retriever/storage/qdrant"
)

// Engine owns the vector store and embedding provider and hands out the
// builder and retriever that share them.
type Engine struct {
	store    storage.VectorStore
	provider ai.Provider
	logger   *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*engineOptions)

type engineOptions struct {
	aiConfig *ai.Config
	qdrant   *qdrant.Config
	provider ai.Provider
}

// WithAIConfig sets the embedding provider configuration.
// Default is ai.DefaultConfig().
func WithAIConfig(cfg *ai.Config) EngineOption {
	return func(o *engineOptions) {
		o.aiConfig = cfg
	}
}

// WithQdrant backs the engine with a remote Qdrant server instead of the
// embedded store. The filePath argument to NewEngine is ignored.
func WithQdrant(cfg qdrant.Config) EngineOption {
	return func(o *engineOptions) {
		o.qdrant = &cfg
	}
}

// WithProvider injects a pre-built embedding provider, bypassing the
// OpenAI-compatible default. Used by tests and embedded callers.
func WithProvider(provider ai.Provider) EngineOption {
	return func(o *engineOptions) {
		o.provider = provider
	}
}

// NewEngine opens the knowledge base at filePath with an embedded store,
// or remotely when WithQdrant is given.
func NewEngine(filePath string, opts ...EngineOption) (*Engine, error) {
	// Apply options
	options := &engineOptions{
		aiConfig: ai.DefaultConfig(), // Default if not provided
	}
	for _, opt := range opts {
		opt(options)
	}

	var store storage.VectorStore
	var err error

	if options.qdrant != nil {
		store, err = qdrant.New(*options.qdrant)
		if err != nil {
			return nil, err
		}
	} else {
		backend, err := badger.OpenBackend(filePath, false)
		if err != nil {
			return nil, err
		}
		// Closing the store closes the backend with it.
		store, err = badger.NewVectorStore(backend)
		if err != nil {
			backend.Close()
			return nil, err
		}
	}

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			store.Close()
			return nil, err
		}
	}

	return &Engine{
		store:    store,
		provider: provider,
		logger:   slog.Default(),
	}, nil
}

// Close releases the provider and the store.
func (e *Engine) Close() error {
	// Close AI provider first
	if err := e.provider.Close(); err != nil {
		e.logger.Error("error closing AI provider", "err", err)
	}

	if err := e.store.Close(); err != nil {
		e.logger.Error("error closing vector store", "err", err)
		return err
	}
	return nil
}

// VectorStore exposes the underlying store.
func (e *Engine) VectorStore() storage.VectorStore {
	return e.store
}

// NewBuilder creates a knowledge base builder over the engine's store and
// provider.
func (e *Engine) NewBuilder(opts ...kb.Option) (*kb.Builder, error) {
	return kb.NewBuilder(e.store, e.provider, opts...)
}

// NewRetriever creates a retriever over the engine's store and provider.
func (e *Engine) NewRetriever(opts ...search.Option) (*search.Retriever, error) {
	return search.NewRetriever(e.store, e.provider, opts...)
}
