package kb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/interviewkit/retriever/ai"
	"github.com/interviewkit/retriever/core"
	"github.com/interviewkit/retriever/storage"
	"github.com/panjf2000/ants/v2"
)

// defaultEmbedBatchSize bounds how many texts go to the provider per call.
const defaultEmbedBatchSize = 32

// Builder rebuilds the knowledge base from source records. A rebuild
// embeds every new or changed document, carries unchanged vectors over
// from the live generation, and commits the whole set atomically: readers
// see the old generation until the flip, the new one after, never a mix.
type Builder struct {
	store          storage.VectorStore
	embedder       ai.Embedder
	pool           *ants.Pool
	batchSize      int
	maxRetries     int
	retryBaseDelay time.Duration
	rebuildMu      sync.Mutex // try-locked; concurrent rebuilds are rejected
	logger         *slog.Logger
}

// Option configures a Builder.
type Option func(*Builder) error

// WithPoolSize sets the worker pool size for concurrent embedding batches.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(b *Builder) error {
		if size < 1 {
			size = 1
		}
		if b.pool != nil {
			b.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		b.pool = pool
		return nil
	}
}

// WithBatchSize sets how many texts are embedded per provider call.
// Default is 32.
func WithBatchSize(size int) Option {
	return func(b *Builder) error {
		if size < 1 {
			return ErrInvalidBatchSize
		}
		b.batchSize = size
		return nil
	}
}

// WithRetry configures retry behavior for embedding calls.
// Defaults are 3 attempts with a 500ms base delay.
func WithRetry(maxAttempts int, baseDelay time.Duration) Option {
	return func(b *Builder) error {
		if maxAttempts < 1 {
			return ErrInvalidMaxAttempts
		}
		b.maxRetries = maxAttempts
		b.retryBaseDelay = baseDelay
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) error {
		if logger == nil {
			logger = slog.Default()
		}
		b.logger = logger
		return nil
	}
}

// NewBuilder creates a knowledge base builder.
func NewBuilder(store storage.VectorStore, provider ai.Provider, opts ...Option) (*Builder, error) {
	if store == nil {
		return nil, ErrVectorStoreRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	b := &Builder{
		store:          store,
		embedder:       provider.Embedder(),
		pool:           pool,
		batchSize:      defaultEmbedBatchSize,
		maxRetries:     3,
		retryBaseDelay: 500 * time.Millisecond,
		logger:         slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(b); err != nil {
			b.Release()
			return nil, err
		}
	}

	return b, nil
}

// Rebuild replaces the knowledge base with the given source records.
// Returns core.ErrRebuildInProgress immediately if another rebuild is
// running. On any embedding or storage failure the staging generation is
// discarded and the live generation stays untouched.
func (b *Builder) Rebuild(ctx context.Context, records []core.SourceRecord) (*core.BuildReport, error) {
	if !b.rebuildMu.TryLock() {
		return nil, core.ErrRebuildInProgress
	}
	defer b.rebuildMu.Unlock()

	start := time.Now()
	docs := BuildDocuments(records)
	b.logger.Info("rebuilding knowledge base", "sourceRecords", len(records), "documents", len(docs))

	existing, err := b.store.Hashes(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: reading live generation hashes: %w", ErrIngestion, err)
	}

	// Partition into carried (hash unchanged) and embed work.
	var carried []string
	var toEmbed []core.Document
	report := &core.BuildReport{}
	for _, doc := range docs {
		if hash, ok := existing[doc.ID]; ok && hash == doc.Hash() {
			carried = append(carried, doc.ID)
			continue
		}
		if _, ok := existing[doc.ID]; ok {
			report.Updated++
		} else {
			report.Added++
		}
		toEmbed = append(toEmbed, doc)
	}
	report.Carried = len(carried)

	// Everything in the live generation that is not in the new document
	// set disappears with the flip.
	newIDs := make(map[string]bool, len(docs))
	for _, doc := range docs {
		newIDs[doc.ID] = true
	}
	for id := range existing {
		if !newIDs[id] {
			report.Pruned++
		}
	}

	staging, err := b.store.Begin(ctx)
	if err != nil {
		// The store rejects Begin while another builder's staging is open.
		if errors.Is(err, core.ErrRebuildInProgress) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: starting staging generation: %w", ErrIngestion, err)
	}
	defer staging.Discard()

	if len(carried) > 0 {
		if err := staging.Carry(ctx, carried...); err != nil {
			return nil, fmt.Errorf("%w: carrying unchanged vectors: %w", ErrIngestion, err)
		}
	}

	if err := b.embedInto(ctx, staging, toEmbed); err != nil {
		return nil, err
	}

	if err := staging.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%w: committing generation: %w", ErrIngestion, err)
	}

	report.Elapsed = time.Since(start)
	b.logger.Info("knowledge base rebuilt",
		"added", report.Added, "updated", report.Updated,
		"carried", report.Carried, "pruned", report.Pruned,
		"elapsed", report.Elapsed)
	return report, nil
}

// embedInto embeds documents in batches on the worker pool and upserts
// them into staging. The first batch failure cancels the rest and aborts
// the rebuild.
func (b *Builder) embedInto(ctx context.Context, staging storage.Staging, docs []core.Document) error {
	if len(docs) == 0 {
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	var errMu sync.Mutex
	var firstErr error

	fail := func(err error) {
		errMu.Lock()
		if firstErr == nil {
			firstErr = err
			cancel()
		}
		errMu.Unlock()
	}

	for begin := 0; begin < len(docs); begin += b.batchSize {
		end := min(begin+b.batchSize, len(docs))
		batch := docs[begin:end]

		wg.Add(1)
		submitErr := b.pool.Submit(func() {
			defer wg.Done()
			if ctx.Err() != nil {
				return
			}
			if err := b.embedBatch(ctx, staging, batch); err != nil {
				fail(err)
			}
		})
		if submitErr != nil {
			wg.Done()
			fail(fmt.Errorf("%w: submitting embed batch: %w", ErrIngestion, submitErr))
			break
		}
	}

	wg.Wait()
	return firstErr
}

// embedBatch embeds one batch with retry and writes the items to staging.
func (b *Builder) embedBatch(ctx context.Context, staging storage.Staging, batch []core.Document) error {
	texts := make([]string, len(batch))
	for i, doc := range batch {
		texts[i] = doc.Text
	}

	var vectors [][]float32
	err := RetryWithBackoff(ctx, func() error {
		var err error
		vectors, err = b.embedder.EmbedTexts(ctx, texts)
		return err
	}, b.maxRetries, b.retryBaseDelay)
	if err != nil {
		return fmt.Errorf("%w: embedding %d documents after %d attempts: %w",
			ErrIngestion, len(batch), b.maxRetries, err)
	}
	if len(vectors) != len(batch) {
		return fmt.Errorf("%w: embedding count mismatch: expected %d, got %d",
			ErrIngestion, len(batch), len(vectors))
	}

	items := make([]storage.Item, len(batch))
	for i, doc := range batch {
		items[i] = storage.Item{
			ID:       doc.ID,
			Vector:   vectors[i],
			Text:     doc.Text,
			Kind:     doc.Kind,
			Hash:     doc.Hash(),
			Metadata: doc.Metadata,
		}
	}
	if err := staging.Upsert(ctx, items...); err != nil {
		return fmt.Errorf("%w: writing documents to staging: %w", ErrIngestion, err)
	}
	return nil
}

// Release releases the worker pool.
// The builder should not be used after calling Release.
func (b *Builder) Release() {
	if b.pool != nil {
		b.pool.Release()
	}
}
