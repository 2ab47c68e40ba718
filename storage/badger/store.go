package badger

import (
	"context"
	"log/slog"
	"math"
	"slices"
	"strings"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/interviewkit/retriever/core"
	"github.com/interviewkit/retriever/storage"
)

// deleteBatchSize bounds the number of deletes per transaction so large
// generations don't exceed BadgerDB's transaction limits.
const deleteBatchSize = 1000

// Store implements storage.VectorStore on a BadgerDB backend. Documents
// live under generation-prefixed keys; a single pointer key names the live
// generation, and committing a staging generation is one atomic pointer
// write.
type Store struct {
	backend *Backend
	mu      sync.Mutex // guards staging
	staging bool       // an unfinalized staging generation is open
	logger  *slog.Logger
}

var _ storage.VectorStore = (*Store)(nil)

// NewVectorStore creates a vector store on the given backend.
//
// Returns storage.VectorStore interface to enforce abstraction.
func NewVectorStore(backend *Backend) (storage.VectorStore, error) {
	if backend == nil {
		return nil, storage.ErrStorageClosed
	}
	return &Store{
		backend: backend,
		logger:  slog.Default().With("component", "badger-store"),
	}, nil
}

// liveGeneration reads the live generation number inside a transaction.
// A missing pointer key means the store has never been committed to.
func liveGeneration(tx *badger.Txn) (uint64, error) {
	item, err := tx.Get([]byte(generationPointerKey))
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return 0, nil
		}
		return 0, err
	}
	var gen uint64
	err = item.Value(func(val []byte) error {
		gen = unmarshalGeneration(val)
		return nil
	})
	return gen, err
}

// Begin starts a new staging generation. Any leftover keys from a rebuild
// interrupted before commit are cleared first. At most one staging
// generation may be open at a time; a second Begin before the first is
// committed or discarded returns core.ErrRebuildInProgress, so two
// rebuilds can never write into the same generation.
func (s *Store) Begin(ctx context.Context) (storage.Staging, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.staging {
		return nil, core.ErrRebuildInProgress
	}

	var gen uint64
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		live, err := liveGeneration(tx)
		if err != nil {
			return err
		}
		gen = live + 1
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	if err := s.deleteGeneration(gen); err != nil {
		return nil, err
	}

	s.staging = true
	s.logger.Debug("staging generation opened", "generation", gen)
	return &staging{store: s, gen: gen}, nil
}

// releaseStaging reopens the store for a new staging generation.
func (s *Store) releaseStaging() {
	s.mu.Lock()
	s.staging = false
	s.mu.Unlock()
}

// Query returns the top-k entries of the live generation by cosine
// similarity, ties broken by ascending document ID.
func (s *Store) Query(ctx context.Context, vector []float32, k int) ([]storage.Hit, error) {
	if k <= 0 || len(vector) == 0 {
		return []storage.Hit{}, nil
	}

	query := normalizeVector(vector)
	var hits []storage.Hit

	err := s.backend.WithTx(func(tx *badger.Txn) error {
		gen, err := liveGeneration(tx)
		if err != nil {
			return err
		}
		if gen == 0 {
			return nil
		}

		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeGenerationPrefix(gen)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var entry *storage.Entry
			err := iter.Item().Value(func(val []byte) error {
				var err error
				entry, err = storage.UnmarshalEntry(val)
				return err
			})
			if err != nil {
				return err
			}
			if entry == nil || len(entry.Vector) == 0 {
				continue
			}

			// Stored vectors are normalized on write, so cosine similarity
			// is a plain dot product here.
			hits = append(hits, storage.Hit{
				ID:         entry.ID,
				Text:       entry.Text,
				Kind:       entry.Kind,
				Metadata:   entry.Metadata,
				Similarity: dotProduct(query, entry.Vector),
			})
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	slices.SortFunc(hits, func(a, b storage.Hit) int {
		if a.Similarity > b.Similarity {
			return -1
		}
		if a.Similarity < b.Similarity {
			return 1
		}
		return strings.Compare(a.ID, b.ID)
	})

	if len(hits) > k {
		hits = hits[:k]
	}
	if hits == nil {
		hits = []storage.Hit{}
	}
	return hits, nil
}

// Hashes returns the content hashes of the live generation keyed by
// document ID.
func (s *Store) Hashes(ctx context.Context) (map[string]core.ContentHash, error) {
	hashes := make(map[string]core.ContentHash)

	err := s.backend.WithTx(func(tx *badger.Txn) error {
		gen, err := liveGeneration(tx)
		if err != nil {
			return err
		}
		if gen == 0 {
			return nil
		}

		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeGenerationPrefix(gen)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var entry *storage.Entry
			err := iter.Item().Value(func(val []byte) error {
				var err error
				entry, err = storage.UnmarshalEntry(val)
				return err
			})
			if err != nil {
				return err
			}
			hashes[entry.ID] = entry.Hash
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	return hashes, nil
}

// Count returns the number of documents in the live generation.
func (s *Store) Count(ctx context.Context) (int, error) {
	count := 0
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		gen, err := liveGeneration(tx)
		if err != nil {
			return err
		}
		if gen == 0 {
			return nil
		}

		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeGenerationPrefix(gen)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	return count, err
}

// Close closes the underlying backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

// deleteGeneration removes all entry keys of a generation, in batches.
func (s *Store) deleteGeneration(gen uint64) error {
	var keys [][]byte
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeGenerationPrefix(gen)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			keys = append(keys, iter.Item().KeyCopy(nil))
		}
		return nil
	}, false)
	if err != nil {
		return err
	}

	for start := 0; start < len(keys); start += deleteBatchSize {
		end := min(start+deleteBatchSize, len(keys))
		err := s.backend.WithTx(func(tx *badger.Txn) error {
			for _, key := range keys[start:end] {
				if err := tx.Delete(key); err != nil {
					return err
				}
			}
			return tx.Commit()
		}, true)
		if err != nil {
			return err
		}
	}
	return nil
}

// staging is a not-yet-live generation under construction.
type staging struct {
	store     *Store
	gen       uint64
	mu        sync.Mutex
	finalized bool
}

var _ storage.Staging = (*staging)(nil)

// Upsert writes items into the staging generation. Vectors are normalized
// to unit length before storage.
func (st *staging) Upsert(ctx context.Context, items ...storage.Item) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.finalized {
		return storage.ErrStagingCommitted
	}

	return st.store.backend.WithTx(func(tx *badger.Txn) error {
		for _, item := range items {
			if len(item.Vector) == 0 {
				return storage.ErrEmptyVector
			}
			entry := &storage.Entry{
				ID:       item.ID,
				Text:     item.Text,
				Kind:     item.Kind,
				Hash:     item.Hash,
				Vector:   normalizeVector(item.Vector),
				Metadata: item.Metadata,
			}
			key := makeEntryKey(st.gen, item.ID)
			if err := tx.Set(key, storage.MarshalEntry(entry)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// Carry copies entries verbatim from the live generation into staging.
func (st *staging) Carry(ctx context.Context, ids ...string) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.finalized {
		return storage.ErrStagingCommitted
	}

	return st.store.backend.WithTx(func(tx *badger.Txn) error {
		live, err := liveGeneration(tx)
		if err != nil {
			return err
		}

		for _, id := range ids {
			item, err := tx.Get(makeEntryKey(live, id))
			if err != nil {
				if err == badger.ErrKeyNotFound {
					return storage.ErrNotFound
				}
				return err
			}
			value, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			if err := tx.Set(makeEntryKey(st.gen, id), value); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// Commit atomically flips the live generation pointer to this staging
// generation and then deletes the previous generation's entries.
func (st *staging) Commit(ctx context.Context) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.finalized {
		return storage.ErrStagingCommitted
	}

	var previous uint64
	err := st.store.backend.WithTx(func(tx *badger.Txn) error {
		live, err := liveGeneration(tx)
		if err != nil {
			return err
		}
		previous = live
		if err := tx.Set([]byte(generationPointerKey), marshalGeneration(st.gen)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return err
	}

	st.finalized = true
	st.store.releaseStaging()
	st.store.logger.Debug("generation committed", "generation", st.gen, "previous", previous)

	if previous != 0 {
		if err := st.store.deleteGeneration(previous); err != nil {
			// The flip already happened; leftover keys are cleaned up by the
			// next rebuild that reuses this generation number.
			st.store.logger.Warn("failed to delete previous generation", "generation", previous, "err", err)
		}
	}
	return nil
}

// Discard abandons the staging generation. A no-op after Commit.
func (st *staging) Discard() error {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.finalized {
		return nil
	}
	st.finalized = true
	st.store.releaseStaging()
	return st.store.deleteGeneration(st.gen)
}

// normalizeVector returns the unit-length copy of v. Zero vectors are
// returned unchanged.
func normalizeVector(v []float32) []float32 {
	var sumSquares float64
	for _, x := range v {
		sumSquares += float64(x) * float64(x)
	}
	if sumSquares == 0 {
		return v
	}
	norm := math.Sqrt(sumSquares)
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}

// dotProduct calculates the dot product of two vectors.
func dotProduct(a, b []float32) float32 {
	var sum float32
	minLen := len(a)
	if len(b) < minLen {
		minLen = len(b)
	}
	for i := 0; i < minLen; i++ {
		sum += a[i] * b[i]
	}
	return sum
}
