package qdrant

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/interviewkit/retriever/core"
	"github.com/interviewkit/retriever/storage"
	"github.com/qdrant/go-client/qdrant"
)

// scrollPageSize is deliberately generous: the knowledge base is hundreds
// to low thousands of documents, so one page covers it.
const scrollPageSize = 10000

// Config holds Qdrant connection configuration.
type Config struct {
	// URL is the Qdrant server address (e.g., "https://example.qdrant.io:6334").
	URL string

	// CollectionName is the alias under which the live generation is served.
	// Physical collections alternate between "<name>_a" and "<name>_b".
	CollectionName string

	// APIKey is optional API key for authentication.
	APIKey string
}

// Store implements storage.VectorStore against a Qdrant server. The live
// generation is addressed through a collection alias; a rebuild fills the
// inactive physical collection and flips the alias in a single aliases
// update, which Qdrant applies atomically.
type Store struct {
	client  *qdrant.Client
	alias   string
	mu      sync.Mutex // guards staging
	staging bool       // an unfinalized staging generation is open
	logger  *slog.Logger
}

var _ storage.VectorStore = (*Store)(nil)

// New creates a new Qdrant-backed vector store.
//
// Returns storage.VectorStore interface to enforce abstraction.
func New(cfg Config) (storage.VectorStore, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("qdrant url is required")
	}
	if cfg.CollectionName == "" {
		return nil, fmt.Errorf("qdrant collection name is required")
	}

	parsedURL := cfg.URL
	if !strings.HasPrefix(parsedURL, "http://") && !strings.HasPrefix(parsedURL, "https://") {
		parsedURL = "https://" + parsedURL
	}

	u, err := url.Parse(parsedURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse qdrant url: %w", err)
	}

	host := u.Hostname()
	port := 6334 // default gRPC port
	if u.Port() != "" {
		p, err := strconv.Atoi(u.Port())
		if err != nil {
			return nil, fmt.Errorf("invalid port: %w", err)
		}
		port = p
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: cfg.APIKey,
		UseTLS: u.Scheme == "https",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	return &Store{
		client: client,
		alias:  cfg.CollectionName,
		logger: slog.Default().With("component", "qdrant-store"),
	}, nil
}

// pointID maps a document ID onto a deterministic UUID, since Qdrant point
// IDs must be integers or UUIDs. The document ID itself travels in the
// payload.
func pointID(docID string) *qdrant.PointId {
	return qdrant.NewID(uuid.NewSHA1(uuid.NameSpaceOID, []byte(docID)).String())
}

// liveCollection resolves the physical collection currently behind the
// alias. Returns "" if the alias does not exist yet (nothing committed).
func (s *Store) liveCollection(ctx context.Context) (string, error) {
	aliases, err := s.client.ListAliases(ctx)
	if err != nil {
		return "", fmt.Errorf("qdrant list aliases failed: %w", err)
	}
	for _, a := range aliases {
		if a.GetAliasName() == s.alias {
			return a.GetCollectionName(), nil
		}
	}
	return "", nil
}

// stagingCollection returns the physical collection name not currently live.
func (s *Store) stagingCollection(live string) string {
	a, b := s.alias+"_a", s.alias+"_b"
	if live == a {
		return b
	}
	return a
}

// Begin starts a new staging generation in the inactive physical collection.
// At most one staging generation may be open at a time; a second Begin
// before the first is committed or discarded returns
// core.ErrRebuildInProgress, since both would target the same inactive
// collection.
func (s *Store) Begin(ctx context.Context) (storage.Staging, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.staging {
		return nil, core.ErrRebuildInProgress
	}

	live, err := s.liveCollection(ctx)
	if err != nil {
		return nil, err
	}
	name := s.stagingCollection(live)

	// Drop leftovers from an interrupted rebuild.
	exists, err := s.client.CollectionExists(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("qdrant collection check failed: %w", err)
	}
	if exists {
		if err := s.client.DeleteCollection(ctx, name); err != nil {
			return nil, fmt.Errorf("qdrant collection cleanup failed: %w", err)
		}
	}

	s.staging = true
	s.logger.Debug("staging collection opened", "collection", name, "live", live)
	return &staging{store: s, name: name, live: live}, nil
}

// releaseStaging reopens the store for a new staging generation.
func (s *Store) releaseStaging() {
	s.mu.Lock()
	s.staging = false
	s.mu.Unlock()
}

// Query returns the top-k entries by cosine similarity, ties broken by
// ascending document ID.
func (s *Store) Query(ctx context.Context, vector []float32, k int) ([]storage.Hit, error) {
	if k <= 0 || len(vector) == 0 {
		return []storage.Hit{}, nil
	}

	live, err := s.liveCollection(ctx)
	if err != nil {
		return nil, err
	}
	if live == "" {
		return []storage.Hit{}, nil
	}

	// Fetch extra results so equal-similarity neighbors are available for
	// the deterministic ID tie-break below.
	limit := uint64(k + 8)
	points, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.alias,
		Query:          qdrant.NewQuery(vector...),
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant query failed: %w", err)
	}

	hits := make([]storage.Hit, 0, len(points))
	for _, point := range points {
		hit, err := hitFromPayload(point.GetPayload(), point.GetScore())
		if err != nil {
			return nil, err
		}
		hits = append(hits, hit)
	}

	sortHits(hits)
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// Hashes returns the content hashes of the live generation keyed by
// document ID.
func (s *Store) Hashes(ctx context.Context) (map[string]core.ContentHash, error) {
	live, err := s.liveCollection(ctx)
	if err != nil {
		return nil, err
	}
	hashes := make(map[string]core.ContentHash)
	if live == "" {
		return hashes, nil
	}

	limit := uint32(scrollPageSize)
	points, err := s.client.Scroll(ctx, &qdrant.ScrollPoints{
		CollectionName: live,
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant scroll failed: %w", err)
	}

	for _, point := range points {
		payload := point.GetPayload()
		id := payload["document_id"].GetStringValue()
		hash, err := strconv.ParseUint(payload["hash"].GetStringValue(), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("qdrant payload: bad hash for %q: %w", id, err)
		}
		hashes[id] = core.ContentHash(hash)
	}
	return hashes, nil
}

// Count returns the number of documents in the live generation.
func (s *Store) Count(ctx context.Context) (int, error) {
	live, err := s.liveCollection(ctx)
	if err != nil {
		return 0, err
	}
	if live == "" {
		return 0, nil
	}

	exact := true
	count, err := s.client.Count(ctx, &qdrant.CountPoints{
		CollectionName: live,
		Exact:          &exact,
	})
	if err != nil {
		return 0, fmt.Errorf("qdrant count failed: %w", err)
	}
	return int(count), nil
}

// Close releases the client connection.
func (s *Store) Close() error {
	return s.client.Close()
}

// staging is a rebuild target collection not yet behind the alias.
type staging struct {
	store     *Store
	name      string // physical staging collection
	live      string // physical live collection at Begin time ("" if none)
	mu        sync.Mutex
	created   bool
	finalized bool
}

var _ storage.Staging = (*staging)(nil)

// ensureCollection lazily creates the staging collection once the vector
// dimensionality is known.
func (st *staging) ensureCollection(ctx context.Context, dim int) error {
	if st.created {
		return nil
	}
	err := st.store.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: st.name,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(dim),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("qdrant create collection failed: %w", err)
	}
	st.created = true
	return nil
}

// Upsert writes items into the staging collection. Qdrant normalizes
// vectors for cosine distance itself, so raw vectors are sent as-is.
func (st *staging) Upsert(ctx context.Context, items ...storage.Item) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.finalized {
		return storage.ErrStagingCommitted
	}
	if len(items) == 0 {
		return nil
	}

	if err := st.ensureCollection(ctx, len(items[0].Vector)); err != nil {
		return err
	}

	points := make([]*qdrant.PointStruct, 0, len(items))
	for _, item := range items {
		if len(item.Vector) == 0 {
			return storage.ErrEmptyVector
		}
		meta := make(map[string]any, len(item.Metadata))
		for k, v := range item.Metadata {
			meta[k] = v
		}
		points = append(points, &qdrant.PointStruct{
			Id:      pointID(item.ID),
			Vectors: qdrant.NewVectors(item.Vector...),
			Payload: qdrant.NewValueMap(map[string]any{
				"document_id": item.ID,
				"text":        item.Text,
				"kind":        int64(item.Kind),
				"hash":        strconv.FormatUint(uint64(item.Hash), 10),
				"meta":        meta,
			}),
		})
	}

	wait := true
	_, err := st.store.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: st.name,
		Points:         points,
		Wait:           &wait,
	})
	if err != nil {
		return fmt.Errorf("qdrant upsert failed: %w", err)
	}
	return nil
}

// Carry copies points verbatim from the live collection into staging.
func (st *staging) Carry(ctx context.Context, ids ...string) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.finalized {
		return storage.ErrStagingCommitted
	}
	if len(ids) == 0 {
		return nil
	}
	if st.live == "" {
		return storage.ErrNotFound
	}

	pointIDs := make([]*qdrant.PointId, len(ids))
	for i, id := range ids {
		pointIDs[i] = pointID(id)
	}

	retrieved, err := st.store.client.Get(ctx, &qdrant.GetPoints{
		CollectionName: st.live,
		Ids:            pointIDs,
		WithPayload:    qdrant.NewWithPayload(true),
		WithVectors:    qdrant.NewWithVectors(true),
	})
	if err != nil {
		return fmt.Errorf("qdrant get failed: %w", err)
	}
	if len(retrieved) != len(ids) {
		return storage.ErrNotFound
	}

	if len(retrieved) > 0 {
		vec := retrieved[0].GetVectors().GetVector().GetData()
		if err := st.ensureCollection(ctx, len(vec)); err != nil {
			return err
		}
	}

	points := make([]*qdrant.PointStruct, 0, len(retrieved))
	for _, point := range retrieved {
		points = append(points, &qdrant.PointStruct{
			Id:      point.GetId(),
			Vectors: qdrant.NewVectors(point.GetVectors().GetVector().GetData()...),
			Payload: point.GetPayload(),
		})
	}

	wait := true
	_, err = st.store.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: st.name,
		Points:         points,
		Wait:           &wait,
	})
	if err != nil {
		return fmt.Errorf("qdrant carry upsert failed: %w", err)
	}
	return nil
}

// Commit flips the alias to the staging collection in one aliases update,
// then drops the previous physical collection.
func (st *staging) Commit(ctx context.Context) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.finalized {
		return storage.ErrStagingCommitted
	}

	// An empty rebuild still needs a collection to alias.
	if err := st.ensureCollection(ctx, 1); err != nil {
		return err
	}

	actions := make([]*qdrant.AliasOperations, 0, 2)
	if st.live != "" {
		actions = append(actions, &qdrant.AliasOperations{
			Action: &qdrant.AliasOperations_DeleteAlias{
				DeleteAlias: &qdrant.DeleteAlias{AliasName: st.store.alias},
			},
		})
	}
	actions = append(actions, &qdrant.AliasOperations{
		Action: &qdrant.AliasOperations_CreateAlias{
			CreateAlias: &qdrant.CreateAlias{
				CollectionName: st.name,
				AliasName:      st.store.alias,
			},
		},
	})

	if err := st.store.client.UpdateAliases(ctx, actions); err != nil {
		return fmt.Errorf("qdrant alias flip failed: %w", err)
	}

	st.finalized = true
	st.store.releaseStaging()
	st.store.logger.Debug("generation committed", "collection", st.name, "previous", st.live)

	if st.live != "" {
		if err := st.store.client.DeleteCollection(ctx, st.live); err != nil {
			// The alias already moved; the stale collection is cleaned up
			// by the next rebuild that targets it.
			st.store.logger.Warn("failed to delete previous collection", "collection", st.live, "err", err)
		}
	}
	return nil
}

// Discard abandons the staging collection. A no-op after Commit.
func (st *staging) Discard() error {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.finalized {
		return nil
	}
	st.finalized = true
	st.store.releaseStaging()
	if !st.created {
		return nil
	}
	return st.store.client.DeleteCollection(context.Background(), st.name)
}

// hitFromPayload rebuilds a storage.Hit from a point payload.
func hitFromPayload(payload map[string]*qdrant.Value, score float32) (storage.Hit, error) {
	hit := storage.Hit{
		ID:         payload["document_id"].GetStringValue(),
		Text:       payload["text"].GetStringValue(),
		Kind:       core.DocKind(payload["kind"].GetIntegerValue()),
		Similarity: score,
	}
	if hit.ID == "" {
		return hit, fmt.Errorf("qdrant payload: missing document_id")
	}
	if meta := payload["meta"].GetStructValue(); meta != nil && len(meta.GetFields()) > 0 {
		hit.Metadata = make(map[string]string, len(meta.GetFields()))
		for k, v := range meta.GetFields() {
			hit.Metadata[k] = v.GetStringValue()
		}
	}
	return hit, nil
}

// sortHits orders by similarity descending, then ascending document ID.
func sortHits(hits []storage.Hit) {
	slices.SortFunc(hits, func(a, b storage.Hit) int {
		if a.Similarity != b.Similarity {
			if a.Similarity > b.Similarity {
				return -1
			}
			return 1
		}
		return strings.Compare(a.ID, b.ID)
	})
}
