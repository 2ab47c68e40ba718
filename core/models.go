package core

import (
	"encoding/binary"
	"strconv"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ContentHash is a 64-bit BLAKE2b digest of a document's canonical text.
// Identical text always produces an identical hash, which lets the builder
// detect unchanged documents across rebuilds and carry their vectors over.
type ContentHash uint64

// HashContent computes the ContentHash of text.
func HashContent(text string) ContentHash {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ContentHash(binary.LittleEndian.Uint64(sum))
}

// DocKind identifies the source type of a document in the knowledge base.
type DocKind int

const (
	// KindQA represents a question/answer pair.
	KindQA DocKind = iota + 1
	// KindNote represents a free-form study note.
	KindNote
	// KindPastQuery represents the text of a previously analyzed query.
	KindPastQuery
)

// String returns the stable wire name of the kind, used in document IDs
// and in assembled context payloads.
func (k DocKind) String() string {
	switch k {
	case KindQA:
		return "qa"
	case KindNote:
		return "note"
	case KindPastQuery:
		return "query"
	default:
		return "unknown"
	}
}

// DocumentID derives the globally unique, rebuild-stable ID for a document
// from its source record's primary key and kind. Re-ingesting an unchanged
// record therefore yields an idempotent upsert.
func DocumentID(kind DocKind, sourceKey int64) string {
	return kind.String() + ":" + strconv.FormatInt(sourceKey, 10)
}

// Document is the uniform shape every source record is normalized into.
// Text is the canonical content used both for embedding and lexical scoring.
type Document struct {
	ID       string
	Text     string
	Kind     DocKind
	Metadata map[string]string
}

// Hash returns the content hash of the document's text.
func (d *Document) Hash() ContentHash {
	return HashContent(d.Text)
}

// SourceRecord is a row from the external record store. Exactly one of the
// text fields is meaningful depending on Kind: QA records use PromptText and
// AnswerText, notes use NoteText, past queries use PromptText.
type SourceRecord struct {
	Key        int64
	Kind       DocKind
	PromptText string
	AnswerText string
	NoteText   string
	Title      string
	NoteType   string
	Domain     string
	Keywords   string
	Tags       string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Candidate is a transient scoring record that exists only for the duration
// of one retrieval call. It is never persisted.
type Candidate struct {
	DocumentID    string
	Text          string
	Kind          DocKind
	Metadata      map[string]string
	SemanticScore float32
	LexicalScore  float64
	FinalRank     int
}

// Result is an ordered sequence of candidates for one query, already
// deduplicated and truncated to the configured cap.
type Result struct {
	Query      string
	Candidates []Candidate
}

// DocumentIDs returns the candidate document IDs in rank order.
func (r *Result) DocumentIDs() []string {
	ids := make([]string, len(r.Candidates))
	for i, c := range r.Candidates {
		ids[i] = c.DocumentID
	}
	return ids
}

// BuildReport summarizes one knowledge-base rebuild for observability.
// Carried counts documents whose text was unchanged and whose vectors were
// reused without re-embedding.
type BuildReport struct {
	Added   int
	Updated int
	Carried int
	Pruned  int
	Elapsed time.Duration
}

// Total returns the number of documents in the committed generation.
func (r *BuildReport) Total() int {
	return r.Added + r.Updated + r.Carried
}
