package jsonl

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/interviewkit/retriever/core"
	"github.com/interviewkit/retriever/records"
)

// ErrBadRecord is returned when a line cannot be parsed into a source record.
var ErrBadRecord = errors.New("malformed source record")

// record is the on-disk shape of one line.
type record struct {
	Key       int64     `json:"key"`
	Kind      string    `json:"kind"`
	Prompt    string    `json:"prompt,omitempty"`
	Answer    string    `json:"answer,omitempty"`
	Note      string    `json:"note,omitempty"`
	Title     string    `json:"title,omitempty"`
	NoteType  string    `json:"note_type,omitempty"`
	Domain    string    `json:"domain,omitempty"`
	Keywords  string    `json:"keywords,omitempty"`
	Tags      string    `json:"tags,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// Store reads source records from a JSON Lines file: one JSON object per
// line, blank lines and #-prefixed lines ignored.
type Store struct {
	path string
}

var _ records.Store = (*Store)(nil)

// NewStore creates a store over the given file path. The file is read on
// each ListSourceRecords call, not cached.
func NewStore(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("record file path required")
	}
	return &Store{path: path}, nil
}

// ListSourceRecords parses the whole file. A malformed line fails the call
// with its line number; the builder would otherwise silently build an
// incomplete knowledge base.
func (s *Store) ListSourceRecords(ctx context.Context) ([]core.SourceRecord, error) {
	file, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("opening record file: %w", err)
	}
	defer file.Close()

	var out []core.SourceRecord
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		var rec record
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrBadRecord, lineNo, err)
		}

		kind, err := parseKind(rec.Kind)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrBadRecord, lineNo, err)
		}

		source := core.SourceRecord{
			Key:        rec.Key,
			Kind:       kind,
			PromptText: rec.Prompt,
			AnswerText: rec.Answer,
			NoteText:   rec.Note,
			Title:      rec.Title,
			NoteType:   rec.NoteType,
			Domain:     rec.Domain,
			Keywords:   rec.Keywords,
			Tags:       rec.Tags,
			CreatedAt:  rec.CreatedAt,
			UpdatedAt:  rec.UpdatedAt,
		}
		if err := core.ValidateSourceRecord(&source); err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrBadRecord, lineNo, err)
		}
		out = append(out, source)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading record file: %w", err)
	}
	return out, nil
}

func parseKind(s string) (core.DocKind, error) {
	switch s {
	case "qa":
		return core.KindQA, nil
	case "note":
		return core.KindNote, nil
	case "query":
		return core.KindPastQuery, nil
	default:
		return 0, fmt.Errorf("unknown kind %q", s)
	}
}
