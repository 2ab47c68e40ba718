package core

import (
	"errors"
	"testing"
)

func TestValidateDocument(t *testing.T) {
	tests := []struct {
		name    string
		doc     *Document
		wantErr error
	}{
		{
			name: "valid qa document",
			doc: &Document{
				ID:   "qa:1",
				Text: "What is reward shaping?\nShaping the reward signal to speed learning.",
				Kind: KindQA,
			},
			wantErr: nil,
		},
		{
			name: "valid note document with metadata",
			doc: &Document{
				ID:       "note:3",
				Text:     "Notes on reward shaping pitfalls",
				Kind:     KindNote,
				Metadata: map[string]string{"tags": "rl"},
			},
			wantErr: nil,
		},
		{
			name:    "nil document",
			doc:     nil,
			wantErr: ErrInvalidDocument,
		},
		{
			name: "empty id",
			doc: &Document{
				Text: "some text",
				Kind: KindNote,
			},
			wantErr: ErrEmptyID,
		},
		{
			name: "empty text",
			doc: &Document{
				ID:   "note:4",
				Kind: KindNote,
			},
			wantErr: ErrEmptyText,
		},
		{
			name: "unknown kind",
			doc: &Document{
				ID:   "x:1",
				Text: "text",
				Kind: DocKind(99),
			},
			wantErr: ErrInvalidKind,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDocument(tt.doc)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateDocument() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateDocument() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateSourceRecord(t *testing.T) {
	tests := []struct {
		name    string
		record  *SourceRecord
		wantErr error
	}{
		{
			name: "valid qa record without answer",
			record: &SourceRecord{
				Key:        1,
				Kind:       KindQA,
				PromptText: "Explain two-phase commit",
			},
			wantErr: nil,
		},
		{
			name: "valid note record",
			record: &SourceRecord{
				Key:      2,
				Kind:     KindNote,
				NoteText: "2PC blocks on coordinator failure",
			},
			wantErr: nil,
		},
		{
			name:    "nil record",
			record:  nil,
			wantErr: ErrInvalidSourceRecord,
		},
		{
			name: "zero key",
			record: &SourceRecord{
				Kind: KindNote,
			},
			wantErr: ErrInvalidSourceRecord,
		},
		{
			name: "unknown kind",
			record: &SourceRecord{
				Key:  3,
				Kind: DocKind(0),
			},
			wantErr: ErrInvalidKind,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSourceRecord(tt.record)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateSourceRecord() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateSourceRecord() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateKind(t *testing.T) {
	for _, kind := range []DocKind{KindQA, KindNote, KindPastQuery} {
		if err := ValidateKind(kind); err != nil {
			t.Errorf("ValidateKind(%v) unexpected error: %v", kind, err)
		}
	}

	if err := ValidateKind(DocKind(42)); !errors.Is(err, ErrInvalidKind) {
		t.Errorf("ValidateKind(42) error = %v, want ErrInvalidKind", err)
	}
}
