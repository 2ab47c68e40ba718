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


package core

import "fmt"

// ValidateDocument validates a Document according to domain rules.
//
// Validation rules:
//   - ID must not be empty
//   - Text must not be empty
//   - Kind must be a known DocKind
//
// Metadata is not validated; an empty map is fine.
func ValidateDocument(doc *Document) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidDocument)
	}

	if doc.ID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyID)
	}

	if doc.Text == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyText)
	}

	if err := ValidateKind(doc.Kind); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}

	return nil
}

// ValidateSourceRecord validates a SourceRecord according to domain rules.
//
// Validation rules:
//   - Kind must be a known DocKind
//   - Key must be positive
//
// Text fields are NOT validated here: a QA record without an answer is a
// legal record that the builder skips rather than rejects.
func ValidateSourceRecord(record *SourceRecord) error {
	if record == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidSourceRecord)
	}

	if record.Key <= 0 {
		return fmt.Errorf("%w: key must be positive, got %d", ErrInvalidSourceRecord, record.Key)
	}

	if err := ValidateKind(record.Kind); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSourceRecord, err)
	}

	return nil
}

// ValidateKind validates that a DocKind has a known value.
func ValidateKind(kind DocKind) error {
	if kind != KindQA && kind != KindNote && kind != KindPastQuery {
		return fmt.Errorf("%w: value %d", ErrInvalidKind, kind)
	}
	return nil
}
