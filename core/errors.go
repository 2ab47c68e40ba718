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

import "errors"

// Domain errors
var (
	// ErrRebuildInProgress indicates a knowledge-base rebuild was requested
	// while another rebuild is already running. The request is rejected, not
	// queued; callers may retry later.
	ErrRebuildInProgress = errors.New("rebuild already in progress")

	// ErrInvalidDocument indicates a Document failed validation.
	ErrInvalidDocument = errors.New("invalid document")

	// ErrInvalidSourceRecord indicates a SourceRecord failed validation.
	ErrInvalidSourceRecord = errors.New("invalid source record")

	// ErrEmptyText indicates a document's text is empty.
	ErrEmptyText = errors.New("text cannot be empty")

	// ErrEmptyID indicates a document's ID is empty.
	ErrEmptyID = errors.New("document id cannot be empty")

	// ErrInvalidKind indicates an invalid DocKind value.
	ErrInvalidKind = errors.New("invalid document kind")
)
