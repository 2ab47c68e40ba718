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


package storage

import (
	"fmt"
	"sort"

	"github.com/interviewkit/retriever/core"
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// Entry is the stored representation of one document together with its
// embedding and content hash. It is the unit of persistence for the badger
// backend and the payload shape for remote backends.
type Entry struct {
	ID       string
	Text     string
	Kind     core.DocKind
	Hash     core.ContentHash
	Vector   []float32
	Metadata map[string]string
}

// Item converts the entry back into the storage.Item write shape.
func (e *Entry) Item() Item {
	return Item{
		ID:       e.ID,
		Vector:   e.Vector,
		Text:     e.Text,
		Kind:     e.Kind,
		Hash:     e.Hash,
		Metadata: e.Metadata,
	}
}

// entrySer is a hand-written MUS serializer for Entry. Metadata keys are
// written in sorted order so equal entries always produce equal bytes.
type entrySer struct{}

// EntryMUS serializes Entry values in the MUS format.
var EntryMUS = entrySer{}

func (entrySer) Size(e Entry) (size int) {
	size = ord.String.Size(e.ID)
	size += ord.String.Size(e.Text)
	size += varint.Int.Size(int(e.Kind))
	size += varint.Uint64.Size(uint64(e.Hash))
	size += varint.Int.Size(len(e.Vector))
	for _, v := range e.Vector {
		size += raw.Float32.Size(v)
	}
	size += varint.Int.Size(len(e.Metadata))
	for k, v := range e.Metadata {
		size += ord.String.Size(k)
		size += ord.String.Size(v)
	}
	return size
}

func (entrySer) Marshal(e Entry, bs []byte) (n int) {
	n = ord.String.Marshal(e.ID, bs)
	n += ord.String.Marshal(e.Text, bs[n:])
	n += varint.Int.Marshal(int(e.Kind), bs[n:])
	n += varint.Uint64.Marshal(uint64(e.Hash), bs[n:])

	n += varint.Int.Marshal(len(e.Vector), bs[n:])
	for _, v := range e.Vector {
		n += raw.Float32.Marshal(v, bs[n:])
	}

	n += varint.Int.Marshal(len(e.Metadata), bs[n:])
	keys := make([]string, 0, len(e.Metadata))
	for k := range e.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		n += ord.String.Marshal(k, bs[n:])
		n += ord.String.Marshal(e.Metadata[k], bs[n:])
	}
	return n
}

func (entrySer) Unmarshal(bs []byte) (e Entry, n int, err error) {
	var n1 int

	e.ID, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}

	e.Text, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}

	var kind int
	kind, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	e.Kind = core.DocKind(kind)

	var hash uint64
	hash, n1, err = varint.Uint64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	e.Hash = core.ContentHash(hash)

	var vecLen int
	vecLen, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	if vecLen < 0 {
		err = fmt.Errorf("%w: negative vector length %d", ErrSerializationFailed, vecLen)
		return
	}
	if vecLen > 0 {
		e.Vector = make([]float32, vecLen)
		for i := 0; i < vecLen; i++ {
			e.Vector[i], n1, err = raw.Float32.Unmarshal(bs[n:])
			n += n1
			if err != nil {
				return
			}
		}
	}

	var metaLen int
	metaLen, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	if metaLen < 0 {
		err = fmt.Errorf("%w: negative metadata length %d", ErrSerializationFailed, metaLen)
		return
	}
	if metaLen > 0 {
		e.Metadata = make(map[string]string, metaLen)
		for i := 0; i < metaLen; i++ {
			var k, v string
			k, n1, err = ord.String.Unmarshal(bs[n:])
			n += n1
			if err != nil {
				return
			}
			v, n1, err = ord.String.Unmarshal(bs[n:])
			n += n1
			if err != nil {
				return
			}
			e.Metadata[k] = v
		}
	}

	return
}

// MarshalEntry serializes an Entry to bytes.
func MarshalEntry(entry *Entry) []byte {
	buf := make([]byte, EntryMUS.Size(*entry))
	EntryMUS.Marshal(*entry, buf)
	return buf
}

// UnmarshalEntry deserializes an Entry from bytes.
func UnmarshalEntry(data []byte) (*Entry, error) {
	entry, _, err := EntryMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &entry, nil
}
