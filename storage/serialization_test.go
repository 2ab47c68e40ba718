package storage

import (
	"testing"

	"github.com/interviewkit/retriever/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntrySerialization_RoundTrip(t *testing.T) {
	entry := &Entry{
		ID:   "qa:7",
		Text: "【问题】什么是奖励塑形？\n【答案】Reward shaping adds auxiliary signals.",
		Kind: core.KindQA,
		Hash: core.HashContent("some text"),
		Vector: []float32{
			0.125, -0.5, 0.0, 1.0, -3.25,
		},
		Metadata: map[string]string{
			"domain":   "reinforcement learning",
			"keywords": "reward shaping",
		},
	}

	data := MarshalEntry(entry)
	require.NotEmpty(t, data)

	got, err := UnmarshalEntry(data)
	require.NoError(t, err)
	assert.Equal(t, entry, got)
}

func TestEntrySerialization_Deterministic(t *testing.T) {
	entry := &Entry{
		ID:     "note:1",
		Text:   "notes",
		Kind:   core.KindNote,
		Vector: []float32{0.5},
		Metadata: map[string]string{
			"b": "2", "a": "1", "c": "3",
		},
	}

	// Metadata is written in sorted key order, so equal entries must
	// serialize to identical bytes across calls.
	first := MarshalEntry(entry)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, MarshalEntry(entry))
	}
}

func TestEntrySerialization_EmptyOptionalFields(t *testing.T) {
	entry := &Entry{
		ID:     "query:3",
		Text:   "backend developer",
		Kind:   core.KindPastQuery,
		Vector: []float32{1, 0, 0},
	}

	got, err := UnmarshalEntry(MarshalEntry(entry))
	require.NoError(t, err)
	assert.Equal(t, entry, got)
	assert.Nil(t, got.Metadata)
}

func TestUnmarshalEntry_Truncated(t *testing.T) {
	entry := &Entry{
		ID:     "qa:1",
		Text:   "text",
		Kind:   core.KindQA,
		Vector: []float32{0.1, 0.2},
	}
	data := MarshalEntry(entry)

	_, err := UnmarshalEntry(data[:len(data)/2])
	assert.ErrorIs(t, err, ErrSerializationFailed)
}

func TestEntry_Item(t *testing.T) {
	entry := &Entry{
		ID:       "note:9",
		Text:     "t",
		Kind:     core.KindNote,
		Hash:     42,
		Vector:   []float32{1},
		Metadata: map[string]string{"k": "v"},
	}

	item := entry.Item()
	assert.Equal(t, entry.ID, item.ID)
	assert.Equal(t, entry.Vector, item.Vector)
	assert.Equal(t, entry.Hash, item.Hash)
	assert.Equal(t, entry.Metadata, item.Metadata)
}
